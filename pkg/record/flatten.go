package record

import (
	"encoding/json"
	"fmt"
)

// Reserved top-level keys in the flattened JSON shape. SysIDField is also
// the name of the unique-key field on every table.
const (
	SysIDField        = "sys_id"
	DisplayValueField = "display_value"
)

// FieldValue is the raw/display value pair for a single field.
type FieldValue struct {
	Value        string `json:"value"`
	DisplayValue string `json:"display_value"`
}

// FlattenedRecord is an immutable snapshot of one record: every field as a
// FieldValue pair plus the sys_id and overall display string. It has no
// identity of its own and is discarded after serialization.
type FlattenedRecord struct {
	SysID        string
	DisplayValue string
	Fields       map[string]FieldValue
}

// MarshalJSON flattens the record into a single JSON object. sys_id and
// display_value appear as plain strings, never as value/display pairs.
func (r FlattenedRecord) MarshalJSON() ([]byte, error) {
	obj := make(map[string]interface{}, len(r.Fields)+2)
	obj[SysIDField] = r.SysID
	obj[DisplayValueField] = r.DisplayValue
	for name, fv := range r.Fields {
		if name == SysIDField || name == DisplayValueField {
			continue
		}
		obj[name] = fv
	}
	return json.Marshal(obj)
}

// UnmarshalJSON reverses MarshalJSON exactly.
func (r *FlattenedRecord) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	r.Fields = make(map[string]FieldValue)
	for name, raw := range obj {
		switch name {
		case SysIDField:
			if err := json.Unmarshal(raw, &r.SysID); err != nil {
				return fmt.Errorf("decode %s: %w", SysIDField, err)
			}
		case DisplayValueField:
			if err := json.Unmarshal(raw, &r.DisplayValue); err != nil {
				return fmt.Errorf("decode %s: %w", DisplayValueField, err)
			}
		default:
			var fv FieldValue
			if err := json.Unmarshal(raw, &fv); err != nil {
				return fmt.Errorf("decode field %q: %w", name, err)
			}
			r.Fields[name] = fv
		}
	}
	return nil
}

// flatten builds the snapshot for a fetched record. fields is the table
// schema as reported by the store; the unique-key field is always skipped
// so sys_id only ever appears as the top-level key. With excludeEmpty set,
// fields whose raw value is empty are omitted entirely; the display value
// plays no part in that decision.
func flatten(rec Record, fields []string, excludeEmpty bool) *FlattenedRecord {
	out := &FlattenedRecord{
		SysID:        rec.SysID(),
		DisplayValue: rec.DisplayValue(),
		Fields:       make(map[string]FieldValue, len(fields)),
	}
	for _, name := range fields {
		if name == SysIDField {
			continue
		}
		raw := rec.Value(name)
		if excludeEmpty && raw == "" {
			continue
		}
		out.Fields[name] = FieldValue{
			Value:        raw,
			DisplayValue: rec.FieldDisplay(name),
		}
	}
	return out
}
