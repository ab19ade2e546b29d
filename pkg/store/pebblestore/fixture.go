package pebblestore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is a YAML-loadable description of tables and records, used by the
// seed command and by tests.
type Fixture struct {
	Tables []FixtureTable `yaml:"tables"`
}

// FixtureTable declares one table plus its records.
type FixtureTable struct {
	Name         string          `yaml:"name"`
	DisplayField string          `yaml:"display_field"`
	Fields       []string        `yaml:"fields"`
	Records      []FixtureRecord `yaml:"records"`
}

// FixtureRecord declares one record. SysID may be left empty to mint one.
type FixtureRecord struct {
	SysID   string            `yaml:"sys_id"`
	Values  map[string]string `yaml:"values"`
	Display map[string]string `yaml:"display"`
}

// LoadFixtureFile reads a YAML fixture from disk and loads it.
func (s *Store) LoadFixtureFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("parse fixture: %w", err)
	}
	return s.LoadFixture(&fixture)
}

// LoadFixture creates every table and record in the fixture.
func (s *Store) LoadFixture(fixture *Fixture) error {
	for _, table := range fixture.Tables {
		if err := s.CreateTable(table.Name, table.Fields, table.DisplayField); err != nil {
			return err
		}
		for _, rec := range table.Records {
			if _, err := s.PutRecord(table.Name, rec.SysID, rec.Values, rec.Display); err != nil {
				return err
			}
		}
	}
	return nil
}
