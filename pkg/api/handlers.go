package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server holds the API server state
type Server struct {
	service RecordService
	config  ServerConfig
	metrics *Metrics
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(service RecordService, config ServerConfig, metrics *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		service: service,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleGetRecord godoc
//
//	@Summary		Get a flattened record
//	@Description	Resolve a record by sys_id or business key and return every field as a value/display_value pair
//	@Tags			records
//	@Produce		json
//	@Param			table			path	string	true	"Table name"
//	@Param			id				path	string	true	"sys_id or business key"
//	@Param			exclude_empty	query	bool	false	"Omit fields with empty raw values"
//	@Success		200	{object}	APIResponse
//	@Router			/v1/tables/{table}/records/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	id := chi.URLParam(r, "id")
	excludeEmpty := boolParam(r, "exclude_empty")

	start := time.Now()
	flat := s.service.GetFields(r.Context(), table, id, excludeEmpty)
	s.metrics.RecordLookup("get_fields", flat != nil, time.Since(start))

	if flat == nil {
		// Absent is not a transport error: the lookup ran, there is just
		// nothing to return.
		sendSuccess(w, nil)
		return
	}
	sendSuccess(w, flat)
}

// handleShortText godoc
//
//	@Summary		Get a record's short description
//	@Description	Return only the short_description raw value of a record
//	@Tags			records
//	@Produce		json
//	@Param			table	path	string	true	"Table name"
//	@Param			id		path	string	true	"sys_id or business key"
//	@Success		200	{object}	APIResponse
//	@Router			/v1/tables/{table}/records/{id}/short-text [get]
//	@Security		ApiKeyAuth
func (s *Server) handleShortText(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	id := chi.URLParam(r, "id")

	start := time.Now()
	text, ok := s.service.GetShortText(r.Context(), table, id)
	s.metrics.RecordLookup("get_short_text", ok, time.Since(start))

	if !ok {
		sendSuccess(w, nil)
		return
	}
	sendSuccess(w, text)
}

// handleFindReferencing godoc
//
//	@Summary		Find records referencing a target
//	@Description	Return every record in a table whose reference field holds the target record's sys_id
//	@Tags			records
//	@Produce		json
//	@Param			table			path	string	true	"Table to search"
//	@Param			field			query	string	true	"Reference field name"
//	@Param			target			query	string	true	"Target sys_id or business key"
//	@Param			target_table	query	string	false	"Table to resolve a business-key target against"
//	@Param			exclude_empty	query	bool	false	"Omit fields with empty raw values"
//	@Success		200	{object}	APIResponse
//	@Router			/v1/tables/{table}/references [get]
//	@Security		ApiKeyAuth
func (s *Server) handleFindReferencing(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	field := r.URL.Query().Get("field")
	target := r.URL.Query().Get("target")
	targetTable := r.URL.Query().Get("target_table")
	excludeEmpty := boolParam(r, "exclude_empty")

	if field == "" || target == "" {
		sendError(w, "field and target query parameters are required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	recs := s.service.FindReferencing(r.Context(), table, field, target, targetTable, excludeEmpty)
	s.metrics.RecordLookup("find_referencing", len(recs) > 0, time.Since(start))

	sendSuccess(w, recs)
}

// handleUserInteractions godoc
//
//	@Summary		List a user's interactions
//	@Description	Return every interaction record opened for a user, identified by sys_id or user name
//	@Tags			records
//	@Produce		json
//	@Param			id				path	string	true	"User sys_id or user name"
//	@Param			exclude_empty	query	bool	false	"Omit fields with empty raw values"
//	@Success		200	{object}	APIResponse
//	@Router			/v1/users/{id}/interactions [get]
//	@Security		ApiKeyAuth
func (s *Server) handleUserInteractions(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "id")
	excludeEmpty := boolParam(r, "exclude_empty")

	start := time.Now()
	recs := s.service.InteractionsForUser(r.Context(), user, excludeEmpty)
	s.metrics.RecordLookup("interactions_for_user", len(recs) > 0, time.Since(start))

	sendSuccess(w, recs)
}

func boolParam(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
