package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driving"
	"github.com/ledgerlens/ledgerlens-core/internal/statements"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// SearchRequest is a hybrid search query
// @Description Hybrid search query with optional structured filter overrides
type SearchRequest struct {
	Query   string           `json:"query" example:"coffee purchases over $20 last month"`
	Limit   int              `json:"limit" example:"20"`
	Filters domain.FilterSet `json:"filters,omitempty"`
}

// ExportRequest is a search-and-export request
// @Description Runs a hybrid search and renders the results in the requested format
type ExportRequest struct {
	SearchRequest
	Format string `json:"format" example:"csv" enums:"csv,report"`
}

// UploadResponse is the ingestion outcome. IndexError is set when the
// transaction store was updated but the vector index rebuild failed.
type UploadResponse struct {
	*domain.IngestResult
	IndexError string `json:"index_error,omitempty"`
}

// EmbeddingSettingsRequest configures the embedding provider
// @Description Embedding provider configuration; an empty provider disables embeddings
type EmbeddingSettingsRequest struct {
	Provider string `json:"provider" example:"openai"`
	Model    string `json:"model" example:"text-embedding-3-small"`
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url,omitempty"`
}

// EmbeddingStatusResponse reports the active embedding configuration
type EmbeddingStatusResponse struct {
	Configured bool   `json:"configured"`
	Model      string `json:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks store and index connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backend is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "store unreachable")
			return
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unreachable")
			return
		}
	}
	if s.index != nil {
		if err := s.index.HealthCheck(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "vector index unreachable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Session endpoints

// handleCreateSession godoc
// @Summary      Create session
// @Description  Start a new session owning an empty transaction store and index collection
// @Tags         Sessions
// @Produce      json
// @Success      201  {object}  domain.Session
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /sessions [post]
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionService.Create(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session creation failed")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// handleDeleteSession godoc
// @Summary      Tear down session
// @Description  Remove the session, its stored transactions, and its index collection
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Session not found"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /sessions/{id} [delete]
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	err := s.sessionService.Teardown(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "session teardown failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Statement endpoints

// handleUploadStatements godoc
// @Summary      Upload statements
// @Description  Ingest a batch of statement files, replacing the session's transactions and rebuilding its index. Per-file failures are reported in the statuses, not as request errors.
// @Tags         Statements
// @Accept       multipart/form-data
// @Produce      json
// @Param        X-Session-ID  header    string  false  "Session ID (defaults to the shared session)"
// @Param        files         formData  file    true   "Statement files (CSV or TSV)"
// @Success      200  {object}  UploadResponse
// @Failure      400  {object}  ErrorResponse  "No files or malformed form"
// @Failure      503  {object}  ErrorResponse  "Index rebuild failed; store was still updated"
// @Router       /statements [post]
func (s *Server) handleUploadStatements(w http.ResponseWriter, r *http.Request) {
	session := GetSession(r.Context())

	if err := r.ParseMultipartForm(statements.MaxStatementSize); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "no files in upload")
		return
	}

	uploads := make([]driving.StatementUpload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file in upload")
			return
		}
		defer f.Close()

		uploads = append(uploads, driving.StatementUpload{
			Name:        h.Filename,
			Size:        h.Size,
			ContentType: h.Header.Get("Content-Type"),
			Content:     f,
		})
	}

	result, err := s.ingestService.ProcessFiles(r.Context(), session, uploads)
	if err != nil {
		// The store is updated before indexing; report a partial outcome
		// instead of discarding the ingestion statuses.
		if result != nil && errors.Is(err, domain.ErrIndexUnavailable) {
			writeJSON(w, http.StatusOK, UploadResponse{IngestResult: result, IndexError: err.Error()})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{IngestResult: result})
}

// handleReindex godoc
// @Summary      Rebuild index
// @Description  Rebuild the session's vector index from its current transactions without re-ingesting files
// @Tags         Statements
// @Produce      json
// @Param        X-Session-ID  header  string  false  "Session ID"
// @Success      200  {object}  map[string]int
// @Failure      503  {object}  ErrorResponse  "Index unavailable"
// @Router       /statements/reindex [post]
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	session := GetSession(r.Context())

	indexed, err := s.ingestService.Reindex(r.Context(), session)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"indexed": indexed})
}

// handleListTransactions godoc
// @Summary      List transactions
// @Description  Return the session's canonical transactions in stored order
// @Tags         Statements
// @Produce      json
// @Param        X-Session-ID  header  string  false  "Session ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /transactions [get]
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	session := GetSession(r.Context())

	txs, err := s.ingestService.Transactions(r.Context(), session)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// Search endpoints

// handleSearch godoc
// @Summary      Hybrid search
// @Description  Answer a free-text question about the session's transactions. Structured filters are extracted from the query; explicit filters in the request override extracted ones.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string         false  "Session ID"
// @Param        request       body    SearchRequest  true   "Search query"
// @Success      200  {object}  domain.SearchResult
// @Failure      400  {object}  ErrorResponse  "Empty query"
// @Failure      503  {object}  ErrorResponse  "Index unavailable"
// @Router       /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	session := GetSession(r.Context())

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	result, err := s.searchService.Search(r.Context(), session, req.Query, domain.SearchOptions{
		Limit:   req.Limit,
		Filters: req.Filters,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleExportSearch godoc
// @Summary      Export search results
// @Description  Run a hybrid search and render the results as a CSV table or a plain-text summary report
// @Tags         Search
// @Accept       json
// @Produce      text/csv
// @Produce      plain
// @Param        X-Session-ID  header  string         false  "Session ID"
// @Param        request       body    ExportRequest  true   "Search query and export format"
// @Success      200  {string}  string  "Rendered export"
// @Failure      400  {object}  ErrorResponse  "Unknown format or empty query"
// @Router       /search/export [post]
func (s *Server) handleExportSearch(w http.ResponseWriter, r *http.Request) {
	session := GetSession(r.Context())

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Format != "csv" && req.Format != "report" {
		writeError(w, http.StatusBadRequest, "format must be csv or report")
		return
	}

	result, err := s.searchService.Search(r.Context(), session, req.Query, domain.SearchOptions{
		Limit:   req.Limit,
		Filters: req.Filters,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch req.Format {
	case "csv":
		data, err := s.exportService.ResultsCSV(result)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="search_results.csv"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case "report":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s.exportService.SummaryReport(result)))
	}
}

// Analytics endpoints

// handleSummary godoc
// @Summary      Transaction summary
// @Description  Aggregate the session's transactions, optionally restricted to an inclusive date window
// @Tags         Analytics
// @Produce      json
// @Param        X-Session-ID  header  string  false  "Session ID"
// @Param        from          query   string  false  "Window start (YYYY-MM-DD)"
// @Param        to            query   string  false  "Window end (YYYY-MM-DD)"
// @Success      200  {object}  domain.Summary
// @Failure      400  {object}  ErrorResponse  "Malformed date"
// @Router       /analytics/summary [get]
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	session := GetSession(r.Context())

	from, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}

	summary, err := s.analyticsService.Summary(r.Context(), session, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleMonthly godoc
// @Summary      Monthly breakdown
// @Description  Return the session's month-by-month transaction breakdown, oldest first
// @Tags         Analytics
// @Produce      json
// @Param        X-Session-ID  header  string  false  "Session ID"
// @Success      200  {array}  domain.MonthlySummary
// @Router       /analytics/monthly [get]
func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	session := GetSession(r.Context())

	months, err := s.analyticsService.Monthly(r.Context(), session)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, months)
}

// Settings endpoints

// handleUpdateEmbeddingSettings godoc
// @Summary      Update embedding settings
// @Description  Configure the embedding provider. The service is health-checked before activation; an empty provider disables embeddings.
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        request  body      EmbeddingSettingsRequest  true  "Embedding configuration"
// @Success      200      {object}  EmbeddingStatusResponse
// @Failure      400      {object}  ErrorResponse  "Invalid or incomplete configuration"
// @Failure      502      {object}  ErrorResponse  "Provider unreachable"
// @Router       /settings/embedding [put]
func (s *Server) handleUpdateEmbeddingSettings(w http.ResponseWriter, r *http.Request) {
	var req EmbeddingSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Provider == "" {
		if err := s.services.ValidateAndSetEmbedding(r.Context(), nil); err != nil {
			writeError(w, http.StatusInternalServerError, "disabling embeddings failed")
			return
		}
		s.embeddingStatus(w)
		return
	}

	settings := &domain.EmbeddingSettings{
		Provider: domain.AIProvider(req.Provider),
		Model:    req.Model,
		APIKey:   req.APIKey,
		BaseURL:  req.BaseURL,
	}

	svc, err := s.aiFactory.CreateEmbeddingService(settings)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProvider) {
			writeError(w, http.StatusBadRequest, "unsupported embedding provider")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if svc == nil {
		writeError(w, http.StatusBadRequest, "embedding configuration incomplete")
		return
	}

	if err := s.services.ValidateAndSetEmbedding(r.Context(), svc); err != nil {
		writeError(w, http.StatusBadGateway, "embedding provider unreachable")
		return
	}

	s.embeddingStatus(w)
}

// handleEmbeddingStatus godoc
// @Summary      Embedding status
// @Description  Report whether an embedding service is configured and which model it uses
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  EmbeddingStatusResponse
// @Router       /settings/embedding/status [get]
func (s *Server) handleEmbeddingStatus(w http.ResponseWriter, r *http.Request) {
	s.embeddingStatus(w)
}

func (s *Server) embeddingStatus(w http.ResponseWriter) {
	svc := s.services.EmbeddingService()
	if svc == nil {
		writeJSON(w, http.StatusOK, EmbeddingStatusResponse{Configured: false})
		return
	}

	writeJSON(w, http.StatusOK, EmbeddingStatusResponse{
		Configured: true,
		Model:      svc.Model(),
		Dimensions: svc.Dimensions(),
	})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
	case errors.Is(err, domain.ErrUnsupportedFormat):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported file format")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrIndexUnavailable):
		writeError(w, http.StatusServiceUnavailable, "vector index unavailable")
	case errors.Is(err, domain.ErrQueryExecution):
		writeError(w, http.StatusBadGateway, "query execution failed")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
