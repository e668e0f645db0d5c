package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zombar/explorer"
	"github.com/zombar/explorer/db"
	"github.com/zombar/explorer/metrics"
	"github.com/zombar/explorer/models"
	"github.com/zombar/explorer/ytdlp"
)

// Store is the persistence surface the server needs. *db.DB satisfies it.
type Store interface {
	CreateItem(item *models.Item) (*models.Item, error)
	GetItem(id string) (*models.Item, error)
	ListItems(filter db.ListFilter) ([]*models.Item, error)
	UpdateItem(id string, params db.UpdateItemParams) (*models.Item, error)
	DeleteItem(id string) error
	CountItems() (int, error)
	ListCategories() ([]*models.Category, error)
	CreateCategory(name, description string) (*models.Category, error)
	Close() error
}

// Processor runs the URL enrichment pipeline. *explorer.Enricher satisfies it.
type Processor interface {
	ProcessURL(ctx context.Context, url string) (*models.ProcessResult, error)
	ExtractToolMetadata(ctx context.Context, url string) (*ytdlp.Metadata, error)
	AnalyzeContent(ctx context.Context, title, description, url string) models.AIAnalysis
}

// Server represents the API server
type Server struct {
	store       Store
	enricher    Processor
	db          *db.DB
	addr        string
	server      *http.Server
	mux         *http.ServeMux
	corsEnabled bool
}

// Config contains server configuration
type Config struct {
	Addr           string
	DBConfig       db.Config
	EnricherConfig explorer.Config
	CORSEnabled    bool
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		EnricherConfig: explorer.DefaultConfig(),
		CORSEnabled:    true,
	}
}

// NewServer creates a new API server
func NewServer(config Config) (*Server, error) {
	database, err := db.New(config.DBConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	enricher := explorer.New(config.EnricherConfig)

	s := newServer(database, enricher, config.CORSEnabled)
	s.db = database
	s.addr = config.Addr
	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      s.middleware(s.mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Allow time for slow remote fetches and model calls
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// newServer wires routes onto the given collaborators. Tests use it to
// inject fakes.
func newServer(store Store, enricher Processor, corsEnabled bool) *Server {
	s := &Server{
		store:       store,
		enricher:    enricher,
		mux:         http.NewServeMux(),
		corsEnabled: corsEnabled,
	}
	s.registerRoutes()
	return s
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/process-url", s.handleProcessURL)
	s.mux.HandleFunc("/api/extract-metadata", s.handleExtractMetadata)
	s.mux.HandleFunc("/api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/api/items", s.handleItems)
	s.mux.HandleFunc("/api/items/", s.handleItem) // Handles /api/items/{id}
	s.mux.HandleFunc("/api/categories", s.handleCategories)
	s.mux.Handle("/metrics", promhttp.Handler())
}

// Start starts the API server
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.store.Close()
}

// Handler returns the full handler stack, for tests.
func (s *Server) Handler() http.Handler {
	return s.middleware(s.mux)
}

// DB returns the underlying database for metrics collection. It is nil when
// the server was built with an injected store.
func (s *Server) DB() *db.DB {
	return s.db
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// middleware applies common middleware to all routes
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS headers
		if s.corsEnabled {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		// Logging and metrics (skip health checks to reduce noise)
		start := time.Now()
		if r.URL.Path != "/health" {
			log.Printf("%s %s", r.Method, r.URL.Path)
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if r.URL.Path != "/health" && r.URL.Path != "/metrics" {
			duration := time.Since(start)
			log.Printf("%s %s - completed in %v", r.Method, r.URL.Path, duration)
			metrics.RequestsTotal.WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(rec.status)).Inc()
			metrics.RequestDuration.WithLabelValues(r.URL.Path, r.Method).Observe(duration.Seconds())
		}
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	count, err := s.store.CountItems()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get count")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"items":  count,
		"time":   time.Now(),
	})
}

// ProcessURLRequest represents a URL processing request
type ProcessURLRequest struct {
	URL string `json:"url"`
}

// handleProcessURL runs the full enrichment pipeline for a URL
func (s *Server) handleProcessURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ProcessURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Minute)
	defer cancel()

	result, err := s.enricher.ProcessURL(ctx, req.URL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("processing failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleExtractMetadata runs only the tool-based metadata extraction
func (s *Server) handleExtractMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ProcessURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	meta, err := s.enricher.ExtractToolMetadata(ctx, req.URL)
	if err != nil {
		if errors.Is(err, ytdlp.ErrNotInstalled) {
			respondError(w, http.StatusServiceUnavailable, "metadata tool is not installed")
			return
		}
		if errors.Is(err, ytdlp.ErrUnsupported) {
			respondError(w, http.StatusUnprocessableEntity, "url is not supported by the metadata tool")
			return
		}
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("extraction failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, meta)
}

// AnalyzeRequest represents a content analysis request
type AnalyzeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// handleAnalyze runs the model analysis over already-extracted content
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" && req.Description == "" {
		respondError(w, http.StatusBadRequest, "title or description is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	analysis := s.enricher.AnalyzeContent(ctx, req.Title, req.Description, req.URL)
	respondJSON(w, http.StatusOK, analysis)
}

// handleItems handles listing and creating items
func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListItems(w, r)
	case http.MethodPost:
		s.handleCreateItem(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleListItems lists items with optional filters
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := db.ListFilter{
		Query:    q.Get("q"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
		Sort:     q.Get("sort"),
	}
	if v := q.Get("favorite"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid favorite value")
			return
		}
		filter.Favorite = &b
	}
	if v := q.Get("archived"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid archived value")
			return
		}
		filter.Archived = &b
	}

	items, err := s.store.ListItems(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	if items == nil {
		items = []*models.Item{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// handleCreateItem creates a new item
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var item models.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(item.Title) == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	created, err := s.store.CreateItem(&item)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create item: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// handleItem handles GET, PUT, and DELETE for a single item
func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/items/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetItem(w, r, id)
	case http.MethodPut:
		s.handleUpdateItem(w, r, id)
	case http.MethodDelete:
		s.handleDeleteItem(w, r, id)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleGetItem retrieves an item by ID
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request, id string) {
	item, err := s.store.GetItem(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	if item == nil {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// handleUpdateItem applies a partial update to an item
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request, id string) {
	var params db.UpdateItemParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if params.Status != nil {
		switch *params.Status {
		case models.StatusPlanned, models.StatusInProgress, models.StatusDone:
		default:
			respondError(w, http.StatusBadRequest, "invalid status value")
			return
		}
	}

	item, err := s.store.UpdateItem(id, params)
	if err != nil {
		if strings.Contains(err.Error(), "no item found") {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// handleDeleteItem deletes an item by ID
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request, id string) {
	err := s.store.DeleteItem(id)
	if err != nil {
		if strings.Contains(err.Error(), "no item found") {
			respondError(w, http.StatusNotFound, "item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "item deleted successfully",
	})
}

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handleCategories handles listing and creating categories
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := s.store.ListCategories()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "database error")
			return
		}
		if categories == nil {
			categories = []*models.Category{}
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"categories": categories,
			"total":      len(categories),
		})
	case http.MethodPost:
		var req CreateCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}
		category, err := s.store.CreateCategory(req.Name, req.Description)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to create category")
			return
		}
		respondJSON(w, http.StatusCreated, category)
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
