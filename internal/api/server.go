package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"facebook-extractor/internal/database/models"
	"facebook-extractor/internal/monitoring"
	"facebook-extractor/internal/utils"
	"facebook-extractor/pkg/types"
)

// Store is the read side of the post database.
type Store interface {
	GetPostsWithPagination(ctx context.Context, page, pageSize, minReactions int) ([]*models.Post, error)
	GetPostsCount(ctx context.Context, minReactions int) (int, error)
	GetPostsByShape(ctx context.Context, shape string, limit int) ([]*models.Post, error)
	GetPostsForExport(ctx context.Context, minReactions int) ([]*models.Post, error)
	GetScrapingStats(ctx context.Context) (map[string]interface{}, error)
	Ping(ctx context.Context) error
}

type Server struct {
	store   Store
	monitor *monitoring.Monitor
	logger  *logrus.Logger
	port    int
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Count   int         `json:"count,omitempty"`
}

type PostsResponse struct {
	Posts      []*types.PostRecord `json:"posts"`
	TotalCount int                 `json:"total_count"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
}

// NewServer builds the API. monitor may be nil, which disables /metrics.
func NewServer(store Store, monitor *monitoring.Monitor, logger *logrus.Logger, port int) *Server {
	return &Server{
		store:   store,
		monitor: monitor,
		logger:  logger,
		port:    port,
	}
}

func (s *Server) Start() error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Infof("Starting API server on port %d", s.port)
	return server.ListenAndServe()
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/posts", s.handlePosts)
	mux.HandleFunc("GET /api/posts/shape/{shape}", s.handlePostsByShape)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	if s.monitor != nil {
		mux.Handle("GET /metrics", s.monitor.Handler())
	}
	return s.corsMiddleware(mux.ServeHTTP)
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, APIResponse{
		Success: true,
		Data: map[string]string{
			"message":   "Facebook Extractor API",
			"version":   "1.0.0",
			"endpoints": "/api/posts, /api/posts/shape/{shape}, /api/stats, /api/export/csv, /metrics, /dashboard",
		},
	})
}

func queryInt(r *http.Request, name string, fallback, min, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < min || (max > 0 && n > max) {
		return fallback
	}
	return n
}

func records(posts []*models.Post) []*types.PostRecord {
	out := make([]*types.PostRecord, 0, len(posts))
	for _, post := range posts {
		out = append(out, post.Record())
	}
	return out
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1, 1, 0)
	pageSize := queryInt(r, "page_size", 20, 1, 100)
	minReactions := queryInt(r, "min_reactions", 0, 0, 0)

	posts, err := s.store.GetPostsWithPagination(r.Context(), page, pageSize, minReactions)
	if err != nil {
		s.writeError(w, fmt.Sprintf("Failed to fetch posts: %v", err), http.StatusInternalServerError)
		return
	}

	totalCount, err := s.store.GetPostsCount(r.Context(), minReactions)
	if err != nil {
		s.writeError(w, fmt.Sprintf("Failed to get total count: %v", err), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, APIResponse{
		Success: true,
		Data: PostsResponse{
			Posts:      records(posts),
			TotalCount: totalCount,
			Page:       page,
			PageSize:   pageSize,
		},
		Count: len(posts),
	})
}

func (s *Server) handlePostsByShape(w http.ResponseWriter, r *http.Request) {
	shape := r.PathValue("shape")
	if shape == "" {
		s.writeError(w, "Shape is required", http.StatusBadRequest)
		return
	}
	limit := queryInt(r, "limit", 50, 1, 100)

	posts, err := s.store.GetPostsByShape(r.Context(), shape, limit)
	if err != nil {
		s.writeError(w, fmt.Sprintf("Failed to fetch posts for shape: %v", err), http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, APIResponse{
		Success: true,
		Data:    records(posts),
		Count:   len(posts),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetScrapingStats(r.Context())
	if err != nil {
		s.writeError(w, fmt.Sprintf("Failed to fetch stats: %v", err), http.StatusInternalServerError)
		return
	}
	if s.monitor != nil {
		metrics := s.monitor.GetMetrics()
		stats["lookups"] = metrics.Lookups
		stats["error_rate"] = metrics.ErrorRate
		stats["unhandled_rate"] = metrics.UnhandledRate
	}

	s.writeJSON(w, APIResponse{Success: true, Data: stats})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	minReactions := queryInt(r, "min_reactions", 0, 0, 0)

	posts, err := s.store.GetPostsForExport(r.Context(), minReactions)
	if err != nil {
		s.writeError(w, fmt.Sprintf("Failed to fetch posts for export: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=facebook_posts_%s.csv", time.Now().Format("2006-01-02")))

	writer := csv.NewWriter(w)
	writer.Write([]string{"ID", "Shape", "Text", "Reactions", "Comments", "Shares", "Views", "Posted At", "Profile", "URL"})
	for _, post := range posts {
		writer.Write([]string{
			post.PostID,
			post.Shape,
			post.Text,
			strconv.Itoa(post.TotalReactions),
			nullableCount(post.NumComments.Int64, post.NumComments.Valid),
			nullableCount(post.NumShares.Int64, post.NumShares.Valid),
			nullableCount(post.NumViews.Int64, post.NumViews.Valid),
			utils.FormatTimestamp(post.PostedAt),
			post.ProfileLink,
			post.URL,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		s.logger.WithError(err).Error("Failed to write CSV export")
	}
}

func nullableCount(n int64, valid bool) string {
	if !valid {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeError(w, "Database connection failed", http.StatusServiceUnavailable)
		return
	}

	s.writeJSON(w, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"database":  "connected",
		},
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(strings.TrimSpace(dashboardHTML)))
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(APIResponse{
		Success: false,
		Error:   message,
	})
}
