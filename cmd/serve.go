package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/network-intel/internal/graph"
	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/resilience"
	"github.com/sells-group/network-intel/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      newRouter(env),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("server listening", zap.Int("port", port))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			zap.L().Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	},
}

func newRouter(env *appEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/contacts/{id}/score", handleScore(env))
		r.Post("/contacts/{id}/discover", handleDiscover(env))
		r.Post("/score/batch", handleBatchScore(env))
		r.Get("/paths", handlePaths(env))
		r.Post("/opportunities/generate", handleGenerate(env))
		r.Get("/opportunities", handleListOpportunities(env))
		r.Patch("/opportunities/{id}/status", handleStatus(env))
		r.Get("/gaps", handleGaps(env))
	})

	return r
}

type scoreRequest struct {
	TenantID string   `json:"tenant_id"`
	Goals    []string `json:"goals,omitempty"`
}

func handleScore(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if !decodeBody(w, r, &req) {
			return
		}
		scoring, err := env.Scorer.ScoreContact(r.Context(), req.TenantID, chi.URLParam(r, "id"), req.Goals)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scoring)
	}
}

type batchScoreRequest struct {
	TenantID   string   `json:"tenant_id"`
	ContactIDs []string `json:"contact_ids"`
	Goals      []string `json:"goals,omitempty"`
}

func handleBatchScore(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchScoreRequest
		if !decodeBody(w, r, &req) {
			return
		}
		result, err := env.Scorer.BatchScore(r.Context(), req.TenantID, req.ContactIDs, req.Goals)
		if err != nil && resilience.KindOf(err) != resilience.KindPartialBatchFailure {
			writeError(w, err)
			return
		}
		// Partial failures still return the per-item result.
		writeJSON(w, http.StatusOK, result)
	}
}

type discoverRequest struct {
	TenantID string `json:"tenant_id"`
}

func handleDiscover(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req discoverRequest
		if !decodeBody(w, r, &req) {
			return
		}
		potentials, err := env.Inference.Discover(r.Context(), req.TenantID, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, potentials)
	}
}

func handlePaths(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		maxDegrees := cfg.Paths.MaxDegrees
		if v := q.Get("max_degrees"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, resilience.InvalidInput("max_degrees: %q is not an integer", v))
				return
			}
			maxDegrees = n
		}
		minStrength := cfg.Paths.MinStrength
		if v := q.Get("min_strength"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				writeError(w, resilience.InvalidInput("min_strength: %q is not a number", v))
				return
			}
			minStrength = f
		}

		snap, err := graph.Load(r.Context(), env.Store, q.Get("tenant"))
		if err != nil {
			writeError(w, err)
			return
		}
		results, err := graph.FindPaths(snap, q.Get("from"), q.Get("to"), maxDegrees, minStrength)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

type generateRequest struct {
	TenantID string                `json:"tenant_id"`
	Query    string                `json:"query,omitempty"`
	Filters  model.GenerateFilters `json:"filters"`
}

func handleGenerate(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if !decodeBody(w, r, &req) {
			return
		}

		filters := req.Filters
		if req.Query != "" {
			parsed := env.Parser.Parse(r.Context(), req.Query)
			filters = mergeFilters(parsed, req.Filters)
		}

		result, err := env.Aggregator.Generate(r.Context(), req.TenantID, filters)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// mergeFilters overlays explicit filters on top of the parsed query; the
// caller's explicit values win.
func mergeFilters(parsed, explicit model.GenerateFilters) model.GenerateFilters {
	out := parsed
	if len(explicit.Categories) > 0 {
		out.Categories = explicit.Categories
	}
	if len(explicit.Types) > 0 {
		out.Types = explicit.Types
	}
	if explicit.Priority != "" {
		out.Priority = explicit.Priority
	}
	if explicit.MinConfidence > 0 {
		out.MinConfidence = explicit.MinConfidence
	}
	if explicit.MinImpact > 0 {
		out.MinImpact = explicit.MinImpact
	}
	if len(explicit.ContactIDs) > 0 {
		out.ContactIDs = explicit.ContactIDs
	}
	if explicit.SortBy != "" {
		out.SortBy = explicit.SortBy
	}
	if explicit.Limit > 0 {
		out.Limit = explicit.Limit
	}
	return out
}

func handleListOpportunities(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := 50
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, resilience.InvalidInput("limit: %q is not an integer", v))
				return
			}
			limit = n
		}
		suggestions, err := env.Store.ListSuggestions(r.Context(), q.Get("tenant"), store.SuggestionFilter{
			Status:   model.OpportunityStatus(q.Get("status")),
			Category: model.OpportunityCategory(q.Get("category")),
			Limit:    limit,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, suggestions)
	}
}

type statusRequest struct {
	Status model.OpportunityStatus `json:"status"`
	Actor  string                  `json:"actor,omitempty"`
	Notes  string                  `json:"notes,omitempty"`
}

func handleStatus(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if !decodeBody(w, r, &req) {
			return
		}
		id := chi.URLParam(r, "id")
		if err := env.Store.UpdateSuggestionStatus(r.Context(), id, req.Status, req.Actor, req.Notes); err != nil {
			writeError(w, err)
			return
		}
		updated, err := env.Store.GetSuggestion(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func handleGaps(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := env.GapAnalyzer.Analyze(r.Context(), r.URL.Query().Get("tenant"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, resilience.InvalidInput("decode request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch resilience.KindOf(err) {
	case resilience.KindNotFound:
		status = http.StatusNotFound
	case resilience.KindInvalidInput:
		status = http.StatusBadRequest
	case resilience.KindUpstreamUnavailable:
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port, defaults to server.port")
	rootCmd.AddCommand(serveCmd)
}
