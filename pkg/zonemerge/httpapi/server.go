// Package httpapi exposes the merge engine over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/benjaminschreck/go-zonemerge/pkg/zonemerge"
)

// Server serves merge requests with a single engine.
type Server struct {
	engine *zonemerge.Engine
	logger *zonemerge.Logger
	router chi.Router
}

// NewServer builds the router for engine.
func NewServer(engine *zonemerge.Engine) *Server {
	s := &Server{
		engine: engine,
		logger: engine.Logger(),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/merge", s.handleMerge)
		r.Post("/merge/batch", s.handleBatch)
		r.Post("/parse", s.handleParse)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(zonemerge.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  chimw.GetReqID(r.Context()),
		}).Debug("request")
	})
}

func (s *Server) bodyLimit() int64 {
	limit := s.engine.Config().MaxTemplateSize
	if limit <= 0 {
		return 0
	}
	// Room for the data document and JSON framing around the template.
	return 2 * limit
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type mergeRequest struct {
	Template string          `json:"template"`
	Data     json.RawMessage `json:"data"`
}

type mergeResponse struct {
	Output string `json:"output"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[mergeRequest](w, r, s.bodyLimit())
	if !ok {
		return
	}

	tmpl, err := s.engine.Parse(req.Template)
	if err != nil {
		writeMergeError(w, s.logger, err)
		return
	}
	in, err := s.decodeData(req.Data)
	if err != nil {
		writeMergeError(w, s.logger, err)
		return
	}
	out, err := s.engine.Merge(tmpl, in)
	if err != nil {
		writeMergeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mergeResponse{Output: out})
}

type batchRequest struct {
	Template string            `json:"template"`
	Items    []json.RawMessage `json:"items"`
}

type batchItem struct {
	ID     string `json:"id"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchItem `json:"results"`
	Failed  int         `json:"failed"`
}

// handleBatch merges several data documents against one template. Invalid
// items are reported per item; only a bad template fails the whole request.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[batchRequest](w, r, s.bodyLimit())
	if !ok {
		return
	}

	tmpl, err := s.engine.Parse(req.Template)
	if err != nil {
		writeMergeError(w, s.logger, err)
		return
	}

	jobs := make([]zonemerge.Job, len(req.Items))
	decodeErrs := make([]error, len(req.Items))
	for i, raw := range req.Items {
		in, err := s.decodeData(raw)
		if err != nil {
			decodeErrs[i] = err
			continue
		}
		jobs[i] = zonemerge.Job{Input: in}
	}

	results, err := s.engine.MergeAll(r.Context(), tmpl, jobs)
	if err != nil && r.Context().Err() != nil {
		return
	}

	resp := batchResponse{Results: make([]batchItem, len(results))}
	for i, res := range results {
		item := batchItem{ID: res.JobID, Output: res.Output}
		switch {
		case decodeErrs[i] != nil:
			item.Output = ""
			item.Error = decodeErrs[i].Error()
		case res.Err != nil:
			item.Error = res.Err.Error()
		}
		if item.Error != "" {
			resp.Failed++
		}
		resp.Results[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}

type parseRequest struct {
	Template string `json:"template"`
}

type parseResponse struct {
	Zones        []zonemerge.ZoneInfo `json:"zones"`
	Placeholders []string             `json:"placeholders"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[parseRequest](w, r, s.bodyLimit())
	if !ok {
		return
	}

	tmpl, err := s.engine.Parse(req.Template)
	if err != nil {
		writeMergeError(w, s.logger, err)
		return
	}

	resp := parseResponse{
		Zones:        tmpl.Zones(),
		Placeholders: tmpl.Placeholders(),
	}
	if resp.Zones == nil {
		resp.Zones = []zonemerge.ZoneInfo{}
	}
	if resp.Placeholders == nil {
		resp.Placeholders = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeData validates a raw data document. A missing document is an empty
// input object, not an error.
func (s *Server) decodeData(raw json.RawMessage) (*zonemerge.MergeInput, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return zonemerge.NewMergeInput(), nil
	}
	return s.engine.ReadInput(bytes.NewReader(raw))
}
