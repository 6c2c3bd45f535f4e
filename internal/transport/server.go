// Package transport exposes the Checker over a Unix-socket HTTP+JSON API,
// letting cmd/ser serve run as a long-lived daemon that accepts checks
// over a socket.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sercheck/ser/internal/logger"
	"github.com/sercheck/ser/internal/nsimport"
	"github.com/sercheck/ser/internal/orchestrator"
)

type Server struct {
	checker    *orchestrator.Checker
	socketPath string
}

func NewServer(c *orchestrator.Checker, socketPath string) *Server {
	return &Server{checker: c, socketPath: socketPath}
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen unix %s: %w", s.socketPath, err)
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	srv := &http.Server{Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
		os.Remove(s.socketPath)
		return nil
	case err := <-errCh:
		os.Remove(s.socketPath)
		return err
	}
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /check", s.handleCheck)
	mux.HandleFunc("POST /check/batch", s.handleCheckBatch)
	mux.HandleFunc("GET /health", s.handleHealth)
}

// Request/response types

type checkRequest struct {
	// Source holds .ser program text. Exactly one of Source or System
	// must be set.
	Source string `json:"source,omitempty"`
	// System holds a JSON network-system document (package nsimport),
	// used when the caller already has a compiled-form system rather
	// than surface syntax.
	System *nsimport.Document `json:"system,omitempty"`
}

type certificateResponse struct {
	Witness      map[string]int `json:"witness"`
	ObligationOK bool           `json:"obligation_ok"`
	RawProof     string         `json:"raw_proof"`
}

type checkResponse struct {
	Verdict     string               `json:"verdict"`
	Certificate *certificateResponse `json:"certificate,omitempty"`
	ElapsedMS   int64                `json:"elapsed_ms"`
	Error       string               `json:"error,omitempty"`
}

type batchCheckRequest struct {
	Requests []checkRequest `json:"requests"`
}

type batchCheckResponse struct {
	Results []checkResponse `json:"results"`
}

func toCheckResponse(dec orchestrator.Decision) checkResponse {
	resp := checkResponse{
		Verdict:   dec.Verdict.String(),
		ElapsedMS: dec.Elapsed.Milliseconds(),
	}
	if dec.Certificate != nil {
		resp.Certificate = &certificateResponse{
			Witness:      dec.Certificate.Witness,
			ObligationOK: dec.Certificate.ObligationOK,
			RawProof:     dec.Certificate.RawProof,
		}
	}
	return resp
}

// runOne executes a single checkRequest, translating either a parse error
// or a decision procedure error into an error-shaped checkResponse rather
// than failing the whole call — used by both the single and batch routes
// so their per-request semantics stay identical.
func (s *Server) runOne(ctx context.Context, req checkRequest) checkResponse {
	switch {
	case req.Source != "":
		dec, err := s.checker.Check(ctx, req.Source)
		if err != nil {
			return checkResponse{Error: err.Error()}
		}
		return toCheckResponse(dec)
	case req.System != nil:
		sys, err := req.System.ToSystem()
		if err != nil {
			return checkResponse{Error: fmt.Sprintf("decode system: %v", err)}
		}
		dec, err := s.checker.CheckSystem(ctx, sys)
		if err != nil {
			return checkResponse{Error: err.Error()}
		}
		return toCheckResponse(dec)
	default:
		return checkResponse{Error: "request must set either source or system"}
	}
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	resp := s.runOne(r.Context(), req)
	if resp.Error != "" && resp.Verdict == "" {
		writeError(w, http.StatusUnprocessableEntity, resp.Error)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCheckBatch runs every request in the batch concurrently via
// errgroup, with no concurrency cap: neither the handler nor the Checker
// bounds how many oracle/SMT subprocesses run at once.
func (s *Server) handleCheckBatch(w http.ResponseWriter, r *http.Request) {
	var req batchCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	results := make([]checkResponse, len(req.Requests))
	g, ctx := errgroup.WithContext(r.Context())
	for i, one := range req.Requests {
		i, one := i, one
		g.Go(func() error {
			results[i] = s.runOne(ctx, one)
			return nil
		})
	}
	// Errors are carried per-result, not via the group's return value —
	// runOne never returns a non-nil error, so Wait only ever reports
	// ctx cancellation.
	if err := g.Wait(); err != nil {
		logger.Warn("batch check interrupted", "error", err)
	}

	writeJSON(w, http.StatusOK, batchCheckResponse{Results: results})
}

type healthResponse struct {
	Oracle string `json:"oracle"`
	SMT    string `json:"smt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := healthResponse{Oracle: "ok", SMT: "ok"}
	healthy := true
	if err := s.checker.Oracle.Health(ctx); err != nil {
		resp.Oracle = err.Error()
		healthy = false
	}
	if err := s.checker.SMT.Health(ctx); err != nil {
		resp.SMT = err.Error()
		healthy = false
	}
	if !healthy {
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Helpers

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
