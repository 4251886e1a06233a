// pkg/agent/server.go

// Package agent runs the trusted verification endpoint on a provisioning
// target. A hermes on the operator's machine asks it over plain HTTP what
// credentials the target holds; the agent answers from in-process checks, so
// no transport secret is transmitted or stored on either side.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/verify"
)

const shutdownGrace = 5 * time.Second

// Server answers credential verification requests for this host.
type Server struct {
	listen  string
	det     *credentials.Detector
	run     execute.Runner
	timeout time.Duration
	started time.Time
}

// NewServer creates an agent bound to listen, probing with the real command
// runner.
func NewServer(listen string, det *credentials.Detector) *Server {
	return NewServerWithRunner(listen, det, execute.Run)
}

// NewServerWithRunner injects the command runner so tests can answer probes
// without touching the host.
func NewServerWithRunner(listen string, det *credentials.Detector, run execute.Runner) *Server {
	return &Server{
		listen:  listen,
		det:     det,
		run:     run,
		timeout: verify.DefaultProbeTimeout,
		started: time.Now(),
	}
}

// Router builds the HTTP surface: GET /v1/health for reachability and
// GET /v1/tokens/verify for the per-tool credential report.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID)
	r.HandleFunc("/v1/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/tokens/verify", s.handleVerifyTokens).Methods(http.MethodGet)
	return r
}

// Serve listens until rc.Ctx is cancelled, then drains in-flight requests
// before returning.
func (s *Server) Serve(rc *hermes_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)

	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()

	logger.Info("✅ Agent listening",
		zap.String("listen", s.listen),
		zap.Int("tools", len(verify.Probes)))

	select {
	case err := <-errs:
		// Shutdown has not run yet, so this is a bind or accept failure,
		// never ErrServerClosed.
		return hermes_err.NewTransportError(
			fmt.Sprintf("agent server on %s stopped", s.listen), err,
			"Check that nothing else holds the port",
			"Pick another address with --listen or serve.listen")
	case <-rc.Ctx.Done():
	}

	logger.Info("Agent shutting down", zap.String("listen", s.listen))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return cerr.Wrap(err, "agent shutdown")
	}
	return nil
}

type healthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
	})
}

// handleVerifyTokens runs the probe table against this host. The response is
// the same aggregate the ssh path assembles, so both transports render
// identically on the operator's side.
func (s *Server) handleVerifyTokens(w http.ResponseWriter, r *http.Request) {
	rc := hermes_io.NewContext(r.Context(), "agent")
	var err error
	defer rc.End(&err)

	statuses := verify.RunProbes(rc.Ctx, s.timeout, func(ctx context.Context, p verify.Probe) verify.TokenStatus {
		status := verify.ProbeLocal(ctx, s.run, p)
		s.attachAccount(rc, &status)
		return status
	})

	writeJSON(rc.Ctx, w, http.StatusOK, verify.RemoteTokenVerification{
		Statuses:  statuses,
		CheckedAt: time.Now().UTC(),
	})
}

// attachAccount adds the identity the tool's own config records. Only the
// agent can read these files; the ssh transport leaves Account empty.
func (s *Server) attachAccount(rc *hermes_io.RuntimeContext, status *verify.TokenStatus) {
	if !status.Authenticated {
		return
	}
	switch status.ToolID {
	case credentials.ToolGitHub:
		if account, ok := s.det.GitHubAccount(rc); ok {
			status.Account = account
		}
	case credentials.ToolClaude:
		if account, ok := s.det.ClaudeAccount(rc); ok {
			status.Account = account
		}
	}
}

// requestID tags every response, echoing the caller's ID when one arrives.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		otelzap.Ctx(ctx).Warn("Failed to write response", zap.Error(err))
	}
}
