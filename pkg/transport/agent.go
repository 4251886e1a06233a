// pkg/transport/agent.go

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/httpclient"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/verify"
)

// Agent verifies tokens through a hermes agent already running on the
// target host. Preferred over ssh when available: no transport secret
// leaves this machine, the agent runs the probes in-process.
type Agent struct {
	BaseURL string
	client  *http.Client
}

// NewAgent creates an agent transport for the given base URL.
func NewAgent(baseURL string) *Agent {
	return &Agent{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  httpclient.DefaultClient(),
	}
}

// NewAgentWithClient creates an agent transport with an injected client.
func NewAgentWithClient(baseURL string, client *http.Client) *Agent {
	return &Agent{BaseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (a *Agent) Name() string { return "agent" }

// Ping hits the agent's health endpoint and reports round-trip latency.
func (a *Agent) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	var health struct {
		Status string `json:"status"`
	}
	err := a.getJSON(ctx, "/v1/health", &health)
	latency := time.Since(start)

	if err != nil {
		return latency, hermes_err.NewTransportError(
			fmt.Sprintf("agent at %s is unreachable", a.BaseURL), err,
			"Check that the agent is running on the target: hermes serve",
			"Verify the URL in remote.agent-url")
	}
	if health.Status != "ok" {
		return latency, hermes_err.NewTransportError(
			fmt.Sprintf("agent at %s reports status %q", a.BaseURL, health.Status), nil)
	}
	return latency, nil
}

// VerifyTokens asks the agent to run the probes on its own host. A failed
// request folds into per-tool statuses so callers always get the aggregate.
func (a *Agent) VerifyTokens(ctx context.Context) ([]verify.TokenStatus, error) {
	var payload struct {
		Statuses []verify.TokenStatus `json:"statuses"`
	}
	if err := a.getJSON(ctx, "/v1/tokens/verify", &payload); err != nil {
		reason := fmt.Sprintf("agent request failed: %v", err)
		now := time.Now().UTC()
		statuses := make([]verify.TokenStatus, 0, len(verify.Probes))
		for _, p := range verify.Probes {
			statuses = append(statuses, verify.TokenStatus{
				ToolID:    p.ToolID,
				CheckedAt: now,
				Error:     reason,
			})
		}
		return statuses, nil
	}
	return payload.Statuses, nil
}

// getJSON performs a GET and decodes the body. Unknown fields are ignored:
// a newer agent may send more than this build knows about.
func (a *Agent) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return cerr.Newf("agent returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
