package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"agentic_underwriting/pkg/core/llm"
)

// Default generation parameters for panel calls.
const (
	defaultCallTimeout = 240 * time.Second
	defaultTemperature = 0.1
	defaultMaxTokens   = 4000
)

// Caller abstracts one agent invocation so the orchestrator can run against
// a fake in tests.
type Caller interface {
	Call(ctx context.Context, spec Spec, userContext string) (string, error)
}

// Runner invokes agents through the provider manager behind a circuit
// breaker, so a failing upstream degrades fast instead of stalling every
// workflow for the full timeout.
type Runner struct {
	Manager *llm.Manager
	Timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

var _ Caller = (*Runner)(nil)

// NewRunner builds a Runner around the provider manager. The breaker opens
// after five consecutive failures and probes again after 30 seconds.
func NewRunner(manager *llm.Manager) *Runner {
	return &Runner{
		Manager: manager,
		Timeout: defaultCallTimeout,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "llm",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).
					Str("from", from.String()).Str("to", to.String()).
					Msg("circuit breaker state change")
			},
		}),
	}
}

// Call runs one agent with the shared case context, checking the response
// carries the agent's terminating sentinel.
func (r *Runner) Call(ctx context.Context, spec Spec, userContext string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.Manager.ExecutePrompt(callCtx, spec.Key, userContext, spec.SystemPrompt, map[string]interface{}{
			"temperature": defaultTemperature,
			"max_tokens":  defaultMaxTokens,
		})
	})
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", spec.Key, err)
	}

	response, _ := result.(string)
	if strings.TrimSpace(response) == "" {
		return "", fmt.Errorf("agent %s: empty response", spec.Key)
	}
	if spec.Sentinel != "" && !strings.Contains(response, spec.Sentinel) {
		log.Warn().Str("agent", spec.Key).Dur("elapsed", time.Since(started)).
			Msg("response missing terminating sentinel")
	}
	log.Debug().Str("agent", spec.Key).Int("response_length", len(response)).
		Dur("elapsed", time.Since(started)).Msg("agent call complete")
	return response, nil
}
