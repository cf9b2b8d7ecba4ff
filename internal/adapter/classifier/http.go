package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/moviedata/reception/internal/domain"
	"github.com/moviedata/reception/internal/platform/retry"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	BackendHTTP = "http"

	defaultTimeout          = 30 * time.Second
	defaultMaxAttempts      = 3
	defaultInitialBackoff   = 500 * time.Millisecond
	defaultRateLimitBackoff = 5 * time.Second
	maxBackoff              = 30 * time.Second
	maxResponseBytes        = 1 << 20
)

// RubertLabels maps the raw ids of blanchefort/rubert-base-cased-sentiment.
var RubertLabels = map[string]domain.Label{
	"LABEL_0": domain.LabelNeutral,
	"LABEL_1": domain.LabelPositive,
	"LABEL_2": domain.LabelNegative,
}

// Recorder receives one observation per classification attempt.
type Recorder interface {
	ObserveRequest(backend, result string, elapsed time.Duration)
}

// BreakerRecorder is optionally implemented by a Recorder to observe circuit
// breaker transitions: 0 closed, 1 half-open, 2 open.
type BreakerRecorder interface {
	BreakerStateChanged(state float64)
}

type HTTPConfig struct {
	URL    string
	APIKey string
	// Timeout bounds a single request.
	Timeout     time.Duration
	RateLimit   float64
	Burst       int
	MaxAttempts int
	// InitialBackoff and RateLimitBackoff default to 500ms and 5s.
	InitialBackoff   time.Duration
	RateLimitBackoff time.Duration
	// Labels maps raw model labels that are not POSITIVE, NEUTRAL or
	// NEGATIVE. Defaults to RubertLabels.
	Labels     map[string]domain.Label
	HTTPClient *http.Client
	Recorder   Recorder
}

// HTTP classifies texts through a HuggingFace-style inference endpoint.
type HTTP struct {
	url      string
	apiKey   string
	labels   map[string]domain.Label
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	policy   retry.Policy
	recorder Recorder
}

var _ domain.Classifier = (*HTTP)(nil)

func NewHTTP(cfg HTTPConfig) *HTTP {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.RateLimitBackoff <= 0 {
		cfg.RateLimitBackoff = defaultRateLimitBackoff
	}
	if cfg.Labels == nil {
		cfg.Labels = RubertLabels
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = noopRecorder{}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := max(cfg.Burst, 1)

	c := &HTTP{
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
		labels:   cfg.Labels,
		client:   cfg.HTTPClient,
		limiter:  rate.NewLimiter(limit, burst),
		recorder: cfg.Recorder,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "classifier",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			if br, ok := cfg.Recorder.(BreakerRecorder); ok {
				br.BreakerStateChanged(float64(to))
			}
		},
		IsSuccessful: countsAsHealthy,
	})
	c.policy = retry.Policy{
		MaxAttempts:      cfg.MaxAttempts,
		InitialBackoff:   cfg.InitialBackoff,
		RateLimitBackoff: cfg.RateLimitBackoff,
		MaxBackoff:       maxBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Classifier request failed, retrying", "attempt", attempt, "backoff_seconds", backoff.Seconds(), "error", err)
		},
	}
	return c
}

// State reports the circuit breaker state.
func (c *HTTP) State() gobreaker.State { return c.breaker.State() }

// Ready fails while the breaker is open, when every Classify call would be
// rejected without reaching the endpoint.
func (c *HTTP) Ready(_ context.Context) error {
	if state := c.breaker.State(); state == gobreaker.StateOpen {
		return fmt.Errorf("%w: circuit breaker %s", domain.ErrClassifierUnavailable, state)
	}
	return nil
}

func (c *HTTP) Classify(ctx context.Context, text string) (domain.Verdict, error) {
	verdict, err := retry.Do(ctx, c.policy, classifyRequestError, func(ctx context.Context) (domain.Verdict, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		start := time.Now()
		v, err := c.breaker.Execute(func() (any, error) {
			return c.request(ctx, text)
		})
		c.recorder.ObserveRequest(BackendHTTP, resultLabel(err), time.Since(start))
		if err != nil {
			return nil, err
		}
		return v.(domain.Verdict), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", domain.ErrClassifierUnavailable, err)
		}
		return nil, fmt.Errorf("classify: %w", err)
	}
	return verdict, nil
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	TopK int `json:"top_k"`
}

type inferenceLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *HTTP) request(ctx context.Context, text string) (domain.Verdict, error) {
	body, err := json.Marshal(inferenceRequest{
		Inputs:     text,
		Parameters: inferenceParameters{TopK: len(domain.Labels)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(payload)),
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	return c.decodeVerdict(payload)
}

// decodeVerdict accepts both [[{label,score},...]] and [{label,score},...].
func (c *HTTP) decodeVerdict(payload []byte) (domain.Verdict, error) {
	var raw []inferenceLabel
	var nested [][]inferenceLabel
	if err := json.Unmarshal(payload, &nested); err == nil {
		if len(nested) != 1 {
			return nil, fmt.Errorf("%w: expected one result, got %d", domain.ErrInvalidVerdict, len(nested))
		}
		raw = nested[0]
	} else if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: undecodable response: %w", domain.ErrInvalidVerdict, err)
	}

	verdict := make(domain.Verdict, 0, len(raw))
	for _, r := range raw {
		label, err := c.mapLabel(r.Label)
		if err != nil {
			return nil, err
		}
		verdict = append(verdict, domain.Prediction{Label: label, Probability: r.Score})
	}
	return verdict, nil
}

func (c *HTTP) mapLabel(raw string) (domain.Label, error) {
	if label, err := domain.ParseLabel(raw); err == nil {
		return label, nil
	}
	if label, ok := c.labels[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return label, nil
	}
	return "", fmt.Errorf("%w: unknown label %q", domain.ErrInvalidVerdict, raw)
}

// StatusError is a non-200 response from the inference endpoint.
type StatusError struct {
	StatusCode int
	Body       string
	retryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inference endpoint returned %d", e.StatusCode)
	}
	return fmt.Sprintf("inference endpoint returned %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) RetryAfter() time.Duration { return e.retryAfter }

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func classifyRequestError(err error) retry.Action {
	if statusErr, ok := errors.AsType[*StatusError](err); ok {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return retry.After
		case statusErr.StatusCode >= 500:
			return retry.Retry
		default:
			return retry.Stop
		}
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retry.Stop
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return retry.Stop
	case errors.Is(err, domain.ErrInvalidVerdict):
		return retry.Stop
	default:
		return retry.Retry
	}
}

// countsAsHealthy keeps caller-side failures from tripping the breaker.
func countsAsHealthy(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrInvalidVerdict) {
		return true
	}
	if statusErr, ok := errors.AsType[*StatusError](err); ok {
		return statusErr.StatusCode < 500 && statusErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, domain.ErrInvalidVerdict):
		return "invalid"
	default:
		return "error"
	}
}

type noopRecorder struct{}

func (noopRecorder) ObserveRequest(string, string, time.Duration) {}
