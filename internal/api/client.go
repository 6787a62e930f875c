package api

import (
	"bytes"
	"context"
	"math"
	"strconv"
	"sync"
	"time"
	"valorant-analytics/internal/config"
	"valorant-analytics/internal/constants"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// HDevClient talks to the HenrikDev Valorant API.
//
// All outbound requests of one client go through a single slot: at most one
// request is in flight and consecutive requests are at least Spacing apart.
// Clients do not coordinate with each other.
type HDevClient struct {
	baseURL string
	apiKey  string
	client  *fasthttp.Client
	logger  zerolog.Logger

	regions      []string
	spacing      time.Duration
	retries      int
	initialDelay time.Duration
	multiplier   float64

	// slot is the single request slot; lastRequest is only touched while holding it.
	slot        chan struct{}
	lastRequest time.Time

	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Bucket    string `json:"bucket"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

type Options struct {
	BaseURL      string
	APIKey       string
	Regions      []string
	Spacing      time.Duration
	Retries      int
	InitialDelay time.Duration
	Multiplier   float64
	Timeout      time.Duration
}

func DefaultOptions() Options {
	return Options{
		BaseURL:      "https://api.henrikdev.xyz",
		Regions:      []string{"eu", "na", "ap", "kr", "latam", "br"},
		Spacing:      2 * time.Second,
		Retries:      3,
		InitialDelay: time.Second,
		Multiplier:   2.0,
		Timeout:      constants.ExternalAPITimeout,
	}
}

func NewHDevClient(cfg *config.Config, logger zerolog.Logger) *HDevClient {
	opts := DefaultOptions()
	opts.BaseURL = cfg.HDevBaseURL
	opts.APIKey = cfg.HDevAPIKey
	opts.Regions = cfg.Regions
	opts.Spacing = cfg.RequestSpacing
	opts.Retries = cfg.RetryCount
	opts.InitialDelay = cfg.RetryInitialDelay
	opts.Multiplier = cfg.RetryMultiplier
	return New(opts, logger)
}

func New(opts Options, logger zerolog.Logger) *HDevClient {
	def := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if len(opts.Regions) == 0 {
		opts.Regions = def.Regions
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = def.Multiplier
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	return &HDevClient{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         opts.Timeout,
			WriteTimeout:        opts.Timeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger:       logger.With().Str("component", "hdev").Logger(),
		regions:      opts.Regions,
		spacing:      opts.Spacing,
		retries:      opts.Retries,
		initialDelay: opts.InitialDelay,
		multiplier:   opts.Multiplier,
		slot:         make(chan struct{}, 1),
		rateLimit: RateLimitInfo{
			Limit:     90,
			Remaining: 90,
			Reset:     60,
			UpdatedAt: time.Now(),
		},
	}
}

func (c *HDevClient) RateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *HDevClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if bucket := string(resp.Header.Peek("X-Ratelimit-Bucket")); bucket != "" {
		c.rateLimit.Bucket = bucket
	}
	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// backoff returns the delay before retry number attempt (0-based).
func (c *HDevClient) backoff(attempt int) time.Duration {
	return time.Duration(float64(c.initialDelay) * math.Pow(c.multiplier, float64(attempt)))
}

// get performs a GET with the retry policy. 404 and empty bodies yield
// ErrNotFound, 429/5xx/transport failures are retried, other statuses fail
// permanently.
func (c *HDevClient) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	var lastErr error
	lastStatus := 0

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt - 1)
			upstreamRetries.WithLabelValues(endpoint).Inc()
			c.logger.Debug().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Dur("delay", delay).
				Err(lastErr).
				Msg("retrying upstream request")
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		status, body, err := c.send(ctx, endpoint, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			lastStatus = 0
			continue
		}

		switch {
		case status == fasthttp.StatusOK:
			if len(bytes.TrimSpace(body)) == 0 {
				return nil, ErrNotFound
			}
			return body, nil
		case status == fasthttp.StatusNotFound:
			return nil, ErrNotFound
		case status == fasthttp.StatusTooManyRequests || status >= 500:
			lastErr = &statusError{code: status}
			lastStatus = status
		default:
			return nil, &PermanentError{
				Endpoint:   endpoint,
				StatusCode: status,
				Message:    "request rejected",
			}
		}
	}

	c.logger.Warn().
		Str("endpoint", endpoint).
		Int("attempts", c.retries+1).
		Int("status", lastStatus).
		Err(lastErr).
		Msg("upstream retries exhausted")

	return nil, &TransientError{
		Endpoint:   endpoint,
		StatusCode: lastStatus,
		Attempts:   c.retries + 1,
		Err:        lastErr,
	}
}

// send issues exactly one request while holding the request slot. The slot
// is released only once the request has finished, even when the caller gave
// up on it earlier.
func (c *HDevClient) send(ctx context.Context, endpoint, url string) (int, []byte, error) {
	if err := c.acquire(ctx); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", c.apiKey)

	start := time.Now()
	c.lastRequest = start

	done := make(chan error, 1)
	go func() {
		if deadline, ok := ctx.Deadline(); ok {
			done <- c.client.DoDeadline(req, resp, deadline)
			return
		}
		done <- c.client.Do(req, resp)
	}()

	select {
	case <-ctx.Done():
		// the request goroutine still owns req/resp and the slot
		go func() {
			<-done
			fasthttp.ReleaseRequest(req)
			fasthttp.ReleaseResponse(resp)
			c.release()
		}()
		upstreamRequests.WithLabelValues(endpoint, "canceled").Inc()
		return 0, nil, ctx.Err()
	case err := <-done:
		defer c.release()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		upstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if err != nil {
			upstreamRequests.WithLabelValues(endpoint, "error").Inc()
			c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("upstream transport error")
			return 0, nil, err
		}

		c.updateRateLimit(resp)
		status := resp.StatusCode()
		upstreamRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()

		body := append([]byte(nil), resp.Body()...)
		return status, body, nil
	}
}

// acquire takes the request slot and waits out the remaining spacing since
// the previous request.
func (c *HDevClient) acquire(ctx context.Context) error {
	start := time.Now()
	select {
	case c.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	if !c.lastRequest.IsZero() {
		if wait := c.spacing - time.Since(c.lastRequest); wait > 0 {
			if err := sleep(ctx, wait); err != nil {
				c.release()
				return err
			}
		}
	}
	upstreamThrottleWait.Observe(time.Since(start).Seconds())
	return nil
}

func (c *HDevClient) release() {
	<-c.slot
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
