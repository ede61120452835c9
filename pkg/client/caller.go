package client

import (
	"time"

	"roomline/pkg/breaker"
	apperrors "roomline/pkg/errors"
	"roomline/pkg/logger"
)

// Caller is the single choke point for outbound inter-service calls. Each
// call consults the target's circuit breaker, retries transport failures
// at most once, and classifies the result before the breaker sees it:
// transport errors and 5xx responses count as breaker failures, while 4xx
// responses are valid application-level answers and count as successes.
type Caller struct {
	registry   *breaker.Registry
	retries    int
	retryDelay time.Duration
	log        *logger.Logger
}

type CallerOptions struct {
	Retries    int
	RetryDelay time.Duration
}

func NewCaller(registry *breaker.Registry, opts CallerOptions, log *logger.Logger) *Caller {
	if opts.Retries > 1 {
		opts.Retries = 1
	}
	return &Caller{
		registry:   registry,
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
		log:        log,
	}
}

// Do runs fn guarded by the breaker for target. When the breaker rejects,
// fn never runs and the call fails with CIRCUIT_OPEN.
func (c *Caller) Do(target string, fn func() (*Response, error)) (*Response, error) {
	b := c.registry.Get(target)

	if err := b.Allow(); err != nil {
		c.log.Warn("Downstream call rejected by circuit breaker", "target", target)
		return nil, err
	}

	resp, err := c.attempt(target, fn)
	if err != nil {
		// Retries are exhausted before the breaker hears about the
		// failure, so one inbound call counts at most once.
		b.OnFailure()
		return nil, apperrors.DownstreamUnavailable(target, err)
	}

	if resp.StatusCode >= 500 {
		b.OnFailure()
		c.log.Warn("Downstream returned server error",
			"target", target,
			"status", resp.StatusCode,
		)
		return nil, apperrors.DownstreamError(target, resp.StatusCode)
	}

	b.OnSuccess()
	return resp, nil
}

// attempt runs fn, retrying transport-level failures only.
func (c *Caller) attempt(target string, fn func() (*Response, error)) (*Response, error) {
	resp, err := fn()
	if err == nil {
		return resp, nil
	}

	for i := 0; i < c.retries; i++ {
		c.log.Debug("Retrying downstream call after transport failure",
			"target", target,
			"attempt", i+2,
			"error", err,
		)
		if c.retryDelay > 0 {
			time.Sleep(c.retryDelay)
		}
		resp, err = fn()
		if err == nil {
			return resp, nil
		}
	}

	return nil, err
}
