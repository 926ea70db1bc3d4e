package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrForbidden is returned when the API rejects the credential
	ErrForbidden = errors.New("gemini api returned 403 forbidden")
	// ErrRetriesExhausted is returned when every attempt failed
	ErrRetriesExhausted = errors.New("gemini api retries exhausted")
	// ErrEmptyBody is returned when every attempt produced an empty body
	ErrEmptyBody = errors.New("gemini api returned an empty body")
)

// OutcomeKind tags the result of a call or a single attempt
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeForbidden
	OutcomeRetryableError
	OutcomeExhaustedRetries
	OutcomeEmptyBody
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeRetryableError:
		return "retryable_error"
	case OutcomeExhaustedRetries:
		return "exhausted_retries"
	case OutcomeEmptyBody:
		return "empty_body"
	}
	return "unknown"
}

// Outcome is the result of RetryPolicy.Execute
type Outcome struct {
	Kind       OutcomeKind
	Body       []byte
	StatusCode int
	Attempts   int
	Err        error
}

// AsError maps a non-success outcome to a sentinel error
func (o Outcome) AsError() error {
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeForbidden:
		return ErrForbidden
	case OutcomeEmptyBody:
		return ErrEmptyBody
	}
	if o.Err != nil {
		return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, o.Attempts, o.Err)
	}
	return fmt.Errorf("%w after %d attempts", ErrRetriesExhausted, o.Attempts)
}

// AttemptFunc observes each attempt, e.g. for logging
type AttemptFunc func(attempt int, kind OutcomeKind, resp *Response, err error)

// RetryPolicy runs a call up to MaxAttempts times with linear backoff
// (attempt × BaseDelay). A 403 stops immediately; a 2xx response with a
// non-blank body is success; anything else is retried.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Sleep waits between attempts; nil uses a timer
	Sleep func(ctx context.Context, d time.Duration) error
}

// Execute runs req through t under the policy
func (p RetryPolicy) Execute(ctx context.Context, t Transport, req Request, observe AttemptFunc) Outcome {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	last := Outcome{Kind: OutcomeExhaustedRetries}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := t.Post(ctx, req)
		kind, err := classify(resp, err)
		if observe != nil {
			observe(attempt, kind, resp, err)
		}

		switch kind {
		case OutcomeSuccess:
			return Outcome{Kind: OutcomeSuccess, Body: resp.Body, StatusCode: resp.StatusCode, Attempts: attempt}
		case OutcomeForbidden:
			return Outcome{Kind: OutcomeForbidden, StatusCode: resp.StatusCode, Attempts: attempt}
		case OutcomeEmptyBody:
			last = Outcome{Kind: OutcomeEmptyBody, StatusCode: resp.StatusCode, Attempts: attempt}
		default:
			last = Outcome{Kind: OutcomeExhaustedRetries, Attempts: attempt, Err: err}
			if resp != nil {
				last.StatusCode = resp.StatusCode
			}
		}

		if attempt < maxAttempts {
			if serr := p.sleep(ctx, time.Duration(attempt)*p.BaseDelay); serr != nil {
				last.Err = serr
				return last
			}
		}
	}
	return last
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func classify(resp *Response, err error) (OutcomeKind, error) {
	if err != nil {
		return OutcomeRetryableError, err
	}
	if resp.StatusCode == http.StatusForbidden {
		return OutcomeForbidden, ErrForbidden
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return OutcomeRetryableError, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return OutcomeEmptyBody, ErrEmptyBody
	}
	return OutcomeSuccess, nil
}
