// Package httpx provides a minimal HTTP client abstraction and a bounded
// retry policy for fetching remote resources.
package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
)

// BasicClient is a simpler http.Client that only requires a Do method.
type BasicClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ BasicClient = http.DefaultClient

// WithUserAgent is a basic HTTP client that adds a User-Agent header.
type WithUserAgent struct {
	BasicClient
	UserAgent string
}

var _ BasicClient = &WithUserAgent{}

// Do adds the User-Agent header and sends the request.
func (c *WithUserAgent) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.UserAgent)
	return c.BasicClient.Do(req)
}

// Outcome classifies a response for the retry policy.
type Outcome int

const (
	// Success is any 2xx response.
	Success Outcome = iota
	// Terminal responses are final and not retried (404).
	Terminal
	// Retryable covers every other status and transport errors.
	Retryable
)

// Classify maps a status code to an Outcome.
func Classify(status int) Outcome {
	switch {
	case status >= 200 && status <= 299:
		return Success
	case status == http.StatusNotFound:
		return Terminal
	default:
		return Retryable
	}
}

// RetryPolicy bounds the attempts made for one request. Between attempts it
// waits Delay plus a random duration below Jitter.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
	Jitter   time.Duration

	// Timer paces the waits between attempts; nil means the wall clock.
	Timer retry.Timer
}

// DefaultRetryPolicy makes 5 attempts, 3s apart with up to 2s of jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 5,
		Delay:    3 * time.Second,
		Jitter:   2 * time.Second,
	}
}

func (p RetryPolicy) attempts() uint {
	if p.Attempts < 1 {
		return 1
	}
	return uint(p.Attempts)
}

func (p RetryPolicy) options(ctx context.Context) []retry.Option {
	delay := retry.FixedDelay
	if p.Jitter > 0 {
		delay = retry.CombineDelay(retry.FixedDelay, retry.RandomDelay)
	}
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(p.attempts()),
		retry.Delay(p.Delay),
		retry.MaxJitter(p.Jitter),
		retry.DelayType(delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(error) bool { return ctx.Err() == nil }),
	}
	if p.Timer != nil {
		opts = append(opts, retry.WithTimer(p.Timer))
	}
	return opts
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Attempts   int
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.status)
}

// Get fetches url, retrying per policy until the outcome is Success or
// Terminal. When attempts run out the last response is returned with a nil
// error; only a transport error on the final attempt is returned as an error.
// A cancelled context returns ctx.Err().
func Get(ctx context.Context, client BasicClient, url string, policy RetryPolicy) (*Response, error) {
	attempts := policy.attempts()

	var (
		attempt uint
		last    *Response
	)
	opts := append(policy.options(ctx), retry.OnRetry(func(n uint, err error) {
		logrus.Debugf("GET %s failed (attempt %d/%d): %v", url, n+1, attempts, err)
	}))

	resp, err := retry.DoWithData(func() (*Response, error) {
		attempt++
		resp, err := get(ctx, client, url)
		if err != nil {
			last = nil
			return nil, err
		}
		resp.Attempts = int(attempt)
		if Classify(resp.StatusCode) == Retryable {
			last = resp
			return nil, &statusError{status: resp.StatusCode}
		}
		return resp, nil
	}, opts...)
	if err == nil {
		return resp, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if last != nil {
		return last, nil
	}
	return nil, fmt.Errorf("GET %s failed after %d attempts: %w", url, attempt, err)
}

func get(ctx context.Context, client BasicClient, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
