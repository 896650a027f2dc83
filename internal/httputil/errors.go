// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Sentinel errors for the two failure classes an adapter may report.
var (
	// ErrRateLimited marks provider-signalled throttling.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable marks transport failures and non-2xx responses.
	ErrUnavailable = errors.New("unavailable")
)

// Kind classifies a ProviderError.
type Kind int

const (
	KindUnavailable Kind = iota
	KindRateLimited
)

func (k Kind) String() string {
	if k == KindRateLimited {
		return "rate_limited"
	}
	return "unavailable"
}

// ProviderError is the typed failure returned across every adapter boundary.
// It matches ErrRateLimited or ErrUnavailable with errors.Is, and also
// unwraps to the underlying cause.
type ProviderError struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Provider, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes both the class sentinel and the cause.
func (e *ProviderError) Unwrap() []error {
	sentinel := ErrUnavailable
	if e.Kind == KindRateLimited {
		sentinel = ErrRateLimited
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// RateLimited builds a KindRateLimited error.
func RateLimited(provider string, status int, cause error) error {
	return &ProviderError{Provider: provider, Kind: KindRateLimited, Status: status, Err: cause}
}

// Unavailable builds a KindUnavailable error.
func Unavailable(provider string, status int, cause error) error {
	return &ProviderError{Provider: provider, Kind: KindUnavailable, Status: status, Err: cause}
}

// IsRateLimited reports whether err carries the RateLimited class.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// StatusOf returns the HTTP status attached to err, or 0.
func StatusOf(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Status
	}
	return 0
}

const maxExcerpt = 512

// CheckResponse classifies a response: nil for 2xx, RateLimited for 429,
// Unavailable otherwise. The body is read (bounded) for the error message
// but not closed; the caller still owns it.
func CheckResponse(provider string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	cause := fmt.Errorf("%s", BodyExcerpt(resp))
	if resp.StatusCode == http.StatusTooManyRequests {
		return RateLimited(provider, resp.StatusCode, cause)
	}
	return Unavailable(provider, resp.StatusCode, cause)
}

// BodyExcerpt reads at most 512 bytes of the body for diagnostics.
func BodyExcerpt(resp *http.Response) string {
	if resp.Body == nil {
		return http.StatusText(resp.StatusCode)
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxExcerpt))
	s := strings.TrimSpace(string(data))
	if s == "" {
		return http.StatusText(resp.StatusCode)
	}
	return s
}
