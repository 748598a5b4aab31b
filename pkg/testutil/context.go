// Package testutil holds shared test helpers: authenticated request
// construction and (behind the integration tag) container management.
package testutil

import (
	"net/http"
	"time"

	id "admitly/pkg/domain"
	"admitly/pkg/requestcontext"
)

// WithCaller adds an authenticated caller to the request context, simulating
// what the auth middleware does for valid tokens.
func WithCaller(req *http.Request, caller id.Caller) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// WithTime pins the request-scoped time, simulating the request-time
// middleware for tests that assert on timestamps.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
