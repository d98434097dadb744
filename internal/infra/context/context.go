// Package context defines the request-scoped values threaded through the
// service: the trace ID and the authenticated user resolved by the session
// gate. Session identity is always carried explicitly in the context, never
// as process-global state.
package context

type contextKey string
