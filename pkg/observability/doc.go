/*
Package observability exposes AgriMind's Prometheus metrics.

Invocation metrics are fed by domain.InvocationHooks, so any surface that
runs actions through the invoker is measured the same way. HTTP request
metrics are recorded by the server middleware.
*/
package observability
