// Package http is the transport boundary of the client: a Session sends one
// HTTP request and returns one Response, nothing more.
//
// Sessions do not retry. Retrying is the job of package retry, one layer up,
// which decides from the errors returned here.
//
// Errors
//   - Transport failures are returned as *apierr.Error of kind Connection,
//     Timeout, TooManyRedirects or Request, all of which are retriable.
//   - Cancellation of the caller's context is returned unchanged.
//   - Non-2xx statuses are not errors at this layer.
//
// Timeouts
//   - Timeout.Connect bounds dialing.
//   - Timeout.Read bounds every wait for data from the server: the response
//     headers and each body read. The timer restarts after each successful read.
//
// Telemetry
//   - Each Send produces a client span, a duration histogram sample and a
//     request counter increment, and carries an X-Request-ID header.
package http
