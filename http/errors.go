package http

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/ivknv/yadisk-go/apierr"
)

var (
	// errReadTimeout is the cancellation cause used by the read timer
	errReadTimeout = errors.New("read timed out")
	// errTooManyRedirects is returned from CheckRedirect once the limit is reached
	errTooManyRedirects = errors.New("too many redirects")
)

// convertError maps a transport failure to an apierr kind.
// parent is the caller's context, reqCtx the per-request one derived from it.
func convertError(parent, reqCtx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, errTooManyRedirects) {
		return apierr.NewTooManyRedirectsError("too many redirects", err)
	}
	if errors.Is(context.Cause(reqCtx), errReadTimeout) {
		return apierr.NewTimeoutError("read timed out", err)
	}
	// The caller gave up; retrying would only fail again
	if parent.Err() != nil {
		return err
	}
	if isTimeout(err) {
		return apierr.NewTimeoutError("request timed out", err)
	}
	if isConnectionError(err) {
		return apierr.NewConnectionError("connection failed", err)
	}
	return apierr.NewRequestError("request failed", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr):
		return true
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return true
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.EPIPE):
		return true
	}
	return false
}
