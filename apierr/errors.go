// Package apierr defines the error taxonomy shared by every layer of the client.
// Each error carries a Kind; kinds form a small tree so errors.Is can match a
// whole family (for example every not-found flavour) with one sentinel.
package apierr

import (
	"errors"
	"fmt"
)

// Kind identifies a category of client error
type Kind string

const (
	KindGeneric Kind = "yadisk"

	// Transport failures: the request could not be sent or the response could not be read
	KindRequest          Kind = "request"
	KindConnection       Kind = "connection"
	KindTimeout          Kind = "timeout"
	KindTooManyRedirects Kind = "too_many_redirects"

	// Errors that are worth repeating the whole call for
	KindRetriable            Kind = "retriable"
	KindUnknown              Kind = "unknown"
	KindAsyncOperationFailed Kind = "async_operation_failed"
	KindInternal             Kind = "internal"
	KindBadGateway           Kind = "bad_gateway"
	KindUnavailable          Kind = "unavailable"
	KindGatewayTimeout       Kind = "gateway_timeout"

	KindBadRequest           Kind = "bad_request"
	KindFieldValidation      Kind = "field_validation"
	KindAuthorizationPending Kind = "authorization_pending"
	KindInvalidClient        Kind = "invalid_client"
	KindInvalidGrant         Kind = "invalid_grant"
	KindBadVerificationCode  Kind = "bad_verification_code"
	KindUnsupportedTokenType Kind = "unsupported_token_type"

	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
	KindPasswordRequired Kind = "password_required"

	KindNotFound          Kind = "not_found"
	KindPathNotFound      Kind = "path_not_found"
	KindOperationNotFound Kind = "operation_not_found"

	KindNotAcceptable Kind = "not_acceptable"

	KindConflict        Kind = "conflict"
	KindParentNotFound  Kind = "parent_not_found"
	KindPathExists      Kind = "path_exists"
	KindDirectoryExists Kind = "directory_exists"
	KindMD5Differ       Kind = "md5_differ"

	KindGone             Kind = "gone"
	KindPayloadTooLarge  Kind = "payload_too_large"
	KindUnsupportedMedia Kind = "unsupported_media"

	KindLocked                     Kind = "locked"
	KindResourceIsLocked           Kind = "resource_is_locked"
	KindUploadTrafficLimitExceeded Kind = "upload_traffic_limit_exceeded"

	KindTooManyRequests               Kind = "too_many_requests"
	KindResourceDownloadLimitExceeded Kind = "resource_download_limit_exceeded"

	KindInsufficientStorage Kind = "insufficient_storage"

	KindInvalidResponse   Kind = "invalid_response"
	KindWrongResourceType Kind = "wrong_resource_type"
	KindPollingTimeout    Kind = "polling_timeout"
	KindMissingField      Kind = "missing_field"
)

type kindInfo struct {
	parent    Kind
	retriable bool
}

var kinds = map[Kind]kindInfo{
	KindGeneric: {},

	KindRequest:          {parent: KindGeneric, retriable: true},
	KindConnection:       {parent: KindRequest, retriable: true},
	KindTimeout:          {parent: KindRequest, retriable: true},
	KindTooManyRedirects: {parent: KindRequest, retriable: true},

	KindRetriable:            {parent: KindGeneric, retriable: true},
	KindUnknown:              {parent: KindRetriable, retriable: true},
	KindAsyncOperationFailed: {parent: KindRetriable, retriable: true},
	KindInternal:             {parent: KindRetriable, retriable: true},
	KindBadGateway:           {parent: KindRetriable, retriable: true},
	KindUnavailable:          {parent: KindRetriable, retriable: true},
	KindGatewayTimeout:       {parent: KindRetriable, retriable: true},

	KindBadRequest:           {parent: KindGeneric},
	KindFieldValidation:      {parent: KindBadRequest},
	KindAuthorizationPending: {parent: KindBadRequest},
	KindInvalidClient:        {parent: KindBadRequest},
	KindInvalidGrant:         {parent: KindBadRequest},
	KindBadVerificationCode:  {parent: KindBadRequest},
	KindUnsupportedTokenType: {parent: KindBadRequest},

	KindUnauthorized:     {parent: KindGeneric},
	KindForbidden:        {parent: KindGeneric},
	KindPasswordRequired: {parent: KindForbidden},

	KindNotFound:          {parent: KindGeneric},
	KindPathNotFound:      {parent: KindNotFound},
	KindOperationNotFound: {parent: KindNotFound},

	KindNotAcceptable: {parent: KindGeneric},

	KindConflict:        {parent: KindGeneric},
	KindParentNotFound:  {parent: KindConflict},
	KindPathExists:      {parent: KindConflict},
	KindDirectoryExists: {parent: KindPathExists},
	KindMD5Differ:       {parent: KindConflict},

	KindGone:             {parent: KindGeneric},
	KindPayloadTooLarge:  {parent: KindGeneric},
	KindUnsupportedMedia: {parent: KindGeneric},

	// Lock conditions on a single resource clear up on their own, the generic 423 does not
	KindLocked:                     {parent: KindGeneric},
	KindResourceIsLocked:           {parent: KindLocked, retriable: true},
	KindUploadTrafficLimitExceeded: {parent: KindLocked, retriable: true},

	KindTooManyRequests:               {parent: KindGeneric},
	KindResourceDownloadLimitExceeded: {parent: KindTooManyRequests},

	KindInsufficientStorage: {parent: KindGeneric},

	KindInvalidResponse:   {parent: KindGeneric},
	KindWrongResourceType: {parent: KindGeneric},
	KindPollingTimeout:    {parent: KindGeneric},
	KindMissingField:      {parent: KindGeneric},
}

// Parent returns the parent kind, or an empty Kind for the root
func (k Kind) Parent() Kind {
	return kinds[k].parent
}

// IsA reports whether k equals ancestor or descends from it
func (k Kind) IsA(ancestor Kind) bool {
	for cur := k; cur != ""; cur = cur.Parent() {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// Retriable reports the default retriability of the kind
func (k Kind) Retriable() bool {
	return kinds[k].retriable
}

// Error is the single concrete error type produced by the client.
type Error struct {
	Kind Kind
	// Message is the composed, human-readable message
	Message string
	// Code is the vendor error token, e.g. DiskNotFoundError
	Code        string
	Description string
	StatusCode  int
	Body        []byte
	// DisableRetry overrides the kind's retriability for this occurrence
	DisableRetry bool
	Err          error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by kind, including ancestor kinds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind == "" {
		return false
	}
	return e.Kind.IsA(t.Kind)
}

// Retriable reports whether the retry engine may repeat the call that produced e
func (e *Error) Retriable() bool {
	return !e.DisableRetry && e.Kind.Retriable()
}

// Sentinels for errors.Is. Only Kind is set on them.
var (
	ErrGeneric              = &Error{Kind: KindGeneric}
	ErrRequest              = &Error{Kind: KindRequest}
	ErrConnection           = &Error{Kind: KindConnection}
	ErrTimeout              = &Error{Kind: KindTimeout}
	ErrTooManyRedirects     = &Error{Kind: KindTooManyRedirects}
	ErrRetriable            = &Error{Kind: KindRetriable}
	ErrUnknown              = &Error{Kind: KindUnknown}
	ErrAsyncOperationFailed = &Error{Kind: KindAsyncOperationFailed}
	ErrInternal             = &Error{Kind: KindInternal}
	ErrBadGateway           = &Error{Kind: KindBadGateway}
	ErrUnavailable          = &Error{Kind: KindUnavailable}
	ErrGatewayTimeout       = &Error{Kind: KindGatewayTimeout}
	ErrBadRequest           = &Error{Kind: KindBadRequest}
	ErrAuthorizationPending = &Error{Kind: KindAuthorizationPending}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrPathNotFound         = &Error{Kind: KindPathNotFound}
	ErrOperationNotFound    = &Error{Kind: KindOperationNotFound}
	ErrConflict             = &Error{Kind: KindConflict}
	ErrParentNotFound       = &Error{Kind: KindParentNotFound}
	ErrPathExists           = &Error{Kind: KindPathExists}
	ErrDirectoryExists      = &Error{Kind: KindDirectoryExists}
	ErrMD5Differ            = &Error{Kind: KindMD5Differ}
	ErrLocked               = &Error{Kind: KindLocked}
	ErrResourceIsLocked     = &Error{Kind: KindResourceIsLocked}
	ErrTooManyRequests      = &Error{Kind: KindTooManyRequests}
	ErrInsufficientStorage  = &Error{Kind: KindInsufficientStorage}
	ErrInvalidResponse      = &Error{Kind: KindInvalidResponse}
	ErrWrongResourceType    = &Error{Kind: KindWrongResourceType}
	ErrPollingTimeout       = &Error{Kind: KindPollingTimeout}
	ErrMissingField         = &Error{Kind: KindMissingField}
)

// NewRequestError creates a generic transport error
func NewRequestError(message string, wrapped error) *Error {
	return &Error{Kind: KindRequest, Message: message, Err: wrapped}
}

// NewConnectionError creates a connection error
func NewConnectionError(message string, wrapped error) *Error {
	return &Error{Kind: KindConnection, Message: message, Err: wrapped}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(message string, wrapped error) *Error {
	return &Error{Kind: KindTimeout, Message: message, Err: wrapped}
}

// NewTooManyRedirectsError creates a redirect-limit error
func NewTooManyRedirectsError(message string, wrapped error) *Error {
	return &Error{Kind: KindTooManyRedirects, Message: message, Err: wrapped}
}

// NewInvalidResponseError creates an error for a response body of an unexpected shape
func NewInvalidResponseError(message string, wrapped error) *Error {
	return &Error{Kind: KindInvalidResponse, Message: message, Err: wrapped}
}

// NewWrongResourceTypeError creates an error for a file/directory mismatch
func NewWrongResourceTypeError(message string) *Error {
	return &Error{Kind: KindWrongResourceType, Message: message}
}

// NewAsyncOperationFailedError creates the error raised when a server-side operation fails
func NewAsyncOperationFailedError(message string) *Error {
	return &Error{Kind: KindAsyncOperationFailed, Message: message}
}

// NewPollingTimeoutError creates the error raised when polling exceeds its deadline
func NewPollingTimeoutError(message string) *Error {
	return &Error{Kind: KindPollingTimeout, Message: message}
}

// NewMissingFieldError creates the error returned for a required but absent field
func NewMissingFieldError(field string) *Error {
	return &Error{Kind: KindMissingField, Message: fmt.Sprintf("field %q is missing", field)}
}

// IsKind checks if err is an *Error of the given kind or one of its descendants
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind.IsA(kind)
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return "", false
}

// Retriable reports whether err is a retriable *Error with retries not disabled
func Retriable(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retriable()
	}
	return false
}

// WithDisableRetry returns err with DisableRetry forced on. Errors that are not
// *Error are wrapped in a generic one so the flag can travel with them.
func WithDisableRetry(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		clone := *apiErr
		clone.DisableRetry = true
		if apiErr == err {
			return &clone
		}
		return &disabledRetry{outer: err, inner: &clone}
	}
	return &Error{Kind: KindGeneric, Message: err.Error(), DisableRetry: true, Err: err}
}

// disabledRetry keeps the original wrapping chain while exposing a patched *Error to errors.As.
type disabledRetry struct {
	outer error
	inner *Error
}

func (d *disabledRetry) Error() string { return d.outer.Error() }

func (d *disabledRetry) Unwrap() []error { return []error{d.inner, d.outer} }
