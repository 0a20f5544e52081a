package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		status    int
		token     string
		kind      Kind
		retriable bool
	}{
		{400, "", KindBadRequest, false},
		{400, "FieldValidationError", KindFieldValidation, false},
		{400, "authorization_pending", KindAuthorizationPending, false},
		{400, "invalid_client", KindInvalidClient, false},
		{400, "invalid_grant", KindInvalidGrant, false},
		{400, "bad_verification_code", KindBadVerificationCode, false},
		{400, "unsupported_token_type", KindUnsupportedTokenType, false},
		{401, "", KindUnauthorized, false},
		{403, "", KindForbidden, false},
		{403, "DiskSymlinkPasswordRequiredError", KindPasswordRequired, false},
		{404, "", KindNotFound, false},
		{404, "DiskNotFoundError", KindPathNotFound, false},
		{404, "DiskOperationNotFoundError", KindOperationNotFound, false},
		{406, "", KindNotAcceptable, false},
		{409, "", KindConflict, false},
		{409, "DiskPathDoesntExistsError", KindParentNotFound, false},
		{409, "DiskPathPointsToExistentDirectoryError", KindDirectoryExists, false},
		{409, "DiskResourceAlreadyExistsError", KindPathExists, false},
		{409, "MD5DifferError", KindMD5Differ, false},
		{410, "", KindGone, false},
		{413, "", KindPayloadTooLarge, false},
		{415, "", KindUnsupportedMedia, false},
		{423, "", KindLocked, false},
		{423, "DiskResourceLockedError", KindResourceIsLocked, true},
		{423, "DiskUploadTrafficLimitExceeded", KindUploadTrafficLimitExceeded, true},
		{429, "", KindTooManyRequests, false},
		{429, "DiskResourceDownloadLimitExceededError", KindResourceDownloadLimitExceeded, false},
		{500, "", KindInternal, true},
		{502, "", KindBadGateway, true},
		{503, "", KindUnavailable, true},
		{504, "", KindGatewayTimeout, true},
		{507, "", KindInsufficientStorage, false},
		{418, "", KindUnknown, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", tt.status, tt.token), func(t *testing.T) {
			err := Classify(tt.status, &Payload{Error: tt.token})
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.retriable, err.Retriable())
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Contains(t, err.Error(), fmt.Sprint(tt.status))
		})
	}
}

func TestClassifyEveryTableEntry(t *testing.T) {
	for _, status := range KnownStatuses() {
		def, tokens := TokensFor(status)
		assert.Equal(t, def, Classify(status, nil).Kind)
		for tok, kind := range tokens {
			err := Classify(status, &Payload{Error: tok})
			assert.Equal(t, kind, err.Kind, tok)
			assert.Equal(t, kind.Retriable(), Retriable(err), tok)
			assert.Contains(t, err.Error(), fmt.Sprintf("Status code: %d", status))
		}
	}
}

func TestClassifyUnknownTokenFallsBackToDefault(t *testing.T) {
	err := Classify(404, &Payload{Error: "SomethingNew"})
	assert.Equal(t, KindNotFound, err.Kind)
	assert.Equal(t, "SomethingNew", err.Code)
}

func TestComposeMessage(t *testing.T) {
	t.Run("all segments", func(t *testing.T) {
		err := Classify(404, &Payload{
			Message:     "Не удалось найти запрошенный ресурс.",
			Description: "Resource not found.",
			Error:       "DiskNotFoundError",
		})
		assert.Equal(t,
			"Не удалось найти запрошенный ресурс. | Error description: Resource not found. | Error code: DiskNotFoundError | Status code: 404",
			err.Error())
	})

	t.Run("description without trailing dot", func(t *testing.T) {
		err := Classify(409, &Payload{Description: "Exists"})
		assert.Equal(t, "Error description: Exists. | Status code: 409", err.Error())
	})

	t.Run("empty payload", func(t *testing.T) {
		assert.Equal(t, "Status code: 401", Classify(401, nil).Error())
	})

	t.Run("unknown status", func(t *testing.T) {
		assert.Equal(t, "Unknown Yandex.Disk error: status code 599", Classify(599, nil).Error())
	})
}

func TestFromResponse(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		body := []byte(`{"error":"DiskNotFoundError","description":"Resource not found.","message":"not found"}`)
		err := FromResponse(404, body)
		assert.Equal(t, KindPathNotFound, err.Kind)
		assert.Equal(t, "Resource not found.", err.Description)
		assert.Equal(t, body, err.Body)
	})

	t.Run("oauth body uses error_description", func(t *testing.T) {
		err := FromResponse(400, []byte(`{"error":"invalid_grant","error_description":"Code has expired"}`))
		assert.Equal(t, KindInvalidGrant, err.Kind)
		assert.Contains(t, err.Error(), "Code has expired")
	})

	t.Run("garbage body", func(t *testing.T) {
		err := FromResponse(500, []byte("<html>oops</html>"))
		assert.Equal(t, KindInternal, err.Kind)
		assert.Equal(t, "Status code: 500", err.Message)
	})
}

func TestErrorsIsMatchesAncestors(t *testing.T) {
	err := fmt.Errorf("get meta: %w", Classify(409, &Payload{Error: "DiskPathPointsToExistentDirectoryError"}))

	assert.ErrorIs(t, err, ErrDirectoryExists)
	assert.ErrorIs(t, err, ErrPathExists)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrGeneric)
	assert.NotErrorIs(t, err, ErrNotFound)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.StatusCode)
}

func TestTransportErrorsAreRetriable(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	for _, err := range []*Error{
		NewConnectionError("connection failed", cause),
		NewTimeoutError("read timed out", cause),
		NewTooManyRedirectsError("stopped after 10 redirects", cause),
		NewRequestError("request failed", cause),
	} {
		assert.True(t, Retriable(err), err.Kind)
		assert.ErrorIs(t, err, ErrRequest)
		assert.ErrorIs(t, err, cause)
	}
}

func TestNonRetriableKinds(t *testing.T) {
	assert.False(t, Retriable(NewInvalidResponseError("bad", nil)))
	assert.False(t, Retriable(NewPollingTimeoutError("too slow")))
	assert.False(t, Retriable(NewWrongResourceTypeError("not a dir")))
	assert.True(t, Retriable(NewAsyncOperationFailedError("failed")))
	assert.False(t, Retriable(errors.New("plain")))
	assert.False(t, Retriable(nil))
}

func TestWithDisableRetry(t *testing.T) {
	t.Run("direct error is copied", func(t *testing.T) {
		orig := NewConnectionError("boom", nil)
		got := WithDisableRetry(orig)
		assert.False(t, Retriable(got))
		assert.True(t, Retriable(orig), "original must not be mutated")
	})

	t.Run("wrapped error keeps chain", func(t *testing.T) {
		wrapped := fmt.Errorf("upload: %w", Classify(503, nil))
		got := WithDisableRetry(wrapped)
		assert.False(t, Retriable(got))
		assert.ErrorIs(t, got, ErrUnavailable)
		assert.Equal(t, wrapped.Error(), got.Error())
	})

	t.Run("foreign error", func(t *testing.T) {
		cause := errors.New("custom")
		got := WithDisableRetry(cause)
		assert.ErrorIs(t, got, cause)
		var apiErr *Error
		require.ErrorAs(t, got, &apiErr)
		assert.True(t, apiErr.DisableRetry)
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, WithDisableRetry(nil))
	})
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(fmt.Errorf("x: %w", NewMissingFieldError("href")))
	assert.True(t, ok)
	assert.Equal(t, KindMissingField, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}
