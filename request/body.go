package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

const (
	// ContentTypeForm is used for bodies with no content type of their own
	ContentTypeForm = "application/x-www-form-urlencoded"
	// ContentTypeJSON is used for structured bodies
	ContentTypeJSON = "application/json"
)

// BodyFunc produces a fresh body for every attempt
type BodyFunc func() (io.Reader, error)

// encodeBody turns a request body into a reader. Structured values are
// JSON-encoded; raw values pass through. The returned content type is empty
// when the body does not determine one.
func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case BodyFunc:
		r, err := b()
		return r, "", err
	case func() (io.Reader, error):
		r, err := b()
		return r, "", err
	case []byte:
		return bytes.NewReader(b), "", nil
	case string:
		return strings.NewReader(b), "", nil
	case url.Values:
		return strings.NewReader(b.Encode()), ContentTypeForm, nil
	case io.Reader:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request body: %w", err)
		}
		return bytes.NewReader(data), ContentTypeJSON, nil
	}
}

// replayBody returns the BodyFunc behind body, used to resend it on redirects
func replayBody(body any) func() (io.Reader, error) {
	if f, ok := body.(BodyFunc); ok {
		return f
	}
	return nil
}
