// Package fixtures builds canned API responses for tests.
package fixtures

import (
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"

	yhttp "github.com/ivknv/yadisk-go/http"
)

// JSON returns a buffered response with v encoded as the body
func JSON(status int, v any) *yhttp.Response {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("fixtures: cannot encode %T: %v", v, err))
	}
	header := nethttp.Header{}
	header.Set("Content-Type", "application/json")
	return yhttp.NewResponse(status, header, data)
}

// Raw returns a buffered response with body as is
func Raw(status int, body string) *yhttp.Response {
	return yhttp.NewResponse(status, nil, []byte(body))
}

// Empty returns a response without a body
func Empty(status int) *yhttp.Response {
	return yhttp.NewResponse(status, nil, nil)
}

// Stream returns a streamed response reading body lazily
func Stream(status int, body string) *yhttp.Response {
	return yhttp.NewStreamResponse(status, nil, io.NopCloser(strings.NewReader(body)))
}

// Error returns a vendor error response
func Error(status int, token, message string) *yhttp.Response {
	return JSON(status, map[string]string{
		"error":       token,
		"message":     message,
		"description": message,
	})
}

// OperationLink returns a 202 response pointing at operation id under baseURL
func OperationLink(baseURL, id string) *yhttp.Response {
	return JSON(nethttp.StatusAccepted, map[string]any{
		"href":      OperationHref(baseURL, id),
		"method":    "GET",
		"templated": false,
	})
}

// OperationHref is the status URL of operation id
func OperationHref(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/v1/disk/operations/" + id
}

// OperationStatus returns a status response of the operations endpoint
func OperationStatus(status string) *yhttp.Response {
	return JSON(nethttp.StatusOK, map[string]string{"status": status})
}

// TransferLink returns a link response as issued by the upload and download endpoints
func TransferLink(href string) *yhttp.Response {
	return JSON(nethttp.StatusOK, map[string]any{
		"href":      href,
		"method":    "PUT",
		"templated": false,
	})
}

// ResourceLink returns a 201 response referring to path under baseURL
func ResourceLink(baseURL, path string) *yhttp.Response {
	return JSON(nethttp.StatusCreated, map[string]any{
		"href":      strings.TrimRight(baseURL, "/") + "/v1/disk/resources?path=" + strings.ReplaceAll(path, ":", "%3A"),
		"method":    "GET",
		"templated": false,
	})
}
