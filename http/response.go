package http

import (
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"sync"
)

// DownloadChunkSize is the buffer size used by Response.Download
const DownloadChunkSize = 8192

// ErrBodyConsumed is returned when a streamed body is read twice
var ErrBodyConsumed = errors.New("response body already consumed")

// Response is the session's view of an HTTP response.
// A non-streamed response has its body buffered; a streamed one reads it lazily.
type Response struct {
	StatusCode int
	Header     nethttp.Header
	Stats      Stats

	data     []byte
	body     io.ReadCloser
	convert  func(error) error
	consumed bool
	once     sync.Once
	closeErr error
}

// Bytes returns the whole body. For a streamed response it reads the body to the end.
func (r *Response) Bytes() ([]byte, error) {
	if r.body == nil {
		return r.data, nil
	}
	if r.consumed {
		return nil, ErrBodyConsumed
	}
	r.consumed = true
	data, err := io.ReadAll(r.body)
	if err != nil {
		return nil, r.convertErr(err)
	}
	r.data = data
	r.body = nil
	return data, nil
}

// JSON decodes the body into v
func (r *Response) JSON(v any) error {
	data, err := r.Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Download passes the body to consume in chunks of at most DownloadChunkSize bytes.
// The slice passed to consume is only valid until it returns.
func (r *Response) Download(consume func([]byte) error) error {
	if r.body == nil {
		if r.consumed {
			return ErrBodyConsumed
		}
		r.consumed = true
		for data := r.data; len(data) > 0; {
			n := min(len(data), DownloadChunkSize)
			if err := consume(data[:n]); err != nil {
				return err
			}
			data = data[n:]
		}
		return nil
	}

	if r.consumed {
		return ErrBodyConsumed
	}
	r.consumed = true

	buf := make([]byte, DownloadChunkSize)
	for {
		n, err := r.body.Read(buf)
		if n > 0 {
			if cerr := consume(buf[:n]); cerr != nil {
				return cerr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return r.convertErr(err)
		}
	}
}

// Close releases the connection. It is safe to call more than once.
func (r *Response) Close() error {
	r.once.Do(func() {
		if r.body != nil {
			r.closeErr = r.body.Close()
		}
	})
	return r.closeErr
}

func (r *Response) convertErr(err error) error {
	if r.convert != nil {
		return r.convert(err)
	}
	return err
}

// NewResponse builds a buffered Response, mainly for Session implementations and tests
func NewResponse(statusCode int, header nethttp.Header, body []byte) *Response {
	if header == nil {
		header = nethttp.Header{}
	}
	return &Response{StatusCode: statusCode, Header: header, data: body}
}

// NewStreamResponse builds a Response that reads body lazily
func NewStreamResponse(statusCode int, header nethttp.Header, body io.ReadCloser) *Response {
	if header == nil {
		header = nethttp.Header{}
	}
	return &Response{StatusCode: statusCode, Header: header, body: body}
}
