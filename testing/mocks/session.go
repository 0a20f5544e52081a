package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	yhttp "github.com/ivknv/yadisk-go/http"
)

// MockSession provides a testify-based mock implementation of http.Session.
// Bodies of sent requests are read and kept in Bodies, in call order, since
// a request's reader is usually gone by the time a test inspects it.
//
// Example usage:
//
//	session := &mocks.MockSession{}
//	session.On("Send", mock.Anything, mock.MatchedBy(mocks.MethodIs("PUT"))).
//		Return(fixtures.Empty(201), nil).Once()
type MockSession struct {
	mock.Mock

	mu     sync.Mutex
	Bodies [][]byte
}

var _ yhttp.Session = (*MockSession)(nil)

// Send implements http.Session
func (m *MockSession) Send(ctx context.Context, req *yhttp.Request) (*yhttp.Response, error) {
	var body []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = data
	}
	m.mu.Lock()
	m.Bodies = append(m.Bodies, body)
	m.mu.Unlock()

	arguments := m.Called(ctx, req)
	if arguments.Get(0) == nil {
		return nil, arguments.Error(1)
	}
	return arguments.Get(0).(*yhttp.Response), arguments.Error(1)
}

// Close implements http.Session
func (m *MockSession) Close() error {
	arguments := m.Called()
	return arguments.Error(0)
}

// SentBodies returns a copy of the request bodies seen so far
func (m *MockSession) SentBodies() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.Bodies...)
}

// MethodIs matches requests by HTTP method, for use with mock.MatchedBy
func MethodIs(method string) func(*yhttp.Request) bool {
	return func(req *yhttp.Request) bool {
		return req.Method == method
	}
}

// URLIs matches requests by URL, for use with mock.MatchedBy
func URLIs(url string) func(*yhttp.Request) bool {
	return func(req *yhttp.Request) bool {
		return req.URL == url
	}
}

// ParamIs matches requests carrying a query parameter, for use with mock.MatchedBy
func ParamIs(key, value string) func(*yhttp.Request) bool {
	return func(req *yhttp.Request) bool {
		return req.Params.Get(key) == value
	}
}

// All matches requests satisfying every predicate
func All(preds ...func(*yhttp.Request) bool) func(*yhttp.Request) bool {
	return func(req *yhttp.Request) bool {
		for _, pred := range preds {
			if !pred(req) {
				return false
			}
		}
		return true
	}
}
