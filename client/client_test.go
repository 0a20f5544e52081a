package client

import (
	"context"
	nethttp "net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/config"
	yhttp "github.com/ivknv/yadisk-go/http"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/request"
	"github.com/ivknv/yadisk-go/retry"
	testconsts "github.com/ivknv/yadisk-go/testing"
	"github.com/ivknv/yadisk-go/testing/fixtures"
	"github.com/ivknv/yadisk-go/testing/mocks"
)

const (
	resourcesURL  = testconsts.TestBaseURL + pathResources
	operationsURL = testconsts.TestBaseURL + pathOperations
)

func newTestConfig(baseURL string) config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.Auth.Token = testconsts.TestToken
	cfg.Auth.ClientID = testconsts.TestClientID
	cfg.Auth.ClientSecret = testconsts.TestClientSecret
	cfg.Retry.Count = 2
	cfg.Retry.Interval = testconsts.TestRetryInterval
	cfg.Poll.Interval = testconsts.TestPollInterval
	return cfg
}

func newMockClient(t *testing.T, opts ...Option) (*Client, *mocks.MockSession) {
	t.Helper()
	session := &mocks.MockSession{}
	c, err := New(newTestConfig(testconsts.TestBaseURL), append([]Option{WithSession(session)}, opts...)...)
	require.NoError(t, err)
	return c, session
}

func captureRequests(dst *[]*yhttp.Request) func(mock.Arguments) {
	return func(args mock.Arguments) {
		*dst = append(*dst, args.Get(1).(*yhttp.Request))
	}
}

func match(preds ...func(*yhttp.Request) bool) any {
	return mock.MatchedBy(mocks.All(preds...))
}

func dirPage(offset, limit, total int, names ...string) map[string]any {
	items := make([]map[string]any, 0, len(names))
	for _, name := range names {
		items = append(items, map[string]any{"name": name, "path": testconsts.TestDirPath + "/" + name, "type": "file"})
	}
	return map[string]any{
		"type": "dir",
		"path": testconsts.TestDirPath,
		"_embedded": map[string]any{
			"items":  items,
			"offset": offset,
			"limit":  limit,
			"total":  total,
		},
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := newTestConfig("")
	_, err := New(cfg)
	require.Error(t, err)
	var cfgErr *config.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewStrategy(t *testing.T) {
	c, err := New(newTestConfig(testconsts.TestBaseURL))
	require.NoError(t, err)
	assert.Equal(t, retry.Blocking, c.Strategy())
	assert.Equal(t, retry.Blocking, c.api.Defaults.Strategy)
	require.NoError(t, c.Close())

	c, err = NewAsync(newTestConfig(testconsts.TestBaseURL))
	require.NoError(t, err)
	assert.Equal(t, retry.Suspending, c.Strategy())
	assert.Equal(t, retry.Suspending, c.upload.Defaults.Strategy)
	require.NoError(t, c.Close())
}

func TestNewUploadDefaults(t *testing.T) {
	cfg := newTestConfig(testconsts.TestBaseURL)
	cfg.Upload.Timeout = config.TimeoutConfig{Connect: time.Second, Read: time.Minute}
	cfg.Upload.RetryInterval = 3 * time.Second

	c, err := New(cfg, WithSession(&mocks.MockSession{}))
	require.NoError(t, err)
	assert.Equal(t, yhttp.Timeout{Connect: time.Second, Read: time.Minute}, c.upload.Defaults.Timeout)
	assert.Equal(t, 3*time.Second, c.upload.Defaults.RetryInterval)
	assert.Equal(t, cfg.Retry.Interval, c.api.Defaults.RetryInterval)
	assert.True(t, c.api.Defaults.Wait)
}

func TestGetMeta(t *testing.T) {
	c, session := newMockClient(t)
	var sent []*yhttp.Request
	session.On("Send", mock.Anything, match(mocks.URLIs(resourcesURL))).
		Run(captureRequests(&sent)).
		Return(fixtures.JSON(200, map[string]any{"path": testconsts.TestFilePath, "type": "file", "size": 12}), nil).Once()

	r, err := c.GetMeta(context.Background(), "/test-dir/file.txt", WithFields("embedded.items.name", "size"))
	require.NoError(t, err)
	assert.True(t, r.IsFile())

	require.Len(t, sent, 1)
	assert.Equal(t, nethttp.MethodGet, sent[0].Method)
	assert.Equal(t, testconsts.TestFilePath, sent[0].Params.Get("path"))
	assert.Equal(t, "_embedded.items.name,size", sent[0].Params.Get("fields"))
	session.AssertExpectations(t)
}

func TestExists(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, match(mocks.ParamIs("path", "disk:/present"))).
		Return(fixtures.JSON(200, map[string]any{"type": "dir"}), nil)
	session.On("Send", mock.Anything, match(mocks.ParamIs("path", "disk:/missing"))).
		Return(fixtures.Error(404, "DiskNotFoundError", "Resource not found."), nil)

	ok, err := c.Exists(context.Background(), "/present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(context.Background(), "/missing")
	require.NoError(t, err)
	assert.False(t, ok)

	isDir, err := c.IsDir(context.Background(), "/present")
	require.NoError(t, err)
	assert.True(t, isDir)

	isFile, err := c.IsFile(context.Background(), "/missing")
	require.NoError(t, err)
	assert.False(t, isFile)
}

func TestListdirPaging(t *testing.T) {
	c, session := newMockClient(t)
	var sent []*yhttp.Request
	session.On("Send", mock.Anything, match(mocks.ParamIs("offset", ""))).
		Run(captureRequests(&sent)).
		Return(fixtures.JSON(200, dirPage(0, 2, 3, "a", "b")), nil).Once()
	session.On("Send", mock.Anything, match(mocks.ParamIs("offset", "2"))).
		Run(captureRequests(&sent)).
		Return(fixtures.JSON(200, dirPage(2, 2, 3, "c")), nil).Once()

	var names []string
	for item, err := range c.Listdir(context.Background(), testconsts.TestDirPath, WithLimit(2), WithFields("name")) {
		require.NoError(t, err)
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	require.Len(t, sent, 2)
	assert.Equal(t, "2", sent[0].Params.Get("limit"))
	fields := sent[0].Params.Get("fields")
	assert.Contains(t, fields, "_embedded.items.name")
	assert.Contains(t, fields, "_embedded.total")
	assert.Contains(t, fields, "type")
	session.AssertExpectations(t)
}

func TestListdirDefaultLimit(t *testing.T) {
	c, session := newMockClient(t)
	var sent []*yhttp.Request
	session.On("Send", mock.Anything, mock.Anything).
		Run(captureRequests(&sent)).
		Return(fixtures.JSON(200, dirPage(0, DefaultListLimit, 1, "a")), nil).Once()

	count := 0
	for _, err := range c.Listdir(context.Background(), testconsts.TestDirPath) {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 1, count)
	require.Len(t, sent, 1)
	assert.Equal(t, "500", sent[0].Params.Get("limit"))
}

func TestListdirStopsEarly(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, mock.Anything).
		Return(fixtures.JSON(200, dirPage(0, 2, 10, "a", "b")), nil).Once()

	for range c.Listdir(context.Background(), testconsts.TestDirPath, WithLimit(2)) {
		break
	}
	session.AssertNumberOfCalls(t, "Send", 1)
}

func TestListdirErrors(t *testing.T) {
	tests := []struct {
		name string
		resp *yhttp.Response
		kind apierr.Kind
	}{
		{"file", fixtures.JSON(200, map[string]any{"type": "file"}), apierr.KindWrongResourceType},
		{"no embedded", fixtures.JSON(200, map[string]any{"type": "dir"}), apierr.KindInvalidResponse},
		{"no total", fixtures.JSON(200, map[string]any{"type": "dir", "_embedded": map[string]any{"items": []any{}, "offset": 0, "limit": 1}}), apierr.KindInvalidResponse},
		{"not found", fixtures.Error(404, "DiskNotFoundError", "Resource not found."), apierr.KindPathNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, session := newMockClient(t)
			session.On("Send", mock.Anything, mock.Anything).Return(tt.resp, nil).Once()

			var errs []error
			for _, err := range c.Listdir(context.Background(), testconsts.TestFilePath) {
				errs = append(errs, err)
			}
			require.Len(t, errs, 1)
			assert.True(t, apierr.IsKind(errs[0], tt.kind), "got %v", errs[0])
		})
	}
}

func TestMakedirs(t *testing.T) {
	c, session := newMockClient(t)
	put := mocks.MethodIs(nethttp.MethodPut)
	parentMissing := fixtures.Error(409, "DiskPathDoesntExistsError", "Specified path does not exist.")

	session.On("Send", mock.Anything, match(put, mocks.ParamIs("path", "disk:/a/b/c"))).
		Return(parentMissing, nil).Once()
	session.On("Send", mock.Anything, match(put, mocks.ParamIs("path", "disk:/a/b"))).
		Return(parentMissing, nil).Once()
	session.On("Send", mock.Anything, match(put, mocks.ParamIs("path", "disk:/a"))).
		Return(fixtures.ResourceLink(testconsts.TestBaseURL, "disk:/a"), nil).Once()
	session.On("Send", mock.Anything, match(put, mocks.ParamIs("path", "disk:/a/b"))).
		Return(fixtures.ResourceLink(testconsts.TestBaseURL, "disk:/a/b"), nil).Once()
	session.On("Send", mock.Anything, match(put, mocks.ParamIs("path", "disk:/a/b/c"))).
		Return(fixtures.ResourceLink(testconsts.TestBaseURL, "disk:/a/b/c"), nil).Once()

	link, err := c.Makedirs(context.Background(), "disk:/a/b/c")
	require.NoError(t, err)
	assert.Equal(t, "disk:/a/b/c", link.Path)
	session.AssertExpectations(t)
}

func TestMakedirsTopLevelFailure(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, mock.Anything).
		Return(fixtures.Error(409, "DiskPathDoesntExistsError", "Specified path does not exist."), nil).Once()

	_, err := c.Makedirs(context.Background(), "/a")
	assert.ErrorIs(t, err, apierr.ErrParentNotFound)
	session.AssertNumberOfCalls(t, "Send", 1)
}

func TestRemove(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		c, session := newMockClient(t)
		var sent []*yhttp.Request
		session.On("Send", mock.Anything, mock.Anything).
			Run(captureRequests(&sent)).
			Return(fixtures.Empty(204), nil).Once()

		res, err := c.Remove(context.Background(), "/file.txt", WithPermanently(true))
		require.NoError(t, err)
		assert.Nil(t, res.PendingOperation())
		require.Len(t, sent, 1)
		assert.Equal(t, nethttp.MethodDelete, sent[0].Method)
		assert.Equal(t, "true", sent[0].Params.Get("permanently"))
	})

	t.Run("accepted without link", func(t *testing.T) {
		c, session := newMockClient(t)
		session.On("Send", mock.Anything, mock.Anything).Return(fixtures.Empty(202), nil)

		_, err := c.Remove(context.Background(), "/file.txt")
		assert.ErrorIs(t, err, apierr.ErrInvalidResponse)
		assert.False(t, apierr.Retriable(err))
		session.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("forced async completed immediately", func(t *testing.T) {
		c, session := newMockClient(t)
		var sent []*yhttp.Request
		session.On("Send", mock.Anything, mock.Anything).
			Run(captureRequests(&sent)).
			Return(fixtures.Empty(204), nil).Once()

		res, err := c.Remove(context.Background(), "/file.txt", WithForceAsync(true))
		require.NoError(t, err)
		assert.Nil(t, res.PendingOperation())
		require.Len(t, sent, 1)
		assert.Equal(t, "true", sent[0].Params.Get("force_async"))
	})

	t.Run("forced async accepted without link", func(t *testing.T) {
		c, session := newMockClient(t)
		session.On("Send", mock.Anything, mock.Anything).Return(fixtures.Empty(202), nil)

		_, err := c.Remove(context.Background(), "/file.txt", WithForceAsync(true))
		assert.ErrorIs(t, err, apierr.ErrInvalidResponse)
		assert.ErrorContains(t, err, "force_async")
		assert.False(t, apierr.Retriable(err))
		session.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("waits for operation", func(t *testing.T) {
		c, session := newMockClient(t)
		session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodDelete))).
			Return(fixtures.OperationLink(testconsts.TestBaseURL, testconsts.TestOperationID), nil).Once()
		session.On("Send", mock.Anything, match(mocks.URLIs(operationsURL+testconsts.TestOperationID))).
			Return(fixtures.OperationStatus("success"), nil).Once()

		res, err := c.Remove(context.Background(), "/dir", WithMD5("abc"))
		require.NoError(t, err)
		require.NotNil(t, res.PendingOperation())
		assert.Equal(t, testconsts.TestOperationID, res.Operation.ID())
		session.AssertExpectations(t)
	})
}

func TestCopyResourceLink(t *testing.T) {
	c, session := newMockClient(t)
	var sent []*yhttp.Request
	session.On("Send", mock.Anything, mock.Anything).
		Run(captureRequests(&sent)).
		Return(fixtures.ResourceLink(testconsts.TestBaseURL, "disk:/dst"), nil).Once()

	res, err := c.Copy(context.Background(), "/src", "dst", WithOverwrite(true))
	require.NoError(t, err)
	require.NotNil(t, res.Resource)
	assert.Equal(t, "disk:/dst", res.Resource.Path)
	assert.Nil(t, res.Operation)

	require.Len(t, sent, 1)
	assert.Equal(t, testconsts.TestBaseURL+pathCopy, sent[0].URL)
	assert.Equal(t, "disk:/src", sent[0].Params.Get("from"))
	assert.Equal(t, "disk:/dst", sent[0].Params.Get("path"))
	assert.Equal(t, "true", sent[0].Params.Get("overwrite"))
}

func TestMoveWaitsForOperation(t *testing.T) {
	c, session := newMockClient(t)
	var polls []*yhttp.Request
	session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodPost))).
		Return(fixtures.OperationLink(testconsts.TestBaseURL, testconsts.TestOperationID), nil).Once()
	session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodGet))).
		Run(captureRequests(&polls)).
		Return(fixtures.OperationStatus("in-progress"), nil).Twice()
	session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodGet))).
		Return(fixtures.OperationStatus("success"), nil).Once()

	res, err := c.Move(context.Background(), "/src", "/dst", WithOverwrite(true))
	require.NoError(t, err)
	require.NotNil(t, res.Operation)
	session.AssertExpectations(t)

	require.NotEmpty(t, polls)
	assert.Empty(t, polls[0].Params.Get("overwrite"), "poll requests must not carry the call's parameters")
	assert.Equal(t, "status", polls[0].Params.Get("fields"))
}

func TestCopyRestartsFailedOperation(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodPost))).
		Return(fixtures.OperationLink(testconsts.TestBaseURL, testconsts.TestOperationID), nil).Twice()
	session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodGet))).
		Return(fixtures.OperationStatus("failed"), nil).Once()
	session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodGet))).
		Return(fixtures.OperationStatus("success"), nil).Once()

	_, err := c.Copy(context.Background(), "/src", "/dst")
	require.NoError(t, err)
	session.AssertExpectations(t)
}

func TestCopyFailedOperationExhaustsBudget(t *testing.T) {
	c, session := newMockClient(t, WithStrategy(retry.Suspending))
	session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodPost))).
		Return(fixtures.OperationLink(testconsts.TestBaseURL, testconsts.TestOperationID), nil)
	session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodGet))).
		Return(fixtures.OperationStatus("failed"), nil)

	_, err := c.Copy(context.Background(), "/src", "/dst", request.WithRetries(1))
	assert.ErrorIs(t, err, apierr.ErrAsyncOperationFailed)
	var exhausted *retry.ExhaustedError
	assert.ErrorAs(t, err, &exhausted)
	session.AssertNumberOfCalls(t, "Send", 4)
}

func TestCopyPollingTimeoutIsNotRetried(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodPost))).
		Return(fixtures.OperationLink(testconsts.TestBaseURL, testconsts.TestOperationID), nil).Once()
	session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodGet))).
		Return(fixtures.OperationStatus("in-progress"), nil)

	_, err := c.Copy(context.Background(), "/src", "/dst", request.WithPollTimeout(3*testconsts.TestPollInterval))
	assert.ErrorIs(t, err, apierr.ErrPollingTimeout)
	assert.False(t, apierr.Retriable(err))
	assert.Equal(t, 1, countMethod(session, nethttp.MethodPost))
	assert.GreaterOrEqual(t, countMethod(session, nethttp.MethodGet), 3)
}

func countMethod(session *mocks.MockSession, method string) int {
	n := 0
	for _, call := range session.Calls {
		if req, ok := call.Arguments.Get(1).(*yhttp.Request); ok && req.Method == method {
			n++
		}
	}
	return n
}

func TestCopyWithoutWait(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, mock.Anything).
		Return(fixtures.OperationLink(testconsts.TestBaseURL, testconsts.TestOperationID), nil).Once()

	res, err := c.Copy(context.Background(), "/src", "/dst", request.WithWait(false))
	require.NoError(t, err)
	require.NotNil(t, res.Operation)
	assert.Equal(t, testconsts.TestOperationID, res.Operation.ID())
	session.AssertExpectations(t)
}

func TestCopyForceAsyncRequiresOperationLink(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, mock.Anything).
		Return(fixtures.ResourceLink(testconsts.TestBaseURL, "disk:/dst"), nil)

	_, err := c.Copy(context.Background(), "/src", "/dst", WithForceAsync(true))
	assert.ErrorIs(t, err, apierr.ErrInvalidResponse)
	session.AssertNumberOfCalls(t, "Send", 1)
}

func TestRenameTarget(t *testing.T) {
	tests := []struct {
		src, name, want string
		wantErr         bool
	}{
		{src: "disk:/a/b.txt", name: "c.txt", want: "disk:/a/c.txt"},
		{src: "/a/b.txt", name: "c.txt/", want: "a/c.txt"},
		{src: "b.txt", name: "c.txt", want: "c.txt"},
		{src: "app:/b", name: "c", want: "app:/c"},
		{src: "disk:/", name: "c", wantErr: true},
		{src: "/a", name: "x/y", wantErr: true},
		{src: "/a", name: "..", wantErr: true},
		{src: "/a", name: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.src+"->"+tt.name, func(t *testing.T) {
			got, err := renameTarget(tt.src, tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPublish(t *testing.T) {
	c, session := newMockClient(t)
	var sent []*yhttp.Request
	session.On("Send", mock.Anything, mock.Anything).
		Run(captureRequests(&sent)).
		Return(fixtures.ResourceLink(testconsts.TestBaseURL, testconsts.TestFilePath), nil).Twice()

	link, err := c.Publish(context.Background(), testconsts.TestFilePath, WithAllowAddressAccess(true))
	require.NoError(t, err)
	assert.Equal(t, testconsts.TestFilePath, link.Path)

	_, err = c.Unpublish(context.Background(), testconsts.TestFilePath)
	require.NoError(t, err)

	require.Len(t, sent, 2)
	assert.Equal(t, testconsts.TestBaseURL+pathPublish, sent[0].URL)
	assert.Equal(t, "true", sent[0].Params.Get("allow_address_access"))
	assert.Equal(t, testconsts.TestBaseURL+pathUnpublish, sent[1].URL)
	assert.Equal(t, nethttp.MethodPut, sent[1].Method)
}

func TestFilesPaginates(t *testing.T) {
	c, session := newMockClient(t)
	page := func(names ...string) *yhttp.Response {
		items := []map[string]any{}
		for _, n := range names {
			items = append(items, map[string]any{"name": n, "type": "file"})
		}
		return fixtures.JSON(200, map[string]any{"items": items, "limit": 2})
	}
	session.On("Send", mock.Anything, match(mocks.ParamIs("offset", "0"))).Return(page("a", "b"), nil).Once()
	session.On("Send", mock.Anything, match(mocks.ParamIs("offset", "2"))).Return(page("c"), nil).Once()

	var names []string
	for item, err := range c.Files(context.Background(), WithLimit(2), WithMediaType("image", "video")) {
		require.NoError(t, err)
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
	session.AssertExpectations(t)
}

func TestPatchCustomProperties(t *testing.T) {
	c, session := newMockClient(t)
	var sent []*yhttp.Request
	session.On("Send", mock.Anything, mock.Anything).
		Run(captureRequests(&sent)).
		Return(fixtures.JSON(200, map[string]any{"type": "file", "custom_properties": map[string]any{"k": "v"}}), nil).Once()

	r, err := c.PatchCustomProperties(context.Background(), "/f", map[string]any{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, "v", r.CustomProperties["k"])

	require.Len(t, sent, 1)
	assert.Equal(t, nethttp.MethodPatch, sent[0].Method)
	assert.Equal(t, "application/json", sent[0].Headers.Get("Content-Type"))
	assert.JSONEq(t, `{"custom_properties": {"k": "v"}}`, string(session.SentBodies()[0]))
}

func TestCheckToken(t *testing.T) {
	c, session := newMockClient(t)
	var sent []*yhttp.Request
	checkURL := mocks.URLIs(operationsURL + checkTokenOperation)
	session.On("Send", mock.Anything, match(checkURL, func(r *yhttp.Request) bool {
		return r.Headers.Get("Authorization") == "OAuth good"
	})).Run(captureRequests(&sent)).
		Return(fixtures.Error(404, "DiskOperationNotFoundError", "Operation not found."), nil)
	session.On("Send", mock.Anything, match(checkURL, func(r *yhttp.Request) bool {
		return r.Headers.Get("Authorization") == "OAuth bad"
	})).Return(fixtures.Error(401, "UnauthorizedError", "Unauthorized"), nil)
	session.On("Send", mock.Anything, match(checkURL, func(r *yhttp.Request) bool {
		return r.Headers.Get("Authorization") == "OAuth "+testconsts.TestToken
	})).Return(fixtures.Error(404, "DiskOperationNotFoundError", "Operation not found."), nil)

	ok, err := c.CheckToken(context.Background(), "good")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.CheckToken(context.Background(), "bad")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.CheckToken(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckTokenWithoutToken(t *testing.T) {
	cfg := newTestConfig(testconsts.TestBaseURL)
	cfg.Auth.Token = ""
	session := &mocks.MockSession{}
	c, err := New(cfg, WithSession(session))
	require.NoError(t, err)

	ok, err := c.CheckToken(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
	session.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestGetOperationStatusAcceptsHref(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, match(mocks.URLIs(operationsURL+testconsts.TestOperationID))).
		Return(fixtures.OperationStatus("in-progress"), nil).Once()

	status, err := c.GetOperationStatus(context.Background(), fixtures.OperationHref(testconsts.TestBaseURL, testconsts.TestOperationID))
	require.NoError(t, err)
	assert.Equal(t, "in-progress", status)
	session.AssertExpectations(t)
}

func TestWaitForOperation(t *testing.T) {
	t.Run("failed", func(t *testing.T) {
		c, session := newMockClient(t)
		session.On("Send", mock.Anything, mock.Anything).Return(fixtures.OperationStatus("failed"), nil)

		err := c.WaitForOperation(context.Background(), testconsts.TestOperationID)
		assert.ErrorIs(t, err, apierr.ErrAsyncOperationFailed)
	})

	t.Run("timeout", func(t *testing.T) {
		c, session := newMockClient(t)
		session.On("Send", mock.Anything, mock.Anything).Return(fixtures.OperationStatus("in-progress"), nil)

		err := c.WaitForOperation(context.Background(), testconsts.TestOperationID,
			request.WithPollTimeout(2*testconsts.TestPollInterval))
		assert.ErrorIs(t, err, apierr.ErrPollingTimeout)
	})

	t.Run("suspending honors cancellation", func(t *testing.T) {
		c, session := newMockClient(t, WithStrategy(retry.Suspending))
		session.On("Send", mock.Anything, mock.Anything).Return(fixtures.OperationStatus("in-progress"), nil)

		ctx, cancel := context.WithTimeout(context.Background(), 3*testconsts.TestPollInterval)
		defer cancel()
		err := c.WaitForOperation(ctx, testconsts.TestOperationID)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestGetDiskInfo(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, match(mocks.URLIs(testconsts.TestBaseURL+pathDisk))).
		Return(fixtures.JSON(200, map[string]any{"total_space": 100, "used_space": 40, "user": map[string]any{"login": "me"}}), nil).Once()

	info, err := c.GetDiskInfo(context.Background())
	require.NoError(t, err)
	total, err := model.Require(info.TotalSpace, "total_space")
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
	assert.Equal(t, "me", info.User.Login)
}

func TestBind(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, match(mocks.ParamIs("path", testconsts.TestFilePath))).
		Return(fixtures.JSON(200, map[string]any{"path": testconsts.TestFilePath, "type": "file"}), nil)

	bound := c.Bind(model.NewResourceLink(testconsts.TestBaseURL, testconsts.TestFilePath))
	r, err := bound.GetMeta(context.Background())
	require.NoError(t, err)

	ok, err := c.Bind(r).Exists(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = c.Bind(model.ResourceLink{}).GetMeta(context.Background())
	assert.ErrorIs(t, err, apierr.ErrMissingField)
}

func TestRemoveTrash(t *testing.T) {
	c, session := newMockClient(t)
	var sent []*yhttp.Request
	session.On("Send", mock.Anything, match(mocks.URLIs(testconsts.TestBaseURL+pathTrash))).
		Run(captureRequests(&sent)).
		Return(fixtures.Empty(204), nil).Twice()
	ctx := context.Background()

	_, err := c.RemoveTrash(ctx, "")
	require.NoError(t, err)
	res, err := c.RemoveTrash(ctx, "/file.txt", WithForceAsync(true))
	require.NoError(t, err)
	assert.Nil(t, res.PendingOperation())

	require.Len(t, sent, 2)
	assert.False(t, sent[0].Params.Has(paramPath))
	assert.Equal(t, testconsts.TestTrashPath, sent[1].Params.Get(paramPath))
	assert.Equal(t, nethttp.MethodDelete, sent[1].Method)
}

func TestRestoreTrash(t *testing.T) {
	c, session := newMockClient(t)
	var sent []*yhttp.Request
	session.On("Send", mock.Anything, match(mocks.MethodIs(nethttp.MethodPut))).
		Run(captureRequests(&sent)).
		Return(fixtures.ResourceLink(testconsts.TestBaseURL, "disk:/restored.txt"), nil).Once()

	res, err := c.RestoreTrash(context.Background(), "file.txt", "restored.txt", WithOverwrite(true))
	require.NoError(t, err)
	require.NotNil(t, res.Resource)
	assert.Equal(t, "disk:/restored.txt", res.Resource.Path)

	require.Len(t, sent, 1)
	assert.Equal(t, testconsts.TestBaseURL+pathTrashRestore, sent[0].URL)
	assert.Equal(t, testconsts.TestTrashPath, sent[0].Params.Get(paramPath))
	assert.Equal(t, "restored.txt", sent[0].Params.Get("name"))
	assert.Equal(t, "true", sent[0].Params.Get(paramOverwrite))
}

func TestTrashListdir(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, match(mocks.ParamIs(paramPath, "trash:/"))).
		Return(fixtures.JSON(200, map[string]any{
			"type": "dir",
			"path": "trash:/",
			"_embedded": map[string]any{
				"items": []map[string]any{
					{"name": "a.txt", "type": "file", "path": "trash:/a.txt", "origin_path": "disk:/docs/a.txt"},
				},
				"offset": 0, "limit": DefaultListLimit, "total": 1,
			},
		}), nil).Once()

	var origins []string
	for item, err := range c.TrashListdir(context.Background(), "trash:/") {
		require.NoError(t, err)
		origins = append(origins, item.OriginPath)
	}
	assert.Equal(t, []string{"disk:/docs/a.txt"}, origins)
}

func TestTrashExists(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, mock.Anything).
		Return(fixtures.Error(404, "DiskNotFoundError", "Resource not found."), nil).Once()

	ok, err := c.TrashExists(context.Background(), "/gone.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveToDisk(t *testing.T) {
	c, session := newMockClient(t)
	var sent []*yhttp.Request
	session.On("Send", mock.Anything, match(mocks.URLIs(testconsts.TestBaseURL+pathSaveToDisk))).
		Run(captureRequests(&sent)).
		Return(fixtures.OperationLink(testconsts.TestBaseURL, testconsts.TestOperationID), nil).Once()
	session.On("Send", mock.Anything, match(mocks.URLIs(operationsURL+testconsts.TestOperationID))).
		Run(captureRequests(&sent)).
		Return(fixtures.OperationStatus("success"), nil).Once()

	res, err := c.SaveToDisk(context.Background(), "pk", "copy.txt", "/Downloads", WithPublicPath("/inner.txt"))
	require.NoError(t, err)
	require.NotNil(t, res.PendingOperation())

	require.Len(t, sent, 2)
	assert.Equal(t, nethttp.MethodPost, sent[0].Method)
	assert.Equal(t, "pk", sent[0].Params.Get(paramPublicKey))
	assert.Equal(t, "copy.txt", sent[0].Params.Get("name"))
	assert.Equal(t, "disk:/Downloads", sent[0].Params.Get("save_path"))
	assert.False(t, sent[1].Params.Has(paramPublicKey))
	session.AssertExpectations(t)
}

func TestPublicListdirAndExists(t *testing.T) {
	c, session := newMockClient(t)
	session.On("Send", mock.Anything, match(mocks.ParamIs(paramPublicKey, "pk"))).
		Return(fixtures.JSON(200, map[string]any{
			"type": "dir",
			"_embedded": map[string]any{
				"items":  []map[string]any{{"name": "shared.txt", "type": "file", "views_count": 7}},
				"offset": 0, "limit": DefaultListLimit, "total": 1,
			},
		}), nil)
	session.On("Send", mock.Anything, match(mocks.ParamIs(paramPublicKey, "missing"))).
		Return(fixtures.Error(404, "DiskNotFoundError", "Resource not found."), nil)
	ctx := context.Background()

	var names []string
	for item, err := range c.PublicListdir(ctx, "pk") {
		require.NoError(t, err)
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"shared.txt"}, names)

	ok, err := c.PublicExists(ctx, "pk")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.PublicExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
