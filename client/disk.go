package client

import (
	"context"
	nethttp "net/http"
	"net/url"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/operation"
	"github.com/ivknv/yadisk-go/request"
)

const (
	pathDisk       = "/v1/disk"
	pathOperations = "/v1/disk/operations/"
)

// checkTokenOperation is an operation ID that never exists. Asking for it
// tells a valid token (404) from an invalid one (401).
const checkTokenOperation = "0000"

// GetDiskInfo returns quota and account information
func (c *Client) GetDiskInfo(ctx context.Context, opts ...request.Option) (*model.DiskInfo, error) {
	req := &request.Request[*model.DiskInfo]{
		Method:  nethttp.MethodGet,
		URL:     c.endpoint(pathDisk),
		Options: request.Apply(opts...),
		Process: decodeTo[model.DiskInfo],
	}
	return req.Send(ctx, c.api)
}

// CheckToken reports whether token is accepted by the API. An empty token
// checks the client's own.
func (c *Client) CheckToken(ctx context.Context, token string, opts ...request.Option) (bool, error) {
	if token == "" && c.tokenSource != nil {
		tok, err := c.tokenSource.Token()
		if err != nil {
			return false, err
		}
		token = tok.AccessToken
	}
	if token == "" {
		return false, nil
	}

	o := request.Apply(opts...).With(request.WithHeader("Authorization", "OAuth "+token))
	_, err := c.getOperationStatus(ctx, checkTokenOperation, o)
	switch {
	case err == nil, apierr.IsKind(err, apierr.KindOperationNotFound):
		return true, nil
	case apierr.IsKind(err, apierr.KindUnauthorized):
		return false, nil
	default:
		return false, err
	}
}

// GetOperationStatus returns "in-progress", "success" or "failed".
// idOrHref is an operation ID or the href of an operation link.
func (c *Client) GetOperationStatus(ctx context.Context, idOrHref string, opts ...request.Option) (string, error) {
	return c.getOperationStatus(ctx, idOrHref, request.Apply(opts...))
}

func (c *Client) getOperationStatus(ctx context.Context, idOrHref string, opts request.Options) (string, error) {
	req := &request.Request[model.OperationStatus]{
		Method:  nethttp.MethodGet,
		URL:     c.endpoint(pathOperations + url.PathEscape(operation.ID(idOrHref))),
		Options: opts.With(WithFields("status")),
		Process: request.Decode[model.OperationStatus](),
	}
	status, err := req.Send(ctx, c.api)
	return status.Status, err
}

// WaitForOperation polls an operation until it is done. A failed operation
// yields an AsyncOperationFailed error; running out of the poll timeout
// yields PollingTimeout.
func (c *Client) WaitForOperation(ctx context.Context, idOrHref string, opts ...request.Option) error {
	return c.waitForOperation(ctx, idOrHref, request.Apply(opts...))
}

func (c *Client) waitForOperation(ctx context.Context, idOrHref string, opts request.Options) error {
	resolved := opts.Resolve(c.api.Defaults)
	status := func(ctx context.Context) (string, error) {
		return c.getOperationStatus(ctx, idOrHref, opts)
	}
	return operation.Wait(ctx, status, operation.Options{
		PollInterval: resolved.PollInterval,
		PollTimeout:  resolved.PollTimeout,
		Strategy:     resolved.Strategy,
	})
}
