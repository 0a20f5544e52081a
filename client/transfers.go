package client

import (
	"context"
	nethttp "net/http"

	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/request"
	"github.com/ivknv/yadisk-go/transfer"
)

const (
	pathUpload   = "/v1/disk/resources/upload"
	pathDownload = "/v1/disk/resources/download"
)

// GetUploadLink returns a link to PUT the contents of path to. WithOverwrite
// allows replacing an existing file.
func (c *Client) GetUploadLink(ctx context.Context, p string, opts ...request.Option) (model.ResourceUploadLink, error) {
	return c.getUploadLink(ctx, p, request.Apply(opts...))
}

func (c *Client) getUploadLink(ctx context.Context, p string, opts request.Options) (model.ResourceUploadLink, error) {
	headers := nethttp.Header{}
	headers.Set("User-Agent", spoofedUserAgent)

	req := &request.Request[model.ResourceUploadLink]{
		Method:  nethttp.MethodGet,
		URL:     c.endpoint(pathUpload),
		Params:  values(paramPath, model.EnsurePathHasSchema(p, model.SchemaDisk)),
		Headers: headers,
		Options: opts,
		Process: request.Decode[model.ResourceUploadLink](),
	}
	return req.Send(ctx, c.api)
}

// GetDownloadLink returns a link to GET the contents of path from
func (c *Client) GetDownloadLink(ctx context.Context, p string, opts ...request.Option) (model.ResourceDownloadLink, error) {
	return c.getDownloadLink(ctx, p, request.Apply(opts...))
}

func (c *Client) getDownloadLink(ctx context.Context, p string, opts request.Options) (model.ResourceDownloadLink, error) {
	req := &request.Request[model.ResourceDownloadLink]{
		Method:  nethttp.MethodGet,
		URL:     c.endpoint(pathDownload),
		Params:  values(paramPath, model.EnsurePathHasSchema(p, model.SchemaDisk)),
		Options: opts,
		Process: request.Decode[model.ResourceDownloadLink](),
	}
	return req.Send(ctx, c.api)
}

// Upload sends src to dstPath. Timeouts and the retry interval default to
// the upload settings of the configuration.
func (c *Client) Upload(ctx context.Context, src transfer.Source, dstPath string, opts ...request.Option) (model.ResourceLink, error) {
	getLink := func(ctx context.Context, o request.Options) (string, error) {
		link, err := c.getUploadLink(ctx, dstPath, o.With(WithFields("href")))
		return link.Href, err
	}
	if err := transfer.Upload(ctx, c.upload, getLink, src, dstPath, request.Apply(opts...)); err != nil {
		return model.ResourceLink{}, err
	}
	return model.NewResourceLink(c.cfg.API.BaseURL, dstPath), nil
}

// UploadByLink sends src to a link obtained earlier
func (c *Client) UploadByLink(ctx context.Context, src transfer.Source, link string, opts ...request.Option) error {
	return transfer.Upload(ctx, c.upload, transfer.FixedLink(link), src, transfer.Redact(link), request.Apply(opts...))
}

// Download writes the contents of srcPath to dst
func (c *Client) Download(ctx context.Context, srcPath string, dst transfer.Destination, opts ...request.Option) (model.ResourceLink, error) {
	getLink := func(ctx context.Context, o request.Options) (string, error) {
		link, err := c.getDownloadLink(ctx, srcPath, o.With(WithFields("href")))
		return link.Href, err
	}
	if err := transfer.Download(ctx, c.api, getLink, srcPath, dst, request.Apply(opts...)); err != nil {
		return model.ResourceLink{}, err
	}
	return model.NewResourceLink(c.cfg.API.BaseURL, srcPath), nil
}

// DownloadByLink writes the contents behind a link obtained earlier to dst
func (c *Client) DownloadByLink(ctx context.Context, link string, dst transfer.Destination, opts ...request.Option) error {
	return transfer.Download(ctx, c.api, transfer.FixedLink(link), transfer.Redact(link), dst, request.Apply(opts...))
}

// UploadURL makes the server download url into path. The transfer always
// runs as an operation, which is waited for unless WithWait(false).
func (c *Client) UploadURL(ctx context.Context, url, p string, opts ...request.Option) (model.AsyncLink, error) {
	return c.sendAndWait(ctx, &request.Request[model.AsyncLink]{
		Method: nethttp.MethodPost,
		URL:    c.endpoint(pathUpload),
		Params: values(
			"url", url,
			paramPath, model.EnsurePathHasSchema(p, model.SchemaDisk),
		),
		SuccessCodes: []int{nethttp.StatusAccepted},
		Options:      request.Apply(opts...),
		Process: func(_ context.Context, r request.Result) (model.AsyncLink, error) {
			link, err := model.Decode[model.OperationLink](r.JSON)
			if err != nil {
				return model.AsyncLink{}, err
			}
			return model.AsyncLink{Operation: &link}, nil
		},
	})
}
