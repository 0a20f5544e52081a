package client

import (
	"context"
	"iter"
	nethttp "net/http"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/request"
	"github.com/ivknv/yadisk-go/transfer"
)

const (
	pathPublic         = "/v1/disk/public/resources"
	pathPublicDownload = "/v1/disk/public/resources/download"
	pathSaveToDisk     = "/v1/disk/public/resources/save-to-disk"
)

// GetPublicMeta returns the metadata of a public resource. WithPublicPath
// selects an item inside a public folder.
func (c *Client) GetPublicMeta(ctx context.Context, publicKey string, opts ...request.Option) (*model.PublicResource, error) {
	return c.getPublicMeta(ctx, publicKey, request.Apply(opts...))
}

func (c *Client) getPublicMeta(ctx context.Context, publicKey string, opts request.Options) (*model.PublicResource, error) {
	req := &request.Request[*model.PublicResource]{
		Method:  nethttp.MethodGet,
		URL:     c.endpoint(pathPublic),
		Params:  values(paramPublicKey, publicKey),
		Options: substituteFields(opts),
		Process: decodeTo[model.PublicResource],
	}
	return req.Send(ctx, c.api)
}

// PublicExists reports whether a public resource exists
func (c *Client) PublicExists(ctx context.Context, publicKey string, opts ...request.Option) (bool, error) {
	_, err := c.getPublicMeta(ctx, publicKey, request.Apply(opts...).With(WithFields("type")))
	if apierr.IsKind(err, apierr.KindPathNotFound) {
		return false, nil
	}
	return err == nil, err
}

// PublicListdir iterates over the contents of a public folder
func (c *Client) PublicListdir(ctx context.Context, publicKey string, opts ...request.Option) iter.Seq2[model.PublicResource, error] {
	return listdir(ctx, publicKey, request.Apply(opts...), func(ctx context.Context, o request.Options) (listPage[model.PublicResource], error) {
		r, err := c.getPublicMeta(ctx, publicKey, o)
		if err != nil {
			return listPage[model.PublicResource]{}, err
		}
		page := listPage[model.PublicResource]{typ: r.Type}
		if e := r.Embedded; e != nil {
			page.embedded = true
			page.items, page.offset, page.limit, page.total = e.Items, e.Offset, e.Limit, e.Total
		}
		return page, nil
	})
}

// GetPublicDownloadLink returns a link to GET a public resource from
func (c *Client) GetPublicDownloadLink(ctx context.Context, publicKey string, opts ...request.Option) (string, error) {
	return c.getPublicDownloadLink(ctx, publicKey, request.Apply(opts...))
}

func (c *Client) getPublicDownloadLink(ctx context.Context, publicKey string, opts request.Options) (string, error) {
	req := &request.Request[model.ResourceDownloadLink]{
		Method:  nethttp.MethodGet,
		URL:     c.endpoint(pathPublicDownload),
		Params:  values(paramPublicKey, publicKey),
		Options: opts.With(WithFields("href")),
		Process: request.Decode[model.ResourceDownloadLink](),
	}
	link, err := req.Send(ctx, c.api)
	return link.Href, err
}

// DownloadPublic writes a public resource to dst
func (c *Client) DownloadPublic(ctx context.Context, publicKey string, dst transfer.Destination, opts ...request.Option) (model.PublicResourceLink, error) {
	getLink := func(ctx context.Context, o request.Options) (string, error) {
		return c.getPublicDownloadLink(ctx, publicKey, o)
	}
	if err := transfer.Download(ctx, c.api, getLink, publicKey, dst, request.Apply(opts...)); err != nil {
		return model.PublicResourceLink{}, err
	}
	return model.NewPublicResourceLink(c.cfg.API.BaseURL, publicKey), nil
}

// SaveToDisk copies a public resource into the user's Downloads folder, or
// into savePath when it is not empty. A non-empty name renames the copy.
func (c *Client) SaveToDisk(ctx context.Context, publicKey, name, savePath string, opts ...request.Option) (model.AsyncLink, error) {
	o := request.Apply(opts...)
	force := forcesAsync(o)

	params := values(paramPublicKey, publicKey)
	if name != "" {
		params.Set("name", name)
	}
	if savePath != "" {
		params.Set("save_path", model.EnsurePathHasSchema(savePath, model.SchemaDisk))
	}
	return c.sendAndWait(ctx, &request.Request[model.AsyncLink]{
		Method:       nethttp.MethodPost,
		URL:          c.endpoint(pathSaveToDisk),
		Params:       params,
		SuccessCodes: []int{nethttp.StatusCreated, nethttp.StatusAccepted},
		Options:      o,
		Process: func(_ context.Context, r request.Result) (model.AsyncLink, error) {
			return c.asyncLink(r, force)
		},
	})
}
