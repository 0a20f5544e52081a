package client

import (
	"context"
	"iter"
	nethttp "net/http"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/request"
)

const (
	pathTrash        = "/v1/disk/trash/resources"
	pathTrashRestore = "/v1/disk/trash/resources/restore"
)

// GetTrashMeta returns the metadata of a resource in the trash
func (c *Client) GetTrashMeta(ctx context.Context, p string, opts ...request.Option) (*model.TrashResource, error) {
	return c.getTrashMeta(ctx, p, request.Apply(opts...))
}

func (c *Client) getTrashMeta(ctx context.Context, p string, opts request.Options) (*model.TrashResource, error) {
	req := &request.Request[*model.TrashResource]{
		Method:  nethttp.MethodGet,
		URL:     c.endpoint(pathTrash),
		Params:  values(paramPath, model.EnsurePathHasSchema(p, model.SchemaTrash)),
		Options: substituteFields(opts),
		Process: decodeTo[model.TrashResource],
	}
	return req.Send(ctx, c.api)
}

// TrashExists reports whether path exists in the trash
func (c *Client) TrashExists(ctx context.Context, p string, opts ...request.Option) (bool, error) {
	_, err := c.getTrashMeta(ctx, p, request.Apply(opts...).With(WithFields("type")))
	if apierr.IsKind(err, apierr.KindPathNotFound) {
		return false, nil
	}
	return err == nil, err
}

// TrashListdir iterates over the contents of a trash directory
func (c *Client) TrashListdir(ctx context.Context, p string, opts ...request.Option) iter.Seq2[model.TrashResource, error] {
	return listdir(ctx, p, request.Apply(opts...), func(ctx context.Context, o request.Options) (listPage[model.TrashResource], error) {
		r, err := c.getTrashMeta(ctx, p, o)
		if err != nil {
			return listPage[model.TrashResource]{}, err
		}
		page := listPage[model.TrashResource]{typ: r.Type}
		if e := r.Embedded; e != nil {
			page.embedded = true
			page.items, page.offset, page.limit, page.total = e.Items, e.Offset, e.Limit, e.Total
		}
		return page, nil
	})
}

// RemoveTrash deletes path from the trash for good. An empty path empties
// the whole trash.
func (c *Client) RemoveTrash(ctx context.Context, p string, opts ...request.Option) (model.AsyncLink, error) {
	o := request.Apply(opts...)
	force := forcesAsync(o)

	req := &request.Request[model.AsyncLink]{
		Method:       nethttp.MethodDelete,
		URL:          c.endpoint(pathTrash),
		SuccessCodes: []int{nethttp.StatusAccepted, nethttp.StatusNoContent},
		Options:      o,
		Process: func(_ context.Context, r request.Result) (model.AsyncLink, error) {
			return operationOnly(r, force)
		},
	}
	if p != "" {
		req.Params = values(paramPath, model.EnsurePathHasSchema(p, model.SchemaTrash))
	}
	return c.sendAndWait(ctx, req)
}

// RestoreTrash moves path out of the trash. A non-empty name restores it
// under a different name.
func (c *Client) RestoreTrash(ctx context.Context, p, name string, opts ...request.Option) (model.AsyncLink, error) {
	o := request.Apply(opts...)
	force := forcesAsync(o)

	params := values(paramPath, model.EnsurePathHasSchema(p, model.SchemaTrash))
	if name != "" {
		params.Set("name", name)
	}
	return c.sendAndWait(ctx, &request.Request[model.AsyncLink]{
		Method:       nethttp.MethodPut,
		URL:          c.endpoint(pathTrashRestore),
		Params:       params,
		SuccessCodes: []int{nethttp.StatusCreated, nethttp.StatusAccepted},
		Options:      o,
		Process: func(_ context.Context, r request.Result) (model.AsyncLink, error) {
			return c.asyncLink(r, force)
		},
	})
}
