package client

import (
	"context"
	"errors"
	"fmt"
	"iter"
	nethttp "net/http"
	"path"
	"strings"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/request"
)

const (
	pathResources    = "/v1/disk/resources"
	pathCopy         = "/v1/disk/resources/copy"
	pathMove         = "/v1/disk/resources/move"
	pathPublish      = "/v1/disk/resources/publish"
	pathUnpublish    = "/v1/disk/resources/unpublish"
	pathFiles        = "/v1/disk/resources/files"
	pathLastUploaded = "/v1/disk/resources/last-uploaded"
	pathPublicList   = "/v1/disk/resources/public"
)

// GetMeta returns the metadata of path. For a directory it includes the
// first page of its contents.
func (c *Client) GetMeta(ctx context.Context, p string, opts ...request.Option) (*model.Resource, error) {
	return c.getMeta(ctx, p, request.Apply(opts...))
}

func (c *Client) getMeta(ctx context.Context, p string, opts request.Options) (*model.Resource, error) {
	req := &request.Request[*model.Resource]{
		Method:  nethttp.MethodGet,
		URL:     c.endpoint(pathResources),
		Params:  values(paramPath, model.EnsurePathHasSchema(p, model.SchemaDisk)),
		Options: substituteFields(opts),
		Process: decodeTo[model.Resource],
	}
	return req.Send(ctx, c.api)
}

// Exists reports whether path exists
func (c *Client) Exists(ctx context.Context, p string, opts ...request.Option) (bool, error) {
	_, err := c.GetType(ctx, p, opts...)
	if apierr.IsKind(err, apierr.KindPathNotFound) {
		return false, nil
	}
	return err == nil, err
}

// GetType returns "file" or "dir"
func (c *Client) GetType(ctx context.Context, p string, opts ...request.Option) (string, error) {
	r, err := c.getMeta(ctx, p, request.Apply(opts...).With(WithFields("type")))
	if err != nil {
		return "", err
	}
	return model.RequireString(r.Type, "type")
}

// IsFile reports whether path is a file. A missing path is not.
func (c *Client) IsFile(ctx context.Context, p string, opts ...request.Option) (bool, error) {
	return c.isType(ctx, p, model.TypeFile, opts)
}

// IsDir reports whether path is a directory. A missing path is not.
func (c *Client) IsDir(ctx context.Context, p string, opts ...request.Option) (bool, error) {
	return c.isType(ctx, p, model.TypeDir, opts)
}

func (c *Client) isType(ctx context.Context, p, want string, opts []request.Option) (bool, error) {
	typ, err := c.GetType(ctx, p, opts...)
	if apierr.IsKind(err, apierr.KindPathNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return typ == want, nil
}

// Listdir iterates over the contents of a directory, fetching pages of
// DefaultListLimit items unless WithLimit says otherwise. WithFields names
// keys of the items. Listing a file yields a WrongResourceType error.
func (c *Client) Listdir(ctx context.Context, p string, opts ...request.Option) iter.Seq2[model.Resource, error] {
	return listdir(ctx, p, request.Apply(opts...), func(ctx context.Context, o request.Options) (listPage[model.Resource], error) {
		r, err := c.getMeta(ctx, p, o)
		if err != nil {
			return listPage[model.Resource]{}, err
		}
		page := listPage[model.Resource]{typ: r.Type}
		if e := r.Embedded; e != nil {
			page.embedded = true
			page.items, page.offset, page.limit, page.total = e.Items, e.Offset, e.Limit, e.Total
		}
		return page, nil
	})
}

// Mkdir creates a directory. The parent must exist.
func (c *Client) Mkdir(ctx context.Context, p string, opts ...request.Option) (model.ResourceLink, error) {
	req := &request.Request[model.ResourceLink]{
		Method:       nethttp.MethodPut,
		URL:          c.endpoint(pathResources),
		Params:       values(paramPath, model.EnsurePathHasSchema(p, model.SchemaDisk)),
		SuccessCodes: []int{nethttp.StatusCreated},
		Options:      request.Apply(opts...),
		Process:      request.Decode[model.ResourceLink](),
	}
	return req.Send(ctx, c.api)
}

// Makedirs creates a directory along with any missing parents
func (c *Client) Makedirs(ctx context.Context, p string, opts ...request.Option) (model.ResourceLink, error) {
	link, err := c.Mkdir(ctx, p, opts...)
	if !apierr.IsKind(err, apierr.KindParentNotFound) {
		return link, err
	}

	schema, rest := model.RemovePathSchema(p)
	parent := strings.Trim(path.Dir(strings.Trim(rest, "/")), "/")
	if parent == "" || parent == "." {
		return link, err
	}
	if schema != "" {
		parent = schema + ":/" + parent
	}

	if _, perr := c.Makedirs(ctx, parent, opts...); perr != nil && !apierr.IsKind(perr, apierr.KindDirectoryExists) {
		return link, perr
	}
	return c.Mkdir(ctx, p, opts...)
}

// Remove deletes path, moving it to the trash unless WithPermanently is
// given. A pending operation is waited for unless WithWait(false).
func (c *Client) Remove(ctx context.Context, p string, opts ...request.Option) (model.AsyncLink, error) {
	o := request.Apply(opts...)
	force := forcesAsync(o)
	return c.sendAndWait(ctx, &request.Request[model.AsyncLink]{
		Method:       nethttp.MethodDelete,
		URL:          c.endpoint(pathResources),
		Params:       values(paramPath, model.EnsurePathHasSchema(p, model.SchemaDisk)),
		SuccessCodes: []int{nethttp.StatusAccepted, nethttp.StatusNoContent},
		Options:      o,
		Process: func(_ context.Context, r request.Result) (model.AsyncLink, error) {
			return operationOnly(r, force)
		},
	})
}

// operationOnly interprets a response that is either empty or an operation link.
// An empty 204 means the operation already completed, even with force_async.
func operationOnly(r request.Result, forceAsync bool) (model.AsyncLink, error) {
	if r.JSON == nil {
		if r.StatusCode != nethttp.StatusAccepted {
			return model.AsyncLink{}, nil
		}
		if forceAsync {
			return model.AsyncLink{}, errNoOperationLink()
		}
		return model.AsyncLink{}, apierr.WithDisableRetry(
			apierr.NewInvalidResponseError("Yandex.Disk returned invalid JSON", nil))
	}
	link, err := model.Decode[model.OperationLink](r.JSON)
	if err != nil {
		return model.AsyncLink{}, apierr.WithDisableRetry(err)
	}
	return model.AsyncLink{Operation: &link}, nil
}

// Copy copies src to dst
func (c *Client) Copy(ctx context.Context, src, dst string, opts ...request.Option) (model.AsyncLink, error) {
	return c.transferResource(ctx, pathCopy, src, dst, opts)
}

// Move moves src to dst
func (c *Client) Move(ctx context.Context, src, dst string, opts ...request.Option) (model.AsyncLink, error) {
	return c.transferResource(ctx, pathMove, src, dst, opts)
}

func (c *Client) transferResource(ctx context.Context, endpoint, src, dst string, opts []request.Option) (model.AsyncLink, error) {
	o := request.Apply(opts...)
	force := forcesAsync(o)
	return c.sendAndWait(ctx, &request.Request[model.AsyncLink]{
		Method: nethttp.MethodPost,
		URL:    c.endpoint(endpoint),
		Params: values(
			paramFrom, model.EnsurePathHasSchema(src, model.SchemaDisk),
			paramPath, model.EnsurePathHasSchema(dst, model.SchemaDisk),
		),
		SuccessCodes: []int{nethttp.StatusCreated, nethttp.StatusAccepted},
		Options:      o,
		Process: func(_ context.Context, r request.Result) (model.AsyncLink, error) {
			return c.asyncLink(r, force)
		},
	})
}

// Rename gives src the name newName within the same directory
func (c *Client) Rename(ctx context.Context, src, newName string, opts ...request.Option) (model.AsyncLink, error) {
	dst, err := renameTarget(src, newName)
	if err != nil {
		return model.AsyncLink{}, err
	}
	return c.Move(ctx, src, dst, opts...)
}

func renameTarget(src, newName string) (string, error) {
	newName = strings.TrimRight(newName, "/")
	if strings.Contains(newName, "/") || newName == "" || newName == "." || newName == ".." {
		return "", fmt.Errorf("invalid filename: %q", newName)
	}

	schema, rest := model.RemovePathSchema(src)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return "", errors.New("cannot rename root")
	}

	dst := newName
	if dir := path.Dir(rest); dir != "." {
		dst = dir + "/" + newName
	}
	if schema != "" {
		return schema + ":/" + dst, nil
	}
	return dst, nil
}

// Publish makes path public
func (c *Client) Publish(ctx context.Context, p string, opts ...request.Option) (model.ResourceLink, error) {
	return c.setPublic(ctx, pathPublish, p, opts)
}

// Unpublish makes path private again
func (c *Client) Unpublish(ctx context.Context, p string, opts ...request.Option) (model.ResourceLink, error) {
	return c.setPublic(ctx, pathUnpublish, p, opts)
}

func (c *Client) setPublic(ctx context.Context, endpoint, p string, opts []request.Option) (model.ResourceLink, error) {
	req := &request.Request[model.ResourceLink]{
		Method:  nethttp.MethodPut,
		URL:     c.endpoint(endpoint),
		Params:  values(paramPath, model.EnsurePathHasSchema(p, model.SchemaDisk)),
		Options: request.Apply(opts...),
		Process: request.Decode[model.ResourceLink](),
	}
	return req.Send(ctx, c.api)
}

// GetFiles returns one page of the flat list of all files
func (c *Client) GetFiles(ctx context.Context, opts ...request.Option) (*model.FilesResourceList, error) {
	return c.getFiles(ctx, request.Apply(opts...))
}

func (c *Client) getFiles(ctx context.Context, opts request.Options) (*model.FilesResourceList, error) {
	req := &request.Request[*model.FilesResourceList]{
		Method:  nethttp.MethodGet,
		URL:     c.endpoint(pathFiles),
		Options: opts,
		Process: decodeTo[model.FilesResourceList],
	}
	return req.Send(ctx, c.api)
}

// Files iterates over all files, page by page
func (c *Client) Files(ctx context.Context, opts ...request.Option) iter.Seq2[model.Resource, error] {
	return paginate(ctx, request.Apply(opts...), 200, func(ctx context.Context, o request.Options) ([]model.Resource, error) {
		list, err := c.getFiles(ctx, o)
		if err != nil {
			return nil, err
		}
		return list.Items, nil
	})
}

// GetLastUploaded returns the most recently uploaded files
func (c *Client) GetLastUploaded(ctx context.Context, opts ...request.Option) (*model.LastUploadedResourceList, error) {
	req := &request.Request[*model.LastUploadedResourceList]{
		Method:  nethttp.MethodGet,
		URL:     c.endpoint(pathLastUploaded),
		Options: request.Apply(opts...),
		Process: decodeTo[model.LastUploadedResourceList],
	}
	return req.Send(ctx, c.api)
}

// GetPublicResources returns one page of the resources the user has published
func (c *Client) GetPublicResources(ctx context.Context, opts ...request.Option) (*model.PublicResourcesList, error) {
	return c.getPublicResources(ctx, request.Apply(opts...))
}

func (c *Client) getPublicResources(ctx context.Context, opts request.Options) (*model.PublicResourcesList, error) {
	req := &request.Request[*model.PublicResourcesList]{
		Method:  nethttp.MethodGet,
		URL:     c.endpoint(pathPublicList),
		Options: opts,
		Process: decodeTo[model.PublicResourcesList],
	}
	return req.Send(ctx, c.api)
}

// PublicResources iterates over all published resources
func (c *Client) PublicResources(ctx context.Context, opts ...request.Option) iter.Seq2[model.PublicResource, error] {
	return paginate(ctx, request.Apply(opts...), 100, func(ctx context.Context, o request.Options) ([]model.PublicResource, error) {
		list, err := c.getPublicResources(ctx, o)
		if err != nil {
			return nil, err
		}
		return list.Items, nil
	})
}

// PatchCustomProperties merges props into the custom properties of path.
// A nil value removes a key.
func (c *Client) PatchCustomProperties(ctx context.Context, p string, props map[string]any, opts ...request.Option) (*model.Resource, error) {
	req := &request.Request[*model.Resource]{
		Method:  nethttp.MethodPatch,
		URL:     c.endpoint(pathResources),
		Params:  values(paramPath, model.EnsurePathHasSchema(p, model.SchemaDisk)),
		Body:    map[string]any{"custom_properties": props},
		Options: request.Apply(opts...),
		Process: decodeTo[model.Resource],
	}
	return req.Send(ctx, c.api)
}

func decodeTo[T any](_ context.Context, r request.Result) (*T, error) {
	v, err := model.Decode[T](r.JSON)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
