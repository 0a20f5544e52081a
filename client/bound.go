package client

import (
	"context"
	"iter"

	"github.com/ivknv/yadisk-go/model"
	"github.com/ivknv/yadisk-go/request"
	"github.com/ivknv/yadisk-go/transfer"
)

// BoundResource is a resource reference tied to the client that dispatches
// calls for it. Both full resources and resource links can be bound.
type BoundResource struct {
	c   *Client
	ref model.PathRef
}

// Bind ties ref to c
func (c *Client) Bind(ref model.PathRef) *BoundResource {
	return &BoundResource{c: c, ref: ref}
}

// Path returns the path of the bound resource
func (b *BoundResource) Path() (string, error) {
	return b.ref.ResourcePath()
}

// GetMeta returns the current metadata of the resource
func (b *BoundResource) GetMeta(ctx context.Context, opts ...request.Option) (*model.Resource, error) {
	p, err := b.Path()
	if err != nil {
		return nil, err
	}
	return b.c.GetMeta(ctx, p, opts...)
}

// Exists reports whether the resource still exists
func (b *BoundResource) Exists(ctx context.Context, opts ...request.Option) (bool, error) {
	p, err := b.Path()
	if err != nil {
		return false, err
	}
	return b.c.Exists(ctx, p, opts...)
}

// Listdir iterates over the contents of the resource
func (b *BoundResource) Listdir(ctx context.Context, opts ...request.Option) iter.Seq2[model.Resource, error] {
	p, err := b.Path()
	if err != nil {
		return func(yield func(model.Resource, error) bool) {
			yield(model.Resource{}, err)
		}
	}
	return b.c.Listdir(ctx, p, opts...)
}

// Remove deletes the resource
func (b *BoundResource) Remove(ctx context.Context, opts ...request.Option) (model.AsyncLink, error) {
	p, err := b.Path()
	if err != nil {
		return model.AsyncLink{}, err
	}
	return b.c.Remove(ctx, p, opts...)
}

// Upload replaces the contents of the resource with src
func (b *BoundResource) Upload(ctx context.Context, src transfer.Source, opts ...request.Option) (model.ResourceLink, error) {
	p, err := b.Path()
	if err != nil {
		return model.ResourceLink{}, err
	}
	return b.c.Upload(ctx, src, p, opts...)
}

// Download writes the contents of the resource to dst
func (b *BoundResource) Download(ctx context.Context, dst transfer.Destination, opts ...request.Option) (model.ResourceLink, error) {
	p, err := b.Path()
	if err != nil {
		return model.ResourceLink{}, err
	}
	return b.c.Download(ctx, p, dst, opts...)
}

// Publish makes the resource public
func (b *BoundResource) Publish(ctx context.Context, opts ...request.Option) (model.ResourceLink, error) {
	p, err := b.Path()
	if err != nil {
		return model.ResourceLink{}, err
	}
	return b.c.Publish(ctx, p, opts...)
}

// Unpublish makes the resource private
func (b *BoundResource) Unpublish(ctx context.Context, opts ...request.Option) (model.ResourceLink, error) {
	p, err := b.Path()
	if err != nil {
		return model.ResourceLink{}, err
	}
	return b.c.Unpublish(ctx, p, opts...)
}

// Copy copies the resource to dst
func (b *BoundResource) Copy(ctx context.Context, dst string, opts ...request.Option) (model.AsyncLink, error) {
	p, err := b.Path()
	if err != nil {
		return model.AsyncLink{}, err
	}
	return b.c.Copy(ctx, p, dst, opts...)
}

// Move moves the resource to dst
func (b *BoundResource) Move(ctx context.Context, dst string, opts ...request.Option) (model.AsyncLink, error) {
	p, err := b.Path()
	if err != nil {
		return model.AsyncLink{}, err
	}
	return b.c.Move(ctx, p, dst, opts...)
}
