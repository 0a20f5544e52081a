package client

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/request"
)

// listFields are always requested by listdir so that paging works
var listFields = []string{
	"type",
	"_embedded",
	"_embedded.offset",
	"_embedded.limit",
	"_embedded.total",
	"_embedded.items",
}

// listPage is one page of a directory listing
type listPage[T any] struct {
	typ      string
	embedded bool
	items    []T
	offset   *int
	limit    *int
	total    *int
}

func (p listPage[T]) validate(path string) error {
	if p.typ == "file" {
		return apierr.NewWrongResourceTypeError(fmt.Sprintf("%q is a file", path))
	}
	if !p.embedded {
		return apierr.NewInvalidResponseError("Response did not contain _embedded field", nil)
	}
	if p.typ == "" || p.items == nil || p.offset == nil || p.limit == nil || p.total == nil {
		return apierr.NewInvalidResponseError("Response did not contain key field", nil)
	}
	return nil
}

// listdir walks a directory page by page until offset+limit reaches total
func listdir[T any](ctx context.Context, path string, opts request.Options, fetch func(context.Context, request.Options) (listPage[T], error)) iter.Seq2[T, error] {
	opts = listOptions(opts)
	return func(yield func(T, error) bool) {
		var zero T
		o := opts
		for {
			page, err := fetch(ctx, o)
			if err == nil {
				err = page.validate(path)
			}
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range page.items {
				if !yield(item, nil) {
					return
				}
			}

			offset, limit, total := *page.offset, *page.limit, *page.total
			if limit <= 0 || offset+limit >= total {
				return
			}
			o = o.With(WithOffset(offset + limit))
		}
	}
}

// listOptions applies the default page size and scopes requested fields to the items
func listOptions(opts request.Options) request.Options {
	opts = opts.With()
	if opts.Params.Get(paramLimit) == "" {
		opts = opts.With(WithLimit(DefaultListLimit))
	}

	var fields []string
	if requested := opts.Params.Get(paramFields); requested != "" {
		for _, f := range strings.Split(requested, ",") {
			fields = append(fields, "_embedded.items."+strings.TrimSpace(f))
		}
	}
	return opts.With(WithFields(append(fields, listFields...)...))
}

// paginate walks an offset-paged list until a page comes back short
func paginate[T any](ctx context.Context, opts request.Options, defaultLimit int, fetch func(context.Context, request.Options) ([]T, error)) iter.Seq2[T, error] {
	limit := intParam(opts, paramLimit, defaultLimit)
	offset := intParam(opts, paramOffset, 0)
	return func(yield func(T, error) bool) {
		var zero T
		for off := offset; ; off += limit {
			items, err := fetch(ctx, opts.With(WithLimit(limit), WithOffset(off)))
			if err != nil {
				yield(zero, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			if limit <= 0 || len(items) < limit {
				return
			}
		}
	}
}

// substituteFields maps the "embedded" key to the name the API uses
func substituteFields(opts request.Options) request.Options {
	requested := opts.Params.Get(paramFields)
	if requested == "" {
		return opts
	}
	keys := strings.Split(requested, ",")
	for i, key := range keys {
		parts := strings.Split(strings.TrimSpace(key), ".")
		for j, part := range parts {
			if part == "embedded" {
				parts[j] = "_embedded"
			}
		}
		keys[i] = strings.Join(parts, ".")
	}
	return opts.With(WithFields(keys...))
}

func intParam(opts request.Options, key string, fallback int) int {
	if n, err := strconv.Atoi(opts.Params.Get(key)); err == nil {
		return n
	}
	return fallback
}
