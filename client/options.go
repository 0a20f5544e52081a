package client

import (
	"strconv"
	"strings"

	"github.com/ivknv/yadisk-go/request"
)

// Query parameters shared by several endpoints
const (
	paramPath        = "path"
	paramFrom        = "from"
	paramFields      = "fields"
	paramLimit       = "limit"
	paramOffset      = "offset"
	paramSort        = "sort"
	paramOverwrite   = "overwrite"
	paramForceAsync  = "force_async"
	paramPermanently = "permanently"
	paramMD5         = "md5"
	paramPublicKey   = "public_key"
)

// DefaultListLimit is the page size of directory listings
const DefaultListLimit = 500

// spoofedUserAgent lifts the upload speed limit applied to third-party clients
const spoofedUserAgent = `Yandex.Disk {"os":"windows"}`

// WithFields limits the response to the named keys
func WithFields(fields ...string) request.Option {
	return request.WithParam(paramFields, strings.Join(fields, ","))
}

// WithLimit sets the number of items per page
func WithLimit(n int) request.Option {
	return request.WithParam(paramLimit, strconv.Itoa(n))
}

// WithOffset skips the first n items
func WithOffset(n int) request.Option {
	return request.WithParam(paramOffset, strconv.Itoa(n))
}

// WithSort orders listings by key; a leading '-' reverses the order
func WithSort(key string) request.Option {
	return request.WithParam(paramSort, key)
}

// WithPreviewSize sets the size of preview images, e.g. "S" or "120x240"
func WithPreviewSize(size string) request.Option {
	return request.WithParam("preview_size", size)
}

// WithPreviewCrop crops previews to a square
func WithPreviewCrop(crop bool) request.Option {
	return request.WithParam("preview_crop", strconv.FormatBool(crop))
}

// WithMediaType filters files by media type, e.g. "image" or "video"
func WithMediaType(types ...string) request.Option {
	return request.WithParam("media_type", strings.Join(types, ","))
}

// WithOverwrite allows replacing an existing destination
func WithOverwrite(overwrite bool) request.Option {
	return request.WithParam(paramOverwrite, strconv.FormatBool(overwrite))
}

// WithForceAsync asks the server to always run the call as an operation
func WithForceAsync(force bool) request.Option {
	return request.WithParam(paramForceAsync, strconv.FormatBool(force))
}

// WithPermanently removes a resource without moving it to the trash
func WithPermanently(permanently bool) request.Option {
	return request.WithParam(paramPermanently, strconv.FormatBool(permanently))
}

// WithMD5 removes a file only if its checksum matches
func WithMD5(md5 string) request.Option {
	return request.WithParam(paramMD5, md5)
}

// WithPublicPath selects a resource inside a public folder
func WithPublicPath(path string) request.Option {
	return request.WithParam(paramPath, path)
}

// WithAllowAddressAccess publishes a resource for the listed addresses only
func WithAllowAddressAccess(allow bool) request.Option {
	return request.WithParam("allow_address_access", strconv.FormatBool(allow))
}

// WithDisableRedirects stops the server from following redirects of a URL upload
func WithDisableRedirects(disable bool) request.Option {
	return request.WithParam("disable_redirects", strconv.FormatBool(disable))
}
