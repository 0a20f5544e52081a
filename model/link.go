package model

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Link is the generic link object returned by many endpoints
type Link struct {
	Href      string `json:"href" validate:"required"`
	Method    string `json:"method,omitempty"`
	Templated bool   `json:"templated,omitempty"`
}

// OperationLink refers to an asynchronous operation
type OperationLink struct {
	Link
}

// ID returns the operation ID, the last path segment of the href
func (l OperationLink) ID() string {
	return OperationID(l.Href)
}

// OperationID extracts the operation ID from an href or returns idOrHref as is
func OperationID(idOrHref string) string {
	if !strings.Contains(idOrHref, "/") {
		return idOrHref
	}
	u, err := url.Parse(idOrHref)
	p := idOrHref
	if err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	return p[strings.LastIndex(p, "/")+1:]
}

// ResourceUploadLink holds the signed upload URL
type ResourceUploadLink struct {
	Link
	OperationID string `json:"operation_id,omitempty"`
}

// ResourceDownloadLink holds the signed download URL
type ResourceDownloadLink struct {
	Link
}

// ResourceLink is a lightweight reference to a resource, as returned by
// copy, move, mkdir and similar endpoints.
type ResourceLink struct {
	Link
	Path      string `json:"path,omitempty"`
	PublicKey string `json:"public_key,omitempty"`
	PublicURL string `json:"public_url,omitempty"`
	Type      string `json:"type,omitempty"`
	File      string `json:"file,omitempty"`
}

type resourceLinkJSON ResourceLink

// UnmarshalJSON fills Path from the href query when the href points at the resources endpoint
func (l *ResourceLink) UnmarshalJSON(data []byte) error {
	var raw resourceLinkJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = ResourceLink(raw)
	if l.Path == "" && strings.Contains(l.Href, "/v1/disk/resources?") {
		if p := queryParam(l.Href, "path"); p != "" {
			l.Path = EnsurePathHasSchema(p, SchemaDisk)
		}
	}
	return nil
}

// NewResourceLink builds the link the API would return for path
func NewResourceLink(baseURL, path string) ResourceLink {
	path = EnsurePathHasSchema(path, SchemaDisk)
	return ResourceLink{
		Link: Link{
			Method: "GET",
			Href:   strings.TrimRight(baseURL, "/") + "/v1/disk/resources?" + url.Values{"path": {path}}.Encode(),
		},
		Path: path,
	}
}

// ResourcePath implements PathRef
func (l ResourceLink) ResourcePath() (string, error) {
	return RequireString(l.Path, "path")
}

// PublicResourceLink is a lightweight reference to a public resource
type PublicResourceLink struct {
	Link
	PublicKey string `json:"public_key,omitempty"`
	PublicURL string `json:"public_url,omitempty"`
	Path      string `json:"path,omitempty"`
}

// NewPublicResourceLink builds the link the API would return for publicKey
func NewPublicResourceLink(baseURL, publicKey string) PublicResourceLink {
	return PublicResourceLink{
		Link: Link{
			Method: "GET",
			Href:   strings.TrimRight(baseURL, "/") + "/v1/disk/public/resources?" + url.Values{"public_key": {publicKey}}.Encode(),
		},
		PublicKey: publicKey,
	}
}

type publicResourceLinkJSON PublicResourceLink

// UnmarshalJSON fills PublicKey from the href query
func (l *PublicResourceLink) UnmarshalJSON(data []byte) error {
	var raw publicResourceLinkJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = PublicResourceLink(raw)
	if l.PublicKey == "" && strings.Contains(l.Href, "/v1/disk/public/resources?") {
		l.PublicKey = queryParam(l.Href, "public_key")
	}
	return nil
}

// ResourcePublicKey implements PublicRef
func (l PublicResourceLink) ResourcePublicKey() (string, error) {
	return RequireString(l.PublicKey, "public_key")
}

// AsyncLink is the result of a call the API may finish either at once,
// returning a resource link, or in the background, returning an operation link.
// Both are nil when the API replied without a body.
type AsyncLink struct {
	Resource  *ResourceLink  `json:"resource,omitempty"`
	Operation *OperationLink `json:"operation,omitempty"`
}

// PendingOperation returns the operation link, if any
func (a AsyncLink) PendingOperation() *OperationLink {
	return a.Operation
}
