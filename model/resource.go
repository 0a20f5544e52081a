package model

import (
	"encoding/json"
	"time"
)

// Resource types
const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// Preview is one entry of Resource.Sizes
type Preview struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// ShareInfo describes a shared folder
type ShareInfo struct {
	IsRoot  *bool  `json:"is_root,omitempty"`
	IsOwned *bool  `json:"is_owned,omitempty"`
	Rights  string `json:"rights,omitempty"`
}

// EXIF holds the photo metadata of a file
type EXIF struct {
	DateTime     *time.Time `json:"date_time,omitempty"`
	GPSLongitude *float64   `json:"gps_longitude,omitempty"`
	GPSLatitude  *float64   `json:"gps_latitude,omitempty"`
}

// CommentIDs identifies comment threads of a resource
type CommentIDs struct {
	PrivateResource string `json:"private_resource,omitempty"`
	PublicResource  string `json:"public_resource,omitempty"`
}

// Resource is the full metadata record of a file or directory
type Resource struct {
	AntivirusStatus  json.RawMessage `json:"antivirus_status,omitempty"`
	File             string          `json:"file,omitempty"`
	Size             *int64          `json:"size,omitempty" validate:"omitempty,gte=0"`
	PublicKey        string          `json:"public_key,omitempty"`
	SHA256           string          `json:"sha256,omitempty"`
	MD5              string          `json:"md5,omitempty"`
	Embedded         *ResourceList   `json:"_embedded,omitempty"`
	Name             string          `json:"name,omitempty"`
	EXIF             *EXIF           `json:"exif,omitempty"`
	ResourceID       string          `json:"resource_id,omitempty"`
	CustomProperties map[string]any  `json:"custom_properties,omitempty"`
	PublicURL        string          `json:"public_url,omitempty"`
	Share            *ShareInfo      `json:"share,omitempty"`
	Modified         *time.Time      `json:"modified,omitempty"`
	Created          *time.Time      `json:"created,omitempty"`
	PhotosliceTime   *time.Time      `json:"photoslice_time,omitempty"`
	MimeType         string          `json:"mime_type,omitempty"`
	Path             string          `json:"path,omitempty" validate:"omitempty,disk_path"`
	Preview          string          `json:"preview,omitempty"`
	CommentIDs       *CommentIDs     `json:"comment_ids,omitempty"`
	Type             string          `json:"type,omitempty" validate:"omitempty,oneof=file dir"`
	MediaType        string          `json:"media_type,omitempty"`
	Revision         *int64          `json:"revision,omitempty"`
	Sizes            []Preview       `json:"sizes,omitempty"`
}

// ResourcePath implements PathRef
func (r *Resource) ResourcePath() (string, error) {
	return RequireString(r.Path, "path")
}

// IsFile reports whether the resource is a file
func (r *Resource) IsFile() bool { return r.Type == TypeFile }

// IsDir reports whether the resource is a directory
func (r *Resource) IsDir() bool { return r.Type == TypeDir }

// ResourceList is the embedded directory listing of a Resource
type ResourceList struct {
	Sort   string     `json:"sort,omitempty"`
	Items  []Resource `json:"items" validate:"dive"`
	Limit  *int       `json:"limit,omitempty"`
	Offset *int       `json:"offset,omitempty"`
	Path   string     `json:"path,omitempty"`
	Total  *int       `json:"total,omitempty"`
}

// FilesResourceList is a flat list of files
type FilesResourceList struct {
	Items  []Resource `json:"items" validate:"dive"`
	Limit  *int       `json:"limit,omitempty"`
	Offset *int       `json:"offset,omitempty"`
}

// LastUploadedResourceList lists recently uploaded files
type LastUploadedResourceList struct {
	Items []Resource `json:"items" validate:"dive"`
	Limit *int       `json:"limit,omitempty"`
}

// UserPublicInfo is the public part of a user's profile
type UserPublicInfo struct {
	Login       string `json:"login,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	UID         string `json:"uid,omitempty"`
}

// PublicResource is a published resource
type PublicResource struct {
	Resource
	ViewsCount *int64              `json:"views_count,omitempty"`
	Owner      *UserPublicInfo     `json:"owner,omitempty"`
	Embedded   *PublicResourceList `json:"_embedded,omitempty"`
}

type publicResourceJSON struct {
	Resource
	ViewsCount *int64              `json:"views_count,omitempty"`
	ViewCount  *int64              `json:"view_count,omitempty"`
	Owner      *UserPublicInfo     `json:"owner,omitempty"`
	Embedded   *PublicResourceList `json:"_embedded,omitempty"`
}

// UnmarshalJSON accepts view_count as an alias of views_count
func (r *PublicResource) UnmarshalJSON(data []byte) error {
	var raw publicResourceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Resource = raw.Resource
	r.Resource.Embedded = nil
	r.ViewsCount = raw.ViewsCount
	if r.ViewsCount == nil {
		r.ViewsCount = raw.ViewCount
	}
	r.Owner = raw.Owner
	r.Embedded = raw.Embedded
	return nil
}

// ResourcePublicKey implements PublicRef
func (r *PublicResource) ResourcePublicKey() (string, error) {
	return RequireString(r.PublicKey, "public_key")
}

// PublicResourceList is the embedded listing of a public directory
type PublicResourceList struct {
	Sort      string           `json:"sort,omitempty"`
	PublicKey string           `json:"public_key,omitempty"`
	Items     []PublicResource `json:"items" validate:"dive"`
	Path      string           `json:"path,omitempty"`
	Limit     *int             `json:"limit,omitempty"`
	Offset    *int             `json:"offset,omitempty"`
	Total     *int             `json:"total,omitempty"`
}

// PublicResourcesList lists the user's published resources
type PublicResourcesList struct {
	Items  []PublicResource `json:"items" validate:"dive"`
	Type   string           `json:"type,omitempty"`
	Limit  *int             `json:"limit,omitempty"`
	Offset *int             `json:"offset,omitempty"`
}

// TrashResource is a resource in the trash bin
type TrashResource struct {
	Resource
	OriginPath string             `json:"origin_path,omitempty" validate:"omitempty,disk_path"`
	Deleted    *time.Time         `json:"deleted,omitempty"`
	Embedded   *TrashResourceList `json:"_embedded,omitempty"`
}

// ResourcePath implements PathRef for trash items
func (r *TrashResource) ResourcePath() (string, error) {
	return RequireString(r.Path, "path")
}

// TrashResourceList is the embedded listing of a trash directory
type TrashResourceList struct {
	Sort   string          `json:"sort,omitempty"`
	Items  []TrashResource `json:"items" validate:"dive"`
	Limit  *int            `json:"limit,omitempty"`
	Offset *int            `json:"offset,omitempty"`
	Path   string          `json:"path,omitempty"`
	Total  *int            `json:"total,omitempty"`
}
