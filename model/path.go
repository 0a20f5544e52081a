package model

import (
	"net/url"
	"strings"
)

// Path schemas known to the API
const (
	SchemaDisk       = "disk"
	SchemaTrash      = "trash"
	SchemaApp        = "app"
	SchemaPhotoUnlim = "photounlim"
)

var knownSchemas = []string{"disk:", "trash:", "app:", "photounlim:"}

// EnsurePathHasSchema prefixes p with defaultSchema unless it already
// starts with a known schema. Without a schema the API rejects names
// containing a colon, so a bare "disk:" is treated as a file name.
func EnsurePathHasSchema(p, defaultSchema string) string {
	for _, schema := range knownSchemas {
		if p == schema {
			return defaultSchema + ":/" + p
		}
	}
	if strings.HasPrefix(p, "/") {
		return defaultSchema + ":" + p
	}
	for _, schema := range knownSchemas {
		if strings.HasPrefix(p, schema+"/") {
			return p
		}
	}
	return defaultSchema + ":/" + p
}

// RemovePathSchema splits p into its schema (without ":/") and the remaining path
func RemovePathSchema(p string) (schema, rest string) {
	if strings.HasPrefix(p, "/") {
		return "", p
	}
	for _, known := range knownSchemas {
		if p == known {
			return "", p
		}
		if strings.HasPrefix(p, known+"/") {
			return strings.TrimSuffix(known, ":"), p[len(known)+1:]
		}
	}
	return "", p
}

// Join joins a remote directory path and a name with exactly one slash
func Join(dir, name string) string {
	return strings.TrimRight(dir, "/") + "/" + strings.TrimLeft(name, "/")
}

// Parent returns the parent directory of a remote path, keeping its schema.
// The root ("disk:/") is its own parent.
func Parent(p string) string {
	schema, rest := RemovePathSchema(p)
	prefix := ""
	if schema != "" {
		prefix = schema + ":"
	}
	rest = strings.TrimRight(rest, "/")
	i := strings.LastIndex(rest, "/")
	if i <= 0 {
		return prefix + "/"
	}
	return prefix + rest[:i]
}

func isEndpointLink(link, endpoint string) bool {
	return strings.HasPrefix(link, endpoint)
}

// IsOperationLink reports whether href points at the operations endpoint of baseURL
func IsOperationLink(href, baseURL string) bool {
	return isEndpointLink(href, strings.TrimRight(baseURL, "/")+"/v1/disk/operations/")
}

// IsResourceLink reports whether href points at the resources endpoint of baseURL
func IsResourceLink(href, baseURL string) bool {
	return isEndpointLink(href, strings.TrimRight(baseURL, "/")+"/v1/disk/resources?")
}

// IsPublicResourceLink reports whether href points at the public resources endpoint of baseURL
func IsPublicResourceLink(href, baseURL string) bool {
	return isEndpointLink(href, strings.TrimRight(baseURL, "/")+"/v1/disk/public/resources?")
}

// queryParam extracts one query parameter from href
func queryParam(href, key string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}
