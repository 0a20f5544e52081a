// Package model holds the typed objects returned by the API. Objects are
// validated once when decoded; fields the API may omit are pointers or
// empty strings.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ivknv/yadisk-go/apierr"
	"github.com/ivknv/yadisk-go/validation"
)

// PathRef is implemented by anything that refers to a resource on the disk
type PathRef interface {
	ResourcePath() (string, error)
}

// PublicRef is implemented by anything that refers to a public resource
type PublicRef interface {
	ResourcePublicKey() (string, error)
}

var (
	_ PathRef   = ResourceLink{}
	_ PathRef   = (*Resource)(nil)
	_ PathRef   = (*TrashResource)(nil)
	_ PublicRef = PublicResourceLink{}
	_ PublicRef = (*PublicResource)(nil)
)

// Decode unmarshals data into T and validates it. Malformed or invalid
// objects become an InvalidResponse error.
func Decode[T any](data []byte) (T, error) {
	var v T
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return v, apierr.NewInvalidResponseError("Server returned an empty response", nil)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, apierr.NewInvalidResponseError("Server returned malformed JSON", err)
	}
	if err := Validate(&v); err != nil {
		return v, err
	}
	return v, nil
}

// Validate checks v with the shared validator. A failure becomes an InvalidResponse error.
func Validate(v any) error {
	if err := validation.Default().Validate(v); err != nil {
		return apierr.NewInvalidResponseError(fmt.Sprintf("Server returned an invalid object: %v", err), err)
	}
	return nil
}

// Require returns *ptr or a MissingField error when ptr is nil
func Require[T any](ptr *T, field string) (T, error) {
	if ptr == nil {
		var zero T
		return zero, apierr.NewMissingFieldError(field)
	}
	return *ptr, nil
}

// RequireString returns s or a MissingField error when s is empty
func RequireString(s, field string) (string, error) {
	if s == "" {
		return "", apierr.NewMissingFieldError(field)
	}
	return s, nil
}
