// Package storage describes where submitted files are kept.
package storage

import (
	"context"
	"io"
)

// Object is a stored file and the links under which it can be fetched.
type Object struct {
	Key          string
	ResourceType string
	SharedLink   string
	DirectLink   string
	Bytes        int64
}

// Metadata returns provider details worth persisting next to a record.
func (o Object) Metadata() map[string]interface{} {
	return map[string]interface{}{
		"key":           o.Key,
		"resource_type": o.ResourceType,
		"bytes":         o.Bytes,
	}
}

// Storage uploads files and removes them again.
type Storage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (Object, error)
	Delete(ctx context.Context, object Object) error
}
