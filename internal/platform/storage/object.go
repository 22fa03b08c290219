package storage

import (
	"errors"
	"path"
	"strings"
)

const defaultObjectPrefix = "images"

var (
	errInvalidBucket = errors.New("storage: bucket name is required")
	errInvalidObject = errors.New("storage: object name is invalid")
)

// objectKey joins prefix and name into a bucket key, rejecting traversal and separators in name.
func objectKey(prefix, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", errInvalidObject
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return name, nil
	}
	return path.Join(prefix, name), nil
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
