// Package blobstore deletes stored excerpt images referenced by URL.
package blobstore

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ObjectPath extracts the storage object path from a blob reference.
//
// Accepted forms are plain relative paths, file:// and gs://bucket/ URLs, and
// storage download URLs shaped like
// https://host/v0/b/<bucket>/o/<escaped object>?alt=media.
// For any other http(s) URL the URL path is used. The result never contains
// ".." segments.
func ObjectPath(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty blob reference")
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid blob reference %q: %w", ref, err)
	}

	var object string
	switch u.Scheme {
	case "", "file", "gs":
		object = u.Path
	case "http", "https":
		escaped := u.EscapedPath()
		if i := strings.Index(escaped, "/o/"); i >= 0 {
			object, err = url.PathUnescape(escaped[i+len("/o/"):])
			if err != nil {
				return "", fmt.Errorf("invalid object name in %q: %w", ref, err)
			}
		} else {
			object = u.Path
		}
	default:
		return "", fmt.Errorf("unsupported blob reference scheme %q", u.Scheme)
	}

	object = strings.TrimPrefix(path.Clean("/"+object), "/")
	if object == "" || object == "." {
		return "", fmt.Errorf("blob reference %q has no object path", ref)
	}
	return object, nil
}
