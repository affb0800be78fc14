// Package hosting uploads generated images to a public object store and
// returns the URL the image can be fetched from.
//
// Images travel as data URIs between the generator and the uploaders; the
// helpers here encode and decode them.
package hosting

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Upload is one image to host.
type Upload struct {
	// DataURI is "data:<content-type>;base64,<payload>".
	DataURI string
	// Folder groups uploads inside the bucket.
	Folder string
	// Tags are attached to the stored object. The first tag is the mood
	// keyword, the second the collection name.
	Tags []string
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, u Upload) (string, error)
}

// ErrMalformedDataURI is returned by DecodeDataURI for anything that is not
// a base64 data URI.
var ErrMalformedDataURI = errors.New("hosting: malformed data URI")

// EncodeDataURI renders data as a base64 data URI.
func EncodeDataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI is the inverse of EncodeDataURI.
func DecodeDataURI(uri string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrMalformedDataURI
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrMalformedDataURI
	}

	contentType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrMalformedDataURI)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
	}

	return contentType, data, nil
}

// extensionFor maps the image types the generation provider returns to a
// file extension.
func extensionFor(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.TrimSpace(strings.ToLower(mediaType)) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "bin"
	}
}

// tag returns u.Tags[i] or fallback when the tag is missing or blank.
func (u Upload) tag(i int, fallback string) string {
	if i < len(u.Tags) {
		if t := strings.TrimSpace(u.Tags[i]); t != "" {
			return t
		}
	}
	return fallback
}

// slug keeps lower-case letters, digits and dashes so a tag can be used as
// a path segment.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
