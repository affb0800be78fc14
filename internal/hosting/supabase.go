package hosting

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"
)

// SupabaseUploader hosts images in a public Supabase Storage bucket.
type SupabaseUploader struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

var _ Uploader = (*SupabaseUploader)(nil)

// NewSupabaseUploader authenticates with a service-role key; the bucket
// must already exist and be public.
func NewSupabaseUploader(supabaseURL, serviceRoleKey, bucket string) (*SupabaseUploader, error) {
	baseURL := strings.TrimRight(supabaseURL, "/")
	if baseURL == "" || serviceRoleKey == "" || bucket == "" {
		return nil, fmt.Errorf("hosting: supabase url, key and bucket are required")
	}

	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &SupabaseUploader{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// Upload stores the image at "<folder>/<mood>/<uuid>.<ext>". The storage
// client has no context support, so ctx is only checked before the call.
func (s *SupabaseUploader) Upload(ctx context.Context, u Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	contentType, data, err := DecodeDataURI(u.DataURI)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/%s/%s.%s",
		strings.Trim(u.Folder, "/"),
		moodSegment(u),
		uuid.NewString(),
		extensionFor(contentType),
	)

	upsert := false
	_, err = s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("hosting: uploading to supabase: %w", err)
	}

	return s.PublicURL(path), nil
}

// PublicURL is where a public-bucket object at path is served from.
func (s *SupabaseUploader) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, path)
}

func moodSegment(u Upload) string {
	if seg := slug(u.tag(0, "")); seg != "" {
		return seg
	}
	return "unknown"
}
