package hosting

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config selects the bucket and credentials for S3Uploader.
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint points the client at an S3-compatible store such as MinIO.
	// Path-style addressing is used whenever it is set.
	Endpoint string
	// PublicBaseURL, when set, prefixes object keys to form public URLs
	// (a CDN or a public bucket domain).
	PublicBaseURL string
}

// S3Uploader hosts images in an S3 bucket.
type S3Uploader struct {
	client *s3.Client
	cfg    S3Config
}

var _ Uploader = (*S3Uploader)(nil)

// NewS3Uploader builds the S3 client. Explicit keys take precedence over
// the default AWS credential chain.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("hosting: S3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("hosting: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		// S3-compatible stores often reject the newer trailing checksums.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3Uploader{client: client, cfg: cfg}, nil
}

// Upload stores the image under "<folder>/<uuid>.<ext>" with the mood and
// collection as object tags.
func (s *S3Uploader) Upload(ctx context.Context, u Upload) (string, error) {
	contentType, data, err := DecodeDataURI(u.DataURI)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.%s", strings.Trim(u.Folder, "/"), uuid.NewString(), extensionFor(contentType))

	tagging := url.Values{}
	tagging.Set("mood", u.tag(0, "unknown"))
	tagging.Set("collection", u.tag(1, "default"))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		Tagging:       aws.String(tagging.Encode()),
	})
	if err != nil {
		return "", fmt.Errorf("hosting: uploading to S3: %w", err)
	}

	return s.publicURL(key), nil
}

func (s *S3Uploader) publicURL(key string) string {
	switch {
	case s.cfg.PublicBaseURL != "":
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	case s.cfg.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}
