package store

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vidmerge/vidmerge-bot/health"
	"github.com/vidmerge/vidmerge-bot/models"
)

// ProgressFunc observes a byte-counted transfer.
type ProgressFunc func(transferred, total int64)

// ObjectStore is the remote storage collaborator: link validation, metadata
// lookup and streaming transfers against one bucket.
type ObjectStore interface {
	ValidateLink(link string) (string, bool)
	FetchMetadata(ctx context.Context, key string) (*models.FileRef, error)
	Download(ctx context.Context, key, destPath string, onProgress ProgressFunc) error
	Upload(ctx context.Context, localPath, key string, onProgress ProgressFunc) (string, error)
	ObjectURL(key string) string

	health.ReadinessCheck
}

// The two accepted link shapes: the s3 URI and the virtual-hosted https URL.
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^s3://([^/]+)/(.+)$`),
	regexp.MustCompile(`^https://([^./]+)\.s3[.a-z0-9-]*\.amazonaws\.com/(.+)$`),
}

type S3ObjectStore struct {
	client     *s3.Client
	bucketName string
	region     string
}

func NewS3ObjectStore(client *s3.Client, bucketName, region string) *S3ObjectStore {
	return &S3ObjectStore{
		client:     client,
		bucketName: bucketName,
		region:     region,
	}
}

func (s *S3ObjectStore) IsReady(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	return err
}

func (s *S3ObjectStore) Name() string {
	return "S3[videoObjects]"
}

// ValidateLink extracts the object key from a link pointing at the
// configured bucket. Anything else is not a video reference.
func (s *S3ObjectStore) ValidateLink(link string) (string, bool) {
	link = strings.TrimSpace(link)
	for _, pattern := range linkPatterns {
		m := pattern.FindStringSubmatch(link)
		if m == nil {
			continue
		}
		if m[1] != s.bucketName {
			continue
		}
		key := strings.TrimSpace(m[2])
		if key == "" {
			continue
		}
		return key, true
	}
	return "", false
}

func (s *S3ObjectStore) FetchMetadata(ctx context.Context, key string) (*models.FileRef, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("head object %q: %w", key, err)
	}

	contentType := aws.ToString(out.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(path.Ext(key))
	}

	return &models.FileRef{
		RemoteID:    key,
		DisplayName: path.Base(key),
		SizeBytes:   uint64(aws.ToInt64(out.ContentLength)),
		IsVideo:     strings.HasPrefix(contentType, "video/"),
	}, nil
}

func (s *S3ObjectStore) Download(ctx context.Context, key, destPath string, onProgress ProgressFunc) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get object %q: %w", key, err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %q: %w", destPath, err)
	}

	total := aws.ToInt64(out.ContentLength)
	reader := newProgressReader(out.Body, total, onProgress)

	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		return fmt.Errorf("download %q: %w", key, err)
	}
	return f.Close()
}

func (s *S3ObjectStore) Upload(ctx context.Context, localPath, key string, onProgress ProgressFunc) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %q: %w", localPath, err)
	}

	body := newProgressReadSeeker(f, info.Size(), onProgress)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentTypeFor(key)),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return key, nil
}

// ObjectURL renders the shareable https URL for an uploaded object. Each
// key segment is percent-encoded; slashes stay literal.
func (s *S3ObjectStore) ObjectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, strings.Join(segments, "/"))
}

func contentTypeFor(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}
