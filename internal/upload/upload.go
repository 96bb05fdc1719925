// Package upload publishes raw and processed files to an S3 bucket.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes files to one bucket under an optional key prefix.
type Uploader struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

// New creates an Uploader around an existing client.
func New(client PutObjectAPI, bucket, prefix string, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// NewS3 creates an Uploader with credentials from the default AWS chain.
func NewS3(ctx context.Context, bucket, prefix string, logger *slog.Logger) (*Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return New(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

// Key returns the object key of a file: the names of its two parent folders
// and the file name, under the prefix. data/raw/teams/lal-1998.html becomes
// raw/teams/lal-1998.html.
func (u *Uploader) Key(file string) string {
	dir := filepath.Dir(file)
	key := path.Join(filepath.Base(filepath.Dir(dir)), filepath.Base(dir), filepath.Base(file))
	if u.prefix != "" {
		key = path.Join(u.prefix, key)
	}
	return key
}

// UploadDir uploads every file in dir whose name ends in one of exts and
// returns the number uploaded. The first failure stops the upload.
func (u *Uploader) UploadDir(ctx context.Context, dir string, exts ...string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !hasExt(e.Name(), exts) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	for i, f := range files {
		if err := u.UploadFile(ctx, f); err != nil {
			return i, err
		}
	}
	return len(files), nil
}

// UploadFile uploads one file.
func (u *Uploader) UploadFile(ctx context.Context, file string) error {
	fh, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open %s: %w", file, err)
	}
	defer fh.Close()

	key := u.Key(file)
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   fh,
	}
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	u.logger.Info("uploaded", "file", filepath.Base(file), "bucket", u.bucket, "key", key)
	return nil
}

func hasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
