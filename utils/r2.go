// utils/r2.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	appconfig "ff-tournament-system/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"
)

var r2Client *s3.Client
var r2Bucket string
var cdnBaseURL string

// ErrR2Disabled is returned by uploads when InitR2 has not run.
var ErrR2Disabled = fmt.Errorf("R2 storage is not configured")

func InitR2(cfg appconfig.R2Config) error {
	r2Bucket = cfg.Bucket
	cdnBaseURL = strings.TrimSuffix(cfg.CDNBaseURL, "/")
	if cdnBaseURL == "" {
		cdnBaseURL = fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s", cfg.AccountID, cfg.Bucket)
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.AccessKeySecret, "",
		)),
	)
	if err != nil {
		return fmt.Errorf("failed to load R2 config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	r2Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return nil
}

// R2Enabled reports whether InitR2 has configured a client.
func R2Enabled() bool {
	return r2Client != nil
}

// UploadBytesToR2 stores data under key and returns the public URL.
func UploadBytesToR2(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if r2Client == nil {
		return "", ErrR2Disabled
	}

	_, err := r2Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r2Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", cdnBaseURL, key), nil
}

// ObjectKey builds a dated, slugged object key such as
// "exports/players/players-export-20261018-153000.xlsx".
func ObjectKey(folder, name, ext string, at time.Time) string {
	base := slug.Make(name)
	if base == "" {
		base = "file"
	}
	ext = strings.TrimPrefix(ext, ".")
	file := fmt.Sprintf("%s-%s.%s", base, at.UTC().Format("20060102-150405"), ext)
	return path.Join(slug.Make(folder), file)
}
