package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/mdobak/go-xerrors"
)

type S3Storage struct {
	s3      *s3.S3
	bucket  string
	baseURL string
	logger  *slog.Logger
}

// NewS3Storage uses the default AWS credential chain. An empty baseURL
// serves objects from the bucket's virtual-hosted endpoint.
func NewS3Storage(region, bucket, baseURL string, logger *slog.Logger) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, xerrors.New(err)
	}

	if baseURL == "" || baseURL == "/media/" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com/", bucket)
	}

	return &S3Storage{
		s3:      s3.New(sess),
		bucket:  bucket,
		baseURL: baseURL,
		logger:  logger,
	}, nil
}

func (c *S3Storage) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}

	buffer := make([]byte, size)
	if _, err := io.ReadFull(r, buffer); err != nil {
		return "", xerrors.New(err)
	}

	_, err = c.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(buffer),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", xerrors.New(err)
	}

	c.logger.InfoContext(ctx, "Media object uploaded", "bucket", c.bucket, "key", name)
	return name, nil
}

func (c *S3Storage) Delete(ctx context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}

	_, err = c.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return xerrors.New(err)
	}

	c.logger.InfoContext(ctx, "Media object removed", "bucket", c.bucket, "key", name)
	return nil
}

func (c *S3Storage) URL(name string) string {
	return joinURL(c.baseURL, name)
}
