package s3

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hivebrain/synapse-go/pkg/errors"
)

/*
Conn wraps a MinIO client plus the bucket shard payloads live in.
*/
type Conn struct {
	client *minio.Client
	bucket string
}

/*
Config carries the object storage connection settings, typically bound from
the s3 section of the config file.
*/
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

/*
NewConn connects to object storage and ensures the shard bucket exists.
*/
func NewConn(ctx context.Context, cfg Config) (*Conn, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})

	if err != nil {
		return nil, errors.NewError(err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)

	if err != nil {
		return nil, errors.NewError(err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.NewError(err)
		}
	}

	return &Conn{client: client, bucket: cfg.Bucket}, nil
}
