// Package storage guarda los PDFs y adjuntos de transferencias en S3/MinIO o en disco local.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/punchlist-api/internal/application/transfer"
	"github.com/jhoicas/punchlist-api/pkg/config"
)

// S3Options parámetros de conexión.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	PathStyle bool
	URLBase   string
}

// S3OptionsFromConfig mapea la configuración de storage.
func S3OptionsFromConfig(c config.StorageConfig) S3Options {
	return S3Options{
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3Key,
		SecretKey: c.S3Secret,
		Bucket:    c.S3Bucket,
		Region:    c.S3Region,
		PathStyle: c.S3PathStyle,
		URLBase:   c.S3URLBase,
	}
}

// S3Store implementa transfer.BlobStore sobre S3 o un endpoint compatible (MinIO).
type S3Store struct {
	client *s3.Client
	opts   S3Options
}

var _ transfer.BlobStore = (*S3Store)(nil)

// NewS3Store construye el cliente. Sin key/secret se usa la cadena de credenciales por defecto.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket vacío")
	}
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("storage: cargar config aws: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})
	return &S3Store{client: client, opts: opts}, nil
}

// Put sube el objeto.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	return nil
}

// Delete borra el objeto.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// URL dirección pública del objeto.
func (s *S3Store) URL(key string) string {
	return ObjectURL(s.opts, key)
}

// ObjectURL URLBase si está configurada; si no, endpoint + bucket (path style) o el host
// virtual de AWS.
func ObjectURL(opts S3Options, key string) string {
	key = strings.TrimLeft(key, "/")
	if opts.URLBase != "" {
		return strings.TrimRight(opts.URLBase, "/") + "/" + key
	}
	if opts.Endpoint != "" {
		endpoint := strings.TrimRight(opts.Endpoint, "/")
		if opts.PathStyle {
			return endpoint + "/" + opts.Bucket + "/" + key
		}
		scheme, host, ok := strings.Cut(endpoint, "://")
		if !ok {
			return "https://" + opts.Bucket + "." + endpoint + "/" + key
		}
		return scheme + "://" + opts.Bucket + "." + host + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", opts.Bucket, opts.Region, key)
}
