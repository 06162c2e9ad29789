// Package s3 implements docstore.Store with one JSON object per document in
// an S3 bucket, grouped under a per-database prefix.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"news-classifier/internal/docstore"
)

const (
	markerName = "_database.json"
	docSuffix  = ".json"
)

// API is the subset of the S3 client the store uses.
type API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Options configures Open.
type Options struct {
	Region   string
	Bucket   string
	Database string
	KMSKeyID string
	Logger   *zap.Logger
}

// Store implements docstore.Store using Amazon S3.
type Store struct {
	client   API
	bucket   string
	database string
	kmsKeyID string
}

// Open loads AWS configuration and opens the database prefix.
func Open(ctx context.Context, opts Options) (*Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return OpenWithClient(ctx, s3.NewFromConfig(cfg), opts)
}

// OpenWithClient verifies the bucket and connects to the database prefix,
// writing its marker object if it does not exist yet.
func OpenWithClient(ctx context.Context, client API, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	database := normalizePrefix(opts.Database)
	if database == "" {
		return nil, fmt.Errorf("database name is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		client:   client,
		bucket:   opts.Bucket,
		database: database,
		kmsKeyID: strings.TrimSpace(opts.KMSKeyID),
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return nil, fmt.Errorf("s3 head bucket %s: %w", s.bucket, err)
	}

	markerKey := applyPrefix(database, markerName)
	_, err := client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(markerKey)})
	if err == nil {
		logger.Info("Connected to existing database", zap.String("database", database), zap.String("bucket", s.bucket))
		return s, nil
	}
	var notFound *s3types.NotFound
	if !errors.As(err, &notFound) {
		return nil, fmt.Errorf("s3 head object bucket=%s key=%s: %w", s.bucket, markerKey, err)
	}

	marker, _ := json.Marshal(map[string]string{"database": database})
	if err := s.put(ctx, markerKey, marker); err != nil {
		return nil, err
	}
	logger.Info("Created new database", zap.String("database", database), zap.String("bucket", s.bucket))
	return s, nil
}

// Name returns the database name.
func (s *Store) Name() string { return s.database }

// CreateDocument stores doc as <database>/<id>.json. Ids are time ordered so
// key order is creation order.
func (s *Store) CreateDocument(ctx context.Context, doc any) (docstore.DocumentRef, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return docstore.DocumentRef{}, fmt.Errorf("encode document: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return docstore.DocumentRef{}, err
	}
	if err := s.put(ctx, applyPrefix(s.database, id.String()+docSuffix), body); err != nil {
		return docstore.DocumentRef{}, err
	}
	return docstore.DocumentRef{ID: id.String()}, nil
}

// ListDocumentIDs lists the database prefix in key order.
func (s *Store) ListDocumentIDs(ctx context.Context) ([]string, error) {
	prefix := s.database + "/"
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	ids := []string{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list objects bucket=%s prefix=%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name == markerName || !strings.HasSuffix(name, docSuffix) || strings.Contains(name, "/") {
				continue
			}
			ids = append(ids, strings.TrimSuffix(name, docSuffix))
		}
	}
	return ids, nil
}

func (s *Store) put(ctx context.Context, key string, body []byte) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return nil
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ docstore.Store = (*Store)(nil)
