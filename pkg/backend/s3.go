package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/vango-dev/storable/pkg/record"
)

// S3API is the subset of *s3.Client used by S3.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

var _ S3API = (*s3.Client)(nil)

// S3 stores each record as a JSON object in a bucket.
//
// Example usage:
//
//	client := s3.New(s3.Options{Region: "eu-west-1", Credentials: creds})
//	b := backend.NewS3(client, "my-bucket", "storable/")
type S3 struct {
	client S3API
	bucket string
	prefix string
}

// NewS3 creates an S3 backend. Prefix is prepended to every key.
func NewS3(client S3API, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3) collectionPrefix(collection string) string {
	return s.prefix + collection + "/"
}

func (s *S3) key(collection, id string) string {
	return s.collectionPrefix(collection) + id + ".json"
}

// Read lists and fetches every record of a collection.
func (s *S3) Read(ctx context.Context, collection string) ([]record.Payload, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.collectionPrefix(collection)),
	})

	var out []record.Payload
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			p, err := s.get(ctx, key)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *S3) get(ctx context.Context, key string) (record.Payload, error) {
	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return record.Payload{}, ErrNotFound
		}
		return record.Payload{}, fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Body.Close()

	var p record.Payload
	if err := json.NewDecoder(obj.Body).Decode(&p); err != nil {
		return record.Payload{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return p, nil
}

func (s *S3) put(ctx context.Context, collection string, p record.Payload) error {
	body, err := json.Marshal(record.Payload{ID: p.ID, Data: p.Data})
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(collection, p.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, p.ID, err)
	}
	return nil
}

// Create stores a new record under a fresh UUID.
func (s *S3) Create(ctx context.Context, collection string, p record.Payload) (record.Payload, error) {
	created := record.Payload{ID: uuid.NewString(), ClientID: p.ClientID, Data: p.Data}
	if err := s.put(ctx, collection, created); err != nil {
		return record.Payload{}, err
	}
	return created, nil
}

// Update overwrites an existing record.
func (s *S3) Update(ctx context.Context, collection string, p record.Payload) (record.Payload, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(collection, p.ID)),
	})
	if err != nil {
		if isNotFound(err) {
			return record.Payload{}, ErrNotFound
		}
		return record.Payload{}, fmt.Errorf("head %s/%s: %w", collection, p.ID, err)
	}
	if err := s.put(ctx, collection, p); err != nil {
		return record.Payload{}, err
	}
	return record.Payload{ID: p.ID, Data: p.Data}, nil
}

// Destroy deletes a record object.
func (s *S3) Destroy(ctx context.Context, collection string, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(collection, id)),
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
