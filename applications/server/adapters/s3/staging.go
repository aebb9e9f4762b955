package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/chunkd/chunkd/applications/server/interfaces"
)

// StagingStore keeps chunk objects in an S3 bucket under a key prefix.
// S3 has no directories, so EnsureDir is a no-op and a "directory"
// exists while any object sits under its prefix.
type StagingStore struct {
	client *awss3.Client
	bucket string
	prefix string
}

func NewStagingStore(client *awss3.Client, bucket, prefix string) *StagingStore {
	return &StagingStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

var _ interfaces.StagingStore = (*StagingStore)(nil)

func (s *StagingStore) key(p string) string {
	return path.Join(s.prefix, p)
}

func (s *StagingStore) EnsureDir(ctx context.Context, dir string) error {
	return nil
}

func (s *StagingStore) WriteFile(ctx context.Context, p string, data []byte) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload chunk: %w", err)
	}

	return nil
}

func (s *StagingStore) ReadFile(ctx context.Context, p string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%s: %w", p, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read chunk: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (s *StagingStore) Exists(ctx context.Context, p string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return false, fmt.Errorf("failed to inspect key: %w", err)
	}

	// Not an object; check for objects under it as a prefix.
	list, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.key(p) + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("failed to list prefix: %w", err)
	}

	return len(list.Contents) > 0, nil
}

func (s *StagingStore) RemoveAll(ctx context.Context, dir string) error {
	prefix := s.key(dir) + "/"

	var token *string
	for {
		list, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return fmt.Errorf("failed to list staging objects: %w", err)
		}
		if len(list.Contents) == 0 {
			return nil
		}

		objects := make([]types.ObjectIdentifier, 0, len(list.Contents))
		for _, obj := range list.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}

		_, err = s.client.DeleteObjects(ctx, &awss3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects},
		})
		if err != nil {
			return fmt.Errorf("failed to delete staging objects: %w", err)
		}

		if list.IsTruncated == nil || !*list.IsTruncated {
			return nil
		}
		token = list.NextContinuationToken
	}
}
