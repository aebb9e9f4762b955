package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/chunkd/chunkd/applications/server/interfaces"
)

// DestinationStore publishes assembled files as S3 objects. S3 can't
// append, so the stream spools to a local temp file and the object is
// put in one piece on Close.
type DestinationStore struct {
	client *awss3.Client
	bucket string
	prefix string
}

func NewDestinationStore(client *awss3.Client, bucket, prefix string) *DestinationStore {
	return &DestinationStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

var _ interfaces.DestinationStore = (*DestinationStore)(nil)

func (d *DestinationStore) OpenAppend(ctx context.Context, name string) (io.WriteCloser, error) {
	spool, err := os.CreateTemp("", "chunkd-assemble-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create spool file: %w", err)
	}

	return &spooledObject{
		ctx:    ctx,
		client: d.client,
		bucket: d.bucket,
		key:    path.Join(d.prefix, name),
		spool:  spool,
	}, nil
}

type spooledObject struct {
	ctx    context.Context
	client *awss3.Client
	bucket string
	key    string
	spool  *os.File
}

func (o *spooledObject) Write(p []byte) (int, error) {
	return o.spool.Write(p)
}

func (o *spooledObject) Close() error {
	defer func() {
		_ = o.spool.Close()
		_ = os.Remove(o.spool.Name())
	}()

	if _, err := o.spool.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind spool file: %w", err)
	}

	_, err := o.client.PutObject(o.ctx, &awss3.PutObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
		Body:   o.spool,
	})
	if err != nil {
		return fmt.Errorf("failed to upload assembled object: %w", err)
	}

	return nil
}
