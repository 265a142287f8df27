package s3select

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Client is the part of the S3 API the connector uses.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	Select(ctx context.Context, params *s3.SelectObjectContentInput) (EventStream, error)
}

// EventStream is the event stream of a SelectObjectContent call.
type EventStream interface {
	Events() <-chan types.SelectObjectContentEventStream
	Close() error
	Err() error
}

// s3Client adapts *s3.Client to Client.
type s3Client struct {
	*s3.Client
}

func (c s3Client) Select(ctx context.Context, params *s3.SelectObjectContentInput) (EventStream, error) {
	out, err := c.SelectObjectContent(ctx, params)
	if err != nil {
		return nil, err
	}
	return out.GetStream(), nil
}
