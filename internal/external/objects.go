package external

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"

	"fishcast/internal/types"
)

const s3Scheme = "s3://"

// ObjectGetter abstracts object retrieval for testability.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// s3API is the subset of the S3 SDK client used by S3Objects.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Objects adapts an S3 client to ObjectGetter.
type S3Objects struct {
	client s3API
}

// NewS3Objects wraps client, usually an *s3.Client.
func NewS3Objects(client s3API) *S3Objects {
	return &S3Objects{client: client}
}

// GetObject returns the object body. The caller closes it.
func (o *S3Objects) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// splitS3Path splits "s3://bucket/key" into its parts.
func splitS3Path(path string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(path, s3Scheme)
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// readSource reads a local file or an s3:// object. Paths ending in .zst
// are zstd-decompressed.
func readSource(ctx context.Context, path string, objects ObjectGetter) ([]byte, error) {
	var data []byte
	if strings.HasPrefix(path, s3Scheme) {
		bucket, key, ok := splitS3Path(path)
		if !ok {
			return nil, types.NewAppError(types.ErrCodeConfigSnapshot, "malformed s3 path", nil).
				WithDetails(map[string]any{"path": path})
		}
		if objects == nil {
			return nil, types.NewAppError(types.ErrCodeConfigSnapshot, "s3 snapshot requires an object store", nil).
				WithDetails(map[string]any{"path": path})
		}
		body, err := objects.GetObject(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		if data, err = io.ReadAll(body); err != nil {
			return nil, fmt.Errorf("read s3 object: %w", err)
		}
	} else {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}

	if !strings.HasSuffix(path, ".zst") {
		return data, nil
	}
	dec, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	return out, nil
}
