package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mvbtree/blobstore"
)

// fakeClient is an in-memory S3 mock. Small uploads go through PutObject;
// the multipart methods exist only to satisfy the uploader interface.
type fakeClient struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func newFakeClient() *fakeClient {
	return &fakeClient{objects: make(map[string][]byte)}
}

func (f *fakeClient) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*params.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeClient) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, ok := f.objects[*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(string(data))),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (f *fakeClient) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeClient) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var contents []types.Object
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(params.Prefix)) {
			contents = append(contents, types.Object{Key: aws.String(key)})
		}
	}
	return &s3.ListObjectsV2Output{Contents: contents, IsTruncated: aws.Bool(false)}, nil
}

func (f *fakeClient) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported in fake")
}

func (f *fakeClient) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, errors.New("multipart not supported in fake")
}

func (f *fakeClient) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported in fake")
}

func (f *fakeClient) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return nil, errors.New("multipart not supported in fake")
}

func TestStorePutGet(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewStore(client, "test-bucket", "db")

	require.NoError(t, store.Put(ctx, "ckpt-1.mvb", strings.NewReader("payload")))

	// Keys live under the root prefix.
	client.mu.RLock()
	_, ok := client.objects["db/ckpt-1.mvb"]
	client.mu.RUnlock()
	assert.True(t, ok)

	rc, err := store.Get(ctx, "ckpt-1.mvb")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestStoreGetNotFound(t *testing.T) {
	store := NewStore(newFakeClient(), "test-bucket", "db")

	_, err := store.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, blobstore.ErrNotFound))
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newFakeClient(), "test-bucket", "db")

	require.NoError(t, store.Put(ctx, "ckpt-2.mvb", strings.NewReader("b")))
	require.NoError(t, store.Put(ctx, "ckpt-1.mvb", strings.NewReader("a")))
	require.NoError(t, store.Put(ctx, "other", strings.NewReader("x")))

	names, err := store.List(ctx, "ckpt-")
	require.NoError(t, err)
	assert.Equal(t, []string{"ckpt-1.mvb", "ckpt-2.mvb"}, names)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newFakeClient(), "test-bucket", "db")

	require.NoError(t, store.Put(ctx, "ckpt-1.mvb", strings.NewReader("a")))
	require.NoError(t, store.Delete(ctx, "ckpt-1.mvb"))
	require.NoError(t, store.Delete(ctx, "ckpt-1.mvb"))

	_, err := store.Get(ctx, "ckpt-1.mvb")
	assert.True(t, errors.Is(err, blobstore.ErrNotFound))
}
