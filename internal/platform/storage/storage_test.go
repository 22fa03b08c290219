package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key, err := objectKey("images/", "hero-homepage.png")
	require.NoError(t, err)
	require.Equal(t, "images/hero-homepage.png", key)

	key, err = objectKey("", "a.png")
	require.NoError(t, err)
	require.Equal(t, "a.png", key)

	for _, bad := range []string{"", "../x.png", "a/b.png", `a\b.png`} {
		_, err := objectKey("images", bad)
		require.ErrorIs(t, err, errInvalidObject, bad)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3SinkPut(t *testing.T) {
	api := &fakeS3{}
	sink := newS3Sink(api, "redox-images", "ap-southeast-2", "")

	url, err := sink.Put(context.Background(), "hero.webp", "image/webp", []byte("img"))
	require.NoError(t, err)
	require.Equal(t, "https://redox-images.s3.ap-southeast-2.amazonaws.com/images/hero.webp", url)
	require.Equal(t, "images/hero.webp", aws.ToString(api.input.Key))
	require.Equal(t, "image/webp", aws.ToString(api.input.ContentType))
	require.Equal(t, []byte("img"), api.body)

	api.err = errors.New("denied")
	_, err = sink.Put(context.Background(), "hero.webp", "image/webp", []byte("img"))
	require.ErrorContains(t, err, "denied")
}

type fakeWriter struct {
	bytes.Buffer
	contentType string
	closeErr    error
	closed      bool
}

func (w *fakeWriter) Close() error { w.closed = true; return w.closeErr }
func (w *fakeWriter) setAttrs(contentType, _ string) {
	w.contentType = contentType
}

func TestGCSSinkPut(t *testing.T) {
	writer := &fakeWriter{}
	var gotBucket, gotKey string
	sink := &GCSSink{
		bucket:        "redox",
		prefix:        defaultObjectPrefix,
		publicBaseURL: gcsPublicHost + "/redox",
		newWriter: func(_ context.Context, bucket, key string) objectWriter {
			gotBucket, gotKey = bucket, key
			return writer
		},
	}
	WithGCSPublicBaseURL("https://cdn.redoxdigital.com.au")(sink)

	url, err := sink.Put(context.Background(), "bg.png", "image/png", []byte("png"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.redoxdigital.com.au/images/bg.png", url)
	require.Equal(t, "redox", gotBucket)
	require.Equal(t, "images/bg.png", gotKey)
	require.Equal(t, "image/png", writer.contentType)
	require.Equal(t, "png", writer.String())
	require.True(t, writer.closed)

	writer.closeErr = errors.New("quota")
	_, err = sink.Put(context.Background(), "bg.png", "image/png", []byte("png"))
	require.ErrorContains(t, err, "quota")
}

func TestNewSinksRequireBucket(t *testing.T) {
	_, err := NewGCSSink(nil, " ")
	require.ErrorIs(t, err, errInvalidBucket)
	_, err = NewS3Sink(context.Background(), "", "", "")
	require.ErrorIs(t, err, errInvalidBucket)
}
