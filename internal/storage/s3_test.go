package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockS3API mocks the S3 client
type MockS3API struct {
	mock.Mock
	uploaded map[string][]byte
}

func (m *MockS3API) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, aws.ToString(params.Prefix))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.ListObjectsV2Output), args.Error(1)
}

func (m *MockS3API) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, aws.ToString(params.Key))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	body := args.Get(0).([]byte)
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, args.Error(1)
}

func (m *MockS3API) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, aws.ToString(params.Key))
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if m.uploaded == nil {
		m.uploaded = map[string][]byte{}
	}
	m.uploaded[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, args.Error(0)
}

func listing(keys ...string) *s3.ListObjectsV2Output {
	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out
}

func TestListArchivesCachesPerSymbol(t *testing.T) {
	client := new(MockS3API)
	client.On("ListObjectsV2", mock.Anything, "EURUSD/").
		Return(listing("EURUSD/s_a.zip", "EURUSD/readme.txt", "EURUSD/s_b.ZIP"), nil).Once()

	store := NewS3StoreWithClient(client, "bucket", NewListingCache(0), nil)
	keys, err := store.ListArchives(context.Background(), "EURUSD")
	require.NoError(t, err)
	assert.Equal(t, []string{"EURUSD/s_a.zip", "EURUSD/s_b.ZIP"}, keys)

	again, err := store.ListArchives(context.Background(), "EURUSD")
	require.NoError(t, err)
	assert.Equal(t, keys, again)
	client.AssertExpectations(t)
}

func TestListArchivesError(t *testing.T) {
	client := new(MockS3API)
	client.On("ListObjectsV2", mock.Anything, "EURUSD/").Return(nil, errors.New("denied"))

	store := NewS3StoreWithClient(client, "bucket", nil, nil)
	_, err := store.ListArchives(context.Background(), "EURUSD")
	assert.Error(t, err)
}

func TestFetchArchiveSingleScenario(t *testing.T) {
	client := new(MockS3API)
	client.On("GetObject", mock.Anything, "EURUSD/s_a.zip").Return([]byte("zipdata"), nil)

	dest := t.TempDir()
	store := NewS3StoreWithClient(client, "bucket", nil, nil)
	paths, err := store.FetchArchive(context.Background(), "EURUSD", "s_a", dest)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dest, "s_a.zip")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "zipdata", string(data))
	client.AssertNotCalled(t, "ListObjectsV2", mock.Anything, mock.Anything)
}

func TestFetchArchiveAll(t *testing.T) {
	client := new(MockS3API)
	client.On("ListObjectsV2", mock.Anything, "EURUSD/").Return(listing("EURUSD/s_a.zip", "EURUSD/s_b.zip"), nil)
	client.On("GetObject", mock.Anything, "EURUSD/s_a.zip").Return([]byte("a"), nil)
	client.On("GetObject", mock.Anything, "EURUSD/s_b.zip").Return([]byte("b"), nil)

	store := NewS3StoreWithClient(client, "bucket", nil, nil)
	paths, err := store.FetchArchive(context.Background(), "EURUSD", AllScenarios, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestFetchArchiveAllEmpty(t *testing.T) {
	client := new(MockS3API)
	client.On("ListObjectsV2", mock.Anything, "EURUSD/").Return(listing(), nil)

	store := NewS3StoreWithClient(client, "bucket", nil, nil)
	_, err := store.FetchArchive(context.Background(), "EURUSD", AllScenarios, t.TempDir())
	assert.True(t, errors.Is(err, ErrArchiveNotFound))
}

func TestUploadTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "artifacts", "1_s_a_7"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ranked_summary.csv"), []byte("Rank\n1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "artifacts", "1_s_a_7", "7_chart.png"), []byte("png"), 0644))

	client := new(MockS3API)
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil)

	store := NewS3StoreWithClient(client, "bucket", nil, nil)
	n, err := store.UploadTree(context.Background(), dir, "results/EURUSD")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Rank\n1\n", string(client.uploaded["results/EURUSD/ranked_summary.csv"]))
	assert.Equal(t, "png", string(client.uploaded["results/EURUSD/artifacts/1_s_a_7/7_chart.png"]))
}

func TestUploadTreeStopsOnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0644))

	client := new(MockS3API)
	client.On("PutObject", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	store := NewS3StoreWithClient(client, "bucket", nil, nil)
	n, err := store.UploadTree(context.Background(), dir, "results")
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestArchiveKey(t *testing.T) {
	assert.Equal(t, "EURUSD/s_-3000..-100..400.zip", ArchiveKey("EURUSD", "s_-3000..-100..400"))
}
