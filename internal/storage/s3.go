package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/scenario-ranker/internal/logger"
	"github.com/yourusername/scenario-ranker/internal/metrics"
)

const (
	archiveExt          = ".zip"
	errLoadAWSConfig    = "failed to load AWS config: %w"
	errListArchives     = "failed to list archives under %s: %w"
	errGetArchive       = "failed to get archive %s: %w"
	errPutObject        = "failed to upload %s: %w"
	errWriteArchive     = "failed to write archive %s: %w"
	errWalkUploadSource = "failed to walk %s: %w"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps scenario archives under <bucket>/<symbol>/<scenario>.zip and uploads
// ranking output under a configured prefix.
type S3Store struct {
	client S3API
	bucket string
	cache  *ListingCache
	logger *logrus.Entry
}

// S3Options configures NewS3Store.
type S3Options struct {
	Region   string
	Bucket   string
	CacheTTL time.Duration
}

// NewS3Store builds a store from the default AWS credential chain.
func NewS3Store(ctx context.Context, opts S3Options, log *logrus.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf(errLoadAWSConfig, err)
	}
	return NewS3StoreWithClient(s3.NewFromConfig(awsCfg), opts.Bucket, NewListingCache(opts.CacheTTL), log), nil
}

// NewS3StoreWithClient builds a store around an existing client.
func NewS3StoreWithClient(client S3API, bucket string, listing *ListingCache, log *logrus.Logger) *S3Store {
	if listing == nil {
		listing = NewListingCache(0)
	}
	return &S3Store{
		client: client,
		bucket: bucket,
		cache:  listing,
		logger: logger.OrDiscard(log).WithFields(logrus.Fields{"component": "storage", "bucket": bucket}),
	}
}

// ArchiveKey returns the object key of a scenario archive.
func ArchiveKey(symbol, scenario string) string {
	return path.Join(symbol, scenario+archiveExt)
}

// ListArchives returns archive keys for symbol in the order S3 lists them.
func (s *S3Store) ListArchives(ctx context.Context, symbol string) ([]string, error) {
	if keys, ok := s.cache.Get(symbol); ok {
		return keys, nil
	}

	prefix := symbol + "/"
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf(errListArchives, prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(strings.ToLower(key), archiveExt) {
				keys = append(keys, key)
			}
		}
	}

	s.cache.Set(symbol, keys)
	s.logger.WithFields(logrus.Fields{"symbol": symbol, "archives": len(keys)}).Debug("Listed archives")
	return keys, nil
}

// FetchArchive implements ArchiveStore.
func (s *S3Store) FetchArchive(ctx context.Context, symbol, scenario, destDir string) ([]string, error) {
	var keys []string
	if scenario == AllScenarios {
		listed, err := s.ListArchives(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if len(listed) == 0 {
			return nil, fmt.Errorf("%w: no archives for %s", ErrArchiveNotFound, symbol)
		}
		keys = listed
	} else {
		keys = []string{ArchiveKey(symbol, scenario)}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		local := filepath.Join(destDir, path.Base(key))
		if err := s.download(ctx, key, local); err != nil {
			return nil, err
		}
		paths = append(paths, local)
	}
	return paths, nil
}

func (s *S3Store) download(ctx context.Context, key, local string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf(errGetArchive, key, err)
	}
	defer out.Body.Close()

	f, err := os.Create(local)
	if err != nil {
		return fmt.Errorf(errWriteArchive, local, err)
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		return fmt.Errorf(errWriteArchive, local, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf(errWriteArchive, local, err)
	}

	metrics.RecordStorageObject("fetch")
	s.logger.WithFields(logrus.Fields{"key": key, "path": local}).Info("Fetched archive")
	return nil
}

// UploadTree uploads every regular file under localDir to remotePrefix/<relative path>
// and returns the number of objects written.
func (s *S3Store) UploadTree(ctx context.Context, localDir, remotePrefix string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		key := path.Join(remotePrefix, filepath.ToSlash(rel))

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   f,
		}); err != nil {
			return fmt.Errorf(errPutObject, key, err)
		}
		uploaded++
		metrics.RecordStorageObject("upload")
		return nil
	})
	if err != nil {
		return uploaded, fmt.Errorf(errWalkUploadSource, localDir, err)
	}

	s.logger.WithFields(logrus.Fields{"prefix": remotePrefix, "objects": uploaded}).Info("Uploaded output tree")
	return uploaded, nil
}
