package doughnuts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/afero"
)

// ErrMissingList is returned when the document has no "doughnuts" key.
var ErrMissingList = errors.New(`doughnut document has no "doughnuts" key`)

// Entry is a doughnut as stored in the backing document.
type Entry struct {
	ID           *int    `json:"id"`
	DoughnutType string  `json:"doughnut_type"`
	Price        float64 `json:"price"`
	Calories     int     `json:"calories"`
	ContainsNuts bool    `json:"contains_nuts"`
}

type document struct {
	Doughnuts *[]Entry `json:"doughnuts"`
}

// Source loads the raw doughnut entries.
type Source interface {
	Load(ctx context.Context) ([]Entry, error)
}

func decode(r io.Reader) ([]Entry, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing doughnut document: %w", err)
	}
	if doc.Doughnuts == nil {
		return nil, ErrMissingList
	}
	return *doc.Doughnuts, nil
}

// FileSource reads the document from a filesystem path.
type FileSource struct {
	fs   afero.Fs
	path string
}

// NewFileSource returns a FileSource reading path from fs.
func NewFileSource(fs afero.Fs, path string) *FileSource {
	return &FileSource{fs: fs, path: path}
}

func (s *FileSource) Load(_ context.Context) ([]Entry, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f)
}

// ObjectGetter is the part of the S3 client used by S3Source.
// *s3.Client implements this interface.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the document from an S3 object.
type S3Source struct {
	client ObjectGetter
	bucket string
	key    string
}

// NewS3Source returns an S3Source for bucket/key.
func NewS3Source(client ObjectGetter, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Load(ctx context.Context) ([]Entry, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()
	return decode(out.Body)
}

// S3Config holds the settings for S3-hosted documents.
type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an S3 client. Without static keys, requests are sent
// anonymously.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: aws.AnonymousCredentials{},
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

// OpenSource picks a Source for location: s3://bucket/key locations are read
// from S3, anything else is a path on fs.
func OpenSource(location string, fs afero.Fs, s3cfg S3Config) (Source, error) {
	if !strings.HasPrefix(location, "s3://") {
		return NewFileSource(fs, location), nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid doughnut source %q: %w", location, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return nil, fmt.Errorf("invalid doughnut source %q: want s3://bucket/key", location)
	}
	return NewS3Source(NewS3Client(s3cfg), u.Host, key), nil
}
