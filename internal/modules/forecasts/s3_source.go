package forecasts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// S3API is the subset of the S3 client used by S3Source.
type S3API interface {
	s3.ListObjectsV2APIClient
	manager.DownloadAPIClient
}

// S3Config holds connection settings for an S3-compatible bucket.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // Custom endpoint for S3-compatible stores (MinIO, R2)
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an S3 client from static credentials when given, or the default chain otherwise.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Source reads forecast_<TICKER>.csv objects under a bucket prefix.
type S3Source struct {
	client     S3API
	downloader *manager.Downloader
	bucket     string
	prefix     string
	log        zerolog.Logger
}

// NewS3Source creates a source over client.
func NewS3Source(client S3API, bucket, prefix string, log zerolog.Logger) *S3Source {
	return &S3Source{
		client:     client,
		downloader: manager.NewDownloader(client),
		bucket:     bucket,
		prefix:     strings.Trim(prefix, "/"),
		log:        log.With().Str("component", "s3_source").Str("bucket", bucket).Logger(),
	}
}

// Kind implements Source.
func (s *S3Source) Kind() string {
	return "s3"
}

func (s *S3Source) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// List implements Source.
func (s *S3Source) List(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix + "/")
	}

	var tickers []string
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.bucket, s.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			// Only direct children of the prefix
			if path.Dir(key) != path.Dir(s.key("x")) {
				continue
			}
			if ticker, ok := TickerFromFilename(path.Base(key)); ok {
				tickers = append(tickers, ticker)
			}
		}
	}
	sort.Strings(tickers)

	if len(tickers) == 0 {
		s.log.Warn().Str("prefix", s.prefix).Msg("No forecast_*.csv objects found")
	}

	return tickers, nil
}

// Load implements Source.
func (s *S3Source) Load(ctx context.Context, ticker string) (Series, error) {
	if err := ValidateTicker(ticker); err != nil {
		return Series{}, err
	}

	key := s.key(FilenameForTicker(ticker))
	buf := manager.NewWriteAtBuffer(nil)
	n, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return Series{}, fmt.Errorf("%w: %s", ErrNotFound, ticker)
		}
		return Series{}, fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}

	s.log.Debug().Str("key", key).Int64("bytes", n).Msg("Downloaded forecast object")
	return ParseCSV(bytes.NewReader(buf.Bytes()), ticker)
}
