package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client defines the S3 operations the PDF store uses. Tests substitute a
// mock; production wires the AWS SDK client.
type Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3aws.HeadObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3aws.DeleteObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.DeleteObjectOutput, error)
}

// PDFStore uploads generated resume PDFs and produces the public URLs
// persisted as Message.PDFURL. Objects live under chats/{chatID}/{messageID}.pdf.
type PDFStore struct {
	client         Client
	bucket         string
	region         string
	endpoint       string
	baseURL        string
	forcePathStyle bool
	uploadTimeout  time.Duration
}

// Config contains configuration for the PDF store, loadable via core/config
// from the environment.
type Config struct {
	Bucket         string `env:"S3_BUCKET,required"`
	Region         string `env:"S3_REGION,required"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`         // For S3-compatible services like MinIO
	BaseURL        string `env:"S3_BASE_URL"`         // Custom CDN base, auto-generated if empty
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE"` // Required for MinIO
}

// Option defines a function that configures the PDF store.
type Option func(*options)

type options struct {
	httpClient    *http.Client
	client        Client
	uploadTimeout time.Duration
}

// WithClient sets a custom pre-configured S3 client, primarily for testing.
func WithClient(client Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithUploadTimeout bounds upload operations. If not set, the caller's
// context deadline governs.
func WithUploadTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.uploadTimeout = timeout
	}
}

// New creates a PDF store. Without WithClient, an AWS SDK client is built
// from the config, supporting both AWS S3 and S3-compatible services.
func New(ctx context.Context, cfg Config, opts ...Option) (*PDFStore, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("%w: bucket and region are required", ErrInvalidConfig)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID, cfg.SecretKey, "",
				)),
			)
		}
		if o.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
		}

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}

		client = s3aws.NewFromConfig(awsConfig, func(opts *s3aws.Options) {
			if cfg.Endpoint != "" {
				opts.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			opts.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return &PDFStore{
		client:         client,
		bucket:         cfg.Bucket,
		region:         cfg.Region,
		endpoint:       cfg.Endpoint,
		baseURL:        cfg.BaseURL,
		forcePathStyle: cfg.ForcePathStyle,
		uploadTimeout:  o.uploadTimeout,
	}, nil
}

// Key returns the object key for a message's PDF.
func Key(chatID, messageID string) string {
	return fmt.Sprintf("chats/%s/%s.pdf", chatID, messageID)
}

// Upload stores the PDF for a message and returns its public URL.
func (s *PDFStore) Upload(ctx context.Context, chatID, messageID string, pdf io.Reader) (string, error) {
	if chatID == "" || messageID == "" {
		return "", fmt.Errorf("%w: chat and message ids are required", ErrInvalidConfig)
	}
	if s.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.uploadTimeout)
		defer cancel()
	}

	key := Key(chatID, messageID)
	_, err := s.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        pdf,
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", classifyError(err, "upload pdf")
	}
	return s.URL(key), nil
}

// Delete removes a message's PDF. Deleting a missing object is not an error.
func (s *PDFStore) Delete(ctx context.Context, chatID, messageID string) error {
	_, err := s.client.DeleteObject(ctx, &s3aws.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(Key(chatID, messageID)),
	})
	if err != nil {
		return classifyError(err, "delete pdf")
	}
	return nil
}

// Exists reports whether a message's PDF is stored.
func (s *PDFStore) Exists(ctx context.Context, chatID, messageID string) bool {
	_, err := s.client.HeadObject(ctx, &s3aws.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(Key(chatID, messageID)),
	})
	return err == nil
}

// URL returns the public URL for an object key. A custom BaseURL takes
// precedence, then a custom endpoint, then the standard AWS format.
func (s *PDFStore) URL(key string) string {
	key = strings.TrimPrefix(key, "/")

	if s.baseURL != "" {
		return strings.TrimSuffix(s.baseURL, "/") + "/" + key
	}

	if s.endpoint != "" {
		endpoint := strings.TrimSuffix(s.endpoint, "/")
		protocol := "https://"
		if after, ok := strings.CutPrefix(endpoint, "http://"); ok {
			protocol = "http://"
			endpoint = after
		} else if after, ok := strings.CutPrefix(endpoint, "https://"); ok {
			endpoint = after
		}
		if s.forcePathStyle {
			return fmt.Sprintf("%s%s/%s/%s", protocol, endpoint, s.bucket, key)
		}
		return fmt.Sprintf("%s%s.%s/%s", protocol, s.bucket, endpoint, key)
	}

	if s.forcePathStyle {
		return fmt.Sprintf("https://s3.%s.amazonaws.com/%s/%s", s.region, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
