package objectstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/NamanBalaji/fetchr/internal/config"
	"github.com/NamanBalaji/fetchr/internal/errors"
)

// Client is the part of the S3 API the adapter uses. *s3.Client
// satisfies it.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var (
	ErrObjectStoreUnavailable = errors.New("object store client is not available")
	ErrObjectStoreDisabled    = errors.New("object store support is disabled in the configuration")
)

// Detect builds an S3 client from the shared AWS configuration chain
// (environment, shared config and credentials files, instance roles).
// It does not contact the store.
func Detect(ctx context.Context, cfg *config.S3Config) (Client, error) {
	if !cfg.IsEnabled() {
		return nil, ErrObjectStoreDisabled
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg != nil && cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg != nil && cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrObjectStoreUnavailable, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg == nil {
			return
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return client, nil
}
