// Package awsutil builds the aws.Config shared by the storage and bedrock clients.
package awsutil

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

const defaultMaxAttempts = 3

// Options describes how an AWS client should be configured. Empty fields fall
// back to the SDK default chain (environment, shared config, instance role).
type Options struct {
	Region      string
	AccessKey   string
	SecretKey   string
	MaxAttempts int
	// Timeout bounds a whole HTTP exchange including reading the response.
	Timeout time.Duration
	// ConnectTimeout bounds establishing the TCP connection.
	ConnectTimeout time.Duration
}

// LoadConfig resolves an aws.Config with adaptive retries.
func LoadConfig(ctx context.Context, opts Options) (aws.Config, error) {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	loaders := []func(*config.LoadOptions) error{
		config.WithRetryMaxAttempts(attempts),
		config.WithRetryMode(aws.RetryModeAdaptive),
	}

	if region := strings.TrimSpace(opts.Region); region != "" {
		loaders = append(loaders, config.WithRegion(region))
	}

	if opts.AccessKey != "" && opts.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")
		loaders = append(loaders, config.WithCredentialsProvider(creds))
	}

	if opts.Timeout > 0 || opts.ConnectTimeout > 0 {
		client := awshttp.NewBuildableClient()
		if opts.Timeout > 0 {
			client = client.WithTimeout(opts.Timeout)
		}
		if opts.ConnectTimeout > 0 {
			connect := opts.ConnectTimeout
			client = client.WithDialerOptions(func(d *net.Dialer) {
				d.Timeout = connect
			})
		}
		loaders = append(loaders, config.WithHTTPClient(client))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}

	return cfg, nil
}
