package main

import (
	"context"
	"net/http"
	"net/url"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/storable/internal/config"
	serrors "github.com/vango-dev/storable/internal/errors"
	"github.com/vango-dev/storable/pkg/backend"
)

// newBackend creates the persistence backend named by the server config.
func newBackend(cfg config.ServerConfig) (backend.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return backend.NewMemory(), nil
	case config.BackendS3:
		return backend.NewS3(newS3Client(cfg.S3), cfg.S3.Bucket, cfg.S3.Prefix), nil
	default:
		return nil, serrors.New("S051").WithDetailf("%q", cfg.Backend)
	}
}

// newS3Client builds an S3 client from the config and the standard AWS
// environment variables. Without keys the client signs anonymously.
func newS3Client(cfg config.S3Config) *s3.Client {
	region := cfg.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	var creds aws.CredentialsProvider = aws.AnonymousCredentials{}
	if os.Getenv("AWS_ACCESS_KEY_ID") != "" {
		creds = aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				Source:          "environment",
			}, nil
		}))
	}

	return s3.New(s3.Options{
		Region:      region,
		Credentials: creds,
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
}

// originChecker allows the listed origins, or same-origin requests when the
// list is empty. Requests without an Origin header are always allowed.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if len(set) > 0 {
			return set[origin]
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}
