package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"bideorai/internal/artifact"
	"bideorai/internal/command"
	"bideorai/internal/config"
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader uploads through an S3-compatible API.
type S3Uploader struct {
	Client ObjectPutter
	// DryRun, when set, receives a description of each upload instead.
	DryRun *command.DryRunRunner
}

// Upload stores the artifact with its content type.
func (u *S3Uploader) Upload(ctx context.Context, bucket string, a artifact.Artifact) error {
	if u.DryRun != nil {
		u.DryRun.Print(fmt.Sprintf("s3 put %s s3://%s/%s", command.Quote(a.LocalPath), bucket, a.RemotePath))
		return nil
	}
	if u.Client == nil {
		return errors.New("s3 client not configured")
	}

	file, err := os.Open(a.LocalPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", a.LocalPath, err)
	}
	defer file.Close()

	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(a.RemotePath),
		Body:        file,
		ContentType: aws.String(a.ContentType()),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, a.RemotePath, err)
	}
	return nil
}

// NewS3Client builds an S3 client from the publish configuration. Static
// credentials are used when configured; otherwise the default AWS chain
// applies.
func NewS3Client(ctx context.Context, cfg config.S3) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	}), nil
}
