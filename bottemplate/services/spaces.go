package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ellavondegurechaff/progression/bottemplate/config"
)

// ObjectPutter is the part of the S3 API the report sink uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ReportSink uploads reconciliation reports to a DigitalOcean Spaces bucket.
type ReportSink struct {
	client ObjectPutter
	bucket string
	prefix string
}

func NewReportSink(client ObjectPutter, bucket, prefix string) *ReportSink {
	return &ReportSink{client: client, bucket: bucket, prefix: prefix}
}

// NewSpacesClient builds an S3 client pointed at Spaces. An empty endpoint
// means the region's default Spaces endpoint.
func NewSpacesClient(ctx context.Context, key, secret, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", region)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	}), nil
}

// Upload stores report as JSON and returns the object key.
func (s *ReportSink) Upload(ctx context.Context, report *ReconcileReport) (string, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	key := path.Join(s.prefix, report.GeneratedAt.UTC().Format(config.ReportTimeLayout)+".json")
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(config.ReportContentType),
		Metadata: map[string]string{
			"checked":    fmt.Sprint(report.Checked),
			"mismatches": fmt.Sprint(len(report.Mismatches)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload report %s: %w", key, err)
	}
	return key, nil
}

// uploadTimeout bounds a single report upload.
const uploadTimeout = 30 * time.Second

// UploadWithTimeout is Upload bounded by uploadTimeout.
func (s *ReportSink) UploadWithTimeout(ctx context.Context, report *ReconcileReport) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()
	return s.Upload(ctx, report)
}
