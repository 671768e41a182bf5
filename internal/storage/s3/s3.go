package s3

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/5w1tchy/course-library-api/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Presigned is a time-limited URL granting one HTTP method on one object.
type Presigned struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type S3Client struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Bucket    string
	TTL       time.Duration
}

// NewClient initializes an S3-compatible client (AWS, R2, MinIO).
func NewClient(ctx context.Context, cfg config.Storage) (*S3Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Client{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    cfg.Bucket,
		TTL:       cfg.PresignTTL,
	}, nil
}

// SyllabusKey is the object key of a course's syllabus.
func SyllabusKey(authorID, courseID uuid.UUID) string {
	return "authors/" + authorID.String() + "/courses/" + courseID.String() + "/syllabus"
}

// PresignUpload creates a presigned PUT URL for direct upload.
func (s *S3Client) PresignUpload(ctx context.Context, objectKey, contentType string) (Presigned, error) {
	req, err := s.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.TTL))
	if err != nil {
		return Presigned{}, fmt.Errorf("failed to presign upload: %w", err)
	}
	return Presigned{URL: req.URL, Method: http.MethodPut, ExpiresAt: time.Now().Add(s.TTL).UTC()}, nil
}

// PresignDownload creates a presigned GET URL.
func (s *S3Client) PresignDownload(ctx context.Context, objectKey string) (Presigned, error) {
	req, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(s.TTL))
	if err != nil {
		return Presigned{}, fmt.Errorf("failed to presign download: %w", err)
	}
	return Presigned{URL: req.URL, Method: http.MethodGet, ExpiresAt: time.Now().Add(s.TTL).UTC()}, nil
}

// Delete removes an object; deleting a missing key is not an error.
func (s *S3Client) Delete(ctx context.Context, objectKey string) error {
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("s3: delete object %s: %w", objectKey, err)
	}
	return nil
}
