// services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
)

// maxKYCImageWidth bounds uploaded document images before they leave the
// server; anything wider is resized preserving aspect ratio.
const maxKYCImageWidth = 1600

// StorageService uploads KYC documents to S3-compatible object storage and
// hands back URLs; only the URL is persisted on the user document.
type StorageService struct {
	bucket string
	region string
}

func NewStorageService() *StorageService {
	region := os.Getenv("S3_REGION")
	if region == "" {
		region = "eu-west-1"
	}
	return &StorageService{
		bucket: os.Getenv("S3_BUCKET"),
		region: region,
	}
}

func (s *StorageService) client(ctx context.Context) (*s3.Client, error) {
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY or S3_SECRET_KEY missing")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg), nil
}

// NormalizeImage decodes, downsizes and re-encodes an uploaded image as JPEG
// so oversized or oddly-encoded documents are stored in a predictable form.
func NormalizeImage(r io.Reader) (io.Reader, int64, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > maxKYCImageWidth {
		img = imaging.Resize(img, maxKYCImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, 0, fmt.Errorf("failed to encode image: %w", err)
	}
	return &buf, int64(buf.Len()), nil
}

// Upload puts an object and returns its public URL.
func (s *StorageService) Upload(ctx context.Context, objectName string, file io.Reader) (string, error) {
	if s.bucket == "" {
		return "", fmt.Errorf("S3_BUCKET not set in environment")
	}

	client, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	contentType := mime.TypeByExtension(path.Ext(objectName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectName),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("S3 upload failed: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectName), nil
}

// SignedURL returns a presigned GET URL for a stored object.
func (s *StorageService) SignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if s.bucket == "" {
		return "", fmt.Errorf("S3_BUCKET not set in environment")
	}

	client, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	presigner := s3.NewPresignClient(client)
	presigned, err := presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(objectName),
		},
		func(po *s3.PresignOptions) {
			po.Expires = expiry
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}

	return presigned.URL, nil
}
