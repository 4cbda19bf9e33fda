package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	sc "github.com/dmitrijs2005/giveaway/internal/server/config"
	"github.com/dmitrijs2005/giveaway/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// PresignedUpload is where the client PUTs the image and the object key it
// will be stored under.
type PresignedUpload struct {
	URL         string
	Key         string
	ContentType string
}

// ImageService issues presigned S3 URLs for prize images.
type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config) *ImageService {
	return &ImageService{db: db, repomanager: m, config: config}
}

func prizeImageKey(eventID, prizeID string) string {
	return fmt.Sprintf("prizes/%s/%s/%v", eventID, prizeID, uuid.New())
}

func (s *ImageService) Enabled() bool {
	return s.config.S3Bucket != ""
}

func (s *ImageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignUpload records a fresh object key on the prize and returns a PUT URL
// for it. The previous image, if any, is no longer referenced.
func (s *ImageService) PresignUpload(ctx context.Context, prizeID, contentType string) (*PresignedUpload, error) {
	if !s.Enabled() {
		return nil, common.ErrStorageNotConfigured
	}
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type must be an image", common.ErrorValidation)
	}

	repo := s.repomanager.Events(s.db)
	prize, err := repo.GetPrize(ctx, prizeID)
	if err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := prizeImageKey(prize.EventID, prize.ID)
	in := &s3.PutObjectInput{Bucket: &bucket, Key: &key}
	if contentType != "" {
		in.ContentType = &contentType
	}

	req, err := presignPutObject(presignClient, ctx, in, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, err
	}

	if err := repo.SetPrizeImage(ctx, prize.ID, key); err != nil {
		return nil, err
	}

	return &PresignedUpload{URL: req.URL, Key: key, ContentType: contentType}, nil
}

// PresignDownload returns a GET URL for the prize image, or
// common.ErrorNotFound when the prize has none.
func (s *ImageService) PresignDownload(ctx context.Context, prizeID string) (string, error) {
	if !s.Enabled() {
		return "", common.ErrStorageNotConfigured
	}

	prize, err := s.repomanager.Events(s.db).GetPrize(ctx, prizeID)
	if err != nil {
		return "", err
	}
	if prize.ImageKey == nil {
		return "", common.ErrorNotFound
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    prize.ImageKey,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
