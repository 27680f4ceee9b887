package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	sc "github.com/dmitrijs2005/portfolio/internal/server/config"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
	"github.com/google/uuid"
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

	now = time.Now
)

// Upload is a pending media row plus the URL the client PUTs the bytes to.
type Upload struct {
	Media     *models.Media
	UploadURL string
	ExpiresIn time.Duration
}

// MediaService hands out presigned URLs for the media bucket. The server
// never proxies object bytes.
type MediaService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

func NewMediaService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, logger logging.Logger) *MediaService {
	return &MediaService{
		db:          db,
		repomanager: m,
		config:      cfg,
		logger:      logger,
	}
}

// storageKey returns media/YYYY/MM/DD/<uuid><ext>, keeping the original
// extension when it is short and alphanumeric.
func storageKey(filename string) string {
	d := now().UTC()
	return fmt.Sprintf("media/%04d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.NewString(), cleanExt(filename))
}

func cleanExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func (s *MediaService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
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
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// CreateUpload records a pending upload and returns a presigned PUT URL for it.
func (s *MediaService) CreateUpload(ctx context.Context, uploadedBy, filename, contentType string) (*Upload, error) {
	filename = strings.TrimSpace(filename)
	contentType = strings.TrimSpace(contentType)
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", common.ErrorValidation)
	}
	if contentType == "" {
		return nil, fmt.Errorf("%w: content type is required", common.ErrorValidation)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := storageKey(filename)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, err
	}

	m, err := s.repomanager.Media(s.db).Create(ctx, &models.Media{
		StorageKey:  key,
		Filename:    filename,
		ContentType: contentType,
		UploadedBy:  uploadedBy,
	})
	if err != nil {
		return nil, err
	}

	return &Upload{Media: m, UploadURL: req.URL, ExpiresIn: presignExpiry}, nil
}

// CompleteUpload marks the upload as finished by the client.
func (s *MediaService) CompleteUpload(ctx context.Context, id string) error {
	return s.repomanager.Media(s.db).MarkUploaded(ctx, id)
}

func (s *MediaService) List(ctx context.Context) ([]*models.Media, error) {
	return s.repomanager.Media(s.db).List(ctx)
}

// DownloadURL returns a presigned GET URL for a completed upload.
func (s *MediaService) DownloadURL(ctx context.Context, id string) (string, error) {
	m, err := s.repomanager.Media(s.db).Get(ctx, id)
	if err != nil {
		return "", err
	}
	if m.Status != models.MediaCompleted {
		return "", fmt.Errorf("%w: upload is not completed", common.ErrorValidation)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &m.StorageKey,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
