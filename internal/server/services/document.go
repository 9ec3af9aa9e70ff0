package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/edensitko/RED-CRM-sub001/internal/common"
	sc "github.com/edensitko/RED-CRM-sub001/internal/server/config"
	"github.com/edensitko/RED-CRM-sub001/internal/server/models"
	"github.com/edensitko/RED-CRM-sub001/internal/server/repositories/repomanager"
)

// Seams for tests; overridden to avoid real AWS calls.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

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
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// DocumentUpload bundles the stored metadata with the presigned PUT URL the
// client uses to push the file contents.
type DocumentUpload struct {
	Document  *models.FormDocument
	UploadURL string
}

// DocumentService stores form-document metadata in the database and the
// binary payloads in S3-compatible object storage via presigned URLs.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, config *sc.Config) *DocumentService {
	return &DocumentService{db: db, repomanager: m, config: config}
}

// MakeStorageKey builds a date-partitioned object key for a new upload.
func MakeStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("documents/%d/%02d/%02d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *DocumentService) getS3Client() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	}), nil
}

// CreateUpload records metadata for a new document and returns a presigned
// PUT URL valid for 15 minutes.
func (s *DocumentService) CreateUpload(ctx context.Context, userID string, doc *models.FormDocument) (*DocumentUpload, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	if strings.TrimSpace(doc.Name) == "" || strings.TrimSpace(doc.FileName) == "" {
		return nil, common.ErrorValidation
	}

	client, err := s.getS3Client()
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := MakeStorageKey()

	req, err := presignPutObject(newS3PresignClient(client), ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %v", err)
	}

	doc.ID = uuid.New().String()
	doc.StorageKey = key
	doc.UploadedBy = userID

	created, err := s.repomanager.Documents(s.db).Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("error creating document: %v", err)
	}

	return &DocumentUpload{Document: created, UploadURL: req.URL}, nil
}

// DownloadURL returns a presigned GET URL for the document's stored object.
// URLs expire; a stale URL held past expiry fails on next access.
func (s *DocumentService) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	client, err := s.getS3Client()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &doc.StorageKey,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("error presigning download: %v", err)
	}

	return req.URL, nil
}

// List returns all document metadata, newest first. Deleted documents are
// excluded immediately.
func (s *DocumentService) List(ctx context.Context) ([]*models.FormDocument, error) {
	return s.repomanager.Documents(s.db).List(ctx)
}

// Delete removes the stored object and then the metadata row.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	repo := s.repomanager.Documents(s.db)

	doc, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	client, err := s.getS3Client()
	if err != nil {
		return err
	}

	bucket := s.config.S3Bucket
	if _, err := deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &doc.StorageKey,
	}); err != nil {
		return fmt.Errorf("error deleting object: %v", err)
	}

	return repo.Delete(ctx, id)
}
