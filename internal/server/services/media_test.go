package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	sc "github.com/dmitrijs2005/portfolio/internal/server/config"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

func newMediaService(rm *fakeRepoManager) *MediaService {
	cfg := &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "portfolio-media",
	}
	return NewMediaService(nil, rm, cfg, logging.Nop())
}

// stubAWS replaces the AWS seams with offline fakes for the duration of the test.
func stubAWS(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func Test_getPresignClient_SuccessAndError(t *testing.T) {
	svc := newMediaService(newFakeRepoManager())
	stubAWS(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		if lo.Credentials == nil {
			t.Fatalf("credentials not applied")
		}
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	pc, err := svc.getPresignClient(context.Background())
	if err != nil || pc == nil {
		t.Fatalf("getPresignClient = %v, %v", pc, err)
	}
	if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
		t.Fatalf("BaseEndpoint not applied: %v", opts.BaseEndpoint)
	}
	if !opts.UsePathStyle {
		t.Fatal("custom endpoints need path-style addressing")
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	if _, err := svc.getPresignClient(context.Background()); err == nil || err.Error() != "load-fail" {
		t.Fatalf("expected load-fail, got %v", err)
	}
}

func TestCreateUpload(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newMediaService(rm)
	stubAWS(t)

	origNow := now
	now = func() time.Time { return time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = origNow })

	var in *s3.PutObjectInput
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, put *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		in = put
		return &v4.PresignedHTTPRequest{URL: "https://s3.example/put"}, nil
	}

	up, err := svc.CreateUpload(context.Background(), "admin", "Photo.PNG", "image/png")
	if err != nil {
		t.Fatalf("CreateUpload error: %v", err)
	}
	if up.UploadURL != "https://s3.example/put" || up.ExpiresIn != presignExpiry {
		t.Fatalf("unexpected upload: %+v", up)
	}
	if *in.Bucket != "portfolio-media" || *in.ContentType != "image/png" {
		t.Fatalf("unexpected put input: bucket=%s type=%s", *in.Bucket, *in.ContentType)
	}
	if !regexp.MustCompile(`^media/2024/03/07/[0-9a-f-]{36}\.png$`).MatchString(*in.Key) {
		t.Fatalf("unexpected key %q", *in.Key)
	}
	m := rm.media.items[up.Media.ID]
	if m == nil || m.StorageKey != *in.Key || m.Status != models.MediaPending || m.UploadedBy != "admin" {
		t.Fatalf("unexpected media row: %+v", m)
	}
}

func TestCreateUpload_Errors(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newMediaService(rm)
	stubAWS(t)
	ctx := context.Background()

	if _, err := svc.CreateUpload(ctx, "admin", "", "image/png"); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("missing filename: %v", err)
	}
	if _, err := svc.CreateUpload(ctx, "admin", "a.png", " "); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("missing content type: %v", err)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, put *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-fail")
	}
	if _, err := svc.CreateUpload(ctx, "admin", "a.png", "image/png"); err == nil || err.Error() != "presign-fail" {
		t.Fatalf("expected presign-fail, got %v", err)
	}
	if len(rm.media.items) != 0 {
		t.Fatal("no row expected when presigning fails")
	}
}

func TestDownloadURL(t *testing.T) {
	rm := newFakeRepoManager()
	svc := newMediaService(rm)
	stubAWS(t)
	ctx := context.Background()

	rm.media.items["m-1"] = &models.Media{ID: "m-1", StorageKey: "media/k.png", Status: models.MediaPending}

	if _, err := svc.DownloadURL(ctx, "m-1"); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("pending upload: %v", err)
	}
	if _, err := svc.DownloadURL(ctx, "missing"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("missing upload: %v", err)
	}

	var key string
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		key = *in.Key
		return &v4.PresignedHTTPRequest{URL: "https://s3.example/get"}, nil
	}

	if err := svc.CompleteUpload(ctx, "m-1"); err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}
	url, err := svc.DownloadURL(ctx, "m-1")
	if err != nil || url != "https://s3.example/get" || key != "media/k.png" {
		t.Fatalf("DownloadURL = %q, %v (key %q)", url, err, key)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
}

func TestCleanExt(t *testing.T) {
	cases := map[string]string{
		"a.png":         ".png",
		"A.JPEG":        ".jpeg",
		"noext":         "",
		"weird.p-g":     "",
		"x.verylongext": "",
		"dot.":          "",
	}
	for in, want := range cases {
		if got := cleanExt(in); got != want {
			t.Errorf("cleanExt(%q) = %q, want %q", in, got, want)
		}
	}
}
