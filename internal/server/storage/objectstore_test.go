package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"guestsnap/internal/common"
	"guestsnap/internal/server/models"
)

func testS3Config() S3Config {
	return S3Config{
		Region:        "us-east-1",
		AccessKey:     "test",
		SecretKey:     "test",
		Bucket:        "media",
		BaseEndpoint:  "http://localhost:9000",
		PublicBaseURL: "https://cdn.example.com/",
	}
}

// stubAWS replaces the SDK seams for the duration of one test and records
// the calls made through them.
type stubAWS struct {
	presigned  []*s3.PutObjectInput
	presignErr error

	headOut *s3.HeadObjectOutput
	headErr error

	deleted []string
}

func installStubAWS(t *testing.T, stub *stubAWS) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origPresign := presignPutObject
	origHead := headObject
	origDelete := deleteObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		presignPutObject = origPresign
		headObject = origHead
		deleteObject = origDelete
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if stub.presignErr != nil {
			return nil, stub.presignErr
		}
		stub.presigned = append(stub.presigned, in)
		return &v4.PresignedHTTPRequest{URL: "https://signed.example.com/" + *in.Key}, nil
	}
	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		if stub.headErr != nil {
			return nil, stub.headErr
		}
		return stub.headOut, nil
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		stub.deleted = append(stub.deleted, *in.Key)
		return &s3.DeleteObjectOutput{}, nil
	}
}

func osEvent() *models.Event {
	return &models.Event{ID: "e1", BucketType: models.BucketObjectStore}
}

func TestInquire_BatchSizeLimit(t *testing.T) {
	installStubAWS(t, &stubAWS{})
	s := NewObjectStoreStrategy(testS3Config(), &fakeMediaRepo{}, discardLogger())

	infos := make([]InquireFileInfo, common.MaxInquireBatchSize+1)
	for i := range infos {
		infos[i] = InquireFileInfo{Hash: strings.Repeat("a", 64), ContentType: "image/jpeg", Extension: "jpg"}
	}

	_, err := s.Inquire(context.Background(), infos, "e1", "g1")
	if !errors.Is(err, common.ErrBatchSizeExceeded) {
		t.Fatalf("err = %v, want ErrBatchSizeExceeded", err)
	}
}

func TestInquire_PartitionsDeclarations(t *testing.T) {
	stub := &stubAWS{}
	installStubAWS(t, stub)

	dupHash := strings.Repeat("d", 64)
	repo := &fakeMediaRepo{existing: map[string]struct{}{dupHash: {}}}
	s := NewObjectStoreStrategy(testS3Config(), repo, discardLogger())

	infos := []InquireFileInfo{
		{Hash: strings.Repeat("1", 64), ContentType: "image/jpeg", Extension: "jpg", Length: 100},
		{Hash: dupHash, ContentType: "image/jpeg", Extension: "jpg", Length: 200},
		{Hash: strings.Repeat("2", 64), ContentType: "application/zip", Extension: "zip", Length: 300},
		{Hash: strings.Repeat("3", 64), ContentType: "video/mp4", Extension: "mp4", Length: 400},
	}

	payloads, err := s.Inquire(context.Background(), infos, "e1", "g1")
	if err != nil {
		t.Fatalf("Inquire error: %v", err)
	}
	if len(payloads) != len(infos) {
		t.Fatalf("payloads = %d, want %d", len(payloads), len(infos))
	}

	img := payloads[0]
	if img.URL == "" || img.ThumbnailURL == "" {
		t.Errorf("image payload missing urls: %+v", img)
	}
	if !strings.HasPrefix(img.Payload.FileKey, "events/e1/medias/") {
		t.Errorf("file key = %q", img.Payload.FileKey)
	}
	if !strings.HasPrefix(img.Payload.ThumbnailFileKey, "events/e1/thumbnails/") {
		t.Errorf("thumbnail key = %q", img.Payload.ThumbnailFileKey)
	}
	if img.Headers["x-amz-meta-eventid"] != "e1" || img.Headers["x-amz-meta-guestid"] != "g1" {
		t.Errorf("headers = %v", img.Headers)
	}

	if !payloads[1].IsDuplicate || payloads[1].URL != "" {
		t.Errorf("duplicate payload = %+v", payloads[1])
	}
	if !payloads[2].IsInvalid || payloads[2].URL != "" {
		t.Errorf("invalid payload = %+v", payloads[2])
	}

	video := payloads[3]
	if video.URL == "" {
		t.Errorf("video payload missing url")
	}
	if video.ThumbnailURL != "" || video.Payload.ThumbnailFileKey != "" {
		t.Errorf("video payload should have no thumbnail: %+v", video)
	}

	// One presign for the video, two for the image. Every signed PUT
	// carries the provenance metadata.
	if len(stub.presigned) != 3 {
		t.Fatalf("presign calls = %d, want 3", len(stub.presigned))
	}
	for _, in := range stub.presigned {
		if in.Metadata[metaEventID] != "e1" || in.Metadata[metaGuestID] != "g1" {
			t.Errorf("presigned input missing provenance metadata: %v", in.Metadata)
		}
	}
}

func TestConfirm_RecordsVerifiedObjects(t *testing.T) {
	size := int64(12345)
	stub := &stubAWS{
		headOut: &s3.HeadObjectOutput{
			ContentLength: &size,
			Metadata:      map[string]string{metaEventID: "e1", metaGuestID: "g1"},
		},
	}
	installStubAWS(t, stub)

	repo := &fakeMediaRepo{}
	s := NewObjectStoreStrategy(testS3Config(), repo, discardLogger())

	files := []*models.ProcessedFile{{
		Hash:             strings.Repeat("1", 64),
		Extension:        "jpg",
		ContentType:      "image/jpeg",
		Length:           999, // client claim, must be ignored
		ID:               "m1",
		Filename:         "m1.jpg",
		FileKey:          "events/e1/medias/m1.jpg",
		ThumbnailFileKey: "events/e1/thumbnails/m1.jpeg",
	}}

	result, err := s.UploadFiles(context.Background(), files, "e1", "g1", osEvent())
	if err != nil {
		t.Fatalf("UploadFiles error: %v", err)
	}

	if len(result.UploadedMedia) != 1 {
		t.Fatalf("uploaded = %d, want 1", len(result.UploadedMedia))
	}
	up := result.UploadedMedia[0]
	if up.URL != "https://cdn.example.com/events/e1/medias/m1.jpg" {
		t.Errorf("url = %q", up.URL)
	}
	if up.DeleteID == "" {
		t.Errorf("missing delete token")
	}

	if len(repo.lastBatch) != 1 {
		t.Fatalf("records = %d", len(repo.lastBatch))
	}
	if repo.lastBatch[0].Size != size {
		t.Errorf("size = %d, want store-reported %d", repo.lastBatch[0].Size, size)
	}
}

func TestConfirm_RejectsForeignProvenance(t *testing.T) {
	size := int64(1)
	stub := &stubAWS{
		headOut: &s3.HeadObjectOutput{
			ContentLength: &size,
			Metadata:      map[string]string{metaEventID: "other-event", metaGuestID: "g1"},
		},
	}
	installStubAWS(t, stub)

	s := NewObjectStoreStrategy(testS3Config(), &fakeMediaRepo{}, discardLogger())

	files := []*models.ProcessedFile{{
		Hash:        strings.Repeat("1", 64),
		ContentType: "image/jpeg",
		ID:          "m1",
		Filename:    "m1.jpg",
		FileKey:     "events/e1/medias/m1.jpg",
	}}

	_, err := s.UploadFiles(context.Background(), files, "e1", "g1", osEvent())
	if !errors.Is(err, common.ErrProvenanceMismatch) {
		t.Fatalf("err = %v, want ErrProvenanceMismatch", err)
	}
}

func TestConfirm_RejectsDescriptorWithoutKey(t *testing.T) {
	installStubAWS(t, &stubAWS{})
	s := NewObjectStoreStrategy(testS3Config(), &fakeMediaRepo{}, discardLogger())

	files := []*models.ProcessedFile{{
		Hash:        strings.Repeat("1", 64),
		ContentType: "image/jpeg",
		Content:     []byte("inline bytes do not belong here"),
	}}

	_, err := s.UploadFiles(context.Background(), files, "e1", "g1", osEvent())
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestConfirm_IndexFailureDeletesObjects(t *testing.T) {
	size := int64(1)
	stub := &stubAWS{
		headOut: &s3.HeadObjectOutput{
			ContentLength: &size,
			Metadata:      map[string]string{metaEventID: "e1", metaGuestID: "g1"},
		},
	}
	installStubAWS(t, stub)

	repo := &fakeMediaRepo{insertErr: errors.New("db down")}
	s := NewObjectStoreStrategy(testS3Config(), repo, discardLogger())

	files := []*models.ProcessedFile{{
		Hash:             strings.Repeat("1", 64),
		ContentType:      "image/jpeg",
		ID:               "m1",
		Filename:         "m1.jpg",
		FileKey:          "events/e1/medias/m1.jpg",
		ThumbnailFileKey: "events/e1/thumbnails/m1.jpeg",
	}}

	result, err := s.UploadFiles(context.Background(), files, "e1", "g1", osEvent())
	if err != nil {
		t.Fatalf("UploadFiles error: %v", err)
	}

	if len(result.InvalidFiles) != 1 || result.InvalidFiles[0].Reason != ReasonRecordFailed {
		t.Fatalf("invalid = %+v", result.InvalidFiles)
	}
	if len(stub.deleted) != 2 {
		t.Errorf("deleted keys = %v, want original plus thumbnail", stub.deleted)
	}
}

func TestObjectStoreDeleteFile(t *testing.T) {
	stub := &stubAWS{}
	installStubAWS(t, stub)
	s := NewObjectStoreStrategy(testS3Config(), &fakeMediaRepo{}, discardLogger())

	if err := s.DeleteFile(context.Background(), "m1.jpg", "e1"); err != nil {
		t.Fatalf("DeleteFile error: %v", err)
	}
	want := []string{
		"events/e1/medias/m1.jpg",
		"events/e1/thumbnails/m1.jpeg",
	}
	if len(stub.deleted) != 2 || stub.deleted[0] != want[0] || stub.deleted[1] != want[1] {
		t.Errorf("deleted = %v, want %v", stub.deleted, want)
	}
}

func TestFactoryDispatch(t *testing.T) {
	f := &Factory{FilesystemRoot: t.TempDir(), S3: testS3Config(), Repo: &fakeMediaRepo{}, Log: discardLogger()}

	fs, err := f.ForBucketType(models.BucketFilesystem)
	if err != nil {
		t.Fatalf("filesystem: %v", err)
	}
	if fs.RequiresPresignedFlow() {
		t.Errorf("filesystem strategy should not require presigned flow")
	}

	os, err := f.ForBucketType(models.BucketObjectStore)
	if err != nil {
		t.Fatalf("objectstore: %v", err)
	}
	if !os.RequiresPresignedFlow() {
		t.Errorf("object store strategy should require presigned flow")
	}

	if _, err := f.ForBucketType(models.BucketType("gopher")); err == nil {
		t.Errorf("expected error for unknown bucket type")
	}
}
