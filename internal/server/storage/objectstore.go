package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"guestsnap/internal/common"
	"guestsnap/internal/logging"
	mediakeys "guestsnap/internal/media"
	"guestsnap/internal/server/models"
	mediarepo "guestsnap/internal/server/repositories/media"
)

// Seams for the AWS SDK so tests can intercept presign and object calls.
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

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
)

// Object metadata keys carrying upload provenance. S3 lowercases metadata
// keys, so these are the canonical forms on read.
const (
	metaEventID = "eventid"
	metaGuestID = "guestid"
)

// presignExpiry bounds how long an issued upload URL stays valid.
const presignExpiry = 15 * time.Minute

// S3Config holds the object-store connection settings.
type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string
	// PublicBaseURL is the CDN/public host object keys are served from.
	PublicBaseURL string
}

// ObjectStoreStrategy implements the presigned-URL upload flow: the server
// issues time-limited PUT URLs at inquiry and later confirms objects by
// re-reading their metadata from the store. Raw bytes never pass through
// the server.
//
// A crash between direct upload and confirm leaves orphaned objects with
// no index row; a retried inquiry reissues a fresh key, so orphans are
// unreferenced and left to bucket lifecycle cleanup.
type ObjectStoreStrategy struct {
	Cfg  S3Config
	Repo mediarepo.Repository
	Log  logging.Logger
}

func NewObjectStoreStrategy(cfg S3Config, repo mediarepo.Repository, log logging.Logger) *ObjectStoreStrategy {
	return &ObjectStoreStrategy{Cfg: cfg, Repo: repo, Log: log}
}

func (s *ObjectStoreStrategy) RequiresPresignedFlow() bool { return true }

func (s *ObjectStoreStrategy) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.Cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.Cfg.AccessKey,
			s.Cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.Cfg.BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// PublicURL returns the browser-accessible URL for an object key.
func (s *ObjectStoreStrategy) PublicURL(key string) string {
	return strings.TrimRight(s.Cfg.PublicBaseURL, "/") + "/" + key
}

// InquireFileInfo is the client's declaration of one file it wants to
// upload.
type InquireFileInfo struct {
	Hash        string `json:"hash"`
	Extension   string `json:"extension"`
	ContentType string `json:"contentType"`
	Length      int64  `json:"length"`
}

// InquirePayload is the per-file answer to an inquiry, aligned by index
// with the request. Duplicates and invalid files receive no upload URL.
type InquirePayload struct {
	URL          string            `json:"url"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	IsDuplicate  bool              `json:"isDuplicate"`
	IsInvalid    bool              `json:"isInvalid"`
	Payload      InquireReceipt    `json:"payload"`
	Headers      map[string]string `json:"headers"`
}

// InquireReceipt is echoed back at confirm time; it binds the issued key
// and media id to the declared file.
type InquireReceipt struct {
	Filename         string `json:"filename"`
	FileKey          string `json:"filekey"`
	ThumbnailFileKey string `json:"thumbnailFilekey,omitempty"`
	ID               string `json:"id"`
	ContentType      string `json:"contentType"`
	Length           int64  `json:"length"`
	Hash             string `json:"hash"`
}

// Inquire issues presigned PUT URLs for the declared files. Hashes already
// indexed for the event are marked duplicates; disallowed content types
// are marked invalid; neither receives a URL. The issued URLs sign the
// provenance metadata headers, so the uploader must send them verbatim.
func (s *ObjectStoreStrategy) Inquire(ctx context.Context, infos []InquireFileInfo, eventID, guestID string) ([]InquirePayload, error) {
	if len(infos) > common.MaxInquireBatchSize {
		return nil, fmt.Errorf("%d files: %w", len(infos), common.ErrBatchSizeExceeded)
	}

	hashes := make([]string, len(infos))
	for i, fi := range infos {
		hashes[i] = fi.Hash
	}
	existing, err := s.Repo.ExistingHashes(ctx, eventID, hashes)
	if err != nil {
		return nil, fmt.Errorf("existing hash lookup: %w", err)
	}

	cl, err := s.client(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	pc := newS3PresignClient(cl)

	metadata := map[string]string{
		metaEventID: eventID,
		metaGuestID: guestID,
	}

	payloads := make([]InquirePayload, 0, len(infos))
	for _, fi := range infos {
		if _, dup := existing[fi.Hash]; dup {
			payloads = append(payloads, InquirePayload{
				IsDuplicate: true,
				Payload:     InquireReceipt{ContentType: fi.ContentType, Length: fi.Length, Hash: fi.Hash},
				Headers:     map[string]string{},
			})
			continue
		}

		if !mediakeys.IsValidContent(fi.ContentType) {
			payloads = append(payloads, InquirePayload{
				IsInvalid: true,
				Payload:   InquireReceipt{ContentType: fi.ContentType, Length: fi.Length, Hash: fi.Hash},
				Headers:   map[string]string{},
			})
			continue
		}

		mediaID := uuid.NewString()
		filename := mediakeys.Filename(mediaID, fi.Extension)
		fileKey := mediakeys.ObjectMediaKey(eventID, filename)

		req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.Cfg.Bucket),
			Key:         aws.String(fileKey),
			ContentType: aws.String(fi.ContentType),
			Metadata:    metadata,
		}, s3.WithPresignExpires(presignExpiry))
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", fileKey, err)
		}

		thumbnailFileKey := ""
		thumbnailURL := ""
		if !mediakeys.IsVideoContent(fi.ContentType) {
			thumbnailFileKey = mediakeys.ObjectThumbnailKey(eventID, mediakeys.ThumbnailFilename(mediaID))
			thumbReq, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
				Bucket:      aws.String(s.Cfg.Bucket),
				Key:         aws.String(thumbnailFileKey),
				ContentType: aws.String(fi.ContentType),
				Metadata:    metadata,
			}, s3.WithPresignExpires(presignExpiry))
			if err != nil {
				return nil, fmt.Errorf("presign %s: %w", thumbnailFileKey, err)
			}
			thumbnailURL = thumbReq.URL
		}

		payloads = append(payloads, InquirePayload{
			URL:          req.URL,
			ThumbnailURL: thumbnailURL,
			Payload: InquireReceipt{
				Filename:         filename,
				FileKey:          fileKey,
				ThumbnailFileKey: thumbnailFileKey,
				ID:               mediaID,
				ContentType:      fi.ContentType,
				Length:           fi.Length,
				Hash:             fi.Hash,
			},
			Headers: map[string]string{
				"Content-Type":       fi.ContentType,
				"x-amz-meta-eventid": eventID,
				"x-amz-meta-guestid": guestID,
			},
		})
	}

	return payloads, nil
}

// UploadFiles is the confirm phase: every descriptor must reference a key
// issued at inquiry. Each object's metadata is re-read from the store and
// verified against the authenticated event/guest before the index insert.
// That check is the sole integrity boundary against fabricated confirms.
func (s *ObjectStoreStrategy) UploadFiles(ctx context.Context, files []*models.ProcessedFile, eventID, guestID string, event *models.Event) (*models.BatchUploadResult, error) {
	if event.BucketType != models.BucketObjectStore {
		return nil, fmt.Errorf("event %s: %w", event.ID, common.ErrStorageModeInvalid)
	}

	cl, err := s.client(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}

	stored := make(map[string]*models.UploadedMedia, len(files))
	var records []*models.Media

	for _, f := range files {
		if !f.HasRemoteKey() {
			return nil, fmt.Errorf("file %s: not from an inquiry: %w", f.Hash, common.ErrValidation)
		}

		size, err := s.verifyUploaded(ctx, cl, f.FileKey, eventID, guestID)
		if err != nil {
			return nil, fmt.Errorf("verify %s: %w", f.FileKey, err)
		}

		isVideo := mediakeys.IsVideoContent(f.ContentType)
		thumbnailURL := ""
		if f.ThumbnailFileKey != "" {
			thumbnailURL = s.PublicURL(f.ThumbnailFileKey)
		}

		magicDeleteID := uuid.NewString()
		url := s.PublicURL(f.FileKey)

		records = append(records, &models.Media{
			ID:            f.ID,
			EventID:       eventID,
			GuestID:       guestID,
			URL:           url,
			ThumbnailURL:  thumbnailURL,
			Filename:      f.Filename,
			Size:          size,
			ContentHash:   f.Hash,
			CapturedAt:    f.CapturedAt,
			MediaType:     mediakeys.TypeOf(f.ContentType),
			MagicDeleteID: magicDeleteID,
		})
		stored[f.Hash] = &models.UploadedMedia{
			ID:           f.ID,
			URL:          url,
			ThumbnailURL: thumbnailURL,
			DeleteID:     magicDeleteID,
			IsVideo:      isVideo,
		}
	}

	inserted, err := s.Repo.BatchInsert(ctx, records)
	if err != nil {
		// Same contract as the filesystem path: an unrecorded object is a
		// lost object, so the batch fails together and its objects are
		// removed best effort.
		s.Log.Error(ctx, "media index insert failed, cleaning up objects", "event_id", eventID, "error", err)
		s.cleanupObjects(ctx, cl, records)
		result := &models.BatchUploadResult{
			UploadedMedia:  []models.UploadedMedia{},
			DuplicateMedia: []models.DuplicateMedia{},
			InvalidFiles:   []models.InvalidFile{},
		}
		for _, f := range files {
			result.InvalidFiles = append(result.InvalidFiles, models.InvalidFile{
				Hash: f.Hash, ContentType: f.ContentType, Reason: ReasonRecordFailed,
			})
		}
		return result, nil
	}

	for _, r := range records {
		if _, ok := inserted[r.ContentHash]; !ok {
			delete(stored, r.ContentHash)
		}
	}

	return reconcile(files, stored, map[string]models.InvalidFile{}), nil
}

// verifyUploaded re-reads the object's metadata and checks the provenance
// stamped at inquiry time. The store-reported content length is the
// authoritative size, never the client's claim.
func (s *ObjectStoreStrategy) verifyUploaded(ctx context.Context, cl *s3.Client, key, eventID, guestID string) (int64, error) {
	out, err := headObject(cl, ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.Cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("head object: %w", err)
	}

	gotEvent, okEvent := out.Metadata[metaEventID]
	gotGuest, okGuest := out.Metadata[metaGuestID]
	if !okEvent || !okGuest {
		return 0, fmt.Errorf("missing provenance metadata: %w", common.ErrProvenanceMismatch)
	}
	if gotEvent != eventID || gotGuest != guestID {
		return 0, common.ErrProvenanceMismatch
	}

	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return size, nil
}

// cleanupObjects deletes the batch's objects concurrently; failures are
// logged in aggregate, never escalated.
func (s *ObjectStoreStrategy) cleanupObjects(ctx context.Context, cl *s3.Client, records []*models.Media) {
	var wg sync.WaitGroup
	for _, r := range records {
		wg.Add(1)
		go func(rec *models.Media) {
			defer wg.Done()
			for _, key := range objectKeysFor(rec) {
				if _, err := deleteObject(cl, ctx, &s3.DeleteObjectInput{
					Bucket: aws.String(s.Cfg.Bucket),
					Key:    aws.String(key),
				}); err != nil {
					s.Log.Warn(ctx, "object cleanup failed", "key", key, "error", err)
				}
			}
		}(r)
	}
	wg.Wait()
}

func objectKeysFor(r *models.Media) []string {
	keys := []string{mediakeys.ObjectMediaKey(r.EventID, r.Filename)}
	if r.ThumbnailURL != "" {
		mediaID := strings.TrimSuffix(r.Filename, "."+extensionOf(r.Filename))
		keys = append(keys, mediakeys.ObjectThumbnailKey(r.EventID, mediakeys.ThumbnailFilename(mediaID)))
	}
	return keys
}

func extensionOf(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i+1:]
	}
	return ""
}

// DeleteFile removes the object and its thumbnail, if any.
func (s *ObjectStoreStrategy) DeleteFile(ctx context.Context, filename, eventID string) error {
	cl, err := s.client(ctx)
	if err != nil {
		return fmt.Errorf("s3 client: %w", err)
	}

	key := mediakeys.ObjectMediaKey(eventID, filename)
	if _, err := deleteObject(cl, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Cfg.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	mediaID := strings.TrimSuffix(filename, "."+extensionOf(filename))
	thumbKey := mediakeys.ObjectThumbnailKey(eventID, mediakeys.ThumbnailFilename(mediaID))
	if _, err := deleteObject(cl, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Cfg.Bucket),
		Key:    aws.String(thumbKey),
	}); err != nil {
		s.Log.Warn(ctx, "thumbnail object cleanup failed", "key", thumbKey, "error", err)
	}
	return nil
}
