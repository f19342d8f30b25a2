// Package media holds the media-type vocabulary shared by client and
// server: the MIME allowlist, the picture/video split, and the storage
// key and public URL layout for both storage backends.
package media

import (
	"fmt"
	"strings"
)

// Type distinguishes persisted media kinds.
type Type string

const (
	TypePicture Type = "picture"
	TypeVideo   Type = "video"
)

// ThumbnailExt is the extension of derived thumbnail objects. Thumbnails
// are re-encoded JPEG regardless of the source format.
const ThumbnailExt = "jpeg"

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/heic": {},
	"image/heif": {},
	"image/avif": {},
}

var allowedVideoTypes = map[string]struct{}{
	"video/mp4":       {},
	"video/quicktime": {},
	"video/3gpp":      {},
	"video/webm":      {},
}

// IsValidContent reports whether contentType is on the upload allowlist.
// Parameters after a semicolon (e.g. codecs) are ignored.
func IsValidContent(contentType string) bool {
	ct := normalize(contentType)
	if _, ok := allowedImageTypes[ct]; ok {
		return true
	}
	_, ok := allowedVideoTypes[ct]
	return ok
}

// IsVideoContent reports whether contentType is an allowed video type.
func IsVideoContent(contentType string) bool {
	_, ok := allowedVideoTypes[normalize(contentType)]
	return ok
}

// TypeOf maps an allowed content type to its media.Type. Video types map
// to TypeVideo, everything else to TypePicture.
func TypeOf(contentType string) Type {
	if IsVideoContent(contentType) {
		return TypeVideo
	}
	return TypePicture
}

func normalize(contentType string) string {
	ct := contentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// Filesystem layout: originals and thumbnails live under a public root
// served as static files.

func UploadedMediaFolder(eventID string) string {
	return fmt.Sprintf("public/events/%s/medias", eventID)
}

func UploadedThumbnailFolder(eventID string) string {
	return fmt.Sprintf("public/events/%s/thumbnails", eventID)
}

func UploadedMediaURL(eventID, filename string) string {
	return fmt.Sprintf("public/events/%s/medias/%s", eventID, filename)
}

func UploadedThumbnailURL(eventID, filename string) string {
	return fmt.Sprintf("public/events/%s/thumbnails/%s", eventID, filename)
}

// Object-store layout. Keys carry the owning event so provenance survives
// in the key itself as well as in object metadata.

func ObjectMediaKey(eventID, filename string) string {
	return fmt.Sprintf("events/%s/medias/%s", eventID, filename)
}

func ObjectThumbnailKey(eventID, filename string) string {
	return fmt.Sprintf("events/%s/thumbnails/%s", eventID, filename)
}

// Filename builds the unique storage filename for a media id and the
// uploader-declared extension.
func Filename(mediaID, extension string) string {
	ext := strings.TrimPrefix(strings.ToLower(extension), ".")
	return fmt.Sprintf("%s.%s", mediaID, ext)
}

// ThumbnailFilename builds the derived thumbnail filename for a media id.
func ThumbnailFilename(mediaID string) string {
	return fmt.Sprintf("%s.%s", mediaID, ThumbnailExt)
}
