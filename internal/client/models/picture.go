// Package models defines client-side data models for the upload CLI.
package models

import "time"

// UploadedPicture is the local record of a media item this client uploaded.
// It is the only place the magic-delete token is remembered, so losing the
// local database means losing the ability to delete the upload later.
type UploadedPicture struct {
	// ID is the server-assigned media identifier.
	ID string

	// EventID scopes the record to one event gallery.
	EventID string

	// Name is the original file name as selected by the user.
	Name string

	// URL is the public location of the stored media.
	URL string

	// ThumbnailURL is the public location of the derived thumbnail.
	// Empty for video content.
	ThumbnailURL string

	// DeleteID is the magic-delete token returned by the server.
	DeleteID string

	// IsVideo indicates video content.
	IsVideo bool

	// UploadedAt is when this client recorded the upload, in UTC.
	UploadedAt time.Time
}
