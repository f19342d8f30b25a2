package models

import "time"

// BucketType selects the storage strategy for an event. The set is closed;
// anything else is a configuration error.
type BucketType string

const (
	BucketFilesystem  BucketType = "filesystem"
	BucketObjectStore BucketType = "objectstore"
)

// Event is the gallery an upload belongs to. The upload pipeline consumes
// events read-only; event management lives elsewhere.
type Event struct {
	ID        string
	Name      string
	ShortName string
	State     string
	ImageURL  string
	StartDate time.Time
	EndDate   time.Time

	// BucketType picks the storage strategy.
	BucketType BucketType
	// BucketURI is the filesystem root for filesystem-backed events.
	BucketURI string

	CreatedAt time.Time
	UpdatedAt time.Time
}
