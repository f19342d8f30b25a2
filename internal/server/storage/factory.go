package storage

import (
	"fmt"

	"guestsnap/internal/logging"
	"guestsnap/internal/server/models"
	mediarepo "guestsnap/internal/server/repositories/media"
)

// Factory builds the strategy matching an event's bucket type. The
// variant set is closed: no plugin registration, unknown values are a
// configuration error.
type Factory struct {
	FilesystemRoot string
	S3             S3Config
	Repo           mediarepo.Repository
	Log            logging.Logger
}

// ForBucketType returns the strategy for the given type.
func (f *Factory) ForBucketType(t models.BucketType) (Strategy, error) {
	switch t {
	case models.BucketFilesystem:
		return NewFilesystemStrategy(f.FilesystemRoot, f.Repo, f.Log), nil
	case models.BucketObjectStore:
		return NewObjectStoreStrategy(f.S3, f.Repo, f.Log), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", t)
	}
}

// ObjectStore returns the object-store strategy regardless of event, for
// callers that need the inquiry API directly.
func (f *Factory) ObjectStore() *ObjectStoreStrategy {
	return NewObjectStoreStrategy(f.S3, f.Repo, f.Log)
}
