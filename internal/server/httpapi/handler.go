package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"guestsnap/internal/common"
	"guestsnap/internal/fingerprint"
	"guestsnap/internal/logging"
	"guestsnap/internal/server/models"
	"guestsnap/internal/server/services"
	"guestsnap/internal/server/storage"
)

const (
	defaultPictureLimit = 50
	maxPictureLimit     = 200
)

// Handler holds the HTTP handlers for the guest-facing endpoints.
type Handler struct {
	events    *services.EventService
	uploads   *services.UploadService
	deletions *services.DeletionService
	guests    *services.GuestService
	log       logging.Logger
}

func NewHandler(events *services.EventService, uploads *services.UploadService, deletions *services.DeletionService, guests *services.GuestService, log logging.Logger) *Handler {
	return &Handler{events: events, uploads: uploads, deletions: deletions, guests: guests, log: log}
}

// Register creates a guest for the event and returns the session token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	session, err := h.guests.Register(r.Context(), eventID, req.Name)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		h.log.Error(r.Context(), "guest registration failed", "event_id", eventID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// GetEvent returns the public event view with the picture count.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	event, err := h.events.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		h.log.Error(r.Context(), "event lookup failed", "event_id", eventID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	count, err := h.events.PictureCount(r.Context(), eventID)
	if err != nil {
		h.log.Error(r.Context(), "picture count failed", "event_id", eventID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, eventView{
		ID:           event.ID,
		Name:         event.Name,
		ShortName:    event.ShortName,
		State:        event.State,
		ImageURL:     event.ImageURL,
		BucketType:   string(event.BucketType),
		StartDate:    event.StartDate,
		EndDate:      event.EndDate,
		PictureCount: count,
	})
}

// ListPictures returns a page of the event's gallery, newest first.
func (h *Handler) ListPictures(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	if _, err := h.events.GetEvent(r.Context(), eventID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		h.log.Error(r.Context(), "event lookup failed", "event_id", eventID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	limit := queryInt(r, "limit", defaultPictureLimit)
	if limit <= 0 || limit > maxPictureLimit {
		limit = defaultPictureLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, err := h.events.ListPictures(r.Context(), eventID, limit, offset)
	if err != nil {
		h.log.Error(r.Context(), "picture listing failed", "event_id", eventID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	views := make([]pictureView, 0, len(items))
	for _, m := range items {
		views = append(views, newPictureView(m))
	}
	writeJSON(w, http.StatusOK, views)
}

// InquireUpload issues presigned upload URLs for object-store events.
func (h *Handler) InquireUpload(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	guestID := GuestIDFromContext(r.Context())

	var infos []storage.InquireFileInfo
	if err := json.NewDecoder(r.Body).Decode(&infos); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for i, fi := range infos {
		if len(fi.Hash) != fingerprint.HashLength {
			writeError(w, http.StatusBadRequest, "invalid hash at index "+strconv.Itoa(i))
			return
		}
		if len(fi.Extension) > maxExtensionLength || len(fi.ContentType) > maxContentTypeLength {
			writeError(w, http.StatusBadRequest, "invalid file information at index "+strconv.Itoa(i))
			return
		}
	}

	payloads, err := h.uploads.Inquire(r.Context(), eventID, guestID, infos)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, common.ErrBatchSizeExceeded):
			writeError(w, http.StatusBadRequest, "too many files in one inquiry")
		case errors.Is(err, common.ErrStorageModeInvalid):
			writeError(w, http.StatusBadRequest, "event storage does not use presigned uploads")
		default:
			h.log.Error(r.Context(), "inquiry failed", "event_id", eventID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, payloads)
}

// Upload stores one batch. The filesystem shape carries bytes inline;
// the object-store shape confirms previously inquired keys. A fully
// clean batch answers 200; any duplicate or invalid classification
// answers 422 with the same three-list body so the client can merge.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	guestID := GuestIDFromContext(r.Context())

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.FilesInformations) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	var descriptors []*models.ProcessedFile
	var err error
	if len(req.Files) > 0 {
		descriptors, err = descriptorsFromInline(req.Files, req.FilesInformations)
	} else {
		descriptors, err = descriptorsFromConfirm(req.FilesInformations)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	batch, err := h.uploads.Upload(r.Context(), eventID, guestID, descriptors)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrStorageModeInvalid):
			writeError(w, http.StatusBadRequest, "invalid upload for this event")
		case errors.Is(err, common.ErrProvenanceMismatch):
			writeError(w, http.StatusBadRequest, "uploaded object does not match session")
		default:
			h.log.Error(r.Context(), "upload failed", "event_id", eventID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	status := http.StatusOK
	if len(batch.DuplicateMedia) > 0 || len(batch.InvalidFiles) > 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, batch)
}

// MagicDelete removes media matched by magic tokens.
func (h *Handler) MagicDelete(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req magicDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.MagicDeleteIDs) == 0 {
		writeError(w, http.StatusBadRequest, "magicDeleteIds must not be empty")
		return
	}

	result, err := h.deletions.DeleteByMagicTokens(r.Context(), eventID, req.MagicDeleteIDs)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		h.log.Error(r.Context(), "deletion failed", "event_id", eventID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if result.DeletedCount == 0 {
		writeError(w, http.StatusNotFound, "no pictures found with the provided delete IDs")
		return
	}

	writeJSON(w, http.StatusOK, magicDeleteResponse{
		Success:       len(result.StorageErrors) == 0,
		DeletedCount:  result.DeletedCount,
		DeletedIDs:    result.DeletedIDs,
		StorageErrors: result.StorageErrors,
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
