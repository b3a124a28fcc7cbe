package httpapi

import (
	"context"
	"io"
	"net/http"

	"noticeboard-engine/internal/domain"
	"noticeboard-engine/internal/events"
	"noticeboard-engine/internal/extract"
	"noticeboard-engine/internal/store"
)

// maxImageBytes bounds the uploaded page render. A single announcement
// page as PNG stays well under this.
const maxImageBytes = 10 << 20

type ExtractHandler struct {
	Extract func(ctx context.Context, image []byte, mimeType string) (extract.Fields, error)
	Create  func(ctx context.Context, f store.Fields) (domain.Listing, error)
	Hub     *events.Hub
	Refresh func()
}

// Upload handles POST /extract: the UI renders the uploaded PDF's
// first page to an image and posts it here; we run AI extraction and
// persist the result as a new listing. Any collaborator failure aborts
// the flow and surfaces to the caller.
func (h ExtractHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_upload", "could not parse multipart form: "+err.Error())
		return
	}

	file, hdr, err := r.FormFile("image")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_upload", `missing "image" file field`)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_upload", "could not read upload: "+err.Error())
		return
	}
	if len(image) > maxImageBytes {
		WriteError(w, r, http.StatusRequestEntityTooLarge, "too_large", "image exceeds upload limit")
		return
	}

	mimeType := hdr.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(image)
	}

	fields, err := h.Extract(r.Context(), image, mimeType)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "extract_failed", err.Error())
		return
	}

	listing, err := h.Create(r.Context(), store.Fields{
		Summary:           fields.Summary,
		ApplicationPeriod: fields.ApplicationPeriod,
		TrainingPeriod:    fields.TrainingPeriod,
		Target:            fields.Target,
	})
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "store_error", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.Make(reqID, events.TypeListingCreated, map[string]any{"id": listing.ID}))
	if h.Refresh != nil {
		h.Refresh()
	}
	WriteJSON(w, http.StatusCreated, listing)
}
