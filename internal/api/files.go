package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/vaultgate/pkg/storage"
)

type uploadResponse struct {
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
	Bucket   string `json:"bucket"`
	ETag     string `json:"etag"`
}

type listResponse struct {
	Files     []storage.FileObject `json:"files"`
	TotalSize int64                `json:"total_size"`
	FileCount int                  `json:"file_count"`
}

type downloadResponse struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
	FileName  string `json:"file_name"`
	FileSize  int64  `json:"file_size"`
	FileHash  string `json:"file_hash"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondJSON(w, http.StatusUnauthorized,
			errorResponse{Error: "missing authentication token"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+uploadFormOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		// A body past the cap surfaces here as *http.MaxBytesError,
		// which is a size violation, not a missing field.
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondJSON(w, http.StatusBadRequest, errorResponse{
				Error: fmt.Sprintf("file exceeds limit of %d bytes", h.maxBytes),
				Code:  storage.ErrCodeFileTooLarge,
			})
			return
		}
		h.respondJSON(w, http.StatusBadRequest,
			errorResponse{Error: "multipart field \"file\" is required"})
		return
	}
	defer file.Close()

	vf, err := h.validator.Validate(header.Filename, file)
	if err != nil {
		h.respondError(r.Context(), w, err)
		return
	}

	if _, err := h.gateway.Upload(r.Context(), identity, vf.Name, vf.Content, vf.Size, vf.ContentType); err != nil {
		h.respondError(r.Context(), w, err)
		return
	}

	fo, err := h.gateway.Stat(r.Context(), identity, vf.Name)
	if err != nil {
		h.respondError(r.Context(), w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, uploadResponse{
		FileName: fo.Name,
		Size:     fo.Size,
		Bucket:   h.gateway.Bucket(identity),
		ETag:     fo.ETag,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondJSON(w, http.StatusUnauthorized,
			errorResponse{Error: "missing authentication token"})
		return
	}

	files, err := h.gateway.List(r.Context(), identity, r.URL.Query().Get("prefix"))
	if err != nil {
		h.respondError(r.Context(), w, err)
		return
	}
	if files == nil {
		files = []storage.FileObject{}
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}

	h.respondJSON(w, http.StatusOK, listResponse{
		Files:     files,
		TotalSize: total,
		FileCount: len(files),
	})
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondJSON(w, http.StatusUnauthorized,
			errorResponse{Error: "missing authentication token"})
		return
	}

	name := objectName(r)
	if name == "" {
		h.respondJSON(w, http.StatusNotFound, errorResponse{Error: "file not found"})
		return
	}

	fo, err := h.gateway.Stat(r.Context(), identity, name)
	if err != nil {
		h.respondError(r.Context(), w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, fo)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		h.respondJSON(w, http.StatusUnauthorized,
			errorResponse{Error: "missing authentication token"})
		return
	}

	name := objectName(r)
	if name == "" {
		h.respondJSON(w, http.StatusNotFound, errorResponse{Error: "file not found"})
		return
	}

	fo, err := h.gateway.Stat(r.Context(), identity, name)
	if err != nil {
		h.respondError(r.Context(), w, err)
		return
	}

	signed, err := h.gateway.PresignedDownloadURL(r.Context(), identity, name, h.presignTTL)
	if err != nil {
		h.respondError(r.Context(), w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, downloadResponse{
		URL:       signed,
		ExpiresIn: int64(h.presignTTL.Seconds()),
		FileName:  fo.Name,
		FileSize:  fo.Size,
		FileHash:  fo.ETag,
	})
}

// objectName returns the wildcard tail of the route, URL-decoded so
// object keys with slashes and escapes survive the round trip.
func objectName(r *http.Request) string {
	name := chi.URLParam(r, "*")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	return name
}
