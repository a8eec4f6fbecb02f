package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ravalmohit390-eng/vidlink/internal/logging"
	"github.com/ravalmohit390-eng/vidlink/internal/middleware"
	"github.com/ravalmohit390-eng/vidlink/internal/videos"
)

// defaultMaxUploadBytes caps uploads at 100 MiB, matching the share service's
// historical limit.
const defaultMaxUploadBytes = 100 * 1024 * 1024

// VideoHandler provides endpoints for uploading, resolving, and managing
// shared videos.
type VideoHandler struct {
	Registry       VideoRegistry
	Blobs          BlobStore
	VerifyLimiter  RateLimiter
	MaxUploadBytes int64
}

// Upload handles POST /api/upload: stores the binary, then registers the
// share record. Requires an authenticated caller.
func (h VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx, span := logging.StartSpan(r.Context(), "video.upload")
	defer span.End()
	logger := logging.FromContext(ctx)

	identity, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		return
	}
	if h.Registry == nil || h.Blobs == nil {
		logger.Error("video dependencies unavailable", "hasRegistry", h.Registry != nil, "hasBlobs", h.Blobs != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video services unavailable"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		logger.Warn("invalid upload form", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid upload request"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "no video file uploaded"})
		return
	}
	defer file.Close()

	expiryHours, err := parseExpiryHours(r.FormValue("expiry"))
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "expiry must be a non-negative number of hours"})
		return
	}

	storageName, err := videos.NewStorageName(header.Filename)
	if err != nil {
		logger.Error("generate storage name", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}

	if _, err := h.Blobs.Save(ctx, storageName, file); err != nil {
		logger.Error("store upload", "error", err, "fileName", storageName)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "upload failed"})
		return
	}

	video, err := h.Registry.Create(ctx, videos.CreateParams{
		OwnerID:      identity.AccountID,
		FileName:     storageName,
		OriginalName: header.Filename,
		Title:        r.FormValue("title"),
		SizeBytes:    header.Size,
		Password:     r.FormValue("password"),
		ExpiryHours:  expiryHours,
	})
	if err != nil {
		if blobErr := h.Blobs.Delete(ctx, storageName); blobErr != nil {
			logger.Error("clean up orphaned upload", "error", blobErr, "fileName", storageName)
		}
		respondVideoError(ctx, w, err)
		return
	}

	logger.Info("video uploaded", "videoId", video.ID, "ownerId", identity.AccountID, "size", video.SizeBytes)
	respondJSON(ctx, w, http.StatusCreated, newVideoResponse(video, h.Blobs.URL))
}

// List handles GET /api/videos: the caller's unexpired uploads, newest first.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		return
	}
	if h.Registry == nil {
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video services unavailable"})
		return
	}

	list, err := h.Registry.ListByOwner(ctx, identity.AccountID)
	if err != nil {
		respondVideoError(ctx, w, err)
		return
	}

	resp := make([]videoResponse, 0, len(list))
	for _, v := range list {
		resp = append(resp, newVideoResponse(v, h.urlFor()))
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}

// View handles GET /api/videos/{id}: the public share-link resolution. A
// protected video is returned with isProtected set and no file reference.
func (h VideoHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Registry == nil {
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video services unavailable"})
		return
	}

	video, _, err := h.Registry.GetForView(ctx, r.PathValue("id"))
	if err != nil {
		respondVideoError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, newVideoResponse(video, h.urlFor()))
}

// VerifyPassword handles POST /api/videos/{id}/verify for password-gated shares.
func (h VideoHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Registry == nil {
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video services unavailable"})
		return
	}

	if !allowRequest(h.VerifyLimiter, r, "verify") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verify payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	video, err := h.Registry.Verify(ctx, r.PathValue("id"), req.Password)
	if err != nil {
		respondVideoError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, newVideoResponse(video, h.urlFor()))
}

// Rename handles PATCH /api/videos/{id}: an ownership-scoped title edit.
func (h VideoHandler) Rename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		return
	}
	if h.Registry == nil {
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video services unavailable"})
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	video, err := h.Registry.UpdateTitle(ctx, r.PathValue("id"), identity.AccountID, req.Title)
	if err != nil {
		respondVideoError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, newVideoResponse(video, h.urlFor()))
}

// Remove handles DELETE /api/videos/{id}: an ownership-scoped, irreversible delete.
func (h VideoHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		return
	}
	if h.Registry == nil {
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video services unavailable"})
		return
	}

	if err := h.Registry.DeleteOwned(ctx, r.PathValue("id"), identity.AccountID); err != nil {
		respondVideoError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("video deleted", "videoId", r.PathValue("id"), "ownerId", identity.AccountID)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "deleted"})
}

type verifyRequest struct {
	Password string `json:"password"`
}

type renameRequest struct {
	Title string `json:"title"`
}

func (h VideoHandler) maxUploadBytes() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

func (h VideoHandler) urlFor() func(string) string {
	if h.Blobs == nil {
		return nil
	}
	return h.Blobs.URL
}

func parseExpiryHours(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if hours < 0 {
		return 0, errors.New("negative expiry")
	}
	return hours, nil
}
