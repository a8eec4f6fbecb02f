package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ravalmohit390-eng/vidlink/internal/logging"
	"github.com/ravalmohit390-eng/vidlink/internal/models"
	"github.com/ravalmohit390-eng/vidlink/internal/videos"
)

// videoResponse is the wire shape for video records. The gate password never
// appears here; fileName and url are present only when visibility was
// granted, and isProtected marks a withheld read.
type videoResponse struct {
	ID           string     `json:"id"`
	OriginalName string     `json:"originalName"`
	Title        string     `json:"title"`
	UploadDate   time.Time  `json:"uploadDate"`
	Views        int64      `json:"views"`
	Size         int64      `json:"size"`
	Expiry       *time.Time `json:"expiry,omitempty"`
	FileName     string     `json:"fileName,omitempty"`
	URL          string     `json:"url,omitempty"`
	IsProtected  bool       `json:"isProtected,omitempty"`
}

func newVideoResponse(video models.Video, urlFor func(string) string) videoResponse {
	resp := videoResponse{
		ID:           video.ID,
		OriginalName: video.OriginalName,
		Title:        video.Title,
		UploadDate:   video.UploadedAt,
		Views:        video.Views,
		Size:         video.SizeBytes,
		Expiry:       video.ExpiresAt,
		FileName:     video.FileName,
	}
	if video.FileName == "" {
		resp.IsProtected = true
	} else if urlFor != nil {
		resp.URL = urlFor(video.FileName)
	}
	return resp
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondVideoError translates registry failures into the API's status codes.
func respondVideoError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, videos.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
	case errors.Is(err, videos.ErrExpired):
		respondJSON(ctx, w, http.StatusGone, map[string]string{"error": "video link has expired"})
	case errors.Is(err, videos.ErrUnauthorized):
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "incorrect password"})
	case errors.Is(err, videos.ErrValidation):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		logging.FromContext(ctx).Error("video operation failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
