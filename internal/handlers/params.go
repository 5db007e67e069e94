package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/response"
)

const defaultMaxUploadBytes = 512 << 20

// pathID reads and canonicalises an id path segment. label names the entity
// in the error message.
func pathID(r *http.Request, name, label string) (string, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	if raw == "" {
		return "", response.BadRequest(label + " ID is required")
	}
	id, err := models.ParseID(raw)
	if err != nil {
		return "", response.BadRequest(label + " ID is invalid")
	}
	return id, nil
}

func requester(r *http.Request) (models.User, error) {
	user, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return models.User{}, response.Unauthorized("Unauthorized Request")
	}
	return user, nil
}

// requireSelf checks that the userId path segment names the requester.
func requireSelf(r *http.Request) (models.User, error) {
	userID, err := pathID(r, "userId", "User")
	if err != nil {
		return models.User{}, err
	}
	user, err := requester(r)
	if err != nil {
		return models.User{}, err
	}
	if !models.SameID(userID, user.ID) {
		return models.User{}, response.Unauthorized("Unauthorized Request")
	}
	return user, nil
}

func parsePage(r *http.Request) (repositories.Page, error) {
	page := repositories.Page{Number: 1, Limit: repositories.DefaultPageLimit}
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > repositories.MaxPageNumber {
			return repositories.Page{}, response.BadRequest("Invalid page number")
		}
		page.Number = n
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return repositories.Page{}, response.BadRequest("Invalid limit")
		}
		page.Limit = n
	}
	return page.Normalize(), nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return response.BadRequest("Invalid request body").WithCause(err)
	}
	return nil
}

func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return response.BadRequest("Upload is too large", fmt.Sprintf("limit is %d bytes", maxBytes))
		}
		return response.BadRequest("Invalid multipart form").WithCause(err)
	}
	return nil
}

func cleanupMultipart(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// uploadError maps media failures onto the error envelope.
func uploadError(err error) error {
	if errors.Is(err, media.ErrInvalidFileType) {
		return response.BadRequest("Invalid File Type").WithCause(err)
	}
	return response.Internal("Error while uploading file", err)
}

// storeError maps repository sentinels onto the error envelope.
func storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return response.NotFound(notFound).WithCause(err)
	case errors.Is(err, repositories.ErrConflict):
		return response.Conflict("Resource already exists").WithCause(err)
	default:
		return response.Internal("Something went wrong", err)
	}
}

// scheduleRemoval queues stored objects for deletion. Failures are logged only.
func scheduleRemoval(ctx context.Context, reaper AssetReaper, locations ...string) {
	if reaper == nil {
		return
	}
	if err := reaper.Schedule(locations...); err != nil {
		logging.FromContext(ctx).Warn("schedule asset removal", "locations", locations, "error", err)
	}
}

// visibleVideo loads a video the viewer may see. Drafts exist only for their
// owner; everyone else gets the same 404 as for a missing video.
func visibleVideo(ctx context.Context, videos VideoStore, videoID, viewerID string) (models.Video, error) {
	video, err := videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Video{}, storeError(err, "Video not found")
	}
	if !video.IsPublished && !models.SameID(video.Owner, viewerID) {
		return models.Video{}, response.NotFound("Video not found")
	}
	return video, nil
}
