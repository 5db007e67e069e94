package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/response"
)

// VideoHandler implements video upload, listing and management endpoints.
type VideoHandler struct {
	Videos         VideoStore
	Users          UserStore
	Comments       CommentStore
	Likes          LikeStore
	Media          MediaUploader
	Reaper         AssetReaper
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

// GetAll handles GET /videos/get-all-videos.
func (h VideoHandler) GetAll(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	page, err := parsePage(r)
	if err != nil {
		return err
	}

	q := r.URL.Query()
	sortBy, desc, err := repositories.ParseSort(strings.TrimSpace(q.Get("sortBy")), q.Get("sortType"))
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidSortField) {
			return response.BadRequest("Invalid sortBy value").WithCause(err)
		}
		return response.BadRequest("Invalid sortType value").WithCause(err)
	}

	query := repositories.VideoQuery{
		Page:     page,
		Search:   strings.TrimSpace(q.Get("query")),
		SortBy:   sortBy,
		SortDesc: desc,
	}
	if raw := strings.TrimSpace(q.Get("userId")); raw != "" {
		ownerID, err := models.ParseID(raw)
		if err != nil {
			return response.BadRequest("User ID is invalid")
		}
		query.OwnerID = ownerID
	}

	videos, err := h.Videos.List(ctx, query)
	if err != nil {
		return response.Internal("Something went wrong while fetching videos", err)
	}
	if videos == nil {
		videos = []models.VideoWithOwner{}
	}

	response.Write(ctx, w, http.StatusOK, videos, "Videos fetched successfully")
	return nil
}

// Publish handles POST /videos/publish-video/u/{userId}.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := requireSelf(r)
	if err != nil {
		return err
	}
	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		return err
	}
	defer cleanupMultipart(r)

	title := formValue(r, "title")
	description := formValue(r, "description")
	if title == "" || description == "" {
		return response.BadRequest("Title and description are required")
	}

	videoFile := formFile(r, "videoFile")
	if videoFile == nil {
		return response.BadRequest("Video file is required")
	}
	thumbnailFile := formFile(r, "thumbnail")
	if thumbnailFile == nil {
		return response.BadRequest("Thumbnail is required")
	}
	if err := media.CheckVideo(videoFile); err != nil {
		return uploadError(err)
	}

	videoAsset, err := h.Media.UploadVideo(ctx, videoFile)
	if err != nil {
		return uploadError(err)
	}
	thumbAsset, err := h.Media.UploadImage(ctx, media.FolderThumbnails, thumbnailFile)
	if err != nil {
		scheduleRemoval(ctx, h.Reaper, videoAsset.URL)
		return uploadError(err)
	}

	now := h.now()
	video := models.Video{
		ID:          models.NewID(),
		Owner:       user.ID,
		VideoFile:   videoAsset.URL,
		Thumbnail:   thumbAsset.URL,
		Title:       title,
		Description: description,
		Duration:    videoAsset.Duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		scheduleRemoval(ctx, h.Reaper, videoAsset.URL, thumbAsset.URL)
		return storeError(err, "User does not exist")
	}

	logging.FromContext(ctx).Info("video published", "videoId", video.ID, "duration", video.Duration)
	response.Write(ctx, w, http.StatusCreated, video, "Video published successfully")
	return nil
}

// GetByID handles GET /videos/get-video/v/{videoId}. A successful read counts
// a view and moves the video to the front of the requester's watch history.
func (h VideoHandler) GetByID(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	videoID, err := pathID(r, "videoId", "Video")
	if err != nil {
		return err
	}
	user, err := requester(r)
	if err != nil {
		return err
	}

	video, err := visibleVideo(ctx, h.Videos, videoID, user.ID)
	if err != nil {
		return err
	}

	logger := logging.FromContext(ctx)
	if err := h.Videos.IncrementViews(ctx, video.ID); err != nil {
		logger.Warn("record video view", "videoId", video.ID, "error", err)
	} else {
		video.Views++
	}
	if err := h.Users.AddToWatchHistory(ctx, user.ID, video.ID); err != nil {
		logger.Warn("update watch history", "videoId", video.ID, "error", err)
	}

	response.Write(ctx, w, http.StatusOK, video, "Video fetched successfully")
	return nil
}

// Update handles PATCH /videos/update-video/v/{videoId}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	videoID, err := pathID(r, "videoId", "Video")
	if err != nil {
		return err
	}
	user, err := requester(r)
	if err != nil {
		return err
	}
	if err := parseMultipart(w, r, h.MaxUploadBytes); err != nil {
		return err
	}
	defer cleanupMultipart(r)

	changes := repositories.VideoChanges{
		Title:       formValue(r, "title"),
		Description: formValue(r, "description"),
	}
	thumbnailFile := formFile(r, "thumbnail")
	if changes.Title == "" || changes.Description == "" || thumbnailFile == nil {
		return response.BadRequest("Title, description and thumbnail are required")
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		return storeError(err, "Video not found")
	}
	if !models.SameID(video.Owner, user.ID) {
		return response.Unauthorized("Unauthorized Request")
	}

	if thumbnailFile != nil {
		asset, err := h.Media.UploadImage(ctx, media.FolderThumbnails, thumbnailFile)
		if err != nil {
			return uploadError(err)
		}
		changes.Thumbnail = asset.URL
	}

	updated, err := h.Videos.Update(ctx, video.ID, changes)
	if err != nil {
		scheduleRemoval(ctx, h.Reaper, changes.Thumbnail)
		return storeError(err, "Video not found")
	}
	if changes.Thumbnail != "" && video.Thumbnail != "" && video.Thumbnail != changes.Thumbnail {
		scheduleRemoval(ctx, h.Reaper, video.Thumbnail)
	}

	response.Write(ctx, w, http.StatusOK, updated, "Video updated successfully")
	return nil
}

// Delete handles DELETE /videos/delete-video/v/{videoId}/u/{userId}. Comments
// and likes of the video go with it and its stored files are reaped.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	videoID, err := pathID(r, "videoId", "Video")
	if err != nil {
		return err
	}
	user, err := requireSelf(r)
	if err != nil {
		return err
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		return storeError(err, "Video not found")
	}
	if !models.SameID(video.Owner, user.ID) {
		return response.Unauthorized("Unauthorized Request")
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		return storeError(err, "Video not found")
	}

	logger := logging.FromContext(ctx)
	commentIDs, err := h.Comments.DeleteByVideo(ctx, video.ID)
	if err != nil {
		logger.Error("delete video comments", "videoId", video.ID, "error", err)
	}
	if len(commentIDs) > 0 {
		if err := h.Likes.DeleteForTargets(ctx, models.LikeTargetComment, commentIDs...); err != nil {
			logger.Error("delete comment likes", "videoId", video.ID, "error", err)
		}
	}
	if err := h.Likes.DeleteForTargets(ctx, models.LikeTargetVideo, video.ID); err != nil {
		logger.Error("delete video likes", "videoId", video.ID, "error", err)
	}
	scheduleRemoval(ctx, h.Reaper, video.VideoFile, video.Thumbnail)

	logger.Info("video deleted", "videoId", video.ID, "comments", len(commentIDs))
	response.Write(ctx, w, http.StatusOK, nil, "Video deleted successfully")
	return nil
}

// TogglePublish handles PATCH /videos/toggle/v/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	videoID, err := pathID(r, "videoId", "Video")
	if err != nil {
		return err
	}
	user, err := requester(r)
	if err != nil {
		return err
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		return storeError(err, "Video not found")
	}
	if !models.SameID(video.Owner, user.ID) {
		return response.Unauthorized("Unauthorized Request")
	}

	updated, err := h.Videos.SetPublished(ctx, video.ID, !video.IsPublished)
	if err != nil {
		return storeError(err, "Video not found")
	}

	response.Write(ctx, w, http.StatusOK, updated, "Video publish status toggled successfully")
	return nil
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}
