package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/response"
)

// CommentHandler implements comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	Likes    LikeStore
	NowFunc  func() time.Time
}

type commentRequest struct {
	Content string `json:"content"`
}

// List handles GET /comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	videoID, err := pathID(r, "videoId", "Video")
	if err != nil {
		return err
	}
	page, err := parsePage(r)
	if err != nil {
		return err
	}
	user, err := requester(r)
	if err != nil {
		return err
	}

	if _, err := visibleVideo(ctx, h.Videos, videoID, user.ID); err != nil {
		return err
	}

	comments, err := h.Comments.ListByVideo(ctx, videoID, page)
	if err != nil {
		return response.Internal("Something went wrong while fetching comments", err)
	}
	if comments == nil {
		comments = []models.CommentWithOwner{}
	}

	response.Write(ctx, w, http.StatusOK, comments, "Comments fetched successfully")
	return nil
}

// Add handles POST /comments/v/{videoId}/u/{userId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	videoID, err := pathID(r, "videoId", "Video")
	if err != nil {
		return err
	}
	user, err := requireSelf(r)
	if err != nil {
		return err
	}
	content, err := commentContent(r)
	if err != nil {
		return err
	}

	if _, err := visibleVideo(ctx, h.Videos, videoID, user.ID); err != nil {
		return err
	}

	now := h.now()
	comment := models.Comment{
		ID:        models.NewID(),
		Video:     videoID,
		Owner:     user.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Comments.Create(ctx, comment); err != nil {
		return storeError(err, "Video not found")
	}

	response.Write(ctx, w, http.StatusCreated, comment, "Comment added successfully")
	return nil
}

// Update handles PATCH /comments/v/{videoId}/u/{userId}/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	comment, err := h.ownedComment(r)
	if err != nil {
		return err
	}
	content, err := commentContent(r)
	if err != nil {
		return err
	}

	updated, err := h.Comments.UpdateContent(ctx, comment.ID, content)
	if err != nil {
		return storeError(err, "Comment not found")
	}

	response.Write(ctx, w, http.StatusOK, updated, "Comment updated successfully")
	return nil
}

// Delete handles DELETE /comments/v/{videoId}/u/{userId}/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	comment, err := h.ownedComment(r)
	if err != nil {
		return err
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		return storeError(err, "Comment not found")
	}
	if err := h.Likes.DeleteForTargets(ctx, models.LikeTargetComment, comment.ID); err != nil {
		logging.FromContext(ctx).Error("delete comment likes", "commentId", comment.ID, "error", err)
	}

	response.Write(ctx, w, http.StatusOK, nil, "Comment deleted successfully")
	return nil
}

// ownedComment resolves the comment addressed by the path and checks that it
// belongs to the video and to the requester.
func (h CommentHandler) ownedComment(r *http.Request) (models.Comment, error) {
	videoID, err := pathID(r, "videoId", "Video")
	if err != nil {
		return models.Comment{}, err
	}
	commentID, err := pathID(r, "commentId", "Comment")
	if err != nil {
		return models.Comment{}, err
	}
	user, err := requireSelf(r)
	if err != nil {
		return models.Comment{}, err
	}

	comment, err := h.Comments.FindByID(r.Context(), commentID)
	if err != nil {
		return models.Comment{}, storeError(err, "Comment not found")
	}
	if !models.SameID(comment.Video, videoID) {
		return models.Comment{}, response.NotFound("Comment not found")
	}
	if !models.SameID(comment.Owner, user.ID) {
		return models.Comment{}, response.Unauthorized("Unauthorized Request")
	}
	return comment, nil
}

func commentContent(r *http.Request) (string, error) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", response.BadRequest("Content is required")
	}
	return content, nil
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}
