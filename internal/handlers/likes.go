package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/response"
)

// LikeHandler toggles likes on videos and comments.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
}

type likeStatus struct {
	Liked bool `json:"liked"`
}

// ToggleVideo handles POST /likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) error {
	videoID, err := pathID(r, "videoId", "Video")
	if err != nil {
		return err
	}
	user, err := requester(r)
	if err != nil {
		return err
	}

	video, err := visibleVideo(r.Context(), h.Videos, videoID, user.ID)
	if err != nil {
		return err
	}

	return h.toggle(w, r, models.LikeTargetVideo, video.ID, user.ID)
}

// ToggleComment handles POST /likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) error {
	commentID, err := pathID(r, "commentId", "Comment")
	if err != nil {
		return err
	}
	user, err := requester(r)
	if err != nil {
		return err
	}

	comment, err := h.Comments.FindByID(r.Context(), commentID)
	if err != nil {
		return storeError(err, "Comment not found")
	}
	if _, err := visibleVideo(r.Context(), h.Videos, comment.Video, user.ID); err != nil {
		return err
	}

	return h.toggle(w, r, models.LikeTargetComment, comment.ID, user.ID)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind, targetID, userID string) error {
	ctx := r.Context()
	liked, err := h.Likes.Toggle(ctx, kind, targetID, userID)
	if err != nil {
		return storeError(err, "Target not found")
	}

	message := "Like removed"
	if liked {
		message = "Liked successfully"
	}
	response.Write(ctx, w, http.StatusOK, likeStatus{Liked: liked}, message)
	return nil
}
