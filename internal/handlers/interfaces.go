package handlers

import (
	"context"
	"mime/multipart"

	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, id, url string) (models.User, error)
	UpdateCoverImage(ctx context.Context, id, url string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, id string) ([]models.VideoWithOwner, error)
	AddToWatchHistory(ctx context.Context, userID, videoID string) error
}

// VideoStore captures persistence for video workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, query repositories.VideoQuery) ([]models.VideoWithOwner, error)
	ListByOwner(ctx context.Context, ownerID string, includeUnpublished bool) ([]models.Video, error)
	Update(ctx context.Context, id string, changes repositories.VideoChanges) (models.Video, error)
	SetPublished(ctx context.Context, id string, published bool) (models.Video, error)
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error)
}

// CommentStore captures persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByVideo(ctx context.Context, videoID string, page repositories.Page) ([]models.CommentWithOwner, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByVideo(ctx context.Context, videoID string) ([]string, error)
}

// SubscriptionStore captures persistence for channel subscriptions.
type SubscriptionStore interface {
	Toggle(ctx context.Context, channelID, subscriberID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.PublicProfile, error)
}

// LikeStore captures persistence for likes.
type LikeStore interface {
	Toggle(ctx context.Context, kind, targetID, userID string) (bool, error)
	DeleteForTargets(ctx context.Context, kind string, targetIDs ...string) error
}

// SessionManager issues, rotates and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, user models.User) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, models.User, error)
	Revoke(ctx context.Context, userID string) error
}

// MediaUploader validates and stores uploaded files.
type MediaUploader interface {
	UploadImage(ctx context.Context, folder string, fh *multipart.FileHeader) (media.Asset, error)
	UploadVideo(ctx context.Context, fh *multipart.FileHeader) (media.Asset, error)
}

// AssetReaper schedules removal of stored objects that are no longer referenced.
type AssetReaper interface {
	Schedule(locations ...string) error
}
