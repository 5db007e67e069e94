package repositories

import (
	"context"
	"errors"

	"github.com/vidtube/backend/internal/models"
)

// Result sentinels shared by every backend. List reads report "no rows" as an
// empty slice, never as ErrNotFound.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflict")
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	// FindByUsernameOrEmail matches either identifier; empty arguments are ignored.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, id, url string) (models.User, error)
	UpdateCoverImage(ctx context.Context, id, url string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRefreshToken(ctx context.Context, id, token string) error
	// SwapRefreshToken replaces current with next only while current is still
	// stored, reporting whether the swap happened.
	SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, id string) ([]models.VideoWithOwner, error)
	AddToWatchHistory(ctx context.Context, userID, videoID string) error
}

// VideoRepository defines persistence operations for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, query VideoQuery) ([]models.VideoWithOwner, error)
	ListByOwner(ctx context.Context, ownerID string, includeUnpublished bool) ([]models.Video, error)
	Update(ctx context.Context, id string, changes VideoChanges) (models.Video, error)
	SetPublished(ctx context.Context, id string, published bool) (models.Video, error)
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error)
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByVideo(ctx context.Context, videoID string, page Page) ([]models.CommentWithOwner, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
	// DeleteByVideo removes every comment on the video and returns their ids.
	DeleteByVideo(ctx context.Context, videoID string) ([]string, error)
}

// SubscriptionRepository defines persistence operations for channel subscriptions.
type SubscriptionRepository interface {
	// Toggle subscribes when no subscription exists and unsubscribes otherwise.
	// It reports whether the subscriber is subscribed afterwards.
	Toggle(ctx context.Context, channelID, subscriberID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.PublicProfile, error)
}

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	// Toggle reports whether the target is liked by the user afterwards.
	Toggle(ctx context.Context, kind, targetID, userID string) (bool, error)
	DeleteForTargets(ctx context.Context, kind string, targetIDs ...string) error
}
