package models

import "time"

// User represents an account within the VidTube platform. Password and
// RefreshToken are never serialised.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage"`
	Password     string    `json:"-"`
	RefreshToken string    `json:"-"`
	WatchHistory []string  `json:"watchHistory"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile returns the public subset of the user's fields.
func (u User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: u.Avatar}
}

// PublicProfile is the owner information embedded into videos and comments.
type PublicProfile struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// Video is a published (or draft) upload owned by a user.
type Video struct {
	ID          string    `json:"_id"`
	Owner       string    `json:"owner"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VideoWithOwner is a video whose owner reference has been expanded.
type VideoWithOwner struct {
	Video
	Owner PublicProfile `json:"owner"`
}

// Comment is a text comment left on a video.
type Comment struct {
	ID        string    `json:"_id"`
	Video     string    `json:"video"`
	Owner     string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentWithOwner is a comment whose owner reference has been expanded.
type CommentWithOwner struct {
	Comment
	Owner PublicProfile `json:"owner"`
}

// Subscription records that Subscriber follows Channel.
type Subscription struct {
	ID         string    `json:"_id"`
	Channel    string    `json:"channel"`
	Subscriber string    `json:"subscriber"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Like records that LikedBy liked the target entity.
type Like struct {
	ID         string    `json:"_id"`
	TargetID   string    `json:"targetId"`
	TargetKind string    `json:"targetKind"`
	LikedBy    string    `json:"likedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

const (
	LikeTargetVideo   = "video"
	LikeTargetComment = "comment"
)

// ChannelProfile is the public view of a channel as seen by a viewer.
type ChannelProfile struct {
	ID                        string `json:"_id"`
	Username                  string `json:"username"`
	FullName                  string `json:"fullName"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// ChannelStats aggregates engagement across a channel's uploads.
type ChannelStats struct {
	TotalVideos int64 `json:"totalVideos"`
	TotalViews  int64 `json:"totalViews"`
	TotalLikes  int64 `json:"totalLikes"`
	TotalSubs   int64 `json:"totalSubs"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
