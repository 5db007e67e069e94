package repositories

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/models"
)

// Collection names used by the MongoDB backend.
const (
	usersCollection         = "users"
	videosCollection        = "videos"
	commentsCollection      = "comments"
	subscriptionsCollection = "subscriptions"
	likesCollection         = "likes"
)

type userDoc struct {
	ID           primitive.ObjectID   `bson:"_id"`
	Username     string               `bson:"username"`
	Email        string               `bson:"email"`
	FullName     string               `bson:"fullName"`
	Avatar       string               `bson:"avatar"`
	CoverImage   string               `bson:"coverImage"`
	Password     string               `bson:"password"`
	RefreshToken string               `bson:"refreshToken"`
	WatchHistory []primitive.ObjectID `bson:"watchHistory"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

type profileDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	FullName string             `bson:"fullName"`
	Avatar   string             `bson:"avatar"`
}

type videoDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Owner       primitive.ObjectID `bson:"owner"`
	VideoFile   string             `bson:"videoFile"`
	Thumbnail   string             `bson:"thumbnail"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Views       int64              `bson:"views"`
	IsPublished bool               `bson:"isPublished"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// videoRow is a video with its owner expanded by a $lookup stage.
type videoRow struct {
	Doc    videoDoc   `bson:",inline"`
	Author profileDoc `bson:"author"`
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Video     primitive.ObjectID `bson:"video"`
	Owner     primitive.ObjectID `bson:"owner"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type commentRow struct {
	Doc    commentDoc `bson:",inline"`
	Author profileDoc `bson:"author"`
}

type subscriptionDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Channel    primitive.ObjectID `bson:"channel"`
	Subscriber primitive.ObjectID `bson:"subscriber"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

type likeDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	TargetID   primitive.ObjectID `bson:"targetId"`
	TargetKind string             `bson:"targetKind"`
	LikedBy    primitive.ObjectID `bson:"likedBy"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

type channelProfileRow struct {
	ID                        primitive.ObjectID `bson:"_id"`
	Username                  string             `bson:"username"`
	FullName                  string             `bson:"fullName"`
	Email                     string             `bson:"email"`
	Avatar                    string             `bson:"avatar"`
	CoverImage                string             `bson:"coverImage"`
	SubscribersCount          int64              `bson:"subscribersCount"`
	ChannelsSubscribedToCount int64              `bson:"channelsSubscribedToCount"`
	IsSubscribed              bool               `bson:"isSubscribed"`
}

type watchHistoryRow struct {
	WatchHistory []primitive.ObjectID `bson:"watchHistory"`
	Videos       []videoRow           `bson:"videos"`
}

// objectID converts a canonical hex id into an ObjectID. Invalid ids are
// reported as ErrNotFound since nothing can be stored under them.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: id %q", ErrNotFound, id)
	}
	return oid, nil
}

func objectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := objectID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

func hexIDs(oids []primitive.ObjectID) []string {
	out := make([]string, 0, len(oids))
	for _, oid := range oids {
		out = append(out, oid.Hex())
	}
	return out
}

func newUserDoc(user models.User) (userDoc, error) {
	id, err := objectID(user.ID)
	if err != nil {
		return userDoc{}, err
	}
	history, err := objectIDs(user.WatchHistory)
	if err != nil {
		return userDoc{}, err
	}
	return userDoc{
		ID:           id,
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		Avatar:       user.Avatar,
		CoverImage:   user.CoverImage,
		Password:     user.Password,
		RefreshToken: user.RefreshToken,
		WatchHistory: history,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}, nil
}

func (d userDoc) model() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		FullName:     d.FullName,
		Avatar:       d.Avatar,
		CoverImage:   d.CoverImage,
		Password:     d.Password,
		RefreshToken: d.RefreshToken,
		WatchHistory: hexIDs(d.WatchHistory),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (d profileDoc) model() models.PublicProfile {
	p := models.PublicProfile{Username: d.Username, FullName: d.FullName, Avatar: d.Avatar}
	if !d.ID.IsZero() {
		p.ID = d.ID.Hex()
	}
	return p
}

func newVideoDoc(video models.Video) (videoDoc, error) {
	id, err := objectID(video.ID)
	if err != nil {
		return videoDoc{}, err
	}
	owner, err := objectID(video.Owner)
	if err != nil {
		return videoDoc{}, err
	}
	return videoDoc{
		ID:          id,
		Owner:       owner,
		VideoFile:   video.VideoFile,
		Thumbnail:   video.Thumbnail,
		Title:       video.Title,
		Description: video.Description,
		Duration:    video.Duration,
		Views:       video.Views,
		IsPublished: video.IsPublished,
		CreatedAt:   video.CreatedAt,
		UpdatedAt:   video.UpdatedAt,
	}, nil
}

func (d videoDoc) model() models.Video {
	return models.Video{
		ID:          d.ID.Hex(),
		Owner:       d.Owner.Hex(),
		VideoFile:   d.VideoFile,
		Thumbnail:   d.Thumbnail,
		Title:       d.Title,
		Description: d.Description,
		Duration:    d.Duration,
		Views:       d.Views,
		IsPublished: d.IsPublished,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r videoRow) model() models.VideoWithOwner {
	return models.VideoWithOwner{Video: r.Doc.model(), Owner: r.Author.model()}
}

func newCommentDoc(comment models.Comment) (commentDoc, error) {
	id, err := objectID(comment.ID)
	if err != nil {
		return commentDoc{}, err
	}
	video, err := objectID(comment.Video)
	if err != nil {
		return commentDoc{}, err
	}
	owner, err := objectID(comment.Owner)
	if err != nil {
		return commentDoc{}, err
	}
	return commentDoc{
		ID:        id,
		Video:     video,
		Owner:     owner,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}, nil
}

func (d commentDoc) model() models.Comment {
	return models.Comment{
		ID:        d.ID.Hex(),
		Video:     d.Video.Hex(),
		Owner:     d.Owner.Hex(),
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (r commentRow) model() models.CommentWithOwner {
	return models.CommentWithOwner{Comment: r.Doc.model(), Owner: r.Author.model()}
}

func (r channelProfileRow) model() models.ChannelProfile {
	return models.ChannelProfile{
		ID:                        r.ID.Hex(),
		Username:                  r.Username,
		FullName:                  r.FullName,
		Email:                     r.Email,
		Avatar:                    r.Avatar,
		CoverImage:                r.CoverImage,
		SubscribersCount:          r.SubscribersCount,
		ChannelsSubscribedToCount: r.ChannelsSubscribedToCount,
		IsSubscribed:              r.IsSubscribed,
	}
}

// orderedHistory arranges rows in watch-history order, dropping ids whose
// video no longer exists.
func orderedHistory(row watchHistoryRow) []models.VideoWithOwner {
	byID := make(map[primitive.ObjectID]videoRow, len(row.Videos))
	for _, v := range row.Videos {
		byID[v.Doc.ID] = v
	}

	out := make([]models.VideoWithOwner, 0, len(row.WatchHistory))
	for _, id := range row.WatchHistory {
		if v, ok := byID[id]; ok {
			out = append(out, v.model())
		}
	}
	return out
}
