package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/vidtube/backend/internal/models"
)

// EnsureMongoIndexes creates the indexes the MongoDB backend relies on for
// uniqueness and listing order.
func EnsureMongoIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		videosCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		subscriptionsCollection: {
			{Keys: bson.D{{Key: "channel", Value: 1}, {Key: "subscriber", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "subscriber", Value: 1}}},
		},
		likesCollection: {
			{Keys: bson.D{{Key: "targetKind", Value: 1}, {Key: "targetId", Value: 1}, {Key: "likedBy", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for collection, specs := range indexes {
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create %s indexes: %w", collection, err)
		}
	}
	return nil
}

func notFoundOr(err error, format string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf(format+": %w", err)
}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// MongoUserRepository provides MongoDB-backed persistence for users.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository constructs a user repository backed by MongoDB.
func NewMongoUserRepository(database *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: database.Collection(usersCollection)}
}

// Create persists a new user document.
func (r *MongoUserRepository) Create(ctx context.Context, user models.User) error {
	doc, err := newUserDoc(user)
	if err != nil {
		return err
	}
	if doc.WatchHistory == nil {
		doc.WatchHistory = []primitive.ObjectID{}
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByID fetches a user by id.
func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}

	var doc userDoc
	if err := r.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return models.User{}, notFoundOr(err, "find user by id")
	}
	return doc.model(), nil
}

// FindByUsernameOrEmail fetches the user matching either identifier.
func (r *MongoUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error) {
	var or bson.A
	if username != "" {
		or = append(or, bson.D{{Key: "username", Value: username}})
	}
	if email != "" {
		or = append(or, bson.D{{Key: "email", Value: email}})
	}
	if len(or) == 0 {
		return models.User{}, ErrNotFound
	}

	var doc userDoc
	if err := r.users.FindOne(ctx, bson.D{{Key: "$or", Value: or}}).Decode(&doc); err != nil {
		return models.User{}, notFoundOr(err, "find user by username or email")
	}
	return doc.model(), nil
}

// UpdateAccount replaces the user's full name and email.
func (r *MongoUserRepository) UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error) {
	return r.set(ctx, id, bson.D{{Key: "fullName", Value: fullName}, {Key: "email", Value: email}})
}

// UpdateAvatar replaces the user's avatar URL.
func (r *MongoUserRepository) UpdateAvatar(ctx context.Context, id, url string) (models.User, error) {
	return r.set(ctx, id, bson.D{{Key: "avatar", Value: url}})
}

// UpdateCoverImage replaces the user's cover image URL.
func (r *MongoUserRepository) UpdateCoverImage(ctx context.Context, id, url string) (models.User, error) {
	return r.set(ctx, id, bson.D{{Key: "coverImage", Value: url}})
}

// UpdatePassword stores a new password hash.
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.set(ctx, id, bson.D{{Key: "password", Value: passwordHash}})
	return err
}

// SetRefreshToken stores the user's current refresh token. An empty token
// revokes it.
func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	_, err := r.set(ctx, id, bson.D{{Key: "refreshToken", Value: token}})
	return err
}

// SwapRefreshToken rotates the refresh token only if current is still the
// stored one.
func (r *MongoUserRepository) SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	oid, err := objectID(id)
	if err != nil || current == "" {
		return false, nil
	}

	filter := bson.D{{Key: "_id", Value: oid}, {Key: "refreshToken", Value: current}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "refreshToken", Value: next},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	res, err := r.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("swap refresh token: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (r *MongoUserRepository) set(ctx context.Context, id string, fields bson.D) (models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.User{}, ErrNotFound
	}

	fields = append(fields, bson.E{Key: "updatedAt", Value: time.Now().UTC()})
	var doc userDoc
	err = r.users.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: fields}}, afterUpdate()).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, notFoundOr(err, "update user")
	}
	return doc.model(), nil
}

// ChannelProfile resolves a channel by username as seen by viewerID.
func (r *MongoUserRepository) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	viewer, err := primitive.ObjectIDFromHex(viewerID)
	if err != nil {
		viewer = primitive.NilObjectID
	}

	cursor, err := r.users.Aggregate(ctx, channelProfilePipeline(username, viewer))
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("aggregate channel profile: %w", err)
	}

	var rows []channelProfileRow
	if err := cursor.All(ctx, &rows); err != nil {
		return models.ChannelProfile{}, fmt.Errorf("decode channel profile: %w", err)
	}
	if len(rows) == 0 {
		return models.ChannelProfile{}, ErrNotFound
	}
	return rows[0].model(), nil
}

// WatchHistory returns the user's watched videos, most recent first.
func (r *MongoUserRepository) WatchHistory(ctx context.Context, id string) ([]models.VideoWithOwner, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	cursor, err := r.users.Aggregate(ctx, watchHistoryPipeline(oid))
	if err != nil {
		return nil, fmt.Errorf("aggregate watch history: %w", err)
	}

	var rows []watchHistoryRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode watch history: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return orderedHistory(rows[0]), nil
}

// AddToWatchHistory moves videoID to the front of the user's watch history.
func (r *MongoUserRepository) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	uid, err := objectID(userID)
	if err != nil {
		return err
	}
	vid, err := objectID(videoID)
	if err != nil {
		return err
	}

	res, err := r.users.UpdateByID(ctx, uid, watchHistoryUpdate(vid))
	if err != nil {
		return fmt.Errorf("update watch history: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoVideoRepository provides MongoDB-backed persistence for videos.
type MongoVideoRepository struct {
	videos        *mongo.Collection
	subscriptions *mongo.Collection
}

// NewMongoVideoRepository constructs a video repository backed by MongoDB.
func NewMongoVideoRepository(database *mongo.Database) *MongoVideoRepository {
	return &MongoVideoRepository{
		videos:        database.Collection(videosCollection),
		subscriptions: database.Collection(subscriptionsCollection),
	}
}

// Create persists a new video document.
func (r *MongoVideoRepository) Create(ctx context.Context, video models.Video) error {
	doc, err := newVideoDoc(video)
	if err != nil {
		return err
	}
	if _, err := r.videos.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// FindByID fetches a video by id.
func (r *MongoVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.Video{}, ErrNotFound
	}

	var doc videoDoc
	if err := r.videos.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return models.Video{}, notFoundOr(err, "find video by id")
	}
	return doc.model(), nil
}

// List returns a page of published videos with their owners expanded.
func (r *MongoVideoRepository) List(ctx context.Context, query VideoQuery) ([]models.VideoWithOwner, error) {
	owner := primitive.NilObjectID
	if query.OwnerID != "" {
		oid, err := objectID(query.OwnerID)
		if err != nil {
			return []models.VideoWithOwner{}, nil
		}
		owner = oid
	}

	cursor, err := r.videos.Aggregate(ctx, videoListPipeline(query, owner))
	if err != nil {
		return nil, fmt.Errorf("aggregate videos: %w", err)
	}

	var rows []videoRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}

	out := make([]models.VideoWithOwner, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// ListByOwner returns the channel's videos, newest first.
func (r *MongoVideoRepository) ListByOwner(ctx context.Context, ownerID string, includeUnpublished bool) ([]models.Video, error) {
	owner, err := objectID(ownerID)
	if err != nil {
		return []models.Video{}, nil
	}

	filter := bson.D{{Key: "owner", Value: owner}}
	if !includeUnpublished {
		filter = append(filter, bson.E{Key: "isPublished", Value: true})
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.videos.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find channel videos: %w", err)
	}

	var docs []videoDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode channel videos: %w", err)
	}

	out := make([]models.Video, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.model())
	}
	return out, nil
}

// Update applies the non-empty changes and returns the updated video.
func (r *MongoVideoRepository) Update(ctx context.Context, id string, changes VideoChanges) (models.Video, error) {
	fields := bson.D{}
	if changes.Title != "" {
		fields = append(fields, bson.E{Key: "title", Value: changes.Title})
	}
	if changes.Description != "" {
		fields = append(fields, bson.E{Key: "description", Value: changes.Description})
	}
	if changes.Thumbnail != "" {
		fields = append(fields, bson.E{Key: "thumbnail", Value: changes.Thumbnail})
	}
	return r.set(ctx, id, fields)
}

// SetPublished sets the publish flag and returns the updated video.
func (r *MongoVideoRepository) SetPublished(ctx context.Context, id string, published bool) (models.Video, error) {
	return r.set(ctx, id, bson.D{{Key: "isPublished", Value: published}})
}

func (r *MongoVideoRepository) set(ctx context.Context, id string, fields bson.D) (models.Video, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.Video{}, ErrNotFound
	}

	fields = append(fields, bson.E{Key: "updatedAt", Value: time.Now().UTC()})
	var doc videoDoc
	err = r.videos.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: fields}}, afterUpdate()).Decode(&doc)
	if err != nil {
		return models.Video{}, notFoundOr(err, "update video")
	}
	return doc.model(), nil
}

// IncrementViews records a single view.
func (r *MongoVideoRepository) IncrementViews(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.videos.UpdateByID(ctx, oid, bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}})
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a video document.
func (r *MongoVideoRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.videos.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ChannelStats aggregates the channel's uploads, views, likes and subscribers.
func (r *MongoVideoRepository) ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error) {
	owner, err := objectID(ownerID)
	if err != nil {
		return models.ChannelStats{}, err
	}

	var stats models.ChannelStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var rows []struct {
			TotalVideos int64 `bson:"totalVideos"`
			TotalViews  int64 `bson:"totalViews"`
		}
		if err := aggregateInto(gctx, r.videos, videoTotalsPipeline(owner), &rows); err != nil {
			return fmt.Errorf("aggregate video totals: %w", err)
		}
		if len(rows) > 0 {
			stats.TotalVideos, stats.TotalViews = rows[0].TotalVideos, rows[0].TotalViews
		}
		return nil
	})

	g.Go(func() error {
		var rows []struct {
			TotalLikes int64 `bson:"totalLikes"`
		}
		if err := aggregateInto(gctx, r.videos, videoLikesPipeline(owner), &rows); err != nil {
			return fmt.Errorf("aggregate video likes: %w", err)
		}
		if len(rows) > 0 {
			stats.TotalLikes = rows[0].TotalLikes
		}
		return nil
	})

	g.Go(func() error {
		count, err := r.subscriptions.CountDocuments(gctx, bson.D{{Key: "channel", Value: owner}})
		if err != nil {
			return fmt.Errorf("count subscribers: %w", err)
		}
		stats.TotalSubs = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.ChannelStats{}, err
	}
	return stats, nil
}

func aggregateInto(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out any) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

// MongoCommentRepository provides MongoDB-backed persistence for comments.
type MongoCommentRepository struct {
	comments *mongo.Collection
}

// NewMongoCommentRepository constructs a comment repository backed by MongoDB.
func NewMongoCommentRepository(database *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{comments: database.Collection(commentsCollection)}
}

// Create persists a new comment.
func (r *MongoCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	doc, err := newCommentDoc(comment)
	if err != nil {
		return err
	}
	if _, err := r.comments.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// FindByID fetches a comment by id.
func (r *MongoCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.Comment{}, ErrNotFound
	}

	var doc commentDoc
	if err := r.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return models.Comment{}, notFoundOr(err, "find comment by id")
	}
	return doc.model(), nil
}

// ListByVideo returns a page of the video's comments, newest first.
func (r *MongoCommentRepository) ListByVideo(ctx context.Context, videoID string, page Page) ([]models.CommentWithOwner, error) {
	video, err := objectID(videoID)
	if err != nil {
		return []models.CommentWithOwner{}, nil
	}

	var rows []commentRow
	if err := aggregateInto(ctx, r.comments, commentListPipeline(video, page), &rows); err != nil {
		return nil, fmt.Errorf("aggregate comments: %w", err)
	}

	out := make([]models.CommentWithOwner, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// UpdateContent replaces the comment text and returns the updated comment.
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id, content string) (models.Comment, error) {
	oid, err := objectID(id)
	if err != nil {
		return models.Comment{}, ErrNotFound
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: content},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}

	var doc commentDoc
	if err := r.comments.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, afterUpdate()).Decode(&doc); err != nil {
		return models.Comment{}, notFoundOr(err, "update comment")
	}
	return doc.model(), nil
}

// Delete removes a comment.
func (r *MongoCommentRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.comments.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByVideo removes every comment on the video and returns their ids.
func (r *MongoCommentRepository) DeleteByVideo(ctx context.Context, videoID string) ([]string, error) {
	video, err := objectID(videoID)
	if err != nil {
		return nil, err
	}

	filter := bson.D{{Key: "video", Value: video}}
	cursor, err := r.comments.Find(ctx, filter, options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find video comments: %w", err)
	}

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode video comments: %w", err)
	}

	if _, err := r.comments.DeleteMany(ctx, filter); err != nil {
		return nil, fmt.Errorf("delete video comments: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID.Hex())
	}
	return ids, nil
}

// MongoSubscriptionRepository provides MongoDB-backed persistence for subscriptions.
type MongoSubscriptionRepository struct {
	subscriptions *mongo.Collection
}

// NewMongoSubscriptionRepository constructs a subscription repository backed by MongoDB.
func NewMongoSubscriptionRepository(database *mongo.Database) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{subscriptions: database.Collection(subscriptionsCollection)}
}

// Toggle flips the subscription of subscriberID to channelID.
func (r *MongoSubscriptionRepository) Toggle(ctx context.Context, channelID, subscriberID string) (bool, error) {
	ids, err := objectIDs([]string{channelID, subscriberID})
	if err != nil {
		return false, err
	}
	channel, subscriber := ids[0], ids[1]

	filter := bson.D{{Key: "channel", Value: channel}, {Key: "subscriber", Value: subscriber}}
	res, err := r.subscriptions.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	doc := subscriptionDoc{
		ID:         primitive.NewObjectID(),
		Channel:    channel,
		Subscriber: subscriber,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.subscriptions.InsertOne(ctx, doc); err != nil && !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("insert subscription: %w", err)
	}
	return true, nil
}

// ListSubscribers returns the public profiles of the channel's subscribers.
func (r *MongoSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.PublicProfile, error) {
	channel, err := objectID(channelID)
	if err != nil {
		return []models.PublicProfile{}, nil
	}

	var rows []profileDoc
	if err := aggregateInto(ctx, r.subscriptions, subscriberProfilesPipeline(channel), &rows); err != nil {
		return nil, fmt.Errorf("aggregate subscribers: %w", err)
	}

	out := make([]models.PublicProfile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// MongoLikeRepository provides MongoDB-backed persistence for likes.
type MongoLikeRepository struct {
	likes *mongo.Collection
}

// NewMongoLikeRepository constructs a like repository backed by MongoDB.
func NewMongoLikeRepository(database *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{likes: database.Collection(likesCollection)}
}

// Toggle flips the like of userID on the target.
func (r *MongoLikeRepository) Toggle(ctx context.Context, kind, targetID, userID string) (bool, error) {
	ids, err := objectIDs([]string{targetID, userID})
	if err != nil {
		return false, err
	}
	target, user := ids[0], ids[1]

	filter := bson.D{{Key: "targetKind", Value: kind}, {Key: "targetId", Value: target}, {Key: "likedBy", Value: user}}
	res, err := r.likes.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	doc := likeDoc{
		ID:         primitive.NewObjectID(),
		TargetID:   target,
		TargetKind: kind,
		LikedBy:    user,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.likes.InsertOne(ctx, doc); err != nil && !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("insert like: %w", err)
	}
	return true, nil
}

// DeleteForTargets removes every like on the given targets.
func (r *MongoLikeRepository) DeleteForTargets(ctx context.Context, kind string, targetIDs ...string) error {
	if len(targetIDs) == 0 {
		return nil
	}
	targets, err := objectIDs(targetIDs)
	if err != nil {
		return err
	}

	filter := bson.D{{Key: "targetKind", Value: kind}, {Key: "targetId", Value: bson.D{{Key: "$in", Value: targets}}}}
	if _, err := r.likes.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}
	return nil
}
