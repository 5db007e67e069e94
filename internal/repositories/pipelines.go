package repositories

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/models"
)

// authorStages expands the owner reference into an "author" subdocument
// holding the owner's public profile.
func authorStages() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "owner"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "username", Value: 1},
					{Key: "fullName", Value: 1},
					{Key: "avatar", Value: 1},
				}}},
			}},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "author", Value: bson.D{{Key: "$first", Value: "$author"}}},
		}}},
	}
}

func sortDirection(desc bool) int {
	if desc {
		return -1
	}
	return 1
}

// videoListFilter selects published videos, optionally by owner and by a
// case-insensitive literal title substring.
func videoListFilter(search string, owner primitive.ObjectID) bson.D {
	filter := bson.D{{Key: "isPublished", Value: true}}
	if search = strings.TrimSpace(search); search != "" {
		filter = append(filter, bson.E{Key: "title", Value: primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}})
	}
	if !owner.IsZero() {
		filter = append(filter, bson.E{Key: "owner", Value: owner})
	}
	return filter
}

// videoListPipeline builds the paginated published-video listing.
func videoListPipeline(query VideoQuery, owner primitive.ObjectID) mongo.Pipeline {
	page := query.Page.Normalize()
	sortBy := query.SortBy
	if _, ok := videoSortColumns[sortBy]; !ok {
		sortBy = SortByCreatedAt
	}
	dir := sortDirection(query.SortDesc)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: videoListFilter(query.Search, owner)}},
		{{Key: "$sort", Value: bson.D{{Key: sortBy, Value: dir}, {Key: "_id", Value: dir}}}},
		{{Key: "$skip", Value: page.Skip()}},
		{{Key: "$limit", Value: int64(page.Limit)}},
	}
	return append(pipeline, authorStages()...)
}

// commentListPipeline builds the paginated, newest-first comment listing of a video.
func commentListPipeline(video primitive.ObjectID, page Page) mongo.Pipeline {
	page = page.Normalize()
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "video", Value: video}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$skip", Value: page.Skip()}},
		{{Key: "$limit", Value: int64(page.Limit)}},
	}
	return append(pipeline, authorStages()...)
}

// channelProfilePipeline resolves a channel by username together with its
// subscription counts and whether viewer subscribes to it.
func channelProfilePipeline(username string, viewer primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "username", Value: strings.ToLower(strings.TrimSpace(username))}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: subscriptionsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "channel"},
			{Key: "as", Value: "subscribers"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: subscriptionsCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "subscriber"},
			{Key: "as", Value: "subscribedTo"},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "subscribersCount", Value: bson.D{{Key: "$size", Value: "$subscribers"}}},
			{Key: "channelsSubscribedToCount", Value: bson.D{{Key: "$size", Value: "$subscribedTo"}}},
			{Key: "isSubscribed", Value: bson.D{{Key: "$in", Value: bson.A{viewer, "$subscribers.subscriber"}}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "username", Value: 1},
			{Key: "fullName", Value: 1},
			{Key: "email", Value: 1},
			{Key: "avatar", Value: 1},
			{Key: "coverImage", Value: 1},
			{Key: "subscribersCount", Value: 1},
			{Key: "channelsSubscribedToCount", Value: 1},
			{Key: "isSubscribed", Value: 1},
		}}},
	}
}

// watchHistoryPipeline loads a user's watch-history ids and the videos they
// reference. $lookup does not preserve order, so callers reorder with
// orderedHistory.
func watchHistoryPipeline(user primitive.ObjectID) mongo.Pipeline {
	videoStages := bson.A{}
	for _, stage := range authorStages() {
		videoStages = append(videoStages, stage)
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: user}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: videosCollection},
			{Key: "localField", Value: "watchHistory"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "videos"},
			{Key: "pipeline", Value: videoStages},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "watchHistory", Value: 1},
			{Key: "videos", Value: 1},
		}}},
	}
}

// watchHistoryUpdate moves video to the front of the watch history without
// duplicating it.
func watchHistoryUpdate(video primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "watchHistory", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.A{video},
				bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$watchHistory", bson.A{}}}}},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", video}}}},
				}}},
			}}}},
		}}},
	}
}

// videoTotalsPipeline sums views and counts uploads of a channel.
func videoTotalsPipeline(owner primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner", Value: owner}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalVideos", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalViews", Value: bson.D{{Key: "$sum", Value: "$views"}}},
		}}},
	}
}

// videoLikesPipeline counts likes targeting any video of a channel.
func videoLikesPipeline(owner primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner", Value: owner}}}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: likesCollection},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "targetId"},
			{Key: "as", Value: "likes"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "targetKind", Value: models.LikeTargetVideo}}}},
			}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalLikes", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$size", Value: "$likes"}}}}},
		}}},
	}
}

// subscriberProfilesPipeline lists the public profiles of a channel's
// subscribers, most recent subscription first.
func subscriberProfilesPipeline(channel primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "channel", Value: channel}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "subscriber"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "profile"},
		}}},
		{{Key: "$unwind", Value: "$profile"}},
		{{Key: "$replaceWith", Value: bson.D{
			{Key: "_id", Value: "$profile._id"},
			{Key: "username", Value: "$profile.username"},
			{Key: "fullName", Value: "$profile.fullName"},
			{Key: "avatar", Value: "$profile.avatar"},
		}}},
	}
}
