package repositories

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/models"
)

func mustObjectID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		t.Fatalf("parse object id %q: %v", hex, err)
	}
	return oid
}

func TestVideoListPipeline(t *testing.T) {
	owner := mustObjectID(t, "64b7f0c2a1d3e4f5a6b7c8d9")
	query := VideoQuery{
		Page:     Page{Number: 2, Limit: 10},
		Search:   "  go (1.22)  ",
		SortBy:   SortByViews,
		SortDesc: false,
	}

	got := videoListPipeline(query, owner)

	want := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "isPublished", Value: true},
			{Key: "title", Value: primitive.Regex{Pattern: `go \(1\.22\)`, Options: "i"}},
			{Key: "owner", Value: owner},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "views", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$skip", Value: int64(10)}},
		{{Key: "$limit", Value: int64(10)}},
	}
	want = append(want, authorStages()...)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("videoListPipeline() mismatch (-want +got):\n%s", diff)
	}
}

func TestVideoListPipelineDefaults(t *testing.T) {
	got := videoListPipeline(VideoQuery{SortBy: "password", SortDesc: true}, primitive.NilObjectID)

	wantMatch := bson.D{{Key: "$match", Value: bson.D{{Key: "isPublished", Value: true}}}}
	if diff := cmp.Diff(wantMatch, got[0]); diff != "" {
		t.Fatalf("match stage mismatch (-want +got):\n%s", diff)
	}

	wantSort := bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}}
	if diff := cmp.Diff(wantSort, got[1]); diff != "" {
		t.Fatalf("sort stage mismatch (-want +got):\n%s", diff)
	}

	wantSkip := bson.D{{Key: "$skip", Value: int64(0)}}
	if diff := cmp.Diff(wantSkip, got[2]); diff != "" {
		t.Fatalf("skip stage mismatch (-want +got):\n%s", diff)
	}
}

func TestChannelProfilePipelineMatchesLowercasedUsername(t *testing.T) {
	viewer := mustObjectID(t, "64b7f0c2a1d3e4f5a6b7c8d9")
	got := channelProfilePipeline(" Alice ", viewer)

	wantMatch := bson.D{{Key: "$match", Value: bson.D{{Key: "username", Value: "alice"}}}}
	if diff := cmp.Diff(wantMatch, got[0]); diff != "" {
		t.Fatalf("match stage mismatch (-want +got):\n%s", diff)
	}

	wantSet := bson.D{{Key: "$set", Value: bson.D{
		{Key: "subscribersCount", Value: bson.D{{Key: "$size", Value: "$subscribers"}}},
		{Key: "channelsSubscribedToCount", Value: bson.D{{Key: "$size", Value: "$subscribedTo"}}},
		{Key: "isSubscribed", Value: bson.D{{Key: "$in", Value: bson.A{viewer, "$subscribers.subscriber"}}}},
	}}}
	if diff := cmp.Diff(wantSet, got[3]); diff != "" {
		t.Fatalf("set stage mismatch (-want +got):\n%s", diff)
	}
}

func TestWatchHistoryUpdateMovesVideoToFront(t *testing.T) {
	video := mustObjectID(t, "64b7f0c2a1d3e4f5a6b7c8d9")
	got := watchHistoryUpdate(video)

	want := mongo.Pipeline{
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
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("watchHistoryUpdate() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderedHistoryKeepsOrderAndDropsDangling(t *testing.T) {
	first := mustObjectID(t, "64b7f0c2a1d3e4f5a6b7c801")
	second := mustObjectID(t, "64b7f0c2a1d3e4f5a6b7c802")
	missing := mustObjectID(t, "64b7f0c2a1d3e4f5a6b7c803")
	owner := mustObjectID(t, "64b7f0c2a1d3e4f5a6b7c8ff")
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	row := watchHistoryRow{
		WatchHistory: []primitive.ObjectID{second, missing, first},
		Videos: []videoRow{
			{Doc: videoDoc{ID: first, Owner: owner, Title: "first", CreatedAt: now}, Author: profileDoc{ID: owner, Username: "alice"}},
			{Doc: videoDoc{ID: second, Owner: owner, Title: "second", CreatedAt: now}, Author: profileDoc{ID: owner, Username: "alice"}},
		},
	}

	got := orderedHistory(row)
	if len(got) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(got))
	}
	if got[0].Title != "second" || got[1].Title != "first" {
		t.Fatalf("unexpected order: %q, %q", got[0].Title, got[1].Title)
	}
	if got[0].Owner.Username != "alice" || got[0].Owner.ID != owner.Hex() {
		t.Fatalf("expected owner profile to be embedded, got %+v", got[0].Owner)
	}
}

func TestOrderedHistoryEmpty(t *testing.T) {
	got := orderedHistory(watchHistoryRow{})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestObjectIDRejectsMalformed(t *testing.T) {
	if _, err := objectID("not-an-id"); err == nil {
		t.Fatal("expected error for malformed id")
	}
	if _, err := newVideoDoc(videoDocFixture("64b7f0c2a1d3e4f5a6b7c8d9", "bad")); err == nil {
		t.Fatal("expected error for malformed owner id")
	}
}

func videoDocFixture(id, owner string) models.Video {
	return models.Video{ID: id, Owner: owner, Title: "fixture"}
}
