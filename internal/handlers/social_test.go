package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/models"
)

func TestSubscriptionToggle(t *testing.T) {
	env := newTestEnv(t)
	channel := env.addUser(t, "channel", "pw")
	fan := env.addUser(t, "fan", "pw")
	token := env.token(t, fan)

	for _, want := range []bool{true, false} {
		rec := env.do(t, http.MethodPost, "/api/v1/subscriptions/c/"+channel.ID, token, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200 got %d", rec.Code)
		}
		var status subscriptionStatus
		decodeData(t, decodeEnvelope(t, rec), &status)
		if status.Subscribed != want {
			t.Fatalf("expected subscribed=%v got %v", want, status.Subscribed)
		}
	}

	rec := env.do(t, http.MethodPost, "/api/v1/subscriptions/c/"+fan.ID, token, nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected self-subscription to be rejected, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/subscriptions/c/"+models.NewID(), token, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected unknown channel to be 404, got %d", rec.Code)
	}
}

func TestSubscribersList(t *testing.T) {
	env := newTestEnv(t)
	channel := env.addUser(t, "channel", "pw")
	fan := env.addUser(t, "fan", "pw")
	token := env.token(t, fan)

	if rec := env.do(t, http.MethodGet, "/api/v1/subscriptions/c/"+channel.ID, token, nil, ""); string(decodeEnvelope(t, rec).Data) != "[]" {
		t.Fatal("expected empty subscriber list")
	}

	env.do(t, http.MethodPost, "/api/v1/subscriptions/c/"+channel.ID, token, nil, "")
	rec := env.do(t, http.MethodGet, "/api/v1/subscriptions/c/"+channel.ID, token, nil, "")
	var subscribers []models.PublicProfile
	decodeData(t, decodeEnvelope(t, rec), &subscribers)
	if len(subscribers) != 1 || subscribers[0].ID != fan.ID {
		t.Fatalf("unexpected subscribers %+v", subscribers)
	}
}

func TestLikeToggle(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner", "pw")
	fan := env.addUser(t, "fan", "pw")
	video := env.addVideo(t, owner, true, time.Now())
	token := env.token(t, fan)

	for _, want := range []bool{true, false} {
		rec := env.do(t, http.MethodPost, "/api/v1/likes/toggle/v/"+video.ID, token, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200 got %d", rec.Code)
		}
		var status likeStatus
		decodeData(t, decodeEnvelope(t, rec), &status)
		if status.Liked != want {
			t.Fatalf("expected liked=%v got %v", want, status.Liked)
		}
	}

	rec := env.do(t, http.MethodPost, "/api/v1/likes/toggle/c/"+models.NewID(), token, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected unknown comment to be 404, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/v1/likes/toggle/c/bogus", token, nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected malformed comment id to be 400, got %d", rec.Code)
	}
}

func TestChannelVideosHidesDraftsFromVisitors(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner", "pw")
	visitor := env.addUser(t, "visitor", "pw")
	env.addVideo(t, owner, true, time.Now())
	env.addVideo(t, owner, false, time.Now())

	count := func(user models.User) int {
		rec := env.do(t, http.MethodGet, "/api/v1/dashboard/channel-videos/u/"+owner.ID, env.token(t, user), nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200 got %d", rec.Code)
		}
		var videos []models.Video
		decodeData(t, decodeEnvelope(t, rec), &videos)
		return len(videos)
	}

	if n := count(owner); n != 2 {
		t.Fatalf("expected owner to see 2 videos got %d", n)
	}
	if n := count(visitor); n != 1 {
		t.Fatalf("expected visitor to see 1 video got %d", n)
	}
}

func TestChannelStats(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner", "pw")
	env.addVideo(t, owner, true, time.Now())
	env.addVideo(t, owner, false, time.Now())
	token := env.token(t, owner)

	rec := env.do(t, http.MethodGet, "/api/v1/dashboard/channel-stats/u/"+owner.ID, token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var stats models.ChannelStats
	decodeData(t, decodeEnvelope(t, rec), &stats)
	if stats.TotalVideos != 2 {
		t.Fatalf("expected 2 videos got %d", stats.TotalVideos)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/dashboard/channel-stats/u/"+models.NewID(), token, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected unknown channel to be 404, got %d", rec.Code)
	}
}

func TestChannelProfileLooksUpUsernameCaseInsensitively(t *testing.T) {
	env := newTestEnv(t)
	channel := env.addUser(t, "creator", "pw")
	viewer := env.addUser(t, "viewer", "pw")
	token := env.token(t, viewer)

	rec := env.do(t, http.MethodGet, "/api/v1/users/channel/Creator", token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	var profile models.ChannelProfile
	decodeData(t, decodeEnvelope(t, rec), &profile)
	if profile.ID != channel.ID {
		t.Fatalf("expected channel %s got %s", channel.ID, profile.ID)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/users/channel/nobody", token, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}

func TestWatchHistoryListsMostRecentFirst(t *testing.T) {
	env := newTestEnv(t)
	owner := env.addUser(t, "owner", "pw")
	viewer := env.addUser(t, "viewer", "pw")
	token := env.token(t, viewer)

	rec := env.do(t, http.MethodGet, "/api/v1/users/watch-history", token, nil, "")
	if rec.Code != http.StatusOK || string(decodeEnvelope(t, rec).Data) != "[]" {
		t.Fatalf("expected empty history, got %d", rec.Code)
	}

	older := env.addVideo(t, owner, true, time.Now())
	newer := env.addVideo(t, owner, true, time.Now())
	for _, id := range []string{older.ID, newer.ID} {
		env.do(t, http.MethodGet, "/api/v1/videos/get-video/v/"+id, token, nil, "")
	}

	rec = env.do(t, http.MethodGet, "/api/v1/users/watch-history", token, nil, "")
	var history []struct {
		ID string `json:"_id"`
	}
	decodeData(t, decodeEnvelope(t, rec), &history)
	if len(history) != 2 || history[0].ID != newer.ID || history[1].ID != older.ID {
		t.Fatalf("unexpected history %+v", history)
	}
}
