package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/response"
)

// DashboardHandler serves channel statistics.
type DashboardHandler struct {
	Users  UserStore
	Videos VideoStore
}

// ChannelStats handles GET /dashboard/channel-stats/u/{userId}.
func (h DashboardHandler) ChannelStats(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	userID, err := pathID(r, "userId", "User")
	if err != nil {
		return err
	}
	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		return storeError(err, "User does not exist")
	}

	ctx, span := logging.StartSpan(ctx, "dashboard.channel_stats", "channel_id", userID)
	defer span.End()

	stats, err := h.Videos.ChannelStats(ctx, userID)
	if err != nil {
		span.Fail(err)
		return response.Internal("Something went wrong while fetching channel stats", err)
	}

	response.Write(ctx, w, http.StatusOK, stats, "Channel stats fetched successfully")
	return nil
}

// ChannelVideos handles GET /dashboard/channel-videos/u/{userId}. Unpublished
// videos are listed for the channel owner only.
func (h DashboardHandler) ChannelVideos(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	userID, err := pathID(r, "userId", "User")
	if err != nil {
		return err
	}
	viewer, err := requester(r)
	if err != nil {
		return err
	}
	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		return storeError(err, "User does not exist")
	}

	videos, err := h.Videos.ListByOwner(ctx, userID, models.SameID(userID, viewer.ID))
	if err != nil {
		return response.Internal("Something went wrong while fetching channel videos", err)
	}
	if videos == nil {
		videos = []models.Video{}
	}

	response.Write(ctx, w, http.StatusOK, videos, "Channel videos fetched successfully")
	return nil
}
