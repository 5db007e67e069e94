package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/response"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
}

type subscriptionStatus struct {
	Subscribed bool `json:"subscribed"`
}

// Toggle handles POST /subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	channelID, err := pathID(r, "channelId", "Channel")
	if err != nil {
		return err
	}
	user, err := requester(r)
	if err != nil {
		return err
	}
	if models.SameID(channelID, user.ID) {
		return response.BadRequest("You cannot subscribe to your own channel")
	}
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		return storeError(err, "Channel does not exist")
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, channelID, user.ID)
	if err != nil {
		return storeError(err, "Channel does not exist")
	}

	message := "Unsubscribed successfully"
	if subscribed {
		message = "Subscribed successfully"
	}
	response.Write(ctx, w, http.StatusOK, subscriptionStatus{Subscribed: subscribed}, message)
	return nil
}

// Subscribers handles GET /subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	channelID, err := pathID(r, "channelId", "Channel")
	if err != nil {
		return err
	}
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		return storeError(err, "Channel does not exist")
	}

	subscribers, err := h.Subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		return response.Internal("Something went wrong while fetching subscribers", err)
	}
	if subscribers == nil {
		subscribers = []models.PublicProfile{}
	}

	response.Write(ctx, w, http.StatusOK, subscribers, "Subscribers fetched successfully")
	return nil
}
