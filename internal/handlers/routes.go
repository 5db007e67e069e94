package handlers

import (
	"context"
	"net/http"

	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/response"
)

const apiPrefix = "/api/v1"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	guard := middleware.RequireAuth(deps.Tokens, deps.Users)

	public := func(pattern string, fn response.HandlerFunc) {
		mux.Handle(pattern, fn)
	}
	private := func(pattern string, fn response.HandlerFunc) {
		mux.Handle(pattern, guard(fn))
	}
	api := func(method, path string) string {
		return method + " " + apiPrefix + path
	}

	health := HealthHandler{Check: deps.HealthCheck}
	users := UserHandler{
		Users:          deps.Users,
		Sessions:       deps.Sessions,
		Media:          deps.Media,
		Reaper:         deps.Reaper,
		Limiter:        deps.AuthLimiter,
		Cookies:        deps.Cookies,
		MaxUploadBytes: deps.MaxUploadBytes,
	}
	videos := VideoHandler{
		Videos:         deps.Videos,
		Users:          deps.Users,
		Comments:       deps.Comments,
		Likes:          deps.Likes,
		Media:          deps.Media,
		Reaper:         deps.Reaper,
		MaxUploadBytes: deps.MaxUploadBytes,
	}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, Likes: deps.Likes}
	dashboard := DashboardHandler{Users: deps.Users, Videos: deps.Videos}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments}

	public("GET /healthz", health.Handle)

	public(api(http.MethodPost, "/users/register"), users.Register)
	public(api(http.MethodPost, "/users/login"), users.Login)
	public(api(http.MethodPost, "/users/refresh-token"), users.RefreshToken)
	private(api(http.MethodPost, "/users/logout"), users.Logout)
	private(api(http.MethodPost, "/users/change-password"), users.ChangePassword)
	private(api(http.MethodGet, "/users/current-user"), users.CurrentUser)
	private(api(http.MethodPatch, "/users/update-account"), users.UpdateAccount)
	private(api(http.MethodPatch, "/users/avatar"), users.UpdateAvatar)
	private(api(http.MethodPatch, "/users/cover-image"), users.UpdateCoverImage)
	private(api(http.MethodGet, "/users/channel/{username}"), users.ChannelProfile)
	private(api(http.MethodGet, "/users/watch-history"), users.WatchHistory)

	private(api(http.MethodGet, "/videos/get-all-videos"), videos.GetAll)
	private(api(http.MethodPost, "/videos/publish-video/u/{userId}"), videos.Publish)
	private(api(http.MethodGet, "/videos/get-video/v/{videoId}"), videos.GetByID)
	private(api(http.MethodPatch, "/videos/update-video/v/{videoId}"), videos.Update)
	private(api(http.MethodDelete, "/videos/delete-video/v/{videoId}/u/{userId}"), videos.Delete)
	private(api(http.MethodPatch, "/videos/toggle/v/{videoId}"), videos.TogglePublish)

	private(api(http.MethodGet, "/comments/{videoId}"), comments.List)
	private(api(http.MethodPost, "/comments/v/{videoId}/u/{userId}"), comments.Add)
	private(api(http.MethodPatch, "/comments/v/{videoId}/u/{userId}/c/{commentId}"), comments.Update)
	private(api(http.MethodDelete, "/comments/v/{videoId}/u/{userId}/c/{commentId}"), comments.Delete)

	private(api(http.MethodGet, "/dashboard/channel-stats/u/{userId}"), dashboard.ChannelStats)
	private(api(http.MethodGet, "/dashboard/channel-videos/u/{userId}"), dashboard.ChannelVideos)

	private(api(http.MethodPost, "/subscriptions/c/{channelId}"), subscriptions.Toggle)
	private(api(http.MethodGet, "/subscriptions/c/{channelId}"), subscriptions.Subscribers)

	private(api(http.MethodPost, "/likes/toggle/v/{videoId}"), likes.ToggleVideo)
	private(api(http.MethodPost, "/likes/toggle/c/{commentId}"), likes.ToggleComment)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Videos        VideoStore
	Comments      CommentStore
	Subscriptions SubscriptionStore
	Likes         LikeStore

	Sessions SessionManager
	Tokens   middleware.TokenAuthenticator

	Media          MediaUploader
	Reaper         AssetReaper
	MaxUploadBytes int64

	AuthLimiter RateLimiter
	Cookies     CookiePolicy
	HealthCheck func(ctx context.Context) error
}
