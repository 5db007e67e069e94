package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type memUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]models.User)}
}

func (s *memUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *memUserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *memUserStore) update(id string, fn func(*models.User)) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	fn(&user)
	s.users[id] = user
	return user, nil
}

func (s *memUserStore) UpdateAccount(_ context.Context, id, fullName, email string) (models.User, error) {
	return s.update(id, func(u *models.User) { u.FullName, u.Email = fullName, email })
}

func (s *memUserStore) UpdateAvatar(_ context.Context, id, url string) (models.User, error) {
	return s.update(id, func(u *models.User) { u.Avatar = url })
}

func (s *memUserStore) UpdateCoverImage(_ context.Context, id, url string) (models.User, error) {
	return s.update(id, func(u *models.User) { u.CoverImage = url })
}

func (s *memUserStore) UpdatePassword(_ context.Context, id, hash string) error {
	_, err := s.update(id, func(u *models.User) { u.Password = hash })
	return err
}

func (s *memUserStore) SetRefreshToken(_ context.Context, id, token string) error {
	_, err := s.update(id, func(u *models.User) { u.RefreshToken = token })
	return err
}

func (s *memUserStore) SwapRefreshToken(_ context.Context, id, current, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok || current == "" || user.RefreshToken != current {
		return false, nil
	}
	user.RefreshToken = next
	s.users[id] = user
	return true, nil
}

func (s *memUserStore) ChannelProfile(_ context.Context, username, _ string) (models.ChannelProfile, error) {
	user, err := s.FindByUsernameOrEmail(context.Background(), username, "")
	if err != nil {
		return models.ChannelProfile{}, err
	}
	return models.ChannelProfile{ID: user.ID, Username: user.Username, FullName: user.FullName}, nil
}

func (s *memUserStore) WatchHistory(_ context.Context, id string) ([]models.VideoWithOwner, error) {
	user, err := s.FindByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	out := make([]models.VideoWithOwner, 0, len(user.WatchHistory))
	for _, videoID := range user.WatchHistory {
		out = append(out, models.VideoWithOwner{Video: models.Video{ID: videoID}})
	}
	return out, nil
}

func (s *memUserStore) AddToWatchHistory(_ context.Context, userID, videoID string) error {
	_, err := s.update(userID, func(u *models.User) {
		history := []string{videoID}
		for _, id := range u.WatchHistory {
			if id != videoID {
				history = append(history, id)
			}
		}
		u.WatchHistory = history
	})
	return err
}

type memVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
	calls  int
}

func newMemVideoStore() *memVideoStore {
	return &memVideoStore{videos: make(map[string]models.Video)}
}

func (s *memVideoStore) Create(_ context.Context, video models.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.videos[video.ID] = video
	return nil
}

func (s *memVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *memVideoStore) List(_ context.Context, query repositories.VideoQuery) ([]models.VideoWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	var matched []models.Video
	for _, video := range s.videos {
		if !video.IsPublished {
			continue
		}
		if query.OwnerID != "" && video.Owner != query.OwnerID {
			continue
		}
		if query.Search != "" && !strings.Contains(strings.ToLower(video.Title), strings.ToLower(query.Search)) {
			continue
		}
		matched = append(matched, video)
	}
	sort.Slice(matched, func(i, j int) bool {
		if query.SortDesc {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	page := query.Page.Normalize()
	skip := int(page.Skip())
	out := []models.VideoWithOwner{}
	for i := skip; i < len(matched) && len(out) < page.Limit; i++ {
		out = append(out, models.VideoWithOwner{Video: matched[i], Owner: models.PublicProfile{ID: matched[i].Owner}})
	}
	return out, nil
}

func (s *memVideoStore) ListByOwner(_ context.Context, ownerID string, includeUnpublished bool) ([]models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	var out []models.Video
	for _, video := range s.videos {
		if video.Owner == ownerID && (includeUnpublished || video.IsPublished) {
			out = append(out, video)
		}
	}
	return out, nil
}

func (s *memVideoStore) update(id string, fn func(*models.Video)) (models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	fn(&video)
	s.videos[id] = video
	return video, nil
}

func (s *memVideoStore) Update(_ context.Context, id string, changes repositories.VideoChanges) (models.Video, error) {
	return s.update(id, func(v *models.Video) {
		if changes.Title != "" {
			v.Title = changes.Title
		}
		if changes.Description != "" {
			v.Description = changes.Description
		}
		if changes.Thumbnail != "" {
			v.Thumbnail = changes.Thumbnail
		}
	})
}

func (s *memVideoStore) SetPublished(_ context.Context, id string, published bool) (models.Video, error) {
	return s.update(id, func(v *models.Video) { v.IsPublished = published })
}

func (s *memVideoStore) IncrementViews(_ context.Context, id string) error {
	_, err := s.update(id, func(v *models.Video) { v.Views++ })
	return err
}

func (s *memVideoStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *memVideoStore) ChannelStats(_ context.Context, ownerID string) (models.ChannelStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	var stats models.ChannelStats
	for _, video := range s.videos {
		if video.Owner == ownerID {
			stats.TotalVideos++
			stats.TotalViews += video.Views
		}
	}
	return stats, nil
}

type memCommentStore struct {
	mu       sync.Mutex
	comments map[string]models.Comment
	calls    int
}

func newMemCommentStore() *memCommentStore {
	return &memCommentStore{comments: make(map[string]models.Comment)}
}

func (s *memCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.comments[comment.ID] = comment
	return nil
}

func (s *memCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *memCommentStore) ListByVideo(_ context.Context, videoID string, _ repositories.Page) ([]models.CommentWithOwner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	var out []models.CommentWithOwner
	for _, comment := range s.comments {
		if comment.Video == videoID {
			out = append(out, models.CommentWithOwner{Comment: comment, Owner: models.PublicProfile{ID: comment.Owner}})
		}
	}
	return out, nil
}

func (s *memCommentStore) UpdateContent(_ context.Context, id, content string) (models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[id] = comment
	return comment, nil
}

func (s *memCommentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *memCommentStore) DeleteByVideo(_ context.Context, videoID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	var ids []string
	for id, comment := range s.comments {
		if comment.Video == videoID {
			ids = append(ids, id)
			delete(s.comments, id)
		}
	}
	return ids, nil
}

type memSubscriptionStore struct {
	mu    sync.Mutex
	subs  map[[2]string]bool
	calls int
}

func newMemSubscriptionStore() *memSubscriptionStore {
	return &memSubscriptionStore{subs: make(map[[2]string]bool)}
}

func (s *memSubscriptionStore) Toggle(_ context.Context, channelID, subscriberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	key := [2]string{channelID, subscriberID}
	if s.subs[key] {
		delete(s.subs, key)
		return false, nil
	}
	s.subs[key] = true
	return true, nil
}

func (s *memSubscriptionStore) ListSubscribers(_ context.Context, channelID string) ([]models.PublicProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	var out []models.PublicProfile
	for key := range s.subs {
		if key[0] == channelID {
			out = append(out, models.PublicProfile{ID: key[1]})
		}
	}
	return out, nil
}

type memLikeStore struct {
	mu    sync.Mutex
	likes map[[3]string]bool
	calls int
}

func newMemLikeStore() *memLikeStore {
	return &memLikeStore{likes: make(map[[3]string]bool)}
}

func (s *memLikeStore) Toggle(_ context.Context, kind, targetID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	key := [3]string{kind, targetID, userID}
	if s.likes[key] {
		delete(s.likes, key)
		return false, nil
	}
	s.likes[key] = true
	return true, nil
}

func (s *memLikeStore) DeleteForTargets(_ context.Context, kind string, targetIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for key := range s.likes {
		for _, id := range targetIDs {
			if key[0] == kind && key[1] == id {
				delete(s.likes, key)
			}
		}
	}
	return nil
}

func (s *memLikeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return len(s.likes)
}

type stubMedia struct {
	mu       sync.Mutex
	uploads  int
	duration float64
}

func (m *stubMedia) UploadImage(_ context.Context, folder string, fh *multipart.FileHeader) (media.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	return media.Asset{URL: "https://cdn.test/" + folder + "/" + fh.Filename, ContentType: "image/jpeg"}, nil
}

func (m *stubMedia) UploadVideo(_ context.Context, fh *multipart.FileHeader) (media.Asset, error) {
	if err := media.CheckVideo(fh); err != nil {
		return media.Asset{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	return media.Asset{URL: "https://cdn.test/videos/" + fh.Filename, ContentType: media.VideoContentType, Duration: m.duration}, nil
}

type stubReaper struct {
	mu        sync.Mutex
	scheduled []string
}

func (r *stubReaper) Schedule(locations ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, loc := range locations {
		if loc != "" {
			r.scheduled = append(r.scheduled, loc)
		}
	}
	return nil
}

type stubLimiter struct {
	mu   sync.Mutex
	deny bool
	keys []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return !l.deny
}

type testEnv struct {
	mux      *http.ServeMux
	limiter  *stubLimiter
	users    *memUserStore
	videos   *memVideoStore
	comments *memCommentStore
	subs     *memSubscriptionStore
	likes    *memLikeStore
	media    *stubMedia
	reaper   *stubReaper
	sessions *auth.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		mux:      http.NewServeMux(),
		users:    newMemUserStore(),
		videos:   newMemVideoStore(),
		comments: newMemCommentStore(),
		subs:     newMemSubscriptionStore(),
		likes:    newMemLikeStore(),
		media:    &stubMedia{duration: 42.5},
		reaper:   &stubReaper{},
		limiter:  &stubLimiter{},
	}
	env.sessions = auth.NewManager("access-secret", "refresh-secret", time.Minute, time.Hour, env.users)

	RegisterRoutes(env.mux, Dependencies{
		Users:         env.users,
		Videos:        env.videos,
		Comments:      env.comments,
		Subscriptions: env.subs,
		Likes:         env.likes,
		Sessions:      env.sessions,
		Tokens:        env.sessions,
		Media:         env.media,
		Reaper:        env.reaper,
		AuthLimiter:   env.limiter,
	})
	return env
}

// storeCalls counts content store calls; the user store is excluded since the
// auth guard reads it on every request.
func (e *testEnv) storeCalls() int {
	locks := []*sync.Mutex{&e.videos.mu, &e.comments.mu, &e.subs.mu, &e.likes.mu}
	for _, mu := range locks {
		mu.Lock()
	}
	defer func() {
		for _, mu := range locks {
			mu.Unlock()
		}
	}()
	return e.videos.calls + e.comments.calls + e.subs.calls + e.likes.calls
}

func (e *testEnv) addUser(t *testing.T, username, password string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		ID:       models.NewID(),
		Username: username,
		Email:    username + "@example.com",
		FullName: strings.ToUpper(username[:1]) + username[1:],
		Avatar:   "https://cdn.test/avatars/" + username + ".jpg",
		Password: string(hash),
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) addVideo(t *testing.T, owner models.User, published bool, createdAt time.Time) models.Video {
	t.Helper()
	video := models.Video{
		ID:          models.NewID(),
		Owner:       owner.ID,
		VideoFile:   "https://cdn.test/videos/" + owner.Username + ".mp4",
		Thumbnail:   "https://cdn.test/thumbnails/" + owner.Username + ".jpg",
		Title:       "video by " + owner.Username,
		Description: "description",
		IsPublished: published,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := e.videos.Create(context.Background(), video); err != nil {
		t.Fatalf("create video: %v", err)
	}
	return video
}

func (e *testEnv) token(t *testing.T, user models.User) string {
	t.Helper()
	tokens, err := e.sessions.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	return tokens.AccessToken
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return e.do(t, method, path, token, bytes.NewReader(body), "application/json")
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.StatusCode != rec.Code {
		t.Fatalf("envelope status %d does not match response status %d", env.StatusCode, rec.Code)
	}
	return env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

type formFilePart struct {
	field       string
	filename    string
	contentType string
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFilePart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("payload")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}
