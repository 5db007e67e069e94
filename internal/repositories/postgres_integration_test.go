package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/models"
)

var (
	testPool *pgxpool.Pool
	// testPoolErr explains why the Postgres tests are skipped.
	testPoolErr error
)

func TestMain(m *testing.M) {
	pool, stop, err := startTestDatabase(context.Background())
	if err != nil {
		testPoolErr = err
		fmt.Fprintf(os.Stderr, "postgres repository tests disabled: %v\n", err)
		os.Exit(m.Run())
	}

	testPool = pool
	code := m.Run()
	stop()
	os.Exit(code)
}

func startTestDatabase(ctx context.Context) (*pgxpool.Pool, func(), error) {
	server, err := testserver.NewTestServer()
	if err != nil {
		return nil, nil, fmt.Errorf("start cockroach test server: %w", err)
	}

	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		server.Stop()
		return nil, nil, fmt.Errorf("connect to cockroach test server: %w", err)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		pool.Close()
		server.Stop()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}

	return pool, func() {
		pool.Close()
		server.Stop()
	}, nil
}

func TestPostgresUserRepository_CreateFindAndUpdate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "alice")

	dup := user
	dup.ID = models.NewID()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when creating duplicate username, got %v", err)
	}

	fetched, err := repo.FindByUsernameOrEmail(ctx, "", user.Email)
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if fetched.ID != user.ID || fetched.Password != user.Password {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}

	updated, err := repo.UpdateAccount(ctx, user.ID, "Alice Updated", "alice.updated@example.com")
	if err != nil {
		t.Fatalf("update account: %v", err)
	}
	if updated.FullName != "Alice Updated" || updated.Email != "alice.updated@example.com" {
		t.Fatalf("expected updated document to be returned, got %+v", updated)
	}

	if err := repo.SetRefreshToken(ctx, user.ID, "refresh-token"); err != nil {
		t.Fatalf("set refresh token: %v", err)
	}
	fetched, err = repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.RefreshToken != "refresh-token" {
		t.Fatalf("expected refresh token to persist, got %q", fetched.RefreshToken)
	}

	swapped, err := repo.SwapRefreshToken(ctx, user.ID, "refresh-token", "next-token")
	if err != nil || !swapped {
		t.Fatalf("expected first swap to succeed, got %v (%v)", swapped, err)
	}
	swapped, err = repo.SwapRefreshToken(ctx, user.ID, "refresh-token", "other-token")
	if err != nil || swapped {
		t.Fatalf("expected stale swap to be refused, got %v (%v)", swapped, err)
	}

	if _, err := repo.UpdateAvatar(ctx, models.NewID(), "https://cdn/x.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing user, got %v", err)
	}
	if _, err := repo.FindByUsernameOrEmail(ctx, "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty identifiers, got %v", err)
	}
}

func TestPostgresVideoRepository_ListToggleAndStats(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	owner := createTestUser(t, users, "owner")
	viewer := createTestUser(t, users, "viewer")

	repo := NewPostgresVideoRepository(testPool)
	base := time.Now().UTC().Add(-time.Hour)
	var ids []string
	for i := 0; i < 12; i++ {
		video := createTestVideo(t, repo, owner.ID, fmt.Sprintf("Video %02d", i), base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, video.ID)
	}
	hidden := createTestVideo(t, repo, owner.ID, "Draft 100%", base.Add(time.Hour))
	if _, err := repo.SetPublished(ctx, hidden.ID, false); err != nil {
		t.Fatalf("unpublish: %v", err)
	}

	page, err := repo.List(ctx, VideoQuery{Page: Page{Number: 2, Limit: 10}, SortBy: SortByCreatedAt, SortDesc: true})
	if err != nil {
		t.Fatalf("list videos: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 videos on second page, got %d", len(page))
	}
	if page[0].ID != ids[1] || page[1].ID != ids[0] {
		t.Fatalf("unexpected second page order: %s, %s", page[0].ID, page[1].ID)
	}
	if page[0].Owner.Username != "owner" {
		t.Fatalf("expected owner profile, got %+v", page[0].Owner)
	}

	found, err := repo.List(ctx, VideoQuery{Search: "draft 100%"})
	if err != nil {
		t.Fatalf("search videos: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected unpublished video to be excluded, got %d", len(found))
	}

	toggled, err := repo.SetPublished(ctx, hidden.ID, true)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !toggled.IsPublished {
		t.Fatal("expected post-update document to be published")
	}

	all, err := repo.ListByOwner(ctx, owner.ID, false)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(all) != 13 || all[0].ID != hidden.ID {
		t.Fatalf("unexpected channel videos: %d first=%s", len(all), all[0].ID)
	}

	if err := repo.IncrementViews(ctx, ids[0]); err != nil {
		t.Fatalf("increment views: %v", err)
	}

	likes := NewPostgresLikeRepository(testPool)
	if liked, err := likes.Toggle(ctx, models.LikeTargetVideo, ids[0], viewer.ID); err != nil || !liked {
		t.Fatalf("like video: liked=%v err=%v", liked, err)
	}

	subs := NewPostgresSubscriptionRepository(testPool)
	if subscribed, err := subs.Toggle(ctx, owner.ID, viewer.ID); err != nil || !subscribed {
		t.Fatalf("subscribe: subscribed=%v err=%v", subscribed, err)
	}

	stats, err := repo.ChannelStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	want := models.ChannelStats{TotalVideos: 13, TotalViews: 1, TotalLikes: 1, TotalSubs: 1}
	if stats != want {
		t.Fatalf("expected stats %+v, got %+v", want, stats)
	}

	empty, err := repo.ChannelStats(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("empty channel stats: %v", err)
	}
	if empty != (models.ChannelStats{}) {
		t.Fatalf("expected zero stats for an empty channel, got %+v", empty)
	}

	profile, err := users.ChannelProfile(ctx, "OWNER", viewer.ID)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.SubscribersCount != 1 || !profile.IsSubscribed {
		t.Fatalf("unexpected channel profile %+v", profile)
	}

	if err := repo.Delete(ctx, models.NewID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting missing video, got %v", err)
	}
}

func TestPostgresUserRepository_WatchHistory(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	owner := createTestUser(t, users, "creator")
	viewer := createTestUser(t, users, "watcher")

	first := createTestVideo(t, videos, owner.ID, "First", time.Now().UTC())
	second := createTestVideo(t, videos, owner.ID, "Second", time.Now().UTC())

	for _, id := range []string{first.ID, second.ID, first.ID} {
		if err := users.AddToWatchHistory(ctx, viewer.ID, id); err != nil {
			t.Fatalf("add to watch history: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	history, err := users.WatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if len(history) != 2 || history[0].ID != first.ID || history[1].ID != second.ID {
		t.Fatalf("unexpected watch history: %+v", history)
	}

	if err := videos.Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	history, err = users.WatchHistory(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("watch history after delete: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected dangling entry to be dropped, got %d", len(history))
	}

	if _, err := users.WatchHistory(ctx, models.NewID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestPostgresCommentAndLikeRepositories(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	videos := NewPostgresVideoRepository(testPool)
	author := createTestUser(t, users, "author")
	video := createTestVideo(t, videos, author.ID, "Commented", time.Now().UTC())

	repo := NewPostgresCommentRepository(testPool)
	now := time.Now().UTC()
	var ids []string
	for i := 0; i < 3; i++ {
		comment := models.Comment{
			ID:        models.NewID(),
			Video:     video.ID,
			Owner:     author.ID,
			Content:   fmt.Sprintf("comment %d", i),
			CreatedAt: now.Add(time.Duration(i) * time.Second),
			UpdatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(ctx, comment); err != nil {
			t.Fatalf("create comment: %v", err)
		}
		ids = append(ids, comment.ID)
	}

	listed, err := repo.ListByVideo(ctx, video.ID, Page{Number: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != ids[2] || listed[0].Owner.Username != "author" {
		t.Fatalf("unexpected comment page: %+v", listed)
	}

	updated, err := repo.UpdateContent(ctx, ids[0], "edited")
	if err != nil {
		t.Fatalf("update comment: %v", err)
	}
	if updated.Content != "edited" {
		t.Fatalf("expected updated content, got %q", updated.Content)
	}

	likes := NewPostgresLikeRepository(testPool)
	if liked, err := likes.Toggle(ctx, models.LikeTargetComment, ids[0], author.ID); err != nil || !liked {
		t.Fatalf("like comment: liked=%v err=%v", liked, err)
	}
	if liked, err := likes.Toggle(ctx, models.LikeTargetComment, ids[0], author.ID); err != nil || liked {
		t.Fatalf("unlike comment: liked=%v err=%v", liked, err)
	}

	deleted, err := repo.DeleteByVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("delete by video: %v", err)
	}
	sort.Strings(deleted)
	sort.Strings(ids)
	if len(deleted) != 3 || deleted[0] != ids[0] {
		t.Fatalf("unexpected deleted ids %v", deleted)
	}
	if err := likes.DeleteForTargets(ctx, models.LikeTargetComment, deleted...); err != nil {
		t.Fatalf("delete likes: %v", err)
	}

	if _, err := repo.FindByID(ctx, ids[1]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after cascade, got %v", err)
	}
}

func TestPostgresSubscriptionRepository_ToggleAndList(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	users := NewPostgresUserRepository(testPool)
	channel := createTestUser(t, users, "channel")
	fan := createTestUser(t, users, "fan")

	repo := NewPostgresSubscriptionRepository(testPool)
	if subscribed, err := repo.Toggle(ctx, channel.ID, fan.ID); err != nil || !subscribed {
		t.Fatalf("subscribe: subscribed=%v err=%v", subscribed, err)
	}

	profiles, err := repo.ListSubscribers(ctx, channel.ID)
	if err != nil {
		t.Fatalf("list subscribers: %v", err)
	}
	if len(profiles) != 1 || profiles[0].ID != fan.ID {
		t.Fatalf("unexpected subscribers %+v", profiles)
	}

	if subscribed, err := repo.Toggle(ctx, channel.ID, fan.ID); err != nil || subscribed {
		t.Fatalf("unsubscribe: subscribed=%v err=%v", subscribed, err)
	}

	profiles, err = repo.ListSubscribers(ctx, channel.ID)
	if err != nil {
		t.Fatalf("list subscribers after unsubscribe: %v", err)
	}
	if profiles == nil || len(profiles) != 0 {
		t.Fatalf("expected empty non-nil subscriber list, got %#v", profiles)
	}

	if _, err := repo.Toggle(ctx, models.NewID(), fan.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound subscribing to missing channel, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skipf("postgres unavailable: %v", testPoolErr)
	}
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE watch_history, likes, subscriptions, comments, videos, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username string) models.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	user := models.User{
		ID:        models.NewID(),
		Username:  username,
		Email:     username + "@example.com",
		FullName:  username,
		Avatar:    "https://cdn.example.com/" + username + ".jpg",
		Password:  "password-hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, ownerID, title string, createdAt time.Time) models.Video {
	t.Helper()
	video := models.Video{
		ID:          models.NewID(),
		Owner:       ownerID,
		VideoFile:   "https://cdn.example.com/videos/" + title + ".mp4",
		Thumbnail:   "https://cdn.example.com/thumbnails/" + title + ".jpg",
		Title:       title,
		Description: "description",
		Duration:    12.5,
		IsPublished: true,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}
