package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

const (
	userColumns    = `id, username, email, full_name, avatar, cover_image, password_hash, refresh_token, created_at, updated_at`
	videoColumns   = `v.id, v.owner_id, v.video_file, v.thumbnail, v.title, v.description, v.duration, v.views, v.is_published, v.created_at, v.updated_at`
	authorColumns  = `COALESCE(u.id, ''), COALESCE(u.username, ''), COALESCE(u.full_name, ''), COALESCE(u.avatar, '')`
	commentColumns = `c.id, c.video_id, c.owner_id, c.content, c.created_at, c.updated_at`
)

type scanner interface {
	Scan(dest ...any) error
}

func acquire(ctx context.Context, pool db.Pool) (*pgxpool.Conn, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

// mapPgError translates constraint violations into repository sentinels.
func mapPgError(err error, format string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrConflict
		case "23503":
			return ErrNotFound
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf(format+": %w", err)
}

func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(search)
	return "%" + escaped + "%"
}

func scanUser(row scanner, user *models.User) error {
	return row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Avatar, &user.CoverImage,
		&user.Password, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt)
}

func scanVideo(row scanner, video *models.Video, extra ...any) error {
	dest := []any{&video.ID, &video.Owner, &video.VideoFile, &video.Thumbnail, &video.Title, &video.Description,
		&video.Duration, &video.Views, &video.IsPublished, &video.CreatedAt, &video.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

func profileDest(p *models.PublicProfile) []any {
	return []any{&p.ID, &p.Username, &p.FullName, &p.Avatar}
}

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, user.ID, user.Username, user.Email, user.FullName, user.Avatar, user.CoverImage,
		user.Password, user.RefreshToken, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return mapPgError(err, "insert user")
	}

	return nil
}

// FindByID fetches a user and their watch-history ids.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.User{}, err
	}
	defer conn.Release()

	var user models.User
	row := conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err := scanUser(row, &user); err != nil {
		return models.User{}, mapPgError(err, "select user by id")
	}

	rows, err := conn.Query(ctx, `
        SELECT video_id FROM watch_history
        WHERE user_id = $1
        ORDER BY watched_at DESC
    `, id)
	if err != nil {
		return models.User{}, fmt.Errorf("query watch history ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return models.User{}, fmt.Errorf("collect watch history ids: %w", err)
	}
	user.WatchHistory = ids

	return user, nil
}

// FindByUsernameOrEmail fetches the user matching either identifier.
func (r *PostgresUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error) {
	if username == "" && email == "" {
		return models.User{}, ErrNotFound
	}

	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.User{}, err
	}
	defer conn.Release()

	var user models.User
	row := conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
        LIMIT 1
    `, username, email)
	if err := scanUser(row, &user); err != nil {
		return models.User{}, mapPgError(err, "select user by username or email")
	}

	return user, nil
}

// UpdateAccount replaces the user's full name and email.
func (r *PostgresUserRepository) UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error) {
	return r.update(ctx, `full_name = $2, email = $3`, id, fullName, email)
}

// UpdateAvatar replaces the user's avatar URL.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id, url string) (models.User, error) {
	return r.update(ctx, `avatar = $2`, id, url)
}

// UpdateCoverImage replaces the user's cover image URL.
func (r *PostgresUserRepository) UpdateCoverImage(ctx context.Context, id, url string) (models.User, error) {
	return r.update(ctx, `cover_image = $2`, id, url)
}

// UpdatePassword stores a new password hash.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.update(ctx, `password_hash = $2`, id, passwordHash)
	return err
}

// SetRefreshToken stores the user's current refresh token. An empty token
// revokes it.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	_, err := r.update(ctx, `refresh_token = $2`, id, token)
	return err
}

// SwapRefreshToken rotates the refresh token only if current is still the
// stored one.
func (r *PostgresUserRepository) SwapRefreshToken(ctx context.Context, id, current, next string) (bool, error) {
	if current == "" {
		return false, nil
	}
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET refresh_token = $3, updated_at = $4
        WHERE id = $1 AND refresh_token = $2
    `, id, current, next, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("swap refresh token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// update applies a SET clause whose placeholders start at $2; $1 is the id.
func (r *PostgresUserRepository) update(ctx context.Context, set string, args ...any) (models.User, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.User{}, err
	}
	defer conn.Release()

	args = append(args, time.Now().UTC())
	query := fmt.Sprintf(`
        UPDATE users
        SET %s, updated_at = $%d
        WHERE id = $1
        RETURNING %s
    `, set, len(args), userColumns)

	var user models.User
	if err := scanUser(conn.QueryRow(ctx, query, args...), &user); err != nil {
		return models.User{}, mapPgError(err, "update user")
	}

	return user, nil
}

// ChannelProfile resolves a channel by username as seen by viewerID.
func (r *PostgresUserRepository) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.ChannelProfile{}, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.full_name, u.email, u.avatar, u.cover_image,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id),
               (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
               EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2)
        FROM users u
        WHERE u.username = $1
    `, strings.ToLower(strings.TrimSpace(username)), viewerID)

	var p models.ChannelProfile
	if err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.Email, &p.Avatar, &p.CoverImage,
		&p.SubscribersCount, &p.ChannelsSubscribedToCount, &p.IsSubscribed); err != nil {
		return models.ChannelProfile{}, mapPgError(err, "select channel profile")
	}

	return p, nil
}

// WatchHistory returns the user's watched videos, most recent first.
func (r *PostgresUserRepository) WatchHistory(ctx context.Context, id string) ([]models.VideoWithOwner, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`, `+authorColumns+`
        FROM watch_history w
        JOIN videos v ON v.id = w.video_id
        LEFT JOIN users u ON u.id = v.owner_id
        WHERE w.user_id = $1
        ORDER BY w.watched_at DESC
    `, id)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}

	return collectVideosWithOwner(rows, "watch history")
}

// AddToWatchHistory moves videoID to the front of the user's watch history.
func (r *PostgresUserRepository) AddToWatchHistory(ctx context.Context, userID, videoID string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = excluded.watched_at
    `, userID, videoID, time.Now().UTC())
	if err != nil {
		return mapPgError(err, "upsert watch history")
	}

	return nil
}

func collectVideosWithOwner(rows pgx.Rows, what string) ([]models.VideoWithOwner, error) {
	defer rows.Close()

	videos := []models.VideoWithOwner{}
	for rows.Next() {
		var v models.VideoWithOwner
		if err := scanVideo(rows, &v.Video, profileDest(&v.Owner)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}

	return videos, nil
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, video_file, thumbnail, title, description, duration, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, video.ID, video.Owner, video.VideoFile, video.Thumbnail, video.Title, video.Description,
		video.Duration, video.Views, video.IsPublished, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		return mapPgError(err, "insert video")
	}

	return nil
}

// FindByID fetches a video by id.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Video{}, err
	}
	defer conn.Release()

	var video models.Video
	row := conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos v WHERE v.id = $1`, id)
	if err := scanVideo(row, &video); err != nil {
		return models.Video{}, mapPgError(err, "select video by id")
	}

	return video, nil
}

// List returns a page of published videos with their owners expanded.
func (r *PostgresVideoRepository) List(ctx context.Context, query VideoQuery) ([]models.VideoWithOwner, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	page := query.Page.Normalize()
	where := []string{"v.is_published = TRUE"}
	var args []any
	if search := strings.TrimSpace(query.Search); search != "" {
		args = append(args, likePattern(search))
		where = append(where, fmt.Sprintf("v.title ILIKE $%d", len(args)))
	}
	if query.OwnerID != "" {
		args = append(args, query.OwnerID)
		where = append(where, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}

	dir := "ASC"
	if query.SortDesc {
		dir = "DESC"
	}
	args = append(args, page.Limit, page.Skip())

	sql := fmt.Sprintf(`
        SELECT %s, %s
        FROM videos v
        LEFT JOIN users u ON u.id = v.owner_id
        WHERE %s
        ORDER BY v.%s %s, v.id %s
        LIMIT $%d OFFSET $%d
    `, videoColumns, authorColumns, strings.Join(where, " AND "), sortColumn(query.SortBy), dir, dir, len(args)-1, len(args))

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}

	return collectVideosWithOwner(rows, "videos")
}

// ListByOwner returns the channel's videos, newest first.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, ownerID string, includeUnpublished bool) ([]models.Video, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM videos v
        WHERE v.owner_id = $1 AND ($2 OR v.is_published)
        ORDER BY v.created_at DESC, v.id DESC
    `, ownerID, includeUnpublished)
	if err != nil {
		return nil, fmt.Errorf("query channel videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		var video models.Video
		if err := scanVideo(rows, &video); err != nil {
			return nil, fmt.Errorf("scan channel video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel videos: %w", err)
	}

	return videos, nil
}

// Update applies the non-empty changes and returns the updated video.
func (r *PostgresVideoRepository) Update(ctx context.Context, id string, changes VideoChanges) (models.Video, error) {
	return r.update(ctx, `
        title = COALESCE(NULLIF($2, ''), title),
        description = COALESCE(NULLIF($3, ''), description),
        thumbnail = COALESCE(NULLIF($4, ''), thumbnail)
    `, id, changes.Title, changes.Description, changes.Thumbnail)
}

// SetPublished sets the publish flag and returns the updated video.
func (r *PostgresVideoRepository) SetPublished(ctx context.Context, id string, published bool) (models.Video, error) {
	return r.update(ctx, `is_published = $2`, id, published)
}

func (r *PostgresVideoRepository) update(ctx context.Context, set string, args ...any) (models.Video, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Video{}, err
	}
	defer conn.Release()

	args = append(args, time.Now().UTC())
	query := fmt.Sprintf(`
        UPDATE videos AS v
        SET %s, updated_at = $%d
        WHERE v.id = $1
        RETURNING %s
    `, set, len(args), videoColumns)

	var video models.Video
	if err := scanVideo(conn.QueryRow(ctx, query, args...), &video); err != nil {
		return models.Video{}, mapPgError(err, "update video")
	}

	return video, nil
}

// IncrementViews records a single view.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video record. Comments and watch-history entries cascade.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ChannelStats aggregates the channel's uploads, views, likes and subscribers.
func (r *PostgresVideoRepository) ChannelStats(ctx context.Context, ownerID string) (models.ChannelStats, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.ChannelStats{}, err
	}
	defer conn.Release()

	var stats models.ChannelStats
	err = conn.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM videos WHERE owner_id = $1),
            (SELECT COALESCE(SUM(views), 0)::BIGINT FROM videos WHERE owner_id = $1),
            (SELECT COUNT(*) FROM likes l JOIN videos v ON v.id = l.target_id
                WHERE l.target_kind = $2 AND v.owner_id = $1),
            (SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1)
    `, ownerID, models.LikeTargetVideo).Scan(&stats.TotalVideos, &stats.TotalViews, &stats.TotalLikes, &stats.TotalSubs)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("select channel stats: %w", err)
	}

	return stats, nil
}

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

func scanComment(row scanner, c *models.Comment, extra ...any) error {
	dest := []any{&c.ID, &c.Video, &c.Owner, &c.Content, &c.CreatedAt, &c.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

// Create persists a new comment.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, video_id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, comment.ID, comment.Video, comment.Owner, comment.Content, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return mapPgError(err, "insert comment")
	}

	return nil
}

// FindByID fetches a comment by id.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Comment{}, err
	}
	defer conn.Release()

	var comment models.Comment
	row := conn.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments c WHERE c.id = $1`, id)
	if err := scanComment(row, &comment); err != nil {
		return models.Comment{}, mapPgError(err, "select comment by id")
	}

	return comment, nil
}

// ListByVideo returns a page of the video's comments, newest first.
func (r *PostgresCommentRepository) ListByVideo(ctx context.Context, videoID string, page Page) ([]models.CommentWithOwner, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	page = page.Normalize()
	rows, err := conn.Query(ctx, `
        SELECT `+commentColumns+`, `+authorColumns+`
        FROM comments c
        LEFT JOIN users u ON u.id = c.owner_id
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC, c.id DESC
        LIMIT $2 OFFSET $3
    `, videoID, page.Limit, page.Skip())
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.CommentWithOwner{}
	for rows.Next() {
		var c models.CommentWithOwner
		if err := scanComment(rows, &c.Comment, profileDest(&c.Owner)...); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// UpdateContent replaces the comment text and returns the updated comment.
func (r *PostgresCommentRepository) UpdateContent(ctx context.Context, id, content string) (models.Comment, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return models.Comment{}, err
	}
	defer conn.Release()

	var comment models.Comment
	row := conn.QueryRow(ctx, `
        UPDATE comments AS c
        SET content = $2, updated_at = $3
        WHERE c.id = $1
        RETURNING `+commentColumns, id, content, time.Now().UTC())
	if err := scanComment(row, &comment); err != nil {
		return models.Comment{}, mapPgError(err, "update comment")
	}

	return comment, nil
}

// Delete removes a comment.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteByVideo removes every comment on the video and returns their ids.
func (r *PostgresCommentRepository) DeleteByVideo(ctx context.Context, videoID string) ([]string, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `DELETE FROM comments WHERE video_id = $1 RETURNING id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("delete video comments: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect deleted comment ids: %w", err)
	}

	return ids, nil
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips the subscription of subscriberID to channelID.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, channelID, subscriberID string) (bool, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM subscriptions WHERE channel_id = $1 AND subscriber_id = $2`, channelID, subscriberID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, channel_id, subscriber_id, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (channel_id, subscriber_id) DO NOTHING
    `, models.NewID(), channelID, subscriberID, time.Now().UTC())
	if err != nil {
		return false, mapPgError(err, "insert subscription")
	}

	return true, nil
}

// ListSubscribers returns the public profiles of the channel's subscribers.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.PublicProfile, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC, s.id DESC
    `, channelID)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	profiles := []models.PublicProfile{}
	for rows.Next() {
		var p models.PublicProfile
		if err := rows.Scan(profileDest(&p)...); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}

	return profiles, nil
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle flips the like of userID on the target.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, kind, targetID, userID string) (bool, error) {
	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes WHERE target_kind = $1 AND target_id = $2 AND liked_by = $3
    `, kind, targetID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, target_id, target_kind, liked_by, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (target_kind, target_id, liked_by) DO NOTHING
    `, models.NewID(), targetID, kind, userID, time.Now().UTC())
	if err != nil {
		return false, mapPgError(err, "insert like")
	}

	return true, nil
}

// DeleteForTargets removes every like on the given targets.
func (r *PostgresLikeRepository) DeleteForTargets(ctx context.Context, kind string, targetIDs ...string) error {
	if len(targetIDs) == 0 {
		return nil
	}

	conn, err := acquire(ctx, r.pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM likes WHERE target_kind = $1 AND target_id = ANY($2)`, kind, targetIDs); err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}

	return nil
}

var (
	_ UserRepository         = (*PostgresUserRepository)(nil)
	_ VideoRepository        = (*PostgresVideoRepository)(nil)
	_ CommentRepository      = (*PostgresCommentRepository)(nil)
	_ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
	_ LikeRepository         = (*PostgresLikeRepository)(nil)

	_ UserRepository         = (*MongoUserRepository)(nil)
	_ VideoRepository        = (*MongoVideoRepository)(nil)
	_ CommentRepository      = (*MongoCommentRepository)(nil)
	_ SubscriptionRepository = (*MongoSubscriptionRepository)(nil)
	_ LikeRepository         = (*MongoLikeRepository)(nil)
)
