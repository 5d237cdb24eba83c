package postRepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/MinhaulMahmud/PersonalBlog/post_service/models"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SqliteRepo serves single-node deployments. Reads and writes share one handle.
// Timestamps are unix milliseconds and keywords a JSON array.
type SqliteRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSqliteRepo(db *sql.DB, logger *zap.Logger) *SqliteRepo {
	return &SqliteRepo{db: db, logger: logger}
}

const sqlitePostColumns = `post_id, title, content, category, image_url, read_time,
	seo_title, seo_description, seo_keywords, view_count, read_count, created_at, updated_at`

func (sr *SqliteRepo) CreatePost(ctx context.Context, post models.Post) (string, error) {
	keywords, err := encodeKeywords(post.SEOKeywords)
	if err != nil {
		return "", err
	}
	postID := newPostID()
	now := time.Now().UnixMilli()
	_, err = sr.db.ExecContext(ctx,
		`INSERT INTO posts (post_id, title, content, category, image_url, read_time,
			seo_title, seo_description, seo_keywords, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		postID, post.Title, post.Content, post.Category, post.ImageURL, post.ReadTime,
		post.SEOTitle, post.SEODescription, keywords, now, now)
	if err != nil {
		sr.logger.Error("Error creating post", zap.Error(err))
		return "", err
	}
	return postID, nil
}

func (sr *SqliteRepo) UpdatePost(ctx context.Context, post models.Post) error {
	keywords, err := encodeKeywords(post.SEOKeywords)
	if err != nil {
		return err
	}
	res, err := sr.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, category = ?, image_url = ?, read_time = ?,
			seo_title = ?, seo_description = ?, seo_keywords = ?, updated_at = ?
		WHERE post_id = ?`,
		post.Title, post.Content, post.Category, post.ImageURL, post.ReadTime,
		post.SEOTitle, post.SEODescription, keywords, time.Now().UnixMilli(), post.Id)
	if err != nil {
		sr.logger.Error("Error updating post", zap.String("post_id", post.Id), zap.Error(err))
		return err
	}
	return expectOneRow(res)
}

func (sr *SqliteRepo) DeletePost(ctx context.Context, id string) error {
	res, err := sr.db.ExecContext(ctx, `DELETE FROM posts WHERE post_id = ?`, id)
	if err != nil {
		sr.logger.Error("Error deleting post", zap.String("post_id", id), zap.Error(err))
		return err
	}
	return expectOneRow(res)
}

func (sr *SqliteRepo) IncrementViewCount(ctx context.Context, id string) (models.CachedCounter, error) {
	return sr.increment(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE post_id = ?
		RETURNING post_id, view_count, read_count`, id)
}

func (sr *SqliteRepo) IncrementReadCount(ctx context.Context, id string) (models.CachedCounter, error) {
	return sr.increment(ctx,
		`UPDATE posts SET read_count = read_count + 1 WHERE post_id = ?
		RETURNING post_id, view_count, read_count`, id)
}

func (sr *SqliteRepo) increment(ctx context.Context, query, id string) (models.CachedCounter, error) {
	var cnt models.CachedCounter
	err := sr.db.QueryRowContext(ctx, query, id).Scan(&cnt.Id, &cnt.Views, &cnt.Reads)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CachedCounter{}, ErrNotFound
	}
	if err != nil {
		sr.logger.Error("Error incrementing counter", zap.String("post_id", id), zap.Error(err))
		return models.CachedCounter{}, err
	}
	return cnt, nil
}

func (sr *SqliteRepo) GetPost(ctx context.Context, id string) (models.Post, error) {
	row := sr.db.QueryRowContext(ctx,
		`SELECT `+sqlitePostColumns+` FROM posts WHERE post_id = ?`, id)
	post, err := scanSqlitePost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, ErrNotFound
	}
	if err != nil {
		sr.logger.Error("Error querying post", zap.String("post_id", id), zap.Error(err))
		return models.Post{}, err
	}
	return post, nil
}

func (sr *SqliteRepo) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := sr.db.QueryContext(ctx,
		`SELECT `+sqlitePostColumns+` FROM posts ORDER BY created_at DESC, post_id DESC`)
	if err != nil {
		sr.logger.Error("Error querying posts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanSqlitePost(rows)
		if err != nil {
			sr.logger.Error("Error scanning post row", zap.Error(err))
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (sr *SqliteRepo) GetCounters(ctx context.Context, ids []string) ([]models.CachedCounter, error) {
	cnts := make([]models.CachedCounter, 0, len(ids))
	for _, id := range ids {
		var cnt models.CachedCounter
		err := sr.db.QueryRowContext(ctx,
			`SELECT post_id, view_count, read_count FROM posts WHERE post_id = ?`, id).
			Scan(&cnt.Id, &cnt.Views, &cnt.Reads)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			sr.logger.Error("Error querying counters", zap.String("post_id", id), zap.Error(err))
			return nil, err
		}
		cnts = append(cnts, cnt)
	}
	return cnts, nil
}

func (sr *SqliteRepo) GetDashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	err := sr.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(view_count), 0), COALESCE(SUM(read_count), 0) FROM posts`).
		Scan(&stats.TotalPosts, &stats.TotalViews, &stats.TotalReads)
	if err != nil {
		sr.logger.Error("Error querying dashboard stats", zap.Error(err))
		return models.DashboardStats{}, err
	}
	return stats, nil
}

func (sr *SqliteRepo) Close() {
	if err := sr.db.Close(); err != nil {
		sr.logger.Error("Error closing sqlite DB", zap.Error(err))
		return
	}
	sr.logger.Info("SqliteDB closed Successfully")
}

func scanSqlitePost(row rowScanner) (models.Post, error) {
	var post models.Post
	var keywords string
	var createdAt, updatedAt int64
	err := row.Scan(&post.Id, &post.Title, &post.Content, &post.Category, &post.ImageURL, &post.ReadTime,
		&post.SEOTitle, &post.SEODescription, &keywords, &post.ViewCount, &post.ReadCount,
		&createdAt, &updatedAt)
	if err != nil {
		return models.Post{}, err
	}
	if keywords != "" {
		if err := json.Unmarshal([]byte(keywords), &post.SEOKeywords); err != nil {
			return models.Post{}, err
		}
	}
	post.CreatedAt = time.UnixMilli(createdAt).UTC()
	post.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return post, nil
}

func encodeKeywords(keywords []string) (string, error) {
	if len(keywords) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(keywords)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
