package postRepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MinhaulMahmud/PersonalBlog/post_service/models"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresRepo struct {
	primaryDB *sql.DB // For writes
	replicaDB *sql.DB // For reads
	logger    *zap.Logger
}

func NewPostgresRepo(primaryDB, replicaDB *sql.DB, logger *zap.Logger) *PostgresRepo {
	return &PostgresRepo{
		primaryDB: primaryDB,
		replicaDB: replicaDB,
		logger:    logger,
	}
}

const postgresPostColumns = `post_id, title, content, category, image_url, read_time,
	seo_title, seo_description, seo_keywords, view_count, read_count, created_at, updated_at`

// Write operations use primaryDB
func (ps *PostgresRepo) CreatePost(ctx context.Context, post models.Post) (string, error) {
	postID := newPostID()
	_, err := ps.primaryDB.ExecContext(ctx,
		`INSERT INTO posts (post_id, title, content, category, image_url, read_time,
			seo_title, seo_description, seo_keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		postID, post.Title, post.Content, post.Category, post.ImageURL, post.ReadTime,
		post.SEOTitle, post.SEODescription, pq.Array(post.SEOKeywords))
	if err != nil {
		ps.logger.Error("Error creating post", zap.Error(err))
		return "", err
	}
	return postID, nil
}

func (ps *PostgresRepo) UpdatePost(ctx context.Context, post models.Post) error {
	res, err := ps.primaryDB.ExecContext(ctx,
		`UPDATE posts SET title = $2, content = $3, category = $4, image_url = $5, read_time = $6,
			seo_title = $7, seo_description = $8, seo_keywords = $9, updated_at = now()
		WHERE post_id = $1`,
		post.Id, post.Title, post.Content, post.Category, post.ImageURL, post.ReadTime,
		post.SEOTitle, post.SEODescription, pq.Array(post.SEOKeywords))
	if err != nil {
		ps.logger.Error("Error updating post", zap.String("post_id", post.Id), zap.Error(err))
		return err
	}
	return expectOneRow(res)
}

func (ps *PostgresRepo) DeletePost(ctx context.Context, id string) error {
	res, err := ps.primaryDB.ExecContext(ctx,
		`DELETE FROM posts WHERE post_id = $1`, id)
	if err != nil {
		ps.logger.Error("Error deleting post", zap.String("post_id", id), zap.Error(err))
		return err
	}
	return expectOneRow(res)
}

func (ps *PostgresRepo) IncrementViewCount(ctx context.Context, id string) (models.CachedCounter, error) {
	return ps.increment(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE post_id = $1
		RETURNING post_id, view_count, read_count`, id)
}

func (ps *PostgresRepo) IncrementReadCount(ctx context.Context, id string) (models.CachedCounter, error) {
	return ps.increment(ctx,
		`UPDATE posts SET read_count = read_count + 1 WHERE post_id = $1
		RETURNING post_id, view_count, read_count`, id)
}

func (ps *PostgresRepo) increment(ctx context.Context, query, id string) (models.CachedCounter, error) {
	var cnt models.CachedCounter
	err := ps.primaryDB.QueryRowContext(ctx, query, id).Scan(&cnt.Id, &cnt.Views, &cnt.Reads)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CachedCounter{}, ErrNotFound
	}
	if err != nil {
		ps.logger.Error("Error incrementing counter", zap.String("post_id", id), zap.Error(err))
		return models.CachedCounter{}, err
	}
	return cnt, nil
}

// Read operations use replicaDB
func (ps *PostgresRepo) GetPost(ctx context.Context, id string) (models.Post, error) {
	row := ps.replicaDB.QueryRowContext(ctx,
		`SELECT `+postgresPostColumns+` FROM posts WHERE post_id = $1`, id)
	post, err := scanPostgresPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, ErrNotFound
	}
	if err != nil {
		ps.logger.Error("Error querying post", zap.String("post_id", id), zap.Error(err))
		return models.Post{}, err
	}
	return post, nil
}

func (ps *PostgresRepo) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := ps.replicaDB.QueryContext(ctx,
		`SELECT `+postgresPostColumns+` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		ps.logger.Error("Error querying posts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPostgresPost(rows)
		if err != nil {
			ps.logger.Error("Error scanning post row", zap.Error(err))
			return nil, err
		}
		posts = append(posts, post)
	}
	if err = rows.Err(); err != nil {
		ps.logger.Error("Error iterating post rows", zap.Error(err))
		return nil, err
	}
	return posts, nil
}

func (ps *PostgresRepo) GetCounters(ctx context.Context, ids []string) ([]models.CachedCounter, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := ps.replicaDB.QueryContext(ctx,
		`SELECT post_id, view_count, read_count FROM posts WHERE post_id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		ps.logger.Error("Error querying counters", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	cnts := make([]models.CachedCounter, 0, len(ids))
	for rows.Next() {
		var cnt models.CachedCounter
		if err := rows.Scan(&cnt.Id, &cnt.Views, &cnt.Reads); err != nil {
			ps.logger.Error("Error scanning counter row", zap.Error(err))
			return nil, err
		}
		cnts = append(cnts, cnt)
	}
	if err = rows.Err(); err != nil {
		ps.logger.Error("Error iterating counter rows", zap.Error(err))
		return nil, err
	}
	return cnts, nil
}

func (ps *PostgresRepo) GetDashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	err := ps.replicaDB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(view_count), 0), COALESCE(SUM(read_count), 0) FROM posts`).
		Scan(&stats.TotalPosts, &stats.TotalViews, &stats.TotalReads)
	if err != nil {
		ps.logger.Error("Error querying dashboard stats", zap.Error(err))
		return models.DashboardStats{}, err
	}
	return stats, nil
}

func (ps *PostgresRepo) Close() {
	if err := ps.primaryDB.Close(); err != nil {
		ps.logger.Error("Error closing primary DB", zap.Error(err))
	} else {
		ps.logger.Info("PrimaryDB closed Successfully")
	}
	if err := ps.replicaDB.Close(); err != nil {
		ps.logger.Error("Error closing replica DB", zap.Error(err))
	} else {
		ps.logger.Info("ReplicaDB closed Successfully")
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPostgresPost(row rowScanner) (models.Post, error) {
	var post models.Post
	var keywords pq.StringArray
	err := row.Scan(&post.Id, &post.Title, &post.Content, &post.Category, &post.ImageURL, &post.ReadTime,
		&post.SEOTitle, &post.SEODescription, &keywords, &post.ViewCount, &post.ReadCount,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return models.Post{}, err
	}
	post.SEOKeywords = []string(keywords)
	return post, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
