package postRepo

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/MinhaulMahmud/PersonalBlog/post_service/db"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRepo(t *testing.T) *SqliteRepo {
	t.Helper()
	logger := zaptest.NewLogger(t)
	conn, err := db.InitSqlite(filepath.Join(t.TempDir(), "blog.db"), logger)
	require.NoError(t, err)
	repo := NewSqliteRepo(conn, logger)
	t.Cleanup(repo.Close)
	return repo
}

func testPost(title string) models.Post {
	return models.Post{CachedPost: models.CachedPost{
		Title:          title,
		Content:        "<p>" + title + "</p>",
		Category:       "go",
		ImageURL:       "https://img.example/" + title + ".png",
		ReadTime:       4,
		SEOTitle:       title + " | Blog",
		SEODescription: "about " + title,
		SEOKeywords:    []string{"go", "blog"},
	}}
}

func TestSqliteCreateAndGetPost(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreatePost(ctx, testPost("first"))
	require.NoError(t, err)
	require.Len(t, id, 26)

	post, err := repo.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, post.Id)
	assert.Equal(t, "first", post.Title)
	assert.Equal(t, "go", post.Category)
	assert.Equal(t, int64(4), post.ReadTime)
	assert.Equal(t, []string{"go", "blog"}, post.SEOKeywords)
	assert.Zero(t, post.ViewCount)
	assert.Zero(t, post.ReadCount)
	assert.False(t, post.CreatedAt.IsZero())
}

func TestSqliteGetMissingPost(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetPost(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSqliteIncrements(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id, err := repo.CreatePost(ctx, testPost("counted"))
	require.NoError(t, err)

	cnt, err := repo.IncrementViewCount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.CachedCounter{Id: id, Views: 1, Reads: 0}, cnt)

	cnt, err = repo.IncrementReadCount(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.CachedCounter{Id: id, Views: 1, Reads: 1}, cnt)

	_, err = repo.IncrementViewCount(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.IncrementReadCount(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSqliteConcurrentIncrementsAreNotLost(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id, err := repo.CreatePost(ctx, testPost("busy"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementViewCount(ctx, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	post, err := repo.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(20), post.ViewCount)
}

func TestSqliteUpdateAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	id, err := repo.CreatePost(ctx, testPost("draft"))
	require.NoError(t, err)

	updated := testPost("final")
	updated.Id = id
	updated.SEOKeywords = nil
	require.NoError(t, repo.UpdatePost(ctx, updated))

	post, err := repo.GetPost(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "final", post.Title)
	assert.Empty(t, post.SEOKeywords)

	missing := testPost("ghost")
	missing.Id = "ghost"
	assert.ErrorIs(t, repo.UpdatePost(ctx, missing), ErrNotFound)

	require.NoError(t, repo.DeletePost(ctx, id))
	_, err = repo.GetPost(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeletePost(ctx, id), ErrNotFound)
}

func TestSqliteListAndStats(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	stats, err := repo.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{}, stats)

	first, err := repo.CreatePost(ctx, testPost("one"))
	require.NoError(t, err)
	second, err := repo.CreatePost(ctx, testPost("two"))
	require.NoError(t, err)

	_, err = repo.IncrementViewCount(ctx, first)
	require.NoError(t, err)
	_, err = repo.IncrementViewCount(ctx, second)
	require.NoError(t, err)
	_, err = repo.IncrementReadCount(ctx, second)
	require.NoError(t, err)

	posts, err := repo.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second, posts[0].Id)
	assert.Equal(t, first, posts[1].Id)

	stats, err = repo.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardStats{TotalPosts: 2, TotalViews: 2, TotalReads: 1}, stats)

	cnts, err := repo.GetCounters(ctx, []string{first, "missing", second})
	require.NoError(t, err)
	assert.Equal(t, []models.CachedCounter{
		{Id: first, Views: 1, Reads: 0},
		{Id: second, Views: 1, Reads: 1},
	}, cnts)
}
