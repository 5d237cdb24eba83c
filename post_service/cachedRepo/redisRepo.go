package cachedRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MinhaulMahmud/PersonalBlog/post_service/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	postTTL     = 24 * time.Hour
	countersTTL = 5 * time.Minute
)

type redisRepo struct {
	redisClient redis.UniversalClient
	logger      *zap.Logger
}

// NewRedisRepo connects to a single node or a cluster depending on len(addrs).
func NewRedisRepo(addrs []string, pass string, logger *zap.Logger) (*redisRepo, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		Password: pass,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return NewRedisRepoFromClient(client, logger), nil
}

func NewRedisRepoFromClient(client redis.UniversalClient, logger *zap.Logger) *redisRepo {
	return &redisRepo{
		redisClient: client,
		logger:      logger,
	}
}

func (rs *redisRepo) Client() redis.UniversalClient {
	return rs.redisClient
}

func postKey(id string) string {
	return fmt.Sprintf("post:%v", id)
}

func countersKey(id string) string {
	return fmt.Sprintf("post:%v:counters", id)
}

// raiseCounters sets each counter only when the new value is higher. A row
// read before a concurrent increment, or increments answered out of order,
// must never pull the cached counts back down.
var raiseCounters = redis.NewScript(`
local fields = {'views', 'reads'}
for i, field in ipairs(fields) do
  local cur = tonumber(redis.call('HGET', KEYS[1], field))
  local new = tonumber(ARGV[i])
  if cur == nil or new > cur then
    redis.call('HSET', KEYS[1], field, ARGV[i])
  end
end
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

func (rs *redisRepo) raise(ctx context.Context, id string, views, reads int64) error {
	return raiseCounters.Run(ctx, rs.redisClient, []string{countersKey(id)},
		views, reads, countersTTL.Milliseconds()).Err()
}

func (rs *redisRepo) CachePost(ctx context.Context, post models.Post) error {
	data, err := json.Marshal(post.CachedPost)
	if err != nil {
		return err
	}
	if err := rs.redisClient.Set(ctx, postKey(post.Id), data, postTTL).Err(); err != nil {
		return err
	}
	return rs.raise(ctx, post.Id, post.ViewCount, post.ReadCount)
}

func (rs *redisRepo) GetPost(ctx context.Context, id string) (models.Post, error) {
	pipe := rs.redisClient.Pipeline()
	postCmd := pipe.Get(ctx, postKey(id))
	cntCmd := pipe.HGetAll(ctx, countersKey(id))
	_, err := pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.Post{}, err
	}

	data, err := postCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Post{}, ErrCacheMiss
	}
	if err != nil {
		return models.Post{}, err
	}
	var post models.Post
	if err := json.Unmarshal(data, &post.CachedPost); err != nil {
		rs.logger.Warn("Error in UnMarshal cached post", zap.String("post_id", id), zap.Error(err))
		return models.Post{}, ErrCacheMiss
	}

	cnt, ok := parseCounters(id, cntCmd.Val(), rs.logger)
	if !ok {
		return post, ErrCountersMiss
	}
	post.ViewCount = cnt.Views
	post.ReadCount = cnt.Reads
	return post, nil
}

func (rs *redisRepo) DeletePost(ctx context.Context, id string) error {
	return rs.redisClient.Del(ctx, postKey(id), countersKey(id)).Err()
}

// SetCounters stores the counts the database returned, keeping any higher
// values already cached.
func (rs *redisRepo) SetCounters(ctx context.Context, cnt models.CachedCounter) error {
	return rs.raise(ctx, cnt.Id, cnt.Views, cnt.Reads)
}

func (rs *redisRepo) Close() {
	if err := rs.redisClient.Close(); err != nil {
		rs.logger.Error("Error closing redis client", zap.Error(err))
		return
	}
	rs.logger.Info("Redis client closed Successfully")
}

func parseCounters(id string, cnt map[string]string, logger *zap.Logger) (models.CachedCounter, bool) {
	res := models.CachedCounter{Id: id}
	if len(cnt) == 0 {
		return res, false
	}
	for key, dst := range map[string]*int64{"views": &res.Views, "reads": &res.Reads} {
		v, ok := cnt[key]
		if !ok {
			return res, false
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			logger.Warn("Error in parsing counter", zap.String("post_id", id), zap.String("counter", key), zap.Error(err))
			return res, false
		}
		*dst = n
	}
	return res, true
}
