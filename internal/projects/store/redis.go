package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"civreg/internal/projects/models"
	id "civreg/pkg/domain"
)

const reactionKeyPrefix = "civreg:reactions:"

// RedisCounters keeps per-project reaction counters in a Redis hash so tally
// reads avoid scanning reaction rows. The durable store stays authoritative;
// counters are adjusted alongside each persisted vote and a missing or empty
// hash reads as the zero tally.
type RedisCounters struct {
	client *redis.Client
}

func NewRedisCounters(client *redis.Client) *RedisCounters {
	return &RedisCounters{client: client}
}

func reactionKey(projectID id.ProjectID) string {
	return reactionKeyPrefix + projectID.String()
}

// Adjust applies one vote change: the new kind is incremented and the
// replaced kind, when present, decremented.
func (c *RedisCounters) Adjust(ctx context.Context, projectID id.ProjectID, kind, previous models.ReactionKind) error {
	if kind == previous {
		return nil
	}
	key := reactionKey(projectID)
	pipe := c.client.TxPipeline()
	pipe.HIncrBy(ctx, key, string(kind), 1)
	if previous != "" {
		pipe.HIncrBy(ctx, key, string(previous), -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("adjust reaction counters: %w", err)
	}
	return nil
}

// Tally reads one project's counters. A missing hash yields the zero tally.
func (c *RedisCounters) Tally(ctx context.Context, projectID id.ProjectID) (models.Tally, error) {
	fields, err := c.client.HGetAll(ctx, reactionKey(projectID)).Result()
	if err != nil {
		return models.Tally{}, fmt.Errorf("read reaction counters: %w", err)
	}
	return tallyFromFields(fields), nil
}

// TallyAll reads counters for a set of projects in one round trip per key.
func (c *RedisCounters) TallyAll(ctx context.Context, projectIDs []id.ProjectID) (map[id.ProjectID]models.Tally, error) {
	pipe := c.client.Pipeline()
	cmds := make(map[id.ProjectID]*redis.MapStringStringCmd, len(projectIDs))
	for _, pid := range projectIDs {
		cmds[pid] = pipe.HGetAll(ctx, reactionKey(pid))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("read reaction counters: %w", err)
	}
	out := make(map[id.ProjectID]models.Tally, len(projectIDs))
	for pid, cmd := range cmds {
		out[pid] = tallyFromFields(cmd.Val())
	}
	return out, nil
}

// Rebuild overwrites a project's counters from an authoritative tally, used
// when the cache and the durable store drift.
func (c *RedisCounters) Rebuild(ctx context.Context, projectID id.ProjectID, t models.Tally) error {
	key := reactionKey(projectID)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		string(models.ReactionLike), t.Like,
		string(models.ReactionDislike), t.Dislike,
	)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuild reaction counters: %w", err)
	}
	return nil
}

func tallyFromFields(fields map[string]string) models.Tally {
	var t models.Tally
	if v, err := strconv.ParseInt(fields[string(models.ReactionLike)], 10, 64); err == nil {
		t.Like = v
	}
	if v, err := strconv.ParseInt(fields[string(models.ReactionDislike)], 10, 64); err == nil {
		t.Dislike = v
	}
	return t
}
