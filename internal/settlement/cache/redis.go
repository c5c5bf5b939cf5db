package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/fkhayef/splitsettle/internal/planner"
)

const (
	defaultPrefix = "splitsettle"
	maxRetries    = 5
)

// Redis is a Cache shared by every API instance. The version is an INCR
// counter and in-flight writes are a counter expiring after WriteLease.
// Put and EndWrite run under WATCH so concurrent writes abort them.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a cache on client. Keys are namespaced by prefix.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// NewRedisFromURL parses a redis:// URL and pings the server
func NewRedisFromURL(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedis(client, ""), nil
}

// Close closes the underlying client
func (c *Redis) Close() error {
	return c.client.Close()
}

func (c *Redis) versionKey(groupID string) string {
	return c.prefix + ":plan-version:" + groupID
}

func (c *Redis) writersKey(groupID string) string {
	return c.prefix + ":plan-writers:" + groupID
}

func (c *Redis) planKey(groupID string) string {
	return c.prefix + ":plan:" + groupID
}

func (c *Redis) Version(ctx context.Context, groupID string) (Stamp, error) {
	return c.readStamp(ctx, c.client, groupID)
}

func (c *Redis) Get(ctx context.Context, groupID string) ([]planner.Transaction, bool, error) {
	raw, err := c.client.Get(ctx, c.planKey(groupID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached plan: %w", err)
	}

	var plan []planner.Transaction
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached plan: %w", err)
	}
	if plan == nil {
		plan = []planner.Transaction{}
	}
	return plan, true, nil
}

func (c *Redis) Put(ctx context.Context, groupID string, stamp Stamp, plan []planner.Transaction) (bool, error) {
	if stamp.Writing {
		return false, nil
	}
	raw, err := json.Marshal(plan)
	if err != nil {
		return false, fmt.Errorf("failed to encode plan: %w", err)
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.readStamp(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if current != stamp {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.planKey(groupID), raw, 0)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, c.versionKey(groupID), c.writersKey(groupID))

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to store plan: %w", err)
	}
	return stored, nil
}

func (c *Redis) BeginWrite(ctx context.Context, groupID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey(groupID))
		pipe.Incr(ctx, c.writersKey(groupID))
		pipe.PExpire(ctx, c.writersKey(groupID), WriteLease)
		pipe.Del(ctx, c.planKey(groupID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to begin plan write: %w", err)
	}
	return nil
}

func (c *Redis) EndWrite(ctx context.Context, groupID string) error {
	writersKey := c.writersKey(groupID)
	for i := 0; i < maxRetries; i++ {
		err := c.client.Watch(ctx, func(tx *redis.Tx) error {
			writers, err := readCounter(tx.Get(ctx, writersKey))
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Incr(ctx, c.versionKey(groupID))
				if writers > 1 {
					pipe.Set(ctx, writersKey, writers-1, WriteLease)
				} else {
					pipe.Del(ctx, writersKey)
				}
				pipe.Del(ctx, c.planKey(groupID))
				return nil
			})
			return err
		}, writersKey)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to end plan write: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed to end plan write: %w", redis.TxFailedErr)
}

type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *Redis) readStamp(ctx context.Context, r reader, groupID string) (Stamp, error) {
	version, err := readCounter(r.Get(ctx, c.versionKey(groupID)))
	if err != nil {
		return Stamp{}, fmt.Errorf("failed to read plan version: %w", err)
	}
	writers, err := readCounter(r.Get(ctx, c.writersKey(groupID)))
	if err != nil {
		return Stamp{}, fmt.Errorf("failed to read plan writers: %w", err)
	}
	return Stamp{Version: uint64(version), Writing: writers > 0}, nil
}

func readCounter(cmd *redis.StringCmd) (int64, error) {
	raw, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}
