package words

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisMemo keeps accepted words in one Redis set per length.
// Entries never expire: acceptance is monotonic.
type RedisMemo struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisMemo(rdb *redis.Client, prefix string) *RedisMemo {
	if prefix == "" {
		prefix = "wordplay:accepted:"
	}
	return &RedisMemo{rdb: rdb, prefix: prefix}
}

func (m *RedisMemo) key(length int) string { return m.prefix + strconv.Itoa(length) }

func (m *RedisMemo) Has(ctx context.Context, text string, length int) (bool, error) {
	return m.rdb.SIsMember(ctx, m.key(length), text).Result()
}

func (m *RedisMemo) Add(ctx context.Context, text string, length int) error {
	return m.rdb.SAdd(ctx, m.key(length), text).Err()
}
