package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/concursoprep/backend/internal/logger"
)

// RetrievalCache is a best-effort redis cache for retrieval responses keyed
// by normalized query + limit. Misses and redis failures both fall through to
// the database; only Get signals a hit.
type RetrievalCache interface {
	Get(ctx context.Context, query string, limit int) ([]byte, bool)
	Set(ctx context.Context, query string, limit int, payload []byte)
	Close() error
}

type retrievalCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRetrievalCache connects to redis at REDIS_ADDR. Callers treat a nil
// cache as disabled, so a missing address is an error here rather than a
// silent no-op.
func NewRetrievalCache(log *logger.Logger) (RetrievalCache, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &retrievalCache{
		log: log.With("service", "RetrievalCache"),
		rdb: rdb,
		ttl: 5 * time.Minute,
	}, nil
}

func (c *retrievalCache) key(query string, limit int) string {
	return fmt.Sprintf("retrieval:%d:%s", limit, strings.ToLower(strings.TrimSpace(query)))
}

func (c *retrievalCache) Get(ctx context.Context, query string, limit int) ([]byte, bool) {
	raw, err := c.rdb.Get(ctx, c.key(query, limit)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("retrieval cache get failed", "error", err)
		}
		return nil, false
	}
	return raw, true
}

func (c *retrievalCache) Set(ctx context.Context, query string, limit int, payload []byte) {
	if err := c.rdb.Set(ctx, c.key(query, limit), payload, c.ttl).Err(); err != nil {
		c.log.Warn("retrieval cache set failed", "error", err)
	}
}

func (c *retrievalCache) Close() error {
	return c.rdb.Close()
}
