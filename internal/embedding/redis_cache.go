package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache stores embeddings in Redis so several processes can share them.
// Keys are namespaced by model so switching models never returns stale vectors.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	URL      string
	Password string
	DB       int
	// Namespace is usually the model name.
	Namespace string
	TTL       time.Duration
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, o RedisOptions, logger *zap.Logger) (*RedisCache, error) {
	opts := &redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	}
	if o.URL != "" {
		parsed, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts = parsed
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("embedding cache connected to Redis", zap.String("addr", opts.Addr))
	return &RedisCache{
		client: client,
		prefix: "foodrec:emb:" + o.Namespace + ":",
		ttl:    o.TTL,
		logger: logger,
	}, nil
}

func (c *RedisCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached embedding for text. Redis errors count as a miss.
func (c *RedisCache) Get(ctx context.Context, text string) ([]float32, bool) {
	b, err := c.client.Get(ctx, c.key(text)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("redis cache get failed", zap.Error(err))
		}
		return nil, false
	}
	v, err := decodeVector(b)
	if err != nil {
		c.logger.Debug("redis cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return v, true
}

// Set stores the embedding for text. Failures are logged and otherwise ignored.
func (c *RedisCache) Set(ctx context.Context, text string, value []float32) {
	if err := c.client.Set(ctx, c.key(text), encodeVector(value), c.ttl).Err(); err != nil {
		c.logger.Debug("redis cache set failed", zap.Error(err))
	}
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func encodeVector(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector payload length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
