package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long cached embeddings live.
const DefaultCacheTTL = 24 * time.Hour

// Cached decorates a Service with a Redis/Dragonfly cache keyed by
// model+text. Cache failures degrade to direct calls, never to errors.
type Cached struct {
	inner  Service
	client *redis.Client
	model  string
	ttl    time.Duration
}

// NewCached wraps svc with a cache. model distinguishes vectors produced by
// different embedding models.
func NewCached(svc Service, client *redis.Client, model string, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{inner: svc, client: client, model: model, ttl: ttl}
}

func (c *Cached) key(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return "emb:" + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector when present, otherwise delegates and
// stores the result.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)
	if data, err := c.client.Get(ctx, key).Bytes(); err == nil {
		if vec, ok := decodeVector(data); ok {
			return vec, nil
		}
	} else if err != redis.Nil {
		slog.Warn("embedding cache read failed", "error", err)
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, key, encodeVector(vec), c.ttl).Err(); err != nil {
		slog.Warn("embedding cache write failed", "error", err)
	}
	return vec, nil
}

// EmbedBatch embeds each text through the cache.
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, bool) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, true
}
