package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	rateKeyTpl = "upload-rate:%s:%d" // upload-rate:${upload_code}:${window}
	lockKeyTpl = "upload-lock:%d"    // upload-lock:${student_id}
)

var ErrLocked = errors.New("another upload is in progress")

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// UploadGuard rate limits uploads per upload code and serialises uploads of
// one student across server instances.
type UploadGuard struct {
	redis     *redis.Client
	rateLimit int64
	window    time.Duration
	lockTTL   time.Duration
	now       func() time.Time
}

// NewUploadGuard returns nil when no redis URL is configured.
func NewUploadGuard(config *Config) (*UploadGuard, error) {
	if config.Redis.URL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(config.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &UploadGuard{
		redis:     client,
		rateLimit: int64(config.Redis.RateLimit),
		window:    time.Duration(config.Redis.RateWindowSeconds) * time.Second,
		lockTTL:   time.Duration(config.Redis.LockTTLSeconds) * time.Second,
		now:       time.Now,
	}, nil
}

func (g *UploadGuard) Close() error {
	if g != nil && g.redis != nil {
		return g.redis.Close()
	}
	return nil
}

// Allow counts one upload attempt for uploadCode in the current fixed
// window and reports whether it is within the limit.
func (g *UploadGuard) Allow(ctx context.Context, uploadCode string) (bool, error) {
	window := g.now().Unix() / int64(g.window/time.Second)
	key := fmt.Sprintf(rateKeyTpl, uploadCode, window)

	pipe := g.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, g.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to count upload attempt: %w", err)
	}

	return incr.Val() <= g.rateLimit, nil
}

// Lock takes the per-student upload lock. The returned func releases it
// unless the lock already expired and was taken by someone else.
func (g *UploadGuard) Lock(ctx context.Context, studentID int64) (func(), error) {
	token, err := generateLockToken()
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf(lockKeyTpl, studentID)
	ok, err := g.redis.SetNX(ctx, key, token, g.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to take upload lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		// the request context may already be cancelled here
		if err := unlockScript.Run(context.Background(), g.redis, []string{key}, token).Err(); err != nil {
			logger.Error.Printf("Failed to release %s: %v", key, err)
		}
	}, nil
}

func generateLockToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(randomBytes), nil
}
