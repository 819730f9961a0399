package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still carries our token.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// ErrLockNotHeld is returned by Release when the lock expired or was taken
// over by another instance.
var ErrLockNotHeld = errors.New("job lock not held by this token")

// JobLock implements ports.JobLock with SET NX PX.
type JobLock struct {
	client goredis.UniversalClient
	prefix string
}

// NewJobLock creates a Redis-backed batch job lock.
func NewJobLock(client goredis.UniversalClient) *JobLock {
	return &JobLock{client: client, prefix: "joblock:"}
}

// Acquire takes the lock for ttl. ok is false when another holder has it.
func (l *JobLock) Acquire(ctx context.Context, job string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+job, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire job lock %s: %w", job, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock if token still owns it.
func (l *JobLock) Release(ctx context.Context, job, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.prefix + job}, token).Int()
	if err != nil {
		return fmt.Errorf("release job lock %s: %w", job, err)
	}
	if n == 0 {
		return fmt.Errorf("release job lock %s: %w", job, ErrLockNotHeld)
	}
	return nil
}
