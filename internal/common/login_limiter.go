package common

import (
	"context"
	"strconv"

	"github.com/trabach-softwares/ouro-rifa-api/pkg/errorx"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xcontext"
	"github.com/trabach-softwares/ouro-rifa-api/pkg/xredis"
)

// LoginLimiter counts failed logins per email inside a fixed redis window.
// A nil redis client disables limiting.
type LoginLimiter struct {
	redisClient xredis.Client
}

func NewLoginLimiter(redisClient xredis.Client) *LoginLimiter {
	return &LoginLimiter{redisClient: redisClient}
}

func (l *LoginLimiter) Check(ctx context.Context, email string) error {
	if l.redisClient == nil {
		return nil
	}

	maxAttempts := xcontext.Configs(ctx).Auth.MaxLoginAttempts
	if maxAttempts <= 0 {
		return nil
	}

	value, err := l.redisClient.Get(ctx, RedisKeyLoginAttempts(email))
	if err != nil {
		// Key missing or redis unreachable, do not block the login.
		return nil
	}

	attempts, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}

	if attempts >= maxAttempts {
		return errorx.New(errorx.TooManyRequests, "Too many login attempts, try again later")
	}

	return nil
}

func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) {
	if l.redisClient == nil {
		return
	}

	key := RedisKeyLoginAttempts(email)
	count, err := l.redisClient.Incr(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot record login failure: %v", err)
		return
	}

	if count == 1 {
		window := xcontext.Configs(ctx).Auth.LoginAttemptsWindow
		if err := l.redisClient.Expire(ctx, key, window); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot set login window: %v", err)
		}
	}
}

func (l *LoginLimiter) Reset(ctx context.Context, email string) {
	if l.redisClient == nil {
		return
	}

	if err := l.redisClient.Del(ctx, RedisKeyLoginAttempts(email)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot reset login attempts: %v", err)
	}
}
