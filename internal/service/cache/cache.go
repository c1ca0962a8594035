package cache

import (
	"context"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL. The API
// handlers serve last-known DVOL values through it so hot reads never hit
// ClickHouse.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
