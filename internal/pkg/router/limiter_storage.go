package router

import (
	"net"
	"strconv"

	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"
)

// limiterDatabase keeps rate-limit counters apart from the cache (DB 0).
const limiterDatabase = 1

// NewLimiterStorage builds fiber limiter storage on the same Redis server as client.
func NewLimiterStorage(client *goredis.Client) *redis.Storage {
	host := "localhost"
	port := 6379
	password := ""
	if client != nil {
		if h, p, err := net.SplitHostPort(client.Options().Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		password = client.Options().Password
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: limiterDatabase,
		Reset:    false,
	})
}
