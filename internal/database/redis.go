package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients splits redis usage across two connections: Tokens holds
// refresh tokens for the auth service, PubSub carries leaderboard updates
// between the game service and the websocket hub.
type RedisClients struct {
	Tokens *redis.Client
	PubSub *redis.Client
}

func NewRedisClients(redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Token store client
	tokenClient := redis.NewClient(opt)
	if err := tokenClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis (tokens): %w", err)
	}

	// PubSub client (separate connection)
	pubsubOpt := *opt
	pubsubClient := redis.NewClient(&pubsubOpt)
	if err := pubsubClient.Ping(ctx).Err(); err != nil {
		tokenClient.Close()
		return nil, fmt.Errorf("failed to ping Redis (pubsub): %w", err)
	}

	return &RedisClients{
		Tokens: tokenClient,
		PubSub: pubsubClient,
	}, nil
}

func (r *RedisClients) Close() {
	r.Tokens.Close()
	r.PubSub.Close()
}
