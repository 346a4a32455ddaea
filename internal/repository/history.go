package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const historyKeyPrefix = "history:"

// HistoryRepository keeps the most recent finished matches of each session.
type HistoryRepository interface {
	Append(ctx context.Context, result entity.MatchResult) error
	List(ctx context.Context, sessionID string) ([]entity.MatchResult, error)
}

type dbHistory struct {
	client *redis.Client
	limit  int64
	ttl    time.Duration
}

// NewHistoryRepository - limit caps the entries kept per session, ttl expires
// the whole list after the last append. Zero disables either bound.
func NewHistoryRepository(client *redis.Client, limit int64, ttl time.Duration) HistoryRepository {
	return &dbHistory{
		client: client,
		limit:  limit,
		ttl:    ttl,
	}
}

func historyKey(sessionID string) string {
	return historyKeyPrefix + sessionID
}

func (that *dbHistory) Append(ctx context.Context, result entity.MatchResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal match result: %w", err)
	}

	key := historyKey(result.SessionID)

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, resultJSON)

		if that.limit > 0 {
			pipe.LTrim(ctx, key, 0, that.limit-1)
		}

		if that.ttl > 0 {
			pipe.Expire(ctx, key, that.ttl)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append match result: %w", err)
	}

	return nil
}

// List - returns the session's matches, newest first. An unknown session has none.
func (that *dbHistory) List(ctx context.Context, sessionID string) ([]entity.MatchResult, error) {
	entries, err := that.client.LRange(ctx, historyKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	results := make([]entity.MatchResult, 0, len(entries))
	for _, entry := range entries {
		var result entity.MatchResult
		if err = json.Unmarshal([]byte(entry), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match result: %w", err)
		}

		results = append(results, result)
	}

	return results, nil
}
