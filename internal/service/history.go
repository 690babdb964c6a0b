package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quizforge/internal/cache"
	"quizforge/internal/domain"
	"quizforge/internal/logger"

	"go.uber.org/zap"
)

// SubmissionHistory is one page of a user's submission history.
type SubmissionHistory struct {
	Items  []*domain.SubmissionSummary `json:"items"`
	Total  int                         `json:"total"`
	Limit  int                         `json:"limit"`
	Offset int                         `json:"offset"`
}

// HistoryService serves paged submission history with a per-user cache.
// Every new submission invalidates all cached pages for that user.
type HistoryService interface {
	ListHistory(ctx context.Context, userID string, filters domain.SubmissionFilters) (*SubmissionHistory, error)

	// InvalidateUser evicts every cached history page for the user.
	InvalidateUser(ctx context.Context, userID string)
}

type historyServiceImpl struct {
	cache domain.Cache
	repo  domain.SubmissionRepository
	ttl   time.Duration
}

// NewHistoryService creates a new instance of historyServiceImpl.
func NewHistoryService(c domain.Cache, repo domain.SubmissionRepository, ttl time.Duration) HistoryService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &historyServiceImpl{cache: c, repo: repo, ttl: ttl}
}

func historyCacheKey(userID string, filters domain.SubmissionFilters) string {
	params := fmt.Sprintf("%s_%d_%t_%d_%d",
		filters.Subject, filters.Grade, filters.IncludeRetries, filters.Limit, filters.Offset)
	return cache.GenerateCacheKey("history", "list", userID, params)
}

func historyCachePattern(userID string) string {
	return cache.GenerateCacheKey("history", "list", userID) + ":*"
}

// ListHistory implements HistoryService.
func (s *historyServiceImpl) ListHistory(ctx context.Context, userID string, filters domain.SubmissionFilters) (*SubmissionHistory, error) {
	key := historyCacheKey(userID, filters)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var page SubmissionHistory
		if err := json.Unmarshal([]byte(raw), &page); err == nil {
			return &page, nil
		}
		logger.Get().Warn("corrupt history cache entry, refetching",
			zap.String("user_id", userID))
	} else if err != domain.ErrCacheMiss {
		logger.Get().Warn("history cache read failed",
			zap.String("user_id", userID), zap.Error(err))
	}

	items, total, err := s.repo.ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	page := &SubmissionHistory{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: filters.Offset,
	}

	if payload, err := json.Marshal(page); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
			logger.Get().Warn("history cache write failed",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
	return page, nil
}

// InvalidateUser implements HistoryService.
func (s *historyServiceImpl) InvalidateUser(ctx context.Context, userID string) {
	if err := s.cache.DeleteByPattern(ctx, historyCachePattern(userID)); err != nil {
		logger.Get().Warn("history cache invalidation failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}
