package service

import (
	"context"
	"encoding/json"
	"time"

	"quizforge/internal/cache"
	"quizforge/internal/codec"
	"quizforge/internal/domain"
	"quizforge/internal/logger"

	"go.uber.org/zap"
)

// cachedQuiz is the cache-side representation of a Quiz. Questions are held
// as raw JSON so the codec stays the single place that interprets them, and
// a doubly encoded or corrupted payload on the way out degrades instead of
// failing the read.
type cachedQuiz struct {
	ID             string          `json:"id"`
	OwnerUserID    string          `json:"ownerUserId"`
	Title          string          `json:"title"`
	Subject        string          `json:"subject"`
	Grade          int             `json:"grade"`
	Difficulty     string          `json:"difficulty"`
	TotalQuestions int             `json:"totalQuestions"`
	MaxScore       int             `json:"maxScore"`
	Questions      json.RawMessage `json:"questions"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// QuizCacheService is the read-through, self-healing cache in front of the
// quiz repository. All methods degrade to the repository on any cache
// problem; a cache failure is never a request failure.
type QuizCacheService interface {
	// GetQuiz returns (nil, nil) when the quiz exists in neither the cache
	// nor the repository.
	GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error)

	// SetQuiz writes the quiz through to the cache. Errors are absorbed.
	SetQuiz(ctx context.Context, quiz *domain.Quiz)

	// InvalidateQuiz drops the cached entry.
	InvalidateQuiz(ctx context.Context, quizID string)
}

type quizCacheServiceImpl struct {
	cache domain.Cache
	repo  domain.QuizRepository
	ttl   time.Duration
}

// NewQuizCacheService creates a new instance of quizCacheServiceImpl.
func NewQuizCacheService(c domain.Cache, repo domain.QuizRepository, ttl time.Duration) QuizCacheService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &quizCacheServiceImpl{cache: c, repo: repo, ttl: ttl}
}

func quizCacheKey(quizID string) string {
	return cache.GenerateCacheKey("quiz", "record", quizID)
}

// GetQuiz implements QuizCacheService. A cached entry whose question set
// decodes to empty while the quiz claims questions is treated as corrupt:
// the repository copy wins and overwrites the cache entry.
func (s *quizCacheServiceImpl) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	key := quizCacheKey(quizID)

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if err != domain.ErrCacheMiss {
			logger.Get().Warn("quiz cache read failed, falling back to repository",
				zap.String("quiz_id", quizID), zap.Error(err))
		}
		return s.fetchAndCache(ctx, quizID)
	}

	var entry cachedQuiz
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logger.Get().Warn("corrupt quiz cache entry, healing from repository",
			zap.String("quiz_id", quizID), zap.Error(err))
		return s.fetchAndCache(ctx, quizID)
	}

	questions := codec.DecodeRaw(entry.Questions)
	if len(questions) == 0 && entry.TotalQuestions > 0 {
		logger.Get().Warn("cached quiz lost its questions, healing from repository",
			zap.String("quiz_id", quizID),
			zap.Int("total_questions", entry.TotalQuestions))
		return s.fetchAndCache(ctx, quizID)
	}

	return &domain.Quiz{
		ID:             entry.ID,
		OwnerUserID:    entry.OwnerUserID,
		Title:          entry.Title,
		Subject:        entry.Subject,
		Grade:          entry.Grade,
		Difficulty:     domain.Difficulty(entry.Difficulty),
		TotalQuestions: entry.TotalQuestions,
		MaxScore:       entry.MaxScore,
		Questions:      questions,
		CreatedAt:      entry.CreatedAt,
	}, nil
}

// SetQuiz implements QuizCacheService. The question set is re-validated and
// re-encoded through the codec so only the canonical shape ever enters the
// cache, whatever the caller passed in. A quiz that claims questions but
// validates to none gets one repository read first, so the cache never
// holds a worse copy than the repository can currently provide.
func (s *quizCacheServiceImpl) SetQuiz(ctx context.Context, quiz *domain.Quiz) {
	if quiz == nil {
		return
	}

	validated := codec.Validate(quiz.Questions)
	if len(validated) == 0 && quiz.TotalQuestions > 0 {
		logger.Get().Warn("quiz lost its questions on the way to the cache, consulting repository",
			zap.String("quiz_id", quiz.ID),
			zap.Int("total_questions", quiz.TotalQuestions))
		if fresh, err := s.repo.GetQuizByID(ctx, quiz.ID); err == nil && fresh != nil {
			if recovered := codec.Validate(fresh.Questions); len(recovered) > 0 {
				validated = recovered
			}
		}
	}

	entry := cachedQuiz{
		ID:             quiz.ID,
		OwnerUserID:    quiz.OwnerUserID,
		Title:          quiz.Title,
		Subject:        quiz.Subject,
		Grade:          quiz.Grade,
		Difficulty:     string(quiz.Difficulty),
		TotalQuestions: quiz.TotalQuestions,
		MaxScore:       quiz.MaxScore,
		Questions:      json.RawMessage(codec.Encode(validated)),
		CreatedAt:      quiz.CreatedAt,
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		logger.Get().Error("failed to marshal quiz for cache",
			zap.String("quiz_id", quiz.ID), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, quizCacheKey(quiz.ID), string(payload), s.ttl); err != nil {
		logger.Get().Warn("quiz cache write failed",
			zap.String("quiz_id", quiz.ID), zap.Error(err))
	}
}

// InvalidateQuiz implements QuizCacheService.
func (s *quizCacheServiceImpl) InvalidateQuiz(ctx context.Context, quizID string) {
	if err := s.cache.Delete(ctx, quizCacheKey(quizID)); err != nil {
		logger.Get().Warn("quiz cache invalidation failed",
			zap.String("quiz_id", quizID), zap.Error(err))
	}
}

func (s *quizCacheServiceImpl) fetchAndCache(ctx context.Context, quizID string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, nil
	}
	s.SetQuiz(ctx, quiz)
	return quiz, nil
}
