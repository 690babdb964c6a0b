package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quizforge/internal/codec"
	"quizforge/internal/domain"
	"quizforge/internal/logger"
	"quizforge/internal/repository/models"
	"quizforge/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const quizColumns = `quiz_id, user_id, title, subject, grade, difficulty,
	total_questions, max_score, questions, created_at`

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB.
type QuizDatabaseAdapter struct {
	db  *sqlx.DB
	txm domain.TransactionManager
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter.
func NewQuizDatabaseAdapter(db *sqlx.DB, txm domain.TransactionManager) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db, txm: txm}
}

// CreateQuiz implements domain.QuizRepository. The draft's questions are
// validated and encoded before they reach the store, and the returned Quiz
// is reconstructed from that validated input rather than from whatever the
// store echoes back, so the caller always sees the canonical shape.
func (a *QuizDatabaseAdapter) CreateQuiz(ctx context.Context, draft *domain.QuizDraft) (*domain.Quiz, error) {
	if draft == nil {
		return nil, domain.NewInvalidInputError("quiz draft cannot be nil")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	validated := codec.Validate(draft.Questions)
	if len(validated) != draft.TotalQuestions {
		logger.Get().Warn("question count does not match requested total after validation",
			zap.Int("expected", draft.TotalQuestions),
			zap.Int("actual", len(validated)))
	}

	modelQuiz := &models.Quiz{
		QuizID:         util.NewQuizID(),
		UserID:         draft.OwnerUserID,
		Title:          draft.Title,
		Subject:        draft.Subject,
		Grade:          draft.Grade,
		Difficulty:     string(draft.Difficulty),
		TotalQuestions: draft.TotalQuestions,
		MaxScore:       draft.MaxScore,
		Questions:      codec.Encode(validated),
		CreatedAt:      time.Now(),
	}

	query := `INSERT INTO quizzes (
		quiz_id, user_id, title, subject, grade, difficulty,
		total_questions, max_score, questions, created_at
	) VALUES (
		:quiz_id, :user_id, :title, :subject, :grade, :difficulty,
		:total_questions, :max_score, :questions, :created_at
	)`

	executor := GetExecutor(ctx, a.db)
	if _, err := executor.NamedExecContext(ctx, query, modelQuiz); err != nil {
		return nil, domain.NewStorageError("failed to create quiz", err)
	}

	logger.Get().Info("quiz created",
		zap.String("quiz_id", modelQuiz.QuizID),
		zap.String("user_id", modelQuiz.UserID),
		zap.Int("questions", len(validated)))

	return &domain.Quiz{
		ID:             modelQuiz.QuizID,
		OwnerUserID:    draft.OwnerUserID,
		Title:          draft.Title,
		Subject:        draft.Subject,
		Grade:          draft.Grade,
		Difficulty:     draft.Difficulty,
		TotalQuestions: draft.TotalQuestions,
		MaxScore:       draft.MaxScore,
		Questions:      validated,
		CreatedAt:      modelQuiz.CreatedAt,
	}, nil
}

// GetQuizByID implements domain.QuizRepository. When decoding yields an
// empty set for a quiz that should have questions, one additional raw fetch
// of just the questions column is attempted before giving up; this is the
// last-resort recovery against partially written or doubly encoded rows.
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, quizID string) (*domain.Quiz, error) {
	var modelQuiz models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE quiz_id = $1`

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &modelQuiz, query, quizID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("failed to get quiz by id", err)
	}

	questions := codec.Decode(modelQuiz.Questions)
	if len(questions) == 0 && modelQuiz.TotalQuestions > 0 {
		logger.Get().Warn("quiz row decoded to empty question set, retrying with raw fetch",
			zap.String("quiz_id", quizID),
			zap.Int("total_questions", modelQuiz.TotalQuestions))

		var rawQuestions string
		rawErr := executor.GetContext(ctx, &rawQuestions,
			`SELECT questions FROM quizzes WHERE quiz_id = $1`, quizID)
		if rawErr != nil {
			logger.Get().Error("raw questions refetch failed",
				zap.String("quiz_id", quizID), zap.Error(rawErr))
		} else {
			questions = codec.Decode(rawQuestions)
		}
		if len(questions) == 0 {
			logger.Get().Error("quiz questions unrecoverable, returning empty set",
				zap.String("quiz_id", quizID))
		}
	}

	return toDomainQuiz(&modelQuiz, questions), nil
}

// DeleteQuiz implements domain.QuizRepository. Children are removed before
// the parent row (hints, then submissions, then the quiz) inside a single
// transaction so the cascade is all-or-nothing.
func (a *QuizDatabaseAdapter) DeleteQuiz(ctx context.Context, quizID string) error {
	err := a.txm.WithTransaction(ctx, func(txCtx context.Context) error {
		executor := GetExecutor(txCtx, a.db)

		if _, err := executor.ExecContext(txCtx,
			`DELETE FROM quiz_hints WHERE quiz_id = $1`, quizID); err != nil {
			return domain.NewStorageError("failed to delete quiz hints", err)
		}
		if _, err := executor.ExecContext(txCtx,
			`DELETE FROM quiz_submissions WHERE quiz_id = $1`, quizID); err != nil {
			return domain.NewStorageError("failed to delete quiz submissions", err)
		}
		if _, err := executor.ExecContext(txCtx,
			`DELETE FROM quizzes WHERE quiz_id = $1`, quizID); err != nil {
			return domain.NewStorageError("failed to delete quiz", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Get().Info("quiz deleted", zap.String("quiz_id", quizID))
	return nil
}

// GetQuizStats implements domain.QuizRepository. A quiz with no submissions
// yields zero-valued stats, not an error.
func (a *QuizDatabaseAdapter) GetQuizStats(ctx context.Context, quizID string) (*domain.QuizStats, error) {
	var stats models.QuizStats
	query := `SELECT
		COUNT(*) AS total_attempts,
		COALESCE(AVG(percentage), 0) AS average_score,
		COALESCE(MAX(percentage), 0) AS highest_score,
		COUNT(DISTINCT user_id) AS unique_users
	FROM quiz_submissions
	WHERE quiz_id = $1`

	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &stats, query, quizID); err != nil {
		return nil, domain.NewStorageError("failed to get quiz stats", err)
	}

	return &domain.QuizStats{
		TotalAttempts: stats.TotalAttempts,
		AverageScore:  stats.AverageScore,
		HighestScore:  stats.HighestScore,
		UniqueUsers:   stats.UniqueUsers,
	}, nil
}

func toDomainQuiz(m *models.Quiz, questions domain.QuestionSet) *domain.Quiz {
	if m == nil {
		return nil
	}
	if questions == nil {
		questions = domain.QuestionSet{}
	}
	return &domain.Quiz{
		ID:             m.QuizID,
		OwnerUserID:    m.UserID,
		Title:          m.Title,
		Subject:        m.Subject,
		Grade:          m.Grade,
		Difficulty:     domain.Difficulty(m.Difficulty),
		TotalQuestions: m.TotalQuestions,
		MaxScore:       m.MaxScore,
		Questions:      questions,
		CreatedAt:      m.CreatedAt,
	}
}
