package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quizforge/internal/domain"
	"quizforge/internal/repository/models"
	"quizforge/internal/util"

	"github.com/jmoiron/sqlx"
)

// HintDatabaseAdapter implements domain.HintRepository using sqlx.DB.
type HintDatabaseAdapter struct {
	db *sqlx.DB
}

// NewHintDatabaseAdapter creates a new instance of HintDatabaseAdapter.
func NewHintDatabaseAdapter(db *sqlx.DB) domain.HintRepository {
	return &HintDatabaseAdapter{db: db}
}

// SaveHint implements domain.HintRepository.
func (a *HintDatabaseAdapter) SaveHint(ctx context.Context, hint *domain.Hint) error {
	if hint == nil {
		return domain.NewInvalidInputError("hint cannot be nil")
	}

	hint.ID = util.NewHintID()
	hint.CreatedAt = time.Now()

	modelHint := &models.Hint{
		HintID:     hint.ID,
		QuizID:     hint.QuizID,
		QuestionID: hint.QuestionID,
		Hint:       hint.Text,
		CreatedAt:  hint.CreatedAt,
	}

	query := `INSERT INTO quiz_hints (hint_id, quiz_id, question_id, hint, created_at)
	VALUES (:hint_id, :quiz_id, :question_id, :hint, :created_at)`

	executor := GetExecutor(ctx, a.db)
	if _, err := executor.NamedExecContext(ctx, query, modelHint); err != nil {
		return domain.NewStorageError("failed to save hint", err)
	}
	return nil
}

// GetHint implements domain.HintRepository.
func (a *HintDatabaseAdapter) GetHint(ctx context.Context, quizID, questionID string) (*domain.Hint, error) {
	var modelHint models.Hint
	query := `SELECT hint_id, quiz_id, question_id, hint, created_at
	FROM quiz_hints
	WHERE quiz_id = $1 AND question_id = $2
	ORDER BY created_at DESC
	LIMIT 1`

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &modelHint, query, quizID, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("failed to get hint", err)
	}

	return &domain.Hint{
		ID:         modelHint.HintID,
		QuizID:     modelHint.QuizID,
		QuestionID: modelHint.QuestionID,
		Text:       modelHint.Hint,
		CreatedAt:  modelHint.CreatedAt,
	}, nil
}
