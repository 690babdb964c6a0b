package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizforge/internal/domain"
	"quizforge/internal/logger"
	"quizforge/internal/repository/models"
	"quizforge/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SubmissionDatabaseAdapter implements domain.SubmissionRepository using sqlx.DB.
type SubmissionDatabaseAdapter struct {
	db *sqlx.DB
}

// NewSubmissionDatabaseAdapter creates a new instance of SubmissionDatabaseAdapter.
func NewSubmissionDatabaseAdapter(db *sqlx.DB) domain.SubmissionRepository {
	return &SubmissionDatabaseAdapter{db: db}
}

// CreateSubmission implements domain.SubmissionRepository. The id and
// completion timestamp are assigned here; the written submission is
// reflected back onto the argument.
func (a *SubmissionDatabaseAdapter) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	if submission == nil {
		return domain.NewInvalidInputError("submission cannot be nil")
	}
	if submission.Score > submission.MaxScore {
		return domain.NewInvalidInputError(
			fmt.Sprintf("score %d exceeds max score %d", submission.Score, submission.MaxScore))
	}

	submission.ID = util.NewSubmissionID()
	submission.CompletedAt = time.Now()

	modelSub := &models.Submission{
		SubmissionID:         submission.ID,
		QuizID:               submission.QuizID,
		UserID:               submission.UserID,
		Responses:            marshalJSONColumn(submission.Responses),
		Score:                submission.Score,
		MaxScore:             submission.MaxScore,
		Percentage:           submission.Percentage,
		DetailedResults:      marshalJSONColumn(submission.DetailedResults),
		Suggestions:          marshalJSONColumn(submission.Suggestions),
		CompletedAt:          submission.CompletedAt,
		IsRetry:              submission.IsRetry,
		OriginalSubmissionID: util.StringToNullString(submission.OriginalSubmissionID),
	}

	query := `INSERT INTO quiz_submissions (
		submission_id, quiz_id, user_id, responses, score, max_score,
		percentage, detailed_results, suggestions, completed_at, is_retry,
		original_submission_id
	) VALUES (
		:submission_id, :quiz_id, :user_id, :responses, :score, :max_score,
		:percentage, :detailed_results, :suggestions, :completed_at, :is_retry,
		:original_submission_id
	)`

	executor := GetExecutor(ctx, a.db)
	if _, err := executor.NamedExecContext(ctx, query, modelSub); err != nil {
		return domain.NewStorageError("failed to create submission", err)
	}

	logger.Get().Info("submission created",
		zap.String("submission_id", submission.ID),
		zap.String("quiz_id", submission.QuizID),
		zap.String("user_id", submission.UserID),
		zap.Int("score", submission.Score),
		zap.Int("max_score", submission.MaxScore))
	return nil
}

// GetLastSubmission implements domain.SubmissionRepository.
func (a *SubmissionDatabaseAdapter) GetLastSubmission(ctx context.Context, userID, quizID string) (*domain.Submission, error) {
	var modelSub models.Submission
	query := `SELECT submission_id, quiz_id, user_id, responses, score,
		max_score, percentage, detailed_results, suggestions, completed_at,
		is_retry, original_submission_id
	FROM quiz_submissions
	WHERE user_id = $1 AND quiz_id = $2
	ORDER BY completed_at DESC
	LIMIT 1`

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &modelSub, query, userID, quizID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("failed to get last submission", err)
	}
	return toDomainSubmission(&modelSub), nil
}

// HasUserAttempted implements domain.SubmissionRepository.
func (a *SubmissionDatabaseAdapter) HasUserAttempted(ctx context.Context, userID, quizID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
		SELECT 1 FROM quiz_submissions WHERE user_id = $1 AND quiz_id = $2
	)`

	executor := GetExecutor(ctx, a.db)
	if err := executor.GetContext(ctx, &exists, query, userID, quizID); err != nil {
		return false, domain.NewStorageError("failed to check user attempt", err)
	}
	return exists, nil
}

// ListByUser implements domain.SubmissionRepository.
func (a *SubmissionDatabaseAdapter) ListByUser(ctx context.Context, userID string, filters domain.SubmissionFilters) ([]*domain.SubmissionSummary, int, error) {
	where := []string{"s.user_id = $1"}
	args := []interface{}{userID}
	argIndex := 2

	if !filters.IncludeRetries {
		where = append(where, "s.is_retry = false")
	}
	if filters.Subject != "" {
		where = append(where, fmt.Sprintf("q.subject = $%d", argIndex))
		args = append(args, filters.Subject)
		argIndex++
	}
	if filters.Grade > 0 {
		where = append(where, fmt.Sprintf("q.grade = $%d", argIndex))
		args = append(args, filters.Grade)
		argIndex++
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`SELECT
		s.submission_id, s.quiz_id, q.title AS quiz_title, q.subject,
		q.grade, s.score, s.max_score, s.percentage, s.completed_at, s.is_retry
	FROM quiz_submissions s
	JOIN quizzes q ON s.quiz_id = q.quiz_id
	%s
	ORDER BY s.completed_at DESC
	LIMIT $%d OFFSET $%d`, whereClause, argIndex, argIndex+1)

	executor := GetExecutor(ctx, a.db)

	var rows []models.SubmissionSummary
	if err := executor.SelectContext(ctx, &rows, query,
		append(args, limit, filters.Offset)...); err != nil {
		return nil, 0, domain.NewStorageError("failed to list submissions", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*)
	FROM quiz_submissions s
	JOIN quizzes q ON s.quiz_id = q.quiz_id
	%s`, whereClause)

	var total int
	if err := executor.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, domain.NewStorageError("failed to count submissions", err)
	}

	summaries := make([]*domain.SubmissionSummary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, &domain.SubmissionSummary{
			SubmissionID: rows[i].SubmissionID,
			QuizID:       rows[i].QuizID,
			QuizTitle:    rows[i].QuizTitle,
			Subject:      rows[i].Subject,
			Grade:        rows[i].Grade,
			Score:        rows[i].Score,
			MaxScore:     rows[i].MaxScore,
			Percentage:   rows[i].Percentage,
			CompletedAt:  rows[i].CompletedAt,
			IsRetry:      rows[i].IsRetry,
		})
	}
	return summaries, total, nil
}

func toDomainSubmission(m *models.Submission) *domain.Submission {
	if m == nil {
		return nil
	}
	sub := &domain.Submission{
		ID:                   m.SubmissionID,
		QuizID:               m.QuizID,
		UserID:               m.UserID,
		Score:                m.Score,
		MaxScore:             m.MaxScore,
		Percentage:           m.Percentage,
		CompletedAt:          m.CompletedAt,
		IsRetry:              m.IsRetry,
		OriginalSubmissionID: m.OriginalSubmissionID.String,
	}
	unmarshalJSONColumn(m.Responses, &sub.Responses, m.SubmissionID, "responses")
	unmarshalJSONColumn(m.DetailedResults, &sub.DetailedResults, m.SubmissionID, "detailed_results")
	unmarshalJSONColumn(m.Suggestions, &sub.Suggestions, m.SubmissionID, "suggestions")
	if sub.Responses == nil {
		sub.Responses = []domain.ResponseItem{}
	}
	if sub.DetailedResults == nil {
		sub.DetailedResults = []domain.QuestionResult{}
	}
	if sub.Suggestions == nil {
		sub.Suggestions = []string{}
	}
	return sub
}

func marshalJSONColumn(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Get().Error("failed to marshal submission column", zap.Error(err))
		return "[]"
	}
	return string(data)
}

func unmarshalJSONColumn(raw string, dest interface{}, submissionID, column string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.Get().Warn("failed to unmarshal submission column, leaving empty",
			zap.String("submission_id", submissionID),
			zap.String("column", column),
			zap.Error(err))
	}
}
