package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"quizforge/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submissionColumns() []string {
	return []string{
		"submission_id", "quiz_id", "user_id", "responses", "score",
		"max_score", "percentage", "detailed_results", "suggestions",
		"completed_at", "is_retry", "original_submission_id",
	}
}

func TestSubmissionDatabaseAdapter_CreateSubmission(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSubmissionDatabaseAdapter(db)

	sub := &domain.Submission{
		QuizID: "quiz_abc",
		UserID: "user1",
		Responses: []domain.ResponseItem{
			{QuestionID: "q1", UserResponse: "4"},
		},
		Score:      5,
		MaxScore:   10,
		Percentage: 50.0,
		DetailedResults: []domain.QuestionResult{
			{QuestionID: "q1", UserResponse: "4", CorrectAnswer: "4", IsCorrect: true, Marks: 5, Explanation: "Correct! Well done."},
		},
		Suggestions: []string{"Keep practicing."},
	}

	mock.ExpectExec(`INSERT INTO quiz_submissions`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateSubmission(context.Background(), sub)
	require.NoError(t, err)
	assert.Contains(t, sub.ID, "sub_", "id is assigned by the repository")
	assert.False(t, sub.CompletedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionDatabaseAdapter_CreateSubmission_ScoreExceedsMax(t *testing.T) {
	db, _ := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSubmissionDatabaseAdapter(db)

	err := repo.CreateSubmission(context.Background(), &domain.Submission{
		QuizID:   "quiz_abc",
		UserID:   "user1",
		Score:    11,
		MaxScore: 10,
	})
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}

func TestSubmissionDatabaseAdapter_GetLastSubmission(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSubmissionDatabaseAdapter(db)

	responses, _ := json.Marshal([]domain.ResponseItem{{QuestionID: "q1", UserResponse: "4"}})
	results, _ := json.Marshal([]domain.QuestionResult{{QuestionID: "q1", IsCorrect: true, Marks: 5}})
	suggestions, _ := json.Marshal([]string{"Great job on Math!"})

	rows := sqlmock.NewRows(submissionColumns()).AddRow(
		"sub_xyz", "quiz_abc", "user1", string(responses), 5, 10, 50.0,
		string(results), string(suggestions), time.Now(), false, nil)

	mock.ExpectQuery(`SELECT .+ FROM quiz_submissions\s+WHERE user_id = \$1 AND quiz_id = \$2`).
		WithArgs("user1", "quiz_abc").
		WillReturnRows(rows)

	sub, err := repo.GetLastSubmission(context.Background(), "user1", "quiz_abc")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "sub_xyz", sub.ID)
	require.Len(t, sub.Responses, 1)
	assert.Equal(t, "q1", sub.Responses[0].QuestionID)
	require.Len(t, sub.DetailedResults, 1)
	assert.True(t, sub.DetailedResults[0].IsCorrect)
	assert.Equal(t, []string{"Great job on Math!"}, sub.Suggestions)
	assert.Equal(t, "", sub.OriginalSubmissionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionDatabaseAdapter_GetLastSubmission_None(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSubmissionDatabaseAdapter(db)

	mock.ExpectQuery(`SELECT .+ FROM quiz_submissions`).
		WithArgs("user1", "quiz_abc").
		WillReturnError(sql.ErrNoRows)

	sub, err := repo.GetLastSubmission(context.Background(), "user1", "quiz_abc")
	assert.NoError(t, err)
	assert.Nil(t, sub)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionDatabaseAdapter_GetLastSubmission_CorruptColumns(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSubmissionDatabaseAdapter(db)

	rows := sqlmock.NewRows(submissionColumns()).AddRow(
		"sub_xyz", "quiz_abc", "user1", "not json", 5, 10, 50.0,
		"also not json", "", time.Now(), false, nil)

	mock.ExpectQuery(`SELECT .+ FROM quiz_submissions`).
		WithArgs("user1", "quiz_abc").
		WillReturnRows(rows)

	sub, err := repo.GetLastSubmission(context.Background(), "user1", "quiz_abc")
	require.NoError(t, err, "corrupt JSON columns degrade to empty slices")
	require.NotNil(t, sub)
	assert.NotNil(t, sub.Responses)
	assert.Empty(t, sub.Responses)
	assert.NotNil(t, sub.DetailedResults)
	assert.Empty(t, sub.DetailedResults)
	assert.NotNil(t, sub.Suggestions)
	assert.Empty(t, sub.Suggestions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionDatabaseAdapter_HasUserAttempted(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSubmissionDatabaseAdapter(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user1", "quiz_abc").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	attempted, err := repo.HasUserAttempted(context.Background(), "user1", "quiz_abc")
	require.NoError(t, err)
	assert.True(t, attempted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionDatabaseAdapter_ListByUser(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSubmissionDatabaseAdapter(db)

	cols := []string{
		"submission_id", "quiz_id", "quiz_title", "subject", "grade",
		"score", "max_score", "percentage", "completed_at", "is_retry",
	}
	rows := sqlmock.NewRows(cols).
		AddRow("sub_2", "quiz_b", "Grade 5 Math Quiz", "Math", 5, 8, 10, 80.0, time.Now(), false).
		AddRow("sub_1", "quiz_a", "Grade 5 Math Quiz", "Math", 5, 5, 10, 50.0, time.Now().Add(-time.Hour), false)

	mock.ExpectQuery(`SELECT .+ FROM quiz_submissions s\s+JOIN quizzes q`).
		WithArgs("user1", "Math", 10, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("user1", "Math").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	summaries, total, err := repo.ListByUser(context.Background(), "user1", domain.SubmissionFilters{
		Subject: "Math",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, summaries, 2)
	assert.Equal(t, "sub_2", summaries[0].SubmissionID)
	assert.Equal(t, 80.0, summaries[0].Percentage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionDatabaseAdapter_ListByUser_Empty(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSubmissionDatabaseAdapter(db)

	cols := []string{
		"submission_id", "quiz_id", "quiz_title", "subject", "grade",
		"score", "max_score", "percentage", "completed_at", "is_retry",
	}
	mock.ExpectQuery(`SELECT .+ FROM quiz_submissions s\s+JOIN quizzes q`).
		WithArgs("user1", 10, 0).
		WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	summaries, total, err := repo.ListByUser(context.Background(), "user1", domain.SubmissionFilters{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
