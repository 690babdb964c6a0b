package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"quizforge/internal/codec"
	"quizforge/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupQuizTestDB creates a new sqlx.DB instance and sqlmock for quiz repository testing.
func setupQuizTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func sampleQuestions() domain.QuestionSet {
	return domain.QuestionSet{
		{QuestionID: "q1", Text: "What is 2+2?", Kind: domain.QuestionKindMultipleChoice, Options: []string{"3", "4"}, CorrectAnswer: "4", Marks: 5, Explanation: "Basic addition."},
		{QuestionID: "q2", Text: "What is 3*3?", Kind: domain.QuestionKindMultipleChoice, Options: []string{"6", "9"}, CorrectAnswer: "9", Marks: 5, Explanation: "Basic multiplication."},
	}
}

func quizRows(quizID, questionsBlob string, totalQuestions int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"quiz_id", "user_id", "title", "subject", "grade", "difficulty",
		"total_questions", "max_score", "questions", "created_at",
	}).AddRow(quizID, "user1", "Grade 5 Math Quiz", "Math", 5, "MEDIUM",
		totalQuestions, 10, questionsBlob, time.Now())
}

func TestQuizDatabaseAdapter_CreateQuiz(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewQuizDatabaseAdapter(db, NewTransactionManagerAdapter(db))

	draft := &domain.QuizDraft{
		OwnerUserID:    "user1",
		Title:          "Grade 5 Math Quiz",
		Subject:        "Math",
		Grade:          5,
		Difficulty:     domain.DifficultyMedium,
		TotalQuestions: 2,
		MaxScore:       10,
		Questions:      sampleQuestions(),
	}

	mock.ExpectExec(`INSERT INTO quizzes`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	quiz, err := repo.CreateQuiz(context.Background(), draft)
	require.NoError(t, err)
	require.NotNil(t, quiz)
	assert.NotEmpty(t, quiz.ID)
	assert.Contains(t, quiz.ID, "quiz_")
	assert.Equal(t, "user1", quiz.OwnerUserID)
	assert.Len(t, quiz.Questions, 2)
	assert.False(t, quiz.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizDatabaseAdapter_CreateQuiz_InvalidDraft(t *testing.T) {
	db, _ := setupQuizTestDB(t)
	defer db.Close()
	repo := NewQuizDatabaseAdapter(db, NewTransactionManagerAdapter(db))

	_, err := repo.CreateQuiz(context.Background(), &domain.QuizDraft{
		OwnerUserID:    "user1",
		Subject:        "Math",
		Grade:          13, // out of range
		TotalQuestions: 2,
		MaxScore:       10,
	})
	require.Error(t, err)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)

	_, err = repo.CreateQuiz(context.Background(), nil)
	require.Error(t, err)
}

func TestQuizDatabaseAdapter_GetQuizByID_NotFound(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewQuizDatabaseAdapter(db, NewTransactionManagerAdapter(db))

	mock.ExpectQuery(`SELECT .+ FROM quizzes WHERE quiz_id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	quiz, err := repo.GetQuizByID(context.Background(), "missing")
	assert.NoError(t, err, "absence is not an error")
	assert.Nil(t, quiz)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizDatabaseAdapter_GetQuizByID_Success(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewQuizDatabaseAdapter(db, NewTransactionManagerAdapter(db))

	blob := codec.Encode(sampleQuestions())
	mock.ExpectQuery(`SELECT .+ FROM quizzes WHERE quiz_id = \$1`).
		WithArgs("quiz_abc").
		WillReturnRows(quizRows("quiz_abc", blob, 2))

	quiz, err := repo.GetQuizByID(context.Background(), "quiz_abc")
	require.NoError(t, err)
	require.NotNil(t, quiz)
	assert.Equal(t, "quiz_abc", quiz.ID)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, "q1", quiz.Questions[0].QuestionID)
	assert.Equal(t, "4", quiz.Questions[0].CorrectAnswer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizDatabaseAdapter_GetQuizByID_RawRefetchRecovery(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewQuizDatabaseAdapter(db, NewTransactionManagerAdapter(db))

	// First scan yields garbage; the raw refetch returns a doubly encoded
	// blob the codec can still unwrap.
	doubleEncoded, err := json.Marshal(codec.Encode(sampleQuestions()))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM quizzes WHERE quiz_id = \$1`).
		WithArgs("quiz_abc").
		WillReturnRows(quizRows("quiz_abc", "not json at all", 2))
	mock.ExpectQuery(`SELECT questions FROM quizzes WHERE quiz_id = \$1`).
		WithArgs("quiz_abc").
		WillReturnRows(sqlmock.NewRows([]string{"questions"}).AddRow(string(doubleEncoded)))

	quiz, err := repo.GetQuizByID(context.Background(), "quiz_abc")
	require.NoError(t, err)
	require.NotNil(t, quiz)
	require.Len(t, quiz.Questions, 2, "raw refetch should recover the questions")
	assert.Equal(t, "q2", quiz.Questions[1].QuestionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizDatabaseAdapter_GetQuizByID_Unrecoverable(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewQuizDatabaseAdapter(db, NewTransactionManagerAdapter(db))

	mock.ExpectQuery(`SELECT .+ FROM quizzes WHERE quiz_id = \$1`).
		WithArgs("quiz_abc").
		WillReturnRows(quizRows("quiz_abc", "garbage", 2))
	mock.ExpectQuery(`SELECT questions FROM quizzes WHERE quiz_id = \$1`).
		WithArgs("quiz_abc").
		WillReturnRows(sqlmock.NewRows([]string{"questions"}).AddRow("still garbage"))

	quiz, err := repo.GetQuizByID(context.Background(), "quiz_abc")
	require.NoError(t, err, "corruption degrades to an empty set, not an error")
	require.NotNil(t, quiz)
	assert.NotNil(t, quiz.Questions)
	assert.Empty(t, quiz.Questions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizDatabaseAdapter_DeleteQuiz_CascadeOrder(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewQuizDatabaseAdapter(db, NewTransactionManagerAdapter(db))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM quiz_hints WHERE quiz_id = \$1`).
		WithArgs("quiz_abc").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM quiz_submissions WHERE quiz_id = \$1`).
		WithArgs("quiz_abc").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM quizzes WHERE quiz_id = \$1`).
		WithArgs("quiz_abc").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteQuiz(context.Background(), "quiz_abc")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizDatabaseAdapter_DeleteQuiz_RollbackOnError(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewQuizDatabaseAdapter(db, NewTransactionManagerAdapter(db))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM quiz_hints WHERE quiz_id = \$1`).
		WithArgs("quiz_abc").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM quiz_submissions WHERE quiz_id = \$1`).
		WithArgs("quiz_abc").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.DeleteQuiz(context.Background(), "quiz_abc")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizDatabaseAdapter_GetQuizStats_NoSubmissions(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewQuizDatabaseAdapter(db, NewTransactionManagerAdapter(db))

	rows := sqlmock.NewRows([]string{"total_attempts", "average_score", "highest_score", "unique_users"}).
		AddRow(0, 0.0, 0.0, 0)
	mock.ExpectQuery(`SELECT`).WithArgs("quiz_abc").WillReturnRows(rows)

	stats, err := repo.GetQuizStats(context.Background(), "quiz_abc")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.TotalAttempts)
	assert.Equal(t, 0.0, stats.AverageScore)
	assert.Equal(t, 0.0, stats.HighestScore)
	assert.Equal(t, 0, stats.UniqueUsers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizDatabaseAdapter_GetQuizStats(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewQuizDatabaseAdapter(db, NewTransactionManagerAdapter(db))

	rows := sqlmock.NewRows([]string{"total_attempts", "average_score", "highest_score", "unique_users"}).
		AddRow(7, 64.5, 90.0, 3)
	mock.ExpectQuery(`SELECT`).WithArgs("quiz_abc").WillReturnRows(rows)

	stats, err := repo.GetQuizStats(context.Background(), "quiz_abc")
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalAttempts)
	assert.Equal(t, 64.5, stats.AverageScore)
	assert.Equal(t, 90.0, stats.HighestScore)
	assert.Equal(t, 3, stats.UniqueUsers)
	assert.NoError(t, mock.ExpectationsWereMet())
}
