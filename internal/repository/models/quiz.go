package models

import (
	"database/sql"
	"time"
)

// Quiz is the quizzes row model. The questions column holds the codec's
// serialized blob; it is never interpreted outside the codec.
type Quiz struct {
	QuizID         string    `db:"quiz_id"`
	UserID         string    `db:"user_id"`
	Title          string    `db:"title"`
	Subject        string    `db:"subject"`
	Grade          int       `db:"grade"`
	Difficulty     string    `db:"difficulty"`
	TotalQuestions int       `db:"total_questions"`
	MaxScore       int       `db:"max_score"`
	Questions      string    `db:"questions"`
	CreatedAt      time.Time `db:"created_at"`
}

// Submission is the quiz_submissions row model. Responses, detailed results
// and suggestions are stored as JSON text columns.
type Submission struct {
	SubmissionID         string         `db:"submission_id"`
	QuizID               string         `db:"quiz_id"`
	UserID               string         `db:"user_id"`
	Responses            string         `db:"responses"`
	Score                int            `db:"score"`
	MaxScore             int            `db:"max_score"`
	Percentage           float64        `db:"percentage"`
	DetailedResults      string         `db:"detailed_results"`
	Suggestions          string         `db:"suggestions"`
	CompletedAt          time.Time      `db:"completed_at"`
	IsRetry              bool           `db:"is_retry"`
	OriginalSubmissionID sql.NullString `db:"original_submission_id"`
}

// SubmissionSummary is the joined row shape for submission history listings.
type SubmissionSummary struct {
	SubmissionID string    `db:"submission_id"`
	QuizID       string    `db:"quiz_id"`
	QuizTitle    string    `db:"quiz_title"`
	Subject      string    `db:"subject"`
	Grade        int       `db:"grade"`
	Score        int       `db:"score"`
	MaxScore     int       `db:"max_score"`
	Percentage   float64   `db:"percentage"`
	CompletedAt  time.Time `db:"completed_at"`
	IsRetry      bool      `db:"is_retry"`
}

// Hint is the quiz_hints row model.
type Hint struct {
	HintID     string    `db:"hint_id"`
	QuizID     string    `db:"quiz_id"`
	QuestionID string    `db:"question_id"`
	Hint       string    `db:"hint"`
	CreatedAt  time.Time `db:"created_at"`
}

// QuizStats is the aggregate row shape for quiz statistics.
type QuizStats struct {
	TotalAttempts int     `db:"total_attempts"`
	AverageScore  float64 `db:"average_score"`
	HighestScore  float64 `db:"highest_score"`
	UniqueUsers   int     `db:"unique_users"`
}
