package domain

import (
	"strings"
	"time"
)

// QuestionKind enumerates supported question types.
type QuestionKind string

const (
	// QuestionKindMultipleChoice is currently the only supported kind.
	QuestionKindMultipleChoice QuestionKind = "multiple_choice"
)

// Difficulty represents the difficulty level of a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// NormalizeDifficulty upper-cases the input and degrades unknown values to MEDIUM.
func NormalizeDifficulty(s string) Difficulty {
	switch d := Difficulty(strings.ToUpper(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d
	default:
		return DifficultyMedium
	}
}

// Question is a single gradable item within a quiz.
// The JSON tags define the canonical serialized form used by storage and cache.
type Question struct {
	QuestionID    string       `json:"questionId"`
	Text          string       `json:"question"`
	Kind          QuestionKind `json:"type"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
	Marks         int          `json:"marks"`
	Explanation   string       `json:"explanation,omitempty"`
}

// QuestionSet is the canonical in-memory representation of a quiz's
// questions. Outside the codec boundary it is always a materialized list,
// never a raw string.
type QuestionSet []Question

// FindByID returns the question with the given id, or nil.
func (qs QuestionSet) FindByID(questionID string) *Question {
	for i := range qs {
		if qs[i].QuestionID == questionID {
			return &qs[i]
		}
	}
	return nil
}

// TotalMarks sums the marks of all questions in the set.
func (qs QuestionSet) TotalMarks() int {
	total := 0
	for i := range qs {
		total += qs[i].Marks
	}
	return total
}

// Quiz represents one generated quiz. Quizzes are immutable after creation.
type Quiz struct {
	ID             string
	OwnerUserID    string
	Title          string
	Subject        string
	Grade          int
	Difficulty     Difficulty
	TotalQuestions int
	MaxScore       int
	Questions      QuestionSet
	CreatedAt      time.Time
}

// QuizDraft carries the validated inputs for quiz creation. The repository
// assigns the id and timestamp.
type QuizDraft struct {
	OwnerUserID    string
	Title          string
	Subject        string
	Grade          int
	Difficulty     Difficulty
	TotalQuestions int
	MaxScore       int
	Questions      QuestionSet
}

// Validate checks the structural requirements for quiz creation.
func (d *QuizDraft) Validate() error {
	if d.OwnerUserID == "" {
		return NewInvalidInputError("owner user id is required")
	}
	if d.Subject == "" {
		return NewInvalidInputError("subject is required")
	}
	if d.Grade < 1 || d.Grade > 12 {
		return NewInvalidInputError("grade must be between 1 and 12")
	}
	if d.TotalQuestions <= 0 {
		return NewInvalidInputError("total questions must be positive")
	}
	if d.MaxScore <= 0 {
		return NewInvalidInputError("max score must be positive")
	}
	return nil
}

// GenerationSpec describes a question-generation request to the AI collaborator.
type GenerationSpec struct {
	Grade      int
	Subject    string
	Count      int
	MaxScore   int
	Difficulty Difficulty
}

// ResponseItem is one user answer within a submission.
type ResponseItem struct {
	QuestionID   string `json:"questionId"`
	UserResponse string `json:"userResponse"`
}

// QuestionResult is the per-question breakdown of a graded submission.
type QuestionResult struct {
	QuestionID    string `json:"questionId"`
	UserResponse  string `json:"userResponse"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Marks         int    `json:"marks"`
	Explanation   string `json:"explanation"`
}

// EvaluationResult is the transient grading outcome. All fields are always
// populated; DetailedResults and Suggestions may be empty but never nil.
type EvaluationResult struct {
	TotalScore      int              `json:"totalScore"`
	MaxScore        int              `json:"maxScore"`
	Percentage      float64          `json:"percentage"`
	DetailedResults []QuestionResult `json:"detailedResults"`
	Suggestions     []string         `json:"suggestions"`
}

// Submission is one graded attempt at a quiz. Submissions are immutable.
type Submission struct {
	ID                   string
	QuizID               string
	UserID               string
	Responses            []ResponseItem
	Score                int
	MaxScore             int
	Percentage           float64
	DetailedResults      []QuestionResult
	Suggestions          []string
	CompletedAt          time.Time
	IsRetry              bool
	OriginalSubmissionID string
}

// SubmissionSummary is the listing shape used by submission history.
type SubmissionSummary struct {
	SubmissionID string
	QuizID       string
	QuizTitle    string
	Subject      string
	Grade        int
	Score        int
	MaxScore     int
	Percentage   float64
	CompletedAt  time.Time
	IsRetry      bool
}

// SubmissionFilters narrows a submission history query.
type SubmissionFilters struct {
	Subject        string
	Grade          int
	IncludeRetries bool
	Limit          int
	Offset         int
}

// QuizStats aggregates submission activity for a quiz. Zero attempts yield
// zero-valued stats, not an error.
type QuizStats struct {
	TotalAttempts int
	AverageScore  float64
	HighestScore  float64
	UniqueUsers   int
}

// Hint is an AI-generated hint for one question of a quiz.
type Hint struct {
	ID         string
	QuizID     string
	QuestionID string
	Text       string
	CreatedAt  time.Time
}
