package domain

import "context"

// QuizRepository owns the durable copy of every quiz. Implementations
// guarantee that Questions is always a materialized QuestionSet on the way
// out, regardless of how the underlying store returns the row.
type QuizRepository interface {
	// CreateQuiz persists the draft and returns the created quiz. The
	// returned value is reconstructed from the validated input, so the
	// caller sees the same shape whether or not the store echoes the row.
	CreateQuiz(ctx context.Context, draft *QuizDraft) (*Quiz, error)

	// GetQuizByID returns (nil, nil) when the quiz does not exist.
	GetQuizByID(ctx context.Context, quizID string) (*Quiz, error)

	// DeleteQuiz removes hints, then submissions, then the quiz row, all
	// inside one transaction.
	DeleteQuiz(ctx context.Context, quizID string) error

	// GetQuizStats aggregates submission activity for the quiz.
	GetQuizStats(ctx context.Context, quizID string) (*QuizStats, error)
}

// SubmissionRepository persists graded attempts. Submissions are append-only.
type SubmissionRepository interface {
	// CreateSubmission assigns the submission id and completion timestamp.
	CreateSubmission(ctx context.Context, submission *Submission) error

	// GetLastSubmission returns the most recent submission for the
	// user/quiz pair, or (nil, nil) when there is none.
	GetLastSubmission(ctx context.Context, userID, quizID string) (*Submission, error)

	HasUserAttempted(ctx context.Context, userID, quizID string) (bool, error)

	// ListByUser returns a page of submission summaries and the total count.
	ListByUser(ctx context.Context, userID string, filters SubmissionFilters) ([]*SubmissionSummary, int, error)
}

// HintRepository persists generated hints as children of a quiz.
type HintRepository interface {
	SaveHint(ctx context.Context, hint *Hint) error

	// GetHint returns (nil, nil) when no hint has been stored yet.
	GetHint(ctx context.Context, quizID, questionID string) (*Hint, error)
}

// TransactionManager runs fn inside a store transaction. The transactional
// handle travels in the context and is released on every exit path.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// QuestionGenerator is the AI collaborator contract for quiz generation.
// Results are untrusted; callers validate them before use.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, spec GenerationSpec) (QuestionSet, error)
}

// AnswerGrader is the AI collaborator contract for grading. Results are
// untrusted; the evaluation service validates the shape and falls back to
// rule-based grading.
type AnswerGrader interface {
	GradeResponses(ctx context.Context, quiz *Quiz, responses []ResponseItem) (*EvaluationResult, error)
}

// HintGenerator produces a hint for one question without revealing the answer.
type HintGenerator interface {
	GenerateHint(ctx context.Context, quiz *Quiz, question *Question) (string, error)
}
