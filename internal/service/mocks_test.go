package service

import (
	"context"

	"quizforge/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuizRepository ---

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) CreateQuiz(ctx context.Context, draft *domain.QuizDraft) (*domain.Quiz, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetQuizByID(ctx context.Context, quizID string) (*domain.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) DeleteQuiz(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockQuizRepository) GetQuizStats(ctx context.Context, quizID string) (*domain.QuizStats, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizStats), args.Error(1)
}

// --- MockSubmissionRepository ---

type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetLastSubmission(ctx context.Context, userID, quizID string) (*domain.Submission, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) HasUserAttempted(ctx context.Context, userID, quizID string) (bool, error) {
	args := m.Called(ctx, userID, quizID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubmissionRepository) ListByUser(ctx context.Context, userID string, filters domain.SubmissionFilters) ([]*domain.SubmissionSummary, int, error) {
	args := m.Called(ctx, userID, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.SubmissionSummary), args.Int(1), args.Error(2)
}

// --- MockHintRepository ---

type MockHintRepository struct {
	mock.Mock
}

func (m *MockHintRepository) SaveHint(ctx context.Context, hint *domain.Hint) error {
	args := m.Called(ctx, hint)
	return args.Error(0)
}

func (m *MockHintRepository) GetHint(ctx context.Context, quizID, questionID string) (*domain.Hint, error) {
	args := m.Called(ctx, quizID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hint), args.Error(1)
}

// --- MockQuestionGenerator ---

type MockQuestionGenerator struct {
	mock.Mock
}

func (m *MockQuestionGenerator) GenerateQuestions(ctx context.Context, spec domain.GenerationSpec) (domain.QuestionSet, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.QuestionSet), args.Error(1)
}

// --- MockAnswerGrader ---

type MockAnswerGrader struct {
	mock.Mock
}

func (m *MockAnswerGrader) GradeResponses(ctx context.Context, quiz *domain.Quiz, responses []domain.ResponseItem) (*domain.EvaluationResult, error) {
	args := m.Called(ctx, quiz, responses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvaluationResult), args.Error(1)
}

// --- MockHintGenerator ---

type MockHintGenerator struct {
	mock.Mock
}

func (m *MockHintGenerator) GenerateHint(ctx context.Context, quiz *domain.Quiz, question *domain.Question) (string, error) {
	args := m.Called(ctx, quiz, question)
	return args.String(0), args.Error(1)
}
