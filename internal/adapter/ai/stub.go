package ai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"quizforge/internal/domain"
)

// StubCollaborator is a deterministic, dependency-free implementation of all
// three AI contracts. It keeps the full quiz flow working in development and
// in tests where no model endpoint is available.
type StubCollaborator struct{}

// NewStubCollaborator creates a new instance of StubCollaborator.
func NewStubCollaborator() *StubCollaborator {
	return &StubCollaborator{}
}

// GenerateQuestions implements domain.QuestionGenerator with predictable
// placeholder content. The answer is always the letter "A".
func (s *StubCollaborator) GenerateQuestions(ctx context.Context, spec domain.GenerationSpec) (domain.QuestionSet, error) {
	questions := make(domain.QuestionSet, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		questions = append(questions, domain.Question{
			QuestionID: fmt.Sprintf("q%d", i+1),
			Text: fmt.Sprintf("Sample %s question %d for grade %d (%s level)",
				spec.Subject, i+1, spec.Grade, strings.ToLower(string(spec.Difficulty))),
			Kind: domain.QuestionKindMultipleChoice,
			Options: []string{
				fmt.Sprintf("Option A for question %d", i+1),
				fmt.Sprintf("Option B for question %d", i+1),
				fmt.Sprintf("Option C for question %d", i+1),
				fmt.Sprintf("Option D for question %d", i+1),
			},
			CorrectAnswer: "A",
			Explanation:   fmt.Sprintf("This is a sample explanation for question %d", i+1),
		})
	}
	AssignMarks(questions, spec.MaxScore)
	return questions, nil
}

// GradeResponses implements domain.AnswerGrader with exact-match grading.
func (s *StubCollaborator) GradeResponses(ctx context.Context, quiz *domain.Quiz, responses []domain.ResponseItem) (*domain.EvaluationResult, error) {
	results := make([]domain.QuestionResult, 0, len(responses))
	total := 0
	for _, resp := range responses {
		question := quiz.Questions.FindByID(resp.QuestionID)
		if question == nil {
			continue
		}
		correct := resp.UserResponse == question.CorrectAnswer
		marks := 0
		explanation := fmt.Sprintf("Incorrect. The correct answer is %s.", question.CorrectAnswer)
		if correct {
			marks = question.Marks
			total += marks
			explanation = "Correct! Well done."
		}
		results = append(results, domain.QuestionResult{
			QuestionID:    resp.QuestionID,
			UserResponse:  resp.UserResponse,
			CorrectAnswer: question.CorrectAnswer,
			IsCorrect:     correct,
			Marks:         marks,
			Explanation:   explanation,
		})
	}

	percentage := 0.0
	if quiz.MaxScore > 0 {
		percentage = math.Round(float64(total)/float64(quiz.MaxScore)*10000) / 100
	}
	return &domain.EvaluationResult{
		TotalScore:      total,
		MaxScore:        quiz.MaxScore,
		Percentage:      percentage,
		DetailedResults: results,
		Suggestions:     []string{fmt.Sprintf("Keep practicing %s.", quiz.Subject)},
	}, nil
}

// GenerateHint implements domain.HintGenerator.
func (s *StubCollaborator) GenerateHint(ctx context.Context, quiz *domain.Quiz, question *domain.Question) (string, error) {
	return fmt.Sprintf("Re-read the question carefully and eliminate the options that clearly do not fit the topic of %s.", quiz.Subject), nil
}
