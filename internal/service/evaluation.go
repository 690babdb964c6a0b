package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"quizforge/internal/domain"
	"quizforge/internal/logger"

	"go.uber.org/zap"
)

// EvaluationService grades a set of responses against a quiz. It always
// produces a well-formed result: collaborator failures, timeouts and
// malformed grading payloads all land in the local rule-based fallback,
// never in an error surfaced to the submitter.
type EvaluationService interface {
	Evaluate(ctx context.Context, quiz *domain.Quiz, responses []domain.ResponseItem) *domain.EvaluationResult
}

type evaluationServiceImpl struct {
	grader domain.AnswerGrader
}

// NewEvaluationService creates a new instance of evaluationServiceImpl.
func NewEvaluationService(grader domain.AnswerGrader) EvaluationService {
	return &evaluationServiceImpl{grader: grader}
}

// Evaluate implements EvaluationService.
func (s *evaluationServiceImpl) Evaluate(ctx context.Context, quiz *domain.Quiz, responses []domain.ResponseItem) *domain.EvaluationResult {
	if quiz == nil || len(quiz.Questions) == 0 {
		logger.Get().Error("quiz has no questions, cannot evaluate",
			zap.String("quiz_id", quizIDForLog(quiz)))
		maxScore := 0
		if quiz != nil {
			maxScore = quiz.MaxScore
		}
		return &domain.EvaluationResult{
			TotalScore:      0,
			MaxScore:        maxScore,
			Percentage:      0,
			DetailedResults: []domain.QuestionResult{},
			Suggestions:     []string{"Unable to evaluate quiz - no questions found."},
		}
	}

	matched := 0
	for _, resp := range responses {
		if quiz.Questions.FindByID(resp.QuestionID) != nil {
			matched++
		}
	}

	result, err := s.grader.GradeResponses(ctx, quiz, responses)
	if err != nil {
		logger.Get().Warn("grading collaborator failed, using fallback",
			zap.String("quiz_id", quiz.ID), zap.Error(err))
		return s.fallbackEvaluation(quiz, responses)
	}
	if !validResultShape(result, matched, quiz.MaxScore) {
		logger.Get().Warn("grading collaborator returned malformed result, using fallback",
			zap.String("quiz_id", quiz.ID),
			zap.Int("matched_responses", matched))
		return s.fallbackEvaluation(quiz, responses)
	}

	finalize(result, quiz)
	logger.Get().Info("quiz evaluated by collaborator",
		zap.String("quiz_id", quiz.ID),
		zap.Int("total_score", result.TotalScore),
		zap.Int("max_score", result.MaxScore))
	return result
}

// validResultShape accepts a collaborator result only when its breakdown
// covers exactly the responses that match quiz questions and its score is
// inside the possible range.
func validResultShape(result *domain.EvaluationResult, matched, maxScore int) bool {
	if result == nil || result.DetailedResults == nil {
		return false
	}
	if len(result.DetailedResults) != matched {
		return false
	}
	if result.TotalScore < 0 || result.TotalScore > maxScore {
		return false
	}
	return true
}

// fallbackEvaluation is the deterministic local grader. Every quiz question
// gets an entry in the breakdown; unanswered questions score zero.
func (s *evaluationServiceImpl) fallbackEvaluation(quiz *domain.Quiz, responses []domain.ResponseItem) *domain.EvaluationResult {
	logger.Get().Info("using fallback evaluation", zap.String("quiz_id", quiz.ID))

	responsesByID := make(map[string]string, len(responses))
	for _, resp := range responses {
		if _, seen := responsesByID[resp.QuestionID]; !seen {
			responsesByID[resp.QuestionID] = resp.UserResponse
		}
	}

	totalScore := 0
	results := make([]domain.QuestionResult, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		userResponse, answered := responsesByID[question.QuestionID]
		correct := answered && userResponse == question.CorrectAnswer

		marks := 0
		explanation := strings.TrimSpace(fmt.Sprintf("Incorrect. The correct answer is %s. %s",
			question.CorrectAnswer, question.Explanation))
		if correct {
			marks = question.Marks
			totalScore += marks
			explanation = "Correct! Well done."
		}

		results = append(results, domain.QuestionResult{
			QuestionID:    question.QuestionID,
			UserResponse:  userResponse,
			CorrectAnswer: question.CorrectAnswer,
			IsCorrect:     correct,
			Marks:         marks,
			Explanation:   explanation,
		})
	}

	maxScore := quiz.MaxScore
	if maxScore <= 0 {
		maxScore = quiz.Questions.TotalMarks()
	}

	return &domain.EvaluationResult{
		TotalScore:      totalScore,
		MaxScore:        maxScore,
		Percentage:      roundPercentage(totalScore, maxScore),
		DetailedResults: results,
		Suggestions:     buildSuggestions(quiz.Subject, results, roundPercentage(totalScore, maxScore)),
	}
}

// finalize normalizes an accepted collaborator result so the caller never
// sees nil fields or an inconsistent percentage.
func finalize(result *domain.EvaluationResult, quiz *domain.Quiz) {
	if result.MaxScore <= 0 {
		result.MaxScore = quiz.MaxScore
	}
	result.Percentage = roundPercentage(result.TotalScore, result.MaxScore)
	if result.DetailedResults == nil {
		result.DetailedResults = []domain.QuestionResult{}
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
}

func buildSuggestions(subject string, results []domain.QuestionResult, percentage float64) []string {
	incorrect := 0
	for _, r := range results {
		if !r.IsCorrect {
			incorrect++
		}
	}
	if subject == "" {
		subject = "this topic"
	}

	switch {
	case incorrect == 0 && len(results) > 0:
		return []string{"Excellent work! You got all questions correct."}
	case percentage >= 80:
		return []string{"Great job! Review the questions you missed to strengthen your understanding."}
	case percentage >= 60:
		return []string{fmt.Sprintf("Good effort! Focus on reviewing %s concepts to improve your score.", subject)}
	default:
		return []string{
			fmt.Sprintf("Keep practicing! Consider reviewing the fundamentals of %s.", subject),
			"Try studying with additional resources or ask for help with challenging topics.",
		}
	}
}

func roundPercentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(maxScore)*10000) / 100
}

func quizIDForLog(quiz *domain.Quiz) string {
	if quiz == nil {
		return ""
	}
	return quiz.ID
}
