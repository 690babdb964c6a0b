package dto

import (
	"time"

	"quizforge/internal/domain"
	"quizforge/internal/service"
)

// GenerateQuizRequest is the payload for POST /api/quiz/generate.
type GenerateQuizRequest struct {
	Subject        string `json:"subject"`
	Grade          int    `json:"grade"`
	TotalQuestions int    `json:"totalQuestions"`
	MaxScore       int    `json:"maxScore"`
	Difficulty     string `json:"difficulty"`
}

// Validate checks the request before it reaches the service.
func (r *GenerateQuizRequest) Validate() error {
	if r.Subject == "" {
		return domain.NewInvalidInputError("subject is required")
	}
	if r.Grade < 1 || r.Grade > 12 {
		return domain.NewInvalidInputError("grade must be between 1 and 12")
	}
	// Zero means "use the service default" for both counts.
	if r.TotalQuestions < 0 || r.TotalQuestions > 50 {
		return domain.NewInvalidInputError("totalQuestions must be between 0 and 50")
	}
	if r.MaxScore < 0 || r.MaxScore > 1000 {
		return domain.NewInvalidInputError("maxScore must be between 0 and 1000")
	}
	return nil
}

// QuestionResponse is the API shape of one question. CorrectAnswer and
// Explanation are omitted on views where the user has not answered yet.
type QuestionResponse struct {
	QuestionID    string   `json:"questionId"`
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
	Marks         int      `json:"marks"`
	Explanation   string   `json:"explanation,omitempty"`
}

// QuizResponse is the API shape of a quiz.
type QuizResponse struct {
	QuizID         string             `json:"quizId"`
	Title          string             `json:"title"`
	Subject        string             `json:"subject"`
	Grade          int                `json:"grade"`
	Difficulty     string             `json:"difficulty"`
	TotalQuestions int                `json:"totalQuestions"`
	MaxScore       int                `json:"maxScore"`
	Questions      []QuestionResponse `json:"questions"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// QuizStatsResponse aggregates submission activity for a quiz.
type QuizStatsResponse struct {
	TotalAttempts int     `json:"totalAttempts"`
	AverageScore  float64 `json:"averageScore"`
	HighestScore  float64 `json:"highestScore"`
	UniqueUsers   int     `json:"uniqueUsers"`
}

// QuizDetailResponse is the full read model returned by GET /api/quiz/:quizId.
type QuizDetailResponse struct {
	Quiz           QuizResponse        `json:"quiz"`
	Stats          QuizStatsResponse   `json:"stats"`
	LastSubmission *SubmissionResponse `json:"lastSubmission,omitempty"`
}

// SubmitQuizRequest is the payload for POST /api/quiz/:quizId/submit.
type SubmitQuizRequest struct {
	Responses []ResponseItem `json:"responses"`
}

// ResponseItem is one answer within a submission payload.
type ResponseItem struct {
	QuestionID   string `json:"questionId"`
	UserResponse string `json:"userResponse"`
}

// Validate checks the submission payload.
func (r *SubmitQuizRequest) Validate() error {
	if len(r.Responses) == 0 {
		return domain.NewInvalidInputError("responses cannot be empty")
	}
	for _, item := range r.Responses {
		if item.QuestionID == "" {
			return domain.NewInvalidInputError("every response needs a questionId")
		}
	}
	return nil
}

// QuestionResultResponse is the per-question grading breakdown.
type QuestionResultResponse struct {
	QuestionID    string `json:"questionId"`
	UserResponse  string `json:"userResponse"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Marks         int    `json:"marks"`
	Explanation   string `json:"explanation"`
}

// SubmissionResponse is the API shape of a graded submission.
type SubmissionResponse struct {
	SubmissionID         string                   `json:"submissionId"`
	QuizID               string                   `json:"quizId"`
	Score                int                      `json:"score"`
	MaxScore             int                      `json:"maxScore"`
	Percentage           float64                  `json:"percentage"`
	DetailedResults      []QuestionResultResponse `json:"detailedResults"`
	Suggestions          []string                 `json:"suggestions"`
	CompletedAt          time.Time                `json:"completedAt"`
	IsRetry              bool                     `json:"isRetry"`
	OriginalSubmissionID string                   `json:"originalSubmissionId,omitempty"`
}

// HintResponse is the API shape of a question hint.
type HintResponse struct {
	QuizID     string `json:"quizId"`
	QuestionID string `json:"questionId"`
	Hint       string `json:"hint"`
}

// HistoryItemResponse is one row of the submission history listing.
type HistoryItemResponse struct {
	SubmissionID string    `json:"submissionId"`
	QuizID       string    `json:"quizId"`
	QuizTitle    string    `json:"quizTitle"`
	Subject      string    `json:"subject"`
	Grade        int       `json:"grade"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"maxScore"`
	Percentage   float64   `json:"percentage"`
	CompletedAt  time.Time `json:"completedAt"`
	IsRetry      bool      `json:"isRetry"`
}

// HistoryResponse is one page of submission history.
type HistoryResponse struct {
	Items  []HistoryItemResponse `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// ToQuizResponse maps a domain quiz to its API shape. includeAnswers
// controls whether correct answers and explanations are exposed.
func ToQuizResponse(quiz *domain.Quiz, includeAnswers bool) QuizResponse {
	questions := make([]QuestionResponse, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		item := QuestionResponse{
			QuestionID: q.QuestionID,
			Question:   q.Text,
			Type:       string(q.Kind),
			Options:    q.Options,
			Marks:      q.Marks,
		}
		if includeAnswers {
			item.CorrectAnswer = q.CorrectAnswer
			item.Explanation = q.Explanation
		}
		questions = append(questions, item)
	}
	return QuizResponse{
		QuizID:         quiz.ID,
		Title:          quiz.Title,
		Subject:        quiz.Subject,
		Grade:          quiz.Grade,
		Difficulty:     string(quiz.Difficulty),
		TotalQuestions: quiz.TotalQuestions,
		MaxScore:       quiz.MaxScore,
		Questions:      questions,
		CreatedAt:      quiz.CreatedAt,
	}
}

// ToSubmissionResponse maps a domain submission to its API shape.
func ToSubmissionResponse(sub *domain.Submission) *SubmissionResponse {
	if sub == nil {
		return nil
	}
	results := make([]QuestionResultResponse, 0, len(sub.DetailedResults))
	for _, r := range sub.DetailedResults {
		results = append(results, QuestionResultResponse{
			QuestionID:    r.QuestionID,
			UserResponse:  r.UserResponse,
			CorrectAnswer: r.CorrectAnswer,
			IsCorrect:     r.IsCorrect,
			Marks:         r.Marks,
			Explanation:   r.Explanation,
		})
	}
	suggestions := sub.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return &SubmissionResponse{
		SubmissionID:         sub.ID,
		QuizID:               sub.QuizID,
		Score:                sub.Score,
		MaxScore:             sub.MaxScore,
		Percentage:           sub.Percentage,
		DetailedResults:      results,
		Suggestions:          suggestions,
		CompletedAt:          sub.CompletedAt,
		IsRetry:              sub.IsRetry,
		OriginalSubmissionID: sub.OriginalSubmissionID,
	}
}

// ToHistoryResponse maps a history page to its API shape.
func ToHistoryResponse(page *service.SubmissionHistory) HistoryResponse {
	items := make([]HistoryItemResponse, 0, len(page.Items))
	for _, s := range page.Items {
		items = append(items, HistoryItemResponse{
			SubmissionID: s.SubmissionID,
			QuizID:       s.QuizID,
			QuizTitle:    s.QuizTitle,
			Subject:      s.Subject,
			Grade:        s.Grade,
			Score:        s.Score,
			MaxScore:     s.MaxScore,
			Percentage:   s.Percentage,
			CompletedAt:  s.CompletedAt,
			IsRetry:      s.IsRetry,
		})
	}
	return HistoryResponse{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
}
