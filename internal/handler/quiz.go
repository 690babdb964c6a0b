package handler

import (
	"strconv"

	"quizforge/internal/domain"
	"quizforge/internal/dto"
	"quizforge/internal/middleware"
	"quizforge/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	quizService    service.QuizService
	historyService service.HistoryService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(quizService service.QuizService, historyService service.HistoryService) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		historyService: historyService,
	}
}

// GenerateQuiz handles POST /api/quiz/generate
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	quiz, err := h.quizService.GenerateQuiz(c.Context(), middleware.UserID(c), service.GenerateQuizParams{
		Subject:        req.Subject,
		Grade:          req.Grade,
		TotalQuestions: req.TotalQuestions,
		MaxScore:       req.MaxScore,
		Difficulty:     req.Difficulty,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"quiz":    dto.ToQuizResponse(quiz, true),
	})
}

// GetQuiz handles GET /api/quiz/:quizId
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quizID := c.Params("quizId")
	detail, err := h.quizService.GetQuiz(c.Context(), quizID, middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"quiz": dto.QuizDetailResponse{
			Quiz: dto.ToQuizResponse(detail.Quiz, false),
			Stats: dto.QuizStatsResponse{
				TotalAttempts: detail.Stats.TotalAttempts,
				AverageScore:  detail.Stats.AverageScore,
				HighestScore:  detail.Stats.HighestScore,
				UniqueUsers:   detail.Stats.UniqueUsers,
			},
			LastSubmission: dto.ToSubmissionResponse(detail.LastSubmission),
		},
	})
}

// SubmitQuiz handles POST /api/quiz/:quizId/submit
func (h *QuizHandler) SubmitQuiz(c *fiber.Ctx) error {
	return h.handleSubmission(c, false)
}

// RetryQuiz handles POST /api/quiz/:quizId/retry
func (h *QuizHandler) RetryQuiz(c *fiber.Ctx) error {
	return h.handleSubmission(c, true)
}

func (h *QuizHandler) handleSubmission(c *fiber.Ctx, isRetry bool) error {
	var req dto.SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	responses := make([]domain.ResponseItem, 0, len(req.Responses))
	for _, item := range req.Responses {
		responses = append(responses, domain.ResponseItem{
			QuestionID:   item.QuestionID,
			UserResponse: item.UserResponse,
		})
	}

	quizID := c.Params("quizId")
	userID := middleware.UserID(c)

	var submission *domain.Submission
	var err error
	if isRetry {
		submission, err = h.quizService.RetryQuiz(c.Context(), quizID, userID, responses)
	} else {
		submission, err = h.quizService.SubmitQuiz(c.Context(), quizID, userID, responses)
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"submission": dto.ToSubmissionResponse(submission),
	})
}

// DeleteQuiz handles DELETE /api/quiz/:quizId
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	if err := h.quizService.DeleteQuiz(c.Context(), c.Params("quizId"), middleware.UserID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Quiz deleted successfully",
	})
}

// GetHint handles GET /api/quiz/:quizId/hint/:questionId
func (h *QuizHandler) GetHint(c *fiber.Ctx) error {
	hint, err := h.quizService.GetHint(c.Context(), c.Params("quizId"), c.Params("questionId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"hint": dto.HintResponse{
			QuizID:     hint.QuizID,
			QuestionID: hint.QuestionID,
			Hint:       hint.Text,
		},
	})
}

// GetHistory handles GET /api/history
func (h *QuizHandler) GetHistory(c *fiber.Ctx) error {
	filters := domain.SubmissionFilters{
		Subject:        c.Query("subject"),
		IncludeRetries: c.QueryBool("includeRetries"),
		Limit:          c.QueryInt("limit", 10),
		Offset:         c.QueryInt("offset", 0),
	}
	if grade := c.Query("grade"); grade != "" {
		g, err := strconv.Atoi(grade)
		if err != nil || g < 1 || g > 12 {
			return domain.NewInvalidInputError("grade must be between 1 and 12")
		}
		filters.Grade = g
	}

	page, err := h.historyService.ListHistory(c.Context(), middleware.UserID(c), filters)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"history": dto.ToHistoryResponse(page),
	})
}
