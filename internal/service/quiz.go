package service

import (
	"context"
	"fmt"
	"time"

	"quizforge/internal/cache"
	"quizforge/internal/domain"
	"quizforge/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultQuestionCount = 5
	defaultMaxScore      = 10
)

// GenerateQuizParams carries the user-facing inputs for quiz creation.
type GenerateQuizParams struct {
	Subject        string
	Grade          int
	TotalQuestions int
	MaxScore       int
	Difficulty     string
}

// QuizDetail is the full read model for a quiz: the quiz itself, its
// aggregate stats and the requesting user's most recent submission.
type QuizDetail struct {
	Quiz           *domain.Quiz
	Stats          *domain.QuizStats
	LastSubmission *domain.Submission
}

// QuizService orchestrates quiz generation, retrieval, submission grading,
// retries, deletion and hints.
type QuizService interface {
	GenerateQuiz(ctx context.Context, userID string, params GenerateQuizParams) (*domain.Quiz, error)

	// GetQuiz returns the quiz with stats and the user's last submission.
	// A missing quiz yields a not-found domain error.
	GetQuiz(ctx context.Context, quizID, userID string) (*QuizDetail, error)

	SubmitQuiz(ctx context.Context, quizID, userID string, responses []domain.ResponseItem) (*domain.Submission, error)

	// RetryQuiz grades a fresh attempt against the unchanged quiz. It
	// requires a prior submission and records the new one as a retry
	// pointing back at the original.
	RetryQuiz(ctx context.Context, quizID, userID string, responses []domain.ResponseItem) (*domain.Submission, error)

	// DeleteQuiz removes the quiz and its children. Only the owner may
	// delete a quiz.
	DeleteQuiz(ctx context.Context, quizID, userID string) error

	// GetHint returns a hint for one question, generating and persisting
	// it on first request.
	GetHint(ctx context.Context, quizID, questionID string) (*domain.Hint, error)
}

type quizServiceImpl struct {
	quizRepo       domain.QuizRepository
	submissionRepo domain.SubmissionRepository
	hintRepo       domain.HintRepository
	quizCache      QuizCacheService
	rawCache       domain.Cache
	generation     GenerationService
	evaluation     EvaluationService
	hinter         domain.HintGenerator
	history        HistoryService
	hintTTL        time.Duration
}

// NewQuizService creates a new instance of quizServiceImpl.
func NewQuizService(
	quizRepo domain.QuizRepository,
	submissionRepo domain.SubmissionRepository,
	hintRepo domain.HintRepository,
	quizCache QuizCacheService,
	rawCache domain.Cache,
	generation GenerationService,
	evaluation EvaluationService,
	hinter domain.HintGenerator,
	history HistoryService,
	hintTTL time.Duration,
) QuizService {
	if hintTTL <= 0 {
		hintTTL = 24 * time.Hour
	}
	return &quizServiceImpl{
		quizRepo:       quizRepo,
		submissionRepo: submissionRepo,
		hintRepo:       hintRepo,
		quizCache:      quizCache,
		rawCache:       rawCache,
		generation:     generation,
		evaluation:     evaluation,
		hinter:         hinter,
		history:        history,
		hintTTL:        hintTTL,
	}
}

// GenerateQuiz implements QuizService.
func (s *quizServiceImpl) GenerateQuiz(ctx context.Context, userID string, params GenerateQuizParams) (*domain.Quiz, error) {
	if params.TotalQuestions <= 0 {
		params.TotalQuestions = defaultQuestionCount
	}
	if params.MaxScore <= 0 {
		params.MaxScore = defaultMaxScore
	}
	difficulty := domain.NormalizeDifficulty(params.Difficulty)

	spec := domain.GenerationSpec{
		Grade:      params.Grade,
		Subject:    params.Subject,
		Count:      params.TotalQuestions,
		MaxScore:   params.MaxScore,
		Difficulty: difficulty,
	}
	questions := s.generation.GenerateQuestions(ctx, spec)

	draft := &domain.QuizDraft{
		OwnerUserID:    userID,
		Title:          fmt.Sprintf("Grade %d %s Quiz", params.Grade, params.Subject),
		Subject:        params.Subject,
		Grade:          params.Grade,
		Difficulty:     difficulty,
		TotalQuestions: params.TotalQuestions,
		MaxScore:       params.MaxScore,
		Questions:      questions,
	}

	quiz, err := s.quizRepo.CreateQuiz(ctx, draft)
	if err != nil {
		return nil, err
	}
	s.quizCache.SetQuiz(ctx, quiz)
	return quiz, nil
}

// GetQuiz implements QuizService. Stats and the last submission are loaded
// concurrently once the quiz itself is known to exist.
func (s *quizServiceImpl) GetQuiz(ctx context.Context, quizID, userID string) (*QuizDetail, error) {
	quiz, err := s.quizCache.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	detail := &QuizDetail{Quiz: quiz}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.quizRepo.GetQuizStats(gctx, quizID)
		if err != nil {
			return err
		}
		detail.Stats = stats
		return nil
	})
	g.Go(func() error {
		last, err := s.submissionRepo.GetLastSubmission(gctx, userID, quizID)
		if err != nil {
			return err
		}
		detail.LastSubmission = last
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

// SubmitQuiz implements QuizService.
func (s *quizServiceImpl) SubmitQuiz(ctx context.Context, quizID, userID string, responses []domain.ResponseItem) (*domain.Submission, error) {
	return s.submit(ctx, quizID, userID, responses, false)
}

// RetryQuiz implements QuizService.
func (s *quizServiceImpl) RetryQuiz(ctx context.Context, quizID, userID string, responses []domain.ResponseItem) (*domain.Submission, error) {
	return s.submit(ctx, quizID, userID, responses, true)
}

func (s *quizServiceImpl) submit(ctx context.Context, quizID, userID string, responses []domain.ResponseItem, isRetry bool) (*domain.Submission, error) {
	if len(responses) == 0 {
		return nil, domain.NewInvalidInputError("responses cannot be empty")
	}

	quiz, err := s.quizCache.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	originalSubmissionID := ""
	if isRetry {
		last, err := s.submissionRepo.GetLastSubmission(ctx, userID, quizID)
		if err != nil {
			return nil, err
		}
		if last == nil {
			return nil, domain.NewSubmissionNotFoundError(quizID)
		}
		originalSubmissionID = last.OriginalSubmissionID
		if originalSubmissionID == "" {
			originalSubmissionID = last.ID
		}
	}

	result := s.evaluation.Evaluate(ctx, quiz, responses)

	submission := &domain.Submission{
		QuizID:               quizID,
		UserID:               userID,
		Responses:            responses,
		Score:                result.TotalScore,
		MaxScore:             result.MaxScore,
		Percentage:           result.Percentage,
		DetailedResults:      result.DetailedResults,
		Suggestions:          result.Suggestions,
		IsRetry:              isRetry,
		OriginalSubmissionID: originalSubmissionID,
	}
	if err := s.submissionRepo.CreateSubmission(ctx, submission); err != nil {
		return nil, err
	}

	s.history.InvalidateUser(ctx, userID)
	return submission, nil
}

// DeleteQuiz implements QuizService. The repository is consulted directly
// for the ownership check so a stale cache entry cannot authorize a delete.
func (s *quizServiceImpl) DeleteQuiz(ctx context.Context, quizID, userID string) error {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz == nil {
		return domain.NewQuizNotFoundError(quizID)
	}
	if quiz.OwnerUserID != userID {
		return domain.NewError(domain.CodeUnauthorized, "only the quiz owner can delete it", nil)
	}

	if err := s.quizRepo.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}

	s.quizCache.InvalidateQuiz(ctx, quizID)
	if err := s.rawCache.DeleteByPattern(ctx, hintCachePattern(quizID)); err != nil {
		logger.Get().Warn("hint cache invalidation failed",
			zap.String("quiz_id", quizID), zap.Error(err))
	}
	return nil
}

// GetHint implements QuizService. Lookup order is cache, repository, then
// the AI collaborator; a collaborator failure degrades to a generic hint
// that is served but never persisted.
func (s *quizServiceImpl) GetHint(ctx context.Context, quizID, questionID string) (*domain.Hint, error) {
	key := hintCacheKey(quizID, questionID)
	if text, err := s.rawCache.Get(ctx, key); err == nil && text != "" {
		return &domain.Hint{QuizID: quizID, QuestionID: questionID, Text: text}, nil
	}

	quiz, err := s.quizCache.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	question := quiz.Questions.FindByID(questionID)
	if question == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("question %s not found in quiz %s", questionID, quizID))
	}

	if stored, err := s.hintRepo.GetHint(ctx, quizID, questionID); err == nil && stored != nil {
		s.cacheHint(ctx, key, stored.Text)
		return stored, nil
	}

	text, err := s.hinter.GenerateHint(ctx, quiz, question)
	if err != nil {
		logger.Get().Warn("hint generation failed, using generic hint",
			zap.String("quiz_id", quizID),
			zap.String("question_id", questionID),
			zap.Error(err))
		return &domain.Hint{
			QuizID:     quizID,
			QuestionID: questionID,
			Text: fmt.Sprintf("Think carefully about the key concepts related to %s for grade %d. Consider each option and eliminate the ones that don't make sense.",
				quiz.Subject, quiz.Grade),
		}, nil
	}

	hint := &domain.Hint{QuizID: quizID, QuestionID: questionID, Text: text}
	if err := s.hintRepo.SaveHint(ctx, hint); err != nil {
		logger.Get().Warn("failed to persist hint",
			zap.String("quiz_id", quizID), zap.Error(err))
	}
	s.cacheHint(ctx, key, text)
	return hint, nil
}

func (s *quizServiceImpl) cacheHint(ctx context.Context, key, text string) {
	if err := s.rawCache.Set(ctx, key, text, s.hintTTL); err != nil {
		logger.Get().Warn("hint cache write failed", zap.Error(err))
	}
}

func hintCacheKey(quizID, questionID string) string {
	return cache.GenerateCacheKey("hint", "text", quizID, questionID)
}

func hintCachePattern(quizID string) string {
	return cache.GenerateCacheKey("hint", "text", quizID) + "*"
}
