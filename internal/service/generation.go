package service

import (
	"context"

	"quizforge/internal/codec"
	"quizforge/internal/domain"
	"quizforge/internal/logger"

	"go.uber.org/zap"
)

const maxGenerationAttempts = 2

// GenerationService produces a validated question set for a quiz. The
// primary collaborator gets two attempts; results that fail structural
// validation count as failures. After that the deterministic local
// generator takes over, so quiz creation never fails for AI reasons.
type GenerationService interface {
	GenerateQuestions(ctx context.Context, spec domain.GenerationSpec) domain.QuestionSet
}

type generationServiceImpl struct {
	primary  domain.QuestionGenerator
	fallback domain.QuestionGenerator
}

// NewGenerationService creates a new instance of generationServiceImpl.
// fallback must be a generator that cannot fail, such as the local stub.
func NewGenerationService(primary, fallback domain.QuestionGenerator) GenerationService {
	return &generationServiceImpl{primary: primary, fallback: fallback}
}

// GenerateQuestions implements GenerationService.
func (s *generationServiceImpl) GenerateQuestions(ctx context.Context, spec domain.GenerationSpec) domain.QuestionSet {
	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		generated, err := s.primary.GenerateQuestions(ctx, spec)
		if err != nil {
			logger.Get().Warn("question generation attempt failed",
				zap.Int("attempt", attempt),
				zap.String("subject", spec.Subject),
				zap.Error(err))
			continue
		}

		validated := codec.Validate(generated)
		if len(validated) == spec.Count {
			alignMarks(validated, spec.MaxScore)
			logger.Get().Info("questions generated",
				zap.Int("attempt", attempt),
				zap.String("subject", spec.Subject),
				zap.Int("count", len(validated)))
			return validated
		}

		logger.Get().Warn("generated questions failed validation",
			zap.Int("attempt", attempt),
			zap.Int("requested", spec.Count),
			zap.Int("validated", len(validated)))
	}

	logger.Get().Warn("falling back to local question generator",
		zap.String("subject", spec.Subject),
		zap.Int("count", spec.Count))

	questions, err := s.fallback.GenerateQuestions(ctx, spec)
	if err != nil {
		// The stub generator never errors; guard anyway.
		logger.Get().Error("fallback generator failed", zap.Error(err))
		return domain.QuestionSet{}
	}
	validated := codec.Validate(questions)
	alignMarks(validated, spec.MaxScore)
	return validated
}

// alignMarks pins the marks sum to the requested maxScore after validation,
// which may have bumped zero marks. The first question absorbs the
// difference, matching the creation-time distribution rule.
func alignMarks(qs domain.QuestionSet, maxScore int) {
	if len(qs) == 0 || maxScore <= 0 {
		return
	}
	if diff := maxScore - qs.TotalMarks(); diff != 0 {
		qs[0].Marks += diff
	}
}
