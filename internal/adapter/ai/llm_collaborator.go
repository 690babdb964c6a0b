package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"quizforge/internal/domain"
	"quizforge/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 30 * time.Second

// LLMCollaborator implements the generation, grading and hint contracts on
// top of a single langchaingo model. The raw model output is always treated
// as untrusted: responses are trimmed, the JSON payload is extracted from
// whatever prose surrounds it, and parse failures surface as collaborator
// errors for the caller's fallback path.
type LLMCollaborator struct {
	model   llms.Model
	timeout time.Duration
}

// NewLLMCollaborator creates a new instance of LLMCollaborator.
func NewLLMCollaborator(model llms.Model, timeout time.Duration) *LLMCollaborator {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &LLMCollaborator{model: model, timeout: timeout}
}

// generatedQuestion is the wire shape the generation prompt asks for.
type generatedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// GenerateQuestions implements domain.QuestionGenerator. Question ids and
// marks are assigned locally; the model is only trusted for content.
func (c *LLMCollaborator) GenerateQuestions(ctx context.Context, spec domain.GenerationSpec) (domain.QuestionSet, error) {
	prompt := fmt.Sprintf(`You are an expert teacher creating a quiz for grade %d students.

Generate exactly %d multiple choice questions about %s at %s difficulty.

Respond with ONLY a JSON array. Each element must have this shape:
{
  "question": "the question text",
  "options": ["first option", "second option", "third option", "fourth option"],
  "correctAnswer": "A",
  "explanation": "one or two sentences explaining the answer"
}

Rules:
1. Every question must have exactly 4 options.
2. correctAnswer must be exactly one of the letters "A", "B", "C" or "D",
   where "A" refers to the first option and "D" to the fourth.
3. Questions must be age-appropriate for grade %d.
4. Do not include any text outside the JSON array.`,
		spec.Grade, spec.Count, spec.Subject, strings.ToLower(string(spec.Difficulty)), spec.Grade)

	raw, err := c.call(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload, ok := extractJSON(raw, '[', ']')
	if !ok {
		logger.Get().Error("no JSON array found in generation response",
			zap.String("response", truncateForLog(raw)))
		return nil, domain.NewCollaboratorError(fmt.Errorf("no JSON array in model response"))
	}

	var generated []generatedQuestion
	if err := json.Unmarshal([]byte(payload), &generated); err != nil {
		logger.Get().Error("failed to unmarshal generation response",
			zap.Error(err), zap.String("payload", truncateForLog(payload)))
		return nil, domain.NewCollaboratorError(fmt.Errorf("failed to parse model response: %w", err))
	}
	if len(generated) == 0 {
		return nil, domain.NewCollaboratorError(fmt.Errorf("model returned no questions"))
	}

	questions := make(domain.QuestionSet, 0, len(generated))
	for i, g := range generated {
		if g.Question == "" || len(g.Options) != 4 {
			logger.Get().Warn("skipping incomplete generated question", zap.Int("index", i))
			continue
		}
		g.CorrectAnswer = strings.ToUpper(strings.TrimSpace(g.CorrectAnswer))
		if !isAnswerLetter(g.CorrectAnswer) {
			logger.Get().Warn("skipping question with non-letter answer",
				zap.Int("index", i), zap.String("correct_answer", g.CorrectAnswer))
			continue
		}
		questions = append(questions, domain.Question{
			QuestionID:    fmt.Sprintf("q%d", len(questions)+1),
			Text:          g.Question,
			Kind:          domain.QuestionKindMultipleChoice,
			Options:       g.Options,
			CorrectAnswer: g.CorrectAnswer,
			Explanation:   g.Explanation,
		})
	}
	if len(questions) == 0 {
		return nil, domain.NewCollaboratorError(fmt.Errorf("model returned no usable questions"))
	}

	AssignMarks(questions, spec.MaxScore)
	return questions, nil
}

// GradeResponses implements domain.AnswerGrader. The result shape is not
// validated here; the evaluation service decides whether to accept it.
func (c *LLMCollaborator) GradeResponses(ctx context.Context, quiz *domain.Quiz, responses []domain.ResponseItem) (*domain.EvaluationResult, error) {
	quizJSON, err := json.Marshal(quiz.Questions)
	if err != nil {
		return nil, domain.NewCollaboratorError(fmt.Errorf("failed to serialize questions: %w", err))
	}
	responsesJSON, err := json.Marshal(responses)
	if err != nil {
		return nil, domain.NewCollaboratorError(fmt.Errorf("failed to serialize responses: %w", err))
	}

	prompt := fmt.Sprintf(`You are a strict but encouraging quiz grader.

Quiz questions (with correct answers):
%s

Student responses:
%s

Grade each response. Respond with ONLY a JSON object of this shape:
{
  "totalScore": 0,
  "maxScore": %d,
  "percentage": 0.0,
  "detailedResults": [
    {
      "questionId": "q1",
      "userResponse": "the student's answer",
      "correctAnswer": "the correct answer",
      "isCorrect": true,
      "marks": 0,
      "explanation": "brief feedback for the student"
    }
  ],
  "suggestions": ["one or two short study suggestions"]
}

Rules:
1. Award full marks for a correct answer, zero otherwise.
2. detailedResults must contain exactly one entry per student response, in order.
3. Explanations must be under 50 words and address the student directly.`,
		quizJSON, responsesJSON, quiz.MaxScore)

	raw, err := c.call(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload, ok := extractJSON(raw, '{', '}')
	if !ok {
		logger.Get().Error("no JSON object found in grading response",
			zap.String("response", truncateForLog(raw)))
		return nil, domain.NewCollaboratorError(fmt.Errorf("no JSON object in model response"))
	}

	var result domain.EvaluationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		logger.Get().Error("failed to unmarshal grading response",
			zap.Error(err), zap.String("payload", truncateForLog(payload)))
		return nil, domain.NewCollaboratorError(fmt.Errorf("failed to parse model response: %w", err))
	}
	return &result, nil
}

// GenerateHint implements domain.HintGenerator.
func (c *LLMCollaborator) GenerateHint(ctx context.Context, quiz *domain.Quiz, question *domain.Question) (string, error) {
	prompt := fmt.Sprintf(`You are a helpful tutor for grade %d %s.

Question: %s
Options: %s

Give the student one short hint that nudges them toward the answer without
revealing it. Respond with the hint text only, no preamble, under 40 words.
Never mention the correct answer.`,
		quiz.Grade, quiz.Subject, question.Text, strings.Join(question.Options, ", "))

	raw, err := c.call(ctx, prompt)
	if err != nil {
		return "", err
	}

	hint := strings.TrimSpace(stripThinkTags(raw))
	hint = strings.Trim(hint, `"`)
	if hint == "" {
		return "", domain.NewCollaboratorError(fmt.Errorf("model returned an empty hint"))
	}
	return hint, nil
}

func (c *LLMCollaborator) call(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := llms.GenerateFromSinglePrompt(callCtx, c.model, prompt,
		llms.WithTemperature(0.2))
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			logger.Get().Error("AI request timed out", zap.Duration("timeout", c.timeout))
			return "", domain.NewCollaboratorError(fmt.Errorf("AI request timed out after %s: %w", c.timeout, err))
		}
		logger.Get().Error("AI request failed", zap.Error(err))
		return "", domain.NewCollaboratorError(err)
	}
	return response, nil
}

// isAnswerLetter reports whether s is one of the four answer letters the
// multiple choice data model allows.
func isAnswerLetter(s string) bool {
	switch s {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

// AssignMarks distributes maxScore across the questions: every question
// gets the floor share and the first question absorbs the remainder, so the
// marks always sum to maxScore exactly.
func AssignMarks(questions domain.QuestionSet, maxScore int) {
	if len(questions) == 0 || maxScore <= 0 {
		return
	}
	base := maxScore / len(questions)
	remainder := maxScore - base*len(questions)
	for i := range questions {
		questions[i].Marks = base
	}
	questions[0].Marks += remainder
}

// extractJSON returns the first balanced-looking payload between open and
// close, stripping reasoning tags first. Models often wrap JSON in prose or
// markdown fences; taking the outermost delimiters handles both.
func extractJSON(s string, open, close byte) (string, bool) {
	s = stripThinkTags(s)
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func stripThinkTags(s string) string {
	if thinkStart := strings.Index(s, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(s, "</think>"); thinkEnd != -1 && thinkEnd > thinkStart {
			return strings.TrimSpace(s[:thinkStart] + s[thinkEnd+len("</think>"):])
		}
	}
	return s
}

func truncateForLog(s string) string {
	const maxLen = 500
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
