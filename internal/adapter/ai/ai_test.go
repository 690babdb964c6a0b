package ai

import (
	"context"
	"testing"

	"quizforge/internal/config"
	"quizforge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestAssignMarks(t *testing.T) {
	t.Run("EvenSplit", func(t *testing.T) {
		qs := domain.QuestionSet{{QuestionID: "q1"}, {QuestionID: "q2"}}
		AssignMarks(qs, 10)
		assert.Equal(t, 5, qs[0].Marks)
		assert.Equal(t, 5, qs[1].Marks)
	})

	t.Run("RemainderGoesToFirstQuestion", func(t *testing.T) {
		qs := domain.QuestionSet{{QuestionID: "q1"}, {QuestionID: "q2"}, {QuestionID: "q3"}}
		AssignMarks(qs, 10)
		assert.Equal(t, 4, qs[0].Marks)
		assert.Equal(t, 3, qs[1].Marks)
		assert.Equal(t, 3, qs[2].Marks)
		assert.Equal(t, 10, qs.TotalMarks())
	})

	t.Run("EmptySet", func(t *testing.T) {
		AssignMarks(nil, 10) // must not panic
	})
}

func TestExtractJSON(t *testing.T) {
	t.Run("BareArray", func(t *testing.T) {
		payload, ok := extractJSON(`[{"a":1}]`, '[', ']')
		require.True(t, ok)
		assert.Equal(t, `[{"a":1}]`, payload)
	})

	t.Run("MarkdownFenced", func(t *testing.T) {
		raw := "Here you go:\n```json\n[{\"a\":1}]\n```\nEnjoy!"
		payload, ok := extractJSON(raw, '[', ']')
		require.True(t, ok)
		assert.Equal(t, `[{"a":1}]`, payload)
	})

	t.Run("ThinkTagsStripped", func(t *testing.T) {
		raw := "<think>let me reason about this</think>{\"score\": 1}"
		payload, ok := extractJSON(raw, '{', '}')
		require.True(t, ok)
		assert.Equal(t, `{"score": 1}`, payload)
	})

	t.Run("NoPayload", func(t *testing.T) {
		_, ok := extractJSON("sorry, I cannot help with that", '{', '}')
		assert.False(t, ok)
	})
}

func TestStubCollaborator_GenerateQuestions(t *testing.T) {
	stub := NewStubCollaborator()

	questions, err := stub.GenerateQuestions(context.Background(), domain.GenerationSpec{
		Grade:      5,
		Subject:    "Math",
		Count:      3,
		MaxScore:   10,
		Difficulty: domain.DifficultyMedium,
	})
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, "q1", questions[0].QuestionID)
	assert.Equal(t, "q3", questions[2].QuestionID)
	assert.Len(t, questions[0].Options, 4)
	assert.Equal(t, "Sample Math question 1 for grade 5 (medium level)", questions[0].Text)
	assert.Equal(t, 10, questions.TotalMarks())
	for _, q := range questions {
		assert.Contains(t, []string{"A", "B", "C", "D"}, q.CorrectAnswer)
	}
}

// fakeModel plays back a canned completion so collaborator parsing can be
// exercised without a model endpoint.
type fakeModel struct {
	response string
	err      error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.response}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.response, f.err
}

func TestLLMCollaborator_GenerateQuestions_EnforcesLetterAnswers(t *testing.T) {
	response := `[
		{"question":"Q one?","options":["a","b","c","d"],"correctAnswer":"B","explanation":"first"},
		{"question":"Q two?","options":["a","b","c","d"],"correctAnswer":"Option B","explanation":"verbatim option, not a letter"},
		{"question":"Q three?","options":["a","b","c","d"],"correctAnswer":" c ","explanation":"messy but salvageable"},
		{"question":"Q four?","options":["a","b"],"correctAnswer":"A","explanation":"too few options"}
	]`
	collab := NewLLMCollaborator(&fakeModel{response: response}, 0)

	questions, err := collab.GenerateQuestions(context.Background(), domain.GenerationSpec{
		Grade: 5, Subject: "Math", Count: 4, MaxScore: 10, Difficulty: domain.DifficultyMedium,
	})
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "B", questions[0].CorrectAnswer)
	assert.Equal(t, "C", questions[1].CorrectAnswer)
	assert.Equal(t, 10, questions.TotalMarks())
}

func TestLLMCollaborator_GenerateQuestions_NoUsableQuestions(t *testing.T) {
	response := `[{"question":"Q?","options":["a","b","c","d"],"correctAnswer":"the second option"}]`
	collab := NewLLMCollaborator(&fakeModel{response: response}, 0)

	_, err := collab.GenerateQuestions(context.Background(), domain.GenerationSpec{
		Grade: 5, Subject: "Math", Count: 1, MaxScore: 10,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable questions")
}

func TestStubCollaborator_GradeResponses(t *testing.T) {
	stub := NewStubCollaborator()
	quiz := &domain.Quiz{
		Subject:  "Math",
		MaxScore: 10,
		Questions: domain.QuestionSet{
			{QuestionID: "q1", CorrectAnswer: "B", Marks: 5},
			{QuestionID: "q2", CorrectAnswer: "C", Marks: 5},
		},
	}

	result, err := stub.GradeResponses(context.Background(), quiz, []domain.ResponseItem{
		{QuestionID: "q1", UserResponse: "B"},
		{QuestionID: "q2", UserResponse: "A"},
		{QuestionID: "q9", UserResponse: "X"}, // unknown questions are ignored
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalScore)
	assert.Equal(t, 10, result.MaxScore)
	assert.Equal(t, 50.0, result.Percentage)
	require.Len(t, result.DetailedResults, 2)
	assert.True(t, result.DetailedResults[0].IsCorrect)
	assert.Equal(t, "Correct! Well done.", result.DetailedResults[0].Explanation)
	assert.False(t, result.DetailedResults[1].IsCorrect)
	assert.Contains(t, result.DetailedResults[1].Explanation, "The correct answer is C")
}

func TestStubCollaborator_GenerateHint(t *testing.T) {
	stub := NewStubCollaborator()
	quiz := &domain.Quiz{Subject: "Science"}
	question := &domain.Question{QuestionID: "q1", CorrectAnswer: "Photosynthesis"}

	hint, err := stub.GenerateHint(context.Background(), quiz, question)
	require.NoError(t, err)
	assert.NotEmpty(t, hint)
	assert.NotContains(t, hint, question.CorrectAnswer, "hints must not reveal the answer")
}

func TestNewCollaborators(t *testing.T) {
	ctx := context.Background()

	t.Run("StubByDefault", func(t *testing.T) {
		collabs, err := NewCollaborators(ctx, config.AIConfig{})
		require.NoError(t, err)
		assert.IsType(t, &StubCollaborator{}, collabs.Generator)
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		_, err := NewCollaborators(ctx, config.AIConfig{Provider: "clippy"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown AI provider")
	})

	t.Run("MissingAPIKey", func(t *testing.T) {
		_, err := NewCollaborators(ctx, config.AIConfig{Provider: "groq"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	})
}
