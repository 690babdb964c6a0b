// Package codec is the single conversion point between the canonical
// QuestionSet and the textual blob stored in the quiz row and the cache.
// The AI collaborator and intermediate storage layers do not guarantee a
// consistent shape, so all decode and repair logic lives here; no other
// component ever handles a raw questions string.
package codec

import (
	"encoding/json"
	"strings"

	"quizforge/internal/domain"
	"quizforge/internal/logger"

	"go.uber.org/zap"
)

// maxDecodeDepth bounds the number of unwrapping passes for blobs that were
// serialized more than once. One extra pass covers the observed
// double-encoding corruption; anything deeper is treated as garbage.
const maxDecodeDepth = 2

// Encode serializes the set deterministically, preserving insertion order.
// It never fails; a nil or empty set encodes to "[]".
func Encode(qs domain.QuestionSet) string {
	if len(qs) == 0 {
		return "[]"
	}
	data, err := json.Marshal(qs)
	if err != nil {
		// Question contains only marshal-safe field types; this path is
		// unreachable in practice but must still degrade, not panic.
		logger.Get().Error("questionset encode failed", zap.Error(err))
		return "[]"
	}
	return string(data)
}

// Decode parses the serialized form back into a QuestionSet. It tolerates
// the expected form, a double-encoded form (a JSON string that itself
// contains the serialized sequence) and garbage. Garbage decodes to an
// empty set with a logged anomaly; Decode never returns an error because
// quiz delivery must degrade gracefully rather than fail the request.
func Decode(raw string) domain.QuestionSet {
	return DecodeRaw([]byte(raw))
}

// DecodeRaw is Decode for callers that already hold raw JSON, such as the
// cache layer where the questions field may arrive as either an array or a
// string depending on how the entry was written.
func DecodeRaw(raw []byte) domain.QuestionSet {
	return decode(raw, 0)
}

// rawQuestion defers the options field so one non-list options value drops
// only that field, not the whole set.
type rawQuestion struct {
	QuestionID    string              `json:"questionId"`
	Text          string              `json:"question"`
	Kind          domain.QuestionKind `json:"type"`
	Options       json.RawMessage     `json:"options"`
	CorrectAnswer string              `json:"correctAnswer"`
	Marks         int                 `json:"marks"`
	Explanation   string              `json:"explanation"`
}

func decode(raw []byte, depth int) domain.QuestionSet {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return domain.QuestionSet{}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &elems); err == nil {
		return decodeElements(elems)
	}

	// A first decode that yields a string rather than a sequence means the
	// blob was serialized one level too deep; unwrap and try again.
	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
		if depth+1 < maxDecodeDepth {
			logger.Get().Warn("questionset was double-encoded, unwrapping",
				zap.Int("depth", depth+1))
			return decode([]byte(inner), depth+1)
		}
	}

	logger.Get().Warn("questionset decode anomaly, recovering to empty set",
		zap.Int("raw_length", len(trimmed)))
	return domain.QuestionSet{}
}

// decodeElements parses each question independently so one malformed
// element costs at most itself, and a malformed options field costs only
// the options.
func decodeElements(elems []json.RawMessage) domain.QuestionSet {
	out := make(domain.QuestionSet, 0, len(elems))
	for i, elem := range elems {
		var rq rawQuestion
		if err := json.Unmarshal(elem, &rq); err != nil {
			logger.Get().Warn("dropping undecodable question",
				zap.Int("index", i), zap.Error(err))
			continue
		}

		options := []string{}
		if len(rq.Options) > 0 {
			if err := json.Unmarshal(rq.Options, &options); err != nil {
				logger.Get().Warn("question options not list-shaped, clearing",
					zap.Int("index", i),
					zap.String("question_id", rq.QuestionID))
				options = []string{}
			} else if options == nil {
				options = []string{}
			}
		}

		out = append(out, domain.Question{
			QuestionID:    rq.QuestionID,
			Text:          rq.Text,
			Kind:          rq.Kind,
			Options:       options,
			CorrectAnswer: rq.CorrectAnswer,
			Marks:         rq.Marks,
			Explanation:   rq.Explanation,
		})
	}
	return out
}

// Validate filters out structurally broken questions and normalizes the
// rest. A question without an id or text is dropped (a reportable anomaly,
// never stored); missing kind defaults to multiple_choice and missing
// marks to 1; a non-list options field becomes an empty list.
func Validate(qs domain.QuestionSet) domain.QuestionSet {
	out := make(domain.QuestionSet, 0, len(qs))
	for i := range qs {
		q := qs[i]
		if q.QuestionID == "" || q.Text == "" {
			logger.Get().Warn("dropping invalid question",
				zap.Int("index", i),
				zap.String("question_id", q.QuestionID))
			continue
		}
		if q.Kind == "" {
			q.Kind = domain.QuestionKindMultipleChoice
		}
		if q.Options == nil {
			q.Options = []string{}
		}
		if q.Marks <= 0 {
			q.Marks = 1
		}
		out = append(out, q)
	}
	return out
}
