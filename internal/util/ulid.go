package util

import (
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string.
// It uses a default entropy source seeded with the current time.
func NewULID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewQuizID returns a quiz identifier in the canonical "quiz_" form.
func NewQuizID() string {
	return "quiz_" + strings.ToLower(NewULID())
}

// NewSubmissionID returns a submission identifier in the canonical "sub_" form.
func NewSubmissionID() string {
	return "sub_" + strings.ToLower(NewULID())
}

// NewHintID returns a hint identifier in the canonical "hint_" form.
func NewHintID() string {
	return "hint_" + strings.ToLower(NewULID())
}
