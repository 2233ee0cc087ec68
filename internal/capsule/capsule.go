package capsule

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultLevel is the level assigned when none is given.
const DefaultLevel = "Beginner"

// Capsule is a titled unit of study content: notes, flashcards and quiz questions.
// Field names match the persisted JSON document and the export format.
type Capsule struct {
	// ID is opaque and immutable once created (new capsules get a ULID)
	ID string `json:"id"`

	// Title is required; a capsule without one is never persisted
	Title string `json:"title"`

	Subject string `json:"subject"`
	Level   string `json:"level"`

	// Notes are displayed in order
	Notes []string `json:"notes"`

	Flashcards []Flashcard `json:"flashcards"`
	Quiz       []Question  `json:"quiz"`

	// CreatedAt and UpdatedAt are milliseconds since the Unix epoch
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Flashcard is a front/back pair.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Progress is the per-capsule learning state.
// KnownFlashcards is kept for forward compatibility and is always saved empty.
type Progress struct {
	BestScore       int      `json:"bestScore"`
	KnownFlashcards []string `json:"knownFlashcards"`
}

// NewProgress returns the progress recorded for a finished quiz run.
func NewProgress(score int) Progress {
	return Progress{BestScore: max(score, 0), KnownFlashcards: []string{}}
}

// Validate checks the persistence invariants of a capsule.
func (c *Capsule) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.By(notBlank)),
		validation.Field(&c.Title, validation.By(notBlank)),
	)
}

// IsEmpty reports whether the capsule has nothing to learn.
func (c *Capsule) IsEmpty() bool {
	return len(c.Notes) == 0 && len(c.Flashcards) == 0 && len(c.Quiz) == 0
}

// notBlank rejects empty and whitespace-only strings.
func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.ErrRequired
	}
	return nil
}
