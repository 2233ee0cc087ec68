package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/armina/internal/capsule"
	"github.com/hpungsan/armina/internal/config"
	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/library"
)

// SaveInput contains the authoring form of a capsule.
type SaveInput struct {
	ID             string // optional; set when editing
	Title          string // required
	Subject        string
	Level          string // default: cfg.DefaultLevel
	NotesText      string // one note per line
	FlashcardsText string // one "front || back" card per line
	QuizText       string // JSON array of questions
	ConfirmEmpty   bool   // allow saving a capsule with nothing to learn
}

// SaveOutput contains the result of the Save operation.
type SaveOutput struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Created    bool   `json:"created"`
	Notes      int    `json:"notes"`
	Flashcards int    `json:"flashcards"`
	Questions  int    `json:"questions"`
	UpdatedAt  int64  `json:"updatedAt"`
}

// Save parses the authoring form, persists the capsule, then updates its
// index entry.
func Save(ctx context.Context, lib *library.Library, cfg *config.Config, input SaveInput) (*SaveOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}

	notes := capsule.ParseNotes(input.NotesText)
	cards := capsule.ParseFlashcards(input.FlashcardsText)
	quiz, err := capsule.ParseQuiz(input.QuizText)
	if err != nil {
		return nil, err
	}

	if len(notes) == 0 && len(cards) == 0 && len(quiz) == 0 && !input.ConfirmEmpty {
		return nil, errors.NewEmptyCapsule()
	}

	ts := nowMillis()
	c := &capsule.Capsule{
		ID:         cleanID(input.ID),
		Title:      title,
		Subject:    strings.TrimSpace(input.Subject),
		Level:      strings.TrimSpace(input.Level),
		Notes:      notes,
		Flashcards: cards,
		Quiz:       quiz,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if c.Level == "" {
		c.Level = defaultLevel(cfg)
	}

	created := true
	if c.ID != "" {
		existing, found, err := lib.Records.GetCapsule(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if found {
			created = false
			if existing.CreatedAt != 0 {
				c.CreatedAt = existing.CreatedAt
			}
		}
	} else {
		id, err := generateULID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		c.ID = id
	}

	if err := c.Validate(); err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("save")
	}

	if err := lib.Records.PutCapsule(ctx, c); err != nil {
		return nil, err
	}
	if err := lib.Index.Upsert(ctx, c.ToIndexPatch()); err != nil {
		return nil, err
	}

	return &SaveOutput{
		ID:         c.ID,
		Title:      c.Title,
		Created:    created,
		Notes:      len(notes),
		Flashcards: len(cards),
		Questions:  len(quiz),
		UpdatedAt:  c.UpdatedAt,
	}, nil
}

// FormInput is the authoring form of an existing capsule.
type FormInput = SaveInput

// LoadForm returns the authoring text areas for capsule id so it can be
// edited and saved back.
func LoadForm(ctx context.Context, lib *library.Library, id string) (*FormInput, error) {
	id = cleanID(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	c, found, err := lib.Records.GetCapsule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFound(id)
	}

	return &FormInput{
		ID:             c.ID,
		Title:          c.Title,
		Subject:        c.Subject,
		Level:          c.Level,
		NotesText:      capsule.FormatNotes(c.Notes),
		FlashcardsText: capsule.FormatFlashcards(c.Flashcards),
		QuizText:       capsule.FormatQuiz(c.Quiz),
		ConfirmEmpty:   c.IsEmpty(),
	}, nil
}

func defaultLevel(cfg *config.Config) string {
	if cfg != nil && strings.TrimSpace(cfg.DefaultLevel) != "" {
		return strings.TrimSpace(cfg.DefaultLevel)
	}
	return capsule.DefaultLevel
}
