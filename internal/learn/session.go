package learn

import (
	"context"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/armina/internal/capsule"
	"github.com/hpungsan/armina/internal/errors"
)

// Store loads capsules and records quiz progress. *library.Records
// implements it.
type Store interface {
	GetCapsule(ctx context.Context, id string) (*capsule.Capsule, bool, error)
	PutProgress(ctx context.Context, id string, p capsule.Progress) error
}

// Flashcard actions accepted by Session.Flashcard.
const (
	ActionCurrent = "current"
	ActionNext    = "next"
	ActionPrev    = "prev"
	ActionFlip    = "flip"
)

// Session is one learn run over a capsule. Safe for concurrent use.
type Session struct {
	ID string

	mu      sync.Mutex
	capsule *capsule.Capsule
	deck    *Deck
	quiz    *Quiz
	store   Store
	logger  *zap.Logger
}

// Start loads capsule id and opens a session on it.
func Start(ctx context.Context, store Store, id string, logger *zap.Logger) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	c, found, err := store.GetCapsule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFound(id)
	}

	return newSession(c, store, logger), nil
}

func newSession(c *capsule.Capsule, store Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		ID:      ulid.Make().String(),
		capsule: c,
		deck:    NewDeck(c.Flashcards),
		quiz:    NewQuiz(c.Quiz),
		store:   store,
		logger:  logger,
	}
}

// CapsuleID returns the id of the capsule being learned.
func (s *Session) CapsuleID() string {
	return s.capsule.ID
}

// Empty reports whether the capsule has nothing to learn.
func (s *Session) Empty() bool {
	return s.capsule.IsEmpty()
}

// View returns a snapshot of every mode.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Flashcard applies a navigation action and returns the resulting card view.
func (s *Session) Flashcard(action string) (CardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch strings.ToLower(strings.TrimSpace(action)) {
	case "", ActionCurrent:
	case ActionNext:
		s.deck.Next()
	case ActionPrev:
		s.deck.Prev()
	case ActionFlip:
		s.deck.Flip()
	default:
		return CardView{}, errors.NewInvalidRequest("action must be one of: current, next, prev, flip")
	}
	return cardView(s.deck), nil
}

// Answer submits choice for the current quiz question. The submission that
// finishes the quiz saves the score as the capsule's progress; a failed save
// is logged and does not fail the answer.
func (s *Session) Answer(ctx context.Context, choice int) (*Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answer, err := s.quiz.Submit(choice)
	if err != nil {
		return nil, err
	}

	if answer.Done {
		progress := capsule.NewProgress(answer.Score)
		if err := s.store.PutProgress(ctx, s.capsule.ID, progress); err != nil {
			s.logger.Warn("failed to save quiz progress",
				zap.String("capsule_id", s.capsule.ID),
				zap.Int("score", answer.Score),
				zap.Error(err))
		}
	}
	return answer, nil
}

func (s *Session) view() View {
	c := s.capsule
	v := View{
		SessionID: s.ID,
		CapsuleID: c.ID,
		Title:     c.Title,
		Subject:   c.Subject,
		Level:     c.Level,
		Notes:     c.Notes,
		Card:      cardView(s.deck),
		Quiz:      quizView(s.quiz),
		Empty:     c.IsEmpty(),
	}
	if v.Notes == nil {
		v.Notes = []string{}
	}
	return v
}
