// Package learn runs study sessions over a single capsule: note display,
// circular flashcard navigation and a scored quiz.
package learn

import "github.com/hpungsan/armina/internal/capsule"

// Deck navigates flashcards circularly. A deck with no cards ignores
// every move.
type Deck struct {
	cards   []capsule.Flashcard
	index   int
	flipped bool
}

// NewDeck returns a deck positioned on the first card, front side up.
func NewDeck(cards []capsule.Flashcard) *Deck {
	return &Deck{cards: cards}
}

func (d *Deck) Len() int { return len(d.cards) }
func (d *Deck) Index() int { return d.index }
func (d *Deck) Flipped() bool { return d.flipped }

// Current returns the card under the cursor.
func (d *Deck) Current() (capsule.Flashcard, bool) {
	if len(d.cards) == 0 {
		return capsule.Flashcard{}, false
	}
	return d.cards[d.index], true
}

// Next moves to the following card, wrapping to the first, and unflips.
func (d *Deck) Next() {
	n := len(d.cards)
	if n == 0 {
		return
	}
	d.index = (d.index + 1) % n
	d.flipped = false
}

// Prev moves to the previous card, wrapping to the last, and unflips.
func (d *Deck) Prev() {
	n := len(d.cards)
	if n == 0 {
		return
	}
	d.index = (d.index - 1 + n) % n
	d.flipped = false
}

// Flip toggles the visible side.
func (d *Deck) Flip() {
	if len(d.cards) == 0 {
		return
	}
	d.flipped = !d.flipped
}
