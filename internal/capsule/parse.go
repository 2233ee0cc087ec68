package capsule

import (
	"encoding/json"
	"strings"

	"github.com/hpungsan/armina/internal/errors"
)

// FlashcardDelimiter separates the front and back of a flashcard line.
const FlashcardDelimiter = "||"

// ParseNotes splits text into trimmed, non-empty lines, preserving order.
func ParseNotes(text string) []string {
	notes := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			notes = append(notes, line)
		}
	}
	return notes
}

// ParseFlashcards reads one "front || back" card per line.
// Segments after the second are ignored; lines with neither side are dropped.
func ParseFlashcards(text string) []Flashcard {
	cards := []Flashcard{}
	for _, line := range ParseNotes(text) {
		parts := strings.Split(line, FlashcardDelimiter)
		card := Flashcard{Front: strings.TrimSpace(parts[0])}
		if len(parts) > 1 {
			card.Back = strings.TrimSpace(parts[1])
		}
		if card.Front == "" && card.Back == "" {
			continue
		}
		cards = append(cards, card)
	}
	return cards
}

// ParseQuiz decodes a JSON array of questions. Blank text yields an empty quiz.
// Malformed JSON, a value that is not an array, or a null item fails with
// ErrQuizParseFailed so callers never save a silently truncated quiz.
func ParseQuiz(text string) ([]Question, error) {
	if strings.TrimSpace(text) == "" {
		return []Question{}, nil
	}

	var quiz []Question
	if err := json.Unmarshal([]byte(text), &quiz); err != nil {
		return nil, errors.NewQuizParseFailed(err)
	}
	if quiz == nil {
		// literal null
		return nil, errors.NewQuizParseFailed(nil)
	}
	return quiz, nil
}

// FormatNotes renders notes back into the authoring text form.
func FormatNotes(notes []string) string {
	return strings.Join(notes, "\n")
}

// FormatFlashcards renders cards back into "front || back" lines.
func FormatFlashcards(cards []Flashcard) string {
	lines := make([]string, len(cards))
	for i, c := range cards {
		lines[i] = c.Front + " " + FlashcardDelimiter + " " + c.Back
	}
	return strings.Join(lines, "\n")
}

// FormatQuiz renders questions as indented JSON. An empty quiz renders as "".
func FormatQuiz(quiz []Question) string {
	if len(quiz) == 0 {
		return ""
	}
	data, err := json.MarshalIndent(quiz, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
