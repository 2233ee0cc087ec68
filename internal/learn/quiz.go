package learn

import (
	"fmt"

	"github.com/hpungsan/armina/internal/capsule"
	"github.com/hpungsan/armina/internal/errors"
)

// Quiz steps through questions once, counting correct answers.
type Quiz struct {
	questions []capsule.Question
	current   int
	score     int
}

// Answer is the outcome of one submission.
type Answer struct {
	Choice       int    `json:"choice"`
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
	Explanation  string `json:"explanation,omitempty"`
	Score        int    `json:"score"`
	Answered     int    `json:"answered"`
	Total        int    `json:"total"`
	Done         bool   `json:"done"`
}

// NewQuiz returns a quiz at the first question with a zero score.
func NewQuiz(questions []capsule.Question) *Quiz {
	return &Quiz{questions: questions}
}

func (q *Quiz) Score() int { return q.score }
func (q *Quiz) Total() int { return len(q.questions) }
func (q *Quiz) Position() int { return q.current }

// Done reports whether every question has been answered.
func (q *Quiz) Done() bool {
	return q.current >= len(q.questions)
}

// Current returns the question awaiting an answer.
func (q *Quiz) Current() (capsule.Question, bool) {
	if q.Done() {
		return capsule.Question{}, false
	}
	return q.questions[q.current], true
}

// Submit answers the current question with option index choice.
// A negative choice means nothing was selected. Rejected submissions leave
// the quiz unchanged.
func (q *Quiz) Submit(choice int) (*Answer, error) {
	if q.Done() {
		return nil, errors.NewSessionFinished(q.score, len(q.questions))
	}
	if choice < 0 {
		return nil, errors.NewNoSelection()
	}

	question := q.questions[q.current]
	if n := len(question.Options); n > 0 && choice >= n {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("choice must be between 0 and %d", n-1))
	}

	correct := question.IsCorrect(choice)
	if correct {
		q.score++
	}
	q.current++

	return &Answer{
		Choice:       choice,
		Correct:      correct,
		CorrectIndex: question.CorrectIndex,
		Explanation:  question.Explanation,
		Score:        q.score,
		Answered:     q.current,
		Total:        len(q.questions),
		Done:         q.Done(),
	}, nil
}
