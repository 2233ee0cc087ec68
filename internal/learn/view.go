package learn

// View is a read-only snapshot of a session for rendering.
type View struct {
	SessionID string   `json:"session_id"`
	CapsuleID string   `json:"capsule_id"`
	Title     string   `json:"title"`
	Subject   string   `json:"subject"`
	Level     string   `json:"level"`
	Notes     []string `json:"notes"`
	Card      CardView `json:"flashcard"`
	Quiz      QuizView `json:"quiz"`
	Empty     bool     `json:"empty"`
}

// CardView shows the current flashcard. Back is only set once flipped.
type CardView struct {
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Front   string `json:"front,omitempty"`
	Back    string `json:"back,omitempty"`
	Flipped bool   `json:"flipped"`
}

// QuizView shows quiz progress and the open question, if any.
type QuizView struct {
	Position int       `json:"position"`
	Total    int       `json:"total"`
	Score    int       `json:"score"`
	Done     bool      `json:"done"`
	Question *Question `json:"question,omitempty"`
}

// Question is an open quiz question without its answer.
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

func cardView(d *Deck) CardView {
	v := CardView{Index: d.Index(), Total: d.Len(), Flipped: d.Flipped()}
	if card, ok := d.Current(); ok {
		v.Front = card.Front
		if v.Flipped {
			v.Back = card.Back
		}
	}
	return v
}

func quizView(q *Quiz) QuizView {
	v := QuizView{
		Position: q.Position(),
		Total:    q.Total(),
		Score:    q.Score(),
		Done:     q.Done(),
	}
	if question, ok := q.Current(); ok {
		opts := question.Options
		if opts == nil {
			opts = []string{}
		}
		v.Question = &Question{Text: question.Question, Options: opts}
	}
	return v
}
