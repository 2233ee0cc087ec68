package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/hpungsan/armina/internal/errors"
	"github.com/hpungsan/armina/internal/learn"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	correctColor = color.New(color.FgGreen)
	wrongColor   = color.New(color.FgRed)
	hintColor    = color.New(color.Faint)
)

// runLearn drives a session from line input: notes first, then the
// flashcard deck, then the quiz. EOF or "q" ends the run early.
func runLearn(ctx context.Context, in io.Reader, out io.Writer, s *learn.Session) error {
	scanner := bufio.NewScanner(in)
	view := s.View()

	headingColor.Fprintln(out, view.Title)
	fmt.Fprintf(out, "%s · %s\n", orDash(view.Subject), view.Level)

	if view.Empty {
		fmt.Fprintln(out, "This capsule has nothing to learn yet.")
		return nil
	}

	if len(view.Notes) > 0 {
		fmt.Fprintln(out)
		headingColor.Fprintln(out, "Notes")
		for _, n := range view.Notes {
			fmt.Fprintf(out, "  • %s\n", n)
		}
	}

	if view.Card.Total > 0 {
		if quit, err := runFlashcards(scanner, out, s); err != nil || quit {
			return err
		}
	}

	if view.Quiz.Total > 0 {
		return runQuiz(ctx, scanner, out, s)
	}
	return nil
}

// runFlashcards loops over the deck until the user moves on or quits.
func runFlashcards(scanner *bufio.Scanner, out io.Writer, s *learn.Session) (quit bool, err error) {
	fmt.Fprintln(out)
	headingColor.Fprintln(out, "Flashcards")
	hintColor.Fprintln(out, "[enter] flip  [n]ext  [p]rev  [d]one  [q]uit")

	card, err := s.Flashcard(learn.ActionCurrent)
	if err != nil {
		return false, err
	}
	for {
		printCard(out, card)
		if !scanner.Scan() {
			return true, scanner.Err()
		}

		action := learn.ActionFlip
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "", "f":
		case "n":
			action = learn.ActionNext
		case "p":
			action = learn.ActionPrev
		case "d":
			return false, nil
		case "q":
			return true, nil
		default:
			hintColor.Fprintln(out, "unknown key")
			continue
		}
		if card, err = s.Flashcard(action); err != nil {
			return false, err
		}
	}
}

func printCard(out io.Writer, card learn.CardView) {
	if card.Flipped {
		fmt.Fprintf(out, "[%d/%d] %s → %s\n", card.Index+1, card.Total, card.Front, card.Back)
		return
	}
	fmt.Fprintf(out, "[%d/%d] %s\n", card.Index+1, card.Total, card.Front)
}

// runQuiz asks every question once and prints the final score.
func runQuiz(ctx context.Context, scanner *bufio.Scanner, out io.Writer, s *learn.Session) error {
	fmt.Fprintln(out)
	headingColor.Fprintln(out, "Quiz")

	for {
		quiz := s.View().Quiz
		if quiz.Done || quiz.Question == nil {
			fmt.Fprintf(out, "\nScore: %d/%d\n", quiz.Score, quiz.Total)
			return nil
		}

		fmt.Fprintf(out, "\nQ%d. %s\n", quiz.Position+1, quiz.Question.Text)
		for i, opt := range quiz.Question.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, "q") {
			return nil
		}

		choice := -1
		if line != "" {
			n, err := strconv.Atoi(line)
			if err != nil {
				hintColor.Fprintln(out, "enter an option number")
				continue
			}
			choice = n - 1
		}

		answer, err := s.Answer(ctx, choice)
		if err != nil {
			if errors.Is(err, errors.ErrNoSelection) || errors.Is(err, errors.ErrInvalidRequest) {
				hintColor.Fprintln(out, "enter an option number")
				continue
			}
			return err
		}

		if answer.Correct {
			correctColor.Fprintln(out, "Correct!")
		} else {
			wrongColor.Fprintf(out, "Wrong. The answer was %d.\n", answer.CorrectIndex+1)
		}
		if answer.Explanation != "" {
			hintColor.Fprintln(out, answer.Explanation)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
