package domain

import (
	"time"
)

// Participant describes the person being interviewed. Only the name is
// required; the remaining fields are carried into the result as given.
type Participant struct {
	// Name identifies the participant in the result.
	Name string `json:"name" yaml:"name" validate:"required,max=100"`

	// Job is the participant's occupation.
	Job string `json:"job,omitempty" yaml:"job,omitempty" validate:"max=100"`

	// Gender is free text as entered.
	Gender string `json:"gender,omitempty" yaml:"gender,omitempty" validate:"max=20"`

	// Birthday is formatted YYYY/MM/DD.
	Birthday string `json:"birthday,omitempty" yaml:"birthday,omitempty" validate:"omitempty,datetime=2006/01/02"`

	// Age in years.
	Age int `json:"age,omitempty" yaml:"age,omitempty" validate:"min=0,max=150"`
}

// Association is the triad of keywords a participant gave for one
// category together with the representative chosen from it.
type Association struct {
	Category       string   `json:"category" yaml:"category"`
	Keywords       []string `json:"keywords" yaml:"keywords"`
	Representative string   `json:"representative" yaml:"representative"`
}

// QuestionCounts records how many questions each stage asked.
type QuestionCounts struct {
	Categories     int `json:"categories" yaml:"categories"`
	Representative int `json:"representative" yaml:"representative"`
	Keywords       int `json:"keywords" yaml:"keywords"`
}

// Total returns the number of questions asked across all stages.
func (q QuestionCounts) Total() int {
	return q.Categories + q.Representative + q.Keywords
}

// Result is the outcome of a completed interview: the conscious order of
// the categories and the order of the representative keywords.
type Result struct {
	// ID uniquely identifies this result (a UUID).
	ID string `json:"id" yaml:"id"`

	// Participant is the profile collected before ranking.
	Participant Participant `json:"participant" yaml:"participant"`

	// Categories lists the categories best first.
	Categories []string `json:"categories" yaml:"categories"`

	// Keywords lists the representative keywords best first.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Associations holds one entry per category in category rank order.
	Associations []Association `json:"associations" yaml:"associations"`

	// Questions counts the questions asked per stage.
	Questions QuestionCounts `json:"questions" yaml:"questions"`

	// CategoryStats and KeywordStats expose the ranking counters.
	CategoryStats RankStats `json:"category_stats" yaml:"category_stats"`
	KeywordStats  RankStats `json:"keyword_stats" yaml:"keyword_stats"`

	// StartedAt and CompletedAt bound the interview.
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`
}

// CategoryOf returns the category a representative keyword stands for.
func (r Result) CategoryOf(keyword string) (string, bool) {
	for _, a := range r.Associations {
		if a.Representative == keyword {
			return a.Category, true
		}
	}
	return "", false
}
