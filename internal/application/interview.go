// Package application orchestrates a life-wheel interview on top of the
// ranking engine in internal/domain.
package application

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-lifewheel/internal/domain"
)

// Stage is the phase an Interview is in.
type Stage int

const (
	// StageCategories ranks the configured categories.
	StageCategories Stage = iota + 1
	// StageAssociations collects three keywords per category.
	StageAssociations
	// StageRefinement picks one representative keyword per category.
	StageRefinement
	// StageKeywords ranks the representatives.
	StageKeywords
	// StageComplete means Result is available.
	StageComplete
)

// String returns the stage name used in logs, spans and metric labels.
func (s Stage) String() string {
	switch s {
	case StageCategories:
		return "categories"
	case StageAssociations:
		return "associations"
	case StageRefinement:
		return "refinement"
	case StageKeywords:
		return "keywords"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// PromptKind says what an Interview needs next.
type PromptKind int

const (
	// PromptCompare asks for a choice between Left and Right.
	PromptCompare PromptKind = iota + 1
	// PromptAssociate asks for the keywords of Category.
	PromptAssociate
	// PromptDone means the interview is complete.
	PromptDone
)

// Prompt describes the input an Interview is waiting for.
type Prompt struct {
	Kind  PromptKind
	Stage Stage
	// Text is the configured question for compare prompts.
	Text string
	// Category is set for associate prompts and refinement compares.
	Category string
	Left     string
	Right    string
}

// InterviewOption configures an Interview.
type InterviewOption func(*Interview)

// WithClock sets the time source used for StartedAt and CompletedAt.
func WithClock(now func() time.Time) InterviewOption {
	return func(iv *Interview) { iv.now = now }
}

// WithIDGenerator sets the function producing result IDs.
func WithIDGenerator(gen func() string) InterviewOption {
	return func(iv *Interview) { iv.newID = gen }
}

// Interview drives one participant through the five stages: rank the
// categories, associate three keywords with each, reduce every triad to a
// representative, rank the representatives, and report. Associations and
// refinement follow the category ranking, and the representatives enter
// the keyword ranking in that same order.
//
// Each ranking stage owns its own domain.RankSession, so the category and
// keyword comparison histories never mix.
//
// An Interview is not safe for concurrent use.
type Interview struct {
	cfg   Config
	now   func() time.Time
	newID func() string

	id          string
	participant domain.Participant
	stage       Stage
	startedAt   time.Time
	completedAt time.Time

	categories *domain.RankSession[string]
	keywords   *domain.RankSession[string]
	validator  *KeywordValidator

	// associations is filled in ranked category order once the category
	// ranking is done.
	associations []domain.Association
	assocIdx     int
	refiner      *domain.RefinementSession[string]
	refineIdx    int

	questions domain.QuestionCounts
}

// NewInterview creates an interview over cfg.Categories. The configuration
// is expected to have passed loading; only the category list is checked
// here.
func NewInterview(cfg Config, opts ...InterviewOption) (*Interview, error) {
	if len(cfg.Categories) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 categories, got %d",
			domain.ErrInvalidConfiguration, len(cfg.Categories))
	}

	iv := &Interview{
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(iv)
	}
	if err := iv.Reset(); err != nil {
		return nil, err
	}
	return iv, nil
}

// Reset discards all progress, including the participant, and starts a
// new interview with a fresh ID.
func (iv *Interview) Reset() error {
	categories, err := domain.NewRankSession(iv.cfg.Categories)
	if err != nil {
		return fmt.Errorf("failed to create category session: %w", err)
	}

	iv.id = iv.newID()
	iv.participant = domain.Participant{}
	iv.stage = StageCategories
	iv.startedAt = iv.now()
	iv.completedAt = time.Time{}
	iv.categories = categories
	iv.keywords = nil
	iv.validator = NewKeywordValidator(iv.cfg.Categories, iv.cfg.Keywords)
	iv.associations = nil
	iv.assocIdx = 0
	iv.refiner = nil
	iv.refineIdx = 0
	iv.questions = domain.QuestionCounts{}

	return iv.advance()
}

// SetParticipant validates and stores the participant profile.
func (iv *Interview) SetParticipant(p domain.Participant) error {
	if err := ValidateParticipant(p); err != nil {
		return err
	}
	iv.participant = p
	return nil
}

// Next reports the input the interview is waiting for. It does not change
// the interview.
func (iv *Interview) Next() Prompt {
	switch iv.stage {
	case StageCategories:
		return iv.comparePrompt(iv.categories, iv.cfg.Prompts.Categories)
	case StageAssociations:
		return Prompt{
			Kind:     PromptAssociate,
			Stage:    iv.stage,
			Category: iv.associations[iv.assocIdx].Category,
		}
	case StageRefinement:
		step := iv.refiner.Next()
		return Prompt{
			Kind:     PromptCompare,
			Stage:    iv.stage,
			Text:     iv.cfg.Prompts.Representative,
			Category: iv.associations[iv.refineIdx].Category,
			Left:     step.Left,
			Right:    step.Right,
		}
	case StageKeywords:
		return iv.comparePrompt(iv.keywords, iv.cfg.Prompts.Keywords)
	default:
		return Prompt{Kind: PromptDone, Stage: StageComplete}
	}
}

func (iv *Interview) comparePrompt(s *domain.RankSession[string], text string) Prompt {
	step, _ := s.Pending()
	return Prompt{
		Kind:  PromptCompare,
		Stage: iv.stage,
		Text:  text,
		Left:  step.Left,
		Right: step.Right,
	}
}

// Choose answers the current compare prompt with winner. It returns a
// *domain.UsageError when no compare prompt is outstanding or winner is
// not one of the two offered items.
func (iv *Interview) Choose(winner string) error {
	switch iv.stage {
	case StageCategories:
		if err := resolveRank(iv.categories, winner); err != nil {
			return err
		}
		iv.questions.Categories++
	case StageRefinement:
		if err := iv.refiner.Resolve(winner); err != nil {
			return err
		}
		iv.questions.Representative++
	case StageKeywords:
		if err := resolveRank(iv.keywords, winner); err != nil {
			return err
		}
		iv.questions.Keywords++
	case StageComplete:
		return domain.NewUsageError("Choose", winner, domain.ErrSessionDone)
	default:
		return domain.NewUsageError("Choose", winner, domain.ErrNoPendingQuestion)
	}
	return iv.advance()
}

// resolveRank answers the pending question of s with winner.
func resolveRank(s *domain.RankSession[string], winner string) error {
	step, ok := s.Pending()
	if !ok {
		return domain.NewUsageError("Choose", winner, domain.ErrNoPendingQuestion)
	}
	loser, ok := step.Other(winner)
	if !ok {
		return domain.NewUsageError("Choose",
			fmt.Sprintf("got %s, asked %s vs %s", winner, step.Left, step.Right),
			domain.ErrPairMismatch)
	}
	return s.Resolve(winner, loser)
}

// Associate records the keywords for category, which must be the category
// of the current associate prompt. Invalid keywords are reported as a
// *domain.KeywordError and leave the interview unchanged so the caller
// can ask again.
func (iv *Interview) Associate(category string, words []string) error {
	if iv.stage != StageAssociations {
		if iv.stage == StageComplete {
			return domain.NewUsageError("Associate", category, domain.ErrSessionDone)
		}
		return domain.NewUsageError("Associate", category, domain.ErrNoPendingQuestion)
	}
	want := iv.associations[iv.assocIdx].Category
	if category != want {
		return domain.NewUsageError("Associate",
			fmt.Sprintf("got %s, asked %s", category, want), domain.ErrPairMismatch)
	}

	accepted, err := iv.validator.Validate(category, words)
	if err != nil {
		return err
	}
	iv.validator.Commit(category, accepted)
	iv.associations[iv.assocIdx].Keywords = accepted
	iv.assocIdx++
	return iv.advance()
}

// advance moves through every stage transition that needs no input, so
// that after it returns the interview is either complete or waiting.
func (iv *Interview) advance() error {
	for {
		switch iv.stage {
		case StageCategories:
			if !iv.categories.Next().IsDone() {
				return nil
			}
			ranked := iv.categories.RankedSoFar()
			iv.associations = make([]domain.Association, len(ranked))
			for i, c := range ranked {
				iv.associations[i] = domain.Association{Category: c}
			}
			iv.stage = StageAssociations

		case StageAssociations:
			if iv.assocIdx < len(iv.associations) {
				return nil
			}
			if err := iv.startRefiner(0); err != nil {
				return err
			}
			iv.stage = StageRefinement

		case StageRefinement:
			rep, ok := iv.refiner.Representative()
			if !ok {
				return nil
			}
			iv.associations[iv.refineIdx].Representative = rep
			if iv.refineIdx+1 < len(iv.associations) {
				if err := iv.startRefiner(iv.refineIdx + 1); err != nil {
					return err
				}
				continue
			}
			reps := make([]string, len(iv.associations))
			for i, a := range iv.associations {
				reps[i] = a.Representative
			}
			keywords, err := domain.NewRankSession(reps)
			if err != nil {
				return fmt.Errorf("failed to create keyword session: %w", err)
			}
			iv.keywords = keywords
			iv.refiner = nil
			iv.stage = StageKeywords

		case StageKeywords:
			if !iv.keywords.Next().IsDone() {
				return nil
			}
			iv.completedAt = iv.now()
			iv.stage = StageComplete

		default:
			return nil
		}
	}
}

func (iv *Interview) startRefiner(idx int) error {
	kw := iv.associations[idx].Keywords
	if len(kw) != domain.KeywordsPerCategory {
		return fmt.Errorf("category %s has %d keywords", iv.associations[idx].Category, len(kw))
	}
	r, err := domain.NewRefinementSession(kw[0], kw[1], kw[2])
	if err != nil {
		return fmt.Errorf("failed to create refinement for %s: %w", iv.associations[idx].Category, err)
	}
	iv.refiner = r
	iv.refineIdx = idx
	return nil
}

// Result returns the outcome of a complete interview, or
// domain.ErrInterviewIncomplete.
func (iv *Interview) Result() (domain.Result, error) {
	if iv.stage != StageComplete {
		return domain.Result{}, fmt.Errorf("%w: at stage %s", domain.ErrInterviewIncomplete, iv.stage)
	}

	associations := make([]domain.Association, len(iv.associations))
	for i, a := range iv.associations {
		a.Keywords = slices.Clone(a.Keywords)
		associations[i] = a
	}

	return domain.Result{
		ID:            iv.id,
		Participant:   iv.participant,
		Categories:    iv.categories.RankedSoFar(),
		Keywords:      iv.keywords.RankedSoFar(),
		Associations:  associations,
		Questions:     iv.questions,
		CategoryStats: iv.categories.Stats(),
		KeywordStats:  iv.keywords.Stats(),
		StartedAt:     iv.startedAt,
		CompletedAt:   iv.completedAt,
	}, nil
}

// Stage returns the current stage.
func (iv *Interview) Stage() Stage { return iv.stage }

// ID returns the identifier the result will carry.
func (iv *Interview) ID() string { return iv.id }

// Participant returns the stored profile.
func (iv *Interview) Participant() domain.Participant { return iv.participant }

// Questions returns the number of questions answered per stage.
func (iv *Interview) Questions() domain.QuestionCounts { return iv.questions }

// SessionStats returns the counters of the category and keyword sessions.
// The keyword counters are zero until that stage starts.
func (iv *Interview) SessionStats() (categories, keywords domain.RankStats) {
	categories = iv.categories.Stats()
	if iv.keywords != nil {
		keywords = iv.keywords.Stats()
	}
	return categories, keywords
}
