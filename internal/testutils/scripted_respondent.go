package testutils

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ahrav/go-lifewheel/internal/domain"
	"github.com/ahrav/go-lifewheel/internal/ports"
)

// ScriptedRespondent implements ports.Respondent from fixed data. It
// answers comparisons from a Preference and associations from a queue of
// keyword triads per category, and records everything it was asked.
type ScriptedRespondent struct {
	mu sync.Mutex

	participant domain.Participant
	preference  Preference
	keywords    map[string][][]string

	// ChooseHook, when set, replaces the preference for comparisons.
	ChooseHook func(q ports.Question) (string, error)

	questions []ports.Question
	requests  []ports.AssociationRequest
}

// NewScriptedRespondent creates a respondent answering with preference.
// Every category in keywords is answered with its triad.
func NewScriptedRespondent(participant domain.Participant, preference Preference, keywords map[string][]string) *ScriptedRespondent {
	queued := make(map[string][][]string, len(keywords))
	for c, words := range keywords {
		queued[c] = [][]string{slices.Clone(words)}
	}
	return &ScriptedRespondent{
		participant: participant,
		preference:  preference,
		keywords:    queued,
	}
}

// NewLifeWheelRespondent answers the default categories with
// LifeWheelPreference and LifeWheelKeywords.
func NewLifeWheelRespondent() *ScriptedRespondent {
	return NewScriptedRespondent(
		domain.Participant{Name: "測試者", Job: "工程師", Age: 30, Birthday: "1994/05/06"},
		LifeWheelPreference,
		LifeWheelKeywords,
	)
}

// QueueKeywords makes category answer with each triad in turn, before the
// triad it was constructed with.
func (s *ScriptedRespondent) QueueKeywords(category string, attempts ...[]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keywords[category] = append(slices.Clone(attempts), s.keywords[category]...)
}

// Introduce implements ports.Respondent.
func (s *ScriptedRespondent) Introduce(ctx context.Context) (domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return domain.Participant{}, err
	}
	return s.participant, nil
}

// Choose implements ports.Respondent.
func (s *ScriptedRespondent) Choose(ctx context.Context, q ports.Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.questions = append(s.questions, q)
	hook := s.ChooseHook
	s.mu.Unlock()

	if hook != nil {
		return hook(q)
	}
	return s.preference.Prefer(q.Left, q.Right), nil
}

// Associate implements ports.Respondent.
func (s *ScriptedRespondent) Associate(ctx context.Context, req ports.AssociationRequest) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	queue := s.keywords[req.Category]
	if len(queue) == 0 {
		return nil, fmt.Errorf("no keywords scripted for %s: %w", req.Category, ports.ErrInputClosed)
	}
	words := queue[0]
	if len(queue) > 1 {
		s.keywords[req.Category] = queue[1:]
	}
	return slices.Clone(words), nil
}

// Questions returns every comparison asked so far.
func (s *ScriptedRespondent) Questions() []ports.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.questions)
}

// Requests returns every association request received so far.
func (s *ScriptedRespondent) Requests() []ports.AssociationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

var _ ports.Respondent = (*ScriptedRespondent)(nil)
