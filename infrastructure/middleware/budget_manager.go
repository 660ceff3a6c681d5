package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ahrav/go-lifewheel/internal/application"
	"github.com/ahrav/go-lifewheel/internal/domain"
	"github.com/ahrav/go-lifewheel/internal/ports"
)

// Budget limits how many comparison questions a respondent is asked.
type Budget struct {
	// MaxQuestions is the question limit. Zero means unlimited.
	MaxQuestions int
}

// QuestionObserver provides observability hooks for budget operations.
// Implementations can add tracing, metrics, and logging without
// coupling observability concerns to core budget logic.
type QuestionObserver interface {
	// PreCheck is called before each question is put to the respondent.
	PreCheck(ctx context.Context, used int, budget Budget)

	// PostCheck is called after the respondent answered or failed.
	PostCheck(ctx context.Context, used int, budget Budget, elapsed time.Duration, err error)
}

// QuestionBudget enforces the question limit of an interview. It wraps a
// respondent and refuses to ask once the limit is reached, returning a
// *domain.BudgetExceededError instead of an answer. Introductions and
// associations are not counted.
type QuestionBudget struct {
	budget   Budget
	next     ports.Respondent
	observer QuestionObserver

	mu   sync.Mutex
	used int
}

var _ ports.Respondent = (*QuestionBudget)(nil)

// NewQuestionBudget creates a QuestionBudget around next with an optional
// observer.
func NewQuestionBudget(budget Budget, next ports.Respondent, observer QuestionObserver) *QuestionBudget {
	if next == nil {
		panic("question budget: next respondent is required")
	}
	return &QuestionBudget{
		budget:   budget,
		next:     next,
		observer: observer,
	}
}

// Introduce implements ports.Respondent.
func (qb *QuestionBudget) Introduce(ctx context.Context) (domain.Participant, error) {
	return qb.next.Introduce(ctx)
}

// Choose asks the wrapped respondent if the budget allows another
// question. A question only counts once it is answered.
func (qb *QuestionBudget) Choose(ctx context.Context, q ports.Question) (string, error) {
	qb.mu.Lock()
	used := qb.used
	qb.mu.Unlock()

	if err := qb.check(used); err != nil {
		if qb.observer != nil {
			qb.observer.PostCheck(ctx, used, qb.budget, 0, err)
		}
		return "", err
	}

	if qb.observer != nil {
		qb.observer.PreCheck(ctx, used, qb.budget)
	}

	start := time.Now()
	answer, err := qb.next.Choose(ctx, q)
	elapsed := time.Since(start)

	if err == nil {
		qb.mu.Lock()
		qb.used++
		used = qb.used
		qb.mu.Unlock()
	}

	if qb.observer != nil {
		qb.observer.PostCheck(ctx, used, qb.budget, elapsed, err)
	}
	return answer, err
}

// Associate implements ports.Respondent.
func (qb *QuestionBudget) Associate(ctx context.Context, req ports.AssociationRequest) ([]string, error) {
	return qb.next.Associate(ctx, req)
}

// Used returns the number of questions answered through the budget.
func (qb *QuestionBudget) Used() int {
	qb.mu.Lock()
	defer qb.mu.Unlock()
	return qb.used
}

// Remaining returns the questions left, or -1 when unlimited.
func (qb *QuestionBudget) Remaining() int {
	if qb.budget.MaxQuestions <= 0 {
		return -1
	}
	return max(qb.budget.MaxQuestions-qb.Used(), 0)
}

// Validate checks that the budget is usable.
func (qb *QuestionBudget) Validate() error {
	if qb.budget.MaxQuestions < 0 {
		return fmt.Errorf("question budget: max_questions cannot be negative, got %d", qb.budget.MaxQuestions)
	}
	return nil
}

// check returns a BudgetExceededError when another question would exceed
// the limit.
func (qb *QuestionBudget) check(used int) error {
	if qb.budget.MaxQuestions > 0 && used >= qb.budget.MaxQuestions {
		return domain.NewBudgetExceededError("questions", qb.budget.MaxQuestions, used)
	}
	return nil
}

// BudgetFromConfig converts an application.BudgetConfig to a middleware.Budget.
func BudgetFromConfig(config application.BudgetConfig) Budget {
	return Budget{MaxQuestions: config.MaxQuestions}
}
