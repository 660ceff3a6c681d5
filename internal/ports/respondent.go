package ports

import (
	"context"

	"github.com/ahrav/go-lifewheel/internal/domain"
)

// QuestionKind identifies which comparison stage a question belongs to.
type QuestionKind string

const (
	// QuestionCategories compares two life-wheel categories.
	QuestionCategories QuestionKind = "categories"

	// QuestionRepresentative compares two keywords of the same category
	// while choosing that category's representative.
	QuestionRepresentative QuestionKind = "representative"

	// QuestionKeywords compares two representative keywords.
	QuestionKeywords QuestionKind = "keywords"
)

// Question is a single pairwise comparison put to the respondent.
type Question struct {
	// Kind is the interview stage asking the question.
	Kind QuestionKind

	// Prompt is the human-facing question text.
	Prompt string

	// Category is set for representative questions.
	Category string

	// Left and Right are the two choices in display order.
	Left  string
	Right string

	// Number is the 1-based count of comparison questions in the interview.
	Number int
}

// AssociationRequest asks the respondent for the keywords they associate
// with a category.
type AssociationRequest struct {
	// Category is the category being associated.
	Category string

	// Count is the number of keywords required.
	Count int

	// Attempt is 1 for the first request and increases on every retry.
	Attempt int

	// Rejection explains why the previous attempt was refused. It is nil
	// on the first attempt and a *domain.KeywordError afterwards.
	Rejection error
}

// Respondent is the presentation collaborator of an interview: the human
// (or a stand-in) who supplies every decision. Implementations block until
// the answer is available and must honour context cancellation.
type Respondent interface {
	// Introduce collects the participant profile before ranking starts.
	Introduce(ctx context.Context) (domain.Participant, error)

	// Choose returns the preferred item, which must be q.Left or q.Right.
	Choose(ctx context.Context, q Question) (string, error)

	// Associate returns the keywords for req.Category. Invalid input is
	// answered with another request carrying the rejection.
	Associate(ctx context.Context, req AssociationRequest) ([]string, error)
}
