package ports

// Metric names and label keys recorded through MetricsCollector.
const (
	// MetricQuestionsAsked counts comparison questions, labelled by stage.
	MetricQuestionsAsked = "questions_asked"
	// MetricInvalidAnswers counts answers that were not one of the offered
	// choices, labelled by stage.
	MetricInvalidAnswers = "invalid_answers"
	// MetricKeywordRejections counts refused keyword triads, labelled by
	// reason.
	MetricKeywordRejections = "keyword_rejections"
	// MetricInterviews counts finished interviews, labelled by status.
	MetricInterviews = "interviews"
	// MetricBudgetExceeded counts interviews stopped by the question budget.
	MetricBudgetExceeded = "budget_exceeded"
	// MetricInferredOutcomes is the number of matchups a session settled
	// from its history, labelled by session.
	MetricInferredOutcomes = "inferred_outcomes"
	// MetricBudgetRemaining is the number of questions left in the budget.
	MetricBudgetRemaining = "budget_remaining_questions"
	// MetricStageQuestions observes how many questions a stage needed.
	MetricStageQuestions = "stage_questions"
	// OperationAnswer is the latency operation for one respondent answer.
	OperationAnswer = "answer"

	LabelStage     = "stage"
	LabelReason    = "reason"
	LabelStatus    = "status"
	LabelSession   = "session"
	LabelLimitType = "limit_type"
)
