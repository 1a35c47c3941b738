package model

// BudgetEntry is one allocation or expense line on a project budget.
// Amounts are decimal strings so the database keeps exact arithmetic.
type BudgetEntry struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Category  string `json:"category" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
	Spent     bool   `json:"spent"`
}

type BudgetSummary struct {
	ProjectID int64  `json:"project_id"`
	Allocated string `json:"allocated"`
	Spent     string `json:"spent"`
}
