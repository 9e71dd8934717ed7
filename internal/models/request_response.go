package models

// Request models
type CreateGroupRequest struct {
	Name string `json:"name"`
}

type AddExpenseRequest struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Note     string  `json:"note"`
}

// UpdateExpenseRequest is a partial patch. Pointer fields distinguish an
// absent field from an explicit zero value: a nil Note keeps the stored note,
// an empty-string Note clears it.
type UpdateExpenseRequest struct {
	Amount   *float64 `json:"amount"`
	Category string   `json:"category"`
	Note     *string  `json:"note"`
}

// Response models
type GroupListResponse struct {
	Groups []Group `json:"groups"`
}

type GroupResponse struct {
	Group Group `json:"group"`
}

type GroupDetailResponse struct {
	Group    Group     `json:"group"`
	Members  []Member  `json:"members"`
	Expenses []Expense `json:"expenses"`
}

type JoinGroupResponse struct {
	Group         Group `json:"group"`
	AlreadyMember bool  `json:"alreadyMember"`
}

type ExpenseListResponse struct {
	Expenses []Expense `json:"expenses"`
}

type ExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type AckResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
