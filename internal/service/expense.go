package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/quicktrack-app/server/internal/apperror"
	"github.com/quicktrack-app/server/internal/models"
	"github.com/quicktrack-app/server/internal/store"
)

func (s *DefaultService) ListExpenses(
	ctx context.Context,
	identity models.Identity,
	groupID string,
) (*models.ExpenseListResponse, error) {
	if err := s.requireMember(ctx, identity, groupID); err != nil {
		return nil, err
	}

	hash, err := s.store.HashGetAll(ctx, store.GroupExpensesKey(groupID))
	if err != nil {
		return nil, fmt.Errorf("error listing expenses for group %s: %w", groupID, err)
	}

	return &models.ExpenseListResponse{Expenses: decodeExpenses(hash)}, nil
}

func (s *DefaultService) AddExpense(
	ctx context.Context,
	identity models.Identity,
	groupID string,
	req models.AddExpenseRequest,
) (*models.ExpenseResponse, error) {
	if err := s.requireMember(ctx, identity, groupID); err != nil {
		return nil, err
	}

	if req.Amount <= 0 {
		return nil, apperror.Validation("Valid amount is required")
	}

	category := req.Category
	if category == "" {
		category = defaultCategory
	}

	expense := models.Expense{
		ID:          newID(),
		Amount:      roundAmount(req.Amount),
		Category:    category,
		Note:        truncate(req.Note, maxNoteLen),
		Timestamp:   time.Now().UTC(),
		AddedBy:     identity.UserID,
		AddedByName: identity.UserName,
	}

	if err := s.putExpense(ctx, groupID, &expense); err != nil {
		return nil, fmt.Errorf("error adding expense: %w", err)
	}

	return &models.ExpenseResponse{Expense: expense}, nil
}

func (s *DefaultService) UpdateExpense(
	ctx context.Context,
	identity models.Identity,
	groupID string,
	expenseID string,
	req models.UpdateExpenseRequest,
) (*models.ExpenseResponse, error) {
	if err := s.requireMember(ctx, identity, groupID); err != nil {
		return nil, err
	}

	expense, err := s.getExpense(ctx, groupID, expenseID)
	if err != nil {
		return nil, err
	}

	if expense.AddedBy != identity.UserID {
		return nil, apperror.Forbidden("Only the expense creator can edit it")
	}

	// Merge rules: amount only replaces when positive, category only when
	// non-empty, note whenever the field is present, including "".
	if req.Amount != nil && *req.Amount > 0 {
		expense.Amount = roundAmount(*req.Amount)
	}
	if req.Category != "" {
		expense.Category = req.Category
	}
	if req.Note != nil {
		expense.Note = truncate(*req.Note, maxNoteLen)
	}

	if err := s.putExpense(ctx, groupID, expense); err != nil {
		return nil, fmt.Errorf("error updating expense %s: %w", expenseID, err)
	}

	return &models.ExpenseResponse{Expense: *expense}, nil
}

func (s *DefaultService) DeleteExpense(
	ctx context.Context,
	identity models.Identity,
	groupID string,
	expenseID string,
) error {
	if err := s.requireMember(ctx, identity, groupID); err != nil {
		return err
	}

	expense, err := s.getExpense(ctx, groupID, expenseID)
	if err != nil {
		return err
	}

	if expense.AddedBy != identity.UserID {
		return apperror.Forbidden("Only the expense creator can delete it")
	}

	if err := s.store.HashDelete(ctx, store.GroupExpensesKey(groupID), expenseID); err != nil {
		return fmt.Errorf("error deleting expense %s: %w", expenseID, err)
	}

	return nil
}

func (s *DefaultService) getExpense(ctx context.Context, groupID, expenseID string) (*models.Expense, error) {
	raw, err := s.store.HashGet(ctx, store.GroupExpensesKey(groupID), expenseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("Expense not found")
	}
	if err != nil {
		return nil, fmt.Errorf("error getting expense %s: %w", expenseID, err)
	}

	var expense models.Expense
	if err := json.Unmarshal([]byte(raw), &expense); err != nil {
		return nil, fmt.Errorf("error decoding expense %s: %w", expenseID, err)
	}
	return &expense, nil
}

func (s *DefaultService) putExpense(ctx context.Context, groupID string, expense *models.Expense) error {
	record, err := json.Marshal(expense)
	if err != nil {
		return fmt.Errorf("error encoding expense: %w", err)
	}
	return s.store.HashSet(ctx, store.GroupExpensesKey(groupID), expense.ID, string(record))
}

// roundAmount rounds to two decimal places.
func roundAmount(amount float64) float64 {
	return math.Round(amount*100) / 100
}
