package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quicktrack-app/server/internal/apperror"
	"github.com/quicktrack-app/server/internal/models"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func TestAddExpense(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	group := createTestGroup(t, svc, alice, "Costs")

	resp, err := svc.AddExpense(ctx, alice, group.ID, models.AddExpenseRequest{
		Amount:   42.567,
		Category: "food",
		Note:     "injera",
	})
	require.NoError(t, err)

	expense := resp.Expense
	assert.Len(t, expense.ID, 16)
	assert.Equal(t, 42.57, expense.Amount)
	assert.Equal(t, "food", expense.Category)
	assert.Equal(t, "injera", expense.Note)
	assert.Equal(t, alice.UserID, expense.AddedBy)
	assert.Equal(t, "Alice", expense.AddedByName)
	assert.False(t, expense.Timestamp.IsZero())

	list, err := svc.ListExpenses(ctx, alice, group.ID)
	require.NoError(t, err)
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, expense.ID, list.Expenses[0].ID)
}

func TestAddExpenseDefaultsAndLimits(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	group := createTestGroup(t, svc, alice, "Costs")

	// Missing category falls back to "other"; any other string is stored
	// as-is, there is no enum check.
	resp, err := svc.AddExpense(ctx, alice, group.ID, models.AddExpenseRequest{Amount: 1})
	require.NoError(t, err)
	assert.Equal(t, "other", resp.Expense.Category)

	resp, err = svc.AddExpense(ctx, alice, group.ID, models.AddExpenseRequest{Amount: 1, Category: "vet bills"})
	require.NoError(t, err)
	assert.Equal(t, "vet bills", resp.Expense.Category)

	// Notes are capped at 100 characters.
	resp, err = svc.AddExpense(ctx, alice, group.ID, models.AddExpenseRequest{
		Amount: 1,
		Note:   strings.Repeat("n", 150),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Expense.Note, 100)
}

func TestAddExpenseValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	group := createTestGroup(t, svc, alice, "Costs")

	for _, amount := range []float64{0, -5} {
		_, err := svc.AddExpense(ctx, alice, group.ID, models.AddExpenseRequest{Amount: amount})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	}

	// Non-members cannot add.
	_, err := svc.AddExpense(ctx, bob, group.ID, models.AddExpenseRequest{Amount: 1})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestUpdateExpenseMerge(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	group := createTestGroup(t, svc, alice, "Costs")

	created, err := svc.AddExpense(ctx, alice, group.ID, models.AddExpenseRequest{
		Amount:   30,
		Category: "food",
		Note:     "lunch",
	})
	require.NoError(t, err)
	expenseID := created.Expense.ID

	// Empty patch changes nothing.
	resp, err := svc.UpdateExpense(ctx, alice, group.ID, expenseID, models.UpdateExpenseRequest{})
	require.NoError(t, err)
	assert.Equal(t, 30.0, resp.Expense.Amount)
	assert.Equal(t, "food", resp.Expense.Category)
	assert.Equal(t, "lunch", resp.Expense.Note)

	// Non-positive amount keeps the stored amount.
	resp, err = svc.UpdateExpense(ctx, alice, group.ID, expenseID, models.UpdateExpenseRequest{
		Amount: floatPtr(-1),
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, resp.Expense.Amount)

	// Positive amount replaces and is rounded.
	resp, err = svc.UpdateExpense(ctx, alice, group.ID, expenseID, models.UpdateExpenseRequest{
		Amount: floatPtr(12.346),
	})
	require.NoError(t, err)
	assert.Equal(t, 12.35, resp.Expense.Amount)

	// Empty category keeps the existing one.
	resp, err = svc.UpdateExpense(ctx, alice, group.ID, expenseID, models.UpdateExpenseRequest{
		Category: "",
	})
	require.NoError(t, err)
	assert.Equal(t, "food", resp.Expense.Category)

	resp, err = svc.UpdateExpense(ctx, alice, group.ID, expenseID, models.UpdateExpenseRequest{
		Category: "transport",
	})
	require.NoError(t, err)
	assert.Equal(t, "transport", resp.Expense.Category)

	// Absent note is preserved; explicit empty string clears it.
	resp, err = svc.UpdateExpense(ctx, alice, group.ID, expenseID, models.UpdateExpenseRequest{})
	require.NoError(t, err)
	assert.Equal(t, "lunch", resp.Expense.Note)

	resp, err = svc.UpdateExpense(ctx, alice, group.ID, expenseID, models.UpdateExpenseRequest{
		Note: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "", resp.Expense.Note)

	// The merged record overwrote the stored field.
	list, err := svc.ListExpenses(ctx, alice, group.ID)
	require.NoError(t, err)
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, "transport", list.Expenses[0].Category)
	assert.Equal(t, "", list.Expenses[0].Note)
}

func TestUpdateExpenseOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	group := createTestGroup(t, svc, alice, "Costs")
	_, err := svc.JoinGroup(ctx, bob, group.ID, group.InviteCode)
	require.NoError(t, err)

	created, err := svc.AddExpense(ctx, alice, group.ID, models.AddExpenseRequest{Amount: 10})
	require.NoError(t, err)

	// Membership is not enough; only the creator edits.
	_, err = svc.UpdateExpense(ctx, bob, group.ID, created.Expense.ID, models.UpdateExpenseRequest{
		Amount: floatPtr(99),
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.UpdateExpense(ctx, alice, group.ID, "0000000000000000", models.UpdateExpenseRequest{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteExpense(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	group := createTestGroup(t, svc, alice, "Costs")
	_, err := svc.JoinGroup(ctx, bob, group.ID, group.InviteCode)
	require.NoError(t, err)

	created, err := svc.AddExpense(ctx, alice, group.ID, models.AddExpenseRequest{Amount: 10})
	require.NoError(t, err)

	err = svc.DeleteExpense(ctx, bob, group.ID, created.Expense.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, svc.DeleteExpense(ctx, alice, group.ID, created.Expense.ID))

	list, err := svc.ListExpenses(ctx, alice, group.ID)
	require.NoError(t, err)
	assert.Empty(t, list.Expenses)

	// Deletion is permanent; a second delete is not found.
	err = svc.DeleteExpense(ctx, alice, group.ID, created.Expense.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
