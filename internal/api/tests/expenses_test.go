package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quicktrack-app/server/internal/api/testutils"
	"github.com/quicktrack-app/server/internal/models"
)

func joinGroup(t *testing.T, testCtx *testutils.TestContext, token string, group models.Group) {
	t.Helper()

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		fmt.Sprintf("/groups/%s/join?invite=%s", group.ID, group.InviteCode),
		nil,
		testutils.AuthHeaders(token),
	)
	require.Equal(t, http.StatusOK, w.Code)
}

func addExpense(t *testing.T, testCtx *testutils.TestContext, token, groupID string, req models.AddExpenseRequest) models.Expense {
	t.Helper()

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/groups/"+groupID+"/expenses",
		req,
		testutils.AuthHeaders(token),
	)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.ExpenseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Expense
}

func TestAddAndListExpenses(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	aliceToken := testutils.InitData(100, "Alice", "")
	bobToken := testutils.InitData(200, "Bob", "")

	group := createGroup(t, testCtx, aliceToken, "Costs")
	joinGroup(t, testCtx, bobToken, group)

	expense := addExpense(t, testCtx, aliceToken, group.ID, models.AddExpenseRequest{
		Amount:   42.5,
		Category: "food",
		Note:     "groceries",
	})
	assert.Equal(t, 42.5, expense.Amount)
	assert.Equal(t, "food", expense.Category)
	assert.Equal(t, "100", expense.AddedBy)

	// Invalid amount
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/groups/"+group.ID+"/expenses",
		models.AddExpenseRequest{Amount: -1},
		testutils.AuthHeaders(aliceToken),
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Any member sees the expense
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/groups/"+group.ID+"/expenses",
		nil,
		testutils.AuthHeaders(bobToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	var list models.ExpenseListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Expenses, 1)
	assert.Equal(t, expense.ID, list.Expenses[0].ID)

	// Non-members can't list
	carolToken := testutils.InitData(300, "Carol", "")
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/groups/"+group.ID+"/expenses",
		nil,
		testutils.AuthHeaders(carolToken),
	)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateExpense(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	aliceToken := testutils.InitData(100, "Alice", "")
	bobToken := testutils.InitData(200, "Bob", "")

	group := createGroup(t, testCtx, aliceToken, "Costs")
	joinGroup(t, testCtx, bobToken, group)

	expense := addExpense(t, testCtx, aliceToken, group.ID, models.AddExpenseRequest{
		Amount: 10,
		Note:   "snacks",
	})
	path := fmt.Sprintf("/groups/%s/expenses/%s", group.ID, expense.ID)

	// Another member can't edit
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		path,
		map[string]interface{}{"amount": 99},
		testutils.AuthHeaders(bobToken),
	)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The creator can; note:"" clears the note
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		path,
		map[string]interface{}{"amount": 25.5, "note": ""},
		testutils.AuthHeaders(aliceToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ExpenseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 25.5, resp.Expense.Amount)
	assert.Equal(t, "", resp.Expense.Note)

	// Patch without a note leaves it untouched
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		path,
		map[string]interface{}{"category": "bills"},
		testutils.AuthHeaders(aliceToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bills", resp.Expense.Category)
	assert.Equal(t, 25.5, resp.Expense.Amount)

	// Unknown expense is 404
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/groups/%s/expenses/%s", group.ID, "0000000000000000"),
		map[string]interface{}{"amount": 1},
		testutils.AuthHeaders(aliceToken),
	)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteExpense(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	aliceToken := testutils.InitData(100, "Alice", "")
	bobToken := testutils.InitData(200, "Bob", "")

	group := createGroup(t, testCtx, aliceToken, "Costs")
	joinGroup(t, testCtx, bobToken, group)

	expense := addExpense(t, testCtx, aliceToken, group.ID, models.AddExpenseRequest{Amount: 10})
	path := fmt.Sprintf("/groups/%s/expenses/%s", group.ID, expense.ID)

	// Only the creator can delete
	w := testutils.PerformRequest(testCtx.Router, http.MethodDelete, path, nil, testutils.AuthHeaders(bobToken))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, path, nil, testutils.AuthHeaders(aliceToken))
	assert.Equal(t, http.StatusOK, w.Code)

	var ack models.AckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.True(t, ack.OK)

	// Gone for good
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, path, nil, testutils.AuthHeaders(aliceToken))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
