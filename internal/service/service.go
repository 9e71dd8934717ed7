package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quicktrack-app/server/internal/apperror"
	"github.com/quicktrack-app/server/internal/models"
	"github.com/quicktrack-app/server/internal/store"
)

const (
	maxGroupNameLen = 50
	maxNoteLen      = 100
	defaultCategory = "other"
)

// Service defines all the business logic operations
type Service interface {
	// Group lifecycle
	ListGroups(ctx context.Context, identity models.Identity) (*models.GroupListResponse, error)
	CreateGroup(ctx context.Context, identity models.Identity, req models.CreateGroupRequest) (*models.GroupResponse, error)
	GetGroup(ctx context.Context, identity models.Identity, groupID string) (*models.GroupDetailResponse, error)
	DeleteGroup(ctx context.Context, identity models.Identity, groupID string) error
	JoinGroup(ctx context.Context, identity models.Identity, groupID, inviteCode string) (*models.JoinGroupResponse, error)

	// Shared expenses
	ListExpenses(ctx context.Context, identity models.Identity, groupID string) (*models.ExpenseListResponse, error)
	AddExpense(ctx context.Context, identity models.Identity, groupID string, req models.AddExpenseRequest) (*models.ExpenseResponse, error)
	UpdateExpense(ctx context.Context, identity models.Identity, groupID, expenseID string, req models.UpdateExpenseRequest) (*models.ExpenseResponse, error)
	DeleteExpense(ctx context.Context, identity models.Identity, groupID, expenseID string) error
}

// DefaultService implements the Service interface on a key-value store
type DefaultService struct {
	store store.Store
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(st store.Store) Service {
	return &DefaultService{store: st}
}

func (s *DefaultService) ListGroups(ctx context.Context, identity models.Identity) (*models.GroupListResponse, error) {
	groupIDs, err := s.store.SetMembers(ctx, store.UserGroupsKey(identity.UserID))
	if err != nil {
		return nil, fmt.Errorf("error listing user groups: %w", err)
	}

	groups := make([]models.Group, 0, len(groupIDs))
	if len(groupIDs) == 0 {
		return &models.GroupListResponse{Groups: groups}, nil
	}

	keys := make([]string, len(groupIDs))
	for i, gid := range groupIDs {
		keys[i] = store.GroupKey(gid)
	}

	records, err := s.store.GetMany(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("error fetching groups: %w", err)
	}

	// Skip ids whose record is gone (e.g. a delete that didn't reach this
	// user's index) and records that no longer decode.
	for _, raw := range records {
		if raw == "" {
			continue
		}
		var group models.Group
		if err := json.Unmarshal([]byte(raw), &group); err != nil {
			continue
		}
		groups = append(groups, group)
	}

	return &models.GroupListResponse{Groups: groups}, nil
}

func (s *DefaultService) CreateGroup(
	ctx context.Context,
	identity models.Identity,
	req models.CreateGroupRequest,
) (*models.GroupResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.Validation("Group name is required")
	}
	name = truncate(name, maxGroupNameLen)

	group := models.Group{
		ID:            newID(),
		Name:          name,
		CreatedBy:     identity.UserID,
		CreatedByName: identity.UserName,
		CreatedAt:     time.Now().UTC(),
		InviteCode:    newInviteCode(),
	}

	record, err := json.Marshal(group)
	if err != nil {
		return nil, fmt.Errorf("error encoding group: %w", err)
	}

	// One batch: group record, both sides of the membership relation, the
	// name cache, and the invite mapping.
	pipe := s.store.Pipeline()
	pipe.Set(store.GroupKey(group.ID), string(record))
	pipe.SetAdd(store.GroupMembersKey(group.ID), identity.UserID)
	pipe.HashSet(store.GroupMemberNamesKey(group.ID), identity.UserID, identity.UserName)
	pipe.SetAdd(store.UserGroupsKey(identity.UserID), group.ID)
	pipe.Set(store.InviteKey(group.InviteCode), group.ID)
	if err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("error creating group: %w", err)
	}

	return &models.GroupResponse{Group: group}, nil
}

func (s *DefaultService) GetGroup(
	ctx context.Context,
	identity models.Identity,
	groupID string,
) (*models.GroupDetailResponse, error) {
	if err := s.requireMember(ctx, identity, groupID); err != nil {
		return nil, err
	}

	var (
		rawGroup    string
		memberNames map[string]string
		expenseHash map[string]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawGroup, err = s.store.Get(gctx, store.GroupKey(groupID))
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		memberNames, err = s.store.HashGetAll(gctx, store.GroupMemberNamesKey(groupID))
		return err
	})
	g.Go(func() error {
		var err error
		expenseHash, err = s.store.HashGetAll(gctx, store.GroupExpensesKey(groupID))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error fetching group %s: %w", groupID, err)
	}

	if rawGroup == "" {
		return nil, apperror.NotFound("Group not found")
	}
	var group models.Group
	if err := json.Unmarshal([]byte(rawGroup), &group); err != nil {
		return nil, fmt.Errorf("error decoding group %s: %w", groupID, err)
	}

	members := make([]models.Member, 0, len(memberNames))
	for id, name := range memberNames {
		members = append(members, models.Member{ID: id, Name: name})
	}

	return &models.GroupDetailResponse{
		Group:    group,
		Members:  members,
		Expenses: decodeExpenses(expenseHash),
	}, nil
}

func (s *DefaultService) DeleteGroup(ctx context.Context, identity models.Identity, groupID string) error {
	group, err := s.getGroupRecord(ctx, groupID)
	if err != nil {
		return err
	}

	if group.CreatedBy != identity.UserID {
		return apperror.Forbidden("Only the group creator can delete it")
	}

	memberIDs, err := s.store.SetMembers(ctx, store.GroupMembersKey(groupID))
	if err != nil {
		return fmt.Errorf("error listing group members: %w", err)
	}

	// Best-effort cascade: the commands go out in one batch but apply
	// independently, so a partial failure can leave orphaned keys.
	pipe := s.store.Pipeline()
	pipe.Delete(store.GroupKey(groupID))
	pipe.Delete(store.GroupMembersKey(groupID))
	pipe.Delete(store.GroupMemberNamesKey(groupID))
	pipe.Delete(store.GroupExpensesKey(groupID))
	pipe.Delete(store.InviteKey(group.InviteCode))
	for _, mid := range memberIDs {
		pipe.SetRemove(store.UserGroupsKey(mid), groupID)
	}
	if err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error deleting group %s: %w", groupID, err)
	}

	return nil
}

func (s *DefaultService) JoinGroup(
	ctx context.Context,
	identity models.Identity,
	groupID string,
	inviteCode string,
) (*models.JoinGroupResponse, error) {
	mappedGroupID, err := s.store.Get(ctx, store.InviteKey(inviteCode))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("error resolving invite code: %w", err)
	}

	// A code that maps to a different group is rejected, never rerouted.
	if mappedGroupID != groupID {
		return nil, apperror.Validation("Invalid invite code")
	}

	group, err := s.getGroupRecord(ctx, groupID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.store.SetIsMember(ctx, store.GroupMembersKey(groupID), identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("error checking group membership: %w", err)
	}
	if isMember {
		return &models.JoinGroupResponse{Group: *group, AlreadyMember: true}, nil
	}

	pipe := s.store.Pipeline()
	pipe.SetAdd(store.GroupMembersKey(groupID), identity.UserID)
	pipe.HashSet(store.GroupMemberNamesKey(groupID), identity.UserID, identity.UserName)
	pipe.SetAdd(store.UserGroupsKey(identity.UserID), groupID)
	if err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("error joining group %s: %w", groupID, err)
	}

	return &models.JoinGroupResponse{Group: *group, AlreadyMember: false}, nil
}

// requireMember gates every per-group operation.
func (s *DefaultService) requireMember(ctx context.Context, identity models.Identity, groupID string) error {
	isMember, err := s.store.SetIsMember(ctx, store.GroupMembersKey(groupID), identity.UserID)
	if err != nil {
		return fmt.Errorf("error checking group membership: %w", err)
	}
	if !isMember {
		return apperror.Forbidden("Not a member of this group")
	}
	return nil
}

func (s *DefaultService) getGroupRecord(ctx context.Context, groupID string) (*models.Group, error) {
	raw, err := s.store.Get(ctx, store.GroupKey(groupID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("Group not found")
	}
	if err != nil {
		return nil, fmt.Errorf("error getting group %s: %w", groupID, err)
	}

	var group models.Group
	if err := json.Unmarshal([]byte(raw), &group); err != nil {
		return nil, fmt.Errorf("error decoding group %s: %w", groupID, err)
	}
	return &group, nil
}

// decodeExpenses turns an expense hash into records sorted most recent first.
func decodeExpenses(hash map[string]string) []models.Expense {
	expenses := make([]models.Expense, 0, len(hash))
	for _, raw := range hash {
		var e models.Expense
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		expenses = append(expenses, e)
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Timestamp.After(expenses[j].Timestamp)
	})
	return expenses
}

// truncate limits s to max characters, counting runes so a multi-byte
// character is never split.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
