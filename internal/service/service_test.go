package service

import (
	"context"
	"errors"
	"testing"

	"github.com/uschtwill/trackd/internal/auth"
	"github.com/uschtwill/trackd/internal/storage/memory"
	"github.com/uschtwill/trackd/internal/types"
	"github.com/uschtwill/trackd/internal/validation"
)

var testSession = &auth.Session{Email: "jane@example.com", Name: "Jane"}

func newService(t *testing.T) (*Service, *memory.MemoryStorage) {
	t.Helper()
	store := memory.New()
	return New(store, nil, 0), store
}

func seedUser(t *testing.T, store *memory.MemoryStorage, id, email string) {
	t.Helper()
	if err := store.CreateUser(context.Background(), &types.User{ID: id, Name: id, Email: email}); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
}

func TestCreateIssue(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	issue, err := svc.CreateIssue(ctx, testSession, []byte(`{"title":"Bug A","description":"desc"}`))
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if issue.ID == 0 {
		t.Error("expected ID assigned")
	}
	if issue.Status != types.StatusOpen {
		t.Errorf("expected OPEN, got %s", issue.Status)
	}
	if issue.AssignedToUserID != nil {
		t.Error("new issues must be unassigned")
	}
}

func TestCreateIssueUnauthenticated(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.CreateIssue(context.Background(), nil, []byte(`{"title":"Bug A","description":"desc"}`))
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCreateIssueValidation(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	_, err := svc.CreateIssue(ctx, testSession, []byte(`{"description":"desc"}`))
	var errs validation.FieldErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := errs["title"]; !ok {
		t.Errorf("expected title error, got %v", errs)
	}

	// Validation failure must not mutate state.
	issues, total, listErr := store.ListIssues(ctx, types.IssueFilter{})
	if listErr != nil {
		t.Fatalf("ListIssues: %v", listErr)
	}
	if total != 0 || len(issues) != 0 {
		t.Errorf("rejected create must not persist, got %d issues", total)
	}
}

func TestPatchIssuePartial(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	issue, err := svc.CreateIssue(ctx, testSession, []byte(`{"title":"Bug A","description":"desc","priority":"LOW"}`))
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	updated, err := svc.PatchIssue(ctx, testSession, issue.ID, []byte(`{"status":"CLOSED"}`))
	if err != nil {
		t.Fatalf("PatchIssue: %v", err)
	}
	if updated.Status != types.StatusClosed {
		t.Errorf("expected CLOSED, got %s", updated.Status)
	}
	if updated.Title != "Bug A" || updated.Priority != types.PriorityLow {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestPatchIssueAssignee(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	seedUser(t, store, "u-1", "jane@example.com")

	issue, err := svc.CreateIssue(ctx, testSession, []byte(`{"title":"Bug A","description":"desc"}`))
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	updated, err := svc.PatchIssue(ctx, testSession, issue.ID, []byte(`{"assignedToUserId":"u-1"}`))
	if err != nil {
		t.Fatalf("PatchIssue assign: %v", err)
	}
	if updated.AssignedToUserID == nil || *updated.AssignedToUserID != "u-1" {
		t.Fatalf("expected assignee u-1, got %v", updated.AssignedToUserID)
	}

	updated, err = svc.PatchIssue(ctx, testSession, issue.ID, []byte(`{"assignedToUserId":null}`))
	if err != nil {
		t.Fatalf("PatchIssue clear: %v", err)
	}
	if updated.AssignedToUserID != nil {
		t.Errorf("expected assignee cleared, got %v", *updated.AssignedToUserID)
	}
}

func TestPatchIssueUnknownAssignee(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	issue, err := svc.CreateIssue(ctx, testSession, []byte(`{"title":"Bug A","description":"desc"}`))
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	_, err = svc.PatchIssue(ctx, testSession, issue.ID, []byte(`{"assignedToUserId":"ghost","title":"New"}`))
	var refErr *ReferentialError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected ReferentialError, got %v", err)
	}
	if refErr.Field != "assignedToUserId" {
		t.Errorf("unexpected field: %q", refErr.Field)
	}

	// The referential failure must reject the whole patch.
	got, getErr := store.GetIssue(ctx, issue.ID)
	if getErr != nil {
		t.Fatalf("GetIssue: %v", getErr)
	}
	if got.Title != "Bug A" {
		t.Errorf("rejected patch leaked a write: %+v", got)
	}
}

func TestPatchIssueNotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.PatchIssue(context.Background(), testSession, 999, []byte(`{"title":"New"}`))
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nfErr.Resource != "issue" {
		t.Errorf("unexpected resource: %q", nfErr.Resource)
	}
}

func TestDeleteIssue(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	issue, err := svc.CreateIssue(ctx, testSession, []byte(`{"title":"Bug A","description":"desc"}`))
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if err := svc.DeleteIssue(ctx, testSession, issue.ID); err != nil {
		t.Fatalf("DeleteIssue: %v", err)
	}

	var nfErr *NotFoundError
	if err := svc.DeleteIssue(ctx, testSession, issue.ID); !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError on second delete, got %v", err)
	}
	if err := svc.DeleteIssue(ctx, nil, issue.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGetIssueNotFound(t *testing.T) {
	svc, _ := newService(t)
	var nfErr *NotFoundError
	if _, err := svc.GetIssue(context.Background(), 404); !errors.As(err, &nfErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestListIssuesNormalization(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	for i := 0; i < 12; i++ {
		if _, err := svc.CreateIssue(ctx, testSession, []byte(`{"title":"Bug","description":"desc"}`)); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	t.Run("defaults", func(t *testing.T) {
		res, err := svc.ListIssues(ctx, ListQuery{})
		if err != nil {
			t.Fatalf("ListIssues: %v", err)
		}
		if res.Page != 1 || res.PageSize != DefaultPageSize {
			t.Errorf("expected page 1 size %d, got %d/%d", DefaultPageSize, res.Page, res.PageSize)
		}
		if res.Total != 12 || len(res.Issues) != 10 {
			t.Errorf("expected 10 of 12, got %d of %d", len(res.Issues), res.Total)
		}
	})

	t.Run("second page", func(t *testing.T) {
		res, err := svc.ListIssues(ctx, ListQuery{Page: "2"})
		if err != nil {
			t.Fatalf("ListIssues: %v", err)
		}
		if len(res.Issues) != 2 || res.Total != 12 || res.Page != 2 {
			t.Errorf("expected 2 of 12 on page 2, got %d of %d on page %d", len(res.Issues), res.Total, res.Page)
		}
	})

	t.Run("invalid inputs ignored", func(t *testing.T) {
		res, err := svc.ListIssues(ctx, ListQuery{Status: "RESOLVED", OrderBy: "priority", Page: "zero"})
		if err != nil {
			t.Fatalf("ListIssues: %v", err)
		}
		if res.Total != 12 || res.Page != 1 {
			t.Errorf("invalid query values must fall back to defaults: %+v", res)
		}
	})

	t.Run("negative page clamps", func(t *testing.T) {
		res, err := svc.ListIssues(ctx, ListQuery{Page: "-3"})
		if err != nil {
			t.Fatalf("ListIssues: %v", err)
		}
		if res.Page != 1 {
			t.Errorf("expected page 1, got %d", res.Page)
		}
	})
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	seedUser(t, store, "u-1", "jane@example.com")

	issue, err := svc.CreateIssue(ctx, testSession, []byte(`{"title":"Bug A","description":"desc"}`))
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	comment, err := svc.CreateComment(ctx, testSession, issue.ID, []byte(`{"content":"fixed"}`))
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if comment.UserID != "u-1" {
		t.Errorf("expected author resolved by email, got %q", comment.UserID)
	}
	if comment.User == nil || comment.User.Email != "jane@example.com" {
		t.Errorf("expected author embedded, got %+v", comment.User)
	}
	if comment.CreatedAt.IsZero() {
		t.Error("expected createdAt set")
	}
}

func TestCreateCommentCheckOrder(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	issue, err := svc.CreateIssue(ctx, testSession, []byte(`{"title":"Bug A","description":"desc"}`))
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	t.Run("no session", func(t *testing.T) {
		_, err := svc.CreateComment(ctx, nil, issue.ID, []byte(`{"content":"x"}`))
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("session without matching user", func(t *testing.T) {
		// Resolution runs before payload validation, so even an invalid
		// body reports the missing user first.
		_, err := svc.CreateComment(ctx, testSession, issue.ID, []byte(`{"content":""}`))
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) || nfErr.Resource != "user" {
			t.Fatalf("expected user NotFoundError, got %v", err)
		}
	})

	seedUser(t, store, "u-1", "jane@example.com")

	t.Run("empty content", func(t *testing.T) {
		_, err := svc.CreateComment(ctx, testSession, issue.ID, []byte(`{"content":""}`))
		var errs validation.FieldErrors
		if !errors.As(err, &errs) {
			t.Fatalf("expected FieldErrors, got %v", err)
		}
	})

	t.Run("missing issue is a store failure", func(t *testing.T) {
		_, err := svc.CreateComment(ctx, testSession, 999, []byte(`{"content":"x"}`))
		if err == nil {
			t.Fatal("expected error")
		}
		var nfErr *NotFoundError
		var errs validation.FieldErrors
		if errors.As(err, &nfErr) || errors.As(err, &errs) {
			t.Fatalf("missing issue must surface as a generic failure, got %v", err)
		}
	})
}

func TestCreateLabel(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	issue, err := svc.CreateIssue(ctx, testSession, []byte(`{"title":"Bug A","description":"desc"}`))
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	label, err := svc.CreateLabel(ctx, testSession, []byte(`{"name":"bug","color":"#FF0000"}`))
	if err != nil {
		t.Fatalf("CreateLabel: %v", err)
	}
	if label.ID == 0 {
		t.Error("expected ID assigned")
	}

	body := []byte(`{"name":"ui","color":"#00FF00","issueId":1}`)
	if _, err := svc.CreateLabel(ctx, testSession, body); err != nil {
		t.Fatalf("CreateLabel with association: %v", err)
	}
	attached, err := store.GetIssueLabels(ctx, issue.ID)
	if err != nil {
		t.Fatalf("GetIssueLabels: %v", err)
	}
	if len(attached) != 1 || attached[0].Name != "ui" {
		t.Fatalf("expected ui attached, got %+v", attached)
	}

	_, err = svc.CreateLabel(ctx, testSession, []byte(`{"name":"bad","color":"red"}`))
	var errs validation.FieldErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected FieldErrors for bad color, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	seedUser(t, store, "u-1", "jane@example.com")

	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].Email != "jane@example.com" {
		t.Fatalf("unexpected users: %+v", users)
	}
}
