package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gabrielmilitaosantos/acquisitions/internal/api/middleware"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

type stubUserService struct {
	listFn   func(ctx context.Context, actor domain.Identity) ([]domain.User, error)
	getFn    func(ctx context.Context, actor domain.Identity, id int64) (*domain.User, error)
	updateFn func(ctx context.Context, actor domain.Identity, id int64, changes domain.UserChanges) (*domain.User, error)
	deleteFn func(ctx context.Context, actor domain.Identity, id int64) (*domain.UserSummary, error)
}

func (s *stubUserService) ListAll(ctx context.Context, actor domain.Identity) ([]domain.User, error) {
	return s.listFn(ctx, actor)
}

func (s *stubUserService) GetByID(ctx context.Context, actor domain.Identity, id int64) (*domain.User, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubUserService) Update(ctx context.Context, actor domain.Identity, id int64, changes domain.UserChanges) (*domain.User, error) {
	return s.updateFn(ctx, actor, id, changes)
}

func (s *stubUserService) Delete(ctx context.Context, actor domain.Identity, id int64) (*domain.UserSummary, error) {
	return s.deleteFn(ctx, actor, id)
}

// newUserContext builds an echo context as the router would after Auth ran.
func newUserContext(method, id, body string, actor *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/api/users/"+id, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/api/users/"+id, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	if actor != nil {
		c.Set(middleware.IdentityKey, *actor)
	}
	return c, rec
}

func validationDetails(t *testing.T, err error) []string {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve.Details
}

var testAdmin = domain.Identity{ID: 1, Role: domain.RoleAdmin}

func TestUserHandler_List(t *testing.T) {
	stub := &stubUserService{
		listFn: func(_ context.Context, actor domain.Identity) ([]domain.User, error) {
			if actor != testAdmin {
				t.Fatalf("unexpected actor %+v", actor)
			}
			return []domain.User{{ID: 1, Name: "Admin"}, {ID: 2, Name: "Bob"}}, nil
		},
	}
	c, rec := newUserContext(http.MethodGet, "", "", &testAdmin)

	if err := NewUserHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "Successfully getting all users." || resp["count"] != float64(2) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_List_NoIdentity(t *testing.T) {
	c, _ := newUserContext(http.MethodGet, "", "", nil)

	err := NewUserHandler(&stubUserService{}).List(c)
	if !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestUserHandler_Get(t *testing.T) {
	stub := &stubUserService{
		getFn: func(_ context.Context, _ domain.Identity, id int64) (*domain.User, error) {
			if id != 42 {
				t.Fatalf("expected id 42, got %d", id)
			}
			return &domain.User{ID: 42, Name: "Bob", Email: "bob@example.com", Role: domain.RoleUser}, nil
		},
	}
	c, rec := newUserContext(http.MethodGet, "42", "", &testAdmin)

	if err := NewUserHandler(stub).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "Successfully retrieved user." || resp.User["email"] != "bob@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, leaked := resp.User["password_hash"]; leaked {
		t.Fatalf("password hash must never be serialized")
	}
}

func TestUserHandler_Get_InvalidID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-3", "1.5"} {
		t.Run(id, func(t *testing.T) {
			c, _ := newUserContext(http.MethodGet, id, "", &testAdmin)
			err := NewUserHandler(&stubUserService{}).Get(c)
			details := validationDetails(t, err)
			if !strings.HasPrefix(details[0], "id: ") {
				t.Fatalf("expected id detail, got %v", details)
			}
		})
	}
}

func TestUserHandler_Get_PropagatesServiceError(t *testing.T) {
	stub := &stubUserService{
		getFn: func(context.Context, domain.Identity, int64) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	c, _ := newUserContext(http.MethodGet, "9", "", &testAdmin)

	if err := NewUserHandler(stub).Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_Update_NormalizesInput(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(_ context.Context, _ domain.Identity, id int64, changes domain.UserChanges) (*domain.User, error) {
			if changes.Name == nil || *changes.Name != "Robert" {
				t.Fatalf("name not trimmed: %+v", changes.Name)
			}
			if changes.Email == nil || *changes.Email != "robert@example.com" {
				t.Fatalf("email not normalized: %+v", changes.Email)
			}
			if changes.Role != nil {
				t.Fatalf("role should be absent")
			}
			return &domain.User{ID: id, Name: *changes.Name, Email: *changes.Email, Role: domain.RoleUser}, nil
		},
	}
	c, rec := newUserContext(http.MethodPut, "2", `{"name":"  Robert ","email":" Robert@Example.COM "}`, &testAdmin)

	if err := NewUserHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User updated successfully.") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUserHandler_Update_RejectsBadBodies(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"empty object", `{}`, "body: at least one field must be provided for update"},
		{"unknown fields only", `{"password":"x"}`, "body: at least one field must be provided for update"},
		{"not an object", `[1,2]`, "body: must be a valid JSON object"},
		{"short name", `{"name":" a "}`, "name: must be at least 2 characters"},
		{"bad email", `{"email":"nope"}`, "email: must be a valid email"},
		{"bad role", `{"role":"root"}`, "role: must be one of: user, admin"},
		{"null name beside a valid email", `{"name":null,"email":"a@b.co"}`, "name: must be a string"},
		{"null role", `{"role": null}`, "role: must be a string"},
		{"null body", `null`, "body: at least one field must be provided for update"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubUserService{
				updateFn: func(context.Context, domain.Identity, int64, domain.UserChanges) (*domain.User, error) {
					t.Fatalf("service should not be called")
					return nil, nil
				},
			}
			c, _ := newUserContext(http.MethodPut, "2", tt.body, &testAdmin)

			details := validationDetails(t, NewUserHandler(stub).Update(c))
			if len(details) != 1 || details[0] != tt.detail {
				t.Fatalf("expected %q, got %v", tt.detail, details)
			}
		})
	}
}

func TestUserHandler_Update_RoleChange(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(_ context.Context, _ domain.Identity, id int64, changes domain.UserChanges) (*domain.User, error) {
			if changes.Role == nil || *changes.Role != domain.RoleAdmin {
				t.Fatalf("role not forwarded: %+v", changes.Role)
			}
			return &domain.User{ID: id, Role: domain.RoleAdmin}, nil
		},
	}
	c, _ := newUserContext(http.MethodPut, "2", `{"role":"admin"}`, &testAdmin)

	if err := NewUserHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(_ context.Context, _ domain.Identity, id int64) (*domain.UserSummary, error) {
			return &domain.UserSummary{ID: id, Name: "Bob", Email: "bob@example.com", Role: domain.RoleUser}, nil
		},
	}
	c, rec := newUserContext(http.MethodDelete, "2", "", &testAdmin)

	if err := NewUserHandler(stub).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Message string         `json:"message"`
		User    map[string]any `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "User deleted successfully." {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if len(resp.User) != 4 || resp.User["id"] != float64(2) {
		t.Fatalf("expected the minimal projection, got %+v", resp.User)
	}
}

func TestUserHandler_Delete_Forbidden(t *testing.T) {
	forbidden := &domain.ForbiddenError{Reason: domain.ReasonLastAdmin, Message: "Cannot delete the last admin account"}
	stub := &stubUserService{
		deleteFn: func(context.Context, domain.Identity, int64) (*domain.UserSummary, error) {
			return nil, forbidden
		},
	}
	c, _ := newUserContext(http.MethodDelete, "1", "", &testAdmin)

	if err := NewUserHandler(stub).Delete(c); !errors.Is(err, forbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}
