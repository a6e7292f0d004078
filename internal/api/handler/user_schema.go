package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// --- Request / Response types ---

type userIDParam struct {
	ID int64 `json:"id" validate:"gt=0"`
}

type updateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Role  *string `json:"role" validate:"omitempty,oneof=user admin"`
}

type listUsersResponse struct {
	Message string        `json:"message"`
	Users   []domain.User `json:"users"`
	Count   int           `json:"count"`
}

type userResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type deletedUserResponse struct {
	Message string              `json:"message"`
	User    *domain.UserSummary `json:"user"`
}

// parseUserID reads and validates the :id path parameter. Anything that is
// not a positive integer is a validation failure, never a not-found.
func parseUserID(c echo.Context) (int64, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{Details: []string{"id: must be a positive integer"}}
	}
	if err := c.Validate(userIDParam{ID: id}); err != nil {
		return 0, err
	}
	return id, nil
}

// normalize trims every supplied field and lowercases the email, before
// validation runs.
func (r *updateUserRequest) normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &v
	}
	if r.Role != nil {
		v := strings.TrimSpace(*r.Role)
		r.Role = &v
	}
}

func (r *updateUserRequest) changes() domain.UserChanges {
	c := domain.UserChanges{Name: r.Name, Email: r.Email}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		c.Role = &role
	}
	return c
}

// updatableFields lists the body keys an update may carry, in report order.
var updatableFields = []string{"name", "email", "role"}

// rejectNulls fails when an updatable key is present with a JSON null. A
// pointer field cannot tell null from absent, and only absent means
// "leave unchanged". Bodies that are not JSON objects are left to the binder.
func rejectNulls(body []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	var details []string
	for _, field := range updatableFields {
		if v, ok := raw[field]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			details = append(details, field+": must be a string")
		}
	}
	if len(details) > 0 {
		return &domain.ValidationError{Details: details}
	}
	return nil
}

// bindUpdate decodes, normalizes and validates an update body.
func bindUpdate(c echo.Context) (domain.UserChanges, error) {
	req := c.Request()
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return domain.UserChanges{}, &domain.ValidationError{Details: []string{"body: must be a valid JSON object"}}
		}
		if err := rejectNulls(body); err != nil {
			return domain.UserChanges{}, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	var in updateUserRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &in); err != nil {
		return domain.UserChanges{}, &domain.ValidationError{Details: []string{"body: must be a valid JSON object"}}
	}
	in.normalize()
	if err := c.Validate(&in); err != nil {
		return domain.UserChanges{}, err
	}

	changes := in.changes()
	if changes.Empty() {
		return domain.UserChanges{}, &domain.ValidationError{
			Details: []string{"body: at least one field must be provided for update"},
		}
	}
	return changes, nil
}
