package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
)

// UserHandler handles HTTP requests for the users collection. Errors are
// returned to Echo and rendered by the central error handler.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/users.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listUsersResponse
// @Failure      401  {object}  api.ErrorResponse
// @Failure      403  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	users, err := h.service.ListAll(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listUsersResponse{
		Message: "Successfully getting all users.",
		Users:   users,
		Count:   len(users),
	})
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      401  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetByID(c.Request().Context(), identity, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResponse{Message: "Successfully retrieved user.", User: user})
}

// Update handles PUT /api/users/:id.
//
// @Summary      Update a user
// @Description  Partial update. Users may update themselves; only admins may change roles or other users.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  api.ErrorResponse
// @Failure      401   {object}  api.ErrorResponse
// @Failure      403   {object}  api.ErrorResponse
// @Failure      404   {object}  api.ErrorResponse
// @Failure      409   {object}  api.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := parseUserID(c)
	if err != nil {
		return err
	}
	changes, err := bindUpdate(c)
	if err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), identity, id, changes)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResponse{Message: "User updated successfully.", User: user})
}

// Delete handles DELETE /api/users/:id.
//
// @Summary      Delete a user
// @Description  Users may delete themselves; admins may delete anyone except the last admin deleting themself.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  deletedUserResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      401  {object}  api.ErrorResponse
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	summary, err := h.service.Delete(c.Request().Context(), identity, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, deletedUserResponse{Message: "User deleted successfully.", User: summary})
}
