package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace-service/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return respondList(c, users, len(users))
}

// GetUser includes the user's purchase history.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id", service.MsgUserNotFound)
	if err != nil {
		return err
	}
	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, "", user)
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	var in service.CreateUserInput
	if err := c.Bind(&in); err != nil {
		return invalidPayload(err)
	}
	user, err := h.userService.CreateUser(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c, "id", service.MsgUserNotFound)
	if err != nil {
		return err
	}
	var in service.UpdateUserInput
	if err := c.Bind(&in); err != nil {
		return invalidPayload(err)
	}
	if err := h.userService.UpdateUser(c.Request().Context(), id, in); err != nil {
		return err
	}
	return respondMessage(c, "User updated successfully")
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c, "id", service.MsgUserNotFound)
	if err != nil {
		return err
	}
	if err := h.userService.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(c, "User deleted successfully")
}
