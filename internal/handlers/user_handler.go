package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/response"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/services"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.users.GetAll(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, services.ToUserResponse(&users[i]))
	}
	return response.Success(c, out)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	user, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.FromError(c, err)
	}
	return response.Success(c, services.ToUserResponse(user))
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	user, err := h.users.CreateUser(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, services.ToUserResponse(user), "user created")
}

// Me returns the resolved principal of the caller.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	p, ok := tenant.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "no authorization")
	}
	return response.Success(c, dto.PrincipalResponse{
		ID:                p.ID,
		Role:              p.Role,
		Email:             p.Email,
		IsExternalUser:    p.IsExternalUser,
		ExternalSubjectID: p.ExternalSubjectID,
		DeviceNumber:      p.DeviceNumber,
		AppID:             p.AppID,
	})
}
