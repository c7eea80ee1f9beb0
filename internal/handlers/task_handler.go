package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/response"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/services"
	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	var q dto.PageQuery
	if err := c.QueryParser(&q); err != nil {
		return response.BadRequest(c, "invalid pagination parameters")
	}
	page, err := h.tasks.List(c.UserContext(), q)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, page)
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	task, err := h.tasks.Get(c.UserContext(), id)
	if err != nil {
		return taskError(c, err)
	}
	return response.Success(c, task)
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTaskRequest
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	task, err := h.tasks.Create(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, task, "task created")
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req dto.UpdateTaskRequest
	if err := parseBody(c, &req); err != nil {
		return response.FromError(c, err)
	}
	task, err := h.tasks.Update(c.UserContext(), id, &req)
	if err != nil {
		return taskError(c, err)
	}
	return response.Success(c, task, "task updated")
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.tasks.Delete(c.UserContext(), id); err != nil {
		return taskError(c, err)
	}
	return response.Success(c, nil, "task deleted")
}

func taskError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrTaskNotFound) {
		return response.FromError(c, apperr.NotFound(err.Error()))
	}
	return response.FromError(c, err)
}
