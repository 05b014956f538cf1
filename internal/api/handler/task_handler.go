package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tasktrack/task-api/internal/api/metrics"
	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations. Every route requires
// the Auth middleware.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List handles GET /tasks.
//
// @Summary      List the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter (OPEN, IN_PROGRESS, DONE; case-insensitive)"
// @Param        search  query     string  false  "Substring matched against title or description"
// @Success      200     {array}   taskResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	filter := ports.TaskFilter{Search: c.QueryParam("search")}
	if raw := c.QueryParam("status"); raw != "" {
		status, err := domain.ParseTaskStatus(raw)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	tasks, err := h.service.GetTasks(c.Request().Context(), filter, user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskListResponse(tasks))
}

// Get handles GET /tasks/:id.
//
// @Summary      Get one of the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	task, err := h.service.GetTaskByID(c.Request().Context(), c.Param("id"), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Create handles POST /tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.CreateTask(c.Request().Context(), toCreateInput(req), user)
	if err != nil {
		return err
	}

	metrics.TasksCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// UpdateStatus handles PATCH /tasks/:id/status.
//
// @Summary      Change a task's status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Task ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	status, err := domain.ParseTaskStatus(req.Status)
	if err != nil {
		return err
	}

	task, err := h.service.UpdateTaskStatus(c.Request().Context(), c.Param("id"), status, user)
	if err != nil {
		return err
	}

	metrics.TaskStatusUpdatesTotal.WithLabelValues(string(status)).Inc()
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteTask(c.Request().Context(), c.Param("id"), user); err != nil {
		return err
	}

	metrics.TasksDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}
