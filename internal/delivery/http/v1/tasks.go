package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lrcr/todoplane/internal/services"
)

type createTaskRequest struct {
	Text      string `json:"text" binding:"required"`
	Completed bool   `json:"completed"`
}

type patchTaskRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	identity := identityFromContext(c)

	tasks, err := h.tasks.ListTasks(c.Request.Context(), identity)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	identity := identityFromContext(c)
	taskID := c.Param("id")

	task, err := h.tasks.GetTask(c.Request.Context(), identity, taskID)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	identity := identityFromContext(c)

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), identity, req.Text, req.Completed)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *handlerImpl) HandlePatchTask(c *gin.Context) {
	identity := identityFromContext(c)
	taskID := c.Param("id")

	var req patchTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.PatchTask(c.Request.Context(), identity, taskID, services.TaskPatch{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	identity := identityFromContext(c)
	taskID := c.Param("id")

	err := h.tasks.DeleteTask(c.Request.Context(), identity, taskID)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
