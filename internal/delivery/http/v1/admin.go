package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlerImpl) HandleAdminListTasks(c *gin.Context) {
	identity := identityFromContext(c)

	tasks, err := h.tasks.ListAllTasks(c.Request.Context(), identity)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list all tasks")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *handlerImpl) HandleAdminDeleteTask(c *gin.Context) {
	identity := identityFromContext(c)
	taskID := c.Param("id")

	err := h.tasks.DeleteTask(c.Request.Context(), identity, taskID)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *handlerImpl) HandleAdminListUsers(c *gin.Context) {
	identity := identityFromContext(c)

	users, err := h.users.ListUsers(c.Request.Context(), identity)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list users")
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *handlerImpl) HandleAdminUpdateRole(c *gin.Context) {
	identity := identityFromContext(c)
	userID := c.Param("id")

	var req updateRoleRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	user, err := h.users.UpdateRole(c.Request.Context(), identity, userID, req.Role)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User role updated to " + user.Role,
		"user":    publicUser(user),
	})
}

func (h *handlerImpl) HandleAdminDeleteUser(c *gin.Context) {
	identity := identityFromContext(c)
	userID := c.Param("id")

	err := h.users.DeleteUser(c.Request.Context(), identity, userID)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
