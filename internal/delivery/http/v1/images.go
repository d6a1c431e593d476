package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlerImpl) HandleListImages(c *gin.Context) {
	urls, err := h.images.List(c.Request.Context())
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list images")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, urls)
}
