package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/whatsoo/backend/internal/model"
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}
