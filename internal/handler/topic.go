package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/whatsoo/backend/internal/model"
	"github.com/whatsoo/backend/internal/service"
)

type TopicHandler struct {
	svc *service.TopicService
}

func NewTopicHandler(svc *service.TopicService) *TopicHandler {
	return &TopicHandler{svc: svc}
}

// Create godoc
// @Summary Create a topic
// @Tags topic
// @Accept json
// @Produce json
// @Param request body model.CreateTopicRequest true "Title and content"
// @Success 200 {object} model.Topic
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /topic [post]
func (h *TopicHandler) Create(c *gin.Context) {
	user := GetAuthUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Code:    codeMissingToken,
			Message: "authentication required",
		})
		return
	}

	var req model.CreateTopicRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, service.ErrInvalidInput)
		return
	}

	topic, err := h.svc.Create(c.Request.Context(), user, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

// List godoc
// @Summary List topics, newest first
// @Tags topic
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size"
// @Success 200 {array} model.Topic
// @Router /topics [get]
func (h *TopicHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	topics, err := h.svc.List(c.Request.Context(), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, topics)
}
