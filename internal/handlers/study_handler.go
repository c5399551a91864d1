package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyfeed/quiz-service/internal/services"
	"github.com/studyfeed/quiz-service/internal/utils"
	"github.com/studyfeed/quiz-service/internal/validator"
)

type StudyHandler struct {
	BaseHandler
	studyService services.StudyService
	validator    *validator.Validator
}

func NewStudyHandler(
	studyService services.StudyService,
	validator *validator.Validator,
	logger utils.Logger,
) *StudyHandler {
	return &StudyHandler{
		BaseHandler:  NewBaseHandler(logger),
		studyService: studyService,
		validator:    validator,
	}
}

// ListTopics lists the study topics
// @Summary List topics
// @Tags study
// @Produce json
// @Success 200 {object} []models.Topic
// @Router /study/topics [get]
func (h *StudyHandler) ListTopics(c *gin.Context) {
	topics, err := h.studyService.ListTopics(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, topics)
}

// GetTopic retrieves one topic with its subtopics and pages
// @Summary Get topic
// @Tags study
// @Produce json
// @Param id path string true "Topic ID"
// @Success 200 {object} models.Topic
// @Failure 404 {object} ErrorResponse
// @Router /study/topics/{id} [get]
func (h *StudyHandler) GetTopic(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	topic, err := h.studyService.GetTopic(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, topic)
}

// GetProgress returns the stored reading position per subtopic
// @Summary Get study progress
// @Tags study
// @Produce json
// @Success 200 {object} models.StudyProgress
// @Router /study/progress [get]
func (h *StudyHandler) GetProgress(c *gin.Context) {
	progress, err := h.studyService.GetProgress(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// SaveProgress records the reading position for a subtopic
// @Summary Save study progress
// @Tags study
// @Accept json
// @Produce json
// @Param progress body services.SaveProgressRequest true "Progress data"
// @Success 200 {object} models.StudyProgress
// @Failure 400 {object} ErrorResponse
// @Router /study/progress [put]
func (h *StudyHandler) SaveProgress(c *gin.Context) {
	h.LogRequest(c, "Saving study progress")

	var req services.SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	progress, err := h.studyService.SaveProgress(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}
