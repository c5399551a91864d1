package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studyfeed/quiz-service/internal/repositories"
	"github.com/studyfeed/quiz-service/internal/services"
	"github.com/studyfeed/quiz-service/internal/utils"
	"github.com/studyfeed/quiz-service/internal/validator"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
	validator   *validator.Validator
}

func NewQuizHandler(
	quizService services.QuizService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
		validator:   validator,
	}
}

// StartQuiz starts a new quiz session
// @Summary Start quiz
// @Description Selects random questions and opens a new quiz session
// @Tags quiz
// @Accept json
// @Produce json
// @Param session body services.StartQuizRequest true "Session options"
// @Success 201 {object} models.QuizSession
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quiz/start [post]
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	h.LogRequest(c, "Starting quiz session")

	var req services.StartQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	session, err := h.quizService.Start(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession retrieves a quiz session by ID
// @Summary Get session
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.QuizSession
// @Failure 404 {object} ErrorResponse
// @Router /quiz/{id} [get]
func (h *QuizHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := h.quizService.GetSession(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SubmitAnswer records an answer for a question in the session
// @Summary Submit answer
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param answer body services.SubmitAnswerRequest true "Answer data"
// @Success 200 {object} models.QuizSession
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quiz/{id}/answer [post]
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Submitting answer", "session_id", id)

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	session, err := h.quizService.SubmitAnswer(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// NextQuestion advances the session to the next question
// @Summary Next question
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.QuizSession
// @Failure 404 {object} ErrorResponse
// @Router /quiz/{id}/next [post]
func (h *QuizHandler) NextQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := h.quizService.NextQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// PreviousQuestion moves the session back one question
// @Summary Previous question
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.QuizSession
// @Failure 404 {object} ErrorResponse
// @Router /quiz/{id}/previous [post]
func (h *QuizHandler) PreviousQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := h.quizService.PreviousQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// FinishQuiz completes the session and returns the scored result
// @Summary Finish quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param finish body services.FinishQuizRequest false "Finish options"
// @Success 200 {object} models.QuizResult
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quiz/{id}/finish [post]
func (h *QuizHandler) FinishQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Finishing quiz session", "session_id", id)

	var req services.FinishQuizRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	result, err := h.quizService.Finish(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ResetQuiz discards the session
// @Summary Reset quiz
// @Tags quiz
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /quiz/{id} [delete]
func (h *QuizHandler) ResetQuiz(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Resetting quiz session", "session_id", id)

	if err := h.quizService.Reset(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Quiz session reset"})
}

// GetResult retrieves the persisted result for a completed session
// @Summary Get result
// @Tags results
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.QuizResult
// @Failure 404 {object} ErrorResponse
// @Router /results/{id} [get]
func (h *QuizHandler) GetResult(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	result, err := h.quizService.GetResult(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListResults lists past quiz results
// @Summary List results
// @Tags results
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /results [get]
func (h *QuizHandler) ListResults(c *gin.Context) {
	filters := h.parseResultFilters(c)

	results, total, err := h.quizService.ListResults(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   total,
		"limit":   filters.Limit,
		"offset":  filters.Offset,
	})
}

// GetStats returns aggregate statistics over all results
// @Summary Result statistics
// @Tags results
// @Produce json
// @Success 200 {object} repositories.ResultStats
// @Router /results/stats [get]
func (h *QuizHandler) GetStats(c *gin.Context) {
	stats, err := h.quizService.GetStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *QuizHandler) parseResultFilters(c *gin.Context) repositories.ResultFilters {
	filters := repositories.ResultFilters{
		Limit:     20,
		SortBy:    c.DefaultQuery("sort_by", "completed_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			filters.Limit = limit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}
	if fromStr := c.Query("date_from"); fromStr != "" {
		if from, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filters.DateFrom = &from
		}
	}
	if toStr := c.Query("date_to"); toStr != "" {
		if to, err := time.Parse(time.RFC3339, toStr); err == nil {
			filters.DateTo = &to
		}
	}

	return filters
}
