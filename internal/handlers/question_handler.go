package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/repositories"
	"github.com/studyfeed/quiz-service/internal/services"
	"github.com/studyfeed/quiz-service/internal/utils"
	"github.com/studyfeed/quiz-service/internal/validator"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	importExport    services.ImportExportService
	validator       *validator.Validator
}

func NewQuestionHandler(
	questionService services.QuestionService,
	importExport services.ImportExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		importExport:    importExport,
		validator:       validator,
	}
}

// CreateQuestion creates a new question
// @Summary Create question
// @Description Creates a new question with format-specific content
// @Tags questions
// @Accept json
// @Produce json
// @Param question body services.CreateQuestionRequest true "Question data"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// CreateQuestionsBatch creates a batch of questions
// @Summary Create questions batch
// @Tags questions
// @Accept json
// @Produce json
// @Param questions body []services.CreateQuestionRequest true "Question batch"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /questions/batch [post]
func (h *QuestionHandler) CreateQuestionsBatch(c *gin.Context) {
	h.LogRequest(c, "Creating question batch")

	var reqs []*services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	questions, err := h.questionService.CreateBatch(c.Request.Context(), reqs)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Questions created",
		Data:    questions,
	})
}

// GetQuestion retrieves a question by ID
// @Summary Get question
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} models.Question
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions lists questions with optional filters
// @Summary List questions
// @Tags questions
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	filters := h.parseQuestionFilters(c)

	questions, total, err := h.questionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"total":     total,
		"limit":     filters.Limit,
		"offset":    filters.Offset,
	})
}

// DeleteQuestion removes a question from the bank
// @Summary Delete question
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

// GetFormatCounts returns question counts grouped by format
// @Summary Question format counts
// @Tags questions
// @Produce json
// @Success 200 {object} map[string]int
// @Router /questions/formats [get]
func (h *QuestionHandler) GetFormatCounts(c *gin.Context) {
	counts, err := h.questionService.GetFormatCounts(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

// GetCategories lists the distinct question categories
// @Summary Question categories
// @Tags questions
// @Produce json
// @Success 200 {object} []string
// @Router /questions/categories [get]
func (h *QuestionHandler) GetCategories(c *gin.Context) {
	categories, err := h.questionService.GetCategories(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// ImportQuestions imports questions from an uploaded CSV or Excel file
// @Summary Import questions
// @Tags questions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or Excel file"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /questions/import [post]
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	h.LogRequest(c, "Importing questions")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to open uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	result, err := h.importExport.ImportQuestionsFromFile(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportQuestions exports the question bank as CSV or Excel
// @Summary Export questions
// @Tags questions
// @Produce octet-stream
// @Param format query string false "Export format: csv or xlsx"
// @Success 200 {file} binary
// @Router /questions/export [get]
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	filters := h.parseQuestionFilters(c)
	// Export the whole filtered set, not a page.
	filters.Limit = 0
	filters.Offset = 0

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		data, err := h.importExport.ExportQuestionsToExcel(c.Request.Context(), filters)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="questions.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "csv":
		data, err := h.importExport.ExportQuestionsToCSV(c.Request.Context(), filters)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="questions.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
		})
	}
}

// ExportResults exports past quiz results as an Excel workbook
// @Summary Export results
// @Tags results
// @Produce octet-stream
// @Success 200 {file} binary
// @Router /results/export [get]
func (h *QuestionHandler) ExportResults(c *gin.Context) {
	data, err := h.importExport.ExportResultsToExcel(c.Request.Context(), repositories.ResultFilters{})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="results.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *QuestionHandler) parseQuestionFilters(c *gin.Context) repositories.QuestionFilters {
	filters := repositories.QuestionFilters{
		Limit:     20,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
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
	if formatStr := c.Query("format"); formatStr != "" {
		format := models.QuestionFormat(formatStr)
		if format.Valid() {
			filters.Format = &format
		}
	}
	if difficultyStr := c.Query("difficulty"); difficultyStr != "" {
		difficulty := models.DifficultyLevel(difficultyStr)
		switch difficulty {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
			filters.Difficulty = &difficulty
		}
	}
	if category := c.Query("category"); category != "" {
		filters.Category = &category
	}

	return filters
}
