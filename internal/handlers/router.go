package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyfeed/quiz-service/internal/services"
	"github.com/studyfeed/quiz-service/internal/utils"
	"github.com/studyfeed/quiz-service/internal/validator"
)

type HandlerManager struct {
	quizHandler     *QuizHandler
	questionHandler *QuestionHandler
	studyHandler    *StudyHandler
}

func NewHandlerManager(
	quizService services.QuizService,
	questionService services.QuestionService,
	studyService services.StudyService,
	importExport services.ImportExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:     NewQuizHandler(quizService, validator, logger),
		questionHandler: NewQuestionHandler(questionService, importExport, validator, logger),
		studyHandler:    NewStudyHandler(studyService, validator, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Quiz session routes
		quiz := v1.Group("/quiz")
		{
			quiz.POST("/start", hm.quizHandler.StartQuiz)
			quiz.GET("/sessions/:id", hm.quizHandler.GetSession)
			quiz.POST("/sessions/:id/answers", hm.quizHandler.SubmitAnswer)
			quiz.POST("/sessions/:id/next", hm.quizHandler.NextQuestion)
			quiz.POST("/sessions/:id/previous", hm.quizHandler.PreviousQuestion)
			quiz.POST("/sessions/:id/finish", hm.quizHandler.FinishQuiz)
			quiz.DELETE("/sessions/:id", hm.quizHandler.ResetQuiz)
		}

		// Result routes
		results := v1.Group("/results")
		{
			results.GET("", hm.quizHandler.ListResults)
			results.GET("/stats", hm.quizHandler.GetStats)
			results.GET("/:id", hm.quizHandler.GetResult)
		}

		// Question routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.POST("/batch", hm.questionHandler.CreateQuestionsBatch)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/format-counts", hm.questionHandler.GetFormatCounts)
			questions.GET("/categories", hm.questionHandler.GetCategories)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)

			// Import and export
			questions.POST("/import", hm.questionHandler.ImportQuestions)
			questions.GET("/export", hm.questionHandler.ExportQuestions)
			questions.GET("/export/results", hm.questionHandler.ExportResults)
		}

		// Study content routes
		study := v1.Group("/study")
		{
			study.GET("/topics", hm.studyHandler.ListTopics)
			study.GET("/topics/:id", hm.studyHandler.GetTopic)
			study.GET("/progress", hm.studyHandler.GetProgress)
			study.PUT("/progress", hm.studyHandler.SaveProgress)
		}
	}
}

// HealthCheck reports service liveness
// @Summary Health check
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-service",
	})
}
