package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/studyfeed/quiz-service/internal/models"
	"github.com/studyfeed/quiz-service/internal/repositories"
	"github.com/studyfeed/quiz-service/internal/validator"
)

// ImportExportService handles file import/export for the question bank and
// YAML seed loading for study content.
type ImportExportService interface {
	// Import operations
	ImportQuestionsFromFile(ctx context.Context, reader io.Reader, filename string) (*ImportResult, error)
	ImportQuestionsFromCSV(ctx context.Context, reader io.Reader) (*ImportResult, error)
	ImportQuestionsFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error)
	LoadSeed(ctx context.Context, reader io.Reader) (*SeedResult, error)

	// Export operations
	ExportQuestionsToCSV(ctx context.Context, filters repositories.QuestionFilters) ([]byte, error)
	ExportQuestionsToExcel(ctx context.Context, filters repositories.QuestionFilters) ([]byte, error)
	ExportResultsToExcel(ctx context.Context, filters repositories.ResultFilters) ([]byte, error)
}

type importExportService struct {
	repo      repositories.Repository
	study     StudyService
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, study StudyService, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		study:     study,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "quiz-service", Component: "import_export"}),
		validator: validator,
	}
}

// ===== IMPORT OPERATIONS =====

type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

type ImportResult struct {
	TotalRows     int                `json:"total_rows"`
	ProcessedRows int                `json:"processed_rows"`
	SuccessCount  int                `json:"success_count"`
	ErrorCount    int                `json:"error_count"`
	Errors        []ImportRowError   `json:"errors"`
	Questions     []*models.Question `json:"questions,omitempty"`
}

// SeedResult summarizes what a YAML seed file contributed.
type SeedResult struct {
	QuestionCount int `json:"question_count"`
	TopicCount    int `json:"topic_count"`
}

var questionFileColumns = []string{
	"id", "format", "question", "content", "points", "category", "difficulty", "explanation",
}

func (s *importExportService) ImportQuestionsFromFile(ctx context.Context, reader io.Reader, filename string) (result *ImportResult, err error) {
	op := s.ops.WithOperation(ctx, "import_questions")
	defer func() { op.LogResult(filename, "question_file", err) }()

	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		return s.ImportQuestionsFromCSV(ctx, reader)
	case ".xlsx", ".xls":
		return s.ImportQuestionsFromExcel(ctx, reader)
	default:
		return nil, NewValidationError("file", "unsupported file format", ext)
	}
}

func (s *importExportService) ImportQuestionsFromCSV(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	result, err := s.importRows(ctx, records, "CSV")
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *importExportService) ImportQuestionsFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}

	result, err := s.importRows(ctx, rows, "Excel")
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *importExportService) importRows(ctx context.Context, rows [][]string, source string) (*ImportResult, error) {
	if len(rows) < 2 {
		return nil, NewValidationError("file", "file must have header row and at least one data row", len(rows))
	}

	// Parse header
	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}

	// Validate required columns
	for _, col := range []string{"format", "question", "content"} {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result := &ImportResult{TotalRows: len(rows) - 1}

	var questions []*models.Question
	var errors []ImportRowError

	for rowIndex, row := range rows[1:] {
		question, rowErrors := s.parseRow(row, headerMap, rowIndex+2)
		if len(rowErrors) > 0 {
			errors = append(errors, rowErrors...)
			result.ErrorCount++
		} else if question != nil {
			questions = append(questions, question)
			result.SuccessCount++
		}
		result.ProcessedRows++
	}

	if len(questions) > 0 {
		if err := s.repo.Question().CreateBatch(ctx, questions); err != nil {
			return nil, fmt.Errorf("failed to save questions: %w", err)
		}
	}

	result.Questions = questions
	result.Errors = errors

	s.logger.Info("Import completed",
		"source", source,
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)

	return result, nil
}

func (s *importExportService) parseRow(record []string, headerMap map[string]int, rowNum int) (*models.Question, []ImportRowError) {
	getColumn := func(name string) string {
		if index, exists := headerMap[name]; exists && index < len(record) {
			return strings.TrimSpace(record[index])
		}
		return ""
	}

	formatStr := getColumn("format")
	format := models.QuestionFormat(strings.ToUpper(formatStr))
	if !format.Valid() {
		return nil, []ImportRowError{{Row: rowNum, Column: "format", Message: "unknown question format", Value: formatStr}}
	}

	text := getColumn("question")
	if text == "" {
		return nil, []ImportRowError{{Row: rowNum, Column: "question", Message: "required field", Value: ""}}
	}

	contentStr := getColumn("content")
	if contentStr == "" || !json.Valid([]byte(contentStr)) {
		return nil, []ImportRowError{{Row: rowNum, Column: "content", Message: "must be a JSON object", Value: contentStr}}
	}

	points := models.DefaultPoints
	if pointsStr := getColumn("points"); pointsStr != "" {
		if p, err := strconv.Atoi(pointsStr); err == nil && p > 0 {
			points = p
		}
	}

	question := &models.Question{
		ID:      getColumn("id"),
		Format:  format,
		Text:    text,
		Points:  points,
		Content: []byte(contentStr),
	}

	if category := getColumn("category"); category != "" {
		question.Category = &category
	}
	if difficultyStr := strings.ToLower(getColumn("difficulty")); difficultyStr != "" {
		difficulty := models.DifficultyLevel(difficultyStr)
		switch difficulty {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
			question.Difficulty = &difficulty
		}
	}
	if explanation := getColumn("explanation"); explanation != "" {
		question.Explanation = &explanation
	}

	if question.ID == "" {
		return nil, []ImportRowError{{Row: rowNum, Column: "id", Message: "required field", Value: ""}}
	}

	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, []ImportRowError{{Row: rowNum, Column: "content", Message: err.Error(), Value: ""}}
	}

	return question, nil
}

// ===== SEED LOADING =====

type seedFile struct {
	Questions []seedQuestion `yaml:"questions"`
	Topics    []seedTopic    `yaml:"topics"`
}

type seedQuestion struct {
	ID          string                 `yaml:"id"`
	Format      string                 `yaml:"format"`
	Question    string                 `yaml:"question"`
	Category    string                 `yaml:"category"`
	Difficulty  string                 `yaml:"difficulty"`
	Points      int                    `yaml:"points"`
	Explanation string                 `yaml:"explanation"`
	Content     map[string]interface{} `yaml:"content"`
}

type seedTopic struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Subtopics []struct {
		ID    string `yaml:"id"`
		Title string `yaml:"title"`
		Pages []struct {
			ID      string `yaml:"id"`
			Title   string `yaml:"title"`
			Content string `yaml:"content"`
		} `yaml:"pages"`
	} `yaml:"subtopics"`
}

// LoadSeed reads a YAML seed file and loads its questions and study topics.
// Seeding is all-or-nothing per entry: a malformed question fails the load.
func (s *importExportService) LoadSeed(ctx context.Context, reader io.Reader) (result *SeedResult, err error) {
	op := s.ops.WithOperation(ctx, "load_seed")
	defer func() { op.LogResult("seed", "seed_file", err) }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	questions := make([]*models.Question, 0, len(seed.Questions))
	for i, sq := range seed.Questions {
		question, err := s.seedQuestionToModel(sq)
		if err != nil {
			return nil, fmt.Errorf("seed question %d: %w", i+1, err)
		}
		questions = append(questions, question)
	}

	if err := s.validator.Question().ValidateQuestionBatch(questions); err != nil {
		return nil, fmt.Errorf("seed validation failed: %w", err)
	}

	if err := s.repo.Question().CreateBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("failed to save seed questions: %w", err)
	}

	for _, st := range seed.Topics {
		topic := &models.Topic{ID: st.ID, Title: st.Title}
		for _, sub := range st.Subtopics {
			subtopic := models.SubTopic{ID: sub.ID, Title: sub.Title}
			for _, page := range sub.Pages {
				subtopic.Pages = append(subtopic.Pages, models.StudyPage(page))
			}
			topic.Subtopics = append(topic.Subtopics, subtopic)
		}
		if err := s.study.CreateTopic(ctx, topic); err != nil {
			return nil, fmt.Errorf("seed topic %s: %w", st.ID, err)
		}
	}

	s.logger.Info("Seed loaded",
		"question_count", len(questions),
		"topic_count", len(seed.Topics))

	return &SeedResult{
		QuestionCount: len(questions),
		TopicCount:    len(seed.Topics),
	}, nil
}

func (s *importExportService) seedQuestionToModel(sq seedQuestion) (*models.Question, error) {
	content, err := json.Marshal(sq.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize content: %w", err)
	}

	points := sq.Points
	if points <= 0 {
		points = models.DefaultPoints
	}

	question := &models.Question{
		ID:      sq.ID,
		Format:  models.QuestionFormat(strings.ToUpper(sq.Format)),
		Text:    sq.Question,
		Points:  points,
		Content: content,
	}
	if sq.Category != "" {
		category := sq.Category
		question.Category = &category
	}
	if sq.Difficulty != "" {
		difficulty := models.DifficultyLevel(strings.ToLower(sq.Difficulty))
		question.Difficulty = &difficulty
	}
	if sq.Explanation != "" {
		explanation := sq.Explanation
		question.Explanation = &explanation
	}

	return question, nil
}

// ===== EXPORT OPERATIONS =====

func (s *importExportService) ExportQuestionsToCSV(ctx context.Context, filters repositories.QuestionFilters) ([]byte, error) {
	questions, _, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions for export: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(questionFileColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, question := range questions {
		if err := writer.Write(s.questionToRow(question)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *importExportService) ExportQuestionsToExcel(ctx context.Context, filters repositories.QuestionFilters) ([]byte, error) {
	questions, _, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions for export: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Questions"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	// Drop the default sheet so importers reading the first sheet see the data
	f.DeleteSheet("Sheet1")

	for i, header := range questionFileColumns {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, question := range questions {
		for colIndex, value := range s.questionToRow(question) {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *importExportService) ExportResultsToExcel(ctx context.Context, filters repositories.ResultFilters) ([]byte, error) {
	records, _, err := s.repo.Result().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for export: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Session ID", "Completed At", "Total Questions", "Correct", "Incorrect",
		"Earned Points", "Total Points", "Percentage", "Time Taken (seconds)",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, record := range records {
		row := []interface{}{
			record.SessionID,
			record.CompletedAt.Format("2006-01-02 15:04:05"),
			record.TotalQuestions,
			record.CorrectAnswers,
			record.IncorrectAnswers,
			record.EarnedPoints,
			record.TotalPoints,
			record.Percentage,
			record.TimeTaken,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *importExportService) questionToRow(question *models.Question) []string {
	row := make([]string, len(questionFileColumns))

	row[0] = question.ID
	row[1] = string(question.Format)
	row[2] = question.Text
	row[3] = string(question.Content)
	row[4] = strconv.Itoa(question.Points)
	if question.Category != nil {
		row[5] = *question.Category
	}
	if question.Difficulty != nil {
		row[6] = string(*question.Difficulty)
	}
	if question.Explanation != nil {
		row[7] = *question.Explanation
	}

	return row
}
