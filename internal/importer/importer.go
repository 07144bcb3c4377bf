package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"quizverse/internal/domain"
)

// ImportConfig defines where question fields live in the spreadsheet.
type ImportConfig struct {
	FilePath       string   // Path to the .xlsx file
	SheetName      string   // Name of the sheet to import
	QuestionColumn string   // Column with the question text
	OptionColumns  []string // Four columns with the answer options
	CorrectColumn  string   // Column with the correct option (A-D or 1-4)
	StartRow       int      // The row to start importing from (1-based index)
}

// DefaultImportConfig reads question, options A-D and the answer from columns A-F.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName:      "Sheet1",
		QuestionColumn: "A",
		OptionColumns:  []string{"B", "C", "D", "E"},
		CorrectColumn:  "F",
		StartRow:       2, // skip the header row
	}
}

// QuizMeta carries the quiz-level fields the spreadsheet does not hold.
type QuizMeta struct {
	ID              string
	Title           string
	CategoryID      string
	SubcategoryID   string
	Difficulty      string
	DurationMinutes int
	RequireSignup   bool
	Published       bool
}

// ImportResult holds the result of an import operation.
type ImportResult struct {
	QuizID         string
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

// QuizSaver persists the imported quiz (content.Repository in production).
type QuizSaver interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
}

// ImportQuiz reads questions from the configured sheet and saves them as one quiz.
// Rows that fail to parse are skipped and reported in the result.
func ImportQuiz(ctx context.Context, saver QuizSaver, cfg ImportConfig, meta QuizMeta) (*ImportResult, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	questions, result, err := ParseQuestions(f, cfg)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return result, domain.ErrEmptyQuiz
	}

	quiz, err := saver.SaveQuiz(ctx, domain.Quiz{
		ID:              meta.ID,
		Title:           meta.Title,
		CategoryID:      meta.CategoryID,
		SubcategoryID:   meta.SubcategoryID,
		Difficulty:      meta.Difficulty,
		DurationMinutes: meta.DurationMinutes,
		RequireSignup:   meta.RequireSignup,
		Published:       meta.Published,
		Questions:       questions,
	})
	if err != nil {
		return result, fmt.Errorf("save quiz: %w", err)
	}
	result.QuizID = quiz.ID
	return result, nil
}

// ParseQuestions turns sheet rows into questions with ids q1, q2, ...
func ParseQuestions(f *excelize.File, cfg ImportConfig) ([]domain.Question, *ImportResult, error) {
	if len(cfg.OptionColumns) != domain.OptionCount {
		return nil, nil, fmt.Errorf("expected %d option columns, got %d", domain.OptionCount, len(cfg.OptionColumns))
	}
	questionCol, err := columnIndex(cfg.QuestionColumn)
	if err != nil {
		return nil, nil, err
	}
	correctCol, err := columnIndex(cfg.CorrectColumn)
	if err != nil {
		return nil, nil, err
	}
	optionCols := make([]int, len(cfg.OptionColumns))
	for i, name := range cfg.OptionColumns {
		if optionCols[i], err = columnIndex(name); err != nil {
			return nil, nil, err
		}
	}

	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	var questions []domain.Question
	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		if isBlank(row) {
			continue
		}
		result.TotalProcessed++

		q, err := parseRow(row, questionCol, optionCols, correctCol)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		q.ID = "q" + strconv.Itoa(len(questions)+1)
		questions = append(questions, q)
		result.Imported++
	}
	return questions, result, nil
}

func parseRow(row []string, questionCol int, optionCols []int, correctCol int) (domain.Question, error) {
	text := cell(row, questionCol)
	if text == "" {
		return domain.Question{}, fmt.Errorf("question text is empty")
	}
	options := make([]string, len(optionCols))
	for i, col := range optionCols {
		options[i] = cell(row, col)
		if options[i] == "" {
			return domain.Question{}, fmt.Errorf("option %c is empty", 'A'+i)
		}
	}
	correct, err := parseCorrect(cell(row, correctCol))
	if err != nil {
		return domain.Question{}, err
	}
	return domain.Question{Text: text, Options: options, CorrectIndex: correct}, nil
}

// parseCorrect accepts a letter A-D or a 1-based number 1-4.
func parseCorrect(raw string) (int, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if len(raw) == 1 && raw[0] >= 'A' && raw[0] < 'A'+domain.OptionCount {
		return int(raw[0] - 'A'), nil
	}
	if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= domain.OptionCount {
		return n - 1, nil
	}
	return 0, fmt.Errorf("invalid correct option %q", raw)
}

func columnIndex(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return n - 1, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
