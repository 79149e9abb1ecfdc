package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/careforms/intake-service/internal/form"
	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

type exportService struct {
	repo   repositories.Repository
	forms  FormService
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, forms FormService, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		forms:  forms,
		logger: logger,
	}
}

func (s *exportService) ExportSessions(ctx context.Context, formID uint) ([]byte, string, error) {
	s.logger.Info("Exporting sessions to Excel", "form_id", formID)

	intakeForm, err := s.repo.Form().GetByID(ctx, formID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrFormNotFound
		}
		return nil, "", fmt.Errorf("failed to get intake form: %w", err)
	}

	questions, err := s.forms.Questions(ctx, formID)
	if err != nil {
		return nil, "", err
	}

	sessions, err := s.repo.Session().GetCompletedByForm(ctx, formID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get completed sessions: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Sessions"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	// One column per answerable question; layout elements carry no answers
	answerable := make([]form.Question, 0, len(questions))
	for _, q := range questions {
		if q.Type.IsAnswerable() {
			answerable = append(answerable, q)
		}
	}

	headers := []string{"Session ID", "Customer Ref", "Form Version", "Completed At"}
	for _, q := range answerable {
		headers = append(headers, q.Label)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build cell reference: %w", err)
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, session := range sessions {
		row := s.sessionRow(session, answerable)
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, "", fmt.Errorf("failed to build cell reference: %w", err)
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("%s_sessions_v%d.xlsx", form.Slug(intakeForm.Title), intakeForm.Version)

	s.logger.Info("Sessions exported", "form_id", formID, "rows", len(sessions))
	return buf.Bytes(), filename, nil
}

func (s *exportService) sessionRow(session *models.IntakeSession, answerable []form.Question) []interface{} {
	completedAt := ""
	if session.CompletedAt != nil {
		completedAt = session.CompletedAt.Format(time.RFC3339)
	}

	row := []interface{}{session.ID, session.CustomerRef, session.FormVersion, completedAt}

	answers := form.Answers{}
	if len(session.Answers) > 0 {
		if err := json.Unmarshal(session.Answers, &answers); err != nil {
			s.logger.Warn("Failed to decode session answers for export", "session_id", session.ID, "error", err)
		}
	}

	for _, q := range answerable {
		row = append(row, formatAnswer(answers[q.ID]))
	}
	return row
}

// formatAnswer flattens an answer value into a single spreadsheet cell.
func formatAnswer(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatAnswer(item))
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		// File uploads and other object answers reduce to their name
		if name, ok := val["name"].(string); ok {
			return name
		}
		encoded, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(encoded)
	default:
		return fmt.Sprint(val)
	}
}
