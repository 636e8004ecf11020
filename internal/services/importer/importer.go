// Package importer содержит пакетный импорт членств из CSV-файла.
// Формат файла: строка заголовка, затем строки email,name,plan.
// Ошибка в отдельной строке не прерывает импорт всего файла.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/membership-gate/internal/lib/plan"
	"github.com/magabrotheeeer/membership-gate/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gate/internal/models"
)

// MembershipCreator определяет метод создания записи членства.
type MembershipCreator interface {
	CreateMembership(ctx context.Context, m models.Membership) (string, error)
}

// ImporterService реализует разбор CSV и загрузку членств в хранилище.
type ImporterService struct {
	repo MembershipCreator
	log  *slog.Logger
}

// NewImporterService создает новый экземпляр ImporterService.
func NewImporterService(repo MembershipCreator, log *slog.Logger) *ImporterService {
	return &ImporterService{
		repo: repo,
		log:  log,
	}
}

// ParseCSV читает строки импорта из r. Первая строка считается заголовком
// и пропускается. Строки с пустым email или неизвестным планом попадают
// в результат с ошибкой разбора, чтобы Run учёл их в счётчике ошибок.
func ParseCSV(r io.Reader) ([]models.ImportRow, []error, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}

	var rows []models.ImportRow
	var rowErrs []error
	for i, record := range records[1:] {
		line := i + 2
		row, err := parseRecord(record)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

func parseRecord(record []string) (models.ImportRow, error) {
	if len(record) < 3 {
		return models.ImportRow{}, fmt.Errorf("expected 3 fields, got %d", len(record))
	}
	email := strings.ToLower(strings.TrimSpace(record[0]))
	if email == "" || !strings.Contains(email, "@") {
		return models.ImportRow{}, fmt.Errorf("invalid email %q", record[0])
	}
	planType, err := parsePlan(record[2])
	if err != nil {
		return models.ImportRow{}, err
	}
	return models.ImportRow{
		Email:    email,
		Name:     strings.TrimSpace(record[1]),
		PlanType: planType,
	}, nil
}

// parsePlan распознает план по ключевому слову в свободном тексте,
// например "Annual Membership" или "6-month (semester)".
func parsePlan(raw string) (models.PlanType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(normalized, "lifetime"):
		return models.PlanLifetime, nil
	case strings.Contains(normalized, "annual"), strings.Contains(normalized, "year"):
		return models.PlanAnnual, nil
	case strings.Contains(normalized, "semester"), strings.Contains(normalized, "6-month"):
		return models.PlanSemester, nil
	case strings.Contains(normalized, "month"):
		return models.PlanMonthly, nil
	default:
		return "", fmt.Errorf("unknown plan %q", raw)
	}
}

// BuildMembership собирает запись членства из строки импорта. Все
// импортированные записи активны и стартуют с общей даты startDate.
func BuildMembership(row models.ImportRow, startDate, now time.Time) models.Membership {
	name := row.Name
	m := models.Membership{
		Email:     row.Email,
		PlanType:  row.PlanType,
		Status:    models.StatusActive,
		StartDate: startDate,
		EndDate:   plan.CalculateEndDate(startDate, row.PlanType),
		Metadata: map[string]any{
			"imported_at": now.Format(time.RFC3339),
			"source":      "csv_import",
			"notes":       "Imported from existing member list",
		},
	}
	if name != "" {
		m.Name = &name
	}
	return m
}

// Run загружает членства из r в хранилище и возвращает итоговую статистику.
// Ошибки отдельных строк логируются и подсчитываются, импорт продолжается.
func (s *ImporterService) Run(ctx context.Context, r io.Reader, startDate time.Time) (models.ImportStats, error) {
	const op = "importer.Run"

	stats := models.ImportStats{ByPlan: make(map[models.PlanType]int)}

	rows, rowErrs, err := ParseCSV(r)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}
	for _, rowErr := range rowErrs {
		stats.Errors++
		s.log.Error("failed to parse row", sl.Err(rowErr))
	}

	now := time.Now()
	for _, row := range rows {
		m := BuildMembership(row, startDate, now)
		id, err := s.repo.CreateMembership(ctx, m)
		if err != nil {
			stats.Errors++
			s.log.Error("failed to import membership",
				slog.String("email", row.Email), sl.Err(err))
			continue
		}
		stats.Success++
		stats.ByPlan[row.PlanType]++
		s.log.Info("membership imported",
			slog.String("email", row.Email),
			slog.String("plan", string(row.PlanType)),
			slog.String("id", id))
	}

	s.log.Info("import finished",
		slog.Int("success", stats.Success),
		slog.Int("errors", stats.Errors),
		slog.Int("total", stats.Total()))
	return stats, nil
}
