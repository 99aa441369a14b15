package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
	"github.com/etutplan/etut-api/pkg/export"
)

type reportLedger interface {
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.StudySession, error)
	AttendanceSummary(ctx context.Context, from, to time.Time) ([]models.AttendanceSummary, error)
}

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportFile is a rendered export ready for download.
type ReportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportService renders schedule and attendance exports. Summaries are
// cached; rendered files are not.
type ReportService struct {
	ledger reportLedger
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	cache  *CacheService
	logger *zap.Logger
}

// NewReportService instantiates ReportService.
func NewReportService(ledger reportLedger, cache *CacheService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		ledger: ledger,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		cache:  cache,
		logger: logger,
	}
}

// AttendanceSummary aggregates per-student attendance counts for the range.
func (s *ReportService) AttendanceSummary(ctx context.Context, from, to time.Time) ([]models.AttendanceSummary, error) {
	key := fmt.Sprintf("reports:attendance:%s:%s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	var cached []models.AttendanceSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	summary, err := s.ledger.AttendanceSummary(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}
	s.cache.Set(ctx, key, summary, 5*time.Minute)
	return summary, nil
}

// ScheduleExport renders every session in the range as CSV or PDF.
func (s *ReportService) ScheduleExport(ctx context.Context, from, to time.Time, format ReportFormat) (*ReportFile, error) {
	sessions, err := s.ledger.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Slot", "Teacher", "Student", "Classroom", "Mode", "Attendance"},
	}
	for _, session := range sessions {
		dataset.Rows = append(dataset.Rows, []string{
			session.SessionDate.Format(time.DateOnly),
			session.SlotID,
			session.TeacherID,
			session.StudentID,
			session.ClassroomID,
			string(session.Mode),
			string(session.AttendanceStatus),
		})
	}
	return s.render(dataset, "schedule", fmt.Sprintf("Schedule %s to %s", from.Format(time.DateOnly), to.Format(time.DateOnly)), format)
}

// AttendanceExport renders the attendance summary as CSV or PDF.
func (s *ReportService) AttendanceExport(ctx context.Context, from, to time.Time, format ReportFormat) (*ReportFile, error) {
	summary, err := s.AttendanceSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Total", "Attended", "Not Attended", "Pending"},
	}
	for _, row := range summary {
		dataset.Rows = append(dataset.Rows, []string{
			row.StudentID,
			strconv.Itoa(row.Total),
			strconv.Itoa(row.Attended),
			strconv.Itoa(row.NotAttended),
			strconv.Itoa(row.Pending),
		})
	}
	return s.render(dataset, "attendance", fmt.Sprintf("Attendance %s to %s", from.Format(time.DateOnly), to.Format(time.DateOnly)), format)
}

func (s *ReportService) render(dataset export.Dataset, name, title string, format ReportFormat) (*ReportFile, error) {
	switch format {
	case ReportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ReportFile{FileName: name + ".csv", ContentType: "text/csv", Content: content}, nil
	case ReportFormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ReportFile{FileName: name + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report format")
	}
}
