package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
)

type mockReportLedger struct {
	sessions []models.StudySession
	summary  []models.AttendanceSummary
	calls    int
}

func (m *mockReportLedger) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.StudySession, error) {
	return m.sessions, nil
}

func (m *mockReportLedger) AttendanceSummary(ctx context.Context, from, to time.Time) ([]models.AttendanceSummary, error) {
	m.calls++
	return m.summary, nil
}

func TestScheduleExportCSV(t *testing.T) {
	ledger := &mockReportLedger{sessions: []models.StudySession{
		{SessionDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), SlotID: "slot-1", TeacherID: "t1", StudentID: "s1", ClassroomID: "c1", Mode: models.SessionModeIndividual, AttendanceStatus: models.AttendancePending},
	}}
	svc := NewReportService(ledger, nil, zap.NewNop())

	file, err := svc.ScheduleExport(context.Background(), time.Now(), time.Now(), ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "schedule.csv", file.FileName)
	assert.Equal(t, "text/csv", file.ContentType)
	body := string(file.Content)
	assert.True(t, strings.HasPrefix(body, "Date,Slot,Teacher,Student,Classroom,Mode,Attendance"))
	assert.Contains(t, body, "2026-09-07,slot-1,t1,s1,c1,INDIVIDUAL,PENDING")
}

func TestAttendanceExportPDF(t *testing.T) {
	ledger := &mockReportLedger{summary: []models.AttendanceSummary{
		{StudentID: "s1", Total: 4, Attended: 3, NotAttended: 1},
	}}
	svc := NewReportService(ledger, nil, zap.NewNop())

	file, err := svc.AttendanceExport(context.Background(), time.Now(), time.Now(), ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "attendance.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.NotEmpty(t, file.Content)
}

func TestScheduleExportRejectsUnknownFormat(t *testing.T) {
	svc := NewReportService(&mockReportLedger{}, nil, zap.NewNop())

	_, err := svc.ScheduleExport(context.Background(), time.Now(), time.Now(), ReportFormat("xml"))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
