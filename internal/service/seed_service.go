package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
	"github.com/etutplan/etut-api/pkg/weekday"
)

// SeedSummary reports what a demo seed run created.
type SeedSummary struct {
	Teachers     int `json:"teachers"`
	Students     int `json:"students"`
	Classrooms   int `json:"classrooms"`
	TimeSlots    int `json:"time_slots"`
	Availability int `json:"availability_entries"`
	Sessions     int `json:"sessions"`
	Skipped      int `json:"skipped"`
}

// SeedService populates a demo dataset. Sessions are booked through the
// regular engine so the seeded ledger satisfies the same invariants as
// production data. The random source is injected so runs are reproducible.
type SeedService struct {
	slots        *TimeSlotService
	teachers     *TeacherService
	students     *StudentService
	classrooms   *ClassroomService
	availability *AvailabilityService
	booking      *BookingService
	rng          *rand.Rand
	logger       *zap.Logger
}

// NewSeedService instantiates SeedService.
func NewSeedService(slots *TimeSlotService, teachers *TeacherService, students *StudentService, classrooms *ClassroomService, availability *AvailabilityService, booking *BookingService, rng *rand.Rand, logger *zap.Logger) *SeedService {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{
		slots:        slots,
		teachers:     teachers,
		students:     students,
		classrooms:   classrooms,
		availability: availability,
		booking:      booking,
		rng:          rng,
		logger:       logger,
	}
}

var seedSlots = []TimeSlotRequest{
	{Name: "1st Lesson", StartTime: "09:00", EndTime: "09:45", Kind: "LESSON", OrderIndex: 1},
	{Name: "2nd Lesson", StartTime: "09:55", EndTime: "10:40", Kind: "LESSON", OrderIndex: 2},
	{Name: "Morning Break", StartTime: "10:40", EndTime: "11:00", Kind: "BREAK", OrderIndex: 3},
	{Name: "3rd Lesson", StartTime: "11:00", EndTime: "11:45", Kind: "LESSON", OrderIndex: 4},
	{Name: "Lunch", StartTime: "12:00", EndTime: "12:45", Kind: "LUNCH", OrderIndex: 5},
	{Name: "4th Lesson", StartTime: "13:00", EndTime: "13:45", Kind: "LESSON", OrderIndex: 6},
	{Name: "5th Lesson", StartTime: "13:55", EndTime: "14:40", Kind: "LESSON", OrderIndex: 7},
}

var seedBranches = []string{"Mathematics", "Physics", "Chemistry", "English", "History"}

// Run populates the demo dataset starting from the given Monday.
func (s *SeedService) Run(ctx context.Context, weekStart time.Time) (*SeedSummary, error) {
	if weekday.Of(weekStart) != 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "seed week must start on a Monday")
	}

	summary := &SeedSummary{}

	var lessonSlots []models.TimeSlot
	for _, req := range seedSlots {
		slot, err := s.slots.Create(ctx, req)
		if err != nil {
			return nil, err
		}
		summary.TimeSlots++
		if slot.Kind == models.SlotKindLesson {
			lessonSlots = append(lessonSlots, *slot)
		}
	}

	var teachers []models.Teacher
	for i, branch := range seedBranches {
		teacher, err := s.teachers.Create(ctx, TeacherRequest{
			FirstName: fmt.Sprintf("Teacher%02d", i+1),
			LastName:  branch,
			Branch:    branch,
		})
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, *teacher)
		summary.Teachers++
	}

	var students []models.Student
	for i := 0; i < 20; i++ {
		student, err := s.students.Create(ctx, StudentRequest{
			FirstName: fmt.Sprintf("Student%02d", i+1),
			LastName:  "Demo",
			ClassName: fmt.Sprintf("10-%c", 'A'+i%4),
		})
		if err != nil {
			return nil, err
		}
		students = append(students, *student)
		summary.Students++
	}

	var classrooms []models.Classroom
	for i := 0; i < 4; i++ {
		classroom, err := s.classrooms.Create(ctx, ClassroomRequest{
			Name:     fmt.Sprintf("Room %d", 101+i),
			Type:     "STANDARD",
			Capacity: 8,
		})
		if err != nil {
			return nil, err
		}
		classrooms = append(classrooms, *classroom)
		summary.Classrooms++
	}

	// each teacher is available for every lesson slot Monday..Friday
	for _, teacher := range teachers {
		for day := 1; day <= 5; day++ {
			for _, slot := range lessonSlots {
				if _, err := s.availability.Add(ctx, teacher.ID, AvailabilityEntryRequest{Weekday: day, SlotID: slot.ID}); err != nil {
					return nil, err
				}
				summary.Availability++
			}
		}
	}

	// scatter bookings across the seeded week
	for _, teacher := range teachers {
		for day := 0; day < 5; day++ {
			date := weekStart.AddDate(0, 0, day).Format(time.DateOnly)
			slot := lessonSlots[s.rng.Intn(len(lessonSlots))]
			classroom := classrooms[s.rng.Intn(len(classrooms))]

			if s.rng.Intn(2) == 0 {
				student := students[s.rng.Intn(len(students))]
				_, err := s.booking.BookSingle(ctx, BookSingleRequest{
					TeacherID:   teacher.ID,
					StudentID:   student.ID,
					ClassroomID: classroom.ID,
					SlotID:      slot.ID,
					Date:        date,
				})
				switch {
				case err == nil:
					summary.Sessions++
				case appErrors.HasCode(err, appErrors.ErrStudentConflict),
					appErrors.HasCode(err, appErrors.ErrSlotTaken):
					summary.Skipped++
				default:
					return nil, err
				}
				continue
			}

			group := make([]string, 0, 3)
			for len(group) < 3 {
				group = append(group, students[s.rng.Intn(len(students))].ID)
			}
			result, err := s.booking.BookBulk(ctx, BookBulkRequest{
				TeacherID:   teacher.ID,
				StudentIDs:  group,
				ClassroomID: classroom.ID,
				SlotID:      slot.ID,
				Date:        date,
				Mode:        string(models.SessionModeGroup),
			})
			if err != nil {
				if appErrors.HasCode(err, appErrors.ErrTeacherUnavailable) {
					summary.Skipped++
					continue
				}
				return nil, err
			}
			summary.Sessions += len(result.Committed)
			summary.Skipped += len(result.Skipped)
		}
	}

	s.logger.Info("demo seed completed",
		zap.Int("teachers", summary.Teachers),
		zap.Int("students", summary.Students),
		zap.Int("sessions", summary.Sessions),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}
