package services

import (
	"errors"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/utils/grading"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrStudentNotFound = errors.New("student not found")
)

// MarksService implements the marks workflow: course rosters, the
// single-record upsert per (student, course) pair, and result cards.
type MarksService struct {
	db *gorm.DB
}

// NewMarksService creates a new marks service
func NewMarksService(db *gorm.DB) *MarksService {
	return &MarksService{db: db}
}

// RosterEntry pairs a student of a course with their mark, if any
type RosterEntry struct {
	Student    model.Student `json:"student"`
	Mark       *model.Mark   `json:"mark"`
	Percentage float64       `json:"percentage"`
}

// MarkEntry is one mark on a result card, with its course and the derived
// percentage computed at response time
type MarkEntry struct {
	Mark       model.Mark `json:"mark"`
	Percentage float64    `json:"percentage"`
}

// GetCourse loads a course by id
func (s *MarksService) GetCourse(courseID uint) (*model.Course, error) {
	var course model.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// CourseRoster returns every student belonging to the course paired with
// their existing mark or nil, ordered by roll number.
func (s *MarksService) CourseRoster(courseID uint) ([]RosterEntry, error) {
	if _, err := s.GetCourse(courseID); err != nil {
		return nil, err
	}

	var students []model.Student
	if err := s.db.Where("course_id = ?", courseID).Order("roll_no ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	var marks []model.Mark
	if err := s.db.Where("course_id = ?", courseID).Find(&marks).Error; err != nil {
		return nil, err
	}

	byStudent := make(map[uint]model.Mark, len(marks))
	for _, m := range marks {
		byStudent[m.StudentID] = m
	}

	roster := make([]RosterEntry, 0, len(students))
	for _, st := range students {
		entry := RosterEntry{Student: st}
		if m, ok := byStudent[st.ID]; ok {
			m := m
			entry.Mark = &m
			entry.Percentage = grading.Percentage(m.MarksObtained, m.TotalMarks)
		}
		roster = append(roster, entry)
	}

	return roster, nil
}

// UpsertMark creates the mark for (student, course) or overwrites the
// existing one in place. The composite unique index on marks makes the
// ON CONFLICT clause authoritative, so concurrent submissions cannot leave
// duplicate rows.
func (s *MarksService) UpsertMark(courseID, studentID uint, obtained, total float64) (*model.Mark, error) {
	if _, err := s.GetCourse(courseID); err != nil {
		return nil, err
	}

	var student model.Student
	if err := s.db.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	mark := model.Mark{
		StudentID:     studentID,
		CourseID:      courseID,
		MarksObtained: obtained,
		TotalMarks:    total,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"marks_obtained", "total_marks", "updated_at"}),
	}).Create(&mark).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller gets the surviving row's id on overwrite
	if err := s.db.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&mark).Error; err != nil {
		return nil, err
	}

	return &mark, nil
}

// StudentMarks returns all marks for a student across courses, with
// percentages, as shown on the student's own page and the staff result card.
func (s *MarksService) StudentMarks(studentID uint) ([]MarkEntry, error) {
	var student model.Student
	if err := s.db.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	var marks []model.Mark
	if err := s.db.Preload("Course").Where("student_id = ?", studentID).Order("course_id ASC").Find(&marks).Error; err != nil {
		return nil, err
	}

	entries := make([]MarkEntry, 0, len(marks))
	for _, m := range marks {
		entries = append(entries, MarkEntry{
			Mark:       m,
			Percentage: grading.Percentage(m.MarksObtained, m.TotalMarks),
		})
	}

	return entries, nil
}
