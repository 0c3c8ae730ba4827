package attendance

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/utils/middleware"
	"github.com/schoolhub/records-api/utils/response"
	"github.com/schoolhub/records-api/utils/validation"
)

// AttendanceHandler handles attendance-related requests
type AttendanceHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(db *gorm.DB) *AttendanceHandler {
	return &AttendanceHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// RecordAttendanceRequest represents the request body for recording an
// attendance entry. Date defaults to today when omitted.
type RecordAttendanceRequest struct {
	StudentID uint   `json:"student_id" validate:"required,min=1"`
	CourseID  uint   `json:"course_id" validate:"required,min=1"`
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=Present Absent"`
}

// RecordAttendance handles POST /api/v1/attendance. One entry per
// (student, course, date); resubmitting replaces the status.
func (h *AttendanceHandler) RecordAttendance(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req RecordAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if !principal.CanManageCourse(req.CourseID) {
		return response.Forbidden(c, "You are not assigned to this course")
	}

	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	var student model.Student
	if err := h.db.Where("id = ? AND course_id = ?", req.StudentID, req.CourseID).
		First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Student not found in this course")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	day := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return response.ValidationError(c, map[string]string{
				"date": "Must be a valid date in YYYY-MM-DD format",
			})
		}
		day = parsed
	}

	entry := model.Attendance{
		StudentID: student.ID,
		CourseID:  course.ID,
		Date:      datatypes.Date(day),
		Status:    model.AttendanceStatus(req.Status),
	}

	// The unique index on (student, course, date) makes this safe under
	// concurrent submissions for the same entry
	if err := h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "student_id"}, {Name: "course_id"}, {Name: "date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		return response.InternalServerError(c, "Failed to record attendance")
	}

	var saved model.Attendance
	if err := h.db.Where("student_id = ? AND course_id = ? AND date = ?",
		student.ID, course.ID, entry.Date).First(&saved).Error; err != nil {
		return response.InternalServerError(c, "Failed to load attendance entry")
	}

	return response.SuccessWithMessage(c, "Attendance recorded successfully", saved)
}

// CourseAttendance handles GET /api/v1/attendance/course/:id. Accepts an
// optional date query parameter; defaults to today.
func (h *AttendanceHandler) CourseAttendance(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || courseID == 0 {
		return response.BadRequest(c, "Invalid course ID")
	}

	if !principal.CanManageCourse(uint(courseID)) {
		return response.Forbidden(c, "You are not assigned to this course")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	day := time.Now().Format("2006-01-02")
	if d := c.Query("date"); d != "" {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return response.BadRequest(c, "Date must be in YYYY-MM-DD format")
		}
		day = d
	}

	var entries []model.Attendance
	if err := h.db.Preload("Student").
		Where("course_id = ? AND date = ?", course.ID, day).
		Find(&entries).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch attendance")
	}

	return response.Success(c, fiber.Map{
		"course":  course,
		"date":    day,
		"entries": entries,
	})
}

// MyAttendance handles GET /api/v1/my-attendance. Students see their own
// history, newest first, with a present/absent summary.
func (h *AttendanceHandler) MyAttendance(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	if !principal.IsStudent() {
		return response.Forbidden(c, "Only students can view their own attendance here")
	}

	var entries []model.Attendance
	if err := h.db.Preload("Course").
		Where("student_id = ?", principal.Student.ID).
		Order("date DESC").
		Find(&entries).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch attendance")
	}

	var present, absent int
	for _, e := range entries {
		if e.Status == model.StatusPresent {
			present++
		} else {
			absent++
		}
	}

	return response.Success(c, fiber.Map{
		"entries": entries,
		"summary": fiber.Map{
			"present": present,
			"absent":  absent,
			"total":   len(entries),
		},
	})
}
