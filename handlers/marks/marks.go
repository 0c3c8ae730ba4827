package marks

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/services"
	"github.com/schoolhub/records-api/utils/middleware"
	"github.com/schoolhub/records-api/utils/response"
	"github.com/schoolhub/records-api/utils/validation"
)

// MarksHandler handles the marks workflow
type MarksHandler struct {
	db           *gorm.DB
	validator    *validation.Validator
	marksService *services.MarksService
}

// NewMarksHandler creates a new marks handler
func NewMarksHandler(db *gorm.DB, marksService *services.MarksService) *MarksHandler {
	return &MarksHandler{
		db:           db,
		validator:    validation.NewValidator(),
		marksService: marksService,
	}
}

// SubmitMarkRequest represents the request body for recording a mark
type SubmitMarkRequest struct {
	MarksObtained float64 `json:"marks_obtained" validate:"gte=0"`
	TotalMarks    float64 `json:"total_marks" validate:"required,gt=0"`
}

// DashboardCourse is one course on the marks dashboard with roster size
type DashboardCourse struct {
	Course       model.Course `json:"course"`
	StudentCount int64        `json:"student_count"`
	MarkedCount  int64        `json:"marked_count"`
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// Dashboard handles GET /api/v1/marks/dashboard. Admins see every course;
// teachers see only their assigned courses.
func (h *MarksHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var courses []model.Course
	if principal.IsAdmin() {
		if err := h.db.Order("code ASC").Find(&courses).Error; err != nil {
			return response.InternalServerError(c, "Failed to fetch courses")
		}
	} else if principal.IsTeacher() {
		courses = principal.Teacher.AssignedCourses
	} else {
		return response.Forbidden(c, "Only staff can access the marks dashboard")
	}

	entries := make([]DashboardCourse, 0, len(courses))
	for _, course := range courses {
		var studentCount, markedCount int64
		h.db.Model(&model.Student{}).Where("course_id = ?", course.ID).Count(&studentCount)
		h.db.Model(&model.Mark{}).Where("course_id = ?", course.ID).Count(&markedCount)
		entries = append(entries, DashboardCourse{
			Course:       course,
			StudentCount: studentCount,
			MarkedCount:  markedCount,
		})
	}

	return response.Success(c, entries)
}

// CourseRoster handles GET /api/v1/marks/course/:id. Returns the course
// roster with each student's current mark, or null where none is recorded.
func (h *MarksHandler) CourseRoster(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	// Assignment is checked first so an unassigned teacher learns nothing
	// about which course IDs exist
	if !principal.CanManageCourse(courseID) {
		return response.Forbidden(c, "You are not assigned to this course")
	}

	course, err := h.marksService.GetCourse(courseID)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	roster, err := h.marksService.CourseRoster(courseID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch roster")
	}

	return response.Success(c, fiber.Map{
		"course": course,
		"roster": roster,
	})
}

// SubmitMark handles POST /api/v1/marks/course/:course_id/student/:student_id.
// Recording a mark twice for the same pair updates the existing record.
func (h *MarksHandler) SubmitMark(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := parseID(c.Params("course_id"))
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}
	studentID, err := parseID(c.Params("student_id"))
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	if !principal.CanManageCourse(courseID) {
		return response.Forbidden(c, "You are not assigned to this course")
	}

	var req SubmitMarkRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if req.MarksObtained > req.TotalMarks {
		return response.ValidationError(c, map[string]string{
			"marks_obtained": "Marks obtained cannot exceed total marks",
		})
	}

	mark, err := h.marksService.UpsertMark(courseID, studentID, req.MarksObtained, req.TotalMarks)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrStudentNotFound):
			return response.NotFound(c, "Student not found")
		default:
			return response.InternalServerError(c, "Failed to record mark")
		}
	}

	return response.SuccessWithMessage(c, "Mark recorded successfully", mark)
}

// MyMarks handles GET /api/v1/my-marks. Students see their own marks only.
func (h *MarksHandler) MyMarks(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	if !principal.IsStudent() {
		return response.Forbidden(c, "Only students can view their own marks here")
	}

	entries, err := h.marksService.StudentMarks(principal.Student.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch marks")
	}

	return response.Success(c, fiber.Map{
		"student": principal.Student,
		"marks":   entries,
	})
}

// ResultCard handles GET /api/v1/students/:id/result-card. Any staff member
// may read any student's card; the route gate enforces that.
func (h *MarksHandler) ResultCard(c *fiber.Ctx) error {
	studentID, err := parseID(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	var student model.Student
	if err := h.db.Preload("Course").First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	entries, err := h.marksService.StudentMarks(student.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch marks")
	}

	return response.Success(c, fiber.Map{
		"student": student,
		"marks":   entries,
	})
}
