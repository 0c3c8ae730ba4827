package course

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/utils/response"
	"github.com/schoolhub/records-api/utils/validation"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Code        string `json:"code" validate:"required,min=2,max=50"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// UpdateCourseRequest represents the request body for updating a course
type UpdateCourseRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=255"`
	Code        string `json:"code" validate:"omitempty,min=2,max=50"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	query := h.db.Model(&model.Course{})

	if search != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var courses []model.Course
	if err := query.Order("code ASC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, pagination)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.Preload("Teachers").First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	// Course codes must be unique
	var existing model.Course
	if err := h.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return response.ValidationError(c, map[string]string{
			"code": "A course with this code already exists",
		})
	}

	course := model.Course{
		Name:        validation.SanitizeString(req.Name),
		Code:        validation.SanitizeString(req.Code),
		Description: req.Description,
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// Reject code changes that collide with another course
	if req.Code != "" && req.Code != course.Code {
		var existing model.Course
		if err := h.db.Where("code = ? AND id != ?", req.Code, course.ID).
			First(&existing).Error; err == nil {
			return response.ValidationError(c, map[string]string{
				"code": "A course with this code already exists",
			})
		}
		course.Code = validation.SanitizeString(req.Code)
	}
	if req.Name != "" {
		course.Name = validation.SanitizeString(req.Name)
	}
	if req.Description != "" {
		course.Description = req.Description
	}

	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.Success(c, course)
}

// ConfirmDeleteCourse handles GET /api/v1/courses/:id/confirm-delete.
// It is a read-only preview of the impact of deleting the course; the
// actual delete happens only on the DELETE request.
func (h *CourseHandler) ConfirmDeleteCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	var studentCount, markCount, attendanceCount int64
	h.db.Model(&model.Student{}).Where("course_id = ?", course.ID).Count(&studentCount)
	h.db.Model(&model.Mark{}).Where("course_id = ?", course.ID).Count(&markCount)
	h.db.Model(&model.Attendance{}).Where("course_id = ?", course.ID).Count(&attendanceCount)

	return response.Success(c, fiber.Map{
		"course":             course,
		"affected_students":  studentCount,
		"deleted_marks":      markCount,
		"deleted_attendance": attendanceCount,
		"note":               "Enrolled students will be detached; their marks and attendance for this course will be removed",
	})
}

// DeleteCourse handles DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// Detach enrolled students, drop dependent records, then the course.
	// Runs in one transaction so a failure leaves everything in place.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Student{}).
			Where("course_id = ?", course.ID).
			Update("course_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&model.Mark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&model.Attendance{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&course).Association("Teachers").Clear(); err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
