package teacher

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/utils/response"
	"github.com/schoolhub/records-api/utils/validation"
)

// TeacherHandler handles teacher-related requests
type TeacherHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(db *gorm.DB) *TeacherHandler {
	return &TeacherHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateTeacherRequest represents the request body for creating a teacher
type CreateTeacherRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	Email     string `json:"email" validate:"required,email"`
	CourseIDs []uint `json:"course_ids" validate:"omitempty,dive,min=1"`
	UserID    *uint  `json:"user_id" validate:"omitempty,min=1"`
}

// UpdateTeacherRequest represents the request body for updating a teacher.
// CourseIDs, when present, replaces the full assignment set; an empty list
// clears all assignments.
type UpdateTeacherRequest struct {
	Name      string  `json:"name" validate:"omitempty,min=2,max=255"`
	Email     string  `json:"email" validate:"omitempty,email"`
	CourseIDs *[]uint `json:"course_ids" validate:"omitempty,dive,min=1"`
	UserID    *uint   `json:"user_id" validate:"omitempty,min=1"`
}

// loadCourses resolves the given IDs, failing if any course is missing
func (h *TeacherHandler) loadCourses(ids []uint) ([]model.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var courses []model.Course
	if err := h.db.Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, err
	}
	if len(courses) != len(ids) {
		return nil, gorm.ErrRecordNotFound
	}
	return courses, nil
}

// userLinkError validates a user_id reference: the account must exist and
// must not be linked to a different teacher. excludeID skips the teacher
// being updated.
func (h *TeacherHandler) userLinkError(userID uint, excludeID uint) string {
	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return "Referenced user account does not exist"
	}
	q := h.db.Where("user_id = ?", userID)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	var existing model.Teacher
	if err := q.First(&existing).Error; err == nil {
		return "This user account is already linked to another teacher"
	}
	return ""
}

// ListTeachers handles GET /api/v1/teachers
func (h *TeacherHandler) ListTeachers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	query := h.db.Model(&model.Teacher{})

	if search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count teachers")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var teachers []model.Teacher
	if err := query.Preload("AssignedCourses").
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&teachers).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch teachers")
	}

	return response.Paginated(c, teachers, pagination)
}

// GetTeacher handles GET /api/v1/teachers/:id
func (h *TeacherHandler) GetTeacher(c *fiber.Ctx) error {
	id := c.Params("id")

	var teacher model.Teacher
	if err := h.db.Preload("AssignedCourses").First(&teacher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	return response.Success(c, teacher)
}

// CreateTeacher handles POST /api/v1/teachers
func (h *TeacherHandler) CreateTeacher(c *fiber.Ctx) error {
	var req CreateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	courses, err := h.loadCourses(req.CourseIDs)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.ValidationError(c, map[string]string{
				"course_ids": "One or more referenced courses do not exist",
			})
		}
		return response.InternalServerError(c, "Failed to resolve courses")
	}

	if req.UserID != nil {
		if msg := h.userLinkError(*req.UserID, 0); msg != "" {
			return response.ValidationError(c, map[string]string{"user_id": msg})
		}
	}

	teacher := model.Teacher{
		Name:            validation.SanitizeString(req.Name),
		Email:           req.Email,
		UserID:          req.UserID,
		AssignedCourses: courses,
	}

	if err := h.db.Create(&teacher).Error; err != nil {
		return response.InternalServerError(c, "Failed to create teacher")
	}

	h.db.Preload("AssignedCourses").First(&teacher, teacher.ID)

	return response.Created(c, teacher)
}

// UpdateTeacher handles PUT /api/v1/teachers/:id
func (h *TeacherHandler) UpdateTeacher(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	var teacher model.Teacher
	if err := h.db.First(&teacher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	// Resolve the assignment set before any write so an invalid course id
	// cannot leave a half-applied update behind
	var courses []model.Course
	if req.CourseIDs != nil {
		var err error
		courses, err = h.loadCourses(*req.CourseIDs)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.ValidationError(c, map[string]string{
					"course_ids": "One or more referenced courses do not exist",
				})
			}
			return response.InternalServerError(c, "Failed to resolve courses")
		}
	}

	if req.Name != "" {
		teacher.Name = validation.SanitizeString(req.Name)
	}
	if req.Email != "" {
		teacher.Email = req.Email
	}
	if req.UserID != nil {
		if msg := h.userLinkError(*req.UserID, teacher.ID); msg != "" {
			return response.ValidationError(c, map[string]string{"user_id": msg})
		}
		teacher.UserID = req.UserID
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&teacher).Error; err != nil {
			return err
		}
		if req.CourseIDs != nil {
			return tx.Model(&teacher).Association("AssignedCourses").Replace(courses)
		}
		return nil
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to update teacher")
	}

	h.db.Preload("AssignedCourses").First(&teacher, teacher.ID)

	return response.Success(c, teacher)
}

// ConfirmDeleteTeacher handles GET /api/v1/teachers/:id/confirm-delete
func (h *TeacherHandler) ConfirmDeleteTeacher(c *fiber.Ctx) error {
	id := c.Params("id")

	var teacher model.Teacher
	if err := h.db.Preload("AssignedCourses").First(&teacher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	return response.Success(c, fiber.Map{
		"teacher":          teacher,
		"released_courses": len(teacher.AssignedCourses),
		"note":             "Assigned courses are released, not deleted",
	})
}

// DeleteTeacher handles DELETE /api/v1/teachers/:id
func (h *TeacherHandler) DeleteTeacher(c *fiber.Ctx) error {
	id := c.Params("id")

	var teacher model.Teacher
	if err := h.db.First(&teacher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&teacher).Association("AssignedCourses").Clear(); err != nil {
			return err
		}
		return tx.Delete(&teacher).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete teacher")
	}

	return response.SuccessWithMessage(c, "Teacher deleted successfully", nil)
}
