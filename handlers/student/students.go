package student

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/services/storage"
	"github.com/schoolhub/records-api/utils/response"
	"github.com/schoolhub/records-api/utils/validation"
)

// StudentHandler handles student-related requests
type StudentHandler struct {
	db            *gorm.DB
	validator     *validation.Validator
	storageClient *storage.Client // nil when object storage is not configured
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(db *gorm.DB, storageClient *storage.Client) *StudentHandler {
	return &StudentHandler{
		db:            db,
		validator:     validation.NewValidator(),
		storageClient: storageClient,
	}
}

// CreateStudentRequest represents the request body for creating a student
type CreateStudentRequest struct {
	FullName   string `json:"full_name" validate:"required,min=2,max=255"`
	RollNumber string `json:"roll_number" validate:"required,min=1,max=50"`
	Email      string `json:"email" validate:"required,email"`
	CourseID   *uint  `json:"course_id" validate:"omitempty,min=1"`
	DOB        string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	UserID     *uint  `json:"user_id" validate:"omitempty,min=1"`
}

// UpdateStudentRequest represents the request body for updating a student
type UpdateStudentRequest struct {
	FullName   string `json:"full_name" validate:"omitempty,min=2,max=255"`
	RollNumber string `json:"roll_number" validate:"omitempty,min=1,max=50"`
	Email      string `json:"email" validate:"omitempty,email"`
	CourseID   *uint  `json:"course_id" validate:"omitempty,min=1"`
	DOB        string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	UserID     *uint  `json:"user_id" validate:"omitempty,min=1"`
}

func parseDOB(s string) (*datatypes.Date, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	d := datatypes.Date(t)
	return &d, nil
}

// courseExists reports whether the referenced course is present
func (h *StudentHandler) courseExists(id uint) bool {
	var course model.Course
	return h.db.First(&course, id).Error == nil
}

// userLinkError validates a user_id reference: the account must exist and
// must not be linked to a different student. excludeID skips the student
// being updated.
func (h *StudentHandler) userLinkError(userID uint, excludeID uint) string {
	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return "Referenced user account does not exist"
	}
	q := h.db.Where("user_id = ?", userID)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	var existing model.Student
	if err := q.First(&existing).Error; err == nil {
		return "This user account is already linked to another student"
	}
	return ""
}

// ListStudents handles GET /api/v1/students
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	query := h.db.Model(&model.Student{})

	if search != "" {
		query = query.Where("full_name ILIKE ? OR roll_no ILIKE ? OR email ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if courseID := c.Query("course_id"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count students")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var students []model.Student
	if err := query.Preload("Course").
		Order("roll_no ASC").
		Limit(limit).
		Offset(offset).
		Find(&students).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	return response.Paginated(c, students, pagination)
}

// GetStudent handles GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	id := c.Params("id")

	var student model.Student
	if err := h.db.Preload("Course").First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	return response.Success(c, student)
}

// CreateStudent handles POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	// Roll numbers must be unique
	var existing model.Student
	if err := h.db.Where("roll_no = ?", req.RollNumber).First(&existing).Error; err == nil {
		return response.ValidationError(c, map[string]string{
			"roll_number": "A student with this roll number already exists",
		})
	}

	if req.CourseID != nil && !h.courseExists(*req.CourseID) {
		return response.ValidationError(c, map[string]string{
			"course_id": "Referenced course does not exist",
		})
	}

	dob, err := parseDOB(req.DOB)
	if err != nil {
		return response.ValidationError(c, map[string]string{
			"dob": "Must be a valid date in YYYY-MM-DD format",
		})
	}

	if req.UserID != nil {
		if msg := h.userLinkError(*req.UserID, 0); msg != "" {
			return response.ValidationError(c, map[string]string{"user_id": msg})
		}
	}

	student := model.Student{
		FullName: validation.SanitizeString(req.FullName),
		RollNo:   validation.SanitizeString(req.RollNumber),
		Email:    req.Email,
		CourseID: req.CourseID,
		DOB:      dob,
		UserID:   req.UserID,
	}

	if err := h.db.Create(&student).Error; err != nil {
		return response.InternalServerError(c, "Failed to create student")
	}

	h.db.Preload("Course").First(&student, student.ID)

	return response.Created(c, student)
}

// UpdateStudent handles PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	var student model.Student
	if err := h.db.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	if req.RollNumber != "" && req.RollNumber != student.RollNo {
		var existing model.Student
		if err := h.db.Where("roll_no = ? AND id != ?", req.RollNumber, student.ID).
			First(&existing).Error; err == nil {
			return response.ValidationError(c, map[string]string{
				"roll_number": "A student with this roll number already exists",
			})
		}
		student.RollNo = validation.SanitizeString(req.RollNumber)
	}
	if req.FullName != "" {
		student.FullName = validation.SanitizeString(req.FullName)
	}
	if req.Email != "" {
		student.Email = req.Email
	}
	if req.CourseID != nil {
		if !h.courseExists(*req.CourseID) {
			return response.ValidationError(c, map[string]string{
				"course_id": "Referenced course does not exist",
			})
		}
		student.CourseID = req.CourseID
	}
	if req.DOB != "" {
		dob, err := parseDOB(req.DOB)
		if err != nil {
			return response.ValidationError(c, map[string]string{
				"dob": "Must be a valid date in YYYY-MM-DD format",
			})
		}
		student.DOB = dob
	}
	if req.UserID != nil {
		if msg := h.userLinkError(*req.UserID, student.ID); msg != "" {
			return response.ValidationError(c, map[string]string{"user_id": msg})
		}
		student.UserID = req.UserID
	}

	if err := h.db.Save(&student).Error; err != nil {
		return response.InternalServerError(c, "Failed to update student")
	}

	h.db.Preload("Course").First(&student, student.ID)

	return response.Success(c, student)
}

// ConfirmDeleteStudent handles GET /api/v1/students/:id/confirm-delete.
// Read-only preview; the record survives until the DELETE request lands.
func (h *StudentHandler) ConfirmDeleteStudent(c *fiber.Ctx) error {
	id := c.Params("id")

	var student model.Student
	if err := h.db.Preload("Course").First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	var markCount, attendanceCount int64
	h.db.Model(&model.Mark{}).Where("student_id = ?", student.ID).Count(&markCount)
	h.db.Model(&model.Attendance{}).Where("student_id = ?", student.ID).Count(&attendanceCount)

	return response.Success(c, fiber.Map{
		"student":            student,
		"deleted_marks":      markCount,
		"deleted_attendance": attendanceCount,
	})
}

// DeleteStudent handles DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	id := c.Params("id")

	var student model.Student
	if err := h.db.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", student.ID).Delete(&model.Mark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", student.ID).Delete(&model.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&student).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete student")
	}

	// Best effort cleanup of the stored photo; the record is already gone
	if h.storageClient != nil && student.PhotoKey != "" {
		_ = h.storageClient.DeleteFile(c.Context(), student.PhotoKey)
	}

	return response.SuccessWithMessage(c, "Student deleted successfully", nil)
}
