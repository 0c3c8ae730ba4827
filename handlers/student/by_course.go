package student

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/utils/response"
)

// CourseGroup is one course together with its enrolled students
type CourseGroup struct {
	Course   *model.Course   `json:"course"` // nil for the unassigned group
	Students []model.Student `json:"students"`
}

// ListByCourse handles GET /api/v1/students/by-course. Students without a
// course come last under a nil course entry.
func (h *StudentHandler) ListByCourse(c *fiber.Ctx) error {
	var courses []model.Course
	if err := h.db.Order("code ASC").Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	groups := make([]CourseGroup, 0, len(courses)+1)
	for i := range courses {
		var students []model.Student
		if err := h.db.Where("course_id = ?", courses[i].ID).
			Order("roll_no ASC").
			Find(&students).Error; err != nil {
			return response.InternalServerError(c, "Failed to fetch students")
		}
		groups = append(groups, CourseGroup{Course: &courses[i], Students: students})
	}

	var unassigned []model.Student
	if err := h.db.Where("course_id IS NULL").
		Order("roll_no ASC").
		Find(&unassigned).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}
	if len(unassigned) > 0 {
		groups = append(groups, CourseGroup{Course: nil, Students: unassigned})
	}

	return response.Success(c, groups)
}

// ListForCourse handles GET /api/v1/students/by-course/:id
func (h *StudentHandler) ListForCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	var students []model.Student
	if err := h.db.Where("course_id = ?", course.ID).
		Order("roll_no ASC").
		Find(&students).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	return response.Success(c, CourseGroup{Course: &course, Students: students})
}
