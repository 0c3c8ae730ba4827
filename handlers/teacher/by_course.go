package teacher

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/utils/response"
)

// CourseGroup is one course together with its assigned teachers
type CourseGroup struct {
	Course   model.Course    `json:"course"`
	Teachers []model.Teacher `json:"teachers"`
}

// ListByCourse handles GET /api/v1/teachers/by-course
func (h *TeacherHandler) ListByCourse(c *fiber.Ctx) error {
	var courses []model.Course
	if err := h.db.Preload("Teachers").Order("code ASC").Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	groups := make([]CourseGroup, 0, len(courses))
	for _, course := range courses {
		teachers := course.Teachers
		course.Teachers = nil
		if teachers == nil {
			teachers = []model.Teacher{}
		}
		groups = append(groups, CourseGroup{Course: course, Teachers: teachers})
	}

	return response.Success(c, groups)
}

// ListForCourse handles GET /api/v1/teachers/by-course/:id
func (h *TeacherHandler) ListForCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.Preload("Teachers").First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	teachers := course.Teachers
	course.Teachers = nil
	if teachers == nil {
		teachers = []model.Teacher{}
	}

	return response.Success(c, CourseGroup{Course: course, Teachers: teachers})
}
