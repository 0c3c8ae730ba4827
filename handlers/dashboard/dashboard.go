package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/utils/grading"
	"github.com/schoolhub/records-api/utils/middleware"
	"github.com/schoolhub/records-api/utils/response"
)

// DashboardHandler serves the role-dependent landing payload
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Dashboard handles GET /api/v1/dashboard. The payload shape depends on the
// caller's affiliation; unaffiliated accounts get a neutral message rather
// than an error.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	switch {
	case principal.IsAdmin():
		return h.adminDashboard(c)
	case principal.IsTeacher():
		return h.teacherDashboard(c, principal)
	case principal.IsStudent():
		return h.studentDashboard(c, principal)
	default:
		return response.SuccessWithMessage(c,
			"Your account is not linked to a student or teacher record yet. Contact an administrator.",
			fiber.Map{"scope": string(principal.Role)})
	}
}

func (h *DashboardHandler) adminDashboard(c *fiber.Ctx) error {
	var studentCount, teacherCount, courseCount, markCount int64
	h.db.Model(&model.Student{}).Count(&studentCount)
	h.db.Model(&model.Teacher{}).Count(&teacherCount)
	h.db.Model(&model.Course{}).Count(&courseCount)
	h.db.Model(&model.Mark{}).Count(&markCount)

	var recentStudents []model.Student
	h.db.Order("created_at DESC").Limit(5).Find(&recentStudents)

	return response.Success(c, fiber.Map{
		"scope": "admin",
		"totals": fiber.Map{
			"students": studentCount,
			"teachers": teacherCount,
			"courses":  courseCount,
			"marks":    markCount,
		},
		"recent_students": recentStudents,
	})
}

func (h *DashboardHandler) teacherDashboard(c *fiber.Ctx, principal *middleware.Principal) error {
	type courseSummary struct {
		Course       model.Course `json:"course"`
		StudentCount int64        `json:"student_count"`
	}

	summaries := make([]courseSummary, 0, len(principal.Teacher.AssignedCourses))
	for _, course := range principal.Teacher.AssignedCourses {
		var count int64
		h.db.Model(&model.Student{}).Where("course_id = ?", course.ID).Count(&count)
		summaries = append(summaries, courseSummary{Course: course, StudentCount: count})
	}

	return response.Success(c, fiber.Map{
		"scope":   "teacher",
		"teacher": principal.Teacher,
		"courses": summaries,
	})
}

func (h *DashboardHandler) studentDashboard(c *fiber.Ctx, principal *middleware.Principal) error {
	var marks []model.Mark
	h.db.Preload("Course").
		Where("student_id = ?", principal.Student.ID).
		Order("course_id ASC").
		Find(&marks)

	var obtained, total float64
	for _, m := range marks {
		obtained += m.MarksObtained
		total += m.TotalMarks
	}

	return response.Success(c, fiber.Map{
		"scope":   "student",
		"student": principal.Student,
		"marks_summary": fiber.Map{
			"recorded":           len(marks),
			"overall_percentage": grading.Percentage(obtained, total),
		},
	})
}
