package marks

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/utils/middleware"
)

// The assignment gate runs before any database access, so the handler can be
// exercised without one.
func setupMarksGateApp() *fiber.App {
	h := NewMarksHandler(nil, nil)

	teacher := &middleware.Principal{
		UserID: 10,
		Name:   "Unassigned Teacher",
		Role:   middleware.RoleTeacher,
		Teacher: &model.Teacher{
			ID:              3,
			AssignedCourses: []model.Course{{ID: 5}},
		},
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("principal", teacher)
		return c.Next()
	})
	app.Get("/marks/course/:id", h.CourseRoster)
	app.Post("/marks/course/:course_id/student/:student_id", h.SubmitMark)
	return app
}

func TestCourseRosterDeniesUnassignedTeacher(t *testing.T) {
	app := setupMarksGateApp()

	req := httptest.NewRequest(http.MethodGet, "/marks/course/7", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("roster for unassigned course returned %d, want 403", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(body), "roster") {
		t.Error("forbidden response must not leak roster data")
	}
}

func TestSubmitMarkDeniesUnassignedTeacher(t *testing.T) {
	app := setupMarksGateApp()

	payload, _ := json.Marshal(map[string]float64{
		"marks_obtained": 40,
		"total_marks":    50,
	})
	req := httptest.NewRequest(http.MethodPost, "/marks/course/7/student/1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("submit for unassigned course returned %d, want 403", resp.StatusCode)
	}
}
