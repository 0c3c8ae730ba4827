package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/utils/middleware"
)

// MarksWorkflowTestContext holds all resources needed for the marks
// workflow integration tests
type MarksWorkflowTestContext struct {
	db *gorm.DB

	marksService *MarksService

	course  *model.Course
	teacher *model.Teacher
	alice   *model.Student
	bob     *model.Student
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupMarksWorkflowTest connects to the test database and seeds one course
// with a teacher and two students
func setupMarksWorkflowTest(t *testing.T) (*MarksWorkflowTestContext, error) {
	t.Helper()

	requiredEnvVars := []string{"DB_HOST", "DB_USER_NAME", "DB_PASSWORD", "DB_NAME", "DB_PORT"}
	missingVars := []string{}
	for _, v := range requiredEnvVars {
		if os.Getenv(v) == "" {
			missingVars = append(missingVars, v)
		}
	}
	if len(missingVars) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER_NAME"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		getEnvOrDefault("DB_SSL_MODE", "disable"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{}, &model.Course{}, &model.Student{},
		&model.Teacher{}, &model.Mark{}, &model.Attendance{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	ctx := &MarksWorkflowTestContext{
		db:           db,
		marksService: NewMarksService(db),
	}

	ctx.course = &model.Course{Name: "Intro to Computer Science", Code: "CS101-IT"}
	if err := db.Create(ctx.course).Error; err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	ctx.teacher = &model.Teacher{
		Name:            "Integration Teacher",
		Email:           "it-teacher@example.com",
		AssignedCourses: []model.Course{*ctx.course},
	}
	if err := db.Create(ctx.teacher).Error; err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}

	ctx.alice = &model.Student{
		FullName: "Alice Integration",
		RollNo:   "IT-001",
		Email:    "alice-it@example.com",
		CourseID: &ctx.course.ID,
	}
	ctx.bob = &model.Student{
		FullName: "Bob Integration",
		RollNo:   "IT-002",
		Email:    "bob-it@example.com",
		CourseID: &ctx.course.ID,
	}
	if err := db.Create(ctx.alice).Error; err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	if err := db.Create(ctx.bob).Error; err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	return ctx, nil
}

// teardown removes everything the test created
func (ctx *MarksWorkflowTestContext) teardown() {
	ctx.db.Unscoped().Where("course_id = ?", ctx.course.ID).Delete(&model.Mark{})
	ctx.db.Unscoped().Where("course_id = ?", ctx.course.ID).Delete(&model.Attendance{})
	ctx.db.Model(ctx.teacher).Association("AssignedCourses").Clear()
	ctx.db.Unscoped().Delete(ctx.teacher)
	ctx.db.Unscoped().Delete(ctx.alice)
	ctx.db.Unscoped().Delete(ctx.bob)
	ctx.db.Unscoped().Delete(ctx.course)
}

func TestMarksWorkflow(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	ctx, err := setupMarksWorkflowTest(t)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer ctx.teardown()

	// Roster starts with both students and no marks
	roster, err := ctx.marksService.CourseRoster(ctx.course.ID)
	if err != nil {
		t.Fatalf("CourseRoster failed: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("roster has %d entries, want 2", len(roster))
	}
	if roster[0].Student.RollNo != "IT-001" || roster[1].Student.RollNo != "IT-002" {
		t.Errorf("roster not ordered by roll number: %s, %s",
			roster[0].Student.RollNo, roster[1].Student.RollNo)
	}
	for _, entry := range roster {
		if entry.Mark != nil {
			t.Errorf("student %s has a mark before any submission", entry.Student.RollNo)
		}
	}

	// First submission for Alice
	mark, err := ctx.marksService.UpsertMark(ctx.course.ID, ctx.alice.ID, 45, 50)
	if err != nil {
		t.Fatalf("UpsertMark failed: %v", err)
	}
	if mark.MarksObtained != 45 || mark.TotalMarks != 50 {
		t.Errorf("mark = %v/%v, want 45/50", mark.MarksObtained, mark.TotalMarks)
	}
	firstID := mark.ID

	// Resubmission overwrites the same record rather than adding another
	mark, err = ctx.marksService.UpsertMark(ctx.course.ID, ctx.alice.ID, 48, 50)
	if err != nil {
		t.Fatalf("UpsertMark resubmission failed: %v", err)
	}
	if mark.ID != firstID {
		t.Errorf("resubmission created a new row: id %d, want %d", mark.ID, firstID)
	}
	if mark.MarksObtained != 48 {
		t.Errorf("marks_obtained = %v, want 48", mark.MarksObtained)
	}

	var count int64
	ctx.db.Model(&model.Mark{}).
		Where("student_id = ? AND course_id = ?", ctx.alice.ID, ctx.course.ID).
		Count(&count)
	if count != 1 {
		t.Errorf("found %d mark rows for the pair, want exactly 1", count)
	}

	// Bob still has no mark on the roster
	roster, err = ctx.marksService.CourseRoster(ctx.course.ID)
	if err != nil {
		t.Fatalf("CourseRoster failed: %v", err)
	}
	for _, entry := range roster {
		switch entry.Student.ID {
		case ctx.alice.ID:
			if entry.Mark == nil {
				t.Error("Alice should have a mark")
			} else if entry.Percentage != 96 {
				t.Errorf("Alice percentage = %v, want 96", entry.Percentage)
			}
		case ctx.bob.ID:
			if entry.Mark != nil {
				t.Error("Bob should not have a mark")
			}
		}
	}

	// Student view matches
	entries, err := ctx.marksService.StudentMarks(ctx.alice.ID)
	if err != nil {
		t.Fatalf("StudentMarks failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Percentage != 96 {
		t.Errorf("StudentMarks = %+v, want one entry at 96%%", entries)
	}

	// Unknown ids surface the sentinel errors
	if _, err := ctx.marksService.UpsertMark(999999, ctx.alice.ID, 1, 2); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("unknown course: got %v, want ErrCourseNotFound", err)
	}
	if _, err := ctx.marksService.UpsertMark(ctx.course.ID, 999999, 1, 2); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("unknown student: got %v, want ErrStudentNotFound", err)
	}
}

func TestResolvePrincipalAffiliations(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	ctx, err := setupMarksWorkflowTest(t)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer ctx.teardown()

	adminUser := &model.User{
		Email: "it-admin@example.com", PasswordHash: "x", Name: "Admin", Role: model.RoleAdmin,
	}
	teacherUser := &model.User{
		Email: "it-teacher-acct@example.com", PasswordHash: "x", Name: "Teacher", Role: model.RoleMember,
	}
	studentUser := &model.User{
		Email: "it-student-acct@example.com", PasswordHash: "x", Name: "Student", Role: model.RoleMember,
	}
	plainUser := &model.User{
		Email: "it-plain@example.com", PasswordHash: "x", Name: "Plain", Role: model.RoleMember,
	}
	for _, u := range []*model.User{adminUser, teacherUser, studentUser, plainUser} {
		if err := ctx.db.Create(u).Error; err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		defer ctx.db.Unscoped().Delete(u)
	}

	if err := ctx.db.Model(ctx.teacher).Update("user_id", teacherUser.ID).Error; err != nil {
		t.Fatalf("failed to link teacher: %v", err)
	}
	if err := ctx.db.Model(ctx.alice).Update("user_id", studentUser.ID).Error; err != nil {
		t.Fatalf("failed to link student: %v", err)
	}

	p, err := middleware.ResolvePrincipal(ctx.db, adminUser)
	if err != nil || !p.IsAdmin() {
		t.Errorf("admin account resolved to %v (err %v)", p.Role, err)
	}

	p, err = middleware.ResolvePrincipal(ctx.db, teacherUser)
	if err != nil || !p.IsTeacher() {
		t.Fatalf("teacher account resolved to %v (err %v)", p.Role, err)
	}
	if !p.CanManageCourse(ctx.course.ID) {
		t.Error("linked teacher should manage their assigned course")
	}
	if p.CanManageCourse(ctx.course.ID + 1000) {
		t.Error("linked teacher must not manage other courses")
	}

	p, err = middleware.ResolvePrincipal(ctx.db, studentUser)
	if err != nil || !p.IsStudent() {
		t.Fatalf("student account resolved to %v (err %v)", p.Role, err)
	}
	if p.Student.ID != ctx.alice.ID {
		t.Errorf("student principal links record %d, want %d", p.Student.ID, ctx.alice.ID)
	}

	p, err = middleware.ResolvePrincipal(ctx.db, plainUser)
	if err != nil || p.Role != middleware.RoleUnaffiliated {
		t.Errorf("plain account resolved to %v (err %v), want unaffiliated", p.Role, err)
	}
}
