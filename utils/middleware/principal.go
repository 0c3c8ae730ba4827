package middleware

import (
	"github.com/schoolhub/records-api/model"
	"gorm.io/gorm"
)

// Role is the resolved role of an authenticated principal
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleTeacher      Role = "teacher"
	RoleStudent      Role = "student"
	RoleUnaffiliated Role = "unaffiliated"
)

// Principal is the authenticated actor making the request, with its role
// resolved exactly once from the account and its linked records. Handlers
// read it from Locals instead of re-querying for teacher/student links.
type Principal struct {
	UserID uint
	Email  string
	Name   string
	Role   Role

	// Set when Role is RoleTeacher. AssignedCourses is preloaded.
	Teacher *model.Teacher
	// Set when Role is RoleStudent.
	Student *model.Student
}

// IsAdmin reports whether the principal has superuser privilege
func (p *Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// IsTeacher reports whether the principal has a linked teacher record
func (p *Principal) IsTeacher() bool { return p.Role == RoleTeacher }

// IsStudent reports whether the principal has a linked student record
func (p *Principal) IsStudent() bool { return p.Role == RoleStudent }

// IsStaff reports whether the principal may use staff-only views
func (p *Principal) IsStaff() bool { return p.IsAdmin() || p.IsTeacher() }

// CanManageCourse reports whether the principal may enter marks or record
// attendance for the course: admins always, teachers only for courses in
// their assigned set.
func (p *Principal) CanManageCourse(courseID uint) bool {
	if p.IsAdmin() {
		return true
	}
	if p.IsTeacher() && p.Teacher != nil {
		return p.Teacher.IsAssignedTo(courseID)
	}
	return false
}

// ResolvePrincipal derives the principal from an account. Admin wins over a
// linked teacher record, which wins over a linked student record; a plain
// account with no links is unaffiliated (it still gets a dashboard, never an
// error).
func ResolvePrincipal(db *gorm.DB, user *model.User) (*Principal, error) {
	p := &Principal{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   RoleUnaffiliated,
	}

	if user.Role == model.RoleAdmin {
		p.Role = RoleAdmin
		return p, nil
	}

	var teacher model.Teacher
	err := db.Preload("AssignedCourses").Where("user_id = ?", user.ID).First(&teacher).Error
	if err == nil {
		p.Role = RoleTeacher
		p.Teacher = &teacher
		return p, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var student model.Student
	err = db.Where("user_id = ?", user.ID).First(&student).Error
	if err == nil {
		p.Role = RoleStudent
		p.Student = &student
		return p, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	return p, nil
}
