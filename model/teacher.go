package model

import (
	"time"

	"gorm.io/gorm"
)

// Teacher represents a teaching staff member assigned to zero or more courses
type Teacher struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    *uint          `gorm:"index:idx_teachers_user_id,unique,where:deleted_at IS NULL" json:"user_id,omitempty"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null" json:"email"`

	// Relationships
	User            *User    `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	AssignedCourses []Course `gorm:"many2many:teacher_courses;" json:"assigned_courses,omitempty"`
}

// IsAssignedTo reports whether the teacher is assigned to the given course.
// AssignedCourses must be preloaded.
func (t *Teacher) IsAssignedTo(courseID uint) bool {
	for _, c := range t.AssignedCourses {
		if c.ID == courseID {
			return true
		}
	}
	return false
}
