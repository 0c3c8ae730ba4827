package model

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a course students enrol in and teachers are assigned to
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Code        string         `gorm:"index:idx_courses_code,unique,where:deleted_at IS NULL;not null" json:"code"` // e.g., "CS101"
	Description string         `gorm:"type:text" json:"description"`

	// Relationships. Deleting a course detaches its students but removes
	// their attendance and marks for it.
	Students   []Student    `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL" json:"students,omitempty"`
	Teachers   []Teacher    `gorm:"many2many:teacher_courses;" json:"teachers,omitempty"`
	Attendance []Attendance `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Marks      []Mark       `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}
