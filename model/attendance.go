package model

import (
	"time"

	"gorm.io/datatypes"
)

// AttendanceStatus is the daily attendance state of a student in a course
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
)

// Valid reports whether the status is one of the allowed values
func (s AttendanceStatus) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Attendance records a single Present/Absent entry for a student in a course
// on a given date. One entry per (student, course, date), hard-deleted so the
// ON CONFLICT upsert can infer the composite index.
type Attendance struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	StudentID uint             `gorm:"not null;uniqueIndex:idx_attendance_entry" json:"student_id"`
	CourseID  uint             `gorm:"not null;uniqueIndex:idx_attendance_entry" json:"course_id"`
	Date      datatypes.Date   `gorm:"not null;uniqueIndex:idx_attendance_entry" json:"date"`
	Status    AttendanceStatus `gorm:"type:varchar(10);not null" json:"status"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Course  Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
