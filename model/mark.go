package model

import (
	"time"
)

// Mark is the single authoritative mark for a student in a course. The
// composite unique index backs the ON CONFLICT upsert in the marks workflow,
// so concurrent submissions for the same pair cannot produce duplicate rows.
// Marks are hard-deleted: ON CONFLICT infers the plain composite index, which
// a soft-delete ghost row would break.
type Mark struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	StudentID     uint      `gorm:"not null;uniqueIndex:idx_marks_student_course" json:"student_id"`
	CourseID      uint      `gorm:"not null;uniqueIndex:idx_marks_student_course" json:"course_id"`
	MarksObtained float64   `gorm:"type:decimal(5,2);not null" json:"marks_obtained"`
	TotalMarks    float64   `gorm:"type:decimal(5,2);not null" json:"total_marks"`

	// Relationships
	Student Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Course  Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
