package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Student represents an enrolled student. The UserID link is optional: a
// student record can exist before an account is provisioned for it, and at
// most one student can be linked to a given account.
type Student struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    *uint          `gorm:"index:idx_students_user_id,unique,where:deleted_at IS NULL" json:"user_id,omitempty"`
	FullName  string         `gorm:"not null" json:"full_name"`
	RollNo    string         `gorm:"index:idx_students_roll_no,unique,where:deleted_at IS NULL;not null" json:"roll_number"`
	Email     string         `gorm:"not null" json:"email"`
	CourseID  *uint          `gorm:"index" json:"course_id,omitempty"`
	DOB       *datatypes.Date `json:"dob,omitempty"`
	PhotoURL  string         `gorm:"type:varchar(512)" json:"photo_url,omitempty"`
	PhotoKey  string         `gorm:"type:varchar(255)" json:"-"` // object storage key

	// Relationships
	User       *User        `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Course     *Course      `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Attendance []Attendance `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Marks      []Mark       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}
