package model

import (
	"time"
)

// Cron job statuses
const (
	CronJobStarted   = "started"
	CronJobCompleted = "completed"
	CronJobFailed    = "failed"
)

// CronJobLog records each scheduled-job run for operational visibility
type CronJobLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobName   string    `gorm:"type:varchar(100);index;not null" json:"job_name"`
	Status    string    `gorm:"type:varchar(20);not null" json:"status"`
	Message   string    `gorm:"type:text" json:"message"`
}
