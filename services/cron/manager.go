package cron

import (
	"log"

	"github.com/robfig/cron/v3"
	"github.com/schoolhub/records-api/model"
	"gorm.io/gorm"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron: c,
		db:   db,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Hourly: purge expired token blacklist entries
	_, err := m.cron.AddFunc("0 0 * * * *", func() {
		m.logJobStart("cleanup_token_blacklist")
		m.CleanupTokenBlacklist()
	})
	if err != nil {
		return err
	}

	// Daily at 2 AM: per-course attendance digest
	_, err = m.cron.AddFunc("0 0 2 * * *", func() {
		m.logJobStart("attendance_digest")
		m.AttendanceDigest()
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

func (m *CronManager) logJobStart(jobName string) {
	m.db.Create(&model.CronJobLog{JobName: jobName, Status: model.CronJobStarted})
}

func (m *CronManager) logJobComplete(jobName, message string) {
	m.db.Create(&model.CronJobLog{JobName: jobName, Status: model.CronJobCompleted, Message: message})
	log.Printf("[CRON] %s: %s", jobName, message)
}

func (m *CronManager) logJobError(jobName string, err error) {
	m.db.Create(&model.CronJobLog{JobName: jobName, Status: model.CronJobFailed, Message: err.Error()})
	log.Printf("[CRON] %s failed: %v", jobName, err)
}
