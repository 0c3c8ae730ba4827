package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/schoolhub/records-api/model"
	"github.com/schoolhub/records-api/utils/auth"
)

// CleanupTokenBlacklist removes expired entries from the JWT blacklist.
// Runs hourly.
func (m *CronManager) CleanupTokenBlacklist() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	jobName := "cleanup_token_blacklist"

	removed, err := auth.NewBlacklistService(m.db).CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to purge blacklist: %w", err))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d expired blacklist entries", removed))
}

// AttendanceDigest logs yesterday's Present/Absent totals per course. Runs
// daily at 2 AM.
func (m *CronManager) AttendanceDigest() {
	jobName := "attendance_digest"

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	type row struct {
		CourseID uint
		Code     string
		Status   model.AttendanceStatus
		Total    int64
	}
	var rows []row

	err := m.db.Table("attendances").
		Select("attendances.course_id, courses.code, attendances.status, COUNT(*) as total").
		Joins("JOIN courses ON courses.id = attendances.course_id").
		Where("attendances.date = ?", yesterday).
		Group("attendances.course_id, courses.code, attendances.status").
		Scan(&rows).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to aggregate attendance: %w", err))
		return
	}

	if len(rows) == 0 {
		m.logJobComplete(jobName, fmt.Sprintf("No attendance recorded for %s", yesterday))
		return
	}

	msg := fmt.Sprintf("Attendance for %s:", yesterday)
	for _, r := range rows {
		msg += fmt.Sprintf(" %s %s=%d", r.Code, r.Status, r.Total)
	}

	m.logJobComplete(jobName, msg)
}
