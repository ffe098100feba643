package services

import (
	"context"
	"log"
	"time"

	"simia-portal/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// retention period for soft-deleted tasks before the weekly purge removes
// them for good
const deletedTaskRetention = 30 * 24 * time.Hour

// CronService runs scheduled maintenance jobs: a daily due-task reminder
// sweep and a weekly purge of old soft-deleted tasks.
type CronService struct {
	taskRepo repositories.TaskRepository
	cron     *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(taskRepo repositories.TaskRepository) *CronService {
	return &CronService{
		taskRepo: taskRepo,
		cron:     cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() {
	// Due-task reminder sweep at 08:30 daily
	if _, err := s.cron.AddFunc("30 8 * * *", s.remindDueTasks); err != nil {
		log.Printf("❌ Failed to schedule reminder job: %v", err)
	}

	// Purge old soft-deleted tasks on Sunday 03:00
	if _, err := s.cron.AddFunc("0 3 * * 0", s.purgeDeletedTasks); err != nil {
		log.Printf("❌ Failed to schedule purge job: %v", err)
	}

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop gracefully stops the scheduler
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

// remindDueTasks logs every task due today so operators can chase them up
func (s *CronService) remindDueTasks() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24 * time.Hour)

	tasks, err := s.taskRepo.ListDueBetween(ctx, start, end)
	if err != nil {
		log.Printf("❌ Due-task sweep failed: %v", err)
		return
	}

	for _, task := range tasks {
		assignee := "unassigned"
		if task.AssignedTo != nil {
			assignee = *task.AssignedTo
		}
		log.Printf("⏰ Task due today: %q [%s] assignee=%s", task.Title, task.Status, assignee)
	}

	if len(tasks) > 0 {
		log.Printf("⏰ %d task(s) due today", len(tasks))
	}
}

// purgeDeletedTasks hard deletes tasks soft-deleted longer ago than the
// retention period
func (s *CronService) purgeDeletedTasks() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-deletedTaskRetention)
	purged, err := s.taskRepo.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("❌ Purge job failed: %v", err)
		return
	}

	if purged > 0 {
		log.Printf("🗑️ Purged %d soft-deleted task(s)", purged)
	}
}
