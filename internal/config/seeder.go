package config

import (
	"fmt"
	"log"
	"time"

	"simia-portal/internal/adapters/persistence/models"
	"simia-portal/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedUsers(); err != nil {
		log.Printf("⚠️ User seeder skipped: %v", err)
	}
	if err := s.seedTasks(); err != nil {
		log.Printf("⚠️ Task seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

func avatarFor(username string) *string {
	uri := "https://api.dicebear.com/7.x/avataaars/svg?seed=" + username
	return &uri
}

// seedUsers seeds the admin account plus the staff roster.
// Admin credentials can be overridden via SEED_ADMIN_* env vars; in
// production create the admin through a secure process instead.
func (s *Seeder) seedUsers() error {
	var count int64
	s.db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil // Users already seeded
	}

	adminUsername := getEnv("SEED_ADMIN_USERNAME", "admin")
	adminPassword := getEnv("SEED_ADMIN_PASSWORD", "admin123")
	adminName := getEnv("SEED_ADMIN_NAME", "Anand (Admin)")

	hashed, err := password.Hash(adminPassword)
	if err != nil {
		return err
	}

	users := []*models.User{
		{Username: adminUsername, Password: hashed, Role: models.RoleAdmin, Name: adminName, Avatar: avatarFor(adminUsername)},
		{Username: "jurgern", Name: "Jurgern"},
		{Username: "marion", Name: "Marion"},
		{Username: "jesse", Name: "Jesse"},
		{Username: "brian", Name: "Brian"},
		{Username: "julius", Name: "Julius"},
		{Username: "dominic", Name: "Dominic"},
	}

	for _, u := range users {
		if u.Role == "" {
			u.Role = models.RoleEmployee
		}
		if u.Avatar == nil {
			u.Avatar = avatarFor(u.Username)
		}
		if u.Password == "" {
			// Staff accounts start with a placeholder credential that the
			// admin rotates on onboarding.
			staffHash, err := password.Hash(u.Username + "2024!")
			if err != nil {
				return err
			}
			u.Password = staffHash
		}
		if err := s.db.Create(u).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	log.Printf("✅ Seeded %d users (admin: %s)", len(users), adminUsername)
	return nil
}

// seedTasks seeds a sample task board so a fresh install renders a
// non-empty calendar
func (s *Seeder) seedTasks() error {
	var count int64
	s.db.Model(&models.Task{}).Count(&count)
	if count > 0 {
		return nil // Tasks already seeded
	}

	byUsername := func(username string) (string, error) {
		var u models.User
		if err := s.db.Where("username = ?", username).First(&u).Error; err != nil {
			return "", fmt.Errorf("seed lookup %s: %w", username, err)
		}
		return u.ID, nil
	}

	admin, err := byUsername("admin")
	if err != nil {
		return err
	}
	jurgern, err := byUsername("jurgern")
	if err != nil {
		return err
	}
	marion, err := byUsername("marion")
	if err != nil {
		return err
	}
	jesse, err := byUsername("jesse")
	if err != nil {
		return err
	}
	brian, err := byUsername("brian")
	if err != nil {
		return err
	}
	julius, err := byUsername("julius")
	if err != nil {
		return err
	}
	dominic, err := byUsername("dominic")
	if err != nil {
		return err
	}

	now := time.Now()
	day := 24 * time.Hour
	strp := func(s string) *string { return &s }
	timep := func(t time.Time) *time.Time { return &t }

	tasks := []*models.Task{
		{
			Title:        "Life Policy Renewal",
			Description:  strp("Process renewal for client James Omondi"),
			Status:       models.TaskStatusInProgress,
			DueDate:      timep(now),
			AssignedTo:   &jurgern,
			CreatedBy:    admin,
			PolicyNumber: strp("POL-2024-001"),
		},
		{
			Title:        "New Client Meeting",
			Description:  strp("Initial consultation for comprehensive auto insurance"),
			Status:       models.TaskStatusPending,
			DueDate:      timep(now),
			AssignedTo:   &marion,
			CreatedBy:    admin,
			PolicyNumber: strp("PENDING"),
		},
		{
			Title:        "Claims Processing",
			Description:  strp("Review accident report and assess damages"),
			Status:       models.TaskStatusCompleted,
			DueDate:      timep(now.Add(day)),
			AssignedTo:   &jurgern,
			CreatedBy:    jurgern,
			PolicyNumber: strp("CLM-8823"),
		},
		{
			Title:       "Quarterly Sales Review",
			Description: strp("Review Q3 performance metrics"),
			Status:      models.TaskStatusPending,
			DueDate:     timep(now.Add(2 * day)),
			AssignedTo:  &jesse,
			CreatedBy:   admin,
		},
		{
			Title:        "Health Policy Audit",
			Description:  strp("Audit pending health insurance claims for Q2"),
			Status:       models.TaskStatusPending,
			DueDate:      timep(now.Add(2 * day)),
			AssignedTo:   &brian,
			CreatedBy:    admin,
			PolicyNumber: strp("AUDIT-2024-Q2"),
		},
		{
			Title:        "Client Onboarding - Sarah K.",
			Description:  strp("Complete KYC documents and finalize policy signing"),
			Status:       models.TaskStatusInProgress,
			DueDate:      timep(now.Add(3 * day)),
			AssignedTo:   &julius,
			CreatedBy:    admin,
			PolicyNumber: strp("NEW-2024-001"),
		},
		{
			Title:        "Vehicle Inspection Report",
			Description:  strp("Upload inspection photos for claimant #4421"),
			Status:       models.TaskStatusCompleted,
			DueDate:      timep(now.Add(-day)),
			AssignedTo:   &dominic,
			CreatedBy:    admin,
			PolicyNumber: strp("VEH-4421"),
		},
	}

	for _, t := range tasks {
		if err := s.db.Create(t).Error; err != nil {
			return fmt.Errorf("seed task %q: %w", t.Title, err)
		}
	}

	log.Printf("✅ Seeded %d tasks", len(tasks))
	return nil
}
