package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"simia-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type stubTaskRepo struct {
	tasks  map[string]*models.Task
	nextID int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*models.Task)}
}

func (r *stubTaskRepo) Create(_ context.Context, task *models.Task) error {
	r.nextID++
	task.ID = "task-" + string(rune('0'+r.nextID))
	r.tasks[task.ID] = task
	return nil
}

func (r *stubTaskRepo) GetByID(_ context.Context, id string) (*models.Task, error) {
	if t, ok := r.tasks[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTaskRepo) List(_ context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range r.tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.AssignedTo != "" && (t.AssignedTo == nil || *t.AssignedTo != filter.AssignedTo) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *stubTaskRepo) UpdateOwned(_ context.Context, id, creatorID string, updates map[string]interface{}) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.CreatedBy != creatorID {
		return nil, gorm.ErrRecordNotFound
	}
	if v, ok := updates["title"].(string); ok {
		t.Title = v
	}
	if v, ok := updates["status"].(string); ok {
		t.Status = v
	}
	return t, nil
}

func (r *stubTaskRepo) DeleteOwned(_ context.Context, id, creatorID string) error {
	t, ok := r.tasks[id]
	if !ok || t.CreatedBy != creatorID {
		return gorm.ErrRecordNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) ListDueBetween(_ context.Context, from, to time.Time) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range r.tasks {
		if t.DueDate != nil && !t.DueDate.Before(from) && t.DueDate.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *stubTaskRepo) PurgeDeletedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *stubTaskRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.tasks)), nil
}

func TestCreateForcesCreator(t *testing.T) {
	service := NewTaskService(newStubTaskRepo())

	task, err := service.Create(context.Background(), &CreateTaskInput{Title: "Policy Renewal"}, "user-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.CreatedBy != "user-1" {
		t.Errorf("CreatedBy = %q, want %q", task.CreatedBy, "user-1")
	}
	if task.Status != models.TaskStatusPending {
		t.Errorf("default status = %q, want %q", task.Status, models.TaskStatusPending)
	}
}

func TestCreateRejectsInvalidStatus(t *testing.T) {
	service := NewTaskService(newStubTaskRepo())

	_, err := service.Create(context.Background(), &CreateTaskInput{Title: "x", Status: "DONE"}, "user-1")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Create(bad status) = %v, want ErrInvalidStatus", err)
	}
}

// A non-creator caller gets the same not-found as a missing id.
func TestUpdateNonCreatorLooksLikeMissing(t *testing.T) {
	repo := newStubTaskRepo()
	service := NewTaskService(repo)

	created, err := service.Create(context.Background(), &CreateTaskInput{Title: "Claims Processing"}, "user-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "Hijacked"
	_, errOther := service.Update(context.Background(), created.ID, "user-2", &UpdateTaskInput{Title: &title})
	_, errMissing := service.Update(context.Background(), "no-such-task", "user-1", &UpdateTaskInput{Title: &title})

	if !errors.Is(errOther, ErrTaskNotFound) {
		t.Errorf("non-creator update = %v, want ErrTaskNotFound", errOther)
	}
	if !errors.Is(errMissing, ErrTaskNotFound) {
		t.Errorf("missing id update = %v, want ErrTaskNotFound", errMissing)
	}
	if repo.tasks[created.ID].Title != "Claims Processing" {
		t.Error("non-creator update modified the task")
	}
}

func TestDeleteScopedToCreator(t *testing.T) {
	repo := newStubTaskRepo()
	service := NewTaskService(repo)

	created, err := service.Create(context.Background(), &CreateTaskInput{Title: "Audit"}, "user-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := service.Delete(context.Background(), created.ID, "user-2"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("non-creator delete = %v, want ErrTaskNotFound", err)
	}
	if err := service.Delete(context.Background(), created.ID, "user-1"); err != nil {
		t.Errorf("creator delete = %v, want nil", err)
	}
	if _, ok := repo.tasks[created.ID]; ok {
		t.Error("task still present after creator delete")
	}
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	service := NewTaskService(newStubTaskRepo())

	created, err := service.Create(context.Background(), &CreateTaskInput{Title: "x"}, "user-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	bad := "done"
	if _, err := service.Update(context.Background(), created.ID, "user-1", &UpdateTaskInput{Status: &bad}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Update(bad status) = %v, want ErrInvalidStatus", err)
	}
}
