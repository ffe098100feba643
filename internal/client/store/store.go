// Package store keeps a local mirror of server state and synthesizes
// user-facing notifications from mutations.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"simia-portal/internal/client/api"
	"simia-portal/internal/client/localstore"
)

// Client-side task statuses. These are the lower-kebab forms of the
// server's enum.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Notification types
const (
	NotifAssignment = "assignment"
	NotifStatus     = "status"
	NotifSystem     = "system"
)

var (
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid status")
)

// Task is the client-side task shape
type Task struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PolicyNumber string `json:"policyNumber,omitempty"`
	Date         string `json:"date"`
	AssigneeID   string `json:"assigneeId"`
	CreatorID    string `json:"creatorId"`
	Status       string `json:"status"`
}

// User is the client-side user shape
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
}

// Notification is synthesized locally, never fetched
type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
	Type      string `json:"type"`
}

// Notifier surfaces toasts to the user
type Notifier interface {
	Info(title, message string)
	Error(title, message string)
}

// noopNotifier is used when no notifier is wired
type noopNotifier struct{}

func (noopNotifier) Info(string, string)  {}
func (noopNotifier) Error(string, string) {}

// Store holds the mirrored state and persists every mutation
type Store struct {
	local    *localstore.Store
	api      *api.Client
	notifier Notifier

	currentUser   *User
	users         []User
	tasks         []Task
	notifications []Notification

	// injectable for tests
	now   func() time.Time
	newID func() string
}

// New hydrates a store from the local database, falling back to the
// bundled sample data when nothing is persisted yet.
func New(local *localstore.Store, apiClient *api.Client, notifier Notifier) (*Store, error) {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	s := &Store{
		local:    local,
		api:      apiClient,
		notifier: notifier,
		now:      time.Now,
		newID:    randomID,
	}
	if err := s.hydrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ToClientStatus maps a server status (upper snake) to the client form
func ToClientStatus(serverStatus string) string {
	return strings.ReplaceAll(strings.ToLower(serverStatus), "_", "-")
}

// ToServerStatus maps a client status (lower kebab) to the server form
func ToServerStatus(clientStatus string) string {
	return strings.ReplaceAll(strings.ToUpper(clientStatus), "-", "_")
}

func validClientStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// randomID mints a 9-char base36 identifier for local records
func randomID() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, 9)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

func (s *Store) hydrate() error {
	var user User
	found, err := s.local.Get(localstore.KeyUser, &user)
	if err != nil {
		return err
	}
	if found {
		s.currentUser = &user
	}

	token, ok, err := s.local.GetRaw(localstore.KeyToken)
	if err != nil {
		return err
	}
	if ok && len(token) > 0 {
		s.api.SetToken(string(token))
	}

	found, err = s.local.Get(localstore.KeyUsers, &s.users)
	if err != nil {
		return err
	}
	if !found || len(s.users) == 0 {
		s.users = DefaultUsers()
		if err := s.local.Set(localstore.KeyUsers, s.users); err != nil {
			return err
		}
	}

	found, err = s.local.Get(localstore.KeyTasks, &s.tasks)
	if err != nil {
		return err
	}
	if !found {
		s.tasks = DefaultTasks(s.now())
		if err := s.local.Set(localstore.KeyTasks, s.tasks); err != nil {
			return err
		}
	}

	if _, err := s.local.Get(localstore.KeyNotifications, &s.notifications); err != nil {
		return err
	}
	return nil
}

// CurrentUser returns the logged-in user, nil when logged out
func (s *Store) CurrentUser() *User {
	return s.currentUser
}

// Users returns the roster
func (s *Store) Users() []User {
	return s.users
}

// Tasks returns the mirrored task list
func (s *Store) Tasks() []Task {
	return s.tasks
}

// NotificationsFor returns notifications addressed to the given user,
// newest first
func (s *Store) NotificationsFor(userID string) []Notification {
	var out []Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].UserID == userID {
			out = append(out, s.notifications[i])
		}
	}
	return out
}

func (s *Store) userByID(id string) *User {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}

// remapTask converts a server task record to the client shape
func remapTask(t api.ServerTask) Task {
	task := Task{
		ID:        t.ID,
		Title:     t.Title,
		CreatorID: t.CreatedBy,
		Status:    ToClientStatus(t.Status),
	}
	if t.Description != nil {
		task.Description = *t.Description
	}
	if t.PolicyNumber != nil {
		task.PolicyNumber = *t.PolicyNumber
	}
	if t.DueDate != nil {
		task.Date = t.DueDate.Format("2006-01-02")
	}
	if t.AssignedTo != nil {
		task.AssigneeID = *t.AssignedTo
	}
	return task
}

func remapUser(u api.ServerUser) User {
	user := User{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
	}
	if u.Avatar != nil {
		user.Avatar = *u.Avatar
	}
	return user
}

// mergeUser inserts or replaces a user in the roster by id
func (s *Store) mergeUser(u User) {
	for i := range s.users {
		if s.users[i].ID == u.ID {
			s.users[i] = u
			return
		}
	}
	s.users = append(s.users, u)
}

func (s *Store) persistTasks() error {
	return s.local.Set(localstore.KeyTasks, s.tasks)
}

func (s *Store) persistUsers() error {
	return s.local.Set(localstore.KeyUsers, s.users)
}

func (s *Store) persistNotifications() error {
	return s.local.Set(localstore.KeyNotifications, s.notifications)
}

// pushNotification records a notification for the given user
func (s *Store) pushNotification(userID, message, notifType string) error {
	s.notifications = append(s.notifications, Notification{
		ID:        s.newID(),
		UserID:    userID,
		Message:   message,
		Read:      false,
		CreatedAt: s.now().Format(time.RFC3339),
		Type:      notifType,
	})
	return s.persistNotifications()
}

// Login authenticates against the server, then refreshes the local
// mirror. A failed task fetch after a successful login is non-fatal:
// the session is kept and stale local tasks remain visible.
func (s *Store) Login(ctx context.Context, username, password string) (*User, error) {
	result, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.api.SetToken(result.Token)
	if err := s.local.SetRaw(localstore.KeyToken, []byte(result.Token)); err != nil {
		return nil, err
	}

	user := remapUser(result.User)
	s.currentUser = &user
	if err := s.local.Set(localstore.KeyUser, user); err != nil {
		return nil, err
	}
	s.mergeUser(user)
	if err := s.persistUsers(); err != nil {
		return nil, err
	}

	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		log.Printf("⚠️ Could not refresh tasks after login: %v", err)
		s.notifier.Info("Offline Data", "Could not refresh tasks; showing cached data.")
		return &user, nil
	}
	s.tasks = make([]Task, 0, len(tasks))
	for _, t := range tasks {
		s.tasks = append(s.tasks, remapTask(t))
	}
	if err := s.persistTasks(); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout drops the session but keeps the mirrored data
func (s *Store) Logout() error {
	s.currentUser = nil
	s.api.ClearToken()
	if err := s.local.Delete(localstore.KeyUser); err != nil {
		return err
	}
	return s.local.Delete(localstore.KeyToken)
}

// RefreshUsers pulls the roster from the server
func (s *Store) RefreshUsers(ctx context.Context) error {
	serverUsers, err := s.api.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range serverUsers {
		s.mergeUser(remapUser(u))
	}
	return s.persistUsers()
}

// AddTaskInput is the client-side task creation form
type AddTaskInput struct {
	Title        string
	Description  string
	PolicyNumber string
	Date         string
	AssigneeID   string
	Status       string
	Amount       *float64
}

// AddTask creates the task on the server and mirrors the result. On a
// 401 the stored token is cleared so the next action forces a fresh
// login.
func (s *Store) AddTask(ctx context.Context, input AddTaskInput) (*Task, error) {
	if s.currentUser == nil || s.api.Token() == "" {
		s.notifier.Error("Login Required", "Please log in to create tasks.")
		return nil, ErrNotLoggedIn
	}
	status := input.Status
	if status == "" {
		status = StatusPending
	}
	if !validClientStatus(status) {
		return nil, ErrInvalidStatus
	}

	payload := api.TaskPayload{
		Title:       input.Title,
		Description: input.Description,
		Status:      ToServerStatus(status),
		CreatedBy:   s.currentUser.ID,
		Amount:      input.Amount,
	}
	if input.Date != "" {
		date := input.Date
		payload.DueDate = &date
	}
	if input.AssigneeID != "" {
		assignee := input.AssigneeID
		payload.AssignedTo = &assignee
	}
	if input.PolicyNumber != "" {
		policy := input.PolicyNumber
		payload.PolicyNumber = &policy
	}

	created, err := s.api.CreateTask(ctx, payload)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
			s.api.ClearToken()
			if delErr := s.local.Delete(localstore.KeyToken); delErr != nil {
				return nil, delErr
			}
			s.notifier.Error("Session Expired", "Please log in again.")
		} else {
			s.notifier.Error("Task Creation Failed", err.Error())
		}
		return nil, err
	}

	task := remapTask(*created)
	s.tasks = append(s.tasks, task)
	if err := s.persistTasks(); err != nil {
		return nil, err
	}

	// Creation always notifies the assignee, even when they created the
	// task themselves. Only status changes skip the acting user.
	if task.AssigneeID != "" {
		message := fmt.Sprintf("You have been assigned a new task: %s", task.Title)
		if err := s.pushNotification(task.AssigneeID, message, NotifAssignment); err != nil {
			return nil, err
		}
	}
	s.notifier.Info("Task Created", task.Title)
	return &task, nil
}

// UpdateTaskStatus changes a task's status in the local mirror only.
// When someone else's task changes, the assignee gets a notification.
func (s *Store) UpdateTaskStatus(taskID, status string) error {
	if s.currentUser == nil {
		return ErrNotLoggedIn
	}
	if !validClientStatus(status) {
		return ErrInvalidStatus
	}
	for i := range s.tasks {
		if s.tasks[i].ID != taskID {
			continue
		}
		previous := s.tasks[i].Status
		if previous == status {
			return nil
		}
		s.tasks[i].Status = status
		if err := s.persistTasks(); err != nil {
			return err
		}
		assignee := s.tasks[i].AssigneeID
		if assignee != "" && assignee != s.currentUser.ID {
			message := fmt.Sprintf("Task %q was marked %s by %s", s.tasks[i].Title, status, s.currentUser.Name)
			if err := s.pushNotification(assignee, message, NotifStatus); err != nil {
				return err
			}
		}
		return nil
	}
	return ErrTaskNotFound
}

// AddUserInput is the client-side user creation form
type AddUserInput struct {
	Username string
	Name     string
	Role     string
}

// AddUser adds a user to the local roster and greets them. Server-side
// account creation is an admin API concern, separate from the mirror.
func (s *Store) AddUser(input AddUserInput) (*User, error) {
	role := input.Role
	if role == "" {
		role = "employee"
	}
	user := User{
		ID:       s.newID(),
		Username: input.Username,
		Name:     input.Name,
		Role:     role,
		Avatar:   avatarFor(input.Username),
	}
	s.mergeUser(user)
	if err := s.persistUsers(); err != nil {
		return nil, err
	}
	message := fmt.Sprintf("Welcome to SIMIA, %s!", user.Name)
	if err := s.pushNotification(user.ID, message, NotifSystem); err != nil {
		return nil, err
	}
	return &user, nil
}

// MarkNotificationAsRead marks one of the user's notifications read
func (s *Store) MarkNotificationAsRead(userID, notificationID string) error {
	for i := range s.notifications {
		if s.notifications[i].ID == notificationID && s.notifications[i].UserID == userID {
			s.notifications[i].Read = true
			return s.persistNotifications()
		}
	}
	return nil
}

// MarkAllNotificationsAsRead marks every notification for the user read
func (s *Store) MarkAllNotificationsAsRead(userID string) error {
	changed := false
	for i := range s.notifications {
		if s.notifications[i].UserID == userID && !s.notifications[i].Read {
			s.notifications[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.persistNotifications()
}
