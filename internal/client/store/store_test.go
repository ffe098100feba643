package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"simia-portal/internal/client/api"
	"simia-portal/internal/client/localstore"
)

type recordedToast struct {
	level   string
	title   string
	message string
}

type recordingNotifier struct {
	toasts []recordedToast
}

func (n *recordingNotifier) Info(title, message string) {
	n.toasts = append(n.toasts, recordedToast{"info", title, message})
}

func (n *recordingNotifier) Error(title, message string) {
	n.toasts = append(n.toasts, recordedToast{"error", title, message})
}

func (n *recordingNotifier) hasError(title string) bool {
	for _, toast := range n.toasts {
		if toast.level == "error" && toast.title == title {
			return true
		}
	}
	return false
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": errMsg == "",
		"message": "",
		"data":    data,
		"error":   errMsg,
	})
}

func newTestStore(t *testing.T, serverURL string) (*Store, *recordingNotifier, *localstore.Store) {
	t.Helper()
	local, err := localstore.Open(filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatalf("open localstore: %v", err)
	}
	t.Cleanup(func() { _ = local.Close() })

	notifier := &recordingNotifier{}
	s, err := New(local, api.New(serverURL), notifier)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	s.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }
	counter := 0
	s.newID = func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	return s, notifier, local
}

func loginLocally(s *Store, userID string) {
	s.currentUser = &User{ID: userID, Username: "admin", Name: "Anand (Admin)", Role: "admin"}
	s.api.SetToken("test-token")
}

func TestHydrationSeedsDefaults(t *testing.T) {
	s, _, _ := newTestStore(t, "http://unused")

	if len(s.Users()) != 7 {
		t.Errorf("seeded %d users, want 7", len(s.Users()))
	}
	if len(s.Tasks()) != 7 {
		t.Errorf("seeded %d tasks, want 7", len(s.Tasks()))
	}
	if s.CurrentUser() != nil {
		t.Error("fresh store has a current user")
	}
}

func TestStatusMapping(t *testing.T) {
	cases := map[string]string{
		"PENDING":     "pending",
		"IN_PROGRESS": "in-progress",
		"COMPLETED":   "completed",
		"CANCELLED":   "cancelled",
	}
	for server, client := range cases {
		if got := ToClientStatus(server); got != client {
			t.Errorf("ToClientStatus(%q) = %q, want %q", server, got, client)
		}
		if got := ToServerStatus(client); got != server {
			t.Errorf("ToServerStatus(%q) = %q, want %q", client, got, server)
		}
	}
}

func TestLoginStoresSessionAndRemapsTasks(t *testing.T) {
	due := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	assignee := "srv-user-2"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			writeEnvelope(w, 200, map[string]interface{}{
				"token": "issued-token",
				"user": map[string]interface{}{
					"id": "srv-user-1", "username": "admin", "name": "Anand (Admin)", "role": "admin",
				},
			}, "")
		case "/api/tasks":
			writeEnvelope(w, 200, []api.ServerTask{{
				ID: "srv-task-1", Title: "Life Policy Renewal", Status: "IN_PROGRESS",
				DueDate: &due, AssignedTo: &assignee, CreatedBy: "srv-user-1",
			}}, "")
		default:
			writeEnvelope(w, 404, nil, "not found")
		}
	}))
	defer server.Close()

	s, _, local := newTestStore(t, server.URL)

	user, err := s.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != "srv-user-1" {
		t.Errorf("user ID = %q, want srv-user-1", user.ID)
	}

	raw, found, err := local.GetRaw(localstore.KeyToken)
	if err != nil || !found {
		t.Fatalf("token not persisted (found=%v err=%v)", found, err)
	}
	if string(raw) != "issued-token" {
		t.Errorf("persisted token = %q", raw)
	}

	tasks := s.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks after login, want 1", len(tasks))
	}
	got := tasks[0]
	if got.Status != StatusInProgress {
		t.Errorf("status = %q, want %q", got.Status, StatusInProgress)
	}
	if got.Date != "2024-07-01" {
		t.Errorf("date = %q, want 2024-07-01", got.Date)
	}
	if got.AssigneeID != "srv-user-2" || got.CreatorID != "srv-user-1" {
		t.Errorf("assignee/creator = %q/%q", got.AssigneeID, got.CreatorID)
	}
}

func TestLoginKeepsSessionWhenTaskFetchFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login" {
			writeEnvelope(w, 200, map[string]interface{}{
				"token": "issued-token",
				"user":  map[string]interface{}{"id": "srv-user-1", "username": "admin", "name": "Anand", "role": "admin"},
			}, "")
			return
		}
		writeEnvelope(w, 500, nil, "database unavailable")
	}))
	defer server.Close()

	s, _, _ := newTestStore(t, server.URL)
	before := len(s.Tasks())

	user, err := s.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("Login should survive a failed task fetch: %v", err)
	}
	if user == nil || s.api.Token() != "issued-token" {
		t.Error("session was not kept")
	}
	if len(s.Tasks()) != before {
		t.Error("stale tasks were dropped on a failed fetch")
	}
}

func TestAddTaskNotifiesAssignee(t *testing.T) {
	var received api.TaskPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		description := received.Description
		writeEnvelope(w, 201, api.ServerTask{
			ID: "srv-task-9", Title: received.Title, Status: received.Status,
			Description: &description, AssignedTo: received.AssignedTo, CreatedBy: "actor-1",
		}, "")
	}))
	defer server.Close()

	s, _, _ := newTestStore(t, server.URL)
	loginLocally(s, "actor-1")
	before := len(s.Tasks())

	task, err := s.AddTask(context.Background(), AddTaskInput{
		Title:      "Vehicle Inspection",
		AssigneeID: "other-user",
		Status:     StatusInProgress,
	})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if received.Status != "IN_PROGRESS" {
		t.Errorf("payload status = %q, want IN_PROGRESS", received.Status)
	}
	if task.Status != StatusInProgress {
		t.Errorf("mirrored status = %q, want %q", task.Status, StatusInProgress)
	}
	if len(s.Tasks()) != before+1 {
		t.Errorf("task list grew by %d, want 1", len(s.Tasks())-before)
	}

	notifs := s.NotificationsFor("other-user")
	if len(notifs) != 1 {
		t.Fatalf("assignee has %d notifications, want 1", len(notifs))
	}
	if notifs[0].Type != NotifAssignment {
		t.Errorf("notification type = %q, want %q", notifs[0].Type, NotifAssignment)
	}
}

// Creation notifies the assignee even when the actor assigned the task
// to themselves; only status changes exempt the acting user.
func TestAddTaskSelfAssignmentStillNotifies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload api.TaskPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		writeEnvelope(w, 201, api.ServerTask{
			ID: "srv-task-9", Title: payload.Title, Status: payload.Status,
			AssignedTo: payload.AssignedTo, CreatedBy: "actor-1",
		}, "")
	}))
	defer server.Close()

	s, _, _ := newTestStore(t, server.URL)
	loginLocally(s, "actor-1")

	if _, err := s.AddTask(context.Background(), AddTaskInput{Title: "Self work", AssigneeID: "actor-1"}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	notifs := s.NotificationsFor("actor-1")
	if len(notifs) != 1 {
		t.Fatalf("task created with assignee produced %d notifications, want 1", len(notifs))
	}
	if notifs[0].Type != NotifAssignment {
		t.Errorf("notification type = %q, want %q", notifs[0].Type, NotifAssignment)
	}
}

func TestAddTaskUnassignedIsSilent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload api.TaskPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		writeEnvelope(w, 201, api.ServerTask{
			ID: "srv-task-9", Title: payload.Title, Status: payload.Status, CreatedBy: "actor-1",
		}, "")
	}))
	defer server.Close()

	s, _, _ := newTestStore(t, server.URL)
	loginLocally(s, "actor-1")

	if _, err := s.AddTask(context.Background(), AddTaskInput{Title: "Unassigned work"}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if notifs := s.NotificationsFor("actor-1"); len(notifs) != 0 {
		t.Errorf("unassigned task produced %d notifications, want 0", len(notifs))
	}
}

func TestAddTaskUnauthorizedClearsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 401, nil, "No token provided")
	}))
	defer server.Close()

	s, notifier, local := newTestStore(t, server.URL)
	loginLocally(s, "actor-1")
	_ = local.SetRaw(localstore.KeyToken, []byte("test-token"))

	if _, err := s.AddTask(context.Background(), AddTaskInput{Title: "x"}); err == nil {
		t.Fatal("AddTask succeeded against a 401 server")
	}

	if s.api.Token() != "" {
		t.Error("token not cleared after 401")
	}
	if _, found, _ := local.GetRaw(localstore.KeyToken); found {
		t.Error("persisted token not removed after 401")
	}
	if !notifier.hasError("Session Expired") {
		t.Error("no Session Expired toast")
	}
}

func TestAddTaskRequiresLogin(t *testing.T) {
	s, _, _ := newTestStore(t, "http://unused")

	if _, err := s.AddTask(context.Background(), AddTaskInput{Title: "x"}); err != ErrNotLoggedIn {
		t.Errorf("AddTask while logged out = %v, want ErrNotLoggedIn", err)
	}
}

func TestUpdateTaskStatusIsLocalOnly(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeEnvelope(w, 500, nil, "should not be called")
	}))
	defer server.Close()

	s, _, _ := newTestStore(t, server.URL)
	loginLocally(s, "1")

	// Seed task t1 is assigned to user 2
	if err := s.UpdateTaskStatus("t1", StatusCompleted); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	if requests != 0 {
		t.Errorf("status update hit the server %d times, want 0", requests)
	}

	var updated *Task
	for i := range s.Tasks() {
		if s.Tasks()[i].ID == "t1" {
			updated = &s.Tasks()[i]
		}
	}
	if updated == nil || updated.Status != StatusCompleted {
		t.Fatalf("task t1 not updated: %+v", updated)
	}

	notifs := s.NotificationsFor("2")
	if len(notifs) != 1 || notifs[0].Type != NotifStatus {
		t.Fatalf("assignee notifications = %+v, want one status notification", notifs)
	}
}

func TestUpdateTaskStatusOwnTaskIsSilent(t *testing.T) {
	s, _, _ := newTestStore(t, "http://unused")
	loginLocally(s, "2")

	// t1 is assigned to the actor, user 2
	if err := s.UpdateTaskStatus("t1", StatusCompleted); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	if notifs := s.NotificationsFor("2"); len(notifs) != 0 {
		t.Errorf("own-task update produced %d notifications, want 0", len(notifs))
	}
}

func TestUpdateTaskStatusNoChangeNoNotification(t *testing.T) {
	s, _, _ := newTestStore(t, "http://unused")
	loginLocally(s, "1")

	// t1 is already in-progress
	if err := s.UpdateTaskStatus("t1", StatusInProgress); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	if notifs := s.NotificationsFor("2"); len(notifs) != 0 {
		t.Errorf("no-op update produced %d notifications, want 0", len(notifs))
	}
}

func TestUpdateTaskStatusValidation(t *testing.T) {
	s, _, _ := newTestStore(t, "http://unused")
	loginLocally(s, "1")

	if err := s.UpdateTaskStatus("t1", "done"); err != ErrInvalidStatus {
		t.Errorf("invalid status = %v, want ErrInvalidStatus", err)
	}
	if err := s.UpdateTaskStatus("no-such-task", StatusPending); err != ErrTaskNotFound {
		t.Errorf("missing task = %v, want ErrTaskNotFound", err)
	}
}

func TestAddUserWelcomesNewcomer(t *testing.T) {
	s, _, _ := newTestStore(t, "http://unused")

	user, err := s.AddUser(AddUserInput{Username: "newbie", Name: "New Hire"})
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if user.Role != "employee" {
		t.Errorf("default role = %q, want employee", user.Role)
	}
	if user.Avatar != "https://api.dicebear.com/7.x/avataaars/svg?seed=newbie" {
		t.Errorf("avatar = %q", user.Avatar)
	}

	notifs := s.NotificationsFor(user.ID)
	if len(notifs) != 1 || notifs[0].Type != NotifSystem {
		t.Fatalf("welcome notifications = %+v", notifs)
	}
}

func TestMarkNotificationsRead(t *testing.T) {
	s, _, _ := newTestStore(t, "http://unused")
	loginLocally(s, "1")

	for i := 0; i < 3; i++ {
		if err := s.pushNotification("2", "hello", NotifSystem); err != nil {
			t.Fatalf("pushNotification: %v", err)
		}
	}
	if err := s.pushNotification("3", "other user", NotifSystem); err != nil {
		t.Fatalf("pushNotification: %v", err)
	}

	first := s.NotificationsFor("2")[0]
	if err := s.MarkNotificationAsRead("2", first.ID); err != nil {
		t.Fatalf("MarkNotificationAsRead: %v", err)
	}
	unread := 0
	for _, n := range s.NotificationsFor("2") {
		if !n.Read {
			unread++
		}
	}
	if unread != 2 {
		t.Errorf("unread after single mark = %d, want 2", unread)
	}

	// Marking with the wrong owner must be a no-op on a still-unread one
	second := s.NotificationsFor("2")[1]
	if second.Read {
		t.Fatal("expected an unread notification at index 1")
	}
	if err := s.MarkNotificationAsRead("3", second.ID); err != nil {
		t.Fatalf("MarkNotificationAsRead: %v", err)
	}
	if s.NotificationsFor("2")[1].Read {
		t.Error("wrong-owner mark changed the notification")
	}

	if err := s.MarkAllNotificationsAsRead("2"); err != nil {
		t.Fatalf("MarkAllNotificationsAsRead: %v", err)
	}
	for _, n := range s.NotificationsFor("2") {
		if !n.Read {
			t.Error("notification still unread after mark-all")
		}
	}
	for _, n := range s.NotificationsFor("3") {
		if n.Read {
			t.Error("mark-all leaked to another user")
		}
	}
}

func TestStatePersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.db")
	local, err := localstore.Open(path)
	if err != nil {
		t.Fatalf("open localstore: %v", err)
	}

	s, err := New(local, api.New("http://unused"), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	user, err := s.AddUser(AddUserInput{Username: "newbie", Name: "New Hire"})
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if err := local.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := localstore.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	s2, err := New(reopened, api.New("http://unused"), nil)
	if err != nil {
		t.Fatalf("reload store: %v", err)
	}
	found := false
	for _, u := range s2.Users() {
		if u.ID == user.ID && u.Username == "newbie" {
			found = true
		}
	}
	if !found {
		t.Error("added user did not survive reload")
	}
	if len(s2.NotificationsFor(user.ID)) != 1 {
		t.Error("welcome notification did not survive reload")
	}
}
