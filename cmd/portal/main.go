package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"simia-portal/internal/client/api"
	"simia-portal/internal/client/calendar"
	"simia-portal/internal/client/localstore"
	"simia-portal/internal/client/store"
)

const usage = `SIMIA Portal client

Usage:
  portal login -u <username> -p <password>
  portal logout
  portal tasks
  portal calendar [YYYY-MM]
  portal add-task -title <title> [-desc <text>] [-policy <number>] [-date YYYY-MM-DD] [-assignee <userId>] [-status <status>]
  portal status -id <taskId> -status <pending|in-progress|completed|cancelled>
  portal add-user -u <username> -name <name> [-role <role>]
  portal users
  portal notifications
  portal read -id <notificationId>
  portal read-all
`

// stderrNotifier prints toasts without polluting stdout output
type stderrNotifier struct{}

func (stderrNotifier) Info(title, message string) {
	fmt.Fprintf(os.Stderr, "ℹ️  %s: %s\n", title, message)
}

func (stderrNotifier) Error(title, message string) {
	fmt.Fprintf(os.Stderr, "❌ %s: %s\n", title, message)
}

func dataPath() (string, error) {
	if p := os.Getenv("PORTAL_DATA_PATH"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	appDir := filepath.Join(dir, "simia-portal")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(appDir, "portal.db"), nil
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	baseURL := os.Getenv("PORTAL_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5001"
	}

	path, err := dataPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Could not resolve data path: %v\n", err)
		os.Exit(1)
	}
	local, err := localstore.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Could not open local store: %v\n", err)
		os.Exit(1)
	}
	defer local.Close()

	s, err := store.New(local, api.New(baseURL), stderrNotifier{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Could not load state: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, s, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, s *store.Store, command string, args []string) error {
	switch command {
	case "login":
		return cmdLogin(ctx, s, args)
	case "logout":
		if err := s.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	case "tasks":
		return cmdTasks(s)
	case "calendar":
		return cmdCalendar(s, args)
	case "add-task":
		return cmdAddTask(ctx, s, args)
	case "status":
		return cmdStatus(s, args)
	case "add-user":
		return cmdAddUser(s, args)
	case "users":
		return cmdUsers(ctx, s)
	case "notifications":
		return cmdNotifications(s)
	case "read":
		return cmdRead(s, args)
	case "read-all":
		return cmdReadAll(s)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func cmdLogin(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("login requires -u and -p")
	}
	user, err := s.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Welcome back, %s!\n", user.Name)
	return nil
}

func userName(s *store.Store, id string) string {
	for _, u := range s.Users() {
		if u.ID == id {
			return u.Name
		}
	}
	return "—"
}

func cmdTasks(s *store.Store) error {
	tasks := s.Tasks()
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}
	for _, t := range tasks {
		date := t.Date
		if date == "" {
			date = "no date"
		}
		fmt.Printf("[%s] %-12s %s  (%s, assigned to %s)\n", t.ID, t.Status, t.Title, date, userName(s, t.AssigneeID))
		if t.PolicyNumber != "" {
			fmt.Printf("      policy: %s\n", t.PolicyNumber)
		}
	}
	return nil
}

func cmdCalendar(s *store.Store, args []string) error {
	now := time.Now()
	year, month := now.Year(), now.Month()
	if len(args) > 0 {
		parsed, err := time.Parse("2006-01", args[0])
		if err != nil {
			return fmt.Errorf("calendar expects YYYY-MM: %w", err)
		}
		year, month = parsed.Year(), parsed.Month()
	}

	grid := calendar.BuildMonth(year, month, s.Tasks(), now)
	fmt.Printf("%s %d\n", grid.Month, grid.Year)
	fmt.Println(" Su  Mo  Tu  We  Th  Fr  Sa")
	for _, week := range grid.Weeks {
		var line strings.Builder
		for _, day := range week {
			if day.Day == 0 {
				line.WriteString("    ")
				continue
			}
			marker := " "
			switch {
			case day.Overdue:
				marker = "!"
			case day.Today:
				marker = "*"
			case len(day.Tasks) > 0:
				marker = "."
			}
			line.WriteString(fmt.Sprintf("%3d%s", day.Day, marker))
		}
		fmt.Println(line.String())
	}
	for _, week := range grid.Weeks {
		for _, day := range week {
			for _, t := range day.Tasks {
				fmt.Printf("  %s  %-12s %s\n", day.Date, t.Status, t.Title)
			}
		}
	}
	return nil
}

func cmdAddTask(ctx context.Context, s *store.Store, args []string) error {
	fs := flag.NewFlagSet("add-task", flag.ExitOnError)
	title := fs.String("title", "", "task title")
	desc := fs.String("desc", "", "description")
	policy := fs.String("policy", "", "policy number")
	date := fs.String("date", "", "due date (YYYY-MM-DD)")
	assignee := fs.String("assignee", "", "assignee user id")
	status := fs.String("status", "", "initial status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return fmt.Errorf("add-task requires -title")
	}
	task, err := s.AddTask(ctx, store.AddTaskInput{
		Title:        *title,
		Description:  *desc,
		PolicyNumber: *policy,
		Date:         *date,
		AssigneeID:   *assignee,
		Status:       *status,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created task %s: %s\n", task.ID, task.Title)
	return nil
}

func cmdStatus(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	id := fs.String("id", "", "task id")
	status := fs.String("status", "", "new status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *status == "" {
		return fmt.Errorf("status requires -id and -status")
	}
	if err := s.UpdateTaskStatus(*id, *status); err != nil {
		return err
	}
	fmt.Printf("Task %s is now %s.\n", *id, *status)
	return nil
}

func cmdAddUser(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ExitOnError)
	username := fs.String("u", "", "username")
	name := fs.String("name", "", "display name")
	role := fs.String("role", "", "role (admin|employee)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *name == "" {
		return fmt.Errorf("add-user requires -u and -name")
	}
	user, err := s.AddUser(store.AddUserInput{Username: *username, Name: *name, Role: *role})
	if err != nil {
		return err
	}
	fmt.Printf("Added %s (%s).\n", user.Name, user.ID)
	return nil
}

func cmdUsers(ctx context.Context, s *store.Store) error {
	// A failed refresh is fine offline, the mirror still has the roster
	if err := s.RefreshUsers(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Could not refresh users: %v\n", err)
	}
	for _, u := range s.Users() {
		fmt.Printf("[%s] %-10s %-20s %s\n", u.ID, u.Role, u.Name, u.Username)
	}
	return nil
}

func cmdNotifications(s *store.Store) error {
	user := s.CurrentUser()
	if user == nil {
		return store.ErrNotLoggedIn
	}
	notifications := s.NotificationsFor(user.ID)
	if len(notifications) == 0 {
		fmt.Println("No notifications.")
		return nil
	}
	for _, n := range notifications {
		mark := " "
		if !n.Read {
			mark = "•"
		}
		fmt.Printf("%s [%s] %-10s %s\n", mark, n.ID, n.Type, n.Message)
	}
	return nil
}

func cmdRead(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	id := fs.String("id", "", "notification id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user := s.CurrentUser()
	if user == nil {
		return store.ErrNotLoggedIn
	}
	if *id == "" {
		return fmt.Errorf("read requires -id")
	}
	return s.MarkNotificationAsRead(user.ID, *id)
}

func cmdReadAll(s *store.Store) error {
	user := s.CurrentUser()
	if user == nil {
		return store.ErrNotLoggedIn
	}
	return s.MarkAllNotificationsAsRead(user.ID)
}
