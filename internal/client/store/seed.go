package store

import "time"

func avatarFor(username string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + username
}

// DefaultUsers is the offline roster used before the first successful login
func DefaultUsers() []User {
	return []User{
		{ID: "1", Username: "admin", Name: "Anand (Admin)", Role: "admin", Avatar: avatarFor("admin")},
		{ID: "2", Username: "jurgern", Name: "Jurgern", Role: "employee", Avatar: avatarFor("jurgern")},
		{ID: "3", Username: "marion", Name: "Marion", Role: "employee", Avatar: avatarFor("marion")},
		{ID: "4", Username: "jesse", Name: "Jesse", Role: "employee", Avatar: avatarFor("jesse")},
		{ID: "5", Username: "brian", Name: "Brian", Role: "employee", Avatar: avatarFor("brian")},
		{ID: "6", Username: "julius", Name: "Julius", Role: "employee", Avatar: avatarFor("julius")},
		{ID: "7", Username: "dominic", Name: "Dominic", Role: "employee", Avatar: avatarFor("dominic")},
	}
}

// DefaultTasks is the offline sample workload, dated relative to now
func DefaultTasks(now time.Time) []Task {
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format("2006-01-02")
	}
	return []Task{
		{
			ID:           "t1",
			Title:        "Life Policy Renewal",
			Description:  "Renew life insurance policy for client",
			PolicyNumber: "POL-2024-001",
			Date:         day(1),
			AssigneeID:   "2",
			CreatorID:    "1",
			Status:       StatusInProgress,
		},
		{
			ID:          "t2",
			Title:       "New Client Meeting",
			Description: "Initial consultation with prospective client",
			Date:        day(2),
			AssigneeID:  "3",
			CreatorID:   "1",
			Status:      StatusPending,
		},
		{
			ID:           "t3",
			Title:        "Claims Processing",
			Description:  "Process outstanding vehicle claim",
			PolicyNumber: "CLM-8823",
			Date:         day(-1),
			AssigneeID:   "2",
			CreatorID:    "2",
			Status:       StatusCompleted,
		},
		{
			ID:          "t4",
			Title:       "Quarterly Sales Review",
			Description: "Review Q2 sales targets with the team",
			Date:        day(5),
			AssigneeID:  "4",
			CreatorID:   "1",
			Status:      StatusPending,
		},
		{
			ID:           "t5",
			Title:        "Health Policy Audit",
			Description:  "Audit health policy portfolio for compliance",
			PolicyNumber: "AUDIT-2024-Q2",
			Date:         day(3),
			AssigneeID:   "5",
			CreatorID:    "1",
			Status:       StatusPending,
		},
		{
			ID:           "t6",
			Title:        "Client Onboarding",
			Description:  "Complete onboarding paperwork for new client",
			PolicyNumber: "NEW-2024-001",
			Date:         day(0),
			AssigneeID:   "6",
			CreatorID:    "1",
			Status:       StatusInProgress,
		},
		{
			ID:           "t7",
			Title:        "Vehicle Inspection Report",
			Description:  "File inspection report for insured vehicle",
			PolicyNumber: "VEH-4421",
			Date:         day(-3),
			AssigneeID:   "7",
			CreatorID:    "1",
			Status:       StatusCompleted,
		},
	}
}
