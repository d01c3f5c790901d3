package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"mutual-aid-go/internal/common"
	"mutual-aid-go/internal/config"
	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"go.uber.org/zap"
)

// verifycycle is a read-only auditor: it walks every help activity and open
// match and reports invariant violations without mutating anything.

type auditReport struct {
	users      int
	activities int
	matched    int
	issues     []string
}

func (r *auditReport) addIssue(format string, args ...any) {
	r.issues = append(r.issues, fmt.Sprintf(format, args...))
}

func auditActivityCounts(activities []models.HelpActivity, report *auditReport) {
	type roleKey struct {
		userId string
		role   string
	}
	activeCounts := make(map[roleKey]int)

	for i := range activities {
		activity := &activities[i]
		if activity.Status != models.ActivityActive {
			continue
		}
		key := roleKey{userId: activity.UserId(), role: activity.Role()}
		activeCounts[key]++
		if activeCounts[key] > 1 {
			report.addIssue("user %s has %d active %s activities",
				key.userId, activeCounts[key], key.role)
		}
	}
}

func auditMatchedActivities(ctx context.Context, aidStore store.AidStore, activities []models.HelpActivity, now time.Time, report *auditReport) {
	for i := range activities {
		activity := &activities[i]
		if activity.Status != models.ActivityMatched {
			continue
		}
		report.matched++

		match, err := aidStore.GetOpenMatchForActivity(ctx, activity.Id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				report.addIssue("matched activity %s has no open payment match", activity.Id)
			} else {
				report.addIssue("unable to look up match for activity %s: %v", activity.Id, err)
			}
			continue
		}

		if !match.Amount.Equal(activity.Amount) {
			report.addIssue("match %s amount %s disagrees with activity %s amount %s",
				match.Id, match.Amount.String(), activity.Id, activity.Amount.String())
		}
		if match.PackageId != activity.PackageId {
			report.addIssue("match %s package %s disagrees with activity %s package %s",
				match.Id, match.PackageId, activity.Id, activity.PackageId)
		}
		if activity.Role() == models.RoleGiver && activity.MaturityDate.After(now) {
			report.addIssue("giver activity %s was matched before maturity (%s)",
				activity.Id, activity.MaturityDate.Format(time.RFC3339))
		}
	}
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	users, err := dbService.GetUsers(ctx)
	if err != nil {
		zap.L().Fatal("Failed to load users", zap.Error(err))
	}
	activities, err := dbService.GetAllActivities(ctx)
	if err != nil {
		zap.L().Fatal("Failed to load activities", zap.Error(err))
	}

	report := &auditReport{users: len(users), activities: len(activities)}
	auditActivityCounts(activities, report)
	auditMatchedActivities(ctx, dbService, activities, time.Now(), report)

	fmt.Println()
	common.PrintHeader("CYCLE AUDIT", common.DefaultWidth)
	fmt.Printf("Users:              %d\n", report.users)
	fmt.Printf("Help Activities:    %d\n", report.activities)
	fmt.Printf("Matched Activities: %d\n", report.matched)
	fmt.Printf("Issues Found:       %d\n", len(report.issues))
	common.PrintSeparator("-", common.DefaultWidth)
	for _, issue := range report.issues {
		fmt.Printf("  ! %s\n", issue)
	}
	if len(report.issues) == 0 {
		fmt.Println("  All invariants hold.")
	}
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	if len(report.issues) > 0 {
		zap.L().Error("Audit found invariant violations", zap.Int("count", len(report.issues)))
		loggerCleanup()
		os.Exit(1)
	}
	zap.L().Info("Audit passed", zap.Int("activities", report.activities))
}
