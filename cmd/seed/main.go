// Package main provides a tool to seed the database with demo progression data.
//
// It writes the mission template, achievement and badge definitions a
// fresh installation needs, and can optionally create demo users and
// replay two weeks of activity for them to exercise streaks, missions
// and leaderboards.
//
// Usage:
//
//	DB_PATH=~/ecominds/db go run ./cmd/seed
//	DB_PATH=~/ecominds/db go run ./cmd/seed --create-users             # Also create demo users
//	DB_PATH=~/ecominds/db go run ./cmd/seed --create-users --activity  # And replay activity for them
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/auth"
	"github.com/ecomindsapp/ecominds-server/internal/domain"
	"github.com/ecomindsapp/ecominds-server/internal/id"
	"github.com/ecomindsapp/ecominds-server/internal/service"
	"github.com/ecomindsapp/ecominds-server/internal/store"
)

var (
	createUsers = flag.Bool("create-users", false, "Create demo users for leaderboard testing")
	activity    = flag.Bool("activity", false, "Replay two weeks of activity for every user")
)

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/ecominds/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	seedBadges(ctx, s)
	seedTemplates(ctx, s)
	seedAchievements(ctx, s)

	if *createUsers {
		createDemoUsers(ctx, s)
	}

	if *activity {
		replayActivity(ctx, s)
	}

	fmt.Println("\nSeeding complete!")
}

// seedBadges writes the streak milestone badges plus the badges
// achievements hand out. Existing badges are left untouched.
func seedBadges(ctx context.Context, s *store.Store) {
	fmt.Println("\n=== Seeding Badges ===")

	badges := []domain.Badge{
		{Base: domain.Base{ID: domain.BadgeWeekStreak}, Name: "Week Warrior", Description: "Kept a streak alive for 7 days", Rarity: domain.RarityCommon},
		{Base: domain.Base{ID: domain.BadgeMonthStreak}, Name: "Monthly Momentum", Description: "Kept a streak alive for 30 days", Rarity: domain.RarityRare},
		{Base: domain.Base{ID: domain.BadgeCenturyStreak}, Name: "Century Club", Description: "Kept a streak alive for 100 days", Rarity: domain.RarityEpic},
		{Base: domain.Base{ID: domain.BadgeYearStreak}, Name: "Evergreen", Description: "Kept a streak alive for a full year", Rarity: domain.RarityLegendary},
		{Base: domain.Base{ID: "bdg-first-lesson"}, Name: "Seedling", Description: "Completed a first lesson", Rarity: domain.RarityCommon},
		{Base: domain.Base{ID: "bdg-quiz-ace"}, Name: "Quiz Ace", Description: "Scored three perfect quizzes", Rarity: domain.RarityRare},
		{Base: domain.Base{ID: "bdg-eco-hero"}, Name: "Eco Hero", Description: "Reached level 10", Rarity: domain.RarityEpic},
	}

	for _, badge := range badges {
		if _, err := s.Badges.Get(ctx, badge.ID); err == nil {
			fmt.Printf("  Badge %s already exists, skipping\n", badge.ID)
			continue
		}
		b := badge
		b.InitTimestamps()
		if err := s.Badges.Create(ctx, b.ID, &b); err != nil {
			log.Printf("  Failed to create badge %s: %v", b.ID, err)
			continue
		}
		fmt.Printf("  Created badge: %s (%s)\n", b.Name, b.ID)
	}
}

// seedTemplates writes a spread of mission templates across types,
// cadences and difficulties. IDs are fixed so reruns skip them.
func seedTemplates(ctx context.Context, s *store.Store) {
	fmt.Println("\n=== Seeding Mission Templates ===")

	templates := []domain.MissionTemplate{
		{
			Base: domain.Base{ID: "mtpl-daily-lesson"}, Type: domain.MissionCompleteLessons,
			Cadence: domain.CadenceDaily, Difficulty: domain.DifficultyEasy,
			Title: "Daily Reader", Description: "Complete a lesson today",
			TargetValue: 1, RewardXP: 10, RewardCoins: 5, Active: true,
		},
		{
			Base: domain.Base{ID: "mtpl-daily-login"}, Type: domain.MissionDailyLogin,
			Cadence: domain.CadenceDaily, Difficulty: domain.DifficultyEasy,
			Title: "Show Up", Description: "Log in today",
			TargetValue: 1, RewardXP: 5, RewardCoins: 2, Active: true,
		},
		{
			Base: domain.Base{ID: "mtpl-daily-recycle"}, Type: domain.MissionRecycleItems,
			Cadence: domain.CadenceDaily, Difficulty: domain.DifficultyEasy,
			Title: "Sort It Out", Description: "Log 3 recycled items",
			TargetValue: 3, RewardXP: 15, RewardCoins: 5, Active: true,
		},
		{
			Base: domain.Base{ID: "mtpl-weekly-lessons"}, Type: domain.MissionCompleteLessons,
			Cadence: domain.CadenceWeekly, Difficulty: domain.DifficultyMedium,
			Title: "Study Streak", Description: "Complete 5 lessons this week",
			TargetValue: 5, RewardXP: 50, RewardCoins: 20, MinLevel: 5, Active: true,
		},
		{
			Base: domain.Base{ID: "mtpl-weekly-quizzes"}, Type: domain.MissionCompleteQuizzes,
			Cadence: domain.CadenceWeekly, Difficulty: domain.DifficultyMedium,
			Title: "Quiz Circuit", Description: "Finish 3 quizzes this week",
			TargetValue: 3, RewardXP: 40, RewardCoins: 15, MinLevel: 5, Active: true,
		},
		{
			Base: domain.Base{ID: "mtpl-weekly-perfect"}, Type: domain.MissionPerfectScore,
			Cadence: domain.CadenceWeekly, Difficulty: domain.DifficultyHard,
			Title: "Flawless", Description: "Score 100% on 2 quizzes this week",
			TargetValue: 2, RewardXP: 80, RewardCoins: 30, MinLevel: 15, Active: true,
		},
		{
			Base: domain.Base{ID: "mtpl-weekly-xp"}, Type: domain.MissionEarnXP,
			Cadence: domain.CadenceWeekly, Difficulty: domain.DifficultyHard,
			Title: "Point Hunter", Description: "Earn 200 XP this week",
			TargetValue: 200, RewardXP: 100, RewardCoins: 40, MinLevel: 15, Active: true,
		},
		{
			Base: domain.Base{ID: "mtpl-weekly-eco"}, Type: domain.MissionEcoAction,
			Cadence: domain.CadenceWeekly, Difficulty: domain.DifficultyEasy,
			Title: "Hands On", Description: "Complete a real-world eco action",
			TargetValue: 1, RewardXP: 30, RewardCoins: 10, Active: true,
		},
	}

	for _, tmpl := range templates {
		if _, err := s.Templates.Get(ctx, tmpl.ID); err == nil {
			fmt.Printf("  Template %s already exists, skipping\n", tmpl.ID)
			continue
		}
		t := tmpl
		t.InitTimestamps()
		if err := s.Templates.Create(ctx, t.ID, &t); err != nil {
			log.Printf("  Failed to create template %s: %v", t.ID, err)
			continue
		}
		fmt.Printf("  Created template: %s (%s/%s)\n", t.Title, t.Cadence, t.Difficulty)
	}
}

// seedAchievements writes the achievement ladder, including
// prerequisite chains and a hidden one.
func seedAchievements(ctx context.Context, s *store.Store) {
	fmt.Println("\n=== Seeding Achievements ===")

	achievements := []domain.Achievement{
		{
			Base: domain.Base{ID: "ach-first-lesson"}, Name: "First Steps",
			Description: "Complete your first lesson", Tier: domain.TierBronze,
			Condition:   domain.Condition{Kind: domain.ConditionLessonsCompleted, Op: domain.OpGTE, Value: 1},
			RewardXP:    10, RewardCoins: 5, BadgeID: "bdg-first-lesson",
		},
		{
			Base: domain.Base{ID: "ach-ten-lessons"}, Name: "Bookworm",
			Description: "Complete 10 lessons", Tier: domain.TierSilver,
			Condition:     domain.Condition{Kind: domain.ConditionLessonsCompleted, Op: domain.OpGTE, Value: 10},
			Prerequisites: []string{"ach-first-lesson"},
			RewardXP:      50, RewardCoins: 20,
		},
		{
			Base: domain.Base{ID: "ach-five-quizzes"}, Name: "Quiz Taker",
			Description: "Complete 5 quizzes", Tier: domain.TierBronze,
			Condition: domain.Condition{Kind: domain.ConditionQuizzesCompleted, Op: domain.OpGTE, Value: 5},
			RewardXP:  25, RewardCoins: 10,
		},
		{
			Base: domain.Base{ID: "ach-perfectionist"}, Name: "Perfectionist",
			Description: "Score 100% on 3 quizzes", Tier: domain.TierGold,
			Condition:     domain.Condition{Kind: domain.ConditionPerfectQuizzes, Op: domain.OpGTE, Value: 3},
			Prerequisites: []string{"ach-five-quizzes"},
			RewardXP:      100, RewardCoins: 40, BadgeID: "bdg-quiz-ace",
		},
		{
			Base: domain.Base{ID: "ach-week-streak"}, Name: "Committed",
			Description: "Hold a 7-day streak", Tier: domain.TierSilver,
			Condition: domain.Condition{Kind: domain.ConditionStreakDays, Op: domain.OpGTE, Value: 7},
			RewardXP:  40, RewardCoins: 15,
		},
		{
			Base: domain.Base{ID: "ach-level-five"}, Name: "Rising Sprout",
			Description: "Reach level 5", Tier: domain.TierBronze,
			Condition: domain.Condition{Kind: domain.ConditionLevel, Op: domain.OpGTE, Value: 5},
			RewardXP:  30, RewardCoins: 10,
		},
		{
			Base: domain.Base{ID: "ach-level-ten"}, Name: "Eco Hero",
			Description: "Reach level 10", Tier: domain.TierGold,
			Condition:     domain.Condition{Kind: domain.ConditionLevel, Op: domain.OpGTE, Value: 10},
			Prerequisites: []string{"ach-level-five"},
			RewardXP:      150, RewardCoins: 50, BadgeID: "bdg-eco-hero",
		},
		{
			Base: domain.Base{ID: "ach-ten-missions"}, Name: "Mission Accomplished",
			Description: "Complete 10 missions", Tier: domain.TierSilver,
			Condition: domain.Condition{Kind: domain.ConditionMissionsCompleted, Op: domain.OpGTE, Value: 10},
			RewardXP:  60, RewardCoins: 25,
		},
		{
			Base: domain.Base{ID: "ach-hundred-logins"}, Name: "Regular",
			Description: "Log in 100 times", Tier: domain.TierPlatinum,
			Condition: domain.Condition{Kind: domain.ConditionLogins, Op: domain.OpGTE, Value: 100},
			RewardXP:  200, RewardCoins: 75, Hidden: true,
		},
	}

	for _, ach := range achievements {
		if _, err := s.Achievements.Get(ctx, ach.ID); err == nil {
			fmt.Printf("  Achievement %s already exists, skipping\n", ach.ID)
			continue
		}
		a := ach
		a.InitTimestamps()
		if err := s.Achievements.Create(ctx, a.ID, &a); err != nil {
			log.Printf("  Failed to create achievement %s: %v", a.ID, err)
			continue
		}
		fmt.Printf("  Created achievement: %s (%s)\n", a.Name, a.Tier)
	}
}

// demoStudents are the generated demo accounts: name, grade, college.
var demoStudents = []struct {
	name    string
	grade   string
	college string
}{
	{"Alex Rivera", "8", "Green Valley"},
	{"Jordan Chen", "8", "Green Valley"},
	{"Sam Taylor", "9", "Green Valley"},
	{"Casey Morgan", "9", "Riverbend"},
	{"Riley Kim", "10", "Riverbend"},
	{"Dev Patel", "11", "Riverbend"},
}

// createDemoUsers creates demo students plus one teacher account.
// All demo accounts share the password "testpass123".
func createDemoUsers(ctx context.Context, s *store.Store) {
	fmt.Println("\n=== Creating Demo Users ===")

	passwordHash, err := auth.HashPassword("testpass123")
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return
	}

	for i, student := range demoStudents {
		email := fmt.Sprintf("student%d@example.com", i+1)
		if existing, _ := s.GetUserByEmail(ctx, email); existing != nil {
			fmt.Printf("  User %s already exists, skipping\n", email)
			continue
		}

		user := &domain.User{
			Base:         domain.Base{ID: id.MustGenerate("usr")},
			Email:        email,
			PasswordHash: passwordHash,
			Role:         domain.RoleStudent,
			DisplayName:  student.name,
			Grade:        student.grade,
			College:      student.college,
		}
		user.InitTimestamps()

		if err := s.CreateUser(ctx, user); err != nil {
			log.Printf("  Failed to create user %s: %v", student.name, err)
			continue
		}
		fmt.Printf("  Created student: %s (%s, grade %s, %s)\n", student.name, email, student.grade, student.college)
	}

	teacherEmail := "teacher@example.com"
	if existing, _ := s.GetUserByEmail(ctx, teacherEmail); existing != nil {
		fmt.Printf("  User %s already exists, skipping\n", teacherEmail)
		return
	}

	teacher := &domain.User{
		Base:         domain.Base{ID: id.MustGenerate("usr")},
		Email:        teacherEmail,
		PasswordHash: passwordHash,
		Role:         domain.RoleTeacher,
		DisplayName:  "Morgan Ellis",
		College:      "Green Valley",
	}
	teacher.InitTimestamps()

	if err := s.CreateUser(ctx, teacher); err != nil {
		log.Printf("  Failed to create teacher: %v", err)
		return
	}
	fmt.Printf("  Created teacher: %s (%s)\n", teacher.DisplayName, teacherEmail)
}

// replayActivity feeds two weeks of synthetic activity through the
// progression pipeline for every student, so streaks, missions,
// achievements and leaderboards all have data behind them.
func replayActivity(ctx context.Context, s *store.Store) {
	fmt.Println("\n=== Replaying Activity ===")

	users, err := s.ListUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to get users: %v", err)
	}
	if len(users) == 0 {
		log.Fatal("No users found in database. Run with --create-users first.")
	}

	progression := buildProgression(s)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	for _, user := range users {
		if user.Role != domain.RoleStudent {
			continue
		}
		fmt.Printf("\nReplaying activity for: %s (%s)\n", user.DisplayName, user.ID)

		eventsReported := 0
		for day := 13; day >= 0; day-- {
			// Today and yesterday always get activity so streaks are
			// alive; older days miss 20% of the time for realism.
			if day > 1 && rng.Float32() > 0.8 {
				continue
			}

			at := time.Date(now.Year(), now.Month(), now.Day()-day,
				8+rng.Intn(12), rng.Intn(60), 0, 0, time.Local)

			for _, event := range randomDayEvents(rng, at) {
				if _, err := progression.ReportActivity(ctx, user.ID, event); err != nil {
					log.Printf("  Failed to report %s: %v", event.Type, err)
					continue
				}
				eventsReported++
			}
		}

		progress, err := s.GetProgress(ctx, user.ID)
		if err != nil {
			log.Printf("  Failed to read progress: %v", err)
			continue
		}
		fmt.Printf("  Reported %d events: %d XP, level %d, %d coins\n",
			eventsReported, progress.TotalXP, progress.Level, progress.Coins)
	}
}

// randomDayEvents builds one day's worth of events: a login, then a
// random mix of lessons, quizzes, recycling and eco actions.
func randomDayEvents(rng *rand.Rand, at time.Time) []domain.ActivityEvent {
	events := []domain.ActivityEvent{
		{Type: domain.ActivityLogin, OccurredAt: at},
	}

	for range 1 + rng.Intn(3) {
		at = at.Add(time.Duration(5+rng.Intn(40)) * time.Minute)
		switch rng.Intn(4) {
		case 0:
			events = append(events, domain.ActivityEvent{
				Type:       domain.ActivityLessonCompleted,
				SubjectID:  id.MustGenerate("lsn"),
				OccurredAt: at,
			})
		case 1:
			maxScore := 10
			events = append(events, domain.ActivityEvent{
				Type:        domain.ActivityQuizCompleted,
				SubjectID:   id.MustGenerate("qz"),
				Score:       5 + rng.Intn(6),
				MaxScore:    maxScore,
				Attempt:     1 + rng.Intn(3),
				DurationSec: 60 + rng.Intn(240),
				OccurredAt:  at,
			})
		case 2:
			events = append(events, domain.ActivityEvent{
				Type:       domain.ActivityRecycleLogged,
				Quantity:   1 + rng.Intn(5),
				OccurredAt: at,
			})
		default:
			events = append(events, domain.ActivityEvent{
				Type:       domain.ActivityEcoAction,
				SubjectID:  "asset:planted a tree in the school garden",
				OccurredAt: at,
			})
		}
	}

	return events
}

// buildProgression wires the progression pipeline without the HTTP
// layer. No emitter, no cache: everything lands straight in the store.
func buildProgression(s *store.Store) *service.ProgressionService {
	logger := slog.New(slog.DiscardHandler)
	points := service.NewPointsService(s, nil, logger)
	streaks := service.NewStreakService(s, points, nil, logger, time.Local, 50, 3)
	missions := service.NewMissionService(s, points, service.HeuristicScorer{}, nil, logger, time.Local)
	leaderboard := service.NewLeaderboardService(s, nil, logger, time.Local, time.Minute)
	achievements := service.NewAchievementService(s, points, nil, logger)
	return service.NewProgressionService(s, points, streaks, missions, leaderboard, achievements, logger, time.Local)
}
