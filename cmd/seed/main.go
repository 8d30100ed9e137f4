// seed inserts development officers and alerts for local testing and prints a session token.
// Idempotent: existing officers and alerts are left as they are. A fresh session is issued on every run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	alertdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/alert/domain"
	alertrepo "github.com/Reyansh-Niranjan/CogniSecure/internal/alert/repository"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/config"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/db"
	officerdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/officer/domain"
	officerrepo "github.com/Reyansh-Niranjan/CogniSecure/internal/officer/repository"
	"github.com/Reyansh-Niranjan/CogniSecure/internal/platform/logger"
	sessionrepo "github.com/Reyansh-Niranjan/CogniSecure/internal/session/repository"
	sessionservice "github.com/Reyansh-Niranjan/CogniSecure/internal/session/service"
)

var devOfficers = []officerdomain.Officer{
	{ID: "dev-officer-001", BadgeNumber: "B-1001", Name: "Dev Officer", Role: officerdomain.RoleOfficer, Active: true},
	{ID: "dev-supervisor-001", BadgeNumber: "B-2001", Name: "Dev Supervisor", Role: officerdomain.RoleSupervisor, Active: true},
	{ID: "dev-admin-001", BadgeNumber: "B-9001", Name: "Dev Admin", Role: officerdomain.RoleAdmin, Active: true},
}

func devAlerts(now time.Time) []alertdomain.Alert {
	recorded := now.Add(-2 * time.Hour)
	return []alertdomain.Alert{
		{
			ID: "dev-alert-001", RecordedAt: recorded, SentAt: recorded.Add(2 * time.Second), ReceivedAt: recorded.Add(3 * time.Second),
			DelayMs: 3000, DeviceID: "cam-north-gate", Location: "North gate", Status: "pending",
			Notes: "Person loitering near the fence line",
		},
		{
			ID: "dev-alert-002", RecordedAt: recorded.Add(20 * time.Minute), SentAt: recorded.Add(20*time.Minute + time.Second),
			ReceivedAt: recorded.Add(20*time.Minute + 4*time.Second), DelayMs: 4000, DeviceID: "cam-east-lot",
			Status: "acknowledged", AcknowledgedBy: "dev-officer-001", PhotoURL: "https://media.example.invalid/alerts/002.jpg",
		},
		{
			ID: "dev-alert-003", RecordedAt: recorded.Add(45 * time.Minute), SentAt: recorded.Add(45*time.Minute + time.Second),
			ReceivedAt: recorded.Add(45*time.Minute + 2*time.Second), DelayMs: 2000, DeviceID: "cam-north-gate",
			Location: "North gate", Status: "resolved", ResolvedBy: "dev-supervisor-001", Notes: "Vehicle left the area",
		},
	}
}

func main() {
	issueFor := flag.String("officer", "dev-officer-001", "Officer id to issue a session for; empty skips issuing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("cognisecure-seed", "info")
		bootLog.Fatal().Err(err).Msg("config")
	}
	log := logger.New("cognisecure-seed", cfg.LogLevel)
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	defer conn.Close()

	ctx := context.Background()
	officers := officerrepo.NewPostgresRepository(conn)
	alerts := alertrepo.NewPostgresRepository(conn)
	now := time.Now().UTC()

	for i := range devOfficers {
		o := devOfficers[i]
		existing, err := officers.GetByBadgeNumber(ctx, o.BadgeNumber)
		if err != nil {
			log.Fatal().Err(err).Str("officer_id", o.ID).Msg("officer lookup")
		}
		if existing != nil {
			continue
		}
		o.CreatedAt, o.UpdatedAt = now, now
		if err := officers.Create(ctx, &o); err != nil {
			log.Fatal().Err(err).Str("officer_id", o.ID).Msg("create officer")
		}
		log.Info().Str("officer_id", o.ID).Str("role", string(o.Role)).Msg("officer created")
	}

	for _, a := range devAlerts(now) {
		a := a
		existing, err := alerts.GetByID(ctx, a.ID)
		if err != nil {
			log.Fatal().Err(err).Str("alert_id", a.ID).Msg("alert lookup")
		}
		if existing != nil {
			continue
		}
		if err := alerts.Create(ctx, &a); err != nil {
			log.Fatal().Err(err).Str("alert_id", a.ID).Msg("create alert")
		}
		log.Info().Str("alert_id", a.ID).Msg("alert created")
	}

	if *issueFor == "" {
		return
	}
	sessions := sessionservice.NewService(sessionrepo.NewPostgresRepository(conn), officers, cfg.SessionLifetime())
	issued, err := sessions.Issue(ctx, *issueFor, "127.0.0.1", "cognisecure-seed")
	if err != nil {
		log.Fatal().Err(err).Str("officer_id", *issueFor).Msg("issue session")
	}
	log.Info().Str("session_id", issued.SessionID).Time("expires_at", issued.ExpiresAt).Msg("session issued")
	fmt.Fprintln(os.Stdout, issued.Token)
}
