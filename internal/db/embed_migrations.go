package db

import "embed"

// MigrationFS embeds the schema for officers, sessions, alerts, quota buckets and the AI audit log.
// Applied by cmd/migrate and by integration tests that need a real schema.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
