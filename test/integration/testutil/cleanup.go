//go:build integration

package testutil

import (
	"context"
	"strings"
	"time"
)

// CleanAll truncates all tables. Every tenant table cascades from organizations.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"invitations",
		"calendar_tasks",
		"calendar_events",
		"contracts",
		"contacts",
		"athletes",
		"organization_members",
		"organizations",
	}
	if _, err := env.Pool.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" CASCADE"); err != nil {
		env.t.Fatalf("CleanAll: %v", err)
	}
}
