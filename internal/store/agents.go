package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/leaddist/internal/agents"
	"github.com/JonMunkholm/leaddist/internal/core"
)

const agentColumns = `id, name, email, country_code, mobile, is_active, created_at, updated_at`

func scanAgent(row pgx.Row) (agents.Agent, error) {
	var (
		a  agents.Agent
		id pgtype.UUID
	)
	err := row.Scan(&id, &a.Name, &a.Email, &a.CountryCode, &a.Mobile, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return agents.Agent{}, err
	}
	a.ID = uuidString(id)
	return a, nil
}

// ListAgents returns every agent, newest first.
func (s *Store) ListAgents(ctx context.Context) ([]agents.Agent, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+agentColumns+` FROM agents ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (agents.Agent, error) {
		return scanAgent(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return list, nil
}

// GetAgent returns one agent or agents.ErrNotFound.
func (s *Store) GetAgent(ctx context.Context, id string) (agents.Agent, error) {
	a, err := scanAgent(s.pool.QueryRow(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE id = $1`, toPgUUID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return agents.Agent{}, agents.ErrNotFound
	}
	if err != nil {
		return agents.Agent{}, fmt.Errorf("get agent: %w", err)
	}
	return a, nil
}

// CreateAgent inserts a validated agent.
func (s *Store) CreateAgent(ctx context.Context, n agents.NewAgent) (agents.Agent, error) {
	var created agents.Agent
	err := s.withRosterLock(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = scanAgent(tx.QueryRow(ctx, `
			INSERT INTO agents (id, name, email, country_code, mobile, password_hash, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+agentColumns,
			toPgUUID(n.ID), n.Name, n.Email, n.CountryCode, n.Mobile, n.PasswordHash, n.IsActive))
		return err
	})
	if isUniqueViolation(err, "agents_email_key") {
		return agents.Agent{}, agents.ErrDuplicateEmail
	}
	if err != nil {
		return agents.Agent{}, fmt.Errorf("create agent: %w", err)
	}
	return created, nil
}

// UpdateAgent applies the non-nil fields of c.
func (s *Store) UpdateAgent(ctx context.Context, id string, c agents.Changes) (agents.Agent, error) {
	var updated agents.Agent
	err := s.withRosterLock(ctx, func(tx pgx.Tx) error {
		var err error
		updated, err = scanAgent(tx.QueryRow(ctx, `
			UPDATE agents SET
				name          = COALESCE($2, name),
				email         = COALESCE($3, email),
				country_code  = COALESCE($4, country_code),
				mobile        = COALESCE($5, mobile),
				password_hash = COALESCE($6, password_hash),
				is_active     = COALESCE($7, is_active),
				updated_at    = now()
			WHERE id = $1
			RETURNING `+agentColumns,
			toPgUUID(id), optText(c.Name), optText(c.Email), optText(c.CountryCode),
			optText(c.Mobile), optText(c.PasswordHash), optBool(c.IsActive)))
		return err
	})
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return agents.Agent{}, agents.ErrNotFound
	case isUniqueViolation(err, "agents_email_key"):
		return agents.Agent{}, agents.ErrDuplicateEmail
	case err != nil:
		return agents.Agent{}, fmt.Errorf("update agent: %w", err)
	}
	return updated, nil
}

// DeleteAgent removes an agent. Recorded distributions keep their copy.
func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	err := s.withRosterLock(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM agents WHERE id = $1`, toPgUUID(id))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return agents.ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, agents.ErrNotFound) {
		return fmt.Errorf("delete agent: %w", err)
	}
	return err
}

// EligibleTargets returns the active agents, oldest first, capped at the
// number a distribution needs.
func (s *Store) EligibleTargets(ctx context.Context) ([]core.DistributionTarget, error) {
	return eligibleTargets(ctx, s.pool)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func eligibleTargets(ctx context.Context, q querier) ([]core.DistributionTarget, error) {
	rows, err := q.Query(ctx, `
		SELECT id, name FROM agents
		WHERE is_active
		ORDER BY created_at ASC, id ASC
		LIMIT $1`, core.RequiredTargets)
	if err != nil {
		return nil, fmt.Errorf("eligible targets: %w", err)
	}

	targets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.DistributionTarget, error) {
		var (
			id pgtype.UUID
			t  core.DistributionTarget
		)
		if err := row.Scan(&id, &t.Name); err != nil {
			return t, err
		}
		t.ID = uuidString(id)
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("eligible targets: %w", err)
	}
	return targets, nil
}
