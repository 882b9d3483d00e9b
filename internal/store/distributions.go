package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/leaddist/internal/core"
	"github.com/JonMunkholm/leaddist/internal/logging"
)

// Distribution is a recorded plan with its metadata.
type Distribution struct {
	ID         string    `json:"id"`
	UploadedBy string    `json:"uploadedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	*core.DistributionPlan
}

// DistributionSummary is one history entry without the records themselves.
type DistributionSummary struct {
	ID              string            `json:"id"`
	FileName        string            `json:"fileName"`
	TotalRecords    int               `json:"totalRecords"`
	SkippedCount    int               `json:"skippedCount"`
	UploadedBy      string            `json:"uploadedBy"`
	CreatedAt       time.Time         `json:"createdAt"`
	RecordsPerAgent []core.AgentCount `json:"recordsPerAgent"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
	Limit   int `json:"limit"`
}

// DistributionPage is a page of history, newest first.
type DistributionPage struct {
	Items      []DistributionSummary `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

// RecordDistribution stores a plan in one transaction and returns its ID.
// The eligible roster is re-read under the roster lock; if it no longer
// matches the plan's targets ErrRosterChanged is returned and nothing is
// written.
func (s *Store) RecordDistribution(ctx context.Context, req core.RecordRequest) (string, error) {
	plan := req.Plan
	if plan == nil {
		return "", errors.New("record distribution: nil plan")
	}

	id := uuid.New()
	start := time.Now()

	err := s.withRosterLock(ctx, func(tx pgx.Tx) error {
		current, err := eligibleTargets(ctx, tx)
		if err != nil {
			return err
		}
		if !sameTargets(current, plan.Allocations) {
			return ErrRosterChanged
		}

		pgID := pgtype.UUID{Bytes: id, Valid: true}

		if _, err := tx.Exec(ctx, `
			INSERT INTO distributions (id, file_name, total_records, skipped_count, uploaded_by)
			VALUES ($1, $2, $3, $4, $5)`,
			pgID, req.FileName, plan.TotalAccepted, plan.RejectedCount, req.UploadedBy); err != nil {
			return fmt.Errorf("insert distribution: %w", err)
		}

		batch := &pgx.Batch{}
		for i, a := range plan.Allocations {
			batch.Queue(`
				INSERT INTO distribution_allocations (distribution_id, position, agent_id, agent_name, record_count)
				VALUES ($1, $2, $3, $4, $5)`,
				pgID, i, toPgUUID(a.Target.ID), a.Target.Name, a.Count)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert allocations: %w", err)
		}

		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"distribution_records"},
			[]string{"distribution_id", "seq", "position", "first_name", "phone", "notes"},
			pgx.CopyFromRows(recordRows(pgID, plan.Allocations)),
		); err != nil {
			return fmt.Errorf("copy records: %w", err)
		}

		rejections, err := rejectionRows(pgID, plan.Rejections)
		if err != nil {
			return err
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"distribution_rejections"},
			[]string{"distribution_id", "row_number", "reason", "message", "data"},
			pgx.CopyFromRows(rejections),
		); err != nil {
			return fmt.Errorf("copy rejections: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	logging.FromContext(ctx).Debug("distribution stored",
		"distribution_id", id.String(),
		"records", plan.TotalAccepted,
		"rejections", plan.RejectedCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return id.String(), nil
}

// sameTargets reports whether the roster matches the plan's targets in order.
func sameTargets(roster []core.DistributionTarget, allocations []core.AgentAllocation) bool {
	if len(roster) != len(allocations) {
		return false
	}
	for i, t := range roster {
		if t.ID != allocations[i].Target.ID {
			return false
		}
	}
	return true
}

// recordRows flattens allocations into COPY rows. seq is the record's
// position in the accepted sequence, position its allocation index.
func recordRows(id pgtype.UUID, allocations []core.AgentAllocation) [][]any {
	var rows [][]any
	seq := 0
	for pos, a := range allocations {
		for _, r := range a.Records {
			rows = append(rows, []any{id, seq, pos, r.FirstName, r.Phone, r.Notes})
			seq++
		}
	}
	return rows
}

func rejectionRows(id pgtype.UUID, rejections []core.RowRejection) ([][]any, error) {
	rows := make([][]any, 0, len(rejections))
	for _, r := range rejections {
		data, err := json.Marshal(r.RawFields)
		if err != nil {
			return nil, fmt.Errorf("encode rejection row %d: %w", r.Row, err)
		}
		rows = append(rows, []any{id, r.Row, string(r.Reason), r.Error, data})
	}
	return rows, nil
}

// pageBounds clamps page and limit and returns the row offset.
func pageBounds(page, limit, defaultLimit, maxLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}

func pageCount(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ListDistributions returns one page of history, newest first. A
// non-positive limit selects the default page size; larger limits are
// clamped to the maximum.
func (s *Store) ListDistributions(ctx context.Context, page, limit int) (DistributionPage, error) {
	page, limit, offset := pageBounds(page, limit, s.defaultPageSize, s.maxPageSize)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM distributions`).Scan(&total); err != nil {
		return DistributionPage{}, fmt.Errorf("count distributions: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, file_name, total_records, skipped_count, uploaded_by, created_at
		FROM distributions
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return DistributionPage{}, fmt.Errorf("list distributions: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (DistributionSummary, error) {
		var (
			d  DistributionSummary
			id pgtype.UUID
		)
		err := row.Scan(&id, &d.FileName, &d.TotalRecords, &d.SkippedCount, &d.UploadedBy, &d.CreatedAt)
		d.ID = uuidString(id)
		d.RecordsPerAgent = []core.AgentCount{}
		return d, err
	})
	if err != nil {
		return DistributionPage{}, fmt.Errorf("list distributions: %w", err)
	}

	if len(items) > 0 {
		if err := s.attachCounts(ctx, items); err != nil {
			return DistributionPage{}, err
		}
	}

	return DistributionPage{
		Items: items,
		Pagination: Pagination{
			Current: page,
			Pages:   pageCount(total, limit),
			Total:   total,
			Limit:   limit,
		},
	}, nil
}

func (s *Store) attachCounts(ctx context.Context, items []DistributionSummary) error {
	ids := make([]pgtype.UUID, len(items))
	index := make(map[string]int, len(items))
	for i, it := range items {
		ids[i] = toPgUUID(it.ID)
		index[it.ID] = i
	}

	rows, err := s.pool.Query(ctx, `
		SELECT distribution_id, agent_id, agent_name, record_count
		FROM distribution_allocations
		WHERE distribution_id = ANY($1)
		ORDER BY distribution_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			distID, agentID pgtype.UUID
			c               core.AgentCount
		)
		if err := rows.Scan(&distID, &agentID, &c.AgentName, &c.RecordCount); err != nil {
			return fmt.Errorf("scan allocation: %w", err)
		}
		c.AgentID = uuidString(agentID)
		i := index[uuidString(distID)]
		items[i].RecordsPerAgent = append(items[i].RecordsPerAgent, c)
	}
	return rows.Err()
}

// GetDistribution reconstructs a recorded plan.
func (s *Store) GetDistribution(ctx context.Context, id string) (*Distribution, error) {
	pgID := toPgUUID(id)
	if !pgID.Valid {
		return nil, ErrDistributionNotFound
	}

	d := &Distribution{ID: id, DistributionPlan: &core.DistributionPlan{}}
	err := s.pool.QueryRow(ctx, `
		SELECT file_name, total_records, skipped_count, uploaded_by, created_at
		FROM distributions WHERE id = $1`, pgID).
		Scan(&d.SourceFileName, &d.TotalAccepted, &d.RejectedCount, &d.UploadedBy, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDistributionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get distribution: %w", err)
	}

	if err := s.loadAllocations(ctx, pgID, d.DistributionPlan); err != nil {
		return nil, err
	}
	if err := s.loadRejections(ctx, pgID, d.DistributionPlan); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) loadAllocations(ctx context.Context, id pgtype.UUID, plan *core.DistributionPlan) error {
	rows, err := s.pool.Query(ctx, `
		SELECT agent_id, agent_name, record_count
		FROM distribution_allocations
		WHERE distribution_id = $1
		ORDER BY position`, id)
	if err != nil {
		return fmt.Errorf("load allocations: %w", err)
	}

	plan.Allocations, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.AgentAllocation, error) {
		var (
			a       core.AgentAllocation
			agentID pgtype.UUID
		)
		err := row.Scan(&agentID, &a.Target.Name, &a.Count)
		a.Target.ID = uuidString(agentID)
		a.Records = make([]core.ContactRecord, 0, a.Count)
		return a, err
	})
	if err != nil {
		return fmt.Errorf("load allocations: %w", err)
	}

	recRows, err := s.pool.Query(ctx, `
		SELECT position, first_name, phone, notes
		FROM distribution_records
		WHERE distribution_id = $1
		ORDER BY seq`, id)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	defer recRows.Close()

	for recRows.Next() {
		var (
			pos int
			r   core.ContactRecord
		)
		if err := recRows.Scan(&pos, &r.FirstName, &r.Phone, &r.Notes); err != nil {
			return fmt.Errorf("scan record: %w", err)
		}
		if pos < 0 || pos >= len(plan.Allocations) {
			return fmt.Errorf("record references allocation %d of %d", pos, len(plan.Allocations))
		}
		plan.Allocations[pos].Records = append(plan.Allocations[pos].Records, r)
	}
	return recRows.Err()
}

func (s *Store) loadRejections(ctx context.Context, id pgtype.UUID, plan *core.DistributionPlan) error {
	rows, err := s.pool.Query(ctx, `
		SELECT row_number, reason, message, data
		FROM distribution_rejections
		WHERE distribution_id = $1
		ORDER BY row_number`, id)
	if err != nil {
		return fmt.Errorf("load rejections: %w", err)
	}

	plan.Rejections, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.RowRejection, error) {
		var (
			r    core.RowRejection
			data []byte
		)
		if err := row.Scan(&r.Row, &r.Reason, &r.Error, &data); err != nil {
			return r, err
		}
		return r, json.Unmarshal(data, &r.RawFields)
	})
	if err != nil {
		return fmt.Errorf("load rejections: %w", err)
	}
	return nil
}
