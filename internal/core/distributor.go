package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/leaddist/internal/logging"
)

// ErrNoRoster is returned when a Distributor has no RosterSelector.
var ErrNoRoster = errors.New("no roster selector configured")

// Prepare parses and validates an upload without touching any collaborator.
// It fails on undecodable input, missing required headers, a sheet with no
// data rows, and a sheet in which every row was rejected; in the last case
// the returned error is a *NoAcceptedRecordsError carrying the rejections.
func Prepare(data []byte, format Format) (ValidationResult, error) {
	table, err := ParseTable(data, format)
	if err != nil {
		return ValidationResult{}, err
	}

	if err := CheckHeaders(table.Header); err != nil {
		return ValidationResult{}, err
	}

	if len(table.Rows) == 0 {
		return ValidationResult{}, &EmptyInputError{}
	}

	result := ValidateRows(table.Rows)
	if len(result.Accepted) == 0 {
		return result, &NoAcceptedRecordsError{Rejections: result.Rejected}
	}

	return result, nil
}

// Distributor runs the full pipeline for one upload: prepare, select the
// roster, plan, record.
type Distributor struct {
	roster   RosterSelector
	recorder DistributionRecorder
}

// NewDistributor wires the pipeline to its collaborators.
func NewDistributor(roster RosterSelector, recorder DistributionRecorder) *Distributor {
	return &Distributor{roster: roster, recorder: recorder}
}

// Distribute processes an upload and returns the recorded plan.
// Preparation and planning failures abort before the recorder is called.
// Recorder failures are returned wrapped and never retried.
func (d *Distributor) Distribute(ctx context.Context, up Upload) (*Outcome, error) {
	start := time.Now()
	log := logging.WithFields(ctx,
		"file", up.FileName,
		"format", up.Format.String(),
		"uploaded_by", up.UploadedBy,
	)

	result, err := Prepare(up.Data, up.Format)
	if err != nil {
		log.Info("distribution rejected", "kind", KindOf(err), "error", err)
		return nil, err
	}

	if d.roster == nil {
		return nil, ErrNoRoster
	}
	targets, err := d.roster.EligibleTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	plan, err := PlanDistribution(up.FileName, result.Accepted, result.Rejected, targets)
	if err != nil {
		log.Info("distribution rejected", "kind", KindOf(err), "error", err)
		return nil, err
	}

	id := ""
	if d.recorder != nil {
		id, err = d.recorder.RecordDistribution(ctx, RecordRequest{
			Plan:       plan,
			UploadedBy: up.UploadedBy,
			FileName:   up.FileName,
		})
		if err != nil {
			return nil, fmt.Errorf("record distribution: %w", err)
		}
	}

	log.Info("distribution recorded",
		"distribution_id", id,
		"accepted", plan.TotalAccepted,
		"rejected", plan.RejectedCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Outcome{ID: id, Plan: plan, Summary: plan.Summary()}, nil
}
