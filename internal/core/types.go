package core

import (
	"context"
	"encoding/json"
)

// RequiredHeaders are the columns every uploaded sheet must carry.
// Matching is exact and case-sensitive; column order does not matter.
var RequiredHeaders = []string{"FirstName", "Phone", "Notes"}

// RequiredTargets is the number of agents a distribution is split across.
const RequiredTargets = 5

// MinPhoneDigits is the shortest phone number accepted after stripping
// every non-digit character.
const MinPhoneDigits = 7

// RawRow maps a header name to the cell value found under it.
// Every header key is present in every row; missing cells are "".
type RawRow map[string]string

// Table is the parsed form of an uploaded sheet.
type Table struct {
	Header []string
	Rows   []RawRow
}

// ContactRecord is a row that passed validation.
type ContactRecord struct {
	FirstName string `json:"firstName"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

// ReasonCode identifies why a row was rejected.
type ReasonCode string

const (
	ReasonMissingRequired ReasonCode = "missing-required"
	ReasonPhoneTooShort   ReasonCode = "phone-too-short"
)

// Message returns the human-readable explanation for the reason.
func (r ReasonCode) Message() string {
	switch r {
	case ReasonMissingRequired:
		return "Missing FirstName or Phone"
	case ReasonPhoneTooShort:
		return "Phone number too short"
	default:
		return string(r)
	}
}

// RowRejection records a data row that failed validation.
// Row is 1-based with the header on row 1, so the first data row is 2.
type RowRejection struct {
	Row       int        `json:"row"`
	Reason    ReasonCode `json:"reason"`
	Error     string     `json:"error"`
	RawFields RawRow     `json:"data"`
}

// DistributionTarget is an agent eligible to receive records.
type DistributionTarget struct {
	ID   string `json:"agentId"`
	Name string `json:"agentName"`
}

// AgentAllocation is the contiguous slice of records assigned to one target.
type AgentAllocation struct {
	Target  DistributionTarget
	Records []ContactRecord
	Count   int
}

type allocationJSON struct {
	AgentID     string          `json:"agentId"`
	AgentName   string          `json:"agentName"`
	RecordCount int             `json:"recordCount"`
	Records     []ContactRecord `json:"records"`
}

// MarshalJSON flattens the target into the allocation object.
func (a AgentAllocation) MarshalJSON() ([]byte, error) {
	records := a.Records
	if records == nil {
		records = []ContactRecord{}
	}
	return json.Marshal(allocationJSON{
		AgentID:     a.Target.ID,
		AgentName:   a.Target.Name,
		RecordCount: a.Count,
		Records:     records,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (a *AgentAllocation) UnmarshalJSON(data []byte) error {
	var v allocationJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	a.Target = DistributionTarget{ID: v.AgentID, Name: v.AgentName}
	a.Records = v.Records
	a.Count = v.RecordCount
	return nil
}

// DistributionPlan is the full result of one planning run.
type DistributionPlan struct {
	SourceFileName string            `json:"fileName"`
	TotalAccepted  int               `json:"totalRecords"`
	Allocations    []AgentAllocation `json:"distributions"`
	RejectedCount  int               `json:"skippedCount"`
	Rejections     []RowRejection    `json:"validationErrors"`
}

// AgentCount is the per-target line of a Summary.
type AgentCount struct {
	AgentID     string `json:"agentId"`
	AgentName   string `json:"agentName"`
	RecordCount int    `json:"recordCount"`
}

// Summary condenses a plan into counts for the caller.
type Summary struct {
	TotalRecords    int          `json:"totalRecords"`
	SkippedCount    int          `json:"skippedCount"`
	AgentsUsed      int          `json:"agentsUsed"`
	RecordsPerAgent []AgentCount `json:"recordsPerAgent"`
}

// Summary returns the per-target record counts of the plan.
func (p *DistributionPlan) Summary() Summary {
	s := Summary{
		TotalRecords:    p.TotalAccepted,
		SkippedCount:    p.RejectedCount,
		AgentsUsed:      len(p.Allocations),
		RecordsPerAgent: make([]AgentCount, len(p.Allocations)),
	}
	for i, a := range p.Allocations {
		s.RecordsPerAgent[i] = AgentCount{
			AgentID:     a.Target.ID,
			AgentName:   a.Target.Name,
			RecordCount: a.Count,
		}
	}
	return s
}

// Upload is one file handed to the Distributor.
type Upload struct {
	FileName   string
	Format     Format
	Data       []byte
	UploadedBy string
}

// RecordRequest is what a DistributionRecorder persists.
type RecordRequest struct {
	Plan       *DistributionPlan
	UploadedBy string
	FileName   string
}

// Outcome is returned to the caller after a successful run.
type Outcome struct {
	ID      string            `json:"id"`
	Plan    *DistributionPlan `json:"distribution"`
	Summary Summary           `json:"summary"`
}

// RosterSelector supplies the ordered, pre-filtered agents for a run.
// Implementations must return a snapshot that does not change for the
// duration of one planning call.
type RosterSelector interface {
	EligibleTargets(ctx context.Context) ([]DistributionTarget, error)
}

// DistributionRecorder persists a plan and returns its identifier.
type DistributionRecorder interface {
	RecordDistribution(ctx context.Context, req RecordRequest) (string, error)
}
