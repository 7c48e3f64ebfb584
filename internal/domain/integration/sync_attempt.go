package integration

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// SyncStep
// ---------------------------------------------------------------------------

// SyncStep names one step of a synchronization run
type SyncStep string

const (
	StepLoad        SyncStep = "load"
	StepAuth        SyncStep = "auth"
	StepLanguage    SyncStep = "language"
	StepFields      SyncStep = "fields"
	StepDescription SyncStep = "description"
	StepTags        SyncStep = "tags"
	StepAlias       SyncStep = "alias"
	StepVerify      SyncStep = "verify"
	StepStatus      SyncStep = "status"
)

// String returns the string representation of SyncStep
func (s SyncStep) String() string {
	return string(s)
}

// StepOutcome is the result of a step
type StepOutcome string

const (
	StepOK      StepOutcome = "ok"
	StepSkipped StepOutcome = "skipped"
	StepFailed  StepOutcome = "failed"
)

// StepRecord is one entry of a SyncAttempt
type StepRecord struct {
	// Step is the step name
	Step SyncStep
	// Outcome is ok, skipped or failed
	Outcome StepOutcome
	// Detail is a short human readable note
	Detail string
	// Err is set for failed steps
	Err error
	// Duration is how long the step took
	Duration time.Duration
}

// ---------------------------------------------------------------------------
// SyncAttempt
// ---------------------------------------------------------------------------

// SyncAttempt is the ephemeral record of one run. It is never persisted;
// the ledger keeps only the terminal status.
type SyncAttempt struct {
	// EntityType is the synchronized entity type
	EntityType EntityType
	// EntityID is the local entity identifier
	EntityID uuid.UUID
	// StartedAt is when the run began
	StartedAt time.Time
	// Steps is the ordered step list
	Steps []StepRecord
	// Warnings collects non fatal findings (empty bodies, unmapped tax class)
	Warnings []string
}

// NewSyncAttempt starts a new attempt record
func NewSyncAttempt(entityType EntityType, entityID uuid.UUID, startedAt time.Time) *SyncAttempt {
	return &SyncAttempt{
		EntityType: entityType,
		EntityID:   entityID,
		StartedAt:  startedAt,
		Steps:      make([]StepRecord, 0, 9),
	}
}

// OK records a successful step
func (a *SyncAttempt) OK(step SyncStep, detail string, d time.Duration) {
	a.Steps = append(a.Steps, StepRecord{Step: step, Outcome: StepOK, Detail: detail, Duration: d})
}

// Skip records a skipped step
func (a *SyncAttempt) Skip(step SyncStep, detail string) {
	a.Steps = append(a.Steps, StepRecord{Step: step, Outcome: StepSkipped, Detail: detail})
}

// Fail records a failed step
func (a *SyncAttempt) Fail(step SyncStep, err error, d time.Duration) {
	a.Steps = append(a.Steps, StepRecord{Step: step, Outcome: StepFailed, Err: err, Detail: err.Error(), Duration: d})
}

// Warn records a non fatal finding
func (a *SyncAttempt) Warn(msg string) {
	a.Warnings = append(a.Warnings, msg)
}

// Outcome returns the recorded outcome of a step, or empty if it never ran
func (a *SyncAttempt) Outcome(step SyncStep) StepOutcome {
	for i := len(a.Steps) - 1; i >= 0; i-- {
		if a.Steps[i].Step == step {
			return a.Steps[i].Outcome
		}
	}
	return ""
}

// FailedSteps returns the names of failed steps in order
func (a *SyncAttempt) FailedSteps() []SyncStep {
	var out []SyncStep
	for _, s := range a.Steps {
		if s.Outcome == StepFailed {
			out = append(out, s.Step)
		}
	}
	return out
}

// Summary renders the attempt as "step=outcome" pairs
func (a *SyncAttempt) Summary() string {
	parts := make([]string, 0, len(a.Steps))
	for _, s := range a.Steps {
		parts = append(parts, string(s.Step)+"="+string(s.Outcome))
	}
	return strings.Join(parts, " ")
}

// ---------------------------------------------------------------------------
// Batch results
// ---------------------------------------------------------------------------

// BatchStatus is the aggregate status of a bulk run
type BatchStatus string

const (
	BatchStatusSuccess BatchStatus = "SUCCESS"
	BatchStatusPartial BatchStatus = "PARTIAL"
	BatchStatusFailed  BatchStatus = "FAILED"
)

// SyncResult represents the result of a bulk sync operation
type SyncResult struct {
	// Status is the overall sync status
	Status BatchStatus
	// TotalCount is the total number of items to sync
	TotalCount int
	// SuccessCount is the number of successfully synced items
	SuccessCount int
	// FailedCount is the number of failed items
	FailedCount int
	// FailedItems contains details about failed items
	FailedItems []SyncFailure
	// SyncedAt is when the sync completed
	SyncedAt time.Time
}

// SyncFailure represents a failed sync item
type SyncFailure struct {
	// ItemID is the identifier of the failed item
	ItemID string
	// ErrorCode is the taxonomy code
	ErrorCode string
	// ErrorMessage is the error description
	ErrorMessage string
}

// Finalize derives Status and the counters from FailedItems
func (r *SyncResult) Finalize(at time.Time) {
	r.FailedCount = len(r.FailedItems)
	r.SuccessCount = r.TotalCount - r.FailedCount
	switch {
	case r.FailedCount == 0:
		r.Status = BatchStatusSuccess
	case r.SuccessCount == 0:
		r.Status = BatchStatusFailed
	default:
		r.Status = BatchStatusPartial
	}
	r.SyncedAt = at
}
