package dto

import (
	"time"

	appintegration "github.com/woodcraft/backend/internal/application/integration"
	"github.com/woodcraft/backend/internal/domain/integration"
)

// BulkSyncRequest selects the entities of a bulk run. Either IDs are given
// or Pending picks up entities whose status is still pending.
type BulkSyncRequest struct {
	IDs         []string `json:"ids" binding:"omitempty,max=500,dive,uuid"`
	Pending     bool     `json:"pending"`
	Limit       int      `json:"limit" binding:"omitempty,min=1,max=500"`
	Parallelism int      `json:"parallelism" binding:"omitempty,min=1,max=16"`
}

// ListStatusQuery filters ledger listings
type ListStatusQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending synced error"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// StepResponse is one step of a sync run
type StepResponse struct {
	Step       string `json:"step"`
	Outcome    string `json:"outcome"`
	Detail     string `json:"detail,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// SyncOutcomeResponse is the result of a single entity sync
type SyncOutcomeResponse struct {
	Success       bool           `json:"success"`
	Status        string         `json:"status"`
	Message       string         `json:"message"`
	EntityURL     string         `json:"entity_url,omitempty"`
	AliasID       string         `json:"alias_id,omitempty"`
	AliasState    string         `json:"alias_state,omitempty"`
	UsedTokenAuth bool           `json:"used_token_auth"`
	Steps         []StepResponse `json:"steps,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
}

// ToSyncOutcomeResponse converts a run outcome
func ToSyncOutcomeResponse(o *appintegration.SyncOutcome) SyncOutcomeResponse {
	resp := SyncOutcomeResponse{
		Success:       o.Success,
		Status:        o.Status.String(),
		Message:       o.Message,
		EntityURL:     o.EntityURL,
		AliasID:       o.AliasID,
		AliasState:    o.AliasState.String(),
		UsedTokenAuth: o.UsedTokenAuth,
	}
	if o.Attempt != nil {
		resp.Warnings = o.Attempt.Warnings
		resp.Steps = make([]StepResponse, 0, len(o.Attempt.Steps))
		for _, s := range o.Attempt.Steps {
			resp.Steps = append(resp.Steps, StepResponse{
				Step:       s.Step.String(),
				Outcome:    string(s.Outcome),
				Detail:     s.Detail,
				DurationMS: s.Duration.Milliseconds(),
			})
		}
	}
	return resp
}

// SyncFailureResponse describes one failed entity of a bulk run
type SyncFailureResponse struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkSyncResponse is the aggregate result of a bulk run
type BulkSyncResponse struct {
	Status       string                `json:"status"`
	TotalCount   int                   `json:"total_count"`
	SuccessCount int                   `json:"success_count"`
	FailedCount  int                   `json:"failed_count"`
	Failures     []SyncFailureResponse `json:"failures,omitempty"`
	SyncedAt     time.Time             `json:"synced_at"`
}

// ToBulkSyncResponse converts a batch result
func ToBulkSyncResponse(r *integration.SyncResult) BulkSyncResponse {
	resp := BulkSyncResponse{
		Status:       string(r.Status),
		TotalCount:   r.TotalCount,
		SuccessCount: r.SuccessCount,
		FailedCount:  r.FailedCount,
		SyncedAt:     r.SyncedAt,
	}
	for _, f := range r.FailedItems {
		resp.Failures = append(resp.Failures, SyncFailureResponse{
			ID:      f.ItemID,
			Code:    f.ErrorCode,
			Message: f.ErrorMessage,
		})
	}
	return resp
}

// SyncStatusResponse is the ledger state of one entity
type SyncStatusResponse struct {
	EntityType   string     `json:"entity_type"`
	EntityID     string     `json:"entity_id"`
	RemoteID     string     `json:"remote_id,omitempty"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	EntityURL    string     `json:"entity_url,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// ToSyncStatusResponse converts a ledger entry
func ToSyncStatusResponse(e integration.LedgerEntry) SyncStatusResponse {
	return SyncStatusResponse{
		EntityType:   e.EntityType.String(),
		EntityID:     e.EntityID.String(),
		RemoteID:     e.RemoteID,
		Status:       e.Status.String(),
		Error:        e.Error,
		EntityURL:    e.EntityURL,
		LastSyncedAt: e.LastSyncedAt,
	}
}

// ToSyncStatusResponses converts a ledger listing
func ToSyncStatusResponses(entries []integration.LedgerEntry) []SyncStatusResponse {
	out := make([]SyncStatusResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToSyncStatusResponse(e))
	}
	return out
}
