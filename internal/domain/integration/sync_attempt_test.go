package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSyncAttempt_Record(t *testing.T) {
	a := NewSyncAttempt(EntityTypeProduct, uuid.New(), time.Now())
	a.OK(StepLoad, "", time.Millisecond)
	a.Skip(StepTags, "no tag wanted")
	a.Fail(StepAlias, errors.New("slug taken"), time.Millisecond)
	a.Warn("empty body")

	assert.Equal(t, StepOK, a.Outcome(StepLoad))
	assert.Equal(t, StepSkipped, a.Outcome(StepTags))
	assert.Equal(t, StepFailed, a.Outcome(StepAlias))
	assert.Equal(t, StepOutcome(""), a.Outcome(StepVerify))
	assert.Equal(t, []SyncStep{StepAlias}, a.FailedSteps())
	assert.Equal(t, "load=ok tags=skipped alias=failed", a.Summary())
	assert.Len(t, a.Warnings, 1)
}

func TestSyncResult_Finalize(t *testing.T) {
	now := time.Now()

	r := &SyncResult{TotalCount: 3}
	r.Finalize(now)
	assert.Equal(t, BatchStatusSuccess, r.Status)
	assert.Equal(t, 3, r.SuccessCount)

	r = &SyncResult{TotalCount: 3, FailedItems: []SyncFailure{{ItemID: "a"}}}
	r.Finalize(now)
	assert.Equal(t, BatchStatusPartial, r.Status)
	assert.Equal(t, 2, r.SuccessCount)
	assert.Equal(t, 1, r.FailedCount)

	r = &SyncResult{TotalCount: 1, FailedItems: []SyncFailure{{ItemID: "a"}}}
	r.Finalize(now)
	assert.Equal(t, BatchStatusFailed, r.Status)
}

func TestAliasState(t *testing.T) {
	assert.True(t, AliasStateCreated.IsSuccess())
	assert.True(t, AliasStateUnresolvable.IsTerminal())
	assert.False(t, AliasStateUnresolvable.IsSuccess())
	assert.False(t, AliasStateConflictDetected.IsTerminal())

	alias := &URLAlias{ID: "42", Slug: "oak-panel", EntityType: EntityTypeProduct, OwnerID: "p1"}
	assert.True(t, alias.OwnedBy(EntityTypeProduct, "p1"))
	assert.False(t, alias.OwnedBy(EntityTypeProduct, "p2"))
	assert.False(t, alias.OwnedBy(EntityTypeCategory, "p1"))
	var none *URLAlias
	assert.False(t, none.OwnedBy(EntityTypeProduct, "p1"))
}
