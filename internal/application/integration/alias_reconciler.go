package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/woodcraft/backend/internal/domain/integration"
)

// DefaultMaxAliasCycles bounds create/update attempts per reconciliation:
// the first write plus one "fix drift and retry" cycle.
const DefaultMaxAliasCycles = 2

// AliasStore persists the outcome of a reconciliation
type AliasStore interface {
	UpdateAlias(ctx context.Context, entityType integration.EntityType, id uuid.UUID, slug, aliasID, entityURL string) error
}

// AliasRequest describes the alias an entity should end up with
type AliasRequest struct {
	EntityType   integration.EntityType
	EntityID     uuid.UUID
	RemoteID     string
	Slug         string
	KnownAliasID string
	EntityURL    string
}

// AliasOutcome is the result of a reconciliation
type AliasOutcome struct {
	AliasID   string
	Slug      string
	EntityURL string
	State     integration.AliasState
	// Trail lists every state visited, in order
	Trail []integration.AliasState
	// RemoteWrites counts create, update and delete calls
	RemoteWrites int
}

// AliasReconciler drives an entity's URL alias to the desired slug on the
// remote shop. A slug owned by another entity is never taken over, and the
// local row is written only after the remote side agrees.
type AliasReconciler struct {
	store     AliasStore
	maxCycles int
	logger    *zap.Logger
}

// NewAliasReconciler creates a reconciler
func NewAliasReconciler(store AliasStore, maxCycles int, logger *zap.Logger) *AliasReconciler {
	if maxCycles <= 0 {
		maxCycles = DefaultMaxAliasCycles
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AliasReconciler{store: store, maxCycles: maxCycles, logger: logger.Named("alias")}
}

// aliasRun holds the mutable state of one reconciliation
type aliasRun struct {
	r        *AliasReconciler
	remote   integration.RemoteCatalog
	req      AliasRequest
	aliasID  string
	conflict *integration.RemoteError
	cycles   int
	out      *AliasOutcome
	logger   *zap.Logger
}

// Reconcile runs the state machine until it reaches a terminal state, then
// persists slug, alias id and URL.
func (r *AliasReconciler) Reconcile(ctx context.Context, remote integration.RemoteCatalog, req AliasRequest) (*AliasOutcome, error) {
	if req.Slug == "" || req.RemoteID == "" {
		return nil, fmt.Errorf("%w: alias needs a slug and a remote entity", integration.ErrRemoteValidation)
	}

	run := &aliasRun{
		r:       r,
		remote:  remote,
		req:     req,
		aliasID: req.KnownAliasID,
		out:     &AliasOutcome{Slug: req.Slug, EntityURL: req.EntityURL},
		logger: r.logger.With(
			zap.String("entity_type", req.EntityType.String()),
			zap.String("remote_id", req.RemoteID),
			zap.String("slug", req.Slug),
		),
	}

	state := integration.AliasStateNoKnownAlias
	if run.aliasID != "" {
		state = integration.AliasStateKnown
	}

	for {
		run.out.Trail = append(run.out.Trail, state)
		if state.IsTerminal() {
			break
		}
		next, err := run.step(ctx, state)
		if err != nil {
			run.out.State = integration.AliasStateUnresolvable
			run.out.Trail = append(run.out.Trail, integration.AliasStateUnresolvable)
			run.logger.Warn("Alias reconciliation failed",
				zap.Strings("trail", trailStrings(run.out.Trail)),
				zap.Error(err),
			)
			return run.out, err
		}
		state = next
	}

	run.out.State = state
	run.out.AliasID = run.aliasID
	if err := r.store.UpdateAlias(ctx, req.EntityType, req.EntityID, req.Slug, run.aliasID, req.EntityURL); err != nil {
		return run.out, fmt.Errorf("persist alias: %w", err)
	}
	run.logger.Info("Alias reconciled",
		zap.String("alias_id", run.aliasID),
		zap.String("state", state.String()),
		zap.Int("remote_writes", run.out.RemoteWrites),
	)
	return run.out, nil
}

func (run *aliasRun) step(ctx context.Context, state integration.AliasState) (integration.AliasState, error) {
	switch state {
	case integration.AliasStateNoKnownAlias:
		return run.lookupExisting(ctx)
	case integration.AliasStateCreating:
		return run.create(ctx)
	case integration.AliasStateKnown:
		return run.recheck(ctx)
	case integration.AliasStateUpdating:
		return run.update(ctx)
	case integration.AliasStateConflictDetected:
		return run.resolveConflict(ctx)
	default:
		return "", fmt.Errorf("alias: unexpected state %s", state)
	}
}

// lookupExisting adopts an alias the entity already owns remotely
func (run *aliasRun) lookupExisting(ctx context.Context) (integration.AliasState, error) {
	entity, err := run.remote.GetEntity(ctx, run.req.EntityType, run.req.RemoteID)
	if err != nil {
		return "", err
	}
	existing := entity.AliasFor()
	if existing == nil || existing.ID == "" {
		return integration.AliasStateCreating, nil
	}
	run.aliasID = existing.ID
	if existing.Slug == run.req.Slug {
		return integration.AliasStateResolvedBySameOwner, nil
	}
	return integration.AliasStateKnown, nil
}

func (run *aliasRun) create(ctx context.Context) (integration.AliasState, error) {
	if err := run.nextCycle(); err != nil {
		return "", err
	}
	created, err := run.remote.CreateAlias(ctx, run.req.EntityType, run.req.RemoteID, run.req.Slug)
	run.out.RemoteWrites++
	switch {
	case err == nil && created.ID != "":
		run.aliasID = created.ID
		return integration.AliasStateCreated, nil
	case err == nil:
		// Created without an id in the answer: find it.
		found, err := run.remote.FindAliasBySlug(ctx, run.req.EntityType, run.req.Slug)
		if err != nil {
			return "", err
		}
		if !found.OwnedBy(run.req.EntityType, run.req.RemoteID) {
			return "", fmt.Errorf("%w: alias %q was created but cannot be found", integration.ErrRemoteValidation, run.req.Slug)
		}
		run.aliasID = found.ID
		return integration.AliasStateCreated, nil
	case errors.Is(err, integration.ErrRemoteConflict):
		run.conflict, _ = integration.AsRemoteError(err)
		return integration.AliasStateConflictDetected, nil
	default:
		return "", err
	}
}

// recheck looks the desired slug up before updating a known alias
func (run *aliasRun) recheck(ctx context.Context) (integration.AliasState, error) {
	found, err := run.remote.FindAliasBySlug(ctx, run.req.EntityType, run.req.Slug)
	if err != nil {
		return "", err
	}
	if found == nil {
		return integration.AliasStateUpdating, nil
	}
	return run.adopt(ctx, found, integration.AliasStateResolvedBySearch)
}

func (run *aliasRun) update(ctx context.Context) (integration.AliasState, error) {
	if err := run.nextCycle(); err != nil {
		return "", err
	}
	_, err := run.remote.UpdateAliasSlug(ctx, run.aliasID, run.req.Slug)
	run.out.RemoteWrites++
	switch {
	case err == nil:
		return integration.AliasStateUpdated, nil
	case errors.Is(err, integration.ErrRemoteConflict):
		run.conflict, _ = integration.AsRemoteError(err)
		return integration.AliasStateConflictDetected, nil
	case errors.Is(err, integration.ErrRemoteNotFound):
		run.logger.Warn("Known alias no longer exists remotely", zap.String("alias_id", run.aliasID))
		run.aliasID = ""
		return integration.AliasStateCreating, nil
	default:
		return "", err
	}
}

// resolveConflict finds the alias holding the slug: by the id in the 409
// body when present, by searching the slug otherwise.
func (run *aliasRun) resolveConflict(ctx context.Context) (integration.AliasState, error) {
	var found *integration.URLAlias
	via := integration.AliasStateResolvedBySearch

	if run.conflict != nil && run.conflict.ConflictingID != "" {
		alias, err := run.remote.GetAlias(ctx, run.conflict.ConflictingID)
		if err != nil {
			return "", err
		}
		if alias != nil && (alias.Slug == "" || alias.Slug == run.req.Slug) {
			found = alias
			via = integration.AliasStateResolvedByIDFromErrorBody
		}
	}
	if found == nil {
		alias, err := run.remote.FindAliasBySlug(ctx, run.req.EntityType, run.req.Slug)
		if err != nil {
			return "", err
		}
		found = alias
	}
	run.conflict = nil

	if found == nil {
		// The holder vanished between the 409 and the lookup.
		if run.cycles >= run.r.maxCycles {
			return "", run.unconverged()
		}
		if run.aliasID != "" {
			return integration.AliasStateUpdating, nil
		}
		return integration.AliasStateCreating, nil
	}
	return run.adopt(ctx, found, via)
}

// adopt accepts an alias holding the desired slug if the entity owns it.
// A different stale id known for the entity is deleted.
func (run *aliasRun) adopt(ctx context.Context, found *integration.URLAlias, via integration.AliasState) (integration.AliasState, error) {
	if found.EntityType == "" {
		found.EntityType = run.req.EntityType
	}
	if !found.OwnedBy(run.req.EntityType, run.req.RemoteID) {
		return "", fmt.Errorf("%w: slug %q belongs to %s %s (alias %s)",
			integration.ErrAliasConflict, run.req.Slug, found.EntityType, found.OwnerID, found.ID)
	}
	if run.aliasID == found.ID {
		return integration.AliasStateResolvedBySameOwner, nil
	}
	if run.aliasID != "" {
		run.logger.Info("Dropping stale alias",
			zap.String("stale_alias_id", run.aliasID),
			zap.String("alias_id", found.ID),
		)
		if err := run.remote.DeleteAlias(ctx, run.aliasID); err != nil {
			return "", err
		}
		run.out.RemoteWrites++
	}
	run.aliasID = found.ID
	return via, nil
}

func (run *aliasRun) nextCycle() error {
	if run.cycles >= run.r.maxCycles {
		return run.unconverged()
	}
	run.cycles++
	return nil
}

func (run *aliasRun) unconverged() error {
	return fmt.Errorf("%w: alias %q did not converge after %d attempts",
		integration.ErrRemoteValidation, run.req.Slug, run.cycles)
}

func trailStrings(trail []integration.AliasState) []string {
	out := make([]string, len(trail))
	for i, s := range trail {
		out[i] = s.String()
	}
	return out
}
