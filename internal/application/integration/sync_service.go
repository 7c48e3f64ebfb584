package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/woodcraft/backend/internal/domain/integration"
)

const instrumentationName = "github.com/woodcraft/backend/internal/application/integration"

// SyncConfig holds orchestration settings
type SyncConfig struct {
	// DefaultLanguage picks the description to push, e.g. "hu"
	DefaultLanguage string
	// ShopDomain is the public domain suffix used in entity URLs
	ShopDomain string
	// Retry is the 429 retry policy
	Retry RetryPolicy
	// BulkParallelism bounds concurrent runs in bulk operations
	BulkParallelism int
}

// SyncServiceDeps are the collaborators of the SyncService
type SyncServiceDeps struct {
	Entities    integration.EntityRepository
	Ledger      integration.SyncLedger
	Connections integration.ConnectionRepository
	Remotes     integration.RemoteCatalogProvider
	Aliases     *AliasReconciler
	// Importer is optional; without it the verification read is still made
	Importer integration.InboundImporter
	// TaxClasses is optional; without it no tax class is pushed
	TaxClasses integration.TaxClassMapper
}

// SyncService pushes one entity to the remote shop, reconciles its alias,
// pulls it back for verification and records the outcome in the ledger.
type SyncService struct {
	deps     SyncServiceDeps
	config   SyncConfig
	logger   *zap.Logger
	tracer   trace.Tracer
	runs     metric.Int64Counter
	duration metric.Float64Histogram
	now      func() time.Time
}

// NewSyncService creates a new SyncService
func NewSyncService(deps SyncServiceDeps, config SyncConfig, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DefaultLanguage == "" {
		config.DefaultLanguage = "hu"
	}
	if config.BulkParallelism <= 0 {
		config.BulkParallelism = 2
	}
	if deps.Aliases == nil {
		deps.Aliases = NewAliasReconciler(deps.Entities, DefaultMaxAliasCycles, logger)
	}
	meter := otel.Meter(instrumentationName)
	runs, _ := meter.Int64Counter("commerce.sync.runs",
		metric.WithDescription("Entity synchronization runs by entity type and outcome"))
	duration, _ := meter.Float64Histogram("commerce.sync.duration",
		metric.WithDescription("Entity synchronization run duration"),
		metric.WithUnit("s"))

	return &SyncService{
		deps:     deps,
		config:   config,
		logger:   logger.Named("sync"),
		tracer:   otel.Tracer(instrumentationName),
		runs:     runs,
		duration: duration,
		now:      time.Now,
	}
}

// SyncOutcome is the result of one run
type SyncOutcome struct {
	Success       bool
	Message       string
	Status        integration.SyncStatus
	EntityURL     string
	AliasID       string
	AliasState    integration.AliasState
	UsedTokenAuth bool
	Attempt       *integration.SyncAttempt
}

// Sync runs the full synchronization of one entity. A run that got past
// loading always leaves a terminal status in the ledger, whatever happens.
func (s *SyncService) Sync(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, entityID uuid.UUID) (*SyncOutcome, error) {
	if !entityType.IsValid() {
		return nil, integration.ErrInvalidEntityType
	}

	ctx, span := s.tracer.Start(ctx, "sync."+entityType.String(), trace.WithAttributes(
		attribute.String("entity.type", entityType.String()),
		attribute.String("entity.id", entityID.String()),
	))
	defer span.End()

	started := s.now()
	entity, err := s.deps.Entities.FindByID(ctx, tenantID, entityType, entityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	run := &syncRun{
		svc:     s,
		entity:  entity,
		attempt: integration.NewSyncAttempt(entityType, entityID, started),
		outcome: &SyncOutcome{EntityURL: entity.EntityURL, AliasID: entity.URLAliasID},
		logger: s.logger.With(
			zap.String("tenant_id", tenantID.String()),
			zap.String("entity_type", entityType.String()),
			zap.String("entity_id", entityID.String()),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		),
	}

	// Once loaded, a run is not cancellable; per-call timeouts bound it.
	runCtx := context.WithoutCancel(ctx)
	runErr := run.execute(runCtx, tenantID)
	err = run.finish(runCtx, runErr)

	status := run.outcome.Status.String()
	s.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity_type", entityType.String()),
		attribute.String("status", status),
	))
	s.duration.Record(ctx, s.now().Sub(started).Seconds(), metric.WithAttributes(
		attribute.String("entity_type", entityType.String()),
	))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return run.outcome, err
	}
	return run.outcome, nil
}

// ---------------------------------------------------------------------------
// syncRun
// ---------------------------------------------------------------------------

// syncRun holds the state of one orchestration
type syncRun struct {
	svc     *SyncService
	entity  *integration.SyncableEntity
	attempt *integration.SyncAttempt
	outcome *SyncOutcome
	logger  *zap.Logger

	conn        *integration.Connection
	description *integration.Description
	price       *integration.PushPrice
	slug        string
	remote      integration.RemoteCatalog
	language    *integration.RemoteLanguage
	failedStep  integration.SyncStep
}

// timed runs fn as a step and records its outcome. Errors are returned to
// the caller, which decides whether they abort the run.
func (r *syncRun) timed(ctx context.Context, step integration.SyncStep, fn func(ctx context.Context) (string, error)) error {
	ctx, span := r.svc.tracer.Start(ctx, "sync.step."+step.String())
	defer span.End()

	start := time.Now()
	detail, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.attempt.Fail(step, err, time.Since(start))
		return err
	}
	r.attempt.OK(step, detail, time.Since(start))
	return nil
}

// abort records err as the failure of step and skips the remaining steps
func (r *syncRun) abort(step integration.SyncStep, err error) error {
	r.failedStep = step
	return err
}

func (r *syncRun) execute(ctx context.Context, tenantID uuid.UUID) error {
	if err := r.timed(ctx, integration.StepLoad, func(ctx context.Context) (string, error) {
		return r.load(ctx, tenantID)
	}); err != nil {
		return r.abort(integration.StepLoad, err)
	}

	if err := r.timed(ctx, integration.StepAuth, r.authenticate); err != nil {
		return r.abort(integration.StepAuth, err)
	}

	if err := r.timed(ctx, integration.StepLanguage, func(ctx context.Context) (string, error) {
		lang, err := r.remote.FindLanguage(ctx, r.description.LanguageCode)
		if err != nil {
			return "", err
		}
		r.language = lang
		return lang.Code, nil
	}); err != nil {
		return r.abort(integration.StepLanguage, err)
	}

	// Scalar fields are best-effort.
	if err := r.timed(ctx, integration.StepFields, r.pushFields); err != nil {
		r.logger.Warn("Scalar field push failed, continuing", zap.Error(err))
	}

	if err := r.timed(ctx, integration.StepDescription, r.pushDescription); err != nil {
		return r.abort(integration.StepDescription, err)
	}

	if !r.entity.Type.SupportsTags() {
		r.attempt.Skip(integration.StepTags, "entity type has no tags")
	} else if err := r.timed(ctx, integration.StepTags, r.pushTags); err != nil {
		return r.abort(integration.StepTags, err)
	}

	entityURL := integration.BuildEntityURL(r.remote.ShopName(), r.svc.config.ShopDomain, r.slug)
	switch {
	case r.slug == "":
		r.attempt.Skip(integration.StepAlias, "no slug")
	case r.entity.URLSlug == r.slug && !r.entity.SlugChanged(entityURL):
		r.attempt.Skip(integration.StepAlias, "slug unchanged")
	default:
		if err := r.timed(ctx, integration.StepAlias, func(ctx context.Context) (string, error) {
			return r.reconcileAlias(ctx, entityURL)
		}); err != nil {
			return r.abort(integration.StepAlias, err)
		}
	}

	// Verification is advisory: a failure never downgrades the push.
	if err := r.timed(ctx, integration.StepVerify, r.verify); err != nil {
		r.logger.Warn("Verification pull failed", zap.Error(err))
		r.attempt.Warn("verification pull failed: " + err.Error())
	}
	return nil
}

// ---------------------------------------------------------------------------
// Steps
// ---------------------------------------------------------------------------

func (r *syncRun) load(ctx context.Context, tenantID uuid.UUID) (string, error) {
	conn, err := r.svc.deps.Connections.FindByID(ctx, tenantID, r.entity.ConnectionID)
	if err != nil {
		return "", err
	}
	r.conn = conn

	desc, err := r.entity.ChooseDescription(r.svc.config.DefaultLanguage)
	if err != nil {
		return "", err
	}
	r.description = desc

	if !r.entity.IsLinked() {
		return "", integration.ErrEntityNotLinked
	}

	if r.entity.Type.SupportsPricing() {
		price, err := r.entity.Pricing.Normalize()
		if err != nil {
			return "", err
		}
		if price.Derived {
			r.attempt.Warn("price derived from cost × multiplier: " + price.Price.String())
		}
		if price.Corrected {
			r.attempt.Warn(fmt.Sprintf("price %s corrected to %s", r.entity.Pricing.Price, price.Price))
		}
		r.price = &price
	}

	r.slug = integration.NormalizeSlug(r.entity.URLSlug)
	return desc.LanguageCode, nil
}

func (r *syncRun) authenticate(ctx context.Context) (string, error) {
	remote, err := r.svc.deps.Remotes.Open(ctx, r.conn)
	if err != nil {
		return "", err
	}
	r.remote = newRetryingCatalog(remote, r.svc.config.Retry, r.logger)
	r.outcome.UsedTokenAuth = remote.UsedTokenAuth()

	if err := r.remote.Probe(ctx); err != nil {
		return "", err
	}
	if remote.UsedTokenAuth() {
		return "token", nil
	}
	return "basic", nil
}

func (r *syncRun) pushFields(ctx context.Context) (string, error) {
	fields := integration.EntityFields{
		Active:    r.entity.Active,
		SortOrder: r.entity.SortOrder,
	}
	if r.entity.Type == integration.EntityTypeProduct {
		fields.SKU = r.entity.SKU
		fields.Price = r.price
		fields.TaxClassID = r.taxClass(ctx)
	}

	res, err := r.remote.UpdateEntity(ctx, r.entity.Type, r.entity.RemoteID, fields)
	if err != nil {
		return "", err
	}
	r.noteEmptyBody(res, "entity update")
	return "", nil
}

func (r *syncRun) taxClass(ctx context.Context) string {
	if r.entity.VatID == "" || r.svc.deps.TaxClasses == nil {
		return ""
	}
	id, err := r.svc.deps.TaxClasses.RemoteTaxClassID(ctx, r.conn.ID, r.entity.VatID)
	if err != nil {
		if errors.Is(err, integration.ErrTaxClassNotMapped) {
			r.attempt.Warn("no remote tax class mapped for VAT " + r.entity.VatID)
		} else {
			r.attempt.Warn("tax class lookup failed: " + err.Error())
		}
		return ""
	}
	return id
}

func (r *syncRun) pushDescription(ctx context.Context) (string, error) {
	desc := r.description
	remoteID := desc.RemoteID

	if remoteID == "" {
		existing, err := r.remote.FindDescription(ctx, r.entity.Type, r.entity.RemoteID, r.language.ID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			remoteID = existing.ID
		}
	}

	if remoteID != "" {
		res, err := r.remote.UpdateDescription(ctx, r.entity.Type, remoteID, *desc)
		if err == nil {
			r.noteEmptyBody(res, "description update")
			return "updated", r.storeDescriptionID(ctx, remoteID)
		}
		if !errors.Is(err, integration.ErrRemoteNotFound) {
			return "", err
		}
		r.logger.Warn("Stored description id is gone remotely, creating", zap.String("description_id", remoteID))
	}

	res, err := r.remote.CreateDescription(ctx, r.entity.Type, r.entity.RemoteID, r.language.ID, *desc)
	if err != nil {
		return "", err
	}
	r.noteEmptyBody(res, "description create")
	return "created", r.storeDescriptionID(ctx, res.ID)
}

func (r *syncRun) storeDescriptionID(ctx context.Context, remoteID string) error {
	if remoteID == "" || remoteID == r.description.RemoteID {
		return nil
	}
	if err := r.svc.deps.Entities.SetDescriptionRemoteID(ctx, r.description.ID, remoteID); err != nil {
		return err
	}
	r.description.RemoteID = remoteID
	return nil
}

func (r *syncRun) pushTags(ctx context.Context) (string, error) {
	tag := r.entity.TagFor(r.description.LanguageCode)

	existingID := tag.RemoteID
	if existingID == "" {
		found, err := r.remote.FindTag(ctx, r.entity.RemoteID, r.language.ID)
		if err != nil {
			return "", err
		}
		if found != nil {
			existingID = found.ID
		}
	}

	switch {
	case tag.IsEmpty() && existingID == "":
		return "nothing to do", nil
	case tag.IsEmpty():
		if err := r.remote.DeleteTag(ctx, existingID); err != nil {
			return "", err
		}
		return "deleted", r.svc.deps.Entities.SetTagRemoteID(ctx, r.entity.ID, tag.LanguageCode, "")
	}

	if existingID != "" {
		res, err := r.remote.UpdateTag(ctx, existingID, tag.Text)
		if err == nil {
			r.noteEmptyBody(res, "tag update")
			return "updated", r.storeTagID(ctx, tag, existingID)
		}
		if !errors.Is(err, integration.ErrRemoteNotFound) {
			return "", err
		}
	}

	res, err := r.remote.CreateTag(ctx, r.entity.RemoteID, r.language.ID, tag.Text)
	if err != nil {
		return "", err
	}
	r.noteEmptyBody(res, "tag create")
	return "created", r.storeTagID(ctx, tag, res.ID)
}

func (r *syncRun) storeTagID(ctx context.Context, tag integration.Tag, remoteID string) error {
	if remoteID == "" || remoteID == tag.RemoteID {
		return nil
	}
	return r.svc.deps.Entities.SetTagRemoteID(ctx, r.entity.ID, tag.LanguageCode, remoteID)
}

func (r *syncRun) reconcileAlias(ctx context.Context, entityURL string) (string, error) {
	out, err := r.svc.deps.Aliases.Reconcile(ctx, r.remote, AliasRequest{
		EntityType:   r.entity.Type,
		EntityID:     r.entity.ID,
		RemoteID:     r.entity.RemoteID,
		Slug:         r.slug,
		KnownAliasID: r.entity.URLAliasID,
		EntityURL:    entityURL,
	})
	if out != nil {
		r.outcome.AliasState = out.State
	}
	if err != nil {
		return "", err
	}
	r.entity.RecordAlias(out.Slug, out.AliasID, out.EntityURL)
	r.outcome.AliasID = out.AliasID
	r.outcome.EntityURL = out.EntityURL
	return out.State.String(), nil
}

func (r *syncRun) verify(ctx context.Context) (string, error) {
	snapshot, err := r.remote.GetEntity(ctx, r.entity.Type, r.entity.RemoteID)
	if err != nil {
		return "", err
	}
	if r.svc.deps.Importer == nil {
		return "read only", nil
	}
	if err := r.svc.deps.Importer.Refresh(ctx, r.conn, r.remote.ShopName(), snapshot); err != nil {
		return "", fmt.Errorf("inbound import: %w", err)
	}
	return "imported", nil
}

func (r *syncRun) noteEmptyBody(res integration.WriteResult, what string) {
	if !res.EmptyBody {
		return
	}
	msg := fmt.Sprintf("%s answered with an empty body (token auth: %t)", what, r.outcome.UsedTokenAuth)
	r.attempt.Warn(msg)
	r.logger.Warn("Remote write returned an empty body",
		zap.String("operation", what),
		zap.Bool("used_token_auth", r.outcome.UsedTokenAuth),
	)
}

// finish writes the terminal status. It runs on a context that outlives
// request cancellation.
func (r *syncRun) finish(ctx context.Context, runErr error) error {
	now := r.svc.now()
	r.outcome.Attempt = r.attempt

	var syncErr error
	if runErr != nil {
		syncErr = &integration.SyncError{
			EntityType: r.entity.Type,
			EntityID:   r.entity.ID,
			Step:       r.failedStep,
			Err:        runErr,
		}
		message := integration.ErrorCode(runErr) + ": " + runErr.Error()
		r.entity.MarkError(message, now)
		r.outcome.Status = integration.SyncStatusError
		r.outcome.Message = message
	} else {
		r.entity.MarkSynced(now)
		r.outcome.Success = true
		r.outcome.Status = integration.SyncStatusSynced
		r.outcome.Message = fmt.Sprintf("%s synced (%s)", r.entity.Type, r.attempt.Summary())
	}

	if err := r.svc.deps.Ledger.Record(ctx, r.entity.Type, r.entity.ID, r.outcome.Status, r.entity.SyncError, &now); err != nil {
		r.attempt.Fail(integration.StepStatus, err, 0)
		r.logger.Error("Failed to record sync status", zap.Error(err))
		if syncErr == nil {
			r.outcome.Success = false
			return &integration.SyncError{EntityType: r.entity.Type, EntityID: r.entity.ID, Step: integration.StepStatus, Err: err}
		}
	} else {
		r.attempt.OK(integration.StepStatus, r.outcome.Status.String(), 0)
	}

	fields := []zap.Field{
		zap.String("status", r.outcome.Status.String()),
		zap.String("steps", r.attempt.Summary()),
		zap.Strings("warnings", r.attempt.Warnings),
		zap.Bool("used_token_auth", r.outcome.UsedTokenAuth),
	}
	if syncErr != nil {
		r.logger.Warn("Sync failed", append(fields,
			zap.String("failed_step", r.failedStep.String()),
			zap.String("error_code", integration.ErrorCode(runErr)),
			zap.Error(runErr),
		)...)
		return syncErr
	}
	r.logger.Info("Sync completed", fields...)
	return nil
}
