package integration

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/woodcraft/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// fakeShop: a stateful in-memory remote platform
// ---------------------------------------------------------------------------

type fakeDescription struct {
	entityType integration.EntityType
	entityID   string
	desc       integration.RemoteDescription
}

type fakeTag struct {
	productID string
	tag       integration.RemoteTag
}

type fakeShop struct {
	mu sync.Mutex

	shop      string
	tokenAuth bool

	languages    []integration.RemoteLanguage
	entities     map[string]*integration.RemoteEntity
	descriptions map[string]*fakeDescription
	tags         map[string]*fakeTag
	aliases      map[string]*integration.URLAlias
	nextID       int

	// failures queues errors per method name, consumed in order
	failures map[string][]error
	calls    map[string]int

	fieldsPushed []integration.EntityFields
	// omitCreatedAliasID simulates a create answered without an id
	omitCreatedAliasID bool
	// emptyWrites makes every write answer with an empty body
	emptyWrites bool
	// onCall runs after a call was recorded
	onCall func(method string)
}

var _ integration.RemoteCatalog = (*fakeShop)(nil)

func newFakeShop(shop string) *fakeShop {
	return &fakeShop{
		shop: shop,
		languages: []integration.RemoteLanguage{
			{ID: "lang-hu", Code: "hu", Name: "Magyar"},
			{ID: "lang-en", Code: "en", Name: "English"},
		},
		entities:     make(map[string]*integration.RemoteEntity),
		descriptions: make(map[string]*fakeDescription),
		tags:         make(map[string]*fakeTag),
		aliases:      make(map[string]*integration.URLAlias),
		nextID:       100,
		failures:     make(map[string][]error),
		calls:        make(map[string]int),
	}
}

func entityKey(t integration.EntityType, id string) string {
	return string(t) + "/" + id
}

func (f *fakeShop) addEntity(t integration.EntityType, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entities[entityKey(t, id)] = &integration.RemoteEntity{ID: id, Type: t}
}

func (f *fakeShop) addAlias(id string, t integration.EntityType, ownerID, slug string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aliases[id] = &integration.URLAlias{ID: id, Slug: slug, EntityType: t, OwnerID: ownerID}
}

func (f *fakeShop) addDescription(id string, t integration.EntityType, entityID, languageID, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.descriptions[id] = &fakeDescription{entityType: t, entityID: entityID,
		desc: integration.RemoteDescription{ID: id, LanguageID: languageID, Name: name}}
}

func (f *fakeShop) addTag(id, productID, languageID, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags[id] = &fakeTag{productID: productID, tag: integration.RemoteTag{ID: id, LanguageID: languageID, Text: text}}
}

func (f *fakeShop) failNext(method string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = append(f.failures[method], errs...)
}

func (f *fakeShop) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeShop) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range []string{"UpdateEntity", "CreateDescription", "UpdateDescription", "CreateTag",
		"UpdateTag", "DeleteTag", "CreateAlias", "UpdateAliasSlug", "DeleteAlias"} {
		n += f.calls[m]
	}
	return n
}

func (f *fakeShop) aliasesFor(t integration.EntityType, ownerID string) []integration.URLAlias {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []integration.URLAlias
	for _, a := range f.aliases {
		if a.EntityType == t && a.OwnerID == ownerID {
			out = append(out, *a)
		}
	}
	return out
}

func (f *fakeShop) descriptionsOf(t integration.EntityType, entityID string) []integration.RemoteDescription {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []integration.RemoteDescription
	for _, d := range f.descriptions {
		if d.entityType == t && d.entityID == entityID {
			out = append(out, d.desc)
		}
	}
	return out
}

func (f *fakeShop) tagsOf(productID string) []integration.RemoteTag {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []integration.RemoteTag
	for _, t := range f.tags {
		if t.productID == productID {
			out = append(out, t.tag)
		}
	}
	return out
}

// enter records a call and pops a queued failure. Like the real limiter it
// refuses to start a call on a cancelled context. Callers hold f.mu.
func (f *fakeShop) enter(ctx context.Context, method string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.calls[method]++
	if f.onCall != nil {
		f.onCall(method)
	}
	if q := f.failures[method]; len(q) > 0 {
		f.failures[method] = q[1:]
		return q[0]
	}
	return nil
}

func (f *fakeShop) newID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *fakeShop) write(id string) integration.WriteResult {
	if f.emptyWrites {
		return integration.WriteResult{EmptyBody: true}
	}
	return integration.WriteResult{ID: id}
}

func notFound(resource string) error {
	return &integration.RemoteError{Kind: integration.ErrRemoteNotFound, Method: "GET", Resource: resource, StatusCode: 404}
}

func conflict(resource, conflictingID string) error {
	return &integration.RemoteError{
		Kind:          integration.ErrRemoteConflict,
		Method:        "POST",
		Resource:      resource,
		StatusCode:    409,
		Body:          fmt.Sprintf(`{"id":"%s"}`, conflictingID),
		ConflictingID: conflictingID,
	}
}

func rateLimited(retryAfter time.Duration) error {
	return &integration.RemoteError{Kind: integration.ErrRateLimited, Method: "PUT", Resource: "x", StatusCode: 429, RetryAfter: retryAfter}
}

func (f *fakeShop) ShopName() string    { return f.shop }
func (f *fakeShop) UsedTokenAuth() bool { return f.tokenAuth }

func (f *fakeShop) Probe(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enter(ctx, "Probe")
}

func (f *fakeShop) FindLanguage(ctx context.Context, code string) (*integration.RemoteLanguage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "FindLanguage"); err != nil {
		return nil, err
	}
	for _, l := range f.languages {
		if l.Code == code {
			return &l, nil
		}
	}
	return nil, integration.ErrLanguageNotAvailable
}

func (f *fakeShop) GetEntity(ctx context.Context, t integration.EntityType, remoteID string) (*integration.RemoteEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "GetEntity"); err != nil {
		return nil, err
	}
	e, ok := f.entities[entityKey(t, remoteID)]
	if !ok {
		return nil, notFound(string(t) + "/" + remoteID)
	}
	snapshot := *e
	snapshot.Descriptions = nil
	snapshot.Aliases = nil
	snapshot.Tags = nil
	for _, d := range f.descriptions {
		if d.entityType == t && d.entityID == remoteID {
			snapshot.Descriptions = append(snapshot.Descriptions, d.desc)
		}
	}
	for _, a := range f.aliases {
		if a.EntityType == t && a.OwnerID == remoteID {
			snapshot.Aliases = append(snapshot.Aliases, *a)
		}
	}
	for _, tg := range f.tags {
		if t == integration.EntityTypeProduct && tg.productID == remoteID {
			snapshot.Tags = append(snapshot.Tags, tg.tag)
		}
	}
	return &snapshot, nil
}

func (f *fakeShop) UpdateEntity(ctx context.Context, t integration.EntityType, remoteID string, fields integration.EntityFields) (integration.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "UpdateEntity"); err != nil {
		return integration.WriteResult{}, err
	}
	e, ok := f.entities[entityKey(t, remoteID)]
	if !ok {
		return integration.WriteResult{}, notFound(string(t) + "/" + remoteID)
	}
	e.Active = fields.Active
	e.SortOrder = fields.SortOrder
	e.SKU = fields.SKU
	if fields.Price != nil {
		e.Price = fields.Price.Price
	}
	f.fieldsPushed = append(f.fieldsPushed, fields)
	return f.write(remoteID), nil
}

func (f *fakeShop) FindDescription(ctx context.Context, t integration.EntityType, remoteID, languageID string) (*integration.RemoteDescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "FindDescription"); err != nil {
		return nil, err
	}
	for _, d := range f.descriptions {
		if d.entityType == t && d.entityID == remoteID && d.desc.LanguageID == languageID {
			out := d.desc
			return &out, nil
		}
	}
	return nil, nil
}

func applyDescription(dst *integration.RemoteDescription, d integration.Description) {
	dst.Name = d.Name
	dst.MetaTitle = d.MetaTitle
	dst.MetaKeywords = d.MetaKeywords
	dst.MetaDescription = d.MetaDescription
	dst.ShortDescription = d.ShortDescription
	dst.Body = d.Body
}

func (f *fakeShop) CreateDescription(ctx context.Context, t integration.EntityType, remoteID, languageID string, d integration.Description) (integration.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "CreateDescription"); err != nil {
		return integration.WriteResult{}, err
	}
	id := f.newID()
	fd := &fakeDescription{entityType: t, entityID: remoteID, desc: integration.RemoteDescription{ID: id, LanguageID: languageID}}
	applyDescription(&fd.desc, d)
	f.descriptions[id] = fd
	return f.write(id), nil
}

func (f *fakeShop) UpdateDescription(ctx context.Context, t integration.EntityType, descriptionID string, d integration.Description) (integration.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "UpdateDescription"); err != nil {
		return integration.WriteResult{}, err
	}
	fd, ok := f.descriptions[descriptionID]
	if !ok {
		return integration.WriteResult{}, notFound("descriptions/" + descriptionID)
	}
	applyDescription(&fd.desc, d)
	return f.write(descriptionID), nil
}

func (f *fakeShop) FindTag(ctx context.Context, productID, languageID string) (*integration.RemoteTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "FindTag"); err != nil {
		return nil, err
	}
	for _, tg := range f.tags {
		if tg.productID == productID && tg.tag.LanguageID == languageID {
			out := tg.tag
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeShop) CreateTag(ctx context.Context, productID, languageID, text string) (integration.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "CreateTag"); err != nil {
		return integration.WriteResult{}, err
	}
	id := f.newID()
	f.tags[id] = &fakeTag{productID: productID, tag: integration.RemoteTag{ID: id, LanguageID: languageID, Text: text}}
	return f.write(id), nil
}

func (f *fakeShop) UpdateTag(ctx context.Context, tagID, text string) (integration.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "UpdateTag"); err != nil {
		return integration.WriteResult{}, err
	}
	tg, ok := f.tags[tagID]
	if !ok {
		return integration.WriteResult{}, notFound("productTags/" + tagID)
	}
	tg.tag.Text = text
	return f.write(tagID), nil
}

func (f *fakeShop) DeleteTag(ctx context.Context, tagID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "DeleteTag"); err != nil {
		return err
	}
	delete(f.tags, tagID)
	return nil
}

func (f *fakeShop) GetAlias(ctx context.Context, aliasID string) (*integration.URLAlias, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "GetAlias"); err != nil {
		return nil, err
	}
	a, ok := f.aliases[aliasID]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

func (f *fakeShop) findSlug(t integration.EntityType, slug string) *integration.URLAlias {
	for _, a := range f.aliases {
		if a.EntityType == t && a.Slug == slug {
			return a
		}
	}
	return nil
}

func (f *fakeShop) FindAliasBySlug(ctx context.Context, t integration.EntityType, slug string) (*integration.URLAlias, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "FindAliasBySlug"); err != nil {
		return nil, err
	}
	if a := f.findSlug(t, slug); a != nil {
		out := *a
		return &out, nil
	}
	return nil, nil
}

func (f *fakeShop) CreateAlias(ctx context.Context, t integration.EntityType, ownerID, slug string) (*integration.URLAlias, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "CreateAlias"); err != nil {
		return nil, err
	}
	if holder := f.findSlug(t, slug); holder != nil {
		return nil, conflict("urlAliases", holder.ID)
	}
	id := f.newID()
	a := &integration.URLAlias{ID: id, Slug: slug, EntityType: t, OwnerID: ownerID}
	f.aliases[id] = a
	out := *a
	if f.omitCreatedAliasID {
		out.ID = ""
	}
	return &out, nil
}

func (f *fakeShop) UpdateAliasSlug(ctx context.Context, aliasID, slug string) (integration.WriteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "UpdateAliasSlug"); err != nil {
		return integration.WriteResult{}, err
	}
	a, ok := f.aliases[aliasID]
	if !ok {
		return integration.WriteResult{}, notFound("urlAliases/" + aliasID)
	}
	if holder := f.findSlug(a.EntityType, slug); holder != nil && holder.ID != aliasID {
		return integration.WriteResult{}, conflict("urlAliases/"+aliasID, holder.ID)
	}
	a.Slug = slug
	return f.write(aliasID), nil
}

func (f *fakeShop) DeleteAlias(ctx context.Context, aliasID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter(ctx, "DeleteAlias"); err != nil {
		return err
	}
	delete(f.aliases, aliasID)
	return nil
}

// ---------------------------------------------------------------------------
// memoryEntities: in-memory EntityRepository and SyncLedger
// ---------------------------------------------------------------------------

type memoryEntities struct {
	mu       sync.Mutex
	entities map[uuid.UUID]*integration.SyncableEntity
	records  []ledgerRecord
}

type ledgerRecord struct {
	id       uuid.UUID
	status   integration.SyncStatus
	message  string
	syncedAt *time.Time
	ctxErr   error
}

var (
	_ integration.EntityRepository = (*memoryEntities)(nil)
	_ integration.SyncLedger       = (*memoryEntities)(nil)
)

func newMemoryEntities(entities ...*integration.SyncableEntity) *memoryEntities {
	m := &memoryEntities{entities: make(map[uuid.UUID]*integration.SyncableEntity)}
	for _, e := range entities {
		m.entities[e.ID] = e
	}
	return m
}

// cloneEntity copies the slices the service mutates
func cloneEntity(e *integration.SyncableEntity) *integration.SyncableEntity {
	out := *e
	out.Descriptions = append([]integration.Description(nil), e.Descriptions...)
	out.Tags = append([]integration.Tag(nil), e.Tags...)
	return &out
}

func (m *memoryEntities) get(id uuid.UUID) *integration.SyncableEntity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneEntity(m.entities[id])
}

func (m *memoryEntities) lastRecord() ledgerRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) == 0 {
		return ledgerRecord{}
	}
	return m.records[len(m.records)-1]
}

func (m *memoryEntities) recordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *memoryEntities) FindByID(ctx context.Context, tenantID uuid.UUID, t integration.EntityType, id uuid.UUID) (*integration.SyncableEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[id]
	if !ok || e.TenantID != tenantID || e.Type != t {
		return nil, integration.ErrEntityNotFound
	}
	return cloneEntity(e), nil
}

func (m *memoryEntities) UpdateAlias(ctx context.Context, t integration.EntityType, id uuid.UUID, slug, aliasID, entityURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[id]
	if !ok {
		return integration.ErrEntityNotFound
	}
	e.RecordAlias(slug, aliasID, entityURL)
	return nil
}

func (m *memoryEntities) SetDescriptionRemoteID(ctx context.Context, descriptionID uuid.UUID, remoteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entities {
		for i := range e.Descriptions {
			if e.Descriptions[i].ID == descriptionID {
				e.Descriptions[i].RemoteID = remoteID
				return nil
			}
		}
	}
	return integration.ErrEntityNotFound
}

func (m *memoryEntities) SetTagRemoteID(ctx context.Context, entityID uuid.UUID, languageCode, remoteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[entityID]
	if !ok {
		return integration.ErrEntityNotFound
	}
	for i := range e.Tags {
		if e.Tags[i].LanguageCode == languageCode {
			e.Tags[i].RemoteID = remoteID
			return nil
		}
	}
	if remoteID != "" {
		e.Tags = append(e.Tags, integration.Tag{LanguageCode: languageCode, RemoteID: remoteID})
	}
	return nil
}

func (m *memoryEntities) Record(ctx context.Context, t integration.EntityType, id uuid.UUID, status integration.SyncStatus, message string, syncedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, ledgerRecord{id: id, status: status, message: message, syncedAt: syncedAt, ctxErr: ctx.Err()})
	if e, ok := m.entities[id]; ok {
		e.SyncStatus = status
		e.SyncError = message
		if syncedAt != nil {
			e.LastSyncedAt = syncedAt
		}
	}
	return nil
}

func (m *memoryEntities) Get(ctx context.Context, tenantID uuid.UUID, t integration.EntityType, id uuid.UUID) (*integration.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[id]
	if !ok || e.TenantID != tenantID || e.Type != t {
		return nil, integration.ErrEntityNotFound
	}
	return &integration.LedgerEntry{
		EntityType: e.Type, EntityID: e.ID, RemoteID: e.RemoteID, Status: e.SyncStatus,
		Error: e.SyncError, EntityURL: e.EntityURL, LastSyncedAt: e.LastSyncedAt,
	}, nil
}

func (m *memoryEntities) List(ctx context.Context, tenantID uuid.UUID, t integration.EntityType, status integration.SyncStatus, limit int) ([]integration.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []integration.LedgerEntry
	for _, e := range m.entities {
		if e.TenantID == tenantID && e.Type == t && e.SyncStatus == status {
			out = append(out, integration.LedgerEntry{EntityType: e.Type, EntityID: e.ID, Status: e.SyncStatus})
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// testify mocks
// ---------------------------------------------------------------------------

type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*integration.Connection, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Connection), args.Error(1)
}

func (m *MockConnectionRepository) Save(ctx context.Context, conn *integration.Connection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

type MockRemoteCatalogProvider struct {
	mock.Mock
}

func (m *MockRemoteCatalogProvider) Open(ctx context.Context, conn *integration.Connection) (integration.RemoteCatalog, error) {
	args := m.Called(ctx, conn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(integration.RemoteCatalog), args.Error(1)
}

type MockInboundImporter struct {
	mock.Mock
}

func (m *MockInboundImporter) Refresh(ctx context.Context, conn *integration.Connection, shop string, snapshot *integration.RemoteEntity) error {
	args := m.Called(ctx, conn, shop, snapshot)
	return args.Error(0)
}

type MockTaxClassMapper struct {
	mock.Mock
}

func (m *MockTaxClassMapper) RemoteTaxClassID(ctx context.Context, connectionID uuid.UUID, vatID string) (string, error) {
	args := m.Called(ctx, connectionID, vatID)
	return args.String(0), args.Error(1)
}
