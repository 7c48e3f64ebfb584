package integration

// URLAlias is an entry of the remote slug namespace. A slug is unique per
// entity type across the whole remote shop.
type URLAlias struct {
	// ID is the remote alias identifier
	ID string
	// Slug is the human readable path segment
	Slug string
	// EntityType is the type of the owning entity
	EntityType EntityType
	// OwnerID is the remote identifier of the owning entity
	OwnerID string
}

// OwnedBy returns true if the alias points at the given remote entity
func (a *URLAlias) OwnedBy(entityType EntityType, remoteID string) bool {
	return a != nil && a.EntityType == entityType && a.OwnerID == remoteID
}

// ---------------------------------------------------------------------------
// AliasState
// ---------------------------------------------------------------------------

// AliasState is a state of the alias reconciliation state machine
type AliasState string

const (
	AliasStateNoKnownAlias              AliasState = "NO_KNOWN_ALIAS"
	AliasStateKnown                     AliasState = "KNOWN"
	AliasStateCreating                  AliasState = "CREATING"
	AliasStateCreated                   AliasState = "CREATED"
	AliasStateConflictDetected          AliasState = "CONFLICT_DETECTED"
	AliasStateResolvedBySameOwner       AliasState = "RESOLVED_BY_SAME_OWNER"
	AliasStateResolvedByIDFromErrorBody AliasState = "RESOLVED_BY_ID_FROM_ERROR_BODY"
	AliasStateResolvedBySearch          AliasState = "RESOLVED_BY_SEARCH"
	AliasStateUpdating                  AliasState = "UPDATING"
	AliasStateUpdated                   AliasState = "UPDATED"
	AliasStateUnresolvable              AliasState = "UNRESOLVABLE"
)

// String returns the string representation of AliasState
func (s AliasState) String() string {
	return string(s)
}

// IsTerminal returns true if the state machine stops in this state
func (s AliasState) IsTerminal() bool {
	switch s {
	case AliasStateCreated, AliasStateResolvedBySameOwner, AliasStateResolvedByIDFromErrorBody,
		AliasStateResolvedBySearch, AliasStateUpdated, AliasStateUnresolvable:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the state leaves a usable alias behind
func (s AliasState) IsSuccess() bool {
	return s.IsTerminal() && s != AliasStateUnresolvable
}
