package integration

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Sync error taxonomy
// ---------------------------------------------------------------------------

var (
	// ErrConfiguration indicates the stored connection cannot be used as-is
	ErrConfiguration = errors.New("integration: invalid connection configuration")
	// ErrAuth indicates the remote platform rejected the credentials
	ErrAuth = errors.New("integration: remote authentication failed")
	// ErrMissingDescription indicates the entity has no description row
	ErrMissingDescription = errors.New("integration: entity has no description")
	// ErrPricing indicates neither a price nor a cost based price is available
	ErrPricing = errors.New("integration: price cannot be determined")
	// ErrAliasConflict indicates the slug is owned by a different remote entity
	ErrAliasConflict = errors.New("integration: url alias owned by another entity")
	// ErrRateLimited indicates the remote platform answered 429
	ErrRateLimited = errors.New("integration: remote platform rate limited")
	// ErrNetwork indicates a timeout or transport failure
	ErrNetwork = errors.New("integration: remote platform unreachable")
	// ErrRemoteValidation indicates the remote platform rejected the payload
	ErrRemoteValidation = errors.New("integration: remote platform rejected request")
)

var (
	// ErrRemoteConflict is the raw 409 namespace conflict signal
	ErrRemoteConflict = errors.New("integration: remote namespace conflict")
	// ErrRemoteNotFound is a 404 for a remote resource
	ErrRemoteNotFound = errors.New("integration: remote resource not found")

	ErrEntityNotFound       = errors.New("integration: entity not found")
	ErrEntityNotLinked      = errors.New("integration: entity has no remote identifier")
	ErrRemoteIDImmutable    = errors.New("integration: remote identifier cannot be changed once set")
	ErrInvalidEntityType    = errors.New("integration: invalid entity type")
	ErrInvalidSyncStatus    = errors.New("integration: invalid sync status")
	ErrConnectionNotFound   = errors.New("integration: connection not found")
	ErrConnectionInactive   = errors.New("integration: connection is not active")
	ErrTaxClassNotMapped    = errors.New("integration: tax class not mapped")
	ErrLanguageNotAvailable = errors.New("integration: language not available on remote shop")
)

// Error codes exposed to callers and persisted in sync error messages.
const (
	CodeConfiguration      = "CONFIGURATION_ERROR"
	CodeAuth               = "AUTH_ERROR"
	CodeMissingDescription = "MISSING_DESCRIPTION"
	CodePricing            = "PRICING_ERROR"
	CodeAliasConflict      = "ALIAS_CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeNetwork            = "NETWORK_ERROR"
	CodeRemoteValidation   = "REMOTE_VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeNotLinked          = "NOT_LINKED"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInternal           = "INTERNAL_ERROR"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrConfiguration, CodeConfiguration},
	{ErrConnectionInactive, CodeConfiguration},
	{ErrLanguageNotAvailable, CodeConfiguration},
	{ErrAuth, CodeAuth},
	{ErrMissingDescription, CodeMissingDescription},
	{ErrPricing, CodePricing},
	{ErrAliasConflict, CodeAliasConflict},
	{ErrRateLimited, CodeRateLimited},
	{ErrNetwork, CodeNetwork},
	{ErrRemoteValidation, CodeRemoteValidation},
	{ErrRemoteConflict, CodeRemoteValidation},
	{ErrRemoteNotFound, CodeRemoteValidation},
	{ErrEntityNotFound, CodeNotFound},
	{ErrConnectionNotFound, CodeNotFound},
	{ErrEntityNotLinked, CodeNotLinked},
	{ErrInvalidEntityType, CodeInvalidInput},
	{ErrInvalidSyncStatus, CodeInvalidInput},
}

// ErrorCode returns the stable code for an error of the sync taxonomy.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

// IsRetryable reports whether a later attempt may succeed without local changes.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrNetwork)
}

// ---------------------------------------------------------------------------
// RemoteError
// ---------------------------------------------------------------------------

// maxBodyExcerpt bounds how much of a remote body ends up in messages
const maxBodyExcerpt = 512

// RemoteError describes a failed call against the remote platform.
// It unwraps to one of the taxonomy sentinels (Kind) and to the transport cause.
type RemoteError struct {
	// Kind is the taxonomy sentinel, e.g. ErrRemoteValidation
	Kind error
	// Method is the HTTP method of the failed call
	Method string
	// Resource is the remote resource path
	Resource string
	// StatusCode is the HTTP status, zero for transport failures
	StatusCode int
	// Body is an excerpt of the response body
	Body string
	// ConflictingID is the alias id embedded in a 409 body, if any
	ConflictingID string
	// RetryAfter is the cool-down requested by a 429
	RetryAfter time.Duration
	// Cause is the underlying transport error
	Cause error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	fmt.Fprintf(&sb, ": %s %s", e.Method, e.Resource)
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": HTTP %d", e.StatusCode)
	}
	if e.Body != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Body)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap exposes both the taxonomy sentinel and the transport cause
func (e *RemoteError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// BodyExcerpt trims a response body for inclusion in error messages. The
// result is always valid UTF-8 since it ends up in text columns.
func BodyExcerpt(body []byte) string {
	s := strings.ToValidUTF8(strings.TrimSpace(string(body)), "\uFFFD")
	if len(s) > maxBodyExcerpt {
		n := maxBodyExcerpt
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n] + "..."
	}
	return s
}

// AsRemoteError returns the RemoteError in err's chain, if any
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// SyncError
// ---------------------------------------------------------------------------

// SyncError is returned when a synchronization run fails.
type SyncError struct {
	// EntityType is the type of the entity being synchronized
	EntityType EntityType
	// EntityID is the local entity identifier
	EntityID uuid.UUID
	// Step is the step that failed
	Step SyncStep
	// Err is the failure cause
	Err error
}

// Error implements the error interface
func (e *SyncError) Error() string {
	return fmt.Sprintf("%s sync failed at %s: %v", e.EntityType, e.Step, e.Err)
}

// Unwrap returns the failure cause
func (e *SyncError) Unwrap() error {
	return e.Err
}

// Code returns the taxonomy code of the failure cause
func (e *SyncError) Code() string {
	return ErrorCode(e.Err)
}
