package dto

import (
	"net/http"

	"github.com/woodcraft/backend/internal/domain/integration"
)

// HTTP layer error codes. Sync failures reuse the integration codes so that
// the code a client sees is the one persisted in the ledger message.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeInvalidToken = "INVALID_TOKEN"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeInvalidToken: http.StatusUnauthorized,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	integration.CodeInvalidInput: http.StatusBadRequest,
	integration.CodeNotFound:     http.StatusNotFound,

	// Local data or connection settings must change before a retry can work
	integration.CodeConfiguration:      http.StatusUnprocessableEntity,
	integration.CodeMissingDescription: http.StatusUnprocessableEntity,
	integration.CodePricing:            http.StatusUnprocessableEntity,
	integration.CodeNotLinked:          http.StatusUnprocessableEntity,

	integration.CodeAliasConflict: http.StatusConflict,
	integration.CodeRateLimited:   http.StatusTooManyRequests,

	// The remote shop failed us
	integration.CodeAuth:             http.StatusBadGateway,
	integration.CodeRemoteValidation: http.StatusBadGateway,
	integration.CodeNetwork:          http.StatusServiceUnavailable,

	integration.CodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
