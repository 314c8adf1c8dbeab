package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidSignal        ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound     ErrorCode = 200
	ErrCodeInsufficientData ErrorCode = 201

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300

	// Agent errors (400-499)
	ErrCodeAgentAlreadyActive  ErrorCode = 400
	ErrCodeAgentNotActive      ErrorCode = 401
	ErrCodeAgentStartFailed    ErrorCode = 402
	ErrCodeAgentStopFailed     ErrorCode = 403
	ErrCodeAgentCycleFailed    ErrorCode = 404
	ErrCodeStoreNotConfigured  ErrorCode = 405
	ErrCodeOrchestratorStopped ErrorCode = 406

	// Trading errors (500-599)
	ErrCodeSignalRejected    ErrorCode = 500
	ErrCodePositionNotFound  ErrorCode = 501
	ErrCodeInsufficientFunds ErrorCode = 502

	// News errors (600-699)
	ErrCodeNewsFetchFailed    ErrorCode = 600
	ErrCodeImpactParseFailed  ErrorCode = 601
	ErrCodeSymbolInFlight     ErrorCode = 602

	// Store errors (700-799)
	ErrCodeStoreReadFailed  ErrorCode = 700
	ErrCodeStoreWriteFailed ErrorCode = 701

	// Provider errors (800-899)
	ErrCodeQuoteFetchFailed      ErrorCode = 800
	ErrCodeBarsFetchFailed       ErrorCode = 801
	ErrCodeClassificationFailed  ErrorCode = 802
	ErrCodeClassificationInvalid ErrorCode = 803
	ErrCodeInvalidProvider       ErrorCode = 804
)
