package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrder         ErrorCode = 102
	ErrCodeInvalidFill          ErrorCode = 103
	ErrCodeInvalidPeriod        ErrorCode = 104
	ErrCodeInsufficientData     ErrorCode = 105

	// Data errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeDataGap               ErrorCode = 203
	ErrCodeInstrumentNotLoaded   ErrorCode = 204

	// Clock errors (300-399)
	ErrCodeClockExhausted ErrorCode = 300
	ErrCodeEmptyCalendar  ErrorCode = 301
	ErrCodeNonTradingDate ErrorCode = 302

	// Broker errors (400-499)
	ErrCodeNoMarketDataForOrder ErrorCode = 400
	ErrCodeOrderRejected        ErrorCode = 401

	// Portfolio errors (500-599)
	ErrCodeUnknownEvent    ErrorCode = 500
	ErrCodeSnapshotFailed  ErrorCode = 501
	ErrCodeStateNil        ErrorCode = 502
	ErrCodeStateInitFailed ErrorCode = 503

	// Backtest errors (600-699)
	ErrCodeBacktestNoStrategy   ErrorCode = 600
	ErrCodeBacktestNoDatasource ErrorCode = 601
	ErrCodeBacktestNoResultsDir ErrorCode = 602
	ErrCodeBacktestConfigError  ErrorCode = 603
	ErrCodeStrategyConfigError  ErrorCode = 604
	ErrCodeStrategyRuntimeError ErrorCode = 605

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
)
