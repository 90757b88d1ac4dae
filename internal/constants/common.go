package constants

// Common string constants used throughout the codebase
const (
	ServiceName = "cyphera-wallet-policy"

	// Log levels
	ErrorLevel = "error"

	// Environments
	ProdEnvironment = "prod"
)

// Request headers
const (
	CorrelationIDHeader  = "X-Correlation-ID"
	AccountAddressHeader = "X-Account-Address"
)

// Gin context keys
const (
	AccountAddressKey = "accountAddress"
	SubjectKey        = "subject"
)

// Wildcard accepted in gas policy allow-lists
const AnyContract = "*"

// Default HTTP settings
const (
	DefaultAPIPort            = "8000"
	DefaultRateLimitPerSecond = 20
	DefaultRateLimitBurst     = 40
)
