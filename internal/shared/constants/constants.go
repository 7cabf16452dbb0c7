package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"

	// Signed request headers
	HeaderStoreToken    = "X-Store-Token"
	HeaderTimestamp     = "X-Timestamp"
	HeaderSignature     = "X-Signature"
	HeaderPluginVersion = "X-Plugin-Version"

	// Context keys
	ContextKeyStore      = "store"
	ContextKeyStoreToken = "store_token"
	ContextKeyAdminSub   = "admin_subject"

	// Database table names
	TableStores      = "stores"
	TableStoreEvents = "store_events"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
)
