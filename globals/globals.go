package globals

var (
	// JwtSecret signs session tokens. Set from configuration at startup.
	JwtSecret = []byte("your_secret_key")
)

// Context keys
type ContextKey string

const SessionIDKey ContextKey = "sessionId"
