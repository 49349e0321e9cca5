package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxUser      = "session.user"
)
