package middlewares

const (
	CtxRequestID = "request_id"

	CtxUserIDKey   = "auth.userID"
	CtxSessionKey  = "auth.sessionJTI"
	CtxRawTokenKey = "auth.rawToken"
)
