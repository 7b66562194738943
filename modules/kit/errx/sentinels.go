package errx

// 统一哨兵错误（允许 WithContext/WithCause 派生新对象，原值不可变）。
// 业务侧需要更具体的 message 时应自行 New，而不是改这里的默认文案。
var (
	ErrUnauthorized       = New(KindUnauthorized, "Authentication required")
	ErrInvalidCredentials = New(KindInvalidCredentials, "Invalid credentials")
	ErrSessionExpired     = New(KindSessionExpired, "Session has expired")
	ErrInvalidToken       = New(KindInvalidToken, "Invalid token")
	ErrForbidden          = New(KindForbidden, "Access denied")
	ErrNotFound           = New(KindResourceNotFound, "Resource not found")
	ErrAlreadyExists      = New(KindResourceAlreadyExists, "Resource already exists")
	ErrConflict           = New(KindResourceConflict, "Resource conflict")
	ErrInternal           = New(KindInternalServerError, "An unexpected error occurred")
	ErrUnavailable        = New(KindServiceUnavailable, "Service unavailable")
	ErrNotImplemented     = New(KindNotImplemented, "Not implemented")
)
