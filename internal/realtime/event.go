package realtime

const (
	EventUserCreated = "users.created"
	EventUserUpdated = "users.updated"
	EventUserDeleted = "users.deleted"
)

// Event 推送给订阅端的变更通知。Payload 在进入 Hub 前已脱敏。
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}
