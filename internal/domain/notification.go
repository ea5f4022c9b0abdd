package domain

type NotificationLevel string

const (
	LevelInfo     NotificationLevel = "info"
	LevelError    NotificationLevel = "error"
	LevelBlocking NotificationLevel = "blocking"
)

// NotificationKind names the event a user-facing notification reports.
type NotificationKind string

const (
	KindOffline          NotificationKind = "offline"
	KindReconnected      NotificationKind = "reconnected"
	KindSyncFailed       NotificationKind = "sync_failed"
	KindMutationFailed   NotificationKind = "mutation_failed"
	KindValidationFailed NotificationKind = "validation_failed"
	KindOrderPlaced      NotificationKind = "order_placed"
)

type Notification struct {
	Level   NotificationLevel
	Kind    NotificationKind
	Message string
}
