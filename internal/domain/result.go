package domain

// ResultStatus is how a cart mutation settled.
type ResultStatus string

const (
	// ResultConfirmed: the server accepted the change, or nothing needed the server.
	ResultConfirmed ResultStatus = "confirmed"
	// ResultQueued: applied locally while offline, waiting for Sync.
	ResultQueued ResultStatus = "queued"
	// ResultRolledBack: the server refused or was unreachable and the change was undone.
	ResultRolledBack ResultStatus = "rolled_back"
)

// Result carries the settled line of a cart mutation. For a rollback Line is the
// restored value, or the discarded line when an add was undone.
type Result struct {
	Line   CartLine
	Status ResultStatus
}

type SyncReport struct {
	Pushed  int
	Removed int
	Failed  int
	Lines   int
}
