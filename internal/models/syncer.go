package models

// SyncState is a supervisor state.
type SyncState string

const (
	StateStarting         SyncState = "starting"
	StateHistoricalReplay SyncState = "historical_replay"
	StateLiveSubscribed   SyncState = "live_subscribed"
	StateBackoff          SyncState = "backoff"
	StateStopped          SyncState = "stopped"
)

// ProjectionStats counts dispatch outcomes since start.
type ProjectionStats struct {
	Applied    uint64 `json:"applied"`
	Duplicates uint64 `json:"duplicates"`
	Skipped    uint64 `json:"skipped"`
	Failed     uint64 `json:"failed"`
	Unknown    uint64 `json:"unknown"`
	Invalid    uint64 `json:"invalid"`
}

// SyncStatus is a point-in-time view of the ingestion engine.
type SyncStatus struct {
	State          SyncState       `json:"state"`
	Cursor         uint64          `json:"cursor"`
	LastBlock      uint64          `json:"last_block"`
	LastError      string          `json:"last_error,omitempty"`
	Restarts       int             `json:"restarts"`
	StartedAt      int64           `json:"started_at"`
	StateChangedAt int64           `json:"state_changed_at"`
	Stats          ProjectionStats `json:"stats"`
}

// StatusProvider exposes the engine state to the status API.
type StatusProvider interface {
	Status() SyncStatus
}
