package domain

import "time"

// OutboxStatus is the lifecycle state of an outbox item.
type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxSynced     OutboxStatus = "synced"
	OutboxError      OutboxStatus = "error"
)

// Valid reports whether s is a known outbox status.
func (s OutboxStatus) Valid() bool {
	switch s {
	case OutboxPending, OutboxProcessing, OutboxSynced, OutboxError:
		return true
	}
	return false
}

// OutboxItem is a durable request to post a source event to the ledger.
// Only the source id is stored; the processor reloads the source record when it runs.
type OutboxItem struct {
	ItemID     string       `json:"itemID"`
	SourceType SourceType   `json:"sourceType"`
	SourceID   string       `json:"sourceID"`
	Status     OutboxStatus `json:"status"`
	Attempts   int          `json:"attempts"`
	LastError  *string      `json:"lastError,omitempty"`
	ClaimedAt  *time.Time   `json:"claimedAt,omitempty"`
	SyncedAt   *time.Time   `json:"syncedAt,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// OutboxFilter narrows queue listings.
type OutboxFilter struct {
	Status     OutboxStatus
	SourceType SourceType
	Limit      int
	NextToken  *string
}

// OutboxStats counts queue items per status.
type OutboxStats map[OutboxStatus]int

// ItemFailure describes one item that failed during a queue sync run.
type ItemFailure struct {
	ItemID     string       `json:"itemID"`
	SourceType SourceType   `json:"sourceType"`
	SourceID   string       `json:"sourceID"`
	Status     OutboxStatus `json:"status"`
	Attempts   int          `json:"attempts"`
	Message    string       `json:"message"`
}

// SyncResult summarises one RunQueueSync batch.
type SyncResult struct {
	Claimed  int           `json:"claimed"`
	Synced   int           `json:"synced"`
	Failed   int           `json:"failed"`
	Retrying int           `json:"retrying"`
	Errors   []ItemFailure `json:"errors,omitempty"`
}
