package proposal

import "time"

// HistoryEntry is a single record in a proposal's audit trail.
// Entries are immutable once created.
type HistoryEntry struct {
	Status    ProposalStatus `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Reason    string         `json:"reason,omitempty"`
}

// historyLog is the append-only audit trail owned by the aggregate.
// Append is the only mutator; entries are never reordered or dropped.
type historyLog struct {
	entries []HistoryEntry
}

// append records a new entry. Timestamps are expected to be non-decreasing
// because all transitions on one aggregate are serialized.
func (h *historyLog) append(status ProposalStatus, at time.Time, reason string) {
	h.entries = append(h.entries, HistoryEntry{
		Status:    status,
		Timestamp: at,
		Reason:    reason,
	})
}

// Entries returns a copy of the audit trail in insertion order
func (h *historyLog) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries
func (h *historyLog) Len() int {
	return len(h.entries)
}

// Last returns the most recent entry, or a zero entry when empty
func (h *historyLog) Last() HistoryEntry {
	if len(h.entries) == 0 {
		return HistoryEntry{}
	}
	return h.entries[len(h.entries)-1]
}
