package saves

import "time"

// SourceKind identifies the originating site of a saved piece of content.
type SourceKind string

const (
	SourceYouTube  SourceKind = "youtube"
	SourceLinkedIn SourceKind = "linkedin"
	SourceWebsite  SourceKind = "website"
)

// SyncStatus is the delivery state of a record. The only legal transition is
// pending to synced; nothing ever leaves synced.
type SyncStatus string

const (
	StatusPending SyncStatus = "pending"
	StatusSynced  SyncStatus = "synced"
)

// Payload is the content-specific body of a save request. The queue treats
// it as opaque data produced by page extraction; only SourceID, Author and
// Content participate in fingerprinting.
type Payload struct {
	// SourceID is an explicit stable identifier from the source site
	// (e.g. a video id). When present it alone determines the record id.
	SourceID   string            `json:"source_id,omitempty" bson:"source_id,omitempty"`
	Title      string            `json:"title,omitempty" bson:"title,omitempty"`
	Author     string            `json:"author,omitempty" bson:"author,omitempty"`
	Content    string            `json:"content,omitempty" bson:"content,omitempty"`
	URL        string            `json:"url,omitempty" bson:"url,omitempty"`
	Engagement map[string]int    `json:"engagement,omitempty" bson:"engagement,omitempty"`
	Tags       []string          `json:"tags,omitempty" bson:"tags,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// Record is a persisted, deduplicated representation of one user save action
// and its delivery status.
type Record struct {
	ID         string     `json:"id" bson:"_id"`
	SourceKind SourceKind `json:"source_kind" bson:"source_kind"`
	Payload    Payload    `json:"payload" bson:"payload"`
	SyncStatus SyncStatus `json:"sync_status" bson:"sync_status"`
	RemoteID   string     `json:"remote_id,omitempty" bson:"remote_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	SyncedAt   *time.Time `json:"synced_at,omitempty" bson:"synced_at,omitempty"`
	LastError  string     `json:"last_error,omitempty" bson:"last_error,omitempty"`
}

// NewRecord builds a pending record with a deterministic id, so that
// re-submission of the same logical item replaces rather than duplicates.
func NewRecord(payload Payload, kind SourceKind, now time.Time) Record {
	return Record{
		ID:         Fingerprint(kind, payload),
		SourceKind: kind,
		Payload:    payload,
		SyncStatus: StatusPending,
		CreatedAt:  now,
	}
}

// Pending reports whether the record still awaits delivery.
func (r Record) Pending() bool {
	return r.SyncStatus == StatusPending
}

// markSynced records a successful delivery, merging server-assigned fields.
func (r Record) markSynced(remote *Remote, now time.Time) Record {
	r.SyncStatus = StatusSynced
	r.SyncedAt = &now
	r.LastError = ""
	if remote != nil {
		r.RemoteID = remote.ID
	}
	return r
}

// markFailed records a transient delivery failure; the record stays pending.
func (r Record) markFailed(err error) Record {
	r.SyncStatus = StatusPending
	if err != nil {
		r.LastError = err.Error()
	}
	return r
}

// Remote carries the server-assigned fields returned by a successful submit.
type Remote struct {
	ID      string    `json:"id"`
	SavedAt time.Time `json:"saved_at"`
}
