package domain

const (
	CollectionStudents = "students"
	CollectionTimeline = "timeline"
)

type ChangeOp string

const (
	ChangeCreated  ChangeOp = "created"
	ChangeUpdated  ChangeOp = "updated"
	ChangeArchived ChangeOp = "archived"
	ChangeDeleted  ChangeOp = "deleted"
)

// ChangeEvent tells connected clients that cached pages of a collection are
// out of date.
type ChangeEvent struct {
	Collection string   `json:"collection"`
	OwnerID    string   `json:"owner_id"`
	RecordID   string   `json:"record_id"`
	Op         ChangeOp `json:"op"`
}
