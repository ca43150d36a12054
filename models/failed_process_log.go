package models

import "time"

// FailedProcessLog is a dead-letter record for a search write that could not
// be applied. Payload is the JSON of the document at failure time.
// Collection: failed_process_logs
type FailedProcessLog struct {
	ID        string    `bson:"_id" json:"id"`
	ContentID string    `bson:"content_id" json:"contentId"`
	Operation string    `bson:"operation" json:"operation"`
	Reason    string    `bson:"reason" json:"reason"`
	Payload   string    `bson:"payload" json:"payload"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
