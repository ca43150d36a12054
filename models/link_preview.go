package models

import "time"

// LinkPreview is shared by every content that references the same URL.
// Collection: link_previews
type LinkPreview struct {
	ID          string    `bson:"_id" json:"id"`
	URL         string    `bson:"url" json:"url"`
	Domain      string    `bson:"domain" json:"domain"`
	Image       string    `bson:"image" json:"image"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// SameMetadata ignores timestamps.
func (l LinkPreview) SameMetadata(other LinkPreview) bool {
	return l.ID == other.ID &&
		l.URL == other.URL &&
		l.Domain == other.Domain &&
		l.Image == other.Image &&
		l.Title == other.Title &&
		l.Description == other.Description
}
