package models

// Privacy of a group or content. Ordered from least to most restrictive.
type Privacy string

const (
	PrivacyOpen    Privacy = "OPEN"
	PrivacyClosed  Privacy = "CLOSED"
	PrivacyPrivate Privacy = "PRIVATE"
	PrivacySecret  Privacy = "SECRET"
)

func (p Privacy) rank() int {
	switch p {
	case PrivacyOpen:
		return 0
	case PrivacyClosed:
		return 1
	case PrivacyPrivate:
		return 2
	case PrivacySecret:
		return 3
	default:
		return -1
	}
}

// Group is the audience unit a content is published to.
type Group struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	RootGroupID string  `json:"rootGroupId"`
	Privacy     Privacy `json:"privacy"`
}

type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	GroupIDs []string `json:"groupIds"`
}

type Tag struct {
	ID      string `bson:"_id" json:"id"`
	Name    string `bson:"name" json:"name"`
	GroupID string `bson:"group_id" json:"groupId"`
}
