package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"social-content/models"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	PostScheduled   EventType = "post.scheduled"
	PostPublished   EventType = "post.published"
	PostUpdated     EventType = "post.updated"
	PostDeleted     EventType = "post.deleted"
	PostVideoFailed EventType = "post.video_failed"

	ArticleScheduled EventType = "article.scheduled"
	ArticlePublished EventType = "article.published"
	ArticleUpdated   EventType = "article.updated"
	ArticleDeleted   EventType = "article.deleted"

	SeriesPublished      EventType = "series.published"
	SeriesUpdated        EventType = "series.updated"
	SeriesDeleted        EventType = "series.deleted"
	SeriesItemsReordered EventType = "series.items_reordered"

	ContentHidden         EventType = "content.hidden"
	ContentAttachedSeries EventType = "content.attached_series"

	// ContentChanged 는 다른 서비스의 change feed 메시지다. State 를 직접 담는다.
	ContentChanged EventType = "content.changed"
)

const (
	EventSource  = "social-content"
	EventVersion = "1"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// ContentEvent 는 콘텐츠 변경을 알리는 이벤트다.
// Content 는 커밋 시점의 전체 상태, Before 는 변경 전 상태(있을 때만)다.
type ContentEvent struct {
	BaseEvent
	ActorID string               `json:"actor_id"`
	State   ChangeState          `json:"state,omitempty"`
	Content models.ContentState  `json:"content"`
	Before  *models.ContentState `json:"before,omitempty"`
	// ItemIDs 는 시리즈 아이템/첨부 변경 이벤트에서 영향을 받은 콘텐츠 id 목록이다.
	ItemIDs []string `json:"item_ids,omitempty"`
}

// EventName 은 models.DomainEvent 구현이다.
func (e ContentEvent) EventName() string { return string(e.Type) }

// NewContentEvent 는 새 id 와 타임스탬프를 가진 이벤트를 만든다.
func NewContentEvent(t EventType, content models.ContentState, before *models.ContentState, actorID string) ContentEvent {
	return ContentEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      t,
			Timestamp: time.Now().UTC(),
			Source:    EventSource,
			Version:   EventVersion,
		},
		ActorID: actorID,
		Content: content,
		Before:  before,
	}
}

// Serialize 는 이벤트를 JSON 으로 직렬화한다.
func Serialize(evt ContentEvent) ([]byte, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// Deserialize 는 JSON 을 ContentEvent 로 되돌리고 타입을 검사한다.
func Deserialize(data []byte) (ContentEvent, error) {
	var evt ContentEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return ContentEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if evt.Type == "" {
		return ContentEvent{}, fmt.Errorf("event %s has no type", evt.ID)
	}
	return evt, nil
}
