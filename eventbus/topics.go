package eventbus

// 전역 토픽 선언: 기능별 기본 토픽 이름을 관리합니다.

var (
	// TopicContentEvents 는 게시글/아티클/시리즈 변경 이벤트 토픽입니다.
	// 검색 인덱서가 구독합니다.
	TopicContentEvents = NewTopic("social-content.content.events")
)

var AllTopics = []Topic{
	TopicContentEvents,
}
