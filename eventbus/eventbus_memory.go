package eventbus

import (
	"context"
	"sync"
)

// MemoryEventBus 는 프로세스 내부에서 동기적으로 동작하는 EventBus 구현체입니다.
// Publish 시점에 구독 핸들러를 바로 호출하고, 실패하면 MaxRetry 만큼 즉시 재시도한 뒤
// DLQ 토픽에 기록합니다. 로컬 실행과 테스트에서 Kafka 대신 사용합니다.
type MemoryEventBus struct {
	mu        sync.Mutex
	handlers  map[string][]EventHandler
	published map[string][]Event
}

func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{
		handlers:  map[string][]EventHandler{},
		published: map[string][]Event{},
	}
}

func (m *MemoryEventBus) Publish(ctx context.Context, topic string, event Event) error {
	m.mu.Lock()
	m.published[topic] = append(m.published[topic], event)
	handlers := append([]EventHandler(nil), m.handlers[topic]...)
	m.mu.Unlock()

	for _, h := range handlers {
		m.dispatch(ctx, NewTopic(topic), event, h)
	}
	return nil
}

func (m *MemoryEventBus) dispatch(ctx context.Context, topic Topic, evt Event, h EventHandler) {
	if evt.MaxRetry <= 0 || evt.MaxRetry > len(RetryDelays) {
		evt.MaxRetry = len(RetryDelays)
	}
	for {
		err := h(ctx, evt)
		if err == nil {
			return
		}
		evt.LastError = err.Error()
		if evt.Retry >= evt.MaxRetry {
			m.mu.Lock()
			m.published[topic.DLQ()] = append(m.published[topic.DLQ()], evt)
			m.mu.Unlock()
			return
		}
		evt.Retry++
	}
}

// Subscribe 는 핸들러를 등록하고 ctx 가 끝날 때까지 블록합니다.
func (m *MemoryEventBus) Subscribe(ctx context.Context, _ string, topic Topic, handler EventHandler) error {
	m.mu.Lock()
	m.handlers[topic.Base()] = append(m.handlers[topic.Base()], handler)
	m.mu.Unlock()

	<-ctx.Done()
	return ctx.Err()
}

// On 은 블록하지 않고 핸들러를 등록합니다.
func (m *MemoryEventBus) On(topic Topic, handler EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic.Base()] = append(m.handlers[topic.Base()], handler)
}

// StartRetryReinjector 는 재시도가 Publish 안에서 끝나므로 ctx 종료만 기다립니다.
func (m *MemoryEventBus) StartRetryReinjector(ctx context.Context, _ string, _ Topic) error {
	<-ctx.Done()
	return ctx.Err()
}

// Published 는 토픽에 발행된 이벤트의 복사본을 반환합니다.
func (m *MemoryEventBus) Published(topic string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.published[topic]...)
}

func (m *MemoryEventBus) Close() {}
