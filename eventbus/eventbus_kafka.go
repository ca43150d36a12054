package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"social-content/logger"
)

// KafkaEventBus는 confluent-kafka-go 라이브러리를 사용한 EventBus 구현체입니다.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
	lg       logger.Logger
}

// NewKafkaEventBus는 Kafka Producer를 초기화합니다.
func NewKafkaEventBus(brokers string, lg logger.Logger) (*KafkaEventBus, error) {
	producerCfg := &kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5, // Producer는 일시적인 오류 발생 시 최대 5회 재시도합니다.
	}
	if maxBytes := messageMaxBytesFromEnv(lg); maxBytes > 0 {
		(*producerCfg)["message.max.bytes"] = maxBytes
	}

	p, err := kafka.NewProducer(producerCfg)
	if err != nil {
		return nil, fmt.Errorf("kafka Producer 생성 실패: %w", err)
	}

	// Producer 이벤트를 처리하는 고루틴 (전달 보고서 등)
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					lg.Errorf("메시지 전달 실패 %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				lg.Errorf("Kafka 오류: %v", ev)
			}
		}
	}()

	return &KafkaEventBus{
		Producer: p,
		Brokers:  brokers,
		lg:       lg,
	}, nil
}

// Close는 Producer를 안전하게 종료합니다.
func (k *KafkaEventBus) Close() {
	if k.Producer != nil {
		// 5초 동안 남은 메시지를 모두 플러시합니다.
		if remaining := k.Producer.Flush(5000); remaining > 0 {
			k.lg.Warnf("플러시 후에도 %d개의 메시지가 남아 있습니다.", remaining)
		}
		k.Producer.Close()
		k.lg.Info("Kafka Producer 종료.")
	}
}

// Publish는 지정된 토픽에 이벤트를 발행하고 전달 보고를 기다립니다.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("이벤트 마샬링 실패: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)

	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.PartitionKey()),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("메시지 발행 실패: %w", err)
	}

	select {
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("예상치 못한 전달 보고: %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("메시지 전달 실패: %w", m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func (k *KafkaEventBus) newConsumer(groupID string) (*kafka.Consumer, error) {
	consumerCfg := &kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false, // 재시도 로직을 위해 수동 커밋 사용
		"partition.assignment.strategy": "range",
	}
	if maxPoll := maxPollIntervalMsFromEnv(k.lg); maxPoll > 0 {
		(*consumerCfg)["max.poll.interval.ms"] = maxPoll
	}
	return kafka.NewConsumer(consumerCfg)
}

// Subscribe는 기본 토픽을 구독하고 메인 비즈니스 핸들러를 실행합니다.
// 핸들러가 실패하면 재시도 토픽 또는 DLQ 로 보낸 뒤 오프셋을 커밋합니다.
func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("kafka Consumer 생성 실패: %w", err)
	}
	defer c.Close()

	topicsToSubscribe := []string{topic.Base()}
	if err := c.SubscribeTopics(topicsToSubscribe, nil); err != nil {
		return fmt.Errorf("토픽 구독 실패 %v: %w", topicsToSubscribe, err)
	}

	k.lg.Infof("메인 컨슈머 (%s) 시작됨. 구독 토픽: %s", groupID, strings.Join(topicsToSubscribe, ", "))

	for {
		select {
		case <-ctx.Done():
			k.lg.Info("메인 컨슈머 종료 중.")
			return ctx.Err()
		default:
			msg, err := c.ReadMessage(100 * time.Millisecond)
			if err != nil {
				var kerr kafka.Error
				if errors.As(err, &kerr) && kerr.IsFatal() {
					return fmt.Errorf("메인 컨슈머 치명적 오류: %w", err)
				}
				continue
			}

			var evt Event
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				k.lg.Errorf("토픽 %s의 이벤트 페이로드 오류: %v. 메시지를 건너뛰고 커밋합니다.", *msg.TopicPartition.Topic, err)
				c.CommitMessage(msg)
				continue
			}

			if !k.handle(ctx, topic, evt, handler) {
				continue
			}

			// 성공 또는 재시도/DLQ 발행 성공 시 오프셋 커밋
			if _, err := c.CommitMessage(msg); err != nil {
				k.lg.Errorf("오프셋 커밋 오류: %v", err)
			}
		}
	}
}

// handle 은 핸들러를 실행하고 실패 시 재시도/DLQ 발행을 수행합니다.
// 오프셋을 커밋해도 되면 true 를 반환합니다.
func (k *KafkaEventBus) handle(ctx context.Context, topic Topic, evt Event, handler EventHandler) bool {
	// 이벤트의 최대 재시도 기본값 보정 (설정되지 않았거나 범위를 초과한 경우)
	if evt.MaxRetry <= 0 || evt.MaxRetry > len(RetryDelays) {
		evt.MaxRetry = len(RetryDelays)
	}

	if evt.Retry > 0 {
		k.lg.Infof("이벤트 %s 처리 시작 (재시도 %d/%d) - 토픽: %s", evt.ID, evt.Retry, evt.MaxRetry, topic.Base())
	} else {
		k.lg.Debugf("이벤트 %s 처리 시작 - 토픽: %s", evt.ID, topic.Base())
	}

	err := handler(ctx, evt)
	if err == nil {
		return true
	}

	evt.LastError = err.Error()
	nextRetryCount := evt.Retry + 1
	if nextRetryCount > evt.MaxRetry {
		k.lg.Errorf("이벤트 %s의 최대 재시도 횟수 초과. DLQ %s로 전송. 최종 오류: %s", evt.ID, topic.DLQ(), err.Error())
		if publishErr := k.Publish(ctx, topic.DLQ(), evt); publishErr != nil {
			k.lg.Errorf("DLQ %s 발행 실패: %v. 오프셋 커밋 안함.", topic.DLQ(), publishErr)
			return false
		}
		return true
	}

	nextRetryTopic, getTopicErr := topic.GetRetryTopic(nextRetryCount)
	if getTopicErr != nil {
		k.lg.Errorf("재시도 토픽 결정 중 예상치 못한 오류 발생: %v. 오프셋 커밋 안함.", getTopicErr)
		return false
	}

	evt.Retry = nextRetryCount
	k.lg.Warnf("이벤트 %s 처리 실패. 재시도 %d/%d를 토픽 %s에 예약.", evt.ID, evt.Retry, evt.MaxRetry, nextRetryTopic)
	if publishErr := k.Publish(ctx, nextRetryTopic, evt); publishErr != nil {
		k.lg.Errorf("재시도 이벤트 토픽 %s 발행 실패: %v. 오프셋 커밋 안함.", nextRetryTopic, publishErr)
		return false
	}
	return true
}

// StartRetryReinjector는 모든 재시도 토픽을 구독하고 메시지를 기본 토픽으로 재발행(re-publish)합니다.
func (k *KafkaEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("kafka 재시도 재주입기 생성 실패: %w", err)
	}
	defer c.Close()

	retryTopics := topic.GetRetryTopics()
	if err := c.SubscribeTopics(retryTopics, nil); err != nil {
		return fmt.Errorf("재시도 토픽 구독 실패 %v: %w", retryTopics, err)
	}

	k.lg.Infof("재시도 재주입 컨슈머 (%s) 시작됨. 구독 토픽: %s", groupID, strings.Join(retryTopics, ", "))

	for {
		select {
		case <-ctx.Done():
			k.lg.Info("재시도 재주입 컨슈머 종료 중.")
			return ctx.Err()
		default:
			msg, err := c.ReadMessage(100 * time.Millisecond)
			if err != nil {
				var kerr kafka.Error
				if errors.As(err, &kerr) {
					if kerr.Code() == kafka.ErrTimedOut {
						continue
					}
					if kerr.IsFatal() {
						return fmt.Errorf("재시도 재주입 컨슈머 치명적 오류: %w", err)
					}
				}
				k.lg.Errorf("재시도 재주입 컨슈머 ReadMessage 오류: %v", err)
				time.Sleep(500 * time.Millisecond)
				continue
			}

			// 토픽명에서 재시도 지연 시간 추출 및 준비시간 확인
			topicName := *msg.TopicPartition.Topic
			delayDur, ok := ParseRetryDelayFromTopicName(topicName)
			if !ok {
				k.lg.Errorf("재시도 토픽 이름 파싱 실패: %s. 메시지를 건너뛰고 커밋합니다.", topicName)
				c.CommitMessage(msg)
				continue
			}

			readyAt := msg.Timestamp.Add(delayDur)
			if wait := time.Until(readyAt); wait > 0 {
				// 전체 컨슈머 스레드 블로킹을 피하기 위해 아주 짧게만 대기한 뒤
				// 오프셋 커밋 없이 같은 위치로 되감는다.
				time.Sleep(min(max(wait, 50*time.Millisecond), 500*time.Millisecond))
				if _, err := c.SeekPartitions([]kafka.TopicPartition{msg.TopicPartition}); err != nil {
					k.lg.Errorf("재시도 토픽 %s 되감기 실패: %v", topicName, err)
				}
				continue
			}

			var evt Event
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				k.lg.Errorf("재시도 토픽 %s의 이벤트 페이로드 오류: %v. 메시지를 건너뛰고 커밋합니다.", topicName, err)
				c.CommitMessage(msg)
				continue
			}

			k.lg.Infof("이벤트 %s를 %s에서 %s로 재주입. (재시도: %d)", evt.ID, topicName, topic.Base(), evt.Retry)

			if err := k.Publish(ctx, topic.Base(), evt); err != nil {
				k.lg.Errorf("이벤트 %s 재주입 실패: %v. 오프셋 커밋 안함.", evt.ID, err)
				continue
			}

			if _, err := c.CommitMessage(msg); err != nil {
				k.lg.Errorf("재주입 후 커밋 오류: %v", err)
			}
		}
	}
}

// messageMaxBytesFromEnv 는 KAFKA_MESSAGE_MAX_BYTES 환경변수에서 producer 의
// message.max.bytes 값을 읽는다. 콘텐츠 전체 상태를 싣는 이벤트가 기본 1MB 를 넘을 수 있다.
func messageMaxBytesFromEnv(lg logger.Logger) int {
	raw := strings.TrimSpace(os.Getenv("KAFKA_MESSAGE_MAX_BYTES"))
	if raw == "" {
		return 0
	}

	maxBytes, err := strconv.Atoi(raw)
	if err != nil {
		lg.Warnf("KAFKA_MESSAGE_MAX_BYTES 환경변수 파싱 실패: %v. 기본값 사용.", err)
		return 0
	}

	if maxBytes < 1 {
		lg.Warnf("KAFKA_MESSAGE_MAX_BYTES 환경변수 값이 너무 작습니다. 최소값 1 사용.")
		return 1
	}

	return maxBytes
}

// maxPollIntervalMsFromEnv 는 KAFKA_MAX_POLL_INTERVAL_MS 환경변수에서
// max.poll.interval.ms 값을 읽는다. 비어 있거나 0 이하, 파싱 실패 시 0 을 반환하여
// 라이브러리 기본값을 사용하게 한다.
func maxPollIntervalMsFromEnv(lg logger.Logger) int {
	raw := strings.TrimSpace(os.Getenv("KAFKA_MAX_POLL_INTERVAL_MS"))
	if raw == "" {
		return 0
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		lg.Warnf("KAFKA_MAX_POLL_INTERVAL_MS 환경변수 파싱 실패: %v. 기본값 사용.", err)
		return 0
	}

	if value <= 0 {
		lg.Warnf("KAFKA_MAX_POLL_INTERVAL_MS 환경변수 값이 0 이하입니다. 기본값 사용.")
		return 0
	}

	return value
}
