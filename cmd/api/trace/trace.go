package trace

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderSpanID    = "X-Span-Id"
)

type ctxKey struct{}

// span 은 한 inbound 요청의 추적 정보다. seq 는 outbound 호출마다 1 씩 증가한다.
type span struct {
	requestID string
	seq       atomic.Int64
}

// NewRequestID 는 요청 id 를 만든다.
func NewRequestID() string { return uuid.NewString() }

// WithRequest 는 요청 id 를 담은 컨텍스트를 반환한다. span 시퀀스는 0 에서 시작한다.
func WithRequest(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, &span{requestID: requestID})
}

func fromContext(ctx context.Context) *span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(ctxKey{}).(*span)
	return s
}

func RequestID(ctx context.Context) string {
	if s := fromContext(ctx); s != nil {
		return s.requestID
	}
	return ""
}

// CurrentSpanID 는 증가 없이 현재 span 값을 돌려준다.
func CurrentSpanID(ctx context.Context) string {
	s := fromContext(ctx)
	if s == nil {
		return "0"
	}
	return strconv.FormatInt(s.seq.Load(), 10)
}

// NextSpanID 는 outbound 호출용 (requestID, spanID) 를 발급한다.
// 미들웨어 밖에서 호출되면 새 요청 id 와 span 1 을 쓴다.
func NextSpanID(ctx context.Context) (string, string) {
	s := fromContext(ctx)
	if s == nil {
		return NewRequestID(), "1"
	}
	return s.requestID, strconv.FormatInt(s.seq.Add(1), 10)
}
