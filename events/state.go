package events

import "fmt"

// ChangeState 는 검색 동기화가 처리하는 변경 종류다. 값은 아래 세 가지뿐이다.
type ChangeState int

const (
	StatePublish ChangeState = iota + 1
	StateUpdate
	StateDelete
)

func (s ChangeState) String() string {
	switch s {
	case StatePublish:
		return "publish"
	case StateUpdate:
		return "update"
	case StateDelete:
		return "delete"
	default:
		return fmt.Sprintf("ChangeState(%d)", int(s))
	}
}

func (s ChangeState) Valid() bool {
	return s >= StatePublish && s <= StateDelete
}

func (s ChangeState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid change state %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *ChangeState) UnmarshalText(b []byte) error {
	v, err := ParseChangeState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseChangeState(v string) (ChangeState, error) {
	switch v {
	case "publish":
		return StatePublish, nil
	case "update":
		return StateUpdate, nil
	case "delete":
		return StateDelete, nil
	default:
		return 0, fmt.Errorf("unknown change state %q", v)
	}
}

// ChangeStateOf 는 이벤트가 어떤 검색 변경에 해당하는지 알려준다.
// 검색과 무관한 이벤트는 ok=false 다.
func ChangeStateOf(evt ContentEvent) (ChangeState, bool) {
	switch evt.Type {
	case ContentChanged:
		return evt.State, evt.State.Valid()
	case PostPublished, ArticlePublished, SeriesPublished:
		return StatePublish, true
	case PostUpdated, ArticleUpdated, SeriesUpdated, ContentHidden:
		return StateUpdate, true
	case PostDeleted, ArticleDeleted, SeriesDeleted:
		return StateDelete, true
	default:
		return 0, false
	}
}
