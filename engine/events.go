package engine

// NoticeType names something that happened in the world during a frame.
type NoticeType string

const (
	NoticeState         NoticeType = "state"
	NoticeLoaded        NoticeType = "loaded"
	NoticeEnded         NoticeType = "ended"
	NoticeCommandFailed NoticeType = "command_failed"
	NoticeEdited        NoticeType = "edited"
)

// Notice is a one-shot world event handed to publishers with the next frame.
type Notice struct {
	Type    NoticeType `json:"type"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Notice
}

// Push adds a notice.
func (q *EventQueue) Push(n Notice) {
	if q == nil {
		return
	}
	q.items = append(q.items, n)
}

// Drain returns all notices and clears the queue.
func (q *EventQueue) Drain() []Notice {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
