package data

import "encoding/json"

type Criticality int

const (
	CriticalityNone Criticality = iota
	CriticalityInfo
	CriticalityWarning
	CriticalityImmediate
	CriticalityCritical
	CriticalityAutomatic
)

// Event is a message attached to an object. Events with auto cancel enabled
// are cancelled by the platform once they stop being reported, all others
// stay active until sent with a cancel date.
type Event struct {
	message         string
	criticality     Criticality
	faultKey        *string
	autoCancel      bool
	startDate       *int64
	updateDate      *int64
	cancelDate      *int64
	watchWaitCycle  int
	cancelWaitCycle int
}

type EventDecoratorFunc func(*Event)

func NewEvent(message string, decorators ...EventDecoratorFunc) Event {
	e := Event{
		message:         message,
		criticality:     CriticalityNone,
		autoCancel:      false,
		watchWaitCycle:  1,
		cancelWaitCycle: 3,
	}

	for _, decorate := range decorators {
		decorate(&e)
	}

	return e
}

// WithCriticality sets the criticality, clamped to the range
// CriticalityNone..CriticalityAutomatic
func WithCriticality(c Criticality) EventDecoratorFunc {
	return func(e *Event) { e.criticality = min(max(c, CriticalityNone), CriticalityAutomatic) }
}

// FaultKey relates the event to a metric or property key
func FaultKey(key string) EventDecoratorFunc {
	return func(e *Event) { e.faultKey = &key }
}

// AutoCancel set to false makes the adapter responsible for sending the event
// with a cancel date
func AutoCancel(enabled bool) EventDecoratorFunc {
	return func(e *Event) { e.autoCancel = enabled }
}

func StartDate(millis int64) EventDecoratorFunc {
	return func(e *Event) { e.startDate = &millis }
}

func UpdateDate(millis int64) EventDecoratorFunc {
	return func(e *Event) { e.updateDate = &millis }
}

func CancelDate(millis int64) EventDecoratorFunc {
	return func(e *Event) { e.cancelDate = &millis }
}

// WatchWaitCycle is the number of collections an event must be present in
// before it is surfaced
func WatchWaitCycle(cycles int) EventDecoratorFunc {
	return func(e *Event) { e.watchWaitCycle = cycles }
}

// CancelWaitCycle is the number of collections an auto cancelled event must be
// absent from before it is removed
func CancelWaitCycle(cycles int) EventDecoratorFunc {
	return func(e *Event) { e.cancelWaitCycle = cycles }
}

func (e Event) Message() string          { return e.message }
func (e Event) Criticality() Criticality { return e.criticality }
func (e Event) AutoCancel() bool         { return e.autoCancel }
func (e Event) WatchWaitCycle() int      { return e.watchWaitCycle }
func (e Event) CancelWaitCycle() int     { return e.cancelWaitCycle }

func (e Event) FaultKey() (string, bool) {
	if e.faultKey == nil {
		return "", false
	}
	return *e.faultKey, true
}

// Equal reports whether two events carry the same values
func (e Event) Equal(other Event) bool {
	return e.message == other.message &&
		e.criticality == other.criticality &&
		e.autoCancel == other.autoCancel &&
		e.watchWaitCycle == other.watchWaitCycle &&
		e.cancelWaitCycle == other.cancelWaitCycle &&
		equalPtr(e.faultKey, other.faultKey) &&
		equalPtr(e.startDate, other.startDate) &&
		equalPtr(e.updateDate, other.updateDate) &&
		equalPtr(e.cancelDate, other.cancelDate)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message         string      `json:"message"`
		Criticality     Criticality `json:"criticality"`
		FaultKey        *string     `json:"faultKey,omitempty"`
		AutoCancel      bool        `json:"autoCancel"`
		StartDate       *int64      `json:"startDate,omitempty"`
		UpdateDate      *int64      `json:"updateDate,omitempty"`
		CancelDate      *int64      `json:"cancelDate,omitempty"`
		WatchWaitCycle  int         `json:"watchWaitCycle"`
		CancelWaitCycle int         `json:"cancelWaitCycle"`
	}{
		Message:         e.message,
		Criticality:     e.criticality,
		FaultKey:        e.faultKey,
		AutoCancel:      e.autoCancel,
		StartDate:       e.startDate,
		UpdateDate:      e.updateDate,
		CancelDate:      e.cancelDate,
		WatchWaitCycle:  e.watchWaitCycle,
		CancelWaitCycle: e.cancelWaitCycle,
	})
}
