package data

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestMetricJSON(t *testing.T) {
	is := is.New(t)

	b, err := json.Marshal(NewMetric("cpu|usage", 12.5, Timestamp(1000)))

	is.NoErr(err)
	is.Equal(string(b), `{"key":"cpu|usage","numberValue":12.5,"timestamp":1000}`)
}

func TestMetricDefaultsToNow(t *testing.T) {
	is := is.New(t)

	before := time.Now().UnixMilli()
	m := NewMetric("m", 1)

	is.True(m.Timestamp() >= before)
}

func TestStringPropertyJSON(t *testing.T) {
	is := is.New(t)

	p := NewStringProperty("version", "1.2.3", Timestamp(5))
	b, err := json.Marshal(p)

	is.NoErr(err)
	is.Equal(string(b), `{"key":"version","stringValue":"1.2.3","timestamp":5}`)

	s, ok := p.StringValue()
	is.True(ok)
	is.Equal(s, "1.2.3")

	_, ok = p.NumberValue()
	is.True(!ok)
}

func TestNumericPropertyJSON(t *testing.T) {
	is := is.New(t)

	p := NewNumericProperty("cores", 8, Timestamp(5))
	b, err := json.Marshal(p)

	is.NoErr(err)
	is.Equal(string(b), `{"key":"cores","numberValue":8,"timestamp":5}`)

	n, ok := p.NumberValue()
	is.True(ok)
	is.Equal(n, 8.0)
}

func TestEventDefaultsJSON(t *testing.T) {
	is := is.New(t)

	b, err := json.Marshal(NewEvent("disk is full"))

	is.NoErr(err)
	is.Equal(string(b), `{"message":"disk is full","criticality":0,"autoCancel":false,"watchWaitCycle":1,"cancelWaitCycle":3}`)
}

func TestEventCriticalityIsClamped(t *testing.T) {
	is := is.New(t)

	is.Equal(NewEvent("x", WithCriticality(Criticality(9))).Criticality(), CriticalityAutomatic)
	is.Equal(NewEvent("x", WithCriticality(Criticality(-2))).Criticality(), CriticalityNone)
	is.Equal(NewEvent("x", WithCriticality(CriticalityCritical)).Criticality(), CriticalityCritical)
}

func TestEventEqualComparesValues(t *testing.T) {
	is := is.New(t)

	a := NewEvent("disk full", FaultKey("disk|used"), StartDate(1000))
	b := NewEvent("disk full", FaultKey("disk|used"), StartDate(1000))
	c := NewEvent("disk full", FaultKey("disk|used"), StartDate(2000))

	is.True(a.Equal(b))
	is.True(!a.Equal(c))
	is.True(!a.Equal(NewEvent("disk full")))
}

func TestEventWithAllFieldsJSON(t *testing.T) {
	is := is.New(t)

	e := NewEvent("disk is full",
		WithCriticality(CriticalityCritical),
		FaultKey("disk|used"),
		AutoCancel(false),
		StartDate(1),
		UpdateDate(2),
		CancelDate(3),
		WatchWaitCycle(2),
		CancelWaitCycle(5),
	)

	b, err := json.Marshal(e)

	is.NoErr(err)
	is.Equal(string(b), `{"message":"disk is full","criticality":4,"faultKey":"disk|used","autoCancel":false,"startDate":1,"updateDate":2,"cancelDate":3,"watchWaitCycle":2,"cancelWaitCycle":5}`)

	fk, ok := e.FaultKey()
	is.True(ok)
	is.Equal(fk, "disk|used")
}
