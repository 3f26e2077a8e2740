package data

import (
	"encoding/json"
	"time"
)

type DataPointDecoratorFunc func(*dataPoint)

type dataPoint struct {
	key       string
	timestamp int64
}

// Timestamp overrides the default collection time (now) with a time in
// milliseconds since the epoch
func Timestamp(millis int64) DataPointDecoratorFunc {
	return func(dp *dataPoint) {
		dp.timestamp = millis
	}
}

// At is a convenience for Timestamp(t.UnixMilli())
func At(t time.Time) DataPointDecoratorFunc {
	return Timestamp(t.UnixMilli())
}

func newDataPoint(key string, decorators []DataPointDecoratorFunc) dataPoint {
	dp := dataPoint{key: key, timestamp: time.Now().UnixMilli()}
	for _, decorate := range decorators {
		decorate(&dp)
	}
	return dp
}

// Metric is a numeric data point stored as time series data, e.g. cpu
// utilization or current session count
type Metric struct {
	dataPoint
	value float64
}

func NewMetric(key string, value float64, decorators ...DataPointDecoratorFunc) Metric {
	return Metric{
		dataPoint: newDataPoint(key, decorators),
		value:     value,
	}
}

func (m Metric) Key() string      { return m.key }
func (m Metric) Value() float64   { return m.value }
func (m Metric) Timestamp() int64 { return m.timestamp }

func (m Metric) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string  `json:"key"`
		NumberValue float64 `json:"numberValue"`
		Timestamp   int64   `json:"timestamp"`
	}{m.key, m.value, m.timestamp})
}

// PropertyValue is either a StringValue or a NumberValue
type PropertyValue interface {
	isPropertyValue()
}

type StringValue string
type NumberValue float64

func (StringValue) isPropertyValue() {}
func (NumberValue) isPropertyValue() {}

// Property is a value that changes infrequently or not at all, where only the
// current value is of interest, e.g. an ip address or a software version
type Property struct {
	dataPoint
	value PropertyValue
}

func NewStringProperty(key, value string, decorators ...DataPointDecoratorFunc) Property {
	return Property{
		dataPoint: newDataPoint(key, decorators),
		value:     StringValue(value),
	}
}

func NewNumericProperty(key string, value float64, decorators ...DataPointDecoratorFunc) Property {
	return Property{
		dataPoint: newDataPoint(key, decorators),
		value:     NumberValue(value),
	}
}

func (p Property) Key() string          { return p.key }
func (p Property) Value() PropertyValue { return p.value }
func (p Property) Timestamp() int64     { return p.timestamp }

func (p Property) StringValue() (string, bool) {
	s, ok := p.value.(StringValue)
	return string(s), ok
}

func (p Property) NumberValue() (float64, bool) {
	n, ok := p.value.(NumberValue)
	return float64(n), ok
}

func (p Property) MarshalJSON() ([]byte, error) {
	contents := map[string]any{
		"key":       p.key,
		"timestamp": p.timestamp,
	}

	switch v := p.value.(type) {
	case StringValue:
		contents["stringValue"] = string(v)
	case NumberValue:
		contents["numberValue"] = float64(v)
	default:
		contents["stringValue"] = ""
	}

	return json.Marshal(contents)
}
