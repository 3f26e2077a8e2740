package objects

import (
	"encoding/json"
	"slices"

	"github.com/diwise/integration-sdk/pkg/adapter/types/data"
	"github.com/diwise/integration-sdk/pkg/adapter/types/keys"
)

// Object is a monitored resource. It holds metrics, properties, events and
// relationships to other objects and is identified by its key. Nothing is
// ever removed from an object.
//
// Objects are not safe for concurrent modification.
type Object struct {
	key keys.Key

	metrics     []data.Metric
	metricIndex map[string][]int

	properties    []data.Property
	propertyIndex map[string][]int

	events []data.Event

	parents  *keySet
	children *keySet

	childrenModified bool
}

func New(key keys.Key) *Object {
	return &Object{
		key:           key,
		metricIndex:   map[string][]int{},
		propertyIndex: map[string][]int{},
		parents:       newKeySet(),
		children:      newKeySet(),
	}
}

func (o *Object) Key() keys.Key       { return o.key }
func (o *Object) AdapterType() string { return o.key.AdapterType() }
func (o *Object) ObjectType() string  { return o.key.ObjectType() }
func (o *Object) Name() string        { return o.key.Name() }

func (o *Object) IdentifierValue(identifierKey string) (string, bool) {
	return o.key.IdentifierValue(identifierKey)
}

func (o *Object) IdentifierValueOrDefault(identifierKey, defaultValue string) string {
	return o.key.IdentifierValueOrDefault(identifierKey, defaultValue)
}

func (o *Object) AddMetric(m data.Metric) {
	o.metrics = append(o.metrics, m)
	o.metricIndex[m.Key()] = append(o.metricIndex[m.Key()], len(o.metrics)-1)
}

func (o *Object) AddMetrics(metrics ...data.Metric) {
	for _, m := range metrics {
		o.AddMetric(m)
	}
}

// WithMetric creates a metric data point and adds it to this object
func (o *Object) WithMetric(key string, value float64, decorators ...data.DataPointDecoratorFunc) {
	o.AddMetric(data.NewMetric(key, value, decorators...))
}

// Metrics returns all data points for the metric key in chronological order
func (o *Object) Metrics(key string) []data.Metric {
	result := make([]data.Metric, 0, len(o.metricIndex[key]))
	for _, idx := range o.metricIndex[key] {
		result = append(result, o.metrics[idx])
	}

	slices.SortStableFunc(result, func(a, b data.Metric) int { return compareTimestamps(a.Timestamp(), b.Timestamp()) })

	return result
}

func (o *Object) MetricValues(key string) []float64 {
	metrics := o.Metrics(key)
	values := make([]float64, 0, len(metrics))
	for _, m := range metrics {
		values = append(values, m.Value())
	}
	return values
}

func (o *Object) LastMetricValue(key string) (float64, bool) {
	return last(o.MetricValues(key))
}

func (o *Object) AddProperty(p data.Property) {
	o.properties = append(o.properties, p)
	o.propertyIndex[p.Key()] = append(o.propertyIndex[p.Key()], len(o.properties)-1)
}

func (o *Object) AddProperties(properties ...data.Property) {
	for _, p := range properties {
		o.AddProperty(p)
	}
}

func (o *Object) WithStringProperty(key, value string, decorators ...data.DataPointDecoratorFunc) {
	o.AddProperty(data.NewStringProperty(key, value, decorators...))
}

func (o *Object) WithNumericProperty(key string, value float64, decorators ...data.DataPointDecoratorFunc) {
	o.AddProperty(data.NewNumericProperty(key, value, decorators...))
}

// Properties returns all data points for the property key in chronological order
func (o *Object) Properties(key string) []data.Property {
	result := make([]data.Property, 0, len(o.propertyIndex[key]))
	for _, idx := range o.propertyIndex[key] {
		result = append(result, o.properties[idx])
	}

	slices.SortStableFunc(result, func(a, b data.Property) int { return compareTimestamps(a.Timestamp(), b.Timestamp()) })

	return result
}

// NumericPropertyValues skips any string data points stored under the same key
func (o *Object) NumericPropertyValues(key string) []float64 {
	values := []float64{}
	for _, p := range o.Properties(key) {
		if n, ok := p.NumberValue(); ok {
			values = append(values, n)
		}
	}
	return values
}

// StringPropertyValues skips any numeric data points stored under the same key
func (o *Object) StringPropertyValues(key string) []string {
	values := []string{}
	for _, p := range o.Properties(key) {
		if s, ok := p.StringValue(); ok {
			values = append(values, s)
		}
	}
	return values
}

func (o *Object) LastNumericPropertyValue(key string) (float64, bool) {
	return last(o.NumericPropertyValues(key))
}

func (o *Object) LastStringPropertyValue(key string) (string, bool) {
	return last(o.StringPropertyValues(key))
}

// AddEvent adds e unless an equal event has already been added
func (o *Object) AddEvent(e data.Event) {
	if slices.ContainsFunc(o.events, e.Equal) {
		return
	}
	o.events = append(o.events, e)
}

func (o *Object) AddEvents(events ...data.Event) {
	for _, e := range events {
		o.AddEvent(e)
	}
}

func (o *Object) WithEvent(message string, decorators ...data.EventDecoratorFunc) {
	o.AddEvent(data.NewEvent(message, decorators...))
}

func (o *Object) Events() []data.Event {
	return append([]data.Event{}, o.events...)
}

// AddParent records parent as a parent of this object, and this object as a
// child of parent. Relationship cycles are not detected.
func (o *Object) AddParent(parent *Object) {
	o.parents.add(parent.key)
	parent.addChild(o)
}

func (o *Object) AddParents(parents ...*Object) {
	for _, p := range parents {
		o.AddParent(p)
	}
}

func (o *Object) Parents() []keys.Key {
	return o.parents.keys()
}

// AddChild records child as a child of this object, and this object as a
// parent of child. Relationship cycles are not detected.
func (o *Object) AddChild(child *Object) {
	o.addChild(child)
	child.parents.add(o.key)
}

// AddChildren adds each child and marks this object's children as explicitly
// set, even when called without any children.
func (o *Object) AddChildren(children ...*Object) {
	o.childrenModified = true
	for _, c := range children {
		o.AddChild(c)
	}
}

func (o *Object) addChild(child *Object) {
	if o.children.add(child.key) {
		o.childrenModified = true
	}
}

func (o *Object) Children() []keys.Key {
	return o.children.keys()
}

// ChildrenModified reports if children have been added or set since the
// object was created
func (o *Object) ChildrenModified() bool {
	return o.childrenModified
}

// HasContent reports if any metric, property or event has been added
func (o *Object) HasContent() bool {
	return len(o.metrics) > 0 || len(o.properties) > 0 || len(o.events) > 0
}

func (o *Object) MarshalJSON() ([]byte, error) {
	metrics := o.metrics
	if metrics == nil {
		metrics = []data.Metric{}
	}

	properties := o.properties
	if properties == nil {
		properties = []data.Property{}
	}

	events := o.events
	if events == nil {
		events = []data.Event{}
	}

	return json.Marshal(struct {
		Key        keys.Key        `json:"key"`
		Metrics    []data.Metric   `json:"metrics"`
		Properties []data.Property `json:"properties"`
		Events     []data.Event    `json:"events"`
	}{o.key, metrics, properties, events})
}

type keySet struct {
	ordered []keys.Key
	index   map[string]struct{}
}

func newKeySet() *keySet {
	return &keySet{index: map[string]struct{}{}}
}

func (ks *keySet) add(k keys.Key) bool {
	if _, ok := ks.index[k.ID()]; ok {
		return false
	}
	ks.index[k.ID()] = struct{}{}
	ks.ordered = append(ks.ordered, k)
	return true
}

func (ks *keySet) keys() []keys.Key {
	return append([]keys.Key{}, ks.ordered...)
}

func compareTimestamps(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func last[T any](values []T) (T, bool) {
	var zero T
	if len(values) == 0 {
		return zero, false
	}
	return values[len(values)-1], true
}
