package adapter

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/diwise/integration-sdk/pkg/adapter/errors"
	"github.com/diwise/integration-sdk/pkg/adapter/types/keys"
	"github.com/diwise/integration-sdk/pkg/adapter/types/objects"
)

// AdapterTyper is implemented by anything that can tell which adapter type
// owns a collect result, e.g. an adapter definition
type AdapterTyper interface {
	AdapterType() string
}

type RelationshipMode int

const (
	// RelationshipsAuto sends every relationship if at least one object has
	// had its children modified, and no relationships otherwise
	RelationshipsAuto RelationshipMode = iota
	// RelationshipsAll always sends every relationship, also replacing
	// relationships of objects that have had no children added
	RelationshipsAll
	// RelationshipsNone never sends relationships, leaving the relationships
	// already known by the platform untouched
	RelationshipsNone
	// RelationshipsPerObject only sends the relationships of objects that
	// have had their children modified
	RelationshipsPerObject
)

func (m RelationshipMode) String() string {
	switch m {
	case RelationshipsAll:
		return "ALL"
	case RelationshipsNone:
		return "NONE"
	case RelationshipsPerObject:
		return "PER_OBJECT"
	}
	return "AUTO"
}

// CollectResult holds every object collected during a single collection
// cycle. It is not safe for concurrent use.
type CollectResult struct {
	objects          map[string]*objects.Object
	order            []string
	adapterType      string
	errorMessage     *string
	relationshipMode RelationshipMode
}

type CollectResultOption func(*CollectResult) error

// WithDefinition declares the adapter type owning the result. Objects of
// other adapter types are only sent if they have content.
func WithDefinition(definition AdapterTyper) CollectResultOption {
	return func(cr *CollectResult) error {
		cr.adapterType = definition.AdapterType()
		return nil
	}
}

func WithAdapterType(adapterType string) CollectResultOption {
	return func(cr *CollectResult) error {
		cr.adapterType = adapterType
		return nil
	}
}

func WithObjects(objs ...*objects.Object) CollectResultOption {
	return func(cr *CollectResult) error {
		return cr.AddObjects(objs...)
	}
}

func WithRelationshipMode(mode RelationshipMode) CollectResultOption {
	return func(cr *CollectResult) error {
		cr.relationshipMode = mode
		return nil
	}
}

func NewCollectResult(options ...CollectResultOption) (*CollectResult, error) {
	cr := &CollectResult{
		objects:          map[string]*objects.Object{},
		relationshipMode: RelationshipsAuto,
	}

	for _, opt := range options {
		if err := opt(cr); err != nil {
			return cr, err
		}
	}

	return cr, nil
}

// GetOrCreateObject returns the object registered under key, or creates and
// registers a new one if there is none
func (cr *CollectResult) GetOrCreateObject(key keys.Key) *objects.Object {
	if obj, ok := cr.objects[key.ID()]; ok {
		return obj
	}

	obj := objects.New(key)
	cr.register(obj)

	return obj
}

func (cr *CollectResult) GetOrCreate(adapterType, objectType, name string, identifiers ...keys.Identifier) *objects.Object {
	return cr.GetOrCreateObject(keys.New(adapterType, objectType, name, identifiers...))
}

// AddObject registers obj under its key. Adding the same instance again is a
// no-op, but adding a different instance with an equal key is an error.
func (cr *CollectResult) AddObject(obj *objects.Object) error {
	existing, ok := cr.objects[obj.Key().ID()]
	if !ok {
		cr.register(obj)
		return nil
	}

	if existing != obj {
		return errors.NewDuplicateKeyError(obj.Key().String())
	}

	return nil
}

// AddObjects tries to add every object, even if some of them fail. The
// returned error lists the keys of all objects that could not be added.
func (cr *CollectResult) AddObjects(objs ...*objects.Object) error {
	failed := []string{}

	for _, obj := range objs {
		if err := cr.AddObject(obj); err != nil {
			failed = append(failed, obj.Key().String())
		}
	}

	if len(failed) > 0 {
		return errors.NewDuplicateKeyError(failed...)
	}

	return nil
}

func (cr *CollectResult) register(obj *objects.Object) {
	id := obj.Key().ID()
	cr.objects[id] = obj
	cr.order = append(cr.order, id)
}

func (cr *CollectResult) Object(key keys.Key) (*objects.Object, bool) {
	obj, ok := cr.objects[key.ID()]
	return obj, ok
}

// Objects returns all objects in the order they were added
func (cr *CollectResult) Objects() []*objects.Object {
	return cr.filter(func(*objects.Object) bool { return true })
}

func (cr *CollectResult) ObjectsByType(objectType string) []*objects.Object {
	return cr.filter(func(o *objects.Object) bool { return o.ObjectType() == objectType })
}

func (cr *CollectResult) ObjectsByAdapterType(adapterType string) []*objects.Object {
	return cr.filter(func(o *objects.Object) bool { return o.AdapterType() == adapterType })
}

func (cr *CollectResult) ObjectsByAdapterAndType(adapterType, objectType string) []*objects.Object {
	return cr.filter(func(o *objects.Object) bool {
		return o.AdapterType() == adapterType && o.ObjectType() == objectType
	})
}

func (cr *CollectResult) filter(predicate func(*objects.Object) bool) []*objects.Object {
	result := []*objects.Object{}
	for _, id := range cr.order {
		if obj := cr.objects[id]; predicate(obj) {
			result = append(result, obj)
		}
	}
	return result
}

// WithError marks the whole collection as failed. Only the last message is
// kept, and no collected data is sent once an error has been set.
func (cr *CollectResult) WithError(message string) {
	cr.errorMessage = &message
}

func (cr *CollectResult) IsSuccess() bool {
	return cr.errorMessage == nil
}

func (cr *CollectResult) ErrorMessage() (string, bool) {
	if cr.errorMessage == nil {
		return "", false
	}
	return *cr.errorMessage, true
}

func (cr *CollectResult) SetRelationshipMode(mode RelationshipMode) {
	cr.relationshipMode = mode
}

func (cr *CollectResult) RelationshipMode() RelationshipMode {
	return cr.relationshipMode
}

func (cr *CollectResult) isExternal(obj *objects.Object) bool {
	return cr.adapterType != "" && obj.AdapterType() != cr.adapterType
}

func (cr *CollectResult) relationships() []relationship {
	emitted := func(*objects.Object) bool { return false }

	switch cr.relationshipMode {
	case RelationshipsAll:
		emitted = func(*objects.Object) bool { return true }
	case RelationshipsPerObject:
		emitted = (*objects.Object).ChildrenModified
	case RelationshipsAuto:
		if slices.ContainsFunc(cr.Objects(), (*objects.Object).ChildrenModified) {
			emitted = func(*objects.Object) bool { return true }
		}
	}

	result := []relationship{}
	for _, obj := range cr.filter(emitted) {
		result = append(result, relationship{Parent: obj.Key(), Children: obj.Children()})
	}

	return result
}

type relationship struct {
	Parent   keys.Key   `json:"parent"`
	Children []keys.Key `json:"children"`
}

func (cr *CollectResult) MarshalJSON() ([]byte, error) {
	if cr.errorMessage != nil {
		return json.Marshal(struct {
			ErrorMessage string `json:"errorMessage"`
		}{*cr.errorMessage})
	}

	result := cr.filter(func(o *objects.Object) bool {
		return !cr.isExternal(o) || o.HasContent()
	})

	return json.Marshal(struct {
		Result             []*objects.Object `json:"result"`
		Relationships      []relationship    `json:"relationships"`
		NonExistingObjects []keys.Key        `json:"nonExistingObjects"`
	}{
		Result:             result,
		Relationships:      cr.relationships(),
		NonExistingObjects: []keys.Key{},
	})
}

func (cr *CollectResult) String() string {
	return fmt.Sprintf("collect result with %d objects (relationships: %s, success: %t)", len(cr.order), cr.relationshipMode, cr.IsSuccess())
}

// TestResult is the outcome of a connection test
type TestResult struct {
	errorMessage *string
}

func NewTestResult() *TestResult {
	return &TestResult{}
}

func (tr *TestResult) WithError(message string) {
	tr.errorMessage = &message
}

func (tr *TestResult) IsSuccess() bool {
	return tr.errorMessage == nil
}

func (tr *TestResult) ErrorMessage() (string, bool) {
	if tr.errorMessage == nil {
		return "", false
	}
	return *tr.errorMessage, true
}

func (tr *TestResult) MarshalJSON() ([]byte, error) {
	if tr.errorMessage == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(struct {
		ErrorMessage string `json:"errorMessage"`
	}{*tr.errorMessage})
}

// EndpointResult lists the urls the platform should fetch certificates from
// before a connection test or a collection
type EndpointResult struct {
	urls []string
}

func NewEndpointResult(urls ...string) *EndpointResult {
	er := &EndpointResult{urls: []string{}}
	er.WithEndpoint(urls...)
	return er
}

func (er *EndpointResult) WithEndpoint(urls ...string) {
	for _, u := range urls {
		if !slices.Contains(er.urls, u) {
			er.urls = append(er.urls, u)
		}
	}
}

func (er *EndpointResult) Endpoints() []string {
	return slices.Clone(er.urls)
}

func (er *EndpointResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EndpointURLs []string `json:"endpointUrls"`
	}{er.urls})
}
