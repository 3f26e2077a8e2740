package adapter

import (
	"encoding/json"
	"errors"
	"testing"

	sdkerrors "github.com/diwise/integration-sdk/pkg/adapter/errors"
	"github.com/diwise/integration-sdk/pkg/adapter/types/keys"
	"github.com/diwise/integration-sdk/pkg/adapter/types/objects"
	"github.com/matryer/is"
)

type definition string

func (d definition) AdapterType() string { return string(d) }

func TestGetOrCreateReturnsTheSameInstance(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult()

	a := cr.GetOrCreate("A", "Host", "h1", keys.NewIdentifier("ip", "10.0.0.1"))
	b := cr.GetOrCreateObject(keys.New("A", "Host", "h1", keys.NewIdentifier("ip", "10.0.0.1")))

	is.True(a == b)
	is.Equal(len(cr.Objects()), 1)
}

func TestAddObjectIsIdempotentForTheSameInstance(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult()

	obj := cr.GetOrCreate("A", "Host", "h1")

	is.NoErr(cr.AddObject(obj))
	is.NoErr(cr.AddObject(obj))
	is.Equal(len(cr.Objects()), 1)
}

func TestAddObjectFailsForADifferentInstanceWithTheSameKey(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult()

	cr.GetOrCreate("A", "Host", "h1")
	err := cr.AddObject(objects.New(keys.New("A", "Host", "h1")))

	is.True(errors.Is(err, sdkerrors.ErrDuplicateKey))

	var dke *sdkerrors.DuplicateKeyError
	is.True(errors.As(err, &dke))
	is.Equal(dke.Keys, []string{keys.New("A", "Host", "h1").String()})
}

func TestAddObjectsAllowsPartialSuccess(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult()

	cr.GetOrCreate("A", "Host", "h1")
	cr.GetOrCreate("A", "Host", "h2")

	err := cr.AddObjects(
		objects.New(keys.New("A", "Host", "h1")),
		objects.New(keys.New("A", "Host", "h3")),
		objects.New(keys.New("A", "Host", "h2")),
	)

	var dke *sdkerrors.DuplicateKeyError
	is.True(errors.As(err, &dke))
	is.Equal(len(dke.Keys), 2)

	_, ok := cr.Object(keys.New("A", "Host", "h3"))
	is.True(ok)
	is.Equal(len(cr.Objects()), 3)
}

func TestObjectsByType(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult()

	cr.GetOrCreate("A", "Host", "h1")
	cr.GetOrCreate("A", "VM", "v1")
	cr.GetOrCreate("B", "Host", "h2")

	is.Equal(len(cr.ObjectsByType("Host")), 2)
	is.Equal(len(cr.ObjectsByAdapterType("A")), 2)
	is.Equal(len(cr.ObjectsByAdapterAndType("B", "Host")), 1)
	is.Equal(len(cr.ObjectsByAdapterAndType("B", "VM")), 0)
}

func TestRelationshipsAll(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult(WithRelationshipMode(RelationshipsAll))

	a := cr.GetOrCreate("A", "Cluster", "c1")
	b := cr.GetOrCreate("A", "Host", "h1")
	a.AddChild(b)

	out := marshal(t, cr)
	rels := out["relationships"].([]any)

	is.Equal(len(rels), 2)
	first := rels[0].(map[string]any)
	is.Equal(first["parent"].(map[string]any)["name"], "c1")
	children := first["children"].([]any)
	is.Equal(len(children), 1)
	is.Equal(children[0].(map[string]any)["name"], "h1")
	is.Equal(len(rels[1].(map[string]any)["children"].([]any)), 0)
}

func TestRelationshipsNone(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult(WithRelationshipMode(RelationshipsNone))

	cr.GetOrCreate("A", "Cluster", "c1").AddChild(cr.GetOrCreate("A", "Host", "h1"))

	out := marshal(t, cr)
	is.Equal(len(out["relationships"].([]any)), 0)
}

func TestRelationshipsAutoWithoutModifiedChildrenIsEmpty(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult()

	cr.GetOrCreate("A", "Cluster", "c1")
	cr.GetOrCreate("A", "Host", "h1")

	out := marshal(t, cr)
	is.Equal(len(out["relationships"].([]any)), 0)
}

func TestRelationshipsAutoWithModifiedChildrenEmitsEveryObject(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult()

	cr.GetOrCreate("A", "Cluster", "c1").AddChild(cr.GetOrCreate("A", "Host", "h1"))
	cr.GetOrCreate("A", "Host", "h2")

	out := marshal(t, cr)
	is.Equal(len(out["relationships"].([]any)), 3)
}

func TestRelationshipsPerObject(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult(WithRelationshipMode(RelationshipsPerObject))

	cr.GetOrCreate("A", "Cluster", "c1").AddChild(cr.GetOrCreate("A", "Host", "h1"))
	cr.GetOrCreate("A", "Cluster", "c2").AddChildren()
	cr.GetOrCreate("A", "Cluster", "c3")

	out := marshal(t, cr)
	rels := out["relationships"].([]any)

	is.Equal(len(rels), 2)
	second := rels[1].(map[string]any)
	is.Equal(second["parent"].(map[string]any)["name"], "c2")
	is.Equal(len(second["children"].([]any)), 0)
}

func TestExternalObjectsAreOnlySentWithContent(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult(WithDefinition(definition("A")))

	cr.GetOrCreate("A", "Host", "internal")
	cr.GetOrCreate("B", "Host", "empty-external")
	cr.GetOrCreate("B", "Host", "external").WithMetric("cpu", 1)

	out := marshal(t, cr)
	result := out["result"].([]any)

	is.Equal(len(result), 2)
	is.Equal(result[0].(map[string]any)["key"].(map[string]any)["name"], "internal")
	is.Equal(result[1].(map[string]any)["key"].(map[string]any)["name"], "external")
}

func TestWithoutAdapterTypeEveryObjectIsSent(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult()

	cr.GetOrCreate("A", "Host", "h1")
	cr.GetOrCreate("B", "Host", "h2")

	out := marshal(t, cr)
	is.Equal(len(out["result"].([]any)), 2)
	is.Equal(len(out["nonExistingObjects"].([]any)), 0)
}

func TestErrorMessageDiscardsCollectedData(t *testing.T) {
	is := is.New(t)
	cr, _ := NewCollectResult(WithRelationshipMode(RelationshipsAll))

	cr.GetOrCreate("A", "Host", "h1").WithMetric("cpu", 1)
	cr.WithError("first")
	cr.WithError("could not connect")

	b, err := json.Marshal(cr)
	is.NoErr(err)
	is.Equal(string(b), `{"errorMessage":"could not connect"}`)
	is.True(!cr.IsSuccess())
}

func TestTestResultJSON(t *testing.T) {
	is := is.New(t)

	tr := NewTestResult()
	b, _ := json.Marshal(tr)
	is.Equal(string(b), `{}`)

	tr.WithError("bad credentials")
	b, _ = json.Marshal(tr)
	is.Equal(string(b), `{"errorMessage":"bad credentials"}`)
}

func TestEndpointResultJSON(t *testing.T) {
	is := is.New(t)

	er := NewEndpointResult()
	b, _ := json.Marshal(er)
	is.Equal(string(b), `{"endpointUrls":[]}`)

	er.WithEndpoint("https://a", "https://b", "https://a")
	b, _ = json.Marshal(er)
	is.Equal(string(b), `{"endpointUrls":["https://a","https://b"]}`)
}

func marshal(t *testing.T, cr *CollectResult) map[string]any {
	t.Helper()

	b, err := json.Marshal(cr)
	if err != nil {
		t.Fatalf("failed to marshal collect result: %s", err.Error())
	}

	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("failed to unmarshal collect result: %s", err.Error())
	}

	return out
}
