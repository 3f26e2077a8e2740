package keys

import (
	"encoding/json"
	"slices"
	"strings"
)

// Key uniquely identifies an object.
//
// Objects are identified by adapter type, object type and either the name or
// the set of identifiers that take part in uniqueness. If at least one
// identifier takes part in uniqueness the name is not used for identification.
// All keys sharing adapter type and object type are expected to use the same
// set of uniqueness identifiers.
type Key struct {
	adapterType string
	objectType  string
	name        string
	identifiers []Identifier
	id          string
}

func New(adapterType, objectType, name string, identifiers ...Identifier) Key {
	k := Key{
		adapterType: adapterType,
		objectType:  objectType,
		name:        name,
		identifiers: make([]Identifier, 0, len(identifiers)),
	}

	for _, identifier := range identifiers {
		idx := slices.IndexFunc(k.identifiers, func(i Identifier) bool { return i.key == identifier.key })
		if idx >= 0 {
			k.identifiers[idx] = identifier
		} else {
			k.identifiers = append(k.identifiers, identifier)
		}
	}

	k.id = k.internalKey()

	return k
}

func (k Key) AdapterType() string { return k.adapterType }
func (k Key) ObjectType() string  { return k.objectType }
func (k Key) Name() string        { return k.name }

func (k Key) Identifiers() []Identifier {
	return slices.Clone(k.identifiers)
}

// ID returns a canonical encoding of everything that determines the identity
// of this key. Two keys are equal if, and only if, their IDs are equal.
func (k Key) ID() string {
	if k.id == "" {
		return k.internalKey()
	}
	return k.id
}

func (k Key) Equal(other Key) bool {
	return k.ID() == other.ID()
}

func (k Key) internalKey() string {
	unique := make([]Identifier, 0, len(k.identifiers))
	for _, i := range k.identifiers {
		if i.isPartOfUniqueness {
			unique = append(unique, i)
		}
	}

	parts := []string{k.adapterType, k.objectType}

	if len(unique) == 0 {
		parts = append(parts, k.name)
	} else {
		slices.SortFunc(unique, func(a, b Identifier) int { return strings.Compare(a.key, b.key) })
		for _, i := range unique {
			parts = append(parts, i.key, i.value)
		}
	}

	b, _ := json.Marshal(parts)
	return string(b)
}

// IdentifierValue returns the value of the identifier with the given key. A
// present identifier with a blank value is returned as is.
func (k Key) IdentifierValue(key string) (string, bool) {
	for _, i := range k.identifiers {
		if i.key == key {
			return i.value, true
		}
	}
	return "", false
}

// IdentifierValueOrDefault returns defaultValue if the identifier is absent or
// its value is blank
func (k Key) IdentifierValueOrDefault(key, defaultValue string) string {
	value, ok := k.IdentifierValue(key)
	if !ok || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func (k Key) String() string {
	ids := make([]string, 0, len(k.identifiers))
	for _, i := range k.identifiers {
		ids = append(ids, i.String())
	}
	return k.adapterType + ":" + k.objectType + ":" + k.name + ":[" + strings.Join(ids, ", ") + "]"
}

type keyJSON struct {
	Name        string       `json:"name"`
	AdapterKind string       `json:"adapterKind"`
	ObjectKind  string       `json:"objectKind"`
	Identifiers []Identifier `json:"identifiers"`
}

func (k Key) MarshalJSON() ([]byte, error) {
	identifiers := k.identifiers
	if identifiers == nil {
		identifiers = []Identifier{}
	}

	return json.Marshal(keyJSON{
		Name:        k.name,
		AdapterKind: k.adapterType,
		ObjectKind:  k.objectType,
		Identifiers: identifiers,
	})
}

func (k *Key) UnmarshalJSON(data []byte) error {
	kj := keyJSON{}

	err := json.Unmarshal(data, &kj)
	if err != nil {
		return err
	}

	*k = New(kj.AdapterKind, kj.ObjectKind, kj.Name, kj.Identifiers...)

	return nil
}
