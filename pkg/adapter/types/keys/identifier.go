package keys

import (
	"encoding/json"

	"github.com/diwise/integration-sdk/pkg/adapter/errors"
)

// Identifier is a piece of data that identifies an object. An identifier that
// is not part of uniqueness may change its value over time without the object
// becoming a different object.
type Identifier struct {
	key                string
	value              string
	isPartOfUniqueness bool
}

// NewIdentifier creates an identifier that takes part in uniqueness
func NewIdentifier(key, value string) Identifier {
	return Identifier{key: key, value: value, isPartOfUniqueness: true}
}

// NewNonUniqueIdentifier creates an identifier whose value is ignored when
// comparing keys
func NewNonUniqueIdentifier(key, value string) Identifier {
	return Identifier{key: key, value: value, isPartOfUniqueness: false}
}

func (i Identifier) Key() string              { return i.key }
func (i Identifier) Value() string            { return i.value }
func (i Identifier) IsPartOfUniqueness() bool { return i.isPartOfUniqueness }

func (i Identifier) String() string {
	if i.isPartOfUniqueness {
		return i.key + "*:" + i.value
	}
	return i.key + ":" + i.value
}

type Comparison int

const (
	NotEqual Comparison = iota
	Equal
	Conflict
)

func (c Comparison) String() string {
	switch c {
	case Equal:
		return "Equal"
	case Conflict:
		return "Conflict"
	default:
		return "NotEqual"
	}
}

// Compare reports whether two identifiers identify the same thing. Identifiers
// with the same key that disagree on uniqueness participation cannot be
// compared and yield Conflict together with an ErrUniquenessConflict error.
func Compare(a, b Identifier) (Comparison, error) {
	if a.key != b.key {
		return NotEqual, nil
	}

	if a.isPartOfUniqueness != b.isPartOfUniqueness {
		return Conflict, errors.NewUniquenessConflictError(a.key)
	}

	if !a.isPartOfUniqueness || a.value == b.value {
		return Equal, nil
	}

	return NotEqual, nil
}

type identifierJSON struct {
	Key                string `json:"key"`
	Value              string `json:"value"`
	IsPartOfUniqueness bool   `json:"isPartOfUniqueness"`
}

func (i Identifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(identifierJSON{
		Key:                i.key,
		Value:              i.value,
		IsPartOfUniqueness: i.isPartOfUniqueness,
	})
}

func (i *Identifier) UnmarshalJSON(data []byte) error {
	ij := identifierJSON{IsPartOfUniqueness: true}

	err := json.Unmarshal(data, &ij)
	if err != nil {
		return err
	}

	i.key = ij.Key
	i.value = ij.Value
	i.isPartOfUniqueness = ij.IsPartOfUniqueness

	return nil
}
