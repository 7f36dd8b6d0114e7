package model

import (
	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"
)

// Object is a sanitized record ready to be validated and persisted.
// Children are inline sub-relation objects, they are persisted
// together with the parent.
type Object struct {
	Kind       string
	Attributes *orderedmap.OrderedMap
	Children   []*Object
}

func NewObject(kind string) *Object {
	return &Object{Kind: kind, Attributes: orderedmap.New()}
}

func NewObjectFrom(kind string, attributes *orderedmap.OrderedMap) *Object {
	if attributes == nil {
		attributes = orderedmap.New()
	}
	return &Object{Kind: kind, Attributes: attributes}
}

func (o *Object) Get(key string) (any, bool) {
	return o.Attributes.Get(key)
}

func (o *Object) Set(key string, value any) {
	o.Attributes.Set(key, value)
}

func (o *Object) Delete(key string) {
	o.Attributes.Delete(key)
}

func (o *Object) Has(key string) bool {
	_, found := o.Attributes.Get(key)
	return found
}

// GetString returns the attribute converted to a string, or "" if not set.
func (o *Object) GetString(key string) string {
	value, found := o.Attributes.Get(key)
	if !found || value == nil {
		return ""
	}
	return cast.ToString(value)
}

// GetInt64 returns the attribute converted to an int64, or 0 if not set.
// JSON numbers arrive as float64, the cast library handles the conversion.
func (o *Object) GetInt64(key string) int64 {
	value, found := o.Attributes.Get(key)
	if !found || value == nil {
		return 0
	}
	return cast.ToInt64(value)
}

// GetBool returns the attribute converted to a bool, or false if not set.
func (o *Object) GetBool(key string) bool {
	value, found := o.Attributes.Get(key)
	if !found || value == nil {
		return false
	}
	return cast.ToBool(value)
}

func (o *Object) AddChild(child *Object) {
	o.Children = append(o.Children, child)
}
