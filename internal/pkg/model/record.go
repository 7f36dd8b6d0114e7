// Package model contains domain types of the export/import pipeline:
// raw relation records, sanitized objects, the relation schema,
// sanitization tables and import failures.
package model

import (
	"github.com/keboola/go-utils/pkg/orderedmap"
)

// Record is one raw relation record read from an export tree.
// RelationIndex is the zero-based position of the record within its stream,
// it is the only durable identifier, original primary keys are never trusted.
type Record struct {
	RelationKey   string
	RelationIndex int
	Attributes    *orderedmap.OrderedMap
}

func NewRecord(relationKey string, relationIndex int, attributes *orderedmap.OrderedMap) *Record {
	if attributes == nil {
		attributes = orderedmap.New()
	}
	return &Record{RelationKey: relationKey, RelationIndex: relationIndex, Attributes: attributes}
}
