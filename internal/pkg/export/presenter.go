package export

import (
	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

// PresentRoot returns the root document: caller-supplied overrides are
// applied first, then every attribute outside the export allowlist is
// stripped, secret fields are never part of the allowlist.
func PresentRoot(desc *model.RelationDescriptor, attributes *orderedmap.OrderedMap, overrides map[string]any) *orderedmap.OrderedMap {
	presented := attributes.Clone()
	for key, value := range overrides {
		presented.Set(key, value)
	}
	return stripAttributes(desc, presented)
}

// PresentRecord returns one relation record restricted to the relation's
// allow-listed attributes, encrypted attributes are always stripped.
func PresentRecord(desc *model.RelationDescriptor, attributes *orderedmap.OrderedMap) *orderedmap.OrderedMap {
	return stripAttributes(desc, attributes.Clone())
}

func stripAttributes(desc *model.RelationDescriptor, attributes *orderedmap.OrderedMap) *orderedmap.OrderedMap {
	for _, key := range attributes.Keys() {
		if desc.AllowedAttribute(key) {
			continue
		}
		// Inline sub-relations stay embedded in the record
		if _, found := desc.InlineRelation(key); found {
			continue
		}
		attributes.Delete(key)
	}
	for _, key := range model.EncryptedAttributes[desc.Key] {
		attributes.Delete(key)
	}
	return attributes
}
