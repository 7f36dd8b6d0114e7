package factory

import (
	"slices"

	"github.com/spf13/cast"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

// sanitize applies the rules common to all kinds, in this order:
// the original primary key is dropped, excluded and not allow-listed
// attributes are removed, hazardous foreign keys are stripped, user
// references are remapped, the auto-merge trigger is disarmed, mentions
// are quoted and encrypted attributes are cleared.
//
// The returned discard flag is true when the record's primary actor
// cannot be resolved and the record must be skipped entirely.
func (f *Factory) sanitize(desc *model.RelationDescriptor, record *model.Record, run *model.BuildContext) (*model.Object, bool) {
	kind := record.RelationKey
	object := model.NewObject(kind)
	excluded := f.excludedKeys[kind]

	for _, key := range record.Attributes.Keys() {
		// Never preserve the original primary key
		if key == "id" {
			continue
		}
		if slices.Contains(excluded, key) {
			continue
		}
		if !desc.AllowedAttribute(key) {
			continue
		}
		// Inline sub-relations are built separately, see buildChildren
		if _, found := desc.InlineRelation(key); found {
			continue
		}
		value, _ := record.Attributes.Get(key)
		object.Set(key, value)
	}

	// Hazardous foreign keys reference the source tenant's id space,
	// destination values are substituted by the caller
	for _, key := range model.HazardousForeignKeys[kind] {
		object.Delete(key)
	}

	// Rendered markdown caches are re-rendered by the destination
	for _, key := range model.RenderedCacheAttributes() {
		object.Delete(key)
	}

	// User references are resolved through the member mapping
	if discard := f.remapUserReferences(object, run); discard {
		return nil, true
	}

	// The auto-merge trigger relationship is not reconstructable,
	// it must never silently re-arm
	if object.Has("merge_when_pipeline_succeeds") {
		object.Set("merge_when_pipeline_succeeds", false)
	}

	// Quote @mentions, imported text must not ping destination users
	if description := object.GetString("description"); description != "" {
		object.Set("description", quoteMentions(description))
	}

	// Secrets never cross tenants
	for _, key := range model.EncryptedAttributes[kind] {
		if object.Has(key) {
			object.Set(key, nil)
		}
	}

	return object, false
}

func (f *Factory) remapUserReferences(object *model.Object, run *model.BuildContext) (discard bool) {
	for key, policy := range model.UserReferences[object.Kind] {
		value, found := object.Get(key)

		if policy == model.UserRefAlwaysImporter {
			if found {
				object.Set(key, run.ImporterUserID)
			}
			continue
		}

		// A missing or null required actor is as unresolvable
		// as an unmapped one
		if !found || value == nil {
			if policy == model.UserRefRequired {
				return true
			}
			continue
		}

		sourceID := cast.ToInt64(value)
		if destinationID, mapped := run.Users.Map(sourceID); mapped {
			object.Set(key, destinationID)
			continue
		}

		switch policy {
		case model.UserRefFallbackImporter:
			object.Set(key, run.ImporterUserID)
		case model.UserRefNilIfUnmapped:
			object.Set(key, nil)
		case model.UserRefRequired:
			// The record's primary actor is unknown, a wrong actor
			// must not be persisted
			return true
		}
	}
	return false
}
