package factory

import (
	"context"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

// idealDistance is the gap between relative positions of neighbouring
// items, new items are placed after all existing ones without colliding.
const idealDistance = 513

// issueTypes maps recognized legacy type strings to canonical work-item types.
var issueTypes = map[string]string{ // nolint: gochecknoglobals
	"issue":       "issue",
	"incident":    "incident",
	"test_case":   "test_case",
	"requirement": "requirement",
	"task":        "task",
}

type issueStrategy struct {
	factory *Factory
}

func (s *issueStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	s.applyWorkItemType(object)

	// Place the issue after all existing items in the destination hierarchy
	object.Set("relative_position", run.MaxPosition(record.RelationKey)+2*idealDistance)

	// The milestone is a shared entity, equal titles dedup to one instance
	if err := s.factory.buildSharedEntity(ctx, object, record, model.KindMilestone, "milestone", run); err != nil {
		return nil, err
	}
	object.Delete("milestone")

	for _, key := range []string{model.KindNote, model.KindLabelLink, model.KindEvent} {
		if err := s.factory.buildChildren(ctx, object, record, desc, key, run); err != nil {
			return nil, err
		}
	}

	return object, nil
}

// applyWorkItemType resolves the work-item type: an explicit value always
// wins over the legacy issue_type string, an unrecognized legacy value
// leaves the type unset so the model default applies.
func (s *issueStrategy) applyWorkItemType(object *model.Object) {
	if value, found := object.Get("work_item_type"); found && value != nil {
		object.Delete("issue_type")
		return
	}
	object.Delete("work_item_type")

	legacy := object.GetString("issue_type")
	object.Delete("issue_type")
	if canonical, recognized := issueTypes[legacy]; recognized {
		object.Set("work_item_type", canonical)
	}
}
