package factory

import (
	"context"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

type protectedBranchStrategy struct {
	factory *Factory
}

func (s *protectedBranchStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	for _, key := range []string{model.KindMergeAccessLevel, model.KindPushAccessLevel} {
		if err := s.factory.buildChildren(ctx, object, record, desc, key, run); err != nil {
			return nil, err
		}
	}

	// Clamp the access level of every grant
	for _, child := range object.Children {
		level := model.AccessLevel(child.GetInt64("access_level"))
		child.Set("access_level", int64(clampAccessLevel(level, run)))
	}

	return object, nil
}

// clampAccessLevel sanitizes a protected-ref grant: NO_ACCESS is preserved,
// every other level is clamped to Maintainer, unless the importing user is
// presently a member of the destination root group holding exactly that
// level. If the root ancestor is not a group, the clamp always applies.
func clampAccessLevel(level model.AccessLevel, run *model.BuildContext) model.AccessLevel {
	if level == model.NoAccess {
		return model.NoAccess
	}
	if run.RootGroup != nil && run.RootGroup.HasMembership && run.RootGroup.Membership == level {
		return level
	}
	return model.Maintainer
}
