package factory

import (
	"context"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

// labelStrategy resolves a top-level label through the object builder,
// so a label with the same title is created at most once per run.
type labelStrategy struct {
	factory *Factory
}

func (s *labelStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	return s.factory.builder.FindOrBuild(ctx, run, model.KindLabel, object.Attributes)
}

type milestoneStrategy struct {
	factory *Factory
}

func (s *milestoneStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	return s.factory.builder.FindOrBuild(ctx, run, model.KindMilestone, object.Attributes)
}

// labelLinkStrategy attaches the deduplicated label to the link record.
type labelLinkStrategy struct {
	factory *Factory
}

func (s *labelLinkStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	if err := s.factory.buildSharedEntity(ctx, object, record, model.KindLabel, "label", run); err != nil {
		return nil, err
	}
	object.Delete("label")

	// A link without a label is meaningless
	if len(object.Children) == 0 {
		return nil, nil
	}
	return object, nil
}
