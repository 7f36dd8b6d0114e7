package factory

import (
	"context"
	"slices"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

// CompletedStatuses are execution states that survive the import unchanged.
var CompletedStatuses = []string{"success", "failed", "canceled", "skipped"} // nolint: gochecknoglobals

// CancelableStatuses are execution states of a run that could still move,
// the underlying execution cannot be resumed after import, so they are
// forced to canceled.
var CancelableStatuses = []string{"created", "waiting_for_resource", "preparing", "pending", "running", "scheduled"} // nolint: gochecknoglobals

// normalizeStatus forces a cancelable status to canceled.
func normalizeStatus(object *model.Object) {
	status := object.GetString("status")
	if slices.Contains(CompletedStatuses, status) {
		return
	}
	if slices.Contains(CancelableStatuses, status) {
		object.Set("status", "canceled")
	}
}

type pipelineStrategy struct {
	factory *Factory
}

func (s *pipelineStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	normalizeStatus(object)

	for _, key := range []string{model.KindStage, model.KindNote} {
		if err := s.factory.buildChildren(ctx, object, record, desc, key, run); err != nil {
			return nil, err
		}
	}
	return object, nil
}

type stageStrategy struct {
	factory *Factory
}

func (s *stageStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	normalizeStatus(object)

	if err := s.factory.buildChildren(ctx, object, record, desc, model.KindJob, run); err != nil {
		return nil, err
	}
	return object, nil
}

type jobStrategy struct{}

func (s *jobStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	normalizeStatus(object)
	return object, nil
}
