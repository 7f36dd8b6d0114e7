package factory

import (
	"context"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

// scheduleStrategy disarms background schedules: an imported schedule
// must never fire on its own, and it always belongs to the importing user.
type scheduleStrategy struct{}

func (s *scheduleStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	object.Set("active", false)
	object.Set("owner_id", run.ImporterUserID)
	return object, nil
}
