package factory

import (
	"context"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

// memberStrategy resolves the membership to a destination user,
// a membership of an unmapped user is discarded.
type memberStrategy struct{}

func (s *memberStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	sourceID, found := memberSourceUserID(record.Attributes)
	object.Delete("user")
	if !found {
		return nil, nil
	}

	destinationID, mapped := run.Users.Map(sourceID)
	if !mapped {
		return nil, nil
	}

	object.Set("user_id", destinationID)
	return object, nil
}

// memberSourceUserID reads the source user id from the nested user identity.
func memberSourceUserID(attributes *orderedmap.OrderedMap) (int64, bool) {
	value, found := attributes.Get("user")
	if !found || value == nil {
		return 0, false
	}
	user, ok := value.(*orderedmap.OrderedMap)
	if !ok {
		return 0, false
	}
	id, found := user.Get("id")
	if !found || id == nil {
		return 0, false
	}
	return cast.ToInt64(id), true
}
