package factory

import (
	"context"
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

type mergeRequestStrategy struct {
	factory *Factory
}

func (s *mergeRequestStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	object.Delete("milestone")

	// Equal composite keys resolve to one instance, re-importing the
	// same tree must not create a duplicate merge request
	resolved, err := s.factory.builder.FindOrBuild(ctx, run, model.KindMergeRequest, object.Attributes)
	if err != nil {
		return nil, err
	}
	if resolved.Has("id") {
		// The merge request was already persisted, its children with it
		return resolved, nil
	}
	object = resolved

	if err := s.factory.buildSharedEntity(ctx, object, record, model.KindMilestone, "milestone", run); err != nil {
		return nil, err
	}

	// The diff is a single nested record, not a stream
	if err := s.buildDiff(ctx, object, record, desc, run); err != nil {
		return nil, err
	}

	for _, key := range []string{model.KindApproval, model.KindNote, model.KindEvent, model.KindLabelLink} {
		if err := s.factory.buildChildren(ctx, object, record, desc, key, run); err != nil {
			return nil, err
		}
	}

	return object, nil
}

func (s *mergeRequestStrategy) buildDiff(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) error {
	value, found := record.Attributes.Get(model.KindMergeRequestDiff)
	if !found || value == nil {
		return nil
	}

	attributes, ok := value.(*orderedmap.OrderedMap)
	if !ok {
		return errors.Errorf(`relation "%s" in "%s" record is not an object`, model.KindMergeRequestDiff, record.RelationKey)
	}

	diffDesc, found := desc.InlineRelation(model.KindMergeRequestDiff)
	if !found {
		return errors.Errorf(`unsupported inline relation "%s"`, model.KindMergeRequestDiff)
	}

	diff, err := s.factory.build(ctx, diffDesc, model.NewRecord(model.KindMergeRequestDiff, 0, attributes), run)
	if err != nil {
		return err
	}
	if diff != nil {
		object.AddChild(diff)
	}
	return nil
}

type mergeRequestDiffStrategy struct {
	factory *Factory
}

func (s *mergeRequestDiffStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	if err := s.factory.buildChildren(ctx, object, record, desc, model.KindDiffCommit, run); err != nil {
		return nil, err
	}
	if err := s.factory.buildChildren(ctx, object, record, desc, model.KindDiffFile, run); err != nil {
		return nil, err
	}
	return object, nil
}

// diffCommitStrategy resolves the commit author and committer identities
// through the object builder, equal name+email pairs dedup to one row.
type diffCommitStrategy struct {
	factory *Factory
}

func (s *diffCommitStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	for _, key := range []string{"commit_author", "committer"} {
		value, found := record.Attributes.Get(key)
		object.Delete(key)
		if !found || value == nil {
			continue
		}
		identity, ok := value.(*orderedmap.OrderedMap)
		if !ok {
			return nil, errors.Errorf(`"%s" of a "%s" record is not an object`, key, record.RelationKey)
		}

		author, err := s.factory.builder.FindOrBuild(ctx, run, model.KindCommitAuthor, identity)
		if err != nil {
			return nil, err
		}
		object.AddChild(author)
	}
	return object, nil
}

// diffFileStrategy reads the diff content from the side-channel attribute.
type diffFileStrategy struct{}

func (s *diffFileStrategy) finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error) {
	if diff := object.GetString("diff_export"); diff != "" {
		// Some storage backends reject null bytes
		object.Set("diff", strings.ReplaceAll(diff, "\x00", ""))
	}
	object.Delete("diff_export")
	return object, nil
}
