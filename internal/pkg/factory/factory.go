// Package factory transforms raw relation records into sanitized,
// persistable objects: it strips dangerous foreign keys, remaps user
// references and applies per-kind normalization rules. It never persists
// anything by itself, the caller validates and saves the result.
package factory

import (
	"context"

	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/forgeport/forgeport/internal/pkg/builder"
	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

// strategy finishes a sanitized object with per-kind rules.
// A nil object means the record is discarded.
type strategy interface {
	finish(ctx context.Context, object *model.Object, record *model.Record, desc *model.RelationDescriptor, run *model.BuildContext) (*model.Object, error)
}

type Factory struct {
	schema       *model.Schema
	builder      *builder.Builder
	strategies   map[string]strategy
	excludedKeys map[string][]string
}

type Option func(*Factory)

// WithExcludedKeys removes caller-supplied attributes before any other rule.
func WithExcludedKeys(kind string, keys ...string) Option {
	return func(f *Factory) {
		f.excludedKeys[kind] = append(f.excludedKeys[kind], keys...)
	}
}

func New(schema *model.Schema, objectBuilder *builder.Builder, opts ...Option) *Factory {
	f := &Factory{
		schema:  schema,
		builder: objectBuilder,
		excludedKeys: map[string][]string{
			// A webhook URL points into the source tenant's network.
			model.KindHook: {"url"},
			// The CI config path of the source instance is not trusted.
			model.KindProject: {"ci_config_path"},
		},
	}

	f.strategies = map[string]strategy{
		model.KindMember:           &memberStrategy{},
		model.KindLabel:            &labelStrategy{factory: f},
		model.KindMilestone:        &milestoneStrategy{factory: f},
		model.KindLabelLink:        &labelLinkStrategy{factory: f},
		model.KindIssue:            &issueStrategy{factory: f},
		model.KindMergeRequest:     &mergeRequestStrategy{factory: f},
		model.KindMergeRequestDiff: &mergeRequestDiffStrategy{factory: f},
		model.KindDiffCommit:       &diffCommitStrategy{factory: f},
		model.KindDiffFile:         &diffFileStrategy{},
		model.KindNote:             &noteStrategy{factory: f},
		model.KindPipeline:         &pipelineStrategy{factory: f},
		model.KindStage:            &stageStrategy{factory: f},
		model.KindJob:              &jobStrategy{},
		model.KindPipelineSchedule: &scheduleStrategy{},
		model.KindProtectedBranch:  &protectedBranchStrategy{factory: f},
	}

	for _, o := range opts {
		o(f)
	}
	return f
}

// Build transforms one raw record into a sanitized object.
// A (nil, nil) result means the record is discarded, for example when its
// primary actor cannot be mapped to a destination user.
func (f *Factory) Build(ctx context.Context, record *model.Record, run *model.BuildContext) (*model.Object, error) {
	desc, found := f.schema.Relation(record.RelationKey)
	if !found {
		return nil, errors.Errorf(`unsupported relation "%s"`, record.RelationKey)
	}
	return f.build(ctx, desc, record, run)
}

// BuildRoot sanitizes the root document into the project object.
func (f *Factory) BuildRoot(attributes *orderedmap.OrderedMap, run *model.BuildContext) (*model.Object, error) {
	object, discard := f.sanitize(f.schema.Root, model.NewRecord(f.schema.Root.Key, 0, attributes), run)
	if discard {
		return nil, errors.New("cannot build root document")
	}
	return object, nil
}

func (f *Factory) build(ctx context.Context, desc *model.RelationDescriptor, record *model.Record, run *model.BuildContext) (*model.Object, error) {
	object, discard := f.sanitize(desc, record, run)
	if discard {
		return nil, nil
	}

	if s, found := f.strategies[record.RelationKey]; found {
		return s.finish(ctx, object, record, desc, run)
	}
	return object, nil
}

// buildChildren builds the inline sub-relation records of the key
// and attaches them to the parent. Discarded records are skipped silently.
func (f *Factory) buildChildren(ctx context.Context, parent *model.Object, record *model.Record, desc *model.RelationDescriptor, key string, run *model.BuildContext) error {
	value, found := record.Attributes.Get(key)
	if !found || value == nil {
		return nil
	}

	items, ok := value.([]any)
	if !ok {
		return errors.Errorf(`relation "%s" in "%s" record is not an array`, key, record.RelationKey)
	}

	childDesc, found := desc.InlineRelation(key)
	if !found {
		return errors.Errorf(`unsupported inline relation "%s" in "%s"`, key, record.RelationKey)
	}

	for index, item := range items {
		attributes, ok := item.(*orderedmap.OrderedMap)
		if !ok {
			return errors.Errorf(`record %d of inline relation "%s" is not an object`, index, key)
		}

		child, err := f.build(ctx, childDesc, model.NewRecord(key, index, attributes), run)
		if err != nil {
			return err
		}
		if child == nil {
			continue
		}
		parent.AddChild(child)
	}
	return nil
}

// buildSharedEntity resolves a nested shared entity (a label of a link,
// a milestone of an issue) through the object builder, so equal identities
// dedup to one instance per run.
func (f *Factory) buildSharedEntity(ctx context.Context, parent *model.Object, record *model.Record, kind, key string, run *model.BuildContext) error {
	value, found := record.Attributes.Get(key)
	if !found || value == nil {
		return nil
	}

	attributes, ok := value.(*orderedmap.OrderedMap)
	if !ok {
		return errors.Errorf(`relation "%s" in "%s" record is not an object`, key, record.RelationKey)
	}

	desc, found := f.schema.Relation(kind)
	if !found {
		return errors.Errorf(`unsupported relation "%s"`, kind)
	}

	// Sanitize the nested attributes the same way as a top-level record
	sanitized, discard := f.sanitize(desc, model.NewRecord(kind, record.RelationIndex, attributes), run)
	if discard {
		return nil
	}

	object, err := f.builder.FindOrBuild(ctx, run, kind, sanitized.Attributes)
	if err != nil {
		return err
	}
	parent.AddChild(object)
	return nil
}
