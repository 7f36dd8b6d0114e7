// Package builder finds or creates shared entities (labels, milestones,
// commit authors, merge requests) with a request-scoped dedup cache.
// Within one import run, equal identities always resolve to the same object.
package builder

import (
	"context"
	"fmt"

	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/store"
)

type Builder struct {
	store store.Store
}

func New(s store.Store) *Builder {
	return &Builder{store: s}
}

// FindOrBuild resolves the identifying attributes to an existing object,
// or builds a new, not yet persisted one. The result is memoized in the
// request-scoped cache of the build context, a nil cache disables
// memoization and every call performs a fresh lookup.
func (b *Builder) FindOrBuild(ctx context.Context, run *model.BuildContext, kind string, attributes *orderedmap.OrderedMap) (*model.Object, error) {
	scope := fmt.Sprintf("project:%d", run.ProjectID)
	cacheKey := model.DedupKey(kind, attributes, scope)
	if object, found := run.Cache.Get(cacheKey); found {
		return object, nil
	}

	object, err := b.findObject(ctx, run, kind, attributes)
	if err != nil {
		return nil, err
	}

	run.Cache.Set(cacheKey, object)
	return object, nil
}

func (b *Builder) findObject(ctx context.Context, run *model.BuildContext, kind string, attributes *orderedmap.OrderedMap) (*model.Object, error) {
	switch kind {
	case model.KindLabel, model.KindMilestone:
		return b.findHierarchical(ctx, run, kind, attributes)
	case model.KindMergeRequest:
		return b.findMergeRequest(ctx, run, attributes)
	case model.KindCommitAuthor:
		return b.findCommitAuthor(ctx, run, attributes)
	default:
		return b.findExact(ctx, run, kind, attributes)
	}
}

// findHierarchical resolves shared entities identified by a title:
// first in the immediate parent project, then in the root ancestor group,
// otherwise a new instance scoped to the project is built.
func (b *Builder) findHierarchical(ctx context.Context, run *model.BuildContext, kind string, attributes *orderedmap.OrderedMap) (*model.Object, error) {
	title := stringAttr(attributes, "title")

	object, err := b.store.Find(ctx, kind, map[string]any{"title": title, "project_id": run.ProjectID})
	if err != nil {
		return nil, err
	}
	if object != nil {
		return object, nil
	}

	if run.RootGroup != nil {
		object, err = b.store.Find(ctx, kind, map[string]any{"title": title, "group_id": run.RootGroup.ID})
		if err != nil {
			return nil, err
		}
		if object != nil {
			return object, nil
		}
	}

	return b.buildNew(run, kind, attributes), nil
}

// findMergeRequest resolves a merge request by its composite natural key.
func (b *Builder) findMergeRequest(ctx context.Context, run *model.BuildContext, attributes *orderedmap.OrderedMap) (*model.Object, error) {
	match := map[string]any{
		"project_id":    run.ProjectID,
		"source_branch": stringAttr(attributes, "source_branch"),
		"target_branch": stringAttr(attributes, "target_branch"),
		"iid":           stringAttr(attributes, "iid"),
		"author_id":     stringAttr(attributes, "author_id"),
	}

	object, err := b.store.Find(ctx, model.KindMergeRequest, match)
	if err != nil {
		return nil, err
	}
	if object != nil {
		return object, nil
	}

	return b.buildNew(run, model.KindMergeRequest, attributes), nil
}

// findCommitAuthor resolves a commit author identity by name and email,
// the identity rows are instance-wide, not project scoped.
func (b *Builder) findCommitAuthor(ctx context.Context, run *model.BuildContext, attributes *orderedmap.OrderedMap) (*model.Object, error) {
	match := map[string]any{
		"name":  stringAttr(attributes, "name"),
		"email": stringAttr(attributes, "email"),
	}

	object, err := b.store.Find(ctx, model.KindCommitAuthor, match)
	if err != nil {
		return nil, err
	}
	if object != nil {
		return object, nil
	}

	return model.NewObjectFrom(model.KindCommitAuthor, attributes.Clone()), nil
}

func (b *Builder) findExact(ctx context.Context, run *model.BuildContext, kind string, attributes *orderedmap.OrderedMap) (*model.Object, error) {
	match := map[string]any{"project_id": run.ProjectID}
	for _, key := range attributes.Keys() {
		value, _ := attributes.Get(key)
		match[key] = value
	}

	object, err := b.store.Find(ctx, kind, match)
	if err != nil {
		return nil, err
	}
	if object != nil {
		return object, nil
	}

	return b.buildNew(run, kind, attributes), nil
}

func (b *Builder) buildNew(run *model.BuildContext, kind string, attributes *orderedmap.OrderedMap) *model.Object {
	object := model.NewObjectFrom(kind, attributes.Clone())
	object.Set("project_id", run.ProjectID)
	return object
}

func stringAttr(attributes *orderedmap.OrderedMap, key string) string {
	value, _ := attributes.Get(key)
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}
