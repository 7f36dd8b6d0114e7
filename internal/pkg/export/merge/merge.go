// Package merge combines partial export trees produced by parallel
// export shards into one complete tree.
//
// Each shard carries the same root document and a disjoint subset of the
// relation streams. The merged root document is the union of the shard
// root documents, later shards win on key conflicts.
package merge

import (
	"context"

	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/forgeport/forgeport/internal/pkg/filesystem"
	"github.com/forgeport/forgeport/internal/pkg/filesystem/aferofs"
	"github.com/forgeport/forgeport/internal/pkg/log"
	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

// ShardFetcher downloads and extracts one shard upload,
// it returns the filesystem with the extracted export tree.
type ShardFetcher interface {
	Fetch(ctx context.Context, shardID string) (filesystem.Fs, error)
}

// Merger combines export shards into the target filesystem.
type Merger struct {
	logger  log.Logger
	fetcher ShardFetcher
	target  filesystem.Fs
	path    string
	errors  []string
}

func NewMerger(logger log.Logger, fetcher ShardFetcher, target filesystem.Fs, importablePath string) *Merger {
	return &Merger{
		logger:  logger,
		fetcher: fetcher,
		target:  target,
		path:    importablePath,
	}
}

// Save merges all shards into the target tree, at least one shard is
// required. It returns true only if every shard was merged, the failed
// shards are recorded and the remaining shards are still processed.
func (m *Merger) Save(ctx context.Context, shardIDs []string) bool {
	// An empty shard list would produce an empty root document
	if len(shardIDs) == 0 {
		m.logger.Warnf("no shards to merge")
		m.errors = append(m.errors, "no shards to merge")
		return false
	}

	root := orderedmap.New()

	for _, shardID := range shardIDs {
		shardFs, err := m.fetcher.Fetch(ctx, shardID)
		if err != nil {
			m.record(shardID, err)
			continue
		}
		if err := m.mergeShard(shardFs, root); err != nil {
			m.record(shardID, err)
		}
	}

	file := filesystem.NewJSONFile(model.RootDocumentPath(m.path), root).SetDescription("merged root document")
	if err := m.target.WriteJSONFile(file); err != nil {
		m.record("root document", err)
	}

	return len(m.errors) == 0
}

// Errors returns the per-shard error messages.
func (m *Merger) Errors() []string {
	return m.errors
}

func (m *Merger) record(shardID string, err error) {
	m.logger.Warnf(`cannot merge shard "%s": %s`, shardID, err)
	m.errors = append(m.errors, errors.PrefixErrorf(err, `shard "%s"`, shardID).Error())
}

func (m *Merger) mergeShard(shardFs filesystem.Fs, root *orderedmap.OrderedMap) error {
	rootPath := model.RootDocumentPath(m.path)
	if !shardFs.IsFile(rootPath) {
		return errors.Errorf(`missing export file "%s"`, rootPath)
	}

	shardRoot, err := shardFs.ReadJSONFile(rootPath, "shard root document")
	if err != nil {
		return err
	}
	for _, key := range shardRoot.Content.Keys() {
		value, _ := shardRoot.Content.Get(key)
		root.Set(key, value)
	}

	return m.copyRelations(shardFs)
}

// copyRelations copies the shard relation streams into the target tree,
// shards own disjoint relations so existing streams are never overwritten.
func (m *Merger) copyRelations(shardFs filesystem.Fs) error {
	relationsDir := model.RelationsDirPath(m.path)
	if !shardFs.IsDir(relationsDir) {
		return nil
	}
	return aferofs.CopyFs2Fs(shardFs, relationsDir, m.target, relationsDir)
}
