// Package restore rebuilds a project from an export tree in the
// destination tenant. Individual malformed records never abort the run,
// every skipped record is recorded as an import failure. Only a missing
// or unreadable root document is fatal.
package restore

import (
	"bufio"
	"context"
	"slices"

	"github.com/gofrs/uuid/v5"
	"github.com/jonboulle/clockwork"
	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/forgeport/forgeport/internal/pkg/encoding/json"
	"github.com/forgeport/forgeport/internal/pkg/factory"
	"github.com/forgeport/forgeport/internal/pkg/filesystem"
	"github.com/forgeport/forgeport/internal/pkg/log"
	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/store"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

// maxRecordSize bounds one ndjson line, merge request diffs can be large.
const maxRecordSize = 100 * 1024 * 1024

// Destination describes the target of the import run.
type Destination struct {
	ProjectPath        string           `json:"projectPath" validate:"required"`
	NamespaceID        int64            `json:"namespaceId" validate:"required"`
	ImporterUserID     int64            `json:"importerUserId" validate:"required"`
	GroupVisibility    model.Visibility `json:"groupVisibility"`
	InternalRestricted bool             `json:"internalRestricted"`
	// RootGroup is nil if the root ancestor of the destination is a user namespace.
	RootGroup *model.RootGroupInfo `json:"-"`
}

// Restorer rebuilds one project from an export tree.
type Restorer struct {
	logger        log.Logger
	fs            filesystem.Fs
	schema        *model.Schema
	factory       *factory.Factory
	store         store.Store
	failures      store.FailureSink
	members       model.MemberMap
	path          string
	dst           Destination
	clock         clockwork.Clock
	steps         []Step
	correlationID string
	failed        int
}

type Option func(*Restorer)

// WithSteps appends post-processing steps, executed after all relations.
func WithSteps(steps ...Step) Option {
	return func(r *Restorer) {
		r.steps = append(r.steps, steps...)
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(r *Restorer) {
		r.clock = clock
	}
}

func NewRestorer(
	logger log.Logger,
	fs filesystem.Fs,
	schema *model.Schema,
	objectFactory *factory.Factory,
	objectStore store.Store,
	failures store.FailureSink,
	members model.MemberMap,
	importablePath string,
	dst Destination,
	opts ...Option,
) *Restorer {
	r := &Restorer{
		logger:   logger,
		fs:       fs,
		schema:   schema,
		factory:  objectFactory,
		store:    objectStore,
		failures: failures,
		members:  members,
		path:     importablePath,
		dst:      dst,
		clock:    clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// FailedCount returns the number of recorded failures of the last run.
func (r *Restorer) FailedCount() int {
	return r.failed
}

// CorrelationID returns the correlation id of the last run,
// it is stamped on every recorded failure.
func (r *Restorer) CorrelationID() string {
	return r.correlationID
}

// Restore rebuilds the project from the tree. It returns true once the
// root document was persisted, recorded record failures do not change
// the result.
func (r *Restorer) Restore(ctx context.Context) bool {
	r.correlationID = uuid.Must(uuid.NewV4()).String()
	r.failed = 0

	run := &model.BuildContext{
		ImporterUserID: r.dst.ImporterUserID,
		NamespaceID:    r.dst.NamespaceID,
		Users:          model.UserMap{},
		RootGroup:      r.dst.RootGroup,
		Cache:          model.NewDedupCache(),
		Clock:          r.clock,
	}

	project, err := r.restoreRoot(ctx, run)
	if err != nil {
		r.logger.Errorf(`cannot restore project "%s": %s`, r.dst.ProjectPath, err)
		r.recordRestoreFailure(0, err)
		return false
	}
	run.ProjectID = project.GetInt64("id")

	// The members stream maps source user ids before any other relation
	// references them.
	r.loadUserMap(run)

	for _, desc := range r.schema.Relations {
		r.restoreRelation(ctx, desc, run)
	}

	for _, step := range r.steps {
		r.runStep(ctx, step, run)
	}

	r.logger.Infof(`restored project "%s", %d failed records`, r.dst.ProjectPath, r.failed)
	return true
}

// restoreRoot reads, sanitizes and persists the root document.
// Any error here is fatal, there is nothing to attach relations to.
func (r *Restorer) restoreRoot(ctx context.Context, run *model.BuildContext) (*model.Object, error) {
	rootPath := model.RootDocumentPath(r.path)
	if !r.fs.IsFile(rootPath) {
		return nil, errors.Errorf(`missing root document "%s"`, rootPath)
	}

	file, err := r.fs.ReadJSONFile(rootPath, "root document")
	if err != nil {
		return nil, err
	}

	project, err := r.factory.BuildRoot(file.Content, run)
	if err != nil {
		return nil, err
	}

	exported := model.Visibility(project.GetInt64("visibility_level"))
	project.Set("visibility_level", int64(model.ResolveVisibility(exported, r.dst.GroupVisibility, r.dst.InternalRestricted)))
	project.Set("path", r.dst.ProjectPath)
	project.Set("namespace_id", r.dst.NamespaceID)
	project.Set("creator_id", r.dst.ImporterUserID)

	if err := r.store.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// loadUserMap derives the source to destination user id mapping from the
// exported members stream. Unresolvable members are skipped here, the
// member records themselves are imported later like any other relation.
func (r *Restorer) loadUserMap(run *model.BuildContext) {
	err := r.forEachRecord(model.KindMember, run, func(record *model.Record) error {
		value, found := record.Attributes.Get("user")
		if !found {
			return nil
		}
		user, ok := value.(*orderedmap.OrderedMap)
		if !ok {
			return nil
		}

		sourceID := objectInt64(user, "id")
		if sourceID == 0 {
			return nil
		}
		if destinationID, found := r.members.UserID(objectString(user, "username"), objectString(user, "email")); found {
			run.Users[sourceID] = destinationID
		}
		return nil
	})
	if err != nil {
		r.logger.Warnf(`cannot load user map: %s`, err)
	}
}

func (r *Restorer) restoreRelation(ctx context.Context, desc *model.RelationDescriptor, run *model.BuildContext) {
	imported := 0
	err := r.forEachRecord(desc.Key, run, func(record *model.Record) error {
		object, err := r.factory.Build(ctx, record, run)
		if err != nil {
			r.recordFailure(record, err, run)
			return nil
		}
		if object == nil {
			// Discarded by a sanitization rule, not a failure
			return nil
		}
		associateProject(object, run.ProjectID)

		if err := r.store.Create(ctx, object); err != nil {
			r.recordFailure(record, err, run)
			return nil
		}
		imported++
		return nil
	})
	if err != nil {
		// The whole stream is unreadable, one failure for the relation
		r.recordFailure(model.NewRecord(desc.Key, 0, nil), err, run)
		return
	}
	r.logger.Debugf(`relation "%s": %d records imported`, desc.Key, imported)
}

// forEachRecord streams the relation ndjson file record by record.
// A missing stream is not an error, exports may omit empty relations.
// A malformed line is recorded as a failure, the stream continues.
func (r *Restorer) forEachRecord(relationKey string, run *model.BuildContext, fn func(record *model.Record) error) error {
	path := model.RelationStreamPath(r.path, relationKey)
	if !r.fs.IsFile(path) {
		return nil
	}

	file, err := r.fs.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), maxRecordSize)

	index := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		attributes := orderedmap.New()
		if err := json.Decode(line, attributes); err != nil {
			r.recordFailure(model.NewRecord(relationKey, index, nil), err, run)
			index++
			continue
		}

		if err := fn(model.NewRecord(relationKey, index, attributes)); err != nil {
			return err
		}
		index++
	}
	return scanner.Err()
}

func (r *Restorer) recordFailure(record *model.Record, err error, run *model.BuildContext) {
	r.failed++
	projectID := int64(0)
	if run != nil {
		projectID = run.ProjectID
	}
	r.logger.Warnf(`cannot import record %d of relation "%s": %s`, record.RelationIndex, record.RelationKey, err)
	r.failures.Append(model.NewRecordFailure(projectID, record, err, r.correlationID, externalIdentifiers(record), r.clock.Now().UTC()))
}

func (r *Restorer) recordRestoreFailure(projectID int64, err error) {
	r.failed++
	r.failures.Append(model.NewRestoreFailure(projectID, err, r.correlationID, r.clock.Now().UTC()))
}

// associateProject binds the object tree to the destination project.
// The factory strips the exported project_id as a hazardous key, the
// destination value is substituted here before the object is persisted.
// Already persisted shared objects keep their own association.
func associateProject(object *model.Object, projectID int64) {
	if !object.Has("id") && slices.Contains(model.HazardousForeignKeys[object.Kind], "project_id") {
		object.Set("project_id", projectID)
	}
	for _, child := range object.Children {
		associateProject(child, projectID)
	}
}

// externalIdentifiers extracts the natural identifiers of the failed
// record, so an operator can locate it in the source tenant.
func externalIdentifiers(record *model.Record) map[string]any {
	out := map[string]any{}
	if record.Attributes == nil {
		return out
	}
	for _, key := range []string{"iid", "title", "ref", "key"} {
		if value, found := record.Attributes.Get(key); found && value != nil {
			out[key] = value
		}
	}
	return out
}

func objectString(m *orderedmap.OrderedMap, key string) string {
	if value, found := m.Get(key); found {
		if s, ok := value.(string); ok {
			return s
		}
	}
	return ""
}

func objectInt64(m *orderedmap.OrderedMap, key string) int64 {
	if value, found := m.Get(key); found {
		switch v := value.(type) {
		case float64:
			return int64(v)
		case int64:
			return v
		case int:
			return int64(v)
		}
	}
	return 0
}
