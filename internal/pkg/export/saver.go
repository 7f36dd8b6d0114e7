// Package export serializes the object graph of one project into an
// export tree: a root JSON document plus one ndjson stream per relation,
// written record by record without materializing whole collections.
package export

import (
	"bufio"
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/forgeport/forgeport/internal/pkg/encoding/json"
	"github.com/forgeport/forgeport/internal/pkg/filesystem"
	"github.com/forgeport/forgeport/internal/pkg/log"
	"github.com/forgeport/forgeport/internal/pkg/model"
	"github.com/forgeport/forgeport/internal/pkg/utils/errors"
)

// RelationSource streams the exported records,
// it is implemented by the persistence layer.
type RelationSource interface {
	RootAttributes(ctx context.Context) (*orderedmap.OrderedMap, error)
	Records(ctx context.Context, relationKey string) (RecordIterator, error)
}

// RecordIterator yields records one by one: ok is false at the end of
// the stream. The iterator must be closed.
type RecordIterator interface {
	Next() (attributes *orderedmap.OrderedMap, ok bool, err error)
	Close() error
}

// maxAttempts bounds the retry of one relation stream on transient errors.
const maxAttempts = 3

// Saver writes the export tree of one project.
type Saver struct {
	logger    log.Logger
	fs        filesystem.Fs
	schema    *model.Schema
	source    RelationSource
	path      string
	relations []string
	overrides map[string]any
	errors    errors.MultiError
}

type Option func(*Saver)

// WithRelations limits the export to the given relations,
// by default all schema relations are exported.
func WithRelations(keys ...string) Option {
	return func(s *Saver) {
		s.relations = keys
	}
}

// WithOverrides applies caller-supplied root attribute overrides,
// for example a description override.
func WithOverrides(overrides map[string]any) Option {
	return func(s *Saver) {
		s.overrides = overrides
	}
}

func NewSaver(logger log.Logger, fs filesystem.Fs, schema *model.Schema, source RelationSource, importablePath string, opts ...Option) *Saver {
	s := &Saver{
		logger: logger,
		fs:     fs,
		schema: schema,
		source: source,
		path:   importablePath,
		errors: errors.NewMultiError(),
	}
	for _, relation := range schema.Relations {
		s.relations = append(s.relations, relation.Key)
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Save writes the root document and all configured relation streams.
// It returns true only if everything was written, collected errors are
// available through the Err method.
func (s *Saver) Save(ctx context.Context) bool {
	if err := s.saveRoot(ctx); err != nil {
		s.errors.Append(err)
		return false
	}

	for _, key := range s.relations {
		desc, found := s.schema.Relation(key)
		if !found {
			// Reject unknown relations immediately, no file is written
			s.errors.Append(errors.Errorf(`unsupported relation "%s"`, key))
			continue
		}
		if err := s.saveRelationWithRetry(ctx, desc); err != nil {
			s.errors.AppendWithPrefixf(err, `cannot save relation "%s"`, key)
		}
	}

	return s.errors.Len() == 0
}

// Err returns all collected errors, nil on success.
func (s *Saver) Err() error {
	return s.errors.ErrorOrNil()
}

func (s *Saver) saveRoot(ctx context.Context) error {
	attributes, err := s.source.RootAttributes(ctx)
	if err != nil {
		return errors.PrefixError(err, "cannot load root attributes")
	}

	presented := PresentRoot(s.schema.Root, attributes, s.overrides)
	file := filesystem.NewJSONFile(model.RootDocumentPath(s.path), presented).SetDescription("root document")
	if err := s.fs.WriteJSONFile(file); err != nil {
		return err
	}

	return s.fs.Mkdir(model.RelationsDirPath(s.path))
}

// saveRelationWithRetry retries the relation stream on transient errors,
// a bounded number of synchronous attempts. A failed attempt never leaves
// a partial file behind.
func (s *Saver) saveRelationWithRetry(ctx context.Context, desc *model.RelationDescriptor) error {
	path := model.RelationStreamPath(s.path, desc.Key)

	attempt := 0
	operation := func() error {
		attempt++
		err := s.saveRelation(ctx, desc, path)
		if err == nil {
			return nil
		}

		// Remove the partial file, it is in an inconsistent state
		_ = s.fs.Remove(path)

		if !errors.IsTransient(err) {
			return backoff.Permanent(err)
		}

		s.logger.Infof(`retrying relation "%s" after attempt %d: %s`, desc.Key, attempt, err)
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(newExportBackoff(), ctx))
}

func newExportBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 1 * time.Second
	b.MaxElapsedTime = 0 // attempts are bounded by the count, not by time
	b.Reset()
	return backoff.WithMaxRetries(b, maxAttempts-1)
}

func (s *Saver) saveRelation(ctx context.Context, desc *model.RelationDescriptor, path string) error {
	records, err := s.source.Records(ctx, desc.Key)
	if err != nil {
		return err
	}
	defer records.Close()

	file, err := s.fs.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// One record per line, the collection is never held in memory
	writer := bufio.NewWriter(file)
	for {
		attributes, ok, err := records.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		line, err := json.Encode(PresentRecord(desc, attributes), false)
		if err != nil {
			return err
		}
		if _, err := writer.Write(line); err != nil {
			return err
		}
		if err := writer.WriteByte('\n'); err != nil {
			return err
		}
	}

	return writer.Flush()
}
