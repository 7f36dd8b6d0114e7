// Package memory provides an in-memory reference implementation
// of the store interfaces, used in tests and by the CLI.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cast"

	"github.com/forgeport/forgeport/internal/pkg/model"
)

// Store keeps the objects per kind, in insertion order.
type Store struct {
	lock    sync.Mutex
	nextID  int64
	objects map[string][]*model.Object
	// ValidateFn is an optional validation hook, it runs before every
	// create, including children. An error rejects the whole object.
	ValidateFn func(object *model.Object) error
}

func New() *Store {
	return &Store{nextID: 1, objects: make(map[string][]*model.Object)}
}

func (s *Store) Create(ctx context.Context, object *model.Object) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	// Validate the object and its children first, a validation
	// failure must not leave a partially saved object behind.
	if err := s.validate(object); err != nil {
		return err
	}

	s.save(object)
	return nil
}

func (s *Store) Find(ctx context.Context, kind string, match map[string]any) (*model.Object, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, object := range s.objects[kind] {
		if matches(object, match) {
			return object, nil
		}
	}
	return nil, nil
}

// All returns the saved objects of the kind, in insertion order.
func (s *Store) All(kind string) []*model.Object {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]*model.Object, len(s.objects[kind]))
	copy(out, s.objects[kind])
	return out
}

// Count returns the number of saved objects of the kind.
func (s *Store) Count(kind string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.objects[kind])
}

func (s *Store) validate(object *model.Object) error {
	if s.ValidateFn != nil {
		if err := s.ValidateFn(object); err != nil {
			return err
		}
	}
	for _, child := range object.Children {
		if err := s.validate(child); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) save(object *model.Object) {
	// Shared objects may be referenced from more than one parent,
	// an already persisted object is saved only once.
	if object.Has("id") {
		return
	}
	object.Set("id", s.nextID)
	s.nextID++
	s.objects[object.Kind] = append(s.objects[object.Kind], object)
	for _, child := range object.Children {
		s.save(child)
	}
}

func matches(object *model.Object, match map[string]any) bool {
	for key, expected := range match {
		value, found := object.Get(key)
		if expected == nil {
			if found && value != nil {
				return false
			}
			continue
		}
		if !found {
			return false
		}
		// Compare as strings, JSON numbers arrive as float64
		if !strings.EqualFold(cast.ToString(value), cast.ToString(expected)) {
			return false
		}
	}
	return true
}

// FailureSink is an append-only, concurrency-safe failure list.
type FailureSink struct {
	lock     sync.Mutex
	failures []*model.Failure
}

func NewFailureSink() *FailureSink {
	return &FailureSink{}
}

func (s *FailureSink) Append(failure *model.Failure) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failures = append(s.failures, failure)
}

func (s *FailureSink) All() []*model.Failure {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]*model.Failure, len(s.failures))
	copy(out, s.failures)
	return out
}

func (s *FailureSink) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.failures)
}
