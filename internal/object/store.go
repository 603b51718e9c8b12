package object

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Store is the canonical mapping from object identifier to its current
// state. It is a plain data structure with no locking: the coordinator owns
// it exclusively and is its only reader and writer.
type Store struct {
	objects map[uuid.UUID]DefinedObject
}

func NewStore() *Store {
	return &Store{
		objects: make(map[uuid.UUID]DefinedObject),
	}
}

// Insert adds or replaces the object under id.
func (s *Store) Insert(id uuid.UUID, obj DefinedObject) {
	s.objects[id] = obj
}

// MoveIfPresent updates the position of id. Absent ids are a no-op, never
// an error.
func (s *Store) MoveIfPresent(id uuid.UUID, pos Position) {
	obj, exists := s.objects[id]
	if !exists {
		return
	}
	obj.Position = pos
	s.objects[id] = obj
}

// Remove deletes id if present.
func (s *Store) Remove(id uuid.UUID) {
	delete(s.objects, id)
}

// Clear empties the store.
func (s *Store) Clear() {
	s.objects = make(map[uuid.UUID]DefinedObject)
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	return len(s.objects)
}

// Snapshot copies the full contents into an unordered slice that is safe to
// hand outside the coordinator.
func (s *Store) Snapshot() []DefinedObjectWithID {
	return lo.MapToSlice(s.objects, func(id uuid.UUID, obj DefinedObject) DefinedObjectWithID {
		return DefinedObjectWithID{ID: id, Object: obj}
	})
}
