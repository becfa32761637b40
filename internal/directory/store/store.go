// Package store implements the in-memory, observable employee collection.
// The Store exclusively owns the records: readers get copies and every
// mutation is published synchronously to subscribers.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/gartstein/directory/internal/directory/models"
	"go.uber.org/zap"
)

// Subscriber receives a Change after every mutation.
type Subscriber func(models.Change)

type subscription struct {
	id int
	fn Subscriber
}

// Store holds the canonical employee list.
type Store struct {
	mu        sync.RWMutex
	employees []models.Employee

	// notifyMu serializes publishing so subscribers see changes in the
	// order the mutations happened. Mutators take it before mu.
	notifyMu    sync.Mutex
	subMu       sync.Mutex
	subscribers []subscription
	nextSubID   int

	logger *zap.Logger
}

// NewStore constructs a Store holding seed. Seed records keep their IDs and
// are not published to subscribers.
func NewStore(logger *zap.Logger, seed ...models.Employee) *Store {
	employees := make([]models.Employee, 0, len(seed))
	for _, e := range seed {
		e = e.Clone()
		e.DateOfBirth = models.NormalizeDatePtr(e.DateOfBirth)
		employees = append(employees, e)
	}
	return &Store{
		employees: employees,
		logger:    logger.Named("store"),
	}
}

// Subscribe registers fn and returns a func that unregisters it. Subscribers
// are called in registration order.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// Add assigns the next ID (max existing + 1), normalizes the birth date and
// appends the record. It returns the stored copy.
func (s *Store) Add(e models.Employee) models.Employee {
	s.lock()
	e = e.Clone()
	e.ID = s.nextID()
	e.DateOfBirth = models.NormalizeDatePtr(e.DateOfBirth)
	s.employees = append(s.employees, e)
	s.logger.Debug("employee added", zap.Int64("employee_id", e.ID))
	s.publishLocked(models.Change{Type: models.EmployeeAdded, Employee: clonePtr(e)})
	return e.Clone()
}

// Edit shallow-merges u onto the record with the given id. It reports false
// and changes nothing when the id is unknown. No validation is done here.
func (s *Store) Edit(id int64, u *models.EmployeeUpdate) (models.Employee, bool) {
	s.lock()
	i := s.indexOf(id)
	if i < 0 {
		s.unlock()
		return models.Employee{}, false
	}
	merged := s.employees[i].Merge(u)
	merged.DateOfBirth = models.NormalizeDatePtr(merged.DateOfBirth)
	s.employees[i] = merged
	s.logger.Debug("employee edited", zap.Int64("employee_id", id))
	s.publishLocked(models.Change{Type: models.EmployeeEdited, Employee: clonePtr(merged)})
	return merged.Clone(), true
}

// Remove deletes the record with the given id. It reports false when the id
// is unknown.
func (s *Store) Remove(id int64) bool {
	s.lock()
	i := s.indexOf(id)
	if i < 0 {
		s.unlock()
		return false
	}
	removed := s.employees[i]
	s.employees = append(s.employees[:i:i], s.employees[i+1:]...)
	s.logger.Debug("employee removed", zap.Int64("employee_id", id))
	s.publishLocked(models.Change{Type: models.EmployeeRemoved, Employee: clonePtr(removed)})
	return true
}

// RemoveAll resets the collection to empty.
func (s *Store) RemoveAll() {
	s.lock()
	n := len(s.employees)
	s.employees = nil
	s.logger.Debug("employees cleared", zap.Int("count", n))
	s.publishLocked(models.Change{Type: models.EmployeesCleared})
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id int64) (models.Employee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Employee{}, false
	}
	return s.employees[i].Clone(), true
}

// All returns a snapshot copy of the collection in insertion order.
func (s *Store) All() []models.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.employees)
}

// NameExists reports whether a record other than excludeID has the same
// first and last name, ignoring case. excludeID 0 excludes nothing.
func (s *Store) NameExists(first, last string, excludeID int64) bool {
	return s.any(excludeID, func(e *models.Employee) bool {
		return strings.EqualFold(e.FirstName, first) && strings.EqualFold(e.LastName, last)
	})
}

// NameBirthdayExists is NameExists restricted to records born on the same
// calendar date. A nil birth date only matches records without one.
func (s *Store) NameBirthdayExists(first, last string, dateOfBirth *time.Time, excludeID int64) bool {
	return s.any(excludeID, func(e *models.Employee) bool {
		return strings.EqualFold(e.FirstName, first) &&
			strings.EqualFold(e.LastName, last) &&
			models.SameDate(e.DateOfBirth, dateOfBirth)
	})
}

// EmailExists reports whether a record other than excludeID has the same
// email, ignoring case.
func (s *Store) EmailExists(email string, excludeID int64) bool {
	return s.any(excludeID, func(e *models.Employee) bool {
		return strings.EqualFold(e.Email, email)
	})
}

func (s *Store) any(excludeID int64, match func(*models.Employee) bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.employees {
		e := &s.employees[i]
		if excludeID != 0 && e.ID == excludeID {
			continue
		}
		if match(e) {
			return true
		}
	}
	return false
}

// lock takes notifyMu then mu for a mutation.
func (s *Store) lock() {
	s.notifyMu.Lock()
	s.mu.Lock()
}

func (s *Store) unlock() {
	s.mu.Unlock()
	s.notifyMu.Unlock()
}

// publishLocked hands c to the subscribers. It must be called after lock;
// it releases mu before invoking them so subscribers may read the store, and
// releases notifyMu once they returned.
func (s *Store) publishLocked(c models.Change) {
	c.Snapshot = s.snapshot()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.subMu.Lock()
	subs := make([]subscription, len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(c)
	}
}

func (s *Store) nextID() int64 {
	var highest int64
	for i := range s.employees {
		if s.employees[i].ID > highest {
			highest = s.employees[i].ID
		}
	}
	return highest + 1
}

func (s *Store) indexOf(id int64) int {
	for i := range s.employees {
		if s.employees[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []models.Employee {
	out := make([]models.Employee, len(s.employees))
	for i := range s.employees {
		out[i] = s.employees[i].Clone()
	}
	return out
}

func clonePtr(e models.Employee) *models.Employee {
	c := e.Clone()
	return &c
}
