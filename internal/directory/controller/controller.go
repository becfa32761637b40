// Package controller implements the business logic (service layer) of the
// employee directory: the write gate that combines field validation with the
// store's uniqueness predicates, and the search view over the collection.
package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/search"
	"go.uber.org/zap"
)

// EmployeeStore is the collection the service reads and mutates.
type EmployeeStore interface {
	Add(emp models.Employee) models.Employee
	Edit(id int64, update *models.EmployeeUpdate) (models.Employee, bool)
	Remove(id int64) bool
	RemoveAll()
	Get(id int64) (models.Employee, bool)
	All() []models.Employee
	Len() int
	NameExists(first, last string, excludeID int64) bool
	NameBirthdayExists(first, last string, dateOfBirth *time.Time, excludeID int64) bool
	EmailExists(email string, excludeID int64) bool
}

// FieldValidator evaluates per-field rules and returns message keys keyed
// by field name.
type FieldValidator interface {
	Validate(emp models.Employee) map[string]string
	Catalog() models.Catalog
}

// ListQuery selects a page of the collection.
type ListQuery struct {
	Query    string
	Page     int
	PageSize int
	Sort     search.SortField
	Order    search.Order
}

// Option configures an EmployeeService.
type Option func(*EmployeeService)

// WithCommitDelay makes every write wait d before committing. The UI uses it
// to show a loading state.
func WithCommitDelay(d time.Duration) Option {
	return func(s *EmployeeService) { s.commitDelay = d }
}

// WithPageSize sets the default page size of ListEmployees.
func WithPageSize(n int) Option {
	return func(s *EmployeeService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// EmployeeService provides the directory operations on top of an
// EmployeeStore.
type EmployeeService struct {
	store       EmployeeStore
	validator   FieldValidator
	logger      *zap.Logger
	commitDelay time.Duration
	pageSize    int

	// writeMu makes gate-then-write atomic across concurrent requests.
	writeMu sync.Mutex
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(store EmployeeStore, validator FieldValidator, logger *zap.Logger, opts ...Option) *EmployeeService {
	s := &EmployeeService{
		store:     store,
		validator: validator,
		logger:    logger.Named("employee_service"),
		pageSize:  search.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the configured departments and positions.
func (s *EmployeeService) Catalog() models.Catalog {
	return s.validator.Catalog()
}

// CreateEmployee validates emp, checks it against the uniqueness predicates
// and adds it to the store.
func (s *EmployeeService) CreateEmployee(ctx context.Context, emp *models.Employee) (*models.Employee, error) {
	if emp == nil {
		return nil, fmt.Errorf("%w: employee data required", e.ErrInvalidInput)
	}
	candidate := trimmed(*emp)

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.gate(candidate, 0); err != nil {
		return nil, err
	}
	created := s.store.Add(candidate)
	s.logger.Info("employee created", zap.Int64("employee_id", created.ID))
	return &created, nil
}

// UpdateEmployee merges update onto the employee with the given id after the
// merged record passed the write gate. The record's own id is excluded from
// the uniqueness checks.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id int64, update *models.EmployeeUpdate) (*models.Employee, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid employee ID", e.ErrInvalidInput)
	}
	if update == nil {
		return nil, fmt.Errorf("%w: update data required", e.ErrInvalidInput)
	}
	update = trimmedUpdate(update)

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, ok := s.store.Get(id)
	if !ok {
		return nil, e.ErrNotFound
	}
	if err := s.gate(existing.Merge(update), id); err != nil {
		return nil, err
	}

	updated, ok := s.store.Edit(id, update)
	if !ok {
		return nil, e.ErrNotFound
	}
	s.logger.Info("employee updated", zap.Int64("employee_id", id))
	return &updated, nil
}

// DeleteEmployee removes the employee with the given id.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid employee ID", e.ErrInvalidInput)
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.store.Remove(id) {
		return e.ErrNotFound
	}
	s.logger.Info("employee deleted", zap.Int64("employee_id", id))
	return nil
}

// DeleteAllEmployees empties the directory and returns how many records
// were removed.
func (s *EmployeeService) DeleteAllEmployees(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	n := s.store.Len()
	s.store.RemoveAll()
	s.logger.Warn("all employees deleted", zap.Int("count", n))
	return n, nil
}

// GetEmployee retrieves an employee by id.
func (s *EmployeeService) GetEmployee(ctx context.Context, id int64) (*models.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emp, ok := s.store.Get(id)
	if !ok {
		return nil, e.ErrNotFound
	}
	return &emp, nil
}

// ListEmployees returns one page of the employees matching q.
func (s *EmployeeService) ListEmployees(ctx context.Context, q ListQuery) (search.Page, error) {
	if err := ctx.Err(); err != nil {
		return search.Page{}, err
	}
	size := q.PageSize
	if size <= 0 {
		size = s.pageSize
	}

	view := search.NewView(size)
	view.SetQuery(q.Query)
	view.SetPage(q.Page)
	view.SetSort(q.Sort, q.Order)
	return view.Apply(s.store.All()), nil
}

// CheckEmployee runs the write gate on candidate without writing anything.
// excludeID is the id of the record being edited, or 0 for a new one.
func (s *EmployeeService) CheckEmployee(ctx context.Context, candidate *models.Employee, excludeID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if candidate == nil {
		return fmt.Errorf("%w: employee data required", e.ErrInvalidInput)
	}
	return s.gate(trimmed(*candidate), excludeID)
}

// CheckUniqueness returns the uniqueness message keys candidate violates.
// All three predicates always run, so a record can report every key at once.
func (s *EmployeeService) CheckUniqueness(candidate models.Employee, excludeID int64) []string {
	var conflicts []string
	if s.store.NameExists(candidate.FirstName, candidate.LastName, excludeID) {
		conflicts = append(conflicts, e.KeyNameExists)
	}
	if s.store.NameBirthdayExists(candidate.FirstName, candidate.LastName, candidate.DateOfBirth, excludeID) {
		conflicts = append(conflicts, e.KeyNameBirthdayExists)
	}
	if s.store.EmailExists(candidate.Email, excludeID) {
		conflicts = append(conflicts, e.KeyEmailExists)
	}
	return conflicts
}

// gate accumulates field and uniqueness violations into one
// *errors.ValidationError.
func (s *EmployeeService) gate(candidate models.Employee, excludeID int64) error {
	verr := &e.ValidationError{
		Fields:    s.validator.Validate(candidate),
		Conflicts: s.CheckUniqueness(candidate, excludeID),
	}
	if verr.Empty() {
		return nil
	}
	s.logger.Debug("write rejected",
		zap.Int64("exclude_id", excludeID),
		zap.Strings("keys", verr.Keys()),
	)
	return verr
}

func (s *EmployeeService) wait(ctx context.Context) error {
	if s.commitDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.commitDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func trimmed(emp models.Employee) models.Employee {
	emp = emp.Clone()
	emp.FirstName = strings.TrimSpace(emp.FirstName)
	emp.LastName = strings.TrimSpace(emp.LastName)
	emp.Email = strings.TrimSpace(emp.Email)
	emp.Phone = strings.TrimSpace(emp.Phone)
	return emp
}

func trimmedUpdate(u *models.EmployeeUpdate) *models.EmployeeUpdate {
	out := *u
	for _, f := range []**string{&out.FirstName, &out.LastName, &out.Email, &out.Phone} {
		if *f != nil {
			v := strings.TrimSpace(**f)
			*f = &v
		}
	}
	return &out
}
