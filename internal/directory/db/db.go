// Package db persists the employee directory with GORM. The in-memory store
// is loaded from the repository at start-up and the repository mirrors every
// store change afterwards.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbmodels "github.com/gartstein/directory/internal/directory/db/models"
	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// mirrorTimeout bounds a single mirrored write.
const mirrorTimeout = 5 * time.Second

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver string
	// Path is the sqlite database file, ":memory:" for a throwaway database.
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func NewRepository(cfg *Config) (*Repository, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// Every sqlite connection to ":memory:" is a separate database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&dbmodels.Employee{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

// upsertColumns are overwritten when a row with the same ID exists.
var upsertColumns = []string{
	"first_name", "last_name", "email", "phone", "department", "position",
	"date_of_employment", "date_of_birth", "salary", "updated_at",
}

// SaveEmployee inserts or replaces the row with emp's ID.
func (r *Repository) SaveEmployee(ctx context.Context, emp *models.Employee) error {
	rec := toRecord(emp)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(&rec).Error
}

func (r *Repository) GetEmployee(ctx context.Context, id int64) (*models.Employee, error) {
	var rec dbmodels.Employee
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	emp := fromRecord(&rec)
	return &emp, nil
}

// ListEmployees returns every row ordered by ID.
func (r *Repository) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var recs []dbmodels.Employee
	if err := r.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]models.Employee, len(recs))
	for i := range recs {
		out[i] = fromRecord(&recs[i])
	}
	return out, nil
}

func (r *Repository) DeleteEmployee(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&dbmodels.Employee{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// DeleteAllEmployees removes every row.
func (r *Repository) DeleteAllEmployees(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&dbmodels.Employee{}).Error
}

// ReplaceAll swaps the table contents for employees in one transaction.
func (r *Repository) ReplaceAll(ctx context.Context, employees []models.Employee) error {
	return r.WithTransaction(ctx, func(repo *Repository) error {
		if err := repo.DeleteAllEmployees(ctx); err != nil {
			return err
		}
		for i := range employees {
			if err := repo.SaveEmployee(ctx, &employees[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Bootstrap returns the persisted employees. An empty table is first filled
// with seed, numbered from 1 in order.
func (r *Repository) Bootstrap(ctx context.Context, seed []models.Employee) ([]models.Employee, error) {
	existing, err := r.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	if len(existing) > 0 || len(seed) == 0 {
		return existing, nil
	}

	seeded := make([]models.Employee, len(seed))
	for i, emp := range seed {
		emp = emp.Clone()
		emp.ID = int64(i + 1)
		emp.DateOfEmployment = models.NormalizeDate(emp.DateOfEmployment)
		emp.DateOfBirth = models.NormalizeDatePtr(emp.DateOfBirth)
		seeded[i] = emp
	}
	if err := r.ReplaceAll(ctx, seeded); err != nil {
		return nil, fmt.Errorf("failed to seed employees: %w", err)
	}
	return seeded, nil
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// Apply writes a store change to the database.
func (r *Repository) Apply(ctx context.Context, c models.Change) error {
	switch c.Type {
	case models.EmployeeAdded, models.EmployeeEdited:
		return r.SaveEmployee(ctx, c.Employee)
	case models.EmployeeRemoved:
		err := r.DeleteEmployee(ctx, c.Employee.ID)
		if errors.Is(err, e.ErrNotFound) {
			return nil
		}
		return err
	case models.EmployeesCleared:
		return r.DeleteAllEmployees(ctx)
	default:
		return fmt.Errorf("unknown change type %q", c.Type)
	}
}

// Mirror returns a store subscriber that applies every change to the
// database. Failures are logged; the in-memory store stays authoritative.
func (r *Repository) Mirror(logger *zap.Logger) func(models.Change) {
	logger = logger.Named("db_mirror")
	return func(c models.Change) {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()

		if err := r.Apply(ctx, c); err != nil {
			fields := []zap.Field{zap.Error(err), zap.String("change", string(c.Type))}
			if c.Employee != nil {
				fields = append(fields, zap.Int64("employee_id", c.Employee.ID))
			}
			logger.Error("Failed to mirror change", fields...)
		}
	}
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func toRecord(emp *models.Employee) dbmodels.Employee {
	c := emp.Clone()
	return dbmodels.Employee{
		ID:               c.ID,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Email:            c.Email,
		Phone:            c.Phone,
		Department:       c.Department,
		Position:         c.Position,
		DateOfEmployment: c.DateOfEmployment.UTC(),
		DateOfBirth:      c.DateOfBirth,
		Salary:           c.Salary,
	}
}

func fromRecord(rec *dbmodels.Employee) models.Employee {
	emp := models.Employee{
		ID:               rec.ID,
		FirstName:        rec.FirstName,
		LastName:         rec.LastName,
		Email:            rec.Email,
		Phone:            rec.Phone,
		Department:       rec.Department,
		Position:         rec.Position,
		DateOfEmployment: rec.DateOfEmployment.UTC(),
		DateOfBirth:      models.NormalizeDatePtr(rec.DateOfBirth),
		Salary:           rec.Salary,
	}
	return emp.Clone()
}
