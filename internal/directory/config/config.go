// Package config loads the YAML configuration of the directory service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gartstein/directory/internal/directory/db"
	"github.com/gartstein/directory/internal/directory/events"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/gartstein/directory/internal/directory/search"
	"github.com/gartstein/directory/internal/directory/validation"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable consulted when no -config flag is given.
const PathEnv = "DIRECTORY_CONFIG"

// SecretEnv overrides auth.jwt_secret.
const SecretEnv = "JWT_SECRET"

const dateLayout = "2006-01-02"

// Config is the whole service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Auth       AuthConfig       `yaml:"auth"`
	Directory  DirectoryConfig  `yaml:"directory"`
	Validation ValidationConfig `yaml:"validation"`
	Startup    StartupConfig    `yaml:"startup"`
}

type ServerConfig struct {
	GRPCPort int `yaml:"grpc_port"`
	HTTPPort int `yaml:"http_port"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type DirectoryConfig struct {
	PageSize       int            `yaml:"page_size"`
	CommitDelay    time.Duration  `yaml:"-"`
	CommitDelayRaw string         `yaml:"commit_delay"`
	Catalog        models.Catalog `yaml:"catalog"`
	// Seed is loaded into an empty database at start-up.
	Seed []SeedEmployee `yaml:"seed"`
}

// SeedEmployee is an employee as written in the configuration file.
type SeedEmployee struct {
	FirstName        string   `yaml:"first_name"`
	LastName         string   `yaml:"last_name"`
	Email            string   `yaml:"email"`
	Phone            string   `yaml:"phone"`
	Department       string   `yaml:"department"`
	Position         string   `yaml:"position"`
	DateOfEmployment string   `yaml:"date_of_employment"`
	DateOfBirth      string   `yaml:"date_of_birth"`
	Salary           *float64 `yaml:"salary"`
}

// ValidationConfig overrides the default field rules. Zero values keep the
// defaults.
type ValidationConfig struct {
	NameMinLength  int     `yaml:"name_min_length"`
	NameMaxLength  int     `yaml:"name_max_length"`
	NamePattern    string  `yaml:"name_pattern"`
	EmailMinLength int     `yaml:"email_min_length"`
	EmailMaxLength int     `yaml:"email_max_length"`
	PhoneMinLength int     `yaml:"phone_min_length"`
	PhoneMaxLength int     `yaml:"phone_max_length"`
	PhonePattern   string  `yaml:"phone_pattern"`
	BirthDateFloor string  `yaml:"birth_date_floor"`
	SalaryMin      float64 `yaml:"salary_min"`
	SalaryMax      float64 `yaml:"salary_max"`

	rules validation.Rules
}

// StartupConfig bounds the retries around database and broker connections.
type StartupConfig struct {
	MaxElapsed    time.Duration `yaml:"-"`
	MaxElapsedRaw string        `yaml:"max_elapsed"`
}

// DefaultPath is used when neither -config nor DIRECTORY_CONFIG is set.
var DefaultPath = filepath.Join("internal", "directory", "config", "config.yaml")

// Path resolves the configuration file: flagValue wins over
// DIRECTORY_CONFIG, which wins over DefaultPath.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(PathEnv); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML document.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if secret := os.Getenv(SecretEnv); secret != "" {
		cfg.Auth.JWTSecret = secret
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = 50051
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.GRPCPort == c.Server.HTTPPort {
		return fmt.Errorf("config: server.grpc_port and server.http_port must differ")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret must be set (or %s)", SecretEnv)
	}

	steps := []func() error{
		c.Database.validateAndNormalize,
		c.Kafka.validateAndNormalize,
		c.Directory.validateAndNormalize,
		c.Validation.validateAndNormalize,
		c.Startup.validateAndNormalize,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	switch d.Driver {
	case "", db.DriverSQLite:
		d.Driver = db.DriverSQLite
		if d.Path == "" {
			d.Path = "directory.db"
		}
	case db.DriverPostgres:
		if d.Host == "" {
			return fmt.Errorf("config: database.host must be set")
		}
		if d.Port == 0 {
			d.Port = 5432
		}
		if d.User == "" {
			return fmt.Errorf("config: database.user must be set")
		}
		if d.Name == "" {
			return fmt.Errorf("config: database.name must be set")
		}
		if d.SSLMode == "" {
			d.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("config: database.driver %q is not supported", d.Driver)
	}
	return nil
}

// Repository returns the settings for db.NewRepository.
func (d DatabaseConfig) Repository() *db.Config {
	return &db.Config{
		Driver:   d.Driver,
		Path:     d.Path,
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		DBName:   d.Name,
		SSLMode:  d.SSLMode,
	}
}

func (k *KafkaConfig) validateAndNormalize() error {
	if !k.Enabled {
		return nil
	}
	if len(k.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must be set when kafka is enabled")
	}
	if k.Topic == "" {
		k.Topic = events.DefaultTopic
	}
	return nil
}

func (d *DirectoryConfig) validateAndNormalize() error {
	if d.PageSize < 0 {
		return fmt.Errorf("config: directory.page_size must not be negative")
	}
	if d.PageSize == 0 {
		d.PageSize = search.DefaultPageSize
	}

	delay, err := parseDurationAllowEmpty(d.CommitDelayRaw)
	if err != nil {
		return fmt.Errorf("config: directory.commit_delay: %w", err)
	}
	if delay < 0 {
		return fmt.Errorf("config: directory.commit_delay must not be negative")
	}
	d.CommitDelay = delay

	defaults := models.DefaultCatalog()
	if len(d.Catalog.Departments) == 0 {
		d.Catalog.Departments = defaults.Departments
	}
	if len(d.Catalog.Positions) == 0 {
		d.Catalog.Positions = defaults.Positions
	}
	if err := checkList("directory.catalog.departments", d.Catalog.Departments); err != nil {
		return err
	}
	if err := checkList("directory.catalog.positions", d.Catalog.Positions); err != nil {
		return err
	}

	for i, s := range d.Seed {
		if _, err := s.Employee(); err != nil {
			return fmt.Errorf("config: directory.seed[%d]: %w", i, err)
		}
	}
	return nil
}

func checkList(name string, items []string) error {
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			return fmt.Errorf("config: %s contains an empty entry", name)
		}
		if seen[key] {
			return fmt.Errorf("config: %s lists %q twice", name, item)
		}
		seen[key] = true
	}
	return nil
}

// SeedEmployees converts the configured seed into domain employees.
func (d DirectoryConfig) SeedEmployees() []models.Employee {
	out := make([]models.Employee, 0, len(d.Seed))
	for _, s := range d.Seed {
		// Parse errors were rejected by validateAndNormalize.
		emp, _ := s.Employee()
		out = append(out, emp)
	}
	return out
}

// Employee converts s into a domain employee without an ID.
func (s SeedEmployee) Employee() (models.Employee, error) {
	doe, err := time.Parse(dateLayout, s.DateOfEmployment)
	if err != nil {
		return models.Employee{}, fmt.Errorf("date_of_employment: %w", err)
	}
	emp := models.Employee{
		FirstName:        s.FirstName,
		LastName:         s.LastName,
		Email:            s.Email,
		Phone:            s.Phone,
		Department:       s.Department,
		Position:         s.Position,
		DateOfEmployment: doe,
		Salary:           s.Salary,
	}
	if s.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, s.DateOfBirth)
		if err != nil {
			return models.Employee{}, fmt.Errorf("date_of_birth: %w", err)
		}
		emp.DateOfBirth = &dob
	}
	return emp, nil
}

func (v *ValidationConfig) validateAndNormalize() error {
	r := validation.DefaultRules()

	setInt := func(dst *int, src int) {
		if src > 0 {
			*dst = src
		}
	}
	setInt(&r.NameMinLength, v.NameMinLength)
	setInt(&r.NameMaxLength, v.NameMaxLength)
	setInt(&r.EmailMinLength, v.EmailMinLength)
	setInt(&r.EmailMaxLength, v.EmailMaxLength)
	setInt(&r.PhoneMinLength, v.PhoneMinLength)
	setInt(&r.PhoneMaxLength, v.PhoneMaxLength)
	if v.SalaryMin > 0 {
		r.SalaryMin = v.SalaryMin
	}
	if v.SalaryMax > 0 {
		r.SalaryMax = v.SalaryMax
	}

	var err error
	if v.NamePattern != "" {
		if r.NamePattern, err = regexp.Compile(v.NamePattern); err != nil {
			return fmt.Errorf("config: validation.name_pattern: %w", err)
		}
	}
	if v.PhonePattern != "" {
		if r.PhonePattern, err = regexp.Compile(v.PhonePattern); err != nil {
			return fmt.Errorf("config: validation.phone_pattern: %w", err)
		}
	}
	if v.BirthDateFloor != "" {
		if r.BirthDateFloor, err = time.Parse(dateLayout, v.BirthDateFloor); err != nil {
			return fmt.Errorf("config: validation.birth_date_floor: %w", err)
		}
	}

	switch {
	case r.NameMinLength > r.NameMaxLength:
		return fmt.Errorf("config: validation name length range is empty")
	case r.EmailMinLength > r.EmailMaxLength:
		return fmt.Errorf("config: validation email length range is empty")
	case r.PhoneMinLength > r.PhoneMaxLength:
		return fmt.Errorf("config: validation phone length range is empty")
	case r.SalaryMin > r.SalaryMax:
		return fmt.Errorf("config: validation salary range is empty")
	}

	v.rules = r
	return nil
}

// Rules returns the effective field rules.
func (v ValidationConfig) Rules() validation.Rules {
	return v.rules
}

func (s *StartupConfig) validateAndNormalize() error {
	d, err := parseDurationAllowEmpty(s.MaxElapsedRaw)
	if err != nil {
		return fmt.Errorf("config: startup.max_elapsed: %w", err)
	}
	if d == 0 {
		d = 30 * time.Second
	}
	s.MaxElapsed = d
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}
