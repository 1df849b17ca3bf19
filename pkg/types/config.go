package types

import "time"

// StoreBackend identifies the document store implementation.
type StoreBackend string

const (
	BackendSQLite    StoreBackend = "sqlite"
	BackendSurrealDB StoreBackend = "surrealdb"
	BackendFirestore StoreBackend = "firestore"
	BackendMemory    StoreBackend = "memory"
)

// SQLiteConfig holds settings for the embedded SQLite document store.
type SQLiteConfig struct {
	// Path is the database file (default data/careerlink.db).
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// SurrealConfig holds SurrealDB connection settings.
type SurrealConfig struct {
	URL       string `json:"url" yaml:"url" mapstructure:"url"`
	Namespace string `json:"namespace" yaml:"namespace" mapstructure:"namespace"`
	Database  string `json:"database" yaml:"database" mapstructure:"database"`
	Username  string `json:"username" yaml:"username" mapstructure:"username"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`

	// AuthLevel is "root" or "database".
	AuthLevel string `json:"auth_level" yaml:"auth_level" mapstructure:"auth_level"`
}

// FirestoreConfig holds settings for the Firestore backend.
type FirestoreConfig struct {
	// ProjectID is the Google Cloud project hosting the database.
	ProjectID string `json:"project_id" yaml:"project_id" mapstructure:"project_id"`

	// DatabaseID selects the database within the project (default "(default)").
	DatabaseID string `json:"database_id" yaml:"database_id" mapstructure:"database_id"`

	// APIKey authenticates with a Google API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BearerToken authenticates with a static OAuth2 access token.
	BearerToken string `json:"bearer_token,omitempty" yaml:"bearer_token,omitempty" mapstructure:"bearer_token"`

	// CredentialsFile is a service account key file. With no credential
	// set, Application Default Credentials are used.
	CredentialsFile string `json:"credentials_file,omitempty" yaml:"credentials_file,omitempty" mapstructure:"credentials_file"`

	// EmulatorHost points the client at a local emulator (host:port).
	EmulatorHost string `json:"emulator_host,omitempty" yaml:"emulator_host,omitempty" mapstructure:"emulator_host"`

	// Timeout bounds each store operation (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent with every request.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Backend   StoreBackend    `json:"backend" yaml:"backend" mapstructure:"backend"`
	SQLite    SQLiteConfig    `json:"sqlite" yaml:"sqlite" mapstructure:"sqlite"`
	SurrealDB SurrealConfig   `json:"surrealdb" yaml:"surrealdb" mapstructure:"surrealdb"`
	Firestore FirestoreConfig `json:"firestore" yaml:"firestore" mapstructure:"firestore"`
}

// ReconcileConfig holds settings for executing reconciliation plans.
type ReconcileConfig struct {
	// DeleteRate caps deletes per second. Zero disables limiting.
	DeleteRate float64 `json:"delete_rate" yaml:"delete_rate" mapstructure:"delete_rate"`

	// DeleteBurst is the limiter burst size (default 1).
	DeleteBurst int `json:"delete_burst" yaml:"delete_burst" mapstructure:"delete_burst"`

	// ExportDir is where scan --export writes plans (default "reports").
	ExportDir string `json:"export_dir" yaml:"export_dir" mapstructure:"export_dir"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	// File receives JSON logs in addition to stderr. Empty disables it.
	File string `json:"file" yaml:"file" mapstructure:"file"`

	// Level is one of debug, info, warn, error (default warn).
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// SelectionPolicy names a representative selection policy.
type SelectionPolicy string

const (
	PolicyCompleteness SelectionPolicy = "completeness"
	PolicyRecency      SelectionPolicy = "recency"
)

// ProfileConfig describes how duplicates are detected and resolved for one
// collection.
type ProfileConfig struct {
	// Name identifies the profile on the command line.
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Collection is the document collection scanned.
	Collection string `json:"collection" yaml:"collection" mapstructure:"collection"`

	// KeyFields are combined into the normalized grouping key.
	KeyFields []string `json:"key_fields" yaml:"key_fields" mapstructure:"key_fields"`

	// Policy selects the automatic representative.
	Policy SelectionPolicy `json:"policy" yaml:"policy" mapstructure:"policy"`

	// ScoreFields are counted by the completeness policy.
	ScoreFields []string `json:"score_fields,omitempty" yaml:"score_fields,omitempty" mapstructure:"score_fields"`

	// TimestampField is read by the recency policy (default createdAt).
	TimestampField string `json:"timestamp_field,omitempty" yaml:"timestamp_field,omitempty" mapstructure:"timestamp_field"`
}

// Config is the top-level careerlink configuration.
type Config struct {
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
	Reconcile ReconcileConfig `json:"reconcile" yaml:"reconcile" mapstructure:"reconcile"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging" mapstructure:"logging"`
	Profiles  []ProfileConfig `json:"profiles,omitempty" yaml:"profiles,omitempty" mapstructure:"profiles"`
}

// DefaultConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultConfig() Config {
	return Config{}.WithDefaults()
}

// WithDefaults fills unset fields with their defaults.
func (c Config) WithDefaults() Config {
	if c.Store.Backend == "" {
		c.Store.Backend = BackendSQLite
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = "data/careerlink.db"
	}

	s := &c.Store.SurrealDB
	if s.URL == "" {
		s.URL = "ws://localhost:8000/rpc"
	}
	if s.Namespace == "" {
		s.Namespace = "careerlink"
	}
	if s.Database == "" {
		s.Database = "platform"
	}
	if s.Username == "" {
		s.Username = "root"
	}
	if s.AuthLevel == "" {
		s.AuthLevel = "root"
	}

	f := &c.Store.Firestore
	if f.DatabaseID == "" {
		f.DatabaseID = "(default)"
	}
	if f.Timeout <= 0 {
		f.Timeout = 30 * time.Second
	}
	if f.UserAgent == "" {
		f.UserAgent = "careerlink/0.1"
	}

	if c.Reconcile.DeleteBurst <= 0 {
		c.Reconcile.DeleteBurst = 1
	}
	if c.Reconcile.ExportDir == "" {
		c.Reconcile.ExportDir = "reports"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	return c
}
