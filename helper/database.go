package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Environment variables read by NewDatabaseConfiguration.
const (
	EnvDBHost     = "WBUPDATE_DB_HOST"
	EnvDBPort     = "WBUPDATE_DB_PORT"
	EnvDBDatabase = "WBUPDATE_DB_DATABASE"
	EnvDBUsername = "WBUPDATE_DB_USERNAME"
	EnvDBPassword = "WBUPDATE_DB_PASSWORD"
	EnvDBSchema   = "WBUPDATE_DB_SCHEMA"
	EnvDBSSLMode  = "WBUPDATE_DB_SSLMODE"
)

// DatabaseConfiguration holds the connection settings of the snapshot and queue store.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the configuration from the environment.
// A .env file in the working directory is loaded first if present;
// variables already set in the environment take precedence.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, NewError("load .env", err)
	}

	config := &DatabaseConfiguration{
		Host:     os.Getenv(EnvDBHost),
		Port:     os.Getenv(EnvDBPort),
		Database: os.Getenv(EnvDBDatabase),
		Username: os.Getenv(EnvDBUsername),
		Password: os.Getenv(EnvDBPassword),
		Schema:   os.Getenv(EnvDBSchema),
		SSLMode:  os.Getenv(EnvDBSSLMode),
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	var missing []string
	if config.Host == "" {
		missing = append(missing, EnvDBHost)
	}
	if config.Port == "" {
		missing = append(missing, EnvDBPort)
	}
	if config.Database == "" {
		missing = append(missing, EnvDBDatabase)
	}
	if config.Username == "" {
		missing = append(missing, EnvDBUsername)
	}
	if len(missing) > 0 {
		return nil, NewError("database configuration", fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", ")))
	}

	return config, nil
}

// ConnectionString returns the lib/pq connection URL.
func (c *DatabaseConfiguration) ConnectionString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	q.Set("search_path", c.Schema)
	u.RawQuery = q.Encode()
	return u.String()
}

// Database bundles an open connection pool with the logger of its owner.
type Database struct {
	Name     string
	Logger   *slog.Logger
	Instance *sql.DB
}

// NewDatabase opens and pings the database. It panics if the database is unreachable.
func NewDatabase(name string, dbConfig *DatabaseConfiguration, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := connect(dbConfig)
	if err != nil {
		log.Panicf("error connecting to database %s: %v", name, err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", dbConfig.Host), slog.String("database", dbConfig.Database))

	return &Database{
		Name:     name,
		Logger:   logger,
		Instance: db,
	}
}

// NewTestDatabase opens a database logging to stdout with debug level.
func NewTestDatabase(dbConfig *DatabaseConfiguration) *Database {
	opts := PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}
	return NewDatabase("test", dbConfig, slog.New(NewPrettyHandler(os.Stdout, opts)))
}

func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}

func connect(dbConfig *DatabaseConfiguration) (*sql.DB, error) {
	if dbConfig == nil {
		return nil, fmt.Errorf("database configuration is nil")
	}

	db, err := sql.Open("postgres", dbConfig.ConnectionString())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
