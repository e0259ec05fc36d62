package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed revisions.sql
var revisionsSQL string

//go:embed updates.sql
var updatesSQL string

// Function lists for verification
var RevisionsFunctions = []string{
	"init_revisions",
	"insert_revision",
	"select_revision",
	"select_latest_revision",
	"select_revisions_by_entity",
	"delete_revisions",
}

var UpdatesFunctions = []string{
	"init_updates",
	"insert_update",
	"select_update",
	"select_updates_by_entity",
	"delete_update",
}

// Init creates the shared types used by all tables.
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database types initialized successfully")
	return nil
}

// LoadRevisionsSql loads revision snapshot SQL functions
func LoadRevisionsSql(db *sql.DB, force bool) error {
	return loadSql(db, "revisions", revisionsSQL, RevisionsFunctions, force)
}

// LoadUpdatesSql loads update queue SQL functions
func LoadUpdatesSql(db *sql.DB, force bool) error {
	return loadSql(db, "updates", updatesSQL, UpdatesFunctions, force)
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadRevisionsSql(db, force); err != nil {
		return err
	}

	if err := LoadUpdatesSql(db, force); err != nil {
		return err
	}

	return nil
}

func loadSql(db *sql.DB, name string, script string, functions []string, force bool) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %s functions: %w", name, err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(script)
	if err != nil {
		return fmt.Errorf("error executing %s SQL: %w", name, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Printf("SQL %s functions loaded successfully", name)
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
