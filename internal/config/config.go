// Package config provides configuration for the collector server.
package config

import (
	"flag"
	"os"
)

type ServerConfig struct {
	Address        string
	DatabaseDSN    string
	KeyFile        string
	FixtureFile    string
	MigrationsPath string
	AuditFile      string
	AuditURL       string
}

// NewServerConfig reads configuration from command-line flags with
// environment variable overrides. An empty DatabaseDSN selects the
// in-memory storage.
func NewServerConfig() (*ServerConfig, error) {
	config := &ServerConfig{
		Address:        "localhost:8080",
		DatabaseDSN:    "",
		KeyFile:        "./keys.json",
		FixtureFile:    "",
		MigrationsPath: "file://./migrations",
		AuditFile:      "",
		AuditURL:       "",
	}

	address := flag.String("a", config.Address, "address")
	databaseDSN := flag.String("d", config.DatabaseDSN, "database dsn, empty for in-memory storage")
	keyFile := flag.String("k", config.KeyFile, "path to agent key file")
	fixtureFile := flag.String("f", config.FixtureFile, "path to project/item fixture file")
	migrationsPath := flag.String("m", config.MigrationsPath, "migrations source url")
	auditFile := flag.String("audit-file", config.AuditFile, "file to append audit events to")
	auditURL := flag.String("audit-url", config.AuditURL, "url to post audit events to")
	flag.Parse()

	envVars := map[string]*string{
		"ADDRESS":         address,
		"DATABASE_DSN":    databaseDSN,
		"KEY_FILE":        keyFile,
		"FIXTURE_FILE":    fixtureFile,
		"MIGRATIONS_PATH": migrationsPath,
		"AUDIT_FILE":      auditFile,
		"AUDIT_URL":       auditURL,
	}

	for envVar, flag := range envVars {
		if envValue := os.Getenv(envVar); envValue != "" {
			*flag = envValue
		}
	}

	config.Address = *address
	config.DatabaseDSN = *databaseDSN
	config.KeyFile = *keyFile
	config.FixtureFile = *fixtureFile
	config.MigrationsPath = *migrationsPath
	config.AuditFile = *auditFile
	config.AuditURL = *auditURL

	return config, nil
}
