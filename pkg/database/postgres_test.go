package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/it-hub-api/pkg/config"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "hub", Password: "p@ss word", Name: "it_hub", SSLMode: "disable"})
	assert.Equal(t, "postgres://hub:p%40ss%20word@db:5433/it_hub?application_name=it-hub-api&connect_timeout=5&sslmode=disable", dsn)
}

func TestNewSQLiteRequiresPath(t *testing.T) {
	_, err := NewSQLite("")
	assert.Error(t, err)
}
