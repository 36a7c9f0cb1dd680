package integration

import (
	"os"
	"testing"

	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openDB connects to the database named by DB_CONNECTION_STRING and migrates
// it. Tests are skipped when no database is configured.
func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Tests run in the package dir, so .env lives two levels up.
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}
