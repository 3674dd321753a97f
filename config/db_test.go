package config

import (
	"testing"

	"dorm-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLDSNFromURL(t *testing.T) {
	dsn, name, err := mysqlDSNFromURL("mysql://dorm:pw@db.internal/dorm_db")
	require.NoError(t, err)
	assert.Equal(t, "dorm_db", name)
	assert.Contains(t, dsn, "dorm:pw@tcp(db.internal:3306)/dorm_db?")
	assert.Contains(t, dsn, "parseTime=True")
	assert.Contains(t, dsn, "charset=utf8mb4")

	_, _, err = mysqlDSNFromURL("mysql://dorm:pw@db.internal")
	assert.Error(t, err)
}

func TestResolveMySQLDSNFromParts(t *testing.T) {
	t.Setenv("MYSQL_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASS", "pw")
	t.Setenv("DB_HOST", "10.0.0.5")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "dorm_test")

	dsn, name, err := resolveMySQLDSN()
	require.NoError(t, err)
	assert.Equal(t, "dorm_test", name)
	assert.Equal(t, "app:pw@tcp(10.0.0.5:3307)/dorm_test?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}

func TestDialector(t *testing.T) {
	d, err := Dialector("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	_, err = Dialector("oracle")
	assert.Error(t, err)
}

func TestMigrateAndSeed(t *testing.T) {
	t.Setenv("SQLITE_PATH", "file::memory:")
	db, err := ConnectDatabase("sqlite")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	require.NoError(t, SeedDatabase(db, "Admin@Dorm.local", "changeme"))
	// idempotent
	require.NoError(t, SeedDatabase(db, "admin@dorm.local", "changeme"))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@dorm.local", admins[0].Email)
	assert.NotEqual(t, "changeme", admins[0].PasswordHash)

	require.NoError(t, SeedDatabase(db, "", ""))
}

func TestConnectDatabasePoolFromEnv(t *testing.T) {
	t.Setenv("SQLITE_PATH", "file::memory:")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	db, err := ConnectDatabase("sqlite")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
}
