package services

import (
	"context"
	"sync"
	"testing"

	"dorm-backend/events"
	"dorm-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var adminActor = Principal{UserID: 1000, Role: models.RoleAdmin}

func studentActor(u models.User) Principal {
	return Principal{UserID: u.ID, Role: models.RoleStudent}
}

// setupTestDB opens a private in-memory database. One connection keeps every
// query on the same memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type recordingPublisher struct {
	mu  sync.Mutex
	got []events.Event
}

func (r *recordingPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev, ok := value.(events.Event); ok {
		r.got = append(r.got, ev)
	}
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.got))
	for _, ev := range r.got {
		out = append(out, ev.Type)
	}
	return out
}

func newTestOccupancy(t *testing.T) (*OccupancyService, *gorm.DB, *recordingPublisher) {
	t.Helper()
	db := setupTestDB(t)
	pub := &recordingPublisher{}
	return NewOccupancyService(db, pub), db, pub
}

func seedRoom(t *testing.T, db *gorm.DB, id, gender string, max int, price float64) models.Room {
	t.Helper()
	room := models.Room{ID: id, Gender: gender, Max: max, Price: price, Status: models.StatusFor(0, max)}
	require.NoError(t, db.Create(&room).Error)
	return room
}

func seedUser(t *testing.T, db *gorm.DB, name, gender string) models.User {
	t.Helper()
	user := models.User{
		Email:  name + "@dorm.test",
		Name:   name,
		Gender: gender,
		Role:   models.RoleStudent,
		Status: models.UserNotStaying,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// moveIn places a user directly, bypassing the checks, and recounts.
func moveIn(t *testing.T, db *gorm.DB, user models.User, roomID string) {
	t.Helper()
	require.NoError(t, placeUser(db, user.ID, &roomID))
	_, err := syncRoomCounters(db, roomID)
	require.NoError(t, err)
}

func reloadRoom(t *testing.T, db *gorm.DB, id string) models.Room {
	t.Helper()
	var room models.Room
	require.NoError(t, db.Where("id = ?", id).First(&room).Error)
	return room
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, id).Error)
	return user
}

func reloadRequest(t *testing.T, db *gorm.DB, id uint) models.RoomChangeRequest {
	t.Helper()
	var req models.RoomChangeRequest
	require.NoError(t, db.First(&req, id).Error)
	return req
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// assertConsistent checks the stored counters and genders of every room
// against the users table.
func assertConsistent(t *testing.T, db *gorm.DB) {
	t.Helper()
	var rooms []models.Room
	require.NoError(t, db.Find(&rooms).Error)
	for _, r := range rooms {
		var occupants []models.User
		require.NoError(t, db.Where("current_room_id = ?", r.ID).Find(&occupants).Error)
		assert.Equal(t, len(occupants), r.Current, "room %s current", r.ID)
		assert.Equal(t, models.StatusFor(r.Current, r.Max), r.Status, "room %s status", r.ID)
		for _, u := range occupants {
			assert.Equal(t, r.Gender, u.Gender, "user %d gender in room %s", u.ID, r.ID)
			assert.Equal(t, models.UserStaying, u.Status, "user %d status", u.ID)
		}
	}
	var stayingWithoutRoom int64
	require.NoError(t, db.Model(&models.User{}).
		Where("status = ? AND current_room_id IS NULL", models.UserStaying).
		Count(&stayingWithoutRoom).Error)
	assert.Zero(t, stayingWithoutRoom)
}

// lockTrace records the table of every SELECT ... FOR UPDATE in order.
// sqlite drops the clause from the SQL but it stays on the statement.
type lockTrace struct {
	mu     sync.Mutex
	tables []string
}

func traceLocks(t *testing.T, db *gorm.DB) *lockTrace {
	t.Helper()
	tr := &lockTrace{}
	err := db.Callback().Query().After("gorm:query").Register("test:trace_locks", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Clauses["FOR"]; !ok {
			return
		}
		tr.mu.Lock()
		defer tr.mu.Unlock()
		tr.tables = append(tr.tables, tx.Statement.Table)
	})
	require.NoError(t, err)
	return tr
}

// order returns the locked tables with consecutive repeats collapsed.
func (tr *lockTrace) order() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	var out []string
	for _, table := range tr.tables {
		if len(out) == 0 || out[len(out)-1] != table {
			out = append(out, table)
		}
	}
	return out
}

func (tr *lockTrace) reset() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.tables = nil
}
