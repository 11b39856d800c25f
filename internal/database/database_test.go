package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"

	"devconnector/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}

	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
	assert.NoError(t, Ping(context.Background(), db))
}

func TestConfigurePool_Defaults(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	t.Run("Database URL wins", func(t *testing.T) {
		cfg := &config.Config{DatabaseURL: "postgres://u:p@db:5432/dev", DBHost: "ignored"}
		assert.Equal(t, "postgres://u:p@db:5432/dev", DSN(cfg))
	})

	t.Run("Split keys", func(t *testing.T) {
		cfg := &config.Config{DBHost: "localhost", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "dev"}
		assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=dev sslmode=disable", DSN(cfg))
	})
}

func TestPlanSchema(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		sql     bool
		auto    bool
		wantErr bool
	}{
		{"Hybrid in development", config.Config{Env: "development", DBSchemaMode: "hybrid"}, true, true, false},
		{"Hybrid in production", config.Config{Env: "production", DBSchemaMode: "hybrid"}, true, false, false},
		{"Hybrid in staging", config.Config{Env: "staging"}, true, false, false},
		{"Empty mode defaults to hybrid", config.Config{Env: "test"}, true, true, false},
		{"SQL only", config.Config{Env: "development", DBSchemaMode: "sql"}, true, false, false},
		{"Auto in development", config.Config{Env: "development", DBSchemaMode: "AUTO"}, false, true, false},
		{"Auto in production refused", config.Config{Env: "production", DBSchemaMode: "auto"}, false, false, true},
		{"Auto in production allowed", config.Config{Env: "production", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"Unknown mode", config.Config{Env: "development", DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := planSchema(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sql, plan.SQL)
			assert.Equal(t, tt.auto, plan.Auto)
		})
	}
}

func TestApplySchema_AutoModeOnSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{Env: "test", DBSchemaMode: SchemaModeAuto}
	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	assert.True(t, db.Migrator().HasTable("profiles"))

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.RunsSQL)
	assert.True(t, status.RunsAuto)
	assert.Empty(t, status.Pending)
}

func TestEmbeddedMigrations(t *testing.T) {
	all, err := Migrations()
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, "000001_create_users", all[0].String())
	assert.Equal(t, "000002_create_profiles", all[1].String())
	assert.Equal(t, "000003_create_posts", all[2].String())
	for _, m := range all {
		assert.NotEmpty(t, m.Up, m.Name)
		assert.Contains(t, m.Down, "DROP TABLE", m.Name)
		assert.Len(t, m.Checksum(), 64)
	}
}

func TestLoadMigrations_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
		want  string
	}{
		{
			name:  "missing down",
			files: fstest.MapFS{"m/000001_a.up.sql": {Data: []byte("x")}},
			want:  "needs both",
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"m/000001_a.up.sql":   {Data: []byte("x")},
				"m/000001_b.down.sql": {Data: []byte("x")},
			},
			want: "used by both",
		},
		{
			name:  "stray file",
			files: fstest.MapFS{"m/README.md": {Data: []byte("x")}},
			want:  "unexpected file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMigrations(tt.files, "m")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckApplied(t *testing.T) {
	registered, err := Migrations()
	require.NoError(t, err)

	assert.NoError(t, checkApplied(nil, registered))
	assert.NoError(t, checkApplied([]AppliedMigration{{Version: 1}, {Version: 2, Checksum: registered[1].Checksum()}}, registered))

	err = checkApplied([]AppliedMigration{{Version: 1}, {Version: 42}, {Version: 7}}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007, 000042")

	err = checkApplied([]AppliedMigration{{Version: 1, Checksum: "stale"}}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edited")
}

func TestMigrator_UpAndDown(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	files := fstest.MapFS{
		"m/000001_notes.up.sql":    {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT);")},
		"m/000001_notes.down.sql":  {Data: []byte("DROP TABLE notes;")},
		"m/000002_tags.up.sql":     {Data: []byte("CREATE TABLE tags (id INTEGER PRIMARY KEY);")},
		"m/000002_tags.down.sql":   {Data: []byte("DROP TABLE tags;")},
		"m/000003_broken.up.sql":   {Data: []byte("CREATE TABLE oops (;")},
		"m/000003_broken.down.sql": {Data: []byte("SELECT 1;")},
	}
	all, err := LoadMigrations(files, "m")
	require.NoError(t, err)
	ctx := context.Background()

	m := NewMigrator(db, all[:2])
	n, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, db.Migrator().HasTable("notes"))
	assert.True(t, db.Migrator().HasTable("tags"))

	n, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	rolled, err := m.Down(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, rolled.Version)
	assert.False(t, db.Migrator().HasTable("tags"))

	_, err = m.Down(ctx, 2)
	assert.ErrorContains(t, err, "has not been applied")

	// A failing migration leaves no bookkeeping row behind.
	broken := NewMigrator(db, all)
	n, err = broken.Up(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	applied, err := broken.Applied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, []int{1, 2}, []int{applied[0].Version, applied[1].Version})
}

func TestRedactedTarget(t *testing.T) {
	assert.Equal(t, "db:5432/dev", redactedTarget(&config.Config{DatabaseURL: "postgres://u:secret@db:5432/dev"}))
	assert.Equal(t, "localhost:5432/devconnector", redactedTarget(&config.Config{DBHost: "localhost", DBPort: "5432", DBName: "devconnector", DBPassword: "secret"}))
}

func TestQueryLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newQueryLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	sql := func() (string, int64) { return "SELECT 1", 1 }
	ctx := context.Background()

	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), sql, nil)
	assert.Empty(t, buf.String(), "misses and fast queries are quiet at warn level")

	l.Trace(ctx, time.Now(), sql, errors.New("boom"))
	assert.Contains(t, buf.String(), `"msg":"query failed"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), `"msg":"slow query"`)

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), sql, errors.New("boom"))
	assert.Empty(t, buf.String())
}
