package tenant

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/crm/backend/internal/infrastructure/logger"
)

type customerRow struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
}

func (customerRow) TableName() string { return "customers" }

func newCallbackTestDB(t *testing.T) (*gorm.DB, *sql.DB) {
	t.Helper()
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mockDB
}

func tenantContext(tenantID string) context.Context {
	ctx, _ := logger.WithTenantID(context.Background(), zap.NewNop(), tenantID)
	return ctx
}

func TestCallback_InjectsTenantPredicate(t *testing.T) {
	db, sqlDB := newCallbackTestDB(t)
	defer sqlDB.Close()
	NewCallback(false).Register(db)

	tenantID := uuid.New()
	var rows []customerRow
	stmt := db.Session(&gorm.Session{DryRun: true}).
		WithContext(tenantContext(tenantID.String())).
		Find(&rows).Statement

	assert.Contains(t, stmt.SQL.String(), `"customers"."tenant_id"`)
	assert.Contains(t, stmt.Vars, tenantID.String())
}

func TestCallback_LeavesExplicitTenantPredicateAlone(t *testing.T) {
	db, sqlDB := newCallbackTestDB(t)
	defer sqlDB.Close()
	NewCallback(false).Register(db)

	explicit := uuid.New()
	contextTenant := uuid.New()

	var rows []customerRow
	stmt := db.Session(&gorm.Session{DryRun: true}).
		WithContext(tenantContext(contextTenant.String())).
		Where("tenant_id = ?", explicit).
		Find(&rows).Statement

	// The repository predicate wins; no second condition is added.
	assert.NotContains(t, stmt.Vars, contextTenant.String())
	assert.Contains(t, stmt.Vars, explicit)
}

func TestCallback_NoTenantInContext(t *testing.T) {
	t.Run("optional mode runs unscoped", func(t *testing.T) {
		db, sqlDB := newCallbackTestDB(t)
		defer sqlDB.Close()
		NewCallback(false).Register(db)

		var rows []customerRow
		stmt := db.Session(&gorm.Session{DryRun: true}).
			WithContext(context.Background()).
			Find(&rows).Statement

		assert.NotContains(t, stmt.SQL.String(), "tenant_id")
	})

	t.Run("required mode fails the query", func(t *testing.T) {
		db, sqlDB := newCallbackTestDB(t)
		defer sqlDB.Close()
		NewCallback(true).Register(db)

		var rows []customerRow
		err := db.Session(&gorm.Session{DryRun: true}).
			WithContext(context.Background()).
			Find(&rows).Error

		assert.ErrorIs(t, err, ErrTenantIDRequired)
	})
}

func TestCallback_InvalidTenantIDFails(t *testing.T) {
	db, sqlDB := newCallbackTestDB(t)
	defer sqlDB.Close()
	NewCallback(false).Register(db)

	var rows []customerRow
	err := db.Session(&gorm.Session{DryRun: true}).
		WithContext(tenantContext("not-a-uuid")).
		Find(&rows).Error

	assert.ErrorIs(t, err, ErrInvalidTenantID)
}

func TestCallback_Remove(t *testing.T) {
	db, sqlDB := newCallbackTestDB(t)
	defer sqlDB.Close()

	callback := NewCallback(false)
	callback.Register(db)
	callback.Remove(db)

	tenantID := uuid.New()
	var rows []customerRow
	stmt := db.Session(&gorm.Session{DryRun: true}).
		WithContext(tenantContext(tenantID.String())).
		Find(&rows).Statement

	assert.NotContains(t, stmt.SQL.String(), "tenant_id")
}

func TestScope(t *testing.T) {
	db, sqlDB := newCallbackTestDB(t)
	defer sqlDB.Close()

	tenantID := uuid.New()
	var rows []customerRow
	stmt := db.Session(&gorm.Session{DryRun: true}).
		Scopes(Scope(tenantID)).
		Find(&rows).Statement

	assert.Contains(t, stmt.SQL.String(), "tenant_id")
	assert.Contains(t, stmt.Vars, tenantID)
}
