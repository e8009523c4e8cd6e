package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/crm/backend/internal/domain/shared"
)

// newMockDB opens a GORM connection backed by sqlmock.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormCustomerRepository_FindByIDForTenant(t *testing.T) {
	t.Run("scopes the lookup by tenant and id", func(t *testing.T) {
		db, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		repo := NewGormCustomerRepository(db)

		tenantID := uuid.New()
		customerID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "email"}).
			AddRow(customerID, tenantID, "Acme Corp", "sales@acme.example")

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, customerID, 1).
			WillReturnRows(rows)

		customer, err := repo.FindByIDForTenant(context.Background(), tenantID, customerID)

		require.NoError(t, err)
		assert.Equal(t, customerID, customer.ID)
		assert.Equal(t, "Acme Corp", customer.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a different tenant's customer is not found", func(t *testing.T) {
		db, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		repo := NewGormCustomerRepository(db)

		tenantID := uuid.New()
		customerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, customerID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		customer, err := repo.FindByIDForTenant(context.Background(), tenantID, customerID)

		assert.Nil(t, customer)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_FindAllForTenant(t *testing.T) {
	t.Run("always filters by tenant", func(t *testing.T) {
		db, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		repo := NewGormCustomerRepository(db)

		tenantID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "tenant_id", "name"}).
			AddRow(uuid.New(), tenantID, "Acme Corp").
			AddRow(uuid.New(), tenantID, "Globex")

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 ORDER BY name ASC`).
			WithArgs(tenantID).
			WillReturnRows(rows)

		customers, err := repo.FindAllForTenant(context.Background(), tenantID, shared.Filter{})

		require.NoError(t, err)
		assert.Len(t, customers, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search expands to ILIKE over name and contact columns", func(t *testing.T) {
		db, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		repo := NewGormCustomerRepository(db)

		tenantID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND \(name ILIKE \$2 OR company_name ILIKE \$3 OR email ILIKE \$4 OR phone ILIKE \$5\) ORDER BY name ASC`).
			WithArgs(tenantID, "%acme%", "%acme%", "%acme%", "%acme%").
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		_, err := repo.FindAllForTenant(context.Background(), tenantID, shared.Filter{Search: "acme"})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pagination adds limit and offset", func(t *testing.T) {
		db, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		repo := NewGormCustomerRepository(db)

		tenantID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 ORDER BY name ASC LIMIT \$2 OFFSET \$3`).
			WithArgs(tenantID, 20, 20).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		_, err := repo.FindAllForTenant(context.Background(), tenantID, shared.Filter{Page: 2, PageSize: 20})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_CountForTenant(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	repo := NewGormCustomerRepository(db)

	tenantID := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers" WHERE tenant_id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountForTenant(context.Background(), tenantID, shared.Filter{})

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCustomerRepository_DeleteForTenant(t *testing.T) {
	t.Run("deletes within the tenant", func(t *testing.T) {
		db, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		repo := NewGormCustomerRepository(db)

		tenantID := uuid.New()
		customerID := uuid.New()

		mock.ExpectExec(`DELETE FROM "customers" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, customerID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteForTenant(context.Background(), tenantID, customerID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows affected reports not found", func(t *testing.T) {
		db, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		repo := NewGormCustomerRepository(db)

		tenantID := uuid.New()
		customerID := uuid.New()

		mock.ExpectExec(`DELETE FROM "customers" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, customerID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteForTenant(context.Background(), tenantID, customerID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
