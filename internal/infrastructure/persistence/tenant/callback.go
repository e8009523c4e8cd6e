package tenant

import (
	"strings"

	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Callback registers GORM hooks that inject a tenant_id predicate into
// queries, updates and deletes when none is present. Creates are left
// alone; tenant_id is set explicitly when entities are constructed.
type Callback struct {
	column   string
	required bool
}

// NewCallback creates a tenant callback handler
func NewCallback(required bool) *Callback {
	return &Callback{column: "tenant_id", required: required}
}

// Register registers the tenant callbacks with GORM
func (tc *Callback) Register(db *gorm.DB) {
	_ = db.Callback().Query().Before("gorm:query").Register("tenant:before_query", tc.addFilter)
	_ = db.Callback().Update().Before("gorm:update").Register("tenant:before_update", tc.addFilter)
	_ = db.Callback().Delete().Before("gorm:delete").Register("tenant:before_delete", tc.addFilter)
	_ = db.Callback().Row().Before("gorm:row").Register("tenant:before_row", tc.addFilter)
}

// Remove removes the tenant callbacks, mainly for tests
func (tc *Callback) Remove(db *gorm.DB) {
	_ = db.Callback().Query().Remove("tenant:before_query")
	_ = db.Callback().Update().Remove("tenant:before_update")
	_ = db.Callback().Delete().Remove("tenant:before_delete")
	_ = db.Callback().Row().Remove("tenant:before_row")
}

func (tc *Callback) addFilter(db *gorm.DB) {
	if db.Statement.Context == nil || db.Statement.Unscoped {
		return
	}
	if tc.hasTenantCondition(db) {
		return
	}

	tenantID := logger.GetTenantID(db.Statement.Context)
	if tenantID == "" {
		if tc.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return
	}
	if _, err := uuid.Parse(tenantID); err != nil {
		_ = db.AddError(ErrInvalidTenantID)
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: tc.column},
				Value:  tenantID,
			},
		},
	})
}

func (tc *Callback) hasTenantCondition(db *gorm.DB) bool {
	if whereClause, ok := db.Statement.Clauses["WHERE"]; ok {
		if where, ok := whereClause.Expression.(clause.Where); ok {
			for _, expr := range where.Exprs {
				if tc.exprContainsTenant(expr) {
					return true
				}
			}
		}
	}
	if sql := db.Statement.SQL.String(); sql != "" && strings.Contains(sql, tc.column) {
		return true
	}
	return false
}

func (tc *Callback) exprContainsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == tc.column
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == tc.column
		}
	case clause.Expr:
		return strings.Contains(e.SQL, tc.column)
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if tc.exprContainsTenant(cond) {
				return true
			}
		}
	case clause.OrConditions:
		for _, cond := range e.Exprs {
			if tc.exprContainsTenant(cond) {
				return true
			}
		}
	}
	return false
}
