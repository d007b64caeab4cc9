package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

func TestNewBaseStoresConnection(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if base.db != db {
		t.Fatalf("expected base db to match provided connection")
	}
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil {
		t.Fatalf("expected non-nil DB when context provided")
	}
	if withCtx.Statement == nil {
		t.Fatalf("expected statement created after WithContext")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	withoutCtx := base.DB(nil)
	if withoutCtx != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestBindScopesToTransaction(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	if got := base.Bind(nil); got.db != db {
		t.Fatalf("nil tx should keep the pool")
	}
	tx := db.Session(&gorm.Session{NewDB: true})
	if got := base.Bind(tx); got.db != tx {
		t.Fatalf("expected base bound to tx")
	}
}

func TestForUpdateAddsLockingClause(t *testing.T) {
	db := newTestDB(t)
	stmt := ForUpdate(db.Session(&gorm.Session{DryRun: true})).Table("quotes").Where("id = ?", 1).Find(&[]baseRow{}).Statement
	if _, ok := stmt.Clauses["FOR"]; !ok {
		t.Fatalf("expected FOR clause, got %v", stmt.Clauses)
	}
}

type baseRow struct {
	ID   int
	Name string
}

func TestBaseTransaction_RollsBackOnError(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:base_tx?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&baseRow{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	base := NewBase(db)

	boom := errors.New("boom")
	err = base.Transaction(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&baseRow{Name: "discarded"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected transaction error to propagate, got %v", err)
	}

	var count int64
	if err := db.Model(&baseRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to discard row, got %d", count)
	}

	if err := base.Transaction(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&baseRow{Name: "kept"}).Error
	}); err != nil {
		t.Fatalf("unexpected commit error: %v", err)
	}
	if err := db.Model(&baseRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected committed row, got %d", count)
	}
}
