package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"mfgtrack/internal/config"
	"mfgtrack/internal/infrastructure/database"
	"mfgtrack/internal/infrastructure/mysql"
	"mfgtrack/internal/infrastructure/sqlite"
)

// SetupTestDB returns a fresh in-memory SQLite database with the schema
// applied. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.NewConnection(ctx, "file:"+uuid.NewString()+"?mode=memory")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.EnsureSchema(ctx, db, config.DriverSQLite); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return db
}

// SetupMySQLTestDB connects to the database named by MFGTRACK_TEST_MYSQL_HOST
// (user root, database mfgtrack_test) and skips the test when none is
// reachable.
func SetupMySQLTestDB(t *testing.T) *sql.DB {
	t.Helper()

	host := os.Getenv("MFGTRACK_TEST_MYSQL_HOST")
	if host == "" {
		t.Skip("MFGTRACK_TEST_MYSQL_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := mysql.NewConnection(ctx, config.DatabaseConfig{
		Driver:       config.DriverMySQL,
		Host:         host,
		Port:         3306,
		User:         "root",
		Name:         "mfgtrack_test",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.EnsureSchema(ctx, db, config.DriverMySQL); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	for _, table := range []string{"order_payments", "order_status_history", "orders", "products", "product_families", "customers"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	return db
}

// InsertCustomer adds a minimal customer row and returns its id.
func InsertCustomer(t *testing.T, db *sql.DB, name string) int {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO customers (name, company, contact_person, email, phone, address, is_active, created_at)
		 VALUES (?, '', '', '', '', '', 1, ?)`,
		name, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("failed to insert customer: %v", err)
	}
	return lastID(t, res)
}

// InsertFamily adds a product family and returns its id.
func InsertFamily(t *testing.T, db *sql.DB, name string) int {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO product_families (name, description, created_at) VALUES (?, '', ?)`,
		name, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("failed to insert family: %v", err)
	}
	return lastID(t, res)
}

// InsertProduct adds a product, optionally in a family (familyID 0 for none).
func InsertProduct(t *testing.T, db *sql.DB, name string, familyID int) int {
	t.Helper()
	var family interface{}
	if familyID > 0 {
		family = familyID
	}
	res, err := db.Exec(
		`INSERT INTO products (name, code, description, family_id, tags, base_price, production_time_days, is_active, created_at)
		 VALUES (?, NULL, '', ?, '', '0', 0, 1, ?)`,
		name, family, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}
	return lastID(t, res)
}

func lastID(t *testing.T, res sql.Result) int {
	t.Helper()
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read insert id: %v", err)
	}
	return int(id)
}
