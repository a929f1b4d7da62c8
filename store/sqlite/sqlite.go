/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements retail.TxStore using SQLite. In production, the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

TRANSACTION SCOPE:
  WithTx hands the caller a retail.Store bound to one *sql.Tx with
  rollback deferred. Commit happens only when the callback returns nil,
  so a checkout either lands every row or none. All row-level helpers
  run against a dbtx interface satisfied by both *sql.DB and *sql.Tx.

CONDITIONAL WRITES:
  Stock deduction is a single guarded UPDATE:
    UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?
  The affected-row count is the concurrency control: no lock is taken,
  correctness relies on the database's atomic read-modify-write per row.
  CHECK constraints on stock and balance back the guards up at the
  schema level.

APPEND-ONLY ENFORCEMENT:
  balance_entries has no UPDATE or DELETE statements anywhere in this
  package. Corrections happen via REFUND entries.

KEY TABLES:
  products:            Catalog rows with guarded stock quantity
  customers:           Profiles with guarded stored balance
  balance_entries:     Immutable balance history (before/after snapshots)
  sales, sale_items:   Sale headers and denormalized line items
  accounting_entries:  Income/expense ledger
  consumption_records: Per-customer activity history

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/retail.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  checkout := retail.NewCheckoutService(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - retail/store.go: Interface definitions
  - retail/checkout.go: The orchestrator driving WithTx
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/oakmart/retail-engine/retail"
)

// Store implements retail.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps :memory: databases coherent and avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price INTEGER NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		image_url TEXT,
		description TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT,
		member_level INTEGER NOT NULL DEFAULT 0,
		balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
		pet_name TEXT,
		pet_type TEXT,
		breed TEXT,
		age INTEGER,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Append-only balance history. No UPDATE or DELETE, ever.
	CREATE TABLE IF NOT EXISTS balance_entries (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount INTEGER NOT NULL CHECK (amount > 0),
		balance_before INTEGER NOT NULL,
		balance_after INTEGER NOT NULL,
		description TEXT,
		operator_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_balance_entries_customer
		ON balance_entries(customer_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		customer_id TEXT,
		customer_name TEXT NOT NULL,
		total_amount INTEGER NOT NULL,
		sale_date TEXT NOT NULL,
		paid_with_balance INTEGER NOT NULL DEFAULT 0,
		posted_to_accounting INTEGER NOT NULL DEFAULT 0,
		accounting_entry_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(sale_date);
	CREATE INDEX IF NOT EXISTS idx_sales_customer ON sales(customer_id);

	CREATE TABLE IF NOT EXISTS sale_items (
		id TEXT PRIMARY KEY,
		sale_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price INTEGER NOT NULL,
		subtotal INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id);
	CREATE INDEX IF NOT EXISTS idx_sale_items_product ON sale_items(product_id);

	CREATE TABLE IF NOT EXISTS accounting_entries (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		amount INTEGER NOT NULL,
		description TEXT,
		entry_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounting_date ON accounting_entries(entry_date);
	CREATE INDEX IF NOT EXISTS idx_accounting_kind ON accounting_entries(kind);

	CREATE TABLE IF NOT EXISTS consumption_records (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		sale_id TEXT,
		record_date TEXT NOT NULL,
		item TEXT NOT NULL,
		amount INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_consumption_customer
		ON consumption_records(customer_id, record_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so every row-level
// helper works inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// TRANSACTIONAL SCOPE (retail.TxStore)
// =============================================================================

// WithTx executes fn against a transactional view of the store.
// Rollback is deferred; commit happens only when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(retail.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore adapts one *sql.Tx to the retail.Store interface. It takes no
// locks: WithTx already holds the store mutex for the whole scope.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) InsertProduct(ctx context.Context, p *retail.Product) error {
	return insertProduct(ctx, ts.tx, p)
}

func (ts *txStore) GetProduct(ctx context.Context, id string) (*retail.Product, error) {
	return getProduct(ctx, ts.tx, id)
}

func (ts *txStore) ListProducts(ctx context.Context, search string, page retail.Page) (*retail.Paged[retail.Product], error) {
	return listProducts(ctx, ts.tx, search, page)
}

func (ts *txStore) UpdateProduct(ctx context.Context, p *retail.Product) error {
	return updateProduct(ctx, ts.tx, p)
}

func (ts *txStore) SetStock(ctx context.Context, id string, stock int) error {
	return setStock(ctx, ts.tx, id, stock)
}

func (ts *txStore) DeductStock(ctx context.Context, id string, qty int) (int64, error) {
	return deductStock(ctx, ts.tx, id, qty)
}

func (ts *txStore) DeleteProduct(ctx context.Context, id string) error {
	return deleteProduct(ctx, ts.tx, id)
}

func (ts *txStore) InsertCustomer(ctx context.Context, c *retail.Customer) error {
	return insertCustomer(ctx, ts.tx, c)
}

func (ts *txStore) GetCustomer(ctx context.Context, id string) (*retail.Customer, error) {
	return getCustomer(ctx, ts.tx, id)
}

func (ts *txStore) ListCustomers(ctx context.Context, search string, memberLevel *int, page retail.Page) (*retail.Paged[retail.Customer], error) {
	return listCustomers(ctx, ts.tx, search, memberLevel, page)
}

func (ts *txStore) UpdateCustomer(ctx context.Context, c *retail.Customer) error {
	return updateCustomer(ctx, ts.tx, c)
}

func (ts *txStore) DeleteCustomer(ctx context.Context, id string) error {
	return deleteCustomer(ctx, ts.tx, id)
}

func (ts *txStore) UpdateBalance(ctx context.Context, id string, balance retail.Cents) error {
	return updateBalance(ctx, ts.tx, id, balance)
}

func (ts *txStore) AppendBalanceEntry(ctx context.Context, e *retail.BalanceEntry) error {
	return appendBalanceEntry(ctx, ts.tx, e)
}

func (ts *txStore) BalanceHistory(ctx context.Context, customerID string, page retail.Page) (*retail.Paged[retail.BalanceEntry], error) {
	return balanceHistory(ctx, ts.tx, customerID, page)
}

func (ts *txStore) InsertSale(ctx context.Context, sale *retail.Sale) error {
	return insertSale(ctx, ts.tx, sale)
}

func (ts *txStore) InsertSaleItem(ctx context.Context, item *retail.SaleLineItem) error {
	return insertSaleItem(ctx, ts.tx, item)
}

func (ts *txStore) AttachAccountingEntry(ctx context.Context, saleID, entryID string) error {
	return attachAccountingEntry(ctx, ts.tx, saleID, entryID)
}

func (ts *txStore) GetSaleWithItems(ctx context.Context, id string) (*retail.Sale, error) {
	return getSaleWithItems(ctx, ts.tx, id)
}

func (ts *txStore) ListSales(ctx context.Context, r retail.DateRange, page retail.Page) (*retail.Paged[retail.Sale], error) {
	return listSales(ctx, ts.tx, r, page)
}

func (ts *txStore) InsertAccountingEntry(ctx context.Context, e *retail.AccountingEntry) error {
	return insertAccountingEntry(ctx, ts.tx, e)
}

func (ts *txStore) GetAccountingEntry(ctx context.Context, id string) (*retail.AccountingEntry, error) {
	return getAccountingEntry(ctx, ts.tx, id)
}

func (ts *txStore) ListAccountingEntries(ctx context.Context, f retail.AccountingFilter, page retail.Page) (*retail.Paged[retail.AccountingEntry], error) {
	return listAccountingEntries(ctx, ts.tx, f, page)
}

func (ts *txStore) UpdateAccountingEntry(ctx context.Context, e *retail.AccountingEntry) error {
	return updateAccountingEntry(ctx, ts.tx, e)
}

func (ts *txStore) DeleteAccountingEntry(ctx context.Context, id string) error {
	return deleteAccountingEntry(ctx, ts.tx, id)
}

func (ts *txStore) Statistics(ctx context.Context, r retail.DateRange) (*retail.AccountingStatistics, error) {
	return statistics(ctx, ts.tx, r)
}

func (ts *txStore) MonthlyStatistics(ctx context.Context, year int) ([]retail.MonthlyStatistics, error) {
	return monthlyStatistics(ctx, ts.tx, year)
}

func (ts *txStore) InsertConsumptionRecord(ctx context.Context, rec *retail.ConsumptionRecord) error {
	return insertConsumptionRecord(ctx, ts.tx, rec)
}

func (ts *txStore) GetConsumptionRecord(ctx context.Context, id string) (*retail.ConsumptionRecord, error) {
	return getConsumptionRecord(ctx, ts.tx, id)
}

func (ts *txStore) ListConsumptionRecords(ctx context.Context, customerID string, r retail.DateRange, page retail.Page) (*retail.Paged[retail.ConsumptionRecord], error) {
	return listConsumptionRecords(ctx, ts.tx, customerID, r, page)
}

func (ts *txStore) DeleteConsumptionRecord(ctx context.Context, id string) error {
	return deleteConsumptionRecord(ctx, ts.tx, id)
}

// =============================================================================
// PRODUCT STORE (retail.ProductStore)
// =============================================================================

func (s *Store) InsertProduct(ctx context.Context, p *retail.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertProduct(ctx, s.db, p)
}

func (s *Store) GetProduct(ctx context.Context, id string) (*retail.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getProduct(ctx, s.db, id)
}

func (s *Store) ListProducts(ctx context.Context, search string, page retail.Page) (*retail.Paged[retail.Product], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listProducts(ctx, s.db, search, page)
}

func (s *Store) UpdateProduct(ctx context.Context, p *retail.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateProduct(ctx, s.db, p)
}

func (s *Store) SetStock(ctx context.Context, id string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setStock(ctx, s.db, id, stock)
}

func (s *Store) DeductStock(ctx context.Context, id string, qty int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deductStock(ctx, s.db, id, qty)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteProduct(ctx, s.db, id)
}

func insertProduct(ctx context.Context, db dbtx, p *retail.Product) error {
	fillID(&p.ID)
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	_, err := db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, stock, image_url, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, int64(p.Price), p.Stock, p.ImageURL, p.Description,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func getProduct(ctx context.Context, db dbtx, id string) (*retail.Product, error) {
	var (
		p                    retail.Product
		price                int64
		imageURL, desc       sql.NullString
		createdAt, updatedAt string
	)

	err := db.QueryRowContext(ctx, `
		SELECT id, name, price, stock, image_url, description, created_at, updated_at
		FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &price, &p.Stock, &imageURL, &desc, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, retail.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	p.Price = retail.Cents(price)
	p.ImageURL = imageURL.String
	p.Description = desc.String
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func listProducts(ctx context.Context, db dbtx, search string, page retail.Page) (*retail.Paged[retail.Product], error) {
	page = page.Normalize()

	where := ""
	args := []any{}
	if search != "" {
		where = "WHERE name LIKE ?"
		args = append(args, "%"+search+"%")
	}

	var total int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, name, price, stock, image_url, description, created_at, updated_at
		FROM products %s
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`, where)
	rows, err := db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []retail.Product
	for rows.Next() {
		var (
			p                    retail.Product
			price                int64
			imageURL, desc       sql.NullString
			createdAt, updatedAt string
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Stock, &imageURL, &desc, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.Price = retail.Cents(price)
		p.ImageURL = imageURL.String
		p.Description = desc.String
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &retail.Paged[retail.Product]{Items: products, Total: total, Page: page.Number, PageSize: page.Size}, nil
}

func updateProduct(ctx context.Context, db dbtx, p *retail.Product) error {
	p.UpdatedAt = now()

	result, err := db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, price = ?, stock = ?, image_url = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, int64(p.Price), p.Stock, p.ImageURL, p.Description,
		formatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return requireRow(result, retail.ErrProductNotFound)
}

func setStock(ctx context.Context, db dbtx, id string, stock int) error {
	result, err := db.ExecContext(ctx,
		"UPDATE products SET stock = ?, updated_at = ? WHERE id = ?",
		stock, formatTime(now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set stock: %w", err)
	}
	return requireRow(result, retail.ErrProductNotFound)
}

// deductStock is the conditional write guarding against overselling.
// Zero affected rows means the guard failed, not an error: the caller
// distinguishes "no such product" via a prior existence check.
func deductStock(ctx context.Context, db dbtx, id string, qty int) (int64, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - ?, updated_at = ?
		WHERE id = ? AND stock >= ?`,
		qty, formatTime(now()), id, qty,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to deduct stock: %w", err)
	}
	return result.RowsAffected()
}

func deleteProduct(ctx context.Context, db dbtx, id string) error {
	var refs int64
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sale_items WHERE product_id = ?", id,
	).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return retail.ErrProductInUse
	}

	result, err := db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(result, retail.ErrProductNotFound)
}

// =============================================================================
// CUSTOMER STORE (retail.CustomerStore)
// =============================================================================

func (s *Store) InsertCustomer(ctx context.Context, c *retail.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertCustomer(ctx, s.db, c)
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*retail.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCustomer(ctx, s.db, id)
}

func (s *Store) ListCustomers(ctx context.Context, search string, memberLevel *int, page retail.Page) (*retail.Paged[retail.Customer], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCustomers(ctx, s.db, search, memberLevel, page)
}

func (s *Store) UpdateCustomer(ctx context.Context, c *retail.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateCustomer(ctx, s.db, c)
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteCustomer(ctx, s.db, id)
}

func (s *Store) UpdateBalance(ctx context.Context, id string, balance retail.Cents) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateBalance(ctx, s.db, id, balance)
}

func (s *Store) AppendBalanceEntry(ctx context.Context, e *retail.BalanceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendBalanceEntry(ctx, s.db, e)
}

func (s *Store) BalanceHistory(ctx context.Context, customerID string, page retail.Page) (*retail.Paged[retail.BalanceEntry], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return balanceHistory(ctx, s.db, customerID, page)
}

func insertCustomer(ctx context.Context, db dbtx, c *retail.Customer) error {
	fillID(&c.ID)
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt

	_, err := db.ExecContext(ctx, `
		INSERT INTO customers
		(id, name, phone, member_level, balance, pet_name, pet_type, breed, age, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Phone, c.MemberLevel, int64(c.Balance),
		c.PetName, c.PetType, c.Breed, c.Age,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

func getCustomer(ctx context.Context, db dbtx, id string) (*retail.Customer, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, phone, member_level, balance, pet_name, pet_type, breed, age, created_at, updated_at
		FROM customers WHERE id = ?`, id)

	c, err := scanCustomer(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, retail.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}
	return c, nil
}

func scanCustomer(scan func(...any) error) (*retail.Customer, error) {
	var (
		c                              retail.Customer
		balance                        int64
		phone, petName, petType, breed sql.NullString
		age                            sql.NullInt64
		createdAt, updatedAt           string
	)
	err := scan(&c.ID, &c.Name, &phone, &c.MemberLevel, &balance,
		&petName, &petType, &breed, &age, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.Phone = phone.String
	c.Balance = retail.Cents(balance)
	c.PetName = petName.String
	c.PetType = petType.String
	c.Breed = breed.String
	c.Age = int(age.Int64)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func listCustomers(ctx context.Context, db dbtx, search string, memberLevel *int, page retail.Page) (*retail.Paged[retail.Customer], error) {
	page = page.Normalize()

	where := "WHERE 1=1"
	args := []any{}
	if search != "" {
		where += " AND (name LIKE ? OR phone LIKE ? OR pet_name LIKE ?)"
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if memberLevel != nil {
		where += " AND member_level = ?"
		args = append(args, *memberLevel)
	}

	var total int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers "+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, name, phone, member_level, balance, pet_name, pet_type, breed, age, created_at, updated_at
		FROM customers %s
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`, where)
	rows, err := db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []retail.Customer
	for rows.Next() {
		c, err := scanCustomer(rows.Scan)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &retail.Paged[retail.Customer]{Items: customers, Total: total, Page: page.Number, PageSize: page.Size}, nil
}

func updateCustomer(ctx context.Context, db dbtx, c *retail.Customer) error {
	c.UpdatedAt = now()

	// Balance is deliberately absent: it changes only through
	// UpdateBalance paired with a ledger entry.
	result, err := db.ExecContext(ctx, `
		UPDATE customers
		SET name = ?, phone = ?, member_level = ?, pet_name = ?, pet_type = ?, breed = ?, age = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Phone, c.MemberLevel, c.PetName, c.PetType, c.Breed, c.Age,
		formatTime(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return requireRow(result, retail.ErrCustomerNotFound)
}

func deleteCustomer(ctx context.Context, db dbtx, id string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(result, retail.ErrCustomerNotFound)
}

func updateBalance(ctx context.Context, db dbtx, id string, balance retail.Cents) error {
	result, err := db.ExecContext(ctx,
		"UPDATE customers SET balance = ?, updated_at = ? WHERE id = ?",
		int64(balance), formatTime(now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return requireRow(result, retail.ErrCustomerNotFound)
}

func appendBalanceEntry(ctx context.Context, db dbtx, e *retail.BalanceEntry) error {
	fillID(&e.ID)
	e.CreatedAt = now()

	_, err := db.ExecContext(ctx, `
		INSERT INTO balance_entries
		(id, customer_id, kind, amount, balance_before, balance_after, description, operator_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CustomerID, string(e.Kind), int64(e.Amount),
		int64(e.BalanceBefore), int64(e.BalanceAfter),
		e.Description, e.OperatorID, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append balance entry: %w", err)
	}
	return nil
}

func balanceHistory(ctx context.Context, db dbtx, customerID string, page retail.Page) (*retail.Paged[retail.BalanceEntry], error) {
	page = page.Normalize()

	var total int64
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM balance_entries WHERE customer_id = ?", customerID,
	).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, customer_id, kind, amount, balance_before, balance_after, description, operator_id, created_at
		FROM balance_entries
		WHERE customer_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`,
		customerID, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []retail.BalanceEntry
	for rows.Next() {
		var (
			e                     retail.BalanceEntry
			kind                  string
			amount, before, after int64
			desc, operator        sql.NullString
			createdAt             string
		)
		if err := rows.Scan(&e.ID, &e.CustomerID, &kind, &amount, &before, &after, &desc, &operator, &createdAt); err != nil {
			return nil, err
		}
		e.Kind = retail.BalanceEntryKind(kind)
		e.Amount = retail.Cents(amount)
		e.BalanceBefore = retail.Cents(before)
		e.BalanceAfter = retail.Cents(after)
		e.Description = desc.String
		e.OperatorID = operator.String
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &retail.Paged[retail.BalanceEntry]{Items: entries, Total: total, Page: page.Number, PageSize: page.Size}, nil
}

// =============================================================================
// SALE STORE (retail.SaleStore)
// =============================================================================

func (s *Store) InsertSale(ctx context.Context, sale *retail.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertSale(ctx, s.db, sale)
}

func (s *Store) InsertSaleItem(ctx context.Context, item *retail.SaleLineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertSaleItem(ctx, s.db, item)
}

func (s *Store) AttachAccountingEntry(ctx context.Context, saleID, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return attachAccountingEntry(ctx, s.db, saleID, entryID)
}

func (s *Store) GetSaleWithItems(ctx context.Context, id string) (*retail.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSaleWithItems(ctx, s.db, id)
}

func (s *Store) ListSales(ctx context.Context, r retail.DateRange, page retail.Page) (*retail.Paged[retail.Sale], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listSales(ctx, s.db, r, page)
}

func insertSale(ctx context.Context, db dbtx, sale *retail.Sale) error {
	fillID(&sale.ID)
	sale.CreatedAt = now()

	_, err := db.ExecContext(ctx, `
		INSERT INTO sales
		(id, customer_id, customer_name, total_amount, sale_date, paid_with_balance, posted_to_accounting, accounting_entry_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, nullString(sale.CustomerID), sale.CustomerName,
		int64(sale.TotalAmount), sale.SaleDate,
		sale.PaidWithBalance, sale.PostedToAccounting,
		nullString(sale.AccountingEntryID), formatTime(sale.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

func insertSaleItem(ctx context.Context, db dbtx, item *retail.SaleLineItem) error {
	fillID(&item.ID)
	item.CreatedAt = now()

	_, err := db.ExecContext(ctx, `
		INSERT INTO sale_items
		(id, sale_id, product_id, product_name, quantity, unit_price, subtotal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.SaleID, item.ProductID, item.ProductName,
		item.Quantity, int64(item.UnitPrice), int64(item.Subtotal),
		formatTime(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sale item: %w", err)
	}
	return nil
}

func attachAccountingEntry(ctx context.Context, db dbtx, saleID, entryID string) error {
	result, err := db.ExecContext(ctx, `
		UPDATE sales
		SET accounting_entry_id = ?, posted_to_accounting = 1
		WHERE id = ?`,
		entryID, saleID,
	)
	if err != nil {
		return fmt.Errorf("failed to attach accounting entry: %w", err)
	}
	return requireRow(result, retail.ErrSaleNotFound)
}

// getSaleWithItems fetches the header and its items in one call, never
// item-by-item. Items come back in insertion order.
func getSaleWithItems(ctx context.Context, db dbtx, id string) (*retail.Sale, error) {
	sale, err := scanSaleRow(db.QueryRowContext(ctx, `
		SELECT id, customer_id, customer_name, total_amount, sale_date,
		       paid_with_balance, posted_to_accounting, accounting_entry_id, created_at
		FROM sales WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, subtotal, created_at
		FROM sale_items
		WHERE sale_id = ?
		ORDER BY rowid ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item                retail.SaleLineItem
			unitPrice, subtotal int64
			createdAt           string
		)
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName,
			&item.Quantity, &unitPrice, &subtotal, &createdAt); err != nil {
			return nil, err
		}
		item.UnitPrice = retail.Cents(unitPrice)
		item.Subtotal = retail.Cents(subtotal)
		item.CreatedAt = parseTime(createdAt)
		sale.Items = append(sale.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sale, nil
}

func scanSaleRow(row *sql.Row) (*retail.Sale, error) {
	var (
		sale                     retail.Sale
		customerID, accountingID sql.NullString
		total                    int64
		createdAt                string
	)
	err := row.Scan(&sale.ID, &customerID, &sale.CustomerName, &total, &sale.SaleDate,
		&sale.PaidWithBalance, &sale.PostedToAccounting, &accountingID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, retail.ErrSaleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sale: %w", err)
	}

	sale.CustomerID = customerID.String
	sale.TotalAmount = retail.Cents(total)
	sale.AccountingEntryID = accountingID.String
	sale.CreatedAt = parseTime(createdAt)
	return &sale, nil
}

func listSales(ctx context.Context, db dbtx, r retail.DateRange, page retail.Page) (*retail.Paged[retail.Sale], error) {
	page = page.Normalize()

	where := "WHERE 1=1"
	args := []any{}
	if r.Start != "" {
		where += " AND sale_date >= ?"
		args = append(args, r.Start)
	}
	if r.End != "" {
		where += " AND sale_date <= ?"
		args = append(args, r.End)
	}

	var total int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales "+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, customer_id, customer_name, total_amount, sale_date,
		       paid_with_balance, posted_to_accounting, accounting_entry_id, created_at
		FROM sales %s
		ORDER BY sale_date DESC, created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`, where)
	rows, err := db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []retail.Sale
	for rows.Next() {
		var (
			sale                     retail.Sale
			customerID, accountingID sql.NullString
			totalAmount              int64
			createdAt                string
		)
		if err := rows.Scan(&sale.ID, &customerID, &sale.CustomerName, &totalAmount, &sale.SaleDate,
			&sale.PaidWithBalance, &sale.PostedToAccounting, &accountingID, &createdAt); err != nil {
			return nil, err
		}
		sale.CustomerID = customerID.String
		sale.TotalAmount = retail.Cents(totalAmount)
		sale.AccountingEntryID = accountingID.String
		sale.CreatedAt = parseTime(createdAt)
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &retail.Paged[retail.Sale]{Items: sales, Total: total, Page: page.Number, PageSize: page.Size}, nil
}

// =============================================================================
// ACCOUNTING STORE (retail.AccountingStore)
// =============================================================================

func (s *Store) InsertAccountingEntry(ctx context.Context, e *retail.AccountingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertAccountingEntry(ctx, s.db, e)
}

func (s *Store) GetAccountingEntry(ctx context.Context, id string) (*retail.AccountingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAccountingEntry(ctx, s.db, id)
}

func (s *Store) ListAccountingEntries(ctx context.Context, f retail.AccountingFilter, page retail.Page) (*retail.Paged[retail.AccountingEntry], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listAccountingEntries(ctx, s.db, f, page)
}

func (s *Store) UpdateAccountingEntry(ctx context.Context, e *retail.AccountingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAccountingEntry(ctx, s.db, e)
}

func (s *Store) DeleteAccountingEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteAccountingEntry(ctx, s.db, id)
}

func (s *Store) Statistics(ctx context.Context, r retail.DateRange) (*retail.AccountingStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return statistics(ctx, s.db, r)
}

func (s *Store) MonthlyStatistics(ctx context.Context, year int) ([]retail.MonthlyStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return monthlyStatistics(ctx, s.db, year)
}

func insertAccountingEntry(ctx context.Context, db dbtx, e *retail.AccountingEntry) error {
	fillID(&e.ID)
	e.CreatedAt = now()

	_, err := db.ExecContext(ctx, `
		INSERT INTO accounting_entries (id, kind, amount, description, entry_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), int64(e.Amount), e.Description, e.Date, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert accounting entry: %w", err)
	}
	return nil
}

func getAccountingEntry(ctx context.Context, db dbtx, id string) (*retail.AccountingEntry, error) {
	var (
		e         retail.AccountingEntry
		kind      string
		amount    int64
		desc      sql.NullString
		createdAt string
	)

	err := db.QueryRowContext(ctx, `
		SELECT id, kind, amount, description, entry_date, created_at
		FROM accounting_entries WHERE id = ?`, id,
	).Scan(&e.ID, &kind, &amount, &desc, &e.Date, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, retail.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query accounting entry: %w", err)
	}

	e.Kind = retail.AccountingEntryKind(kind)
	e.Amount = retail.Cents(amount)
	e.Description = desc.String
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

func listAccountingEntries(ctx context.Context, db dbtx, f retail.AccountingFilter, page retail.Page) (*retail.Paged[retail.AccountingEntry], error) {
	page = page.Normalize()

	where := "WHERE 1=1"
	args := []any{}
	if f.Kind != "" {
		where += " AND kind = ?"
		args = append(args, string(f.Kind))
	}
	if f.Range.Start != "" {
		where += " AND entry_date >= ?"
		args = append(args, f.Range.Start)
	}
	if f.Range.End != "" {
		where += " AND entry_date <= ?"
		args = append(args, f.Range.End)
	}
	if f.Search != "" {
		where += " AND description LIKE ?"
		args = append(args, "%"+f.Search+"%")
	}

	var total int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounting_entries "+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, kind, amount, description, entry_date, created_at
		FROM accounting_entries %s
		ORDER BY entry_date DESC, created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`, where)
	rows, err := db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []retail.AccountingEntry
	for rows.Next() {
		var (
			e         retail.AccountingEntry
			kind      string
			amount    int64
			desc      sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &kind, &amount, &desc, &e.Date, &createdAt); err != nil {
			return nil, err
		}
		e.Kind = retail.AccountingEntryKind(kind)
		e.Amount = retail.Cents(amount)
		e.Description = desc.String
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &retail.Paged[retail.AccountingEntry]{Items: entries, Total: total, Page: page.Number, PageSize: page.Size}, nil
}

func updateAccountingEntry(ctx context.Context, db dbtx, e *retail.AccountingEntry) error {
	result, err := db.ExecContext(ctx, `
		UPDATE accounting_entries
		SET kind = ?, amount = ?, description = ?, entry_date = ?
		WHERE id = ?`,
		string(e.Kind), int64(e.Amount), e.Description, e.Date, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update accounting entry: %w", err)
	}
	return requireRow(result, retail.ErrRecordNotFound)
}

func deleteAccountingEntry(ctx context.Context, db dbtx, id string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM accounting_entries WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(result, retail.ErrRecordNotFound)
}

func statistics(ctx context.Context, db dbtx, r retail.DateRange) (*retail.AccountingStatistics, error) {
	where := "WHERE 1=1"
	args := []any{}
	if r.Start != "" {
		where += " AND entry_date >= ?"
		args = append(args, r.Start)
	}
	if r.End != "" {
		where += " AND entry_date <= ?"
		args = append(args, r.End)
	}

	query := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'income' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN 1 ELSE 0 END), 0)
		FROM accounting_entries %s`, where)

	var stats retail.AccountingStatistics
	var income, expense int64
	err := db.QueryRowContext(ctx, query, args...).Scan(&income, &expense, &stats.IncomeCount, &stats.ExpenseCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}

	stats.TotalIncome = retail.Cents(income)
	stats.TotalExpense = retail.Cents(expense)
	stats.NetIncome = stats.TotalIncome - stats.TotalExpense
	return &stats, nil
}

func monthlyStatistics(ctx context.Context, db dbtx, year int) ([]retail.MonthlyStatistics, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT CAST(strftime('%m', entry_date) AS INTEGER),
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount ELSE 0 END), 0)
		FROM accounting_entries
		WHERE strftime('%Y', entry_date) = ?
		GROUP BY strftime('%m', entry_date)
		ORDER BY 1 ASC`,
		fmt.Sprintf("%d", year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var months []retail.MonthlyStatistics
	for rows.Next() {
		var m retail.MonthlyStatistics
		var income, expense int64
		if err := rows.Scan(&m.Month, &income, &expense); err != nil {
			return nil, err
		}
		m.Income = retail.Cents(income)
		m.Expense = retail.Cents(expense)
		months = append(months, m)
	}
	return months, rows.Err()
}

// =============================================================================
// CONSUMPTION STORE (retail.ConsumptionStore)
// =============================================================================

func (s *Store) InsertConsumptionRecord(ctx context.Context, rec *retail.ConsumptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertConsumptionRecord(ctx, s.db, rec)
}

func (s *Store) GetConsumptionRecord(ctx context.Context, id string) (*retail.ConsumptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getConsumptionRecord(ctx, s.db, id)
}

func (s *Store) ListConsumptionRecords(ctx context.Context, customerID string, r retail.DateRange, page retail.Page) (*retail.Paged[retail.ConsumptionRecord], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listConsumptionRecords(ctx, s.db, customerID, r, page)
}

func (s *Store) DeleteConsumptionRecord(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteConsumptionRecord(ctx, s.db, id)
}

func insertConsumptionRecord(ctx context.Context, db dbtx, rec *retail.ConsumptionRecord) error {
	fillID(&rec.ID)
	rec.CreatedAt = now()

	_, err := db.ExecContext(ctx, `
		INSERT INTO consumption_records (id, customer_id, sale_id, record_date, item, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CustomerID, nullString(rec.SaleID), rec.Date, rec.Item,
		int64(rec.Amount), formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert consumption record: %w", err)
	}
	return nil
}

func getConsumptionRecord(ctx context.Context, db dbtx, id string) (*retail.ConsumptionRecord, error) {
	var (
		rec       retail.ConsumptionRecord
		saleID    sql.NullString
		amount    int64
		createdAt string
	)

	err := db.QueryRowContext(ctx, `
		SELECT id, customer_id, sale_id, record_date, item, amount, created_at
		FROM consumption_records WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.CustomerID, &saleID, &rec.Date, &rec.Item, &amount, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, retail.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query consumption record: %w", err)
	}

	rec.SaleID = saleID.String
	rec.Amount = retail.Cents(amount)
	rec.CreatedAt = parseTime(createdAt)
	return &rec, nil
}

func listConsumptionRecords(ctx context.Context, db dbtx, customerID string, r retail.DateRange, page retail.Page) (*retail.Paged[retail.ConsumptionRecord], error) {
	page = page.Normalize()

	where := "WHERE customer_id = ?"
	args := []any{customerID}
	if r.Start != "" {
		where += " AND record_date >= ?"
		args = append(args, r.Start)
	}
	if r.End != "" {
		where += " AND record_date <= ?"
		args = append(args, r.End)
	}

	var total int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM consumption_records "+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, customer_id, sale_id, record_date, item, amount, created_at
		FROM consumption_records %s
		ORDER BY record_date DESC, created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`, where)
	rows, err := db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []retail.ConsumptionRecord
	for rows.Next() {
		var (
			rec       retail.ConsumptionRecord
			saleID    sql.NullString
			amount    int64
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.CustomerID, &saleID, &rec.Date, &rec.Item, &amount, &createdAt); err != nil {
			return nil, err
		}
		rec.SaleID = saleID.String
		rec.Amount = retail.Cents(amount)
		rec.CreatedAt = parseTime(createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &retail.Paged[retail.ConsumptionRecord]{Items: records, Total: total, Page: page.Number, PageSize: page.Size}, nil
}

func deleteConsumptionRecord(ctx context.Context, db dbtx, id string) error {
	result, err := db.ExecContext(ctx, "DELETE FROM consumption_records WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(result, retail.ErrRecordNotFound)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"sale_items", "sales", "balance_entries", "consumption_records",
		"accounting_entries", "customers", "products",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func fillID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func requireRow(result sql.Result, missing error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return missing
	}
	return nil
}
