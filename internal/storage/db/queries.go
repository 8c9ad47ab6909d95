package db

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// DBTX is satisfied by both [sql.DB] and [sql.Tx].
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the statements used by the storage package. Statements are
// written with ? placeholders and rebound for the active dialect.
type Queries struct {
	db      DBTX
	dialect Dialect
}

// New wraps a handle opened with the given dialect.
func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

// WithTx returns a copy of the queries bound to the transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

func (q *Queries) rebind(query string) string {
	if q.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.rebind(query), args...)
}

func (q *Queries) row(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.rebind(query), args...)
}

func (q *Queries) rows(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.rebind(query), args...)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const getUser = `SELECT id, name, email, role, password_hash FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id uint64) (User, error) {
	var u User
	err := q.row(ctx, getUser, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash)
	return u, err
}

const getUserByName = `SELECT id, name, email, role, password_hash FROM users WHERE name = ?`

func (q *Queries) GetUserByName(ctx context.Context, name string) (User, error) {
	var u User
	err := q.row(ctx, getUserByName, name).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash)
	return u, err
}

const getUsers = `SELECT id, name, email, role, password_hash FROM users ORDER BY name`

func (q *Queries) GetUsers(ctx context.Context) ([]User, error) {
	rows, err := q.rows(ctx, getUsers)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const upsertUser = `INSERT INTO users (id, name, email, role, password_hash)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    email = excluded.email,
    role = excluded.role,
    password_hash = excluded.password_hash`

func (q *Queries) UpsertUser(ctx context.Context, u User) error {
	_, err := q.exec(ctx, upsertUser, u.ID, u.Name, u.Email, u.Role, u.PasswordHash)
	return err
}

const createSession = `INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`

func (q *Queries) CreateSession(ctx context.Context, s Session) error {
	_, err := q.exec(ctx, createSession, s.Token, s.UserID, s.ExpiresAt)
	return err
}

const getSession = `SELECT token, user_id, expires_at FROM sessions WHERE token = ?`

func (q *Queries) GetSession(ctx context.Context, token string) (Session, error) {
	var s Session
	err := q.row(ctx, getSession, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt)
	return s, err
}

const deleteSession = `DELETE FROM sessions WHERE token = ?`

func (q *Queries) DeleteSession(ctx context.Context, token string) error {
	_, err := q.exec(ctx, deleteSession, token)
	return err
}

const deleteExpiredSessions = `DELETE FROM sessions WHERE expires_at < ?`

func (q *Queries) DeleteExpiredSessions(ctx context.Context, now int64) error {
	_, err := q.exec(ctx, deleteExpiredSessions, now)
	return err
}

const getOption = `SELECT name, value FROM options WHERE name = ?`

func (q *Queries) GetOption(ctx context.Context, name string) (Option, error) {
	var o Option
	err := q.row(ctx, getOption, name).Scan(&o.Name, &o.Value)
	return o, err
}

const upsertOption = `INSERT INTO options (name, value) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET value = excluded.value`

func (q *Queries) UpsertOption(ctx context.Context, o Option) error {
	_, err := q.exec(ctx, upsertOption, o.Name, o.Value)
	return err
}

const deleteOption = `DELETE FROM options WHERE name = ?`

func (q *Queries) DeleteOption(ctx context.Context, name string) error {
	_, err := q.exec(ctx, deleteOption, name)
	return err
}

const getUserMeta = `SELECT user_id, meta_key, meta_value FROM usermeta WHERE user_id = ? AND meta_key = ?`

func (q *Queries) GetUserMeta(ctx context.Context, userID uint64, key string) (UserMeta, error) {
	var m UserMeta
	err := q.row(ctx, getUserMeta, userID, key).Scan(&m.UserID, &m.Key, &m.Value)
	return m, err
}

const upsertUserMeta = `INSERT INTO usermeta (user_id, meta_key, meta_value) VALUES (?, ?, ?)
ON CONFLICT (user_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`

func (q *Queries) UpsertUserMeta(ctx context.Context, m UserMeta) error {
	_, err := q.exec(ctx, upsertUserMeta, m.UserID, m.Key, m.Value)
	return err
}

const deleteUserMeta = `DELETE FROM usermeta WHERE user_id = ? AND meta_key = ?`

func (q *Queries) DeleteUserMeta(ctx context.Context, userID uint64, key string) error {
	_, err := q.exec(ctx, deleteUserMeta, userID, key)
	return err
}

const getModules = `SELECT id, active FROM modules ORDER BY id`

func (q *Queries) GetModules(ctx context.Context) ([]Module, error) {
	rows, err := q.rows(ctx, getModules)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Module
	for rows.Next() {
		var (
			m      Module
			active int64
		)
		if err := rows.Scan(&m.ID, &active); err != nil {
			return nil, err
		}
		m.Active = active != 0
		items = append(items, m)
	}
	return items, rows.Err()
}

const upsertModule = `INSERT INTO modules (id, active) VALUES (?, ?)
ON CONFLICT (id) DO UPDATE SET active = excluded.active`

func (q *Queries) UpsertModule(ctx context.Context, m Module) error {
	_, err := q.exec(ctx, upsertModule, m.ID, boolInt(m.Active))
	return err
}

const createCoupon = `INSERT INTO coupons (id, code, amount, discount_type) VALUES (?, ?, ?, ?)`

func (q *Queries) CreateCoupon(ctx context.Context, c Coupon) error {
	_, err := q.exec(ctx, createCoupon, c.ID, c.Code, c.Amount, c.DiscountType)
	return err
}

const getCoupon = `SELECT id, code, amount, discount_type FROM coupons WHERE id = ?`

func (q *Queries) GetCoupon(ctx context.Context, id uint64) (Coupon, error) {
	var c Coupon
	err := q.row(ctx, getCoupon, id).Scan(&c.ID, &c.Code, &c.Amount, &c.DiscountType)
	return c, err
}

const getCouponByCode = `SELECT id, code, amount, discount_type FROM coupons WHERE code = ?`

func (q *Queries) GetCouponByCode(ctx context.Context, code string) (Coupon, error) {
	var c Coupon
	err := q.row(ctx, getCouponByCode, code).Scan(&c.ID, &c.Code, &c.Amount, &c.DiscountType)
	return c, err
}

const deleteCoupon = `DELETE FROM coupons WHERE id = ?`

func (q *Queries) DeleteCoupon(ctx context.Context, id uint64) (int64, error) {
	res, err := q.exec(ctx, deleteCoupon, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createTaxRate = `INSERT INTO tax_rates (id, country, rate, name, tax_class) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateTaxRate(ctx context.Context, r TaxRate) error {
	_, err := q.exec(ctx, createTaxRate, r.ID, r.Country, r.Rate, r.Name, r.TaxClass)
	return err
}

const getTaxRate = `SELECT id, country, rate, name, tax_class FROM tax_rates WHERE id = ?`

func (q *Queries) GetTaxRate(ctx context.Context, id uint64) (TaxRate, error) {
	var r TaxRate
	err := q.row(ctx, getTaxRate, id).Scan(&r.ID, &r.Country, &r.Rate, &r.Name, &r.TaxClass)
	return r, err
}

const deleteTaxRate = `DELETE FROM tax_rates WHERE id = ?`

func (q *Queries) DeleteTaxRate(ctx context.Context, id uint64) (int64, error) {
	res, err := q.exec(ctx, deleteTaxRate, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createWithdraw = `INSERT INTO withdraws (id, user_id, amount, method, status, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateWithdraw(ctx context.Context, w Withdraw) error {
	_, err := q.exec(ctx, createWithdraw, w.ID, w.UserID, w.Amount, w.Method, w.Status, w.CreatedAt)
	return err
}

const getWithdraws = `SELECT id, user_id, amount, method, status, created_at
FROM withdraws WHERE user_id = ? ORDER BY created_at DESC, id DESC`

func (q *Queries) GetWithdraws(ctx context.Context, userID uint64) ([]Withdraw, error) {
	rows, err := q.rows(ctx, getWithdraws, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []Withdraw
	for rows.Next() {
		var w Withdraw
		if err := rows.Scan(&w.ID, &w.UserID, &w.Amount, &w.Method, &w.Status, &w.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}
