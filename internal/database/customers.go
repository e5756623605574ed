package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mta/internal/domain"
	"mta/internal/models"
)

const customerColumns = `id, first_name, last_name, birth_date, email, phone, national_id, created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (*models.Customer, error) {
	var c models.Customer
	var birth sql.NullString
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &birth, &c.Email, &c.Phone, &c.NationalID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if birth.Valid && birth.String != "" {
		d, err := models.ParseDate(birth.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse birth date %s: %w", birth.String, err)
		}
		c.BirthDate = &d
	}
	return &c, nil
}

func birthDateValue(c *models.Customer) interface{} {
	if c.BirthDate == nil {
		return nil
	}
	return models.FormatDate(*c.BirthDate)
}

func (db *DB) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
              ORDER BY first_name COLLATE NOCASE, last_name COLLATE NOCASE, id`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (db *DB) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return getCustomer(ctx, db, id)
}

func getCustomer(ctx context.Context, q queryer, id int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`
	c, err := scanCustomer(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %d: %w", id, translateError(err))
	}
	return c, nil
}

func (db *DB) CreateCustomer(ctx context.Context, c *models.Customer) error {
	query := `INSERT INTO customers (first_name, last_name, birth_date, email, phone, national_id, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		c.FirstName,
		c.LastName,
		birthDateValue(c),
		c.Email,
		c.Phone,
		c.NationalID,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

func (db *DB) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	query := `UPDATE customers SET first_name = ?, last_name = ?, birth_date = ?, email = ?, phone = ?,
              national_id = ?, updated_at = ? WHERE id = ?`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		c.FirstName, c.LastName, birthDateValue(c), c.Email, c.Phone, c.NationalID, now, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", translateError(err))
	}
	if err := requireAffected(result, "update customer", c.ID); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

// DeleteCustomer removes a customer without bookings.
func (db *DB) DeleteCustomer(ctx context.Context, id int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getCustomer(ctx, tx, id); err != nil {
			return err
		}

		var refs int64
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE customer_id = ?`, id).Scan(&refs)
		if err != nil {
			return fmt.Errorf("failed to count customer bookings: %w", err)
		}
		if refs > 0 {
			return fmt.Errorf("customer %d has %d bookings: %w", id, refs, domain.ErrInUse)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete customer: %w", translateError(err))
		}
		return nil
	})
}
