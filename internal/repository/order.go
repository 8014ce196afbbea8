package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bodegamx/storefront/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (buyer_id, total) VALUES ($1, $2) RETURNING id, created_at`

	insertOrderLineSQL = `INSERT INTO order_lines (order_id, product_id, product_name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	findAffiliateByCodeSQL = `SELECT id FROM users WHERE referral_code = $1 AND is_affiliate`

	insertCommissionSQL = `INSERT INTO commissions (affiliate_id, product_id, amount, created_at)
		VALUES ($1, $2, $3, now())`

	listOpenOrdersSQL = `SELECT o.id, u.first_name, o.total, o.created_at,
			l.product_name, l.unit_price, l.quantity
		FROM orders o
		JOIN users u ON u.id = o.buyer_id
		JOIN order_lines l ON l.order_id = o.id
		ORDER BY o.created_at DESC, o.id, l.id`

	archiveOrderSQL = `INSERT INTO delivered_orders (order_id, buyer_id, total, lines, ordered_at)
		SELECT o.id, o.buyer_id, o.total,
			COALESCE(jsonb_agg(jsonb_build_object(
				'product', l.product_name,
				'price', l.unit_price,
				'quantity', l.quantity
			)), '[]'::jsonb),
			o.created_at
		FROM orders o
		LEFT JOIN order_lines l ON l.order_id = o.id
		WHERE o.id = $1
		GROUP BY o.id`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header, every line, and, when referralCode
// resolves to an affiliate, one commission record per line, all in one
// transaction. pgx.BeginFunc rolls back on any returned error or panic, so
// no partial order is ever visible. A referral code matching no affiliate
// (exact, case-sensitive comparison) accrues nothing and is not an error.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, referralCode string) (int64, error) {
	var id int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertOrderSQL, o.BuyerID, o.Total).Scan(&id, &o.CreatedAt); err != nil {
			return errors.Wrap(err, "insert order")
		}

		for _, l := range o.Lines {
			_, err := tx.Exec(ctx, insertOrderLineSQL, id, l.ProductID, l.ProductName, l.UnitPrice, l.Quantity)
			if err != nil {
				return errors.Wrapf(err, "insert line for product %d", l.ProductID)
			}
		}

		if referralCode == "" {
			return nil
		}

		var affiliateID int64
		err := tx.QueryRow(ctx, findAffiliateByCodeSQL, referralCode).Scan(&affiliateID)
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown code: the order still goes through, without accrual.
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "resolve referral code")
		}

		for _, l := range o.Lines {
			if _, err := tx.Exec(ctx, insertCommissionSQL, affiliateID, l.ProductID, l.Commission); err != nil {
				return errors.Wrapf(err, "insert commission for product %d", l.ProductID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("creating order for buyer %d: %w", o.BuyerID, err)
	}

	o.ID = id
	return id, nil
}

// ListOpen returns all undelivered orders with their lines and buyer names,
// newest first. Rows arrive line-by-line and are grouped here rather than
// with a json_agg projection, keeping the scan decimal-typed.
func (r *OrderRepository) ListOpen(ctx context.Context) ([]order.Summary, error) {
	rows, err := r.pool.Query(ctx, listOpenOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing open orders: %w", err)
	}
	defer rows.Close()

	var (
		summaries []order.Summary
		current   *order.Summary
	)
	for rows.Next() {
		var (
			id        int64
			buyerName string
			total     decimal.Decimal
			createdAt time.Time
			line      order.SummaryLine
		)
		if err := rows.Scan(&id, &buyerName, &total, &createdAt,
			&line.ProductName, &line.UnitPrice, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}

		if current == nil || current.ID != id {
			summaries = append(summaries, order.Summary{
				ID:        id,
				BuyerName: buyerName,
				Total:     total,
				CreatedAt: createdAt,
			})
			current = &summaries[len(summaries)-1]
		}
		current.Lines = append(current.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing open orders: %w", err)
	}

	return summaries, nil
}

// MarkDelivered archives the order with a JSONB snapshot of its lines and
// deletes the live rows (lines cascade), atomically. Returns order.ErrNotFound
// when the order does not exist.
func (r *OrderRepository) MarkDelivered(ctx context.Context, orderID int64) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, archiveOrderSQL, orderID)
		if err != nil {
			return errors.Wrap(err, "archive order")
		}
		if ct.RowsAffected() == 0 {
			return order.ErrNotFound
		}

		if _, err := tx.Exec(ctx, deleteOrderSQL, orderID); err != nil {
			return errors.Wrap(err, "delete order")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.ErrNotFound
		}
		return fmt.Errorf("marking order %d delivered: %w", orderID, err)
	}
	return nil
}
