package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/edjordao11/site/internal/models"
)

var ErrPurchaseNotFound = errors.New("purchase not found")

// PurchaseRepo handles durable entitlement records. The unique index
// on transaction_id makes Create safe to call twice for the same
// provider callback.
type PurchaseRepo struct{}

// NewPurchaseRepo creates a new purchase repository
func NewPurchaseRepo() *PurchaseRepo {
	return &PurchaseRepo{}
}

// Create records a completed purchase. If a record for the same
// provider transaction already exists, the existing record is
// returned and no new row is written.
func (r *PurchaseRepo) Create(p *models.Purchase) (*models.Purchase, error) {
	result, err := DB.Exec(`
		INSERT INTO purchases (buyer_id, video_id, price, currency, provider, transaction_id, display_name, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.BuyerID, p.VideoID, p.Price.String(), p.Currency, p.Provider,
		p.TransactionID, p.DisplayName, p.CompletedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return r.GetByTransactionID(p.TransactionID)
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	p.ID = id

	return p, nil
}

// GetByTransactionID retrieves a purchase by provider transaction id
func (r *PurchaseRepo) GetByTransactionID(txnID string) (*models.Purchase, error) {
	row := DB.QueryRow(`
		SELECT id, buyer_id, video_id, price, currency, provider, transaction_id, display_name, completed_at
		FROM purchases WHERE transaction_id = ?
	`, txnID)
	purchase, err := scanPurchase(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrPurchaseNotFound
	}
	return purchase, err
}

// HasPurchased reports whether the buyer owns the video
func (r *PurchaseRepo) HasPurchased(buyerID string, videoID int64) (bool, error) {
	var count int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM purchases WHERE buyer_id = ? AND video_id = ?",
		buyerID, videoID,
	).Scan(&count)
	return count > 0, err
}

// ListByBuyer retrieves all purchases made by a buyer, newest first
func (r *PurchaseRepo) ListByBuyer(buyerID string) ([]*models.Purchase, error) {
	rows, err := DB.Query(`
		SELECT id, buyer_id, video_id, price, currency, provider, transaction_id, display_name, completed_at
		FROM purchases WHERE buyer_id = ? ORDER BY completed_at DESC
	`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []*models.Purchase
	for rows.Next() {
		purchase, err := scanPurchase(rows.Scan)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}

	return purchases, rows.Err()
}

func scanPurchase(scan func(dest ...any) error) (*models.Purchase, error) {
	p := &models.Purchase{}
	var price string

	err := scan(
		&p.ID, &p.BuyerID, &p.VideoID, &price, &p.Currency,
		&p.Provider, &p.TransactionID, &p.DisplayName, &p.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
