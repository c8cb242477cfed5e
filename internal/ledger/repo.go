package ledger

import (
	"context"

	"github.com/digikraal/ledgerview/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 200

// Repository reads and loads ledger transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// QueryTransactions returns rows matching p, newest sale first.
	QueryTransactions(ctx context.Context, p Predicate) ([]models.Transaction, error)
	CreateBatch(ctx context.Context, rows []models.Transaction) error
	DeleteAll(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) QueryTransactions(ctx context.Context, p Predicate) ([]models.Transaction, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	for _, m := range p.Matches {
		query = query.Where(clause.Eq{Column: clause.Column{Name: string(m.Field)}, Value: m.Value})
	}
	if p.SaleDateAfter != "" {
		query = query.Where("date_sales > ?", p.SaleDateAfter)
	}
	if p.SaleDateBefore != "" {
		query = query.Where("date_sales < ?", p.SaleDateBefore)
	}

	var rows []models.Transaction
	if err := query.
		Order("date_sales DESC NULLS LAST").
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateBatch(ctx context.Context, rows []models.Transaction) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, importBatchSize).Error
}

func (r *repository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Transaction{})
	return res.RowsAffected, res.Error
}
