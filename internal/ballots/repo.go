package ballots

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// Repository persists ballots, entries and draw results.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ballot *models.Ballot) error
	Update(ctx context.Context, ballot *models.Ballot) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ballot, error)
	// FindByIDForUpdate row-locks the ballot so the draw runs exactly once.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Ballot, error)
	List(ctx context.Context, statuses []enums.BallotStatus) ([]models.Ballot, error)
	ListOpenPastCutoff(ctx context.Context, cutoff time.Time) ([]models.Ballot, error)

	CreateEntry(ctx context.Context, entry *models.BallotEntry) error
	FindEntry(ctx context.Context, ballotID, userID uuid.UUID) (*models.BallotEntry, error)
	ListEntries(ctx context.Context, ballotID uuid.UUID) ([]models.BallotEntry, error)

	CreateResults(ctx context.Context, results []models.BallotResult) error
	ListResults(ctx context.Context, ballotID uuid.UUID) ([]models.BallotResult, error)
	FindResult(ctx context.Context, ballotID, userID uuid.UUID) (*models.BallotResult, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ballots repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, ballot *models.Ballot) error {
	return r.db.WithContext(ctx).Create(ballot).Error
}

func (r *repository) Update(ctx context.Context, ballot *models.Ballot) error {
	return r.db.WithContext(ctx).Save(ballot).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ballot, error) {
	var ballot models.Ballot
	if err := r.db.WithContext(ctx).First(&ballot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ballot, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Ballot, error) {
	var ballot models.Ballot
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ballot, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ballot, nil
}

func (r *repository) List(ctx context.Context, statuses []enums.BallotStatus) ([]models.Ballot, error) {
	query := r.db.WithContext(ctx).Model(&models.Ballot{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var ballots []models.Ballot
	if err := query.Order("cutoff_at DESC").Find(&ballots).Error; err != nil {
		return nil, err
	}
	return ballots, nil
}

func (r *repository) ListOpenPastCutoff(ctx context.Context, cutoff time.Time) ([]models.Ballot, error) {
	var ballots []models.Ballot
	err := r.db.WithContext(ctx).
		Where("status = ? AND cutoff_at < ?", enums.BallotStatusOpen, cutoff).
		Find(&ballots).Error
	if err != nil {
		return nil, err
	}
	return ballots, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.BallotEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindEntry(ctx context.Context, ballotID, userID uuid.UUID) (*models.BallotEntry, error) {
	var entry models.BallotEntry
	err := r.db.WithContext(ctx).
		Where("ballot_id = ? AND user_id = ?", ballotID, userID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns entries in submission order. The draw itself shuffles;
// the stored order never biases the outcome.
func (r *repository) ListEntries(ctx context.Context, ballotID uuid.UUID) ([]models.BallotEntry, error) {
	var entries []models.BallotEntry
	err := r.db.WithContext(ctx).
		Where("ballot_id = ?", ballotID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) CreateResults(ctx context.Context, results []models.BallotResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&results).Error
}

func (r *repository) ListResults(ctx context.Context, ballotID uuid.UUID) ([]models.BallotResult, error) {
	var results []models.BallotResult
	err := r.db.WithContext(ctx).
		Where("ballot_id = ?", ballotID).
		Order("created_at ASC, id ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *repository) FindResult(ctx context.Context, ballotID, userID uuid.UUID) (*models.BallotResult, error) {
	var result models.BallotResult
	err := r.db.WithContext(ctx).
		Where("ballot_id = ? AND user_id = ?", ballotID, userID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}
