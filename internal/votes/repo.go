package votes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
)

// Repository persists votes, options and responses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vote *models.Vote) error
	Update(ctx context.Context, vote *models.Vote) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vote, error)
	List(ctx context.Context, statuses []enums.VoteStatus) ([]models.Vote, error)
	ListOpenPastCutoff(ctx context.Context, cutoff time.Time) ([]models.Vote, error)

	CreateResponse(ctx context.Context, response *models.VoteResponse) error
	FindResponse(ctx context.Context, voteID, userID uuid.UUID) (*models.VoteResponse, error)
	CountResponsesByOption(ctx context.Context, voteID uuid.UUID) (map[uuid.UUID]int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a votes repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *repository) Update(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Omit("Options").Save(vote).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&vote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *repository) List(ctx context.Context, statuses []enums.VoteStatus) ([]models.Vote, error) {
	query := r.db.WithContext(ctx).Model(&models.Vote{}).Preload("Options")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var votes []models.Vote
	if err := query.Order("cutoff_at DESC").Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *repository) ListOpenPastCutoff(ctx context.Context, cutoff time.Time) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("status = ? AND cutoff_at < ?", enums.VoteStatusOpen, cutoff).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *repository) CreateResponse(ctx context.Context, response *models.VoteResponse) error {
	return r.db.WithContext(ctx).Create(response).Error
}

func (r *repository) FindResponse(ctx context.Context, voteID, userID uuid.UUID) (*models.VoteResponse, error) {
	var response models.VoteResponse
	err := r.db.WithContext(ctx).
		Where("vote_id = ? AND user_id = ?", voteID, userID).
		First(&response).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *repository) CountResponsesByOption(ctx context.Context, voteID uuid.UUID) (map[uuid.UUID]int, error) {
	type row struct {
		OptionID uuid.UUID
		Total    int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.VoteResponse{}).
		Select("option_id, COUNT(*) AS total").
		Where("vote_id = ?", voteID).
		Group("option_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		counts[r.OptionID] = r.Total
	}
	return counts, nil
}
