package votes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db"
	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
)

const (
	minOptions = 2
	maxOptions = 10
)

// CreateVoteInput captures the admin payload for a new vote.
type CreateVoteInput struct {
	HorseID  *uuid.UUID
	Title    string
	CutoffAt time.Time
	Options  []string
}

// OptionTally is one option's share of the result.
type OptionTally struct {
	OptionID uuid.UUID `json:"option_id"`
	Label    string    `json:"label"`
	Count    int       `json:"count"`
	Leading  bool      `json:"leading"`
}

// Tally is the result summary. Ties are reported as ties: every option with
// the top count is flagged leading and Tied is set.
type Tally struct {
	Vote    models.Vote   `json:"vote"`
	Total   int           `json:"total"`
	Tied    bool          `json:"tied"`
	Options []OptionTally `json:"options"`
}

// Service manages syndicate votes.
type Service interface {
	Create(ctx context.Context, input CreateVoteInput) (*models.Vote, error)
	List(ctx context.Context, statuses []enums.VoteStatus) ([]models.Vote, error)
	Get(ctx context.Context, voteID uuid.UUID) (*models.Vote, error)
	// Respond casts the user's single immutable choice.
	Respond(ctx context.Context, voteID, userID, optionID uuid.UUID) (*models.VoteResponse, error)
	Close(ctx context.Context, voteID uuid.UUID) (*models.Vote, error)
	// TallyResult counts responses. Open votes may be tallied for a live
	// view; only closed votes are final.
	TallyResult(ctx context.Context, voteID uuid.UUID) (*Tally, error)
	// CloseExpired sweeps open votes whose cutoff passed.
	CloseExpired(ctx context.Context, asOf time.Time) (int, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a votes service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("votes repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateVoteInput) (*models.Vote, error) {
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if len(input.Options) < minOptions || len(input.Options) > maxOptions {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("a vote needs between %d and %d options", minOptions, maxOptions))
	}
	seen := make(map[string]struct{}, len(input.Options))
	for _, label := range input.Options {
		if label == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "option labels cannot be empty")
		}
		if _, dup := seen[label]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "option labels must be distinct")
		}
		seen[label] = struct{}{}
	}
	if !input.CutoffAt.After(s.now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cutoff must be in the future")
	}

	vote := &models.Vote{
		HorseID:  input.HorseID,
		Title:    input.Title,
		CutoffAt: input.CutoffAt.UTC(),
		Status:   enums.VoteStatusOpen,
	}
	for i, label := range input.Options {
		vote.Options = append(vote.Options, models.VoteOption{Label: label, Position: i})
	}
	if err := s.repo.Create(ctx, vote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vote")
	}
	return vote, nil
}

func (s *service) List(ctx context.Context, statuses []enums.VoteStatus) ([]models.Vote, error) {
	votes, err := s.repo.List(ctx, statuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list votes")
	}
	return votes, nil
}

func (s *service) Get(ctx context.Context, voteID uuid.UUID) (*models.Vote, error) {
	if voteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vote id is required")
	}
	vote, err := s.repo.FindByID(ctx, voteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vote")
	}
	return vote, nil
}

func (s *service) Respond(ctx context.Context, voteID, userID, optionID uuid.UUID) (*models.VoteResponse, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if optionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "option id is required")
	}

	vote, err := s.Get(ctx, voteID)
	if err != nil {
		return nil, err
	}
	if !vote.AcceptsResponsesAt(s.now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vote is not accepting responses")
	}

	valid := false
	for _, option := range vote.Options {
		if option.ID == optionID {
			valid = true
			break
		}
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "option does not belong to this vote")
	}

	if _, err := s.repo.FindResponse(ctx, voteID, userID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "already voted")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check vote response")
	}

	response := &models.VoteResponse{VoteID: voteID, UserID: userID, OptionID: optionID}
	if err := s.repo.CreateResponse(ctx, response); err != nil {
		// The unique index catches the race between check and insert.
		if db.IsUniqueViolation(err, "idx_vote_responses_vote_user") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "already voted")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vote response")
	}
	return response, nil
}

func (s *service) Close(ctx context.Context, voteID uuid.UUID) (*models.Vote, error) {
	vote, err := s.Get(ctx, voteID)
	if err != nil {
		return nil, err
	}
	if vote.Status != enums.VoteStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vote is not open")
	}

	vote.Status = enums.VoteStatusClosed
	if err := s.repo.Update(ctx, vote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close vote")
	}
	return vote, nil
}

func (s *service) TallyResult(ctx context.Context, voteID uuid.UUID) (*Tally, error) {
	vote, err := s.Get(ctx, voteID)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.CountResponsesByOption(ctx, voteID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count vote responses")
	}

	tally := &Tally{Vote: *vote}
	top := 0
	for _, option := range vote.Options {
		count := counts[option.ID]
		tally.Total += count
		if count > top {
			top = count
		}
		tally.Options = append(tally.Options, OptionTally{
			OptionID: option.ID,
			Label:    option.Label,
			Count:    count,
		})
	}

	leaders := 0
	for i := range tally.Options {
		if top > 0 && tally.Options[i].Count == top {
			tally.Options[i].Leading = true
			leaders++
		}
	}
	tally.Tied = leaders > 1
	return tally, nil
}

func (s *service) CloseExpired(ctx context.Context, asOf time.Time) (int, error) {
	votes, err := s.repo.ListOpenPastCutoff(ctx, asOf.UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired votes")
	}

	closed := 0
	for i := range votes {
		votes[i].Status = enums.VoteStatusClosed
		if err := s.repo.Update(ctx, &votes[i]); err != nil {
			return closed, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close vote")
		}
		closed++
	}
	return closed, nil
}
