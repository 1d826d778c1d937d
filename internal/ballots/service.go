package ballots

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db"
	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// entrantNotifier receives per-entrant outcomes after the draw commits.
type entrantNotifier interface {
	BallotDecided(ctx context.Context, userID uuid.UUID, ballot models.Ballot, outcome enums.BallotOutcome)
}

type nopNotifier struct{}

func (nopNotifier) BallotDecided(context.Context, uuid.UUID, models.Ballot, enums.BallotOutcome) {}

// CreateBallotInput captures the admin payload for a new ballot.
type CreateBallotInput struct {
	HorseID       *uuid.UUID
	Type          enums.BallotType
	Title         string
	CutoffAt      time.Time
	MaxWinners    int
	AllocationCap *int
}

// DrawResult summarizes a completed draw.
type DrawResult struct {
	Ballot  models.Ballot         `json:"ballot"`
	Winners int                   `json:"winners"`
	Entries int                   `json:"entries"`
	Results []models.BallotResult `json:"results"`
}

// Service manages ballot lifecycle: open, enter, close, draw.
type Service interface {
	Create(ctx context.Context, input CreateBallotInput) (*models.Ballot, error)
	List(ctx context.Context, statuses []enums.BallotStatus) ([]models.Ballot, error)
	Get(ctx context.Context, ballotID uuid.UUID) (*models.Ballot, error)
	// Enter records the user's single entry. Entering twice is a conflict;
	// entries carry no weighting of any kind.
	Enter(ctx context.Context, ballotID, userID uuid.UUID) (*models.BallotEntry, error)
	Close(ctx context.Context, ballotID uuid.UUID) (*models.Ballot, error)
	// RunDraw decides a closed ballot exactly once. Winners beyond the
	// effective limit are drawn by unbiased shuffle.
	RunDraw(ctx context.Context, ballotID uuid.UUID) (*DrawResult, error)
	// CloseExpired sweeps open ballots whose cutoff passed. Returns the
	// number closed.
	CloseExpired(ctx context.Context, asOf time.Time) (int, error)
	Results(ctx context.Context, ballotID uuid.UUID) ([]models.BallotResult, error)
	MyResult(ctx context.Context, ballotID, userID uuid.UUID) (*models.BallotResult, error)
}

// ServiceParams wires the ballots service dependencies.
type ServiceParams struct {
	Tx       txRunner
	Repo     Repository
	Notifier entrantNotifier
	Logger   *logger.Logger
	// Rand drives the shuffle. Defaults to a time-seeded source; tests
	// inject a fixed seed.
	Rand *rand.Rand
}

type service struct {
	tx       txRunner
	repo     Repository
	notifier entrantNotifier
	logg     *logger.Logger
	rand     *rand.Rand
	now      func() time.Time
}

// NewService wires a ballots service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("ballots repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifier == nil {
		params.Notifier = nopNotifier{}
	}
	if params.Rand == nil {
		params.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &service{
		tx:       params.Tx,
		repo:     params.Repo,
		notifier: params.Notifier,
		logg:     params.Logger,
		rand:     params.Rand,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateBallotInput) (*models.Ballot, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown ballot type")
	}
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.MaxWinners <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max winners must be positive")
	}
	if input.AllocationCap != nil && *input.AllocationCap < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "allocation cap cannot be negative")
	}
	if !input.CutoffAt.After(s.now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cutoff must be in the future")
	}

	ballot := &models.Ballot{
		HorseID:       input.HorseID,
		Type:          input.Type,
		Title:         input.Title,
		CutoffAt:      input.CutoffAt.UTC(),
		MaxWinners:    input.MaxWinners,
		AllocationCap: input.AllocationCap,
		Status:        enums.BallotStatusOpen,
	}
	if err := s.repo.Create(ctx, ballot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ballot")
	}
	return ballot, nil
}

func (s *service) List(ctx context.Context, statuses []enums.BallotStatus) ([]models.Ballot, error) {
	ballots, err := s.repo.List(ctx, statuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ballots")
	}
	return ballots, nil
}

func (s *service) Get(ctx context.Context, ballotID uuid.UUID) (*models.Ballot, error) {
	if ballotID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ballot id is required")
	}
	ballot, err := s.repo.FindByID(ctx, ballotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ballot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ballot")
	}
	return ballot, nil
}

func (s *service) Enter(ctx context.Context, ballotID, userID uuid.UUID) (*models.BallotEntry, error) {
	if ballotID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ballot id is required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	ballot, err := s.Get(ctx, ballotID)
	if err != nil {
		return nil, err
	}
	if !ballot.AcceptsEntriesAt(s.now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ballot is not accepting entries")
	}

	if _, err := s.repo.FindEntry(ctx, ballotID, userID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "already entered this ballot")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check ballot entry")
	}

	entry := &models.BallotEntry{BallotID: ballotID, UserID: userID}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		// The unique index catches the race between check and insert.
		if db.IsUniqueViolation(err, "idx_ballot_entries_ballot_user") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "already entered this ballot")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ballot entry")
	}
	return entry, nil
}

func (s *service) Close(ctx context.Context, ballotID uuid.UUID) (*models.Ballot, error) {
	if ballotID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ballot id is required")
	}

	ballot, err := s.Get(ctx, ballotID)
	if err != nil {
		return nil, err
	}
	if ballot.Status != enums.BallotStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ballot is not open")
	}

	ballot.Status = enums.BallotStatusClosed
	if err := s.repo.Update(ctx, ballot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close ballot")
	}
	return ballot, nil
}

// RunDraw decides a closed ballot. The ballot row is locked for the whole
// draw, the status check runs under that lock, and results plus the drawn
// status commit in one transaction, so a concurrent draw either loses the
// lock race and sees drawn, or never starts.
func (s *service) RunDraw(ctx context.Context, ballotID uuid.UUID) (*DrawResult, error) {
	if ballotID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ballot id is required")
	}

	var drawResult *DrawResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ballot, err := repo.FindByIDForUpdate(ctx, ballotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ballot not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock ballot")
		}
		switch ballot.Status {
		case enums.BallotStatusOpen:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ballot must be closed before the draw")
		case enums.BallotStatusDrawn:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ballot already drawn")
		}

		entries, err := repo.ListEntries(ctx, ballotID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ballot entries")
		}

		results := s.decide(*ballot, entries)
		if err := repo.CreateResults(ctx, results); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write ballot results")
		}

		now := s.now().UTC()
		ballot.Status = enums.BallotStatusDrawn
		ballot.DrawnAt = &now
		if err := repo.Update(ctx, ballot); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark ballot drawn")
		}

		winners := 0
		for _, r := range results {
			if r.Outcome == enums.BallotOutcomeWinner {
				winners++
			}
		}
		drawResult = &DrawResult{
			Ballot:  *ballot,
			Winners: winners,
			Entries: len(entries),
			Results: results,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, result := range drawResult.Results {
		s.notifier.BallotDecided(ctx, result.UserID, drawResult.Ballot, result.Outcome)
	}
	return drawResult, nil
}

// decide assigns outcomes. When entries fit within the limit everyone wins;
// otherwise a Fisher-Yates shuffle picks the winners, one entry each, no
// weighting.
func (s *service) decide(ballot models.Ballot, entries []models.BallotEntry) []models.BallotResult {
	limit := ballot.WinnerLimit()

	winners := make(map[uuid.UUID]struct{}, limit)
	if len(entries) <= limit {
		for _, entry := range entries {
			winners[entry.UserID] = struct{}{}
		}
	} else {
		shuffled := make([]models.BallotEntry, len(entries))
		copy(shuffled, entries)
		s.rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		for _, entry := range shuffled[:limit] {
			winners[entry.UserID] = struct{}{}
		}
	}

	results := make([]models.BallotResult, 0, len(entries))
	for _, entry := range entries {
		outcome := enums.BallotOutcomeNonWinner
		if _, ok := winners[entry.UserID]; ok {
			outcome = enums.BallotOutcomeWinner
		}
		results = append(results, models.BallotResult{
			BallotID: ballot.ID,
			UserID:   entry.UserID,
			Outcome:  outcome,
		})
	}
	return results
}

func (s *service) CloseExpired(ctx context.Context, asOf time.Time) (int, error) {
	ballots, err := s.repo.ListOpenPastCutoff(ctx, asOf.UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired ballots")
	}

	closed := 0
	for i := range ballots {
		ballots[i].Status = enums.BallotStatusClosed
		if err := s.repo.Update(ctx, &ballots[i]); err != nil {
			return closed, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close ballot")
		}
		closed++
	}
	return closed, nil
}

func (s *service) Results(ctx context.Context, ballotID uuid.UUID) ([]models.BallotResult, error) {
	ballot, err := s.Get(ctx, ballotID)
	if err != nil {
		return nil, err
	}
	if ballot.Status != enums.BallotStatusDrawn {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ballot not drawn yet")
	}
	results, err := s.repo.ListResults(ctx, ballotID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ballot results")
	}
	return results, nil
}

func (s *service) MyResult(ctx context.Context, ballotID, userID uuid.UUID) (*models.BallotResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	ballot, err := s.Get(ctx, ballotID)
	if err != nil {
		return nil, err
	}
	if ballot.Status != enums.BallotStatusDrawn {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ballot not drawn yet")
	}
	result, err := s.repo.FindResult(ctx, ballotID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no entry in this ballot")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ballot result")
	}
	return result, nil
}
