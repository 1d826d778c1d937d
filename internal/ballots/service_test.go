package ballots

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paddockshare/paddockshare-backend/pkg/db/models"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type memRepo struct {
	ballots map[uuid.UUID]*models.Ballot
	entries []*models.BallotEntry
	results []models.BallotResult
}

func newMemRepo() *memRepo {
	return &memRepo{ballots: map[uuid.UUID]*models.Ballot{}}
}

func (m *memRepo) WithTx(tx *gorm.DB) Repository { return m }
func (m *memRepo) Create(ctx context.Context, ballot *models.Ballot) error {
	ballot.ID = uuid.New()
	m.ballots[ballot.ID] = ballot
	return nil
}
func (m *memRepo) Update(ctx context.Context, ballot *models.Ballot) error {
	m.ballots[ballot.ID] = ballot
	return nil
}
func (m *memRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Ballot, error) {
	if b, ok := m.ballots[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *memRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Ballot, error) {
	return m.FindByID(ctx, id)
}
func (m *memRepo) List(ctx context.Context, statuses []enums.BallotStatus) ([]models.Ballot, error) {
	var out []models.Ballot
	for _, b := range m.ballots {
		out = append(out, *b)
	}
	return out, nil
}
func (m *memRepo) ListOpenPastCutoff(ctx context.Context, cutoff time.Time) ([]models.Ballot, error) {
	var out []models.Ballot
	for _, b := range m.ballots {
		if b.Status == enums.BallotStatusOpen && b.CutoffAt.Before(cutoff) {
			out = append(out, *b)
		}
	}
	return out, nil
}
func (m *memRepo) CreateEntry(ctx context.Context, entry *models.BallotEntry) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()
	m.entries = append(m.entries, entry)
	return nil
}
func (m *memRepo) FindEntry(ctx context.Context, ballotID, userID uuid.UUID) (*models.BallotEntry, error) {
	for _, e := range m.entries {
		if e.BallotID == ballotID && e.UserID == userID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (m *memRepo) ListEntries(ctx context.Context, ballotID uuid.UUID) ([]models.BallotEntry, error) {
	var out []models.BallotEntry
	for _, e := range m.entries {
		if e.BallotID == ballotID {
			out = append(out, *e)
		}
	}
	return out, nil
}
func (m *memRepo) CreateResults(ctx context.Context, results []models.BallotResult) error {
	m.results = append(m.results, results...)
	return nil
}
func (m *memRepo) ListResults(ctx context.Context, ballotID uuid.UUID) ([]models.BallotResult, error) {
	var out []models.BallotResult
	for _, r := range m.results {
		if r.BallotID == ballotID {
			out = append(out, r)
		}
	}
	return out, nil
}
func (m *memRepo) FindResult(ctx context.Context, ballotID, userID uuid.UUID) (*models.BallotResult, error) {
	for _, r := range m.results {
		if r.BallotID == ballotID && r.UserID == userID {
			copied := r
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type recordingNotifier struct {
	mu       sync.Mutex
	outcomes map[uuid.UUID]enums.BallotOutcome
}

func (r *recordingNotifier) BallotDecided(ctx context.Context, userID uuid.UUID, ballot models.Ballot, outcome enums.BallotOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[uuid.UUID]enums.BallotOutcome{}
	}
	r.outcomes[userID] = outcome
}

func newTestService(t *testing.T, repo Repository, seed int64) (Service, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	svc, err := NewService(ServiceParams{
		Tx:       fakeTx{},
		Repo:     repo,
		Notifier: notifier,
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Rand:     rand.New(rand.NewSource(seed)),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, notifier
}

func seedBallot(repo *memRepo, status enums.BallotStatus, maxWinners int, cap *int) *models.Ballot {
	ballot := &models.Ballot{
		ID:            uuid.New(),
		Type:          enums.BallotTypeBadge,
		Title:         "Ascot badges",
		CutoffAt:      time.Now().UTC().Add(24 * time.Hour),
		MaxWinners:    maxWinners,
		AllocationCap: cap,
		Status:        status,
	}
	repo.ballots[ballot.ID] = ballot
	return ballot
}

func enterUsers(t *testing.T, svc Service, ballotID uuid.UUID, n int) []uuid.UUID {
	t.Helper()
	users := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		user := uuid.New()
		if _, err := svc.Enter(context.Background(), ballotID, user); err != nil {
			t.Fatalf("enter: %v", err)
		}
		users = append(users, user)
	}
	return users
}

func TestEnterOncePerUser(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, 1)
	ballot := seedBallot(repo, enums.BallotStatusOpen, 2, nil)
	user := uuid.New()

	if _, err := svc.Enter(context.Background(), ballot.ID, user); err != nil {
		t.Fatalf("first entry: %v", err)
	}
	_, err := svc.Enter(context.Background(), ballot.ID, user)
	if err == nil {
		t.Fatal("expected conflict on second entry")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestEnterAfterCutoff(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, 1)
	ballot := seedBallot(repo, enums.BallotStatusOpen, 2, nil)
	ballot.CutoffAt = time.Now().UTC().Add(-time.Minute)

	_, err := svc.Enter(context.Background(), ballot.ID, uuid.New())
	if err == nil {
		t.Fatal("expected state conflict after cutoff")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRunDrawRequiresClosedBallot(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, 1)
	ballot := seedBallot(repo, enums.BallotStatusOpen, 2, nil)

	_, err := svc.RunDraw(context.Background(), ballot.ID)
	if err == nil {
		t.Fatal("expected state conflict for open ballot")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRunDrawExactlyOnce(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, 1)
	ballot := seedBallot(repo, enums.BallotStatusOpen, 2, nil)
	enterUsers(t, svc, ballot.ID, 5)
	ballot.Status = enums.BallotStatusClosed

	if _, err := svc.RunDraw(context.Background(), ballot.ID); err != nil {
		t.Fatalf("first draw: %v", err)
	}
	_, err := svc.RunDraw(context.Background(), ballot.ID)
	if err == nil {
		t.Fatal("expected conflict for repeated draw")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(repo.results) != 5 {
		t.Fatalf("results written more than once: %d rows", len(repo.results))
	}
}

func TestRunDrawEveryoneWinsWhenUnderLimit(t *testing.T) {
	repo := newMemRepo()
	svc, notifier := newTestService(t, repo, 1)
	ballot := seedBallot(repo, enums.BallotStatusOpen, 10, nil)
	users := enterUsers(t, svc, ballot.ID, 3)
	ballot.Status = enums.BallotStatusClosed

	result, err := svc.RunDraw(context.Background(), ballot.ID)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if result.Winners != 3 {
		t.Fatalf("expected all 3 to win, got %d", result.Winners)
	}
	for _, user := range users {
		if notifier.outcomes[user] != enums.BallotOutcomeWinner {
			t.Fatalf("user %s not notified as winner", user)
		}
	}
}

func TestRunDrawRespectsWinnerLimit(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, 42)
	ballot := seedBallot(repo, enums.BallotStatusOpen, 3, nil)
	enterUsers(t, svc, ballot.ID, 10)
	ballot.Status = enums.BallotStatusClosed

	result, err := svc.RunDraw(context.Background(), ballot.ID)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if result.Winners != 3 {
		t.Fatalf("expected 3 winners, got %d", result.Winners)
	}
	if result.Entries != 10 || len(result.Results) != 10 {
		t.Fatal("every entrant must receive an outcome")
	}
	if result.Ballot.Status != enums.BallotStatusDrawn || result.Ballot.DrawnAt == nil {
		t.Fatal("ballot must end up drawn")
	}
}

func TestRunDrawAllocationCapBelowMaxWinners(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, 7)
	cap := 2
	ballot := seedBallot(repo, enums.BallotStatusOpen, 5, &cap)
	enterUsers(t, svc, ballot.ID, 6)
	ballot.Status = enums.BallotStatusClosed

	result, err := svc.RunDraw(context.Background(), ballot.ID)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if result.Winners != 2 {
		t.Fatalf("allocation cap must bind, got %d winners", result.Winners)
	}
}

func TestRunDrawDeterministicForSeed(t *testing.T) {
	users := make([]uuid.UUID, 8)
	for i := range users {
		users[i] = uuid.New()
	}

	draw := func() map[uuid.UUID]enums.BallotOutcome {
		repo := newMemRepo()
		svc, _ := newTestService(t, repo, 99)
		ballot := seedBallot(repo, enums.BallotStatusOpen, 3, nil)
		for _, u := range users {
			if _, err := svc.Enter(context.Background(), ballot.ID, u); err != nil {
				t.Fatalf("enter: %v", err)
			}
		}
		ballot.Status = enums.BallotStatusClosed
		result, err := svc.RunDraw(context.Background(), ballot.ID)
		if err != nil {
			t.Fatalf("draw: %v", err)
		}
		out := map[uuid.UUID]enums.BallotOutcome{}
		for _, r := range result.Results {
			out[r.UserID] = r.Outcome
		}
		return out
	}

	first := draw()
	second := draw()
	for user, outcome := range first {
		if second[user] != outcome {
			t.Fatal("same seed and entries must reproduce the same outcomes")
		}
	}
}

func TestRunDrawEmptyBallot(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, 1)
	ballot := seedBallot(repo, enums.BallotStatusClosed, 3, nil)

	result, err := svc.RunDraw(context.Background(), ballot.ID)
	if err != nil {
		t.Fatalf("draw of empty ballot must succeed: %v", err)
	}
	if result.Winners != 0 || len(result.Results) != 0 {
		t.Fatal("empty ballot draws no winners")
	}
	if result.Ballot.Status != enums.BallotStatusDrawn {
		t.Fatal("empty ballot must still end up drawn")
	}
}

func TestCloseExpiredSweepsPastCutoff(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, 1)
	stale := seedBallot(repo, enums.BallotStatusOpen, 2, nil)
	stale.CutoffAt = time.Now().UTC().Add(-time.Hour)
	fresh := seedBallot(repo, enums.BallotStatusOpen, 2, nil)

	closed, err := svc.CloseExpired(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("close expired: %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected 1 closed, got %d", closed)
	}
	if repo.ballots[stale.ID].Status != enums.BallotStatusClosed {
		t.Fatal("stale ballot must be closed")
	}
	if repo.ballots[fresh.ID].Status != enums.BallotStatusOpen {
		t.Fatal("fresh ballot must stay open")
	}
}

func TestResultsOnlyAfterDraw(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(t, repo, 1)
	ballot := seedBallot(repo, enums.BallotStatusClosed, 2, nil)

	_, err := svc.Results(context.Background(), ballot.ID)
	if err == nil {
		t.Fatal("expected state conflict before the draw")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
