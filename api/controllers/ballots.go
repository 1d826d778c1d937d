package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/api/responses"
	"github.com/paddockshare/paddockshare-backend/api/validators"
	"github.com/paddockshare/paddockshare-backend/internal/ballots"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

// BallotList lists ballots, optionally filtered by a comma separated status
// set, for example ?status=open,drawn.
func BallotList(svc ballots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ballots service unavailable"))
			return
		}

		statuses, err := parseBallotStatuses(r.URL.Query().Get("status"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), statuses)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func parseBallotStatuses(raw string) ([]enums.BallotStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	statuses := make([]enums.BallotStatus, 0, len(parts))
	for _, part := range parts {
		status := enums.BallotStatus(strings.TrimSpace(part))
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ballot status")
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// BallotGet returns one ballot.
func BallotGet(svc ballots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ballots service unavailable"))
			return
		}

		ballotID, err := pathUUID(r, "ballotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ballot, err := svc.Get(r.Context(), ballotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ballot)
	}
}

// BallotEnter records the caller's entry in an open ballot.
func BallotEnter(svc ballots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ballots service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ballotID, err := pathUUID(r, "ballotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Enter(r.Context(), ballotID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// BallotResults lists the full outcome of a drawn ballot.
func BallotResults(svc ballots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ballots service unavailable"))
			return
		}

		ballotID, err := pathUUID(r, "ballotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.Results(r.Context(), ballotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

// BallotMyResult returns the caller's own outcome for a drawn ballot.
func BallotMyResult(svc ballots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ballots service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ballotID, err := pathUUID(r, "ballotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.MyResult(r.Context(), ballotID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type createBallotRequest struct {
	HorseID       *uuid.UUID `json:"horse_id"`
	Type          string     `json:"type" validate:"required"`
	Title         string     `json:"title" validate:"required"`
	CutoffAt      time.Time  `json:"cutoff_at" validate:"required"`
	MaxWinners    int        `json:"max_winners" validate:"required,gt=0"`
	AllocationCap *int       `json:"allocation_cap" validate:"omitempty,gt=0"`
}

// AdminBallotCreate opens a new badge or stable visit ballot.
func AdminBallotCreate(svc ballots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ballots service unavailable"))
			return
		}

		var body createBallotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ballotType, err := enums.ParseBallotType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ballot type"))
			return
		}

		ballot, err := svc.Create(r.Context(), ballots.CreateBallotInput{
			HorseID:       body.HorseID,
			Type:          ballotType,
			Title:         body.Title,
			CutoffAt:      body.CutoffAt,
			MaxWinners:    body.MaxWinners,
			AllocationCap: body.AllocationCap,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ballot)
	}
}

// AdminBallotClose closes entries ahead of the cutoff.
func AdminBallotClose(svc ballots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ballots service unavailable"))
			return
		}

		ballotID, err := pathUUID(r, "ballotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ballot, err := svc.Close(r.Context(), ballotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ballot)
	}
}

// AdminBallotDraw runs the one-time draw on a closed ballot.
func AdminBallotDraw(svc ballots.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ballots service unavailable"))
			return
		}

		ballotID, err := pathUUID(r, "ballotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RunDraw(r.Context(), ballotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
