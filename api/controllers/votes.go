package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/api/responses"
	"github.com/paddockshare/paddockshare-backend/api/validators"
	"github.com/paddockshare/paddockshare-backend/internal/votes"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

// VoteList lists syndicate votes, optionally filtered by status.
func VoteList(svc votes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "votes service unavailable"))
			return
		}

		var statuses []enums.VoteStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				status, err := enums.ParseVoteStatus(strings.TrimSpace(part))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vote status"))
					return
				}
				statuses = append(statuses, status)
			}
		}

		list, err := svc.List(r.Context(), statuses)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// VoteGet returns one vote with its options.
func VoteGet(svc votes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "votes service unavailable"))
			return
		}

		voteID, err := pathUUID(r, "voteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vote, err := svc.Get(r.Context(), voteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vote)
	}
}

type voteResponseRequest struct {
	OptionID uuid.UUID `json:"option_id" validate:"required"`
}

// VoteRespond casts the caller's single immutable choice.
func VoteRespond(svc votes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "votes service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voteID, err := pathUUID(r, "voteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body voteResponseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		response, err := svc.Respond(r.Context(), voteID, userID, body.OptionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, response)
	}
}

// VoteTally returns per-option counts. Open votes show a live view.
func VoteTally(svc votes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "votes service unavailable"))
			return
		}

		voteID, err := pathUUID(r, "voteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tally, err := svc.TallyResult(r.Context(), voteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tally)
	}
}

type createVoteRequest struct {
	HorseID  *uuid.UUID `json:"horse_id"`
	Title    string     `json:"title" validate:"required"`
	CutoffAt time.Time  `json:"cutoff_at" validate:"required"`
	Options  []string   `json:"options" validate:"required,min=2"`
}

// AdminVoteCreate opens a new syndicate vote.
func AdminVoteCreate(svc votes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "votes service unavailable"))
			return
		}

		var body createVoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vote, err := svc.Create(r.Context(), votes.CreateVoteInput{
			HorseID:  body.HorseID,
			Title:    body.Title,
			CutoffAt: body.CutoffAt,
			Options:  body.Options,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vote)
	}
}

// AdminVoteClose closes a vote ahead of its cutoff.
func AdminVoteClose(svc votes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "votes service unavailable"))
			return
		}

		voteID, err := pathUUID(r, "voteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vote, err := svc.Close(r.Context(), voteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vote)
	}
}
