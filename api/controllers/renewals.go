package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/api/responses"
	"github.com/paddockshare/paddockshare-backend/api/validators"
	"github.com/paddockshare/paddockshare-backend/internal/renewals"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

// RenewalCyclesByHorse lists a horse's renewal cycles, newest first.
func RenewalCyclesByHorse(svc renewals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "renewals service unavailable"))
			return
		}

		horseID, err := pathUUID(r, "horseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cycles, err := svc.ListByHorse(r.Context(), horseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cycles)
	}
}

type createCycleRequest struct {
	HorseID            uuid.UUID `json:"horse_id" validate:"required"`
	TermLabel          string    `json:"term_label" validate:"required"`
	OpensAt            time.Time `json:"opens_at" validate:"required"`
	ClosesAt           time.Time `json:"closes_at" validate:"required"`
	PricePerSharePence int64     `json:"price_per_share_pence" validate:"required,gt=0"`
}

// AdminRenewalCycleCreate opens a renewal window for a horse's next term.
func AdminRenewalCycleCreate(svc renewals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "renewals service unavailable"))
			return
		}

		var body createCycleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cycle, err := svc.CreateCycle(r.Context(), renewals.CreateCycleInput{
			HorseID:            body.HorseID,
			TermLabel:          body.TermLabel,
			OpensAt:            body.OpensAt,
			ClosesAt:           body.ClosesAt,
			PricePerSharePence: body.PricePerSharePence,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cycle)
	}
}

// AdminRenewalCycleClose closes a renewal window early.
func AdminRenewalCycleClose(svc renewals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "renewals service unavailable"))
			return
		}

		cycleID, err := pathUUID(r, "cycleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cycle, err := svc.CloseCycle(r.Context(), cycleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cycle)
	}
}

// AdminRenewalResponses lists who has renewed in a cycle.
func AdminRenewalResponses(svc renewals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "renewals service unavailable"))
			return
		}

		cycleID, err := pathUUID(r, "cycleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListResponses(r.Context(), cycleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
