package controllers

import (
	"net/http"
	"time"

	"github.com/paddockshare/paddockshare-backend/api/responses"
	"github.com/paddockshare/paddockshare-backend/api/validators"
	"github.com/paddockshare/paddockshare-backend/internal/promotions"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

type createPromotionRequest struct {
	Enabled   bool       `json:"enabled"`
	Quota     int        `json:"quota" validate:"required,gt=0"`
	MinShares int        `json:"min_shares" validate:"required,gt=0"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	Label     string     `json:"label" validate:"required"`
	Reward    string     `json:"reward" validate:"required"`
}

// AdminPromotionCreate attaches a first-N-buyers promotion to a horse.
func AdminPromotionCreate(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotions service unavailable"))
			return
		}

		horseID, err := pathUUID(r, "horseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createPromotionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.Create(r.Context(), promotions.CreatePromotionInput{
			HorseID:   horseID,
			Enabled:   body.Enabled,
			Quota:     body.Quota,
			MinShares: body.MinShares,
			StartsAt:  body.StartsAt,
			EndsAt:    body.EndsAt,
			Label:     body.Label,
			Reward:    body.Reward,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, promo)
	}
}

type updatePromotionRequest struct {
	Enabled   *bool      `json:"enabled"`
	Quota     *int       `json:"quota" validate:"omitempty,gt=0"`
	MinShares *int       `json:"min_shares" validate:"omitempty,gt=0"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	Label     *string    `json:"label"`
	Reward    *string    `json:"reward"`
}

// AdminPromotionUpdate edits or disables an existing promotion.
func AdminPromotionUpdate(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotions service unavailable"))
			return
		}

		promotionID, err := pathUUID(r, "promotionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updatePromotionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		promo, err := svc.Update(r.Context(), promotionID, promotions.UpdatePromotionInput{
			Enabled:   body.Enabled,
			Quota:     body.Quota,
			MinShares: body.MinShares,
			StartsAt:  body.StartsAt,
			EndsAt:    body.EndsAt,
			Label:     body.Label,
			Reward:    body.Reward,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, promo)
	}
}

// AdminPromotionListByHorse lists every promotion ever attached to a horse.
func AdminPromotionListByHorse(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotions service unavailable"))
			return
		}

		horseID, err := pathUUID(r, "horseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByHorse(r.Context(), horseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
