package controllers

import (
	"net/http"
	"strings"

	"github.com/paddockshare/paddockshare-backend/api/responses"
	"github.com/paddockshare/paddockshare-backend/api/validators"
	"github.com/paddockshare/paddockshare-backend/internal/horses"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

// HorseList serves the public catalogue. Inactive horses are hidden unless
// the caller asks for them explicitly.
func HorseList(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := horses.ListParams{
			ActiveOnly: r.URL.Query().Get("include_inactive") != "true",
			Tag:        strings.TrimSpace(r.URL.Query().Get("tag")),
			Limit:      limit,
			Offset:     offset,
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// HorseDetail serves a single horse page. When the caller is signed in the
// promotion banner is personalized with their progress.
func HorseDetail(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}

		horseID, err := pathUUID(r, "horseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Detail(r.Context(), horseID, optionalUserID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type createHorseRequest struct {
	Name            string   `json:"name" validate:"required"`
	Trainer         string   `json:"trainer"`
	Description     string   `json:"description"`
	TotalShares     int      `json:"total_shares" validate:"required,gt=0"`
	SharePricePence int64    `json:"share_price_pence" validate:"required,gt=0"`
	Tags            []string `json:"tags"`
}

// AdminHorseCreate registers a new horse in the catalogue.
func AdminHorseCreate(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}

		var body createHorseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		horse, err := svc.Create(r.Context(), horses.CreateHorseInput{
			Name:            validators.SanitizeString(body.Name, 200),
			Trainer:         validators.SanitizeString(body.Trainer, 200),
			Description:     validators.SanitizeString(body.Description, 10000),
			TotalShares:     body.TotalShares,
			SharePricePence: body.SharePricePence,
			Tags:            body.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, horse)
	}
}

type updateHorseRequest struct {
	Trainer         *string  `json:"trainer"`
	Description     *string  `json:"description"`
	TotalShares     *int     `json:"total_shares" validate:"omitempty,gt=0"`
	SharePricePence *int64   `json:"share_price_pence" validate:"omitempty,gt=0"`
	Tags            []string `json:"tags"`
	IsActive        *bool    `json:"is_active"`
}

// AdminHorseUpdate applies partial updates to a horse.
func AdminHorseUpdate(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}

		horseID, err := pathUUID(r, "horseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateHorseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		horse, err := svc.Update(r.Context(), horseID, horses.UpdateHorseInput{
			Trainer:         body.Trainer,
			Description:     body.Description,
			TotalShares:     body.TotalShares,
			SharePricePence: body.SharePricePence,
			Tags:            body.Tags,
			IsActive:        body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, horse)
	}
}
