package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/paddockshare/paddockshare-backend/api/responses"
	"github.com/paddockshare/paddockshare-backend/api/validators"
	"github.com/paddockshare/paddockshare-backend/internal/basket"
	"github.com/paddockshare/paddockshare-backend/pkg/enums"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

// BasketGet returns the caller's open basket, creating one on first touch.
func BasketGet(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type addLineRequest struct {
	LineType string    `json:"line_type" validate:"required"`
	TargetID uuid.UUID `json:"target_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

// BasketAddLine adds a share purchase or renewal line to the open basket.
func BasketAddLine(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body addLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineType, err := enums.ParseBasketLineType(body.LineType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line type"))
			return
		}

		view, err := svc.AddLine(r.Context(), userID, basket.AddLineInput{
			LineType: lineType,
			TargetID: body.TargetID,
			Quantity: body.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

type updateLineRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// BasketUpdateLine changes the quantity on an existing line.
func BasketUpdateLine(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateLineRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateLineQuantity(r.Context(), userID, lineID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// BasketRemoveLine deletes a line from the open basket.
func BasketRemoveLine(svc basket.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID, err := pathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.RemoveLine(r.Context(), userID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
