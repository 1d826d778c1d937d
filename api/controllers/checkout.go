package controllers

import (
	"net/http"

	"github.com/paddockshare/paddockshare-backend/api/responses"
	"github.com/paddockshare/paddockshare-backend/api/validators"
	"github.com/paddockshare/paddockshare-backend/internal/checkout"
	pkgerrors "github.com/paddockshare/paddockshare-backend/pkg/errors"
	"github.com/paddockshare/paddockshare-backend/pkg/logger"
)

type checkoutRequest struct {
	WalletOffsetRequestedPence int64 `json:"wallet_offset_requested_pence" validate:"gte=0"`
	ConfirmPromotionIssues     bool  `json:"confirm_promotion_issues"`
}

// Checkout executes the caller's open basket in one transaction.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Execute(r.Context(), userID, checkout.Input{
			WalletOffsetRequestedPence: body.WalletOffsetRequestedPence,
			ConfirmPromotionIssues:     body.ConfirmPromotionIssues,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}
