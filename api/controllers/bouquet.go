package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bloomstack/bloomstack-backend/api/responses"
	"github.com/bloomstack/bloomstack-backend/api/validators"
	"github.com/bloomstack/bloomstack-backend/internal/bouquet"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/logger"
)

// ComposerData returns the stock flowers, wrappings, and size tiers the
// storefront composer needs.
func ComposerData(svc bouquet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bouquet service unavailable"))
			return
		}

		data, err := svc.ComposerData(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, data)
	}
}

// SubmitCustomBouquet records a composed bouquet order for a storefront.
func SubmitCustomBouquet(svc bouquet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bouquet service unavailable"))
			return
		}

		var body bouquet.SubmitInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Submit(r.Context(), chi.URLParam(r, "slug"), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
