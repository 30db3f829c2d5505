package controllers

import (
	"net/http"

	"github.com/talabarteria/rodriguez-backend/api/responses"
	"github.com/talabarteria/rodriguez-backend/api/validators"
	"github.com/talabarteria/rodriguez-backend/internal/storeinfo"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"github.com/talabarteria/rodriguez-backend/pkg/logger"
)

// AdminConfigGet returns the store info singleton, seeding defaults on
// first read.
func AdminConfigGet(svc storeinfo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store info service unavailable"))
			return
		}

		info, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}

// AdminConfigUpdate applies partial edits to the store info singleton.
func AdminConfigUpdate(svc storeinfo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store info service unavailable"))
			return
		}

		var body storeinfo.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		info, err := svc.Update(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, info)
	}
}
