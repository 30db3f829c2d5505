package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/talabarteria/rodriguez-backend/api/responses"
	"github.com/talabarteria/rodriguez-backend/api/validators"
	"github.com/talabarteria/rodriguez-backend/internal/checkout"
	"github.com/talabarteria/rodriguez-backend/pkg/enums"
	pkgerrors "github.com/talabarteria/rodriguez-backend/pkg/errors"
	"github.com/talabarteria/rodriguez-backend/pkg/logger"
	"github.com/talabarteria/rodriguez-backend/pkg/pagination"
)

type adminOrderListResponse struct {
	Orders     []checkout.OrderView `json:"pedidos"`
	Pagination pagination.Page      `json:"paginacion"`
}

// AdminOrderList returns the paginated order backlog, optionally filtered
// by estado.
func AdminOrderList(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "pagina", 1, 1, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.OrderStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("estado")); raw != "" {
			parsed, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Estado de pedido no válido"))
				return
			}
			status = &parsed
		}

		orders, pageInfo, err := svc.ListOrders(r.Context(), status, pagination.Params{Page: page})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, adminOrderListResponse{Orders: orders, Pagination: pageInfo})
	}
}

// AdminOrderStatus moves an order along its lifecycle.
func AdminOrderStatus(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkout.StatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateOrderStatus(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
