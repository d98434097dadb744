package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mkrupp/storefront/internal/domain"
	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
)

// HTTPTransport handles the customer-side ordering HTTP surface.
type HTTPTransport struct {
	orderSvc *OrderService
	sessions http_.SessionResolver
	log      logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport for the order service.
func NewHTTPTransport(orderSvc *OrderService, sessions http_.SessionResolver) *HTTPTransport {
	return &HTTPTransport{
		orderSvc: orderSvc,
		sessions: sessions,
		log:      logging.GetLogger("svc.ordersvc.http_transport"),
	}
}

// RegisterRoutes registers the ordering routes on the given router:
// - POST /place_order/{productID} (customer): order against stock
// - GET  /order_history           (customer): the customer's orders.
// Both routes redirect to the customer login page when no session is present.
func (ht *HTTPTransport) RegisterRoutes(router *mux.Router) {
	router.Handle("/place_order/{productID:[0-9]+}",
		ht.customerGate(http.HandlerFunc(ht.HandlePlaceOrder)),
	).Methods(http.MethodPost)
	router.Handle("/order_history",
		ht.customerGate(http.HandlerFunc(ht.HandleOrderHistory)),
	).Methods(http.MethodGet)
}

func (ht *HTTPTransport) customerGate(next http.Handler) http.Handler {
	return http_.SessionMiddleware(
		next,
		ht.sessions,
		domain.RoleCustomer,
		http_.RedirectTo("/login/customer"),
		ht.log,
	)
}

type orderView struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// HandlePlaceOrder processes order placement.
// Expects the form parameter quantity; redirects to the customer panel on
// success.
func (ht *HTTPTransport) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	_ = ht.handlePlaceOrder(w, r)
}

func (ht *HTTPTransport) handlePlaceOrder(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "place order failed", "error", err)
		} else {
			log.DebugContext(ctx, "order placed")
		}
	}(r.Context())

	customer, ok := context_.UserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)

		return domain.ErrUnauthorized
	}

	productID, err := strconv.ParseInt(mux.Vars(r)["productID"], 10, 64)
	if err != nil {
		http_.WriteError(w, http.StatusNotFound, "product not found")

		return fmt.Errorf("parse product id: %w", err)
	}

	if err := r.ParseForm(); err != nil {
		http_.WriteError(w, http.StatusBadRequest, "malformed form")

		return fmt.Errorf("parse form: %w", err)
	}

	quantity, err := strconv.ParseInt(r.FormValue("quantity"), 10, 64)
	if err != nil {
		http_.WriteError(w, http.StatusBadRequest, "invalid quantity")

		return errors.Join(domain.ErrInvalidQuantity, err)
	}

	if _, err := ht.orderSvc.PlaceOrder(r.Context(), customer.ID, productID, quantity); err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			http_.WriteError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInsufficientStock):
			http_.WriteError(w, http.StatusBadRequest, "invalid quantity")
		default:
			http_.WriteError(w, http.StatusInternalServerError, "internal error")
		}

		return fmt.Errorf("place order: %w", err)
	}

	http.Redirect(w, r, "/customer/panel", http.StatusSeeOther)

	return nil
}

// HandleOrderHistory serves the authenticated customer's full order history.
func (ht *HTTPTransport) HandleOrderHistory(w http.ResponseWriter, r *http.Request) {
	customer, ok := context_.UserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)

		return
	}

	orders, err := ht.orderSvc.OrderHistory(r.Context(), customer.ID)
	if err != nil {
		ht.log.ErrorContext(r.Context(), "order history failed", "error", err)
		http_.WriteError(w, http.StatusInternalServerError, "internal error")

		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView{
			ID:        o.ID,
			UserID:    o.UserID,
			ProductID: o.ProductID,
			Quantity:  o.Quantity,
		})
	}

	http_.WriteJSON(w, http.StatusOK, map[string]any{"orders": views})
}
