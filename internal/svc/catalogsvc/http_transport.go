package catalogsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/mkrupp/storefront/internal/domain"
	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
)

// HTTPTransport handles the catalog HTTP surface: the seller panel, product
// creation and update, and the customer-facing catalog panel.
type HTTPTransport struct {
	catalogSvc *CatalogService
	sessions   http_.SessionResolver
	log        logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport for the catalog service.
// The session resolver backs the per-route session gates.
func NewHTTPTransport(catalogSvc *CatalogService, sessions http_.SessionResolver) *HTTPTransport {
	return &HTTPTransport{
		catalogSvc: catalogSvc,
		sessions:   sessions,
		log:        logging.GetLogger("svc.catalogsvc.http_transport"),
	}
}

// RegisterRoutes registers the catalog routes on the given router:
// - GET  /seller/panel               (seller): orders against the seller's products
// - POST /add_product                (seller): create a listing
// - PUT  /update_product/{productID} (seller): patch an owned listing
// - GET  /customer/panel             (customer): full catalog.
// Page routes redirect to the role's login page when no session is present;
// the update action answers 401 instead.
func (ht *HTTPTransport) RegisterRoutes(router *mux.Router) {
	router.Handle("/seller/panel",
		ht.sellerGate(http.HandlerFunc(ht.HandleSellerPanel), http_.RedirectTo("/login/seller")),
	).Methods(http.MethodGet)
	router.Handle("/add_product",
		ht.sellerGate(http.HandlerFunc(ht.HandleAddProduct), http_.RedirectTo("/login/seller")),
	).Methods(http.MethodPost)
	router.Handle("/update_product/{productID:[0-9]+}",
		ht.sellerGate(http.HandlerFunc(ht.HandleUpdateProduct), http_.Deny()),
	).Methods(http.MethodPut)
	router.Handle("/customer/panel",
		ht.customerGate(http.HandlerFunc(ht.HandleCustomerPanel), http_.RedirectTo("/login/customer")),
	).Methods(http.MethodGet)
}

func (ht *HTTPTransport) sellerGate(next http.Handler, onMissing http_.MissingSessionPolicy) http.Handler {
	return http_.SessionMiddleware(next, ht.sessions, domain.RoleSeller, onMissing, ht.log)
}

func (ht *HTTPTransport) customerGate(next http.Handler, onMissing http_.MissingSessionPolicy) http.Handler {
	return http_.SessionMiddleware(next, ht.sessions, domain.RoleCustomer, onMissing, ht.log)
}

type productView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Quantity    int64  `json:"quantity"`
	SellerID    int64  `json:"sellerId"`
	Version     int64  `json:"version"`
}

type orderView struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

func viewOrders(orders []domain.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView{
			ID:        o.ID,
			UserID:    o.UserID,
			ProductID: o.ProductID,
			Quantity:  o.Quantity,
		})
	}

	return views
}

// HandleSellerPanel serves the seller panel: all orders placed against the
// authenticated seller's products.
func (ht *HTTPTransport) HandleSellerPanel(w http.ResponseWriter, r *http.Request) {
	seller, ok := context_.UserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)

		return
	}

	orders, err := ht.catalogSvc.ListSellerOrders(r.Context(), seller.ID)
	if err != nil {
		ht.log.ErrorContext(r.Context(), "list seller orders failed", "error", err)
		http_.WriteError(w, http.StatusInternalServerError, "internal error")

		return
	}

	http_.WriteJSON(w, http.StatusOK, map[string]any{"orders": viewOrders(orders)})
}

// HandleAddProduct processes product creation requests.
// Expects form parameters: name, description, price, quantity.
func (ht *HTTPTransport) HandleAddProduct(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleAddProduct(w, r)
}

func (ht *HTTPTransport) handleAddProduct(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "add product failed", "error", err)
		} else {
			log.DebugContext(ctx, "product added")
		}
	}(r.Context())

	seller, ok := context_.UserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)

		return domain.ErrUnauthorized
	}

	if err := r.ParseForm(); err != nil {
		http_.WriteError(w, http.StatusBadRequest, "malformed form")

		return fmt.Errorf("parse form: %w", err)
	}

	name := r.FormValue("name")
	priceStr := r.FormValue("price")
	quantityStr := r.FormValue("quantity")

	if name == "" || priceStr == "" || quantityStr == "" {
		http_.WriteError(w, http.StatusBadRequest, "missing required fields")

		return domain.ErrMissingField
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		http_.WriteError(w, http.StatusBadRequest, "invalid price")

		return errors.Join(domain.ErrInvalidPrice, err)
	}

	quantity, err := strconv.ParseInt(quantityStr, 10, 64)
	if err != nil {
		http_.WriteError(w, http.StatusBadRequest, "invalid quantity")

		return errors.Join(domain.ErrInvalidQuantity, err)
	}

	id, err := ht.catalogSvc.AddProduct(r.Context(),
		seller.ID,
		name,
		r.FormValue("description"),
		price,
		quantity,
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductAlreadyExists):
			http_.WriteError(w, http.StatusConflict, "product already exists")
		case errors.Is(err, domain.ErrInvalidPrice), errors.Is(err, domain.ErrInvalidQuantity):
			http_.WriteError(w, http.StatusBadRequest, "invalid price or quantity")
		default:
			http_.WriteError(w, http.StatusInternalServerError, "internal error")
		}

		return fmt.Errorf("add product: %w", err)
	}

	http_.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})

	return nil
}

// HandleUpdateProduct processes partial product updates.
// Any of name, description, price, quantity may be supplied; an absent or
// empty field leaves the stored value unchanged.
func (ht *HTTPTransport) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleUpdateProduct(w, r)
}

func (ht *HTTPTransport) handleUpdateProduct(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "update product failed", "error", err)
		} else {
			log.DebugContext(ctx, "product updated")
		}
	}(r.Context())

	seller, ok := context_.UserFromContext(r.Context())
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

	patch, err := patchFromForm(r)
	if err != nil {
		http_.WriteError(w, http.StatusBadRequest, "invalid price or quantity")

		return fmt.Errorf("parse patch: %w", err)
	}

	if err := ht.catalogSvc.UpdateProduct(r.Context(), seller.ID, productID, patch); err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			http_.WriteError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, domain.ErrProductAlreadyExists):
			http_.WriteError(w, http.StatusConflict, "product already exists")
		case errors.Is(err, domain.ErrInvalidPrice), errors.Is(err, domain.ErrInvalidQuantity):
			http_.WriteError(w, http.StatusBadRequest, "invalid price or quantity")
		default:
			http_.WriteError(w, http.StatusInternalServerError, "internal error")
		}

		return fmt.Errorf("update product: %w", err)
	}

	http_.WriteJSON(w, http.StatusOK, map[string]string{"message": "product updated"})

	return nil
}

// patchFromForm builds a ProductPatch from the request form. Empty form
// values count as absent, mirroring how an empty form submission leaves a
// field untouched.
func patchFromForm(r *http.Request) (domain.ProductPatch, error) {
	var patch domain.ProductPatch

	if name := r.FormValue("name"); name != "" {
		patch.Name = &name
	}

	if description := r.FormValue("description"); description != "" {
		patch.Description = &description
	}

	if priceStr := r.FormValue("price"); priceStr != "" {
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return domain.ProductPatch{}, errors.Join(domain.ErrInvalidPrice, err)
		}

		patch.Price = &price
	}

	if quantityStr := r.FormValue("quantity"); quantityStr != "" {
		quantity, err := strconv.ParseInt(quantityStr, 10, 64)
		if err != nil {
			return domain.ProductPatch{}, errors.Join(domain.ErrInvalidQuantity, err)
		}

		patch.Quantity = &quantity
	}

	return patch, nil
}

// HandleCustomerPanel serves the customer panel: the full catalog.
func (ht *HTTPTransport) HandleCustomerPanel(w http.ResponseWriter, r *http.Request) {
	products, err := ht.catalogSvc.ListProducts(r.Context())
	if err != nil {
		ht.log.ErrorContext(r.Context(), "list products failed", "error", err)
		http_.WriteError(w, http.StatusInternalServerError, "internal error")

		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price.StringFixed(2),
			Quantity:    p.Quantity,
			SellerID:    p.SellerID,
			Version:     p.Version,
		})
	}

	http_.WriteJSON(w, http.StatusOK, map[string]any{"products": views})
}
