// Package httpapi exposes the catalog and doughnut services over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shipq/catalogapi/catalog"
	"github.com/shipq/catalogapi/doughnuts"
	"github.com/shipq/catalogapi/httperror"
	"github.com/shipq/catalogapi/logging"
)

// Prefix is the path every route is mounted under.
const Prefix = "/api"

// HealthPath is excluded from request logging.
const HealthPath = Prefix + "/healthcheck"

// HealthyMessage is the healthcheck response body.
const HealthyMessage = "Application is healthy"

// Catalog is the database-backed part of the API.
type Catalog interface {
	Categories(ctx context.Context) ([]catalog.Category, error)
	Products(ctx context.Context) ([]catalog.Product, error)
	Product(ctx context.Context, id int) (catalog.ProductResult, error)
	Users(ctx context.Context) ([]catalog.User, error)
	AverageSpend(ctx context.Context, userID int) (*catalog.AverageSpend, error)
	UserSales(ctx context.Context, userID int, r catalog.DateRange) ([]catalog.Sale, error)
	LatestSales(ctx context.Context, userID int) ([]catalog.Sale, error)
}

// Doughnuts is the file-backed part of the API.
type Doughnuts interface {
	List(ctx context.Context) ([]doughnuts.Doughnut, error)
	Get(ctx context.Context, id int) (*doughnuts.Doughnut, error)
}

type server struct {
	catalog   Catalog
	doughnuts Doughnuts
	logger    *slog.Logger
}

// NewRouter builds the HTTP handler serving every route under Prefix.
func NewRouter(cat Catalog, dn Doughnuts, logger *slog.Logger) http.Handler {
	s := &server{catalog: cat, doughnuts: dn, logger: logger}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondHTTPError(w, httperror.NotFound("Not Found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondHTTPError(w, httperror.New(http.StatusMethodNotAllowed, "Method Not Allowed"))
	})

	api := r.PathPrefix(Prefix).Subrouter()
	api.Handle("/healthcheck", wrap(logger, s.healthcheck)).Methods(http.MethodGet)

	api.Handle("/doughnuts", wrap(logger, s.doughnuts.List)).Methods(http.MethodGet)
	api.Handle("/doughnuts/{doughnut_id}", wrapReq(logger, s.doughnut)).Methods(http.MethodGet)

	api.Handle("/categories", wrap(logger, s.catalog.Categories)).Methods(http.MethodGet)
	api.Handle("/products", wrap(logger, s.catalog.Products)).Methods(http.MethodGet)
	api.Handle("/products/{product_id}", wrapReq(logger, s.product)).Methods(http.MethodGet)

	api.Handle("/users", wrap(logger, s.catalog.Users)).Methods(http.MethodGet)
	api.Handle("/users/{user_id}/average_spend", wrapReq(logger, s.averageSpend)).Methods(http.MethodGet)
	api.Handle("/users/{user_id}/sales", wrapReq(logger, s.userSales)).Methods(http.MethodGet)
	api.Handle("/users/{user_id}/sales/latest", wrapReq(logger, s.latestSales)).Methods(http.MethodGet)

	return logging.Decorate([]string{HealthPath}, logger, r)
}
