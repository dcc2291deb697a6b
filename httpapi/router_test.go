package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipq/catalogapi/catalog"
	"github.com/shipq/catalogapi/doughnuts"
	"github.com/shipq/catalogapi/failure"
)

type fakeCatalog struct {
	categories []catalog.Category
	products   []catalog.Product
	product    catalog.ProductResult
	users      []catalog.User
	average    *catalog.AverageSpend
	sales      []catalog.Sale
	err        error

	gotID    int
	gotRange catalog.DateRange
}

func (f *fakeCatalog) Categories(context.Context) ([]catalog.Category, error) {
	return f.categories, f.err
}

func (f *fakeCatalog) Products(context.Context) ([]catalog.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalog) Product(_ context.Context, id int) (catalog.ProductResult, error) {
	f.gotID = id
	return f.product, f.err
}

func (f *fakeCatalog) Users(context.Context) ([]catalog.User, error) {
	return f.users, f.err
}

func (f *fakeCatalog) AverageSpend(_ context.Context, id int) (*catalog.AverageSpend, error) {
	f.gotID = id
	return f.average, f.err
}

func (f *fakeCatalog) UserSales(_ context.Context, id int, r catalog.DateRange) ([]catalog.Sale, error) {
	f.gotID = id
	f.gotRange = r
	return f.sales, f.err
}

func (f *fakeCatalog) LatestSales(_ context.Context, id int) ([]catalog.Sale, error) {
	f.gotID = id
	return f.sales, f.err
}

type fakeDoughnuts struct {
	list []doughnuts.Doughnut
	err  error
}

func (f *fakeDoughnuts) List(context.Context) ([]doughnuts.Doughnut, error) {
	return f.list, f.err
}

func (f *fakeDoughnuts) Get(_ context.Context, id int) (*doughnuts.Doughnut, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, d := range f.list {
		if d.DoughnutID == id {
			return &d, nil
		}
	}
	return nil, failure.NotFoundf("No such doughnut: %d", id)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func serve(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Detail
}

func TestHealthcheck(t *testing.T) {
	h := NewRouter(&fakeCatalog{}, &fakeDoughnuts{}, discardLogger())

	w := serve(t, h, "/api/healthcheck")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `"Application is healthy"`, w.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	h := NewRouter(&fakeCatalog{}, &fakeDoughnuts{}, discardLogger())

	w := serve(t, h, "/healthcheck")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", detail(t, w))
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewRouter(&fakeCatalog{}, &fakeDoughnuts{}, discardLogger())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/products", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method Not Allowed", detail(t, w))
}

func TestCatalogRoutes(t *testing.T) {
	cat := &fakeCatalog{
		categories: []catalog.Category{{CategoryID: 1, CategoryName: "Books"}},
		products:   []catalog.Product{{ProductID: 1, Title: "Dune", Description: "Novel", ProductCost: 9.5, Category: "Books"}},
		users:      []catalog.User{{UserID: 1, FirstName: "Ada", LastName: "Lovelace"}},
	}
	h := NewRouter(cat, &fakeDoughnuts{}, discardLogger())

	tests := []struct {
		path string
		want string
	}{
		{"/api/categories", `[{"category_id":1,"category_name":"Books"}]`},
		{"/api/products", `[{"product_id":1,"title":"Dune","description":"Novel","product_cost":9.5,"category":"Books"}]`},
		{"/api/users", `[{"user_id":1,"first_name":"Ada","last_name":"Lovelace"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := serve(t, h, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestProductRoute(t *testing.T) {
	t.Run("single product", func(t *testing.T) {
		cat := &fakeCatalog{product: &catalog.Product{ProductID: 7, Title: "Alien", Category: "Movies"}}
		w := serve(t, NewRouter(cat, &fakeDoughnuts{}, discardLogger()), "/api/products/7")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 7, cat.gotID)
		assert.JSONEq(t, `{"product_id":7,"title":"Alien","description":"","product_cost":0,"category":"Movies"}`, w.Body.String())
	})

	t.Run("ambiguous product", func(t *testing.T) {
		cat := &fakeCatalog{product: &catalog.Ambiguous{ProductID: 3, Error: catalog.AmbiguousMessage}}
		w := serve(t, NewRouter(cat, &fakeDoughnuts{}, discardLogger()), "/api/products/3")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"product_id":3,"error":"Ambiguous result - check database"}`, w.Body.String())
	})

	t.Run("non-integer id", func(t *testing.T) {
		cat := &fakeCatalog{}
		w := serve(t, NewRouter(cat, &fakeDoughnuts{}, discardLogger()), "/api/products/abc")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, detail(t, w), "product_id")
	})
}

func TestErrorTranslation(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "not found",
			err:        failure.ItemNotFound("category"),
			wantStatus: http.StatusNotFound,
			wantDetail: "No instance of category was found in the database.",
		},
		{
			name:       "connection failure",
			err:        failure.Connection(errors.New("Awful error")),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "There was an error connecting to the database: Awful error",
		},
		{
			name:       "driver failure",
			err:        failure.Driver(errors.New("x"), "1146", "Table 'shop.categories' doesn't exist"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Database Error, code 1146, message Table 'shop.categories' doesn't exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			h := NewRouter(&fakeCatalog{err: tt.err}, &fakeDoughnuts{}, logger)

			w := serve(t, h, "/api/categories")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDetail, detail(t, w))

			logs := buf.String()
			assert.Contains(t, logs, `"msg":"request failed"`)
			assert.Contains(t, logs, `"path":"/api/categories"`)
		})
	}
}

func TestUserRoutes(t *testing.T) {
	t.Run("average spend", func(t *testing.T) {
		cat := &fakeCatalog{average: &catalog.AverageSpend{UserID: 4, AverageSpend: 96.33}}
		w := serve(t, NewRouter(cat, &fakeDoughnuts{}, discardLogger()), "/api/users/4/average_spend")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 4, cat.gotID)
		assert.JSONEq(t, `{"user_id":4,"average_spend":96.33}`, w.Body.String())
	})

	t.Run("sales in range", func(t *testing.T) {
		cat := &fakeCatalog{}
		w := serve(t, NewRouter(cat, &fakeDoughnuts{}, discardLogger()), "/api/users/2/sales?date_from=2023-01-01&date_to=2023-01-31")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]\n", w.Body.String())
		assert.Equal(t, 2, cat.gotID)
		assert.Equal(t, "2023-01-01", cat.gotRange.From.Format(catalog.DateLayout))
		assert.Equal(t, "2023-01-31", cat.gotRange.To.Format(catalog.DateLayout))
	})

	t.Run("reversed range", func(t *testing.T) {
		cat := &fakeCatalog{}
		w := serve(t, NewRouter(cat, &fakeDoughnuts{}, discardLogger()), "/api/users/2/sales?date_from=2023-02-01&date_to=2023-01-01")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, detail(t, w), "invalid date range")
		assert.Zero(t, cat.gotID)
	})

	t.Run("missing date", func(t *testing.T) {
		w := serve(t, NewRouter(&fakeCatalog{}, &fakeDoughnuts{}, discardLogger()), "/api/users/2/sales?date_from=2023-02-01")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, detail(t, w), "date_to")
	})

	t.Run("latest sales of unknown user", func(t *testing.T) {
		cat := &fakeCatalog{err: failure.ItemNotFoundWithID("user", 99)}
		w := serve(t, NewRouter(cat, &fakeDoughnuts{}, discardLogger()), "/api/users/99/sales/latest")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "No instance of user was found in the database with id 99.", detail(t, w))
	})
}

func TestDoughnutRoutes(t *testing.T) {
	dn := &fakeDoughnuts{list: []doughnuts.Doughnut{
		{DoughnutID: 1, DoughnutType: "Glazed", Price: 1.5, Calories: 260, ContainsNuts: false},
		{DoughnutID: 2, DoughnutType: "Pistachio", Price: 2.25, Calories: 340, ContainsNuts: true},
	}}
	h := NewRouter(&fakeCatalog{}, dn, discardLogger())

	t.Run("list", func(t *testing.T) {
		w := serve(t, h, "/api/doughnuts")
		assert.Equal(t, http.StatusOK, w.Code)

		var got []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.EqualValues(t, 2, got[1]["doughnut_id"])
		assert.NotContains(t, got[1], "id")
	})

	t.Run("by id", func(t *testing.T) {
		w := serve(t, h, "/api/doughnuts/2")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.Contains(w.Body.String(), `"doughnut_type":"Pistachio"`), w.Body.String())
	})

	t.Run("absent", func(t *testing.T) {
		w := serve(t, h, "/api/doughnuts/9")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "No such doughnut: 9", detail(t, w))
	})

	t.Run("non-integer id", func(t *testing.T) {
		w := serve(t, h, "/api/doughnuts/glazed")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
