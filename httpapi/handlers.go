package httpapi

import (
	"context"

	"github.com/shipq/catalogapi/catalog"
	"github.com/shipq/catalogapi/doughnuts"
	"github.com/shipq/catalogapi/httperror"
)

type doughnutRequest struct {
	DoughnutID int `path:"doughnut_id"`
}

type productRequest struct {
	ProductID int `path:"product_id"`
}

type userRequest struct {
	UserID int `path:"user_id"`
}

type userSalesRequest struct {
	UserID   int    `path:"user_id"`
	DateFrom string `query:"date_from"`
	DateTo   string `query:"date_to"`
}

func (s *server) healthcheck(context.Context) (string, error) {
	return HealthyMessage, nil
}

func (s *server) doughnut(ctx context.Context, req doughnutRequest) (*doughnuts.Doughnut, error) {
	return s.doughnuts.Get(ctx, req.DoughnutID)
}

func (s *server) product(ctx context.Context, req productRequest) (catalog.ProductResult, error) {
	return s.catalog.Product(ctx, req.ProductID)
}

func (s *server) averageSpend(ctx context.Context, req userRequest) (*catalog.AverageSpend, error) {
	return s.catalog.AverageSpend(ctx, req.UserID)
}

func (s *server) userSales(ctx context.Context, req userSalesRequest) ([]catalog.Sale, error) {
	r, err := catalog.ParseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, httperror.BadRequest(err.Error())
	}
	return s.catalog.UserSales(ctx, req.UserID, r)
}

func (s *server) latestSales(ctx context.Context, req userRequest) ([]catalog.Sale, error) {
	return s.catalog.LatestSales(ctx, req.UserID)
}
