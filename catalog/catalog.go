// Package catalog shapes query results for the product, category, user and
// sales endpoints.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shipq/catalogapi/failure"
	"github.com/shipq/catalogapi/query"
	"github.com/shipq/catalogapi/querycat"
)

// Service answers catalog requests on top of a query.Runner.
type Service struct {
	runner query.Runner
	logger *slog.Logger
}

// New creates a Service.
func New(runner query.Runner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{runner: runner, logger: logger}
}

// list runs name and decodes it, reporting an empty result as NotFound for item.
func list[T any](ctx context.Context, s *Service, name querycat.Name, item string, params query.Params) ([]T, error) {
	rs, err := s.runner.Run(ctx, name, params)
	if err != nil {
		return nil, err
	}
	if rs.Len() == 0 {
		return nil, failure.ItemNotFound(item)
	}
	return query.Decode[T](rs)
}

// Categories returns every category.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return list[Category](ctx, s, querycat.Categories, "category", nil)
}

// Products returns every product with its category name.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return list[Product](ctx, s, querycat.Products, "product", nil)
}

// Users returns every user without contact details.
func (s *Service) Users(ctx context.Context) ([]User, error) {
	return list[User](ctx, s, querycat.Users, "user", nil)
}

// Product looks up a single product. More than one match is returned as an
// *Ambiguous payload rather than an error.
func (s *Service) Product(ctx context.Context, id int) (ProductResult, error) {
	rs, err := s.runner.Run(ctx, querycat.Product, query.Params{"product_id": id})
	if err != nil {
		return nil, err
	}

	switch rs.Len() {
	case 0:
		return nil, failure.ItemNotFoundWithID("product", id)
	case 1:
		products, err := query.Decode[Product](rs)
		if err != nil {
			return nil, err
		}
		return &products[0], nil
	default:
		s.logger.Warn("ambiguous product lookup", "product_id", id, "rows", rs.Len(), "kind", failure.AmbiguousResult.String())
		return &Ambiguous{ProductID: id, Error: AmbiguousMessage}, nil
	}
}

// CheckUser fails with NotFound unless a user with id exists.
func (s *Service) CheckUser(ctx context.Context, id int) error {
	users, err := s.Users(ctx)
	if err != nil {
		if failure.Is(err, failure.NotFound) {
			return failure.ItemNotFoundWithID("user", id)
		}
		return err
	}

	matches := 0
	for _, u := range users {
		if u.UserID == id {
			matches++
		}
	}
	switch {
	case matches == 0:
		return failure.ItemNotFoundWithID("user", id)
	case matches > 1:
		s.logger.Warn("duplicate user id", "user_id", id, "rows", matches)
	}
	return nil
}

// AverageSpend returns the mean sale value of a user rounded to two
// decimal places. Sales without a value are ignored. A user with no valued
// sales is reported as NotFound.
func (s *Service) AverageSpend(ctx context.Context, userID int) (*AverageSpend, error) {
	if err := s.CheckUser(ctx, userID); err != nil {
		return nil, err
	}

	rs, err := s.runner.Run(ctx, querycat.SalesAverage, query.Params{"user_id": userID})
	if err != nil {
		return nil, err
	}
	rows, err := query.Decode[SaleValue](rs)
	if err != nil {
		return nil, err
	}

	avg, ok := meanSaleValue(rows)
	if !ok {
		return nil, failure.ItemNotFoundWithID("user", userID)
	}
	return &AverageSpend{UserID: userID, AverageSpend: avg}, nil
}

func meanSaleValue(rows []SaleValue) (float64, bool) {
	sum := decimal.Zero
	n := 0
	for _, r := range rows {
		if r.SaleValue == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(*r.SaleValue))
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64(), true
}

// ErrInvalidDateRange is returned by ParseDateRange for malformed or
// reversed bounds.
var ErrInvalidDateRange = errors.New("invalid date range")

// DateLayout is the accepted format of date_from and date_to.
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of whole calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange parses two yyyy-mm-dd dates. The upper bound is widened to
// 23:59:59.99 on its day so the whole end date is included.
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: date_from %q is not yyyy-mm-dd", ErrInvalidDateRange, from)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: date_to %q is not yyyy-mm-dd", ErrInvalidDateRange, to)
	}
	if t.Before(f) {
		return DateRange{}, fmt.Errorf("%w: date_from %s is after date_to %s", ErrInvalidDateRange, from, to)
	}
	return DateRange{
		From: f,
		To:   t.Add(23*time.Hour + 59*time.Minute + 59*time.Second + 990*time.Millisecond),
	}, nil
}

// UserSales returns the sales of a user within r, oldest first. An existing
// user with no sales in range gets an empty list.
func (s *Service) UserSales(ctx context.Context, userID int, r DateRange) ([]Sale, error) {
	if err := s.CheckUser(ctx, userID); err != nil {
		return nil, err
	}
	rs, err := s.runner.Run(ctx, querycat.UserSales, query.Params{
		"user_id":   userID,
		"date_from": r.From,
		"date_to":   r.To,
	})
	if err != nil {
		return nil, err
	}
	return query.Decode[Sale](rs)
}

// LatestSales returns up to five of the most recent sales of a user, newest
// first.
func (s *Service) LatestSales(ctx context.Context, userID int) ([]Sale, error) {
	if err := s.CheckUser(ctx, userID); err != nil {
		return nil, err
	}
	rs, err := s.runner.Run(ctx, querycat.LatestSales, query.Params{"user_id": userID})
	if err != nil {
		return nil, err
	}
	return query.Decode[Sale](rs)
}
