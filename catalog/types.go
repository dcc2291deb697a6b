package catalog

import "time"

// Category is a row of the categories query.
type Category struct {
	CategoryID   int    `db:"category_id" json:"category_id"`
	CategoryName string `db:"category_name" json:"category_name"`
}

// Product is a row of the products and product queries.
type Product struct {
	ProductID   int     `db:"product_id" json:"product_id"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	ProductCost float64 `db:"product_cost" json:"product_cost"`
	Category    string  `db:"category" json:"category"`
}

func (*Product) productResult() {}

// Ambiguous marks a by-id lookup that matched more than one product.
// It is a normal payload, not an error.
type Ambiguous struct {
	ProductID int    `json:"product_id"`
	Error     string `json:"error"`
}

func (*Ambiguous) productResult() {}

// AmbiguousMessage is the error text embedded in an Ambiguous payload.
const AmbiguousMessage = "Ambiguous result - check database"

// ProductResult is either a *Product or an *Ambiguous marker.
type ProductResult interface {
	productResult()
}

// User is a row of the users query. Contact fields are never selected.
type User struct {
	UserID    int    `db:"user_id" json:"user_id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

// Sale is a row of the user_sales and latest_sales queries.
type Sale struct {
	UserID        int       `db:"user_id" json:"user_id"`
	SalesID       int       `db:"sales_id" json:"sales_id"`
	ProductID     int       `db:"product_id" json:"product_id"`
	NumItems      int       `db:"num_items" json:"num_items"`
	TransactionTS time.Time `db:"transaction_ts" json:"transaction_ts"`
	ProductTitle  string    `db:"product_title" json:"product_title"`
	ProductCost   float64   `db:"product_cost" json:"product_cost"`
	Category      string    `db:"category" json:"category"`
	SaleValue     *float64  `db:"sale_value" json:"sale_value"`
}

// SaleValue is a row of the sales_average query.
type SaleValue struct {
	SalesID     int      `db:"sales_id"`
	ProductID   int      `db:"product_id"`
	NumItems    *int     `db:"num_items"`
	ProductCost *float64 `db:"product_cost"`
	UserID      int      `db:"user_id"`
	SaleValue   *float64 `db:"sale_value"`
}

// AverageSpend is the mean sale value of one user.
type AverageSpend struct {
	UserID       int     `json:"user_id"`
	AverageSpend float64 `json:"average_spend"`
}
