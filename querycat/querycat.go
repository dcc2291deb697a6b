// Package querycat holds the fixed catalog of SQL statements served by the API.
//
// Statements use @name placeholders. The dbconn package binds them as
// parameters for every supported dialect; values are never spliced into the
// SQL text.
package querycat

import (
	"fmt"
	"slices"
)

// Name is the logical name of a catalog entry.
type Name string

const (
	Categories   Name = "categories"
	Products     Name = "products"
	Product      Name = "product"
	SalesAverage Name = "sales_average"
	Users        Name = "users"
	UserSales    Name = "user_sales"
	LatestSales  Name = "latest_sales"
)

const categoriesSQL = `select
c.id as category_id,
c.category_name
from categories c
order by c.id`

const productsSQL = `select
p.id as product_id,
p.title,
p.description,
p.product_cost,
c.category_name as category
from products p
inner join categories c on p.category_id = c.id
order by p.id`

const productSQL = `select
p.id as product_id,
p.title,
p.description,
p.product_cost,
c.category_name as category
from products p
inner join categories c on p.category_id = c.id
where p.id = @product_id`

const salesAverageSQL = `select
s.id as sales_id,
s.product_id,
s.num_items,
p.product_cost,
s.buyer_id as user_id,
s.num_items * p.product_cost as sale_value
from sales s
inner join products p on s.product_id = p.id
where s.buyer_id = @user_id`

const usersSQL = `select
id as user_id,
first_name,
last_name
from users
order by id`

const saleColumns = `select
s.buyer_id as user_id,
s.id as sales_id,
s.product_id,
s.num_items,
s.transaction_ts,
p.title as product_title,
p.product_cost,
c.category_name as category,
s.num_items * p.product_cost as sale_value
from sales s
inner join products p on s.product_id = p.id
inner join categories c on p.category_id = c.id
`

const userSalesSQL = saleColumns + `where s.buyer_id = @user_id
and s.transaction_ts >= @date_from
and s.transaction_ts <= @date_to
order by s.transaction_ts`

const latestSalesSQL = saleColumns + `where s.buyer_id = @user_id
order by s.transaction_ts desc
limit 5`

var queries = map[Name]string{
	Categories:   categoriesSQL,
	Products:     productsSQL,
	Product:      productSQL,
	SalesAverage: salesAverageSQL,
	Users:        usersSQL,
	UserSales:    userSalesSQL,
	LatestSales:  latestSalesSQL,
}

// Lookup returns the SQL text registered under name.
func Lookup(name Name) (string, bool) {
	q, ok := queries[name]
	return q, ok
}

// MustResolve returns the SQL text for name.
// Panics if name is not in the catalog (indicates programmer error).
func MustResolve(name Name) string {
	q, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("querycat: unknown query %q", name))
	}
	return q
}

// Names returns every catalog name in sorted order.
func Names() []Name {
	names := make([]Name, 0, len(queries))
	for n := range queries {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
