package service

import (
	"time"

	"shopapp/internal/domain"
	"shopapp/internal/repository"
)

// ShopListParams are the optional inputs of a shop listing
type ShopListParams struct {
	SortBy        *string
	InVacations   *bool
	CreatedAfter  *domain.Date
	CreatedBefore *domain.Date
}

type shopQueryRule struct {
	name    string
	matches func(p ShopListParams) bool
	query   func(p ShopListParams) repository.ShopQuery
}

// shopQueryRules is evaluated top to bottom and the first matching rule is
// the only one executed. A sort key suppresses every filter, and only the
// filters named by the rule are applied.
var shopQueryRules = []shopQueryRule{
	{
		name:    "sorted",
		matches: func(p ShopListParams) bool { return p.SortBy != nil },
		query: func(p ShopListParams) repository.ShopQuery {
			return repository.ShopQuery{OrderBy: sortOrder(*p.SortBy)}
		},
	},
	{
		name:    "vacations+after+before",
		matches: func(p ShopListParams) bool { return p.InVacations != nil && p.CreatedAfter != nil && p.CreatedBefore != nil },
		query: func(p ShopListParams) repository.ShopQuery {
			return repository.ShopQuery{InVacations: p.InVacations, CreatedAfter: dayOf(p.CreatedAfter), CreatedBefore: dayOf(p.CreatedBefore)}
		},
	},
	{
		name:    "vacations+before",
		matches: func(p ShopListParams) bool { return p.InVacations != nil && p.CreatedBefore != nil },
		query: func(p ShopListParams) repository.ShopQuery {
			return repository.ShopQuery{InVacations: p.InVacations, CreatedBefore: dayOf(p.CreatedBefore)}
		},
	},
	{
		name:    "vacations+after",
		matches: func(p ShopListParams) bool { return p.InVacations != nil && p.CreatedAfter != nil },
		query: func(p ShopListParams) repository.ShopQuery {
			return repository.ShopQuery{InVacations: p.InVacations, CreatedAfter: dayOf(p.CreatedAfter)}
		},
	},
	{
		name:    "vacations",
		matches: func(p ShopListParams) bool { return p.InVacations != nil },
		query: func(p ShopListParams) repository.ShopQuery {
			return repository.ShopQuery{InVacations: p.InVacations}
		},
	},
	{
		name:    "after+before",
		matches: func(p ShopListParams) bool { return p.CreatedAfter != nil && p.CreatedBefore != nil },
		query: func(p ShopListParams) repository.ShopQuery {
			return repository.ShopQuery{CreatedAfter: dayOf(p.CreatedAfter), CreatedBefore: dayOf(p.CreatedBefore)}
		},
	},
	{
		name:    "before",
		matches: func(p ShopListParams) bool { return p.CreatedBefore != nil },
		query: func(p ShopListParams) repository.ShopQuery {
			return repository.ShopQuery{CreatedBefore: dayOf(p.CreatedBefore)}
		},
	},
	{
		name:    "after",
		matches: func(p ShopListParams) bool { return p.CreatedAfter != nil },
		query: func(p ShopListParams) repository.ShopQuery {
			return repository.ShopQuery{CreatedAfter: dayOf(p.CreatedAfter)}
		},
	},
	{
		name:    "all",
		matches: func(ShopListParams) bool { return true },
		query:   func(ShopListParams) repository.ShopQuery { return repository.ShopQuery{} },
	},
}

// resolveShopQuery picks the first matching rule
func resolveShopQuery(p ShopListParams) (string, repository.ShopQuery) {
	for _, rule := range shopQueryRules {
		if rule.matches(p) {
			q := rule.query(p)
			if q.OrderBy == "" {
				q.OrderBy = repository.ShopOrderID
			}
			return rule.name, q
		}
	}
	// unreachable, the last rule always matches
	return "all", repository.ShopQuery{OrderBy: repository.ShopOrderID}
}

// sortOrder maps the public sort key, unknown keys order by product count
func sortOrder(sortBy string) repository.ShopOrder {
	switch sortBy {
	case "name":
		return repository.ShopOrderName
	case "createdAt":
		return repository.ShopOrderCreatedAt
	default:
		return repository.ShopOrderNbProducts
	}
}

func dayOf(d *domain.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
