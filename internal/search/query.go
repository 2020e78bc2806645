package search

import (
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Fuzziness is the maximum edit distance tolerated on the name
const Fuzziness = 2

// Criteria holds the optional search inputs. Date bounds are inclusive.
type Criteria struct {
	Query         string
	InVacations   *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// IsEmpty reports whether no criterion contributes a clause
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Query) == "" && c.InVacations == nil &&
		c.CreatedAfter == nil && c.CreatedBefore == nil
}

// BuildQuery combines every present criterion with AND. With no criterion
// it matches every document.
func BuildQuery(c Criteria) query.Query {
	var must []query.Query

	if text := strings.TrimSpace(c.Query); text != "" {
		match := bleve.NewMatchQuery(text)
		match.SetField(FieldName)
		match.SetFuzziness(Fuzziness)
		must = append(must, match)
	}

	if c.InVacations != nil {
		vacations := bleve.NewBoolFieldQuery(*c.InVacations)
		vacations.SetField(FieldInVacations)
		must = append(must, vacations)
	}

	if created := createdRange(c.CreatedAfter, c.CreatedBefore); created != nil {
		must = append(must, created)
	}

	if len(must) == 0 {
		return bleve.NewMatchAllQuery()
	}
	return bleve.NewConjunctionQuery(must...)
}

// createdRange returns the inclusive creation date clause, or nil when no
// bound restricts anything. Dates are indexed as unix nanoseconds, so a
// bound outside that span either leaves its side open or matches nothing.
func createdRange(after, before *time.Time) query.Query {
	var start, end time.Time
	if after != nil {
		if after.After(query.MaxRFC3339CompatibleTime) {
			return bleve.NewMatchNoneQuery()
		}
		if !after.Before(query.MinRFC3339CompatibleTime) {
			start = *after
		}
	}
	if before != nil {
		if before.Before(query.MinRFC3339CompatibleTime) {
			return bleve.NewMatchNoneQuery()
		}
		if !before.After(query.MaxRFC3339CompatibleTime) {
			end = *before
		}
	}
	if start.IsZero() && end.IsZero() {
		return nil
	}

	inclusive := true
	created := bleve.NewDateRangeInclusiveQuery(start, end, &inclusive, &inclusive)
	created.SetField(FieldCreatedAt)
	return created
}
