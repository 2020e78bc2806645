package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"shopapp/internal/domain"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

const (
	FieldName        = "name"
	FieldInVacations = "inVacations"
	FieldCreatedAt   = "createdAt"

	batchSize = 500
)

// Document is the indexed projection of a shop
type Document struct {
	Name        string    `json:"name"`
	InVacations bool      `json:"inVacations"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewDocument projects a shop onto its indexed fields
func NewDocument(shop *domain.Shop) Document {
	return Document{
		Name:        shop.Name,
		InVacations: shop.InVacations,
		CreatedAt:   shop.CreatedAt.Time,
	}
}

// Result is one page of hits in relevance order and the total hit count
type Result struct {
	IDs   []int64
	Total int64
}

// Index mirrors shops for full text search. It is safe for concurrent use
// and is not kept transactionally consistent with the relational store.
type Index struct {
	index bleve.Index
}

func newMapping() mapping.IndexMapping {
	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = standard.Name

	shopMapping := bleve.NewDocumentStaticMapping()
	shopMapping.AddFieldMappingsAt(FieldName, nameField)
	shopMapping.AddFieldMappingsAt(FieldInVacations, bleve.NewBooleanFieldMapping())
	shopMapping.AddFieldMappingsAt(FieldCreatedAt, bleve.NewDateTimeFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = shopMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

// Open opens the index at path, creating it when missing. An empty path
// keeps the index in memory.
func Open(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(newMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		return &Index{index: idx}, nil
	}

	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, newMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index at %s: %w", path, err)
	}
	return &Index{index: idx}, nil
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Put indexes or replaces one shop
func (i *Index) Put(shop *domain.Shop) error {
	if err := i.index.Index(docID(shop.ID), NewDocument(shop)); err != nil {
		return fmt.Errorf("failed to index shop %d: %w", shop.ID, err)
	}
	return nil
}

// Remove drops one shop from the index
func (i *Index) Remove(id int64) error {
	if err := i.index.Delete(docID(id)); err != nil {
		return fmt.Errorf("failed to remove shop %d from index: %w", id, err)
	}
	return nil
}

// Count returns the number of indexed documents
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

// Rebuild makes the index mirror shops exactly: documents of shops that no
// longer exist are deleted and every given shop is reindexed. Running it
// twice with the same input leaves the same index.
func (i *Index) Rebuild(ctx context.Context, shops []*domain.Shop) (int, error) {
	current := make(map[string]struct{}, len(shops))
	for _, shop := range shops {
		current[docID(shop.ID)] = struct{}{}
	}

	existing, err := i.allIDs(ctx)
	if err != nil {
		return 0, err
	}

	batch := i.index.NewBatch()
	flush := func() error {
		if batch.Size() == 0 {
			return nil
		}
		if err := i.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to apply index batch: %w", err)
		}
		batch.Reset()
		return ctx.Err()
	}

	for _, id := range existing {
		if _, ok := current[id]; ok {
			continue
		}
		batch.Delete(id)
		if batch.Size() >= batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}

	for _, shop := range shops {
		if err := batch.Index(docID(shop.ID), NewDocument(shop)); err != nil {
			return 0, fmt.Errorf("failed to batch shop %d: %w", shop.ID, err)
		}
		if batch.Size() >= batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}

	if err := flush(); err != nil {
		return 0, err
	}
	return len(shops), nil
}

func (i *Index) allIDs(ctx context.Context) ([]string, error) {
	count, err := i.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count indexed documents: %w", err)
	}

	ids := make([]string, 0, count)
	for from := 0; uint64(from) < count; from += batchSize {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), batchSize, from, false)
		req.SortBy([]string{"_id"})
		res, err := i.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to list indexed documents: %w", err)
		}
		if len(res.Hits) == 0 {
			break
		}
		for _, hit := range res.Hits {
			ids = append(ids, hit.ID)
		}
	}
	return ids, nil
}

// Search runs the query built from criteria and returns one page of shop ids
func (i *Index) Search(ctx context.Context, criteria Criteria, page domain.PageRequest) (*Result, error) {
	req := bleve.NewSearchRequestOptions(BuildQuery(criteria), page.Size, page.Offset(), false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search shops: %w", err)
	}

	ids := make([]int64, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid document id %q: %w", hit.ID, err)
		}
		ids = append(ids, id)
	}

	return &Result{IDs: ids, Total: int64(res.Total)}, nil
}

func (i *Index) Close() error {
	return i.index.Close()
}
