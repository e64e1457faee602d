package history

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SuggestIndex is an optional in-memory full-text index over history
// entries. When attached to a Store it widens SearchHistory beyond
// plain substring matching (word-level matches, prefixes across
// fields). The Store works fine without one.
type SuggestIndex struct {
	index bleve.Index
}

// NewSuggestIndex builds an empty memory-only index.
func NewSuggestIndex() (*SuggestIndex, error) {
	index, err := bleve.NewMemOnly(createSuggestMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create history index: %w", err)
	}
	return &SuggestIndex{index: index}, nil
}

func createSuggestMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	entryMapping := bleve.NewDocumentMapping()

	queryField := bleve.NewTextFieldMapping()
	queryField.Store = false
	queryField.Index = true
	queryField.Analyzer = standard.Name
	entryMapping.AddFieldMappingsAt("query", queryField)

	skillsField := bleve.NewTextFieldMapping()
	skillsField.Store = false
	skillsField.Index = true
	skillsField.Analyzer = standard.Name
	entryMapping.AddFieldMappingsAt("skills", skillsField)

	cityField := bleve.NewTextFieldMapping()
	cityField.Store = false
	cityField.Index = true
	cityField.Analyzer = "keyword"
	entryMapping.AddFieldMappingsAt("city", cityField)

	indexMapping.AddDocumentMapping("entry", entryMapping)
	indexMapping.DefaultType = "entry"
	return indexMapping
}

type suggestDoc struct {
	Query  string   `json:"query"`
	Skills []string `json:"skills"`
	City   string   `json:"city"`
}

// Add indexes (or reindexes) one entry under its ID.
func (s *SuggestIndex) Add(e Entry) error {
	doc := suggestDoc{Query: e.Query.Query}
	for _, sf := range e.Query.Filters.Skills {
		doc.Skills = append(doc.Skills, sf.Name)
	}
	if loc := e.Query.Filters.Location; loc != nil {
		doc.City = loc.City
	}
	return s.index.Index(e.ID, doc)
}

// Delete removes an entry from the index.
func (s *SuggestIndex) Delete(id string) error {
	return s.index.Delete(id)
}

// Search returns the IDs of entries matching term, best first.
func (s *SuggestIndex) Search(term string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}

	q := bleve.NewDisjunctionQuery(
		bleve.NewMatchQuery(term),
		bleve.NewPrefixQuery(term),
	)
	req := bleve.NewSearchRequest(q)
	req.Size = limit

	result, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("history index search failed: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Close releases the index.
func (s *SuggestIndex) Close() error {
	return s.index.Close()
}
