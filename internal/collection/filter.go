package collection

import (
	"sort"
	"strings"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/sahilm/fuzzy"
)

// Match is one fuzzy filter hit: a list name (Stub == nil) or a movie in a list.
type Match struct {
	List           string
	Stub           *domain.MovieStub
	MatchedIndexes []int // character positions that matched, for highlighting
	Score          int   // higher is better
}

// filterEntry is one searchable row of the filter index
type filterEntry struct {
	list  string
	stub  *domain.MovieStub
	lower string
}

// filterIndex implements fuzzy.Source over list names and movie titles
type filterIndex []filterEntry

func (idx filterIndex) String(i int) string { return idx[i].lower }
func (idx filterIndex) Len() int            { return len(idx) }

// Filter fuzzy-matches the query against list names and the titles of the
// movies in every list. An empty query matches nothing.
func (e *Engine) Filter(query string) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	c := e.store.Collection()
	var idx filterIndex
	for _, name := range c.Names {
		idx = append(idx, filterEntry{list: name, lower: strings.ToLower(name)})
		for i := range c.Lists[name] {
			stub := c.Lists[name][i]
			idx = append(idx, filterEntry{list: name, stub: &stub, lower: strings.ToLower(stub.Title)})
		}
	}

	found := fuzzy.FindFrom(query, idx)
	sort.Stable(found)

	matches := make([]Match, len(found))
	for i, m := range found {
		entry := idx[m.Index]
		matches[i] = Match{
			List:           entry.list,
			Stub:           entry.stub,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return matches
}
