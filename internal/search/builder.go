package search

import (
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/fieldstone/quarry/internal/models"
)

// buildQuery translates a validated query plus its normalized term into a Bleve
// query, scoped to the query's kind. Returns nil when there is nothing to match,
// in which case the engine is never called.
func (e *Engine) buildQuery(q models.Query, term string, fields []string) blevequery.Query {
	var inner blevequery.Query
	switch q.Mode {
	case models.ModePhrase:
		inner = phraseQuery(term, fields)
	case models.ModePhraseWildcard:
		inner = phraseWildcardQuery(term, fields)
	case models.ModeFieldMatch:
		inner = e.fieldMatchQuery(q.Kind, q.Term, term, fields)
	default:
		inner = anyKeywordQuery(term, fields)
	}
	if inner == nil {
		return nil
	}

	kindQuery := bleve.NewTermQuery(q.Kind)
	kindQuery.SetField("kind")
	return bleve.NewConjunctionQuery(kindQuery, inner)
}

// phraseQuery matches the whole term as a phrase on any of the fields.
func phraseQuery(term string, fields []string) blevequery.Query {
	clauses := make([]blevequery.Query, 0, len(fields))
	for _, f := range fields {
		pq := bleve.NewMatchPhraseQuery(term)
		pq.SetField(f)
		clauses = append(clauses, pq)
	}
	return disjunctionOf(clauses)
}

// phraseWildcardQuery requires every token to match as a prefix wildcard on any
// field. A token that carried a leading "=" is matched literally instead.
func phraseWildcardQuery(term string, fields []string) blevequery.Query {
	tokens := strings.Fields(term)
	perToken := make([]blevequery.Query, 0, len(tokens))
	for _, tok := range tokens {
		literal := strings.HasPrefix(tok, literalPrefix)
		tok = strings.TrimPrefix(tok, literalPrefix)
		if tok == "" {
			continue
		}
		clauses := make([]blevequery.Query, 0, len(fields))
		for _, f := range fields {
			if literal {
				tq := bleve.NewTermQuery(tok)
				tq.SetField(f)
				clauses = append(clauses, tq)
			} else {
				wq := bleve.NewWildcardQuery(tok + "*")
				wq.SetField(f)
				clauses = append(clauses, wq)
			}
		}
		perToken = append(perToken, disjunctionOf(clauses))
	}
	if len(perToken) == 0 {
		return nil
	}
	if len(perToken) == 1 {
		return perToken[0]
	}
	return bleve.NewConjunctionQuery(perToken...)
}

// anyKeywordQuery matches any token of the term on any of the fields.
func anyKeywordQuery(term string, fields []string) blevequery.Query {
	clauses := make([]blevequery.Query, 0, len(fields))
	for _, f := range fields {
		mq := bleve.NewMatchQuery(term)
		mq.SetField(f)
		clauses = append(clauses, mq)
	}
	return disjunctionOf(clauses)
}

// fieldMatchQuery treats the raw term as a JSON object of field -> value pairs
// and requires all of them to match. Fields outside the kind's allowed set are
// skipped. A term that does not parse as such an object falls back to
// plain-term handling over the resolved field list.
func (e *Engine) fieldMatchQuery(kind, rawTerm, term string, fields []string) blevequery.Query {
	pairs, ok := parseFieldTerm(rawTerm)
	if !ok {
		return anyKeywordQuery(term, fields)
	}

	names := make([]string, 0, len(pairs))
	for name := range pairs {
		names = append(names, name)
	}
	sort.Strings(names)

	clauses := make([]blevequery.Query, 0, len(names))
	for _, name := range names {
		if !e.registry.Allowed(kind, name) {
			continue
		}
		value := NormalizeTerm(pairs[name])
		value = strings.TrimPrefix(value, literalPrefix)
		if value == "" {
			continue
		}
		mq := bleve.NewMatchQuery(value)
		mq.SetField(name)
		clauses = append(clauses, mq)
	}
	if len(clauses) == 0 {
		return nil
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return bleve.NewConjunctionQuery(clauses...)
}

func disjunctionOf(clauses []blevequery.Query) blevequery.Query {
	if len(clauses) == 0 {
		return nil
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return bleve.NewDisjunctionQuery(clauses...)
}
