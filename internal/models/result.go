package models

// Result is a single search hit with relevance metadata.
type Result struct {
	Record *Record `json:"record"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

// Response is the full search response: paged hits plus the total match count.
type Response struct {
	Results []*Result `json:"results"`
	Total   uint64    `json:"total"`
	Took    int64     `json:"took_ms"`
	Term    string    `json:"term"`
}
