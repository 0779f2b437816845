package store

// Search result kinds.
const (
	kindObjective  = "objective"
	kindKeyResult  = "key_result"
	kindReflection = "reflection"
)

// SearchResult is one search hit. Ref is an ID for objectives and key
// results and a journal path for reflections.
type SearchResult struct {
	Kind    string `json:"kind"`
	Ref     string `json:"ref"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

const defaultSearchLimit = 20
