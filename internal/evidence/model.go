package evidence

// Credential is one search provider secret. Rank is its position in the
// configured order, starting at 1.
type Credential struct {
	Rank   int
	Secret string
}

// Item is one search result used to corroborate or contradict text content.
type Item struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Credentials builds a ranked list from secrets in configured order.
func Credentials(secrets []string) []Credential {
	out := make([]Credential, 0, len(secrets))
	for i, s := range secrets {
		out = append(out, Credential{Rank: i + 1, Secret: s})
	}
	return out
}
