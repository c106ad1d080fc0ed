package domain

type PollOption struct {
	ID    uint32 `json:"id"`
	Text  string `json:"text"`
	Votes uint32 `json:"votes"`
}

// Poll keeps per-option counts plus the set of voter ids. A voter id
// appears at most once, however many vote commands it sends.
type Poll struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
	Voters   []string     `json:"voters"`
}

func (p *Poll) HasVoted(id string) bool {
	for _, v := range p.Voters {
		if v == id {
			return true
		}
	}
	return false
}
