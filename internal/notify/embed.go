package notify

// Embed is a chat-agnostic rich message. Adapters translate it to their
// platform's native shape; the core never sees a platform type.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// ColorGold is the leaderboard accent color.
const ColorGold = 0xF1C40F
