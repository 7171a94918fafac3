package model

// Gameplay payloads are ephemeral: the relay fans them out to a room's
// members without persisting or validating their game semantics. Whether a
// hit corresponds to a legitimately typed word is trusted to the client.

// Duck describes a spawned word target
type Duck struct {
	ID         string     `json:"id"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Word       string     `json:"word"`
	Difficulty Difficulty `json:"difficulty"`
	Value      int        `json:"value"`
	Speed      float64    `json:"speed"`
}

// EffectKind identifies a visual effect
type EffectKind string

const (
	EffectHit   EffectKind = "hit"
	EffectCombo EffectKind = "combo"
	EffectScore EffectKind = "score"
)

// Effect describes a visual effect trigger at a position
type Effect struct {
	Kind       EffectKind `json:"kind"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Value      int        `json:"value,omitempty"`
	Color      int        `json:"color,omitempty"`
	ComboCount int        `json:"comboCount,omitempty"`
}

// ChatMessage is a chat entry from a player or the system
type ChatMessage struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// SystemAuthor is the author name used for server-generated chat notices
const SystemAuthor = "System"
