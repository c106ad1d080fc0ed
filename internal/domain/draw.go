package domain

// DrawAction is one whiteboard stroke. SenderID is stamped server-side on
// arrival, never trusted from the client.
type DrawAction struct {
	SenderID string  `json:"sender_id"`
	Color    string  `json:"color"`
	StartX   float64 `json:"start_x"`
	StartY   float64 `json:"start_y"`
	EndX     float64 `json:"end_x"`
	EndY     float64 `json:"end_y"`
	Width    float64 `json:"width"`
}
