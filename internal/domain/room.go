package domain

// RoomConfig is the mutable room-wide configuration. HostID is empty until
// the first participant is admitted and is never reassigned afterwards.
type RoomConfig struct {
	RoomName        string `json:"room_name"`
	IsLocked        bool   `json:"is_locked"`
	IsRecording     bool   `json:"is_recording"`
	LobbyEnabled    bool   `json:"lobby_enabled"`
	MaxParticipants uint32 `json:"max_participants"`
	HostID          string `json:"host_id,omitempty"`
}

func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		RoomName:        "Default Room",
		MaxParticipants: 100,
	}
}

// BreakoutRoom is a secondary grouping that scopes chat and typing
// visibility. Participants reference it through their location.
type BreakoutRoom struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
