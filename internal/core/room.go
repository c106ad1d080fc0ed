package core

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/juncto/meet/internal/domain"
)

// AdmitStatus is the outcome of an admission attempt.
type AdmitStatus int

const (
	StatusAdmitted AdmitStatus = iota
	StatusLocked
	StatusFull
	StatusKnock
)

type AdmitResult struct {
	Status     AdmitStatus
	BecameHost bool
}

// Room is the single source of truth for room state. Every exported
// operation is one mutually-exclusive critical section; no caller ever
// observes a partially-updated collection, and nothing blocking runs under
// the lock.
type Room struct {
	mu           sync.Mutex
	config       domain.RoomConfig
	participants map[string]*domain.Participant
	knocking     map[string]*Knock
	chatHistory  []domain.ChatMessage
	polls        map[string]*domain.Poll
	whiteboard   []domain.DrawAction
	breakouts    map[string]string // id -> name
	locations    map[string]string // participant id -> sub-room id, "" = main
	videoURL     string
	stream       *Stream
}

func NewRoom(streamCapacity int) *Room {
	r := &Room{stream: NewStream(streamCapacity)}
	r.reset(domain.DefaultRoomConfig())
	return r
}

// Stream returns the room-wide event feed.
func (r *Room) Stream() *Stream { return r.stream }

func (r *Room) reset(cfg domain.RoomConfig) {
	cfg.HostID = ""
	r.config = cfg
	r.participants = make(map[string]*domain.Participant)
	r.knocking = make(map[string]*Knock)
	r.chatHistory = nil
	r.polls = make(map[string]*domain.Poll)
	r.whiteboard = nil
	r.breakouts = make(map[string]string)
	r.locations = make(map[string]string)
	r.videoURL = ""
}

// Reset clears every collection and replaces the configuration. Models the
// single-tenant process: one room at a time, recreated per creation request.
func (r *Room) Reset(cfg domain.RoomConfig) domain.RoomConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset(cfg)
	log.Info().Str("module", "core.room").Str("name", cfg.RoomName).Msg("room reset")
	return r.config
}

func (r *Room) Config() domain.RoomConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config
}

// Admit runs the full admission decision for a fresh join: locked rooms
// reject, lobby-enabled rooms defer to knocking, otherwise capacity is
// checked and the participant inserted. The first admitted participant
// becomes host.
func (r *Room) Admit(p *domain.Participant) AdmitResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.config.IsLocked {
		return AdmitResult{Status: StatusLocked}
	}
	if r.config.LobbyEnabled {
		return AdmitResult{Status: StatusKnock}
	}
	return r.insert(p)
}

// Promote inserts a knocker the host approved. Lobby and lock no longer
// apply, capacity still does.
func (r *Room) Promote(p *domain.Participant) AdmitResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(p)
}

func (r *Room) insert(p *domain.Participant) AdmitResult {
	if uint32(len(r.participants)) >= r.config.MaxParticipants {
		return AdmitResult{Status: StatusFull}
	}
	res := AdmitResult{Status: StatusAdmitted}
	r.participants[p.ID] = p
	r.locations[p.ID] = ""
	if r.config.HostID == "" {
		r.config.HostID = p.ID
		res.BecameHost = true
	}
	log.Info().Str("module", "core.room").Str("id", p.ID).Bool("host", res.BecameHost).Msg("participant admitted")
	return res
}

// RemoveParticipant deletes the participant and its location. The reported
// presence lets racing cleanup paths agree on who publishes the departure.
func (r *Room) RemoveParticipant(id string) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	delete(r.participants, id)
	delete(r.locations, id)
	log.Info().Str("module", "core.room").Str("id", id).Msg("participant removed")
	return *p, true
}

// UpdateParticipant applies fn to the participant under the lock and
// returns the updated copy.
func (r *Room) UpdateParticipant(id string, fn func(*domain.Participant)) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return domain.Participant{}, false
	}
	fn(p)
	return *p, true
}

func (r *Room) Participants() []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Room) ParticipantCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

func (r *Room) IsHost(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return id != "" && r.config.HostID == id
}

// AddKnock parks a pending admission request.
func (r *Room) AddKnock(k *Knock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.knocking[k.Participant.ID] = k
	log.Info().Str("module", "core.room").Str("id", k.Participant.ID).Msg("knock parked")
}

// RemoveKnock consumes the decision slot. Exactly one of the racing paths
// (grant, deny, expiry, disconnect) observes ok and acts on it.
func (r *Room) RemoveKnock(id string) (*Knock, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.knocking[id]
	if !ok {
		return nil, false
	}
	delete(r.knocking, id)
	return k, true
}

func (r *Room) Knocks() []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Participant, 0, len(r.knocking))
	for _, k := range r.knocking {
		out = append(out, k.Participant)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ToggleLock flips the locked flag. Host only; non-host calls are no-ops.
func (r *Room) ToggleLock(by string) (domain.RoomConfig, bool) {
	return r.toggleConfig(by, func(c *domain.RoomConfig) { c.IsLocked = !c.IsLocked })
}

func (r *Room) ToggleRecording(by string) (domain.RoomConfig, bool) {
	return r.toggleConfig(by, func(c *domain.RoomConfig) { c.IsRecording = !c.IsRecording })
}

func (r *Room) ToggleLobby(by string) (domain.RoomConfig, bool) {
	return r.toggleConfig(by, func(c *domain.RoomConfig) { c.LobbyEnabled = !c.LobbyEnabled })
}

func (r *Room) toggleConfig(by string, fn func(*domain.RoomConfig)) (domain.RoomConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if by == "" || by != r.config.HostID {
		return domain.RoomConfig{}, false
	}
	fn(&r.config)
	return r.config, true
}

// Kick removes target if by is the host. The caller publishes the paired
// kicked/departed events on success.
func (r *Room) Kick(by, target string) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if by == "" || by != r.config.HostID {
		return domain.Participant{}, false
	}
	p, ok := r.participants[target]
	if !ok {
		return domain.Participant{}, false
	}
	delete(r.participants, target)
	delete(r.locations, target)
	log.Info().Str("module", "core.room").Str("by", by).Str("target", target).Msg("participant kicked")
	return *p, true
}

// AppendChat records the message, returning the sender's sub-room for event
// scoping and whether the message was persisted. Only public messages sent
// from the main room enter the shared history.
func (r *Room) AppendChat(msg domain.ChatMessage) (subRoom string, persisted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subRoom = r.locations[msg.UserID]
	if msg.RecipientID == nil && subRoom == "" {
		r.chatHistory = append(r.chatHistory, msg)
		persisted = true
	}
	return subRoom, persisted
}

func (r *Room) ChatHistory() []domain.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ChatMessage, len(r.chatHistory))
	copy(out, r.chatHistory)
	return out
}

// CreatePoll stores the poll, replacing an empty client-supplied id with a
// generated one so ids stay unique.
func (r *Room) CreatePoll(p domain.Poll) domain.Poll {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Voters == nil {
		p.Voters = []string{}
	}
	stored := p
	r.polls[p.ID] = &stored
	return p
}

// Vote records a single vote. Double votes, unknown polls, and unknown
// options are no-ops that increment nothing.
func (r *Room) Vote(voter, pollID string, optionID uint32) (domain.Poll, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[pollID]
	if !ok || p.HasVoted(voter) {
		return domain.Poll{}, false
	}
	for i := range p.Options {
		if p.Options[i].ID == optionID {
			p.Options[i].Votes++
			p.Voters = append(p.Voters, voter)
			return clonePoll(p), true
		}
	}
	return domain.Poll{}, false
}

func (r *Room) Polls() []domain.Poll {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Poll, 0, len(r.polls))
	for _, p := range r.polls {
		out = append(out, clonePoll(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func clonePoll(p *domain.Poll) domain.Poll {
	out := *p
	out.Options = append([]domain.PollOption(nil), p.Options...)
	out.Voters = append([]string(nil), p.Voters...)
	return out
}

// AppendDraw appends a stroke to the append-only whiteboard log.
func (r *Room) AppendDraw(d domain.DrawAction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.whiteboard = append(r.whiteboard, d)
}

func (r *Room) Whiteboard() []domain.DrawAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.DrawAction, len(r.whiteboard))
	copy(out, r.whiteboard)
	return out
}

// CreateBreakout registers a sub-room under a generated id.
func (r *Room) CreateBreakout(name string) domain.BreakoutRoom {
	r.mu.Lock()
	defer r.mu.Unlock()
	br := domain.BreakoutRoom{ID: uuid.NewString(), Name: name}
	r.breakouts[br.ID] = br.Name
	return br
}

func (r *Room) Breakouts() []domain.BreakoutRoom {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.BreakoutRoom, 0, len(r.breakouts))
	for id, name := range r.breakouts {
		out = append(out, domain.BreakoutRoom{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// JoinBreakout reassigns the participant's location. Empty roomID returns
// to main; unknown rooms and unknown participants are no-ops.
func (r *Room) JoinBreakout(pid, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.participants[pid]; !ok {
		return false
	}
	if roomID != "" {
		if _, ok := r.breakouts[roomID]; !ok {
			return false
		}
	}
	r.locations[pid] = roomID
	return true
}

// Location returns the participant's current sub-room, "" for main. Read
// fresh per filtered event, never cached by subscribers.
func (r *Room) Location(pid string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locations[pid]
}

// SetVideoURL records the active shared video so late joiners can catch up.
func (r *Room) SetVideoURL(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videoURL = url
}

func (r *Room) ClearVideoURL() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videoURL = ""
}

func (r *Room) VideoURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.videoURL
}
