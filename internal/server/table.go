package server

import (
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/dealerd/internal/game"
	"github.com/lox/dealerd/internal/server/history"
)

// Broadcaster delivers messages to connected clients. The WebSocket
// server implements it; tests substitute a recorder.
type Broadcaster interface {
	BroadcastToTable(tableID string, msg *Message)
	SendToPlayer(playerID string, msg *Message) error
}

// HistoryRecorder records completed hands
type HistoryRecorder interface {
	Append(rec history.Record) error
}

// Service is the registry of tables and the entry point for all game
// operations arriving from connections.
type Service struct {
	broadcaster Broadcaster
	historyRec  HistoryRecorder
	clock       quartz.Clock
	logger      *log.Logger

	mu     sync.RWMutex
	tables map[string]*Table
}

// NewService creates a game service. broadcaster and historyRec may be
// nil, disabling client notifications and hand persistence.
func NewService(logger *log.Logger, clock quartz.Clock, broadcaster Broadcaster, historyRec HistoryRecorder) *Service {
	return &Service{
		broadcaster: broadcaster,
		historyRec:  historyRec,
		clock:       clock,
		logger:      logger.WithPrefix("game"),
		tables:      make(map[string]*Table),
	}
}

// CreateTable registers a table from its configuration
func (s *Service) CreateTable(cfg TableConfig) *Table {
	t := &Table{
		ID:          cfg.Name,
		cfg:         cfg,
		clock:       s.clock,
		broadcaster: s.broadcaster,
		historyRec:  s.historyRec,
		logger:      s.logger.With("table", cfg.Name),
	}

	s.mu.Lock()
	s.tables[t.ID] = t
	s.mu.Unlock()

	s.logger.Info("Table created", "table", t.ID,
		"blinds", cfg.SmallBlind, "bigBlind", cfg.BigBlind, "maxPlayers", cfg.MaxPlayers)
	return t
}

// GetTable returns a table by ID, or nil
func (s *Service) GetTable(tableID string) *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[tableID]
}

// ListTables returns summaries of all tables
func (s *Service) ListTables() []TableInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]TableInfo, 0, len(s.tables))
	for _, t := range s.tables {
		infos = append(infos, t.Info())
	}
	return infos
}

// JoinTable seats a player at a table
func (s *Service) JoinTable(tableID, playerID string, buyIn int) (*TableJoinedData, error) {
	t := s.GetTable(tableID)
	if t == nil {
		return nil, NotFoundf("table %s not found", tableID)
	}
	return t.Join(playerID, buyIn)
}

// LeaveTable removes a player from a table. A player in an active hand
// is folded first and leaves when the hand completes.
func (s *Service) LeaveTable(tableID, playerID string) error {
	t := s.GetTable(tableID)
	if t == nil {
		return NotFoundf("table %s not found", tableID)
	}
	return t.Leave(playerID)
}

// StartGame begins the next hand at a table
func (s *Service) StartGame(tableID string) (*GameStartedData, error) {
	t := s.GetTable(tableID)
	if t == nil {
		return nil, NotFoundf("table %s not found", tableID)
	}
	return t.StartHand()
}

// PlayerAction applies a player's action to the identified hand
func (s *Service) PlayerAction(tableID string, handNumber int, playerID, action string, amount int) error {
	t := s.GetTable(tableID)
	if t == nil {
		return NotFoundf("table %s not found", tableID)
	}

	parsed, err := game.ParseAction(action)
	if err != nil {
		return FailedPreconditionf("%s", err)
	}
	return t.Action(handNumber, playerID, parsed, amount)
}

// TableState returns the public record of a table
func (s *Service) TableState(tableID string) (*TableStateData, error) {
	t := s.GetTable(tableID)
	if t == nil {
		return nil, NotFoundf("table %s not found", tableID)
	}
	state := t.State()
	return &state, nil
}

// seatState is a player's position at the table between hands
type seatState struct {
	PlayerID string
	Chips    int
	Leaving  bool
}

// Table holds the seats, button and hand sequence for one table. Hands
// themselves run inside a HandRunner; the table applies results back
// when each hand completes.
type Table struct {
	ID          string
	cfg         TableConfig
	clock       quartz.Clock
	broadcaster Broadcaster
	historyRec  HistoryRecorder
	logger      *log.Logger

	// rng drives deck shuffles; nil uses the global source
	rng *rand.Rand

	mu         sync.Mutex
	seats      []*seatState
	button     int
	handNumber int
	runner     *HandRunner
}

// Info returns a summary for table listings
func (t *Table) Info() TableInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TableInfo{
		ID:          t.ID,
		PlayerCount: len(t.seats),
		MaxPlayers:  t.cfg.MaxPlayers,
		SmallBlind:  t.cfg.SmallBlind,
		BigBlind:    t.cfg.BigBlind,
		HandActive:  t.runner != nil,
	}
}

// Join seats a player. A zero buyIn takes the table's starting stack.
// Players joining mid-hand are dealt in from the next hand.
func (t *Table) Join(playerID string, buyIn int) (*TableJoinedData, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.seats {
		if s.PlayerID == playerID {
			return nil, FailedPreconditionf("player %s is already seated at %s", playerID, t.ID)
		}
	}
	if len(t.seats) >= t.cfg.MaxPlayers {
		return nil, FailedPreconditionf("table %s is full", t.ID)
	}

	chips := buyIn
	if chips <= 0 {
		chips = t.cfg.StartChips
	}
	t.seats = append(t.seats, &seatState{PlayerID: playerID, Chips: chips})
	seat := len(t.seats) - 1

	t.logger.Info("Player joined", "player", playerID, "seat", seat, "chips", chips)

	players := make([]SeatState, len(t.seats))
	for i, s := range t.seats {
		players[i] = SeatState{Seat: i, PlayerID: s.PlayerID, Name: s.PlayerID, Chips: s.Chips}
	}
	return &TableJoinedData{TableID: t.ID, Seat: seat, Chips: chips, Players: players}, nil
}

// Leave removes a player. During an active hand the player is folded
// and the seat is released when the hand completes.
func (t *Table) Leave(playerID string) error {
	t.mu.Lock()

	idx := -1
	for i, s := range t.seats {
		if s.PlayerID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.mu.Unlock()
		return NotFoundf("player %s is not seated at %s", playerID, t.ID)
	}

	runner := t.runner
	if runner != nil && runner.seatOf(playerID) != -1 {
		t.seats[idx].Leaving = true
		t.mu.Unlock()

		t.logger.Info("Player leaving mid-hand, folding", "player", playerID)
		return runner.Resign(playerID)
	}

	t.seats = append(t.seats[:idx], t.seats[idx+1:]...)
	if t.button >= len(t.seats) {
		t.button = 0
	}
	t.mu.Unlock()

	t.logger.Info("Player left", "player", playerID)
	return nil
}

// StartHand deals the next hand
func (t *Table) StartHand() (*GameStartedData, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runner != nil {
		return nil, FailedPreconditionf("hand %d is already in progress at %s", t.handNumber, t.ID)
	}
	if len(t.seats) < 2 {
		return nil, FailedPreconditionf("table %s needs at least 2 players, has %d", t.ID, len(t.seats))
	}

	playerIDs := make([]string, len(t.seats))
	chips := make([]int, len(t.seats))
	for i, s := range t.seats {
		playerIDs[i] = s.PlayerID
		chips[i] = s.Chips
	}

	runner, err := newHandRunner(t, t.handNumber+1, playerIDs, chips, t.button)
	if err != nil {
		return nil, FailedPreconditionf("cannot start hand: %s", err)
	}
	t.handNumber++
	t.runner = runner

	t.logger.Info("Hand started", "handId", runner.handID, "handNumber", t.handNumber,
		"button", t.button, "players", len(playerIDs))

	runner.start()

	return &GameStartedData{TableID: t.ID, HandID: runner.handID, HandNumber: t.handNumber}, nil
}

// Action routes an action to the current hand
func (t *Table) Action(handNumber int, playerID string, action game.Action, amount int) error {
	t.mu.Lock()
	runner := t.runner
	t.mu.Unlock()

	if runner == nil {
		return FailedPreconditionf("no hand in progress at %s", t.ID)
	}
	return runner.Submit(handNumber, playerID, action, amount)
}

// State returns the public record of the table. During a hand it is the
// runner's latest snapshot; between hands only the seats and blinds.
func (t *Table) State() TableStateData {
	t.mu.Lock()
	runner := t.runner
	t.mu.Unlock()

	if runner != nil {
		return runner.Snapshot()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	seats := make([]SeatState, len(t.seats))
	for i, s := range t.seats {
		seats[i] = SeatState{Seat: i, PlayerID: s.PlayerID, Name: s.PlayerID, Chips: s.Chips}
	}
	return TableStateData{
		TableID:    t.ID,
		HandNumber: t.handNumber,
		Button:     t.button,
		ActiveSeat: -1,
		Seats:      seats,
		SmallBlind: t.cfg.SmallBlind,
		BigBlind:   t.cfg.BigBlind,
	}
}

// handFinished applies a completed hand's results back to the table:
// final stacks, button rotation and seat cleanup. Called from the
// runner's goroutine once the hand has resolved.
func (t *Table) handFinished(r *HandRunner) {
	t.mu.Lock()

	// The button moves to the next seat still holding chips
	nextButtonID := r.playerIDs[game.NextButton(r.hand.Players, r.hand.Button)]

	bySeat := make(map[string]int, len(r.playerIDs))
	for i, id := range r.playerIDs {
		bySeat[id] = r.hand.Players[i].Chips
	}

	kept := t.seats[:0]
	for _, s := range t.seats {
		if chips, ok := bySeat[s.PlayerID]; ok {
			s.Chips = chips
		}
		if s.Leaving || s.Chips == 0 {
			t.logger.Info("Seat released", "player", s.PlayerID,
				"chips", s.Chips, "leaving", s.Leaving)
			continue
		}
		kept = append(kept, s)
	}
	t.seats = kept

	t.button = 0
	for i, s := range t.seats {
		if s.PlayerID == nextButtonID {
			t.button = i
			break
		}
	}

	t.runner = nil
	t.mu.Unlock()

	t.logger.Info("Hand finished", "handId", r.handID, "handNumber", r.handNumber,
		"nextButton", t.button, "seats", len(t.seats))
}
