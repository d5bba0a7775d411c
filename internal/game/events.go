package game

import (
	"time"

	"github.com/lox/dealerd/poker"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventTypeHandStart    EventType = "hand_start"
	EventTypeBlindPosted  EventType = "blind_posted"
	EventTypePlayerAction EventType = "player_action"
	EventTypeStreetChange EventType = "street_change"
	EventTypeShowdown     EventType = "showdown"
	EventTypeHandEnd      EventType = "hand_end"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a hand
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// EventSink receives events as the hand emits them. The hand history log
// is append-only: sinks record, they never mutate.
type EventSink func(GameEvent)

// SeatSummary is a point-in-time view of one seat
type SeatSummary struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Chips int    `json:"chips"`
}

// HandStartEvent is published when a new hand begins
type HandStartEvent struct {
	Button     int           `json:"button"`
	SmallBlind int           `json:"smallBlind"`
	BigBlind   int           `json:"bigBlind"`
	Seats      []SeatSummary `json:"seats"`
	timestamp  time.Time
}

func (e HandStartEvent) EventType() EventType { return EventTypeHandStart }
func (e HandStartEvent) Timestamp() time.Time { return e.timestamp }

// NewHandStartEvent creates a new hand start event
func NewHandStartEvent(button, smallBlind, bigBlind int, players []*Player) HandStartEvent {
	seats := make([]SeatSummary, len(players))
	for i, p := range players {
		seats[i] = SeatSummary{Seat: p.Seat, Name: p.Name, Chips: p.Chips}
	}
	return HandStartEvent{
		Button:     button,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		Seats:      seats,
		timestamp:  time.Now(),
	}
}

// BlindPostedEvent is published for each blind as it is posted
type BlindPostedEvent struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	Kind      string `json:"kind"` // "small" or "big"
	Amount    int    `json:"amount"`
	AllIn     bool   `json:"allIn"`
	timestamp time.Time
}

func (e BlindPostedEvent) EventType() EventType { return EventTypeBlindPosted }
func (e BlindPostedEvent) Timestamp() time.Time { return e.timestamp }

// NewBlindPostedEvent creates a new blind posted event
func NewBlindPostedEvent(p *Player, kind string, amount int) BlindPostedEvent {
	return BlindPostedEvent{
		Seat:      p.Seat,
		Name:      p.Name,
		Kind:      kind,
		Amount:    amount,
		AllIn:     p.AllInFlag,
		timestamp: time.Now(),
	}
}

// PlayerActionEvent is published when a player acts
type PlayerActionEvent struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	Action    string `json:"action"`
	Amount    int    `json:"amount"`
	Street    string `json:"street"`
	PotAfter  int    `json:"potAfter"`
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayerActionEvent creates a new player action event
func NewPlayerActionEvent(p *Player, action Action, amount int, street Street, potAfter int) PlayerActionEvent {
	return PlayerActionEvent{
		Seat:      p.Seat,
		Name:      p.Name,
		Action:    action.String(),
		Amount:    amount,
		Street:    street.String(),
		PotAfter:  potAfter,
		timestamp: time.Now(),
	}
}

// StreetChangeEvent is published when the hand advances to a new street
type StreetChangeEvent struct {
	Street    string   `json:"street"`
	Board     []string `json:"board"`
	timestamp time.Time
}

func (e StreetChangeEvent) EventType() EventType { return EventTypeStreetChange }
func (e StreetChangeEvent) Timestamp() time.Time { return e.timestamp }

// NewStreetChangeEvent creates a new street change event
func NewStreetChangeEvent(street Street, board poker.Hand) StreetChangeEvent {
	return StreetChangeEvent{
		Street:    street.String(),
		Board:     board.Strings(),
		timestamp: time.Now(),
	}
}

// ShowdownEvent is published when hole cards are revealed at showdown
type ShowdownEvent struct {
	Board     []string         `json:"board"`
	Revealed  map[int][]string `json:"revealed"` // seat -> hole cards
	timestamp time.Time
}

func (e ShowdownEvent) EventType() EventType { return EventTypeShowdown }
func (e ShowdownEvent) Timestamp() time.Time { return e.timestamp }

// NewShowdownEvent creates a new showdown event
func NewShowdownEvent(board poker.Hand, holes map[int]poker.Hand) ShowdownEvent {
	revealed := make(map[int][]string, len(holes))
	for seat, hole := range holes {
		revealed[seat] = hole.Strings()
	}
	return ShowdownEvent{
		Board:     board.Strings(),
		Revealed:  revealed,
		timestamp: time.Now(),
	}
}

// HandEndEvent is published when a hand completes and pots are awarded
type HandEndEvent struct {
	Pots           []PotResult `json:"pots"`
	Payouts        Payouts     `json:"payouts"`
	Board          []string    `json:"board"`
	UncalledSeat   int         `json:"uncalledSeat"`
	UncalledAmount int         `json:"uncalledAmount"`
	timestamp      time.Time
}

func (e HandEndEvent) EventType() EventType { return EventTypeHandEnd }
func (e HandEndEvent) Timestamp() time.Time { return e.timestamp }

// NewHandEndEvent creates a new hand end event
func NewHandEndEvent(pots []PotResult, payouts Payouts, board poker.Hand, uncalledSeat, uncalledAmount int) HandEndEvent {
	return HandEndEvent{
		Pots:           pots,
		Payouts:        payouts,
		Board:          board.Strings(),
		UncalledSeat:   uncalledSeat,
		UncalledAmount: uncalledAmount,
		timestamp:      time.Now(),
	}
}
