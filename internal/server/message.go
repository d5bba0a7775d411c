package server

import (
	"encoding/json"
	"time"

	"github.com/lox/dealerd/internal/game"
)

// MessageType identifies the kind of WebSocket message
type MessageType string

const (
	// Client → Server
	MessageTypeAuth         MessageType = "auth"
	MessageTypeJoinTable    MessageType = "join_table"
	MessageTypeLeaveTable   MessageType = "leave_table"
	MessageTypeListTables   MessageType = "list_tables"
	MessageTypeStartGame    MessageType = "start_game"
	MessageTypePlayerAction MessageType = "player_action"
	MessageTypeTableState   MessageType = "table_state"

	// Server → Client
	MessageTypeAuthResponse   MessageType = "auth_response"
	MessageTypeError          MessageType = "error"
	MessageTypeTableList      MessageType = "table_list"
	MessageTypeTableJoined    MessageType = "table_joined"
	MessageTypeTableLeft      MessageType = "table_left"
	MessageTypeGameStarted    MessageType = "game_started"
	MessageTypeTableSnapshot  MessageType = "table_snapshot"
	MessageTypeHoleCards      MessageType = "hole_cards"
	MessageTypeHandStart      MessageType = "hand_start"
	MessageTypeBlindPosted    MessageType = "blind_posted"
	MessageTypePlayerActed    MessageType = "player_acted"
	MessageTypeStreetChange   MessageType = "street_change"
	MessageTypeShowdown       MessageType = "showdown"
	MessageTypeHandEnd        MessageType = "hand_end"
	MessageTypeActionRequired MessageType = "action_required"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

type JoinTableData struct {
	TableID string `json:"tableId"`
	BuyIn   int    `json:"buyIn,omitempty"`
}

type LeaveTableData struct {
	TableID string `json:"tableId"`
}

type StartGameData struct {
	TableID string `json:"tableId"`
}

type PlayerActionData struct {
	TableID    string `json:"tableId"`
	HandNumber int    `json:"handNumber"`
	Action     string `json:"action"`
	Amount     int    `json:"amount,omitempty"`
}

type TableStateRequest struct {
	TableID string `json:"tableId"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableInfo struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	SmallBlind  int    `json:"smallBlind"`
	BigBlind    int    `json:"bigBlind"`
	HandActive  bool   `json:"handActive"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type TableJoinedData struct {
	TableID string      `json:"tableId"`
	Seat    int         `json:"seat"`
	Chips   int         `json:"chips"`
	Players []SeatState `json:"players"`
}

type TableLeftData struct {
	TableID string `json:"tableId"`
}

type GameStartedData struct {
	TableID    string `json:"tableId"`
	HandID     string `json:"handId"`
	HandNumber int    `json:"handNumber"`
}

// SeatState is a seat as visible to every observer. Hole cards are only
// populated for the recipient's own seat; everyone else's stay hidden
// until a showdown reveals them.
type SeatState struct {
	Seat      int      `json:"seat"`
	PlayerID  string   `json:"playerId"`
	Name      string   `json:"name"`
	Chips     int      `json:"chips"`
	Bet       int      `json:"bet"`
	TotalBet  int      `json:"totalBet"`
	Folded    bool     `json:"folded"`
	AllIn     bool     `json:"allIn"`
	HoleCards []string `json:"holeCards,omitempty"`
}

type PotState struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
}

// TableStateData is the public record of a table: anything a spectator
// may see. Hole cards are never included.
type TableStateData struct {
	TableID    string      `json:"tableId"`
	HandID     string      `json:"handId,omitempty"`
	HandNumber int         `json:"handNumber"`
	HandActive bool        `json:"handActive"`
	Button     int         `json:"button"`
	Street     string      `json:"street,omitempty"`
	Board      []string    `json:"board,omitempty"`
	Pots       []PotState  `json:"pots,omitempty"`
	ActiveSeat int         `json:"activeSeat"`
	Seats      []SeatState `json:"seats"`
	SmallBlind int         `json:"smallBlind"`
	BigBlind   int         `json:"bigBlind"`
}

type HoleCardsData struct {
	TableID    string   `json:"tableId"`
	HandID     string   `json:"handId"`
	HandNumber int      `json:"handNumber"`
	Seat       int      `json:"seat"`
	Cards      []string `json:"cards"`
}

type HandStartData struct {
	TableID    string             `json:"tableId"`
	HandID     string             `json:"handId"`
	HandNumber int                `json:"handNumber"`
	Button     int                `json:"button"`
	SmallBlind int                `json:"smallBlind"`
	BigBlind   int                `json:"bigBlind"`
	Seats      []game.SeatSummary `json:"seats"`
}

type BlindPostedData struct {
	TableID    string `json:"tableId"`
	HandNumber int    `json:"handNumber"`
	Seat       int    `json:"seat"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Amount     int    `json:"amount"`
	AllIn      bool   `json:"allIn"`
}

type PlayerActedData struct {
	TableID    string `json:"tableId"`
	HandNumber int    `json:"handNumber"`
	Seat       int    `json:"seat"`
	Name       string `json:"name"`
	Action     string `json:"action"`
	Amount     int    `json:"amount"`
	Street     string `json:"street"`
	Pot        int    `json:"pot"`
	TimedOut   bool   `json:"timedOut,omitempty"`
}

type StreetChangeData struct {
	TableID    string   `json:"tableId"`
	HandNumber int      `json:"handNumber"`
	Street     string   `json:"street"`
	Board      []string `json:"board"`
}

type ShowdownData struct {
	TableID    string           `json:"tableId"`
	HandNumber int              `json:"handNumber"`
	Board      []string         `json:"board"`
	Revealed   map[int][]string `json:"revealed"`
}

type PotResultData struct {
	Amount  int   `json:"amount"`
	Winners []int `json:"winners"`
}

type HandEndData struct {
	TableID        string          `json:"tableId"`
	HandID         string          `json:"handId"`
	HandNumber     int             `json:"handNumber"`
	Board          []string        `json:"board"`
	Pots           []PotResultData `json:"pots"`
	Payouts        map[int]int     `json:"payouts"`
	UncalledSeat   int             `json:"uncalledSeat"`
	UncalledAmount int             `json:"uncalledAmount"`
}

type ValidActionInfo struct {
	Action string `json:"action"`
	Min    int    `json:"min,omitempty"`
	Max    int    `json:"max,omitempty"`
}

type ActionRequiredData struct {
	TableID      string            `json:"tableId"`
	HandNumber   int               `json:"handNumber"`
	Seat         int               `json:"seat"`
	PlayerID     string            `json:"playerId"`
	ValidActions []ValidActionInfo `json:"validActions"`
	ToCall       int               `json:"toCall"`
	TimeoutMs    int               `json:"timeoutMs"`
}

// ValidActionInfoFromGame converts a game valid action for the wire
func ValidActionInfoFromGame(va game.ValidAction) ValidActionInfo {
	return ValidActionInfo{
		Action: va.Action.String(),
		Min:    va.Min,
		Max:    va.Max,
	}
}
