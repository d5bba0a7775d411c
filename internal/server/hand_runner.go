package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/dealerd/internal/evaluator"
	"github.com/lox/dealerd/internal/game"
	"github.com/lox/dealerd/internal/handid"
	"github.com/lox/dealerd/internal/server/history"
)

// actionEnvelope carries a player action into the runner's goroutine.
// The reply channel is buffered so the runner never blocks on it.
type actionEnvelope struct {
	handNumber int
	playerID   string
	action     game.Action
	amount     int
	resign     bool
	reply      chan error
}

// timerToken identifies one armed deadline. A token whose seq no longer
// matches the runner's is from a deadline that was superseded by an
// action, and is ignored.
type timerToken struct {
	handNumber int
	seq        int
}

// HandRunner drives a single hand from deal to payout. All hand state
// is owned by one goroutine; actions and deadline expiries arrive over
// channels, so the game engine itself needs no locking.
type HandRunner struct {
	table       *Table
	handID      string
	handNumber  int
	playerIDs   []string
	timeout     time.Duration
	clock       quartz.Clock
	logger      *log.Logger
	broadcaster Broadcaster
	historyRec  HistoryRecorder

	hand      *game.HandState
	startedAt time.Time
	events    []eventRecord
	timedOut  bool

	actions  chan actionEnvelope
	timeouts chan timerToken
	done     chan struct{}

	timer    *quartz.Timer
	timerSeq int

	stateMu sync.RWMutex
	state   TableStateData
}

// eventRecord wraps a game event for the persisted hand log
type eventRecord struct {
	Type string         `json:"type"`
	At   time.Time      `json:"at"`
	Data game.GameEvent `json:"data"`
}

// newHandRunner deals a new hand for the given players. Seat indices in
// the hand match positions in playerIDs.
func newHandRunner(t *Table, handNumber int, playerIDs []string, chips []int, button int) (*HandRunner, error) {
	r := &HandRunner{
		table:       t,
		handID:      handid.Generate(),
		handNumber:  handNumber,
		playerIDs:   playerIDs,
		timeout:     t.cfg.ActionTimeout(),
		clock:       t.clock,
		broadcaster: t.broadcaster,
		historyRec:  t.historyRec,
		startedAt:   t.clock.Now(),
		actions:     make(chan actionEnvelope),
		timeouts:    make(chan timerToken, 1),
		done:        make(chan struct{}),
	}
	r.logger = t.logger.With("handId", r.handID, "handNumber", handNumber)

	hand, err := game.NewHand(t.rng, playerIDs, button, t.cfg.SmallBlind, t.cfg.BigBlind,
		game.WithChips(chips),
		game.WithEvaluator(evaluator.New()),
		game.WithEventSink(r.recordEvent),
	)
	if err != nil {
		return nil, err
	}
	r.hand = hand

	return r, nil
}

// start deals the players in, arms the first decision deadline and
// launches the runner goroutine.
func (r *HandRunner) start() {
	r.sendHoleCards()
	r.publishState()
	r.armTimer()
	r.notifyActivePlayer()
	go r.run()
}

// Done closes when the hand has resolved and its results are applied
func (r *HandRunner) Done() <-chan struct{} {
	return r.done
}

// Snapshot returns the latest public state of the hand
func (r *HandRunner) Snapshot() TableStateData {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.state
}

// Submit applies a player's action to the hand. handNumber guards
// against actions raced from an earlier hand at the same table.
func (r *HandRunner) Submit(handNumber int, playerID string, action game.Action, amount int) error {
	return r.submit(actionEnvelope{
		handNumber: handNumber,
		playerID:   playerID,
		action:     action,
		amount:     amount,
		reply:      make(chan error, 1),
	})
}

// Resign folds the player out of turn, used when a player leaves or
// disconnects mid-hand.
func (r *HandRunner) Resign(playerID string) error {
	return r.submit(actionEnvelope{
		handNumber: r.handNumber,
		playerID:   playerID,
		resign:     true,
		reply:      make(chan error, 1),
	})
}

func (r *HandRunner) submit(env actionEnvelope) error {
	select {
	case r.actions <- env:
	case <-r.done:
		return FailedPreconditionf("hand %d is already complete", r.handNumber)
	}

	select {
	case err := <-env.reply:
		return err
	case <-r.done:
		// The runner may have replied and finished in the same breath
		select {
		case err := <-env.reply:
			return err
		default:
			return FailedPreconditionf("hand %d is already complete", r.handNumber)
		}
	}
}

// seatOf maps a player ID to their seat in this hand, or -1
func (r *HandRunner) seatOf(playerID string) int {
	for i, id := range r.playerIDs {
		if id == playerID {
			return i
		}
	}
	return -1
}

func (r *HandRunner) run() {
	defer close(r.done)

	for !r.hand.IsComplete() {
		select {
		case env := <-r.actions:
			env.reply <- r.handleEnvelope(env)
		case tok := <-r.timeouts:
			r.handleTimeout(tok)
		}
	}

	r.stopTimer()
	r.finish()
}

func (r *HandRunner) handleEnvelope(env actionEnvelope) error {
	if env.handNumber != r.handNumber {
		return FailedPreconditionf("hand %d is not the current hand %d", env.handNumber, r.handNumber)
	}

	seat := r.seatOf(env.playerID)
	if seat == -1 {
		return NotFoundf("player %s is not in this hand", env.playerID)
	}

	if env.resign {
		if err := r.hand.ForceFold(seat); err != nil {
			return FailedPreconditionf("%s", err)
		}
		r.afterAction()
		return nil
	}

	if seat != r.hand.ActivePlayer {
		return PermissionDeniedf("it is not %s's turn to act", env.playerID)
	}

	if err := r.hand.ProcessAction(env.action, env.amount); err != nil {
		return FailedPreconditionf("%s", err)
	}

	r.afterAction()
	return nil
}

// handleTimeout auto-acts for a player whose deadline expired: check
// when legal, otherwise fold.
func (r *HandRunner) handleTimeout(tok timerToken) {
	if tok.handNumber != r.handNumber || tok.seq != r.timerSeq {
		return // superseded by an action that landed first
	}

	seat := r.hand.ActivePlayer
	if seat < 0 {
		return
	}

	r.timedOut = true
	action := game.Check
	if err := r.hand.ProcessAction(game.Check, 0); err != nil {
		action = game.Fold
		if err := r.hand.ProcessAction(game.Fold, 0); err != nil {
			r.logger.Error("Failed to fold timed-out player", "seat", seat, "error", err)
		}
	}
	r.timedOut = false

	r.logger.Warn("Action timeout", "seat", seat, "player", r.playerIDs[seat],
		"autoAction", action.String())

	r.afterAction()
}

// afterAction re-publishes state, re-arms the deadline and prompts the
// next player after any change to the hand.
func (r *HandRunner) afterAction() {
	r.publishState()
	r.armTimer()
	r.notifyActivePlayer()
}

// armTimer starts the decision deadline for the current active player.
// Bumping timerSeq invalidates any deadline already in flight.
func (r *HandRunner) armTimer() {
	r.timerSeq++
	r.stopTimer()

	if r.timeout <= 0 || r.hand.IsComplete() || r.hand.ActivePlayer < 0 {
		return
	}

	tok := timerToken{handNumber: r.handNumber, seq: r.timerSeq}
	r.timer = r.clock.AfterFunc(r.timeout, func() {
		select {
		case r.timeouts <- tok:
		case <-r.done:
		}
	}, "action-deadline")
}

func (r *HandRunner) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// finish resolves the hand, persists its event log and hands control
// back to the table.
func (r *HandRunner) finish() {
	if _, _, err := r.hand.Resolve(); err != nil {
		r.logger.Error("Failed to resolve hand", "error", err)
	}
	r.publishState()

	if r.historyRec != nil {
		events, err := json.Marshal(r.events)
		if err != nil {
			r.logger.Error("Failed to encode hand events", "error", err)
		} else {
			rec := history.Record{
				HandID:     r.handID,
				TableID:    r.table.ID,
				HandNumber: r.handNumber,
				StartedAt:  r.startedAt,
				EndedAt:    r.clock.Now(),
				Events:     events,
			}
			if err := r.historyRec.Append(rec); err != nil {
				r.logger.Error("Failed to record hand history", "error", err)
			}
		}
	}

	r.table.handFinished(r)
}

// recordEvent is the hand's event sink: every event lands in the
// append-only log and is forwarded to the table's clients.
func (r *HandRunner) recordEvent(ev game.GameEvent) {
	r.events = append(r.events, eventRecord{
		Type: ev.EventType().String(),
		At:   ev.Timestamp(),
		Data: ev,
	})

	switch e := ev.(type) {
	case game.HandStartEvent:
		r.broadcast(MessageTypeHandStart, HandStartData{
			TableID:    r.table.ID,
			HandID:     r.handID,
			HandNumber: r.handNumber,
			Button:     e.Button,
			SmallBlind: e.SmallBlind,
			BigBlind:   e.BigBlind,
			Seats:      e.Seats,
		})

	case game.BlindPostedEvent:
		r.broadcast(MessageTypeBlindPosted, BlindPostedData{
			TableID:    r.table.ID,
			HandNumber: r.handNumber,
			Seat:       e.Seat,
			Name:       e.Name,
			Kind:       e.Kind,
			Amount:     e.Amount,
			AllIn:      e.AllIn,
		})

	case game.PlayerActionEvent:
		r.broadcast(MessageTypePlayerActed, PlayerActedData{
			TableID:    r.table.ID,
			HandNumber: r.handNumber,
			Seat:       e.Seat,
			Name:       e.Name,
			Action:     e.Action,
			Amount:     e.Amount,
			Street:     e.Street,
			Pot:        e.PotAfter,
			TimedOut:   r.timedOut,
		})

	case game.StreetChangeEvent:
		r.broadcast(MessageTypeStreetChange, StreetChangeData{
			TableID:    r.table.ID,
			HandNumber: r.handNumber,
			Street:     e.Street,
			Board:      e.Board,
		})

	case game.ShowdownEvent:
		r.broadcast(MessageTypeShowdown, ShowdownData{
			TableID:    r.table.ID,
			HandNumber: r.handNumber,
			Board:      e.Board,
			Revealed:   e.Revealed,
		})

	case game.HandEndEvent:
		pots := make([]PotResultData, len(e.Pots))
		for i, p := range e.Pots {
			pots[i] = PotResultData{Amount: p.Amount, Winners: p.Winners}
		}
		r.broadcast(MessageTypeHandEnd, HandEndData{
			TableID:        r.table.ID,
			HandID:         r.handID,
			HandNumber:     r.handNumber,
			Board:          e.Board,
			Pots:           pots,
			Payouts:        e.Payouts,
			UncalledSeat:   e.UncalledSeat,
			UncalledAmount: e.UncalledAmount,
		})
	}
}

// sendHoleCards delivers each player's cards privately
func (r *HandRunner) sendHoleCards() {
	if r.broadcaster == nil {
		return
	}
	for i, p := range r.hand.Players {
		msg, err := NewMessage(MessageTypeHoleCards, HoleCardsData{
			TableID:    r.table.ID,
			HandID:     r.handID,
			HandNumber: r.handNumber,
			Seat:       p.Seat,
			Cards:      p.HoleCards.Strings(),
		})
		if err != nil {
			r.logger.Error("Failed to encode hole cards", "error", err)
			continue
		}
		if err := r.broadcaster.SendToPlayer(r.playerIDs[i], msg); err != nil {
			r.logger.Warn("Failed to send hole cards", "player", r.playerIDs[i], "error", err)
		}
	}
}

// notifyActivePlayer prompts the player whose turn it is
func (r *HandRunner) notifyActivePlayer() {
	seat := r.hand.ActivePlayer
	if seat < 0 || r.broadcaster == nil {
		return
	}

	valid := r.hand.ValidActions()
	infos := make([]ValidActionInfo, len(valid))
	for i, va := range valid {
		infos[i] = ValidActionInfoFromGame(va)
	}

	p := r.hand.Players[seat]
	msg, err := NewMessage(MessageTypeActionRequired, ActionRequiredData{
		TableID:      r.table.ID,
		HandNumber:   r.handNumber,
		Seat:         seat,
		PlayerID:     r.playerIDs[seat],
		ValidActions: infos,
		ToCall:       r.hand.Betting.CurrentBet - p.Bet,
		TimeoutMs:    int(r.timeout.Milliseconds()),
	})
	if err != nil {
		r.logger.Error("Failed to encode action request", "error", err)
		return
	}
	if err := r.broadcaster.SendToPlayer(r.playerIDs[seat], msg); err != nil {
		r.logger.Warn("Failed to prompt player", "player", r.playerIDs[seat], "error", err)
	}
}

// publishState refreshes the public snapshot. Hole cards never appear
// here; they travel only in the private hole_cards message and in the
// showdown reveal.
func (r *HandRunner) publishState() {
	seats := make([]SeatState, len(r.hand.Players))
	for i, p := range r.hand.Players {
		seats[i] = SeatState{
			Seat:     p.Seat,
			PlayerID: r.playerIDs[i],
			Name:     p.Name,
			Chips:    p.Chips,
			Bet:      p.Bet,
			TotalBet: p.TotalBet,
			Folded:   p.Folded,
			AllIn:    p.AllInFlag,
		}
	}

	gamePots := r.hand.GetPots()
	pots := make([]PotState, len(gamePots))
	for i, p := range gamePots {
		pots[i] = PotState{Amount: p.Amount, Eligible: p.Eligible}
	}

	state := TableStateData{
		TableID:    r.table.ID,
		HandID:     r.handID,
		HandNumber: r.handNumber,
		HandActive: !r.hand.IsComplete(),
		Button:     r.hand.Button,
		Street:     r.hand.Street.String(),
		Board:      r.hand.Board.Strings(),
		Pots:       pots,
		ActiveSeat: r.hand.ActivePlayer,
		Seats:      seats,
		SmallBlind: r.table.cfg.SmallBlind,
		BigBlind:   r.table.cfg.BigBlind,
	}

	r.stateMu.Lock()
	r.state = state
	r.stateMu.Unlock()

	r.broadcast(MessageTypeTableSnapshot, state)
}

func (r *HandRunner) broadcast(mt MessageType, data any) {
	if r.broadcaster == nil {
		return
	}
	msg, err := NewMessage(mt, data)
	if err != nil {
		r.logger.Error("Failed to encode message", "type", mt, "error", err)
		return
	}
	r.broadcaster.BroadcastToTable(r.table.ID, msg)
}
