package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/dealerd/poker"
)

// HandState represents the state of a single hand from blinds to payout
type HandState struct {
	Players      []*Player
	Button       int
	Street       Street
	Board        poker.Hand
	PotManager   *PotManager
	ActivePlayer int
	Deck         *poker.Deck
	Betting      *BettingRound

	smallBlind int
	bigBlind   int
	evaluator  Evaluator
	sink       EventSink
	bankroll   int // Total chips in play, for conservation checks
	resolved   bool
}

type handConfig struct {
	chips   []int
	uniform int
	deck    *poker.Deck
	eval    Evaluator
	sink    EventSink
}

// HandOption configures a new hand
type HandOption func(*handConfig)

// WithChips sets individual chip counts, one per player
func WithChips(chips []int) HandOption {
	return func(c *handConfig) { c.chips = chips }
}

// WithUniformChips gives every player the same starting stack
func WithUniformChips(chips int) HandOption {
	return func(c *handConfig) { c.uniform = chips }
}

// WithDeck supplies a prepared deck, used for deterministic tests
func WithDeck(deck *poker.Deck) HandOption {
	return func(c *handConfig) { c.deck = deck }
}

// WithEvaluator supplies the showdown evaluator
func WithEvaluator(eval Evaluator) HandOption {
	return func(c *handConfig) { c.eval = eval }
}

// WithEventSink registers a sink for the hand's event log
func WithEventSink(sink EventSink) HandOption {
	return func(c *handConfig) { c.sink = sink }
}

// NewHand creates a hand, deals hole cards, posts blinds and sets the
// first player to act
func NewHand(rng *rand.Rand, names []string, button, smallBlind, bigBlind int, opts ...HandOption) (*HandState, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", len(names))
	}
	if len(names) > 10 {
		return nil, fmt.Errorf("too many players: %d", len(names))
	}
	if button < 0 || button >= len(names) {
		return nil, fmt.Errorf("button %d out of range", button)
	}

	cfg := handConfig{uniform: 100 * bigBlind}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.chips != nil && len(cfg.chips) != len(names) {
		return nil, fmt.Errorf("chip counts (%d) do not match players (%d)", len(cfg.chips), len(names))
	}

	players := make([]*Player, len(names))
	bankroll := 0
	for i, name := range names {
		chips := cfg.uniform
		if cfg.chips != nil {
			chips = cfg.chips[i]
		}
		players[i] = &Player{Seat: i, Name: name, Chips: chips}
		bankroll += chips
	}

	deck := cfg.deck
	if deck == nil {
		deck = poker.NewDeck(rng)
	}

	h := &HandState{
		Players:      players,
		Button:       button,
		Street:       Preflop,
		PotManager:   NewPotManager(players),
		ActivePlayer: -1,
		Deck:         deck,
		Betting:      NewBettingRound(len(players), bigBlind),
		smallBlind:   smallBlind,
		bigBlind:     bigBlind,
		evaluator:    cfg.eval,
		sink:         cfg.sink,
		bankroll:     bankroll,
	}

	h.emit(NewHandStartEvent(button, smallBlind, bigBlind, players))

	if err := h.dealHoleCards(); err != nil {
		return nil, err
	}
	h.postBlinds()

	h.ActivePlayer = h.nextActivePlayer(h.firstToActPreflop())
	if h.ActivePlayer == -1 {
		// Blinds put everyone all-in, run the board out
		if err := h.NextStreet(); err != nil {
			return nil, err
		}
	}

	return h, nil
}

func (h *HandState) emit(event GameEvent) {
	if h.sink != nil {
		h.sink(event)
	}
}

func (h *HandState) dealHoleCards() error {
	for _, p := range h.Players {
		cards, err := h.Deck.Deal(2)
		if err != nil {
			return fmt.Errorf("dealing hole cards: %w", err)
		}
		p.HoleCards = poker.NewHand(cards...)
	}
	return nil
}

func (h *HandState) postBlinds() {
	numPlayers := len(h.Players)

	var sbPos int
	if numPlayers == 2 {
		// Heads-up: button posts small blind
		sbPos = h.Button
	} else {
		sbPos = (h.Button + 1) % numPlayers
	}
	bbPos := bigBlindSeat(numPlayers, h.Button)

	h.postBlind(h.Players[sbPos], "small", h.smallBlind)
	h.postBlind(h.Players[bbPos], "big", h.bigBlind)

	// The round opens at the full big blind even when the BB posted short
	h.Betting.CurrentBet = h.bigBlind
}

// postBlind posts min(amount, stack) and marks short stacks all-in
func (h *HandState) postBlind(p *Player, kind string, amount int) {
	posted := min(amount, p.Chips)
	p.Bet = posted
	p.TotalBet = posted
	p.Chips -= posted
	if p.Chips == 0 {
		p.AllInFlag = true
	}
	h.emit(NewBlindPostedEvent(p, kind, posted))
}

// firstToActPreflop returns the seat that opens the preflop betting.
// Heads-up the button (small blind) acts first; otherwise the seat after
// the big blind.
func (h *HandState) firstToActPreflop() int {
	if len(h.Players) == 2 {
		return h.Button
	}
	return (h.Button + 3) % len(h.Players)
}

// ValidActions returns valid actions for the current player
func (h *HandState) ValidActions() []ValidAction {
	if h.ActivePlayer < 0 || h.ActivePlayer >= len(h.Players) {
		return nil
	}
	return h.Betting.ValidActions(h.Players[h.ActivePlayer])
}

// ProcessAction applies the current player's action. Amounts for bet and
// raise are the player's total bet for the round; wagers beyond the stack
// are capped to all-in.
func (h *HandState) ProcessAction(action Action, amount int) error {
	if h.IsComplete() || h.ActivePlayer < 0 {
		return errors.New("no action pending")
	}

	p := h.Players[h.ActivePlayer]
	seat := h.ActivePlayer
	br := h.Betting

	switch action {
	case Fold:
		p.Folded = true
		br.MarkActed(seat)

	case Check:
		if br.CurrentBet != p.Bet {
			return fmt.Errorf("cannot check, must call %d", br.CurrentBet-p.Bet)
		}
		br.MarkActed(seat)

	case Call:
		if br.CurrentBet <= p.Bet {
			return errors.New("nothing to call")
		}
		h.pay(p, min(br.CurrentBet-p.Bet, p.Chips))
		br.MarkActed(seat)

	case Bet:
		if br.CurrentBet != 0 {
			return fmt.Errorf("cannot bet into a %d bet, raise instead", br.CurrentBet)
		}
		if err := h.raiseTo(p, amount); err != nil {
			return err
		}

	case Raise:
		if br.CurrentBet == 0 {
			return errors.New("nothing to raise, bet instead")
		}
		if err := h.raiseTo(p, amount); err != nil {
			return err
		}

	case AllIn:
		target := p.Chips + p.Bet
		if target <= br.CurrentBet {
			// All-in for less than the current bet is a call
			h.pay(p, p.Chips)
			br.MarkActed(seat)
		} else if err := h.raiseTo(p, target); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown action %d", action)
	}

	if h.Street == Preflop && seat == bigBlindSeat(len(h.Players), h.Button) {
		br.BBActed = true
	}

	h.emit(NewPlayerActionEvent(p, action, p.Bet, h.Street, h.potWithBets()))

	return h.advance(seat)
}

// pay moves chips from the player's stack into their round bet
func (h *HandState) pay(p *Player, amount int) {
	p.Chips -= amount
	p.Bet += amount
	p.TotalBet += amount
	if p.Chips == 0 {
		p.AllInFlag = true
	}
}

// raiseTo raises the player's round bet to target. A full raise reopens
// the action for everyone; an all-in short of a full raise does not, and
// leaves the minimum raise unchanged.
func (h *HandState) raiseTo(p *Player, target int) error {
	br := h.Betting
	maxTotal := p.Chips + p.Bet

	if target >= maxTotal {
		target = maxTotal // Cap to all-in
	}
	if target <= br.CurrentBet {
		return fmt.Errorf("raise to %d does not exceed current bet %d", target, br.CurrentBet)
	}
	if br.Acted[p.Seat] {
		// A short all-in since this player acted did not reopen the action
		return errors.New("raising is not reopened")
	}

	inc := target - br.CurrentBet
	fullRaise := inc >= br.MinRaise
	if !fullRaise && target < maxTotal {
		return fmt.Errorf("raise too small, minimum %d", br.CurrentBet+br.MinRaise)
	}

	h.pay(p, target-p.Bet)
	br.CurrentBet = target

	if fullRaise {
		br.MinRaise = inc
		br.reopen(p.Seat)
	} else {
		br.MarkActed(p.Seat)
	}
	return nil
}

// advance moves to the next player or street after seat acted
func (h *HandState) advance(seat int) error {
	// When at most one player remains unfolded the hand ends immediately
	if h.unfoldedCount() <= 1 {
		h.ActivePlayer = -1
		h.PotManager.CollectBets(h.Players)
		h.PotManager.CalculateSidePots(h.Players)
		return nil
	}

	h.ActivePlayer = h.nextActivePlayer(seat + 1)
	if h.ActivePlayer == -1 || h.Betting.IsComplete(h.Players, h.Street, h.Button) {
		return h.NextStreet()
	}
	return nil
}

// ForceFold folds the seat immediately, regardless of turn order. Used
// for exceptional conditions like disconnects and protocol violations.
func (h *HandState) ForceFold(seat int) error {
	if seat < 0 || seat >= len(h.Players) {
		return fmt.Errorf("seat %d out of range", seat)
	}
	p := h.Players[seat]
	if p.Folded || h.IsComplete() {
		return nil
	}

	p.Folded = true
	h.Betting.MarkActed(seat)

	if h.Street == Preflop && seat == bigBlindSeat(len(h.Players), h.Button) {
		h.Betting.BBActed = true
	}
	if h.Betting.LastAggressor == seat {
		h.Betting.LastAggressor = -1
	}

	h.emit(NewPlayerActionEvent(p, Fold, 0, h.Street, h.potWithBets()))

	if h.unfoldedCount() <= 1 {
		h.ActivePlayer = -1
		h.PotManager.CollectBets(h.Players)
		h.PotManager.CalculateSidePots(h.Players)
		return nil
	}

	if seat == h.ActivePlayer {
		h.ActivePlayer = h.nextActivePlayer(seat + 1)
	}
	if h.ActivePlayer == -1 || h.Betting.IsComplete(h.Players, h.Street, h.Button) {
		return h.NextStreet()
	}
	return nil
}

func (h *HandState) nextActivePlayer(from int) int {
	numPlayers := len(h.Players)
	for i := 0; i < numPlayers; i++ {
		pos := (from + i) % numPlayers
		if h.Players[pos].IsActive() {
			return pos
		}
	}
	return -1
}

func (h *HandState) unfoldedCount() int {
	count := 0
	for _, p := range h.Players {
		if !p.Folded {
			count++
		}
	}
	return count
}

// NextStreet advances to the next betting street, dealing community
// cards. When every remaining player is all-in it keeps advancing until
// showdown.
func (h *HandState) NextStreet() error {
	h.PotManager.CollectBets(h.Players)
	h.PotManager.CalculateSidePots(h.Players)
	h.Betting.ResetForNewRound(len(h.Players))

	switch h.Street {
	case Preflop:
		h.Street = Flop
		cards, err := h.Deck.Deal(3)
		if err != nil {
			return fmt.Errorf("dealing flop: %w", err)
		}
		for _, c := range cards {
			h.Board.AddCard(c)
		}
	case Flop:
		h.Street = Turn
		card, err := h.Deck.DealOne()
		if err != nil {
			return fmt.Errorf("dealing turn: %w", err)
		}
		h.Board.AddCard(card)
	case Turn:
		h.Street = River
		card, err := h.Deck.DealOne()
		if err != nil {
			return fmt.Errorf("dealing river: %w", err)
		}
		h.Board.AddCard(card)
	case River:
		h.Street = Showdown
		h.ActivePlayer = -1
		h.emit(NewStreetChangeEvent(h.Street, h.Board))
		return nil
	case Showdown:
		return nil
	}

	h.emit(NewStreetChangeEvent(h.Street, h.Board))

	// First active player after the button opens postflop streets
	h.ActivePlayer = h.nextActivePlayer((h.Button + 1) % len(h.Players))
	if h.ActivePlayer == -1 {
		// Everyone left is all-in, run out the remaining streets
		return h.NextStreet()
	}
	return nil
}

// GetPots returns the current pots including uncollected bets
func (h *HandState) GetPots() []Pot {
	return h.PotManager.GetPotsWithUncollected(h.Players)
}

// IsComplete returns true once the hand has reached showdown or only one
// player remains unfolded
func (h *HandState) IsComplete() bool {
	return h.Street == Showdown || h.unfoldedCount() <= 1
}

// Resolve awards the pots: refunds any uncalled bet, ranks the remaining
// hands through the evaluator and distributes each pot to its best
// eligible hands. A hand won by folds pays out without evaluation and
// without revealing cards.
func (h *HandState) Resolve() ([]PotResult, Payouts, error) {
	if !h.IsComplete() {
		return nil, nil, errors.New("hand is not complete")
	}
	if h.resolved {
		return nil, nil, errors.New("hand already resolved")
	}

	h.PotManager.CollectBets(h.Players)
	uncalledSeat, uncalledAmount := ReturnUncalledBet(h.Players)
	h.PotManager.CalculateSidePots(h.Players)
	pots := h.PotManager.GetPots()

	if err := ValidatePotTotals(pots, h.Players); err != nil {
		return nil, nil, err
	}

	var rankings [][]int
	if h.unfoldedCount() == 1 {
		for _, p := range h.Players {
			if !p.Folded {
				rankings = [][]int{{p.Seat}}
				break
			}
		}
	} else {
		if h.evaluator == nil {
			return nil, nil, errors.New("no evaluator configured for showdown")
		}
		holes := make(map[int]poker.Hand)
		for _, p := range h.Players {
			if !p.Folded {
				holes[p.Seat] = p.HoleCards
			}
		}
		var err error
		rankings, err = h.evaluator.Rank(h.Board, holes)
		if err != nil {
			return nil, nil, fmt.Errorf("ranking showdown hands: %w", err)
		}
		h.emit(NewShowdownEvent(h.Board, holes))
	}

	results, payouts := DistributePots(pots, rankings, h.Players)
	h.resolved = true

	h.emit(NewHandEndEvent(results, payouts, h.Board, uncalledSeat, uncalledAmount))

	if err := h.ValidateChipConservation(); err != nil {
		return nil, nil, err
	}
	return results, payouts, nil
}

// ValidateChipConservation confirms no chips appeared or vanished
func (h *HandState) ValidateChipConservation() error {
	total := 0
	for _, p := range h.Players {
		total += p.Chips
		if !h.resolved {
			total += p.TotalBet
		}
	}
	if total != h.bankroll {
		return fmt.Errorf("chip conservation violated: have %d, started with %d", total, h.bankroll)
	}
	return nil
}

// potWithBets is the pot total including this round's live bets
func (h *HandState) potWithBets() int {
	total := h.PotManager.Total()
	for _, p := range h.Players {
		total += p.Bet
	}
	return total
}

// NextButton returns the next button seat for the following hand,
// skipping busted stacks
func NextButton(players []*Player, button int) int {
	numPlayers := len(players)
	for i := 1; i <= numPlayers; i++ {
		pos := (button + i) % numPlayers
		if players[pos].Chips > 0 {
			return pos
		}
	}
	return button
}
