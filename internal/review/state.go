// Package review implements the client-side workflow that drives one AI
// generation round from input through human review. The top-level state is a
// closed sum type replaced wholesale on every transition; per-card decisions
// live in a parallel collection keyed by card index.
package review

import (
	"fmt"

	"cardlab-backend/internal/models"
)

// Phase names which half of the workflow a failure happened in, so callers
// can offer the right recovery (regenerate vs. resubmit).
type Phase string

const (
	PhaseGeneration Phase = "generation"
	PhaseReview     Phase = "review"
)

// Action is a per-card verdict. Cards start pending.
type Action string

const (
	ActionPending Action = "pending"
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionEdit    Action = "edit"
)

// State is the sealed set of workflow states. Exactly one is active at a
// time; values are immutable.
type State interface {
	isState()
}

type Idle struct{}

type Generating struct{}

type Reviewing struct {
	Batch models.GenerationResponse
}

type Submitting struct{}

type Success struct {
	Result models.ReviewFlashcardsResponse
}

type Failed struct {
	Err   error
	Phase Phase
}

func (Idle) isState()       {}
func (Generating) isState() {}
func (Reviewing) isState()  {}
func (Submitting) isState() {}
func (Success) isState()    {}
func (Failed) isState()     {}

// CardState tracks one preview card's review progress.
type CardState struct {
	Index    int
	Action   Action
	Original models.GeneratedCardPreview
	Edited   *models.GeneratedCardPreview
	Flipped  bool
}

// Controller owns the workflow state. Not safe for concurrent use; it models
// a single user driving a single review session.
type Controller struct {
	state State
	cards map[int]*CardState
}

func NewController() *Controller {
	return &Controller{state: Idle{}}
}

// State returns the currently active state.
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) transitionError(action string) error {
	return fmt.Errorf("cannot %s from state %T", action, c.state)
}

// StartGeneration moves idle → generating.
func (c *Controller) StartGeneration() error {
	if _, ok := c.state.(Idle); !ok {
		return c.transitionError("start generation")
	}
	c.state = Generating{}
	return nil
}

// GenerationSucceeded moves generating → reviewing and initializes every
// card's decision to pending.
func (c *Controller) GenerationSucceeded(batch models.GenerationResponse) error {
	if _, ok := c.state.(Generating); !ok {
		return c.transitionError("finish generation")
	}

	c.cards = make(map[int]*CardState, len(batch.GeneratedCards))
	for _, preview := range batch.GeneratedCards {
		c.cards[preview.Index] = &CardState{
			Index:    preview.Index,
			Action:   ActionPending,
			Original: preview,
		}
	}

	c.state = Reviewing{Batch: batch}
	return nil
}

// GenerationFailed moves generating → failed with the generation phase tag.
func (c *Controller) GenerationFailed(err error) error {
	if _, ok := c.state.(Generating); !ok {
		return c.transitionError("fail generation")
	}
	c.state = Failed{Err: err, Phase: PhaseGeneration}
	return nil
}

func (c *Controller) card(index int) (*CardState, error) {
	if _, ok := c.state.(Reviewing); !ok {
		return nil, c.transitionError("modify cards")
	}
	card, ok := c.cards[index]
	if !ok {
		return nil, fmt.Errorf("no card with index %d", index)
	}
	return card, nil
}

// Accept marks a card for creation with its original text.
func (c *Controller) Accept(index int) error {
	card, err := c.card(index)
	if err != nil {
		return err
	}
	card.Action = ActionAccept
	card.Edited = nil
	return nil
}

// Reject marks a card as discarded.
func (c *Controller) Reject(index int) error {
	card, err := c.card(index)
	if err != nil {
		return err
	}
	card.Action = ActionReject
	card.Edited = nil
	return nil
}

// Edit marks a card for creation with replacement text.
func (c *Controller) Edit(index int, frontText, backText string) error {
	card, err := c.card(index)
	if err != nil {
		return err
	}
	card.Action = ActionEdit
	card.Edited = &models.GeneratedCardPreview{
		Index:     index,
		FrontText: frontText,
		BackText:  backText,
	}
	return nil
}

// Flip toggles which side of the card is showing.
func (c *Controller) Flip(index int) error {
	card, err := c.card(index)
	if err != nil {
		return err
	}
	card.Flipped = !card.Flipped
	return nil
}

// Card returns a copy of one card's review state.
func (c *Controller) Card(index int) (CardState, bool) {
	card, ok := c.cards[index]
	if !ok {
		return CardState{}, false
	}
	return *card, true
}

// CanSubmit reports whether every card has a verdict.
func (c *Controller) CanSubmit() bool {
	if _, ok := c.state.(Reviewing); !ok {
		return false
	}
	for _, card := range c.cards {
		if card.Action == ActionPending {
			return false
		}
	}
	return len(c.cards) > 0
}

// Decisions materializes the review payload: accepted and rejected cards
// carry their original text, edited cards carry the replacement. Returns
// decisions ordered by card index.
func (c *Controller) Decisions() []models.ReviewDecision {
	if _, ok := c.state.(Reviewing); !ok {
		return nil
	}

	decisions := make([]models.ReviewDecision, 0, len(c.cards))
	for i := 0; i < len(c.cards); i++ {
		card, ok := c.cards[i]
		if !ok || card.Action == ActionPending {
			continue
		}

		d := models.ReviewDecision{
			Index:     card.Index,
			Action:    string(card.Action),
			FrontText: card.Original.FrontText,
			BackText:  card.Original.BackText,
		}
		if card.Action == ActionEdit && card.Edited != nil {
			d.FrontText = card.Edited.FrontText
			d.BackText = card.Edited.BackText
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// Submit moves reviewing → submitting once every card has a verdict.
func (c *Controller) Submit() error {
	if _, ok := c.state.(Reviewing); !ok {
		return c.transitionError("submit")
	}
	if !c.CanSubmit() {
		return fmt.Errorf("cannot submit: some cards are still pending")
	}
	c.state = Submitting{}
	return nil
}

// SubmitSucceeded moves submitting → success.
func (c *Controller) SubmitSucceeded(result models.ReviewFlashcardsResponse) error {
	if _, ok := c.state.(Submitting); !ok {
		return c.transitionError("finish submit")
	}
	c.state = Success{Result: result}
	return nil
}

// SubmitFailed moves submitting → failed with the review phase tag.
func (c *Controller) SubmitFailed(err error) error {
	if _, ok := c.state.(Submitting); !ok {
		return c.transitionError("fail submit")
	}
	c.state = Failed{Err: err, Phase: PhaseReview}
	return nil
}

// Reset returns to idle from any state and discards all card state.
func (c *Controller) Reset() {
	c.state = Idle{}
	c.cards = nil
}
