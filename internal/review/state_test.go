package review

import (
	"errors"
	"testing"

	"cardlab-backend/internal/models"
)

func sampleBatch(cards int) models.GenerationResponse {
	batch := models.GenerationResponse{TotalCardsGenerated: cards}
	for i := 0; i < cards; i++ {
		batch.GeneratedCards = append(batch.GeneratedCards, models.GeneratedCardPreview{
			Index:     i,
			FrontText: "What is the original front?",
			BackText:  "This is the original back text.",
		})
	}
	return batch
}

func reviewingController(t *testing.T, cards int) *Controller {
	t.Helper()
	c := NewController()
	if err := c.StartGeneration(); err != nil {
		t.Fatalf("StartGeneration failed: %v", err)
	}
	if err := c.GenerationSucceeded(sampleBatch(cards)); err != nil {
		t.Fatalf("GenerationSucceeded failed: %v", err)
	}
	return c
}

func TestController_HappyPath(t *testing.T) {
	c := NewController()

	if _, ok := c.State().(Idle); !ok {
		t.Fatalf("expected idle initial state, got %T", c.State())
	}

	if err := c.StartGeneration(); err != nil {
		t.Fatalf("StartGeneration failed: %v", err)
	}
	if _, ok := c.State().(Generating); !ok {
		t.Fatalf("expected generating, got %T", c.State())
	}

	if err := c.GenerationSucceeded(sampleBatch(2)); err != nil {
		t.Fatalf("GenerationSucceeded failed: %v", err)
	}
	reviewing, ok := c.State().(Reviewing)
	if !ok {
		t.Fatalf("expected reviewing, got %T", c.State())
	}
	if len(reviewing.Batch.GeneratedCards) != 2 {
		t.Errorf("expected batch data carried into reviewing state")
	}

	// Every card starts pending.
	for i := 0; i < 2; i++ {
		card, ok := c.Card(i)
		if !ok {
			t.Fatalf("missing card state for index %d", i)
		}
		if card.Action != ActionPending {
			t.Errorf("card %d: expected pending, got %q", i, card.Action)
		}
	}

	c.Accept(0)
	c.Reject(1)

	if err := c.Submit(); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, ok := c.State().(Submitting); !ok {
		t.Fatalf("expected submitting, got %T", c.State())
	}

	result := models.ReviewFlashcardsResponse{CardsAccepted: 1, CardsRejected: 1}
	if err := c.SubmitSucceeded(result); err != nil {
		t.Fatalf("SubmitSucceeded failed: %v", err)
	}
	success, ok := c.State().(Success)
	if !ok {
		t.Fatalf("expected success, got %T", c.State())
	}
	if success.Result.CardsAccepted != 1 {
		t.Errorf("expected result carried into success state")
	}
}

func TestController_InvalidTransitionsRejected(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *Controller) error
	}{
		{"submit from idle", func(c *Controller) error { return c.Submit() }},
		{"generation success from idle", func(c *Controller) error { return c.GenerationSucceeded(sampleBatch(1)) }},
		{"generation failure from idle", func(c *Controller) error { return c.GenerationFailed(errors.New("x")) }},
		{"submit success from idle", func(c *Controller) error {
			return c.SubmitSucceeded(models.ReviewFlashcardsResponse{})
		}},
		{"double start", func(c *Controller) error {
			c.StartGeneration()
			return c.StartGeneration()
		}},
		{"card mutation outside reviewing", func(c *Controller) error { return c.Accept(0) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(NewController()); err == nil {
				t.Error("expected transition error")
			}
		})
	}
}

func TestController_GenerationFailureCarriesPhase(t *testing.T) {
	c := NewController()
	c.StartGeneration()

	cause := errors.New("api down")
	if err := c.GenerationFailed(cause); err != nil {
		t.Fatalf("GenerationFailed: %v", err)
	}

	failed, ok := c.State().(Failed)
	if !ok {
		t.Fatalf("expected failed state, got %T", c.State())
	}
	if failed.Phase != PhaseGeneration {
		t.Errorf("expected generation phase, got %q", failed.Phase)
	}
	if !errors.Is(failed.Err, cause) {
		t.Error("expected original error carried")
	}
}

func TestController_SubmitFailureCarriesPhase(t *testing.T) {
	c := reviewingController(t, 1)
	c.Accept(0)
	c.Submit()

	c.SubmitFailed(errors.New("conflict"))

	failed, ok := c.State().(Failed)
	if !ok {
		t.Fatalf("expected failed state, got %T", c.State())
	}
	if failed.Phase != PhaseReview {
		t.Errorf("expected review phase, got %q", failed.Phase)
	}
}

func TestController_SubmissionReadiness(t *testing.T) {
	c := reviewingController(t, 3)

	if c.CanSubmit() {
		t.Error("must not be submittable with pending cards")
	}

	c.Accept(0)
	c.Reject(1)
	if c.CanSubmit() {
		t.Error("must not be submittable with one card still pending")
	}
	if err := c.Submit(); err == nil {
		t.Error("Submit must fail while cards are pending")
	}

	c.Edit(2, "An edited front side text", "An edited back side text here")
	if !c.CanSubmit() {
		t.Error("expected submittable once every card is decided")
	}
}

func TestController_DecisionsUseEditedText(t *testing.T) {
	c := reviewingController(t, 3)
	c.Accept(0)
	c.Reject(1)
	c.Edit(2, "An edited front side text", "An edited back side text here")

	decisions := c.Decisions()
	if len(decisions) != 3 {
		t.Fatalf("expected 3 decisions, got %d", len(decisions))
	}

	if decisions[0].Action != "accept" || decisions[0].FrontText != "What is the original front?" {
		t.Errorf("accept must carry original text: %+v", decisions[0])
	}
	if decisions[1].Action != "reject" {
		t.Errorf("expected reject decision: %+v", decisions[1])
	}
	if decisions[2].Action != "edit" || decisions[2].FrontText != "An edited front side text" {
		t.Errorf("edit must carry edited text: %+v", decisions[2])
	}
}

func TestController_AcceptAfterEditDropsEditedText(t *testing.T) {
	c := reviewingController(t, 1)
	c.Edit(0, "An edited front side text", "An edited back side text here")
	c.Accept(0)

	card, _ := c.Card(0)
	if card.Action != ActionAccept {
		t.Errorf("expected accept, got %q", card.Action)
	}
	if card.Edited != nil {
		t.Error("accepting must discard the pending edit")
	}
}

func TestController_FlipTogglesCard(t *testing.T) {
	c := reviewingController(t, 1)

	c.Flip(0)
	if card, _ := c.Card(0); !card.Flipped {
		t.Error("expected card flipped")
	}
	c.Flip(0)
	if card, _ := c.Card(0); card.Flipped {
		t.Error("expected card flipped back")
	}
}

func TestController_ResetFromAnyState(t *testing.T) {
	c := reviewingController(t, 2)
	c.Accept(0)

	c.Reset()

	if _, ok := c.State().(Idle); !ok {
		t.Fatalf("expected idle after reset, got %T", c.State())
	}
	if _, ok := c.Card(0); ok {
		t.Error("expected card state discarded on reset")
	}
	if err := c.StartGeneration(); err != nil {
		t.Errorf("expected restart after reset, got %v", err)
	}
}

func TestController_UnknownCardIndex(t *testing.T) {
	c := reviewingController(t, 1)
	if err := c.Accept(5); err == nil {
		t.Error("expected error for unknown card index")
	}
}
