package positions

import (
	"context"
	"log/slog"
	"sync"

	"positions-console/internal/model"
	"positions-console/pkg/apierror"
)

const DeletePrompt = "Delete this position?"

type Remote interface {
	ListPositions(ctx context.Context) ([]model.Position, error)
	CreatePosition(ctx context.Context, code string, name string) (model.Position, error)
	UpdatePosition(ctx context.Context, id int64, code string, name string) (model.Position, error)
	DeletePosition(ctx context.Context, id int64) error
}

// FailureHandler takes over authorization failures of work started under a
// session generation. It reports true when it did, in which case the
// controller leaves its state alone.
type FailureHandler interface {
	HandleFailureAt(ctx context.Context, generation uint64, err error) bool
}

// Generations exposes the session generation. State built under one
// generation is dropped once it changes.
type Generations interface {
	Generation() uint64
}

type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// View is everything the positions screen renders.
type View struct {
	Positions []model.Position
	Form      model.FormState
	Error     string
	Loading   bool
}

type Controller struct {
	remote   Remote
	failures FailureHandler
	sessions Generations
	log      *slog.Logger

	mu         sync.Mutex
	view       View
	generation uint64
	inFlight   int
}

func NewController(remote Remote, failures FailureHandler, sessions Generations, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		remote:   remote,
		failures: failures,
		sessions: sessions,
		log:      log.With("component", "positions"),
	}
	c.generation = c.currentGeneration()
	return c
}

// Refresh reloads the list. On failure the previous list stays.
func (c *Controller) Refresh(ctx context.Context) error {
	gen := c.start()

	list, err := c.remote.ListPositions(ctx)
	c.done()
	if c.dropped(gen) {
		c.log.Debug("dropping positions from an ended session")
		return nil
	}
	if c.handled(ctx, gen, err) {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.staleLocked(gen) {
		return nil
	}
	if err != nil {
		c.view.Error = apierror.Message(err)
		c.log.Warn("failed to fetch positions", "error", err)
		return err
	}

	c.view.Positions = list
	return nil
}

// Submit creates a position in create mode and updates Form.EditingID in
// edit mode. Success resets the form and reloads the list.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	c.syncLocked()
	gen := c.generation
	c.view.Error = ""
	form := c.view.Form
	c.mu.Unlock()

	var err error
	if form.IsEditing() {
		_, err = c.remote.UpdatePosition(ctx, *form.EditingID, form.PositionCode, form.PositionName)
	} else {
		_, err = c.remote.CreatePosition(ctx, form.PositionCode, form.PositionName)
	}
	if c.dropped(gen) {
		return nil
	}
	if c.handled(ctx, gen, err) {
		return err
	}

	c.mu.Lock()
	if c.staleLocked(gen) {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.view.Error = apierror.Message(err)
		c.mu.Unlock()
		c.log.Warn("failed to save position", "editing", form.IsEditing(), "error", err)
		return err
	}
	c.view.Form = model.FormState{}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

func (c *Controller) BeginEdit(p model.Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncLocked()

	id := p.PositionID
	c.view.Form = model.FormState{
		EditingID:    &id,
		PositionCode: p.PositionCode,
		PositionName: p.PositionName,
	}
}

// BeginEditByID starts editing a row of the current list.
func (c *Controller) BeginEditByID(id int64) error {
	c.mu.Lock()
	c.syncLocked()
	var found *model.Position
	for i := range c.view.Positions {
		if c.view.Positions[i].PositionID == id {
			p := c.view.Positions[i]
			found = &p
			break
		}
	}
	c.mu.Unlock()

	if found == nil {
		return model.ErrPositionNotFound
	}
	c.BeginEdit(*found)
	return nil
}

func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncLocked()
	c.view.Form = model.FormState{}
}

// SetField replaces the form inputs and keeps the current mode.
func (c *Controller) SetField(code string, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncLocked()
	c.view.Form.PositionCode = code
	c.view.Form.PositionName = name
}

// Remove deletes a position after confirmation. The list only changes
// through the refresh that follows a successful delete.
func (c *Controller) Remove(ctx context.Context, id int64, confirm Confirmer) error {
	if id <= 0 {
		return nil
	}
	if confirm == nil || !confirm.Confirm(ctx, DeletePrompt) {
		return model.ErrNotConfirmed
	}

	c.mu.Lock()
	c.syncLocked()
	gen := c.generation
	c.view.Error = ""
	c.mu.Unlock()

	err := c.remote.DeletePosition(ctx, id)
	if c.dropped(gen) {
		return nil
	}
	if c.handled(ctx, gen, err) {
		return err
	}

	c.mu.Lock()
	if c.staleLocked(gen) {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.view.Error = apierror.Message(err)
		c.mu.Unlock()
		c.log.Warn("failed to delete position", "position_id", id, "error", err)
		return err
	}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Snapshot returns a copy safe to render while requests are in flight.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncLocked()

	v := c.view
	v.Positions = make([]model.Position, len(c.view.Positions))
	copy(v.Positions, c.view.Positions)
	if c.view.Form.EditingID != nil {
		id := *c.view.Form.EditingID
		v.Form.EditingID = &id
	}
	return v
}

func (c *Controller) start() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncLocked()
	c.view.Error = ""
	c.inFlight++
	c.view.Loading = true
	return c.generation
}

func (c *Controller) done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doneLocked()
}

func (c *Controller) doneLocked() {
	if c.inFlight > 0 {
		c.inFlight--
	}
	c.view.Loading = c.inFlight > 0
}

func (c *Controller) handled(ctx context.Context, gen uint64, err error) bool {
	if err == nil || c.failures == nil {
		return false
	}
	return c.failures.HandleFailureAt(ctx, gen, err)
}

// dropped reports whether the session a call started under has gone. Its
// result, including any failure, is then discarded.
func (c *Controller) dropped(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staleLocked(gen)
}

// syncLocked drops state that belongs to an earlier session.
func (c *Controller) syncLocked() {
	gen := c.currentGeneration()
	if gen == c.generation {
		return
	}
	c.generation = gen
	c.view = View{Loading: c.inFlight > 0}
}

func (c *Controller) staleLocked(gen uint64) bool {
	return c.currentGeneration() != gen
}

func (c *Controller) currentGeneration() uint64 {
	if c.sessions == nil {
		return 0
	}
	return c.sessions.Generation()
}
