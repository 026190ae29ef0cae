package selection

import (
	"sync"

	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/logging"
	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/viz"
)

// View is what a renderer needs to draw one session.
type View struct {
	Status     datastore.Status `json:"status"`
	Generation uint64           `json:"generation"`
	State      State            `json:"state"`
	Graph      *viz.Graph       `json:"graph"`
	Pending    int              `json:"pending"`
	Error      string           `json:"error,omitempty"`

	// Snapshot is the generation the graph was built from, nil before the first publish.
	Snapshot *datastore.Snapshot `json:"-"`
}

// Controller owns the state of one session against a Store.
//
// Events dispatched before the store has published a snapshot are queued and
// replayed in order once it does. If the store becomes unavailable the queue is
// dropped and the view carries the load error.
type Controller struct {
	store *datastore.Store
	opts  viz.Options

	mu         sync.Mutex
	state      State
	graph      *viz.Graph
	snap       *datastore.Snapshot
	generation uint64
	queue      []Event
	loadErr    error
	listeners  []func(View)

	unsubscribe func()
}

// NewController creates a controller bound to store. Call Close to detach it.
func NewController(store *datastore.Store, opts viz.Options) *Controller {
	c := &Controller{
		store: store,
		opts:  opts,
		state: Initial(),
		graph: viz.Empty(),
	}
	c.unsubscribe = store.Subscribe(c.onUpdate)

	c.mu.Lock()
	if snap := store.Snapshot(); snap != nil {
		c.generation = snap.Generation
		c.snap = snap
	} else if store.Status() == datastore.StatusUnavailable {
		c.loadErr = store.Err()
	}
	c.mu.Unlock()
	return c
}

// Close detaches the controller from the store.
func (c *Controller) Close() {
	c.unsubscribe()
}

// OnChange registers fn to receive the view after every change.
// fn is called with the controller locked and must not call Dispatch.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Options returns the graph options in use.
func (c *Controller) Options() viz.Options {
	return c.opts
}

// Dispatch processes one event to completion and returns the resulting view.
func (c *Controller) Dispatch(ev Event) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.store.Snapshot()
	switch {
	case snap != nil:
		// The store publishes before it notifies subscribers, so queued events
		// may still be waiting here. They are older than ev.
		c.loadErr = nil
		c.syncGeneration(snap)
		c.replayLocked(snap)
		c.apply(ev, snap)
	case c.loadErr != nil:
		logging.Debug("dropping event, data unavailable", "event", ev.Type())
	default:
		c.queue = append(c.queue, ev)
		logging.Debug("queued event until data is loaded", "event", ev.Type(), "pending", len(c.queue))
	}

	view := c.viewLocked()
	c.notifyLocked(view)
	return view
}

// View returns the current view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// State returns the current selection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Graph returns the current graph.
func (c *Controller) Graph() *viz.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph
}

func (c *Controller) onUpdate(u datastore.Update) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case u.Snapshot != nil:
		c.loadErr = nil
		c.syncGeneration(u.Snapshot)
		c.replayLocked(u.Snapshot)
	case u.Err != nil:
		if dropped := len(c.queue); dropped > 0 {
			logging.Warn("data unavailable, dropping queued events", "count", dropped)
		}
		c.queue = nil
		c.loadErr = u.Err
	}

	c.notifyLocked(c.viewLocked())
}

// replayLocked applies the queued events in arrival order and empties the queue.
func (c *Controller) replayLocked(snap *datastore.Snapshot) {
	if len(c.queue) == 0 {
		return
	}
	logging.Debug("replaying queued events", "count", len(c.queue))
	queued := c.queue
	c.queue = nil
	for _, ev := range queued {
		c.apply(ev, snap)
	}
}

// syncGeneration rebuilds the graph when snap is newer than the one it was built from.
func (c *Controller) syncGeneration(snap *datastore.Snapshot) {
	c.snap = snap
	if snap.Generation == c.generation {
		return
	}
	c.generation = snap.Generation
	c.rebuild(snap)

	// A hovered node may have left the graph.
	if c.state.HoveredID != nil {
		if _, ok := c.graph.Node(*c.state.HoveredID); !ok {
			c.state.HoveredID = nil
		}
	}
}

func (c *Controller) apply(ev Event, snap *datastore.Snapshot) {
	prev := c.state.SelectedID
	c.state = Reduce(c.state, ev, snap, c.opts)
	if !sameID(prev, c.state.SelectedID) {
		c.rebuild(snap)
	}
}

func (c *Controller) rebuild(snap *datastore.Snapshot) {
	id, ok := c.state.Selected()
	if !ok {
		c.graph = viz.Empty()
		return
	}
	c.graph = viz.Build(id, snap.Titles, snap.Adjacency, c.opts)
}

func (c *Controller) viewLocked() View {
	view := View{
		Status:     c.store.Status(),
		Generation: c.generation,
		State:      c.state,
		Graph:      c.graph,
		Pending:    len(c.queue),
		Snapshot:   c.snap,
	}
	if c.loadErr != nil && c.store.Snapshot() == nil {
		view.Error = c.loadErr.Error()
	}
	return view
}

func (c *Controller) notifyLocked(view View) {
	for _, fn := range c.listeners {
		fn(view)
	}
}

func sameID(a, b *paper.ID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
