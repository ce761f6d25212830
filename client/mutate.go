package client

import (
	"context"
	"sync"
)

// Collection coordinates a listing collection and its mutations. Deletes are
// optimistic: the item leaves the collection before the request is sent and
// the exact pre-delete state comes back if the request fails. Creates and
// updates are not optimistic; the collection only changes once the server
// has confirmed.
//
// Mutations against the same listing id are serialized with a per-id lock,
// so a delete and an update of one listing cannot interleave.
type Collection struct {
	client *Client
	fetch  func(ctx context.Context) ([]PropertyView, error)
	state  *State[[]PropertyView]

	// ReconcileDeletes refetches the collection after a confirmed delete to
	// pick up any concurrent server-side changes.
	ReconcileDeletes bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCollection builds a collection loaded through fetch (e.g.
// Client.AgentProperties) and mutated through client.
func NewCollection(client *Client, fetch func(ctx context.Context) ([]PropertyView, error)) *Collection {
	return &Collection{
		client: client,
		fetch:  fetch,
		state:  NewState[[]PropertyView](nil),
		locks:  make(map[string]*sync.Mutex),
	}
}

// State exposes the underlying container for reads.
func (c *Collection) State() *State[[]PropertyView] {
	return c.state
}

// Load fetches the collection through the container lifecycle.
func (c *Collection) Load(ctx context.Context) ([]PropertyView, error) {
	return c.state.Handle(ctx, c.fetch)
}

func (c *Collection) lockFor(id string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[id]
	if !ok {
		l = &sync.Mutex{}
		c.locks[id] = l
	}
	return l
}

// Create submits a new listing and appends it once confirmed.
func (c *Collection) Create(ctx context.Context, input PropertyInput) (*PropertyView, error) {
	view, err := c.client.CreateProperty(ctx, input)
	if err != nil || view == nil {
		return nil, err
	}
	items := c.state.Data()
	next := make([]PropertyView, 0, len(items)+1)
	next = append(next, items...)
	next = append(next, *view)
	c.state.SetData(next)
	return view, nil
}

// Update submits listing changes and replaces the item once confirmed.
func (c *Collection) Update(ctx context.Context, id string, input PropertyInput) (*PropertyView, error) {
	l := c.lockFor(id)
	l.Lock()
	defer l.Unlock()

	view, err := c.client.UpdateProperty(ctx, id, input)
	if err != nil || view == nil {
		return nil, err
	}

	items := c.state.Data()
	next := make([]PropertyView, len(items))
	copy(next, items)
	for i := range next {
		if next[i].ID == id {
			next[i] = *view
		}
	}
	c.state.SetData(next)
	return view, nil
}

// Delete removes the listing locally, then asks the server. On failure the
// snapshot taken before the removal is restored verbatim.
func (c *Collection) Delete(ctx context.Context, id string) error {
	l := c.lockFor(id)
	l.Lock()
	defer l.Unlock()

	items := c.state.Data()
	snapshot := make([]PropertyView, len(items))
	copy(snapshot, items)

	next := make([]PropertyView, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			next = append(next, item)
		}
	}
	c.state.SetData(next)

	if err := c.client.DeleteProperty(ctx, id); err != nil {
		c.state.SetData(snapshot)
		return err
	}

	if c.ReconcileDeletes && c.fetch != nil {
		if _, err := c.Load(ctx); err != nil {
			return err
		}
	}
	return nil
}
