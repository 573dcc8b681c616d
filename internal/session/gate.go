package session

import (
	"context"
	"sync"

	"github.com/skillbridge-dev/skillbridge/internal/models"
)

// State of a role gate check
type State int

const (
	Checking State = iota
	Authorized
	Unauthorized
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Decide applies the gate rule to a resolved session
func Decide(res Result, required models.Role) State {
	if !res.Authenticated || res.User == nil {
		return Unauthorized
	}
	if required != "" && res.User.Role != required {
		return Unauthorized
	}
	return Authorized
}

// Gate restricts a unit of work to sessions holding a required role.
// An empty role admits any authenticated session.
type Gate struct {
	resolver *Resolver
	required models.Role
}

// NewGate creates a gate for the required role
func NewGate(resolver *Resolver, required models.Role) *Gate {
	return &Gate{resolver: resolver, required: required}
}

// Required returns the role the gate admits
func (g *Gate) Required() models.Role {
	return g.required
}

// Authorize resolves the session synchronously and returns the terminal state
func (g *Gate) Authorize(ctx context.Context) (State, *models.Profile) {
	res := g.resolver.EnsureSession(ctx)
	if ctx.Err() != nil {
		return Checking, nil
	}
	state := Decide(res, g.required)
	if state != Authorized {
		return state, nil
	}
	return state, res.User
}

// Start begins resolving in the background. Cancelling ctx, or calling
// Cancel on the returned Check, discards any result that arrives later.
func (g *Gate) Start(ctx context.Context) *Check {
	ctx, cancel := context.WithCancel(ctx)
	c := &Check{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(c.done)
		defer cancel()
		res := g.resolver.EnsureSession(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		c.state = Decide(res, g.required)
		if c.state == Authorized {
			c.user = res.User
		}
	}()

	return c
}

// Check is one in-flight gate resolution, bound to the lifetime of its context
type Check struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state State
	user  *models.Profile
}

// State returns the current state; Checking until resolution completes
func (c *Check) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// User returns the authorized profile, or nil
func (c *Check) User() *models.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Done is closed once the check has settled or been discarded
func (c *Check) Done() <-chan struct{} {
	return c.done
}

// Cancel tears the check down. A result arriving afterwards is dropped.
func (c *Check) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
}

// Wait blocks until the check settles or ctx ends. It returns the check's
// context error when the check was torn down before resolving.
func (c *Check) Wait(ctx context.Context) (State, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		return c.State(), ctx.Err()
	}

	state := c.State()
	if state == Checking {
		return state, c.ctx.Err()
	}
	return state, nil
}
