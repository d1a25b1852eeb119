// Package turn tracks which turn is live so late engine results and
// duplicate events are dropped instead of acted on.
package turn

import (
	"fmt"
	"sync"
	"time"
)

// Token identifies one turn. Two tokens are the same turn iff they are equal.
type Token struct {
	Owner string
	Dice  [2]int
	Nonce uint64
	At    time.Time // informational, not part of identity
}

func (t Token) String() string {
	return fmt.Sprintf("%s:%d-%d#%d", t.Owner, t.Dice[0], t.Dice[1], t.Nonce)
}

// Same reports whether both tokens name the same turn.
func (t Token) Same(o Token) bool {
	return t.Owner == o.Owner && t.Dice == o.Dice && t.Nonce == o.Nonce
}

type gate struct {
	key  string
	last time.Time
}

// Coordinator holds the live turn token, per-turn counters and the
// debounce registers.
type Coordinator struct {
	mu      sync.Mutex
	now     func() time.Time
	nonce   uint64
	current Token
	moves   int
	hints   int
	gates   map[string]gate
}

// NewCoordinator returns a coordinator with no live turn.
func NewCoordinator() *Coordinator {
	return &Coordinator{now: time.Now, gates: make(map[string]gate)}
}

// NewTurn starts a new turn and makes its token the live one.
func (c *Coordinator) NewTurn(owner string, d1, d2 int) Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nonce++
	c.current = Token{Owner: owner, Dice: [2]int{d1, d2}, Nonce: c.nonce, At: c.now()}
	c.moves = 0
	c.hints = 0
	return c.current
}

// Current returns the live token.
func (c *Coordinator) Current() Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// IsCurrent reports whether t is still the live turn.
func (c *Coordinator) IsCurrent(t Token) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Nonce != 0 && c.current.Same(t)
}

// CountMove records a dispatched move for t and returns the turn's total.
// It returns false if t is no longer live.
func (c *Coordinator) CountMove(t Token) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current.Same(t) {
		return c.moves, false
	}
	c.moves++
	return c.moves, true
}

// CountHint records an engine request for t and returns the turn's total.
func (c *Coordinator) CountHint(t Token) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.current.Same(t) {
		return c.hints, false
	}
	c.hints++
	return c.hints, true
}

// Counters returns the moves and hints recorded for the live turn.
func (c *Coordinator) Counters() (moves, hints int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moves, c.hints
}

// ShouldFire is the debounce gate. Within ttl of the last firing of kind it
// refuses every key, the repeated one included; after ttl a repeated key
// fires again. Kinds are independent.
//
// The key is recorded for LastKey but never gates on its own: a position
// that stays unchanged is acted on again once ttl passes rather than being
// refused until a different key arrives. A stuck screen therefore retries
// at most once per ttl instead of stalling for good.
func (c *Coordinator) ShouldFire(kind, key string, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if g, ok := c.gates[kind]; ok && now.Sub(g.last) < ttl {
		return false
	}
	c.gates[kind] = gate{key: key, last: now}
	return true
}

// LastKey returns the last key that fired for kind.
func (c *Coordinator) LastKey(kind string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.gates[kind]
	return g.key, ok
}

// ResetKind clears the debounce register of one kind.
func (c *Coordinator) ResetKind(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.gates, kind)
}

// Reset forgets the live turn and every debounce register.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = Token{}
	c.moves = 0
	c.hints = 0
	c.gates = make(map[string]gate)
}
