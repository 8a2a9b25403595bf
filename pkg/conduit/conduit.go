// Package conduit implements routed proxies: revocable, keyed transfer
// channels a user can authorize instead of approving the router directly.
//
// A conduit only moves assets on instruction from an address it has an open
// channel to. Closing the channel revokes the router's access without
// touching the user's own approvals.
package conduit

import (
	"fmt"
	"sync"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
)

// Controller manages all conduits and their channels.
type Controller struct {
	mu       sync.RWMutex
	ledger   *ledger.Ledger
	conduits map[domain.ConduitKey]*instance
}

type instance struct {
	owner    domain.Address
	addr     domain.Address
	channels map[domain.Address]bool
}

// NewController creates a controller bound to a ledger.
func NewController(l *ledger.Ledger) *Controller {
	return &Controller{
		ledger:   l,
		conduits: make(map[domain.ConduitKey]*instance),
	}
}

// ConduitAddress derives the account identity of a conduit. Users grant
// their ledger approvals to this address.
func ConduitAddress(key domain.ConduitKey) domain.Address {
	return domain.Address("conduit:" + string(key))
}

// Open creates a conduit under the given key, owned by owner. Opening an
// existing key is an error; keys are permanent once claimed.
func (c *Controller) Open(owner domain.Address, key domain.ConduitKey) (domain.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.conduits[key]; exists {
		return domain.Zero, fmt.Errorf("conduit key %q already claimed", key)
	}
	inst := &instance{
		owner:    owner,
		addr:     ConduitAddress(key),
		channels: make(map[domain.Address]bool),
	}
	c.conduits[key] = inst
	return inst.addr, nil
}

// UpdateChannel opens or closes the channel from a conduit to a destination
// instructor. Only the conduit's owner may do this; closing is how a user
// revokes the router.
func (c *Controller) UpdateChannel(caller domain.Address, key domain.ConduitKey, dest domain.Address, open bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	inst, ok := c.conduits[key]
	if !ok {
		return fmt.Errorf("conduit %q: %w", key, domain.ErrChannelNotEnabled)
	}
	if caller != inst.owner {
		return fmt.Errorf("channel update on %q by %s: %w", key, caller, domain.ErrUnauthorized)
	}
	inst.channels[dest] = open
	return nil
}

// ChannelOpen reports whether instructor holds an open channel on the conduit.
func (c *Controller) ChannelOpen(key domain.ConduitKey, instructor domain.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.conduits[key]
	return ok && inst.channels[instructor]
}

// TransferFungible moves fungible tokens through the conduit. The owner of
// the assets must have approved the conduit's address on the ledger, and the
// instructor must hold an open channel.
func (c *Controller) TransferFungible(instructor domain.Address, key domain.ConduitKey, token domain.Token, from, to domain.Address, amount uint64) error {
	inst, err := c.resolve(key, instructor)
	if err != nil {
		return err
	}
	return c.ledger.TransferFrom(token, inst.addr, from, to, amount)
}

// TransferNonFungible moves a non-fungible token through the conduit.
func (c *Controller) TransferNonFungible(instructor domain.Address, key domain.ConduitKey, token domain.Token, from, to domain.Address, id uint64) error {
	inst, err := c.resolve(key, instructor)
	if err != nil {
		return err
	}
	return c.ledger.TransferNFT(token, inst.addr, from, to, id)
}

// TransferSemiFungible moves semi-fungible units through the conduit.
func (c *Controller) TransferSemiFungible(instructor domain.Address, key domain.ConduitKey, token domain.Token, from, to domain.Address, id, amount uint64) error {
	inst, err := c.resolve(key, instructor)
	if err != nil {
		return err
	}
	return c.ledger.TransferSemi(token, inst.addr, from, to, id, amount)
}

func (c *Controller) resolve(key domain.ConduitKey, instructor domain.Address) (*instance, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.conduits[key]
	if !ok {
		return nil, fmt.Errorf("conduit %q: %w", key, domain.ErrChannelNotEnabled)
	}
	if !inst.channels[instructor] {
		return nil, fmt.Errorf("conduit %q has no channel to %s: %w", key, instructor, domain.ErrChannelNotEnabled)
	}
	return inst, nil
}
