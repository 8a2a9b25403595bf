// Package custody unifies the three places a caller can keep funds — their
// own wallet, a routed conduit, or the custodial vault — behind one pull
// call per asset class.
//
// Adapters write their sourcing logic once against the Resolver and work
// unchanged regardless of where the asset owner keeps custody. This is what
// lets the router chain arbitrary adapters without bespoke sourcing code in
// each one.
package custody

import (
	"fmt"

	"github.com/aretw0/sluice/pkg/conduit"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ledger"
	"github.com/aretw0/sluice/pkg/vault"
)

// Resolver turns a Source descriptor into a concrete transfer. It is
// stateless; all state lives in the collaborators it coordinates.
type Resolver struct {
	ledger   *ledger.Ledger
	conduits *conduit.Controller
	vault    *vault.Vault

	// router is the identity pulls are instructed by: the wallet path spends
	// allowances granted to it, the conduit path requires a channel open to
	// it, and the vault path requires it as an approved master.
	router domain.Address
}

// NewResolver builds a resolver acting on behalf of the router address.
func NewResolver(l *ledger.Ledger, c *conduit.Controller, v *vault.Vault, router domain.Address) *Resolver {
	return &Resolver{ledger: l, conduits: c, vault: v, router: router}
}

// PullFungible moves `amount` of a fungible token from owner to dest using
// the described custody source. For vault sources the amount is read as
// shares when src.FromShares is set.
func (r *Resolver) PullFungible(token domain.Token, owner, dest domain.Address, amount uint64, src domain.Source) error {
	switch src.Kind {
	case domain.SourceWallet:
		return r.ledger.TransferFrom(token, r.router, owner, dest, amount)

	case domain.SourceConduit:
		return r.conduits.TransferFungible(r.router, src.ConduitKey, token, owner, dest, amount)

	case domain.SourceVault:
		share := amount
		if !src.FromShares {
			share = r.vault.ToShare(token, amount, true)
		}
		if err := r.vault.Transfer(r.router, token, owner, r.router, share); err != nil {
			return err
		}
		// Materialize to a ledger balance so later steps can spend it.
		if _, _, err := r.vault.Withdraw(r.router, r.router, dest, token, 0, share); err != nil {
			return err
		}
		return nil

	default:
		return fmt.Errorf("source kind %d: %w", src.Kind, domain.ErrUnsupportedSource)
	}
}

// PullNonFungible moves one non-fungible token id. The vault does not
// custody non-fungibles, so SourceVault is rejected.
func (r *Resolver) PullNonFungible(token domain.Token, owner, dest domain.Address, id uint64, src domain.Source) error {
	switch src.Kind {
	case domain.SourceWallet:
		return r.ledger.TransferNFT(token, r.router, owner, dest, id)
	case domain.SourceConduit:
		return r.conduits.TransferNonFungible(r.router, src.ConduitKey, token, owner, dest, id)
	case domain.SourceVault:
		return fmt.Errorf("non-fungible pull via vault: %w", domain.ErrUnsupportedSource)
	default:
		return fmt.Errorf("source kind %d: %w", src.Kind, domain.ErrUnsupportedSource)
	}
}

// PullSemiFungible moves semi-fungible units of one id. As with
// non-fungibles, the vault source is rejected.
func (r *Resolver) PullSemiFungible(token domain.Token, owner, dest domain.Address, id, amount uint64, src domain.Source) error {
	switch src.Kind {
	case domain.SourceWallet:
		return r.ledger.TransferSemi(token, r.router, owner, dest, id, amount)
	case domain.SourceConduit:
		return r.conduits.TransferSemiFungible(r.router, src.ConduitKey, token, owner, dest, id, amount)
	case domain.SourceVault:
		return fmt.Errorf("semi-fungible pull via vault: %w", domain.ErrUnsupportedSource)
	default:
		return fmt.Errorf("source kind %d: %w", src.Kind, domain.ErrUnsupportedSource)
	}
}
