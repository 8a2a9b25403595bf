package domain

import "fmt"

// SourceKind discriminates where an asset is pulled from.
type SourceKind uint8

const (
	// SourceWallet pulls directly from the owner's wallet balance using an
	// allowance or operator approval granted to the router.
	SourceWallet SourceKind = iota

	// SourceConduit routes the pull through a keyed, revocable conduit that
	// must have a channel open to the destination.
	SourceConduit

	// SourceVault moves the owner's balance inside the custodial vault,
	// addressed by amount or by share.
	SourceVault
)

// String returns the wire name of the kind.
func (k SourceKind) String() string {
	switch k {
	case SourceWallet:
		return "wallet"
	case SourceConduit:
		return "conduit"
	case SourceVault:
		return "vault"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ParseSourceKind converts a wire name back into a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	switch s {
	case "wallet":
		return SourceWallet, nil
	case "conduit":
		return SourceConduit, nil
	case "vault":
		return SourceVault, nil
	default:
		return 0, fmt.Errorf("unknown source kind %q", s)
	}
}

// Source describes the custody origin of an asset pull. The same shape is
// accepted by every asset-class transfer, so adapters carry exactly one
// sourcing argument regardless of where the caller keeps funds.
type Source struct {
	Kind SourceKind `json:"kind" mapstructure:"kind"`

	// ConduitKey selects the conduit for SourceConduit pulls. Ignored for
	// other kinds.
	ConduitKey ConduitKey `json:"conduit_key,omitempty" mapstructure:"conduit_key"`

	// FromShares interprets the pull amount as vault shares instead of a
	// raw token amount. Only meaningful for SourceVault.
	FromShares bool `json:"from_shares,omitempty" mapstructure:"from_shares"`
}
