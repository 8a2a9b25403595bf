package domain

// Address identifies an account: a caller, the router itself, an adapter,
// or an infrastructure contract (conduit, vault, exchange, pool).
type Address string

// Zero is the empty address. It is never a valid transfer party.
const Zero Address = ""

// Token identifies an asset contract. The empty token is reserved for the
// native currency and must not be used for fungible balances directly.
type Token string

// Native is the pseudo-token for native currency amounts inside order items.
const Native Token = ""

// ConduitKey identifies a routed proxy (conduit). Keys are caller-chosen
// opaque strings; the zero key means "no conduit".
type ConduitKey string
