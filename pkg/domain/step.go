package domain

import (
	"encoding/json"
	"fmt"
)

// Step is one entry of an execution sequence: an adapter reference and an
// opaque payload the router passes through without interpreting.
type Step struct {
	AdapterID uint64          `json:"adapter_id"`
	Payload   json.RawMessage `json:"payload"`
}

// Call is the payload envelope adapters decode for themselves: an operation
// name in the adapter's own vocabulary plus free-form arguments.
type Call struct {
	Op   string         `json:"op"`
	Args map[string]any `json:"args"`
}

// DecodeCall unpacks a step payload into its envelope.
func DecodeCall(payload json.RawMessage) (Call, error) {
	var call Call
	if err := json.Unmarshal(payload, &call); err != nil {
		return Call{}, fmt.Errorf("malformed payload: %w", err)
	}
	if call.Op == "" {
		return Call{}, fmt.Errorf("payload missing op")
	}
	return call, nil
}

// EncodeCall builds a step payload. Convenience for callers and tests; the
// router itself never inspects payloads.
func EncodeCall(op string, args map[string]any) json.RawMessage {
	raw, err := json.Marshal(Call{Op: op, Args: args})
	if err != nil {
		// map[string]any with JSON-safe values cannot fail to marshal;
		// a failure here is a programming error in the caller.
		panic(err)
	}
	return raw
}

// Receipt summarizes a completed execution.
type Receipt struct {
	ExecutionID string  `json:"execution_id"`
	Caller      Address `json:"caller"`
	Steps       int     `json:"steps"`
	Supplied    uint64  `json:"supplied"`
	Consumed    uint64  `json:"consumed"`
	Refunded    uint64  `json:"refunded"`
}
