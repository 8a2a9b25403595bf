// Package codec decodes adapter call arguments. Payloads arrive as opaque
// JSON; each adapter unpacks its args map into a typed struct here.
package codec

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode unpacks an args map into a typed params struct. Input is weakly
// typed because JSON numbers arrive as float64; unknown keys are rejected so
// a typo in a payload fails loudly instead of silently defaulting.
func Decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}
