// Package cms recovers the content embedded in CMS (PKCS#7) SignedData
// envelopes, the format of ".p7m" files. Signatures are never checked; the
// envelope is unwrapped structurally.
package cms

import "golang.org/x/xerrors"

// MaxLayers is the deepest nesting Unwrap accepts.
const MaxLayers = 8

// Payload is the content recovered from an envelope.
type Payload struct {
	// Data is the embedded content, byte for byte. It doesn't share memory
	// with the envelope.
	Data []byte

	// Filename is the original filename declared in the envelope, if any.
	Filename string

	// Layers is the number of SignedData envelopes removed to reach Data.
	Layers int
}

// Decode extracts the embedded content of a single SignedData envelope.
// Errors are *DecodeError values of kind ErrMalformedStructure,
// ErrNoEmbeddedContent or ErrUnsupportedVariant.
func Decode(data []byte) (*Payload, error) {
	env, err := NewEnvelope(data)
	if err != nil {
		return nil, err
	}

	return env.Payload()
}

// Unwrap decodes data like Decode and then keeps unwrapping while the content
// is itself a SignedData with embedded content, up to maxLayers envelopes in
// total. A filename declared by an inner envelope takes precedence.
func Unwrap(data []byte, maxLayers int) (*Payload, error) {
	if maxLayers < 1 || maxLayers > MaxLayers {
		return nil, xerrors.Errorf("cms: max layers must be between 1 and %d, got %d", MaxLayers, maxLayers)
	}

	p, err := Decode(data)
	if err != nil {
		return nil, err
	}

	for p.Layers < maxLayers {
		inner, err := Decode(p.Data)
		if err != nil {
			break
		}

		if inner.Filename == "" {
			inner.Filename = p.Filename
		}
		inner.Layers = p.Layers + 1
		p = inner
	}

	return p, nil
}
