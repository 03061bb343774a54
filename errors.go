package cms

import "errors"

// Decoding failures fall into one of these kinds. Match them with errors.Is.
var (
	// ErrMalformedStructure is returned when the data isn't a valid CMS
	// SignedData: truncated or garbage input, a wrong top-level type, or an
	// unsupported SignedData version.
	ErrMalformedStructure = errors.New("cms: malformed structure")

	// ErrNoEmbeddedContent is returned for well formed detached signatures.
	// The signed content lives outside the file.
	ErrNoEmbeddedContent = errors.New("cms: no embedded content")

	// ErrUnsupportedVariant is returned when the envelope is recognized but
	// its content isn't plain data, e.g. enveloped, compressed or timestamp
	// content.
	ErrUnsupportedVariant = errors.New("cms: unsupported content variant")
)

// DecodeError describes why an envelope couldn't be decoded.
type DecodeError struct {
	// Kind is one of ErrMalformedStructure, ErrNoEmbeddedContent or
	// ErrUnsupportedVariant.
	Kind error

	// Err is the underlying cause, if any.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}

	return e.Kind.Error() + ": " + e.Err.Error()
}

// Unwrap allows errors.Is to match both the kind and the cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func malformed(err error) error {
	return &DecodeError{Kind: ErrMalformedStructure, Err: err}
}

func unsupported(err error) error {
	return &DecodeError{Kind: ErrUnsupportedVariant, Err: err}
}

// Kind returns the decode error kind of err, or nil if err isn't a decoding
// failure.
func Kind(err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}

	return nil
}
