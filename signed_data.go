package cms

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/bave/unp7m/protocol"
	"golang.org/x/xerrors"
)

// SignedData represents a signed message or detached signature.
type SignedData struct {
	psd protocol.SignedData
}

// ParseSignedData parses a SignedData from BER encoded (or PEM/base64
// armored) data.
func ParseSignedData(ber []byte) (*SignedData, error) {
	env, err := NewEnvelope(ber)
	if err != nil {
		return nil, err
	}

	return env.SignedData()
}

// GetData gets the encapsulated data from the SignedData. ErrNoEmbeddedContent
// is returned if this is a detached signature, whatever its content type, and
// ErrUnsupportedVariant if the SignedData encapsulates something other than
// data (1.2.840.113549.1.7.1).
// The returned slice is a fresh copy.
func (sd *SignedData) GetData() ([]byte, error) {
	eci := sd.psd.EncapContentInfo

	data, err := eci.DataEContent()
	switch {
	case errors.Is(err, protocol.ErrWrongType):
		return nil, unsupported(xerrors.Errorf("encapsulated content type %s: %w", eci.EContentType, err))
	case err != nil:
		return nil, malformed(err)
	case data == nil:
		return nil, &DecodeError{Kind: ErrNoEmbeddedContent}
	}

	return data, nil
}

// IsDetached checks whether the signed content is absent from the envelope.
func (sd *SignedData) IsDetached() bool {
	return sd.psd.EncapContentInfo.IsDetached()
}

// Version returns the CMSVersion of the SignedData.
func (sd *SignedData) Version() int {
	return sd.psd.Version
}

// Filename returns the original filename declared by the signer, or "" if
// none was declared. CMS has no field for it; signers that record one put it
// in the contentDescription of a ContentHints signed attribute. Only the base
// name is returned.
func (sd *SignedData) Filename() string {
	desc, ok := sd.psd.ContentDescription()
	if !ok {
		return ""
	}

	return sanitizeFilename(desc)
}

const maxFilenameLen = 255

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	name = filepath.Base(filepath.FromSlash(name))

	switch name {
	case ".", "..", string(filepath.Separator):
		return ""
	}
	if len(name) > maxFilenameLen {
		return ""
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return ""
	}

	return name
}
