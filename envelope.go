package cms

import (
	"bytes"
	"encoding/base64"
	"encoding/pem"
	"errors"

	"github.com/bave/unp7m/protocol"
	"golang.org/x/xerrors"
)

// Envelope is a read-only view over the bytes of one signed-container file.
type Envelope struct {
	raw     []byte
	der     []byte
	armored bool
	offset  int
	ci      protocol.ContentInfo
}

// NewEnvelope locates the ContentInfo structure in data. Data may be binary
// BER/DER, PEM armored, or bare base64 text.
func NewEnvelope(data []byte) (*Envelope, error) {
	der, armored, err := dearmor(data)
	if err != nil {
		return nil, malformed(err)
	}

	ci, err := protocol.ParseContentInfo(der)
	if err != nil {
		return nil, malformed(err)
	}

	env := &Envelope{raw: data, der: der, armored: armored, ci: ci}
	if !armored {
		env.offset = len(data) - len(der)
	}

	return env, nil
}

// Len returns the total length of the file.
func (e *Envelope) Len() int {
	return len(e.raw)
}

// Structure returns the offset and length of the encoded ContentInfo within
// the binary form of the envelope. Leading whitespace before binary content
// is skipped and bytes after the structure are ignored.
func (e *Envelope) Structure() (offset, length int) {
	return e.offset, len(e.ci.Raw.FullBytes)
}

// Armored reports whether the file was PEM or base64 text.
func (e *Envelope) Armored() bool {
	return e.armored
}

// ContentType returns the OID of the top-level content.
func (e *Envelope) ContentType() string {
	return e.ci.ContentType.String()
}

// SignedData gets the SignedData carried by the envelope.
func (e *Envelope) SignedData() (*SignedData, error) {
	psd, err := e.ci.SignedDataContent()
	switch {
	case err == nil:
		return &SignedData{psd}, nil
	case errors.Is(err, protocol.ErrUnsupportedContentType):
		return nil, unsupported(xerrors.Errorf("content type %s: %w", e.ci.ContentType, err))
	case errors.Is(err, protocol.ErrWrongType):
		return nil, malformed(xerrors.Errorf("top-level content type %s: %w", e.ci.ContentType, err))
	default:
		return nil, malformed(err)
	}
}

// Payload gets the embedded content.
func (e *Envelope) Payload() (*Payload, error) {
	sd, err := e.SignedData()
	if err != nil {
		return nil, err
	}

	data, err := sd.GetData()
	if err != nil {
		return nil, err
	}

	return &Payload{Data: data, Filename: sd.Filename(), Layers: 1}, nil
}

var pemPrefix = []byte("-----BEGIN ")

// dearmor returns the binary form of data. Binary input is returned without
// the leading whitespace and byte order mark that armor detection skips.
func dearmor(data []byte) ([]byte, bool, error) {
	trimmed := bytes.TrimLeft(data, "\ufeff \t\r\n")

	if bytes.HasPrefix(trimmed, pemPrefix) {
		block, _ := pem.Decode(trimmed)
		if block == nil {
			return nil, false, xerrors.New("bad PEM armor")
		}
		return block.Bytes, true, nil
	}

	if len(trimmed) == 0 || trimmed[0] == 0x30 || !isBase64Text(trimmed) {
		return trimmed, false, nil
	}

	compact := bytes.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, trimmed)

	der := make([]byte, base64.StdEncoding.DecodedLen(len(compact)))
	n, err := base64.StdEncoding.Decode(der, compact)
	if err != nil {
		return nil, false, xerrors.Errorf("bad base64 armor: %w", err)
	}

	return der[:n], true, nil
}

func isBase64Text(data []byte) bool {
	for _, c := range data {
		switch {
		case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		case c == '+', c == '/', c == '=':
		case c == ' ', c == '\t', c == '\r', c == '\n':
		default:
			return false
		}
	}

	return true
}
