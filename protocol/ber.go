package protocol

import (
	"encoding/asn1"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
	"golang.org/x/xerrors"
)

// maxDepth bounds how deeply elements may nest, counting both constructed
// values being read and indefinite length values being scanned.
const maxDepth = 64

// Element is a single BER encoded tag/length/value.
type Element struct {
	Class       int
	Tag         int
	Constructed bool

	// Indefinite is set when the length was encoded in the indefinite form.
	// Content excludes the end-of-contents marker in that case.
	Indefinite bool

	// Content is the value octets. FullBytes is the complete encoding,
	// including the identifier and length octets.
	Content   []byte
	FullBytes []byte

	depth int
}

// Is checks the class and tag of the element.
func (e Element) Is(class, tag int) bool {
	return e.Class == class && e.Tag == tag
}

// Reader returns a Reader over the children of a constructed element.
func (e Element) Reader() *Reader {
	return &Reader{s: cryptobyte.String(e.Content), depth: e.depth + 1}
}

// Octets gets the value of an OCTET STRING. Constructed encodings have their
// segments joined in order. The returned slice never aliases the input and is
// non-nil, even for empty values.
func (e Element) Octets() ([]byte, error) {
	if !e.Is(asn1.ClassUniversal, asn1.TagOctetString) {
		return nil, xerrors.Errorf("expected OCTET STRING, got %s: %w", e.describe(), ErrMalformed)
	}

	return appendOctets(make([]byte, 0, len(e.Content)), e)
}

func appendOctets(dst []byte, e Element) ([]byte, error) {
	if !e.Constructed {
		return append(dst, e.Content...), nil
	}

	r := e.Reader()
	for !r.Empty() {
		seg, err := r.Next()
		if err != nil {
			return nil, err
		}
		if !seg.Is(asn1.ClassUniversal, asn1.TagOctetString) {
			return nil, xerrors.Errorf("OCTET STRING segment has %s: %w", seg.describe(), ErrMalformed)
		}
		if dst, err = appendOctets(dst, seg); err != nil {
			return nil, err
		}
	}

	return dst, nil
}

// ObjectIdentifier decodes the element as an OBJECT IDENTIFIER.
func (e Element) ObjectIdentifier() (asn1.ObjectIdentifier, error) {
	if !e.Is(asn1.ClassUniversal, asn1.TagOID) || e.Constructed {
		return nil, xerrors.Errorf("expected OBJECT IDENTIFIER, got %s: %w", e.describe(), ErrMalformed)
	}

	var oid asn1.ObjectIdentifier
	if s := e.reencode(cbasn1.OBJECT_IDENTIFIER); !s.ReadASN1ObjectIdentifier(&oid) {
		return nil, xerrors.Errorf("bad OBJECT IDENTIFIER: %w", ErrMalformed)
	}

	return oid, nil
}

// Int decodes the element as a small INTEGER.
func (e Element) Int() (int, error) {
	if !e.Is(asn1.ClassUniversal, asn1.TagInteger) || e.Constructed {
		return 0, xerrors.Errorf("expected INTEGER, got %s: %w", e.describe(), ErrMalformed)
	}

	var i int
	if s := e.reencode(cbasn1.INTEGER); !s.ReadASN1Integer(&i) {
		return 0, xerrors.Errorf("bad INTEGER: %w", ErrMalformed)
	}

	return i, nil
}

// UTF8String decodes the element as a primitive UTF8String.
func (e Element) UTF8String() (string, error) {
	if !e.Is(asn1.ClassUniversal, asn1.TagUTF8String) || e.Constructed {
		return "", xerrors.Errorf("expected UTF8String, got %s: %w", e.describe(), ErrMalformed)
	}
	if !utf8.Valid(e.Content) {
		return "", xerrors.Errorf("invalid UTF-8 in UTF8String: %w", ErrMalformed)
	}

	return string(e.Content), nil
}

// reencode wraps the content in a minimal DER header so that cryptobyte's
// strict readers accept values that arrived with long form BER lengths.
func (e Element) reencode(tag cbasn1.Tag) cryptobyte.String {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(tag, func(c *cryptobyte.Builder) {
		c.AddBytes(e.Content)
	})

	der, err := b.Bytes()
	if err != nil {
		return nil
	}

	return cryptobyte.String(der)
}

func (e Element) describe() string {
	return fmt.Sprintf("class %d tag %d", e.Class, e.Tag)
}

// Reader walks a sequence of BER elements. Every read is bounds checked and
// the first violation is reported as an error wrapping ErrMalformed.
type Reader struct {
	s     cryptobyte.String
	depth int
}

// NewReader creates a Reader over BER encoded data.
func NewReader(ber []byte) *Reader {
	return &Reader{s: cryptobyte.String(ber)}
}

// Empty reports whether all elements have been consumed.
func (r *Reader) Empty() bool {
	return r.s.Empty()
}

// Rest returns the unread bytes.
func (r *Reader) Rest() []byte {
	return r.s
}

// Next reads the next element.
func (r *Reader) Next() (Element, error) {
	return readElement(&r.s, r.depth)
}

// Peek reads the next element without consuming it.
func (r *Reader) Peek() (Element, error) {
	s := r.s
	return readElement(&s, r.depth)
}

// Expect reads the next element, checking its class and tag.
func (r *Reader) Expect(class, tag int) (Element, error) {
	e, err := r.Next()
	if err != nil {
		return e, err
	}
	if !e.Is(class, tag) {
		return e, xerrors.Errorf("expected class %d tag %d, got %s: %w", class, tag, e.describe(), ErrMalformed)
	}

	return e, nil
}

func readElement(s *cryptobyte.String, depth int) (e Element, err error) {
	if depth > maxDepth {
		err = xerrors.Errorf("elements nested deeper than %d: %w", maxDepth, ErrMalformed)
		return
	}

	start := *s
	e.depth = depth

	var id uint8
	if !s.ReadUint8(&id) {
		err = xerrors.Errorf("truncated identifier: %w", ErrMalformed)
		return
	}
	e.Class = int(id >> 6)
	e.Constructed = id&0x20 != 0
	e.Tag = int(id & 0x1f)

	// High tag number form. Four base-128 octets are plenty for every tag
	// this package cares about and keep the value well inside an int.
	if e.Tag == 0x1f {
		e.Tag = 0
		for i := 0; ; i++ {
			if i == 4 {
				err = xerrors.Errorf("tag number too large: %w", ErrMalformed)
				return
			}
			var b uint8
			if !s.ReadUint8(&b) {
				err = xerrors.Errorf("truncated tag number: %w", ErrMalformed)
				return
			}
			e.Tag = e.Tag<<7 | int(b&0x7f)
			if b&0x80 == 0 {
				break
			}
		}
	}

	var l uint8
	if !s.ReadUint8(&l) {
		err = xerrors.Errorf("truncated length: %w", ErrMalformed)
		return
	}

	switch {
	case l == 0x80:
		if !e.Constructed {
			err = xerrors.Errorf("indefinite length on primitive element: %w", ErrMalformed)
			return
		}
		e.Indefinite = true

		body := *s
		for {
			if len(*s) >= 2 && (*s)[0] == 0 && (*s)[1] == 0 {
				e.Content = body[:len(body)-len(*s)]
				s.Skip(2)
				break
			}
			if s.Empty() {
				err = xerrors.Errorf("missing end-of-contents: %w", ErrMalformed)
				return
			}
			if _, err = readElement(s, depth+1); err != nil {
				return
			}
		}
	case l < 0x80:
		if !s.ReadBytes(&e.Content, int(l)) {
			err = xerrors.Errorf("truncated content: %w", ErrMalformed)
			return
		}
	default:
		n := int(l & 0x7f)
		if n > 4 {
			err = xerrors.Errorf("length of %d octets not supported: %w", n, ErrMalformed)
			return
		}

		var length uint64
		for i := 0; i < n; i++ {
			var b uint8
			if !s.ReadUint8(&b) {
				err = xerrors.Errorf("truncated length: %w", ErrMalformed)
				return
			}
			length = length<<8 | uint64(b)
		}
		if length > uint64(len(*s)) {
			err = xerrors.Errorf("truncated content: %w", ErrMalformed)
			return
		}
		if !s.ReadBytes(&e.Content, int(length)) {
			err = xerrors.Errorf("truncated content: %w", ErrMalformed)
			return
		}
	}

	e.FullBytes = start[:len(start)-len(*s)]

	return
}
