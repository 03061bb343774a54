// Package protocol implements low level CMS types and the BER parsing needed
// to reach the encapsulated content of a SignedData.
package protocol

import (
	"encoding/asn1"
	"errors"

	"github.com/bave/unp7m/oid"
	"golang.org/x/xerrors"
)

var (
	// ErrMalformed is returned when data isn't a valid BER encoding of the
	// expected structure.
	ErrMalformed = errors.New("protocol: malformed encoding")

	// ErrUnsupportedContentType is returned when a CMS content type is
	// recognized but not supported. Only Data (1.2.840.113549.1.7.1) and
	// Signed Data (1.2.840.113549.1.7.2) are supported.
	ErrUnsupportedContentType = errors.New("protocol: cannot parse data: unimplemented content type")

	// ErrWrongType is returned by methods that make assumptions about types.
	// Helper methods are defined for accessing CHOICE and  ANY feilds. These
	// helper methods get the value of the field, assuming it is of a given type.
	// This error is returned if that assumption is wrong and the field has a
	// different type.
	ErrWrongType = errors.New("protocol: wrong choice or any type")
)

// knownContentTypes are CMS content types that can appear in a ContentInfo
// but that this package doesn't unwrap.
var knownContentTypes = []asn1.ObjectIdentifier{
	oid.ContentTypeData,
	oid.ContentTypeEnvelopedData,
	oid.ContentTypeSignedAndEnvelopedData,
	oid.ContentTypeDigestedData,
	oid.ContentTypeEncryptedData,
	oid.ContentTypeAuthenticatedData,
	oid.ContentTypeCompressedData,
	oid.ContentTypeAuthEnvelopedData,
}

// IsKnownContentType checks whether an OID names a CMS content type.
func IsKnownContentType(ct asn1.ObjectIdentifier) bool {
	if ct.Equal(oid.ContentTypeSignedData) {
		return true
	}
	for _, known := range knownContentTypes {
		if ct.Equal(known) {
			return true
		}
	}

	return false
}

// ContentInfo ::= SEQUENCE {
//   contentType ContentType,
//   content [0] EXPLICIT ANY DEFINED BY contentType }
//
// ContentType ::= OBJECT IDENTIFIER
type ContentInfo struct {
	ContentType asn1.ObjectIdentifier
	Content     Element

	// Raw is the complete ContentInfo element.
	Raw Element
}

// ParseContentInfo parses a top-level ContentInfo type from BER encoded data.
// Data following the ContentInfo element is left unread; Raw.FullBytes tells
// how much of ber the element occupies.
func ParseContentInfo(ber []byte) (ci ContentInfo, err error) {
	if ci.Raw, err = NewReader(ber).Expect(asn1.ClassUniversal, asn1.TagSequence); err != nil {
		return
	}

	fields := ci.Raw.Reader()

	var ct Element
	if ct, err = fields.Next(); err != nil {
		return
	}
	if ci.ContentType, err = ct.ObjectIdentifier(); err != nil {
		return
	}

	if ci.Content, err = fields.Expect(asn1.ClassContextSpecific, 0); err != nil {
		return
	}
	if !ci.Content.Constructed {
		err = xerrors.Errorf("EXPLICIT content not constructed: %w", ErrMalformed)
		return
	}
	if !fields.Empty() {
		err = xerrors.Errorf("unexpected trailing data in ContentInfo: %w", ErrMalformed)
	}

	return
}

// SignedDataContent gets the content assuming contentType is signedData.
// ErrUnsupportedContentType is returned for other CMS content types and
// ErrWrongType for OIDs that aren't CMS content types at all.
func (ci ContentInfo) SignedDataContent() (sd SignedData, err error) {
	if !ci.ContentType.Equal(oid.ContentTypeSignedData) {
		if IsKnownContentType(ci.ContentType) {
			err = ErrUnsupportedContentType
		} else {
			err = ErrWrongType
		}
		return
	}

	r := ci.Content.Reader()

	var seq Element
	if seq, err = r.Expect(asn1.ClassUniversal, asn1.TagSequence); err != nil {
		return
	}
	if !r.Empty() {
		err = xerrors.Errorf("unexpected trailing data after SignedData: %w", ErrMalformed)
		return
	}

	return parseSignedData(seq)
}

// EncapsulatedContentInfo ::= SEQUENCE {
//   eContentType ContentType,
//   eContent [0] EXPLICIT OCTET STRING OPTIONAL }
//
// ContentType ::= OBJECT IDENTIFIER
type EncapsulatedContentInfo struct {
	EContentType asn1.ObjectIdentifier
	EContent     Element
}

func parseEncapsulatedContentInfo(seq Element) (eci EncapsulatedContentInfo, err error) {
	fields := seq.Reader()

	var ct Element
	if ct, err = fields.Next(); err != nil {
		return
	}
	if eci.EContentType, err = ct.ObjectIdentifier(); err != nil {
		return
	}

	// eContent is OPTIONAL. It's absent for detached signatures.
	if fields.Empty() {
		return
	}

	var explicit Element
	if explicit, err = fields.Expect(asn1.ClassContextSpecific, 0); err != nil {
		return
	}
	if !explicit.Constructed {
		err = xerrors.Errorf("EXPLICIT eContent not constructed: %w", ErrMalformed)
		return
	}

	inner := explicit.Reader()
	if eci.EContent, err = inner.Expect(asn1.ClassUniversal, asn1.TagOctetString); err != nil {
		return
	}
	if !inner.Empty() || !fields.Empty() {
		err = xerrors.Errorf("unexpected trailing data in EncapsulatedContentInfo: %w", ErrMalformed)
	}

	return
}

// IsDetached checks whether the OPTIONAL eContent field is missing.
func (eci EncapsulatedContentInfo) IsDetached() bool {
	return eci.EContent.FullBytes == nil
}

// IsTypeData checks if the EContentType is id-data.
func (eci EncapsulatedContentInfo) IsTypeData() bool {
	return eci.EContentType.Equal(oid.ContentTypeData)
}

// DataEContent gets the EContent assuming EContentType is data. A nil byte
// slice is returned if the OPTIONAL eContent field is missing, whatever the
// EContentType.
func (eci EncapsulatedContentInfo) DataEContent() ([]byte, error) {
	if eci.IsDetached() {
		return nil, nil
	}
	if !eci.IsTypeData() {
		return nil, ErrWrongType
	}

	return eci.EContent.Octets()
}

// SignedData ::= SEQUENCE {
//   version CMSVersion,
//   digestAlgorithms DigestAlgorithmIdentifiers,
//   encapContentInfo EncapsulatedContentInfo,
//   certificates [0] IMPLICIT CertificateSet OPTIONAL,
//   crls [1] IMPLICIT RevocationInfoChoices OPTIONAL,
//   signerInfos SignerInfos }
//
// CMSVersion ::= INTEGER
//               { v0(0), v1(1), v2(2), v3(3), v4(4), v5(5) }
//
// DigestAlgorithmIdentifiers ::= SET OF DigestAlgorithmIdentifier
//
// SignerInfos ::= SET OF SignerInfo
//
// Certificates, CRLs and SignerInfos are kept as raw elements. They are only
// framed, never interpreted, so a damaged signature doesn't stand between the
// caller and the content.
type SignedData struct {
	Version          int
	EncapContentInfo EncapsulatedContentInfo
	Certificates     Element
	CRLs             Element
	SignerInfos      Element
}

func parseSignedData(seq Element) (sd SignedData, err error) {
	fields := seq.Reader()

	var version Element
	if version, err = fields.Next(); err != nil {
		return
	}
	if sd.Version, err = version.Int(); err != nil {
		return
	}
	if sd.Version < 0 || sd.Version > 5 {
		err = xerrors.Errorf("unsupported SignedData version %d: %w", sd.Version, ErrMalformed)
		return
	}

	if _, err = fields.Expect(asn1.ClassUniversal, asn1.TagSet); err != nil {
		return
	}

	var eci Element
	if eci, err = fields.Expect(asn1.ClassUniversal, asn1.TagSequence); err != nil {
		return
	}
	if sd.EncapContentInfo, err = parseEncapsulatedContentInfo(eci); err != nil {
		return
	}

	// Everything past the content is best effort.
	for !fields.Empty() {
		el, ferr := fields.Next()
		if ferr != nil {
			break
		}

		switch {
		case el.Is(asn1.ClassContextSpecific, 0):
			sd.Certificates = el
		case el.Is(asn1.ClassContextSpecific, 1):
			sd.CRLs = el
		case el.Is(asn1.ClassUniversal, asn1.TagSet):
			sd.SignerInfos = el
		}
	}

	return
}

// SignerInfo ::= SEQUENCE {
//   version CMSVersion,
//   sid SignerIdentifier,
//   digestAlgorithm DigestAlgorithmIdentifier,
//   signedAttrs [0] IMPLICIT SignedAttributes OPTIONAL,
//   signatureAlgorithm SignatureAlgorithmIdentifier,
//   signature SignatureValue,
//   unsignedAttrs [1] IMPLICIT UnsignedAttributes OPTIONAL }
//
// Only the fields leading up to the signed attributes are read.
type SignerInfo struct {
	Version     int
	SID         Element
	SignedAttrs attributes
}

func parseSignerInfo(seq Element) (si SignerInfo, err error) {
	fields := seq.Reader()

	var version Element
	if version, err = fields.Next(); err != nil {
		return
	}
	if si.Version, err = version.Int(); err != nil {
		return
	}
	if si.SID, err = fields.Next(); err != nil {
		return
	}
	if _, err = fields.Expect(asn1.ClassUniversal, asn1.TagSequence); err != nil {
		return
	}

	if fields.Empty() {
		return
	}

	var next Element
	if next, err = fields.Peek(); err != nil {
		return
	}
	if next.Is(asn1.ClassContextSpecific, 0) && next.Constructed {
		fields.Next()
		si.SignedAttrs, err = parseAttributes(next)
	}

	return
}

// SignerInfoList parses the SignerInfos that can be parsed, skipping the rest.
func (sd SignedData) SignerInfoList() []SignerInfo {
	if !sd.SignerInfos.Constructed {
		return nil
	}

	var (
		sis []SignerInfo
		r   = sd.SignerInfos.Reader()
	)
	for !r.Empty() {
		el, err := r.Next()
		if err != nil {
			break
		}
		if !el.Is(asn1.ClassUniversal, asn1.TagSequence) {
			continue
		}
		if si, err := parseSignerInfo(el); err == nil {
			sis = append(sis, si)
		}
	}

	return sis
}

// ContentHints ::= SEQUENCE {
//   contentDescription UTF8String (SIZE (1..MAX)) OPTIONAL,
//   contentType ContentType }
//
// ContentDescription returns the contentDescription of the first SignerInfo
// carrying a ContentHints signed attribute. Damaged SignerInfos are ignored.
func (sd SignedData) ContentDescription() (string, bool) {
	for _, si := range sd.SignerInfoList() {
		rv, err := si.SignedAttrs.GetOnlyAttributeValue(oid.AttributeContentHint)
		if err != nil || !rv.Is(asn1.ClassUniversal, asn1.TagSequence) {
			continue
		}

		hints := rv.Reader()
		first, err := hints.Next()
		if err != nil || !first.Is(asn1.ClassUniversal, asn1.TagUTF8String) {
			continue
		}
		if desc, err := first.UTF8String(); err == nil && desc != "" {
			return desc, true
		}
	}

	return "", false
}
