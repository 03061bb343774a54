// Package oid contains OIDs that are used by other packages in this repository.
package oid

import "encoding/asn1"

// Content type OIDs
var (
	ContentTypeData                   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}
	ContentTypeSignedData             = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
	ContentTypeEnvelopedData          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 3}
	ContentTypeSignedAndEnvelopedData = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 4}
	ContentTypeDigestedData           = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 5}
	ContentTypeEncryptedData          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 6}
	ContentTypeAuthenticatedData      = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 2}
	ContentTypeTSTInfo                = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 4}
	ContentTypeCompressedData         = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 9}
	ContentTypeAuthEnvelopedData      = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 23}
)

// Attribute OIDs
var (
	AttributeContentType   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 3}
	AttributeMessageDigest = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 4}
	AttributeSigningTime   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 5}
	AttributeContentHint   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 4}
)

// Digest and signature algorithm OIDs
var (
	DigestAlgorithmSHA256         = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}
	SignatureAlgorithmRSA         = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}
	SignatureAlgorithmECDSASHA256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}
)
