// Package testutil builds signed-container files for tests.
package testutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"encoding/pem"
	"sync"
	"testing"

	"github.com/bave/unp7m/oid"
	"github.com/github/fakeca"
)

// Options control how Envelope encodes a SignedData.
type Options struct {
	// Signer signs the envelope. A shared fakeca leaf is used when nil.
	Signer *fakeca.Identity

	// ContentType is the ContentInfo content type. Defaults to signedData.
	ContentType asn1.ObjectIdentifier

	// EContentType is the encapsulated content type. Defaults to data.
	EContentType asn1.ObjectIdentifier

	// Version is the SignedData version. Defaults to 1.
	Version int

	// Detached leaves eContent out.
	Detached bool

	// Filename is recorded as the contentDescription of a ContentHints
	// signed attribute.
	Filename string

	// Chunk switches to BER indefinite lengths throughout, with the content
	// split into constructed OCTET STRING segments of at most Chunk bytes.
	Chunk int

	// NoSignerInfos leaves the SignerInfos SET empty and the certificates out.
	NoSignerInfos bool
}

var (
	leafOnce sync.Once
	leaf     *fakeca.Identity
)

// Leaf returns a fakeca identity issued by a throwaway root.
func Leaf() *fakeca.Identity {
	leafOnce.Do(func() {
		root := fakeca.New(fakeca.IsCA)
		leaf = root.Issue()
	})

	return leaf
}

// Envelope wraps content in a CMS SignedData and returns its encoding.
func Envelope(tb testing.TB, content []byte, opts Options) []byte {
	tb.Helper()

	if opts.Signer == nil {
		opts.Signer = Leaf()
	}
	if opts.ContentType == nil {
		opts.ContentType = oid.ContentTypeSignedData
	}
	if opts.EContentType == nil {
		opts.EContentType = oid.ContentTypeData
	}
	if opts.Version == 0 {
		opts.Version = 1
	}

	digestAlgorithm := mustMarshal(pkix.AlgorithmIdentifier{Algorithm: oid.DigestAlgorithmSHA256})

	var eci []byte
	switch {
	case opts.Detached && opts.Chunk > 0:
		eci = indefinite(0x30, mustMarshal(opts.EContentType))
	case opts.Detached:
		eci = tlv(0x30, mustMarshal(opts.EContentType))
	case opts.Chunk > 0:
		var segments [][]byte
		for rest := content; len(rest) > 0; {
			n := opts.Chunk
			if n > len(rest) {
				n = len(rest)
			}
			segments = append(segments, tlv(0x04, rest[:n]))
			rest = rest[n:]
		}
		eci = indefinite(0x30,
			mustMarshal(opts.EContentType),
			indefinite(0xa0, indefinite(0x24, segments...)),
		)
	default:
		eci = tlv(0x30, mustMarshal(opts.EContentType), tlv(0xa0, tlv(0x04, content)))
	}

	fields := [][]byte{
		mustMarshal(opts.Version),
		tlv(0x31, digestAlgorithm),
		eci,
	}
	if opts.NoSignerInfos {
		fields = append(fields, tlv(0x31))
	} else {
		fields = append(fields,
			tlv(0xa0, opts.Signer.Certificate.Raw),
			tlv(0x31, signerInfo(tb, content, digestAlgorithm, opts)),
		)
	}

	if opts.Chunk > 0 {
		sd := indefinite(0x30, fields...)
		return indefinite(0x30, mustMarshal(opts.ContentType), indefinite(0xa0, sd))
	}

	sd := tlv(0x30, fields...)
	return tlv(0x30, mustMarshal(opts.ContentType), tlv(0xa0, sd))
}

func signerInfo(tb testing.TB, content, digestAlgorithm []byte, opts Options) []byte {
	tb.Helper()

	digest := sha256.Sum256(content)
	attrs := [][]byte{
		attribute(oid.AttributeContentType, mustMarshal(opts.EContentType)),
		attribute(oid.AttributeMessageDigest, tlv(0x04, digest[:])),
	}
	if opts.Filename != "" {
		hints := tlv(0x30, tlv(0x0c, []byte(opts.Filename)), mustMarshal(opts.EContentType))
		attrs = append(attrs, attribute(oid.AttributeContentHint, hints))
	}

	// The signature covers the attributes encoded as a SET, while the
	// SignerInfo carries them with an IMPLICIT [0] tag.
	signedAttrs := tlv(0x31, attrs...)
	attrsDigest := sha256.Sum256(signedAttrs)

	signer := opts.Signer.PrivateKey
	sig, err := signer.Sign(rand.Reader, attrsDigest[:], crypto.SHA256)
	if err != nil {
		tb.Fatal(err)
	}

	sigAlgorithm := oid.SignatureAlgorithmRSA
	if _, ok := signer.Public().(*ecdsa.PublicKey); ok {
		sigAlgorithm = oid.SignatureAlgorithmECDSASHA256
	}

	cert := opts.Signer.Certificate
	sid := tlv(0x30, cert.RawIssuer, mustMarshal(cert.SerialNumber))

	return tlv(0x30,
		mustMarshal(1),
		sid,
		digestAlgorithm,
		append([]byte{0xa0}, signedAttrs[1:]...),
		mustMarshal(pkix.AlgorithmIdentifier{Algorithm: sigAlgorithm}),
		tlv(0x04, sig),
	)
}

// PEM armors a binary envelope.
func PEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "PKCS7", Bytes: der})
}

// Base64 encodes a binary envelope as wrapped base64 text.
func Base64(der []byte) []byte {
	text := base64.StdEncoding.EncodeToString(der)

	var out []byte
	for len(text) > 64 {
		out = append(out, text[:64]...)
		out = append(out, "\r\n"...)
		text = text[64:]
	}

	return append(append(out, text...), "\r\n"...)
}

func attribute(t asn1.ObjectIdentifier, value []byte) []byte {
	return tlv(0x30, mustMarshal(t), tlv(0x31, value))
}

// tlv encodes a definite length element.
func tlv(tag byte, parts ...[]byte) []byte {
	var content []byte
	for _, p := range parts {
		content = append(content, p...)
	}

	out := append([]byte{tag}, length(len(content))...)
	return append(out, content...)
}

// indefinite encodes a constructed element with an indefinite length.
func indefinite(tag byte, parts ...[]byte) []byte {
	out := []byte{tag, 0x80}
	for _, p := range parts {
		out = append(out, p...)
	}

	return append(out, 0, 0)
}

func length(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}

	var b []byte
	for ; n > 0; n >>= 8 {
		b = append([]byte{byte(n)}, b...)
	}

	return append([]byte{0x80 | byte(len(b))}, b...)
}

func mustMarshal(v interface{}) []byte {
	der, err := asn1.Marshal(v)
	if err != nil {
		panic(err)
	}

	return der
}
