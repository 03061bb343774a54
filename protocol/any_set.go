package protocol

import (
	"encoding/asn1"
	"fmt"

	"golang.org/x/xerrors"
)

// anySet is a helper for dealing with SET OF ANY types.
type anySet struct {
	Elements []Element
}

// decodeAnySet decodes a SET OF ANY type element by element.
func decodeAnySet(rv Element) (as anySet, err error) {
	// Make sure it's really a SET.
	if !rv.Is(asn1.ClassUniversal, asn1.TagSet) || !rv.Constructed {
		err = xerrors.Errorf("bad SET OF ANY, got %s: %w", rv.describe(), ErrMalformed)
		return
	}

	// Decode each element.
	r := rv.Reader()
	for !r.Empty() {
		var elt Element
		if elt, err = r.Next(); err != nil {
			return
		}

		as.Elements = append(as.Elements, elt)
	}

	return
}

// Attribute ::= SEQUENCE {
//   attrType OBJECT IDENTIFIER,
//   attrValues SET OF AttributeValue }
//
// AttributeValue ::= ANY
type Attribute struct {
	Type     asn1.ObjectIdentifier
	RawValue Element
}

// Value further decodes the attribute Value as a SET OF ANY.
func (a Attribute) Value() (anySet, error) {
	return decodeAnySet(a.RawValue)
}

// SignedAttributes ::= SET SIZE (1..MAX) OF Attribute
//
// UnsignedAttributes ::= SET SIZE (1..MAX) OF Attribute
type attributes []Attribute

// parseAttributes parses an IMPLICIT tagged SET OF Attribute.
func parseAttributes(set Element) (attrs attributes, err error) {
	r := set.Reader()
	for !r.Empty() {
		var seq Element
		if seq, err = r.Expect(asn1.ClassUniversal, asn1.TagSequence); err != nil {
			return
		}

		fields := seq.Reader()

		var (
			attr Attribute
			t    Element
		)
		if t, err = fields.Next(); err != nil {
			return
		}
		if attr.Type, err = t.ObjectIdentifier(); err != nil {
			return
		}
		if attr.RawValue, err = fields.Expect(asn1.ClassUniversal, asn1.TagSet); err != nil {
			return
		}

		attrs = append(attrs, attr)
	}

	return
}

// GetOnlyAttributeValue gets an attribute value, returning an error if the
// attribute occurs multiple times or have multiple values.
func (attrs attributes) GetOnlyAttributeValue(oid asn1.ObjectIdentifier) (rv Element, err error) {
	var vals []anySet
	if vals, err = attrs.GetValues(oid); err != nil {
		return
	}
	if len(vals) != 1 {
		err = fmt.Errorf("expected 1 attribute found %d", len(vals))
		return
	}
	if len(vals[0].Elements) != 1 {
		err = fmt.Errorf("expected 1 attribute value found %d", len(vals[0].Elements))
		return
	}

	return vals[0].Elements[0], nil
}

// GetValues retreives the attributes with the given OID. A nil value is
// returned if the OPTIONAL SET of Attributes is missing from the SignerInfo.
// An empty slice is returned if the specified attribute isn't in the set.
func (attrs attributes) GetValues(oid asn1.ObjectIdentifier) ([]anySet, error) {
	if attrs == nil {
		return nil, nil
	}

	vals := []anySet{}
	for _, attr := range attrs {
		if attr.Type.Equal(oid) {
			val, err := attr.Value()
			if err != nil {
				return nil, err
			}

			vals = append(vals, val)
		}
	}

	return vals, nil
}
