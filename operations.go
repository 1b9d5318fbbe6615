package lillydap

import (
	ber "github.com/go-asn1-ber/asn1-ber"
)

// This file holds the decoded, arena-owned views for the RFC 4511 basic
// operations, and the decode/encode pair for each. The pipeline itself
// calls neither: a registered handler calls Decode<Op> on the Message's raw
// Operation Cursor, and an application calls Encode to get the *ber.Packet
// it passes to PutOperation, which Message.Encode wraps in the envelope.

// LDAPResult is the common trailer of every non-search response.
// LDAPResult ::= SEQUENCE { resultCode, matchedDN, diagnosticMessage, referral [3] OPTIONAL }
type LDAPResult struct {
	ResultCode        ResultCode
	MatchedDN         string
	DiagnosticMessage string
	Referral          []string
}

func decodeLDAPResult(children *SeqCursor) (LDAPResult, error) {
	var r LDAPResult
	codeCur, ok := children.Next()
	if !ok {
		return r, errMissingField
	}
	r.ResultCode = ResultCode(codeCur.Int64())
	dnCur, ok := children.Next()
	if !ok {
		return r, errMissingField
	}
	r.MatchedDN = dnCur.String()
	msgCur, ok := children.Next()
	if !ok {
		return r, errMissingField
	}
	r.DiagnosticMessage = msgCur.String()
	if refCur, ok := children.Next(); ok && refCur.ClassType() == ber.ClassContext && refCur.Tag() == 3 {
		refChildren := refCur.Children()
		for {
			uri, ok := refChildren.Next()
			if !ok {
				break
			}
			r.Referral = append(r.Referral, uri.String())
		}
	}
	return r, nil
}

func encodeLDAPResult(r LDAPResult) []*ber.Packet {
	pkts := []*ber.Packet{
		ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(r.ResultCode), "resultCode"),
		ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.MatchedDN, "matchedDN"),
		ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.DiagnosticMessage, "diagnosticMessage"),
	}
	if len(r.Referral) > 0 {
		ref := ber.Encode(ber.ClassContext, ber.TypeConstructed, 3, nil, "referral")
		for _, uri := range r.Referral {
			ref.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, uri, "uri"))
		}
		pkts = append(pkts, ref)
	}
	return pkts
}

// --- BindRequest / BindResponse ---

type AuthMethod int

const (
	AuthSimple AuthMethod = 0
	AuthSASL   AuthMethod = 3
)

type SASLCredentials struct {
	Mechanism   string
	Credentials []byte
}

type BindRequest struct {
	Version         int
	Name            string
	AuthMethod      AuthMethod
	SimplePassword  []byte
	SASLCredentials *SASLCredentials
}

func DecodeBindRequest(op *Cursor) (*BindRequest, error) {
	children := op.Children()
	verCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	version := int(verCur.Int64())
	if version < 1 || version > 127 {
		return nil, &simpleErr{"BindRequest: version out of range"}
	}
	nameCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	authCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}

	req := &BindRequest{Version: version, Name: nameCur.String()}
	switch Opcode(authCur.Tag()) {
	case Opcode(AuthSimple):
		req.AuthMethod = AuthSimple
		req.SimplePassword = authCur.Bytes()
	case Opcode(AuthSASL):
		req.AuthMethod = AuthSASL
		sc := authCur.Children()
		mech, ok := sc.Next()
		if !ok {
			return nil, &simpleErr{"BindRequest: missing SASL mechanism"}
		}
		creds := &SASLCredentials{Mechanism: mech.String()}
		if v, ok := sc.Next(); ok {
			creds.Credentials = v.Bytes()
		}
		req.SASLCredentials = creds
	default:
		return nil, &simpleErr{"BindRequest: unknown authentication choice"}
	}
	return req, nil
}

func (r *BindRequest) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpBindRequest), nil, "BindRequest")
	p.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(r.Version), "version"))
	p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.Name, "name"))
	switch r.AuthMethod {
	case AuthSASL:
		sasl := ber.Encode(ber.ClassContext, ber.TypeConstructed, ber.Tag(AuthSASL), nil, "sasl")
		sasl.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.SASLCredentials.Mechanism, "mechanism"))
		if len(r.SASLCredentials.Credentials) > 0 {
			sasl.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, string(r.SASLCredentials.Credentials), "credentials"))
		}
		p.AppendChild(sasl)
	default:
		p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, ber.Tag(AuthSimple), string(r.SimplePassword), "simple"))
	}
	return p
}

// IsAnonymous reports whether this is an anonymous simple bind.
func (r *BindRequest) IsAnonymous() bool {
	return r.Name == "" && r.AuthMethod == AuthSimple && len(r.SimplePassword) == 0
}

type BindResponse struct {
	LDAPResult
	ServerSASLCreds []byte
}

func DecodeBindResponse(op *Cursor) (*BindResponse, error) {
	children := op.Children()
	res, err := decodeLDAPResult(children)
	if err != nil {
		return nil, err
	}
	resp := &BindResponse{LDAPResult: res}
	if v, ok := children.Next(); ok && v.ClassType() == ber.ClassContext && v.Tag() == 7 {
		resp.ServerSASLCreds = v.Bytes()
	}
	return resp, nil
}

func (r *BindResponse) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpBindResponse), nil, "BindResponse")
	for _, child := range encodeLDAPResult(r.LDAPResult) {
		p.AppendChild(child)
	}
	if len(r.ServerSASLCreds) > 0 {
		p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 7, string(r.ServerSASLCreds), "serverSaslCreds"))
	}
	return p
}

// --- UnbindRequest ---

type UnbindRequest struct{}

func DecodeUnbindRequest(op *Cursor) (*UnbindRequest, error) { return &UnbindRequest{}, nil }

func (r *UnbindRequest) Encode() *ber.Packet {
	return ber.Encode(ber.ClassApplication, ber.TypePrimitive, ber.Tag(OpUnbindRequest), nil, "UnbindRequest")
}

// --- AbandonRequest ---

type AbandonRequest struct {
	ID MessageID
}

func DecodeAbandonRequest(op *Cursor) (*AbandonRequest, error) {
	return &AbandonRequest{ID: MessageID(op.Int64())}, nil
}

func (r *AbandonRequest) Encode() *ber.Packet {
	return ber.NewInteger(ber.ClassApplication, ber.TypePrimitive, ber.Tag(OpAbandonRequest), int64(r.ID), "AbandonRequest")
}

// --- Search ---

type SearchScope int

const (
	ScopeBaseObject   SearchScope = 0
	ScopeSingleLevel  SearchScope = 1
	ScopeWholeSubtree SearchScope = 2
)

type DerefAliases int

const (
	DerefNever          DerefAliases = 0
	DerefInSearching    DerefAliases = 1
	DerefFindingBaseObj DerefAliases = 2
	DerefAlways         DerefAliases = 3
)

// Filter tag numbers, context-specific, per RFC 4511 section 4.5.1.
const (
	FilterAnd             = 0
	FilterOr              = 1
	FilterNot             = 2
	FilterEquality        = 3
	FilterSubstrings      = 4
	FilterGreaterOrEqual  = 5
	FilterLessOrEqual     = 6
	FilterPresent         = 7
	FilterApproxMatch     = 8
	FilterExtensibleMatch = 9
)

const (
	substringInitial = 0
	substringAny     = 1
	substringFinal   = 2
)

// Filter is kept as a decoded tree (not a raw cursor), but the framework
// does not evaluate it --
// that is an application/Non-goal concern. It is only ever walked by the
// application's own search handler.
type Filter struct {
	Type            int
	Attribute       string
	Value           []byte
	Children        []*Filter
	Child           *Filter
	Substrings      *Substrings
	ExtensibleMatch *ExtensibleMatch
}

type Substrings struct {
	Initial []byte
	Any     [][]byte
	Final   []byte
}

type ExtensibleMatch struct {
	MatchingRule string
	Type         string
	MatchValue   []byte
	DNAttributes bool
}

type SearchRequest struct {
	BaseObject   string
	Scope        SearchScope
	DerefAliases DerefAliases
	SizeLimit    int
	TimeLimit    int
	TypesOnly    bool
	Filter       *Filter
	Attributes   []string
}

func DecodeSearchRequest(op *Cursor) (*SearchRequest, error) {
	children := op.Children()
	req := &SearchRequest{}

	base, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req.BaseObject = base.String()

	scope, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req.Scope = SearchScope(scope.Int64())

	deref, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req.DerefAliases = DerefAliases(deref.Int64())

	sizeLimit, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req.SizeLimit = int(sizeLimit.Int64())

	timeLimit, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req.TimeLimit = int(timeLimit.Int64())

	typesOnly, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req.TypesOnly = typesOnly.Bool()

	filterCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	filter, err := decodeFilter(filterCur)
	if err != nil {
		return nil, err
	}
	req.Filter = filter

	attrsCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	attrChildren := attrsCur.Children()
	for {
		a, ok := attrChildren.Next()
		if !ok {
			break
		}
		req.Attributes = append(req.Attributes, a.String())
	}

	return req, nil
}

func decodeFilter(cur *Cursor) (*Filter, error) {
	f := &Filter{Type: cur.Tag()}
	switch cur.Tag() {
	case FilterAnd, FilterOr:
		children := cur.Children()
		for {
			childCur, ok := children.Next()
			if !ok {
				break
			}
			child, err := decodeFilter(childCur)
			if err != nil {
				return nil, err
			}
			f.Children = append(f.Children, child)
		}
	case FilterNot:
		children := cur.Children()
		childCur, ok := children.Next()
		if !ok {
			return nil, &simpleErr{"filter: NOT with no child"}
		}
		child, err := decodeFilter(childCur)
		if err != nil {
			return nil, err
		}
		f.Child = child
	case FilterEquality, FilterGreaterOrEqual, FilterLessOrEqual, FilterApproxMatch:
		children := cur.Children()
		attr, ok := children.Next()
		if !ok {
			return nil, errMissingField
		}
		f.Attribute = attr.String()
		val, ok := children.Next()
		if !ok {
			return nil, errMissingField
		}
		f.Value = val.Bytes()
	case FilterSubstrings:
		children := cur.Children()
		attr, ok := children.Next()
		if !ok {
			return nil, errMissingField
		}
		f.Attribute = attr.String()
		seqCur, ok := children.Next()
		if !ok {
			return nil, errMissingField
		}
		sub := &Substrings{}
		subChildren := seqCur.Children()
		for {
			part, ok := subChildren.Next()
			if !ok {
				break
			}
			switch part.Tag() {
			case substringInitial:
				sub.Initial = part.Bytes()
			case substringAny:
				sub.Any = append(sub.Any, part.Bytes())
			case substringFinal:
				sub.Final = part.Bytes()
			}
		}
		f.Substrings = sub
	case FilterPresent:
		f.Attribute = cur.String()
	case FilterExtensibleMatch:
		em := &ExtensibleMatch{}
		children := cur.Children()
		for {
			part, ok := children.Next()
			if !ok {
				break
			}
			switch part.Tag() {
			case 1:
				em.MatchingRule = part.String()
			case 2:
				em.Type = part.String()
			case 3:
				em.MatchValue = part.Bytes()
			case 4:
				em.DNAttributes = part.Bool()
			}
		}
		f.ExtensibleMatch = em
	default:
		return nil, &simpleErr{"filter: unknown filter choice"}
	}
	return f, nil
}

func encodeFilter(f *Filter) *ber.Packet {
	switch f.Type {
	case FilterAnd, FilterOr:
		p := ber.Encode(ber.ClassContext, ber.TypeConstructed, ber.Tag(f.Type), nil, "filter")
		for _, c := range f.Children {
			p.AppendChild(encodeFilter(c))
		}
		return p
	case FilterNot:
		p := ber.Encode(ber.ClassContext, ber.TypeConstructed, ber.Tag(f.Type), nil, "not")
		p.AppendChild(encodeFilter(f.Child))
		return p
	case FilterEquality, FilterGreaterOrEqual, FilterLessOrEqual, FilterApproxMatch:
		p := ber.Encode(ber.ClassContext, ber.TypeConstructed, ber.Tag(f.Type), nil, "ava")
		p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, f.Attribute, "attr"))
		p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, string(f.Value), "value"))
		return p
	case FilterSubstrings:
		p := ber.Encode(ber.ClassContext, ber.TypeConstructed, ber.Tag(f.Type), nil, "substrings")
		p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, f.Attribute, "type"))
		seq := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "substrings")
		if f.Substrings != nil {
			if len(f.Substrings.Initial) > 0 {
				seq.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, substringInitial, string(f.Substrings.Initial), "initial"))
			}
			for _, a := range f.Substrings.Any {
				seq.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, substringAny, string(a), "any"))
			}
			if len(f.Substrings.Final) > 0 {
				seq.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, substringFinal, string(f.Substrings.Final), "final"))
			}
		}
		p.AppendChild(seq)
		return p
	case FilterPresent:
		return ber.NewString(ber.ClassContext, ber.TypePrimitive, ber.Tag(f.Type), f.Attribute, "present")
	case FilterExtensibleMatch:
		p := ber.Encode(ber.ClassContext, ber.TypeConstructed, ber.Tag(f.Type), nil, "extensibleMatch")
		if f.ExtensibleMatch != nil {
			em := f.ExtensibleMatch
			if em.MatchingRule != "" {
				p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 1, em.MatchingRule, "matchingRule"))
			}
			if em.Type != "" {
				p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 2, em.Type, "type"))
			}
			p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 3, string(em.MatchValue), "matchValue"))
			if em.DNAttributes {
				p.AppendChild(ber.NewBoolean(ber.ClassContext, ber.TypePrimitive, 4, true, "dnAttributes"))
			}
		}
		return p
	default:
		return ber.Encode(ber.ClassContext, ber.TypePrimitive, ber.Tag(f.Type), nil, "unknown")
	}
}

func (r *SearchRequest) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpSearchRequest), nil, "SearchRequest")
	p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.BaseObject, "baseObject"))
	p.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(r.Scope), "scope"))
	p.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(r.DerefAliases), "derefAliases"))
	p.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(r.SizeLimit), "sizeLimit"))
	p.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(r.TimeLimit), "timeLimit"))
	p.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, r.TypesOnly, "typesOnly"))
	p.AppendChild(encodeFilter(r.Filter))
	attrs := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "attributes")
	for _, a := range r.Attributes {
		attrs.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, a, "attribute"))
	}
	p.AppendChild(attrs)
	return p
}

type PartialAttribute struct {
	Type   string
	Values [][]byte
}

func decodePartialAttribute(cur *Cursor) (PartialAttribute, error) {
	var a PartialAttribute
	children := cur.Children()
	typeCur, ok := children.Next()
	if !ok {
		return a, errMissingField
	}
	a.Type = typeCur.String()
	valsCur, ok := children.Next()
	if !ok {
		return a, errMissingField
	}
	valChildren := valsCur.Children()
	for {
		v, ok := valChildren.Next()
		if !ok {
			break
		}
		a.Values = append(a.Values, v.Bytes())
	}
	return a, nil
}

func encodePartialAttribute(a PartialAttribute) *ber.Packet {
	p := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "PartialAttribute")
	p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, a.Type, "type"))
	vals := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSet, nil, "vals")
	for _, v := range a.Values {
		vals.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, string(v), "value"))
	}
	p.AppendChild(vals)
	return p
}

type SearchResultEntry struct {
	ObjectName string
	Attributes []PartialAttribute
}

func DecodeSearchResultEntry(op *Cursor) (*SearchResultEntry, error) {
	children := op.Children()
	nameCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	e := &SearchResultEntry{ObjectName: nameCur.String()}
	attrsCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	attrChildren := attrsCur.Children()
	for {
		ac, ok := attrChildren.Next()
		if !ok {
			break
		}
		attr, err := decodePartialAttribute(ac)
		if err != nil {
			return nil, err
		}
		e.Attributes = append(e.Attributes, attr)
	}
	return e, nil
}

func (r *SearchResultEntry) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpSearchResultEntry), nil, "SearchResultEntry")
	p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.ObjectName, "objectName"))
	attrs := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "attributes")
	for _, a := range r.Attributes {
		attrs.AppendChild(encodePartialAttribute(a))
	}
	p.AppendChild(attrs)
	return p
}

type SearchResultDone struct{ LDAPResult }

func DecodeSearchResultDone(op *Cursor) (*SearchResultDone, error) {
	res, err := decodeLDAPResult(op.Children())
	if err != nil {
		return nil, err
	}
	return &SearchResultDone{LDAPResult: res}, nil
}

func (r *SearchResultDone) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpSearchResultDone), nil, "SearchResultDone")
	for _, c := range encodeLDAPResult(r.LDAPResult) {
		p.AppendChild(c)
	}
	return p
}

type SearchResultReference struct{ URIs []string }

func DecodeSearchResultReference(op *Cursor) (*SearchResultReference, error) {
	r := &SearchResultReference{}
	children := op.Children()
	for {
		u, ok := children.Next()
		if !ok {
			break
		}
		r.URIs = append(r.URIs, u.String())
	}
	return r, nil
}

func (r *SearchResultReference) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpSearchResultReference), nil, "SearchResultReference")
	for _, u := range r.URIs {
		p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, u, "uri"))
	}
	return p
}

// --- Modify ---

type ModifyOperation int

const (
	ModifyAdd     ModifyOperation = 0
	ModifyDelete  ModifyOperation = 1
	ModifyReplace ModifyOperation = 2
)

type Modification struct {
	Operation ModifyOperation
	Attribute PartialAttribute
}

type ModifyRequest struct {
	Object  string
	Changes []Modification
}

func DecodeModifyRequest(op *Cursor) (*ModifyRequest, error) {
	children := op.Children()
	objCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req := &ModifyRequest{Object: objCur.String()}
	changesCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	changeChildren := changesCur.Children()
	for {
		changeCur, ok := changeChildren.Next()
		if !ok {
			break
		}
		cc := changeCur.Children()
		opCur, ok := cc.Next()
		if !ok {
			return nil, errMissingField
		}
		attrCur, ok := cc.Next()
		if !ok {
			return nil, errMissingField
		}
		attr, err := decodePartialAttribute(attrCur)
		if err != nil {
			return nil, err
		}
		req.Changes = append(req.Changes, Modification{
			Operation: ModifyOperation(opCur.Int64()),
			Attribute: attr,
		})
	}
	return req, nil
}

func (r *ModifyRequest) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpModifyRequest), nil, "ModifyRequest")
	p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.Object, "object"))
	changes := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "changes")
	for _, c := range r.Changes {
		change := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "change")
		change.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(c.Operation), "operation"))
		change.AppendChild(encodePartialAttribute(c.Attribute))
		changes.AppendChild(change)
	}
	p.AppendChild(changes)
	return p
}

type ModifyResponse struct{ LDAPResult }

func DecodeModifyResponse(op *Cursor) (*ModifyResponse, error) {
	res, err := decodeLDAPResult(op.Children())
	if err != nil {
		return nil, err
	}
	return &ModifyResponse{LDAPResult: res}, nil
}

func (r *ModifyResponse) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpModifyResponse), nil, "ModifyResponse")
	for _, c := range encodeLDAPResult(r.LDAPResult) {
		p.AppendChild(c)
	}
	return p
}

// --- Add ---

type AddRequest struct {
	Entry      string
	Attributes []PartialAttribute
}

func DecodeAddRequest(op *Cursor) (*AddRequest, error) {
	children := op.Children()
	entryCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req := &AddRequest{Entry: entryCur.String()}
	attrsCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	attrChildren := attrsCur.Children()
	for {
		ac, ok := attrChildren.Next()
		if !ok {
			break
		}
		attr, err := decodePartialAttribute(ac)
		if err != nil {
			return nil, err
		}
		req.Attributes = append(req.Attributes, attr)
	}
	return req, nil
}

func (r *AddRequest) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpAddRequest), nil, "AddRequest")
	p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.Entry, "entry"))
	attrs := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "attributes")
	for _, a := range r.Attributes {
		attrs.AppendChild(encodePartialAttribute(a))
	}
	p.AppendChild(attrs)
	return p
}

type AddResponse struct{ LDAPResult }

func DecodeAddResponse(op *Cursor) (*AddResponse, error) {
	res, err := decodeLDAPResult(op.Children())
	if err != nil {
		return nil, err
	}
	return &AddResponse{LDAPResult: res}, nil
}

func (r *AddResponse) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpAddResponse), nil, "AddResponse")
	for _, c := range encodeLDAPResult(r.LDAPResult) {
		p.AppendChild(c)
	}
	return p
}

// --- Delete ---

type DelRequest struct{ DN string }

func DecodeDelRequest(op *Cursor) (*DelRequest, error) {
	return &DelRequest{DN: op.String()}, nil
}

func (r *DelRequest) Encode() *ber.Packet {
	return ber.NewString(ber.ClassApplication, ber.TypePrimitive, ber.Tag(OpDelRequest), r.DN, "DelRequest")
}

type DelResponse struct{ LDAPResult }

func DecodeDelResponse(op *Cursor) (*DelResponse, error) {
	res, err := decodeLDAPResult(op.Children())
	if err != nil {
		return nil, err
	}
	return &DelResponse{LDAPResult: res}, nil
}

func (r *DelResponse) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpDelResponse), nil, "DelResponse")
	for _, c := range encodeLDAPResult(r.LDAPResult) {
		p.AppendChild(c)
	}
	return p
}

// --- ModifyDN ---

type ModifyDNRequest struct {
	Entry        string
	NewRDN       string
	DeleteOldRDN bool
	NewSuperior  string
}

func DecodeModifyDNRequest(op *Cursor) (*ModifyDNRequest, error) {
	children := op.Children()
	entryCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req := &ModifyDNRequest{Entry: entryCur.String()}
	rdnCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req.NewRDN = rdnCur.String()
	delCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req.DeleteOldRDN = delCur.Bool()
	if supCur, ok := children.Next(); ok {
		req.NewSuperior = supCur.String()
	}
	return req, nil
}

func (r *ModifyDNRequest) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpModifyDNRequest), nil, "ModifyDNRequest")
	p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.Entry, "entry"))
	p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.NewRDN, "newrdn"))
	p.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, r.DeleteOldRDN, "deleteoldrdn"))
	if r.NewSuperior != "" {
		p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 0, r.NewSuperior, "newSuperior"))
	}
	return p
}

type ModifyDNResponse struct{ LDAPResult }

func DecodeModifyDNResponse(op *Cursor) (*ModifyDNResponse, error) {
	res, err := decodeLDAPResult(op.Children())
	if err != nil {
		return nil, err
	}
	return &ModifyDNResponse{LDAPResult: res}, nil
}

func (r *ModifyDNResponse) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpModifyDNResponse), nil, "ModifyDNResponse")
	for _, c := range encodeLDAPResult(r.LDAPResult) {
		p.AppendChild(c)
	}
	return p
}

// --- Compare ---

type CompareRequest struct {
	Entry     string
	Attribute string
	Value     []byte
}

func DecodeCompareRequest(op *Cursor) (*CompareRequest, error) {
	children := op.Children()
	entryCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	req := &CompareRequest{Entry: entryCur.String()}
	avaCur, ok := children.Next()
	if !ok {
		return nil, errMissingField
	}
	ava := avaCur.Children()
	attrCur, ok := ava.Next()
	if !ok {
		return nil, errMissingField
	}
	req.Attribute = attrCur.String()
	valCur, ok := ava.Next()
	if !ok {
		return nil, errMissingField
	}
	req.Value = valCur.Bytes()
	return req, nil
}

func (r *CompareRequest) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpCompareRequest), nil, "CompareRequest")
	p.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.Entry, "entry"))
	ava := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "ava")
	ava.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.Attribute, "desc"))
	ava.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, string(r.Value), "value"))
	p.AppendChild(ava)
	return p
}

type CompareResponse struct{ LDAPResult }

func DecodeCompareResponse(op *Cursor) (*CompareResponse, error) {
	res, err := decodeLDAPResult(op.Children())
	if err != nil {
		return nil, err
	}
	return &CompareResponse{LDAPResult: res}, nil
}

func (r *CompareResponse) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpCompareResponse), nil, "CompareResponse")
	for _, c := range encodeLDAPResult(r.LDAPResult) {
		p.AppendChild(c)
	}
	return p
}

// --- Intermediate response (RFC 4511 section 4.13) ---

type IntermediateResponse struct {
	OID   string
	Value []byte
}

func DecodeIntermediateResponse(op *Cursor) (*IntermediateResponse, error) {
	r := &IntermediateResponse{}
	children := op.Children()
	for {
		c, ok := children.Next()
		if !ok {
			break
		}
		switch c.Tag() {
		case 0:
			r.OID = c.String()
		case 1:
			r.Value = c.Bytes()
		}
	}
	return r, nil
}

func (r *IntermediateResponse) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.Tag(OpIntermediateResponse), nil, "IntermediateResponse")
	if r.OID != "" {
		p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 0, r.OID, "responseName"))
	}
	if len(r.Value) > 0 {
		p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, 1, string(r.Value), "responseValue"))
	}
	return p
}
