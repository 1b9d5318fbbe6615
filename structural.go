package lillydap

import (
	ber "github.com/go-asn1-ber/asn1-ber"
)

// The six named layers of one direction of the dispatch pipeline, matching
// the LillyDAP C ancestor's lillyget_*/lillyput_* function-pointer slots:
// dercursor, ldapmessage, opcode, opresp, operation, response. Structural
// carries one function-pointer-style field per layer per direction (12 in
// total); each has a package-level default that forwards to the next
// layer, so overriding one layer without touching the rest is just
// replacing that one field and, if the override wants to continue the
// chain, calling the matching Default* function itself.

// GetDercursorFunc is ingress layer 1: a freshly framed, still-undecoded
// DER element for one LDAPMessage. The default hands it straight to
// GetLDAPMessage.
type GetDercursorFunc func(conn *Connection, pool *Pool, frame []byte) error

// GetLDAPMessageFunc is ingress layer 2: split the envelope from the raw
// operation body.
type GetLDAPMessageFunc func(conn *Connection, pool *Pool, cur *Cursor) error

// GetOpcodeFunc is ingress layer 3: classify the opcode against the
// reject mask before paying for a full operation decode.
type GetOpcodeFunc func(conn *Connection, pool *Pool, msg *Message) error

// GetOpRespFunc is ingress layer 4: for a response opcode, correlate it
// against the in-flight request index before handing it to the operation
// layer (a BindResponse with no matching BindRequest is itself a protocol
// condition the application may want to see directly).
type GetOpRespFunc func(conn *Connection, pool *Pool, msg *Message) error

// GetOperationFunc is ingress layer 5: invoke the registered
// OperationHandler with the still-undecoded operation Cursor.
type GetOperationFunc func(conn *Connection, pool *Pool, msg *Message) error

// GetResponseFunc is ingress layer 6: final bookkeeping once a handler has
// run (logging, metrics, releasing the request-context index entry).
type GetResponseFunc func(conn *Connection, pool *Pool, msg *Message, handlerErr error) error

// PutOperationFunc is egress layer 5 (mirrors GetOperationFunc): given an
// already-encoded operation body, assemble and enqueue the full message.
type PutOperationFunc func(conn *Connection, msgid MessageID, op Opcode, body *ber.Packet, ctrls Controls) error

// PutLDAPMessageFunc is egress layer 2: wrap an operation body in the
// LDAPMessage envelope.
type PutLDAPMessageFunc func(conn *Connection, msg *Message, body *ber.Packet) ([]byte, error)

// PutDercursorFunc is egress layer 1: hand fully-encoded bytes to the send
// queue.
type PutDercursorFunc func(conn *Connection, frame []byte) error

// PutOpcodeFunc mirrors GetOpcodeFunc: a chance to reject an outgoing
// opcode before it is ever encoded.
type PutOpcodeFunc func(conn *Connection, op Opcode) error

// PutOpRespFunc mirrors GetOpRespFunc: record a request in the in-flight
// index before it goes out, so the matching response can be correlated
// later.
type PutOpRespFunc func(conn *Connection, msgid MessageID, op Opcode) error

// PutResponseFunc mirrors GetResponseFunc: bookkeeping after a send has
// been handed to the queue.
type PutResponseFunc func(conn *Connection, msgid MessageID, op Opcode, err error)

// Structural is the shared, typically-immutable-after-setup configuration
// a Connection is attached to: the twelve dispatch layers, the operation
// registry, reject masks, control-filter hooks, and a logger. Many
// connections may share one Structural; nothing here is connection-local.
type Structural struct {
	Version int

	IngressReject RejectMask
	EgressReject  RejectMask
	Controls      ControlPolicy

	Registry *OpRegistry
	Log      Logger

	GetDercursor  GetDercursorFunc
	GetLDAPMessage GetLDAPMessageFunc
	GetOpcode     GetOpcodeFunc
	GetOpResp     GetOpRespFunc
	GetOperation  GetOperationFunc
	GetResponse   GetResponseFunc

	PutDercursor   PutDercursorFunc
	PutLDAPMessage PutLDAPMessageFunc
	PutOpcode      PutOpcodeFunc
	PutOpResp      PutOpRespFunc
	PutOperation   PutOperationFunc
	PutResponse    PutResponseFunc
}

// Option configures a Structural at construction time, following the
// teacher's NewHandler()-plus-setters registration style but expressed as
// functional options (idiomatic for a library whose config is built once
// in Go source, not read from a file).
type Option func(*Structural)

// WithRegistry installs the operation registry.
func WithRegistry(r *OpRegistry) Option { return func(s *Structural) { s.Registry = r } }

// WithLogger installs a logger.
func WithLogger(l Logger) Option { return func(s *Structural) { s.Log = l } }

// WithIngressReject sets the ingress reject mask.
func WithIngressReject(m RejectMask) Option { return func(s *Structural) { s.IngressReject = m } }

// WithEgressReject sets the egress reject mask.
func WithEgressReject(m RejectMask) Option { return func(s *Structural) { s.EgressReject = m } }

// WithControlPolicy installs the four control-filter hooks.
func WithControlPolicy(p ControlPolicy) Option { return func(s *Structural) { s.Controls = p } }

// NewStructural builds a Structural with every layer wired to its default
// and an empty OpRegistry, then applies opts.
func NewStructural(opts ...Option) *Structural {
	s := &Structural{
		Version:  3,
		Registry: NewOpRegistry(),
		Log:      noopLogger{},

		GetDercursor:   DefaultGetDercursor,
		GetLDAPMessage: DefaultGetLDAPMessage,
		GetOpcode:      DefaultGetOpcode,
		GetOpResp:      DefaultGetOpResp,
		GetOperation:   DefaultGetOperation,
		GetResponse:    DefaultGetResponse,

		PutDercursor:   DefaultPutDercursor,
		PutLDAPMessage: DefaultPutLDAPMessage,
		PutOpcode:      DefaultPutOpcode,
		PutOpResp:      DefaultPutOpResp,
		PutOperation:   DefaultPutOperation,
		PutResponse:    DefaultPutResponse,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
