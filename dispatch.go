package lillydap

import (
	ber "github.com/go-asn1-ber/asn1-ber"
)

// isResponseOpcode reports whether op is a server-to-client response
// opcode (including extended responses), used by GetOpResp to decide
// whether correlation against the in-flight index applies.
func isResponseOpcode(op Opcode) bool {
	switch op {
	case OpBindResponse, OpSearchResultEntry, OpSearchResultDone, OpModifyResponse,
		OpAddResponse, OpDelResponse, OpModifyDNResponse, OpCompareResponse,
		OpSearchResultReference, OpExtendedResponse, OpIntermediateResponse,
		OpStartTLSResponse, OpPasswdModifyResponse, OpCancelResponse, OpWhoamiResponse,
		OpLBURPStartResponse, OpLBURPEndResponse, OpLBURPUpdateResponse, OpTurnResponse,
		OpTxnStartResponse, OpTxnEndResponse, OpAbortedTxnResponse:
		return true
	default:
		return false
	}
}

// DefaultGetDercursor is ingress layer 1's default: decode the frame into
// an LDAPMessage envelope and forward to GetLDAPMessage. An override
// typically wants to inspect the raw bytes (e.g. for a wiretap) and then
// call DefaultGetDercursor itself to continue the chain.
func DefaultGetDercursor(conn *Connection, pool *Pool, frame []byte) error {
	cur, err := ParseCursor(pool, frame)
	if err != nil {
		return framingErr("GetDercursor", err)
	}
	return conn.def.GetLDAPMessage(conn, pool, cur)
}

// DefaultGetLDAPMessage is ingress layer 2's default: split the envelope
// and forward to GetOpcode.
func DefaultGetLDAPMessage(conn *Connection, pool *Pool, cur *Cursor) error {
	if cur.ClassType() != ber.ClassUniversal || !cur.Constructed() {
		return framingErr("GetLDAPMessage", errNotSequence)
	}
	children := cur.Children()
	idCur, ok := children.Next()
	if !ok {
		return decodeErr("GetLDAPMessage", errMissingField)
	}
	id := MessageID(idCur.Int64())
	if id < minMessageID || id > maxMessageID {
		return decodeErr("GetLDAPMessage", errBadMessageID)
	}
	opCur, ok := children.Next()
	if !ok {
		return decodeErr("GetLDAPMessage", errMissingOperation)
	}
	if opCur.ClassType() != ber.ClassApplication {
		return decodeErr("GetLDAPMessage", errNotApplicationTag)
	}
	msg := &Message{ID: id, Op: Opcode(opCur.Tag()), Operation: opCur}
	if ctlCur, ok := children.Next(); ok && ctlCur.ClassType() == ber.ClassContext && ctlCur.Tag() == tagControls {
		ctrls, err := decodeControls(ctlCur)
		if err != nil {
			return decodeErr("GetLDAPMessage.controls", err)
		}
		msg.Controls = ctrls
	}
	return conn.def.GetOpcode(conn, pool, msg)
}

// DefaultGetOpcode is ingress layer 3's default: peel ExtendedRequest/
// ExtendedResponse down to their synthetic opcode, then reject-mask and
// control policy enforcement, then forward to GetOpResp.
//
// msg.Operation is left pointing at the generic ExtendedRequest/
// ExtendedResponse envelope cursor (OID plus opaque value) — the same
// cursor DecodeExtendedRequest/DecodeExtendedResponse already know how to
// read — rather than being replaced with a value-only cursor, since several
// extensions (Turn, Whoami) carry a value that is not itself a further
// BER-wrapped element and cannot be safely reparsed as one. A handler
// registered under a synthetic opcode calls DecodeExtendedRequest(op) (or
// DecodeExtendedResponse) to get the envelope back, then the matching
// Decode<Type>Request/Response for the second decode stage.
func DefaultGetOpcode(conn *Connection, pool *Pool, msg *Message) error {
	switch msg.Op {
	case OpExtendedRequest:
		ext, err := DecodeExtendedRequest(msg.Operation)
		if err != nil {
			return conn.rejectIncoming(pool, msg, decodeErr("GetOpcode.extended", err))
		}
		op, ok := extendedRequestOpcode(ext.OID)
		if !ok {
			return conn.rejectIncoming(pool, msg, notImplErr("GetOpcode.extended"))
		}
		msg.Op = op
	case OpExtendedResponse:
		ext, err := DecodeExtendedResponse(msg.Operation)
		if err != nil {
			return conn.rejectIncoming(pool, msg, decodeErr("GetOpcode.extended", err))
		}
		if ext.OID != "" {
			if op, ok := extendedResponseOpcode(ext.OID); ok {
				msg.Op = op
			}
		}
	}

	if conn.def.IngressReject.Has(msg.Op) {
		return conn.rejectIncoming(pool, msg, policyErr("GetOpcode"))
	}
	ctrls, err := conn.def.Controls.runRecv(conn, msg.ID, msg.Op, msg.Controls)
	if err != nil {
		return conn.rejectIncoming(pool, msg, policyErr("GetOpcode.controls"))
	}
	msg.Controls = ctrls
	return conn.def.GetOpResp(conn, pool, msg)
}

// DefaultGetOpResp is ingress layer 4's default: for response opcodes,
// correlate against the in-flight request index.
func DefaultGetOpResp(conn *Connection, pool *Pool, msg *Message) error {
	if isResponseOpcode(msg.Op) {
		if reqOp, ok := conn.popPending(msg.ID); ok {
			msg.RequestOp = reqOp
			msg.Correlated = true
		}
	}
	return conn.def.GetOperation(conn, pool, msg)
}

// DefaultGetOperation is ingress layer 5's default: look up the handler
// registered for this opcode and invoke it; an unregistered opcode is a
// NotImplemented condition, synthesized as unwillingToPerform for request
// opcodes and simply logged for responses.
func DefaultGetOperation(conn *Connection, pool *Pool, msg *Message) error {
	h := conn.def.Registry.ByOpcode(msg.Op)
	if h == nil {
		return conn.rejectIncoming(pool, msg, notImplErr("GetOperation"))
	}
	err := h(conn, pool, msg.ID, msg.Operation, msg.Controls)
	return conn.def.GetResponse(conn, pool, msg, err)
}

// DefaultGetResponse is ingress layer 6's default: log the outcome. A
// callback error here is wrapped as a non-fatal ErrKindCallback and
// returned up the ingress chain; dispatchFrame does not pass non-fatal
// errors on to IngressEvent's caller, and the connection stays open.
func DefaultGetResponse(conn *Connection, pool *Pool, msg *Message, handlerErr error) error {
	if handlerErr != nil {
		conn.log().Warn("operation handler error", "opcode", msg.Op.String(), "msgid", int64(msg.ID), "err", handlerErr)
		return callbackErr("GetResponse", handlerErr)
	}
	conn.log().Debug("operation handled", "opcode", msg.Op.String(), "msgid", int64(msg.ID))
	return nil
}

// DefaultPutOpResp is egress layer 4's default: if op is a request opcode,
// remember it in the in-flight index so the eventual response can be
// correlated by GetOpResp.
func DefaultPutOpResp(conn *Connection, msgid MessageID, op Opcode) error {
	if !isResponseOpcode(op) {
		conn.rememberPending(msgid, op)
	}
	return nil
}

// DefaultPutOpcode is egress layer 3's default: reject-mask enforcement
// on outgoing opcodes.
func DefaultPutOpcode(conn *Connection, op Opcode) error {
	if conn.def.EgressReject.Has(op) {
		return policyErr("PutOpcode")
	}
	return nil
}

// DefaultPutOperation is egress layer 5's default: assemble the envelope
// and hand it to PutLDAPMessage, then PutOpResp.
func DefaultPutOperation(conn *Connection, msgid MessageID, op Opcode, body *ber.Packet, ctrls Controls) error {
	if err := conn.def.PutOpcode(conn, op); err != nil {
		return err
	}
	ctrls, err := conn.def.Controls.runSend(conn, msgid, op, ctrls)
	if err != nil {
		return policyErr("PutOperation.controls")
	}
	msg := &Message{ID: msgid, Op: op, Controls: ctrls}
	frame, err := conn.def.PutLDAPMessage(conn, msg, body)
	if err != nil {
		return err
	}
	if err := conn.def.PutDercursor(conn, frame); err != nil {
		return err
	}
	perr := conn.def.PutOpResp(conn, msgid, op)
	conn.def.PutResponse(conn, msgid, op, perr)
	return perr
}

// DefaultPutLDAPMessage is egress layer 2's default: wrap body in the
// LDAPMessage SEQUENCE.
func DefaultPutLDAPMessage(conn *Connection, msg *Message, body *ber.Packet) ([]byte, error) {
	return msg.Encode(conn.msgPool, body)
}

// DefaultPutDercursor is egress layer 1's default: hand the encoded frame
// to the send queue.
func DefaultPutDercursor(conn *Connection, frame []byte) error {
	return conn.enqueue(frame)
}

// DefaultPutResponse is egress layer 6's default: log the outcome.
func DefaultPutResponse(conn *Connection, msgid MessageID, op Opcode, err error) {
	if err != nil {
		conn.log().Warn("put operation error", "opcode", op.String(), "msgid", int64(msgid), "err", err)
		return
	}
	conn.log().Debug("operation sent", "opcode", op.String(), "msgid", int64(msgid))
}

// PutOperation is the public egress entry point applications call to send
// any operation: build its *ber.Packet with its own Encode method, then
// hand it here.
func PutOperation(conn *Connection, msgid MessageID, op Opcode, body *ber.Packet, ctrls Controls) error {
	return conn.def.PutOperation(conn, msgid, op, body, ctrls)
}
