package lillydap

// OperationHandler is the application-supplied callback for one opcode:
// given the connection, the arena the decoded Cursor lives in, the
// message ID, the still-undecoded operation Cursor, and any controls, it
// does whatever the application wants (look up a directory, forward to a
// backend, record a client-side response) and returns an error only the
// top-level ErrorKind taxonomy understands.
type OperationHandler func(conn *Connection, pool *Pool, msgid MessageID, op *Cursor, ctrls Controls) error

// numOpSlots covers every Opcode this framework defines (basic 0-25 plus
// extended 32-52); the gap between 26 and 31 is wasted array space, traded
// for being able to index directly by Opcode value with no translation.
const numOpSlots = int(OpAbortedTxnResponse) + 1

// OpRegistry is the operation dispatch table described in the design's
// data model: one opcode-indexed array (the actual backing store, reached
// through ByOpcode/SetByOpcode) and a set of named accessor methods over
// that same array (BindRequest/SetBindRequest, ...), giving callers either
// "iterate all opcodes" or "wire up BindRequest specifically" without the
// two views ever disagreeing, since there is only one array underneath.
type OpRegistry struct {
	slots [numOpSlots]OperationHandler
}

// NewOpRegistry returns an empty registry; every slot is nil until set.
func NewOpRegistry() *OpRegistry { return &OpRegistry{} }

// ByOpcode returns the handler registered for op, or nil if none.
func (r *OpRegistry) ByOpcode(op Opcode) OperationHandler {
	if int(op) >= numOpSlots {
		return nil
	}
	return r.slots[op]
}

// SetByOpcode registers h for op, replacing whatever was there.
func (r *OpRegistry) SetByOpcode(op Opcode, h OperationHandler) {
	if int(op) >= numOpSlots {
		return
	}
	r.slots[op] = h
}

// Named accessors for the operations an application wires up most often.
// These are convenience wrappers, not separate storage: SetBindRequest and
// SetByOpcode(OpBindRequest, ...) write the identical slot.

func (r *OpRegistry) BindRequest() OperationHandler  { return r.ByOpcode(OpBindRequest) }
func (r *OpRegistry) SetBindRequest(h OperationHandler) { r.SetByOpcode(OpBindRequest, h) }

func (r *OpRegistry) UnbindRequest() OperationHandler     { return r.ByOpcode(OpUnbindRequest) }
func (r *OpRegistry) SetUnbindRequest(h OperationHandler) { r.SetByOpcode(OpUnbindRequest, h) }

func (r *OpRegistry) SearchRequest() OperationHandler     { return r.ByOpcode(OpSearchRequest) }
func (r *OpRegistry) SetSearchRequest(h OperationHandler) { r.SetByOpcode(OpSearchRequest, h) }

func (r *OpRegistry) ModifyRequest() OperationHandler     { return r.ByOpcode(OpModifyRequest) }
func (r *OpRegistry) SetModifyRequest(h OperationHandler) { r.SetByOpcode(OpModifyRequest, h) }

func (r *OpRegistry) AddRequest() OperationHandler     { return r.ByOpcode(OpAddRequest) }
func (r *OpRegistry) SetAddRequest(h OperationHandler) { r.SetByOpcode(OpAddRequest, h) }

func (r *OpRegistry) DelRequest() OperationHandler     { return r.ByOpcode(OpDelRequest) }
func (r *OpRegistry) SetDelRequest(h OperationHandler) { r.SetByOpcode(OpDelRequest, h) }

func (r *OpRegistry) ModifyDNRequest() OperationHandler     { return r.ByOpcode(OpModifyDNRequest) }
func (r *OpRegistry) SetModifyDNRequest(h OperationHandler) { r.SetByOpcode(OpModifyDNRequest, h) }

func (r *OpRegistry) CompareRequest() OperationHandler     { return r.ByOpcode(OpCompareRequest) }
func (r *OpRegistry) SetCompareRequest(h OperationHandler) { r.SetByOpcode(OpCompareRequest, h) }

func (r *OpRegistry) AbandonRequest() OperationHandler     { return r.ByOpcode(OpAbandonRequest) }
func (r *OpRegistry) SetAbandonRequest(h OperationHandler) { r.SetByOpcode(OpAbandonRequest, h) }

func (r *OpRegistry) ExtendedRequest() OperationHandler     { return r.ByOpcode(OpExtendedRequest) }
func (r *OpRegistry) SetExtendedRequest(h OperationHandler) { r.SetByOpcode(OpExtendedRequest, h) }

func (r *OpRegistry) BindResponse() OperationHandler     { return r.ByOpcode(OpBindResponse) }
func (r *OpRegistry) SetBindResponse(h OperationHandler) { r.SetByOpcode(OpBindResponse, h) }

func (r *OpRegistry) SearchResultEntry() OperationHandler     { return r.ByOpcode(OpSearchResultEntry) }
func (r *OpRegistry) SetSearchResultEntry(h OperationHandler) { r.SetByOpcode(OpSearchResultEntry, h) }

func (r *OpRegistry) SearchResultDone() OperationHandler     { return r.ByOpcode(OpSearchResultDone) }
func (r *OpRegistry) SetSearchResultDone(h OperationHandler) { r.SetByOpcode(OpSearchResultDone, h) }

func (r *OpRegistry) ExtendedResponse() OperationHandler     { return r.ByOpcode(OpExtendedResponse) }
func (r *OpRegistry) SetExtendedResponse(h OperationHandler) { r.SetByOpcode(OpExtendedResponse, h) }

// Named accessors for the synthetic extended-operation opcodes GetOpcode
// rewrites msg.Op to once it has peeled an ExtendedRequest/ExtendedResponse
// OID (see extended.go's extendedRequestOpcode/extendedResponseOpcode).
// These give every opcode in the extended range its own registry slot, the
// same "two overlapping views, one array" guarantee the basic opcodes get.

func (r *OpRegistry) StartTLSRequest() OperationHandler     { return r.ByOpcode(OpStartTLSRequest) }
func (r *OpRegistry) SetStartTLSRequest(h OperationHandler) { r.SetByOpcode(OpStartTLSRequest, h) }

func (r *OpRegistry) StartTLSResponse() OperationHandler     { return r.ByOpcode(OpStartTLSResponse) }
func (r *OpRegistry) SetStartTLSResponse(h OperationHandler) { r.SetByOpcode(OpStartTLSResponse, h) }

func (r *OpRegistry) PasswdModifyRequest() OperationHandler { return r.ByOpcode(OpPasswdModifyRequest) }
func (r *OpRegistry) SetPasswdModifyRequest(h OperationHandler) {
	r.SetByOpcode(OpPasswdModifyRequest, h)
}

func (r *OpRegistry) PasswdModifyResponse() OperationHandler {
	return r.ByOpcode(OpPasswdModifyResponse)
}
func (r *OpRegistry) SetPasswdModifyResponse(h OperationHandler) {
	r.SetByOpcode(OpPasswdModifyResponse, h)
}

func (r *OpRegistry) CancelRequest() OperationHandler     { return r.ByOpcode(OpCancelRequest) }
func (r *OpRegistry) SetCancelRequest(h OperationHandler) { r.SetByOpcode(OpCancelRequest, h) }

func (r *OpRegistry) CancelResponse() OperationHandler     { return r.ByOpcode(OpCancelResponse) }
func (r *OpRegistry) SetCancelResponse(h OperationHandler) { r.SetByOpcode(OpCancelResponse, h) }

func (r *OpRegistry) WhoamiRequest() OperationHandler     { return r.ByOpcode(OpWhoamiRequest) }
func (r *OpRegistry) SetWhoamiRequest(h OperationHandler) { r.SetByOpcode(OpWhoamiRequest, h) }

func (r *OpRegistry) WhoamiResponse() OperationHandler     { return r.ByOpcode(OpWhoamiResponse) }
func (r *OpRegistry) SetWhoamiResponse(h OperationHandler) { r.SetByOpcode(OpWhoamiResponse, h) }

func (r *OpRegistry) LBURPStartRequest() OperationHandler { return r.ByOpcode(OpLBURPStartRequest) }
func (r *OpRegistry) SetLBURPStartRequest(h OperationHandler) {
	r.SetByOpcode(OpLBURPStartRequest, h)
}

func (r *OpRegistry) LBURPStartResponse() OperationHandler {
	return r.ByOpcode(OpLBURPStartResponse)
}
func (r *OpRegistry) SetLBURPStartResponse(h OperationHandler) {
	r.SetByOpcode(OpLBURPStartResponse, h)
}

func (r *OpRegistry) LBURPEndRequest() OperationHandler     { return r.ByOpcode(OpLBURPEndRequest) }
func (r *OpRegistry) SetLBURPEndRequest(h OperationHandler) { r.SetByOpcode(OpLBURPEndRequest, h) }

func (r *OpRegistry) LBURPEndResponse() OperationHandler { return r.ByOpcode(OpLBURPEndResponse) }
func (r *OpRegistry) SetLBURPEndResponse(h OperationHandler) {
	r.SetByOpcode(OpLBURPEndResponse, h)
}

func (r *OpRegistry) LBURPUpdateRequest() OperationHandler {
	return r.ByOpcode(OpLBURPUpdateRequest)
}
func (r *OpRegistry) SetLBURPUpdateRequest(h OperationHandler) {
	r.SetByOpcode(OpLBURPUpdateRequest, h)
}

func (r *OpRegistry) LBURPUpdateResponse() OperationHandler {
	return r.ByOpcode(OpLBURPUpdateResponse)
}
func (r *OpRegistry) SetLBURPUpdateResponse(h OperationHandler) {
	r.SetByOpcode(OpLBURPUpdateResponse, h)
}

func (r *OpRegistry) TurnRequest() OperationHandler     { return r.ByOpcode(OpTurnRequest) }
func (r *OpRegistry) SetTurnRequest(h OperationHandler) { r.SetByOpcode(OpTurnRequest, h) }

func (r *OpRegistry) TurnResponse() OperationHandler     { return r.ByOpcode(OpTurnResponse) }
func (r *OpRegistry) SetTurnResponse(h OperationHandler) { r.SetByOpcode(OpTurnResponse, h) }

func (r *OpRegistry) TxnStartRequest() OperationHandler { return r.ByOpcode(OpTxnStartRequest) }
func (r *OpRegistry) SetTxnStartRequest(h OperationHandler) {
	r.SetByOpcode(OpTxnStartRequest, h)
}

func (r *OpRegistry) TxnStartResponse() OperationHandler {
	return r.ByOpcode(OpTxnStartResponse)
}
func (r *OpRegistry) SetTxnStartResponse(h OperationHandler) {
	r.SetByOpcode(OpTxnStartResponse, h)
}

func (r *OpRegistry) TxnEndRequest() OperationHandler     { return r.ByOpcode(OpTxnEndRequest) }
func (r *OpRegistry) SetTxnEndRequest(h OperationHandler) { r.SetByOpcode(OpTxnEndRequest, h) }

func (r *OpRegistry) TxnEndResponse() OperationHandler     { return r.ByOpcode(OpTxnEndResponse) }
func (r *OpRegistry) SetTxnEndResponse(h OperationHandler) { r.SetByOpcode(OpTxnEndResponse, h) }

func (r *OpRegistry) AbortedTxnResponse() OperationHandler {
	return r.ByOpcode(OpAbortedTxnResponse)
}
func (r *OpRegistry) SetAbortedTxnResponse(h OperationHandler) {
	r.SetByOpcode(OpAbortedTxnResponse, h)
}
