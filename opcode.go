package lillydap

import ldapconst "github.com/go-ldap/ldap/v3"

// Opcode identifies an LDAP operation. Values 0-25 follow RFC 4511's
// APPLICATION tag numbering exactly (reusing go-ldap/v3's Application*
// constants rather than redeclaring them); values 32 and up are this
// framework's own numbering for extended operations that RFC 4511 only
// describes generically as ExtendedRequest/ExtendedResponse, following the
// synthetic-opcode convention of the LillyDAP C implementation this
// framework is modeled on.
type Opcode uint8

const (
	OpBindRequest           Opcode = ldapconst.ApplicationBindRequest
	OpBindResponse          Opcode = ldapconst.ApplicationBindResponse
	OpUnbindRequest         Opcode = ldapconst.ApplicationUnbindRequest
	OpSearchRequest         Opcode = ldapconst.ApplicationSearchRequest
	OpSearchResultEntry     Opcode = ldapconst.ApplicationSearchResultEntry
	OpSearchResultDone      Opcode = ldapconst.ApplicationSearchResultDone
	OpModifyRequest         Opcode = ldapconst.ApplicationModifyRequest
	OpModifyResponse        Opcode = ldapconst.ApplicationModifyResponse
	OpAddRequest            Opcode = ldapconst.ApplicationAddRequest
	OpAddResponse           Opcode = ldapconst.ApplicationAddResponse
	OpDelRequest            Opcode = ldapconst.ApplicationDelRequest
	OpDelResponse           Opcode = ldapconst.ApplicationDelResponse
	OpModifyDNRequest       Opcode = ldapconst.ApplicationModifyDNRequest
	OpModifyDNResponse      Opcode = ldapconst.ApplicationModifyDNResponse
	OpCompareRequest        Opcode = ldapconst.ApplicationCompareRequest
	OpCompareResponse       Opcode = ldapconst.ApplicationCompareResponse
	OpAbandonRequest        Opcode = ldapconst.ApplicationAbandonRequest
	OpSearchResultReference Opcode = ldapconst.ApplicationSearchResultReference
	OpExtendedRequest       Opcode = ldapconst.ApplicationExtendedRequest
	OpExtendedResponse      Opcode = ldapconst.ApplicationExtendedResponse
	OpIntermediateResponse  Opcode = ldapconst.ApplicationIntermediateResponse
)

// Synthetic opcodes for extended operations this framework gives first-
// class registry slots, numbered from 32 up so they never collide with a
// future RFC 4511 APPLICATION tag (which tops out at 25).
const (
	OpStartTLSRequest    Opcode = 32
	OpStartTLSResponse   Opcode = 33
	OpPasswdModifyRequest  Opcode = 34 // RFC 3062
	OpPasswdModifyResponse Opcode = 35
	OpCancelRequest      Opcode = 36 // RFC 3909
	OpCancelResponse     Opcode = 37
	OpWhoamiRequest      Opcode = 38 // RFC 4532
	OpWhoamiResponse     Opcode = 39
	OpLBURPStartRequest  Opcode = 40 // RFC 4373
	OpLBURPStartResponse Opcode = 41
	OpLBURPEndRequest    Opcode = 42
	OpLBURPEndResponse   Opcode = 43
	OpLBURPUpdateRequest  Opcode = 44
	OpLBURPUpdateResponse Opcode = 45
	OpTurnRequest        Opcode = 46 // RFC 4531
	OpTurnResponse       Opcode = 47
	OpTxnStartRequest    Opcode = 48 // RFC 5805
	OpTxnStartResponse   Opcode = 49
	OpTxnEndRequest      Opcode = 50
	OpTxnEndResponse     Opcode = 51
	OpAbortedTxnResponse Opcode = 52
)

func (o Opcode) String() string {
	switch o {
	case OpBindRequest:
		return "BindRequest"
	case OpBindResponse:
		return "BindResponse"
	case OpUnbindRequest:
		return "UnbindRequest"
	case OpSearchRequest:
		return "SearchRequest"
	case OpSearchResultEntry:
		return "SearchResultEntry"
	case OpSearchResultDone:
		return "SearchResultDone"
	case OpModifyRequest:
		return "ModifyRequest"
	case OpModifyResponse:
		return "ModifyResponse"
	case OpAddRequest:
		return "AddRequest"
	case OpAddResponse:
		return "AddResponse"
	case OpDelRequest:
		return "DelRequest"
	case OpDelResponse:
		return "DelResponse"
	case OpModifyDNRequest:
		return "ModifyDNRequest"
	case OpModifyDNResponse:
		return "ModifyDNResponse"
	case OpCompareRequest:
		return "CompareRequest"
	case OpCompareResponse:
		return "CompareResponse"
	case OpAbandonRequest:
		return "AbandonRequest"
	case OpSearchResultReference:
		return "SearchResultReference"
	case OpExtendedRequest:
		return "ExtendedRequest"
	case OpExtendedResponse:
		return "ExtendedResponse"
	case OpIntermediateResponse:
		return "IntermediateResponse"
	case OpStartTLSRequest:
		return "StartTLSRequest"
	case OpStartTLSResponse:
		return "StartTLSResponse"
	case OpPasswdModifyRequest:
		return "PasswdModifyRequest"
	case OpPasswdModifyResponse:
		return "PasswdModifyResponse"
	case OpCancelRequest:
		return "CancelRequest"
	case OpCancelResponse:
		return "CancelResponse"
	case OpWhoamiRequest:
		return "WhoamiRequest"
	case OpWhoamiResponse:
		return "WhoamiResponse"
	case OpLBURPStartRequest:
		return "LBURPStartRequest"
	case OpLBURPStartResponse:
		return "LBURPStartResponse"
	case OpLBURPEndRequest:
		return "LBURPEndRequest"
	case OpLBURPEndResponse:
		return "LBURPEndResponse"
	case OpLBURPUpdateRequest:
		return "LBURPUpdateRequest"
	case OpLBURPUpdateResponse:
		return "LBURPUpdateResponse"
	case OpTurnRequest:
		return "TurnRequest"
	case OpTurnResponse:
		return "TurnResponse"
	case OpTxnStartRequest:
		return "TxnStartRequest"
	case OpTxnStartResponse:
		return "TxnStartResponse"
	case OpTxnEndRequest:
		return "TxnEndRequest"
	case OpTxnEndResponse:
		return "TxnEndResponse"
	case OpAbortedTxnResponse:
		return "AbortedTxnResponse"
	default:
		return "Unknown"
	}
}

// RejectMask is a per-direction bitmask of opcodes a Structural policy
// rejects outright before the operation layer ever sees them. Two words
// per direction: word 0 for basic (RFC 4511) opcodes, word 1 for extended
// opcodes, mirroring the LILLYGETR_*/LILLYGETR0_* split of the C ancestor.
type RejectMask struct {
	Basic    uint32
	Extended uint32
}

// rejectBit returns op's bit within its RejectMask word: bit op for a basic
// opcode (0-25), bit op-32 for an extended opcode (32 and up).
func rejectBit(op Opcode) uint32 {
	if op >= 32 {
		return 1 << (uint32(op) - 32)
	}
	return 1 << uint32(op)
}

// Has reports whether op is set in the mask.
func (m RejectMask) Has(op Opcode) bool {
	if op >= 32 {
		return m.Extended&rejectBit(op) != 0
	}
	return m.Basic&rejectBit(op) != 0
}

// Set returns a copy of m with op added.
func (m RejectMask) Set(op Opcode) RejectMask {
	if op >= 32 {
		m.Extended |= rejectBit(op)
	} else {
		m.Basic |= rejectBit(op)
	}
	return m
}

// Composite presets, equivalent to LILLYGETR_ALL_REQ and LILLYGETR_ALL_RESP
// in the original header; no reader/writer split presets are provided. An
// application wires one of these into Structural.IngressReject /
// EgressReject instead of hand-picking bits when it only ever plays one
// role (pure server or pure client).
var (
	// RejectAllRequests rejects every basic client-to-server request
	// opcode (a pure client has no business receiving these).
	RejectAllRequests = RejectMask{
		Basic: rejectBit(OpBindRequest) | rejectBit(OpUnbindRequest) |
			rejectBit(OpSearchRequest) | rejectBit(OpModifyRequest) |
			rejectBit(OpAddRequest) | rejectBit(OpDelRequest) |
			rejectBit(OpModifyDNRequest) | rejectBit(OpCompareRequest) |
			rejectBit(OpAbandonRequest),
	}
	// RejectAllResponses rejects every basic server-to-client response
	// opcode (a pure server has no business receiving these).
	RejectAllResponses = RejectMask{
		Basic: rejectBit(OpBindResponse) | rejectBit(OpSearchResultEntry) |
			rejectBit(OpSearchResultDone) | rejectBit(OpModifyResponse) |
			rejectBit(OpAddResponse) | rejectBit(OpDelResponse) |
			rejectBit(OpModifyDNResponse) | rejectBit(OpCompareResponse) |
			rejectBit(OpSearchResultReference),
	}
)
