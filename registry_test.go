package lillydap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// namedSlot pairs one opcode with the registry's named getter/setter for it,
// so the table below can assert every named accessor and ByOpcode/SetByOpcode
// agree on exactly the same underlying slot.
type namedSlot struct {
	name string
	op   Opcode
	get  func(*OpRegistry) OperationHandler
	set  func(*OpRegistry, OperationHandler)
}

func namedSlots() []namedSlot {
	return []namedSlot{
		{"BindRequest", OpBindRequest, (*OpRegistry).BindRequest, (*OpRegistry).SetBindRequest},
		{"UnbindRequest", OpUnbindRequest, (*OpRegistry).UnbindRequest, (*OpRegistry).SetUnbindRequest},
		{"SearchRequest", OpSearchRequest, (*OpRegistry).SearchRequest, (*OpRegistry).SetSearchRequest},
		{"ModifyRequest", OpModifyRequest, (*OpRegistry).ModifyRequest, (*OpRegistry).SetModifyRequest},
		{"AddRequest", OpAddRequest, (*OpRegistry).AddRequest, (*OpRegistry).SetAddRequest},
		{"DelRequest", OpDelRequest, (*OpRegistry).DelRequest, (*OpRegistry).SetDelRequest},
		{"ModifyDNRequest", OpModifyDNRequest, (*OpRegistry).ModifyDNRequest, (*OpRegistry).SetModifyDNRequest},
		{"CompareRequest", OpCompareRequest, (*OpRegistry).CompareRequest, (*OpRegistry).SetCompareRequest},
		{"AbandonRequest", OpAbandonRequest, (*OpRegistry).AbandonRequest, (*OpRegistry).SetAbandonRequest},
		{"ExtendedRequest", OpExtendedRequest, (*OpRegistry).ExtendedRequest, (*OpRegistry).SetExtendedRequest},
		{"BindResponse", OpBindResponse, (*OpRegistry).BindResponse, (*OpRegistry).SetBindResponse},
		{"SearchResultEntry", OpSearchResultEntry, (*OpRegistry).SearchResultEntry, (*OpRegistry).SetSearchResultEntry},
		{"SearchResultDone", OpSearchResultDone, (*OpRegistry).SearchResultDone, (*OpRegistry).SetSearchResultDone},
		{"ExtendedResponse", OpExtendedResponse, (*OpRegistry).ExtendedResponse, (*OpRegistry).SetExtendedResponse},
		{"StartTLSRequest", OpStartTLSRequest, (*OpRegistry).StartTLSRequest, (*OpRegistry).SetStartTLSRequest},
		{"StartTLSResponse", OpStartTLSResponse, (*OpRegistry).StartTLSResponse, (*OpRegistry).SetStartTLSResponse},
		{"PasswdModifyRequest", OpPasswdModifyRequest, (*OpRegistry).PasswdModifyRequest, (*OpRegistry).SetPasswdModifyRequest},
		{"PasswdModifyResponse", OpPasswdModifyResponse, (*OpRegistry).PasswdModifyResponse, (*OpRegistry).SetPasswdModifyResponse},
		{"CancelRequest", OpCancelRequest, (*OpRegistry).CancelRequest, (*OpRegistry).SetCancelRequest},
		{"CancelResponse", OpCancelResponse, (*OpRegistry).CancelResponse, (*OpRegistry).SetCancelResponse},
		{"WhoamiRequest", OpWhoamiRequest, (*OpRegistry).WhoamiRequest, (*OpRegistry).SetWhoamiRequest},
		{"WhoamiResponse", OpWhoamiResponse, (*OpRegistry).WhoamiResponse, (*OpRegistry).SetWhoamiResponse},
		{"LBURPStartRequest", OpLBURPStartRequest, (*OpRegistry).LBURPStartRequest, (*OpRegistry).SetLBURPStartRequest},
		{"LBURPStartResponse", OpLBURPStartResponse, (*OpRegistry).LBURPStartResponse, (*OpRegistry).SetLBURPStartResponse},
		{"LBURPEndRequest", OpLBURPEndRequest, (*OpRegistry).LBURPEndRequest, (*OpRegistry).SetLBURPEndRequest},
		{"LBURPEndResponse", OpLBURPEndResponse, (*OpRegistry).LBURPEndResponse, (*OpRegistry).SetLBURPEndResponse},
		{"LBURPUpdateRequest", OpLBURPUpdateRequest, (*OpRegistry).LBURPUpdateRequest, (*OpRegistry).SetLBURPUpdateRequest},
		{"LBURPUpdateResponse", OpLBURPUpdateResponse, (*OpRegistry).LBURPUpdateResponse, (*OpRegistry).SetLBURPUpdateResponse},
		{"TurnRequest", OpTurnRequest, (*OpRegistry).TurnRequest, (*OpRegistry).SetTurnRequest},
		{"TurnResponse", OpTurnResponse, (*OpRegistry).TurnResponse, (*OpRegistry).SetTurnResponse},
		{"TxnStartRequest", OpTxnStartRequest, (*OpRegistry).TxnStartRequest, (*OpRegistry).SetTxnStartRequest},
		{"TxnStartResponse", OpTxnStartResponse, (*OpRegistry).TxnStartResponse, (*OpRegistry).SetTxnStartResponse},
		{"TxnEndRequest", OpTxnEndRequest, (*OpRegistry).TxnEndRequest, (*OpRegistry).SetTxnEndRequest},
		{"TxnEndResponse", OpTxnEndResponse, (*OpRegistry).TxnEndResponse, (*OpRegistry).SetTxnEndResponse},
		{"AbortedTxnResponse", OpAbortedTxnResponse, (*OpRegistry).AbortedTxnResponse, (*OpRegistry).SetAbortedTxnResponse},
	}
}

// TestNamedSlotsReachByOpcode asserts that every named accessor writes and
// reads the identical slot ByOpcode/SetByOpcode would, for every opcode the
// registry names a convenience method for.
func TestNamedSlotsReachByOpcode(t *testing.T) {
	for _, slot := range namedSlots() {
		t.Run(slot.name, func(t *testing.T) {
			r := NewOpRegistry()
			called := false
			h := func(conn *Connection, pool *Pool, msgid MessageID, op *Cursor, ctrls Controls) error {
				called = true
				return nil
			}

			slot.set(r, h)
			require.NotNil(t, r.ByOpcode(slot.op), "SetByOpcode and the named setter must write the same slot")
			require.NotNil(t, slot.get(r), "the named getter must read back what SetByOpcode wrote")

			err := r.ByOpcode(slot.op)(nil, nil, 0, nil, nil)
			require.NoError(t, err)
			require.True(t, called)

			r2 := NewOpRegistry()
			r2.SetByOpcode(slot.op, h)
			require.NotNil(t, slot.get(r2), "the named getter must read back what SetByOpcode wrote")
		})
	}
}

// TestNamedSlotsCoverDistinctOpcodes guards against a copy-paste mistake in
// the registry wiring two named accessors to the same opcode.
func TestNamedSlotsCoverDistinctOpcodes(t *testing.T) {
	seen := make(map[Opcode]string)
	for _, slot := range namedSlots() {
		if other, ok := seen[slot.op]; ok {
			t.Fatalf("opcode %s is claimed by both %s and %s", slot.op, other, slot.name)
		}
		seen[slot.op] = slot.name
	}
}

func TestByOpcodeUnregisteredReturnsNil(t *testing.T) {
	r := NewOpRegistry()
	require.Nil(t, r.ByOpcode(OpSearchRequest))
	require.Nil(t, r.ByOpcode(OpWhoamiRequest))
}

func TestByOpcodeOutOfRangeIsSafe(t *testing.T) {
	r := NewOpRegistry()
	require.Nil(t, r.ByOpcode(Opcode(200)))
	r.SetByOpcode(Opcode(200), func(conn *Connection, pool *Pool, msgid MessageID, op *Cursor, ctrls Controls) error {
		return nil
	})
	require.Nil(t, r.ByOpcode(Opcode(200)), "out-of-range SetByOpcode must be a no-op, not a panic")
}

func TestSlotsAreIndependent(t *testing.T) {
	r := NewOpRegistry()
	r.SetBindRequest(func(conn *Connection, pool *Pool, msgid MessageID, op *Cursor, ctrls Controls) error {
		return nil
	})
	require.Nil(t, r.SearchRequest(), "setting one opcode's handler must not populate another opcode's slot")
}
