package lillydap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRejectMaskBasicAndExtended(t *testing.T) {
	m := RejectMask{}
	require.False(t, m.Has(OpBindRequest))
	require.False(t, m.Has(OpWhoamiRequest))

	m = m.Set(OpBindRequest).Set(OpWhoamiRequest)
	require.True(t, m.Has(OpBindRequest))
	require.True(t, m.Has(OpWhoamiRequest))
	require.False(t, m.Has(OpSearchRequest))
	require.False(t, m.Has(OpCancelRequest))
}

func TestRejectAllRequestsCoversBasicRequests(t *testing.T) {
	for _, op := range []Opcode{
		OpBindRequest, OpUnbindRequest, OpSearchRequest, OpModifyRequest,
		OpAddRequest, OpDelRequest, OpModifyDNRequest, OpCompareRequest, OpAbandonRequest,
	} {
		require.True(t, RejectAllRequests.Has(op), "expected %s to be rejected", op)
	}
	require.False(t, RejectAllRequests.Has(OpBindResponse))
}

func TestOpcodeStringKnownAndUnknown(t *testing.T) {
	require.Equal(t, "BindRequest", OpBindRequest.String())
	require.Equal(t, "WhoamiResponse", OpWhoamiResponse.String())
	require.Equal(t, "Unknown", Opcode(200).String())
}
