package lillydap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestControlPolicyRunRecvComposesAllAndPerOpcode(t *testing.T) {
	var order []string
	p := &ControlPolicy{
		AllRecv: func(conn *Connection, msgid MessageID, op Opcode, ctrls Controls) (Controls, error) {
			order = append(order, "all")
			return ctrls, nil
		},
		PerOpcodeRecv: map[Opcode]ControlFilter{
			OpBindRequest: func(conn *Connection, msgid MessageID, op Opcode, ctrls Controls) (Controls, error) {
				order = append(order, "per-opcode")
				return ctrls, nil
			},
		},
	}

	_, err := p.runRecv(nil, 1, OpBindRequest, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"all", "per-opcode"}, order)

	order = nil
	_, err = p.runRecv(nil, 1, OpSearchRequest, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"all"}, order, "opcode with no per-opcode filter only runs AllRecv")
}

func TestControlPolicyRunRecvStopsOnAllRecvError(t *testing.T) {
	wantErr := errors.New("rejected by site policy")
	perOpcodeRan := false
	p := &ControlPolicy{
		AllRecv: func(conn *Connection, msgid MessageID, op Opcode, ctrls Controls) (Controls, error) {
			return nil, wantErr
		},
		PerOpcodeRecv: map[Opcode]ControlFilter{
			OpBindRequest: func(conn *Connection, msgid MessageID, op Opcode, ctrls Controls) (Controls, error) {
				perOpcodeRan = true
				return ctrls, nil
			},
		},
	}

	_, err := p.runRecv(nil, 1, OpBindRequest, nil)
	require.ErrorIs(t, err, wantErr)
	require.False(t, perOpcodeRan, "PerOpcodeRecv must not run once AllRecv rejects the message")
}

func TestControlPolicyRunSendRewritesControls(t *testing.T) {
	injected := Controls{{OID: "1.2.3.4", Criticality: false}}
	p := &ControlPolicy{
		AllSend: func(conn *Connection, msgid MessageID, op Opcode, ctrls Controls) (Controls, error) {
			return injected, nil
		},
	}

	got, err := p.runSend(nil, 1, OpSearchResultDone, nil)
	require.NoError(t, err)
	require.Equal(t, injected, got)
}

func TestControlPolicyZeroValueIsNoop(t *testing.T) {
	var p ControlPolicy
	ctrls := Controls{{OID: "1.2.3.4"}}

	got, err := p.runRecv(nil, 1, OpBindRequest, ctrls)
	require.NoError(t, err)
	require.Equal(t, ctrls, got)

	got, err = p.runSend(nil, 1, OpBindResponse, ctrls)
	require.NoError(t, err)
	require.Equal(t, ctrls, got)
}
