package lillydap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// stepSource hands out at most step bytes per call and always reports
// wouldBlock=true, simulating a non-blocking socket that must be polled
// again for the rest of a frame — exercising the resumable frame reader's
// bytes_so_far bookkeeping across separate IngressEvent calls.
type stepSource struct {
	data []byte
	pos  int
	step int
}

func (s *stepSource) ReadAvailable(p []byte) (int, bool, error) {
	if s.pos >= len(s.data) {
		return 0, true, nil
	}
	n := s.step
	if n > len(p) {
		n = len(p)
	}
	if rem := len(s.data) - s.pos; n > rem {
		n = rem
	}
	copy(p, s.data[s.pos:s.pos+n])
	s.pos += n
	return n, true, nil
}

// recordingSink captures every byte written, in order, and can simulate a
// short write by capping n below len(p).
type recordingSink struct {
	written []byte
	cap     int
}

func (s *recordingSink) WriteAvailable(p []byte) (int, bool, error) {
	n := len(p)
	if s.cap > 0 && n > s.cap {
		n = s.cap
	}
	s.written = append(s.written, p[:n]...)
	return n, false, nil
}

func buildUnbindFrame(t *testing.T, msgid MessageID) []byte {
	t.Helper()
	msg := &Message{ID: msgid, Op: OpUnbindRequest}
	frame, err := msg.Encode(NewPool(), (&UnbindRequest{}).Encode())
	require.NoError(t, err)
	return frame
}

func TestIngressEventChunkedDelivery(t *testing.T) {
	frame := buildUnbindFrame(t, 5)

	var gotMsgID MessageID
	var called bool
	registry := NewOpRegistry()
	registry.SetUnbindRequest(func(conn *Connection, pool *Pool, msgid MessageID, op *Cursor, ctrls Controls) error {
		called = true
		gotMsgID = msgid
		return nil
	})
	def := NewStructural(WithRegistry(registry))

	src := &stepSource{data: frame, step: 1}
	conn := NewConnection(def, src, nil, 0)

	for i := 0; i < len(frame)+2 && !called; i++ {
		_, err := conn.IngressEvent()
		require.NoError(t, err)
	}
	require.True(t, called, "handler should eventually run once the full frame is assembled")
	require.Equal(t, MessageID(5), gotMsgID)
}

func TestIngressEventNotImplementedSynthesizesResponse(t *testing.T) {
	// A BindRequest frame with no registered handler: the pipeline's
	// not-implemented path should fire and synthesize a BindResponse.
	bindReq := &BindRequest{Version: 3, Name: "", AuthMethod: AuthSimple}
	msg := &Message{ID: 9, Op: OpBindRequest}
	bframe, err := msg.Encode(NewPool(), bindReq.Encode())
	require.NoError(t, err)

	def := NewStructural() // empty registry: BindRequest has no handler
	sink := &recordingSink{}
	src := &stepSource{data: bframe, step: len(bframe)}
	conn := NewConnection(def, src, sink, 0)

	_, err = conn.IngressEvent()
	require.NoError(t, err)
	require.NotEmpty(t, sink.written, "a BindResponse should have been synthesized and enqueued")

	respPool := NewPool()
	respMsg, err := DecodeMessage(respPool, sink.written)
	require.NoError(t, err)
	require.Equal(t, OpBindResponse, respMsg.Op)
	resp, err := DecodeBindResponse(respMsg.Operation)
	require.NoError(t, err)
	require.Equal(t, ResultUnwillingToPerform, resp.ResultCode)
}

func TestIngressRejectMaskDropsRequest(t *testing.T) {
	bindReq := &BindRequest{Version: 3, Name: "", AuthMethod: AuthSimple}
	msg := &Message{ID: 1, Op: OpBindRequest}
	frame, err := msg.Encode(NewPool(), bindReq.Encode())
	require.NoError(t, err)

	called := false
	registry := NewOpRegistry()
	registry.SetBindRequest(func(conn *Connection, pool *Pool, msgid MessageID, op *Cursor, ctrls Controls) error {
		called = true
		return nil
	})
	def := NewStructural(WithRegistry(registry), WithIngressReject(RejectMask{}.Set(OpBindRequest)))
	sink := &recordingSink{}
	src := &stepSource{data: frame, step: len(frame)}
	conn := NewConnection(def, src, sink, 0)

	_, err = conn.IngressEvent()
	require.NoError(t, err)
	require.False(t, called, "rejected opcode must never reach the registered handler")
	require.NotEmpty(t, sink.written)
}

func TestIngressEventBadTagIsFatal(t *testing.T) {
	src := &stepSource{data: []byte{0x31, 0x00}, step: 2}
	def := NewStructural()
	conn := NewConnection(def, src, nil, 0)
	_, err := conn.IngressEvent()
	require.Error(t, err)
	var lerr *Error
	require.True(t, errors.As(err, &lerr))
	require.True(t, lerr.Fatal)
	require.Equal(t, ErrKindFraming, lerr.Kind)
}

func TestSendQueuePreservesOrderAcrossShortWrites(t *testing.T) {
	var q sendQueue
	q.enqueue(&sendElem{data: []byte("AAA")})
	q.enqueue(&sendElem{data: []byte("BBB")})

	sink := &recordingSink{cap: 2}
	for q.canSend() {
		_, err := q.drain(sink)
		require.NoError(t, err)
	}
	require.Equal(t, "AAABBB", string(sink.written))
}

func TestIngressEventRemapsExtendedRequestToSyntheticOpcode(t *testing.T) {
	passwd := &PasswdModifyRequest{UserIdentity: "dn:uid=jdoe,dc=example,dc=com", NewPasswd: []byte("hunter2")}
	ext := &ExtendedRequest{OID: OIDPasswdModify, Value: passwd.EncodeValue()}
	msg := &Message{ID: 21, Op: OpExtendedRequest}
	frame, err := msg.Encode(NewPool(), ext.Encode())
	require.NoError(t, err)

	var gotOp Opcode
	var gotPasswd *PasswdModifyRequest
	registry := NewOpRegistry()
	registry.SetPasswdModifyRequest(func(conn *Connection, pool *Pool, msgid MessageID, op *Cursor, ctrls Controls) error {
		extReq, err := DecodeExtendedRequest(op)
		require.NoError(t, err)
		require.Equal(t, OIDPasswdModify, extReq.OID)
		gotPasswd, err = DecodePasswdModifyRequest(pool, extReq)
		require.NoError(t, err)
		gotOp = OpPasswdModifyRequest
		return nil
	})
	def := NewStructural(WithRegistry(registry))

	src := &stepSource{data: frame, step: len(frame)}
	conn := NewConnection(def, src, nil, 0)
	_, err = conn.IngressEvent()
	require.NoError(t, err)

	require.Equal(t, OpPasswdModifyRequest, gotOp, "ExtendedRequest must be redispatched under its synthetic opcode")
	require.NotNil(t, gotPasswd)
	require.Equal(t, passwd.UserIdentity, gotPasswd.UserIdentity)
	require.Equal(t, passwd.NewPasswd, gotPasswd.NewPasswd)
}

func TestIngressEventUnrecognizedExtendedOIDIsNotImplemented(t *testing.T) {
	ext := &ExtendedRequest{OID: "1.2.3.4.5.6.7.8.9", Value: nil}
	msg := &Message{ID: 22, Op: OpExtendedRequest}
	frame, err := msg.Encode(NewPool(), ext.Encode())
	require.NoError(t, err)

	sink := &recordingSink{}
	src := &stepSource{data: frame, step: len(frame)}
	def := NewStructural() // empty registry
	conn := NewConnection(def, src, sink, 0)

	_, err = conn.IngressEvent()
	require.NoError(t, err)
	require.NotEmpty(t, sink.written, "an unrecognized extended OID should still synthesize a rejection response")

	respPool := NewPool()
	respMsg, err := DecodeMessage(respPool, sink.written)
	require.NoError(t, err)
	require.Equal(t, OpExtendedResponse, respMsg.Op)
}

func TestPopPendingCorrelatesResponse(t *testing.T) {
	def := NewStructural()
	conn := NewConnection(def, nil, nil, 0)
	conn.rememberPending(42, OpSearchRequest)

	op, ok := conn.popPending(42)
	require.True(t, ok)
	require.Equal(t, OpSearchRequest, op)

	_, ok = conn.popPending(42)
	require.False(t, ok, "popPending must remove the entry once consumed")
}
