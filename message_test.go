package lillydap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBindRequestRoundTrip(t *testing.T) {
	req := &BindRequest{
		Version:        3,
		Name:           "cn=admin,dc=example,dc=com",
		AuthMethod:     AuthSimple,
		SimplePassword: []byte("s3cr3t"),
	}
	msg := &Message{ID: 1, Op: OpBindRequest}
	pool := NewPool()
	frame, err := msg.Encode(pool, req.Encode())
	require.NoError(t, err)

	decoded, err := DecodeMessage(pool, frame)
	require.NoError(t, err)
	require.Equal(t, MessageID(1), decoded.ID)
	require.Equal(t, OpBindRequest, decoded.Op)

	got, err := DecodeBindRequest(decoded.Operation)
	require.NoError(t, err)
	require.Equal(t, req.Version, got.Version)
	require.Equal(t, req.Name, got.Name)
	require.Equal(t, req.AuthMethod, got.AuthMethod)
	require.Equal(t, req.SimplePassword, got.SimplePassword)
}

func TestSearchResultEntryRoundTrip(t *testing.T) {
	entry := &SearchResultEntry{
		ObjectName: "uid=jdoe,ou=people,dc=example,dc=com",
		Attributes: []PartialAttribute{
			{Type: "cn", Values: [][]byte{[]byte("John Doe")}},
			{Type: "mail", Values: [][]byte{[]byte("jdoe@example.com"), []byte("john.doe@example.com")}},
		},
	}
	msg := &Message{ID: 7, Op: OpSearchResultEntry}
	pool := NewPool()
	frame, err := msg.Encode(pool, entry.Encode())
	require.NoError(t, err)

	decoded, err := DecodeMessage(pool, frame)
	require.NoError(t, err)
	require.Equal(t, MessageID(7), decoded.ID)
	require.Equal(t, OpSearchResultEntry, decoded.Op)

	got, err := DecodeSearchResultEntry(decoded.Operation)
	require.NoError(t, err)
	require.Equal(t, entry.ObjectName, got.ObjectName)
	require.Len(t, got.Attributes, 2)
	require.Equal(t, "cn", got.Attributes[0].Type)
	require.Equal(t, [][]byte{[]byte("John Doe")}, got.Attributes[0].Values)
	require.Equal(t, [][]byte{[]byte("jdoe@example.com"), []byte("john.doe@example.com")}, got.Attributes[1].Values)
}

func TestUnbindRequestRoundTrip(t *testing.T) {
	msg := &Message{ID: 2, Op: OpUnbindRequest}
	pool := NewPool()
	req := &UnbindRequest{}
	frame, err := msg.Encode(pool, req.Encode())
	require.NoError(t, err)

	decoded, err := DecodeMessage(pool, frame)
	require.NoError(t, err)
	require.Equal(t, OpUnbindRequest, decoded.Op)
	_, err = DecodeUnbindRequest(decoded.Operation)
	require.NoError(t, err)
}

func TestDecodeMessageRejectsBadMessageID(t *testing.T) {
	msg := &Message{ID: maxMessageID + 1, Op: OpUnbindRequest}
	pool := NewPool()
	req := &UnbindRequest{}
	frame, err := msg.Encode(pool, req.Encode())
	require.NoError(t, err)

	_, err = DecodeMessage(pool, frame)
	require.Error(t, err)
}

func TestModifyRequestRoundTrip(t *testing.T) {
	req := &ModifyRequest{
		Object: "uid=jdoe,ou=people,dc=example,dc=com",
		Changes: []Modification{
			{Operation: ModifyReplace, Attribute: PartialAttribute{Type: "mail", Values: [][]byte{[]byte("jdoe@example.com")}}},
			{Operation: ModifyDelete, Attribute: PartialAttribute{Type: "description"}},
		},
	}
	msg := &Message{ID: 10, Op: OpModifyRequest}
	pool := NewPool()
	frame, err := msg.Encode(pool, req.Encode())
	require.NoError(t, err)

	decoded, err := DecodeMessage(pool, frame)
	require.NoError(t, err)
	got, err := DecodeModifyRequest(decoded.Operation)
	require.NoError(t, err)
	require.Equal(t, req.Object, got.Object)
	require.Len(t, got.Changes, 2)
	require.Equal(t, ModifyReplace, got.Changes[0].Operation)
	require.Equal(t, "mail", got.Changes[0].Attribute.Type)
	require.Equal(t, [][]byte{[]byte("jdoe@example.com")}, got.Changes[0].Attribute.Values)
	require.Equal(t, ModifyDelete, got.Changes[1].Operation)
	require.Equal(t, "description", got.Changes[1].Attribute.Type)
}

func TestAddRequestRoundTrip(t *testing.T) {
	req := &AddRequest{
		Entry: "uid=newuser,ou=people,dc=example,dc=com",
		Attributes: []PartialAttribute{
			{Type: "objectClass", Values: [][]byte{[]byte("top"), []byte("person")}},
			{Type: "cn", Values: [][]byte{[]byte("New User")}},
		},
	}
	msg := &Message{ID: 11, Op: OpAddRequest}
	pool := NewPool()
	frame, err := msg.Encode(pool, req.Encode())
	require.NoError(t, err)

	decoded, err := DecodeMessage(pool, frame)
	require.NoError(t, err)
	got, err := DecodeAddRequest(decoded.Operation)
	require.NoError(t, err)
	require.Equal(t, req.Entry, got.Entry)
	require.Len(t, got.Attributes, 2)
	require.Equal(t, [][]byte{[]byte("top"), []byte("person")}, got.Attributes[0].Values)
	require.Equal(t, "cn", got.Attributes[1].Type)
}

func TestDelRequestResponseRoundTrip(t *testing.T) {
	req := &DelRequest{DN: "uid=olduser,ou=people,dc=example,dc=com"}
	msg := &Message{ID: 12, Op: OpDelRequest}
	pool := NewPool()
	frame, err := msg.Encode(pool, req.Encode())
	require.NoError(t, err)

	decoded, err := DecodeMessage(pool, frame)
	require.NoError(t, err)
	got, err := DecodeDelRequest(decoded.Operation)
	require.NoError(t, err)
	require.Equal(t, req.DN, got.DN)

	resp := &DelResponse{LDAPResult: LDAPResult{ResultCode: ResultSuccess}}
	respMsg := &Message{ID: 12, Op: OpDelResponse}
	respPool := NewPool()
	respFrame, err := respMsg.Encode(respPool, resp.Encode())
	require.NoError(t, err)
	decodedResp, err := DecodeMessage(respPool, respFrame)
	require.NoError(t, err)
	gotResp, err := DecodeDelResponse(decodedResp.Operation)
	require.NoError(t, err)
	require.Equal(t, ResultSuccess, gotResp.ResultCode)
}

func TestModifyDNRequestRoundTrip(t *testing.T) {
	req := &ModifyDNRequest{
		Entry:        "uid=jdoe,ou=people,dc=example,dc=com",
		NewRDN:       "uid=janedoe",
		DeleteOldRDN: true,
		NewSuperior:  "ou=archive,dc=example,dc=com",
	}
	msg := &Message{ID: 13, Op: OpModifyDNRequest}
	pool := NewPool()
	frame, err := msg.Encode(pool, req.Encode())
	require.NoError(t, err)

	decoded, err := DecodeMessage(pool, frame)
	require.NoError(t, err)
	got, err := DecodeModifyDNRequest(decoded.Operation)
	require.NoError(t, err)
	require.Equal(t, req.Entry, got.Entry)
	require.Equal(t, req.NewRDN, got.NewRDN)
	require.True(t, got.DeleteOldRDN)
	require.Equal(t, req.NewSuperior, got.NewSuperior)
}

func TestCompareRequestRoundTrip(t *testing.T) {
	req := &CompareRequest{
		Entry:     "uid=jdoe,ou=people,dc=example,dc=com",
		Attribute: "mail",
		Value:     []byte("jdoe@example.com"),
	}
	msg := &Message{ID: 14, Op: OpCompareRequest}
	pool := NewPool()
	frame, err := msg.Encode(pool, req.Encode())
	require.NoError(t, err)

	decoded, err := DecodeMessage(pool, frame)
	require.NoError(t, err)
	got, err := DecodeCompareRequest(decoded.Operation)
	require.NoError(t, err)
	require.Equal(t, req.Entry, got.Entry)
	require.Equal(t, req.Attribute, got.Attribute)
	require.Equal(t, req.Value, got.Value)
}

func TestControlsRoundTrip(t *testing.T) {
	msg := &Message{
		ID: 3, Op: OpUnbindRequest,
		Controls: Controls{{OID: "1.2.840.113556.1.4.319", Criticality: true, Value: []byte("page-cookie")}},
	}
	pool := NewPool()
	frame, err := msg.Encode(pool, (&UnbindRequest{}).Encode())
	require.NoError(t, err)

	decoded, err := DecodeMessage(pool, frame)
	require.NoError(t, err)
	require.Len(t, decoded.Controls, 1)
	require.Equal(t, "1.2.840.113556.1.4.319", decoded.Controls[0].OID)
	require.True(t, decoded.Controls[0].Criticality)
	require.Equal(t, []byte("page-cookie"), decoded.Controls[0].Value)
}
