// Command lillydapd is a minimal example server built on the lillydap
// dispatch framework: it accepts TCP connections, wraps each one as a
// lillydap.Source/Sink pair, and drives IngressEvent/EgressEvent from a
// per-connection goroutine until the peer disconnects.
//
// It exists to demonstrate wiring a Structural, not as a directory server —
// the registered handlers here only answer well enough to prove the
// pipeline moves bytes correctly.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/lillydap/lillydap"
)

func main() {
	os.Exit(run(os.Args))
}

// run executes the CLI and returns an exit code, kept separate from main
// so it can be driven from a test with an arbitrary argv.
func run(args []string) int {
	if len(args) < 2 {
		printUsage(os.Stdout)
		return 1
	}
	switch args[1] {
	case "serve":
		return serveCmd(args[2:])
	case "version":
		fmt.Fprintln(os.Stdout, "lillydapd (example server)")
		return 0
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[1])
		fmt.Fprintln(os.Stderr, "run 'lillydapd help' for usage")
		return 1
	}
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "usage: lillydapd <command> [flags]")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  serve     accept connections and run the dispatch pipeline")
	fmt.Fprintln(w, "  version   print the binary name")
	fmt.Fprintln(w, "  help      show this message")
}

func serveCmd(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":3890", "listen address")
	readTimeout := fs.Duration("read-timeout", 50*time.Millisecond, "per-poll read deadline, emulating a non-blocking socket")
	rejectWrites := fs.Bool("reject-writes", false, "reject AddRequest/ModifyRequest/DelRequest/ModifyDNRequest (read-only mode)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := lillydap.NewDefaultLogger(os.Stderr)

	registry := lillydap.NewOpRegistry()
	registry.SetBindRequest(handleBind)
	registry.SetUnbindRequest(handleUnbind)
	registry.SetSearchRequest(handleSearch)

	ingressReject := lillydap.RejectMask{}
	if *rejectWrites {
		ingressReject = ingressReject.Set(lillydap.OpAddRequest).
			Set(lillydap.OpModifyRequest).
			Set(lillydap.OpDelRequest).
			Set(lillydap.OpModifyDNRequest)
	}

	def := lillydap.NewStructural(
		lillydap.WithRegistry(registry),
		lillydap.WithLogger(log),
		lillydap.WithIngressReject(ingressReject),
	)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen: %v\n", err)
		return 1
	}
	defer ln.Close()
	log.Info("listening", "addr", *addr)

	for {
		nc, err := ln.Accept()
		if err != nil {
			log.Warn("accept failed", "err", err)
			continue
		}
		go serveConn(def, nc, *readTimeout)
	}
}

func serveConn(def *lillydap.Structural, nc net.Conn, readTimeout time.Duration) {
	defer nc.Close()
	rw := &deadlineConn{Conn: nc, timeout: readTimeout}
	conn := lillydap.NewConnection(def, rw, rw, 0)
	defer conn.Close()

	for {
		if _, err := conn.IngressEvent(); err != nil {
			if lerr, ok := err.(*lillydap.Error); !ok || lerr.Fatal {
				return
			}
		}
		if _, err := conn.EgressEvent(); err != nil {
			return
		}
	}
}

// deadlineConn adapts a blocking net.Conn to lillydap's non-blocking
// Source/Sink contract via a short read/write deadline: a timeout is
// reported back as wouldBlock rather than a real I/O error, the same
// trick ps78674-ldapserver's ReadTimeout option applies per-Accept.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (d *deadlineConn) ReadAvailable(p []byte) (int, bool, error) {
	if len(p) == 0 {
		return 0, false, nil
	}
	d.Conn.SetReadDeadline(time.Now().Add(d.timeout))
	n, err := d.Conn.Read(p)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, true, nil
		}
		return n, false, err
	}
	return n, false, nil
}

func (d *deadlineConn) WriteAvailable(p []byte) (int, bool, error) {
	if len(p) == 0 {
		return 0, false, nil
	}
	d.Conn.SetWriteDeadline(time.Now().Add(d.timeout))
	n, err := d.Conn.Write(p)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, true, nil
		}
		return n, false, err
	}
	return n, false, nil
}

func handleBind(conn *lillydap.Connection, pool *lillydap.Pool, msgid lillydap.MessageID, op *lillydap.Cursor, ctrls lillydap.Controls) error {
	req, err := lillydap.DecodeBindRequest(op)
	if err != nil {
		return err
	}
	resp := &lillydap.BindResponse{LDAPResult: lillydap.LDAPResult{ResultCode: lillydap.ResultSuccess}}
	if req.Name == "" {
		resp.MatchedDN = ""
	}
	return lillydap.PutOperation(conn, msgid, lillydap.OpBindResponse, resp.Encode(), nil)
}

func handleUnbind(conn *lillydap.Connection, pool *lillydap.Pool, msgid lillydap.MessageID, op *lillydap.Cursor, ctrls lillydap.Controls) error {
	conn.Close()
	return nil
}

func handleSearch(conn *lillydap.Connection, pool *lillydap.Pool, msgid lillydap.MessageID, op *lillydap.Cursor, ctrls lillydap.Controls) error {
	if _, err := lillydap.DecodeSearchRequest(op); err != nil {
		return err
	}
	done := &lillydap.SearchResultDone{LDAPResult: lillydap.LDAPResult{ResultCode: lillydap.ResultSuccess}}
	return lillydap.PutOperation(conn, msgid, lillydap.OpSearchResultDone, done.Encode(), nil)
}
