package mcp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewRequest builds a JSON-RPC 2.0 request.
func NewRequest(id uint64, method string, params json.RawMessage) Request {
	return Request{JSONRPC: "2.0", ID: id, Method: method, Params: params}
}

// Notification is a JSON-RPC 2.0 notification: no id, no reply.
type Notification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewNotification builds a JSON-RPC 2.0 notification.
func NewNotification(method string, params json.RawMessage) Notification {
	return Notification{JSONRPC: "2.0", Method: method, Params: params}
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// IntoResult extracts the result or the error from a response.
func (r Response) IntoResult() (json.RawMessage, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	if len(r.Result) == 0 {
		return json.RawMessage("null"), nil
	}
	return r.Result, nil
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}

// Transport errors.
var (
	ErrStdinNotAvailable  = errors.New("stdin not available")
	ErrStdoutNotAvailable = errors.New("stdout not available")
	ErrProcessExited      = errors.New("process exited unexpectedly")
	ErrShutdown           = errors.New("transport is shut down")
)

// TimeoutError is a request exceeding its deadline.
type TimeoutError struct {
	TimeoutMS uint64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %dms", e.TimeoutMS)
}

// IDMismatchError is a response whose id does not match the request.
type IDMismatchError struct {
	Request  uint64
	Response uint64
}

func (e *IDMismatchError) Error() string {
	return fmt.Sprintf("response id %d doesn't match request id %d", e.Response, e.Request)
}

// Transport speaks newline-delimited JSON-RPC 2.0 with a child
// process over its stdin/stdout. Responses are assumed to arrive in
// request order.
type Transport struct {
	mu       sync.Mutex
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stdout   *bufio.Scanner
	nextID   atomic.Uint64
	shutdown atomic.Bool

	debug      bool
	serverName string
}

// SpawnTransport starts the server process with piped stdin/stdout.
// Stderr is inherited so server diagnostics stay visible.
func SpawnTransport(def ServerDef, serverName string, debug bool) (*Transport, error) {
	cmd := exec.Command(def.Command, def.Args...)
	cmd.Env = os.Environ()
	for k, v := range def.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	if def.Cwd != "" {
		cmd.Dir = def.Cwd
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to spawn process: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to spawn process: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to spawn process: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	t := &Transport{
		cmd:        cmd,
		stdin:      stdin,
		stdout:     scanner,
		debug:      debug,
		serverName: serverName,
	}
	t.nextID.Store(1)
	return t, nil
}

func (t *Transport) nextRequestID() uint64 {
	return t.nextID.Add(1) - 1
}

func (t *Transport) writeMessage(msg any) error {
	if t.shutdown.Load() {
		return ErrShutdown
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stdin == nil {
		return ErrStdinNotAvailable
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	if _, err := t.stdin.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("IO error: %w", err)
	}
	return nil
}

// Send writes a request to the server.
func (t *Transport) Send(req Request) error {
	if t.debug {
		data, _ := json.Marshal(req)
		fmt.Fprintf(os.Stderr, "MCP JSON-RPC [%s] -> %s: %s\n", t.serverName, req.Method, data)
	}
	return t.writeMessage(req)
}

// SendNotification writes a notification; no reply is read.
func (t *Transport) SendNotification(n Notification) error {
	if t.debug {
		data, _ := json.Marshal(n)
		fmt.Fprintf(os.Stderr, "MCP JSON-RPC [%s] -> %s (notification): %s\n", t.serverName, n.Method, data)
	}
	return t.writeMessage(n)
}

// Receive reads one response line from the server.
func (t *Transport) Receive() (Response, error) {
	if t.shutdown.Load() {
		return Response{}, ErrShutdown
	}
	if !t.stdout.Scan() {
		if err := t.stdout.Err(); err != nil {
			return Response{}, fmt.Errorf("IO error: %w", err)
		}
		return Response{}, ErrProcessExited
	}
	line := t.stdout.Text()
	if t.debug {
		fmt.Fprintf(os.Stderr, "MCP JSON-RPC [%s] <- %s\n", t.serverName, line)
	}
	var resp Response
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		return Response{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return resp, nil
}

// Request sends a request and waits for its response, enforcing the
// timeout and the id pairing.
func (t *Transport) Request(method string, params json.RawMessage, timeoutMS uint64) (json.RawMessage, error) {
	id := t.nextRequestID()
	if err := t.Send(NewRequest(id, method, params)); err != nil {
		return nil, err
	}

	type received struct {
		resp Response
		err  error
	}
	ch := make(chan received, 1)
	go func() {
		resp, err := t.Receive()
		ch <- received{resp, err}
	}()

	var resp Response
	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		resp = r.resp
	case <-time.After(time.Duration(timeoutMS) * time.Millisecond):
		return nil, &TimeoutError{TimeoutMS: timeoutMS}
	}

	if resp.ID != id {
		return nil, &IDMismatchError{Request: id, Response: resp.ID}
	}
	return resp.IntoResult()
}

// Shutdown closes stdin to signal EOF, waits briefly, then kills the
// process if it is still running.
func (t *Transport) Shutdown() error {
	t.shutdown.Store(true)

	t.mu.Lock()
	if t.stdin != nil {
		t.stdin.Close()
		t.stdin = nil
	}
	cmd := t.cmd
	t.cmd = nil
	t.mu.Unlock()

	if cmd == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(time.Second):
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
	}
	return nil
}

// IsShutdown reports whether Shutdown was called.
func (t *Transport) IsShutdown() bool {
	return t.shutdown.Load()
}

// IsRunning reports whether the child process is still alive.
func (t *Transport) IsRunning() bool {
	if t.shutdown.Load() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cmd != nil && t.cmd.ProcessState == nil
}
