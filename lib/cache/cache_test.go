package cache_test

import (
	"bufio"
	"io"
	"net"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/squirreldb/squirreldb-go/lib/cache"
	"github.com/squirreldb/squirreldb-go/lib/document"
)

// respServer is a scripted stand-in for the cache service. It records every
// decoded command and answers with pre-queued raw replies in order.
type respServer struct {
	listener net.Listener
	replies  chan string
	commands chan []string
}

func newRESPServer(t *testing.T) *respServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	s := &respServer{
		listener: listener,
		replies:  make(chan string, 16),
		commands: make(chan []string, 16),
	}
	t.Cleanup(func() { listener.Close() })

	go s.serve()
	return s
}

func (s *respServer) hostPort(t *testing.T) (string, int) {
	t.Helper()
	addr := s.listener.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

// script queues raw replies, one per expected command
func (s *respServer) script(replies ...string) {
	for _, r := range replies {
		s.replies <- r
	}
}

func (s *respServer) serve() {
	conn, err := s.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for {
		cmd, err := readCommand(reader)
		if err != nil {
			return
		}
		s.commands <- cmd

		select {
		case reply := <-s.replies:
			if _, err := conn.Write([]byte(reply)); err != nil {
				return
			}
		case <-time.After(time.Second):
			return
		}
	}
}

// readCommand decodes one RESP array-of-bulk-strings command
func readCommand(reader *bufio.Reader) ([]string, error) {
	line, err := readLine(reader)
	if err != nil {
		return nil, err
	}
	if len(line) < 2 || line[0] != '*' {
		return nil, io.ErrUnexpectedEOF
	}
	count, err := strconv.Atoi(line[1:])
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, count)
	for i := 0; i < count; i++ {
		line, err := readLine(reader)
		if err != nil {
			return nil, err
		}
		if len(line) < 2 || line[0] != '$' {
			return nil, io.ErrUnexpectedEOF
		}
		length, err := strconv.Atoi(line[1:])
		if err != nil {
			return nil, err
		}
		data := make([]byte, length+2)
		if _, err := io.ReadFull(reader, data); err != nil {
			return nil, err
		}
		args = append(args, string(data[:length]))
	}
	return args, nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return line[:len(line)-2], nil
}

// connect dials the scripted server and registers cleanup
func connect(t *testing.T, s *respServer) cache.ICache {
	t.Helper()

	host, port := s.hostPort(t)
	c, err := cache.Connect(host, port)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// lastCommand returns the next command the server decoded
func lastCommand(t *testing.T, s *respServer) []string {
	t.Helper()
	select {
	case cmd := <-s.commands:
		return cmd
	case <-time.After(time.Second):
		t.Fatal("no command reached the server")
		return nil
	}
}

// TestCacheSetGet tests the SET/GET cycle including command encoding
func TestCacheSetGet(t *testing.T) {
	server := newRESPServer(t)
	server.script("+OK\r\n", "$5\r\nhello\r\n")
	c := connect(t, server)

	if err := c.Set("greeting", "hello", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	assert.Equal(t, lastCommand(t, server), []string{"SET", "greeting", "hello"})

	value, err := c.Get("greeting")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	assert.Equal(t, value, "hello")
	assert.Equal(t, lastCommand(t, server), []string{"GET", "greeting"})
}

// TestCacheSetWithTTL tests that a positive ttl adds the EX argument pair
func TestCacheSetWithTTL(t *testing.T) {
	server := newRESPServer(t)
	server.script("+OK\r\n")
	c := connect(t, server)

	if err := c.Set("session", "token", 60); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	assert.Equal(t, lastCommand(t, server), []string{"SET", "session", "token", "EX", "60"})
}

// TestCacheGetMissing tests that a null bulk reply maps to NotFound
func TestCacheGetMissing(t *testing.T) {
	server := newRESPServer(t)
	server.script("$-1\r\n")
	c := connect(t, server)

	_, err := c.Get("nope")
	if document.CodeOf(err) != document.ErrCNotFound {
		t.Errorf("err = %v, want code %v", err, document.ErrCNotFound)
	}
}

// TestCacheIntegerCommands tests every command with an integer reply contract
func TestCacheIntegerCommands(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		run   func(c cache.ICache) (any, error)
		want  any
	}{
		{"Del", ":2\r\n", func(c cache.ICache) (any, error) { return c.Del("a", "b") }, int64(2)},
		{"Exists", ":1\r\n", func(c cache.ICache) (any, error) { return c.Exists("a") }, true},
		{"ExistsNot", ":0\r\n", func(c cache.ICache) (any, error) { return c.Exists("a") }, false},
		{"Expire", ":1\r\n", func(c cache.ICache) (any, error) { return c.Expire("a", 10) }, true},
		{"TTL", ":42\r\n", func(c cache.ICache) (any, error) { return c.TTL("a") }, int64(42)},
		{"TTLMissing", ":-2\r\n", func(c cache.ICache) (any, error) { return c.TTL("a") }, int64(-2)},
		{"Persist", ":1\r\n", func(c cache.ICache) (any, error) { return c.Persist("a") }, true},
		{"Incr", ":1\r\n", func(c cache.ICache) (any, error) { return c.Incr("a") }, int64(1)},
		{"Decr", ":-1\r\n", func(c cache.ICache) (any, error) { return c.Decr("a") }, int64(-1)},
		{"IncrBy", ":15\r\n", func(c cache.ICache) (any, error) { return c.IncrBy("a", 5) }, int64(15)},
		{"DBSize", ":3\r\n", func(c cache.ICache) (any, error) { return c.DBSize() }, int64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newRESPServer(t)
			server.script(tt.reply)
			c := connect(t, server)

			got, err := tt.run(c)
			if err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("result = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestCacheKeys tests array replies including the empty result
func TestCacheKeys(t *testing.T) {
	server := newRESPServer(t)
	server.script("*2\r\n$5\r\nuser1\r\n$5\r\nuser2\r\n", "*0\r\n")
	c := connect(t, server)

	keys, err := c.Keys("user*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	assert.Equal(t, keys, []string{"user1", "user2"})
	assert.Equal(t, lastCommand(t, server), []string{"KEYS", "user*"})

	keys, err = c.Keys("none*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	assert.Equal(t, keys, []string{})
}

// TestCachePingFlush tests the simple-string commands
func TestCachePingFlush(t *testing.T) {
	server := newRESPServer(t)
	server.script("+PONG\r\n", "+OK\r\n")
	c := connect(t, server)

	if err := c.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if err := c.FlushDB(); err != nil {
		t.Fatalf("FlushDB failed: %v", err)
	}
}

// TestCacheServerError tests that a RESP error reply maps to a ServerError
// and keeps the connection usable
func TestCacheServerError(t *testing.T) {
	server := newRESPServer(t)
	server.script("-ERR value is not an integer\r\n", "+PONG\r\n")
	c := connect(t, server)

	_, err := c.Incr("text-key")
	if document.CodeOf(err) != document.ErrCServer {
		t.Fatalf("err = %v, want code %v", err, document.ErrCServer)
	}

	if err := c.Ping(); err != nil {
		t.Errorf("Ping after server error failed: %v", err)
	}
}

// TestCacheInvalidArguments tests the argument validation of the client
func TestCacheInvalidArguments(t *testing.T) {
	server := newRESPServer(t)
	c := connect(t, server)

	if _, err := c.Get(""); document.CodeOf(err) != document.ErrCInvalidArgument {
		t.Errorf("Get err = %v, want code %v", err, document.ErrCInvalidArgument)
	}
	if err := c.Set("", "v", 0); document.CodeOf(err) != document.ErrCInvalidArgument {
		t.Errorf("Set err = %v, want code %v", err, document.ErrCInvalidArgument)
	}
	if _, err := c.Del(); document.CodeOf(err) != document.ErrCInvalidArgument {
		t.Errorf("Del err = %v, want code %v", err, document.ErrCInvalidArgument)
	}

	if _, err := cache.Connect("", cache.DefaultPort); document.CodeOf(err) != document.ErrCInvalidArgument {
		t.Errorf("Connect err = %v, want code %v", err, document.ErrCInvalidArgument)
	}
}

// TestCacheClosed tests that operations after Close fail fast and that Close
// is idempotent
func TestCacheClosed(t *testing.T) {
	server := newRESPServer(t)
	c := connect(t, server)

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	if _, err := c.Get("k"); document.CodeOf(err) != document.ErrCClosed {
		t.Errorf("Get after close = %v, want code %v", err, document.ErrCClosed)
	}
}

// TestCacheConnectionRefused tests dialing a dead endpoint
func TestCacheConnectionRefused(t *testing.T) {
	server := newRESPServer(t)
	host, port := server.hostPort(t)
	server.listener.Close()

	_, err := cache.ConnectTimeout(host, port, 500*time.Millisecond)
	if document.CodeOf(err) != document.ErrCConnectFailed {
		t.Errorf("err = %v, want code %v", err, document.ErrCConnectFailed)
	}
}
