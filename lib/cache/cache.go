package cache

import (
	"bufio"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/squirreldb/squirreldb-go/lib/document"
)

const (
	// DefaultPort is the default port of the SquirrelDB cache service.
	DefaultPort = 6379

	// DefaultConnectTimeout bounds dialing a cache connection.
	DefaultConnectTimeout = 5 * time.Second
)

// RESP reply type tags, the first byte of every reply line
const (
	respSimpleString = '+'
	respError        = '-'
	respInteger      = ':'
	respBulkString   = '$'
	respArray        = '*'
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// reply is one decoded RESP reply. Array elements are flattened to strings,
// integer elements are rendered in decimal.
type reply struct {
	kind    byte
	str     string
	integer int64
	elems   []string
	isNull  bool
}

// cacheClient implements ICache over a single TCP connection
type cacheClient struct {
	conn   net.Conn
	reader *bufio.Reader

	mu     sync.Mutex // Serializes command/reply exchanges
	closed atomic.Bool
}

// --------------------------------------------------------------------------
// Client Factory Methods
// --------------------------------------------------------------------------

// Connect dials the cache service and returns a ready-to-use client. The
// dial is bounded by DefaultConnectTimeout.
func Connect(host string, port int) (ICache, error) {
	return ConnectTimeout(host, port, DefaultConnectTimeout)
}

// ConnectTimeout dials the cache service with an explicit dial timeout
func ConnectTimeout(host string, port int, timeout time.Duration) (ICache, error) {
	if host == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "no host provided")
	}
	if port <= 0 || port > 65535 {
		return nil, document.NewErrorf(document.ErrCInvalidArgument, "invalid port %d", port)
	}

	endpoint := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", endpoint, timeout)
	if err != nil {
		return nil, document.NewErrorf(document.ErrCConnectFailed, "failed to connect to cache at %s: %v", endpoint, err)
	}

	// Commands are small, send them immediately
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			conn.Close()
			return nil, document.NewErrorf(document.ErrCConnectFailed, "failed to configure connection: %v", err)
		}
	}

	glog.Infof("Connected to cache at %s", endpoint)

	return &cacheClient{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see ICache)
// --------------------------------------------------------------------------

func (c *cacheClient) Get(key string) (string, error) {
	if key == "" {
		return "", document.NewError(document.ErrCInvalidArgument, "key must not be empty")
	}

	r, err := c.exec("GET", key)
	if err != nil {
		return "", err
	}
	if r.kind == respBulkString && r.isNull {
		return "", document.NewErrorf(document.ErrCNotFound, "key %q not found", key)
	}
	if r.kind != respBulkString {
		return "", unexpectedReply("GET", r)
	}
	return r.str, nil
}

func (c *cacheClient) Set(key, value string, ttlSeconds int) error {
	if key == "" {
		return document.NewError(document.ErrCInvalidArgument, "key must not be empty")
	}

	var r *reply
	var err error
	if ttlSeconds > 0 {
		r, err = c.exec("SET", key, value, "EX", strconv.Itoa(ttlSeconds))
	} else {
		r, err = c.exec("SET", key, value)
	}
	if err != nil {
		return err
	}
	if r.kind != respSimpleString || r.str != "OK" {
		return unexpectedReply("SET", r)
	}
	return nil
}

func (c *cacheClient) Del(keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, document.NewError(document.ErrCInvalidArgument, "no keys provided")
	}

	r, err := c.exec(append([]string{"DEL"}, keys...)...)
	if err != nil {
		return 0, err
	}
	return expectInteger("DEL", r)
}

func (c *cacheClient) Exists(key string) (bool, error) {
	if key == "" {
		return false, document.NewError(document.ErrCInvalidArgument, "key must not be empty")
	}

	r, err := c.exec("EXISTS", key)
	if err != nil {
		return false, err
	}
	n, err := expectInteger("EXISTS", r)
	return n > 0, err
}

func (c *cacheClient) Expire(key string, seconds int) (bool, error) {
	if key == "" {
		return false, document.NewError(document.ErrCInvalidArgument, "key must not be empty")
	}

	r, err := c.exec("EXPIRE", key, strconv.Itoa(seconds))
	if err != nil {
		return false, err
	}
	n, err := expectInteger("EXPIRE", r)
	return n == 1, err
}

func (c *cacheClient) TTL(key string) (int64, error) {
	if key == "" {
		return 0, document.NewError(document.ErrCInvalidArgument, "key must not be empty")
	}

	r, err := c.exec("TTL", key)
	if err != nil {
		return 0, err
	}
	return expectInteger("TTL", r)
}

func (c *cacheClient) Persist(key string) (bool, error) {
	if key == "" {
		return false, document.NewError(document.ErrCInvalidArgument, "key must not be empty")
	}

	r, err := c.exec("PERSIST", key)
	if err != nil {
		return false, err
	}
	n, err := expectInteger("PERSIST", r)
	return n == 1, err
}

func (c *cacheClient) Incr(key string) (int64, error) {
	if key == "" {
		return 0, document.NewError(document.ErrCInvalidArgument, "key must not be empty")
	}

	r, err := c.exec("INCR", key)
	if err != nil {
		return 0, err
	}
	return expectInteger("INCR", r)
}

func (c *cacheClient) Decr(key string) (int64, error) {
	if key == "" {
		return 0, document.NewError(document.ErrCInvalidArgument, "key must not be empty")
	}

	r, err := c.exec("DECR", key)
	if err != nil {
		return 0, err
	}
	return expectInteger("DECR", r)
}

func (c *cacheClient) IncrBy(key string, amount int64) (int64, error) {
	if key == "" {
		return 0, document.NewError(document.ErrCInvalidArgument, "key must not be empty")
	}

	r, err := c.exec("INCRBY", key, strconv.FormatInt(amount, 10))
	if err != nil {
		return 0, err
	}
	return expectInteger("INCRBY", r)
}

func (c *cacheClient) Keys(pattern string) ([]string, error) {
	if pattern == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "pattern must not be empty")
	}

	r, err := c.exec("KEYS", pattern)
	if err != nil {
		return nil, err
	}
	if r.kind != respArray {
		return nil, unexpectedReply("KEYS", r)
	}
	if r.elems == nil {
		return []string{}, nil
	}
	return r.elems, nil
}

func (c *cacheClient) DBSize() (int64, error) {
	r, err := c.exec("DBSIZE")
	if err != nil {
		return 0, err
	}
	return expectInteger("DBSIZE", r)
}

func (c *cacheClient) FlushDB() error {
	r, err := c.exec("FLUSHDB")
	if err != nil {
		return err
	}
	if r.kind != respSimpleString || r.str != "OK" {
		return unexpectedReply("FLUSHDB", r)
	}
	return nil
}

func (c *cacheClient) Ping() error {
	r, err := c.exec("PING")
	if err != nil {
		return err
	}
	if r.kind != respSimpleString || r.str != "PONG" {
		return unexpectedReply("PING", r)
	}
	return nil
}

func (c *cacheClient) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		return c.conn.Close()
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// exec sends one command and reads its reply. A RESP error reply maps to a
// ServerError, transport failures mark the client dead.
func (c *cacheClient) exec(args ...string) (*reply, error) {
	if c.closed.Load() {
		return nil, document.NewError(document.ErrCClosed, "cache connection closed")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writeCommand(args); err != nil {
		c.closed.Store(true)
		c.conn.Close()
		return nil, document.NewErrorf(document.ErrCSendFailed, "failed to send %s: %v", args[0], err)
	}

	r, err := c.readReply()
	if err != nil {
		c.closed.Store(true)
		c.conn.Close()
		return nil, document.NewErrorf(document.ErrCReceiveFailed, "failed to read %s reply: %v", args[0], err)
	}

	if r.kind == respError {
		return nil, document.NewError(document.ErrCServer, r.str)
	}
	return r, nil
}

// writeCommand encodes a command as a RESP array of bulk strings
func (c *cacheClient) writeCommand(args []string) error {
	var buf []byte
	buf = append(buf, respArray)
	buf = strconv.AppendInt(buf, int64(len(args)), 10)
	buf = append(buf, '\r', '\n')

	for _, arg := range args {
		buf = append(buf, respBulkString)
		buf = strconv.AppendInt(buf, int64(len(arg)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, arg...)
		buf = append(buf, '\r', '\n')
	}

	_, err := c.conn.Write(buf)
	return err
}

// readReply decodes one RESP reply, recursing for array elements
func (c *cacheClient) readReply() (*reply, error) {
	line, err := c.readLine()
	if err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, io.ErrUnexpectedEOF
	}

	r := &reply{kind: line[0]}
	content := line[1:]

	switch r.kind {
	case respSimpleString, respError:
		r.str = content

	case respInteger:
		r.integer, err = strconv.ParseInt(content, 10, 64)
		if err != nil {
			return nil, err
		}

	case respBulkString:
		length, err := strconv.Atoi(content)
		if err != nil {
			return nil, err
		}
		if length < 0 {
			r.isNull = true
			break
		}
		data := make([]byte, length+2) // Includes the trailing CRLF
		if _, err := io.ReadFull(c.reader, data); err != nil {
			return nil, err
		}
		r.str = string(data[:length])

	case respArray:
		count, err := strconv.Atoi(content)
		if err != nil {
			return nil, err
		}
		if count < 0 {
			r.isNull = true
			break
		}
		for i := 0; i < count; i++ {
			elem, err := c.readReply()
			if err != nil {
				return nil, err
			}
			switch elem.kind {
			case respBulkString, respSimpleString:
				r.elems = append(r.elems, elem.str)
			case respInteger:
				r.elems = append(r.elems, strconv.FormatInt(elem.integer, 10))
			default:
				r.elems = append(r.elems, "")
			}
		}

	default:
		return nil, document.NewErrorf(document.ErrCDecodeFailed, "unknown reply type %q", r.kind)
	}

	return r, nil
}

// readLine reads one CRLF-terminated line without the terminator
func (c *cacheClient) readLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return "", document.NewError(document.ErrCDecodeFailed, "malformed reply line")
	}
	return line[:len(line)-2], nil
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// expectInteger narrows a reply to its integer value
func expectInteger(cmd string, r *reply) (int64, error) {
	if r.kind != respInteger {
		return 0, unexpectedReply(cmd, r)
	}
	return r.integer, nil
}

// unexpectedReply builds the error for a reply the command contract does not
// allow
func unexpectedReply(cmd string, r *reply) error {
	return document.NewErrorf(document.ErrCDecodeFailed, "unexpected %q reply to %s", r.kind, cmd)
}
