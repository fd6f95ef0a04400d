// Package cache provides a client for the SquirrelDB cache service. The
// cache speaks RESP (the Redis serialization protocol) over its own TCP
// connection, independent of the document store protocol.
//
// The client is strictly synchronous: every command is one request followed
// by one reply, there is no pipelining and no server push. A single
// connection may be shared by multiple goroutines, commands are serialized
// internally.
//
// Example:
//
//	c, err := cache.Connect("localhost", cache.DefaultPort)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	if err := c.Set("greeting", "hello", 60); err != nil {
//		log.Fatal(err)
//	}
//	value, err := c.Get("greeting")
package cache
