package client

import (
	"github.com/golang/glog"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/squirreldb/squirreldb-go/lib/document"
	"github.com/squirreldb/squirreldb-go/rpc/client/internal"
	"github.com/squirreldb/squirreldb-go/rpc/common"
	"github.com/squirreldb/squirreldb-go/rpc/transport"
)

// subscriptionState tracks one active change feed
type subscriptionState struct {
	query string
	queue *internal.EventQueue[document.ChangeEvent] // nil for unbuffered feeds
}

// documentStore implements document.IDocumentStore on top of a connection
// transport
type documentStore struct {
	config    common.ClientConfig
	transport transport.IConnTransport
	subs      *xsync.MapOf[string, *subscriptionState]
}

// NewDocumentStore connects the given transport and returns a document store
// bound to it. The function takes a config and a transport as parameters.
func NewDocumentStore(config common.ClientConfig, tr transport.IConnTransport) (document.IDocumentStore, error) {
	// Connect the transport
	if err := tr.Connect(config); err != nil {
		return nil, err
	}

	return &documentStore{
		config:    config,
		transport: tr,
		subs:      xsync.NewMapOf[string, *subscriptionState](),
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see document.IDocumentStore)
// --------------------------------------------------------------------------

func (s *documentStore) Ping() error {
	resp, err := invokeRequest(common.NewPingRequest(), s.transport)
	if err != nil {
		return err
	}
	if resp.MsgType != common.MsgTPong {
		return document.NewErrorf(document.ErrCDecodeFailed, "unexpected response type %s to ping", resp.MsgType)
	}
	return nil
}

func (s *documentStore) Query(query string) ([]document.Document, error) {
	if query == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "query must not be empty")
	}

	resp, err := invokeRequest(common.NewQueryRequest(query), s.transport)
	if err != nil {
		return nil, err
	}
	return decodeDocuments(resp.Data)
}

func (s *documentStore) Insert(collection string, data map[string]any) (*document.Document, error) {
	if collection == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "collection must not be empty")
	}

	resp, err := invokeRequest(common.NewInsertRequest(collection, data), s.transport)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, document.NewError(document.ErrCDecodeFailed, "insert response carries no document")
	}
	return decodeDocument(resp.Data)
}

func (s *documentStore) Update(collection, documentID string, data map[string]any) (*document.Document, error) {
	if collection == "" || documentID == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "collection and document id must not be empty")
	}

	resp, err := invokeRequest(common.NewUpdateRequest(collection, documentID, data), s.transport)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, document.NewError(document.ErrCDecodeFailed, "update response carries no document")
	}
	return decodeDocument(resp.Data)
}

func (s *documentStore) Delete(collection, documentID string) (*document.Document, error) {
	if collection == "" || documentID == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "collection and document id must not be empty")
	}

	resp, err := invokeRequest(common.NewDeleteRequest(collection, documentID), s.transport)
	if err != nil {
		return nil, err
	}

	// Servers may omit the last stored state of the removed document
	if resp.Data == nil {
		return nil, nil
	}
	return decodeDocument(resp.Data)
}

func (s *documentStore) ListCollections() ([]string, error) {
	resp, err := invokeRequest(common.NewListCollectionsRequest(), s.transport)
	if err != nil {
		return nil, err
	}
	return decodeStrings(resp.Data)
}

func (s *documentStore) Subscribe(query string, fn document.ChangeFunc) (*document.Subscription, error) {
	if query == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "query must not be empty")
	}
	if fn == nil {
		return nil, document.NewError(document.ErrCInvalidArgument, "callback must not be nil")
	}

	resp, err := invokeRequest(common.NewSubscribeRequest(query), s.transport)
	if err != nil {
		return nil, err
	}

	// The echoed request id doubles as the subscription id for all
	// notifications that follow
	id := resp.ID
	state := &subscriptionState{query: query}

	if s.config.BufferedSubscriptions {
		state.queue = internal.NewEventQueue[document.ChangeEvent]()

		// Deliver queued events on a dedicated goroutine so a slow callback
		// cannot stall the connection's dispatch goroutine
		go func() {
			for event := range state.queue.Recv() {
				fn(*event)
			}
		}()
	}

	s.subs.Store(id, state)
	s.transport.Subscribe(id, func(msg *common.Message) {
		event := toChangeEvent(msg.Change)
		if state.queue != nil {
			state.queue.Push(&event)
		} else {
			fn(event)
		}
	})

	glog.V(2).Infof("Subscribed to %q with id %s", query, id)

	return &document.Subscription{ID: id, Query: query}, nil
}

func (s *documentStore) Unsubscribe(sub *document.Subscription) error {
	if sub == nil || sub.ID == "" {
		return document.NewError(document.ErrCInvalidArgument, "subscription must not be nil")
	}

	// Remove the local routing first, no events are delivered past this point
	s.transport.Unsubscribe(sub.ID)
	if state, ok := s.subs.LoadAndDelete(sub.ID); ok && state.queue != nil {
		state.queue.Close()
	}

	// Tell the server on a best-effort basis, the reply is not awaited
	if err := s.transport.Post(common.NewUnsubscribeRequest(sub.ID)); err != nil {
		glog.V(2).Infof("Unsubscribe notice for %s not sent: %v", sub.ID, err)
	}

	return nil
}

func (s *documentStore) SessionID() string {
	return s.transport.SessionID()
}

func (s *documentStore) IsConnected() bool {
	return s.transport.IsConnected()
}

func (s *documentStore) Close() error {
	// Stop local delivery before tearing down the connection
	s.subs.Range(func(id string, state *subscriptionState) bool {
		s.transport.Unsubscribe(id)
		if state.queue != nil {
			state.queue.Close()
		}
		s.subs.Delete(id)
		return true
	})

	return s.transport.Close()
}
