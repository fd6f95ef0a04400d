package client

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/squirreldb/squirreldb-go/lib/document"
	"github.com/squirreldb/squirreldb-go/rpc/common"
	"github.com/squirreldb/squirreldb-go/rpc/transport"
)

// invokeRequest is a helper used by all operations to send a request over the
// transport. It applies the shared response conventions: an error-typed
// response or a response carrying an error field maps to a ServerError.
func invokeRequest(req *common.Message, tr transport.IConnTransport) (*common.Message, error) {
	resp, err := tr.Invoke(req)
	if err != nil {
		return nil, err
	}

	if resp.MsgType == common.MsgTError || resp.Err != "" {
		msg := resp.Err
		if msg == "" {
			msg = "unspecified server error"
		}
		return nil, document.NewError(document.ErrCServer, msg)
	}

	return resp, nil
}

// decodeDocument converts the raw data field of a response into a document
func decodeDocument(data any) (*document.Document, error) {
	doc := &document.Document{}
	if err := mapstructure.Decode(data, doc); err != nil {
		return nil, document.NewErrorf(document.ErrCDecodeFailed, "malformed document in response: %v", err)
	}
	return doc, nil
}

// decodeDocuments converts the raw data field of a query response into a
// document slice. A missing data field counts as an empty result.
func decodeDocuments(data any) ([]document.Document, error) {
	if data == nil {
		return []document.Document{}, nil
	}

	var docs []document.Document
	if err := mapstructure.Decode(data, &docs); err != nil {
		return nil, document.NewErrorf(document.ErrCDecodeFailed, "malformed document list in response: %v", err)
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return docs, nil
}

// decodeStrings converts the raw data field of a list response into a string
// slice
func decodeStrings(data any) ([]string, error) {
	if data == nil {
		return []string{}, nil
	}

	var items []string
	if err := mapstructure.Decode(data, &items); err != nil {
		return nil, document.NewErrorf(document.ErrCDecodeFailed, "malformed name list in response: %v", err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// toChangeEvent converts a wire-level change record into the event handed to
// subscription callbacks. Malformed document payloads leave the respective
// field nil instead of suppressing the event.
func toChangeEvent(change *common.Change) document.ChangeEvent {
	event := document.ChangeEvent{
		Type:    document.ParseChangeType(change.Type),
		OldData: change.OldData,
	}

	if change.Document != nil {
		if doc, err := decodeDocument(change.Document); err == nil {
			event.Document = doc
		}
	}
	if change.NewDoc != nil {
		if doc, err := decodeDocument(change.NewDoc); err == nil {
			event.NewDoc = doc
		}
	}

	return event
}
