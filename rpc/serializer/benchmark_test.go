package serializer

import (
	"testing"

	"github.com/squirreldb/squirreldb-go/rpc/common"
)

// benchmarkMessages returns a set of messages for targeted benchmarking
func benchmarkMessages() map[string]common.Message {
	// Flat payload resembling a typical user document
	smallDoc := map[string]any{
		"name":  "alice",
		"email": "alice@example.com",
		"admin": true,
	}

	// Nested payload with a larger text field
	largeDoc := map[string]any{
		"title": "Lorem ipsum dolor sit amet",
		"body":  string(make([]byte, 4096)),
		"meta": map[string]any{
			"author": "alice",
			"tags":   []any{"draft", "internal", "2026"},
		},
	}

	return map[string]common.Message{
		"Ping": {
			MsgType: common.MsgTPing,
			ID:      "1",
		},
		"Query": {
			MsgType: common.MsgTQuery,
			ID:      "2",
			Query:   `db.table("users").filter(doc => doc.admin === true).run()`,
		},
		"SmallInsert": {
			MsgType:    common.MsgTInsert,
			ID:         "3",
			Collection: "users",
			Data:       smallDoc,
		},
		"LargeInsert": {
			MsgType:    common.MsgTInsert,
			ID:         "4",
			Collection: "articles",
			Data:       largeDoc,
		},
		"ChangeNotification": {
			MsgType: common.MsgTChange,
			ID:      "5",
			Change: &common.Change{
				Type:    "update",
				NewDoc:  map[string]any{"id": "doc-1", "data": smallDoc},
				OldData: smallDoc,
			},
		},
		"Error": {
			MsgType: common.MsgTError,
			ID:      "6",
			Err:     "Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
		},
	}
}

// BenchmarkSerialize benchmarks serialization for both encodings with various message types
func BenchmarkSerialize(b *testing.B) {
	messages := benchmarkMessages()

	for name, factory := range testSerializers {
		for msgName, msg := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					_, err := serializer.Serialize(msg)
					if err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize benchmarks deserialization for both encodings with various message types
func BenchmarkDeserialize(b *testing.B) {
	messages := benchmarkMessages()

	for name, factory := range testSerializers {
		for msgName, msg := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()

				data, err := serializer.Serialize(msg)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					var result common.Message
					if err := serializer.Deserialize(data, &result); err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkPayloadSize reports the serialized size of each message per encoding
func BenchmarkPayloadSize(b *testing.B) {
	messages := benchmarkMessages()

	for name, factory := range testSerializers {
		for msgName, msg := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()

				data, err := serializer.Serialize(msg)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}

				b.ReportMetric(float64(len(data)), "bytes/msg")
			})
		}
	}
}
