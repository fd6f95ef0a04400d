package db

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/squirreldb/squirreldb-go/lib/document"
	"github.com/squirreldb/squirreldb-go/lib/query"
)

var (
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Checks the connection to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.Ping(); err != nil {
				return err
			}
			fmt.Printf("pong (session %s)\n", store.SessionID())
			return nil
		},
	}
	queryCmd = &cobra.Command{
		Use:   "query [query]",
		Short: "Runs a query and prints the matching documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := store.Query(args[0])
			if err != nil {
				return err
			}
			for _, doc := range docs {
				printDocument(&doc)
			}
			fmt.Printf("%d document(s)\n", len(docs))
			return nil
		},
	}
	insertCmd = &cobra.Command{
		Use:   "insert [collection] [json]",
		Short: "Inserts a document into a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseData(args[1])
			if err != nil {
				return err
			}
			doc, err := store.Insert(args[0], data)
			if err != nil {
				return err
			}
			printDocument(doc)
			return nil
		},
	}
	updateCmd = &cobra.Command{
		Use:   "update [collection] [documentID] [json]",
		Short: "Replaces the payload of a document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parseData(args[2])
			if err != nil {
				return err
			}
			doc, err := store.Update(args[0], args[1], data)
			if err != nil {
				return err
			}
			printDocument(doc)
			return nil
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [collection] [documentID]",
		Short: "Deletes a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := store.Delete(args[0], args[1])
			if err != nil {
				return err
			}
			if doc != nil {
				printDocument(doc)
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}
	collectionsCmd = &cobra.Command{
		Use:   "collections",
		Short: "Lists all collections on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := store.ListCollections()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			fmt.Printf("%d collection(s)\n", len(names))
			return nil
		},
	}
	subscribeCmd = &cobra.Command{
		Use:   "subscribe [query]",
		Short: "Subscribes to a change query and streams events until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamChanges(args[0])
		},
	}
	watchCmd = &cobra.Command{
		Use:   "watch [table]",
		Short: "Streams all changes of a table until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamChanges(query.Table(args[0]).Changes().Compile())
		},
	}
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseData decodes a JSON object argument into a document payload
func parseData(arg string) (map[string]any, error) {
	data := map[string]any{}
	if err := json.Unmarshal([]byte(arg), &data); err != nil {
		return nil, fmt.Errorf("data must be a JSON object: %w", err)
	}
	return data, nil
}

// printDocument renders a document as indented JSON
func printDocument(doc *document.Document) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Printf("%+v\n", doc)
		return
	}
	fmt.Println(string(out))
}

// streamChanges subscribes to the given change query and prints every event
// until the process is interrupted
func streamChanges(changeQuery string) error {
	sub, err := store.Subscribe(changeQuery, func(event document.ChangeEvent) {
		fmt.Printf("[%s]\n", event.Type)
		switch {
		case event.NewDoc != nil:
			printDocument(event.NewDoc)
		case event.Document != nil:
			printDocument(event.Document)
		case event.OldData != nil:
			if out, err := json.MarshalIndent(event.OldData, "", "  "); err == nil {
				fmt.Println(string(out))
			}
		}
	})
	if err != nil {
		return err
	}

	fmt.Printf("subscribed (id %s), press Ctrl+C to stop\n", sub.ID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	if err := store.Unsubscribe(sub); err != nil {
		return err
	}
	return store.Close()
}
