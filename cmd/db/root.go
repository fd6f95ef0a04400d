package db

import (
	"github.com/spf13/cobra"
	"github.com/squirreldb/squirreldb-go/cmd/util"
	"github.com/squirreldb/squirreldb-go/lib/document"
	"github.com/squirreldb/squirreldb-go/rpc/client"
	"github.com/squirreldb/squirreldb-go/rpc/transport/tcp"
)

var (
	store document.IDocumentStore

	// DocumentCommands represents the document store command group
	DocumentCommands = &cobra.Command{
		Use:               "db",
		Short:             "Perform document store operations",
		PersistentPreRunE: setupStoreClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags to the db command
	util.SetupClientFlags(DocumentCommands)

	// Add subcommands
	DocumentCommands.AddCommand(pingCmd)
	DocumentCommands.AddCommand(queryCmd)
	DocumentCommands.AddCommand(insertCmd)
	DocumentCommands.AddCommand(updateCmd)
	DocumentCommands.AddCommand(deleteCmd)
	DocumentCommands.AddCommand(collectionsCmd)
	DocumentCommands.AddCommand(subscribeCmd)
	DocumentCommands.AddCommand(watchCmd)
	DocumentCommands.AddCommand(perfTestCmd)
}

// setupStoreClient connects the document store client
func setupStoreClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration
	config := util.GetClientConfig()

	// Create the document store client
	var err error
	store, err = client.NewDocumentStore(
		*config,
		tcp.NewTCPClientTransport(),
	)

	return err
}
