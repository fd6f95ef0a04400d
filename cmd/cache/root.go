package cache

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/squirreldb/squirreldb-go/cmd/util"
	libcache "github.com/squirreldb/squirreldb-go/lib/cache"
)

var (
	cacheClient libcache.ICache

	// CacheCommands represents the cache command group
	CacheCommands = &cobra.Command{
		Use:               "cache",
		Short:             "Perform cache operations",
		PersistentPreRunE: setupCacheClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// The cache service runs on its own port, separate from the document store
	key := "host"
	CacheCommands.PersistentFlags().String(key, "localhost", util.WrapString("The hostname or IP address of the cache service"))
	key = "port"
	CacheCommands.PersistentFlags().Int(key, libcache.DefaultPort, util.WrapString("The TCP port of the cache service"))

	// Add subcommands
	CacheCommands.AddCommand(getCmd)
	CacheCommands.AddCommand(setCmd)
	CacheCommands.AddCommand(delCmd)
	CacheCommands.AddCommand(existsCmd)
	CacheCommands.AddCommand(expireCmd)
	CacheCommands.AddCommand(ttlCmd)
	CacheCommands.AddCommand(persistCmd)
	CacheCommands.AddCommand(incrCmd)
	CacheCommands.AddCommand(decrCmd)
	CacheCommands.AddCommand(incrByCmd)
	CacheCommands.AddCommand(keysCmd)
	CacheCommands.AddCommand(dbsizeCmd)
	CacheCommands.AddCommand(flushCmd)
	CacheCommands.AddCommand(pingCmd)
}

// setupCacheClient connects the cache client
func setupCacheClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	cacheClient, err = libcache.Connect(viper.GetString("host"), viper.GetInt("port"))
	return err
}
