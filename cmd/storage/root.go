package storage

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/squirreldb/squirreldb-go/cmd/util"
	libstorage "github.com/squirreldb/squirreldb-go/lib/storage"
)

var (
	objectStorage libstorage.IObjectStorage

	// StorageCommands represents the object storage command group
	StorageCommands = &cobra.Command{
		Use:               "storage",
		Short:             "Perform object storage operations",
		PersistentPreRunE: setupStorageClient,
	}

	bucketCommands = &cobra.Command{
		Use:   "buckets",
		Short: "Manage buckets",
	}

	objectCommands = &cobra.Command{
		Use:   "objects",
		Short: "Manage objects",
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Connection flags for the storage service
	key := "endpoint"
	StorageCommands.PersistentFlags().String(key, "http://localhost:9000", util.WrapString("The base URL of the S3-compatible storage service"))
	key = "access-key"
	StorageCommands.PersistentFlags().String(key, "", util.WrapString("The access key used to sign requests"))
	key = "secret-key"
	StorageCommands.PersistentFlags().String(key, "", util.WrapString("The secret key used to sign requests"))
	key = "region"
	StorageCommands.PersistentFlags().String(key, "", util.WrapString("The signing region (most S3-compatible services accept any value)"))

	// Add subcommands
	bucketCommands.AddCommand(bucketListCmd)
	bucketCommands.AddCommand(bucketCreateCmd)
	bucketCommands.AddCommand(bucketDeleteCmd)
	bucketCommands.AddCommand(bucketExistsCmd)

	objectCommands.AddCommand(objectListCmd)
	objectCommands.AddCommand(objectPutCmd)
	objectCommands.AddCommand(objectGetCmd)
	objectCommands.AddCommand(objectDeleteCmd)
	objectCommands.AddCommand(objectCopyCmd)
	objectCommands.AddCommand(objectPresignCmd)

	StorageCommands.AddCommand(bucketCommands)
	StorageCommands.AddCommand(objectCommands)
}

// setupStorageClient creates the object storage client
func setupStorageClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	objectStorage, err = libstorage.NewObjectStorage(context.Background(), libstorage.Options{
		Endpoint:  viper.GetString("endpoint"),
		AccessKey: viper.GetString("access-key"),
		SecretKey: viper.GetString("secret-key"),
		Region:    viper.GetString("region"),
	})
	return err
}
