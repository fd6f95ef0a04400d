package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	listPrefix string
	listMax    int32
	putType    string
	getOut     string
	signExpiry time.Duration

	bucketListCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists all buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buckets, err := objectStorage.ListBuckets(context.Background())
			if err != nil {
				return err
			}
			for _, bucket := range buckets {
				fmt.Printf("%s\t%s\n", bucket.Name, bucket.CreatedAt.Format(time.RFC3339))
			}
			fmt.Printf("%d bucket(s)\n", len(buckets))
			return nil
		},
	}
	bucketCreateCmd = &cobra.Command{
		Use:   "create [bucket]",
		Short: "Creates a new bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := objectStorage.CreateBucket(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("created successfully")
			return nil
		},
	}
	bucketDeleteCmd = &cobra.Command{
		Use:   "delete [bucket]",
		Short: "Deletes an empty bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := objectStorage.DeleteBucket(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}
	bucketExistsCmd = &cobra.Command{
		Use:   "exists [bucket]",
		Short: "Checks if a bucket exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := objectStorage.BucketExists(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("bucket=%s, found=%t\n", args[0], found)
			return nil
		},
	}

	objectListCmd = &cobra.Command{
		Use:   "list [bucket]",
		Short: "Lists the objects of a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objects, err := objectStorage.ListObjects(context.Background(), args[0], listPrefix, listMax)
			if err != nil {
				return err
			}
			for _, object := range objects {
				fmt.Printf("%s\t%d bytes\t%s\n", object.Key, object.Size, object.LastModified.Format(time.RFC3339))
			}
			fmt.Printf("%d object(s)\n", len(objects))
			return nil
		},
	}
	objectPutCmd = &cobra.Command{
		Use:   "put [bucket] [key] [file]",
		Short: "Uploads a file as an object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[2])
			if err != nil {
				return err
			}
			if err := objectStorage.PutObject(context.Background(), args[0], args[1], data, putType); err != nil {
				return err
			}
			fmt.Printf("uploaded %d byte(s)\n", len(data))
			return nil
		},
	}
	objectGetCmd = &cobra.Command{
		Use:   "get [bucket] [key]",
		Short: "Downloads an object (to stdout or a file)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := objectStorage.GetObject(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			if getOut == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(getOut, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d byte(s) to %s\n", len(data), getOut)
			return nil
		},
	}
	objectDeleteCmd = &cobra.Command{
		Use:   "delete [bucket] [key]",
		Short: "Deletes an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := objectStorage.DeleteObject(context.Background(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}
	objectCopyCmd = &cobra.Command{
		Use:   "copy [srcBucket] [srcKey] [dstBucket] [dstKey]",
		Short: "Copies an object server-side",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := objectStorage.CopyObject(context.Background(), args[0], args[1], args[2], args[3]); err != nil {
				return err
			}
			fmt.Println("copied successfully")
			return nil
		},
	}
	objectPresignCmd = &cobra.Command{
		Use:   "presign [bucket] [key]",
		Short: "Creates a presigned download URL for an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := objectStorage.PresignGetObject(context.Background(), args[0], args[1], signExpiry)
			if err != nil {
				return err
			}
			fmt.Println(url)
			return nil
		},
	}
)

func init() {
	objectListCmd.Flags().StringVar(&listPrefix, "prefix", "", "Only list objects whose key starts with this prefix")
	objectListCmd.Flags().Int32Var(&listMax, "max", 0, "Maximum number of objects to list (0 lists all)")
	objectPutCmd.Flags().StringVar(&putType, "content-type", "", "Content type of the object (defaults to application/octet-stream)")
	objectGetCmd.Flags().StringVar(&getOut, "out", "", "File to write the object to (defaults to stdout)")
	objectPresignCmd.Flags().DurationVar(&signExpiry, "expiry", 15*time.Minute, "How long the presigned URL stays valid")
}
