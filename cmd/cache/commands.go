package cache

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	setTTL int

	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := cacheClient.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key, optionally with a time to live",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cacheClient.Set(args[0], args[1], setTTL); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]...",
		Short: "Deletes one or more keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := cacheClient.Del(args...)
			if err != nil {
				return err
			}
			fmt.Printf("removed=%d\n", removed)
			return nil
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := cacheClient.Exists(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", args[0], found)
			return nil
		},
	}
	expireCmd = &cobra.Command{
		Use:   "expire [key] [seconds]",
		Short: "Attaches a time to live to a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("seconds must be a number: %w", err)
			}
			ok, err := cacheClient.Expire(args[0], seconds)
			if err != nil {
				return err
			}
			fmt.Printf("expire set=%t\n", ok)
			return nil
		},
	}
	ttlCmd = &cobra.Command{
		Use:   "ttl [key]",
		Short: "Shows the remaining time to live of a key in seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, err := cacheClient.TTL(args[0])
			if err != nil {
				return err
			}
			switch ttl {
			case -2:
				fmt.Println("key not found")
			case -1:
				fmt.Println("no expiration")
			default:
				fmt.Printf("ttl=%ds\n", ttl)
			}
			return nil
		},
	}
	persistCmd = &cobra.Command{
		Use:   "persist [key]",
		Short: "Removes the time to live from a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := cacheClient.Persist(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("persisted=%t\n", ok)
			return nil
		},
	}
	incrCmd = &cobra.Command{
		Use:   "incr [key]",
		Short: "Increments the integer value of a key by one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := cacheClient.Incr(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("value=%d\n", value)
			return nil
		},
	}
	decrCmd = &cobra.Command{
		Use:   "decr [key]",
		Short: "Decrements the integer value of a key by one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := cacheClient.Decr(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("value=%d\n", value)
			return nil
		},
	}
	incrByCmd = &cobra.Command{
		Use:   "incrby [key] [amount]",
		Short: "Adds an amount to the integer value of a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("amount must be a number: %w", err)
			}
			value, err := cacheClient.IncrBy(args[0], amount)
			if err != nil {
				return err
			}
			fmt.Printf("value=%d\n", value)
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys [pattern]",
		Short: "Lists all keys matching a glob pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := cacheClient.Keys(args[0])
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Println(key)
			}
			fmt.Printf("%d key(s)\n", len(keys))
			return nil
		},
	}
	dbsizeCmd = &cobra.Command{
		Use:   "dbsize",
		Short: "Shows the number of keys in the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := cacheClient.DBSize()
			if err != nil {
				return err
			}
			fmt.Printf("keys=%d\n", size)
			return nil
		},
	}
	flushCmd = &cobra.Command{
		Use:   "flush",
		Short: "Removes all keys from the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cacheClient.FlushDB(); err != nil {
				return err
			}
			fmt.Println("flushed successfully")
			return nil
		},
	}
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Checks the connection to the cache service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cacheClient.Ping(); err != nil {
				return err
			}
			fmt.Println("pong")
			return nil
		},
	}
)

func init() {
	setCmd.Flags().IntVar(&setTTL, "ttl", 0, "Time to live in seconds (0 stores the value without expiration)")
}
