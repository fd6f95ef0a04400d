// Package cmd implements the command-line interface for the SquirrelDB
// client. It provides a hierarchical command structure for interacting with
// a SquirrelDB deployment from the shell.
//
// The package is organized into several subpackages:
//
//   - db: Commands for document store operations (insert, query, subscribe, etc.)
//   - cache: Commands for the RESP cache service (get, set, expire, etc.)
//   - storage: Commands for the S3-compatible object storage service
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Connection settings can be provided as flags, via SQRL_ prefixed
// environment variables or through a .env file in the working directory.
//
// See squirreldb -help for a list of all commands.
package cmd
