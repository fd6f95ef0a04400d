// Package storage provides a client for the SquirrelDB object storage
// service. The service exposes an S3-compatible HTTP API, the client wraps
// the AWS SDK with static credentials, an endpoint override and path-style
// addressing so it works against any S3-compatible deployment.
//
// All operations take a context.Context and are safe for concurrent use.
//
// Example:
//
//	store, err := storage.NewObjectStorage(ctx, storage.Options{
//		Endpoint:  "http://localhost:9000",
//		AccessKey: "minioadmin",
//		SecretKey: "minioadmin",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = store.PutObject(ctx, "my-bucket", "hello.txt", []byte("Hello!"), "text/plain")
package storage
