// Package redisadapter provides a Redis-backed implementation of the
// adapter contract.
//
// # Storage schema
//
// Flag state lives under a configurable key prefix (default "togglekit"):
//
//	togglekit:features              SET  registered feature names
//	togglekit:feature:<name>        HASH one feature's gate values
//
// Scalar gate values (boolean, percentages, expression JSON) are hash
// fields keyed by the gate key. Set gate members are one field each,
// "actors/<id>" or "groups/<name>", so enrollment and removal are single
// field operations.
//
// # Usage
//
//	cfg, err := redisadapter.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := redisadapter.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	flags := toggle.New(redisadapter.New(client, redisadapter.WithKeyPrefix(cfg.KeyPrefix)))
package redisadapter
