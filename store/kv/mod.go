// Package kv defines the abstraction of the key/value database that persists
// the schema catalog.
//
// The package implements the database with bbolt as the engine
// (https://github.com/etcd-io/bbolt).
package kv

import "golang.org/x/xerrors"

// ErrBucketNotFound is returned by a read-only transaction when the bucket
// does not exist.
var ErrBucketNotFound = xerrors.New("bucket not found")

// Bucket is a general interface to operate on a database bucket.
type Bucket interface {
	// Get reads the key from the bucket and returns the value, or nil if the
	// key does not exist.
	Get(key []byte) []byte

	// Set assigns the value to the provided key.
	Set(key, value []byte) error

	// Delete deletes the key from the bucket.
	Delete(key []byte) error

	// ForEach iterates over all the items in the bucket in key order. The
	// iteration stops when the callback returns an error.
	ForEach(fn func(k, v []byte) error) error

	// Scan iterates over every key that matches the prefix in key order. The
	// iteration stops when the callback returns an error.
	Scan(prefix []byte, fn func(k, v []byte) error) error
}

// DB is a general interface to operate over a key/value database.
type DB interface {
	// View executes the read-only function on the bucket. It returns an error
	// wrapping ErrBucketNotFound if the bucket does not exist.
	View(bucket []byte, fn func(Bucket) error) error

	// Update executes the writable function on the bucket, which is created if
	// it does not exist.
	Update(bucket []byte, fn func(Bucket) error) error

	// Close closes the database and frees the resources.
	Close() error
}
