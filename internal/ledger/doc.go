// Package ledger provides the transactional key-value ledgers verifylog runs on.
//
// A ledger offers single-key Get and Put inside a transaction and nothing
// else: no range scans, no secondary indexes. Every backend gives the same
// guarantees to the code running inside View or Update:
//
//   - Writes are buffered by the transaction and committed together, or
//     discarded together when the callback returns an error
//   - A nil or empty value means the key is absent
//   - Update callbacks may run concurrently; conflicting commits are either
//     serialized by the backend or rejected with ErrConflict
//   - A View sees one committed state; a backend that cannot hold a snapshot
//     rejects a View that overlapped a commit to a key it read with ErrConflict
//
// # Backends
//
//   - memory: in-process map with optimistic read-set validation
//   - sqlite: one kv table, one SQL transaction per Update
//   - bolt: go.etcd.io/bbolt, single bucket
//   - leveldb: cosmos-db goleveldb with a buffered overlay committed as a batch
package ledger
