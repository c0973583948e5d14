// Package vlog implements the verification-log store.
//
// Records are grouped into fixed-size buckets addressed by a derived key
// (see ir.BucketKey). Three auxiliary streams hang off every identity: the
// last-N cache, the failed queue and the caller-maintained chain metadata.
//
// All operations run against a KV supplied by the caller, normally a
// ledger.Tx. The store holds no state of its own beyond configuration and
// never locks; concurrent writers are serialized by the ledger's conflict
// detection.
package vlog
