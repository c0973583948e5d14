// Package harness runs YAML scenarios against the verification-log store.
//
// Every scenario executes on a fresh in-memory ledger through the
// dispatcher, exactly as a transport would invoke it, so a scenario checks
// the whole path from argument parsing to the stored buckets.
//
// # Scenario Format
//
//	name: failed_queue_order
//	description: "Failures are queued in ingestion order"
//	setup:
//	  - invoke: storeLog
//	    args: [APP, ORDERS, G1, "1", "1", "${seq}", "${odd}", "got-${seq}", "want-${seq}"]
//	    repeat: { from: 1, to: 250 }
//	flow:
//	  - invoke: getFailedRows
//	    args: [APP, ORDERS, G1, "2"]
//	    expect:
//	      count: 2
//	  - invoke: readLog
//	    args: [APP, ORDERS, G1, "1", "1", "999"]
//	    expect:
//	      error: NOT_FOUND
//	assertions:
//	  - type: stream_length
//	    stream: failedQueue
//	    args: [APP, ORDERS, G1]
//	    count: 125
//
// Setup steps must succeed. Inside args, "${seq}" is replaced by the
// repeat counter and "${odd}" by "true" for odd counters and "false"
// otherwise.
//
// # Assertion Types
//
//   - trace_count: the function appears exactly count times in the flow
//   - trace_order: the functions appear in the flow in this order
//   - stream_length: the identity's last100 or failedQueue stream holds
//     exactly count records
//
// # Deterministic Testing
//
// Transaction ids come from testutil.SequentialTxIDGenerator with the
// scenario's tx_prefix, so the same scenario always yields byte-identical
// traces for golden comparison (see RunWithGolden).
package harness
