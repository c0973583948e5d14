// Package dispatch routes named operations to the verification-log store.
//
// A Dispatcher owns the transaction lifecycle: it assigns every invocation a
// transaction id, runs the handler inside a ledger transaction (read-only
// for queries), retries on commit conflicts and records metrics. Handlers
// take the ordered string arguments of the transport and return a byte
// payload.
//
// Function table:
//
//	init
//	storeLog      SCHEMA TABLE INSTANCE_IDENTIFIER INSTANCE_ID CHAIN_ID SEQUENCE_NO RESULT GOT_HASH [EXPECTED_HASH]
//	readLog       SCHEMA TABLE INSTANCE_IDENTIFIER INSTANCE_ID CHAIN_ID SEQUENCE_NO
//	readChainLogs SCHEMA TABLE INSTANCE_IDENTIFIER INSTANCE_ID CHAIN_ID [LIMIT]
//	readMetadata  SCHEMA TABLE INSTANCE_IDENTIFIER
//	writeMetadata SCHEMA TABLE INSTANCE_IDENTIFIER METADATA
//	fetchLast100  SCHEMA TABLE INSTANCE_IDENTIFIER
//	getFailedRows SCHEMA TABLE INSTANCE_IDENTIFIER [LIMIT]
package dispatch
