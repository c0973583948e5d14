package dispatch

import (
	"strconv"

	"github.com/roach88/verifylog/internal/ir"
	"github.com/roach88/verifylog/internal/vlog"
)

// parseIdentity reads the leading SCHEMA TABLE INSTANCE_IDENTIFIER
// arguments. Emptiness is checked by the store.
func parseIdentity(args []string) ir.Identity {
	return ir.Identity{Schema: args[0], Table: args[1], InstanceIdentifier: args[2]}
}

// parseInt parses a decimal integer argument. Unlike a lenient prefix
// parse, "12abc" and "1.0" are rejected.
func parseInt(field, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		e := vlog.InvalidArgumentf("%s must be a numeric string, got %q", field, s)
		e.Details = map[string]string{"field": field}
		return 0, e
	}
	return n, nil
}

// parseLimit parses an optional trailing LIMIT argument. Absent means no
// limit (-1); an explicit negative value is rejected.
func parseLimit(args []string, idx int) (int64, error) {
	if len(args) <= idx {
		return -1, nil
	}
	limit, err := parseInt("limit", args[idx])
	if err != nil {
		return 0, err
	}
	if limit < 0 {
		e := vlog.InvalidArgumentf("limit must not be negative, got %d", limit)
		e.Details = map[string]string{"field": "limit"}
		return 0, e
	}
	return limit, nil
}

// parseResult parses a verification result, which must be exactly "true"
// or "false".
func parseResult(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	e := vlog.InvalidArgumentf("verification result must be true or false, got %q", s)
	e.Details = map[string]string{"field": "result"}
	return false, e
}

// parseChain reads INSTANCE_ID CHAIN_ID starting at args[3].
func parseChain(args []string) (instanceID, chainID int64, err error) {
	if instanceID, err = parseInt("instance_id", args[3]); err != nil {
		return 0, 0, err
	}
	if chainID, err = parseInt("chain_id", args[4]); err != nil {
		return 0, 0, err
	}
	return instanceID, chainID, nil
}
