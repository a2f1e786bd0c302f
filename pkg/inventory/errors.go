package inventory

import (
	"fmt"
	"strings"
)

// IncompleteOperationError reports a reconciliation cycle where one or more
// internal batches timed out. PartialResults carries the consolidated
// per-item outcomes that did settle; the dirty sets are left intact so the
// caller may retry.
type IncompleteOperationError struct {
	PartialResults   []UpdateResult
	TimedOutBatchIDs []string
}

func (e *IncompleteOperationError) Error() string {
	return fmt.Sprintf(
		"inventory update incomplete; timed out batches: %s",
		strings.Join(e.TimedOutBatchIDs, ", "),
	)
}
