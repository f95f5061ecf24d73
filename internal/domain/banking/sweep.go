package banking

import "github.com/google/uuid"

// SweepResult summarizes a retroactive duplicate sweep
type SweepResult struct {
	Total      int         `json:"total"`
	Duplicates int         `json:"duplicates"`
	Remaining  int         `json:"remaining"`
	DeleteIDs  []uuid.UUID `json:"-"`
}

// BuildSweepPlan decides which of the given transactions are redundant
// copies of an earlier one. Transactions must be ordered by creation
// time ascending: the oldest row of each content group survives, the
// rest are marked for deletion.
func BuildSweepPlan(transactions []Transaction) SweepResult {
	seen := make(map[string]struct{}, len(transactions))
	result := SweepResult{Total: len(transactions)}

	for i := range transactions {
		key := transactions[i].ContentKey()
		if _, ok := seen[key]; ok {
			result.DeleteIDs = append(result.DeleteIDs, transactions[i].ID)
			continue
		}
		seen[key] = struct{}{}
	}

	result.Duplicates = len(result.DeleteIDs)
	result.Remaining = result.Total - result.Duplicates
	return result
}
