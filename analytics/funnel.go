package analytics

import (
	"fmt"
	"sort"

	"funnelboard/api/models"
)

// FunnelSequence reports, per group, the count of each named stage and its share of
// the first stage. Stages are independent event populations: the log has no link
// between a user's Created and Transferred rows, so a later stage may exceed 100%.
//
// Groups are the groupDims tuples observed anywhere in the log. Without groupDims a
// single group with an empty key is returned, even for an empty log.
func FunnelSequence(log *models.EventLog, stages []string, groupDims ...models.Dimension) ([]models.FunnelGroup, error) {
	if len(stages) == 0 {
		return nil, ErrNoStages
	}
	for _, d := range groupDims {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, d)
		}
	}

	wanted := make(map[string]struct{}, len(stages))
	for _, s := range stages {
		wanted[s] = struct{}{}
	}

	counts := make(map[string]map[string]int)
	if len(groupDims) == 0 {
		counts[""] = make(map[string]int)
	}
	log.Range(func(r models.EventRecord) bool {
		k := keyOf(r, groupDims)
		byStage, ok := counts[k]
		if !ok {
			byStage = make(map[string]int)
			counts[k] = byStage
		}
		if _, ok := wanted[r.EventName]; ok {
			byStage[r.EventName]++
		}
		return true
	})

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]models.FunnelGroup, 0, len(keys))
	for _, k := range keys {
		byStage := counts[k]
		first := byStage[stages[0]]
		seq := make([]models.FunnelStage, 0, len(stages))
		for _, s := range stages {
			n := byStage[s]
			var pct float64
			if first > 0 {
				pct = float64(n) / float64(first) * 100
			}
			seq = append(seq, models.FunnelStage{Stage: s, Count: n, PercentOfFirst: pct})
		}
		groups = append(groups, models.FunnelGroup{
			Key:    models.SplitKey(k, len(groupDims)),
			Stages: seq,
		})
	}
	return groups, nil
}
