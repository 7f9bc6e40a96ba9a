package decommission

import (
	"github.com/carverauto/portradar/pkg/logger"
	"github.com/carverauto/portradar/pkg/models"
)

// CandidatesFromRecords picks every selector that has at least one port
// reported down, then returns every port the records list under those
// selectors whatever its reported status, so the whole group is re-checked.
// A port listed twice under the same selector is kept once.
func CandidatesFromRecords(records []models.PortRecord, log logger.Logger) []Candidate {
	selected := make(map[models.SelectorRef]struct{})

	for i := range records {
		r := &records[i]

		if !models.ParseOperStatus(r.Status).IsDown() {
			continue
		}

		ref := r.SelectorRef()
		if ref.IsZero() {
			log.Info().Str("node", r.Node).Str("interface", r.Interface).
				Msg("Port is down but has no profile configured, skipping")

			continue
		}

		selected[ref] = struct{}{}
	}

	var (
		out  []Candidate
		seen = make(map[Candidate]struct{})
	)

	for i := range records {
		r := &records[i]

		ref := r.SelectorRef()
		if _, ok := selected[ref]; !ok {
			continue
		}

		c := Candidate{Port: r.Key(), Selector: ref}
		if _, dup := seen[c]; dup {
			continue
		}

		seen[c] = struct{}{}
		out = append(out, c)
	}

	return out
}

type group struct {
	selector models.SelectorRef
	ports    []models.PortKey
}

// partition groups candidates by selector, keeping first-seen order for
// both groups and members.
func partition(candidates []Candidate) []group {
	var groups []group

	index := make(map[models.SelectorRef]int)
	members := make(map[models.SelectorRef]map[models.PortKey]struct{})

	for _, c := range candidates {
		i, ok := index[c.Selector]
		if !ok {
			i = len(groups)
			index[c.Selector] = i
			members[c.Selector] = make(map[models.PortKey]struct{})
			groups = append(groups, group{selector: c.Selector})
		}

		if _, dup := members[c.Selector][c.Port]; dup {
			continue
		}

		members[c.Selector][c.Port] = struct{}{}
		groups[i].ports = append(groups[i].ports, c.Port)
	}

	return groups
}
