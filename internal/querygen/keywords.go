package querygen

import (
	"sort"

	"github.com/antigravity-dev/fundscout/internal/model"
	"github.com/antigravity-dev/fundscout/internal/taxonomy"
)

// GatherKeywords unions the keyword sets of every populated dimension of
// req into a single deduplicated, deterministically ordered slice. Order
// is independent of which dimensions happen to be populated (spec.md §8
// property 2): keywords are collected into a set and then sorted, so two
// requests with the same populated dimensions in different struct
// literal order produce identical output.
func GatherKeywords(req model.QueryRequest) []string {
	set := make(map[string]struct{})

	add := func(words []string) {
		for _, w := range words {
			set[w] = struct{}{}
		}
	}

	add(taxonomy.CategoryKeywords(taxonomy.Category(req.Category)))
	if req.FunderType != "" {
		add(taxonomy.FunderTypeKeywords(req.FunderType))
	}
	if req.Mechanism != "" {
		add(taxonomy.MechanismKeywords(req.Mechanism))
	}
	if req.ProjectScale != "" {
		add(taxonomy.ProjectScaleKeywords(req.ProjectScale))
	}
	for _, b := range req.Beneficiaries {
		add(taxonomy.BeneficiaryKeywords(b))
	}
	if req.RecipientType != "" {
		add(taxonomy.RecipientTypeKeywords(req.RecipientType))
	}

	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
