package services

import (
	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/logger"
)

// Classify splits a flat item stream into parent groups. An item with a
// non-empty ParentID is a child; children are grouped under their parent in
// source emission order so rendering stays deterministic. A child whose
// parent was not fetched is an orphan and is dropped silently.
//
// The source's rules are applied here: excluded parents are removed before
// reconciliation, and when RequireChildren is set, parents with zero matched
// children are filtered out entirely.
func Classify(items []domain.RawItem, rules domain.SourceRules) []domain.ItemGroup {
	parents := make([]domain.RawItem, 0, len(items))
	childrenByParent := make(map[string][]domain.RawItem)

	for _, item := range items {
		if item.IsChild() {
			childrenByParent[item.ParentID] = append(childrenByParent[item.ParentID], item)
			continue
		}
		parents = append(parents, item)
	}

	parentIDs := make(map[string]bool, len(parents))
	for _, p := range parents {
		parentIDs[p.ID] = true
	}
	orphans := 0
	for parentID, children := range childrenByParent {
		if !parentIDs[parentID] {
			orphans += len(children)
		}
	}
	if orphans > 0 {
		logger.Debug("Dropped %d orphan children", orphans)
	}

	groups := make([]domain.ItemGroup, 0, len(parents))
	for _, parent := range parents {
		if rules.Excluded(parent) {
			logger.Debug("Excluded parent %s (%s)", parent.ID, parent.Category)
			continue
		}

		children := childrenByParent[parent.ID]
		if rules.RequireChildren && len(children) == 0 {
			continue
		}

		groups = append(groups, domain.ItemGroup{Parent: parent, Children: children})
	}

	return groups
}
