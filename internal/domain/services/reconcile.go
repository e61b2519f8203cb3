package services

import "github.com/ersonp/drama-core/internal/domain/entities"

// IdentifierReconciler rewrites known-aliased character ids to their
// canonical form. It is read-only after construction and safe for
// concurrent use.
type IdentifierReconciler struct {
	aliases map[string]string
}

// NewIdentifierReconciler creates a reconciler over a copy of aliases
// (raw id -> canonical id).
func NewIdentifierReconciler(aliases map[string]string) *IdentifierReconciler {
	copied := make(map[string]string, len(aliases))
	for raw, canonical := range aliases {
		copied[raw] = canonical
	}
	return &IdentifierReconciler{aliases: copied}
}

// Canonical returns the canonical id for id. Ids not in the alias table
// pass through unchanged. Aliases are not chained.
func (r *IdentifierReconciler) Canonical(id string) string {
	if canonical, ok := r.aliases[id]; ok {
		return canonical
	}
	return id
}

// CanonicalFacts returns a copy of facts with every endpoint reconciled.
func (r *IdentifierReconciler) CanonicalFacts(facts []entities.RelationFact) []entities.RelationFact {
	out := make([]entities.RelationFact, len(facts))
	for i, f := range facts {
		out[i] = entities.RelationFact{
			CharacterID: r.Canonical(f.CharacterID),
			Kind:        f.Kind,
		}
	}
	return out
}
