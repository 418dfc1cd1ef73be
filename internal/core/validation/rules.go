// Package validation checks proposed record changes against a declarative,
// per-kind rule table.
package validation

import "github.com/recordhub/records-api/internal/core/domain"

// Rule lists the integrity constraints of one entity kind.
//
//   - UniqueFields: unique across every record of the kind, active or not.
//   - UniquePerOwnerFields: unique among records sharing the same owner_id.
//   - RequiredFields: must be present and non-empty on creation; partial
//     updates never check them.
type Rule struct {
	UniqueFields         []string
	UniquePerOwnerFields []string
	RequiredFields       []string
}

// Rules is the rule table. Adding a kind means adding an entry here.
var Rules = map[domain.Kind]Rule{
	domain.KindAccount: {
		UniqueFields:   []string{"email", "name"},
		RequiredFields: []string{"email", "name", "password"},
	},
	domain.KindItem: {
		UniquePerOwnerFields: []string{"name"},
		RequiredFields:       []string{"name", "owner_id"},
	},
	domain.KindPost: {
		RequiredFields: []string{"content", "owner_id"},
	},
}
