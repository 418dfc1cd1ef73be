package validation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
	"github.com/recordhub/records-api/pkg/metrics"
)

// Subject identifies the record a change applies to. ID zero means a record
// that does not exist yet, so nothing is excluded from uniqueness checks.
type Subject struct {
	ID      int64
	OwnerID int64
}

// Engine evaluates Rules against proposed fields. It only reads the store.
type Engine struct {
	store ports.ExistenceChecker
	rules map[domain.Kind]Rule
	log   zerolog.Logger
}

func NewEngine(store ports.ExistenceChecker, log zerolog.Logger) *Engine {
	return &Engine{store: store, rules: Rules, log: log}
}

// RequireChanges rejects an update that carries no recognised field. Callers
// run it once per update, before touching the store.
func RequireChanges(fields ports.Fields) error {
	if len(fields) == 0 {
		return domain.Errorf(domain.ErrBadRequest, "nothing to update")
	}
	return nil
}

// ValidateCreate checks required fields, then uniqueness, for a new record of
// kind owned by ownerID (zero for accounts).
func (e *Engine) ValidateCreate(ctx context.Context, kind domain.Kind, ownerID int64, fields ports.Fields) error {
	for _, name := range e.rules[kind].RequiredFields {
		if name == "owner_id" {
			if ownerID <= 0 {
				return domain.Errorf(domain.ErrBadRequest, "field '%s' is required", name)
			}
			continue
		}
		if isBlank(fields[name]) {
			return domain.Errorf(domain.ErrBadRequest, "field '%s' is required", name)
		}
	}
	return e.ValidateChange(ctx, kind, Subject{OwnerID: ownerID}, fields)
}

// ValidateChange checks the fields present in proposed against the kind's
// uniqueness rules. Absent and nil fields are not checked; fields without a
// rule pass through.
func (e *Engine) ValidateChange(ctx context.Context, kind domain.Kind, current Subject, proposed ports.Fields) error {
	rule := e.rules[kind]

	for _, field := range rule.UniqueFields {
		value, ok := proposed[field]
		if !ok || value == nil {
			continue
		}
		taken, err := e.store.Exists(ctx, kind, ports.ExistsQuery{
			Field:     field,
			Value:     value,
			ExcludeID: current.ID,
		})
		if err != nil {
			return fmt.Errorf("check %s.%s: %w", kind, field, err)
		}
		if taken {
			return e.conflict(kind, field, value, "Value '%v' for field '%s' already exists")
		}
	}

	for _, field := range rule.UniquePerOwnerFields {
		value, ok := proposed[field]
		if !ok || value == nil {
			continue
		}
		owner := current.OwnerID
		taken, err := e.store.Exists(ctx, kind, ports.ExistsQuery{
			Field:     field,
			Value:     value,
			ExcludeID: current.ID,
			OwnerID:   &owner,
		})
		if err != nil {
			return fmt.Errorf("check %s.%s per owner: %w", kind, field, err)
		}
		if taken {
			return e.conflict(kind, field, value, "Value '%v' for field '%s' already exists for this user")
		}
	}

	return nil
}

func (e *Engine) conflict(kind domain.Kind, field string, value any, format string) error {
	metrics.ValidationConflictsTotal.WithLabelValues(string(kind), field).Inc()
	e.log.Debug().Str("kind", string(kind)).Str("field", field).Msg("uniqueness conflict")
	return domain.Errorf(domain.ErrConflict, format, value, field)
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case *string:
		return t == nil || *t == ""
	default:
		return false
	}
}
