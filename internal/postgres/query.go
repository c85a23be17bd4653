package postgres

import (
	"fmt"
	"strings"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/store"
)

// buildWhere renders filters into a WHERE clause. allowed maps store-level
// field names to column expressions; a filter on an unmapped field is
// rejected rather than interpolated. Arguments are appended to args and
// referenced positionally starting after the existing entries.
func buildWhere(filters []store.Filter, allowed map[string]string, args *[]any) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		column, ok := allowed[f.Field]
		if !ok {
			return "", domain.Errorf(domain.EINVALID, "", "Unknown filter field %q", f.Field)
		}

		*args = append(*args, filterArg(f))
		placeholder := fmt.Sprintf("$%d", len(*args))

		switch f.Op {
		case store.OpEq:
			clauses = append(clauses, fmt.Sprintf("%s = %s", column, placeholder))
		case store.OpNeq:
			clauses = append(clauses, fmt.Sprintf("%s <> %s", column, placeholder))
		case store.OpGte:
			clauses = append(clauses, fmt.Sprintf("%s >= %s", column, placeholder))
		case store.OpLte:
			clauses = append(clauses, fmt.Sprintf("%s <= %s", column, placeholder))
		case store.OpLike:
			clauses = append(clauses, fmt.Sprintf("%s ILIKE %s", column, placeholder))
		default:
			return "", domain.Errorf(domain.EINVALID, "", "Unknown filter operator %q", f.Op)
		}
	}

	return " WHERE " + strings.Join(clauses, " AND "), nil
}

func filterArg(f store.Filter) any {
	if f.Op == store.OpLike {
		if s, ok := f.Value.(string); ok {
			return "%" + s + "%"
		}
	}
	// Typed string values (OrderStatus, PaymentMethod) bind as text.
	if s, ok := f.Value.(fmt.Stringer); ok {
		return s.String()
	}
	return f.Value
}
