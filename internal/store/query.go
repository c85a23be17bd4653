package store

// FilterOp is a comparison operator for list queries.
type FilterOp string

const (
	OpEq   FilterOp = "eq"
	OpNeq  FilterOp = "neq"
	OpGte  FilterOp = "gte"
	OpLte  FilterOp = "lte"
	OpLike FilterOp = "like"
)

// Filter is one predicate of a list query. Field names are store-level
// identifiers (e.g. "category", "status", "is_active"), not raw SQL;
// implementations map them to columns and reject unknown fields.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// Gte builds a greater-or-equal filter.
func Gte(field string, value any) Filter {
	return Filter{Field: field, Op: OpGte, Value: value}
}

// Lte builds a less-or-equal filter.
func Lte(field string, value any) Filter {
	return Filter{Field: field, Op: OpLte, Value: value}
}

// Like builds a case-insensitive substring filter.
func Like(field string, value string) Filter {
	return Filter{Field: field, Op: OpLike, Value: value}
}
