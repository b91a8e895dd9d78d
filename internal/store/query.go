package store

type Op int

const (
	OpEq Op = iota
	OpIn
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

type Sort struct {
	Field string
	Desc  bool
}

// Query is an immutable builder. Field names are the shared snake_case
// column/bson keys; "id" addresses the primary key on both backends.
type Query struct {
	Filters []Filter
	Sorts   []Sort
	Limit   int
	Skip    int
}

func Q() Query { return Query{} }

func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: OpEq, Value: value})
	return q
}

func (q Query) WhereIn(field string, values []string) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: OpIn, Value: values})
	return q
}

func (q Query) SortBy(field string, desc bool) Query {
	q.Sorts = append(append([]Sort(nil), q.Sorts...), Sort{Field: field, Desc: desc})
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

func (q Query) Offset(n int) Query {
	q.Skip = n
	return q
}
