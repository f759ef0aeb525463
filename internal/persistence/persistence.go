package persistence

import (
	"context"
	"errors"
	"sort"
)

const (
	TableAcceptedWorks = "accepted_works"
	TableQuotations    = "quotations"
	TableChatMessages  = "chat_messages"
)

var ErrEmptyUpdate = errors.New("update has no fields")

// Match selects rows by equality on a single column.
type Match struct {
	Column string
	Value  string
}

func ByID(id string) Match {
	return Match{Column: "id", Value: id}
}

type Fields map[string]any

// Datastore is the subset of the backing database the payment flow writes to.
// Updates that match no row are not errors.
type Datastore interface {
	Update(ctx context.Context, table string, match Match, fields Fields) error
	Insert(ctx context.Context, table string, fields Fields) error
	Ping(ctx context.Context) error
	Close()
}

func (f Fields) sortedColumns() []string {
	columns := make([]string, 0, len(f))
	for column := range f {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
