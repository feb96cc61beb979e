package postgresql

import (
	"fmt"

	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
)

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

// scope restricts column to the scope's bases. A non-global empty scope matches nothing.
func (w *whereBuilder) scope(column string, s user.Scope) {
	if s.Global {
		return
	}
	w.add(column+" = ANY($%d::uuid[])", s.BaseIDs)
}

func (w *whereBuilder) next() int {
	return len(w.args) + 1
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return "TRUE"
	}
	out := w.conds[0]
	for _, c := range w.conds[1:] {
		out += " AND " + c
	}
	return out
}
