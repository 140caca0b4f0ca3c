package factory

import (
	"sort"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space"
	"github.com/therealutkarshpriyadarshi/simsearch/pkg/space/builtin"
)

// spaceCtors is the name-keyed space registry, grounded on
// original_source/include/factory/init_spaces.h's REGISTER_SPACE table.
// Every concrete space pkg/space/builtin implements is registered under
// the same name NMSLIB uses, so a dataset's "space=..." line carries
// over unchanged.
var spaceCtors = map[string]func() space.Space{
	"l1":                 builtin.NewL1,
	"l2":                 builtin.NewL2,
	"linf":               builtin.NewLInf,
	"cosinesimil_sparse": builtin.NewSparseCosine,
	"negdotprod_sparse":  builtin.NewSparseScalarProduct,
	"jaccard_sparse":     builtin.NewSparseJaccard,
	"bit_hamming":        builtin.NewHamming,
	"leven":              builtin.NewEditDistance,
	"kldivgenfast":       builtin.NewKLDivergence,
	"itakurasaitofast":   builtin.NewItakuraSaito,
	"jsdivfast":          builtin.NewJensenShannon,
	"sqfd":               func() space.Space { return builtin.NewSQFD(builtin.NewSQFDHeuristicFunction(1)) },
}

// CreateSpace looks up name in the registry and returns a fresh space
// instance. Unknown names are a ConfigError (§7).
func CreateSpace(name string) (space.Space, error) {
	ctor, ok := spaceCtors[name]
	if !ok {
		return nil, &simerrors.ConfigError{Key: "space", Reason: "unknown space: " + name}
	}
	return ctor(), nil
}

// RegisteredSpaces returns every registered space name, sorted.
func RegisteredSpaces() []string {
	names := make([]string, 0, len(spaceCtors))
	for name := range spaceCtors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
