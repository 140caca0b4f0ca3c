package invidx

import "github.com/therealutkarshpriyadarshi/simsearch/pkg/space/builtin"

// scoreSpace is the space every Search* method hands to knnquery.New so
// it can report Result.Distance using the library-wide convention
// (negated dot product, lower is better); none of the Search* methods
// actually call scoreSpace.Distance themselves; they already have the
// distance from the cursor merge, so they go through
// KnnQuery.CheckAndAddDistance rather than KnnQuery.CheckAndAdd.
var scoreSpace = builtin.NewSparseScalarProduct()
