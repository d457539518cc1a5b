package pykwl

import (
	"strings"

	"github.com/fine-structures/kwl/libwl"
	"github.com/fine-structures/kwl/libwl/canonical"
	"github.com/fine-structures/kwl/libwl/catalog"
	"github.com/fine-structures/kwl/libwl/color"
	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/libwl/iterative"
	"github.com/fine-structures/kwl/wl"
	"github.com/go-python/gpython/py"
	"github.com/pkg/errors"
)

var (
	LIB_VERSION = "v1.2024.1"
)

var (
	pyGraphType     = py.NewType("EdgeColoredGraph", "a directed or undirected multigraph with labeled nodes and edges")
	pyColoringType  = py.NewType("GraphColoring", "a coloring of nodes (1-WL) or ordered node pairs (2-FWL)")
	pyCanonicalType = py.NewType("CanonicalColorRefinement", "canonical color refinement of vertex-labeled graphs")
	pyWLType        = py.NewType("WeisfeilerLeman", "k-dimensional Weisfeiler-Leman refinement (k = 1 or 2)")
	pyCatalogType   = py.NewType("Catalog", "graph names filed by canonical fingerprint")
	pyWorkspaceType = py.NewType("Workspace", "collects active session resources and catalogs")
)

const (
	kWorkspaceAttr = "_Workspace"
)

/////////////////////////////////
// helpers

func toInt(obj py.Object, what string) (int64, error) {
	switch v := obj.(type) {
	case py.Int:
		return int64(v), nil
	case py.Bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, py.ExceptionNewf(py.TypeError, "%s: expected int (got %v)", what, obj.Type().Name)
}

func toBool(obj py.Object, what string) (bool, error) {
	switch v := obj.(type) {
	case py.Bool:
		return bool(v), nil
	case py.Int:
		return v != 0, nil
	}
	return false, py.ExceptionNewf(py.TypeError, "%s: expected bool (got %v)", what, obj.Type().Name)
}

// optInt returns def if obj was omitted.
func optInt(obj py.Object, what string, def int64) (int64, error) {
	if obj == nil || obj == py.None {
		return def, nil
	}
	return toInt(obj, what)
}

func optBool(obj py.Object, what string, def bool) (bool, error) {
	if obj == nil || obj == py.None {
		return def, nil
	}
	return toBool(obj, what)
}

func toString(obj py.Object, what string) (string, error) {
	if str, ok := obj.(py.String); ok {
		return string(str), nil
	}
	return "", py.ExceptionNewf(py.TypeError, "%s: expected str (got %v)", what, obj.Type().Name)
}

func toGraph(obj py.Object) (*graph.LabeledGraph, error) {
	X, ok := obj.(*pyGraph)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected EdgeColoredGraph (got %v)", obj.Type().Name)
	}
	return X.LabeledGraph, nil
}

// wrapErr converts a Go error into the closest Python exception.
func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, wl.ErrBadLabel), errors.Is(err, wl.ErrBadDimension), errors.Is(err, wl.ErrUnsupportedInput), errors.Is(err, wl.ErrBadGraphExpr):
		return py.ExceptionNewf(py.ValueError, "%v", err)
	case errors.Is(err, wl.ErrBadNodeID):
		return py.ExceptionNewf(py.IndexError, "%v", err)
	case errors.Is(err, wl.ErrOverflow):
		return py.ExceptionNewf(py.OverflowError, "%v", err)
	}
	return py.ExceptionNewf(py.RuntimeError, "%v", err)
}

func histogramTuple(hist wl.Histogram) py.Tuple {
	out := make(py.Tuple, len(hist))
	for i, hi := range hist {
		out[i] = py.Tuple{py.Int(hi.Color), py.Int(hi.Count)}
	}
	return out
}

func colorsTuple(colors []wl.Color) py.Tuple {
	out := make(py.Tuple, len(colors))
	for i, c := range colors {
		out[i] = py.Int(c)
	}
	return out
}

/////////////////////////////////
// EdgeColoredGraph

type pyGraph struct {
	*graph.LabeledGraph
}

func (X *pyGraph) Type() *py.Type {
	return pyGraphType
}

func (X *pyGraph) M__str__() (py.Object, error) {
	return py.String(X.String()), nil
}

func (X *pyGraph) M__repr__() (py.Object, error) {
	return X.M__str__()
}

// EdgeColoredGraph(directed)
func py_EdgeColoredGraph(module py.Object, args py.Tuple) (py.Object, error) {
	var directedObj py.Object
	if err := py.ParseTuple(args, "O", &directedObj); err != nil {
		return nil, err
	}
	directed, err := toBool(directedObj, "directed")
	if err != nil {
		return nil, err
	}
	return &pyGraph{graph.NewLabeledGraph(directed)}, nil
}

// ParseGraph(expr)
func py_ParseGraph(module py.Object, args py.Tuple) (py.Object, error) {
	var exprObj py.Object
	if err := py.ParseTuple(args, "O", &exprObj); err != nil {
		return nil, err
	}
	expr, err := toString(exprObj, "expr")
	if err != nil {
		return nil, err
	}
	X, err := graph.Parse(expr)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &pyGraph{X}, nil
}

// add_node(label=0) -> node id
func py_Graph_AddNode(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	X := self.(*pyGraph)
	var labelObj py.Object
	if err := py.ParseTupleAndKeywords(args, kwargs, "|O", []string{"label"}, &labelObj); err != nil {
		return nil, err
	}
	label, err := optInt(labelObj, "label", 0)
	if err != nil {
		return nil, err
	}
	node, err := X.AddNode(label)
	if err != nil {
		return nil, wrapErr(err)
	}
	return py.Int(node), nil
}

// add_edge(src_node, dst_node, label=0)
func py_Graph_AddEdge(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	X := self.(*pyGraph)
	var srcObj, dstObj, labelObj py.Object
	if err := py.ParseTupleAndKeywords(args, kwargs, "OO|O", []string{"src_node", "dst_node", "label"}, &srcObj, &dstObj, &labelObj); err != nil {
		return nil, err
	}
	src, err := toInt(srcObj, "src_node")
	if err != nil {
		return nil, err
	}
	dst, err := toInt(dstObj, "dst_node")
	if err != nil {
		return nil, err
	}
	label, err := optInt(labelObj, "label", 0)
	if err != nil {
		return nil, err
	}
	if err = X.AddEdge(int(src), int(dst), label); err != nil {
		return nil, wrapErr(err)
	}
	return py.None, nil
}

func py_Graph_NumNodes(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(*pyGraph).NumNodes()), nil
}

func py_Graph_NumEdges(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(*pyGraph).NumEdges()), nil
}

func py_Graph_IsDirected(self py.Object, args py.Tuple) (py.Object, error) {
	return py.NewBool(self.(*pyGraph).IsDirected()), nil
}

func py_Graph_Fingerprint(self py.Object, args py.Tuple) (py.Object, error) {
	fp, _, err := libwl.Fingerprint(self.(*pyGraph).LabeledGraph)
	if err != nil {
		return nil, wrapErr(err)
	}
	return py.Bytes(fp), nil
}

/////////////////////////////////
// GraphColoring

type pyColoring struct {
	*color.Coloring
}

func (C *pyColoring) Type() *py.Type {
	return pyColoringType
}

func (C *pyColoring) M__len__() (py.Object, error) {
	return py.Int(C.Len()), nil
}

// get_frequencies() -> ((color, count), ...)
func py_Coloring_GetFrequencies(self py.Object, args py.Tuple) (py.Object, error) {
	return histogramTuple(self.(*pyColoring).Histogram()), nil
}

func py_Coloring_GetColors(self py.Object, args py.Tuple) (py.Object, error) {
	return colorsTuple(self.(*pyColoring).Colors), nil
}

func py_Coloring_IsIdenticalTo(self py.Object, args py.Tuple) (py.Object, error) {
	var otherObj py.Object
	if err := py.ParseTuple(args, "O", &otherObj); err != nil {
		return nil, err
	}
	other, ok := otherObj.(*pyColoring)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected GraphColoring (got %v)", otherObj.Type().Name)
	}
	same, err := self.(*pyColoring).IsIdenticalTo(other.Coloring)
	if err != nil {
		return nil, wrapErr(err)
	}
	return py.NewBool(same), nil
}

/////////////////////////////////
// CanonicalColorRefinement

type pyCanonical struct {
	R   *canonical.Refinement
	res *canonical.Result
}

func (cr *pyCanonical) Type() *py.Type {
	return pyCanonicalType
}

func (cr *pyCanonical) result() (*canonical.Result, error) {
	if cr.res == nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "calculate() has not been called")
	}
	return cr.res, nil
}

// CanonicalColorRefinement(debug=False)
func py_CanonicalColorRefinement(module py.Object, args py.Tuple) (py.Object, error) {
	var debugObj py.Object
	if err := py.ParseTuple(args, "|O", &debugObj); err != nil {
		return nil, err
	}
	debug, err := optInt(debugObj, "debug", 0)
	if err != nil {
		return nil, err
	}
	return &pyCanonical{
		R: canonical.NewRefinement(canonical.WithDebug(int(debug))),
	}, nil
}

// calculate(graph, factor_matrix=False) -> histogram
func py_Canonical_Calculate(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	cr := self.(*pyCanonical)
	var graphObj, factorObj py.Object
	if err := py.ParseTupleAndKeywords(args, kwargs, "O|O", []string{"graph", "factor_matrix"}, &graphObj, &factorObj); err != nil {
		return nil, err
	}
	X, err := toGraph(graphObj)
	if err != nil {
		return nil, err
	}
	factor, err := optBool(factorObj, "factor_matrix", false)
	if err != nil {
		return nil, err
	}

	res, err := cr.R.Calculate(X, factor)
	if err != nil {
		return nil, wrapErr(err)
	}
	cr.res = res
	return histogramTuple(res.Histogram()), nil
}

// get_coloring() -> the partition: for each class id, the ids of its nodes
func py_Canonical_GetColoring(self py.Object, args py.Tuple) (py.Object, error) {
	res, err := self.(*pyCanonical).result()
	if err != nil {
		return nil, err
	}
	P := res.Partition()
	out := make(py.Tuple, len(P))
	for c, Pc := range P {
		class := make(py.Tuple, len(Pc))
		for i, v := range Pc {
			class[i] = py.Int(v)
		}
		out[c] = class
	}
	return out, nil
}

// get_colors() -> class id of each node
func py_Canonical_GetColors(self py.Object, args py.Tuple) (py.Object, error) {
	res, err := self.(*pyCanonical).result()
	if err != nil {
		return nil, err
	}
	return colorsTuple(res.Colors()), nil
}

// get_quotient_matrix() -> ((row, col, count), ...)
func py_Canonical_GetQuotientMatrix(self py.Object, args py.Tuple) (py.Object, error) {
	res, err := self.(*pyCanonical).result()
	if err != nil {
		return nil, err
	}
	factor := res.FactorMatrix()
	if factor == nil && res.NumColors() > 0 {
		return nil, wrapErr(wl.ErrNoFactorMatrix)
	}
	out := make(py.Tuple, len(factor))
	for i, e := range factor {
		out[i] = py.Tuple{py.Int(e.Row), py.Int(e.Col), py.Int(e.Count)}
	}
	return out, nil
}

func py_Canonical_GetColoringFunctionSize(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(*pyCanonical).R.ColoringFunctionSize()), nil
}

func toSequence(obj py.Object) (py.Tuple, bool) {
	switch v := obj.(type) {
	case py.Tuple:
		return v, true
	case *py.List:
		return py.Tuple(v.Items), true
	}
	return nil, false
}

// coloring_to_histogram(partition) -> (size, ...) for a partition as returned by get_coloring()
// coloring_to_histogram(colors) -> ((color, count), ...) for per-node class ids as returned by get_colors()
func py_ColoringToHistogram(module py.Object, args py.Tuple) (py.Object, error) {
	var coloringObj py.Object
	if err := py.ParseTuple(args, "O", &coloringObj); err != nil {
		return nil, err
	}
	items, ok := toSequence(coloringObj)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected tuple or list (got %v)", coloringObj.Type().Name)
	}
	if len(items) > 0 {
		if _, isPartition := toSequence(items[0]); isPartition {
			sizes := make(py.Tuple, len(items))
			for c, item := range items {
				class, ok := toSequence(item)
				if !ok {
					return nil, py.ExceptionNewf(py.TypeError, "class %d: expected tuple or list (got %v)", c, item.Type().Name)
				}
				sizes[c] = py.Int(len(class))
			}
			return sizes, nil
		}
	}
	colors := make([]wl.Color, len(items))
	for i, item := range items {
		c, err := toInt(item, "color")
		if err != nil {
			return nil, err
		}
		colors[i] = wl.Color(c)
	}
	return histogramTuple(canonical.ColoringToHistogram(colors)), nil
}

/////////////////////////////////
// WeisfeilerLeman

type pyWL struct {
	*iterative.WeisfeilerLeman
}

func (W *pyWL) Type() *py.Type {
	return pyWLType
}

// WeisfeilerLeman(k, ignore_counting=False)
func py_WeisfeilerLeman(module py.Object, args py.Tuple) (py.Object, error) {
	var kObj, ignoreObj py.Object
	if err := py.ParseTuple(args, "O|O", &kObj, &ignoreObj); err != nil {
		return nil, err
	}
	k, err := toInt(kObj, "k")
	if err != nil {
		return nil, err
	}
	ignoreCounting, err := optBool(ignoreObj, "ignore_counting", false)
	if err != nil {
		return nil, err
	}
	W, err := iterative.New(int(k), iterative.WithIgnoreCounting(ignoreCounting))
	if err != nil {
		return nil, wrapErr(err)
	}
	return &pyWL{W}, nil
}

func py_WL_GetK(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(*pyWL).K()), nil
}

func py_WL_GetIgnoreCounting(self py.Object, args py.Tuple) (py.Object, error) {
	return py.NewBool(self.(*pyWL).IgnoreCounting()), nil
}

func py_WL_GetColoringFunctionSize(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(*pyWL).ColoringFunctionSize()), nil
}

// compute_coloring(graph, max_num_iterations=0) -> (stable, iterations, colors, counts)
func py_WL_ComputeColoring(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	W := self.(*pyWL)
	var graphObj, maxObj py.Object
	if err := py.ParseTupleAndKeywords(args, kwargs, "O|O", []string{"graph", "max_num_iterations"}, &graphObj, &maxObj); err != nil {
		return nil, err
	}
	X, err := toGraph(graphObj)
	if err != nil {
		return nil, err
	}
	maxIterations, err := optInt(maxObj, "max_num_iterations", 0)
	if err != nil {
		return nil, err
	}

	out, err := W.ComputeColoring(X, int(maxIterations))
	if err != nil {
		return nil, wrapErr(err)
	}

	colors := make(py.Tuple, len(out.Histogram))
	counts := make(py.Tuple, len(out.Histogram))
	for i, hi := range out.Histogram {
		colors[i] = py.Int(hi.Color)
		counts[i] = py.Int(hi.Count)
	}
	return py.Tuple{py.NewBool(out.Stabilized), py.Int(out.Iterations), colors, counts}, nil
}

func py_WL_ComputeInitialColoring(self py.Object, args py.Tuple) (py.Object, error) {
	var graphObj py.Object
	if err := py.ParseTuple(args, "O", &graphObj); err != nil {
		return nil, err
	}
	X, err := toGraph(graphObj)
	if err != nil {
		return nil, err
	}
	C, err := self.(*pyWL).ComputeInitialColoring(X)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &pyColoring{C}, nil
}

// compute_next_coloring(graph, current, next) -> stable
func py_WL_ComputeNextColoring(self py.Object, args py.Tuple) (py.Object, error) {
	var graphObj, curObj, nextObj py.Object
	if err := py.ParseTuple(args, "OOO", &graphObj, &curObj, &nextObj); err != nil {
		return nil, err
	}
	X, err := toGraph(graphObj)
	if err != nil {
		return nil, err
	}
	cur, ok1 := curObj.(*pyColoring)
	next, ok2 := nextObj.(*pyColoring)
	if !ok1 || !ok2 {
		return nil, py.ExceptionNewf(py.TypeError, "expected GraphColoring arguments")
	}
	stable, err := self.(*pyWL).ComputeNextColoring(X, cur.Coloring, next.Coloring)
	if err != nil {
		return nil, wrapErr(err)
	}
	return py.NewBool(stable), nil
}

// new_coloring(like) -> a coloring of the same size for use with compute_next_coloring
func py_Coloring_Clone(self py.Object, args py.Tuple) (py.Object, error) {
	return &pyColoring{self.(*pyColoring).Clone()}, nil
}

/////////////////////////////////
// Workspace + Catalog

type Workspace struct {
	CatalogCtx wl.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		wsObj = &Workspace{
			CatalogCtx: wl.NewCatalogContext(),
		}
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

// OpenCatalog(pathname="", read_only=False)
func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathObj, readOnlyObj py.Object
	if err := py.ParseTuple(args, "|OO", &pathObj, &readOnlyObj); err != nil {
		return nil, err
	}
	opts := wl.CatalogOpts{}
	var err error
	if pathObj != nil && pathObj != py.None {
		if opts.DbPathName, err = toString(pathObj, "pathname"); err != nil {
			return nil, err
		}
	}
	if opts.ReadOnly, err = optBool(readOnlyObj, "read_only", false); err != nil {
		return nil, err
	}

	cat, err := catalog.OpenCatalog(ws.CatalogCtx, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	return pyCatalog{cat}, nil
}

type pyCatalog struct {
	wl.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

// add(name, graph) -> True if the graph started a new class
func py_Catalog_Add(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var nameObj, graphObj py.Object
	if err := py.ParseTuple(args, "OO", &nameObj, &graphObj); err != nil {
		return nil, err
	}
	name, err := toString(nameObj, "name")
	if err != nil {
		return nil, err
	}
	X, err := toGraph(graphObj)
	if err != nil {
		return nil, err
	}
	fp, _, err := libwl.Fingerprint(X)
	if err != nil {
		return nil, wrapErr(err)
	}
	isNew, err := cat.TryAddGraph(name, fp)
	if err != nil {
		return nil, wrapErr(err)
	}
	return py.NewBool(isNew), nil
}

// lookup(graph) -> names of graphs filed under the same fingerprint
func py_Catalog_Lookup(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var graphObj py.Object
	if err := py.ParseTuple(args, "O", &graphObj); err != nil {
		return nil, err
	}
	X, err := toGraph(graphObj)
	if err != nil {
		return nil, err
	}
	fp, _, err := libwl.Fingerprint(X)
	if err != nil {
		return nil, wrapErr(err)
	}
	names, err := cat.Lookup(fp)
	if err != nil {
		return nil, wrapErr(err)
	}
	out := make(py.Tuple, len(names))
	for i, name := range names {
		out[i] = py.String(name)
	}
	return out, nil
}

func py_Catalog_NumGraphs(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyCatalog).NumGraphs()), nil
}

func py_Catalog_NumClasses(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(pyCatalog).NumClasses()), nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.Catalog != nil {
		if err := cat.Close(); err != nil {
			return nil, wrapErr(err)
		}
	}
	return py.None, nil
}

func py_Catalog_Print(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)

	onHit := make(chan wl.CatalogEntry, 4)
	errCh := make(chan error, 1)
	go func() {
		errCh <- cat.Select(onHit)
		close(onHit)
	}()

	var b strings.Builder
	for entry := range onHit {
		b.WriteString(strings.Join(entry.Names, " "))
		b.WriteByte('\n')
	}
	if err := <-errCh; err != nil {
		return nil, wrapErr(err)
	}
	return py.String(b.String()), nil
}

func init() {

	/////////////////////////////////
	// EdgeColoredGraph
	{
		pyGraphType.Dict["add_node"] = py.MustNewMethod("add_node", py_Graph_AddNode, 0, "add_node(label=0) appends a node and returns its id")
		pyGraphType.Dict["add_edge"] = py.MustNewMethod("add_edge", py_Graph_AddEdge, 0, "add_edge(src_node, dst_node, label=0)")
		pyGraphType.Dict["get_num_nodes"] = py.MustNewMethod("get_num_nodes", py_Graph_NumNodes, 0, "")
		pyGraphType.Dict["get_num_edges"] = py.MustNewMethod("get_num_edges", py_Graph_NumEdges, 0, "")
		pyGraphType.Dict["is_directed"] = py.MustNewMethod("is_directed", py_Graph_IsDirected, 0, "")
		pyGraphType.Dict["fingerprint"] = py.MustNewMethod("fingerprint", py_Graph_Fingerprint, 0, "canonical fingerprint of a vertex-labeled graph")
	}

	/////////////////////////////////
	// GraphColoring
	{
		pyColoringType.Dict["get_frequencies"] = py.MustNewMethod("get_frequencies", py_Coloring_GetFrequencies, 0, "")
		pyColoringType.Dict["get_colors"] = py.MustNewMethod("get_colors", py_Coloring_GetColors, 0, "")
		pyColoringType.Dict["is_identical_to"] = py.MustNewMethod("is_identical_to", py_Coloring_IsIdenticalTo, 0, "")
		pyColoringType.Dict["clone"] = py.MustNewMethod("clone", py_Coloring_Clone, 0, "")
	}

	/////////////////////////////////
	// CanonicalColorRefinement
	{
		pyCanonicalType.Dict["calculate"] = py.MustNewMethod("calculate", py_Canonical_Calculate, 0, "calculate(graph, factor_matrix=False) returns the (color, count) histogram")
		pyCanonicalType.Dict["get_coloring"] = py.MustNewMethod("get_coloring", py_Canonical_GetColoring, 0, "the partition, indexed by class id")
		pyCanonicalType.Dict["get_colors"] = py.MustNewMethod("get_colors", py_Canonical_GetColors, 0, "the class id of each node")
		pyCanonicalType.Dict["get_quotient_matrix"] = py.MustNewMethod("get_quotient_matrix", py_Canonical_GetQuotientMatrix, 0, "")
		pyCanonicalType.Dict["get_coloring_function_size"] = py.MustNewMethod("get_coloring_function_size", py_Canonical_GetColoringFunctionSize, 0, "")
	}

	/////////////////////////////////
	// WeisfeilerLeman
	{
		pyWLType.Dict["get_k"] = py.MustNewMethod("get_k", py_WL_GetK, 0, "")
		pyWLType.Dict["get_ignore_counting"] = py.MustNewMethod("get_ignore_counting", py_WL_GetIgnoreCounting, 0, "")
		pyWLType.Dict["get_coloring_function_size"] = py.MustNewMethod("get_coloring_function_size", py_WL_GetColoringFunctionSize, 0, "")
		pyWLType.Dict["compute_coloring"] = py.MustNewMethod("compute_coloring", py_WL_ComputeColoring, 0, "compute_coloring(graph, max_num_iterations=0) returns (stable, iterations, colors, counts)")
		pyWLType.Dict["compute_initial_coloring"] = py.MustNewMethod("compute_initial_coloring", py_WL_ComputeInitialColoring, 0, "")
		pyWLType.Dict["compute_next_coloring"] = py.MustNewMethod("compute_next_coloring", py_WL_ComputeNextColoring, 0, "")
	}

	/////////////////////////////////
	// Workspace + Catalog
	{
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
		pyCatalogType.Dict["add"] = py.MustNewMethod("add", py_Catalog_Add, 0, "")
		pyCatalogType.Dict["lookup"] = py.MustNewMethod("lookup", py_Catalog_Lookup, 0, "")
		pyCatalogType.Dict["num_graphs"] = py.MustNewMethod("num_graphs", py_Catalog_NumGraphs, 0, "")
		pyCatalogType.Dict["num_classes"] = py.MustNewMethod("num_classes", py_Catalog_NumClasses, 0, "")
		pyCatalogType.Dict["dump"] = py.MustNewMethod("dump", py_Catalog_Print, 0, "returns one line of graph names per fingerprint")
		pyCatalogType.Dict["close"] = py.MustNewMethod("close", py_Catalog_Close, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("EdgeColoredGraph", py_EdgeColoredGraph, 0, "EdgeColoredGraph(directed)"),
			py.MustNewMethod("ParseGraph", py_ParseGraph, 0, "ParseGraph(expr), e.g. \"graph { 0 [1]; 0 -- 1 -- 2 }\""),
			py.MustNewMethod("CanonicalColorRefinement", py_CanonicalColorRefinement, 0, "CanonicalColorRefinement(debug=False)"),
			py.MustNewMethod("WeisfeilerLeman", py_WeisfeilerLeman, 0, "WeisfeilerLeman(k, ignore_counting=False)"),
			py.MustNewMethod("coloring_to_histogram", py_ColoringToHistogram, 0, ""),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION":   py.String(LIB_VERSION),
			"MAX_DIMENSION": py.Int(wl.MaxDimension),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "kwl",
				Doc:  "canonical color refinement and k-dimensional Weisfeiler-Leman",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
