package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/fine-structures/kwl/libwl"
	"github.com/fine-structures/kwl/libwl/canonical"
	"github.com/fine-structures/kwl/libwl/catalog"
	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/libwl/iterative"
	"github.com/fine-structures/kwl/wl"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Job is the content of a job file, e.g.
//
//	dimension = 0          # 0: canonical refinement, 1: 1-WL, 2: 2-FWL
//	max_iterations = 0     # 0: until stable
//
//	catalog {
//	  path = "catalog.db"
//	}
//
//	graph "P3" {
//	  expr = "graph { 0 -- 1 -- 2 }"
//	}
//	graph "K4" {
//	  file = "graphs/k4.graph"
//	}
type Job struct {
	Dimension      int            `hcl:"dimension,optional"`
	IgnoreCounting bool           `hcl:"ignore_counting,optional"`
	MaxIterations  int            `hcl:"max_iterations,optional"`
	Debug          int            `hcl:"debug,optional"`
	Label          string         `hcl:"label,optional"`
	Print          *PrintConfig   `hcl:"print,block"`
	Catalog        *CatalogConfig `hcl:"catalog,block"`
	Graphs         []*GraphConfig `hcl:"graph,block"`

	baseDir string
}

type PrintConfig struct {
	Graph     bool `hcl:"graph,optional"`
	Histogram bool `hcl:"histogram,optional"`
	Factor    bool `hcl:"factor,optional"`
	Spectrum  bool `hcl:"spectrum,optional"`
}

type CatalogConfig struct {
	Path     string `hcl:"path,optional"`
	ReadOnly bool   `hcl:"read_only,optional"`
}

type GraphConfig struct {
	Name string `hcl:"name,label"`
	Expr string `hcl:"expr,optional"`
	File string `hcl:"file,optional"`
}

// JobReport tallies a finished job.
type JobReport struct {
	Graphs     int
	Failed     int // graphs that failed to load, refine, or file
	NewClasses int // for a read-only catalog, graphs that matched nothing
}

// LoadJob decodes and checks the job file at pathname.  Graph files are resolved relative to the job file.
func LoadJob(pathname string) (*Job, error) {
	job := &Job{}
	if err := hclsimple.DecodeFile(pathname, nil, job); err != nil {
		return nil, errors.Wrapf(err, "decoding job %q", pathname)
	}
	job.baseDir = filepath.Dir(pathname)
	if err := job.validate(); err != nil {
		return nil, err
	}
	return job, nil
}

func (job *Job) validate() error {
	if job.Dimension < 0 || job.Dimension > wl.MaxDimension {
		return errors.Wrapf(wl.ErrBadDimension, "dimension %d", job.Dimension)
	}
	if job.Dimension == 0 && (job.IgnoreCounting || job.MaxIterations != 0) {
		return errors.New("ignore_counting and max_iterations apply only to dimension 1 or 2")
	}
	if job.Catalog != nil {
		if job.Dimension != 0 {
			return errors.Wrap(wl.ErrBadCatalogParam, "a catalog needs canonical fingerprints (dimension 0)")
		}
		if job.Catalog.ReadOnly && job.Catalog.Path == "" {
			return errors.Wrap(wl.ErrBadCatalogParam, "read_only catalog needs a path")
		}
	}
	seen := make(map[string]struct{}, len(job.Graphs))
	for _, gc := range job.Graphs {
		if (gc.Expr == "") == (gc.File == "") {
			return errors.Errorf("graph %q: set exactly one of expr or file", gc.Name)
		}
		if _, dupe := seen[gc.Name]; dupe {
			return errors.Errorf("graph %q declared twice", gc.Name)
		}
		seen[gc.Name] = struct{}{}
	}
	return nil
}

func (job *Job) printOpts() wl.PrintOpts {
	opts := wl.DefaultPrintOpts
	opts.Label = job.Label
	if job.Print != nil {
		opts.Graph = job.Print.Graph
		opts.Histogram = job.Print.Histogram
		opts.Factor = job.Print.Factor
		opts.Spectrum = job.Print.Spectrum
	}
	return opts
}

// items loads each graph; a graph that fails to load travels on as an errored item.
func (job *Job) items() []*libwl.Item {
	items := make([]*libwl.Item, len(job.Graphs))
	for i, gc := range job.Graphs {
		item := &libwl.Item{Name: gc.Name}
		expr := gc.Expr
		if gc.File != "" {
			pathname := gc.File
			if !filepath.IsAbs(pathname) {
				pathname = filepath.Join(job.baseDir, pathname)
			}
			buf, err := os.ReadFile(pathname)
			if err != nil {
				item.Err = err
			}
			expr = string(buf)
		}
		if item.Err == nil {
			item.Graph, item.Err = graph.Parse(expr)
		}
		items[i] = item
	}
	return items
}

// Run refines every graph of the job, writes each result to out, and files the fingerprints in the job's catalog
// (or just drops duplicates when no catalog is given).  out is closed once all results are written.
func (job *Job) Run(out io.WriteCloser) (JobReport, error) {
	report := JobReport{}

	var W *iterative.WeisfeilerLeman
	if job.Dimension > 0 {
		var err error
		W, err = iterative.New(job.Dimension,
			iterative.WithIgnoreCounting(job.IgnoreCounting),
			iterative.WithMaxIterations(job.MaxIterations),
			iterative.WithDebug(job.Debug))
		if err != nil {
			return report, err
		}
	}

	var (
		cat    wl.Catalog
		catCtx wl.CatalogContext
	)
	if job.Catalog != nil {
		catCtx = wl.NewCatalogContext()
		defer func() {
			catCtx.Close()
			<-catCtx.Done()
		}()

		var err error
		cat, err = catalog.OpenCatalog(catCtx, wl.CatalogOpts{
			DbPathName: job.Catalog.Path,
			ReadOnly:   job.Catalog.ReadOnly,
		})
		if err != nil {
			return report, err
		}
	}

	items := job.items()
	report.Graphs = len(items)

	stream := libwl.StreamItems(items)
	if W == nil {
		stream = stream.Refine(canonical.WithDebug(job.Debug))
	} else {
		stream = stream.RefineWL(W)
	}

	stream = stream.Print(out, job.printOpts())

	var errs []error
	switch {
	case cat == nil:
		report.NewClasses, errs = stream.DropDupes().PullErrs()
	case cat.IsReadOnly():
		report.NewClasses, errs = lookupAll(cat, stream)
	default:
		report.NewClasses, errs = stream.AddTo(cat).PullErrs()
	}
	report.Failed = len(errs)
	for _, err := range errs {
		klog.Warningf("%v", err)
	}

	if cat != nil {
		klog.Infof("catalog holds %d graphs in %d classes", cat.NumGraphs(), cat.NumClasses())
		if err := cat.Close(); err != nil {
			return report, err
		}
	}

	return report, nil
}

// lookupAll reports the catalog matches of each item and returns how many items matched nothing, along with every error met.
func lookupAll(cat wl.Catalog, stream *libwl.GraphStream) (int, []error) {
	unmatched := 0
	var errs []error
	for item := range stream.Outlet {
		if item.Err != nil {
			errs = append(errs, item.Err)
			continue
		}
		names, err := cat.Lookup(item.Fingerprint)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "lookup %q", item.Name))
			continue
		}
		if len(names) == 0 {
			unmatched++
			klog.Infof("%q: no match", item.Name)
		} else {
			klog.Infof("%q matches %v", item.Name, names)
		}
	}
	return unmatched, errs
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
