package main

import (
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	_ "github.com/fine-structures/kwl/pykwl"
	_ "github.com/go-python/gpython/stdlib"
)

// runPython runs the script at pathname, or a REPL if pathname is empty.
func runPython(pathname string) error {
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	if pathname == "" {
		r, err := newREPL(ctx)
		if err != nil {
			return err
		}
		cli.RunREPL(r)
		return nil
	}
	return runScript(ctx, pathname)
}

func runScript(ctx py.Context, pathname string) error {
	startTime := time.Now()
	klog.V(1).Infof("running %q", pathname)

	if _, err := py.RunFile(ctx, pathname, py.CompileOpts{}, nil); err != nil {
		py.TracebackDump(err)
		return errors.Wrapf(err, "script %q", pathname)
	}

	klog.V(1).Infof("%q finished in %v", pathname, time.Since(startTime))
	return nil
}

// newREPL returns a REPL whose module already has kwl imported.
func newREPL(ctx py.Context) (*repl.REPL, error) {
	r := repl.New(ctx)
	if _, err := py.RunSrc(ctx, "import kwl", "<kwl>", r.Module); err != nil {
		return nil, errors.Wrap(err, "importing kwl")
	}
	return r, nil
}
