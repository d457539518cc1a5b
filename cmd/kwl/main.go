package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

func main() {

	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.Parse()

	// kwl job.hcl   -- refine and catalog the graphs named in a job file
	// kwl script.py -- run a gpython script (module "kwl" is importable)
	// kwl           -- gpython REPL
	pathname := flag.Arg(0)
	var err error
	if filepath.Ext(pathname) == ".hcl" {
		err = runJobFile(pathname)
	} else {
		err = runPython(pathname)
	}
	if err != nil {
		klog.Errorf("%v", err)
		klog.Flush()
		os.Exit(1)
	}

	klog.Flush()
}

func runJobFile(pathname string) error {
	job, err := LoadJob(pathname)
	if err != nil {
		return err
	}
	report, err := job.Run(nopCloser{os.Stdout})
	if err != nil {
		return errors.Wrapf(err, "job %q", pathname)
	}
	klog.Infof("%d graphs read, %d failed, %d new classes", report.Graphs, report.Failed, report.NewClasses)
	return nil
}
