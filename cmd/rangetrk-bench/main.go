package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/rangetrk/pkg/bench"
	"github.com/robotalks/rangetrk/pkg/pins"
	"github.com/robotalks/rangetrk/pkg/tracker"
)

var (
	quiet   bool
	dumpRef bool
	viaPins bool
)

func init() {
	flag.BoolVar(&quiet, "q", quiet, "Only print the summary.")
	flag.BoolVar(&dumpRef, "dump-ref", dumpRef, "Print the reference script in YAML and exit.")
	flag.BoolVar(&viaPins, "pins", viaPins, "Drive and sample the tracker through its pins.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if dumpRef {
		data, err := bench.Reference().Marshal()
		if err != nil {
			log.Fatalln(err)
		}
		os.Stdout.Write(data)
		return
	}

	var scripts []*bench.Script
	for _, fn := range flag.Args() {
		s, err := bench.LoadFile(fn)
		if err != nil {
			log.Fatalln(err)
		}
		scripts = append(scripts, s)
	}
	if len(scripts) == 0 {
		scripts = append(scripts, bench.Reference())
	}

	failed := 0
	for _, s := range scripts {
		var report *bench.Report
		var err error
		if viaPins {
			report, err = bench.RunChip(pins.NewChip(), s)
		} else {
			report, err = bench.Run(tracker.New(), s)
		}
		if report == nil {
			log.Fatalln(err)
		}
		if !quiet {
			if _, err := report.Trace.WriteTo(os.Stdout); err != nil {
				glog.Errorf("%s: write trace: %v", s.Name, err)
			}
		}
		if err != nil {
			failed++
			glog.Errorf("%s: %v", s.Name, err)
		}
		fmt.Println(report)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
