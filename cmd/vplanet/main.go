// Command vplanet drives a multi-body time evolution from a primary input
// file, in the shape of the teacher's cmd/mission entry point: flag
// parsing, logger setup, then a single blocking Run call whose error
// determines the process exit code.
package main

import (
	"flag"
	"fmt"
	"os"

	vp "vplanet"
	"vplanet/modules/escape"
	"vplanet/modules/stellar"
)

// Exit codes per spec.md §6/§7: 0 success (including a clean halt), 1
// input error, 2 I/O error, 3 numerical/integration error.
const (
	exitOK        = 0
	exitInput     = 1
	exitIO        = 2
	exitIntegrate = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("vplanet", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "verbose (debug-level) logging")
	quiet := fs.Bool("q", false, "suppress all logging")
	force := fs.Bool("f", false, "allow overwriting an existing output file")
	showHelp := fs.Bool("h", false, "show help")
	showHaltHelp := fs.Bool("H", false, "list available halt conditions and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInput
	}
	if *showHelp {
		fs.Usage()
		return exitOK
	}
	if *showHaltHelp {
		fmt.Println("halt conditions: bHaltMinSurfaceWaterMass, bHaltEnvelopeGone (atmesc)")
		return exitOK
	}
	if *verbose && *quiet {
		fmt.Fprintln(os.Stderr, "-v and -q are mutually exclusive")
		return exitInput
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vplanet [flags] <primary-file>")
		return exitInput
	}

	cfg, err := vp.LoadPrimaryConfig(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInput
	}

	var logger = vp.QuietLogger()
	if !*quiet {
		logger = vp.NewLogger(os.Stdout, *verbose)
	}

	sys, err := buildSystem(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInput
	}
	sys.Logger = logger

	outPath := cfg.SystemName + ".out"
	if !*force {
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(os.Stderr, "%s already exists (use -f to overwrite)\n", outPath)
			return exitIO
		}
	}
	outFile, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIO
	}
	defer outFile.Close()
	output := vp.NewOutputDriver(outFile)
	defer output.Close()

	ev, err := vp.NewEvolution(sys, cfg.StopTime, cfg.OutputTime, cfg.Eta, output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInput
	}

	if err := ev.Run(); err != nil {
		switch err.(type) {
		case *vp.HaltError:
			fmt.Println(err)
			return exitOK
		case *vp.InputError:
			fmt.Fprintln(os.Stderr, err)
			return exitInput
		case *vp.NumericalError:
			fmt.Fprintln(os.Stderr, err)
			return exitIntegrate
		default:
			fmt.Fprintln(os.Stderr, err)
			return exitIntegrate
		}
	}
	return exitOK
}

// buildSystem reads every body file named in cfg, in order (body 0 is the
// star, per spec.md's invariant), attaches the two reference modules, and
// applies each body's options.
func buildSystem(cfg *vp.PrimaryConfig) (*vp.System, error) {
	if len(cfg.BodyFiles) == 0 {
		return nil, &vp.InputError{File: "primary", Reason: "no body files"}
	}

	modules := []vp.Module{escape.Module{}, stellar.Module{}}
	bodies := make([]*vp.Body, len(cfg.BodyFiles))
	for i, bf := range cfg.BodyFiles {
		opts, err := vp.ParseBodyFile(bf)
		if err != nil {
			return nil, err
		}
		b := vp.NewBody(bf)
		bodies[i] = b
		if i == 0 {
			b.IsStar = true
		}
		claimed := make(map[string]bool, len(opts))
		remaining := make(map[string]string, len(opts))
		for k, v := range opts {
			remaining[k] = v
		}
		for _, m := range modules {
			if err := m.ReadOptions(b, remaining); err != nil {
				return nil, err
			}
		}
		for k := range opts {
			if _, ok := remaining[k]; !ok {
				claimed[k] = true
			}
		}
		for k := range remaining {
			if !claimed[k] {
				return nil, &vp.InputError{File: bf, Option: k, Reason: "unrecognized option"}
			}
		}
	}

	star := bodies[0]
	sys := vp.NewSystem(star, bodies[1:]...)
	sys.Modules = modules
	return sys, nil
}
