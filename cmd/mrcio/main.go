package main

import (
	"flag"
	"fmt"
	"os"

	"mrcio/internal/logging"
	"mrcio/pkg/config"
)

const usage = `usage: mrcio [-config file] [-v] <command> [arguments]

commands:
  header  <file>...                     print header metadata as YAML
  slices  [-axis x|y|z] [-out dir] <file>  export slices as JPEG images
  stack   [-max n] -output file <file>...  concatenate images into stacks
  window  -size n -at x,y [-at x,y]... -output file <file>
                                        cut windows out of a micrograph
`

func main() {
	configPath := flag.String("config", "mrcio.yaml", "Path to the configuration file")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Output.Verbose = true
	}

	cfg.Output.Log.SetLogger()
	if cfg.Output.Verbose {
		logging.SetLogMode(logging.DebugMode)
	}
	defer logging.Shutdown()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	logging.Debugf("running %s with %d arguments", cmd, len(args))

	switch cmd {
	case "header":
		err = runHeader(cfg, args)
	case "slices":
		err = runSlices(cfg, args)
	case "stack":
		err = runStack(cfg, args)
	case "window":
		err = runWindow(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		logging.Errorf("%s failed: %v", cmd, err)
		logging.Shutdown()
		os.Exit(1)
	}
}
