// Command cpdh builds shape data sets from silhouette images and retrieves
// the closest category for new images.
//
// Usage:
//
//	cpdh describe [-n 100] <image>...
//	cpdh build    [-dir <images>] [-counts 50,100,250]
//	cpdh match    [-dir <images>] [-n 100] [-top 5] <image>...
//	cpdh evaluate [-dir <images>] [-n 100]
//	cpdh config   init|show [-dir <images>] [-force]
//	cpdh version
//
// Every command accepts -config to point at a JSON configuration file; by
// default ~/.config/cpdh/config.json is used.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
)

var errUsage = errors.New("usage")

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Fatalf("cpdh: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "describe":
		return runDescribe(ctx, rest, out)
	case "build":
		return runBuild(ctx, rest, out)
	case "match":
		return runMatch(ctx, rest, out)
	case "evaluate":
		return runEvaluate(ctx, rest, out)
	case "config":
		return runConfig(rest, out)
	case "version":
		return runVersion(out)
	case "help", "-h", "-help", "--help":
		usage(out)
		return nil
	default:
		fmt.Fprintf(out, "Unknown command %q\n\n", cmd)
		usage(out)
		return errUsage
	}
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "Usage: cpdh <command> [flags]")
	fmt.Fprintln(out, "\nCommands:")
	fmt.Fprintln(out, "  describe   print the histogram of each image")
	fmt.Fprintln(out, "  build      build data sets from the images in a directory")
	fmt.Fprintln(out, "  match      find the closest category for each image")
	fmt.Fprintln(out, "  evaluate   leave-one-out accuracy of the data sets")
	fmt.Fprintln(out, "  config     write (init) or print (show) the configuration")
	fmt.Fprintln(out, "  version    print version information")
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// parse runs fs over args, turning -h into a nil error and bad flags into
// errUsage.
func parse(fs *flag.FlagSet, args []string) (help bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return false, errUsage
	}
	return false, nil
}
