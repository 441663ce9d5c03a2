package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"eu_records/config"
	"eu_records/models"
	"eu_records/services"

	"github.com/labstack/gommon/log"
)

const usage = `Usage: recordgen <command> [flags]

Commands:
  generate   generate synthetic records and write them to an xlsx workbook
  read       load records from a workbook and print them

Run "recordgen <command> -h" for command flags.
`

func main() {
	// Load configuration
	cfg := config.Load()
	config.SetupLogging(cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "generate":
		err = runGenerate(cfg, os.Args[2:], os.Stdout)
	case "read":
		err = runRead(cfg, os.Args[2:], os.Stdout)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func runGenerate(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	output := fs.String("o", cfg.OutputPath, "output workbook path")
	count := fs.Int("n", cfg.RecordCount, "number of records to generate")
	store := fs.Bool("store", false, "also upload the workbook to the configured storage")
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *verbose {
		log.SetLevel(log.DEBUG)
	}
	if *count < 0 {
		return fmt.Errorf("count must be non-negative, got %d", *count)
	}

	gen := services.NewRecordGenerator(services.NewFakeTextProvider(cfg.Seed), cfg.Seed)
	records := gen.Generate(*count)

	if err := services.WriteRecords(*output, records); err != nil {
		return err
	}
	fmt.Fprintf(out, "Generated %d records to %s\n", len(records), *output)

	if *store {
		services.InitializeStorage(cfg)
		result, err := services.StoreWorkbookFile(context.Background(), services.Storage, *output)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Stored workbook as %s (%s)\n", result.Key, result.URL)
	}
	return nil
}

func runRead(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("read", flag.ContinueOnError)
	lenient := fs.Bool("lenient", false, "treat missing or invalid order cells as 0")
	strict := fs.Bool("strict", false, "fail on missing or invalid order cells")
	limit := fs.Int("limit", 20, "number of records to display (0 = all)")
	key := fs.String("key", "", "read the workbook from storage under this key instead of a file")
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *verbose {
		log.SetLevel(log.DEBUG)
	}

	policy, err := services.ParseNumericPolicy(cfg.NumericPolicy)
	if err != nil {
		return err
	}
	switch {
	case *lenient && *strict:
		return errors.New("-lenient and -strict are mutually exclusive")
	case *lenient:
		policy = services.NumericLenient
	case *strict:
		policy = services.NumericStrict
	}
	opts := services.ReadOptions{Numeric: policy}

	var (
		records []models.Record
		source  string
	)
	switch {
	case *key != "":
		services.InitializeStorage(cfg)
		source = *key
		records, err = services.LoadSnapshot(context.Background(), services.Storage, *key, opts)
	case fs.NArg() == 1:
		source = fs.Arg(0)
		records, err = services.ReadRecords(source, opts)
	default:
		return errors.New("read needs exactly one workbook path or -key")
	}
	if err != nil {
		return err
	}

	log.Debugf("Numeric policy: %s", policy)
	fmt.Fprintf(out, "Loaded %d records from %s\n", len(records), source)
	return services.RenderRecordTable(out, records, *limit)
}
