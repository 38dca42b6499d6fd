// Package cmd owns the implementation details of the CLI command.
package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"bankdash/internal/pkg/chart"
	"bankdash/internal/pkg/config"
	"bankdash/internal/pkg/dashboard"
	"bankdash/internal/pkg/dataset"
	"bankdash/internal/pkg/image"
	"bankdash/internal/pkg/server"
)

// Command holds command line flags and executes the bankdash command.
//
// It knows how to load a configuration file in a [config.Config] and manage CLI flag configuration overrides.
//
// The main purpose of this package is to deal with io's: opening and closing files.
// All other invoked functionalities deal with streams.
type Command struct {
	Config      string
	DataFile    string
	OutputFile  string
	Environment string
	Addr        string
	Filters     filterFlags
	Serve       bool
	Report      bool
	Generate    bool
	Png         bool
	L           *slog.Logger
}

// NewCommand builds a CLI command with registered flags and an injected logger.
func NewCommand() *Command {
	// inject a structured logger
	cli := &Command{
		L: slog.Default().With(slog.String("module", "main")),
	}

	cli.registerFlags()

	return cli
}

// Parse command line flags and arguments.
func (*Command) Parse() error {
	return flag.CommandLine.Parse(os.Args[1:])
}

// Fatalf logs an error message then exits. The output is spewed on both stderr and the structured logger output.
func (c *Command) Fatalf(err error) {
	c.L.Error(err.Error())
	log.Fatalf("%v", err)
}

// Execute the CLI with flags and extra arguments.
//
// If no argument is passed, command line arguments (i.e. [os.Args]) are used.
// The only positional argument is an optional CSV data file, overriding the
// configured one ("-" reads from stdin).
func (c *Command) Execute(args ...string) error {
	if args == nil { // passing explicit args allows for testing Execute without altering [os.Args]
		args = c.args()
	}
	if len(args) > 0 {
		c.DataFile = args[0]
	}

	if c.Generate {
		// discover the dataset schema and emit a starter configuration
		return c.generate()
	}

	cfg, cleanup, err := c.prepareConfig()
	if err != nil {
		return err
	}
	defer cleanup()

	// 1. load the dataset, once
	ds, err := c.loadDataset(cfg)
	if err != nil {
		return err
	}

	builder := dashboard.New(cfg, ds)

	if c.Serve {
		// serve the dashboard until interrupted
		return server.New(cfg, builder, server.WithAddr(c.Addr)).Start()
	}

	sel, err := c.Filters.Selection(cfg)
	if err != nil {
		return err
	}

	if c.Report {
		// just want to report about the content of the dataset
		return c.report(ds, sel)
	}

	// 2. recompute the dashboard for the requested filters and build the page
	t0 := time.Now()
	page := chart.New(cfg, builder.Build(sel)).BuildPage()
	c.L.Info("built dashboard page", slog.Duration("duration", time.Since(t0)))

	// 3. render the page as HTML, possibly to stdout, possibly to temp file
	htmlWriter, htmlCloser, err := getWriter(cfg.Outputs.HTMLFile, "HTML")
	if err != nil {
		return err
	}

	if err := page.Render(htmlWriter); err != nil {
		htmlCloser()
		return fmt.Errorf("rendering page: %w", err)
	}

	htmlCloser()

	if cfg.Outputs.PngFile == "" {
		// html only: we're done
		return nil
	}

	// 4. convert the HTML page to a PNG image, possibly to stdout
	htmlReader, htmlCloser, err := getReader(cfg.Outputs.HTMLFile, "HTML")
	if err != nil {
		return err
	}

	pngWriter, pngCloser, err := getWriter(cfg.Outputs.PngFile, "PNG")
	if err != nil {
		htmlCloser()
		return err
	}

	defer pngCloser()

	shot := cfg.Render.Screenshot
	r := image.New(
		image.WithWidth(shot.Width),
		image.WithHeight(shot.Height),
		image.WithSleep(shot.SleepDuration()),
	)

	if err = r.Render(pngWriter, htmlReader); err != nil {
		return fmt.Errorf("rendering image: %w", err)
	}

	return nil
}

func (*Command) args() []string {
	return flag.CommandLine.Args()
}

func (c *Command) registerFlags() {
	defaults := Command{
		Config:      "",
		DataFile:    "",
		OutputFile:  "-",
		Environment: "",
		Addr:        "localhost:8080",
		Serve:       false,
		Report:      false,
		Generate:    false,
		Png:         false,
	}

	flag.StringVar(&c.Config, "config", defaults.Config, "config file (defaults to the built-in configuration)")
	flag.StringVar(&c.Config, "c", defaults.Config, "config file (shorthand)")
	flag.StringVar(&c.DataFile, "data", defaults.DataFile, "CSV data file, overrides the configured one")
	flag.StringVar(&c.DataFile, "d", defaults.DataFile, "CSV data file (shorthand)")
	flag.StringVar(&c.OutputFile, "output", defaults.OutputFile, "file output or - for standard output")
	flag.StringVar(&c.OutputFile, "o", defaults.OutputFile, "file output or - for standard output (shorthand)")
	flag.StringVar(&c.Environment, "environment", defaults.Environment, "environment string")
	flag.StringVar(&c.Environment, "e", defaults.Environment, "environment string (shorthand)")
	flag.StringVar(&c.Addr, "addr", defaults.Addr, "listening address in serve mode")
	flag.BoolVar(&c.Serve, "serve", defaults.Serve, "serve the dashboard over HTTP instead of rendering files")
	flag.BoolVar(&c.Report, "r", defaults.Report, "report dataset contents only, no rendering (shorthand)")
	flag.BoolVar(&c.Report, "report", defaults.Report, "report dataset contents only")
	flag.BoolVar(&c.Generate, "generate", defaults.Generate, "discover the dataset schema and print a starter config")
	flag.BoolVar(&c.Png, "png", defaults.Png, "enable PNG screenshot output")
	flag.Var(&c.Filters, "filter", "filter as field=value, may be repeated")
	flag.Var(&c.Filters, "f", "filter as field=value (shorthand)")
}

func (c *Command) prepareConfig() (cfg *config.Config, cleanup func(), err error) {
	if c.Config == "" {
		cfg, err = config.LoadDefaults()
	} else {
		cfg, err = config.Load(c.Config)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if err = c.setConfig(cfg); err != nil {
		return nil, nil, fmt.Errorf("preparing config: %w", err)
	}

	if cfg.Outputs.IsTemp && !c.Report && !c.Serve {
		cleanup = func() {
			_ = os.Remove(cfg.Outputs.HTMLFile)
		}

		return cfg, cleanup, err
	}

	return cfg, func() {}, err
}

// apply CLI flags overrides to YAML config.
func (c *Command) setConfig(cfg *config.Config) error {
	if c.Environment != "" {
		cfg.Environment = c.Environment
	}

	if c.DataFile != "" {
		cfg.Dataset.File = c.DataFile
	}

	if c.OutputFile != "" && c.OutputFile != "-" {
		// an outfile is defined: infer the PNG file from the HTML file provided
		cfg.Outputs.HTMLFile = inferHTMLFile(c.OutputFile)
		if cfg.Outputs.PngFile == "" && c.Png {
			cfg.Outputs.PngFile = inferImageFile(cfg.Outputs.HTMLFile)
		}
	}

	if c.Report || c.Serve {
		return nil
	}

	switch {
	case cfg.Outputs.HTMLFile == "" && cfg.Outputs.PngFile == "":
		c.L.Info("output sent to standard output as HTML, no PNG image rendered")
		if c.Png {
			c.L.Info("set an output file to render a PNG image")
		}
		cfg.Outputs.HTMLFile = "-"
	case cfg.Outputs.HTMLFile == "" && cfg.Outputs.PngFile != "":
		c.L.Info("HTML generated as a temporary file to produce PNG")
		tmp, err := os.CreateTemp("", "bankdash.*.html")
		if err != nil {
			return err
		}
		cfg.Outputs.HTMLFile = tmp.Name()
		cfg.Outputs.IsTemp = true
		_ = tmp.Close()
	}

	return nil
}

// loadDataset reads the configured CSV data file ("-" reads stdin).
func (c *Command) loadDataset(cfg *config.Config) (*dataset.Dataset, error) {
	loader := dataset.NewLoader(cfg)

	t0 := time.Now()
	defer func() {
		c.L.Info("loaded dataset", slog.Duration("duration", time.Since(t0)))
	}()

	if cfg.Dataset.File == "-" {
		return loader.Read(os.Stdin, "stdin")
	}

	return loader.LoadFile(cfg.Dataset.File)
}

// report writes a JSON profile of the (possibly filtered) dataset to stdout.
func (c *Command) report(ds *dataset.Dataset, sel dataset.Selection) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", " ")

	return enc.Encode(ds.Filter(sel).Profile())
}

// generate discovers the schema of the data file and prints a starter
// configuration YAML.
func (c *Command) generate() error {
	if c.DataFile == "" {
		return fmt.Errorf("generate requires a CSV data file")
	}

	var (
		rdr     io.Reader
		source  string
		cleanup func()
	)
	if c.DataFile == "-" {
		rdr, source, cleanup = os.Stdin, "stdin", func() {}
	} else {
		f, closer, err := getReader(c.DataFile, "CSV")
		if err != nil {
			return err
		}
		rdr, source, cleanup = f, c.DataFile, closer
	}
	defer cleanup()

	input, err := dataset.Discover(rdr, source)
	if err != nil {
		return fmt.Errorf("discovering schema: %w", err)
	}

	wrt, closer, err := getWriter(c.OutputFile, "YAML")
	if err != nil {
		return err
	}
	defer closer()

	return config.Generate(input).EncodeYAML(wrt)
}

func getReader(file, kind string) (rdr *os.File, cleanup func(), err error) {
	rdr, err = os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s file: %q: %w", kind, file, err)
	}

	cleanup = func() {
		_ = rdr.Close()
	}

	return rdr, cleanup, nil
}

func getWriter(file, kind string) (wrt *os.File, cleanup func(), err error) {
	if file == "" || file == "-" {
		return os.Stdout, func() {}, nil
	}

	wrt, err = os.Create(file)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s file for writing: %q: %w", kind, file, err)
	}

	cleanup = func() {
		_ = wrt.Close()
	}

	return wrt, cleanup, nil
}

// filterFlags collects repeated -f field=value flags.
type filterFlags []string

func (f *filterFlags) String() string {
	return strings.Join(*f, ",")
}

func (f *filterFlags) Set(value string) error {
	*f = append(*f, value)

	return nil
}

// Selection parses the collected flags into a [dataset.Selection].
//
// Fields must be configured filter dimensions: an unknown field would
// otherwise silently match nothing and yield an all-empty dashboard.
func (f filterFlags) Selection(cfg *config.Config) (dataset.Selection, error) {
	sel := make(dataset.Selection, len(f))

	for _, v := range f {
		field, value, found := strings.Cut(v, "=")
		if !found || field == "" {
			return nil, fmt.Errorf("invalid filter %q: expected field=value", v)
		}
		if !slices.Contains(cfg.Filters, field) {
			return nil, fmt.Errorf("unknown filter dimension %q (configured dimensions: %s)",
				field, strings.Join(cfg.Filters, ", "))
		}
		if value == dataset.AllValues {
			continue
		}
		sel[field] = value
	}

	return sel, nil
}

func inferHTMLFile(base string) string {
	ext := path.Ext(base)
	image, _ := strings.CutSuffix(base, ext)

	return image + ".html"
}

func inferImageFile(base string) string {
	ext := path.Ext(base)
	image, _ := strings.CutSuffix(base, ext)

	return image + ".png"
}
