package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/collate"

	"github.com/pitabwire/culture"
	"github.com/pitabwire/culture/config"
	"github.com/pitabwire/culture/localization"
	"github.com/pitabwire/culture/version"
)

const (
	minArgsCommand = 2
	minArgsCompare = 3
	minArgsFormat  = 2
	minArgsTrans   = 2
)

func main() {
	if len(os.Args) < minArgsCommand {
		usage(os.Stdout)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "resolve":
		exitOnErr(run(os.Args[1], os.Args[2:], os.Stdout, cmdResolve))
	case "compare":
		exitOnErr(run(os.Args[1], os.Args[2:], os.Stdout, cmdCompare))
	case "sort":
		exitOnErr(run(os.Args[1], os.Args[2:], os.Stdout, cmdSort))
	case "format":
		exitOnErr(run(os.Args[1], os.Args[2:], os.Stdout, cmdFormat))
	case "translate":
		exitOnErr(run(os.Args[1], os.Args[2:], os.Stdout, cmdTranslate))
	case "version":
		_, _ = fmt.Fprintln(os.Stdout, version.String())
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		// #nosec G705 -- CLI output is not rendered in an HTML context.
		fmt.Fprintf(os.Stderr, "unknown command: %q\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "culture <command> [--config FILE] [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  resolve <culture>...")
	fmt.Fprintln(w, "  compare [--ignore-case] <culture> <a> <b>")
	fmt.Fprintln(w, "  sort [--ignore-case] <culture> <value>...")
	fmt.Fprintln(w, "  format <culture> <number>")
	fmt.Fprintln(w, "  translate <culture> <message-id> [key=value]...")
	fmt.Fprintln(w, "  version")
}

type flags struct {
	ignoreCase bool
}

func (fl flags) collateOptions() []collate.Option {
	if fl.ignoreCase {
		return []collate.Option{collate.IgnoreCase}
	}
	return nil
}

type command func(cultures *culture.Manager, fl flags, args []string, out io.Writer) error

// run parses the shared flags, builds a culture manager and hands over to cmd.
func run(name string, args []string, out io.Writer, cmd command) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "yaml configuration file")
	var fl flags
	fs.BoolVar(&fl.ignoreCase, "ignore-case", false, "compare ignoring case")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var opts []culture.Option
	if *configPath != "" {
		cfg, err := config.FromYAML[config.ConfigurationDefault](*configPath)
		if err != nil {
			return err
		}
		opts = append(opts, culture.WithConfig(&cfg))
	}

	ctx, cultures, err := culture.NewManager(context.Background(), opts...)
	if err != nil {
		return err
	}
	defer func() { _ = cultures.Shutdown(ctx) }()

	return cmd(cultures, fl, fs.Args(), out)
}

func cmdResolve(cultures *culture.Manager, _ flags, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errors.New("culture name is required")
	}

	for _, name := range args {
		c, err := cultures.Resolve(name)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(out, "name:     %s\n", c.Name())
		_, _ = fmt.Fprintf(out, "tag:      %s\n", c.Tag())
		_, _ = fmt.Fprintf(out, "english:  %s\n", c.EnglishName())
		_, _ = fmt.Fprintf(out, "native:   %s\n", c.NativeName())
		_, _ = fmt.Fprintf(out, "parent:   %s\n", c.Parent())
		_, _ = fmt.Fprintf(out, "compare:  %s\n", c.CompareInfo().Name())
	}
	return nil
}

func cmdCompare(cultures *culture.Manager, fl flags, args []string, out io.Writer) error {
	if len(args) < minArgsCompare {
		return errors.New("culture and two values are required")
	}

	c, err := cultures.Resolve(args[0])
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, c.CompareInfo().Compare(args[1], args[2], fl.collateOptions()...))
	return nil
}

func cmdSort(cultures *culture.Manager, fl flags, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errors.New("culture name is required")
	}

	c, err := cultures.Resolve(args[0])
	if err != nil {
		return err
	}

	values := append([]string(nil), args[1:]...)
	c.CompareInfo().Sort(values, fl.collateOptions()...)

	_, _ = fmt.Fprintln(out, strings.Join(values, "\n"))
	return nil
}

func cmdFormat(cultures *culture.Manager, _ flags, args []string, out io.Writer) error {
	if len(args) < minArgsFormat {
		return errors.New("culture and number are required")
	}

	c, err := cultures.Resolve(args[0])
	if err != nil {
		return err
	}

	printer := c.Printer()
	if integer, err := strconv.ParseInt(args[1], 10, 64); err == nil {
		_, _ = printer.Fprintf(out, "%d\n", integer)
		return nil
	}

	number, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", args[1], err)
	}

	_, _ = printer.Fprintf(out, "%v\n", number)
	return nil
}

// cmdTranslate renders a message from the configured translations folder in the
// given culture, with key=value arguments as template data.
func cmdTranslate(cultures *culture.Manager, _ flags, args []string, out io.Writer) error {
	if len(args) < minArgsTrans {
		return errors.New("culture and message id are required")
	}

	c, err := cultures.Resolve(args[0])
	if err != nil {
		return err
	}

	cfg, ok := cultures.Config().(config.ConfigurationCulture)
	if !ok {
		return errors.New("configuration does not name a translations folder")
	}

	translations, err := localization.NewManagerFromConfig(cfg)
	if err != nil {
		return err
	}

	variables := map[string]any{}
	for _, arg := range args[2:] {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("template data %q is not in key=value form", arg)
		}
		variables[key] = value
	}

	ctx := cultures.SetCurrentUI(context.Background(), c)
	_, _ = fmt.Fprintln(out, translations.TranslateWithMap(ctx, ctx, args[1], variables))
	return nil
}

func exitOnErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
