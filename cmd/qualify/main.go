// qualify projects documents through qualifier codecs. It reads one
// document on stdin, applies the wrapped / element / filter qualifiers and
// writes the projected value on stdout, optionally converting between
// wire formats.
//
//	qualify --from yaml --wrapped spec.servers --element last < deploy.yaml
//	qualify --from msgpack+zstd --to json --filter-nulls < items.bin
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/pflag"
	"github.com/zoobzio/qualify"
	"github.com/zoobzio/qualify/bson"
	"github.com/zoobzio/qualify/cbor"
	"github.com/zoobzio/qualify/json"
	"github.com/zoobzio/qualify/jsonc"
	"github.com/zoobzio/qualify/msgpack"
	"github.com/zoobzio/qualify/yaml"
	"github.com/zoobzio/qualify/zstd"
)

// errUsage marks command-line mistakes.
var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "qualify: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type options struct {
	from           string
	to             string
	wrapped        string
	lenient        bool
	element        string
	filterNulls    bool
	serializeNulls bool
	indent         string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	flags := pflag.NewFlagSet("qualify", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&opts.from, "from", "f", "json", "input format ("+strings.Join(formatNames(), ", ")+"), optionally with +zstd")
	flags.StringVarP(&opts.to, "to", "t", "", "output format (default: the input format)")
	flags.StringVarP(&opts.wrapped, "wrapped", "w", "", "dot-separated member path to unwrap, e.g. data.user")
	flags.BoolVar(&opts.lenient, "lenient", false, "treat null on the wrapped path as a null result")
	flags.StringVarP(&opts.element, "element", "e", "", "array element to select: first, last or an index")
	flags.BoolVar(&opts.filterNulls, "filter-nulls", false, "drop null elements from the selected array")
	flags.BoolVar(&opts.serializeNulls, "serialize-nulls", false, "write null members instead of omitting them")
	flags.StringVar(&opts.indent, "indent", "", "indent JSON output with this string")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: qualify [flags] < input\n\nFlags:\n%s", flags.FlagUsages())
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, flags.Arg(0))
	}
	if opts.to == "" {
		opts.to = opts.from
	}
	if opts.lenient && opts.wrapped == "" {
		return fmt.Errorf("%w: --lenient requires --wrapped", errUsage)
	}

	from, err := lookupFormat(opts.from, "")
	if err != nil {
		return err
	}
	to, err := lookupFormat(opts.to, opts.indent)
	if err != nil {
		return err
	}
	in, out, err := qualifiers(opts)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	reg := qualify.NewRegistry()
	ctx := context.Background()
	var result []byte
	if opts.filterNulls {
		result, err = project[[]jsontext.Value](ctx, reg, in, out, from, to, data)
	} else {
		result, err = project[jsontext.Value](ctx, reg, in, out, from, to, data)
	}
	if err != nil {
		return err
	}
	if _, err := stdout.Write(result); err != nil {
		return err
	}
	if len(result) > 0 && result[len(result)-1] != '\n' && printable(opts.to) {
		_, err = io.WriteString(stdout, "\n")
	}
	return err
}

// project decodes data through the input qualifiers and writes the result
// through the output qualifiers.
func project[T any](ctx context.Context, reg *qualify.Registry, in, out []qualify.Qualifier, from, to qualify.Format, data []byte) ([]byte, error) {
	reader, err := qualify.For[T](reg, in...)
	if err != nil {
		return nil, err
	}
	writer, err := qualify.For[T](reg, out...)
	if err != nil {
		return nil, err
	}
	v, err := reader.UnmarshalFrom(ctx, from, data)
	if err != nil {
		return nil, err
	}
	return writer.MarshalTo(ctx, to, v)
}

// qualifiers builds the decode and encode qualifier sets for opts.
func qualifiers(opts options) (in, out []qualify.Qualifier, err error) {
	if opts.wrapped != "" {
		path := strings.Split(opts.wrapped, ".")
		for _, s := range path {
			if s == "" {
				return nil, nil, fmt.Errorf("%w: empty segment in --wrapped %q", errUsage, opts.wrapped)
			}
		}
		w := qualify.Wrap(path...)
		if opts.lenient {
			w = w.Lenient()
		}
		in = append(in, w)
	}
	if opts.element != "" {
		idx, err := parseIndex(opts.element)
		if err != nil {
			return nil, nil, err
		}
		in = append(in, qualify.ElementAt{Index: idx})
	}
	if opts.filterNulls {
		in = append(in, qualify.FilterNulls{})
	}
	if opts.serializeNulls {
		out = append(out, qualify.SerializeNulls{})
	}
	return in, out, nil
}

func parseIndex(s string) (int, error) {
	switch s {
	case "first":
		return qualify.First, nil
	case "last":
		return qualify.Last, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: --element wants first, last or a non-negative index, got %q", errUsage, s)
	}
	return n, nil
}

var formats = map[string]func(indent string) qualify.Format{
	"json": func(indent string) qualify.Format {
		if indent != "" {
			return json.New(json.WithIndent(indent))
		}
		return json.New()
	},
	"jsonc":   func(string) qualify.Format { return jsonc.New() },
	"yaml":    func(string) qualify.Format { return yaml.New() },
	"msgpack": func(string) qualify.Format { return msgpack.New() },
	"bson":    func(string) qualify.Format { return bson.New() },
	"cbor":    func(string) qualify.Format { return cbor.New() },
}

func formatNames() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupFormat resolves a format name such as "yaml" or "cbor+zstd".
func lookupFormat(name, indent string) (qualify.Format, error) {
	base, compressed := strings.CutSuffix(name, "+zstd")
	newFormat, ok := formats[base]
	if !ok {
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", errUsage, name, strings.Join(formatNames(), ", "))
	}
	f := newFormat(indent)
	if compressed {
		f = zstd.New(f)
	}
	return f, nil
}

// printable reports whether output in the named format is text.
func printable(name string) bool {
	switch name {
	case "json", "jsonc":
		return true
	}
	return false
}
