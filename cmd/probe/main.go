// Command probe runs the field extraction engine over a saved response body.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-json"

	"github.com/sophialabs/apiprobe/internal/domain/extract"
	"github.com/sophialabs/apiprobe/internal/domain/jsonvalue"
	"github.com/sophialabs/apiprobe/internal/infrastructure/services"
)

// CLI defines the command-line interface.
type CLI struct {
	Input  string `help:"Path to the response body. If not specified, reads from stdin." short:"i" type:"path"`
	Path   string `help:"Field path to extract, e.g. data.items[0]." short:"p"`
	Schema string `help:"Comma-separated fields that must be strings in the result." short:"s"`
	Strict bool   `help:"Fail when the body is not JSON instead of wrapping it as {\"raw\": ...}."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("probe"),
		kong.Description("Extract and validate a field from an API response body"),
		kong.UsageOnError(),
	)
	os.Exit(run(&cli, os.Stdin, os.Stdout, os.Stderr))
}

// run executes the extraction and returns the process exit code.
func run(cli *CLI, stdin io.Reader, stdout, stderr io.Writer) int {
	body, err := readInput(cli.Input, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}

	root, err := jsonvalue.Parse(body)
	if err != nil {
		if cli.Strict {
			fmt.Fprintf(stderr, "response is not JSON: %v\n", err)
			return 2
		}
		root = jsonvalue.Object{"raw": jsonvalue.String(body)}
	}

	res, err := extract.Extract(root, cli.Path, services.ParseSchemaInput(cli.Schema))
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if !res.Found {
		fmt.Fprintf(stderr, "field %q not found\n", cli.Path)
		return 1
	}

	out, err := json.MarshalIndent(res.Value, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "failed to encode result: %v\n", err)
		return 2
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
