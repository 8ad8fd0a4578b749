package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fin-extractor/internal/extractor"

	"github.com/alecthomas/kong"
)

const (
	AppName = "extract"
	AppDesc = "Parse a bank SMS, e-mail receipt or statement line and print the extracted transaction as JSON."
)

type CLI struct {
	Now    time.Time `help:"Reference time (RFC3339) for defaulted dates. Defaults to the current time." format:"2006-01-02T15:04:05Z07:00"`
	Pretty bool      `help:"Indent the JSON output."`
	Text   []string  `arg:"" optional:"" help:"Text to parse. Read from stdin when omitted."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name(AppName),
		kong.Description(AppDesc),
	)

	if err := run(&cli, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}
}

func run(cli *CLI, stdin io.Reader, stdout io.Writer) error {
	now := cli.Now
	if now.IsZero() {
		now = time.Now()
	}

	text := strings.Join(cli.Text, " ")
	if len(cli.Text) == 0 {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(raw)
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	if cli.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(extractor.ExtractAt(text, now))
}
