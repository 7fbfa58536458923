package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/CliForge/remotecli/pkg/cli"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newHashCmd() *cobra.Command {
	var (
		algorithm string
		fromStdin bool
		level     int
	)

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash an auth key for the specification",
		Long: `Hash an auth key the way the generated scripts do, so the digest can be
pasted into the auth section of the specification.

The key is read from a masked prompt, or from the first line of stdin
with --stdin. No trailing newline is hashed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := cli.ParseHashAlgorithm(algorithm)
			if err != nil {
				return err
			}

			var key string
			if fromStdin {
				key, err = readLine(cmd.InOrStdin())
			} else {
				key, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Key")
			}
			if err != nil {
				return fmt.Errorf("failed to read key: %w", err)
			}
			if key == "" {
				return errors.New("key must not be empty")
			}

			sum, err := alg.Sum(key)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if level <= 0 {
				_, err = fmt.Fprintln(out, sum)
				return err
			}
			return writeAuthSnippet(out, level, cli.AuthMethod{Type: cli.AuthTypeHash, Hash: sum, Algorithm: alg})
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", string(cli.HashSHA1), "Digest: sha1 or sha256")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the key from stdin instead of prompting")
	cmd.Flags().IntVar(&level, "level", 0, "Print a ready-to-paste auth entry for this level")

	return cmd
}

// readLine returns the first line of r without its line ending.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func writeAuthSnippet(w io.Writer, level int, method cli.AuthMethod) error {
	snippet := map[string]map[string]cli.AuthMethod{
		"auth": {fmt.Sprint(level): method},
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snippet); err != nil {
		return fmt.Errorf("failed to encode auth entry: %w", err)
	}
	return enc.Close()
}
