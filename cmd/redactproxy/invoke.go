package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"redactproxy/internal/apigateway"
)

var eventFile string

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Handle one API Gateway proxy event",
	Long: `Read an API Gateway REST proxy event from --event or stdin, run it through
the proxy and print the proxy response to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := readEvent(cmd.InOrStdin())
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.log.Sync()

		out, err := apigateway.Invoke(cmd.Context(), a.gateway, event, a.log)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}

func readEvent(stdin io.Reader) ([]byte, error) {
	if eventFile == "" || eventFile == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read event from stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(eventFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}
	return data, nil
}

func SetupInvokeCmd() {
	rootCmd.AddCommand(invokeCmd)

	invokeCmd.Flags().StringVarP(&eventFile, "event", "e", "", "event file (default is stdin)")
}
