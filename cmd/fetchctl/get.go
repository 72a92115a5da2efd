package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/fetch-sdk-go/pkg/logging"
)

func newGetCmd(v *viper.Viper) *cobra.Command {
	var outputFile string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "get <location>",
		Short: "Stream a location",
		Long: `Stream a location through the default transport stack.

The best available transport is selected and paired with the next best one
as fallback. A request that fails on the primary is retried once on the
fallback.

Examples:
  fetchctl get https://example.com/archive.tar.gz              # print to stdout
  fetchctl get https://example.com/archive.tar.gz -o out.tgz   # save to file
  fetchctl get https://example.com/a --file-root /srv/mirror   # mirror as fallback`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			rt, err := newRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()

			stack, err := rt.stack(ctx)
			if err != nil {
				return err
			}
			defer stack.Close()

			ctx, requestID := logging.EnsureRequestID(ctx)
			rt.logger.Debug("Fetching",
				logging.String("location", args[0]),
				logging.String("request_id", requestID),
				logging.String("transport", stack.Name()))

			rc, err := stack.Stream(ctx, args[0], nil)
			if err != nil {
				return err
			}
			defer rc.Close()

			if outputFile == "" {
				if _, err := io.Copy(cmd.OutOrStdout(), rc); err != nil {
					return fmt.Errorf("read %s: %w", args[0], err)
				}
				return nil
			}

			n, err := saveTo(outputFile, rc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", n, outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall request timeout (0 disables)")

	return cmd
}

// createOutput opens the -o target for writing
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
}

// saveTo copies r into path. A failed Close is reported: the data may not
// have reached the file.
func saveTo(path string, r io.Reader) (n int64, err error) {
	f, err := createOutput(path)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	n, err = io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", path, err)
	}
	return n, nil
}
