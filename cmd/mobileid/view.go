package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mobileid/portal/internal/apiclient"
	"github.com/mobileid/portal/internal/view"
)

type viewOptions struct {
	apiURL  string
	timeout time.Duration
	quiet   bool
	params  view.Options
}

func newViewCmd() *cobra.Command {
	opts := &viewOptions{}

	names := make([]string, 0, len(view.Names()))
	for _, n := range view.Names() {
		names = append(names, string(n))
	}

	cmd := &cobra.Command{
		Use:       "view <name>",
		Short:     "Render one portal view",
		Long:      "Fetches and renders one view. Views: " + strings.Join(names, ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := apiclient.New(apiclient.Config{BaseURL: opts.apiURL, Timeout: opts.timeout})
			v, err := view.For(view.Name(args[0]), client, opts.params)
			if err != nil {
				return err
			}
			return runView(cmd.Context(), v, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.quiet)
		},
	}

	apiURL := os.Getenv("MOBILEID_API_URL")
	if apiURL == "" {
		apiURL = apiclient.DefaultBaseURL
	}

	f := cmd.Flags()
	f.StringVar(&opts.apiURL, "api-url", apiURL, "portal API base URL")
	f.DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "do not show the loading spinner")
	f.StringVar(&opts.params.Lat, "lat", "", "latitude (stations, weather)")
	f.StringVar(&opts.params.Lng, "lng", "", "longitude (stations, weather)")
	f.IntVar(&opts.params.Radius, "radius", 0, "search radius in metres (stations)")
	f.StringVar(&opts.params.Sido, "sido", "", "province name (air-quality)")
	f.IntVar(&opts.params.Limit, "limit", 0, "maximum rows (parking)")

	return cmd
}

// runView mounts v, shows a spinner on status until it settles, then
// renders it to out.
func runView(ctx context.Context, v *view.View, out, status io.Writer, quiet bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	done := v.Mount(ctx)

	if !quiet {
		spinner := progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(status),
			progressbar.OptionSetDescription(view.LoadingText),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		ticker := time.NewTicker(100 * time.Millisecond)
	wait:
		for {
			select {
			case <-done:
				break wait
			case <-ticker.C:
				_ = spinner.Add(1)
			}
		}
		ticker.Stop()
		_ = spinner.Finish()
	} else {
		<-done
	}

	if err := v.Render(out); err != nil {
		return err
	}
	if st := v.State(); st.Status == view.Failed {
		return fmt.Errorf("%s view failed: %w", v.Name(), st.Err)
	}
	return nil
}
