package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/postbox/internal/app"
	"github.com/artpar/postbox/internal/core"
	"github.com/artpar/postbox/internal/workspace"
)

// SendOptions holds options for the send command.
type SendOptions struct {
	Headers []string
	JSON    bool
}

func newSendCommand(opts *globalOptions) *cobra.Command {
	o := &SendOptions{}

	cmd := &cobra.Command{
		Use:   "send PATH",
		Short: "Send a saved request",
		Long: `Send a saved request and print the response.

Examples:
  postbox send health
  postbox send auth/login --json
  postbox send auth/me -H "X-Debug: 1"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withCollection(cmd, func(a *app.App, coll *workspace.Collection) error {
				return runSend(cmd, a, coll, args[0], o)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&o.Headers, "header", "H", nil, "Extra request headers (format: Key:Value)")
	cmd.Flags().BoolVar(&o.JSON, "json", false, "Output response as JSON")
	return cmd
}

func runSend(cmd *cobra.Command, a *app.App, coll *workspace.Collection, raw string, opts *SendOptions) error {
	store := a.Store()
	path, err := resolvePath(store, coll.ID, raw)
	if err != nil {
		return err
	}
	n, err := store.Find(coll.ID, path)
	if err != nil {
		return err
	}
	if n.IsFolder() || n.Request == nil {
		return fmt.Errorf("%s is a folder", raw)
	}

	def := n.Request.Clone()
	for key, value := range parseHeaders(opts.Headers) {
		def.Headers = append(def.Headers, core.KeyValue{Key: key, Value: value, Enabled: true})
	}

	resp, err := a.Send(cmd.Context(), def)
	if err != nil {
		store.SetResponseError(n.ID, err)
		return fmt.Errorf("request failed: %w", err)
	}
	store.SetResponse(n.ID, resp)

	if opts.JSON {
		return outputJSON(cmd, resp)
	}
	return outputHuman(cmd, resp)
}

func outputJSON(cmd *cobra.Command, resp *core.Response) error {
	headers := make(map[string]string, len(resp.Headers))
	for key, values := range resp.Headers {
		headers[key] = strings.Join(values, ", ")
	}
	result := map[string]any{
		"status":      resp.StatusCode,
		"status_text": statusText(resp),
		"headers":     headers,
		"body":        string(resp.Body),
		"timing_ms":   resp.Elapsed.Milliseconds(),
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputHuman(cmd *cobra.Command, resp *core.Response) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "HTTP %d %s\n", resp.StatusCode, statusText(resp))
	fmt.Fprintf(out, "Time: %dms\n", resp.Elapsed.Milliseconds())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Headers:")
	keys := make([]string, 0, len(resp.Headers))
	for key := range resp.Headers {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		for _, value := range resp.Headers[key] {
			fmt.Fprintf(out, "  %s: %s\n", key, value)
		}
	}
	fmt.Fprintln(out)

	if len(resp.Body) > 0 {
		fmt.Fprintln(out, "Body:")
		fmt.Fprintln(out, string(resp.Body))
	}
	return nil
}

// statusText strips the code from "200 OK".
func statusText(resp *core.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode)))
}

// parseHeaders converts header strings to a map.
func parseHeaders(headerStrs []string) map[string]string {
	headers := make(map[string]string)
	for _, h := range headerStrs {
		idx := strings.Index(h, ":")
		if idx == -1 {
			continue
		}
		key := strings.TrimSpace(h[:idx])
		value := strings.TrimSpace(h[idx+1:])
		headers[key] = value
	}
	return headers
}
