package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/deploymenttheory/go-api-session-client/apiclient"
	"github.com/spf13/cobra"
)

// newRequestCommand builds one HTTP verb command. GET and DELETE take --param, the others --data.
func newRequestCommand(cfg *cliConfig, verb string) *cobra.Command {
	method := strings.ToUpper(verb)
	var (
		params    []string
		data      string
		noAuth    bool
		noRefresh bool
		rawHeader []string
	)

	cmd := &cobra.Command{
		Use:   verb + " <endpoint>",
		Short: fmt.Sprintf("Send a %s request with the stored session", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := apiclient.Request{Method: method, Endpoint: args[0]}

			var err error
			if req.Params, err = parseParams(params); err != nil {
				return err
			}
			if req.Headers, err = parseHeaders(rawHeader); err != nil {
				return err
			}
			if data != "" {
				var payload any
				if err := json.Unmarshal([]byte(data), &payload); err != nil {
					return fmt.Errorf("--data must be JSON: %w", err)
				}
				req.Payload = payload
			}
			if noAuth {
				req.Authentication = apiclient.Bool(false)
			}
			if noRefresh {
				req.RefreshAuthentication = apiclient.Bool(false)
			}

			client, _, closeStore, err := cfg.session()
			if err != nil {
				return err
			}
			defer closeStore()

			resp, err := client.Send(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printBody(cmd, resp.Body)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&params, "param", nil, "query param as key=value (repeatable)")
	flags.StringArrayVarP(&rawHeader, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	flags.BoolVar(&noAuth, "no-auth", false, "do not send the bearer token")
	flags.BoolVar(&noRefresh, "no-refresh", false, "do not refresh the token on 401")
	if method != http.MethodGet {
		flags.StringVar(&data, "data", "", "JSON request body")
	}
	return cmd
}

// parseParams turns key=value pairs into params. Repeated keys become a list.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", pair)
		}
		switch existing := params[key].(type) {
		case nil:
			params[key] = value
		case string:
			params[key] = []any{existing, value}
		case []any:
			params[key] = append(existing, value)
		}
	}
	return params, nil
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, header := range raw {
		name, value, ok := strings.Cut(header, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --header %q, expected 'Name: value'", header)
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return out, nil
}

// printBody writes the body, indenting it when it is JSON.
func printBody(cmd *cobra.Command, body []byte) error {
	out := cmd.OutOrStdout()
	if len(body) == 0 {
		return nil
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, body, "", "  "); err == nil {
		indented.WriteByte('\n')
		_, err = out.Write(indented.Bytes())
		return err
	}
	_, err := out.Write(body)
	return err
}
