package main

import (
	"fmt"
	"io"
	"strings"

	"httpkit/application/http"
	"httpkit/application/http/semantic"
	"httpkit/application/http/semantic/status"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type requestFlags struct {
	headers []string
	data    string
}

func (a *app) newRequestCmd(name string, withBody bool) *cobra.Command {
	var flags requestFlags
	method := semantic.Method(strings.ToUpper(name))

	cmd := &cobra.Command{
		Use:   name + " <url>",
		Short: "Send a " + method.String() + " request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headers, err := parseHeaderFlags(flags.headers)
			if err != nil {
				return err
			}

			c, err := a.newClient(cmd)
			if err != nil {
				return err
			}

			var content []byte
			if withBody {
				content = []byte(flags.data)
			}

			req := semantic.NewRequest(method, semantic.NewURL(args[0]), headers, content)

			res, err := c.Do(cmd.Context(), req)
			if res != nil {
				printResponse(cmd.OutOrStdout(), res)
			}
			return err
		},
	}

	cmd.Flags().StringArrayVarP(&flags.headers, "header", "H", nil, `request header as "Name: Value", repeatable`)
	if withBody {
		cmd.Flags().StringVarP(&flags.data, "data", "d", "", "request content")
	}

	return cmd
}

var ErrMalformedHeaderFlag = errors.New(`header must look like "Name: Value"`)

func parseHeaderFlags(raw []string) (*semantic.Headers, error) {
	headers := semantic.NewHeaders()
	for _, r := range raw {
		name, value, ok := strings.Cut(r, ":")
		name = strings.TrimSpace(name)
		if !ok || !http.IsValidToken(name) {
			return nil, errors.Wrapf(ErrMalformedHeaderFlag, "got %q", r)
		}
		headers.Add(name, strings.TrimSpace(value))
	}
	return headers, nil
}

func statusColor(c status.Class) *color.Color {
	switch c {
	case status.ClassSuccessful:
		return color.New(color.FgGreen, color.Bold)
	case status.ClassRedirection:
		return color.New(color.FgCyan, color.Bold)
	case status.ClassClientError:
		return color.New(color.FgYellow, color.Bold)
	case status.ClassServerError:
		return color.New(color.FgRed, color.Bold)
	}
	return color.New(color.Bold)
}

func printResponse(w io.Writer, res *semantic.Response) {
	fmt.Fprintln(w, statusColor(res.Class()).Sprint(res.StatusLine()))

	dim := color.New(color.Faint).SprintFunc()
	for _, f := range res.Headers().Fields() {
		fmt.Fprintf(w, "%s: %s\n", dim(f.Name), f.Value)
	}

	if content := res.Content(); len(content) > 0 {
		fmt.Fprintln(w)
		w.Write(content)
		if content[len(content)-1] != '\n' {
			fmt.Fprintln(w)
		}
	}
}
