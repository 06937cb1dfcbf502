package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmcleod/stockroom/resource"
)

var (
	apiData  string
	apiQuery []string
	apiAll   bool
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Read and modify inventory collections",
	Long: `Commands that call the inventory API with the stored session.
Known collections: ` + strings.Join(resource.Names, ", "),
}

var apiListCmd = &cobra.Command{
	Use:   "list <collection>",
	Short: "List the records of a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := parseQuery(apiQuery)
		if err != nil {
			return err
		}
		return withCollection(cmd, args[0], func(col *resource.Collection) (any, error) {
			if apiAll {
				return col.ListAll(cmd.Context(), query)
			}
			return col.List(cmd.Context(), query)
		})
	},
}

var apiGetCmd = &cobra.Command{
	Use:   "get <collection> <id>",
	Short: "Fetch one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCollection(cmd, args[0], func(col *resource.Collection) (any, error) {
			return col.Get(cmd.Context(), args[1])
		})
	},
}

var apiCreateCmd = &cobra.Command{
	Use:   "create <collection> --data <json>",
	Short: "Create a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := readRecord(cmd.InOrStdin(), apiData)
		if err != nil {
			return err
		}
		return withCollection(cmd, args[0], func(col *resource.Collection) (any, error) {
			return col.Create(cmd.Context(), rec)
		})
	},
}

var apiUpdateCmd = &cobra.Command{
	Use:   "update <collection> <id> --data <json>",
	Short: "Replace a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := readRecord(cmd.InOrStdin(), apiData)
		if err != nil {
			return err
		}
		return withCollection(cmd, args[0], func(col *resource.Collection) (any, error) {
			return col.Update(cmd.Context(), args[1], rec)
		})
	},
}

var apiPatchCmd = &cobra.Command{
	Use:   "patch <collection> <id> --data <json>",
	Short: "Update some fields of a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := readRecord(cmd.InOrStdin(), apiData)
		if err != nil {
			return err
		}
		return withCollection(cmd, args[0], func(col *resource.Collection) (any, error) {
			return col.Patch(cmd.Context(), args[1], rec)
		})
	},
}

var apiDeleteCmd = &cobra.Command{
	Use:   "delete <collection> <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCollection(cmd, args[0], func(col *resource.Collection) (any, error) {
			return nil, col.Delete(cmd.Context(), args[1])
		})
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.AddCommand(apiListCmd, apiGetCmd, apiCreateCmd, apiUpdateCmd, apiPatchCmd, apiDeleteCmd)

	apiListCmd.Flags().StringArrayVarP(&apiQuery, "query", "q", nil, "Query parameter as key=value (repeatable)")
	apiListCmd.Flags().BoolVar(&apiAll, "all", false, "Follow pagination and print every record")
	for _, c := range []*cobra.Command{apiCreateCmd, apiUpdateCmd, apiPatchCmd} {
		c.Flags().StringVarP(&apiData, "data", "d", "", "JSON object, @file to read a file, or - for stdin")
	}
}

// withCollection opens the session, runs fn against the named collection and
// prints its result as indented JSON.
func withCollection(cmd *cobra.Command, name string, fn func(*resource.Collection) (any, error)) error {
	if !resource.Known(name) {
		return fmt.Errorf("unknown collection %q (known: %s)", name, strings.Join(resource.Names, ", "))
	}
	s, err := openSession(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	out, err := fn(resource.New(s.client, name))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readRecord(stdin io.Reader, data string) (resource.Record, error) {
	var raw []byte
	var err error
	switch {
	case data == "":
		return nil, fmt.Errorf("--data is required")
	case data == "-":
		raw, err = io.ReadAll(stdin)
	case strings.HasPrefix(data, "@"):
		raw, err = os.ReadFile(data[1:])
	default:
		raw = []byte(data)
	}
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	var rec resource.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("record must be a JSON object: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("record must be a JSON object")
	}
	return rec, nil
}

func parseQuery(pairs []string) (url.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid query %q: want key=value", p)
		}
		q.Add(k, v)
	}
	return q, nil
}
