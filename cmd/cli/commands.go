package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redbco/redb-connect/cmd/cli/internal/output"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/table"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "redb-connect",
		Short: "Unified connector for relational, cloud and SaaS data sources",
		Long: "Validate connection details, build connection addresses, run statements and queries, " +
			"and load CSV files through one interface for every supported backend.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(a.stdout, "redb-connect %s (commit %s, built %s)\n", Version, GitCommit, BuildTime)
				fmt.Fprintf(a.stdout, "Go version: %s, OS/Arch: %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
				return nil
			}
			return cmd.Help()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to a connection profile (YAML)")
	root.PersistentFlags().StringVar(&a.url, "url", "", "Connection address, such as one printed by the address command")
	root.PersistentFlags().StringVar(&a.typeName, "type", "", "Connector type, overrides the profile")
	root.PersistentFlags().StringVarP(&a.format, "output", "o", "table", "Output format: table, json, yaml or csv")
	root.Flags().Bool("version", false, "Show version information and exit")

	root.AddCommand(
		typesCmd(a),
		validateCmd(a),
		addressCmd(a),
		execCmd(a),
		queryCmd(a),
		loadCmd(a),
		secretCmd(a),
	)
	return root
}

func typesCmd(a *app) *cobra.Command {
	var paradigm string
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List supported connector types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			want := dbcapabilities.DataParadigm(strings.ToLower(paradigm))
			t := table.New([]string{"type", "name", "default_port", "address", "query", "bulk_load", "aliases"})
			for _, id := range dbcapabilities.IDs() {
				if paradigm != "" && !dbcapabilities.SupportsParadigm(id, want) {
					continue
				}
				c := dbcapabilities.MustGet(id)
				t.Append([]any{string(id), c.Name, c.DefaultPort, c.SupportsAddress, c.SupportsQuery, c.SupportsBulkLoad, strings.Join(c.Aliases, ",")})
			}
			if t.Len() == 0 {
				return fmt.Errorf("no connector supports the %q paradigm", paradigm)
			}
			return output.Write(a.stdout, format, t)
		},
	}
	cmd.Flags().StringVar(&paradigm, "paradigm", "", "Only list connectors for a data paradigm, such as relational or keyvalue")
	return cmd
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate connection details",
		Long:  "Check the profile's connection details and print the result with any advisory notes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			f, err := a.factory()
			if err != nil {
				return err
			}
			defer f.Close()

			res := f.Connector().ValidateConfig()
			if err := output.Write(a.stdout, format, table.New([]string{"valid", "message"}, []any{res.Valid, res.Message})); err != nil {
				return err
			}
			if !res.Valid {
				return errors.New("connection details are not valid")
			}
			return nil
		},
	}
}

func addressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the connection address with the password redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.factory()
			if err != nil {
				return err
			}
			defer f.Close()

			if !dbcapabilities.SupportsAddress(f.Type()) {
				return fmt.Errorf("%s connections have no address form", f.Type())
			}
			res, err := f.Connector().BuildAddress()
			if err != nil {
				return err
			}
			if !res.Valid {
				return errors.New(res.Message)
			}
			if res.Message != "" {
				fmt.Fprintln(a.stderr, res.Message)
			}
			fmt.Fprintln(a.stdout, res.Value.Redacted())
			return nil
		},
	}
}

func execCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec [statement]",
		Short: "Execute a statement",
		Long:  "Execute a statement and print its rows when it returns any.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			f, err := a.factory()
			if err != nil {
				return err
			}
			defer f.Close()

			rows, _, err := f.ExecuteStatement(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rows == nil {
				return nil
			}
			return output.WriteRows(a.stdout, format, rows)
		},
	}
}

func queryCmd(a *app) *cobra.Command {
	var chunkSize int
	cmd := &cobra.Command{
		Use:   "query [statement]",
		Short: "Run a query and print the result table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.outputFormat()
			if err != nil {
				return err
			}
			f, err := a.factory()
			if err != nil {
				return err
			}
			defer f.Close()

			t, _, err := f.QueryToTable(cmd.Context(), args[0], chunkSize)
			if err != nil {
				return err
			}
			return output.Write(a.stdout, format, t)
		},
	}
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Rows fetched per round trip, 0 fetches everything at once")
	return cmd
}

func loadCmd(a *app) *cobra.Command {
	var (
		csvFile   string
		tableName string
		ifExists  string
		chunkSize int
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a CSV file into a table",
		Long:  "Read a CSV file with a header row and write it into a destination table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := connector.ParseExistsAction(ifExists); err != nil {
				return err
			}
			f, err := a.factory()
			if err != nil {
				return err
			}
			defer f.Close()
			if !dbcapabilities.SupportsBulkLoad(f.Type()) {
				return fmt.Errorf("%s connections cannot load tables", f.Type())
			}

			file, err := os.Open(csvFile)
			if err != nil {
				return fmt.Errorf("failed to open csv file: %w", err)
			}
			defer file.Close()

			t, err := table.ReadCSV(file, table.CSVOptions{InferTypes: true})
			if err != nil {
				return err
			}

			if _, err := f.ExecuteTable(cmd.Context(), t, tableName, chunkSize, ifExists); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "loaded %d rows into %s\n", t.Len(), tableName)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvFile, "csv", "", "CSV file to load")
	cmd.Flags().StringVar(&tableName, "table", "", "Destination table")
	cmd.Flags().StringVar(&ifExists, "if-exists", "fail", "What to do when the table exists: append, replace or fail")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Rows written per batch, 0 writes everything at once")
	_ = cmd.MarkFlagRequired("csv")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}
