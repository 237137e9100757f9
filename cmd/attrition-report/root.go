package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/okian/attrition/internal/report"
	"github.com/okian/attrition/pkg/logger"
)

const (
	defaultDataPath = "attrition_dashboard_data.csv"
	defaultTimeout  = 10 * time.Second
)

// sourceFlags select where views come from: a local file or a server.
type sourceFlags struct {
	dataPath  string
	baseURL   string
	delimiter string
	timeout   time.Duration
	lang      string
}

func newRootCmd() *cobra.Command {
	flags := &sourceFlags{}
	cmd := &cobra.Command{
		Use:           "attrition-report",
		Short:         "Print the HR attrition dashboard views as console tables",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logger.Init(logger.WithWriter(cmd.ErrOrStderr()))
		},
	}
	cmd.PersistentFlags().StringVar(&flags.dataPath, "data", defaultDataPath, `Dataset file to read ("-" for stdin)`)
	cmd.PersistentFlags().StringVar(&flags.baseURL, "url", "", "Base URL of a running dashboard; overrides --data")
	cmd.PersistentFlags().StringVar(&flags.delimiter, "delimiter", ",", "Field delimiter of the dataset file")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", defaultTimeout, "HTTP request timeout")
	cmd.PersistentFlags().StringVar(&flags.lang, "lang", "en", "BCP 47 tag used to format numbers")

	cmd.AddCommand(newViewsCmd(flags), newDepartmentsCmd(flags))
	return cmd
}

func (f *sourceFlags) source(ctx context.Context) (report.Source, error) {
	if f.baseURL != "" {
		return report.NewHTTPSource(f.baseURL, f.timeout), nil
	}
	if utf8.RuneCountInString(f.delimiter) != 1 {
		return nil, fmt.Errorf("invalid --delimiter %q: must be a single character", f.delimiter)
	}
	comma, _ := utf8.DecodeRuneInString(f.delimiter)
	if f.dataPath == "-" {
		return report.ReadFrom(ctx, os.Stdin, "stdin", comma)
	}
	return report.OpenFile(ctx, f.dataPath, comma)
}

func (f *sourceFlags) renderer() (*report.Renderer, error) {
	tag, err := language.Parse(f.lang)
	if err != nil {
		return nil, fmt.Errorf("invalid --lang: %w", err)
	}
	return report.NewRenderer(tag), nil
}

func newViewsCmd(flags *sourceFlags) *cobra.Command {
	var department string
	cmd := &cobra.Command{
		Use:   "views",
		Short: "Print attrition, revenue loss and tenure tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := flags.renderer()
			if err != nil {
				return err
			}
			src, err := flags.source(cmd.Context())
			if err != nil {
				return err
			}
			v, err := src.Views(cmd.Context(), department)
			if err != nil {
				return err
			}
			return r.Views(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVar(&department, "department", "", "Department to filter on (default all)")
	return cmd
}

func newDepartmentsCmd(flags *sourceFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List the departments present in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := flags.renderer()
			if err != nil {
				return err
			}
			src, err := flags.source(cmd.Context())
			if err != nil {
				return err
			}
			depts, err := src.Departments(cmd.Context())
			if err != nil {
				return err
			}
			if len(depts) == 0 {
				return errors.New("dataset has no departments")
			}
			r.Departments(cmd.OutOrStdout(), depts)
			return nil
		},
	}
}
