package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacoelho/rowmap/internal/apperr"
	"github.com/jacoelho/rowmap/internal/logger"
	"github.com/jacoelho/rowmap/internal/mapping"
	"github.com/jacoelho/rowmap/internal/output"
	"github.com/jacoelho/rowmap/internal/source"
	"github.com/jacoelho/rowmap/internal/value"
)

type applyOptions struct {
	rules    string
	document string
	url      string
	redisKey string
	s3Object string
	format   string
}

func newApplyCommand(opts *globalOptions) *cobra.Command {
	var ao applyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Evaluate a rules file against one document",
		Long: `Evaluate a rules file against one document and print the resulting rows.
The document is read from --document, --url, --redis or --s3, or from stdin
when none is given.`,
		Example: `  rowmap apply --rules rules.yaml --document data.json
  curl -s https://example.com/data.json | rowmap apply --rules rules.yaml --output table
  rowmap apply --rules rules.yaml --redis orders:latest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd, opts, ao)
		},
	}

	cmd.Flags().StringVarP(&ao.rules, "rules", "r", "", "Rules file with mapping and optional filter (required)")
	cmd.Flags().StringVarP(&ao.document, "document", "d", "", "JSON document file")
	cmd.Flags().StringVar(&ao.url, "url", "", "Fetch the document from this URL")
	cmd.Flags().StringVar(&ao.redisKey, "redis", "", "Fetch the document from this Redis key")
	cmd.Flags().StringVar(&ao.s3Object, "s3", "", "Fetch the document from this S3 bucket/key")
	cmd.Flags().StringVarP(&ao.format, "output", "o", "json", "Output format: json or table")

	_ = cmd.MarkFlagRequired("rules")
	cmd.MarkFlagsMutuallyExclusive("document", "url", "redis", "s3")

	return cmd
}

func (ao applyOptions) remote() (source.Source, bool) {
	switch {
	case ao.url != "":
		return source.Source{Type: source.URL, Value: ao.url}, true
	case ao.redisKey != "":
		return source.Source{Type: source.Redis, Value: ao.redisKey}, true
	case ao.s3Object != "":
		return source.Source{Type: source.S3, Value: ao.s3Object}, true
	default:
		return source.Source{}, false
	}
}

func runApply(cmd *cobra.Command, opts *globalOptions, ao applyOptions) error {
	format, err := output.ParseFormat(ao.format)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}

	def, err := loadRules(ao.rules)
	if err != nil {
		return err
	}

	plan, err := def.Compile()
	if err != nil {
		return err
	}

	cfg, err := opts.load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logger(), cmd.ErrOrStderr())

	var document any
	if src, ok := ao.remote(); ok {
		deps, err := newComponents(cmd.Context(), cfg, log, false)
		if err != nil {
			return err
		}
		defer func() {
			if err := deps.Close(); err != nil {
				log.Warn("close components", slog.Any("error", err))
			}
		}()

		if document, err = deps.resolver.Fetch(cmd.Context(), src); err != nil {
			return err
		}
	} else {
		if document, err = readDocument(cmd.InOrStdin(), ao.document); err != nil {
			return err
		}
	}

	rows, err := plan.Apply(document)
	if err != nil {
		return err
	}

	return output.Write(cmd.OutOrStdout(), format, rows)
}

func loadRules(path string) (mapping.Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return mapping.Definition{}, apperr.New(http.StatusBadRequest, fmt.Sprintf("cannot open rules file %s", path), err)
	}
	defer f.Close()

	return mapping.LoadDefinition(f)
}

func readDocument(stdin io.Reader, path string) (any, error) {
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, apperr.New(http.StatusBadRequest, fmt.Sprintf("cannot open document %s", path), err)
		}
		defer f.Close()
		r = f
	}

	doc, err := value.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return doc, nil
}
