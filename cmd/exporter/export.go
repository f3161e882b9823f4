package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"odoo-exporter/internal/filters"
	"odoo-exporter/internal/logging"
	"odoo-exporter/internal/model"
	"odoo-exporter/internal/pipeline"
	"odoo-exporter/pkg/utils"
)

// passwordEnv is read when --password is not given
const passwordEnv = "EXPORTER_PASSWORD"

var exportFlags struct {
	url, database, username, password string
	model, domain, fields, filter     string
	out, dir, strategy                string
	batchSize                         int
	verbose                           bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the records of a model",
	Long: `export authenticates, fetches every record matching --domain page by page,
resolves relational fields to labels and writes the spreadsheet.

Domain and fields accept JSON or the literal syntax used in Odoo, e.g.
  --domain "[('estado_cliente', '=', 'a')]" --fields "['processo', 'fase_id']"

With --filter, a saved filter supplies whichever of domain and fields is not
given. The password is read from --password or ` + passwordEnv + ` and never stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		req, err := buildRequest(ctx)
		if err != nil {
			return err
		}

		dir := cfg.Export.DownloadDir
		if exportFlags.dir != "" {
			dir = exportFlags.dir
		}
		output := utils.NewOutputManager(dir)
		output.Flat = true
		runner := pipeline.NewRunner(cfg.PipelineOptions(), pipeline.OdooConnector(cfg.Odoo.CallTimeout), output, nil)

		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Exporting %s from %s", req.Query.Model, req.URL))
		observers := pipeline.MultiObserver{pipeline.ProgressFunc(func(collected int) {
			spinner.UpdateText(fmt.Sprintf("Fetching %s: %d records", req.Query.Model, collected))
		})}
		if exportFlags.verbose {
			observers = append(observers, pipeline.LogProgress(req.Query.Model))
		}

		jobID := uuid.New().String()
		started := time.Now()
		result, err := runner.Run(ctx, jobID, req, observers)
		if err != nil {
			spinner.Fail(logging.MaskSecret(err.Error(), req.Password))
			return fmt.Errorf("export failed")
		}

		if result.Status == model.StatusNoRecords {
			spinner.Warning("No records matched the domain, nothing was written")
			return nil
		}
		spinner.Success(fmt.Sprintf("%d records written to %s in %v",
			result.RecordCount, result.FilePath, time.Since(started).Round(time.Millisecond)))

		renderPreview(result)
		return nil
	},
}

// buildRequest merges flags, the password variable and an optional saved filter
func buildRequest(ctx context.Context) (model.ExportRequest, error) {
	password := exportFlags.password
	if password == "" {
		password = os.Getenv(passwordEnv)
	}

	domainText, fieldsText := exportFlags.domain, exportFlags.fields
	if exportFlags.filter != "" && (domainText == "" || fieldsText == "") {
		store, err := filters.Open(ctx, cfg.Filters)
		if err != nil {
			return model.ExportRequest{}, err
		}
		defer store.Close()
		saved, err := store.Get(ctx, exportFlags.filter)
		if err != nil {
			return model.ExportRequest{}, err
		}
		if domainText == "" {
			domainText = saved.Domain
		}
		if fieldsText == "" {
			fieldsText = saved.Fields
		}
		pterm.Info.Printf("Using saved filter %q\n", exportFlags.filter)
	}

	domain, err := pipeline.ParseDomain(domainText)
	if err != nil {
		return model.ExportRequest{}, err
	}
	fields, err := pipeline.ParseFields(fieldsText)
	if err != nil {
		return model.ExportRequest{}, err
	}

	return model.ExportRequest{
		Credentials: model.Credentials{
			URL:      strings.TrimRight(exportFlags.url, "/"),
			Database: exportFlags.database,
			Username: exportFlags.username,
			Password: password,
		},
		Query:      model.QuerySpec{Model: exportFlags.model, Domain: domain, Fields: fields},
		BatchSize:  exportFlags.batchSize,
		Strategy:   model.FetchStrategy(exportFlags.strategy),
		FileName:   exportFlags.out,
		FilterName: exportFlags.filter,
	}, nil
}

func renderPreview(result model.ExportResult) {
	if len(result.Preview) == 0 {
		return
	}
	rows := [][]string{result.Columns}
	for _, rec := range result.Preview {
		row := make([]string, len(result.Columns))
		for i, c := range result.Columns {
			row[i] = fmt.Sprint(valueOrEmpty(rec[c]))
		}
		rows = append(rows, row)
	}
	pterm.Println()
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(rows).Render()
	if result.RecordCount > len(result.Preview) {
		pterm.Info.Printf("Showing %d of %d records\n", len(result.Preview), result.RecordCount)
	}
}

func valueOrEmpty(v interface{}) interface{} {
	if v == nil {
		return ""
	}
	return v
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.url, "url", "", "Odoo server URL, e.g. https://odoo.example.com")
	f.StringVar(&exportFlags.database, "db", "", "database name")
	f.StringVar(&exportFlags.username, "user", "", "login")
	f.StringVar(&exportFlags.password, "password", "", "password (defaults to $"+passwordEnv+")")
	f.StringVar(&exportFlags.model, "model", "", "model to export, e.g. dossie.dossie")
	f.StringVar(&exportFlags.domain, "domain", "", "filter domain, empty matches everything")
	f.StringVar(&exportFlags.fields, "fields", "", "list of fields to export")
	f.StringVar(&exportFlags.filter, "filter", "", "saved filter supplying domain and fields")
	f.StringVarP(&exportFlags.out, "out", "o", "", "output file name (.xlsx, .csv or .json)")
	f.StringVar(&exportFlags.dir, "dir", "", "download directory (overrides export.download_dir)")
	f.StringVar(&exportFlags.strategy, "strategy", "", "search_then_read or search_read")
	f.IntVar(&exportFlags.batchSize, "batch-size", 0, "records per page (defaults to odoo.batch_size)")
	f.BoolVarP(&exportFlags.verbose, "verbose", "v", false, "print a line per fetched page")
	_ = exportCmd.MarkFlagRequired("url")
	_ = exportCmd.MarkFlagRequired("db")
	_ = exportCmd.MarkFlagRequired("user")
	_ = exportCmd.MarkFlagRequired("model")

	rootCmd.AddCommand(exportCmd)
}
