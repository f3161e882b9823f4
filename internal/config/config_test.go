package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"odoo-exporter/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Odoo.BatchSize != 500 || cfg.Odoo.Strategy != model.SearchThenRead {
		t.Fatalf("odoo = %+v", cfg.Odoo)
	}
	if cfg.Export.FileName != "Extracao.xlsx" || !cfg.Export.IncludeID {
		t.Fatalf("export = %+v", cfg.Export)
	}
	if cfg.Export.JobTimeout != 30*time.Minute {
		t.Fatalf("job timeout = %v", cfg.Export.JobTimeout)
	}
	if len(cfg.References) != 1 || cfg.References[0].Model != "res.partner" || len(cfg.References[0].Fields) != 3 {
		t.Fatalf("references = %+v", cfg.References)
	}
	if cfg.Join.Enabled {
		t.Fatalf("join must be disabled by default")
	}
	if cfg.Filters.Backend != "file" || cfg.Filters.Path != "filtros_salvos.json" {
		t.Fatalf("filters = %+v", cfg.Filters)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := `
odoo:
  batch_size: 200
  strategy: search_read
references:
  policy: first_id
  fields: [partner_ids]
join:
  enabled: true
  target: related
filters:
  backend: sqlite
  path: filters.db
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("EXPORTER_SERVER_ADDR", ":9090")
	t.Setenv("CAMINHO_DOWNLOAD", "/tmp/exports")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("env override ignored: %q", cfg.Server.Addr)
	}
	if cfg.Export.DownloadDir != "/tmp/exports" {
		t.Fatalf("download dir = %q", cfg.Export.DownloadDir)
	}

	opts := cfg.PipelineOptions()
	if opts.BatchSize != 200 || opts.Strategy != model.SearchRead || opts.Policy != model.FirstID {
		t.Fatalf("options = %+v", opts)
	}
	if !opts.Join.Enabled || opts.Join.Target != "related" || opts.Join.Model != "dossie.dossie" {
		t.Fatalf("join = %+v", opts.Join)
	}
	if got := opts.References[0].Fields; len(got) != 1 || got[0] != "partner_ids" {
		t.Fatalf("reference fields = %v", got)
	}
	if cfg.Filters.Backend != "sqlite" {
		t.Fatalf("filters backend = %q", cfg.Filters.Backend)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"batch size", "EXPORTER_ODOO_BATCH_SIZE", "0"},
		{"strategy", "EXPORTER_ODOO_STRATEGY", "scan"},
		{"policy", "EXPORTER_REFERENCES_POLICY", "some"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.env, tt.val)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error for %s=%s", tt.env, tt.val)
			}
		})
	}
}

func TestLoadListsFromEnv(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want []string
	}{
		{"comma separated", "parte_contraria_ids,advogado_ids", []string{"parte_contraria_ids", "advogado_ids"}},
		{"comma and space", "parte_contraria_ids, advogado_ids", []string{"parte_contraria_ids", "advogado_ids"}},
		{"space separated", "parte_contraria_ids advogado_ids", []string{"parte_contraria_ids", "advogado_ids"}},
		{"trailing comma", "parte_contraria_ids,", []string{"parte_contraria_ids"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv("EXPORTER_REFERENCES_FIELDS", tt.val)
			t.Setenv("EXPORTER_SERVER_CORS_ORIGINS", "http://a.test,http://b.test")

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			got := cfg.References[0].Fields
			if len(got) != len(tt.want) {
				t.Fatalf("reference fields = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("reference fields = %q, want %q", got, tt.want)
				}
			}
			if origins := cfg.Server.CORSOrigins; len(origins) != 2 || origins[1] != "http://b.test" {
				t.Fatalf("cors origins = %q", origins)
			}
		})
	}
}
