// Package config loads the exporter settings from config.yaml, environment
// variables and built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"odoo-exporter/internal/filters"
	"odoo-exporter/internal/model"
	"odoo-exporter/internal/pipeline"
)

// EnvPrefix is prepended to every environment override, e.g. EXPORTER_SERVER_ADDR
const EnvPrefix = "EXPORTER"

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

type OdooConfig struct {
	CallTimeout time.Duration
	BatchSize   int
	Strategy    model.FetchStrategy
}

type ExportConfig struct {
	DownloadDir string
	FileName    string
	IncludeID   bool
	PreviewRows int
	JobTimeout  time.Duration
}

type Config struct {
	Server       ServerConfig
	DatabasePath string
	Odoo         OdooConfig
	References   []model.ReferenceConfig
	Policy       model.ReferencePolicy
	Join         model.JoinConfig
	Export       ExportConfig
	Filters      filters.Config
}

func setDefaults(v *viper.Viper) {
	refs := pipeline.DefaultReferences()[0]
	join := pipeline.DefaultJoin()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "35m")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.path", "exporter.db")

	v.SetDefault("odoo.call_timeout", "2m")
	v.SetDefault("odoo.batch_size", pipeline.DefaultBatchSize)
	v.SetDefault("odoo.strategy", string(model.SearchThenRead))

	v.SetDefault("references.model", refs.Model)
	v.SetDefault("references.label_field", refs.LabelField)
	v.SetDefault("references.fields", refs.Fields)
	v.SetDefault("references.policy", string(model.AllIDs))

	v.SetDefault("join.enabled", false)
	v.SetDefault("join.model", join.Model)
	v.SetDefault("join.foreign_key", join.ForeignKey)
	v.SetDefault("join.label_field", join.LabelField)
	v.SetDefault("join.target", join.Target)

	v.SetDefault("export.download_dir", ".")
	v.SetDefault("export.file_name", pipeline.DefaultFileName)
	v.SetDefault("export.include_id", true)
	v.SetDefault("export.preview_rows", 100)
	v.SetDefault("export.job_timeout", "30m")

	v.SetDefault("filters.backend", filters.BackendFile)
	v.SetDefault("filters.path", filters.DefaultPath)
	v.SetDefault("filters.dsn", "")
}

// Load reads config.yaml from configPath (plus . and ./config), then applies
// EXPORTER_* environment overrides. A missing file is not an error.
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// download directory variable of the desktop tool
	_ = v.BindEnv("export.download_dir", EnvPrefix+"_EXPORT_DOWNLOAD_DIR", "CAMINHO_DOWNLOAD")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Printf("Loaded %s\n", v.ConfigFileUsed())
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Addr:         v.GetString("server.addr"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			CORSOrigins:  stringList(v, "server.cors_origins"),
		},
		DatabasePath: v.GetString("database.path"),
		Odoo: OdooConfig{
			CallTimeout: v.GetDuration("odoo.call_timeout"),
			BatchSize:   v.GetInt("odoo.batch_size"),
			Strategy:    model.FetchStrategy(v.GetString("odoo.strategy")),
		},
		Policy: model.ReferencePolicy(v.GetString("references.policy")),
		Join: model.JoinConfig{
			Enabled:    v.GetBool("join.enabled"),
			Model:      v.GetString("join.model"),
			ForeignKey: v.GetString("join.foreign_key"),
			LabelField: v.GetString("join.label_field"),
			Target:     v.GetString("join.target"),
		},
		Export: ExportConfig{
			DownloadDir: v.GetString("export.download_dir"),
			FileName:    v.GetString("export.file_name"),
			IncludeID:   v.GetBool("export.include_id"),
			PreviewRows: v.GetInt("export.preview_rows"),
			JobTimeout:  v.GetDuration("export.job_timeout"),
		},
		Filters: filters.Config{
			Backend: v.GetString("filters.backend"),
			Path:    v.GetString("filters.path"),
			DSN:     v.GetString("filters.dsn"),
		},
	}

	if fields := stringList(v, "references.fields"); len(fields) > 0 {
		cfg.References = []model.ReferenceConfig{{
			Model:      v.GetString("references.model"),
			LabelField: v.GetString("references.label_field"),
			Fields:     fields,
		}}
	}

	if cfg.Odoo.BatchSize <= 0 {
		return Config{}, fmt.Errorf("odoo.batch_size must be positive, got %d", cfg.Odoo.BatchSize)
	}
	switch cfg.Odoo.Strategy {
	case model.SearchThenRead, model.SearchRead:
	default:
		return Config{}, fmt.Errorf("unknown odoo.strategy %q", cfg.Odoo.Strategy)
	}
	switch cfg.Policy {
	case model.AllIDs, model.FirstID:
	default:
		return Config{}, fmt.Errorf("unknown references.policy %q", cfg.Policy)
	}
	return cfg, nil
}

// stringList reads a list setting. Environment overrides arrive as one string
// that viper splits on whitespace only, so commas separate items as well.
func stringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// PipelineOptions maps the settings onto a runner configuration
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		BatchSize:   c.Odoo.BatchSize,
		Strategy:    c.Odoo.Strategy,
		References:  c.References,
		Policy:      c.Policy,
		Join:        c.Join,
		FileName:    c.Export.FileName,
		IncludeID:   c.Export.IncludeID,
		PreviewRows: c.Export.PreviewRows,
		JobTimeout:  c.Export.JobTimeout,
	}
}
