package pipeline

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
	"odoo-exporter/pkg/utils"
)

var modelNamePattern = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)

// ParseDomain turns user-typed filter text into a domain. Empty text means
// "match everything".
func ParseDomain(text string) (model.Domain, error) {
	if strings.TrimSpace(text) == "" {
		return model.Domain{}, nil
	}
	v, err := utils.ParseLoose(text)
	if err != nil {
		return nil, exporterrors.Wrap(exporterrors.MalformedInput, "domain is not a valid list", err)
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, exporterrors.New(exporterrors.MalformedInput, fmt.Sprintf("domain must be a list, got %T", v))
	}
	domain := model.Domain(items)
	if err := validateDomain(domain); err != nil {
		return nil, err
	}
	return domain, nil
}

// ParseFields turns user-typed field list text into field names
func ParseFields(text string) ([]string, error) {
	v, err := utils.ParseLoose(text)
	if err != nil {
		return nil, exporterrors.Wrap(exporterrors.MalformedInput, "fields is not a valid list", err)
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, exporterrors.New(exporterrors.MalformedInput, fmt.Sprintf("fields must be a list, got %T", v))
	}
	fields := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := item.(string)
		if !ok {
			return nil, exporterrors.New(exporterrors.MalformedInput, fmt.Sprintf("field name must be a string, got %v", item))
		}
		fields = append(fields, name)
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// ValidateRequest checks an export request before any network call is made.
func ValidateRequest(req model.ExportRequest) error {
	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return exporterrors.New(exporterrors.MalformedInput, fmt.Sprintf("url %q must be an absolute http(s) URL", req.URL))
	}
	if strings.TrimSpace(req.Database) == "" {
		return exporterrors.New(exporterrors.MalformedInput, "database is required")
	}
	if strings.TrimSpace(req.Username) == "" {
		return exporterrors.New(exporterrors.MalformedInput, "username is required")
	}
	if req.Password == "" {
		return exporterrors.New(exporterrors.MalformedInput, "password is required")
	}
	if !modelNamePattern.MatchString(req.Query.Model) {
		return exporterrors.New(exporterrors.MalformedInput, fmt.Sprintf("model %q is not a valid model name", req.Query.Model))
	}
	if err := validateFields(req.Query.Fields); err != nil {
		return err
	}
	if err := validateDomain(req.Query.Domain); err != nil {
		return err
	}
	if req.BatchSize < 0 {
		return exporterrors.New(exporterrors.MalformedInput, "batch size must not be negative")
	}
	switch req.Strategy {
	case "", model.SearchThenRead, model.SearchRead:
	default:
		return exporterrors.New(exporterrors.MalformedInput, fmt.Sprintf("unknown fetch strategy %q", req.Strategy))
	}
	return nil
}

func validateFields(fields []string) error {
	if len(fields) == 0 {
		return exporterrors.New(exporterrors.MalformedInput, "at least one field is required")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return exporterrors.New(exporterrors.MalformedInput, "field names must not be empty")
		}
		if seen[f] {
			return exporterrors.New(exporterrors.MalformedInput, fmt.Sprintf("field %q listed twice", f))
		}
		seen[f] = true
	}
	return nil
}

// validateDomain only checks shape: logical operators and three-element
// conditions. Field names and operators are left to the backend.
func validateDomain(domain model.Domain) error {
	for i, term := range domain {
		switch t := term.(type) {
		case string:
			if t != "&" && t != "|" && t != "!" {
				return exporterrors.New(exporterrors.MalformedInput,
					fmt.Sprintf("domain term %d: unknown operator %q", i, t))
			}
		case []interface{}:
			if len(t) != 3 {
				return exporterrors.New(exporterrors.MalformedInput,
					fmt.Sprintf("domain term %d: condition needs 3 elements, got %d", i, len(t)))
			}
		default:
			return exporterrors.New(exporterrors.MalformedInput,
				fmt.Sprintf("domain term %d: unexpected %T", i, term))
		}
	}
	return nil
}
