package odoo

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	exporterrors "odoo-exporter/internal/errors"
	"odoo-exporter/internal/model"
)

// Session is an authenticated handle on one database. It is created by
// Authenticate, never mutated, and dropped at the end of the request.
type Session struct {
	BaseURL  string
	Database string
	UserID   int64

	password string
	common   endpoint
	object   endpoint
}

// Authenticate exchanges database, username and password for a user id.
// A falsy id or any transport failure yields one authentication error with
// the cause attached. There is no retry and nothing is cached.
func Authenticate(ctx context.Context, client *Client, creds model.Credentials) (*Session, error) {
	if client == nil {
		client = NewClient(creds.URL)
	}
	s := &Session{
		BaseURL:  client.BaseURL(),
		Database: creds.Database,
		password: creds.Password,
		common:   client.common(),
		object:   client.object(),
	}

	var reply interface{}
	args := []interface{}{creds.Database, creds.Username, creds.Password, map[string]interface{}{}}
	if err := s.common.call(ctx, "authenticate", args, &reply); err != nil {
		return nil, exporterrors.Wrap(exporterrors.Authentication,
			fmt.Sprintf("could not reach %s", s.BaseURL), err)
	}

	uid, ok := toInt64(reply)
	if !ok || uid <= 0 {
		return nil, exporterrors.New(exporterrors.Authentication,
			fmt.Sprintf("login rejected for user %q on database %q", creds.Username, creds.Database))
	}
	s.UserID = uid

	log.Printf("[odoo] authenticated %q on %s/%s as uid %d", creds.Username, s.BaseURL, s.Database, uid)
	return s, nil
}

// ExecuteKW calls method on model through execute_kw, passing database, uid
// and password as the first three positional arguments.
func (s *Session) ExecuteKW(ctx context.Context, modelName, method string, args []interface{}, kwargs map[string]interface{}, reply interface{}) error {
	if args == nil {
		args = []interface{}{}
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	params := []interface{}{s.Database, s.UserID, s.password, modelName, method, args, kwargs}
	return s.object.call(ctx, "execute_kw", params, reply)
}

// Search returns one page of ids matching domain, in backend order.
func (s *Session) Search(ctx context.Context, modelName string, domain model.Domain, offset, limit int) ([]int64, error) {
	var reply interface{}
	kwargs := pageArgs(offset, limit)
	if err := s.ExecuteKW(ctx, modelName, "search", []interface{}{domainArg(domain)}, kwargs, &reply); err != nil {
		return nil, err
	}
	items, ok := reply.([]interface{})
	if !ok {
		if reply == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("search %s: unexpected reply %T", modelName, reply)
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, ok := toInt64(item)
		if !ok {
			return nil, fmt.Errorf("search %s: non-integer id %v", modelName, item)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Read materializes the given ids with the requested fields.
func (s *Session) Read(ctx context.Context, modelName string, ids []int64, fields []string) ([]map[string]interface{}, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var reply interface{}
	kwargs := map[string]interface{}{"fields": fields}
	if err := s.ExecuteKW(ctx, modelName, "read", []interface{}{ids}, kwargs, &reply); err != nil {
		return nil, err
	}
	return toRecords(modelName, "read", reply)
}

// SearchRead combines search and read for one page. An empty order keeps the
// model's default ordering.
func (s *Session) SearchRead(ctx context.Context, modelName string, domain model.Domain, fields []string, offset, limit int, order string) ([]map[string]interface{}, error) {
	var reply interface{}
	kwargs := pageArgs(offset, limit)
	kwargs["fields"] = fields
	if order = strings.TrimSpace(order); order != "" {
		kwargs["order"] = order
	}
	if err := s.ExecuteKW(ctx, modelName, "search_read", []interface{}{domainArg(domain)}, kwargs, &reply); err != nil {
		return nil, err
	}
	return toRecords(modelName, "search_read", reply)
}

// pageArgs builds offset and limit kwargs. A non-positive limit is left out,
// which the server reads as "no limit".
func pageArgs(offset, limit int) map[string]interface{} {
	kwargs := map[string]interface{}{"offset": offset}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	return kwargs
}

// domainArg keeps an empty domain encoded as an empty array rather than nil.
func domainArg(domain model.Domain) []interface{} {
	if domain == nil {
		return []interface{}{}
	}
	return []interface{}(domain)
}

func toRecords(modelName, method string, reply interface{}) ([]map[string]interface{}, error) {
	if reply == nil {
		return nil, nil
	}
	items, ok := reply.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s %s: unexpected reply %T", method, modelName, reply)
	}
	records := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s %s: unexpected record %T", method, modelName, item)
		}
		records = append(records, rec)
	}
	return records, nil
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	}
	return 0, false
}
