package handler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/superrabbithero/appmanage/repository"
)

// parseIDList accepts a JSON array whose elements are integers or strings
// holding integers.
func parseIDList(raw json.RawMessage, field string) ([]int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, repository.InvalidArgument("%s must be an array", field)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var items []interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, repository.InvalidArgument("%s must be an array", field)
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case json.Number:
			s = v.String()
		case string:
			s = strings.TrimSpace(v)
		default:
			return nil, repository.InvalidArgument("%s must contain integers", field)
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, repository.InvalidArgument("%s must contain integers", field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func pathID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, repository.InvalidArgument("invalid %s", name)
	}
	return uint(id), nil
}

// queryID reads a required positive integer query parameter.
func queryID(c *fiber.Ctx, name string) (uint, error) {
	v := c.Query(name)
	if v == "" {
		return 0, repository.InvalidArgument("%s is required", name)
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil || id == 0 {
		return 0, repository.InvalidArgument("invalid %s", name)
	}
	return uint(id), nil
}

// optionalQueryID is like queryID but returns nil when the parameter is absent.
func optionalQueryID(c *fiber.Ctx, name string) (*uint, error) {
	if c.Query(name) == "" {
		return nil, nil
	}
	id, err := queryID(c, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// queryInts collects every value of a repeatable integer parameter.
func queryInts(c *fiber.Ctx, name string) ([]int, error) {
	values := c.Context().QueryArgs().PeekMulti(name)
	out := make([]int, 0, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return nil, repository.InvalidArgument("invalid %s", name)
		}
		out = append(out, n)
	}
	return out, nil
}

func pageParams(c *fiber.Ctx) (int, int) {
	return c.QueryInt("page", 1), c.QueryInt("per_page", 10)
}
