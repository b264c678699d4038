package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"network-insights-go/internal/filter"
)

const dateLayout = "2006-01-02"

// BadRequestError is a query parameter the handlers cannot use.
type BadRequestError struct {
	Param string
	Msg   string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Msg)
}

// list reads a repeatable parameter; comma-separated values are split too.
func list(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func date(q url.Values, name string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, &BadRequestError{Param: name, Msg: "want YYYY-MM-DD"}
	}
	return &t, nil
}

// parseCriteria reads segment, insurer, state, city, from and to.
func parseCriteria(q url.Values) (filter.Criteria, error) {
	c := filter.Criteria{
		Segments: list(q, "segment"),
		Insurers: list(q, "insurer"),
		States:   list(q, "state"),
		Cities:   list(q, "city"),
	}
	var err error
	if c.From, err = date(q, "from"); err != nil {
		return c, err
	}
	if c.To, err = date(q, "to"); err != nil {
		return c, err
	}
	if c.From != nil && c.To != nil && c.To.Before(*c.From) {
		return c, &BadRequestError{Param: "to", Msg: "before from"}
	}
	return c, nil
}

// parseMin reads min_count; nil when absent.
func parseMin(q url.Values) (*int, error) {
	raw := strings.TrimSpace(q.Get("min_count"))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, &BadRequestError{Param: "min_count", Msg: "want a non-negative integer"}
	}
	return &n, nil
}
