package store

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
)

// Query is the view state carried by a share link.
// Zero values mean the parameter was absent or invalid.
type Query struct {
	DateOfBirth string
	Weeks       int
}

// ParseQuery reads the dob and weeks parameters of a share link query string.
// A leading '?' is accepted. weeks is clamped to the accepted range.
func ParseQuery(raw string) Query {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		slog.Debug(config.ErrInvalidURL,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyError, err,
		)
	}
	return QueryFromValues(values)
}

// QueryFromValues is ParseQuery for already decoded values.
func QueryFromValues(values url.Values) Query {
	var q Query

	if dob := values.Get(config.QueryDOB); dob != "" {
		if birth, err := engine.ParseDate(dob); err == nil {
			q.DateOfBirth = engine.FormatDate(birth)
		} else {
			slog.Debug(config.MsgInvalidDOB,
				config.LogKeyComponent, config.CompStore,
				config.LogKeyValue, dob,
			)
		}
	}

	if weeks, ok := ParseWeeks(values.Get(config.QueryWeeks)); ok {
		q.Weeks = ClampHorizon(weeks)
	}
	return q
}

// ParseWeeks parses a user supplied horizon. It does not clamp.
func ParseWeeks(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	weeks, err := strconv.Atoi(s)
	if err != nil {
		slog.Debug(config.MsgInvalidWeeks,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyValue, s,
		)
		return 0, false
	}
	return weeks, true
}

// ShareQuery encodes the view state as a share link query string (without '?').
// An empty dob is omitted.
func ShareQuery(dob string, weeks int) string {
	values := url.Values{}
	if dob != "" {
		values.Set(config.QueryDOB, dob)
	}
	values.Set(config.QueryWeeks, strconv.Itoa(weeks))
	return values.Encode()
}
