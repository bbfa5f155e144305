// Package handlers exposes the rental services as a JSON API.
package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/validation"
	"github.com/sirupsen/logrus"
)

// DateLayout is the format of every date in requests and query strings.
const DateLayout = "2006-01-02"

// decode reads the body into dst and checks its validate tags.
func decode(r *http.Request, dst any) error {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		return err
	}
	if v := validation.Struct(dst); !v.Empty() {
		return v.Err("invalid request")
	}
	return nil
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.Validation(map[string]string{field: "date"}, "invalid %s %q", field, raw)
	}
	return t, nil
}

// optDate parses raw unless it is empty.
func optDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(field, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// asOf reads the optional as_of query parameter.
func asOf(r *http.Request) (*time.Time, error) {
	return optDate("as_of", r.URL.Query().Get("as_of"))
}

func wantsXLSX(r *http.Request) bool {
	return r.URL.Query().Get("format") == "xlsx"
}

// fail writes err, logging it when it is not a client error.
func fail(log *logrus.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if httpx.Status(apperr.KindOf(err)) >= http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Error("request failed")
	}
	httpx.Error(w, err)
}
