package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/foreign-arrivals/dashboard/internal/models"
)

// Query parameter names.
const (
	ParamFrom    = "from"
	ParamTo      = "to"
	ParamCountry = "country"
	ParamPoe     = "poe"

	// SelectAllToken selects every option when given as a value.
	SelectAllToken = "*"
)

// ParseSelection reads a SelectionInput from query parameters.
//
//	from, to        optional years; absent means the dataset bound
//	country, poe    repeatable; absent or "*" means all, present but empty
//	                ("country=") means none
func ParseSelection(q url.Values) (models.SelectionInput, *APIError) {
	var in models.SelectionInput
	var err *APIError

	if in.YearFrom, err = parseYear(q, ParamFrom); err != nil {
		return in, err
	}
	if in.YearTo, err = parseYear(q, ParamTo); err != nil {
		return in, err
	}
	in.Countries = parseChoice(q, ParamCountry)
	in.Poes = parseChoice(q, ParamPoe)
	return in, nil
}

func parseYear(q url.Values, name string) (int, *APIError) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		return 0, NewValidationError(name, err)
	}
	return year, nil
}

func parseChoice(q url.Values, name string) models.Choice {
	raw, present := q[name]
	if !present {
		return models.AllOf()
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == SelectAllToken {
			return models.AllOf()
		}
		if v != "" {
			values = append(values, v)
		}
	}
	return models.Only(values...)
}
