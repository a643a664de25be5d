package models

// Choice is the tri-state input for a multi-select control: either every
// option (All) or an explicit, possibly empty, set of values.
type Choice struct {
	All    bool     `json:"all"`
	Values []string `json:"values,omitempty"`
}

// AllOf returns a Choice selecting every option.
func AllOf() Choice {
	return Choice{All: true}
}

// Only returns a Choice selecting exactly the given values.
func Only(values ...string) Choice {
	return Choice{Values: values}
}

// ViewSet names the aggregation views a query needs. The zero value means
// every view.
type ViewSet uint8

const (
	ViewYearly ViewSet = 1 << iota
	ViewTrend
	ViewMap
	ViewByPoe
	ViewMonthly

	AllViews = ViewYearly | ViewTrend | ViewMap | ViewByPoe | ViewMonthly
)

// Has reports whether v includes view.
func (v ViewSet) Has(view ViewSet) bool {
	return v == 0 || v&view != 0
}

// SelectionInput is what the host captures from the user before "select
// all" is expanded. Zero YearFrom/YearTo mean "dataset bound".
type SelectionInput struct {
	YearFrom  int    `json:"yearFrom,omitempty"`
	YearTo    int    `json:"yearTo,omitempty"`
	Countries Choice `json:"countries"`
	Poes      Choice `json:"poes"`

	Views ViewSet `json:"-"`
}

// FilterSelection is a fully resolved selection. Countries and Poes are
// concrete sets; the "all" sentinel never appears here.
type FilterSelection struct {
	YearFrom  int                 `json:"yearFrom"`
	YearTo    int                 `json:"yearTo"`
	Countries map[string]struct{} `json:"-"`
	Poes      map[string]struct{} `json:"-"`
	Views     ViewSet             `json:"-"`
}

// NewFilterSelection builds a FilterSelection from plain slices.
func NewFilterSelection(yearFrom, yearTo int, countries, poes []string) FilterSelection {
	return FilterSelection{
		YearFrom:  yearFrom,
		YearTo:    yearTo,
		Countries: toSet(countries),
		Poes:      toSet(poes),
	}
}

// Matches reports whether r satisfies every predicate of the selection.
func (s FilterSelection) Matches(r JoinedRecord) bool {
	if r.Year < s.YearFrom || r.Year > s.YearTo {
		return false
	}
	if _, ok := s.Countries[r.Country]; !ok {
		return false
	}
	_, ok := s.Poes[r.Poe]
	return ok
}

// Empty reports whether no record can match.
func (s FilterSelection) Empty() bool {
	return len(s.Countries) == 0 || len(s.Poes) == 0
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
