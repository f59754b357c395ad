package render

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"text/template"

	"github.com/roach88/gandalf/internal/query"
	"github.com/roach88/gandalf/internal/view"
)

// FuncMap returns the functions available to every template.
//
// Predicate builders:
//
//	where "vlan == 10 and role != db"   parse a filter expression
//	field "vlan"                        a field reference (same as .Host.Field)
//	all p q ...                         every predicate holds
//	any p q ...                         at least one predicate holds
//	none p q ...                        no predicate holds
//	negate p                            p does not hold
//	matches "hostname" "^web"           field text matches a regular expression
//	oneOf "role" "web" "db"             field equals one of the values
//	inSubnet "ip" "10.0.10.0/24"        field is an address inside the prefix
//	isSet "mac"                         field is present, non-null and non-empty
//
// Text helpers: join, lower, upper, reverseName, reverseZone.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"where":  query.Parse,
		"field":  func(name string) query.FieldRef { return query.Root{}.Field(name) },
		"all":    combine("all", query.AndOf),
		"any":    combine("any", query.OrOf),
		"none":   combine("none", func(ps ...query.Predicate) query.Predicate { return query.NotOf(query.OrOf(ps...)) }),
		"negate": negate,

		"matches": func(field, pattern string) (query.Predicate, error) {
			return query.Root{}.Field(field).Matches(pattern)
		},
		"oneOf": func(field string, vs ...any) (query.Predicate, error) {
			return query.Root{}.Field(field).In(vs...)
		},
		"inSubnet": func(field, prefix string) (query.Predicate, error) {
			fn, err := query.InSubnet(prefix)
			if err != nil {
				return nil, err
			}
			return query.Root{}.Field(field).NamedTest("inSubnet", fn), nil
		},
		"isSet": func(field string) query.Predicate {
			return query.Root{}.Field(field).Exists()
		},

		"join":        join,
		"lower":       strings.ToLower,
		"upper":       strings.ToUpper,
		"reverseName": view.ReverseName,
		"reverseZone": view.ReverseZone,
	}
}

var errNoPredicates = errors.New("no predicates given")

func combine(name string, fn func(...query.Predicate) query.Predicate) func(...query.Predicate) (query.Predicate, error) {
	return func(ps ...query.Predicate) (query.Predicate, error) {
		for i, p := range ps {
			if p == nil {
				return nil, fmt.Errorf("%s: predicate %d is empty", name, i+1)
			}
		}
		if len(ps) == 0 {
			return nil, fmt.Errorf("%s: %w", name, errNoPredicates)
		}
		return fn(ps...), nil
	}
}

func negate(p query.Predicate) (query.Predicate, error) {
	if p == nil {
		return nil, fmt.Errorf("negate: %w", errNoPredicates)
	}
	return query.NotOf(p), nil
}

// join concatenates the elements of a slice, formatted with fmt.Sprint.
func join(sep string, list any) (string, error) {
	if ss, ok := list.([]string); ok {
		return strings.Join(ss, sep), nil
	}
	v := reflect.ValueOf(list)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return "", fmt.Errorf("join: want a list, got %T", list)
	}
	parts := make([]string, v.Len())
	for i := range parts {
		parts[i] = fmt.Sprint(v.Index(i).Interface())
	}
	return strings.Join(parts, sep), nil
}
