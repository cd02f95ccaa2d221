package scribe

import (
	"reflect"
	"strings"
)

// Normalize repairs a decoded record in place: strings are trimmed, blank optional strings and
// blank list entries are dropped, empty optional lists and all-empty optional entities become
// absent, and the default-empty lists are set to empty. Required fields are never filled in.
func Normalize(rec *ClinicalRecord) {
	if rec == nil {
		return
	}
	normalizeValue(reflect.ValueOf(rec).Elem(), false)
	if rec.Subjective != nil {
		if rec.Subjective.MedicalHistory == nil {
			rec.Subjective.MedicalHistory = []string{}
		}
		if rec.Subjective.CurrentMedications == nil {
			rec.Subjective.CurrentMedications = []Medication{}
		}
	}
}

// normalizeValue reports whether v is left holding its zero value.
func normalizeValue(v reflect.Value, keep bool) bool {
	switch v.Kind() {
	case reflect.String:
		v.SetString(strings.TrimSpace(v.String()))
		return v.Len() == 0

	case reflect.Pointer:
		if v.IsNil() {
			return true
		}
		// A stated false or zero is information; only blank text and empty entities collapse.
		if v.Type() == dateType || (v.Elem().Kind() != reflect.String && v.Elem().Kind() != reflect.Struct) {
			return false
		}
		if normalizeValue(v.Elem(), false) && !keep {
			v.Set(reflect.Zero(v.Type()))
			return true
		}
		return false

	case reflect.Struct:
		empty := true
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			f := v.Field(i)
			if !f.CanSet() {
				empty = false
				continue
			}
			keepField := strings.Contains(t.Field(i).Tag.Get("validate"), "required")
			if !normalizeValue(f, keepField) {
				empty = false
			}
		}
		return empty

	case reflect.Slice:
		if v.IsNil() {
			return true
		}
		out := reflect.MakeSlice(v.Type(), 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			// A blank entity that must name something stays, so Validate reports its path.
			if normalizeValue(elem, false) && !hasNonblankField(elem.Type()) {
				continue
			}
			out = reflect.Append(out, elem)
		}
		if out.Len() == 0 {
			if keep {
				v.Set(out)
			} else {
				v.Set(reflect.Zero(v.Type()))
			}
			return true
		}
		v.Set(out)
		return false

	default:
		return v.IsZero()
	}
}

var dateType = reflect.TypeOf((*Date)(nil))

func hasNonblankField(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		for _, rule := range strings.Split(t.Field(i).Tag.Get("validate"), ",") {
			if rule == "nonblank" {
				return true
			}
		}
	}
	return false
}
