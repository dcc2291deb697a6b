package query

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/shipq/catalogapi/failure"
)

// Decode converts every record of rs into a T. Fields are matched to columns
// through `db` struct tags. A column without a matching field means the
// statement and the record type have drifted apart and is reported as a
// failure.UnexpectedFailure.
func Decode[T any](rs *ResultSet) ([]T, error) {
	out := make([]T, 0, rs.Len())
	for i, rec := range rs.Records {
		var v T
		if err := DecodeRecord(rec, &v); err != nil {
			return nil, failure.Unexpectedf("decoding row %d: %v", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeRecord decodes a single record into out, which must be a pointer to a struct.
func DecodeRecord(rec Record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "db",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToTimeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
		Result: out,
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}
	return dec.Decode(rec.Map())
}

// timeLayouts are the text forms drivers use for timestamps when they do not
// return time.Time themselves.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func stringToTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := data.(string)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return data, nil
}
