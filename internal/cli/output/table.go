package output

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"
)

// TableFormatter formats data as an aligned text table.
//
// A *Table is rendered as is. A struct becomes a FIELD/VALUE listing and a
// slice of structs gets one row per element; nested structs are flattened
// with dotted names. Column names come from json tags.
type TableFormatter struct {
	NoHeaders bool
}

// Format formats data as a table.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}
	if t, ok := data.(*Table); ok {
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	table, err := toTable(data)
	if err != nil {
		return err
	}
	return table.RenderWithOptions(w, f.NoHeaders)
}

func toTable(data any) (*Table, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := &Table{Headers: []string{"FIELD", "VALUE"}}
		flatten(v, "", func(name, val string) {
			t.AddRow(name, val)
		})
		return t, nil
	case reflect.Slice, reflect.Array:
		return sliceToTable(v)
	case reflect.Map:
		t := &Table{Headers: []string{"KEY", "VALUE"}}
		iter := v.MapRange()
		for iter.Next() {
			t.AddRow(formatValue(iter.Key()), formatValue(iter.Value()))
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", v.Kind())
	}
}

func sliceToTable(v reflect.Value) (*Table, error) {
	t := &Table{}
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		if elem.Kind() != reflect.Struct {
			if i == 0 {
				t.Headers = []string{"VALUE"}
			}
			t.AddRow(formatValue(elem))
			continue
		}

		var row []string
		flatten(elem, "", func(name, val string) {
			if i == 0 {
				t.Headers = append(t.Headers, strings.ToUpper(name))
			}
			row = append(row, val)
		})
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// flatten walks the exported fields of a struct value.
func flatten(v reflect.Value, prefix string, emit func(name, val string)) {
	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Tag.Get("table") == "-" {
			continue
		}

		name := fieldName(field)
		if prefix != "" {
			name = prefix + "." + name
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Ptr && !fv.IsNil() && fv.Elem().Kind() == reflect.Struct {
			fv = fv.Elem()
		}
		if fv.Kind() == reflect.Struct && !isScalarStruct(fv) {
			flatten(fv, name, emit)
			continue
		}
		emit(name, formatValue(fv))
	}
}

func fieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// isScalarStruct reports struct types that print as one value.
func isScalarStruct(v reflect.Value) bool {
	_, ok := v.Interface().(fmt.Stringer)
	return ok
}

// formatValue formats a reflect.Value for display.
func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	switch v.Kind() {
	case reflect.String:
		if v.String() == "" {
			return "-"
		}
		return v.String()
	case reflect.Bool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table with options.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}
