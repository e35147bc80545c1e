package inspect

import (
	"fmt"
	"strings"

	"github.com/camkit-project/camkit-go/pkg/metadata"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowTypes includes the item type and count.
	ShowTypes bool

	// ShowTags includes the numeric tag alongside the name.
	ShowTags bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowTypes:   true,
		ShowTags:    false,
		IndentWidth: 2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue formats the values of an item. Single values are printed
// bare, lists in brackets.
func (f *Formatter) FormatValue(it metadata.Item) string {
	var vals []string
	switch data := it.Data.(type) {
	case []uint8:
		vals = formatAll(data, "%d")
	case []int32:
		vals = formatAll(data, "%d")
	case []uint32:
		vals = formatAll(data, "%d")
	case []int64:
		vals = formatAll(data, "%d")
	case []float32:
		vals = formatAll(data, "%.2f")
	case []float64:
		vals = formatAll(data, "%.4f")
	case []metadata.Rational:
		vals = make([]string, len(data))
		for i, r := range data {
			vals[i] = r.String()
		}
	default:
		return fmt.Sprintf("%v", it.Data)
	}

	if len(vals) == 1 {
		return vals[0]
	}
	return "[" + strings.Join(vals, " ") + "]"
}

func formatAll[T any](data []T, verb string) []string {
	out := make([]string, len(data))
	for i, v := range data {
		out[i] = fmt.Sprintf(verb, v)
	}
	return out
}

// FormatItem formats a single item as "name = value".
func (f *Formatter) FormatItem(it metadata.Item) string {
	var sb strings.Builder
	sb.WriteString(TagDisplayName(it.Tag))
	if f.ShowTags {
		fmt.Fprintf(&sb, " (%#x)", it.Tag)
	}
	if f.ShowTypes {
		fmt.Fprintf(&sb, " <%s[%d]>", it.Type, it.Count)
	}
	sb.WriteString(" = ")
	sb.WriteString(f.FormatValue(it))
	return sb.String()
}

// FormatStore formats every item of a store, one per line, in tag order.
func (f *Formatter) FormatStore(s *metadata.Store, depth int) string {
	if s == nil || s.Len() == 0 {
		return f.Indent(depth, "(empty)") + "\n"
	}
	var sb strings.Builder
	for _, it := range s.Items() {
		sb.WriteString(f.Indent(depth, f.FormatItem(it)))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ItemValue returns a JSON-friendly value of an item: a scalar for
// single values, a slice otherwise. Rationals become "n/d" strings.
func ItemValue(it metadata.Item) any {
	if rs, ok := it.Rationals(); ok {
		strs := make([]string, len(rs))
		for i, r := range rs {
			strs[i] = r.String()
		}
		return single(strs)
	}
	switch data := it.Data.(type) {
	case []uint8:
		// Widen so encoding/json does not emit base64.
		ints := make([]int, len(data))
		for i, v := range data {
			ints[i] = int(v)
		}
		return single(ints)
	case []int32:
		return single(data)
	case []uint32:
		return single(data)
	case []int64:
		return single(data)
	case []float32:
		return single(data)
	case []float64:
		return single(data)
	default:
		return it.Data
	}
}

func single[T any](data []T) any {
	if len(data) == 1 {
		return data[0]
	}
	return data
}

// StoreMap returns the items of a store keyed by tag name.
func StoreMap(s *metadata.Store) map[string]any {
	out := make(map[string]any)
	if s == nil {
		return out
	}
	for _, it := range s.Items() {
		out[TagDisplayName(it.Tag)] = ItemValue(it)
	}
	return out
}
