package prompt

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formscreen/pkg/render"
)

func serialize(format OutputFormat, values map[string]any) ([]byte, error) {
	switch format {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		out, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("prompt: encode json: %w", err)
		}
		return out, nil
	}
}

// flattenForm encodes values with the same names the HTML renderer posts, so
// the output can be replayed through render.ApplySubmission.
func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flatten(joinPath(prefix, key), val, out)
		}
	case []any:
		objects := false
		for i, val := range v {
			if _, ok := val.(map[string]any); ok {
				objects = true
				flatten(prefix+"."+strconv.Itoa(i), val, out)
				continue
			}
			out.Add(prefix, stringValue(val))
		}
		if objects {
			out.Set(render.ItemCountField(prefix), strconv.Itoa(len(v)))
		}
	default:
		out.Set(prefix, stringValue(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			writePretty(b, joinPath(prefix, key), v[key])
		}
	case []any:
		if len(v) == 0 {
			fmt.Fprintf(b, "%s=[]\n", prefix)
		}
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%s\n", prefix, stringValue(v))
		}
	}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
