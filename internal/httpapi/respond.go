// ABOUTME: JSON response helpers and request field decoding.
// ABOUTME: Requests may be JSON objects or HTML form posts; both decode to the same field map.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fields maps request keys to values. A key that is absent from the request
// has no entry; a key present with an empty value maps to "".
type fields map[string]*string

func (f fields) get(keys ...string) *string {
	for _, k := range keys {
		if v, ok := f[k]; ok {
			return v
		}
	}
	return nil
}

func (f fields) value(keys ...string) string {
	if v := f.get(keys...); v != nil {
		return strings.TrimSpace(*v)
	}
	return ""
}

// decodeFields reads a JSON object or a urlencoded/multipart form.
// An empty body decodes to no fields.
func decodeFields(r *http.Request) (fields, error) {
	out := fields{}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mt {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				v := vs[0]
				out[k] = &v
			}
		}
		return out, nil
	}

	if r.Body == nil || r.ContentLength == 0 {
		return out, nil
	}

	var raw map[string]interface{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	for k, v := range raw {
		var s string
		switch val := v.(type) {
		case nil:
			continue
		case string:
			s = val
		case json.Number:
			s = val.String()
		case bool:
			s = strconv.FormatBool(val)
		default:
			return nil, fmt.Errorf("field %q must be a string or number", k)
		}
		out[k] = &s
	}
	return out, nil
}
