package utils

import (
	"net/http"
	"strconv"
	"strings"

	"hospitality/validation"
)

// formValue returns the first value posted under key, if any.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm != nil {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			return strings.TrimSpace(vs[0]), true
		}
		return "", false
	}
	if vs, ok := r.PostForm[key]; ok && len(vs) > 0 {
		return strings.TrimSpace(vs[0]), true
	}
	return "", false
}

func FormString(r *http.Request, key string) *string {
	v, ok := formValue(r, key)
	if !ok {
		return nil
	}
	return &v
}

func FormInt(r *http.Request, key string) (*int, error) {
	v, ok := formValue(r, key)
	if !ok || v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, &validation.Error{Field: key, Reason: "must be a number"}
	}
	return &n, nil
}

func FormFloat(r *http.Request, key string) (*float64, error) {
	v, ok := formValue(r, key)
	if !ok || v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, &validation.Error{Field: key, Reason: "must be a number"}
	}
	return &f, nil
}

// FormList reads a repeated field or a single comma-separated value.
func FormList(r *http.Request, key string) []string {
	var vs []string
	if r.MultipartForm != nil {
		vs = r.MultipartForm.Value[key]
	} else {
		vs = r.PostForm[key]
	}
	if len(vs) == 1 {
		return SplitList(vs[0])
	}
	var out []string
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
