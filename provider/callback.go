package provider

import (
	"mime"
	"net/http"
)

// CallbackParams returns the callback parameters of r. Requests with a form
// content type are read from the form body only, everything else from the query string.
func CallbackParams(r *http.Request) (map[string]string, error) {
	values := r.URL.Query()

	switch formMediaType(r) {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		values = r.PostForm
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxCallbackMemory); err != nil {
			return nil, err
		}
		values = r.PostForm
	}

	params := make(map[string]string, len(values))
	for key := range values {
		params[key] = values.Get(key)
	}

	return params, nil
}

const maxCallbackMemory = 1 << 20

func formMediaType(r *http.Request) string {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mediaType
}
