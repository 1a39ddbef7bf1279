package submission

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrNotForm marks a request that carries no form submission. Callers
	// treat it as a no-op rather than a failure.
	ErrNotForm = errors.New("submission: request is not a form submission")
	// ErrMalformedEntry is returned when a name or value cannot be decoded.
	ErrMalformedEntry = errors.New("submission: malformed form entry")
)

const (
	mediaTypeURLEncoded = "application/x-www-form-urlencoded"
	mediaTypeMultipart  = "multipart/form-data"
)

// ParseURLEncoded splits an application/x-www-form-urlencoded payload into
// entries, keeping order and duplicates. Empty segments are skipped and a
// segment without "=" decodes to an empty value.
func ParseURLEncoded(body string) ([]Entry, error) {
	if body == "" {
		return nil, nil
	}

	var entries []Entry
	for _, segment := range strings.Split(body, "&") {
		if segment == "" {
			continue
		}
		rawName, rawValue, _ := strings.Cut(segment, "=")

		name, err := url.QueryUnescape(rawName)
		if err != nil {
			return nil, fmt.Errorf("%w: name %q: %v", ErrMalformedEntry, rawName, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", ErrMalformedEntry, name, err)
		}
		entries = append(entries, Entry{Name: name, Value: value})
	}
	return entries, nil
}

// ReadMultipart reads multipart/form-data parts in order. File parts
// contribute their file name, which is what a browser's FormData reports as
// the entry's string form.
func ReadMultipart(reader *multipart.Reader) ([]Entry, error) {
	if reader == nil {
		return nil, nil
	}

	var entries []Entry
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
		}

		name := part.FormName()
		if name == "" {
			_ = part.Close()
			continue
		}

		var value string
		if filename := part.FileName(); filename != "" {
			value = filename
			_, err = io.Copy(io.Discard, part)
		} else {
			var data []byte
			data, err = io.ReadAll(part)
			value = string(data)
		}
		_ = part.Close()
		if err != nil {
			return nil, fmt.Errorf("submission: read part %q: %w", name, err)
		}

		entries = append(entries, Entry{Name: name, Value: value})
	}
	return entries, nil
}

// EntriesFromRequest decodes the form entries carried by r. GET and HEAD
// requests read the query string; other methods read the body according to
// its Content-Type. Requests that carry no form payload return ErrNotForm.
// Callers bound the body size (for example with http.MaxBytesReader).
func EntriesFromRequest(r *http.Request) ([]Entry, error) {
	if r == nil {
		return nil, ErrNotForm
	}

	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if r.URL == nil || r.URL.RawQuery == "" {
			return nil, ErrNotForm
		}
		return ParseURLEncoded(r.URL.RawQuery)
	}

	contentType := strings.TrimSpace(r.Header.Get("Content-Type"))
	if contentType == "" || r.Body == nil {
		return nil, ErrNotForm
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, ErrNotForm
	}

	switch mediaType {
	case mediaTypeURLEncoded:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("submission: read body: %w", err)
		}
		return ParseURLEncoded(string(body))
	case mediaTypeMultipart:
		boundary := params["boundary"]
		if boundary == "" {
			return nil, fmt.Errorf("%w: multipart boundary missing", ErrMalformedEntry)
		}
		return ReadMultipart(multipart.NewReader(r.Body, boundary))
	default:
		return nil, ErrNotForm
	}
}
