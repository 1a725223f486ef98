package reader

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// The resource type wraps a streamable file or remote resource.
type resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *resource) Path() string {
	return r.url.String()
}

// Returns true if the resource is streamed over http/https.
func (r *resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Create a new resource data stream. If relTo is specified and
// pathToResource does not define a scheme, then the path to the new
// resource will be generated by concatenating the base path of relTo
// and pathToResource.
//
// This function can handle http/https URLs by delegating to the
// net/http package. The caller must make sure to close the returned
// io.ReadCloser to prevent mem leaks.
func newResource(pathToResource string, relTo *resource) (*resource, error) {
	// Replace backslashes with forward slashes and try parsing as a URL
	url, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	// If this is a relative url, clone parent url and adjust its path
	if url.Scheme == "" && relTo != nil {
		path := url.Path
		url, _ = url.Parse(relTo.url.String())
		prefix := url.Path
		if url.Scheme == "" {
			prefix, err = filepath.Abs(relTo.url.String())
			if err != nil {
				return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.url.String(), err.Error())
			}
		}
		url.Path = filepath.Dir(prefix) + "/" + path
	}

	var reader io.ReadCloser
	switch url.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(url.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		resp, err := http.Get(url.String())
		if err != nil {
			return nil, fmt.Errorf("resource: could not fetch '%s': %s", url.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("resource: could not fetch '%s': status %d", url.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", url.Scheme)
	}

	return &resource{
		ReadCloser: reader,
		url:        url,
	}, nil
}
