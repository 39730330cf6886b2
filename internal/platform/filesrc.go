package platform

import (
	"net/url"
	"strings"
)

// FilePrefix is the path under which converted native files are served.
const FilePrefix = "/_app_file_"

// FileSrcConverter rewrites file:// URIs into Scheme://Host/_app_file_/...
type FileSrcConverter struct {
	Scheme string
	Host   string
}

// ConvertFileSrc returns uri unchanged unless it is a file URI or an
// absolute native path.
func (c FileSrcConverter) ConvertFileSrc(uri string) string {
	var p string
	switch {
	case strings.HasPrefix(uri, "file://"):
		u, err := url.Parse(uri)
		if err != nil {
			return uri
		}
		p = u.Path
	case strings.HasPrefix(uri, "/"):
		p = uri
	default:
		return uri
	}
	u := url.URL{Scheme: c.Scheme, Host: c.Host, Path: FilePrefix + p}
	return u.String()
}
