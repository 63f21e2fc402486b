package uriutil

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// PathToURI converts a file system path to a file:// URI.
// Segments are percent-encoded, Windows drive letters and UNC paths are
// handled, and the path is made absolute first:
//   - /home/user        -> file:///home/user
//   - C:\proj           -> file:///C:/proj
//   - \\server\share    -> file://server/share
//   - /tmp/a b          -> file:///tmp/a%20b
func PathToURI(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	// Windows UNC path: \\server\share\path -> file://server/share/path
	if runtime.GOOS == "windows" && strings.HasPrefix(absPath, `\\`) {
		uncPath := filepath.ToSlash(strings.TrimPrefix(absPath, `\\`))
		segments := strings.Split(uncPath, "/")
		for i, seg := range segments {
			segments[i] = url.PathEscape(seg)
		}
		return "file://" + strings.Join(segments, "/")
	}

	absPath = filepath.ToSlash(absPath)

	// Windows drive paths need a leading slash: C:/proj -> /C:/proj
	if !strings.HasPrefix(absPath, "/") {
		absPath = "/" + absPath
	}

	segments := strings.Split(absPath, "/")
	for i, seg := range segments {
		if seg != "" {
			segments[i] = url.PathEscape(seg)
		}
	}

	return "file://" + strings.Join(segments, "/")
}

// URIToPath converts a file:// URI to a file system path, percent-decoding
// segments and undoing the Windows drive-letter and UNC encodings that
// PathToURI applies.
func URIToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return uriFallback(uri)
	}

	path := parsed.Path

	// UNC: file://server/share/path
	if parsed.Host != "" {
		if runtime.GOOS == "windows" {
			host, _ := url.PathUnescape(parsed.Host)
			pathDecoded, _ := url.PathUnescape(path)
			return `\\` + host + strings.ReplaceAll(pathDecoded, "/", `\`)
		}
		return parsed.Host + path
	}

	decodedPath, err := url.PathUnescape(path)
	if err != nil {
		decodedPath = path
	}

	// Windows drive: /C:/proj -> C:/proj
	if len(decodedPath) >= 3 && decodedPath[0] == '/' && decodedPath[2] == ':' {
		decodedPath = decodedPath[1:]
	}

	return filepath.FromSlash(decodedPath)
}

// uriFallback handles URIs that net/url cannot parse
func uriFallback(uri string) string {
	path := uri
	if strings.HasPrefix(path, "file:///") {
		path = path[7:]
	} else if strings.HasPrefix(path, "file://") {
		path = path[7:]
	}
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}
