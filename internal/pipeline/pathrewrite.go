package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rewriteTargets lists the attributes holding document-relative paths.
//
// Not rewritten: media elements (PDFs don't play them), srcset, CSS url()
// references and script[src].
var rewriteTargets = []struct {
	selector string
	attr     string
}{
	{"img[src]", "src"},
	{"a[href]", "href"},
}

// RewriteRelativePaths converts relative image and link paths in an HTML
// fragment to absolute file:// URLs. The rendered document is loaded from a
// temporary file, so paths relative to the Markdown source would not resolve.
// If sourceDir is empty, returns the HTML unchanged.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	changed := false
	for _, target := range rewriteTargets {
		doc.Find(target.selector).Each(func(_ int, sel *goquery.Selection) {
			val, _ := sel.Attr(target.attr)
			if rewritten, ok := resolvePath(val, absSourceDir); ok {
				sel.SetAttr(target.attr, rewritten)
				changed = true
			}
		})
	}
	if !changed {
		return htmlContent, nil
	}

	return doc.Find("body").Html()
}

// resolvePath returns the file:// URL for a relative path under sourceDir.
func resolvePath(path, sourceDir string) (string, bool) {
	if !isRelativePath(path) {
		return "", false
	}

	absPath := filepath.Join(sourceDir, path)

	// Security: paths escaping sourceDir are left as written
	if !isPathUnderDir(absPath, sourceDir) {
		return "", false
	}

	return pathToFileURL(absPath), true
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	// Skip URLs (http, https, file, data, mailto, protocol-relative)
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, "#") {
		return false
	}
	if u, err := url.Parse(path); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false
	}

	return !filepath.IsAbs(path)
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
// Handles both Unix and Windows paths correctly.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
