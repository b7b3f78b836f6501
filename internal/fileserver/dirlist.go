// internal/fileserver/dirlist.go
package fileserver

import (
	"html/template"
	"net/http"
	"net/url"
	"os"
	"sort"
)

var listingTmpl = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html>
<head><title>Directory listing for {{.Path}}</title></head>
<body>
<h1>Directory listing for {{.Path}}</h1>
<hr>
<ul>
{{- range .Entries}}
<li><a href="{{.Href}}">{{.Name}}</a></li>
{{- end}}
</ul>
<hr>
</body>
</html>
`))

type listingEntry struct {
	Name string
	Href string
}

type listingData struct {
	Path    string
	Entries []listingEntry
}

func writeListing(w http.ResponseWriter, upath string, entries []os.DirEntry) error {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	data := listingData{Path: upath}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		data.Entries = append(data.Entries, listingEntry{
			Name: name,
			Href: url.PathEscape(e.Name()) + dirSuffix(e),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return listingTmpl.Execute(w, data)
}

func dirSuffix(e os.DirEntry) string {
	if e.IsDir() {
		return "/"
	}
	return ""
}
