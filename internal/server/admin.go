package server

import (
	"html/template"
	"log"
	"net/http"
	"time"
)

var adminTemplate = template.Must(template.New("admin").Funcs(template.FuncMap{
	"fmtDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Jobs Database Admin</title>
    <style>
        body { font-family: sans-serif; margin: 0; padding: 20px; background: #f5f7fa; }
        .container { max-width: 1200px; margin: 0 auto; background: white; padding: 20px; border-radius: 8px; }
        h1 { color: #2557a7; }
        table { border-collapse: collapse; width: 100%; margin-top: 20px; }
        th, td { border: 1px solid #eee; padding: 10px; text-align: left; }
        th { background-color: #f8f9fa; }
        tr:nth-child(even) { background-color: #fafbfc; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Jobs Database ({{len .}} records)</h1>
        <table>
            <tr>
                <th>ID</th><th>Serial</th><th>Title</th><th>Company</th>
                <th>Location</th><th>Posted</th><th>Added</th>
            </tr>
            {{range .}}
            <tr>
                <td>{{.ID}}</td>
                <td>{{.Serial}}</td>
                <td>{{.Title}}</td>
                <td>{{.CompanyName}}</td>
                <td>{{.Location}}</td>
                <td>{{fmtDate .PublishedDate}}</td>
                <td>{{fmtDate .CreatedAt}}</td>
            </tr>
            {{end}}
        </table>
    </div>
</body>
</html>`))

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.All(r.Context())
	if err != nil {
		log.Printf("[server] admin query error: %v", err)
		http.Error(w, "Error loading database: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := adminTemplate.Execute(w, jobs); err != nil {
		log.Printf("[server] admin template error: %v", err)
	}
}
