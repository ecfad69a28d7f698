package server

import (
	"html/template"
	"log"
	"net/http"
	"strconv"

	"calorie-counter/internal/models"
	"calorie-counter/internal/widget"
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"kcal": models.FormatCalories,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Calorie Counter</title>
<style>
body { font-family: sans-serif; background: #f3f4f6; }
.card { max-width: 32rem; margin: 2.5rem auto; padding: 1rem; background: #f9fafb; border-radius: .5rem; box-shadow: 0 1px 3px rgba(0,0,0,.2); }
input[type=text] { width: 100%; padding: .5rem; box-sizing: border-box; }
.submit { width: 100%; margin-top: 1rem; padding: .5rem; background: #22c55e; color: #fff; border: 0; border-radius: .25rem; }
.loading { margin-top: 1rem; text-align: center; color: #6b7280; }
.error { color: #ef4444; margin-top: 1rem; }
.day { margin-top: 1.5rem; padding: 1rem; background: #fff; border: 1px solid #d1d5db; border-radius: .25rem; }
.day header { display: flex; justify-content: space-between; }
.total { color: #3b82f6; font-weight: bold; }
.entry { display: flex; justify-content: space-between; align-items: center; padding: .5rem; margin: .5rem 0; border: 1px solid #e5e7eb; }
.remove { background: #ef4444; color: #fff; border: 0; padding: .25rem .5rem; border-radius: .25rem; }
</style>
</head>
<body>
<div class="card">
<h1>Calorie Counter</h1>
<form method="post" action="/query">
<input type="text" name="query" placeholder="Enter a food item (e.g., apple, pasta)" value="{{.Query}}">
{{if .Loading}}<div class="loading">Loading…</div>{{else}}<button class="submit" type="submit">Get Nutrition Info</button>{{end}}
</form>
{{with .Error}}<p class="error">{{.}}</p>{{end}}
{{range .Days}}
<section class="day">
<header><h2>{{.Date}}</h2><p class="total">Total Calories: {{kcal .TotalCalories}} kcal</p></header>
{{$date := .Date}}
{{range $i, $e := .Entries}}
<div class="entry">
<div><p><strong>Food:</strong> {{$e.Name}}</p><p><strong>Calories:</strong> {{kcal $e.Calories}} kcal</p></div>
<form method="post" action="/remove">
<input type="hidden" name="date" value="{{$date}}">
<input type="hidden" name="index" value="{{$i}}">
<button class="remove" type="submit">remove</button>
</form>
</div>
{{end}}
</section>
{{end}}
</div>
</body>
</html>
`))

type pageData struct {
	widget.State
	Loading bool
}

func (s *CalorieServer) handlePage(w http.ResponseWriter, r *http.Request) {
	st := s.widget.State()
	data := pageData{State: st, Loading: st.Status == widget.StatusLoading}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Printf("Failed to render page: %v", err)
	}
}

func (s *CalorieServer) handlePageQuery(w http.ResponseWriter, r *http.Request) {
	if err := s.widget.Submit(r.Context(), r.FormValue("query")); err != nil {
		log.Printf("Lookup failed: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *CalorieServer) handlePageRemove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	if err := s.widget.Remove(r.Context(), r.FormValue("date"), index); err != nil {
		log.Printf("Remove failed: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
