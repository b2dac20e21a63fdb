package handlers

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/carpenike/repcal/internal/app"
	"github.com/carpenike/repcal/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route. Sessions carry the per-browser view cursor.
func NewRouter(a *app.App, sessions *scs.SessionManager) http.Handler {
	program := &Program{App: a}
	prog := &Progress{App: a}
	programs := &Programs{App: a}
	settings := &Settings{App: a}
	view := &View{App: a, Sessions: sessions}
	export := &Export{App: a}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/program", program.Show)
		r.Get("/schedule", program.Schedule)
		r.Get("/completion", program.Completion)
		r.Get("/weeks/{week}", program.Week)
		r.Get("/weeks/{week}/days/{day}", program.Day)

		r.Put("/weeks/{week}/days/{day}/exercises/{index}", prog.Update)
		r.Post("/weeks/{week}/days/{day}/exercises/{index}/accept", prog.Accept)
		r.Post("/weeks/{week}/days/{day}/exercises/{index}/complete", prog.Complete)
		r.Delete("/weeks/{week}/days/{day}", prog.ResetDay)

		r.Group(func(r chi.Router) {
			r.Use(sessions.LoadAndSave)
			r.Get("/view", view.Show)
			r.Post("/view", view.Update)
		})

		r.Get("/settings", settings.Show)
		r.Put("/settings", settings.Update)

		r.Get("/programs", programs.List)
		r.Post("/programs", programs.SaveAs)
		r.Post("/programs/{id}/switch", programs.Switch)
		r.Delete("/programs/{id}", programs.Delete)
		r.Post("/reset", programs.Reset)

		r.Get("/export.csv", export.CSV)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
