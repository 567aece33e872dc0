package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magicolala/chess-arena/handlers"
	"github.com/magicolala/chess-arena/middleware"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Player     *handlers.PlayerHandler
	Queue      *handlers.QueueHandler
	Tournament *handlers.TournamentHandler
	Session    *handlers.SessionHandler
	Game       *handlers.GameHandler
	WebSocket  *handlers.WebSocketHandler
}

// New assembles the full HTTP surface: public reads, auth endpoints, the
// JWT-protected API, the websocket upgrade and the swagger UI.
func New(h Handlers, jwtSecret []byte) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/ws/{room}", h.WebSocket.Serve)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Auth.Signup)
		r.Post("/signin", h.Auth.Signin)
	})

	r.Get("/players/{playerID}/rating", h.Player.GetRating)
	r.Get("/tournaments/{tournamentID}", h.Tournament.Get)
	r.Get("/tournaments/{tournamentID}/leaderboard", h.Tournament.Leaderboard)
	r.Get("/sessions/{sessionID}", h.Session.Get)
	r.Get("/sessions/{sessionID}/games", h.Session.ListGames)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Post("/players/avatar", h.Player.UploadAvatar)

		r.Post("/queue/join", h.Queue.Join)
		r.Post("/queue/leave", h.Queue.Leave)

		r.Post("/tournaments", h.Tournament.Create)
		r.Post("/tournaments/{tournamentID}/join", h.Tournament.Join)
		r.Post("/tournaments/{tournamentID}/queue", h.Tournament.JoinQueue)
		r.Post("/tournaments/{tournamentID}/queue/leave", h.Tournament.LeaveQueue)
		r.Post("/tournaments/{tournamentID}/results", h.Tournament.RecordResult)

		r.Post("/sessions", h.Session.Create)
		r.Post("/sessions/join", h.Session.Join)
		r.Post("/sessions/{sessionID}/start", h.Session.Start)

		r.Post("/games/{gameID}/result", h.Game.RecordResult)
	})

	return r
}
