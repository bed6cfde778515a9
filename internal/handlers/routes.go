package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	friends := FriendHandler{Friends: deps.Friends, Identity: deps.Identity, Sessions: deps.Sessions}
	events := EventHandler{Events: deps.Events, Participation: deps.Participation, Identity: deps.Identity, Sessions: deps.Sessions}
	posts := PostHandler{Posts: deps.Posts, Verification: deps.Verification, Identity: deps.Identity, Sessions: deps.Sessions}
	verification := VerificationHandler{Verification: deps.Verification, Identity: deps.Identity, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}

	mux.HandleFunc("/healthz", health.Handle)

	mux.HandleFunc("/api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/v1/auth/logout", auth.Logout)

	mux.HandleFunc("/api/v1/friends", friends.List)
	mux.HandleFunc("/api/v1/friends/request", friends.Request)
	mux.HandleFunc("/api/v1/friends/requests", friends.Requests)
	mux.HandleFunc("/api/v1/friends/respond", friends.Respond)
	mux.HandleFunc("/api/v1/friends/remove", friends.Remove)

	mux.HandleFunc("/api/v1/events", events.Handle)
	mux.HandleFunc("/api/v1/events/join", events.Join)
	mux.HandleFunc("/api/v1/events/leave", events.Leave)
	mux.HandleFunc("/api/v1/events/participants", events.Participants)
	mux.HandleFunc("/api/v1/events/mine", events.Mine)

	mux.HandleFunc("/api/v1/posts", posts.Create)
	mux.HandleFunc("/api/v1/posts/feed", posts.Feed)

	mux.HandleFunc("/api/v1/verification", verification.Handle)
	mux.HandleFunc("/api/v1/verification/review", verification.Review)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Identity      IdentityDirectory
	Friends       FriendService
	Events        EventStore
	Participation ParticipationService
	Posts         PostStore
	Verification  VerificationService
	AuthLimiter   RateLimiter
}
