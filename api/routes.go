package api

import (
	"github.com/craftwork/handwerk/internal/config"
	"github.com/craftwork/handwerk/internal/db"
	"github.com/craftwork/handwerk/internal/notify"
	"github.com/craftwork/handwerk/internal/repository/sqlite"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, db *db.DB, emitter *notify.Emitter, metrics *Metrics) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	if metrics != nil {
		r.Use(metrics.Middleware)
	}

	// Repository
	repo := sqlite.New(db)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, repo, cfg.JWTSecret, cfg.TokenDuration)
	profilesHandler := NewProfilesHandler(repo, repo, repo, repo)
	offersHandler := NewOffersHandler(repo, repo, repo, emitter)
	inquiriesHandler := NewInquiriesHandler(repo, emitter)
	reviewsHandler := NewReviewsHandler(repo, emitter)
	notificationsHandler := NewNotificationsHandler(repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
	}
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Account and profile endpoints
	apiV1.HandleFunc("/users/me", profilesHandler.Me).Methods("GET")
	apiV1.HandleFunc("/profile", profilesHandler.GetProfile).Methods("GET")
	apiV1.HandleFunc("/profile", profilesHandler.UpdateProfile).Methods("PUT")
	apiV1.HandleFunc("/craftsmen/{id:[0-9]+}/verify", profilesHandler.VerifyCraftsman).Methods("POST")
	apiV1.HandleFunc("/dashboard", profilesHandler.Dashboard).Methods("GET")

	// Offer endpoints
	apiV1.HandleFunc("/offers", offersHandler.CreateOffer).Methods("POST")
	apiV1.HandleFunc("/offers", offersHandler.ListOffers).Methods("GET")
	apiV1.HandleFunc("/offers/{id:[0-9]+}", offersHandler.GetOffer).Methods("GET")
	apiV1.HandleFunc("/offers/{id:[0-9]+}", offersHandler.UpdateOffer).Methods("PUT")
	apiV1.HandleFunc("/offers/{id:[0-9]+}", offersHandler.DeleteOffer).Methods("DELETE")
	apiV1.HandleFunc("/offers/{id:[0-9]+}/complete", offersHandler.CompleteOffer).Methods("POST")
	apiV1.HandleFunc("/offers/{id:[0-9]+}/matches", offersHandler.Matches).Methods("GET")
	apiV1.HandleFunc("/offers/{id:[0-9]+}/inquiries", offersHandler.ListOfferInquiries).Methods("GET")

	// Inquiry endpoints
	apiV1.HandleFunc("/inquiries", inquiriesHandler.CreateInquiry).Methods("POST")
	apiV1.HandleFunc("/inquiries", inquiriesHandler.ListInquiries).Methods("GET")
	apiV1.HandleFunc("/inquiries/{id:[0-9]+}/accept", inquiriesHandler.AcceptInquiry).Methods("POST")

	// Review endpoints
	apiV1.HandleFunc("/reviews", reviewsHandler.CreateReview).Methods("POST")
	apiV1.HandleFunc("/craftsmen/{id:[0-9]+}/reviews", reviewsHandler.ListCraftsmanReviews).Methods("GET")
	apiV1.HandleFunc("/craftsmen/{id:[0-9]+}/rating", reviewsHandler.RatingSummary).Methods("GET")

	// Notification endpoints
	apiV1.HandleFunc("/notifications", notificationsHandler.ListNotifications).Methods("GET")
	apiV1.HandleFunc("/notifications/{id:[0-9]+}/read", notificationsHandler.MarkRead).Methods("POST")
	apiV1.HandleFunc("/notifications/read-all", notificationsHandler.MarkAllRead).Methods("POST")

	return r
}
