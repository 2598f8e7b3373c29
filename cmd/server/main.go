package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"osteria/internal/api"
	"osteria/internal/auth"
	"osteria/internal/repository"
	"osteria/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Println("STRIPE_SECRET_KEY not set, checkout and refunds disabled")
	}

	reservationRepo := repository.NewReservationRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)
	jobRepo := repository.NewJobRepository(db)
	stripeRepo := repository.NewStripeRepository(db)

	stripeService := service.NewStripeService()
	senderService := service.NewSenderService()
	reservationService := service.NewReservationService(reservationRepo, overrideRepo, settingsRepo, stripeRepo, stripeService, senderService)
	adminService := service.NewAdminService(adminRepo, overrideRepo, settingsRepo)
	adminAuthService := service.NewAdminAuthService(adminAuthRepo)
	jobService := service.NewJobService(jobRepo)

	reservationHandler := api.NewReservationHandler(reservationService)
	adminHandler := api.NewAdminHandler(adminService)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthService)
	webhookHandler := api.NewStripeWebhookHandler(os.Getenv("STRIPE_WEBHOOK_SECRET"), reservationService, senderService)

	startJobs(jobService)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/reservations/fully-booked-dates", reservationHandler.FullyBookedDates).Methods("GET")
	r.HandleFunc("/api/reservations/occupied-time-slots", reservationHandler.OccupiedTimeSlots).Methods("GET")
	r.HandleFunc("/api/reservations", reservationHandler.CreateReservation).Methods("POST")
	r.HandleFunc("/api/reservations/{code}", reservationHandler.GetReservation).Methods("GET")
	r.HandleFunc("/api/reservations/{code}", reservationHandler.CancelReservation).Methods("DELETE")
	r.HandleFunc("/api/reservations/{code}/checkout", reservationHandler.RefreshCheckout).Methods("POST")
	r.HandleFunc("/api/time-slots", reservationHandler.ListTimeSlots).Methods("GET")
	r.HandleFunc("/api/settings", reservationHandler.GetSettings).Methods("GET")
	r.HandleFunc("/api/stripe/webhook", webhookHandler.HandleWebhook).Methods("POST")
	r.HandleFunc("/api/stripe/session/{session_id}", webhookHandler.GetReservationBySessionIDHandler).Methods("GET")
	r.HandleFunc("/api/admin/login", adminAuthHandler.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/reservations", adminHandler.ListReservations).Methods("GET")
	admin.HandleFunc("/reservations/{id}", adminHandler.DeleteReservation).Methods("DELETE")
	admin.HandleFunc("/disabled-dates", adminHandler.GetDisabledDates).Methods("GET")
	admin.HandleFunc("/disabled-dates", adminHandler.UpdateDisabledDates).Methods("PUT")
	admin.HandleFunc("/disabled-time-slots", adminHandler.GetDisabledTimeSlots).Methods("GET")
	admin.HandleFunc("/disabled-time-slots", adminHandler.UpdateDisabledTimeSlots).Methods("PUT")
	admin.HandleFunc("/settings", adminHandler.UpdateSettings).Methods("PUT")
	admin.HandleFunc("/users", adminAuthHandler.CreateUserAdmin).Methods("POST")

	corsOrigins := handlers.AllowedOrigins(allowedOrigins())
	corsMethods := handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	corsHeaders := handlers.AllowedHeaders([]string{"Content-Type", "Authorization"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.CORS(corsOrigins, corsMethods, corsHeaders)(r)))
}

func allowedOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return []string{"*"}
	}
	origins := strings.Split(raw, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func startJobs(jobService *service.JobService) {
	c := cron.New()
	c.AddFunc("@hourly", func() {
		if err := jobService.MarkFinishedReservations(); err != nil {
			log.Printf("cron job: %v", err)
		}
	})
	c.AddFunc("@every 15m", func() {
		cutoff := time.Now().Add(-30 * time.Minute)
		deleted, err := jobService.DeleteOldPendingReservations(cutoff)
		if err != nil {
			log.Printf("cron job: %v", err)
			return
		}
		if deleted > 0 {
			log.Printf("cron job: deleted %d stale pending reservations", deleted)
		}
	})
	c.Start()
}
