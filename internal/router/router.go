package router

import (
	"database/sql"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gym_checkin_backend/internal/events"
	"gym_checkin_backend/internal/handlers"
	"gym_checkin_backend/internal/metrics"
	"gym_checkin_backend/internal/repositories"
	"gym_checkin_backend/internal/repositories/memstore"
	"gym_checkin_backend/internal/services"
	"gym_checkin_backend/pkg/utils"
)

// Stores bundles the repositories and the transaction boundary the services
// run on.
type Stores struct {
	Members  repositories.MemberRepository
	Cards    repositories.CardRepository
	CheckIns repositories.CheckInRepository
	Trainers repositories.TrainerRepository
	Tx       repositories.Transactor
}

// PostgresStores builds the SQL-backed stores.
func PostgresStores(db *sql.DB) Stores {
	return Stores{
		Members:  repositories.NewMemberRepository(db),
		Cards:    repositories.NewCardRepository(db),
		CheckIns: repositories.NewCheckInRepository(db),
		Trainers: repositories.NewTrainerRepository(db),
		Tx:       repositories.NewTransactor(db),
	}
}

// MemoryStores builds stores over the in-memory store.
func MemoryStores(s *memstore.Store) Stores {
	return Stores{
		Members:  s.Members(),
		Cards:    s.Cards(),
		CheckIns: s.CheckIns(),
		Trainers: s.Trainers(),
		Tx:       s.Transactor(),
	}
}

// Deps is everything Setup needs.
type Deps struct {
	Stores    Stores
	Publisher events.EventPublisher
	Options   services.Options
	// JWTSecret enables the admin routes when set.
	JWTSecret          []byte
	CORSAllowedOrigins []string
}

// NewEngine builds the gin engine with the shared middleware, operational
// endpoints and all application routes.
func NewEngine(deps Deps) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())
	engine.Use(metrics.Middleware())

	if len(deps.CORSAllowedOrigins) > 0 {
		config := cors.DefaultConfig()
		config.AllowOrigins = deps.CORSAllowedOrigins
		config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
		config.AllowCredentials = true
		engine.Use(cors.New(config))
	}

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	Setup(engine, deps)
	return engine, nil
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, deps Deps) {
	st := deps.Stores
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	// Services
	resolver := services.NewMemberResolver(st.Members)
	registration := services.NewRegistrationService(st.Members, st.CheckIns, st.Trainers, st.Tx, publisher, deps.Options)
	checkIns := services.NewCheckInService(st.Members, st.Cards, st.CheckIns, st.Trainers, st.Tx, publisher, deps.Options)
	selector := services.NewCardSelector(st.Members, st.Cards, st.CheckIns, deps.Options)
	desk := services.NewFrontDeskService(resolver, registration, checkIns)
	memberService := services.NewMemberService(st.Members)
	cardService := services.NewCardService(st.Members, st.Cards, st.Tx)
	trainerService := services.NewTrainerService(st.Trainers, st.Tx)

	// Handlers
	checkInHandler := handlers.NewCheckInHandler(desk, resolver, checkIns, selector)
	memberHandler := handlers.NewMemberHandler(memberService, registration)
	cardHandler := handlers.NewCardHandler(cardService)
	trainerHandler := handlers.NewTrainerHandler(trainerService)

	apiV1 := engine.Group("/api/v1")

	SetupCheckInRoutes(apiV1, checkInHandler)
	SetupMemberRoutes(apiV1, memberHandler, checkInHandler)
	SetupTrainerRoutes(apiV1, trainerHandler)

	if len(deps.JWTSecret) == 0 {
		utils.LogWarn("JWT_SECRET is not set, admin routes are disabled")
		return
	}
	SetupAdminRoutes(apiV1, deps.JWTSecret, cardHandler, trainerHandler)
}
