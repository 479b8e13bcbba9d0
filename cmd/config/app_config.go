package config

import (
	"LeftoverLink/internal/api/handlers"
	"LeftoverLink/internal/api/routes"
	"LeftoverLink/internal/middleware"
	"LeftoverLink/internal/utils"
	"LeftoverLink/internal/utils/mailing"
	"LeftoverLink/internal/utils/storage"
	"LeftoverLink/pkg/cache"
	"LeftoverLink/pkg/donation"
	"LeftoverLink/pkg/jwt"
	"LeftoverLink/pkg/ngo"
	"LeftoverLink/pkg/notification"
	"LeftoverLink/pkg/user"
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

const defaultRateLimit = 10

// Deps are the outside collaborators of the app. Nil optional fields disable
// the matching feature.
type Deps struct {
	Cache       *cache.Cache
	Hub         *notification.Hub
	JWTService  jwt.JWTService
	Recommender ngo.Recommender
	Mailer      notification.Mailer
	S3          storage.AwsS3
	LogOutput   io.Writer
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit int
}

// App is the wired HTTP server plus the services main drives directly.
type App struct {
	*fiber.App
	DonationService donation.DonationService
	Hub             *notification.Hub
}

// LoadDeps builds Deps from configuration.
func LoadDeps() (Deps, error) {
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		return Deps{}, err
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return Deps{}, err
	}

	deps := Deps{
		Cache:      ConnectCache(),
		Hub:        notification.NewHub(),
		JWTService: jwt.NewJWTService(),
		Recommender: ngo.NewRecommender(
			utils.GetConfig("AI_MODEL_URL"),
			utils.GetConfig("AI_MATCHING_URL"),
		),
		S3:        storage.NewAwsS3(),
		LogOutput: file,
		RateLimit: defaultRateLimit,
	}

	if mailConfig := mailing.LoadMailConfig(); mailConfig.Enabled() {
		mailer, err := mailing.NewMailer(mailConfig)
		if err != nil {
			log.Warnw("mailer disabled", "error", err)
		} else {
			deps.Mailer = mailer
		}
	}
	return deps, nil
}

func NewApp(db *gorm.DB, deps Deps) (*App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: false,
	})
	middlewares := middleware.NewMiddleware(deps.Cache)
	validator := utils.Validate

	app.Use(recover.New())
	if deps.LogOutput != nil {
		app.Use(logger.New(logger.Config{
			TimeFormat: "2006-01-02 15:04:05",
			TimeZone:   "UTC",
			Output:     deps.LogOutput,
		}))
	}
	if deps.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.RateLimit,
			Expiration: 1 * time.Second,
		}))
	}

	hub := deps.Hub
	if hub == nil {
		hub = notification.NewHub()
	}
	jwtService := deps.JWTService
	if jwtService == nil {
		jwtService = jwt.NewJWTService()
	}
	recommender := deps.Recommender
	if recommender == nil {
		recommender = ngo.NewRecommender("", "")
	}

	// Repository
	userRepository := user.NewUserRepository(db)
	donationRepository := donation.NewDonationRepository(db)
	ngoRepository := ngo.NewNGORepository(db)

	// Service
	notifier := notification.NewNotifier(hub, deps.Mailer)
	userService := user.NewUserService(userRepository, jwtService)
	donationService := donation.NewDonationService(donationRepository, deps.Cache, notifier, deps.S3)
	ngoService := ngo.NewNGOService(ngoRepository, recommender)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	donationHandler := handlers.NewDonationHandler(donationService)
	ngoHandler := handlers.NewNGOHandler(ngoService)
	notificationHandler := handlers.NewNotificationHandler(hub, jwtService)

	// routes
	routesConfig := routes.Config{
		App:                 app,
		UserHandler:         userHandler,
		DonationHandler:     donationHandler,
		NGOHandler:          ngoHandler,
		NotificationHandler: notificationHandler,
		Middleware:          middlewares,
		JWTService:          jwtService,
	}
	routesConfig.Setup()

	return &App{
		App:             app,
		DonationService: donationService,
		Hub:             hub,
	}, nil
}
