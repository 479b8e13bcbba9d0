package routes

import (
	"LeftoverLink/internal/api/handlers"
	"LeftoverLink/internal/middleware"
	"LeftoverLink/pkg/cache"
	"LeftoverLink/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App                 *fiber.App
	UserHandler         handlers.UserHandler
	DonationHandler     handlers.DonationHandler
	NGOHandler          handlers.NGOHandler
	NotificationHandler handlers.NotificationHandler
	Middleware          middleware.Middleware
	JWTService          jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Donation()
	c.Notification()
	c.GuestRoute()
}

func (c *Config) User() {
	auth := c.Middleware.AuthMiddleware(c.JWTService)
	user := c.App.Group("/api/users")
	// user routes
	{
		user.Post("/signup", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)

		user.Post("/donation", c.DonationHandler.CreateDonation)
		user.Post("/accept", auth, c.DonationHandler.AcceptDonation)

		user.Get("/my-donations", auth, c.Middleware.CacheUserData(cache.PrefixMyDonations), c.DonationHandler.GetMyDonations)
		user.Get("/my-received", auth, c.Middleware.CacheUserData(cache.PrefixMyReceived), c.DonationHandler.GetMyReceived)
		user.Get("/donationhistory", auth, c.Middleware.CacheUserData(cache.PrefixDonationHistory), c.DonationHandler.GetDonationHistory)
		user.Get("/receivedhistory", auth, c.Middleware.CacheUserData(cache.PrefixReceivedHistory), c.DonationHandler.GetReceivedHistory)
		user.Get("/donation-summary", auth, c.Middleware.CacheUserData(cache.PrefixDonationSummary), c.DonationHandler.GetDonationSummary)
		user.Get("/received-summary", auth, c.Middleware.CacheUserData(cache.PrefixReceivedSummary), c.DonationHandler.GetReceivedSummary)

		user.Get("/ngos", c.Middleware.CacheKey(cache.KeyAllNGOs), c.NGOHandler.GetNGOs)
		user.Post("/suggest-ngos", auth, c.NGOHandler.SuggestNGOs)
	}
}

func (c *Config) Donation() {
	dn := c.App.Group("/api/dn")
	dn.Post("/donations", c.DonationHandler.CreateDonation)
	dn.Post("/suggestions", c.NGOHandler.MatchSuggestions)
}

func (c *Config) Notification() {
	c.App.Get("/ws", c.NotificationHandler.Upgrade, c.NotificationHandler.Serve())
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
