package routes

import (
	"github.com/gin-gonic/gin"

	controllers "github.com/phillip/clubify-go/controllers"
	middleware "github.com/phillip/clubify-go/middleware"
	models "github.com/phillip/clubify-go/models"
)

func SetupRoutes(r *gin.Engine, d *controllers.Deps, g *middleware.Guard, m *middleware.Metrics) {
	controllers.RegisterValidators()

	member := g.Require(models.RoleMember)
	manager := g.Require(models.RoleClubManager)
	admin := g.Require(models.RoleAdmin)

	// public
	r.GET("/", controllers.Home())
	r.GET("/healthz", controllers.Healthz(d))
	if m != nil {
		r.GET("/metrics", m.Handler())
	}

	// Stripe calls this with a signed raw body, never with a user identity.
	r.POST("/webhook", controllers.StripeWebhook(d))

	// gin needs one wildcard name per segment: ":user" is an email on GET and
	// an id on the PATCH routes.
	users := r.Group("/users")
	{
		users.POST("", controllers.CreateUser(d))
		users.GET("", admin, controllers.ListUsers(d))
		users.GET("/role/:role", admin, controllers.ListUsersByRole(d))
		users.GET("/:user", controllers.GetUserByEmail(d))
		users.PATCH("/:user/role", admin, controllers.UpdateUserRole(d))
		users.PATCH("/:user/active", admin, controllers.SetUserActive(d))
	}

	clubs := r.Group("/clubs")
	{
		clubs.POST("", manager, controllers.CreateClub(d))
		clubs.GET("", g.Optional(), controllers.ListClubs(d))
		clubs.GET("/status/:status", admin, controllers.ListClubsByStatus(d))
		clubs.GET("/manager/:email", manager, controllers.ListClubsByManager(d))
		clubs.GET("/:clubId", g.Optional(), controllers.GetClub(d))
		clubs.PATCH("/:clubId", manager, controllers.UpdateClub(d))
		clubs.PATCH("/:clubId/status", admin, controllers.UpdateClubStatus(d))
		clubs.POST("/:clubId/banner", manager, controllers.UploadClubBanner(d))
		clubs.DELETE("/:clubId", admin, controllers.DeleteClub(d))
	}

	memberships := r.Group("/memberships")
	{
		memberships.POST("", member, controllers.CreateMembership(d))
		memberships.GET("/user/:email", member, controllers.ListMembershipsByUser(d))
		memberships.GET("/club/:clubId", manager, controllers.ListMembershipsByClub(d))
		memberships.PATCH("/:membershipId/status", manager, controllers.UpdateMembershipStatus(d))
		memberships.DELETE("/:membershipId", manager, controllers.DeleteMembership(d))
	}

	events := r.Group("/events")
	{
		events.POST("", manager, controllers.CreateEvent(d))
		events.GET("", controllers.ListEvents(d))
		events.GET("/club/:clubId", controllers.ListEventsByClub(d))
		events.GET("/:eventId", controllers.GetEvent(d))
		events.PATCH("/:eventId", manager, controllers.UpdateEvent(d))
		events.POST("/:eventId/image", manager, controllers.UploadEventImage(d))
		events.DELETE("/:eventId", manager, controllers.DeleteEvent(d))
	}

	regs := r.Group("/event-registrations")
	{
		regs.POST("", member, controllers.RegisterForEvent(d))
		regs.GET("/user/:email", member, controllers.ListRegistrationsByUser(d))
		regs.GET("/event/:eventId", manager, controllers.ListRegistrationsByEvent(d))
		regs.GET("/club/:clubId", manager, controllers.ListRegistrationsByClub(d))
		regs.PATCH("/:registrationId/status", member, controllers.UpdateRegistrationStatus(d))
		regs.DELETE("/:registrationId", manager, controllers.DeleteRegistration(d))
	}

	pays := r.Group("/payments")
	{
		pays.POST("", manager, controllers.CreatePayment(d))
		pays.GET("", admin, controllers.ListPayments(d))
		pays.GET("/user/:email", member, controllers.ListPaymentsByUser(d))
		pays.GET("/club/:clubId", manager, controllers.ListPaymentsByClub(d))
		pays.PATCH("/:paymentId/status", admin, controllers.UpdatePaymentStatus(d))
	}

	stripe := r.Group("/stripe")
	stripe.Use(manager)
	{
		stripe.POST("/create-event-payment-intent", controllers.CreateEventPaymentIntent(d))
		stripe.POST("/create-membership-payment-intent", controllers.CreateMembershipPaymentIntent(d))
		stripe.GET("/payment-intent/:paymentIntentId", controllers.GetPaymentIntent(d))
	}
}
