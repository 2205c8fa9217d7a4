package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"plumise.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	siweHandler    *handlers.SiweHandler
	billingHandler *handlers.BillingHandler
	authMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Wallet auth routes (public)
		auth := v1.Group("/auth/siwe")
		{
			auth.GET("/nonce", d.siweHandler.GetNonce)
			auth.POST("/verify", d.siweHandler.Verify)
		}

		// Billing routes
		billing := v1.Group("/billing")
		{
			// Plan catalog is public so the payment page can render
			// before login.
			billing.GET("/plans", d.billingHandler.GetPlans)

			authed := billing.Group("")
			authed.Use(d.authMiddleware)
			{
				authed.GET("/me", d.billingHandler.GetMe)
				authed.GET("/usage", d.billingHandler.GetUsage)
				authed.GET("/payments", d.billingHandler.GetPayments)
				authed.POST("/payments/verify", d.billingHandler.VerifyPayment)
			}
		}
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "plumise-backend",
			"version": "0.1.0",
		})
	})
}

func registerMetricsRoute(r *gin.Engine, registry *prometheus.Registry) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
