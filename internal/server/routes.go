package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taurusgroup/zkauth/pkg/auth"
)

// AddRoutes adds the authentication routes to the router
func AddRoutes(rg *gin.RouterGroup, v *auth.Verifier) {
	rg.GET("/params", func(c *gin.Context) {
		render(c, http.StatusOK, v.Parameters())
	})
	rg.POST("/register", func(c *gin.Context) {
		var req auth.RegisterRequest
		if err := bind(c, &req); err != nil {
			fail(c, err)
			return
		}
		resp, err := v.Register(c.Request.Context(), &req)
		if err != nil {
			fail(c, err)
			return
		}
		render(c, http.StatusOK, resp)
	})
	rg.POST("/challenge", func(c *gin.Context) {
		var req auth.ChallengeRequest
		if err := bind(c, &req); err != nil {
			fail(c, err)
			return
		}
		resp, err := v.BeginChallenge(c.Request.Context(), &req)
		if err != nil {
			fail(c, err)
			return
		}
		render(c, http.StatusOK, resp)
	})
	rg.POST("/verify", func(c *gin.Context) {
		var req auth.VerifyRequest
		if err := bind(c, &req); err != nil {
			fail(c, err)
			return
		}
		resp, err := v.VerifyResponse(c.Request.Context(), &req)
		if err != nil {
			fail(c, err)
			return
		}
		render(c, http.StatusOK, resp)
	})
}
