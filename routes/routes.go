package routes

import (
	"clawcypher/controllers"
	"clawcypher/middlewares"

	"github.com/gin-gonic/gin"
)

// Controllers bundles the handler sets the router needs.
type Controllers struct {
	Battles *controllers.BattleController
	Audio   *controllers.AudioController
	Bots    *controllers.BotController
}

// Setup registers the API surface. The rate limiter only gates the
// endpoints that spend money on generation calls.
func Setup(router *gin.Engine, ctrl Controllers, limiter *middlewares.RateLimiter) {
	api := router.Group("/api")
	{
		api.POST("/battle", limiter.Middleware("battle"), ctrl.Battles.CreateBattle)
		api.POST("/battle/next-round", limiter.Middleware("battle"), ctrl.Battles.NextRound)
		api.GET("/battle/:id", ctrl.Battles.GetBattle)
		api.GET("/battles", ctrl.Battles.ListBattles)

		api.POST("/audio/generate", limiter.Middleware("audio"), ctrl.Audio.GenerateAudio)
		api.GET("/audio/status", ctrl.Audio.AudioStatus)

		api.GET("/bots", ctrl.Bots.ListBots)
		api.POST("/bots", ctrl.Bots.CreateBot)
		api.GET("/bots/:id", ctrl.Bots.GetBot)
		api.GET("/leaderboard", ctrl.Bots.GetLeaderboard)
	}
}
