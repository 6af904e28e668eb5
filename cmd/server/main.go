package main

import (
	"context"
	"flag"
	"log"
	"strconv"

	"clawcypher/config"
	"clawcypher/controllers"
	"clawcypher/db"
	"clawcypher/middlewares"
	"clawcypher/routes"
	"clawcypher/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "./config/config.yml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.Connect(context.Background(), cfg.Database.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")

	store := db.NewMongoStore(database)
	groq := services.NewGroqClient(cfg.Groq.ApiKey, cfg.Groq.BaseURL, cfg.Groq.Model)
	replicate := services.NewReplicateClient(cfg.Replicate.ApiToken, cfg.Replicate.BaseURL, cfg.Replicate.Model)

	verses := services.NewVerseService(groq)
	battles := services.NewBattleService(store, verses)
	audio := services.NewAudioService(store, replicate, cfg.Replicate.MaxLyrics)
	bots := services.NewBotService(store)

	limiter := middlewares.NewRateLimiter(connectRedis(cfg), middlewares.DefaultRateLimitConfig())

	router := setupRouter(cfg, routes.Controllers{
		Battles: controllers.NewBattleController(battles),
		Audio:   controllers.NewAudioController(audio),
		Bots:    controllers.NewBotController(bots),
	}, limiter)

	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// connectRedis returns nil when Redis is not configured; the rate limiter
// treats that as disabled.
func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		log.Println("Redis not configured, rate limiting disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("Failed to connect to Redis, rate limiting disabled: %v", err)
		return nil
	}
	return rdb
}

func setupRouter(cfg *config.Config, ctrl routes.Controllers, limiter *middlewares.RateLimiter) *gin.Engine {
	router := gin.Default()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatalf("Failed to configure trusted proxies: %v", err)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Cors.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	routes.Setup(router, ctrl, limiter)

	return router
}
