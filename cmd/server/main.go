package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"memebot/internal/config"
	"memebot/internal/db"
	"memebot/internal/handlers"
	"memebot/internal/queue"
	"memebot/internal/router"
	"memebot/internal/scheduler"
	"memebot/internal/services"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize Database
	db.Init(cfg.DatabaseURL)

	// Wire the pipeline
	queueSvc := queue.NewService(db.DB)
	collector := services.NewCollector(db.DB, config.MemeSubreddits)
	llm := services.NewLLMClient(cfg.LLMBaseURL, cfg.LLMToken, cfg.LLMModel)
	drafter := services.NewDrafter(llm)
	poster := services.NewPoster(cfg.SocialAPIBaseURL, cfg.SocialAPIToken)
	trendCache := services.NewTrendCache(2 * cfg.ScrapeInterval())

	var bot *scheduler.Bot
	if cfg.BotEnabled {
		bot = scheduler.New(collector, drafter, queueSvc, trendCache, scheduler.Options{
			GenerateInterval: cfg.GenerateInterval(),
			ScrapeInterval:   cfg.ScrapeInterval(),
			TrendRetention:   cfg.TrendRetention(),
		})
		bot.Start()
	} else {
		log.Println("Bot is disabled, only the API server will run")
	}

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("memebot_session", store))

	// Load templates and static assets for the review page
	r.HTMLRender = loadTemplates("./web/templates")
	r.Static("/static", "./web/static")

	router.RegisterRoutes(r, router.Deps{
		Queue:  handlers.NewQueueHandler(queueSvc, poster),
		Trends: handlers.NewTrendHandler(db.DB),
		Status: handlers.NewStatusHandler(bot, cfg.BotEnabled),
		Auth:   handlers.NewAuthHandler(cfg.ReviewerPasswordHash),
		Review: handlers.NewReviewHandler(queueSvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("memebot server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown: stop the bot first so no tick is writing while the
	// server drains.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	if bot != nil {
		bot.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Goodbye")
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+1)
		files = append(files, layouts...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"timeAgo": func(t interface{}) string {
			var timeVal time.Time
			switch v := t.(type) {
			case time.Time:
				timeVal = v
			case *time.Time:
				if v == nil {
					return ""
				}
				timeVal = *v
			default:
				return ""
			}

			seconds := int(time.Since(timeVal).Seconds())
			switch {
			case seconds < 60:
				return fmt.Sprintf("%ds ago", seconds)
			case seconds < 3600:
				return fmt.Sprintf("%dm ago", seconds/60)
			case seconds < 86400:
				return fmt.Sprintf("%dh ago", seconds/3600)
			}
			return fmt.Sprintf("%dd ago", seconds/86400)
		},
		"score": func(f float64) string {
			return fmt.Sprintf("%.1f", f)
		},
		"join": strings.Join,
	}

	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("review/queue.html", funcMap, assemble(templatesDir+"/views/review/queue.html")...)

	return r
}
