package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DipuTony/trulyhelp-portal/config"
	"github.com/DipuTony/trulyhelp-portal/internal/session"
	"github.com/DipuTony/trulyhelp-portal/routes"
	"github.com/DipuTony/trulyhelp-portal/utils"
)

func main() {
	cfg := config.Load()

	// Init Redis-backed credential storage. The portal still works without
	// it, minus session survival across restarts.
	var storage session.CredentialStorage
	tokenStore, err := utils.NewTokenStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("⚠️ Redis unavailable, sessions will not survive restarts: %v", err)
	} else {
		log.Println("✅ Redis credential storage connected")
		storage = tokenStore
	}

	sessions := session.NewStore(cfg.APIBaseURL, storage)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := sessions.Restore(ctx); err != nil {
		log.Printf("ℹ️ No session restored: %v", err)
	} else if sessions.Current().Active() {
		log.Printf("✅ Session restored for %s", sessions.Current().Identity.Email)
	}
	cancel()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	routes.Setup(router, cfg, sessions)

	fmt.Printf("🚀 %s portal starting on port %s\n", cfg.OrgName, cfg.Port)
	fmt.Printf("🌐 Backend API: %s\n", cfg.APIBaseURL)

	if err := router.Run(":" + cfg.Port); err != nil {
		panic(fmt.Sprintf("Failed to start server: %v", err))
	}
}
