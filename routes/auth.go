package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"course-material-service/internal/auth"
	"course-material-service/internal/config"
	"course-material-service/models"
	"course-material-service/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, mongoClient *mongo.Client, rdb *redis.Client) {
	authGroup := router.Group("/auth")

	db := mongoClient.Database(cfg.DBName)
	usersCollection := db.Collection("users")

	authGroup.POST("/register", func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var existing models.User
		if err := usersCollection.FindOne(context.Background(), bson.M{"email": email}).Decode(&existing); err == nil {
			utils.RespondWithError(c, http.StatusConflict, "email_exists", "Email already registered", nil)
			return
		}

		hashedPassword, err := utils.HashPassword(req.Password, 0)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to process password", nil)
			return
		}

		now := time.Now().UTC()
		user := models.User{
			Email:        email,
			Name:         req.Name,
			PasswordHash: hashedPassword,
			Role:         req.Role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if _, err := usersCollection.InsertOne(context.Background(), user); err != nil {
			utils.RespondWithInternalError(c, "Failed to create user", nil)
			return
		}

		tokenPair, err := auth.IssueTokenPair(email, req.Role, rdb)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to issue tokens", nil)
			return
		}

		setAuthCookies(c, cfg, tokenPair)
		c.JSON(http.StatusCreated, models.TokenPairResponse{
			AccessToken:  tokenPair.AccessToken,
			RefreshToken: tokenPair.RefreshToken,
			AccessExp:    tokenPair.AccessExp,
			RefreshExp:   tokenPair.RefreshExp,
			User:         models.UserInfo{Email: email, Name: req.Name, Role: req.Role},
		})
	})

	authGroup.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var user models.User
		if err := usersCollection.FindOne(context.Background(), bson.M{"email": email}).Decode(&user); err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
			return
		}

		if !utils.CheckPassword(req.Password, user.PasswordHash) {
			utils.RespondWithError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
			return
		}

		tokenPair, err := auth.IssueTokenPair(user.Email, user.Role, rdb)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to issue tokens", nil)
			return
		}

		setAuthCookies(c, cfg, tokenPair)
		c.JSON(http.StatusOK, models.TokenPairResponse{
			AccessToken:  tokenPair.AccessToken,
			RefreshToken: tokenPair.RefreshToken,
			AccessExp:    tokenPair.AccessExp,
			RefreshExp:   tokenPair.RefreshExp,
			User:         models.UserInfo{Email: user.Email, Name: user.Name, Role: user.Role},
		})
	})

	authGroup.POST("/refresh", func(c *gin.Context) {
		refreshToken, err := c.Cookie("refresh_token")
		if err != nil || refreshToken == "" {
			var body struct {
				RefreshToken string `json:"refresh_token" binding:"required"`
			}
			if err := c.ShouldBindJSON(&body); err != nil {
				utils.RespondWithUnauthorized(c, "Refresh token is required")
				return
			}
			refreshToken = body.RefreshToken
		}

		claims, err := auth.ValidateRefreshToken(refreshToken, rdb)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid or expired refresh token")
			return
		}

		// Rotate: revoke the old refresh token before issuing a new pair
		_ = auth.RevokeToken(claims.ID, true, rdb)

		tokenPair, err := auth.IssueTokenPair(claims.Email, claims.Role, rdb)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to issue tokens", nil)
			return
		}

		setAuthCookies(c, cfg, tokenPair)
		c.JSON(http.StatusOK, models.TokenPairResponse{
			AccessToken:  tokenPair.AccessToken,
			RefreshToken: tokenPair.RefreshToken,
			AccessExp:    tokenPair.AccessExp,
			RefreshExp:   tokenPair.RefreshExp,
			User:         models.UserInfo{Email: claims.Email, Role: claims.Role},
		})
	})

	authGroup.POST("/logout", func(c *gin.Context) {
		if accessToken := utils.ExtractTokenFromHeader(c.GetHeader("Authorization")); accessToken != "" {
			if claims, err := auth.ValidateAccessToken(accessToken, rdb); err == nil {
				_ = auth.RevokeAllUserTokens(claims.Email, rdb)
			}
		}

		c.SetCookie("access_token", "", -1, "/", "", false, true)
		c.SetCookie("refresh_token", "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	})
}

func setAuthCookies(c *gin.Context, cfg *config.Config, pair *auth.TokenPair) {
	secure := cfg.GinMode == "release"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", pair.AccessToken,
		int(time.Until(pair.AccessExp).Seconds()), "/", "", secure, true)
	c.SetCookie("refresh_token", pair.RefreshToken,
		int(time.Until(pair.RefreshExp).Seconds()), "/", "", secure, true)
}
