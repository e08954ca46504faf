// controllers/auth_controller.go
package controllers

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/voltvest/voltvest_backend/middleware"
	"github.com/voltvest/voltvest_backend/models"
	"github.com/voltvest/voltvest_backend/services"
	"github.com/voltvest/voltvest_backend/utils"
)

const otpTTL = 10 * time.Minute

// AuthController handles registration, login and password recovery.
type AuthController struct {
	DB     *mongo.Database
	Redis  *redis.Client
	Mailer *services.Mailer
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Database, redisClient *redis.Client, mailer *services.Mailer) *AuthController {
	return &AuthController{DB: db, Redis: redisClient, Mailer: mailer}
}

// Register creates a new user account with an empty wallet at LEVEL_1.
func (ac *AuthController) Register(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	users := ac.DB.Collection("users")

	count, err := users.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check existing users",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Email is already registered",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	now := time.Now()
	user := models.User{
		Email:    email,
		Password: string(hashed),
		FullName: utils.SanitizeInput(req.FullName),
		Phone:    utils.SanitizeInput(req.Phone),
		UserType: "user",
		IsActive: true,
		Wallet: models.Wallet{
			Balance:  0,
			Currency: "USD",
		},
		KYC: models.KYCInfo{
			Level: models.KYCLevel1,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := users.InsertOne(ctx, user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create user",
		})
	}

	user.ID = result.InsertedID.(primitive.ObjectID)
	user.Password = ""

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Account created successfully",
		Data:    user,
	})
}

// Login verifies credentials, sets the HTTP-only auth cookie and persists a
// refresh session.
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	var user models.User
	err = ac.DB.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid email or password",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to look up user",
		})
	}

	if !user.IsActive {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Account is deactivated",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	session := models.Session{
		UserID:       user.ID,
		RefreshToken: refreshToken,
		UserAgent:    c.Request().UserAgent(),
		ExpiresAt:    time.Now().Add(middleware.RefreshTokenTTL),
		CreatedAt:    time.Now(),
	}
	if _, err := ac.DB.Collection("sessions").InsertOne(ctx, session); err != nil {
		log.Printf("Failed to persist session for %s: %v", user.ID.Hex(), err)
	}

	c.SetCookie(middleware.NewAuthCookie(token, time.Now().Add(middleware.AccessTokenTTL)))

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":        token,
			"refreshToken": refreshToken,
			"user":         user,
		},
	})
}

// Logout blacklists the current token, clears the cookie and drops the
// caller's sessions.
func (ac *AuthController) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	if cookie, err := c.Cookie(middleware.AuthCookieName); err == nil {
		middleware.BlacklistToken(cookie.Value, time.Unix(claims.ExpiresAt, 0))
	} else if auth := c.Request().Header.Get("Authorization"); len(auth) > 7 {
		middleware.BlacklistToken(auth[7:], time.Unix(claims.ExpiresAt, 0))
	}

	if userID, err := objectIDFromClaims(claims); err == nil {
		if _, err := ac.DB.Collection("sessions").DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
			log.Printf("Failed to drop sessions for %s: %v", claims.UserID, err)
		}
	}

	expired := middleware.NewAuthCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	c.SetCookie(expired)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// ForgotPassword mails a one-time reset code stored in Redis.
func (ac *AuthController) ForgotPassword(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	if ac.Redis == nil {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Password reset is temporarily unavailable",
		})
	}

	// Always answer 200 so the endpoint cannot be used to probe for accounts.
	count, err := ac.DB.Collection("users").CountDocuments(ctx, bson.M{"email": email})
	if err == nil && count > 0 {
		otp, genErr := generateOTP(6)
		if genErr == nil {
			if err := ac.Redis.Set(ctx, otpKey(email), otp, otpTTL).Err(); err != nil {
				log.Printf("Failed to store OTP for %s: %v", email, err)
			} else if err := ac.Mailer.SendOTP(email, otp); err != nil {
				log.Printf("Failed to mail OTP to %s: %v", email, err)
			}
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "If the email is registered, a reset code has been sent",
	})
}

// ResetPassword verifies the OTP and replaces the password.
func (ac *AuthController) ResetPassword(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	if ac.Redis == nil {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Password reset is temporarily unavailable",
		})
	}

	stored, err := ac.Redis.Get(ctx, otpKey(email)).Result()
	if err != nil || stored != req.OTP {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid or expired reset code",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	res, err := ac.DB.Collection("users").UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"password": string(hashed), "updatedAt": time.Now()}},
	)
	if err != nil || res.MatchedCount == 0 {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to reset password",
		})
	}

	ac.Redis.Del(ctx, otpKey(email))

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password reset successfully",
	})
}

func otpKey(email string) string {
	return "otp:reset:" + email
}

// generateOTP returns an n-digit numeric code.
func generateOTP(n int) (string, error) {
	code := ""
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code += fmt.Sprintf("%d", d.Int64())
	}
	return code, nil
}
