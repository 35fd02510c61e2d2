package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/middleware"
	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/services"
	"github.com/edulink-ug/edulink/utils"
)

const leaderboardTTL = 60 * time.Second

// AuthController handles accounts, tokens and public profiles.
type AuthController struct {
	users    *services.UserService
	tokenTTL time.Duration
}

// NewAuthController creates an AuthController issuing tokens valid for tokenTTL.
func NewAuthController(users *services.UserService, tokenTTL time.Duration) *AuthController {
	if tokenTTL <= 0 {
		tokenTTL = 72 * time.Hour
	}
	return &AuthController{users: users, tokenTTL: tokenTTL}
}

// publicProfile is what other users may see about an account.
type publicProfile struct {
	*models.UserSummary
	Bio       string    `json:"bio"`
	School    string    `json:"school"`
	Subjects  []string  `json:"subjects"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPublicProfile(u *models.User) publicProfile {
	return publicProfile{
		UserSummary: u.Summary(),
		Bio:         u.Bio,
		School:      u.School,
		Subjects:    u.Subjects,
		CreatedAt:   u.CreatedAt,
	}
}

func (a *AuthController) issue(ctx *gin.Context, status int, user *models.User) {
	token, err := utils.GenerateToken(user.ID, user.Name, string(user.Role), a.tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}
	utils.Respond(ctx, status, 0, "success", gin.H{
		"token": token,
		"user":  user,
	})
}

// Register creates an account and signs the new user in.
func (a *AuthController) Register(ctx *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := a.users.Register(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(utils.CacheLeaderboard)
	a.issue(ctx, http.StatusCreated, user)
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	user, err := a.users.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}
	a.issue(ctx, http.StatusOK, user)
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	if token == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	expiresAt := time.Now().Add(a.tokenTTL)
	if v, ok := ctx.Get(middleware.ContextClaimsKey); ok {
		if claims, ok := v.(*utils.Claims); ok && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated account.
func (a *AuthController) Me(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	user, err := a.users.Get(ctx.Request.Context(), p.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// UpdateProfile edits the caller's name, bio, school and subjects.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	p, ok := mustPrincipal(ctx)
	if !ok {
		return
	}
	var req services.ProfileInput
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := a.users.UpdateProfile(ctx.Request.Context(), p, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.InvalidateByPrefix(utils.CacheLeaderboard)
	utils.Success(ctx, gin.H{"user": user})
}

// GetUserPublic returns public user info by ID.
func (a *AuthController) GetUserPublic(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing user id")
		return
	}
	user, err := a.users.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": toPublicProfile(user)})
}

// Leaderboard lists the accounts with the most points.
func (a *AuthController) Leaderboard(ctx *gin.Context) {
	limit := 20
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	cacheKey := utils.CacheLeaderboard + ":limit=" + strconv.Itoa(limit)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	items, err := a.users.Leaderboard(ctx.Request.Context(), limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	payload := gin.H{"items": items}
	utils.CacheSetJSON(cacheKey, cached(payload), leaderboardTTL)
	utils.Success(ctx, payload)
}
