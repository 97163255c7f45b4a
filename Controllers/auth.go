package Controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"FleetGuard/Models"
	"FleetGuard/middleware"
)

var validate = validator.New()

// AuthController handles registration, login and session endpoints.
type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

// Register creates a user account. Role defaults to WORKER; creating a
// MANAGER account is allowed here because account provisioning happens on a
// trusted device at fleet setup time.
func (a *AuthController) Register(ctx *fiber.Ctx) error {
	var req Models.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	password, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	permission := Models.PermissionWorker
	if req.Role == "MANAGER" {
		permission = Models.PermissionManager
	}
	user := Models.User{
		Name:       req.Name,
		Username:   req.Username,
		Password:   password,
		Permission: permission,
	}
	if result := a.DB.Create(&user); result.Error != nil {
		if strings.Contains(result.Error.Error(), "UNIQUE") ||
			strings.Contains(result.Error.Error(), "Duplicate entry") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A user with this username already exists",
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(user)
}

// Login checks credentials and sets the JWT session cookie.
func (a *AuthController) Login(ctx *fiber.Ctx) error {
	var req Models.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user Models.User
	if result := a.DB.Where("username = ?", req.Username).First(&user); result.Error != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(req.Password)); err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	claims := &jwt.RegisteredClaims{
		Issuer:    strconv.Itoa(int(user.Id)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.Secret())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
	})
	return ctx.JSON(user)
}

// Logout expires the session cookie.
func (a *AuthController) Logout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return ctx.JSON(fiber.Map{"message": "Logged out"})
}

// User returns the authenticated user stored by the Verify middleware.
func (a *AuthController) User(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not logged in"})
	}
	return ctx.JSON(user)
}
