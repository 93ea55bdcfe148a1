package controllers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/festaflow/festaflow/app/models"
	"github.com/festaflow/festaflow/app/repository"
	"github.com/festaflow/festaflow/internal/pkg/env"
	"github.com/festaflow/festaflow/internal/pkg/hcaptcha"
	"github.com/festaflow/festaflow/internal/pkg/mail"
	"github.com/festaflow/festaflow/internal/pkg/session"
	"github.com/festaflow/festaflow/internal/pkg/statistics"
)

const (
	AUTH_KEY      string = "authenticated"
	USER_ID       string = "user_id"
	USER_NAME     string = "username"
	USER_IS_ADMIN string = "isAdmin"
)

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
	Captcha     string `json:"h-captcha-response"`
}

// HandleAuthRegister creates a new tenant account. The account starts
// inactive until the activation link from the welcome mail is visited.
func HandleAuthRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}

	// Captcha is enforced outside dev so the public register endpoint
	// cannot be scripted.
	if !env.IsDev() {
		valid, err := hcaptcha.Verify(req.Captcha)
		if err != nil || !valid {
			if err != nil {
				log.Printf("hCaptcha validation error: %v", err)
			}
			return jsonError(c, fiber.StatusBadRequest, "captcha_failed", "Validação do captcha falhou")
		}
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	user.CompanyName = strings.TrimSpace(req.CompanyName)
	user.Phone = strings.TrimSpace(req.Phone)
	if err := user.GenerateActivationToken(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao gerar token de ativação")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if err := repo.Create(user); err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return jsonError(c, fiber.StatusConflict, "email_taken", "E-mail já cadastrado")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao criar conta")
	}

	go sendActivationMail(user)
	go statistics.UpdateStatisticsCache()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      user.ID,
		"email":   user.Email,
		"status":  user.Status,
		"message": "Conta criada. Verifique seu e-mail para ativá-la.",
	})
}

func sendActivationMail(user *models.User) {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	link := fmt.Sprintf("%s/api/auth/activate?token=%s", base, user.ActivationToken)
	body := fmt.Sprintf(
		"<p>Olá, %s!</p><p>Ative sua conta pelo link abaixo:</p><p><a href=%q>%s</a></p>",
		user.Name, link, link,
	)
	if err := mail.SendMail(user.Email, "Ative sua conta", body); err != nil {
		log.Printf("activation mail for user %d failed: %v", user.ID, err)
	}
}

// HandleAuthActivate flips an inactive account to active via its token.
func HandleAuthActivate(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing_token", "Token de ativação ausente")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByActivationToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Token de ativação inválido")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao ativar conta")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := repo.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao ativar conta")
	}
	return c.JSON(fiber.Map{"message": "Conta ativada com sucesso"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleAuthLogin authenticates by email and password and opens a session.
// Failures are reported without distinguishing unknown email from wrong
// password.
func HandleAuthLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "Corpo da requisição inválido")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "E-mail ou senha incorretos")
	}
	if !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_credentials", "E-mail ou senha incorretos")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "account_inactive", "Conta ainda não ativada")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao abrir sessão")
	}
	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, user.ID)
	sess.Set(USER_NAME, user.Name)
	sess.Set(USER_IS_ADMIN, user.IsAdmin())
	if err := sess.Save(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao salvar sessão")
	}

	now := time.Now()
	user.LastLoginAt = &now
	_ = repo.Update(user)

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"is_admin": user.IsAdmin(),
	})
}

// HandleAuthLogout destroys the current session.
func HandleAuthLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.JSON(fiber.Map{"message": "Sessão encerrada"})
	}
	if err := sess.Destroy(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Falha ao encerrar sessão")
	}
	return c.JSON(fiber.Map{"message": "Sessão encerrada"})
}
