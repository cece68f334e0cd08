// Package auth login contra el espejo de usuarios y emisión de JWT.
package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/application/identity"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/pkg/jwt"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login y datos del actor autenticado.
type AuthUseCase struct {
	mirror repository.UserMirrorRepository
	jwtCfg JWTConfig
	log    *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(mirror repository.UserMirrorRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{mirror: mirror, jwtCfg: jwtCfg, log: log}
}

// Login verifica email/password contra el espejo, genera JWT y retorna token + usuario.
// Email desconocido y password incorrecto dan el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.ValidationErrors{"Email and password are required."}
	}
	user, err := uc.mirror.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		uc.log.Info().Str("email", email).Msg("login rechazado: usuario inexistente")
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		uc.log.Info().Int64("user_id", user.ID).Msg("login rechazado: password incorrecto")
		return nil, domain.ErrUnauthorized
	}
	if user.IsSuspended() {
		return nil, domain.ErrSuspended
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, user.SectorID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("login")
	return &dto.LoginResponse{Token: token, User: identity.ToUserResponse(user)}, nil
}

// Me actor resuelto del request con sus permisos efectivos.
func (uc *AuthUseCase) Me(actor *access.Actor) (*dto.MeResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	perms := make(map[string]bool, len(actor.Permissions))
	for k, v := range actor.Permissions {
		if v {
			perms[k] = true
		}
	}
	return &dto.MeResponse{
		User: dto.UserResponse{
			ID:       actor.UserID,
			Email:    actor.Email,
			Name:     actor.Name,
			Role:     actor.Role,
			SectorID: actor.SectorID,
		},
		Permissions: perms,
		IsRoot:      actor.IsRoot(),
		CanSign:     actor.CanSign(),
	}, nil
}
