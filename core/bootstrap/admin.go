package bootstrap

import (
	"context"
	"os"
	"strings"

	"github.com/Wazadriano/bow-tavira-sub002/config"
	"github.com/Wazadriano/bow-tavira-sub002/core/auth"
	"github.com/Wazadriano/bow-tavira-sub002/core/store"
	"github.com/Wazadriano/bow-tavira-sub002/core/utils"
)

const defaultAdminUsername = "admin"

// EnsureDefaultAdmin creates the built-in admin account when no such user
// exists yet. The initial password comes from BOW_ADMIN_PASSWORD and the
// account is forced into a password change on first login.
func EnsureDefaultAdmin(ctx context.Context, users store.UsersStore, cfg *config.AppConfig, logger *utils.Logger) error {
	existing, _, err := users.FindByUsername(ctx, defaultAdminUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	password := strings.TrimSpace(os.Getenv("BOW_ADMIN_PASSWORD"))
	if password == "" {
		password = "change-me-now"
	}
	pepper := ""
	if cfg != nil {
		pepper = cfg.Pepper
	}
	hash, salt, err := auth.HashPassword(password, pepper)
	if err != nil {
		return err
	}
	admin := &store.User{
		Username:              defaultAdminUsername,
		FullName:              "Administrator",
		PasswordHash:          hash,
		Salt:                  salt,
		RequirePasswordChange: true,
		Active:                true,
	}
	if _, err := users.Create(ctx, admin, []string{"admin"}); err != nil {
		return err
	}
	if logger != nil {
		logger.Printf("BOOTSTRAP created default admin user")
	}
	return nil
}
