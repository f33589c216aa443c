package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"gorm.io/gorm"

	"usermanager/internal/auth"
	"usermanager/internal/config"
	"usermanager/internal/db"
	apperrors "usermanager/internal/errors"
	"usermanager/internal/model"
	"usermanager/internal/repository"
	"usermanager/internal/service"
)

func main() {
	username := flag.String("admin-username", "", "bootstrap admin username (skipped when empty)")
	email := flag.String("admin-email", "", "bootstrap admin email")
	password := flag.String("admin-password", "", "bootstrap admin password")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.Role{}, &model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	roleRepo := repository.NewRoleRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	if err := roleRepo.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}
	log.Printf("Roles seeded: %q (id %d), %q (id %d)",
		model.RoleAdmin, model.RoleAdminID, model.RoleUser, model.RoleUserID)

	if *username == "" {
		log.Println("No admin credentials given, skipping admin bootstrap")
		return
	}
	if *email == "" || *password == "" {
		log.Fatal("admin-email and admin-password are required with admin-username")
	}

	authService := service.NewAuthService(userRepo, roleRepo, auth.NewJWTService(cfg.JWTSecret))
	if err := bootstrapAdmin(ctx, authService, userRepo, *username, *email, *password); err != nil {
		log.Fatalf("Failed to bootstrap admin: %v", err)
	}
	log.Printf("Seed completed successfully")
}

// bootstrapAdmin creates the initial admin user unless one with the given
// email already exists.
func bootstrapAdmin(ctx context.Context, authService service.AuthService, userRepo repository.UserRepository, username, email, password string) error {
	if _, err := userRepo.FindByEmailWithRole(ctx, email); err == nil {
		log.Printf("Admin %s already exists, skipping", email)
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	_, err := authService.RegisterAdmin(ctx, username, email, password)
	if errors.Is(err, apperrors.ErrDuplicateUser) {
		log.Printf("Admin %s already exists, skipping", email)
		return nil
	}
	if err == nil {
		log.Printf("Admin user %s created", email)
	}
	return err
}
