package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"flowdeck/internal/config"
	"flowdeck/internal/db"
	apperrors "flowdeck/internal/errors"
	"flowdeck/internal/logging"
	"flowdeck/internal/model"
	"flowdeck/internal/repository"
	"flowdeck/internal/service"
)

const (
	demoEmail    = "demo@flowdeck.local"
	demoName     = "Demo User"
	demoPassword = "password123"
)

// SeedWorkflow is the fixture shape read from SEED_FILE.
type SeedWorkflow struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Status      string                 `json:"status"`
	Steps       []model.Step           `json:"steps"`
	Metadata    map[string]interface{} `json:"metadata"`
}

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Workflow{}); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	fixtures := defaultWorkflows()
	if path := os.Getenv("SEED_FILE"); path != "" {
		fixtures, err = loadFixtures(path)
		if err != nil {
			logger.Fatal("load fixtures", zap.String("path", path), zap.Error(err))
		}
		logger.Info("loaded fixtures", zap.String("path", path), zap.Int("count", len(fixtures)))
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	workflowService := service.NewWorkflowService(repository.NewWorkflowRepository(gormDB))

	owner, err := ensureDemoUser(ctx, userRepo)
	if err != nil {
		logger.Fatal("ensure demo user", zap.Error(err))
	}
	logger.Info("demo user ready", zap.String("email", owner.Email), zap.String("id", owner.ID.String()))

	created, skipped := 0, 0
	for _, fixture := range fixtures {
		_, err := workflowService.Create(ctx, owner.ID, service.WorkflowInput{
			Name:        fixture.Name,
			Description: fixture.Description,
			Status:      model.WorkflowStatus(fixture.Status),
			Steps:       fixture.Steps,
			Metadata:    fixture.Metadata,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrWorkflowNameTaken):
			skipped++
		default:
			logger.Fatal("seed workflow", zap.String("name", fixture.Name), zap.Error(err))
		}
	}

	logger.Info("seed completed", zap.Int("created", created), zap.Int("skipped", skipped))
}

func ensureDemoUser(ctx context.Context, repo repository.UserRepository) (*model.User, error) {
	existing, err := repo.FindByEmail(ctx, demoEmail)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         demoName,
		Email:        demoEmail,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func loadFixtures(path string) ([]SeedWorkflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fixtures []SeedWorkflow
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, err
	}
	return fixtures, nil
}

func defaultWorkflows() []SeedWorkflow {
	return []SeedWorkflow{
		{
			Name:        "Onboarding",
			Description: "New-hire onboarding checklist",
			Status:      "active",
			Steps: []model.Step{
				{Name: "Create accounts", Order: 1, Status: model.StepCompleted},
				{Name: "Assign buddy", Order: 2, Status: model.StepInProgress},
				{Name: "First week review", Order: 3, Status: model.StepPending},
			},
			Metadata: map[string]interface{}{"team": "people-ops"},
		},
		{
			Name:        "Release checklist",
			Description: "Steps for cutting a production release",
			Status:      "draft",
			Steps: []model.Step{
				{Name: "Freeze main", Order: 1, Status: model.StepPending},
				{Name: "Run regression suite", Order: 2, Status: model.StepPending},
				{Name: "Tag and deploy", Order: 3, Status: model.StepPending},
				{Name: "Smoke test", Order: 4, Status: model.StepPending},
			},
		},
		{
			Name:        "Vendor review",
			Description: "Annual vendor security review",
			Status:      "inactive",
		},
	}
}
