package main

import (
	"context"
	"fmt"
	"os"

	"quizforge/internal/adapter/ai"
	"quizforge/internal/config"
	"quizforge/internal/database"
	"quizforge/internal/domain"
	"quizforge/internal/logger"
	"quizforge/internal/repository"

	"go.uber.org/zap"
)

// Seeds a handful of demo quizzes so a fresh database has something to
// browse. Questions come from the deterministic stub collaborator, so
// no AI credentials are needed.
const demoUserID = "user_demo"

var demoSubjects = []struct {
	Subject string
	Grade   int
}{
	{"Math", 5},
	{"Science", 7},
	{"History", 9},
}

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger.Env, cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	txManager := repository.NewTransactionManagerAdapter(db)
	quizRepo := repository.NewQuizDatabaseAdapter(db, txManager)
	generator := ai.NewStubCollaborator()

	seeded := 0
	for _, entry := range demoSubjects {
		spec := domain.GenerationSpec{
			Grade:      entry.Grade,
			Subject:    entry.Subject,
			Count:      5,
			MaxScore:   10,
			Difficulty: domain.DifficultyMedium,
		}
		questions, err := generator.GenerateQuestions(ctx, spec)
		if err != nil {
			log.Fatal("Failed to generate seed questions", zap.String("subject", entry.Subject), zap.Error(err))
		}

		draft := domain.QuizDraft{
			OwnerUserID:    demoUserID,
			Title:          fmt.Sprintf("Grade %d %s Quiz", entry.Grade, entry.Subject),
			Subject:        entry.Subject,
			Grade:          entry.Grade,
			Difficulty:     domain.DifficultyMedium,
			TotalQuestions: len(questions),
			MaxScore:       spec.MaxScore,
			Questions:      questions,
		}
		quiz, err := quizRepo.CreateQuiz(ctx, &draft)
		if err != nil {
			log.Fatal("Failed to persist seed quiz", zap.String("subject", entry.Subject), zap.Error(err))
		}
		log.Info("Seeded quiz", zap.String("quiz_id", quiz.ID), zap.String("subject", entry.Subject), zap.Int("grade", entry.Grade))
		seeded++
	}

	log.Info("Seeding complete", zap.Int("quizzes", seeded))
}
