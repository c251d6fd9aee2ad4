package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/types"
	"github.com/concursoprep/backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "concursoprep", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := database.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: database, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := MigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}

// MigrateAll creates the tables, the search index plumbing and the foreign
// keys. Shared with the repo test harness so tests run against the same
// schema (trigger included) as production.
func MigrateAll(database *gorm.DB) error {
	err := database.AutoMigrate(
		&types.Question{},
		&types.Choice{},
		&types.QuestionSearch{},
		&types.Notebook{},
		&types.NotebookQuestion{},
		&types.QuestionNote{},
	)
	if err != nil {
		return err
	}
	if err := ensureSearchIndex(database); err != nil {
		return err
	}
	return ensureForeignKeys(database)
}

// ensureSearchIndex keeps question_search.tsv in sync with the question row.
// The projection folds the stem together with the provenance metadata so a
// websearch query can match on banca/instituicao/cargo/source too. Portuguese
// config throughout; the retriever queries with the same config.
func ensureSearchIndex(database *gorm.DB) error {
	if err := database.Exec(`
		CREATE INDEX IF NOT EXISTS idx_question_search_tsv
		ON question_search
		USING GIN (tsv);
	`).Error; err != nil {
		return fmt.Errorf("create idx_question_search_tsv: %w", err)
	}

	if err := database.Exec(`
		CREATE OR REPLACE FUNCTION refresh_question_search() RETURNS trigger AS $$
		BEGIN
			INSERT INTO question_search (question_id, tsv)
			VALUES (
				NEW.id,
				to_tsvector('portuguese',
					coalesce(NEW.stem, '') || ' ' ||
					coalesce(NEW.instituicao, '') || ' ' ||
					coalesce(NEW.banca, '') || ' ' ||
					coalesce(NEW.cargo, '') || ' ' ||
					coalesce(NEW.source, ''))
			)
			ON CONFLICT (question_id) DO UPDATE SET tsv = EXCLUDED.tsv;
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;
	`).Error; err != nil {
		return fmt.Errorf("create refresh_question_search: %w", err)
	}

	if err := database.Exec(`
		DROP TRIGGER IF EXISTS trg_question_search_refresh ON question;
		CREATE TRIGGER trg_question_search_refresh
		AFTER INSERT OR UPDATE OF stem, instituicao, banca, cargo, source ON question
		FOR EACH ROW EXECUTE FUNCTION refresh_question_search();
	`).Error; err != nil {
		return fmt.Errorf("create trg_question_search_refresh: %w", err)
	}
	return nil
}

func ensureForeignKeys(database *gorm.DB) error {
	if err := database.Exec(`
		DO $$ BEGIN
			ALTER TABLE "choice"
			ADD CONSTRAINT "fk_choice_question_id"
			FOREIGN KEY ("question_id")
			REFERENCES "question"("id")
			ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$;
	`).Error; err != nil {
		return fmt.Errorf("failed to add fk_choice_question_id: %w", err)
	}
	if err := database.Exec(`
		DO $$ BEGIN
			ALTER TABLE "question_search"
			ADD CONSTRAINT "fk_question_search_question_id"
			FOREIGN KEY ("question_id")
			REFERENCES "question"("id")
			ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$;
	`).Error; err != nil {
		return fmt.Errorf("failed to add fk_question_search_question_id: %w", err)
	}
	if err := database.Exec(`
		DO $$ BEGIN
			ALTER TABLE "notebook_question"
			ADD CONSTRAINT "fk_notebook_question_notebook_id"
			FOREIGN KEY ("notebook_id")
			REFERENCES "notebook"("id")
			ON DELETE CASCADE;
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$;
	`).Error; err != nil {
		return fmt.Errorf("failed to add fk_notebook_question_notebook_id: %w", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
