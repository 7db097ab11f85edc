package main

import (
	"log"
	"os"

	"ai-novelforge-be/internal/model"
	"ai-novelforge-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions (Things GORM AutoMigrate doesn't do)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate All Models (The Core Task)
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Novel{},
		&model.Chapter{},
		&model.Character{},
		&model.WorldSetting{},
		&model.ChapterEmbedding{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: Views & Indexes
	log.Println("Step 3: Creating Views and Indexes...")

	postMigrationSQL := []string{
		// ANN index for chapter similarity search
		`CREATE INDEX IF NOT EXISTS idx_chapter_embeddings_embedding
		 ON chapter_embeddings USING hnsw (embedding_value vector_cosine_ops);`,

		// View: semantic_searchable_chapters
		`CREATE OR REPLACE VIEW semantic_searchable_chapters AS
		 SELECT c.id AS chapter_id, c.novel_id, c.number, c.title, ce.document, ce.embedding_value AS embedding
		 FROM chapters c JOIN chapter_embeddings ce ON c.id = ce.chapter_id
		 WHERE c.deleted_at IS NULL;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
