package admin

import (
	"context"
	"fmt"

	openaisdk "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/craftmind/contextd/internal/config"
	"github.com/craftmind/contextd/internal/openai"
	"github.com/craftmind/contextd/internal/repository"
	"github.com/craftmind/contextd/internal/service"
	"github.com/craftmind/contextd/internal/storage"
)

func ReindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex <project-id>",
		Short: "Re-index all content for a project",
		Long:  "Re-chunk and re-embed every indexable content item in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReindex(args[0])
		},
	}

	return cmd
}

func runReindex(projectID string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	var sourceRepo *repository.ContentSourceRepository
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		sourceRepo = repository.NewContentSourceRepositoryWithLoader(pool, s3Client)
	} else {
		sourceRepo = repository.NewContentSourceRepository(pool)
	}

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openaisdk.EmbeddingModel(cfg.EmbeddingModel),
		CompletionModel:     cfg.CompletionModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		BatchSize:           cfg.EmbedBatchSize,
	})

	chunkRepo := repository.NewContentChunkRepository(pool)
	indexerSvc := service.NewIndexerServiceWithConfig(client, chunkRepo, service.ChunkConfig{
		Size:    cfg.ChunkSize,
		Overlap: cfg.ChunkOverlap,
	})

	result, err := indexerSvc.ReindexProject(ctx, sourceRepo, projectID)
	if err != nil {
		return fmt.Errorf("failed to reindex project: %w", err)
	}

	fmt.Printf("Project %s reindexed: %d chunks, %d embeddings\n",
		projectID, result.ChunksProcessed, result.EmbeddingsCreated)
	return nil
}
