package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/craftmind/contextd/internal/config"
	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/repository"
)

func JobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage learning jobs",
		Long:  "Enqueue and list learning jobs",
	}

	cmd.AddCommand(JobsEnqueueCmd())
	cmd.AddCommand(JobsListCmd())

	return cmd
}

func JobsEnqueueCmd() *cobra.Command {
	var jobType string

	cmd := &cobra.Command{
		Use:   "enqueue <project-id>",
		Short: "Enqueue a learning job",
		Long:  "Enqueue a pending learning job for the background worker to pick up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runJobsEnqueue(args[0], jobType, outputFormat)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().StringVar(&jobType, "type", "scheduled", "Job type (scheduled, manual, or incremental)")

	return cmd
}

func runJobsEnqueue(projectID, jobType, outputFormat string) error {
	ctx := context.Background()

	jt := domain.LearningJobType(jobType)
	switch jt {
	case domain.LearningJobTypeScheduled, domain.LearningJobTypeManual, domain.LearningJobTypeIncremental:
	default:
		return fmt.Errorf("invalid job type %q", jobType)
	}

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	jobRepo := repository.NewLearningJobRepository(pool)

	job := &domain.LearningJob{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		JobType:   jt,
		Status:    domain.LearningJobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := jobRepo.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	if outputFormat == "json" {
		data := map[string]interface{}{
			"id":         job.ID,
			"project_id": job.ProjectID,
			"job_type":   string(job.JobType),
			"status":     string(job.Status),
			"created_at": job.CreatedAt,
		}
		jsonBytes, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		fmt.Printf("Job enqueued: %s (project: %s, type: %s)\n", job.ID, job.ProjectID, job.JobType)
	}

	return nil
}

func JobsListCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List learning jobs for a project",
		Long:  "List a project's learning jobs, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, _ := cmd.Flags().GetString("output")
			return runJobsList(args[0], outputFormat, limit, cursor)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runJobsList(projectID, outputFormat string, limit int, cursor string) error {
	ctx := context.Background()

	pool, err := getDBPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	jobRepo := repository.NewLearningJobRepository(pool)

	result, err := jobRepo.ListByProject(ctx, projectID, limit, cursor)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if outputFormat == "json" {
		data := make([]map[string]interface{}, len(result.Items))
		for i, job := range result.Items {
			data[i] = map[string]interface{}{
				"id":              job.ID,
				"job_type":        string(job.JobType),
				"status":          string(job.Status),
				"processed_items": job.ProcessedItems,
				"total_items":     job.TotalItems,
				"created_at":      job.CreatedAt,
			}
		}
		output := map[string]interface{}{
			"items":    data,
			"cursor":   result.Cursor,
			"has_more": result.HasMore,
		}
		jsonBytes, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonBytes))
	} else {
		if len(result.Items) == 0 {
			fmt.Println("No jobs found")
			return nil
		}
		fmt.Println("Jobs:")
		for _, job := range result.Items {
			fmt.Printf("  %s: %s/%s %d/%d (created: %s)\n",
				job.ID, job.JobType, job.Status,
				job.ProcessedItems, job.TotalItems,
				job.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		if result.HasMore && result.Cursor != "" {
			fmt.Printf("\nMore results available. Use --cursor %s\n", result.Cursor)
		}
	}

	return nil
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
