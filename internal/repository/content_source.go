package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/service"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentTextLoader resolves document bodies that live in object storage.
type DocumentTextLoader interface {
	LoadText(ctx context.Context, key string) (string, error)
}

// ContentSourceRepository reads project content from the tables owned by
// the surrounding CRUD application. The engine never writes them.
type ContentSourceRepository struct {
	pool *pgxpool.Pool
	docs DocumentTextLoader
}

func NewContentSourceRepository(pool *pgxpool.Pool) *ContentSourceRepository {
	return &ContentSourceRepository{pool: pool}
}

// NewContentSourceRepositoryWithLoader wires an object-storage loader for
// documents whose body is stored by key rather than inline.
func NewContentSourceRepositoryWithLoader(pool *pgxpool.Pool, docs DocumentTextLoader) *ContentSourceRepository {
	return &ContentSourceRepository{pool: pool, docs: docs}
}

// GatherProjectContent collects everything the analyzer looks at for one
// project: conversations, knowledge items, and saved prompts.
func (r *ContentSourceRepository) GatherProjectContent(ctx context.Context, projectID string) (*service.ProjectContent, error) {
	content := &service.ProjectContent{}

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, transcript, created_at
		 FROM conversations
		 WHERE project_id = $1
		 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c service.ConversationContent
		var title, transcript pgtype.Text
		if err := rows.Scan(&c.ID, &title, &transcript, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Title = title.String
		c.Text = transcript.String
		content.Conversations = append(content.Conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT id, title, description
		 FROM knowledge_items
		 WHERE project_id = $1
		 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k service.KnowledgeContent
		var description pgtype.Text
		if err := rows.Scan(&k.ID, &k.Title, &description); err != nil {
			return nil, err
		}
		k.Description = description.String
		content.Knowledge = append(content.Knowledge, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT id, name, compiled_text
		 FROM prompt_templates
		 WHERE project_id = $1
		 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p service.PromptContent
		var compiled pgtype.Text
		if err := rows.Scan(&p.ID, &p.Name, &compiled); err != nil {
			return nil, err
		}
		p.CompiledText = compiled.String
		content.Prompts = append(content.Prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return content, nil
}

// ListIndexableContent resolves each content item's raw text for a full
// project re-index. Document bodies stored in object storage are fetched
// through the configured loader; documents with neither an inline body
// nor a loader fall back to their description.
func (r *ContentSourceRepository) ListIndexableContent(ctx context.Context, projectID string) ([]service.IndexableItem, error) {
	var items []service.IndexableItem

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, transcript, created_at
		 FROM conversations
		 WHERE project_id = $1
		 ORDER BY created_at ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var title, transcript pgtype.Text
		var createdAt time.Time
		if err := rows.Scan(&id, &title, &transcript, &createdAt); err != nil {
			return nil, err
		}
		items = append(items, service.IndexableItem{
			ContentID:   id,
			ContentType: domain.ContentTypeConversation,
			Text:        joinNonEmpty(title.String, transcript.String),
			Metadata: map[string]any{
				"title":      title.String,
				"created_at": createdAt.UTC().Format(time.RFC3339),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT id, title, description, body, storage_key, created_at
		 FROM knowledge_items
		 WHERE project_id = $1
		 ORDER BY created_at ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge items: %w", err)
	}
	defer rows.Close()

	type docRow struct {
		id, title, description, body, storageKey string
		createdAt                                time.Time
	}
	var docs []docRow
	for rows.Next() {
		var d docRow
		var description, body, storageKey pgtype.Text
		if err := rows.Scan(&d.id, &d.title, &description, &body, &storageKey, &d.createdAt); err != nil {
			return nil, err
		}
		d.description = description.String
		d.body = body.String
		d.storageKey = storageKey.String
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, d := range docs {
		text := d.body
		if text == "" && d.storageKey != "" && r.docs != nil {
			loaded, err := r.docs.LoadText(ctx, d.storageKey)
			if err != nil {
				return nil, fmt.Errorf("failed to load document %s from storage: %w", d.id, err)
			}
			text = loaded
		}
		if text == "" {
			text = d.description
		}
		items = append(items, service.IndexableItem{
			ContentID:   d.id,
			ContentType: domain.ContentTypeDocument,
			Text:        joinNonEmpty(d.title, text),
			Metadata: map[string]any{
				"title":      d.title,
				"created_at": d.createdAt.UTC().Format(time.RFC3339),
			},
		})
	}

	rows, err = r.pool.Query(ctx,
		`SELECT id, name, compiled_text, created_at
		 FROM prompt_templates
		 WHERE project_id = $1
		 ORDER BY created_at ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		var compiled pgtype.Text
		var createdAt time.Time
		if err := rows.Scan(&id, &name, &compiled, &createdAt); err != nil {
			return nil, err
		}
		items = append(items, service.IndexableItem{
			ContentID:   id,
			ContentType: domain.ContentTypePrompt,
			Text:        joinNonEmpty(name, compiled.String),
			Metadata: map[string]any{
				"title":      name,
				"created_at": createdAt.UTC().Format(time.RFC3339),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
