//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/testutil"
)

type stubTextLoader struct {
	texts map[string]string
}

func (l *stubTextLoader) LoadText(ctx context.Context, key string) (string, error) {
	text, ok := l.texts[key]
	if !ok {
		return "", fmt.Errorf("no object at %s", key)
	}
	return text, nil
}

func TestContentSourceRepository_GatherProjectContent(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)

	_, err := pool.Exec(ctx,
		`INSERT INTO conversations (id, project_id, title, transcript, created_at) VALUES
		 ('conv-1', 'proj-1', 'Kickoff', 'We agreed on the roadmap', $1),
		 ('conv-2', 'proj-1', 'Standup', 'Blocked on billing', $2),
		 ('conv-x', 'proj-other', 'Other', 'Other project talk', $1)`,
		base, base.Add(time.Minute))
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO knowledge_items (id, project_id, title, description, created_at) VALUES
		 ('kn-1', 'proj-1', 'Billing rules', 'Invoices are net 30', $1)`,
		base)
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO prompt_templates (id, project_id, name, compiled_text, created_at) VALUES
		 ('pr-1', 'proj-1', 'Summarizer', 'Summarize the following text', $1)`,
		base)
	require.NoError(t, err)

	repo := NewContentSourceRepository(pool)

	content, err := repo.GatherProjectContent(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 4, content.TotalItems())

	require.Len(t, content.Conversations, 2)
	assert.Equal(t, "conv-2", content.Conversations[0].ID)
	assert.Equal(t, "Standup", content.Conversations[0].Title)
	assert.Equal(t, "Blocked on billing", content.Conversations[0].Text)

	require.Len(t, content.Knowledge, 1)
	assert.Equal(t, "Billing rules", content.Knowledge[0].Title)
	assert.Equal(t, "Invoices are net 30", content.Knowledge[0].Description)

	require.Len(t, content.Prompts, 1)
	assert.Equal(t, "Summarizer", content.Prompts[0].Name)
	assert.Equal(t, "Summarize the following text", content.Prompts[0].CompiledText)
}

func TestContentSourceRepository_ListIndexableContent(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)

	_, err := pool.Exec(ctx,
		`INSERT INTO conversations (id, project_id, title, transcript, created_at) VALUES
		 ('conv-1', 'proj-1', 'Kickoff', 'We agreed on the roadmap', $1)`,
		base)
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO knowledge_items (id, project_id, title, description, body, storage_key, created_at) VALUES
		 ('kn-inline', 'proj-1', 'Inline doc', 'short description', 'full inline body', NULL, $1),
		 ('kn-stored', 'proj-1', 'Stored doc', 'short description', NULL, 'docs/kn-stored.txt', $2),
		 ('kn-bare', 'proj-1', 'Bare doc', 'only a description', NULL, NULL, $3)`,
		base, base.Add(time.Minute), base.Add(2*time.Minute))
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO prompt_templates (id, project_id, name, compiled_text, created_at) VALUES
		 ('pr-1', 'proj-1', 'Summarizer', 'Summarize the following text', $1)`,
		base)
	require.NoError(t, err)

	loader := &stubTextLoader{texts: map[string]string{
		"docs/kn-stored.txt": "body fetched from object storage",
	}}
	repo := NewContentSourceRepositoryWithLoader(pool, loader)

	items, err := repo.ListIndexableContent(ctx, "proj-1")
	require.NoError(t, err)
	require.Len(t, items, 5)

	byID := make(map[string]int, len(items))
	for i, item := range items {
		byID[item.ContentID] = i
	}

	conv := items[byID["conv-1"]]
	assert.Equal(t, domain.ContentTypeConversation, conv.ContentType)
	assert.Equal(t, "Kickoff\n\nWe agreed on the roadmap", conv.Text)
	assert.Equal(t, "Kickoff", conv.Metadata["title"])

	inline := items[byID["kn-inline"]]
	assert.Equal(t, domain.ContentTypeDocument, inline.ContentType)
	assert.Equal(t, "Inline doc\n\nfull inline body", inline.Text)

	stored := items[byID["kn-stored"]]
	assert.Equal(t, "Stored doc\n\nbody fetched from object storage", stored.Text)

	bare := items[byID["kn-bare"]]
	assert.Equal(t, "Bare doc\n\nonly a description", bare.Text)

	prompt := items[byID["pr-1"]]
	assert.Equal(t, domain.ContentTypePrompt, prompt.ContentType)
	assert.Equal(t, "Summarizer\n\nSummarize the following text", prompt.Text)
}

func TestContentSourceRepository_ListIndexableContent_MissingObject(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	_, err := pool.Exec(ctx,
		`INSERT INTO knowledge_items (id, project_id, title, description, storage_key) VALUES
		 ('kn-lost', 'proj-1', 'Lost doc', '', 'docs/missing.txt')`)
	require.NoError(t, err)

	repo := NewContentSourceRepositoryWithLoader(pool, &stubTextLoader{texts: map[string]string{}})

	_, err = repo.ListIndexableContent(ctx, "proj-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kn-lost")
}
