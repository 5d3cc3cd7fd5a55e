//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftmind/contextd/internal/api/handlers"
	"github.com/craftmind/contextd/internal/repository"
	"github.com/craftmind/contextd/internal/server"
	"github.com/craftmind/contextd/internal/service"
	"github.com/craftmind/contextd/internal/testutil"
)

const testAPIToken = "e2e-test-token"

// stubModelClient is a deterministic stand-in for the OpenAI client. Texts
// sharing words embed to nearby vectors, so indexed chunks are retrievable
// by queries that mention the same terms.
type stubModelClient struct {
	completion string
}

func (c *stubModelClient) embed(text string) []float32 {
	v := make([]float32, 1536)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(strings.Trim(word, ".,!?")))
		v[h.Sum32()%1536]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x * x)
	}
	if norm == 0 {
		v[0] = 1
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

func (c *stubModelClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = c.embed(t)
	}
	return out, nil
}

func (c *stubModelClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return c.embed(text), nil
}

func (c *stubModelClient) GenerateCompletion(ctx context.Context, system, user string) (string, error) {
	return c.completion, nil
}

// E2ETestEnv holds the containers and in-process server for one test.
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	Server     *httptest.Server
	HTTPClient *http.Client
}

// SetupE2EEnv starts PostgreSQL, wires the full service stack against it
// with stub model clients, and serves the router in-process.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	modelClient := &stubModelClient{
		completion: `{"summary":"The project centers on billing automation, covering invoice generation and payment reconciliation across several conversations and documents.","themes":["billing","invoicing"],"insights":["recurring invoice questions"],"recommendations":["document the reconciliation flow"]}`,
	}

	chunkRepo := repository.NewContentChunkRepository(pool)
	contextRepo := repository.NewProjectContextRepository(pool)
	jobRepo := repository.NewLearningJobRepository(pool)
	sourceRepo := repository.NewContentSourceRepository(pool)

	indexerSvc := service.NewIndexerService(modelClient, chunkRepo)
	retrieverSvc := service.NewRetrieverService(modelClient, chunkRepo, contextRepo)
	analyzerSvc := service.NewAnalyzerService(modelClient)
	learningSvc := service.NewLearningService(sourceRepo, analyzerSvc, jobRepo, contextRepo)

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:   service.NewStaticTokenValidator(testAPIToken),
		IndexHandler:    handlers.NewIndexHandler(indexerSvc),
		RetrieveHandler: handlers.NewRetrieveHandler(retrieverSvc),
		AnalyzeHandler:  handlers.NewAnalyzeHandler(learningSvc),
		JobsHandler:     handlers.NewJobsHandler(jobRepo),
	})

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		Server:     httptest.NewServer(router),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources.
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

func (e *E2ETestEnv) Get(path string) (int, []byte, error) {
	return e.doRequest(http.MethodGet, path, nil, true)
}

func (e *E2ETestEnv) Post(path string, body any) (int, []byte, error) {
	return e.doRequest(http.MethodPost, path, body, true)
}

func (e *E2ETestEnv) Delete(path string) (int, []byte, error) {
	return e.doRequest(http.MethodDelete, path, nil, true)
}

// PostUnauthenticated sends a request without the bearer token.
func (e *E2ETestEnv) PostUnauthenticated(path string, body any) (int, []byte, error) {
	return e.doRequest(http.MethodPost, path, body, false)
}

func (e *E2ETestEnv) doRequest(method, path string, body any, authed bool) (int, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.Server.URL+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+testAPIToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}
