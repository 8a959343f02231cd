package query

import (
	"context"
	"time"

	"github.com/lcindex/lcindex/internal/metastore"
)

// MockBM25Index is a configurable metastore.BM25Index test double: tests set
// only the Fn fields they care about, unset fields fall back to harmless
// zero-value behavior rather than panicking.
type MockBM25Index struct {
	IndexFn  func(ctx context.Context, docs []*metastore.Document) error
	SearchFn func(ctx context.Context, query string, limit int) ([]*metastore.BM25Result, error)
	DeleteFn func(ctx context.Context, docIDs []string) error
	AllIDsFn func() ([]string, error)
	StatsFn  func() *metastore.IndexStats
	SaveFn   func(path string) error
	LoadFn   func(path string) error
	CloseFn  func() error
}

var _ metastore.BM25Index = (*MockBM25Index)(nil)

func (m *MockBM25Index) Index(ctx context.Context, docs []*metastore.Document) error {
	if m.IndexFn != nil {
		return m.IndexFn(ctx, docs)
	}
	return nil
}

func (m *MockBM25Index) Search(ctx context.Context, query string, limit int) ([]*metastore.BM25Result, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *MockBM25Index) Delete(ctx context.Context, docIDs []string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, docIDs)
	}
	return nil
}

func (m *MockBM25Index) AllIDs() ([]string, error) {
	if m.AllIDsFn != nil {
		return m.AllIDsFn()
	}
	return nil, nil
}

func (m *MockBM25Index) Stats() *metastore.IndexStats {
	if m.StatsFn != nil {
		return m.StatsFn()
	}
	return &metastore.IndexStats{}
}

func (m *MockBM25Index) Save(path string) error {
	if m.SaveFn != nil {
		return m.SaveFn(path)
	}
	return nil
}

func (m *MockBM25Index) Load(path string) error {
	if m.LoadFn != nil {
		return m.LoadFn(path)
	}
	return nil
}

func (m *MockBM25Index) Close() error {
	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}

// MockVectorStore is a configurable metastore.VectorStore test double.
type MockVectorStore struct {
	AddFn      func(ctx context.Context, ids []string, vectors [][]float32) error
	SearchFn   func(ctx context.Context, query []float32, k int) ([]*metastore.VectorResult, error)
	DeleteFn   func(ctx context.Context, ids []string) error
	AllIDsFn   func() []string
	ContainsFn func(id string) bool
	CountFn    func() int
	SaveFn     func(path string) error
	LoadFn     func(path string) error
	CloseFn    func() error
}

var _ metastore.VectorStore = (*MockVectorStore)(nil)

func (m *MockVectorStore) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if m.AddFn != nil {
		return m.AddFn(ctx, ids, vectors)
	}
	return nil
}

func (m *MockVectorStore) Search(ctx context.Context, query []float32, k int) ([]*metastore.VectorResult, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, k)
	}
	return nil, nil
}

func (m *MockVectorStore) Delete(ctx context.Context, ids []string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, ids)
	}
	return nil
}

func (m *MockVectorStore) AllIDs() []string {
	if m.AllIDsFn != nil {
		return m.AllIDsFn()
	}
	return nil
}

func (m *MockVectorStore) Contains(id string) bool {
	if m.ContainsFn != nil {
		return m.ContainsFn(id)
	}
	return false
}

func (m *MockVectorStore) Count() int {
	if m.CountFn != nil {
		return m.CountFn()
	}
	return 0
}

func (m *MockVectorStore) Save(path string) error {
	if m.SaveFn != nil {
		return m.SaveFn(path)
	}
	return nil
}

func (m *MockVectorStore) Load(path string) error {
	if m.LoadFn != nil {
		return m.LoadFn(path)
	}
	return nil
}

func (m *MockVectorStore) Close() error {
	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}

// MockEmbedder is a configurable embed.Embedder test double.
type MockEmbedder struct {
	EmbedFn         func(ctx context.Context, text string) ([]float32, error)
	EmbedBatchFn    func(ctx context.Context, texts []string) ([][]float32, error)
	DimensionsFn    func() int
	ModelNameFn     func() string
	AvailableFn     func(ctx context.Context) bool
	CloseFn         func() error
	SetBatchIndexFn func(idx int)
	SetFinalBatchFn func(isFinal bool)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedFn != nil {
		return m.EmbedFn(ctx, text)
	}
	return make([]float32, m.Dimensions()), nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.EmbedBatchFn != nil {
		return m.EmbedBatchFn(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *MockEmbedder) Dimensions() int {
	if m.DimensionsFn != nil {
		return m.DimensionsFn()
	}
	return 768
}

func (m *MockEmbedder) ModelName() string {
	if m.ModelNameFn != nil {
		return m.ModelNameFn()
	}
	return "mock-embedder"
}

func (m *MockEmbedder) Available(ctx context.Context) bool {
	if m.AvailableFn != nil {
		return m.AvailableFn(ctx)
	}
	return true
}

func (m *MockEmbedder) Close() error {
	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}

func (m *MockEmbedder) SetBatchIndex(idx int) {
	if m.SetBatchIndexFn != nil {
		m.SetBatchIndexFn(idx)
	}
}

func (m *MockEmbedder) SetFinalBatch(isFinal bool) {
	if m.SetFinalBatchFn != nil {
		m.SetFinalBatchFn(isFinal)
	}
}

// MockMetadataStore is a configurable metastore.MetadataStore test double
// backed by an in-memory chunk map, enough for search-path benchmarks and
// tests that don't exercise the full project/file lifecycle.
type MockMetadataStore struct {
	chunks map[string]*metastore.Chunk
	state  map[string]string
}

var _ metastore.MetadataStore = (*MockMetadataStore)(nil)

// NewMockMetadataStore returns a ready-to-use mock with empty backing maps.
func NewMockMetadataStore() *MockMetadataStore {
	return &MockMetadataStore{
		chunks: make(map[string]*metastore.Chunk),
		state:  make(map[string]string),
	}
}

func (m *MockMetadataStore) SaveProject(ctx context.Context, project *metastore.Project) error {
	return nil
}

func (m *MockMetadataStore) GetProject(ctx context.Context, id string) (*metastore.Project, error) {
	return nil, nil
}

func (m *MockMetadataStore) UpdateProjectStats(ctx context.Context, id string, fileCount, chunkCount int) error {
	return nil
}

func (m *MockMetadataStore) RefreshProjectStats(ctx context.Context, id string) error {
	return nil
}

func (m *MockMetadataStore) SaveFiles(ctx context.Context, files []*metastore.File) error {
	return nil
}

func (m *MockMetadataStore) GetFileByPath(ctx context.Context, projectID, path string) (*metastore.File, error) {
	return nil, nil
}

func (m *MockMetadataStore) GetChangedFiles(ctx context.Context, projectID string, since time.Time) ([]*metastore.File, error) {
	return nil, nil
}

func (m *MockMetadataStore) ListFiles(ctx context.Context, projectID string, cursor string, limit int) ([]*metastore.File, string, error) {
	return nil, "", nil
}

func (m *MockMetadataStore) GetFilePathsByProject(ctx context.Context, projectID string) ([]string, error) {
	return nil, nil
}

func (m *MockMetadataStore) GetFilesForReconciliation(ctx context.Context, projectID string) (map[string]*metastore.File, error) {
	return nil, nil
}

func (m *MockMetadataStore) ListFilePathsUnder(ctx context.Context, projectID, dirPrefix string) ([]string, error) {
	return nil, nil
}

func (m *MockMetadataStore) DeleteFile(ctx context.Context, fileID string) error {
	return nil
}

func (m *MockMetadataStore) DeleteFilesByProject(ctx context.Context, projectID string) error {
	return nil
}

func (m *MockMetadataStore) SaveChunks(ctx context.Context, chunks []*metastore.Chunk) error {
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *MockMetadataStore) GetChunk(ctx context.Context, id string) (*metastore.Chunk, error) {
	return m.chunks[id], nil
}

func (m *MockMetadataStore) GetChunks(ctx context.Context, ids []string) ([]*metastore.Chunk, error) {
	out := make([]*metastore.Chunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.chunks[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockMetadataStore) GetChunksByFile(ctx context.Context, fileID string) ([]*metastore.Chunk, error) {
	return nil, nil
}

func (m *MockMetadataStore) DeleteChunks(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delete(m.chunks, id)
	}
	return nil
}

func (m *MockMetadataStore) DeleteChunksByFile(ctx context.Context, fileID string) error {
	return nil
}

func (m *MockMetadataStore) SearchSymbols(ctx context.Context, name string, limit int) ([]*metastore.Symbol, error) {
	return nil, nil
}

func (m *MockMetadataStore) GetState(ctx context.Context, key string) (string, error) {
	return m.state[key], nil
}

func (m *MockMetadataStore) SetState(ctx context.Context, key, value string) error {
	m.state[key] = value
	return nil
}

func (m *MockMetadataStore) SaveChunkEmbeddings(ctx context.Context, chunkIDs []string, embeddings [][]float32, model string) error {
	return nil
}

func (m *MockMetadataStore) GetAllEmbeddings(ctx context.Context) (map[string][]float32, error) {
	return nil, nil
}

func (m *MockMetadataStore) GetEmbeddingStats(ctx context.Context) (withEmbedding, withoutEmbedding int, err error) {
	return 0, 0, nil
}

func (m *MockMetadataStore) SaveIndexCheckpoint(ctx context.Context, stage string, total, embeddedCount int, embedderModel string) error {
	return nil
}

func (m *MockMetadataStore) LoadIndexCheckpoint(ctx context.Context) (*metastore.IndexCheckpoint, error) {
	return nil, nil
}

func (m *MockMetadataStore) ClearIndexCheckpoint(ctx context.Context) error {
	return nil
}

func (m *MockMetadataStore) RegisterModel(ctx context.Context, entry *metastore.ModelRegistryEntry) error {
	return nil
}

func (m *MockMetadataStore) GetModelRegistryEntry(ctx context.Context, modelName, version string) (*metastore.ModelRegistryEntry, error) {
	return nil, nil
}

func (m *MockMetadataStore) ListModelRegistryEntries(ctx context.Context) ([]*metastore.ModelRegistryEntry, error) {
	return nil, nil
}

func (m *MockMetadataStore) VerifyModel(ctx context.Context, modelName, version, filePath string) (*metastore.ModelRegistryEntry, error) {
	return nil, nil
}

func (m *MockMetadataStore) ActivateModel(ctx context.Context, modelName, version string) error {
	return nil
}

func (m *MockMetadataStore) AppendSecurityAudit(ctx context.Context, event *metastore.SecurityAuditEvent) error {
	return nil
}

func (m *MockMetadataStore) ListSecurityAudit(ctx context.Context, limit int) ([]*metastore.SecurityAuditEvent, error) {
	return nil, nil
}

func (m *MockMetadataStore) RotateSecurityAudit(ctx context.Context, maxRows int) (int64, error) {
	return 0, nil
}

func (m *MockMetadataStore) Close() error {
	return nil
}
