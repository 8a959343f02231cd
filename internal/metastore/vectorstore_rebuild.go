package metastore

import (
	"context"
	"fmt"

	"github.com/lcindex/lcindex/internal/ixerrors"
)

// RebuildVectorStore rebuilds a fresh HNSWStore from embeddings already
// persisted in the metadata store, with no re-embedding required. This is
// the corruption-recovery path spec'd for ErrCodeCorruptIndex: a checksum
// failure in HNSWStore.Load should trigger this instead of surfacing a bare
// error, since the metadata store is the durable source of truth and the
// vector index is a derived, rebuildable artifact.
//
// Grounded on cmd/lcindex/cmd/compact.go's rebuild-from-SQLite logic, which
// did the equivalent work ad hoc for a different reason (orphan
// compaction); this shares the same embedding-retrieval and graph-building
// steps.
func RebuildVectorStore(ctx context.Context, metadata MetadataStore, cfg VectorStoreConfig) (*HNSWStore, error) {
	embeddings, err := metadata.GetAllEmbeddings(ctx)
	if err != nil {
		return nil, ixerrors.New(ixerrors.ErrCodeRebuildFailed,
			fmt.Sprintf("failed to load embeddings for vector index rebuild: %v", err), err)
	}
	if len(embeddings) == 0 {
		return nil, ixerrors.New(ixerrors.ErrCodeRebuildFailed,
			"no stored embeddings available to rebuild the vector index", nil)
	}

	store, err := NewHNSWStore(cfg)
	if err != nil {
		return nil, ixerrors.New(ixerrors.ErrCodeRebuildFailed,
			fmt.Sprintf("failed to create vector store during rebuild: %v", err), err)
	}

	ids := make([]string, 0, len(embeddings))
	vecs := make([][]float32, 0, len(embeddings))
	for id, vec := range embeddings {
		ids = append(ids, id)
		vecs = append(vecs, vec)
	}

	if err := store.Add(ctx, ids, vecs); err != nil {
		_ = store.Close()
		return nil, ixerrors.New(ixerrors.ErrCodeRebuildFailed,
			fmt.Sprintf("failed to repopulate vector store during rebuild: %v", err), err)
	}

	return store, nil
}
