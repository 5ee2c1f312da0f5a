package vector

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fluentpro/internal/domain/matching"

	"github.com/google/uuid"
)

// RoleIndex projects role embeddings into a single named index. The data
// plane host is resolved lazily from the control plane when not configured.
type RoleIndex struct {
	client    Client
	indexName string
	namespace string

	mu   sync.Mutex
	host string
}

type RoleIndexOptions struct {
	IndexName string
	Host      string
	Namespace string
}

func NewRoleIndex(client Client, opts RoleIndexOptions) (*RoleIndex, error) {
	if client == nil {
		return nil, fmt.Errorf("vector client required")
	}
	if strings.TrimSpace(opts.IndexName) == "" && strings.TrimSpace(opts.Host) == "" {
		return nil, fmt.Errorf("index name or host required")
	}
	return &RoleIndex{
		client:    client,
		indexName: strings.TrimSpace(opts.IndexName),
		namespace: strings.TrimSpace(opts.Namespace),
		host:      strings.TrimSpace(opts.Host),
	}, nil
}

func (ri *RoleIndex) resolveHost(ctx context.Context) (string, error) {
	ri.mu.Lock()
	defer ri.mu.Unlock()
	if ri.host != "" {
		return ri.host, nil
	}
	desc, err := ri.client.DescribeIndex(ctx, ri.indexName)
	if err != nil {
		return "", fmt.Errorf("resolve index host: %w", err)
	}
	ri.host = desc.Host
	return ri.host, nil
}

func (ri *RoleIndex) Query(ctx context.Context, vec []float32, industryID *uuid.UUID, topK int) ([]matching.Match, error) {
	host, err := ri.resolveHost(ctx)
	if err != nil {
		return nil, err
	}

	req := QueryRequest{
		Namespace: ri.namespace,
		Vector:    vec,
		TopK:      topK,
	}
	if industryID != nil && *industryID != uuid.Nil {
		req.Filter = map[string]any{"industry_id": map[string]any{"$eq": industryID.String()}}
	}

	resp, err := ri.client.Query(ctx, host, req)
	if err != nil {
		return nil, err
	}

	out := make([]matching.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		id, err := uuid.Parse(m.ID)
		if err != nil {
			continue
		}
		out = append(out, matching.Match{RoleID: id, Score: m.Score})
	}
	return out, nil
}

func (ri *RoleIndex) Upsert(ctx context.Context, roleID uuid.UUID, vec []float32, industryID *uuid.UUID) error {
	host, err := ri.resolveHost(ctx)
	if err != nil {
		return err
	}

	v := Vector{ID: roleID.String(), Values: vec}
	if industryID != nil && *industryID != uuid.Nil {
		v.Metadata = map[string]any{"industry_id": industryID.String()}
	}

	_, err = ri.client.UpsertVectors(ctx, host, UpsertRequest{
		Vectors:   []Vector{v},
		Namespace: ri.namespace,
	})
	return err
}
